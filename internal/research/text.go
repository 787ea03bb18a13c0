package research

import (
	"fmt"
	"hash/fnv"
	"strings"
	"unicode"
	"unicode/utf8"
)

// FixedTimestamp is the created_at of every generated payload, so output is reproducible
const FixedTimestamp = "2024-10-03T10:00:00Z"

// StableID derives "<prefix>_<n>" from key with n in [0, 10000)
func StableID(prefix, key string) string {
	h := fnv.New32a()
	h.Write([]byte(key))
	return fmt.Sprintf("%s_%d", prefix, h.Sum32()%10000)
}

// TitleCase upper-cases the first letter of every word and lower-cases the rest
func TitleCase(s string) string {
	var b strings.Builder
	b.Grow(len(s))

	startOfWord := true
	for _, r := range s {
		switch {
		case !unicode.IsLetter(r) && !unicode.IsDigit(r):
			b.WriteRune(r)
			startOfWord = true
		case startOfWord:
			b.WriteRune(unicode.ToUpper(r))
			startOfWord = false
		default:
			b.WriteRune(unicode.ToLower(r))
		}
	}
	return b.String()
}

// Truncate cuts s to max runes and appends "..." when it was longer
func Truncate(s string, max int) string {
	if utf8.RuneCountInString(s) <= max {
		return s
	}
	runes := []rune(s)
	return string(runes[:max]) + "..."
}

var stopWords = map[string]bool{
	"the": true, "a": true, "an": true, "and": true, "or": true, "but": true,
	"in": true, "on": true, "at": true, "to": true, "for": true, "of": true,
	"with": true, "by": true, "is": true, "are": true, "was": true, "were": true,
	"be": true, "been": true, "have": true, "has": true, "had": true, "do": true,
	"does": true, "did": true, "will": true, "would": true, "could": true, "should": true,
}

// ExtractKeywords returns up to ten lower-cased words longer than three letters
// that are not stop words, in order of appearance
func ExtractKeywords(text string) []string {
	keywords := make([]string, 0, 10)
	for _, word := range strings.Fields(strings.ToLower(text)) {
		word = strings.TrimFunc(word, func(r rune) bool {
			return !unicode.IsLetter(r) && !unicode.IsDigit(r)
		})
		if utf8.RuneCountInString(word) <= 3 || stopWords[word] {
			continue
		}
		keywords = append(keywords, word)
		if len(keywords) == 10 {
			break
		}
	}
	return keywords
}

// Tokens splits text into lower-cased alphanumeric words
func Tokens(text string) []string {
	return strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
}

var conceptMap = []struct {
	key      string
	concepts []string
}{
	{"quantum", []string{"superposition", "entanglement", "decoherence", "qubits", "quantum gates", "measurement", "interference", "tunneling"}},
	{"neural", []string{"neurons", "synapses", "plasticity", "learning", "memory", "networks", "activation", "backpropagation"}},
	{"machine learning", []string{"algorithms", "training", "validation", "features", "models", "optimization", "classification", "regression"}},
	{"ai", []string{"artificial intelligence", "deep learning", "natural language", "computer vision", "robotics", "expert systems", "reasoning", "knowledge"}},
	{"computing", []string{"algorithms", "data structures", "programming", "software", "hardware", "systems", "networks", "security"}},
}

var defaultConcepts = []string{
	"methodology", "applications", "challenges", "future work",
	"related research", "implementation", "analysis", "results",
}

// RelatedConcepts returns the concept list of the first key contained in topic,
// or a generic list
func RelatedConcepts(topic string) []string {
	lower := strings.ToLower(topic)
	for _, entry := range conceptMap {
		if strings.Contains(lower, entry.key) {
			return append([]string(nil), entry.concepts...)
		}
	}
	return append([]string(nil), defaultConcepts...)
}

// orDefault returns s, or def when s is blank
func orDefault(s, def string) string {
	if strings.TrimSpace(s) == "" {
		return def
	}
	return s
}
