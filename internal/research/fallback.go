package research

import (
	"fmt"
	"math"
	"strings"
)

// Fallback synthesizes every capability result locally from the arguments alone.
// All methods are deterministic and total: any input, including empty strings,
// yields a structurally valid payload.
type Fallback struct{}

// SearchPapers returns a templated paper for the query followed by the canned
// papers that share words with it
func (Fallback) SearchPapers(args SearchArgs) *SearchResult {
	query := args.Query
	subject := orDefault(query, "general research")

	papers := []Paper{{
		ID:             PaperIDFromInt(1),
		Title:          "Advanced Research in " + TitleCase(subject),
		Authors:        []string{"Dr. Jane Smith", "Prof. John Doe"},
		Abstract:       fmt.Sprintf("This paper explores the fundamental concepts and applications of %s in modern research environments...", subject),
		Year:           2024,
		Journal:        "Nature",
		Citations:      156,
		RelevanceScore: 95,
		Keywords:       []string{strings.ToLower(subject), "research", "methodology", "analysis"},
	}}

	for i, r := range RankCatalog(Catalog(), query) {
		p := r.Paper
		p.RelevanceScore = max(50, 90-i*5)
		papers = append(papers, p)
	}

	limit := max(args.MaxResults, 1)
	if len(papers) > limit {
		papers = papers[:limit]
	}

	return &SearchResult{
		Papers:      papers,
		TotalFound:  len(papers),
		Query:       query,
		SourcesUsed: []string{"mock"},
	}
}

// GenerateWorkspace returns a starter workspace for the topic
func (Fallback) GenerateWorkspace(args WorkspaceArgs) *Workspace {
	args = args.WithDefaults()

	tools := []WorkspaceTool{}
	if *args.IncludeTools {
		tools = append(tools,
			WorkspaceTool{Name: "Literature Review", Status: "ready"},
			WorkspaceTool{Name: "Data Analysis", Status: "pending"},
			WorkspaceTool{Name: "Citation Manager", Status: "ready"},
		)
	}

	files := []WorkspaceFile{}
	if *args.IncludeFiles {
		files = append(files,
			WorkspaceFile{Name: "Research_Plan.md", Type: "markdown", Size: "2.1 KB"},
			WorkspaceFile{Name: "Bibliography.bib", Type: "bibtex", Size: "15.3 KB"},
			WorkspaceFile{Name: "Data", Type: "folder", Size: "1.2 GB"},
		)
	}

	return &Workspace{
		ID:            StableID("ws", args.Topic),
		Name:          TitleCase(orDefault(args.Topic, "Untitled")) + " Research Workspace",
		CreatedAt:     FixedTimestamp,
		Tools:         tools,
		Files:         files,
		Collaborators: 1,
		LastActivity:  FixedTimestamp,
	}
}

// CreateMindmap returns a central node and depth*2 related concepts (2 to 8)
func (Fallback) CreateMindmap(args MindmapArgs) *MindMap {
	args = args.WithDefaults()
	return BuildMindMap(args.Topic, args.Depth, *args.IncludeConnections)
}

// BuildMindMap lays out the topic and its related concepts around a central node
func BuildMindMap(topic string, depth int, connections bool) *MindMap {
	concepts := RelatedConcepts(topic)
	n := min(max(depth*2, 2), 8, len(concepts))
	concepts = concepts[:n]

	nodes := []MindMapNode{{
		ID: 1, Label: TitleCase(orDefault(topic, "Research")), X: 400, Y: 300, Type: "central",
	}}
	for i, concept := range concepts {
		angle := float64(i) / float64(n) * 2 * math.Pi
		xScale := 1.0
		if i%2 == 1 {
			xScale = 1.5
		}
		xSign := 1.0
		if angle >= math.Pi {
			xSign = -1
		}
		ySign := 1.0
		if i >= 4 {
			ySign = -1
		}
		nodes = append(nodes, MindMapNode{
			ID:    i + 2,
			Label: concept,
			X:     400 + 150*xScale*xSign,
			Y:     300 + 100*ySign,
			Type:  "concept",
		})
	}

	edges := []MindMapEdge{}
	if connections {
		for id := 2; id <= len(nodes); id++ {
			edges = append(edges, MindMapEdge{From: 1, To: id})
		}
		for _, e := range []MindMapEdge{{From: 2, To: 4}, {From: 3, To: 5}, {From: 6, To: 8}} {
			if e.To <= len(nodes) {
				edges = append(edges, e)
			}
		}
	}

	return &MindMap{
		ID:          StableID("mm", topic),
		Topic:       topic,
		Nodes:       nodes,
		Connections: edges,
	}
}

// CreateInteractiveMindmap builds concept nodes from the topic and paper keywords,
// and author nodes from the papers
func (Fallback) CreateInteractiveMindmap(args InteractiveMindmapArgs) *InteractiveMindMap {
	args = args.WithDefaults()
	topic := args.Topic
	subject := orDefault(topic, "research")

	papers := args.Papers
	if len(papers) > 5 {
		papers = papers[:5]
	}

	concepts := newOrderedSet(strings.ToLower(subject), "research", "methodology", "analysis")
	authors := newOrderedSet()
	for _, p := range papers {
		concepts.add(firstN(p.Keywords, 3)...)
		authors.add(firstN(p.Authors, 2)...)
	}

	nodes := []InteractiveNode{{
		ID: "central", Label: TitleCase(subject), Type: "central", X: 400, Y: 300,
	}}
	var edges []InteractiveEdge
	nodeID := 1

	conceptLimit := min(max(args.Depth*2, 2), 6)
	for i, concept := range firstN(concepts.items, conceptLimit) {
		angle := float64(i) / 6 * 2 * math.Pi
		side := 1.0
		if i%2 == 1 {
			side = -1
		}
		ySign := 1.0
		if angle >= math.Pi {
			ySign = -1
		}
		id := fmt.Sprintf("concept_%d", nodeID)
		nodes = append(nodes, InteractiveNode{
			ID:          id,
			Label:       TitleCase(concept),
			Type:        "concept",
			X:           round1(400 + 150*(1+0.3*float64(i))*side*angle/math.Pi),
			Y:           round1(300 + 150*(1+0.2*float64(i))*ySign),
			Description: "Key concept related to " + subject,
		})
		edges = append(edges, InteractiveEdge{From: "central", To: id, Type: "relates_to"})
		nodeID++
	}

	if *args.IncludeAuthors {
		for i, author := range firstN(authors.items, 4) {
			xSign, ySign := 1.0, 1.0
			if i%2 == 1 {
				xSign = -1
			}
			if i >= 2 {
				ySign = -1
			}
			id := fmt.Sprintf("author_%d", nodeID)
			nodes = append(nodes, InteractiveNode{
				ID:          id,
				Label:       author,
				Type:        "author",
				X:           400 + 120*xSign,
				Y:           300 + 120*ySign,
				Description: "Researcher in " + subject,
			})
			edges = append(edges, InteractiveEdge{From: "central", To: id, Type: "authored_by"})
			nodeID++
		}
	}

	if !*args.IncludeConnections || edges == nil {
		edges = []InteractiveEdge{}
	}

	return &InteractiveMindMap{
		ID:          StableID("mindmap", topic),
		Title:       "Interactive Mind Map: " + TitleCase(subject),
		Topic:       topic,
		Nodes:       nodes,
		Connections: edges,
		NodeTypes:   DefaultNodeTypes(),
		InteractionFeatures: map[string]bool{
			"zoom":          true,
			"drag":          true,
			"click_details": true,
			"search":        true,
			"filter":        true,
		},
		CreatedAt: FixedTimestamp,
	}
}

// DefaultNodeTypes returns the rendering hints of the interactive node types
func DefaultNodeTypes() map[string]NodeStyle {
	return map[string]NodeStyle{
		"central": {Color: "#8B5CF6", Size: "large"},
		"concept": {Color: "#06D6A0", Size: "medium"},
		"author":  {Color: "#F72585", Size: "medium"},
		"paper":   {Color: "#FFD60A", Size: "small"},
	}
}

// GenerateComprehensiveSummaries returns an overview and a summary of up to five papers
func (Fallback) GenerateComprehensiveSummaries(args SummariesArgs) *Summaries {
	args = args.WithDefaults()
	topic := args.Topic
	subject := orDefault(topic, "this topic")

	docs := []DocumentSummary{}
	for i, p := range firstN(args.Papers, 5) {
		id := p.ID
		if id == "" {
			id = PaperIDFromInt(i + 1)
		}
		relevance := p.RelevanceScore
		if relevance == 0 {
			relevance = 85
		}
		docs = append(docs, DocumentSummary{
			PaperID:     id,
			Title:       orDefault(p.Title, "Sample Paper"),
			Summary:     fmt.Sprintf("This paper contributes to %s by presenting novel approaches and methodologies...", subject),
			KeyFindings: []string{"Novel methodology", "Improved results", "Significant implications"},
			Relevance:   relevance,
		})
	}

	return &Summaries{
		ID:            StableID("summaries", topic),
		Query:         topic,
		TopicOverview: fmt.Sprintf("This comprehensive analysis of %s reveals significant developments in the field. Current research demonstrates strong progress in both theoretical foundations and practical applications.", subject),
		KeyThemes: []string{
			"Theoretical Foundations",
			"Methodological Advances",
			"Practical Applications",
			"Future Directions",
		},
		DocumentSummaries: docs,
		ResearchGaps: []string{
			"Limited longitudinal studies",
			"Need for larger sample sizes",
			"Cross-cultural validation required",
		},
		CreatedAt: FixedTimestamp,
	}
}

// GenerateIEEECitations formats up to ten papers as numbered IEEE references
func (Fallback) GenerateIEEECitations(args CitationArgs) *Citations {
	args = args.WithDefaults()
	style := strings.ToUpper(args.Format)

	citations := []Citation{}
	lines := make([]string, 0, len(args.Papers))
	titles := make([]string, 0, len(args.Papers))
	for i, p := range firstN(args.Papers, 10) {
		n := i + 1
		line := FormatIEEE(n, p)
		citations = append(citations, Citation{
			Number:   n,
			PaperID:  p.ID,
			Citation: line,
			Style:    style,
		})
		lines = append(lines, line)
		titles = append(titles, p.Title)
	}

	return &Citations{
		ID:             StableID("citations", strings.Join(titles, "\x00")),
		Style:          style,
		TotalCitations: len(citations),
		Citations:      citations,
		Bibliography:   strings.Join(lines, "\n"),
		CreatedAt:      FixedTimestamp,
	}
}

// FormatIEEE renders reference n as
// [n] A, B, C et al., "Title", Journal, vol. X, no. Y, pp. 1-10, Year.
func FormatIEEE(n int, p Paper) string {
	authors := p.Authors
	if len(authors) == 0 {
		authors = []string{"J. Smith", "A. Johnson"}
	}
	authorList := strings.Join(firstN(authors, 3), ", ")
	if len(authors) > 3 {
		authorList += " et al."
	}

	year := p.Year
	if year == 0 {
		year = 2024
	}

	return fmt.Sprintf(`[%d] %s, "%s", %s, vol. X, no. Y, pp. 1-10, %d.`,
		n, authorList,
		orDefault(p.Title, "Research Paper Title"),
		orDefault(p.Journal, "IEEE Transactions"),
		year)
}

// GenerateSamplePaper returns a review paper skeleton about the topic
func (Fallback) GenerateSamplePaper(args SamplePaperArgs) *SamplePaper {
	args = args.WithDefaults()
	topic := args.Topic
	subject := orDefault(topic, "this field")

	return &SamplePaper{
		ID:       StableID("paper", topic),
		Title:    fmt.Sprintf("Advances in %s: A Comprehensive Review and Future Directions", TitleCase(subject)),
		Abstract: fmt.Sprintf("This paper presents a comprehensive analysis of current developments in %s. Through systematic review of recent literature and methodological advances, we identify key trends and propose future research directions. Our analysis reveals significant progress in both theoretical understanding and practical applications.", subject),
		Sections: map[string]Section{
			"introduction": {
				Title:   "1. Introduction",
				Content: fmt.Sprintf("The field of %s has experienced rapid growth in recent years, driven by technological advances and increased research interest. This paper aims to provide a comprehensive overview of current state-of-the-art approaches and identify promising directions for future research.", subject),
			},
			"literature_review": {
				Title:   "2. Literature Review",
				Content: fmt.Sprintf("Recent studies in %s have demonstrated significant advances in both methodology and applications. This section reviews key contributions from leading researchers and identifies emerging trends in the field.", subject),
				Subsections: []Subsection{
					{Title: "2.1 Theoretical Foundations", Content: "Fundamental principles and theoretical frameworks..."},
					{Title: "2.2 Methodological Approaches", Content: "Current methodologies and their comparative advantages..."},
					{Title: "2.3 Applications and Case Studies", Content: "Real-world applications and validation studies..."},
				},
			},
			"methodology": {
				Title:   "3. Methodology",
				Content: "This study employs a systematic review methodology to analyze current literature and identify key trends. Our approach includes comprehensive database searches, quality assessment, and thematic analysis of findings.",
			},
			"results": {
				Title:   "4. Results and Discussion",
				Content: "Our analysis reveals several key findings regarding the current state and future directions of research in this field. The results demonstrate significant progress while highlighting areas requiring further investigation.",
			},
			"conclusion": {
				Title:   "5. Conclusion",
				Content: fmt.Sprintf("This comprehensive review of %s research demonstrates substantial progress in the field while identifying opportunities for future development. Key recommendations include enhanced methodological rigor, increased interdisciplinary collaboration, and focus on practical applications.", subject),
			},
		},
		ReferencesCount: len(args.Papers),
		WordCount:       3500,
		CreatedAt:       FixedTimestamp,
	}
}

// SynthesizeAudio returns a placeholder clip whose duration follows the text length
func (Fallback) SynthesizeAudio(args AudioArgs) *Audio {
	args = args.WithDefaults()
	return &Audio{
		AudioURL: PlaceholderAudioURL,
		Duration: AudioDuration(args.Text),
		Voice:    args.Voice,
		Text:     Truncate(args.Text, 100),
	}
}

// PlaceholderAudioURL stands in for synthesized speech
const PlaceholderAudioURL = "data:audio/wav;base64,UklGRnoGAABXQVZFZm10IBAAAAABAAEA..."

// AudioDuration estimates a tenth of a second per character
func AudioDuration(text string) float64 {
	return round1(float64(len([]rune(text))) * 0.1)
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}

func firstN[T any](s []T, n int) []T {
	if len(s) > n {
		return s[:n]
	}
	return s
}

// orderedSet keeps the first occurrence of each non-empty string
type orderedSet struct {
	seen  map[string]bool
	items []string
}

func newOrderedSet(items ...string) *orderedSet {
	s := &orderedSet{seen: make(map[string]bool)}
	s.add(items...)
	return s
}

func (s *orderedSet) add(items ...string) {
	for _, item := range items {
		if item == "" || s.seen[item] {
			continue
		}
		s.seen[item] = true
		s.items = append(s.items, item)
	}
}
