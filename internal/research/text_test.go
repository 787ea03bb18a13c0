package research

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStableID(t *testing.T) {
	a := StableID("ws", "topic")
	assert.Equal(t, a, StableID("ws", "topic"))
	assert.Regexp(t, `^ws_\d{1,4}$`, a)
	assert.NotEqual(t, a, StableID("ws", "other topic"))
}

func TestTitleCase(t *testing.T) {
	assert.Equal(t, "Machine Learning", TitleCase("machine LEARNING"))
	assert.Equal(t, "Co-Op Ai", TitleCase("co-op AI"))
	assert.Equal(t, "", TitleCase(""))
}

func TestExtractKeywords(t *testing.T) {
	got := ExtractKeywords("The effects of sleep on memory, and the role of dreams in learning.")
	assert.Equal(t, []string{"effects", "sleep", "memory", "role", "dreams", "learning"}, got)

	many := ExtractKeywords("alpha bravo charlie delta echoes foxtrot golf hotel india juliet kilo lima")
	assert.Len(t, many, 10)
}

func TestRelatedConcepts(t *testing.T) {
	assert.Equal(t, "superposition", RelatedConcepts("Quantum Biology")[0])
	assert.Equal(t, "algorithms", RelatedConcepts("machine learning basics")[0])
	assert.Equal(t, "methodology", RelatedConcepts("pottery")[0])

	// Callers may modify the returned list
	c := RelatedConcepts("pottery")
	c[0] = "changed"
	assert.Equal(t, "methodology", RelatedConcepts("pottery")[0])
}

func TestRankCatalog(t *testing.T) {
	ranked := RankCatalog(Catalog(), "climate analysis")
	if assert.Len(t, ranked, 2) {
		assert.Equal(t, PaperID("scholar_climate_models"), ranked[0].Paper.ID)
		assert.Equal(t, 2, ranked[0].Score)
		assert.Equal(t, 1, ranked[1].Score)
	}

	assert.Empty(t, RankCatalog(Catalog(), "   "))
	assert.Empty(t, RankCatalog(Catalog(), "basket weaving"))
}
