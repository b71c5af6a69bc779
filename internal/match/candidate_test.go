package match

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRankNames(t *testing.T) {
	declared := []string{"title", "body", "publishedAt", "authorName"}

	ranked := RankNames("titel", declared)
	require.Len(t, ranked, len(declared))

	best := ranked.Best()
	require.NotNil(t, best)
	assert.Equal(t, "title", best.Name)
	assert.Equal(t, 2, best.Distance)

	for i := 1; i < len(ranked); i++ {
		assert.GreaterOrEqual(t, ranked[i-1].Score, ranked[i].Score)
	}
}

func TestRankNames_Empty(t *testing.T) {
	assert.Nil(t, RankNames("x", nil).Best())
}

func TestSuggest(t *testing.T) {
	declared := []string{"title", "body", "publishedAt"}

	assert.Equal(t, "publishedAt", Suggest("published_at", declared))
	assert.Equal(t, "title", Suggest("Titl", declared))
	assert.Empty(t, Suggest("zzzzzz", declared))
}

func TestSuggest_Ambiguous(t *testing.T) {
	// "bat" is equally close to both
	assert.Empty(t, Suggest("bat", []string{"bar", "baz"}))
}

func TestDidYouMean(t *testing.T) {
	assert.Equal(t, ` (did you mean "body"?)`, DidYouMean("bdy", []string{"title", "body"}))
	assert.Empty(t, DidYouMean("unrelated", []string{"a"}))
}

func TestCandidateList_AboveThreshold(t *testing.T) {
	list := CandidateList{{Name: "a", Score: 0.9}, {Name: "b", Score: 0.4}}
	assert.Len(t, list.AboveThreshold(0.5), 1)
	assert.True(t, CandidateList{{Score: 0.9}, {Score: 0.88}}.IsAmbiguous(0.05))
	assert.False(t, CandidateList{{Score: 0.9}}.IsAmbiguous(0.05))
}
