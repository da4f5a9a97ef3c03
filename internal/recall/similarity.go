package recall

import (
	"strings"

	"github.com/adrg/strutil"
	"github.com/adrg/strutil/metrics"
)

// Similarity scores how alike two titles are, on [0, 1]. The dedup
// threshold and the algorithm behind it are tunables; merge logic only
// sees this interface.
type Similarity interface {
	Ratio(a, b string) float64
}

// TitleSimilarity is the default scorer: case-insensitive
// Sorensen-Dice over title bigrams. Good at "Patanjali Ghee failed"
// vs "Samples of Patanjali Ghee failed"; cheap enough for the
// O(candidates x recalls-in-region) scan the pipeline does.
type TitleSimilarity struct {
	metric *metrics.SorensenDice
}

// NewTitleSimilarity returns the default title scorer.
func NewTitleSimilarity() *TitleSimilarity {
	return &TitleSimilarity{metric: metrics.NewSorensenDice()}
}

// Ratio implements Similarity.
func (s *TitleSimilarity) Ratio(a, b string) float64 {
	return strutil.Similarity(strings.ToLower(a), strings.ToLower(b), s.metric)
}
