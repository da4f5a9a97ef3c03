package recall

import (
	"html"
	"regexp"
	"strings"

	"github.com/microcosm-cc/bluemonday"
)

const (
	indiaHighPoints   = 5
	indiaLowPoints    = 2
	foreignHighPoints = 5
	foreignLowPoints  = 2

	// India wins only with a minimum score and a clear margin over the
	// foreign pole. Ambiguous text classifies as non-India on purpose:
	// false India-positives pollute the signal ladder downstream.
	indiaScoreFloor  = 5
	indiaScoreMargin = 2
)

// Analysis is the Classifier's verdict on one text blob.
type Analysis struct {
	IsRecall     bool
	IntentScore  int
	IntentTerms  []string
	IsIndia      bool
	IndiaScore   int
	ForeignScore int
	IsFoodMed    bool
	FoodMedScore int
	Entities     []string
}

// Classifier runs keyword heuristics over free text. It is pure: the
// same input and keyword configuration always produce the same Analysis.
type Classifier struct {
	kw *Keywords

	intent      []termMatcher
	indiaHigh   []termMatcher
	indiaLow    []termMatcher
	foreignHigh []termMatcher
	foreignLow  []termMatcher
	foodMed     []termMatcher

	stripper *bluemonday.Policy
}

type termMatcher struct {
	term string
	re   *regexp.Regexp
}

// NewClassifier compiles the keyword configuration into a Classifier.
func NewClassifier(kw *Keywords) *Classifier {
	return &Classifier{
		kw:          kw,
		intent:      compileTerms(kw.Intent),
		indiaHigh:   compileTerms(kw.IndiaHigh),
		indiaLow:    compileTerms(kw.IndiaLow),
		foreignHigh: compileTerms(kw.ForeignHigh),
		foreignLow:  compileTerms(kw.ForeignLow),
		foodMed:     compileTerms(kw.FoodMed),
		stripper:    bluemonday.StrictPolicy(),
	}
}

// compileTerms builds whole-word, case-insensitive matchers.
func compileTerms(terms []string) []termMatcher {
	out := make([]termMatcher, 0, len(terms))
	for _, t := range terms {
		out = append(out, termMatcher{
			term: t,
			re:   regexp.MustCompile(`\b` + regexp.QuoteMeta(strings.ToLower(t)) + `\b`),
		})
	}
	return out
}

// NormalizeText combines title and summary into the single blob the
// pipeline classifies: HTML tags stripped, entities unescaped.
func (c *Classifier) NormalizeText(title, summary string) string {
	stripped := html.UnescapeString(c.stripper.Sanitize(summary))
	return strings.TrimSpace(title + " " + stripped)
}

// Classify scores a text blob against every keyword family.
func (c *Classifier) Classify(text string) Analysis {
	lower := strings.ToLower(text)

	var a Analysis
	for _, m := range c.intent {
		if m.re.MatchString(lower) {
			a.IntentScore++
			a.IntentTerms = append(a.IntentTerms, m.term)
		}
	}
	// Hard gate: zero intent matches means not a recall, no matter what
	// the other scores say.
	a.IsRecall = a.IntentScore > 0

	a.IndiaScore = countMatches(lower, c.indiaHigh)*indiaHighPoints +
		countMatches(lower, c.indiaLow)*indiaLowPoints
	a.ForeignScore = countMatches(lower, c.foreignHigh)*foreignHighPoints +
		countMatches(lower, c.foreignLow)*foreignLowPoints
	a.IsIndia = a.IndiaScore >= indiaScoreFloor &&
		a.IndiaScore >= a.ForeignScore+indiaScoreMargin

	a.FoodMedScore = countMatches(lower, c.foodMed)
	a.IsFoodMed = a.FoodMedScore > 0

	a.Entities = extractEntities(text)
	return a
}

// IsNoise reports whether the text hits the noise-phrase blocklist.
// Substring match, not whole-word: phrases like "review:" do not
// word-break cleanly.
func (c *Classifier) IsNoise(text string) bool {
	lower := strings.ToLower(text)
	for _, phrase := range c.kw.Noise {
		if strings.Contains(lower, phrase) {
			return true
		}
	}
	return false
}

func countMatches(lower string, ms []termMatcher) int {
	n := 0
	for _, m := range ms {
		if m.re.MatchString(lower) {
			n++
		}
	}
	return n
}

var (
	sentenceBreakRe = regexp.MustCompile(`[.!?]\s+`)
	capWordRe       = regexp.MustCompile(`^[A-Z][a-z]+$`)
	edgePunctRe     = regexp.MustCompile(`^[^\pL\pN]+|[^\pL\pN]+$`)
)

// extractEntities collects runs of capitalized words that do not start a
// sentence. This is a best-effort brand/product guess, not NER; callers
// must tolerate junk and empty results.
func extractEntities(text string) []string {
	var out []string
	seen := make(map[string]struct{})

	for _, sentence := range sentenceBreakRe.Split(text, -1) {
		words := strings.Fields(sentence)

		var run []string
		runStart := -1
		flush := func() {
			if len(run) > 0 && runStart > 0 {
				ent := strings.Join(run, " ")
				if _, ok := seen[ent]; !ok {
					seen[ent] = struct{}{}
					out = append(out, ent)
				}
			}
			run = nil
			runStart = -1
		}

		for i, w := range words {
			w = edgePunctRe.ReplaceAllString(w, "")
			if capWordRe.MatchString(w) {
				if run == nil {
					runStart = i
				}
				run = append(run, w)
				continue
			}
			flush()
		}
		flush()
	}
	return out
}
