package recall

import "strings"

// Point table for the default (non-India) confidence path.
const (
	pointsGov          = 50
	pointsManufacturer = 40
	pointsNews         = 25
	pointsIndiaMention = 30
	pointsEntityFound  = 15

	scoreConfirmed = 80
	scoreProbable  = 50
)

// Verdict is the Scorer's output for one classified candidate.
type Verdict struct {
	Region     Region
	Confidence ConfidenceLevel
	SignalType SignalType // set only on the India path
	Score      int        // set only on the default path
}

// Scorer converts classifier output and source provenance into a region
// and a confidence bucket. India-region candidates go through the signal
// ladder; everything else through the additive point model.
type Scorer struct {
	kw        *Keywords
	exclusion []termMatcher
	ladder    []compiledRule
}

type compiledRule struct {
	matchers []termMatcher
	signal   SignalType
}

// NewScorer builds a Scorer over the given keyword configuration.
func NewScorer(kw *Keywords) *Scorer {
	ladder := make([]compiledRule, 0, len(kw.Ladder))
	for _, rule := range kw.Ladder {
		ladder = append(ladder, compiledRule{
			matchers: compileTerms(rule.Terms),
			signal:   rule.Type,
		})
	}
	return &Scorer{
		kw:        kw,
		exclusion: compileTerms(kw.ForeignExclusion),
		ladder:    ladder,
	}
}

// Score resolves region first, then applies the path that region selects.
// text must be the same normalized blob the Classifier saw. originIndia
// marks items fetched by an India-targeted source.
func (s *Scorer) Score(kind SourceKind, a Analysis, text string, originIndia bool) Verdict {
	region := s.resolveRegion(a, text, originIndia)

	if region == RegionIN {
		st := s.ladderMatch(text)
		return Verdict{
			Region:     region,
			SignalType: st,
			Confidence: ladderConfidence(st),
		}
	}

	score := basePoints(kind)
	if a.IsIndia {
		// Mismatched-region edge case: text reads Indian but the region
		// resolver excluded it. Tolerated as a plain bonus.
		score += pointsIndiaMention
	}
	if len(a.Entities) > 0 {
		score += pointsEntityFound
	}

	return Verdict{
		Region:     region,
		Score:      score,
		Confidence: bucket(score),
	}
}

// resolveRegion assigns IN when the classifier or the source provenance
// says India, unless the foreign/geopolitical exclusion list hits. Broad
// India-targeted news queries return substantial off-topic foreign and
// political coverage that must not become Indian signals.
func (s *Scorer) resolveRegion(a Analysis, text string, originIndia bool) Region {
	if !a.IsIndia && !originIndia {
		return RegionUS
	}
	lower := strings.ToLower(text)
	for _, m := range s.exclusion {
		if m.re.MatchString(lower) {
			return RegionUS
		}
	}
	return RegionIN
}

// ladderMatch walks the ordered keyword families; the first family with
// any whole-word hit wins. Order is the priority, not match count.
func (s *Scorer) ladderMatch(text string) SignalType {
	lower := strings.ToLower(text)
	for _, rule := range s.ladder {
		for _, m := range rule.matchers {
			if m.re.MatchString(lower) {
				return rule.signal
			}
		}
	}
	return SignalInvestigation
}

// ladderConfidence maps a signal type to its bucket. Regulatory
// vocabulary is the strongest evidence class on the India path even
// though it is not a "recall" in the point-table sense.
func ladderConfidence(st SignalType) ConfidenceLevel {
	switch st {
	case SignalRegulatoryAction, SignalRecall:
		return ConfidenceConfirmed
	case SignalSampleFailure:
		return ConfidenceProbable
	default:
		return ConfidenceWatch
	}
}

func basePoints(kind SourceKind) int {
	switch kind {
	case SourceGov:
		return pointsGov
	case SourceManufacturer:
		return pointsManufacturer
	case SourceNews:
		return pointsNews
	default:
		return 0
	}
}

func bucket(score int) ConfidenceLevel {
	switch {
	case score >= scoreConfirmed:
		return ConfidenceConfirmed
	case score >= scoreProbable:
		return ConfidenceProbable
	default:
		return ConfidenceWatch
	}
}
