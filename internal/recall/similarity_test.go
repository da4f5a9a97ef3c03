package recall

import "testing"

func TestTitleSimilarityRatio(t *testing.T) {
	t.Parallel()

	sim := NewTitleSimilarity()

	if got := sim.Ratio("Acme recalls frozen peas", "Acme recalls frozen peas"); got != 1 {
		t.Errorf("identical titles: Ratio = %v, want 1", got)
	}
	if got := sim.Ratio("ACME RECALLS FROZEN PEAS", "acme recalls frozen peas"); got != 1 {
		t.Errorf("case difference: Ratio = %v, want 1", got)
	}

	a := "Recall issued for Acme Foods frozen peas over listeria contamination"
	b := "Recall expanded for Acme Foods frozen peas over listeria contamination"
	if got := sim.Ratio(a, b); got < 0.8 {
		t.Errorf("near-duplicate titles: Ratio = %v, want >= 0.8", got)
	}

	c := "Helicopter noise complaints rise downtown"
	if got := sim.Ratio(a, c); got > 0.6 {
		t.Errorf("unrelated titles: Ratio = %v, want <= 0.6", got)
	}
}
