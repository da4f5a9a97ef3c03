package recall

// Keywords is the versioned keyword configuration driving the Classifier
// and Scorer. All matching vocabulary lives here so tests can substitute
// fixtures and tuning never touches pipeline logic.
type Keywords struct {
	Version string

	// Intent holds the recall-intent set. At least one whole-word match
	// is required before any text is treated as a recall signal.
	Intent []string

	// Region poles. High tiers are regulator/authority names worth 5
	// points per hit, low tiers are geography/demonym terms worth 2.
	IndiaHigh   []string
	IndiaLow    []string
	ForeignHigh []string
	ForeignLow  []string

	// FoodMed is the food/drug/pharma context vocabulary. Counted, never
	// gating.
	FoodMed []string

	// Noise phrases drop an item from the pipeline entirely. Matched as
	// case-insensitive substrings, since headlines rarely word-break
	// cleanly around "review:" or "bags $".
	Noise []string

	// ForeignExclusion blocks India region assignment for text that is
	// really foreign or geopolitical coverage returned by broad
	// India-targeted news queries.
	ForeignExclusion []string

	// Ladder is the India-specific (family -> signal type) list. Checked
	// in order; the first matching family wins.
	Ladder []LadderRule
}

// LadderRule maps a keyword family to a signal type.
type LadderRule struct {
	Terms []string
	Type  SignalType
}

// DefaultKeywords returns the production keyword configuration.
func DefaultKeywords() *Keywords {
	return &Keywords{
		Version: "2026-02",

		Intent: []string{
			"recall", "withdrawn", "safety alert", "manufacturing defect",
			"hazard", "batch issue", "consumer warning", "stop use",
			"fire risk", "choking hazard", "contamination",
		},

		IndiaHigh: []string{
			"fssai", "cdsco", "drug controller", "state fda",
		},
		IndiaLow: []string{
			"india", "indian", "delhi", "mumbai", "bangalore", "telangana",
			"bis", "morth", "dgca", "rupee", "rs.",
		},
		ForeignHigh: []string{
			"swissmedic", "fda", "mhra", "hsa", "tga", "cpsc", "cfia",
		},
		ForeignLow: []string{
			"usa", "u.s.", "united states", "canada", "ontario", "toronto",
			"vancouver", "montreal", "nigeria", "africa", "japan",
			"australia", "sydney", "melbourne", "brisbane", "uk",
			"united kingdom", "london", "dublin", "ireland", "new zealand",
			"europe", "eu", "california", "texas", "ohio", "new york",
			"russia", "ukraine", "swiss", "switzerland", "china",
		},

		FoodMed: []string{
			"food", "drink", "beverage", "snack", "spice", "dairy", "meat",
			"candy", "chocolate", "grocery", "restaurant", "fssai",
			"dietary", "supplement", "medicine", "drug", "pharma",
			"pharmacy", "pill", "tablet", "syrup", "cdsco", "fda",
			"eating", "consumption", "poisoning", "adulteration",
			"adulterated", "sweet", "milk", "ghee", "khoya", "paneer",
			"oil", "water", "juice", "bakery", "masala",
		},

		Noise: []string{
			// finance / funding press
			"funding alert", "raised", "series a", "series b", "series c",
			"bags $", "mn round",
			// product reviews
			"reviewed", "review:", "tested and reviewed",
			"best medical alert", "top 10", "buying guide",
			// generic tech coverage
			"how it works", "how to", "feature update",
			"eligible for this", "watch face", "ios", "android",
		},

		ForeignExclusion: []string{
			"pakistan", "bangladesh", "sri lanka", "china", "russia",
			"ukraine", "israel", "gaza", "iran", "usa", "u.s.",
			"united states", "uk", "united kingdom", "europe",
			"fda", "cpsc", "mhra", "tga", "cfia", "swissmedic",
			"war", "military", "missile", "airstrike", "troops", "nato",
			"border clash", "sanctions",
		},

		Ladder: []LadderRule{
			{Terms: []string{"ban", "banned", "cancelled", "suspended", "seized"}, Type: SignalRegulatoryAction},
			{Terms: []string{"sample failed", "sample fail", "substandard", "adulterated", "unsafe"}, Type: SignalSampleFailure},
			{Terms: []string{"probe", "investigation", "complaint"}, Type: SignalInvestigation},
			{Terms: []string{"recall"}, Type: SignalRecall},
		},
	}
}
