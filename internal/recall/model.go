package recall

import "time"

// Region is the geographic scope a recall applies to.
type Region string

const (
	RegionUS      Region = "US"
	RegionIN      Region = "IN"
	RegionGlobal  Region = "GLOBAL"
	RegionUnknown Region = "UNKNOWN"
)

// ConfidenceLevel buckets the severity score of a recall.
type ConfidenceLevel string

const (
	// ConfidenceConfirmed means score >= 80
	ConfidenceConfirmed ConfidenceLevel = "CONFIRMED"

	// ConfidenceProbable means score 50-79
	ConfidenceProbable ConfidenceLevel = "PROBABLE"

	// ConfidenceWatch means score < 50
	ConfidenceWatch ConfidenceLevel = "WATCH"
)

// SourceKind identifies the class of upstream source a signal came from.
type SourceKind string

const (
	SourceGov          SourceKind = "GOV"  // CPSC, FDA, NHTSA, FSSAI
	SourceManufacturer SourceKind = "MFG"  // press releases
	SourceNews         SourceKind = "NEWS" // syndication feeds
	SourceOther        SourceKind = "OTHER"
)

// SignalType is the India-ladder classification of what kind of
// regulatory event a signal describes.
type SignalType string

const (
	SignalRegulatoryAction SignalType = "Regulatory Action"
	SignalSampleFailure    SignalType = "Sample Failure"
	SignalInvestigation    SignalType = "Investigation"
	SignalRecall           SignalType = "Recall"
)

// WatchType is the kind of match a watchlist entry expresses.
type WatchType string

const (
	WatchBrand    WatchType = "BRAND"
	WatchProduct  WatchType = "PRODUCT"
	WatchCategory WatchType = "CATEGORY"
	WatchRegion   WatchType = "REGION"
)

// Item is the normalized shape every collector produces. Per-source
// envelope and field-name differences never escape the collector that
// fetched the item.
type Item struct {
	Title     string `json:"title"`
	Summary   string `json:"summary"`
	Link      string `json:"link"`
	Published string `json:"published,omitempty"`
	Origin    string `json:"origin"`
}

// RawSignal is an admitted, unprocessed ingestion payload. It is never
// mutated after admission (except the processed flag) and is retained
// indefinitely as an audit trail.
type RawSignal struct {
	ID          string     `json:"id"`
	Fingerprint string     `json:"fingerprint"`
	SourceKind  SourceKind `json:"source_kind"`
	Origin      string     `json:"origin"`
	Payload     []byte     `json:"payload"`
	IngestedAt  time.Time  `json:"ingested_at"`
	Processed   bool       `json:"processed"`
}

// Recall is a deduplicated, classified, user-facing recall record.
type Recall struct {
	ID            string          `json:"id"`
	Title         string          `json:"title"`
	Brand         string          `json:"brand,omitempty"`
	HazardSummary string          `json:"hazard_summary,omitempty"`
	Region        Region          `json:"region"`
	Confidence    ConfidenceLevel `json:"confidence_level"`
	SignalType    SignalType      `json:"signal_type,omitempty"`
	URL           string          `json:"url,omitempty"`
	PublishedDate *time.Time      `json:"published_date,omitempty"`
	CreatedAt     time.Time       `json:"created_at"`
	UpdatedAt     time.Time       `json:"updated_at"`
}

// RecallSource is an evidence link from a Recall to one originating
// signal/source URL. The same URL is never attached twice to one recall.
type RecallSource struct {
	ID          string     `json:"id"`
	RecallID    string     `json:"recall_id"`
	SourceKind  SourceKind `json:"source_kind"`
	URL         string     `json:"url"`
	Title       string     `json:"title"`
	PublishedAt *time.Time `json:"published_at,omitempty"`
}

// Watchlist is a subscriber's interest expression. The pipeline consumes
// these read-only; ownership and lifecycle belong to the account layer.
type Watchlist struct {
	ID      string    `json:"id"`
	OwnerID string    `json:"owner_id"`
	Type    WatchType `json:"type"`
	Value   string    `json:"value"`
}
