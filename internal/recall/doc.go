// Package recall is the business boundary for RedAlert's product-safety
// pipeline. It defines the domain models, the Store interface
// (persistence), the Classifier (keyword heuristics over free text), the
// Scorer (confidence buckets and the India signal ladder), and the
// Pipeline (intake gate, dedup/merge, and alert dispatch).
package recall
