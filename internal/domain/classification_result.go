package domain

// Strategy records which dispatcher path produced a country's result.
type Strategy string

const (
	StrategyParallel   Strategy = "parallel"
	StrategySequential Strategy = "sequential"
	StrategyNone       Strategy = "none"
)

// ClassificationResult is the per-country outcome of one run. It is produced
// once per country and never mutated afterwards.
type ClassificationResult struct {
	IsoCode string
	Name    string
	Suffix  string

	// NetworksFound is the pre-optimization reference network count,
	// NetworksOptimized the count after collapsing.
	NetworksFound     int
	NetworksOptimized int

	// Matched holds the matching entries in their original trimmed form.
	// Order follows batch completion, not global input order.
	Matched []string

	// AddressesCovered is the total address span of the optimized set.
	AddressesCovered uint64

	// Strategy is the dispatcher path that produced Matched.
	Strategy Strategy

	// OutputFile is the per-country file name, empty when nothing was written.
	OutputFile string
}

// MatchedCount is a convenience for the stats report.
func (r ClassificationResult) MatchedCount() int {
	return len(r.Matched)
}

// AggregateStats summarizes one whole run for report generation.
type AggregateStats struct {
	TotalInput    int
	Countries     []ClassificationResult
	CombinedCount int
	CombinedFile  string
}

// FilterRate returns the percentage of input entries matched by the country
// at index i, guarding the zero-input case.
func (s AggregateStats) FilterRate(i int) float64 {
	if s.TotalInput == 0 {
		return 0
	}
	return float64(s.Countries[i].MatchedCount()) / float64(s.TotalInput) * 100
}

// CombinedRate returns the percentage of input entries present in the
// combined deduplicated output.
func (s AggregateStats) CombinedRate() float64 {
	if s.TotalInput == 0 {
		return 0
	}
	return float64(s.CombinedCount) / float64(s.TotalInput) * 100
}
