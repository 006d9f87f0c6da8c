package classify

import (
	"fmt"

	"github.com/charmbracelet/log"

	"geosift/internal/domain"
	"geosift/internal/networks"
)

// NetworkSource supplies the raw reference networks for one country.
type NetworkSource interface {
	NetworksFor(country domain.CountryConfig) []string
}

// ResultSink receives one country's matched entries and returns the name of
// the file it wrote them to.
type ResultSink interface {
	WriteCountry(country domain.CountryConfig, matched []string) (string, error)
}

// Auditor cross-checks a country's matches against an independent dataset.
// Optional; a nil Auditor disables the check.
type Auditor interface {
	Audit(country domain.CountryConfig, matched []string)
}

// Orchestrator runs the full per-country pipeline: extract reference
// networks, optimize, dispatch, hand results to the sink, and accumulate the
// global dedup set. Countries run strictly sequentially so that only one
// country's index is replicated across workers at a time.
type Orchestrator struct {
	Source  NetworkSource
	Sink    ResultSink
	Auditor Auditor
	Workers int
}

// Run processes every configured country against the input list. A country
// with zero usable networks yields a zero-result entry and processing
// continues; only a sequential-fallback failure aborts the run. The returned
// set is the deduplicated union of all countries' matches.
func (o *Orchestrator) Run(countries []domain.CountryConfig, entries []string) ([]domain.ClassificationResult, map[string]struct{}, error) {
	dispatcher := NewDispatcher(o.Workers)

	results := make([]domain.ClassificationResult, 0, len(countries))
	combined := make(map[string]struct{})

	for _, country := range countries {
		result, err := o.processCountry(dispatcher, country, entries)
		if err != nil {
			return nil, nil, fmt.Errorf("country %s: %w", country.IsoCode, err)
		}

		for _, entry := range result.Matched {
			combined[entry] = struct{}{}
		}
		results = append(results, result)

		log.Info("Completed country", "name", country.Name, "matched", result.MatchedCount())
	}

	return results, combined, nil
}

func (o *Orchestrator) processCountry(dispatcher *Dispatcher, country domain.CountryConfig, entries []string) (domain.ClassificationResult, error) {
	log.Info("Processing country", "name", country.Name, "iso", country.IsoCode)

	result := domain.ClassificationResult{
		IsoCode:  country.IsoCode,
		Name:     country.Name,
		Suffix:   country.Suffix,
		Strategy: domain.StrategyNone,
	}

	rawNetworks := o.Source.NetworksFor(country)
	result.NetworksFound = len(rawNetworks)
	log.Info("Found reference networks", "name", country.Name, "count", len(rawNetworks))

	if len(rawNetworks) == 0 {
		log.Warn("No networks found for country", "name", country.Name, "iso", country.IsoCode)
		return result, nil
	}

	prefixes := networks.Collapse(rawNetworks)
	result.NetworksOptimized = len(prefixes)

	if len(prefixes) == 0 {
		log.Warn("Network optimization resulted in empty list", "name", country.Name)
		return result, nil
	}
	result.AddressesCovered = networks.TotalAddresses(prefixes)

	outcome, err := dispatcher.Run(prefixes, entries)
	if err != nil {
		return result, err
	}
	result.Matched = outcome.Matched
	result.Strategy = outcome.Strategy
	if outcome.Malformed > 0 {
		log.Warn("Dropped malformed input entries", "name", country.Name, "count", outcome.Malformed)
	}

	filename, err := o.Sink.WriteCountry(country, result.Matched)
	if err != nil {
		log.Error("Failed to write country output", "name", country.Name, "error", err)
	} else {
		result.OutputFile = filename
	}

	if o.Auditor != nil {
		o.Auditor.Audit(country, result.Matched)
	}

	return result, nil
}
