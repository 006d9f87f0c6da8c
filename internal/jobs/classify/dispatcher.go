package classify

import (
	"fmt"
	"net/netip"
	"sync"
	"sync/atomic"

	"github.com/charmbracelet/log"
	"golang.org/x/sync/errgroup"

	"geosift/internal/domain"
	"geosift/internal/index"
)

// batchesPerWorker oversubscribes the pool 4x to smooth load imbalance
// between batches.
const batchesPerWorker = 4

// Outcome is the result of classifying one country's full input list.
type Outcome struct {
	Matched   []string
	Malformed int

	// Strategy records whether the parallel attempt or the sequential
	// fallback produced the result; the stats report surfaces it.
	Strategy domain.Strategy
}

// Dispatcher fans one country's input list across a bounded worker pool.
// Each worker builds its own index replica from the shared optimized set, so
// the hot loop needs no locks. The parallel attempt is all-or-nothing: any
// pool-level failure discards partial results and reruns the whole list
// sequentially, once.
type Dispatcher struct {
	workers int

	// buildIndex is the worker-local index constructor. Tests swap it out to
	// force a pool failure.
	buildIndex func(prefixes []netip.Prefix) (*index.Index, error)
}

func NewDispatcher(workers int) *Dispatcher {
	if workers < 1 {
		workers = 1
	}
	return &Dispatcher{
		workers: workers,
		buildIndex: func(prefixes []netip.Prefix) (*index.Index, error) {
			return index.Build(prefixes), nil
		},
	}
}

// Run classifies entries against the optimized network set. Entry-level
// parse failures are absorbed inside the batches; only a failure of the pool
// itself triggers the sequential retry. An error return means the fallback
// failed too, which is fatal for the country.
func (d *Dispatcher) Run(prefixes []netip.Prefix, entries []string) (Outcome, error) {
	outcome, err := d.runParallel(prefixes, entries)
	if err == nil {
		return outcome, nil
	}

	log.Error("Parallel classification failed, falling back to single-threaded processing", "error", err)

	outcome, err = d.runSequential(prefixes, entries)
	if err != nil {
		return Outcome{}, fmt.Errorf("sequential fallback: %w", err)
	}
	return outcome, nil
}

func (d *Dispatcher) runParallel(prefixes []netip.Prefix, entries []string) (Outcome, error) {
	batches := splitBatches(entries, d.workers)

	batchCh := make(chan []string, len(batches))
	for _, batch := range batches {
		batchCh <- batch
	}
	close(batchCh)

	var (
		mu        sync.Mutex
		matched   []string
		malformed atomic.Int64
	)

	var g errgroup.Group
	for range d.workers {
		g.Go(func() (err error) {
			defer func() {
				if r := recover(); r != nil {
					err = fmt.Errorf("worker panic: %v", r)
				}
			}()

			// One index replica per worker, built before any batch work.
			idx, err := d.buildIndex(prefixes)
			if err != nil {
				return err
			}

			for batch := range batchCh {
				found, bad := ClassifyBatch(idx, batch)
				malformed.Add(int64(bad))
				if len(found) == 0 {
					continue
				}
				mu.Lock()
				matched = append(matched, found...)
				mu.Unlock()
			}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		// Discard any partial results; the fallback reruns the full list.
		return Outcome{}, err
	}

	return Outcome{Matched: matched, Malformed: int(malformed.Load()), Strategy: domain.StrategyParallel}, nil
}

func (d *Dispatcher) runSequential(prefixes []netip.Prefix, entries []string) (Outcome, error) {
	idx, err := d.buildIndex(prefixes)
	if err != nil {
		return Outcome{}, err
	}

	matched, malformed := ClassifyBatch(idx, entries)
	return Outcome{Matched: matched, Malformed: malformed, Strategy: domain.StrategySequential}, nil
}

// splitBatches partitions entries into contiguous batches of
// max(1, total/(workers*batchesPerWorker)) entries; the last batch may be
// shorter.
func splitBatches(entries []string, workers int) [][]string {
	total := len(entries)
	if total == 0 {
		return nil
	}

	batchSize := total / (workers * batchesPerWorker)
	if batchSize < 1 {
		batchSize = 1
	}

	batches := make([][]string, 0, (total+batchSize-1)/batchSize)
	for start := 0; start < total; start += batchSize {
		end := min(start+batchSize, total)
		batches = append(batches, entries[start:end])
	}
	return batches
}
