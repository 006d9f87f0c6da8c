package config

import (
	"runtime"
	"sort"
	"strconv"
	"strings"

	"geosift/internal/support"
)

const (
	defaultCSVPath   = "/data/geoip/geoip2-ipv4.csv"
	defaultCSVURL    = "https://datahub.io/core/geoip2-ipv4/r/geoip2-ipv4.csv"
	defaultInputPath = "/data/output/aggregated.txt"
	defaultOutputDir = "/data/output"

	// maxWorkers bounds peak memory: every worker holds its own full copy of
	// the active country's membership index.
	maxWorkers = 4
)

func CSVPath() string {
	return support.GetEnv("GEOIP_CSV_PATH", defaultCSVPath)
}

func CSVURL() string {
	return support.GetEnv("GEOIP_CSV_URL", defaultCSVURL)
}

func InputPath() string {
	return support.GetEnv("ALL_IPS_FROM_LISTS", defaultInputPath)
}

func OutputDir() string {
	return support.GetEnv("OUTPUT_DIR", defaultOutputDir)
}

func AuditMMDBPath() string {
	return support.GetEnv("AUDIT_MMDB_PATH", "")
}

// KeepGeoIPData reports whether the downloaded reference data should survive
// the run instead of being cleaned up at the end.
func KeepGeoIPData() bool {
	return support.GetEnvBool("GEOIP_KEEP", false)
}

// Workers resolves the worker count: an explicit flag override first, the
// NUM_WORKERS variable next, otherwise the available parallelism; always at
// least 1 and capped at maxWorkers.
func Workers(flagOverride int) int {
	workers := runtime.NumCPU()
	if override := support.GetEnvInt("NUM_WORKERS", 0); override > 0 {
		workers = override
	}
	if flagOverride > 0 {
		workers = flagOverride
	}
	if workers > maxWorkers {
		workers = maxWorkers
	}
	if workers < 1 {
		workers = 1
	}
	return workers
}

// ListSource is one LIST_N entry from the environment, reported verbatim in
// the statistics file.
type ListSource struct {
	Num string
	URL string
}

// ListSources collects the LIST_N source URLs, ordered by their numeric
// suffix with non-numeric suffixes last.
func ListSources(environ []string) []ListSource {
	var sources []ListSource
	for _, kv := range environ {
		key, value, ok := strings.Cut(kv, "=")
		if !ok || !strings.HasPrefix(key, "LIST_") {
			continue
		}
		sources = append(sources, ListSource{Num: strings.TrimPrefix(key, "LIST_"), URL: value})
	}

	sort.Slice(sources, func(i, j int) bool {
		return listOrder(sources[i].Num) < listOrder(sources[j].Num)
	})
	return sources
}

func listOrder(num string) int {
	if n, err := strconv.Atoi(num); err == nil {
		return n
	}
	return 999
}
