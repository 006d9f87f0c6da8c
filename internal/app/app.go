// Package app wires the classification pipeline together and sequences the
// stages of one run.
package app

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/joho/godotenv"

	"geosift/internal/config"
	"geosift/internal/domain"
	"geosift/internal/geoip"
	"geosift/internal/jobs/classify"
	"geosift/internal/report"
	"geosift/internal/support"
)

// Run executes one full multi-country classification pass. Only fatal-class
// failures (missing reference columns, zero countries, unreadable input,
// sequential-fallback failure) are returned; everything else is absorbed as
// log lines and counters.
func Run() error {
	if err := godotenv.Load(); err != nil {
		log.Warn("No .env file found. Falling back to system environment variables.")
	}

	if support.GetEnvBool("DEBUG", false) {
		log.SetLevel(log.DebugLevel)
	}

	inputFlag := flag.String("input", "", "Path to the input address list (overrides ALL_IPS_FROM_LISTS)")
	outputDirFlag := flag.String("output-dir", "", "Directory for output files (overrides OUTPUT_DIR)")
	workersFlag := flag.Int("workers", 0, "Worker count override (overrides NUM_WORKERS)")
	flag.Parse()

	ctx := context.Background()
	defer func() {
		if err := support.CloseRedisClient(); err != nil {
			log.Warn("Error closing redis client", "error", err)
		}
	}()

	log.Info("=== Multi-country IP classification started ===")

	countries, err := config.DetectCountries(os.Environ())
	if err != nil {
		return err
	}
	log.Info("Processing countries", "count", len(countries))

	csvPath := config.CSVPath()
	if err := geoip.EnsureData(ctx, csvPath, config.CSVURL()); err != nil {
		return fmt.Errorf("acquire reference data: %w", err)
	}

	table, err := geoip.Load(csvPath)
	if err != nil {
		return err
	}

	inputPath := resolve(*inputFlag, config.InputPath)
	entries, err := readInputList(inputPath)
	if err != nil {
		return fmt.Errorf("read input list: %w", err)
	}
	log.Info("Loaded input entries", "path", inputPath, "count", len(entries))

	if len(entries) == 0 {
		log.Info("No entries to process. Exiting.")
		return nil
	}

	workers := config.Workers(*workersFlag)
	log.Info("Using worker pool", "workers", workers)

	writer := &report.Writer{Dir: resolve(*outputDirFlag, config.OutputDir)}

	orchestrator := &classify.Orchestrator{
		Source:  table,
		Sink:    writer,
		Workers: workers,
	}
	if path := config.AuditMMDBPath(); path != "" {
		auditor, err := geoip.NewAuditor(path)
		if err != nil {
			log.Warn("Audit database unavailable, skipping cross-checks", "path", path, "error", err)
		} else {
			defer auditor.Close()
			orchestrator.Auditor = auditor
		}
	}

	results, combined, err := orchestrator.Run(countries, entries)
	if err != nil {
		return err
	}

	combinedFile, err := writer.WriteCombined(countries, combined)
	if err != nil {
		log.Error("Failed to write combined file", "error", err)
		combinedFile = ""
	}

	stats := domain.AggregateStats{
		TotalInput:    len(entries),
		Countries:     results,
		CombinedCount: len(combined),
		CombinedFile:  combinedFile,
	}
	if err := writer.WriteStats(stats, config.ListSources(os.Environ())); err != nil {
		log.Error("Failed to write statistics report", "error", err)
	}

	logSummary(stats)

	if !config.KeepGeoIPData() {
		geoip.Cleanup(csvPath)
	}

	log.Info("=== Multi-country IP classification completed ===")
	return nil
}

func logSummary(stats domain.AggregateStats) {
	log.Info("=== Classification results ===",
		"input", stats.TotalInput,
		"countries", len(stats.Countries),
		"combined_unique", stats.CombinedCount,
		"overall_rate_pct", fmt.Sprintf("%.2f", stats.CombinedRate()))

	for i, c := range stats.Countries {
		log.Info("Country summary",
			"name", c.Name, "iso", c.IsoCode,
			"matched", c.MatchedCount(),
			"rate_pct", fmt.Sprintf("%.2f", stats.FilterRate(i)),
			"strategy", c.Strategy)
	}
}

// readInputList loads the address list, one logical entry per line, dropping
// lines that are blank after trimming. Entries keep their raw form; the
// classifier does its own per-entry trimming.
func readInputList(path string) ([]string, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	var entries []string
	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		line := scanner.Text()
		if strings.TrimSpace(line) == "" {
			continue
		}
		entries = append(entries, line)
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return entries, nil
}

func resolve(flagValue string, fromEnv func() string) string {
	if flagValue != "" {
		return flagValue
	}
	return fromEnv()
}
