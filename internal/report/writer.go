// Package report is the result sink: per-country list files, the combined
// deduplicated file, and the Markdown statistics report.
package report

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/charmbracelet/log"

	"geosift/internal/domain"
)

// Writer persists classification output below Dir.
type Writer struct {
	Dir string
}

// WriteCountry writes one country's matched entries, one per line, and
// returns the file name it used.
func (w *Writer) WriteCountry(country domain.CountryConfig, matched []string) (string, error) {
	filename := fmt.Sprintf("aggregated-%s-only.txt", strings.ToLower(country.IsoCode))
	if err := w.writeLines(filename, matched); err != nil {
		return "", err
	}
	log.Info("Written country output", "file", filename, "entries", len(matched))
	return filename, nil
}

// WriteCombined writes the sorted union of all countries' matches and
// returns the file name. Sorting is lexicographic for determinism; the
// insertion order of the set is never relied on.
func (w *Writer) WriteCombined(countries []domain.CountryConfig, combined map[string]struct{}) (string, error) {
	entries := make([]string, 0, len(combined))
	for entry := range combined {
		entries = append(entries, entry)
	}
	sort.Strings(entries)

	filename := combinedFileName(countries)
	if err := w.writeLines(filename, entries); err != nil {
		return "", err
	}
	log.Info("Written combined output", "file", filename, "unique_entries", len(entries))
	return filename, nil
}

func combinedFileName(countries []domain.CountryConfig) string {
	if len(countries) <= 3 {
		codes := make([]string, 0, len(countries))
		for _, c := range countries {
			codes = append(codes, strings.ToLower(c.IsoCode))
		}
		return fmt.Sprintf("aggregated-%s-combined.txt", strings.Join(codes, "-"))
	}
	return fmt.Sprintf("aggregated-multi-%dcountries-combined.txt", len(countries))
}

func (w *Writer) writeLines(filename string, lines []string) error {
	if err := os.MkdirAll(w.Dir, 0o755); err != nil {
		return fmt.Errorf("create output dir: %w", err)
	}

	path := filepath.Join(w.Dir, filename)
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	defer file.Close()

	buf := bufio.NewWriter(file)
	for _, line := range lines {
		if _, err := fmt.Fprintln(buf, line); err != nil {
			return fmt.Errorf("write %s: %w", path, err)
		}
	}
	if err := buf.Flush(); err != nil {
		return fmt.Errorf("flush %s: %w", path, err)
	}
	return nil
}
