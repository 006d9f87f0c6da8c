package report

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/log"

	"geosift/internal/config"
	"geosift/internal/domain"
)

const (
	statsFileName = "stats.md"

	// pieTopN caps the chart at the countries with the highest filter rates;
	// the remainder is grouped under Other/Unfiltered.
	pieTopN = 19

	// pieMinRate hides slices below 0.1% so the chart stays readable.
	pieMinRate = 0.1
)

// WriteStats renders the Markdown statistics report including the Mermaid
// pie chart, the per-country table and the configured list sources.
func (w *Writer) WriteStats(stats domain.AggregateStats, sources []config.ListSource) error {
	var b strings.Builder

	b.WriteString("# Multi-Country IP Aggregation Statistics\n\n")
	fmt.Fprintf(&b, "**Last Updated:** %s\n\n", time.Now().UTC().Format("2006-01-02 15:04:05 UTC"))

	b.WriteString("## 📈 Country Distribution\n\n")
	b.WriteString(MermaidPieChart(stats))
	b.WriteString("\n\n")

	b.WriteString("## Overall Summary\n\n")
	fmt.Fprintf(&b, "- **Total Input IPs:** %s\n", comma(stats.TotalInput))
	fmt.Fprintf(&b, "- **Countries Processed:** %d\n", len(stats.Countries))
	fmt.Fprintf(&b, "- **Combined Unique IPs:** %s\n", comma(stats.CombinedCount))
	if stats.CombinedFile != "" {
		fmt.Fprintf(&b, "- **Combined Output File:** `%s`\n", stats.CombinedFile)
	}
	fmt.Fprintf(&b, "- **Overall Filter Rate:** %.2f%%\n\n", stats.CombinedRate())

	b.WriteString("## Per-Country Results\n\n")
	b.WriteString("| Country | Code | Networks Found | Networks Optimized | IPs Matched | Filter Rate | Strategy | Output File |\n")
	b.WriteString("|---------|------|----------------|--------------------|-----------|-----------|----------|-----------|\n")
	for i, c := range stats.Countries {
		outputFile := "❌ Failed"
		if c.OutputFile != "" {
			outputFile = c.OutputFile
		}
		fmt.Fprintf(&b, "| %s | %s | %s | %s | %s | %.2f%% | %s | `%s` |\n",
			c.Name, c.IsoCode,
			comma(c.NetworksFound), comma(c.NetworksOptimized), comma(c.MatchedCount()),
			stats.FilterRate(i), c.Strategy, outputFile)
	}
	b.WriteString("\n")

	b.WriteString("## IP Sources\n\n")
	for _, src := range sources {
		fmt.Fprintf(&b, "- **Source %s:** %s\n", src.Num, src.URL)
	}
	b.WriteString("\n")

	b.WriteString("## Configuration Details\n")

	path := filepath.Join(w.Dir, statsFileName)
	if err := os.MkdirAll(w.Dir, 0o755); err != nil {
		return fmt.Errorf("create output dir: %w", err)
	}
	if err := os.WriteFile(path, []byte(b.String()), 0o644); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}

	log.Info("Statistics report written", "path", path)
	return nil
}

// MermaidPieChart renders the country distribution as a Mermaid pie chart:
// the top countries by filter rate, slices under the visibility threshold
// dropped, and everything else grouped as Other/Unfiltered.
func MermaidPieChart(stats domain.AggregateStats) string {
	if stats.TotalInput == 0 {
		return "```mermaid\npie title No IPs processed\n\"No Data\" : 100\n```"
	}

	type slice struct {
		name string
		rate float64
	}
	slices := make([]slice, 0, len(stats.Countries))
	for i, c := range stats.Countries {
		slices = append(slices, slice{name: c.Name, rate: stats.FilterRate(i)})
	}
	sort.SliceStable(slices, func(i, j int) bool {
		return slices[i].rate > slices[j].rate
	})

	top := slices
	if len(top) > pieTopN {
		top = top[:pieTopN]
	}

	var entries []string
	var topRateSum float64
	for _, s := range top {
		if s.rate >= pieMinRate {
			entries = append(entries, fmt.Sprintf("%q : %.1f", s.name, s.rate))
			topRateSum += s.rate
		}
	}

	if other := 100 - topRateSum; other >= pieMinRate {
		entries = append(entries, fmt.Sprintf("%q : %.1f", "Other/Unfiltered", other))
	}

	if len(entries) == 0 {
		return "```mermaid\n" +
			"pie showData title IP Blocklist Distribution by Country\n" +
			"\"No significant data\" : 100\n" +
			"```"
	}

	return "```mermaid\n" +
		"pie showData title IP Blocklist Distribution by Country\n" +
		strings.Join(entries, "\n") +
		"\n```"
}

// comma formats n with thousands separators for the Markdown report.
func comma(n int) string {
	s := strconv.Itoa(n)
	if n < 0 {
		return s
	}
	var parts []string
	for len(s) > 3 {
		parts = append([]string{s[len(s)-3:]}, parts...)
		s = s[:len(s)-3]
	}
	parts = append([]string{s}, parts...)
	return strings.Join(parts, ",")
}
