package report

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"geosift/internal/config"
	"geosift/internal/domain"
)

func statsWith(total int, matched ...int) domain.AggregateStats {
	stats := domain.AggregateStats{TotalInput: total}
	for i, m := range matched {
		entries := make([]string, m)
		for j := range entries {
			entries[j] = "10.0.0.1"
		}
		stats.Countries = append(stats.Countries, domain.ClassificationResult{
			IsoCode: string(rune('A'+i)) + "X",
			Name:    "Country" + string(rune('A'+i)),
			Matched: entries,
		})
	}
	return stats
}

func TestMermaidPieChartNoInput(t *testing.T) {
	chart := MermaidPieChart(domain.AggregateStats{})
	if !strings.Contains(chart, "No IPs processed") {
		t.Fatalf("chart = %q, want the empty-input variant", chart)
	}
}

func TestMermaidPieChartBuckets(t *testing.T) {
	chart := MermaidPieChart(statsWith(1000, 500, 250))

	if !strings.Contains(chart, `"CountryA" : 50.0`) {
		t.Errorf("chart missing CountryA slice:\n%s", chart)
	}
	if !strings.Contains(chart, `"CountryB" : 25.0`) {
		t.Errorf("chart missing CountryB slice:\n%s", chart)
	}
	if !strings.Contains(chart, `"Other/Unfiltered" : 25.0`) {
		t.Errorf("chart missing Other/Unfiltered remainder:\n%s", chart)
	}
}

func TestMermaidPieChartBelowThreshold(t *testing.T) {
	// No country reaches the 0.1% visibility threshold; the whole chart
	// collapses into the remainder slice.
	chart := MermaidPieChart(statsWith(100000, 1))
	if strings.Contains(chart, "CountryA") {
		t.Errorf("sub-threshold country should be hidden:\n%s", chart)
	}
	if !strings.Contains(chart, `"Other/Unfiltered" : 100.0`) {
		t.Errorf("remainder should absorb hidden slices:\n%s", chart)
	}
}

func TestMermaidPieChartTopNCap(t *testing.T) {
	matched := make([]int, 25)
	for i := range matched {
		matched[i] = 1000 - i // all above threshold, strictly ordered
	}
	chart := MermaidPieChart(statsWith(100000, matched...))

	lines := strings.Split(chart, "\n")
	slices := 0
	for _, line := range lines {
		if strings.HasPrefix(line, `"Country`) {
			slices++
		}
	}
	if slices != pieTopN {
		t.Fatalf("chart has %d country slices, want %d", slices, pieTopN)
	}
}

func TestComma(t *testing.T) {
	cases := map[int]string{
		0:       "0",
		999:     "999",
		1000:    "1,000",
		1234567: "1,234,567",
	}
	for n, want := range cases {
		if got := comma(n); got != want {
			t.Errorf("comma(%d) = %q, want %q", n, got, want)
		}
	}
}

func TestWriteStats(t *testing.T) {
	w := &Writer{Dir: t.TempDir()}
	stats := statsWith(100, 40)
	stats.Countries[0].OutputFile = "aggregated-ax-only.txt"
	stats.Countries[0].Strategy = domain.StrategyParallel
	stats.CombinedCount = 40
	stats.CombinedFile = "aggregated-ax-combined.txt"

	sources := []config.ListSource{{Num: "1", URL: "https://example.com/list.txt"}}
	if err := w.WriteStats(stats, sources); err != nil {
		t.Fatalf("WriteStats: %v", err)
	}

	data, err := os.ReadFile(filepath.Join(w.Dir, "stats.md"))
	if err != nil {
		t.Fatalf("read stats.md: %v", err)
	}
	content := string(data)

	for _, want := range []string{
		"# Multi-Country IP Aggregation Statistics",
		"```mermaid",
		"| CountryA | AX | 0 | 0 | 40 | 40.00% | parallel | `aggregated-ax-only.txt` |",
		"- **Total Input IPs:** 100",
		"- **Source 1:** https://example.com/list.txt",
	} {
		if !strings.Contains(content, want) {
			t.Errorf("stats.md missing %q:\n%s", want, content)
		}
	}
}

func TestWriteStatsMarksFailedOutput(t *testing.T) {
	w := &Writer{Dir: t.TempDir()}
	stats := statsWith(10, 5) // OutputFile left empty

	if err := w.WriteStats(stats, nil); err != nil {
		t.Fatalf("WriteStats: %v", err)
	}
	data, _ := os.ReadFile(filepath.Join(w.Dir, "stats.md"))
	if !strings.Contains(string(data), "❌ Failed") {
		t.Error("stats.md should mark missing output files as failed")
	}
}
