package report

import (
	"os"
	"path/filepath"
	"testing"

	"geosift/internal/domain"
)

func TestWriteCountry(t *testing.T) {
	w := &Writer{Dir: filepath.Join(t.TempDir(), "nested")}

	filename, err := w.WriteCountry(domain.CountryConfig{IsoCode: "US"}, []string{"10.0.0.1", "10.0.0.0/24"})
	if err != nil {
		t.Fatalf("WriteCountry: %v", err)
	}
	if filename != "aggregated-us-only.txt" {
		t.Errorf("filename = %q, want aggregated-us-only.txt", filename)
	}

	data, err := os.ReadFile(filepath.Join(w.Dir, filename))
	if err != nil {
		t.Fatalf("read output: %v", err)
	}
	if string(data) != "10.0.0.1\n10.0.0.0/24\n" {
		t.Errorf("content = %q", string(data))
	}
}

func TestWriteCombinedSortsAndNames(t *testing.T) {
	w := &Writer{Dir: t.TempDir()}
	countries := []domain.CountryConfig{{IsoCode: "US"}, {IsoCode: "CA"}}

	combined := map[string]struct{}{
		"192.0.2.1": {},
		"10.0.0.1":  {},
		"172.16.0.1": {},
	}

	filename, err := w.WriteCombined(countries, combined)
	if err != nil {
		t.Fatalf("WriteCombined: %v", err)
	}
	if filename != "aggregated-us-ca-combined.txt" {
		t.Errorf("filename = %q", filename)
	}

	data, _ := os.ReadFile(filepath.Join(w.Dir, filename))
	if string(data) != "10.0.0.1\n172.16.0.1\n192.0.2.1\n" {
		t.Errorf("combined output not sorted: %q", string(data))
	}
}

func TestCombinedFileNameManyCountries(t *testing.T) {
	countries := make([]domain.CountryConfig, 5)
	for i := range countries {
		countries[i] = domain.CountryConfig{IsoCode: "C" + string(rune('0'+i))}
	}
	if got := combinedFileName(countries); got != "aggregated-multi-5countries-combined.txt" {
		t.Errorf("combinedFileName = %q", got)
	}
}
