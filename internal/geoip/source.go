// Package geoip acquires and serves the reference table of (network, country)
// pairs that classification runs against.
package geoip

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/log"

	"geosift/internal/domain"
)

// ErrMissingNetworkColumn means the reference CSV lacks the one column the
// pipeline cannot work without. This is a fatal precondition, not repairable.
var ErrMissingNetworkColumn = errors.New("geoip: reference CSV missing required 'network' column")

type row struct {
	network     string
	isoCode     string
	countryName string
}

// Table is the loaded reference dataset. Read-only after Load.
type Table struct {
	rows []row
}

// Load reads the reference CSV and asserts its required columns. Rows with an
// empty network cell are skipped; the optional country columns default to
// empty strings when absent.
func Load(path string) (*Table, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open reference CSV: %w", err)
	}
	defer file.Close()

	reader := csv.NewReader(file)
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("read reference CSV header: %w", err)
	}

	columns := make(map[string]int, len(header))
	for i, name := range header {
		columns[strings.TrimSpace(name)] = i
	}

	networkCol, ok := columns["network"]
	if !ok {
		log.Error("Reference CSV missing 'network' column", "columns", strings.Join(header, ","))
		return nil, ErrMissingNetworkColumn
	}
	isoCol, hasIso := columns["country_iso_code"]
	nameCol, hasName := columns["country_name"]

	table := &Table{}
	for {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read reference CSV: %w", err)
		}

		r := row{network: field(record, networkCol)}
		if r.network == "" {
			continue
		}
		if hasIso {
			r.isoCode = field(record, isoCol)
		}
		if hasName {
			r.countryName = field(record, nameCol)
		}
		table.rows = append(table.rows, r)
	}

	log.Info("Reference database loaded", "path", path, "entries", len(table.rows))
	return table, nil
}

func field(record []string, i int) string {
	if i < 0 || i >= len(record) {
		return ""
	}
	return strings.TrimSpace(record[i])
}

// Len returns the number of usable reference rows.
func (t *Table) Len() int {
	return len(t.rows)
}

// NetworksFor returns the raw CIDR strings whose row matches the country by
// ISO code or by display name. Duplicate ownership across rows is expected
// input noise and passed through untouched.
func (t *Table) NetworksFor(country domain.CountryConfig) []string {
	var networks []string
	for _, r := range t.rows {
		if r.isoCode == country.IsoCode || r.countryName == country.Name {
			networks = append(networks, r.network)
		}
	}
	return networks
}
