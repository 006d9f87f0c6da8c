package geoip

import (
	"fmt"
	"net"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/oschwald/geoip2-golang"

	"geosift/internal/domain"
)

// auditSampleSize caps how many matched entries per country are cross-checked
// against the mmdb; the check is a data-quality probe, not a full validation.
const auditSampleSize = 25

// Auditor cross-checks classification results against an independent
// GeoLite2-Country mmdb. Disagreements between the CSV snapshot and the mmdb
// are logged as data-quality warnings, never treated as failures.
type Auditor struct {
	reader *geoip2.Reader
}

// NewAuditor opens the mmdb at path.
func NewAuditor(path string) (*Auditor, error) {
	reader, err := geoip2.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open audit mmdb: %w", err)
	}
	return &Auditor{reader: reader}, nil
}

func (a *Auditor) Close() error {
	return a.reader.Close()
}

// Audit samples matched entries and compares their mmdb country against the
// country they were classified into.
func (a *Auditor) Audit(country domain.CountryConfig, matched []string) {
	sample := matched
	if len(sample) > auditSampleSize {
		sample = sample[:auditSampleSize]
	}

	checked, mismatched := 0, 0
	for _, entry := range sample {
		ip := parseEntryIP(entry)
		if ip == nil {
			continue
		}

		record, err := a.reader.Country(ip)
		if err != nil || record.Country.IsoCode == "" {
			continue
		}

		checked++
		if record.Country.IsoCode != country.IsoCode {
			mismatched++
			log.Warn("Audit mismatch",
				"entry", entry, "classified", country.IsoCode, "mmdb", record.Country.IsoCode)
		}
	}

	if checked > 0 {
		log.Info("Audit sample checked",
			"iso", country.IsoCode, "checked", checked, "mismatched", mismatched)
	}
}

func parseEntryIP(entry string) net.IP {
	if strings.Contains(entry, "/") {
		_, ipnet, err := net.ParseCIDR(entry)
		if err != nil {
			return nil
		}
		return ipnet.IP
	}
	return net.ParseIP(entry)
}
