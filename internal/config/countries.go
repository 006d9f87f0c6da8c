package config

import (
	"errors"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"github.com/charmbracelet/log"

	"geosift/internal/domain"
)

// ErrNoCountries means no usable COUNTRY_ISO_CODE variables were found; there
// is nothing to classify against, so the run aborts.
var ErrNoCountries = errors.New("config: no COUNTRY_ISO_CODE variables found in environment")

// Matches the legacy COUNTRY_ISO_CODE as well as any numbered
// COUNTRY_ISO_CODE_1, COUNTRY_ISO_CODE_15, ... variant.
var isoCodePattern = regexp.MustCompile(`^COUNTRY_ISO_CODE(_)?(\d*)$`)

// DetectCountries scans the environment (as returned by os.Environ) for
// country variable pairs. The legacy unnumbered pair orders first, then the
// numbered ones ascending. An empty ISO value is skipped with a warning;
// a trailing underscore without a number is malformed and skipped.
func DetectCountries(environ []string) ([]domain.CountryConfig, error) {
	env := make(map[string]string, len(environ))
	for _, kv := range environ {
		if key, value, ok := strings.Cut(kv, "="); ok {
			env[key] = value
		}
	}

	countryVars := 0
	for key := range env {
		if strings.HasPrefix(key, "COUNTRY_") {
			countryVars++
		}
	}
	log.Info("Scanning environment for country configuration", "country_vars", countryVars)

	var countries []domain.CountryConfig
	for key, value := range env {
		match := isoCodePattern.FindStringSubmatch(key)
		if match == nil {
			continue
		}

		hasUnderscore := match[1] != ""
		number := match[2]

		var suffix string
		switch {
		case hasUnderscore && number != "":
			suffix = number
		case !hasUnderscore && number == "":
			suffix = "" // legacy unnumbered pair
		default:
			log.Debug("Skipping malformed country variable", "var", key)
			continue
		}

		isoCode := strings.ToUpper(strings.TrimSpace(value))
		if isoCode == "" {
			log.Warn("Empty ISO code found", "var", key)
			continue
		}

		nameVar := "COUNTRY_NAME"
		if suffix != "" {
			nameVar += "_" + suffix
		}
		name := strings.TrimSpace(env[nameVar])
		if name == "" {
			name = "Unknown-" + isoCode
		}

		countries = append(countries, domain.CountryConfig{IsoCode: isoCode, Name: name, Suffix: suffix})
	}

	sort.Slice(countries, func(i, j int) bool {
		return suffixOrder(countries[i].Suffix) < suffixOrder(countries[j].Suffix)
	})

	if len(countries) == 0 {
		log.Error("No country configurations detected",
			"expected", "COUNTRY_ISO_CODE_1=US, COUNTRY_NAME_1=United States")
		return nil, ErrNoCountries
	}

	for _, c := range countries {
		if strings.HasPrefix(c.Name, "Unknown-") {
			log.Warn("Missing country name variable", "iso", c.IsoCode, "suffix", c.Suffix)
		}
		log.Info("Detected country config", "iso", c.IsoCode, "name", c.Name, "suffix", legacyLabel(c.Suffix))
	}

	return countries, nil
}

func suffixOrder(suffix string) int {
	if suffix == "" {
		return -1 // legacy pair first
	}
	n, err := strconv.Atoi(suffix)
	if err != nil {
		return 1 << 30
	}
	return n
}

func legacyLabel(suffix string) string {
	if suffix == "" {
		return "legacy"
	}
	return suffix
}
