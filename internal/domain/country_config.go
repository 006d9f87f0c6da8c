package domain

// CountryConfig is one target country resolved from the environment. Identity
// is the ISO code; the display name is descriptive only.
type CountryConfig struct {
	// IsoCode is trimmed and upper-cased at construction (e.g. "US").
	IsoCode string

	// Name is the display name, or a synthesized "Unknown-<ISO>" placeholder
	// when the matching COUNTRY_NAME variable is absent.
	Name string

	// Suffix is the numeric suffix of the environment variable pair this
	// config came from ("" for the legacy unnumbered pair).
	Suffix string
}
