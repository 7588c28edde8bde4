package parser

// Config is the tunable rule set for one vendor's document format. Vendor
// layouts drift; every judgment call the scanner makes is parameterized here
// rather than hard-coded, so a format change is a profile edit, not a
// rewrite.
type Config struct {
	// CodePattern is the token grammar for product codes, matched against
	// whole tokens after trimming punctuation and uppercasing.
	CodePattern string `json:"code_pattern"`

	// AdjacencyWindow is how many lines after a code line the scanner will
	// still accept supporting evidence (description text or a price token)
	// before refusing to promote the bare code into a full record.
	AdjacencyWindow int `json:"adjacency_window"`

	// MinDescriptionWords is the smallest description that counts as
	// evidence a code token heads a real product block.
	MinDescriptionWords int `json:"min_description_words"`

	// CurrencySymbols are the characters that mark a token as a price.
	CurrencySymbols string `json:"currency_symbols"`
}

const (
	// DefaultCodePattern accepts the vendor code shape: 1-4 letters, an
	// optional hyphen, then 2-6 digits (BW-001, A003, TAP-1200).
	DefaultCodePattern = `^[A-Z]{1,4}-?[0-9]{2,6}$`

	defaultAdjacencyWindow     = 3
	defaultMinDescriptionWords = 2
	defaultCurrencySymbols     = "$€£"

	// Code tokens outside these length bounds are never treated as codes,
	// whatever the profile pattern says.
	minCodeLen = 2
	maxCodeLen = 12
)

// DefaultConfig returns the baseline profile used when an upload names no
// vendor profile.
func DefaultConfig() Config {
	return Config{}.withDefaults()
}

func (c Config) withDefaults() Config {
	if c.CodePattern == "" {
		c.CodePattern = DefaultCodePattern
	}
	if c.AdjacencyWindow <= 0 {
		c.AdjacencyWindow = defaultAdjacencyWindow
	}
	if c.MinDescriptionWords <= 0 {
		c.MinDescriptionWords = defaultMinDescriptionWords
	}
	if c.CurrencySymbols == "" {
		c.CurrencySymbols = defaultCurrencySymbols
	}
	return c
}
