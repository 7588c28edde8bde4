package constants

import (
	"strings"

	"github.com/agext/levenshtein"
)

type Category string

const (
	Appliances Category = "Appliances"
	Bathroom   Category = "Bathroom"
	Doors      Category = "Doors"
	Electrical Category = "Electrical"
	Flooring   Category = "Flooring"
	Kitchen    Category = "Kitchen"
	Lighting   Category = "Lighting"
	Paint      Category = "Paint"
	Tapware    Category = "Tapware"
	Windows    Category = "Windows"
	Other      Category = "Other"
)

var allCategories = []Category{
	Appliances,
	Bathroom,
	Doors,
	Electrical,
	Flooring,
	Kitchen,
	Lighting,
	Paint,
	Tapware,
	Windows,
	Other,
}

// prefixes maps each category to its code namespace. The catch-all prefix
// absorbs unmapped labels so every import can be coded.
var prefixes = map[Category]string{
	Appliances: "A",
	Bathroom:   "B",
	Doors:      "D",
	Electrical: "E",
	Flooring:   "F",
	Kitchen:    "K",
	Lighting:   "L",
	Paint:      "P",
	Tapware:    "T",
	Windows:    "W",
	Other:      "X",
}

// CatchAllPrefix is the namespace for labels that cannot be canonicalized.
const CatchAllPrefix = "X"

// maxLabelDistance is how far (edit distance) a label may be from a category
// name and still canonicalize to it. Tolerates typos like "Kitchn".
const maxLabelDistance = 2

func AsStringSlice() []string {
	result := make([]string, len(allCategories))
	for i, cat := range allCategories {
		result[i] = string(cat)
	}
	return result
}

// PrefixFor resolves a free-text category label to its code prefix.
// Empty or unrecognized labels map to the catch-all prefix.
func PrefixFor(label string) string {
	cat, _ := Canonicalize(label)
	return prefixes[cat]
}

// Canonicalize maps a free-text category label to a known category.
// The bool reports whether the label actually resolved; unresolved labels
// return Other.
func Canonicalize(input string) (Category, bool) {
	if strings.TrimSpace(input) == "" {
		return Other, false
	}

	normalized := strings.ToLower(strings.TrimSpace(input))

	// synonyms map
	synonyms := map[string]Category{
		"appliance":  Appliances,
		"whitegoods": Appliances,
		"bath":       Bathroom,
		"bathrooms":  Bathroom,
		"ensuite":    Bathroom,
		"door":       Doors,
		"tiles":      Flooring,
		"tiling":     Flooring,
		"floors":     Flooring,
		"kitchens":   Kitchen,
		"lights":     Lighting,
		"painting":   Paint,
		"taps":       Tapware,
		"mixers":     Tapware,
		"window":     Windows,
		"glazing":    Windows,
	}

	if cat, ok := synonyms[normalized]; ok {
		return cat, true
	}

	// check if it matches any category string
	for _, cat := range allCategories {
		if normalized == strings.ToLower(string(cat)) {
			return cat, true
		}
	}

	// fuzzy match for operator typos
	params := levenshtein.NewParams()
	best := Other
	bestDist := maxLabelDistance + 1
	for _, cat := range allCategories {
		if cat == Other {
			continue
		}
		d := levenshtein.Distance(normalized, strings.ToLower(string(cat)), params)
		if d < bestDist {
			best = cat
			bestDist = d
		}
	}
	if bestDist <= maxLabelDistance {
		return best, true
	}

	return Other, false
}
