package entity

// ExtractedRecord is one candidate product entry parsed from a vendor
// document. Code is the vendor's own code token, not a catalog code.
// Optional fields are nil when the document did not provide them.
type ExtractedRecord struct {
	Code                    string  `json:"code"`
	ManufacturerDescription string  `json:"manufacturer_description"`
	Price                   *string `json:"price,omitempty"`
	ImageURL                *string `json:"image_url,omitempty"`
	Notes                   *string `json:"notes,omitempty"`
}

// ExtractionResult is the parser's output for one document. Records holds
// promoted entries in first-appearance order; AllCodes holds every
// code-grammar token observed, also in first-appearance order, so the
// selection path can match codes that never formed a full entry.
type ExtractionResult struct {
	PageCount int               `json:"page_count"`
	Records   []ExtractedRecord `json:"records"`
	AllCodes  []string          `json:"all_codes"`
}

// AmbiguousCodes returns the codes seen in the document that did not promote
// to a record, in first-appearance order.
func (r *ExtractionResult) AmbiguousCodes() []string {
	promoted := make(map[string]struct{}, len(r.Records))
	for _, rec := range r.Records {
		promoted[rec.Code] = struct{}{}
	}
	var out []string
	for _, code := range r.AllCodes {
		if _, ok := promoted[code]; !ok {
			out = append(out, code)
		}
	}
	return out
}
