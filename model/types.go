package model

// InputKind selects how raw input bytes are decoded.
type InputKind string

const (
	// KindText is the line-oriented form, one prefix range per line.
	KindText InputKind = "text"
	// KindROA is the DER-encoded, CMS-wrapped signed object form.
	KindROA InputKind = "roa"
)

// Result is the outcome of one canonicalization run.
//
// The listing is always complete: diagnostics report on the input's shape,
// never suppress output lines.
type Result struct {
	// Lines is the canonical listing, in total order, one line per
	// equivalence class.
	Lines []string `json:"lines"`

	// Misordered reports that the input was not already in canonical order.
	Misordered bool `json:"misordered"`

	// RedundantMaxLength lists each retained entry whose max length was
	// given explicitly equal to its prefix length, in canonical order.
	RedundantMaxLength []string `json:"redundantMaxLength,omitempty"`

	// Diagnostic is the aggregate failure message, empty when clean. When
	// several conditions fired, the one raised last in canonical order is
	// the one reported.
	Diagnostic string `json:"diagnostic,omitempty"`

	// ListingCID identifies the canonical listing bytes.
	ListingCID string `json:"listingCID"`

	// SourceCID identifies the raw input bytes as received.
	SourceCID string `json:"sourceCID"`

	// ASID is the authorizing autonomous system number, set for signed
	// object input only.
	ASID *uint32 `json:"asID,omitempty"`
}

// Clean reports whether the run produced no diagnostics.
func (r Result) Clean() bool {
	return !r.Misordered && len(r.RedundantMaxLength) == 0
}
