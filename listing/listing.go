// Package listing renders canonical prefix listings and verifies inputs
// against them.
//
// A listing is the text product of canonicalization: one rendered record per
// line, in total order, one line per equivalence class, every line
// newline-terminated. Build produces a listing from a decoded Set together
// with the verification outcome; Canonicalize gates arbitrary bytes on being
// exactly such a product.
package listing

import (
	"errors"
	"fmt"
	"strings"

	"github.com/ipfs/go-cid"

	"xdao.co/roasort/contentid"
	"xdao.co/roasort/roa"
)

// ErrNotCanonical reports bytes that are not a canonical listing.
var ErrNotCanonical = errors.New("listing: not canonical")

// Verification is the outcome of checking a set against its input order.
type Verification struct {
	// Misordered is true when some record's original input position differs
	// from its canonical position.
	Misordered bool

	// RedundantMaxLength holds the rendered form of every retained record
	// whose max length was given explicitly equal to its prefix length, in
	// canonical order.
	RedundantMaxLength []string

	last string
}

// Clean reports whether no diagnostic fired.
func (v Verification) Clean() bool {
	return !v.Misordered && len(v.RedundantMaxLength) == 0
}

// Err returns the aggregate diagnostic, or nil for a clean verification.
// When several conditions fired, the one raised last in canonical order
// wins; the caller gets a single one-line failure report.
func (v Verification) Err() error {
	if v.last == "" {
		return nil
	}
	return errors.New(v.last)
}

// Build walks the set once in canonical order, rendering each record and
// checking it against its provenance index. The listing is complete even
// when diagnostics fire.
func Build(set *roa.Set) ([]string, Verification) {
	var v Verification
	entries := set.Entries()
	lines := make([]string, 0, len(entries))
	for i, e := range entries {
		if e.Index != i {
			v.Misordered = true
			v.last = "input was mis-ordered"
		}
		if e.Record.HasExplicitEqualMaxLength() {
			v.RedundantMaxLength = append(v.RedundantMaxLength, e.Record.String())
			v.last = fmt.Sprintf("item %s has unnecessarily specified max_length", e.Record)
		}
		lines = append(lines, e.Record.String())
	}
	return lines, v
}

// Bytes renders lines in the listing byte form. The empty listing is zero
// bytes.
func Bytes(lines []string) []byte {
	if len(lines) == 0 {
		return nil
	}
	return []byte(strings.Join(lines, "\n") + "\n")
}

// CID is the content identifier of the listing's byte form.
func CID(lines []string) (cid.Cid, error) {
	return contentid.Sum(Bytes(lines))
}

// Canonicalize parses data as a canonical listing and returns its records.
//
// The check is strict and byte-faithful: every line must re-render to
// itself, lines must be strictly ascending, and the last line must be
// newline-terminated. Zero-length data is the empty listing. Anything else
// fails with ErrNotCanonical.
func Canonicalize(data []byte) ([]roa.PrefixRange, error) {
	if len(data) == 0 {
		return nil, nil
	}
	if data[len(data)-1] != '\n' {
		return nil, fmt.Errorf("%w: missing final newline", ErrNotCanonical)
	}
	lines := strings.Split(strings.TrimSuffix(string(data), "\n"), "\n")
	recs := make([]roa.PrefixRange, len(lines))
	for i, line := range lines {
		rec, err := roa.ParsePrefixRange(line)
		if err != nil {
			return nil, fmt.Errorf("%w: line %d: %v", ErrNotCanonical, i+1, err)
		}
		if rec.String() != line {
			return nil, fmt.Errorf("%w: line %d is not in canonical form", ErrNotCanonical, i+1)
		}
		if i > 0 && recs[i-1].Compare(rec) >= 0 {
			return nil, fmt.Errorf("%w: line %d out of order", ErrNotCanonical, i+1)
		}
		recs[i] = rec
	}
	return recs, nil
}
