// Package roa models Route Origin Authorization prefix ranges and their
// canonical ordered form.
//
// A prefix range is an IP network prefix plus a tri-state max-length
// qualifier. Ranges carry a total order (all IPv4 before all IPv6, then
// network address, prefix length, qualifier) and a canonical text rendering.
// Input arrives either as text lines ("10.0.0.0/8" or "10.0.0.0/8-12") or as
// a DER-encoded, CMS-wrapped ROA object; both decode paths share one
// construction rule and feed the same ordered, deduplicating Set.
package roa

import (
	"bufio"
	"cmp"
	"fmt"
	"io"
	"net/netip"
	"strconv"
	"strings"
)

// PrefixRange is one authorized prefix plus its max-length qualifier.
// The network prefix is stored normalized (host bits zeroed). Records are
// immutable once constructed.
type PrefixRange struct {
	prefix netip.Prefix
	max    MaxLength
}

// NewPrefixRange builds a record from a network prefix and an optional max
// length. Pass haveMaxLength=false when no max length was supplied.
//
// The qualifier follows from the comparison against the prefix length:
// absent means implicit-equal, equal means explicit-equal, greater means
// explicit. A supplied max length below the prefix length fails with
// KindInvalidRange; one outside the address family's range fails with
// KindParse.
func NewPrefixRange(prefix netip.Prefix, maxLength int, haveMaxLength bool) (PrefixRange, error) {
	if !prefix.IsValid() {
		return PrefixRange{}, newError(KindParse, "invalid prefix")
	}
	if haveMaxLength && (maxLength < 0 || maxLength > prefix.Addr().BitLen()) {
		return PrefixRange{}, newError(KindParse,
			fmt.Sprintf("max length %d out of range for %s", maxLength, prefix))
	}
	return newPrefixRange(prefix, maxLength, haveMaxLength)
}

// newPrefixRange is the single canonicalization rule shared verbatim by the
// text and binary decoders. Callers have already checked maxLength against
// the address family's valid range.
func newPrefixRange(prefix netip.Prefix, maxLength int, haveMaxLength bool) (PrefixRange, error) {
	prefix = prefix.Masked()
	if !haveMaxLength {
		return PrefixRange{prefix: prefix, max: MaxLength{kind: maxLengthImplicitEqual}}, nil
	}
	switch {
	case maxLength < prefix.Bits():
		return PrefixRange{}, newError(KindInvalidRange,
			fmt.Sprintf("got max_length (%d) less than prefix length (%d)", maxLength, prefix.Bits()))
	case maxLength == prefix.Bits():
		return PrefixRange{prefix: prefix, max: MaxLength{kind: maxLengthExplicitEqual}}, nil
	default:
		return PrefixRange{prefix: prefix, max: MaxLength{kind: maxLengthExplicit, length: maxLength}}, nil
	}
}

// ParsePrefixRange decodes one text line: PREFIX or PREFIX-MAXLEN, split at
// the first '-' (prefix literals never contain one). The prefix may be IPv4
// or IPv6; the max length must be a non-negative integer within the
// family's prefix-length range.
func ParsePrefixRange(s string) (PrefixRange, error) {
	prefixText, maxText, haveMax := strings.Cut(s, "-")
	prefix, err := netip.ParsePrefix(prefixText)
	if err != nil {
		return PrefixRange{}, wrapError(KindParse, fmt.Sprintf("invalid prefix %q", prefixText), err)
	}
	if !haveMax {
		return NewPrefixRange(prefix, 0, false)
	}
	maxLength, err := strconv.Atoi(maxText)
	if err != nil {
		return PrefixRange{}, wrapError(KindParse, fmt.Sprintf("invalid max length %q", maxText), err)
	}
	return NewPrefixRange(prefix, maxLength, true)
}

// Prefix returns the normalized network prefix.
func (r PrefixRange) Prefix() netip.Prefix { return r.prefix }

// MaxLength returns the record's qualifier.
func (r PrefixRange) MaxLength() MaxLength { return r.max }

// HasExplicitEqualMaxLength reports whether this record's own stored
// qualifier is the redundant explicit-equal form. Ordering never consults
// this; it feeds the redundancy diagnostic only.
func (r PrefixRange) HasExplicitEqualMaxLength() bool {
	return r.max.kind == maxLengthExplicitEqual
}

// Compare implements the canonical total order: every IPv4 record before
// every IPv6 record, then network address, then prefix length, then
// qualifier. Records comparing as 0 are duplicates for canonicalization
// purposes even when their qualifiers differ structurally.
func (r PrefixRange) Compare(o PrefixRange) int {
	return cmpOr(
		cmp.Compare(r.prefix.Addr().BitLen(), o.prefix.Addr().BitLen()),
		r.prefix.Addr().Compare(o.prefix.Addr()),
		cmp.Compare(r.prefix.Bits(), o.prefix.Bits()),
		r.max.Compare(o.max),
	)
}

// String renders the canonical text form: the bare prefix for both equal
// qualifiers, "prefix-maxlen" for an explicit greater max length.
func (r PrefixRange) String() string {
	if l, ok := r.max.Explicit(); ok {
		return fmt.Sprintf("%s-%d", r.prefix, l)
	}
	return r.prefix.String()
}

// ReadText decodes one record per line from r, in input order, into a Set.
// Trailing whitespace is trimmed from each line. The first line that fails
// to decode aborts the whole read; no line is skipped.
func ReadText(r io.Reader) (*Set, error) {
	set := NewSet()
	sc := bufio.NewScanner(r)
	line := 0
	for sc.Scan() {
		text := strings.TrimRight(sc.Text(), " \t\r")
		rec, err := ParsePrefixRange(text)
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", line+1, err)
		}
		set.Add(rec, line)
		line++
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("roa: read input: %w", err)
	}
	return set, nil
}
