package roa

import "cmp"

type maxLengthKind uint8

const (
	// No max length was supplied; semantically equal to the prefix length.
	maxLengthImplicitEqual maxLengthKind = iota
	// A max length was supplied and equals the prefix length. Redundant
	// but valid; ordering treats it the same as the implicit form.
	maxLengthExplicitEqual
	// A max length was supplied and is strictly greater than the prefix
	// length.
	maxLengthExplicit
)

// MaxLength is the tri-state max-length qualifier of a prefix range.
// A supplied max length below the prefix length is never represented;
// NewPrefixRange rejects it.
type MaxLength struct {
	kind maxLengthKind
	// length is meaningful only for the explicit-greater kind.
	length int
}

// Explicit returns the qualifier's max length and true when one was
// supplied strictly greater than the prefix length.
func (m MaxLength) Explicit() (int, bool) {
	if m.kind != maxLengthExplicit {
		return 0, false
	}
	return m.length, true
}

// Compare orders qualifiers. The implicit and explicit equal forms are
// order-equivalent; either sorts before any explicit greater length;
// explicit greater lengths order numerically. Order-equivalence is coarser
// than structural equality: the two equal forms compare as 0 yet remain
// distinguishable through PrefixRange.HasExplicitEqualMaxLength.
func (m MaxLength) Compare(o MaxLength) int {
	return cmpOr(
		cmp.Compare(m.rank(), o.rank()),
		cmp.Compare(m.sortLength(), o.sortLength()),
	)
}

func (m MaxLength) rank() int {
	if m.kind == maxLengthExplicit {
		return 1
	}
	return 0
}

func (m MaxLength) sortLength() int {
	if m.kind == maxLengthExplicit {
		return m.length
	}
	return 0
}
