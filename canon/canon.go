// Package canon runs the canonicalization pipeline end to end: decode raw
// input, fold it into the ordered collection, render the listing, and
// reduce the verification outcome into a boundary Result.
package canon

import (
	"bytes"
	"fmt"

	"xdao.co/roasort/contentid"
	"xdao.co/roasort/listing"
	"xdao.co/roasort/model"
	"xdao.co/roasort/roa"
)

// ParseKind maps a user-supplied input kind name.
func ParseKind(s string) (model.InputKind, error) {
	switch k := model.InputKind(s); k {
	case model.KindText, model.KindROA:
		return k, nil
	}
	return "", fmt.Errorf("canon: unknown input kind %q", s)
}

// Run canonicalizes raw input bytes of the given kind.
//
// A decode failure aborts the whole run with no result; diagnostics do
// not. The result always carries the complete listing, both content
// identifiers, and the reduced diagnostic message.
func Run(kind model.InputKind, data []byte) (model.Result, error) {
	var (
		set  *roa.Set
		asID *uint32
	)
	switch kind {
	case model.KindText:
		s, err := roa.ReadText(bytes.NewReader(data))
		if err != nil {
			return model.Result{}, err
		}
		set = s
	case model.KindROA:
		att, err := roa.ReadROA(data)
		if err != nil {
			return model.Result{}, err
		}
		set = att.Prefixes
		id := att.ASID
		asID = &id
	default:
		return model.Result{}, fmt.Errorf("canon: unknown input kind %q", kind)
	}

	lines, v := listing.Build(set)
	listingCID, err := listing.CID(lines)
	if err != nil {
		return model.Result{}, err
	}
	sourceCID, err := contentid.SumString(data)
	if err != nil {
		return model.Result{}, err
	}

	res := model.Result{
		Lines:              lines,
		Misordered:         v.Misordered,
		RedundantMaxLength: v.RedundantMaxLength,
		ListingCID:         listingCID.String(),
		SourceCID:          sourceCID,
		ASID:               asID,
	}
	if err := v.Err(); err != nil {
		res.Diagnostic = err.Error()
	}
	return res, nil
}
