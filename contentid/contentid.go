// Package contentid derives the content identifiers used throughout roasort:
// CIDv1 with the raw multicodec over a sha2-256 multihash. Every archived
// artifact and every canonical listing is addressed this way.
package contentid

import (
	"fmt"

	"github.com/ipfs/go-cid"
	"github.com/multiformats/go-multihash"
)

// Sum returns the CIDv1 (raw + sha2-256) of data.
func Sum(data []byte) (cid.Cid, error) {
	sum, err := multihash.Sum(data, multihash.SHA2_256, -1)
	if err != nil {
		return cid.Undef, fmt.Errorf("contentid: hash: %w", err)
	}
	return cid.NewCidV1(cid.Raw, sum), nil
}

// SumString is Sum rendered in the default base32 string form.
func SumString(data []byte) (string, error) {
	id, err := Sum(data)
	if err != nil {
		return "", err
	}
	return id.String(), nil
}

// Parse decodes a CID string and rejects the undefined CID.
func Parse(s string) (cid.Cid, error) {
	id, err := cid.Decode(s)
	if err != nil {
		return cid.Undef, fmt.Errorf("contentid: parse %q: %w", s, err)
	}
	if !id.Defined() {
		return cid.Undef, fmt.Errorf("contentid: undefined cid")
	}
	return id, nil
}
