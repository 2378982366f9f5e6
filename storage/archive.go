// Package storage defines the content-addressed archive that canonical
// listings and their source objects are kept in, plus adapters for
// composing archives.
package storage

import (
	"github.com/ipfs/go-cid"

	"xdao.co/roasort/listing"
	"xdao.co/roasort/roa"
)

// Archive is a minimal content-addressed store.
//
// Contract:
// - Put MUST be idempotent.
// - Stored objects MUST be immutable.
// - CIDs MUST be derived from the bytes written (callers are responsible for supplying canonical bytes).
// - Get MUST return ErrNotFound when the CID is absent.
type Archive interface {
	Put(bytes []byte) (cid.Cid, error)
	Get(id cid.Cid) ([]byte, error)
	Has(id cid.Cid) bool
}

// PutListing archives a canonical listing. The lines are rendered to the
// listing byte form and gated on being canonical; raw source objects go
// through Put directly.
func PutListing(a Archive, lines []string) (cid.Cid, error) {
	data := listing.Bytes(lines)
	if _, err := listing.Canonicalize(data); err != nil {
		return cid.Undef, err
	}
	return a.Put(data)
}

// GetListing retrieves an archived listing and re-checks the canonical gate
// on the way out, so a mislabeled object never round-trips into records.
func GetListing(a Archive, id cid.Cid) ([]roa.PrefixRange, error) {
	data, err := a.Get(id)
	if err != nil {
		return nil, err
	}
	return listing.Canonicalize(data)
}
