package storage

import (
	"errors"
	"fmt"

	"github.com/ipfs/go-cid"

	"xdao.co/roasort/contentid"
)

// Tiered provides deterministic, ordered fallback across archives.
//
// Retrieval order is the slice order; callers MUST supply a fixed order.
// This avoids map-iteration nondeterminism and makes the retrieval strategy
// explicit. Put writes only to the first archive.
type Tiered struct {
	Archives []Archive
}

var _ Archive = (*Tiered)(nil)

func (t Tiered) Put(bytes []byte) (cid.Cid, error) {
	if len(t.Archives) == 0 {
		return cid.Undef, errors.New("storage: Tiered has no archives")
	}
	return t.Archives[0].Put(bytes)
}

func (t Tiered) Get(id cid.Cid) ([]byte, error) {
	for _, a := range t.Archives {
		b, err := a.Get(id)
		if err == nil {
			return b, nil
		}
		if !IsNotFound(err) {
			return nil, err
		}
	}
	return nil, ErrNotFound
}

func (t Tiered) Has(id cid.Cid) bool {
	for _, a := range t.Archives {
		if a.Has(id) {
			return true
		}
	}
	return false
}

// NamedArchive associates an archive with a stable backend name.
//
// This is used for multi-backend orchestration where callers need to retain
// per-backend metadata (e.g. for reporting).
type NamedArchive struct {
	Name    string
	Archive Archive
}

// Mirror writes to all configured archives.
//
// Reads fall back in order. Writes go to every archive and require all
// returned CIDs to match (otherwise ErrCIDMismatch is returned).
//
// Use PutAll when you need the per-archive CID mapping.
type Mirror struct {
	Archives []NamedArchive
}

var _ Archive = (*Mirror)(nil)

// PutAll writes the same bytes to all archives.
//
// It returns the canonical CID (computed from bytes) and a map of archive
// name to the CID that archive reported. If any archive returns a different
// CID, ErrCIDMismatch is returned.
func (m Mirror) PutAll(bytes []byte) (cid.Cid, map[string]cid.Cid, error) {
	want, err := contentid.Sum(bytes)
	if err != nil {
		return cid.Undef, nil, err
	}
	if len(m.Archives) == 0 {
		return cid.Undef, nil, fmt.Errorf("storage: Mirror has no archives")
	}

	out := make(map[string]cid.Cid, len(m.Archives))
	for _, n := range m.Archives {
		if n.Archive == nil {
			return cid.Undef, nil, fmt.Errorf("storage: nil archive for %q", n.Name)
		}
		got, err := n.Archive.Put(bytes)
		if err != nil {
			return cid.Undef, nil, err
		}
		out[n.Name] = got
		if !got.Equals(want) {
			return cid.Undef, out, ErrCIDMismatch
		}
	}
	return want, out, nil
}

func (m Mirror) Put(bytes []byte) (cid.Cid, error) {
	id, _, err := m.PutAll(bytes)
	return id, err
}

func (m Mirror) Get(id cid.Cid) ([]byte, error) {
	for _, n := range m.Archives {
		if n.Archive == nil {
			continue
		}
		b, err := n.Archive.Get(id)
		if err == nil {
			return b, nil
		}
		if !IsNotFound(err) {
			return nil, err
		}
	}
	return nil, ErrNotFound
}

func (m Mirror) Has(id cid.Cid) bool {
	for _, n := range m.Archives {
		if n.Archive != nil && n.Archive.Has(id) {
			return true
		}
	}
	return false
}
