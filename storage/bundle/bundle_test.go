package bundle_test

import (
	"bytes"
	"testing"

	"github.com/ipfs/go-cid"

	"xdao.co/roasort/storage"
	"xdao.co/roasort/storage/bundle"
	"xdao.co/roasort/storage/localfs"
)

func newStore(t *testing.T) *localfs.Store {
	t.Helper()
	st, err := localfs.New(t.TempDir())
	if err != nil {
		t.Fatalf("localfs.New: %v", err)
	}
	return st
}

func TestBundle_ExportIsDeterministic(t *testing.T) {
	arc := newStore(t)

	id1, err := arc.Put([]byte("10.0.0.0/8\n"))
	if err != nil {
		t.Fatal(err)
	}
	id2, err := arc.Put([]byte("2001:db8::/32\n"))
	if err != nil {
		t.Fatal(err)
	}

	var outA bytes.Buffer
	if err := bundle.Export(&outA, arc, []cid.Cid{id2, id1}, bundle.ExportOptions{IncludeIndex: true}); err != nil {
		t.Fatal(err)
	}
	var outB bytes.Buffer
	if err := bundle.Export(&outB, arc, []cid.Cid{id1, id2}, bundle.ExportOptions{IncludeIndex: true}); err != nil {
		t.Fatal(err)
	}

	if !bytes.Equal(outA.Bytes(), outB.Bytes()) {
		t.Fatalf("expected deterministic bundle bytes")
	}
}

func TestBundle_ImportRoundTrip(t *testing.T) {
	src := newStore(t)

	listing := []byte("10.0.0.0/8\n10.0.0.0/24\n")
	source := []byte("10.0.0.0/24\n10.0.0.0/8\n")
	listingID, err := src.Put(listing)
	if err != nil {
		t.Fatal(err)
	}
	sourceID, err := src.Put(source)
	if err != nil {
		t.Fatal(err)
	}

	var buf bytes.Buffer
	opts := bundle.ExportOptions{
		Labels:       map[string]cid.Cid{"listing": listingID, "source": sourceID},
		IncludeIndex: true,
	}
	if err := bundle.Export(&buf, src, []cid.Cid{listingID, sourceID}, opts); err != nil {
		t.Fatal(err)
	}

	dst := newStore(t)
	if err := bundle.Import(bytes.NewReader(buf.Bytes()), dst); err != nil {
		t.Fatalf("Import: %v", err)
	}
	got, err := dst.Get(listingID)
	if err != nil || !bytes.Equal(got, listing) {
		t.Fatalf("listing after import: %q, %v", got, err)
	}
	got, err = dst.Get(sourceID)
	if err != nil || !bytes.Equal(got, source) {
		t.Fatalf("source after import: %q, %v", got, err)
	}
}

func TestBundle_ImportRejectsTamperedObject(t *testing.T) {
	src := newStore(t)
	id, err := src.Put([]byte("10.0.0.0/8\n"))
	if err != nil {
		t.Fatal(err)
	}

	var buf bytes.Buffer
	if err := bundle.Export(&buf, src, []cid.Cid{id}, bundle.ExportOptions{}); err != nil {
		t.Fatal(err)
	}

	tampered := bytes.Replace(buf.Bytes(), []byte("10.0.0.0/8"), []byte("10.0.0.0/9"), 1)
	err = bundle.Import(bytes.NewReader(tampered), newStore(t))
	if err != storage.ErrCIDMismatch {
		t.Fatalf("Import tampered: got %v want %v", err, storage.ErrCIDMismatch)
	}
}
