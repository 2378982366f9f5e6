package main

import (
	"bytes"
	"compress/gzip"
	encoding_asn1 "encoding/asn1"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/klauspost/compress/zstd"
	"golang.org/x/crypto/cryptobyte"
	"golang.org/x/crypto/cryptobyte/asn1"

	"xdao.co/roasort/contentid"
	"xdao.co/roasort/model"
	"xdao.co/roasort/roa"
)

const (
	mixedText = "10.0.0.0/24\n10.0.0.0/24-24\n10.0.0.0/8\n2001:db8:db8::/48\n2001:db8::/32\n"
	canonText = "10.0.0.0/8\n10.0.0.0/24\n2001:db8::/32\n2001:db8:db8::/48\n"
)

func writeTemp(t *testing.T, name string, data []byte) string {
	t.Helper()
	p := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(p, data, 0o600); err != nil {
		t.Fatalf("write %s: %v", name, err)
	}
	return p
}

func buildROA(t *testing.T, lines []string) []byte {
	t.Helper()
	recs := make([]roa.PrefixRange, 0, len(lines))
	for _, s := range lines {
		r, err := roa.ParsePrefixRange(s)
		if err != nil {
			t.Fatalf("ParsePrefixRange(%q): %v", s, err)
		}
		recs = append(recs, r)
	}
	econtent, err := roa.MarshalAttestation(64512, recs)
	if err != nil {
		t.Fatalf("MarshalAttestation: %v", err)
	}
	der, err := roa.WrapROA(econtent)
	if err != nil {
		t.Fatalf("WrapROA: %v", err)
	}
	return der
}

func TestRun_CanonMixedText(t *testing.T) {
	p := writeTemp(t, "mixed.txt", []byte(mixedText))
	var out, errOut bytes.Buffer

	code := run([]string{"canon", p}, &out, &errOut)
	if code != 1 {
		t.Fatalf("exit = %d, want 1", code)
	}
	if out.String() != canonText {
		t.Fatalf("stdout = %q, want %q", out.String(), canonText)
	}
	if errOut.String() != "Error: input was mis-ordered\n" {
		t.Fatalf("stderr = %q", errOut.String())
	}
}

func TestRun_CanonCanonicalText(t *testing.T) {
	p := writeTemp(t, "ok.txt", []byte(canonText))
	var out, errOut bytes.Buffer

	code := run([]string{"canon", p}, &out, &errOut)
	if code != 0 {
		t.Fatalf("exit = %d, stderr %q", code, errOut.String())
	}
	if out.String() != canonText {
		t.Fatalf("stdout = %q, want input reproduced verbatim", out.String())
	}
	if errOut.Len() != 0 {
		t.Fatalf("stderr = %q, want empty", errOut.String())
	}
}

func TestRun_CanonEmptyInput(t *testing.T) {
	p := writeTemp(t, "empty.txt", nil)
	var out, errOut bytes.Buffer

	code := run([]string{"canon", p}, &out, &errOut)
	if code != 0 {
		t.Fatalf("exit = %d, stderr %q", code, errOut.String())
	}
	if out.Len() != 0 || errOut.Len() != 0 {
		t.Fatalf("stdout %q stderr %q, want both empty", out.String(), errOut.String())
	}
}

func TestRun_CanonROA(t *testing.T) {
	ok := buildROA(t, []string{"10.0.0.0/8", "10.0.0.0/24", "2001:db8::/32", "2001:db8:db8::/48"})
	p := writeTemp(t, "ok.roa", ok)
	var out, errOut bytes.Buffer

	code := run([]string{"canon", "-t", "roa", p}, &out, &errOut)
	if code != 0 {
		t.Fatalf("exit = %d, stderr %q", code, errOut.String())
	}
	if out.String() != canonText {
		t.Fatalf("stdout = %q, want %q", out.String(), canonText)
	}

	bad := buildROA(t, []string{"10.0.0.0/24", "10.0.0.0/8", "2001:db8::/32", "2001:db8:db8::/48"})
	p = writeTemp(t, "err.roa", bad)
	out.Reset()
	errOut.Reset()

	code = run([]string{"canon", "-t", "roa", p}, &out, &errOut)
	if code != 1 {
		t.Fatalf("exit = %d, want 1", code)
	}
	if out.String() != canonText {
		t.Fatalf("stdout = %q, want full listing despite failure", out.String())
	}
	if !strings.HasPrefix(errOut.String(), "Error:") {
		t.Fatalf("stderr = %q, want Error: prefix", errOut.String())
	}
}

func TestRun_CanonWrongEnvelopeOID(t *testing.T) {
	b := cryptobyte.NewBuilder(nil)
	b.AddASN1(asn1.SEQUENCE, func(b *cryptobyte.Builder) {
		b.AddASN1ObjectIdentifier(encoding_asn1.ObjectIdentifier{1, 2, 840, 113549, 1, 7, 1})
		b.AddASN1(asn1.Tag(0).Constructed().ContextSpecific(), func(b *cryptobyte.Builder) {
			b.AddASN1OctetString([]byte("payload"))
		})
	})
	der, err := b.Bytes()
	if err != nil {
		t.Fatalf("build envelope: %v", err)
	}
	p := writeTemp(t, "wrong-oid.roa", der)
	var out, errOut bytes.Buffer

	code := run([]string{"canon", "-t", "roa", p}, &out, &errOut)
	if code != 1 {
		t.Fatalf("exit = %d, want 1", code)
	}
	if out.Len() != 0 {
		t.Fatalf("stdout = %q, want no output before the envelope gate", out.String())
	}
	if errOut.String() != "Error: invalid OID for signed-data content\n" {
		t.Fatalf("stderr = %q", errOut.String())
	}
}

func TestRun_CanonJSON(t *testing.T) {
	p := writeTemp(t, "mixed.txt", []byte(mixedText))
	var out, errOut bytes.Buffer

	code := run([]string{"canon", "-json", p}, &out, &errOut)
	if code != 1 {
		t.Fatalf("exit = %d, want 1", code)
	}
	var res model.Result
	if err := json.Unmarshal(out.Bytes(), &res); err != nil {
		t.Fatalf("unmarshal stdout: %v\n%s", err, out.String())
	}
	if len(res.Lines) != 4 || res.Lines[0] != "10.0.0.0/8" {
		t.Fatalf("lines = %q", res.Lines)
	}
	if !res.Misordered || res.Diagnostic != "input was mis-ordered" {
		t.Fatalf("diagnostics = %+v", res)
	}
	if len(res.RedundantMaxLength) != 1 || res.RedundantMaxLength[0] != "10.0.0.0/24" {
		t.Fatalf("RedundantMaxLength = %q", res.RedundantMaxLength)
	}
	if res.ListingCID == "" || res.SourceCID == "" {
		t.Fatalf("missing CIDs: %+v", res)
	}
}

func TestRun_CanonJSONFailure(t *testing.T) {
	p := writeTemp(t, "bad.txt", []byte("bogus\n"))
	var out, errOut bytes.Buffer

	code := run([]string{"canon", "-json", p}, &out, &errOut)
	if code != 1 {
		t.Fatalf("exit = %d, want 1", code)
	}
	var ce model.CodedError
	if err := json.Unmarshal(out.Bytes(), &ce); err != nil {
		t.Fatalf("unmarshal stdout: %v\n%s", err, out.String())
	}
	if ce.Code != model.ErrParse {
		t.Fatalf("code = %s, want %s", ce.Code, model.ErrParse)
	}
	if !strings.HasPrefix(errOut.String(), "Error:") {
		t.Fatalf("stderr = %q, want Error: prefix", errOut.String())
	}
}

func TestRun_CanonParseFailureAbortsRun(t *testing.T) {
	p := writeTemp(t, "bad.txt", []byte("10.0.0.0/8\nbogus\n"))
	var out, errOut bytes.Buffer

	code := run([]string{"canon", p}, &out, &errOut)
	if code != 1 {
		t.Fatalf("exit = %d, want 1", code)
	}
	if out.Len() != 0 {
		t.Fatalf("stdout = %q, want no partial listing", out.String())
	}
	if !strings.HasPrefix(errOut.String(), "Error:") {
		t.Fatalf("stderr = %q, want Error: prefix", errOut.String())
	}
}

func TestRun_CompressedInputs(t *testing.T) {
	var gz bytes.Buffer
	gw := gzip.NewWriter(&gz)
	if _, err := gw.Write([]byte(canonText)); err != nil {
		t.Fatalf("gzip write: %v", err)
	}
	if err := gw.Close(); err != nil {
		t.Fatalf("gzip close: %v", err)
	}

	zw, err := zstd.NewWriter(nil)
	if err != nil {
		t.Fatalf("zstd writer: %v", err)
	}
	zst := zw.EncodeAll([]byte(canonText), nil)
	if err := zw.Close(); err != nil {
		t.Fatalf("zstd close: %v", err)
	}

	for name, data := range map[string][]byte{"ok.txt.gz": gz.Bytes(), "ok.txt.zst": zst} {
		p := writeTemp(t, name, data)
		var out, errOut bytes.Buffer
		code := run([]string{"canon", p}, &out, &errOut)
		if code != 0 {
			t.Fatalf("%s: exit = %d, stderr %q", name, code, errOut.String())
		}
		if out.String() != canonText {
			t.Fatalf("%s: stdout = %q", name, out.String())
		}
	}
}

func TestRun_VerifyAndCID(t *testing.T) {
	good := writeTemp(t, "ok.txt", []byte(canonText))
	bad := writeTemp(t, "mixed.txt", []byte(mixedText))

	var out, errOut bytes.Buffer
	if code := run([]string{"verify", good}, &out, &errOut); code != 0 {
		t.Fatalf("verify good: exit = %d, stderr %q", code, errOut.String())
	}
	if out.String() != "OK\n" {
		t.Fatalf("verify stdout = %q", out.String())
	}

	out.Reset()
	errOut.Reset()
	if code := run([]string{"verify", bad}, &out, &errOut); code != 1 {
		t.Fatalf("verify bad: exit = %d", code)
	}
	if !strings.HasPrefix(errOut.String(), "Error:") {
		t.Fatalf("verify stderr = %q", errOut.String())
	}

	out.Reset()
	errOut.Reset()
	if code := run([]string{"cid", good}, &out, &errOut); code != 0 {
		t.Fatalf("cid good: exit = %d, stderr %q", code, errOut.String())
	}
	want, err := contentid.SumString([]byte(canonText))
	if err != nil {
		t.Fatalf("SumString: %v", err)
	}
	if strings.TrimSpace(out.String()) != want {
		t.Fatalf("cid stdout = %q, want %q", out.String(), want)
	}

	out.Reset()
	errOut.Reset()
	if code := run([]string{"cid", bad}, &out, &errOut); code != 1 {
		t.Fatalf("cid bad: exit = %d", code)
	}
}

func TestRun_ArchiveRoundTrip(t *testing.T) {
	dir := t.TempDir()
	input := writeTemp(t, "mixed.txt", []byte(mixedText))

	var out, errOut bytes.Buffer
	code := run([]string{"archive", "put-listing", "-backend", "localfs", "-localfs-dir", dir, input}, &out, &errOut)
	if code != 1 {
		t.Fatalf("put-listing: exit = %d, stderr %q", code, errOut.String())
	}
	if errOut.String() != "Error: input was mis-ordered\n" {
		t.Fatalf("put-listing stderr = %q", errOut.String())
	}

	var srcCID, listCID string
	for _, line := range strings.Split(strings.TrimSpace(out.String()), "\n") {
		switch {
		case strings.HasPrefix(line, "Source-CID: "):
			srcCID = strings.TrimPrefix(line, "Source-CID: ")
		case strings.HasPrefix(line, "Listing-CID: "):
			listCID = strings.TrimPrefix(line, "Listing-CID: ")
		}
	}
	if srcCID == "" || listCID == "" {
		t.Fatalf("put-listing stdout = %q", out.String())
	}

	out.Reset()
	errOut.Reset()
	if code := run([]string{"archive", "get", "-backend", "localfs", "-localfs-dir", dir, "-cid", listCID}, &out, &errOut); code != 0 {
		t.Fatalf("get: exit = %d, stderr %q", code, errOut.String())
	}
	if out.String() != canonText {
		t.Fatalf("get stdout = %q, want %q", out.String(), canonText)
	}

	out.Reset()
	errOut.Reset()
	if code := run([]string{"archive", "has", "-backend", "localfs", "-localfs-dir", dir, "-cid", srcCID}, &out, &errOut); code != 0 {
		t.Fatalf("has: exit = %d", code)
	}
	if out.String() != "true\n" {
		t.Fatalf("has stdout = %q", out.String())
	}

	bundlePath := filepath.Join(t.TempDir(), "pair.tar")
	out.Reset()
	errOut.Reset()
	code = run([]string{
		"archive", "export", "-backend", "localfs", "-localfs-dir", dir,
		"-label", "source=" + srcCID, "-label", "listing=" + listCID,
		"-out", bundlePath,
	}, &out, &errOut)
	if code != 0 {
		t.Fatalf("export: exit = %d, stderr %q", code, errOut.String())
	}

	dir2 := t.TempDir()
	out.Reset()
	errOut.Reset()
	if code := run([]string{"archive", "import", "-backend", "localfs", "-localfs-dir", dir2, bundlePath}, &out, &errOut); code != 0 {
		t.Fatalf("import: exit = %d, stderr %q", code, errOut.String())
	}

	out.Reset()
	errOut.Reset()
	if code := run([]string{"archive", "get", "-backend", "localfs", "-localfs-dir", dir2, "-cid", srcCID}, &out, &errOut); code != 0 {
		t.Fatalf("get after import: exit = %d, stderr %q", code, errOut.String())
	}
	if out.String() != mixedText {
		t.Fatalf("imported source = %q, want %q", out.String(), mixedText)
	}
}

func TestRun_UsageErrors(t *testing.T) {
	cases := [][]string{
		nil,
		{"bogus"},
		{"canon", "-t", "xml", "some.txt"},
		{"canon", "a.txt", "b.txt"},
		{"verify"},
		{"cid"},
		{"archive"},
		{"archive", "bogus"},
		{"archive", "get", "-backend", "localfs"},
	}
	for _, args := range cases {
		var out, errOut bytes.Buffer
		if code := run(args, &out, &errOut); code != 2 {
			t.Fatalf("run(%q) = %d, want 2", args, code)
		}
	}
}
