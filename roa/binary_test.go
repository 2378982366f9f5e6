package roa

import (
	encoding_asn1 "encoding/asn1"
	"strings"
	"testing"

	"golang.org/x/crypto/cryptobyte"
	"golang.org/x/crypto/cryptobyte/asn1"
)

type testAddr struct {
	bytes  []byte
	unused uint8
	maxLen *int64
}

type testBlock struct {
	family []byte
	addrs  []testAddr
}

func i64(n int64) *int64 { return &n }

func buildEContent(t *testing.T, version *int64, asID int64, blocks []testBlock) []byte {
	t.Helper()
	b := cryptobyte.NewBuilder(nil)
	b.AddASN1(asn1.SEQUENCE, func(b *cryptobyte.Builder) {
		if version != nil {
			v := *version
			b.AddASN1(asn1.Tag(0).Constructed().ContextSpecific(), func(b *cryptobyte.Builder) {
				b.AddASN1Int64(v)
			})
		}
		b.AddASN1Int64(asID)
		b.AddASN1(asn1.SEQUENCE, func(b *cryptobyte.Builder) {
			for _, blk := range blocks {
				blk := blk
				b.AddASN1(asn1.SEQUENCE, func(b *cryptobyte.Builder) {
					b.AddASN1OctetString(blk.family)
					b.AddASN1(asn1.SEQUENCE, func(b *cryptobyte.Builder) {
						for _, a := range blk.addrs {
							a := a
							b.AddASN1(asn1.SEQUENCE, func(b *cryptobyte.Builder) {
								b.AddASN1(asn1.BIT_STRING, func(b *cryptobyte.Builder) {
									b.AddUint8(a.unused)
									b.AddBytes(a.bytes)
								})
								if a.maxLen != nil {
									b.AddASN1Int64(*a.maxLen)
								}
							})
						}
					})
				})
			}
		})
	})
	out, err := b.Bytes()
	if err != nil {
		t.Fatalf("build eContent: %v", err)
	}
	return out
}

func TestParseAttestation_Valid(t *testing.T) {
	econtent := buildEContent(t, i64(0), 64512, []testBlock{
		{family: []byte{0x00, 0x01}, addrs: []testAddr{
			{bytes: []byte{10}},                // 10.0.0.0/8
			{bytes: []byte{10, 0, 0}, maxLen: i64(28)}, // 10.0.0.0/24-28
		}},
		{family: []byte{0x00, 0x02}, addrs: []testAddr{
			{bytes: []byte{0x20, 0x01, 0x0d, 0xb8}}, // 2001:db8::/32
		}},
	})
	att, err := ParseAttestation(econtent)
	if err != nil {
		t.Fatalf("ParseAttestation: %v", err)
	}
	if att.ASID != 64512 {
		t.Fatalf("ASID = %d, want 64512", att.ASID)
	}
	want := []string{"10.0.0.0/8", "10.0.0.0/24-28", "2001:db8::/32"}
	if att.Prefixes.Len() != len(want) {
		t.Fatalf("got %d entries, want %d", att.Prefixes.Len(), len(want))
	}
	for i, e := range att.Prefixes.Entries() {
		if e.Record.String() != want[i] || e.Index != i {
			t.Fatalf("entry %d: got (%s,%d), want (%s,%d)", i, e.Record, e.Index, want[i], i)
		}
	}
}

func TestParseAttestation_Gates(t *testing.T) {
	v4 := []byte{0x00, 0x01}
	ten24 := testAddr{bytes: []byte{10, 0, 0}}
	oneBlock := func(blk testBlock) []testBlock { return []testBlock{blk} }

	cases := []struct {
		name     string
		econtent []byte
		kind     Kind
	}{
		{"unknown_family",
			buildEContent(t, nil, 64512, oneBlock(testBlock{family: []byte{0x00, 0x03}, addrs: []testAddr{ten24}})),
			KindFormat},
		{"family_wrong_size",
			buildEContent(t, nil, 64512, oneBlock(testBlock{family: []byte{0x00, 0x00, 0x01}, addrs: []testAddr{ten24}})),
			KindDecode},
		{"no_blocks",
			buildEContent(t, nil, 64512, nil),
			KindDecode},
		{"three_blocks",
			buildEContent(t, nil, 64512, []testBlock{
				{family: v4, addrs: []testAddr{{bytes: []byte{10}}}},
				{family: v4, addrs: []testAddr{{bytes: []byte{11}}}},
				{family: v4, addrs: []testAddr{{bytes: []byte{12}}}},
			}),
			KindDecode},
		{"empty_address_sequence",
			buildEContent(t, nil, 64512, oneBlock(testBlock{family: v4})),
			KindDecode},
		{"negative_max_length",
			buildEContent(t, nil, 64512, oneBlock(testBlock{family: v4, addrs: []testAddr{{bytes: []byte{10, 0, 0}, maxLen: i64(-1)}}})),
			KindDecode},
		{"max_length_beyond_family",
			buildEContent(t, nil, 64512, oneBlock(testBlock{family: v4, addrs: []testAddr{{bytes: []byte{10, 0, 0}, maxLen: i64(100)}}})),
			KindDecode},
		{"max_length_below_prefix",
			buildEContent(t, nil, 64512, oneBlock(testBlock{family: v4, addrs: []testAddr{{bytes: []byte{10, 0, 0}, maxLen: i64(8)}}})),
			KindInvalidRange},
		{"negative_as_id",
			buildEContent(t, nil, -5, oneBlock(testBlock{family: v4, addrs: []testAddr{ten24}})),
			KindDecode},
		{"as_id_beyond_32_bits",
			buildEContent(t, nil, 1<<33, oneBlock(testBlock{family: v4, addrs: []testAddr{ten24}})),
			KindDecode},
		{"prefix_beyond_family",
			buildEContent(t, nil, 64512, oneBlock(testBlock{family: v4, addrs: []testAddr{{bytes: []byte{10, 0, 0, 0, 1}}}})),
			KindDecode},
		{"dirty_padding_bits",
			buildEContent(t, nil, 64512, oneBlock(testBlock{family: v4, addrs: []testAddr{{bytes: []byte{0x0a}, unused: 4}}})),
			KindDecode},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := ParseAttestation(tc.econtent)
			if err == nil {
				t.Fatalf("expected error")
			}
			if !IsKind(err, tc.kind) {
				t.Fatalf("got %v, want kind %s", err, tc.kind)
			}
		})
	}
}

func TestParseAttestation_Garbage(t *testing.T) {
	for _, in := range [][]byte{nil, {}, []byte("not an attestation")} {
		if _, err := ParseAttestation(in); !IsKind(err, KindDecode) {
			t.Fatalf("ParseAttestation(%q): got %v, want KindDecode", in, err)
		}
	}
	good := buildEContent(t, nil, 64512, []testBlock{
		{family: []byte{0x00, 0x01}, addrs: []testAddr{{bytes: []byte{10}}}},
	})
	if _, err := ParseAttestation(append(good, 0x00)); !IsKind(err, KindDecode) {
		t.Fatalf("trailing garbage: got %v, want KindDecode", err)
	}
}

// The binary and text decoders must agree entry for entry, index for index.
func TestReadROA_MatchesTextPath(t *testing.T) {
	lines := []string{
		"10.0.0.0/24",
		"10.0.0.0/24-24",
		"10.0.0.0/8",
		"2001:db8:db8::/48",
		"2001:db8::/32",
	}
	recs := make([]PrefixRange, len(lines))
	for i, s := range lines {
		recs[i] = mustParse(t, s)
	}
	econtent, err := MarshalAttestation(64512, recs)
	if err != nil {
		t.Fatalf("MarshalAttestation: %v", err)
	}
	der, err := WrapROA(econtent)
	if err != nil {
		t.Fatalf("WrapROA: %v", err)
	}

	att, err := ReadROA(der)
	if err != nil {
		t.Fatalf("ReadROA: %v", err)
	}
	if att.ASID != 64512 {
		t.Fatalf("ASID = %d, want 64512", att.ASID)
	}

	textSet, err := ReadText(strings.NewReader(strings.Join(lines, "\n") + "\n"))
	if err != nil {
		t.Fatalf("ReadText: %v", err)
	}
	if att.Prefixes.Len() != textSet.Len() {
		t.Fatalf("binary path has %d entries, text path %d", att.Prefixes.Len(), textSet.Len())
	}
	for i := range textSet.Entries() {
		b, x := att.Prefixes.Entries()[i], textSet.Entries()[i]
		if b.Record.Compare(x.Record) != 0 || b.Index != x.Index {
			t.Fatalf("entry %d: binary (%s,%d) vs text (%s,%d)", i, b.Record, b.Index, x.Record, x.Index)
		}
		if b.Record.HasExplicitEqualMaxLength() != x.Record.HasExplicitEqualMaxLength() {
			t.Fatalf("entry %d: qualifier diverged between decode paths", i)
		}
	}
}

func wrapCustom(t *testing.T, contentType, eContentType encoding_asn1.ObjectIdentifier, econtent []byte, includeContent bool) []byte {
	t.Helper()
	b := cryptobyte.NewBuilder(nil)
	b.AddASN1(asn1.SEQUENCE, func(b *cryptobyte.Builder) {
		b.AddASN1ObjectIdentifier(contentType)
		b.AddASN1(asn1.Tag(0).Constructed().ContextSpecific(), func(b *cryptobyte.Builder) {
			b.AddASN1(asn1.SEQUENCE, func(b *cryptobyte.Builder) {
				b.AddASN1Int64(3)
				b.AddASN1(asn1.SET, func(b *cryptobyte.Builder) {})
				b.AddASN1(asn1.SEQUENCE, func(b *cryptobyte.Builder) {
					b.AddASN1ObjectIdentifier(eContentType)
					if includeContent {
						b.AddASN1(asn1.Tag(0).Constructed().ContextSpecific(), func(b *cryptobyte.Builder) {
							b.AddASN1OctetString(econtent)
						})
					}
				})
				b.AddASN1(asn1.SET, func(b *cryptobyte.Builder) {})
			})
		})
	})
	out, err := b.Bytes()
	if err != nil {
		t.Fatalf("build signed object: %v", err)
	}
	return out
}

func TestReadROA_EnvelopeGates(t *testing.T) {
	econtent := buildEContent(t, nil, 64512, []testBlock{
		{family: []byte{0x00, 0x01}, addrs: []testAddr{{bytes: []byte{10}}}},
	})
	notSignedData := encoding_asn1.ObjectIdentifier{1, 2, 840, 113549, 1, 7, 3}
	notROA := encoding_asn1.ObjectIdentifier{1, 2, 840, 113549, 1, 9, 16, 1, 25}

	cases := []struct {
		name string
		der  []byte
		kind Kind
		msg  string
	}{
		{"wrong_content_type", wrapCustom(t, notSignedData, oidROAContent, econtent, true), KindFormat, "signed-data"},
		{"wrong_econtent_type", wrapCustom(t, oidSignedData, notROA, econtent, true), KindFormat, "ROA"},
		{"missing_econtent", wrapCustom(t, oidSignedData, oidROAContent, nil, false), KindFormat, "missing"},
		{"garbage", []byte("not a signed object"), KindDecode, ""},
		{"empty", nil, KindDecode, ""},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := ReadROA(tc.der)
			if err == nil {
				t.Fatalf("expected error")
			}
			if !IsKind(err, tc.kind) {
				t.Fatalf("got %v, want kind %s", err, tc.kind)
			}
			if tc.msg != "" && !strings.Contains(err.Error(), tc.msg) {
				t.Fatalf("error %q should mention %q", err, tc.msg)
			}
		})
	}

	good := wrapCustom(t, oidSignedData, oidROAContent, econtent, true)
	if _, err := ReadROA(good); err != nil {
		t.Fatalf("control case should decode: %v", err)
	}
	if _, err := ReadROA(append(good, 0x00)); !IsKind(err, KindDecode) {
		t.Fatalf("trailing garbage: want KindDecode")
	}
}

func TestMarshalAttestation_RequiresPrefixes(t *testing.T) {
	if _, err := MarshalAttestation(64512, nil); err == nil {
		t.Fatalf("expected error for empty attestation")
	}
}
