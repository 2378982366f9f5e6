package roa

import (
	"bytes"
	encoding_asn1 "encoding/asn1"
	"fmt"
	"math"
	"net/netip"

	"golang.org/x/crypto/cryptobyte"
	"golang.org/x/crypto/cryptobyte/asn1"
)

// Attestation is the decoded content of a route-origin-attestation
// (the eContent of a signed ROA object).
type Attestation struct {
	// ASID is the authorizing autonomous system number. Informational
	// metadata of the source object: canonicalization neither orders nor
	// renders by it.
	ASID uint32

	// Prefixes holds every declared prefix range, folded in declaration
	// order across the address-family blocks.
	Prefixes *Set
}

// ParseAttestation decodes eContent bytes:
//
//	RouteOriginAttestation ::= SEQUENCE {
//	    version [0] EXPLICIT INTEGER DEFAULT 0,
//	    asID INTEGER (0..4294967295),
//	    ipAddrBlocks SEQUENCE (SIZE(1..2)) OF ROAIPAddressFamily }
//	ROAIPAddressFamily ::= SEQUENCE {
//	    addressFamily OCTET STRING (SIZE(2)),
//	    addresses SEQUENCE (SIZE(1..MAX)) OF ROAIPAddress }
//	ROAIPAddress ::= SEQUENCE {
//	    address BIT STRING (SIZE(0..128)),
//	    maxLength INTEGER (0..128) OPTIONAL }
//
// Address entries are visited in a single pass, in declaration order, and
// folded straight into the returned Set; the first invalid entry aborts the
// whole decode with no partial result. Family tag 0x0001 is IPv4 and 0x0002
// IPv6; anything else fails with KindFormat. The version value is not
// constrained beyond its framing.
func ParseAttestation(econtent []byte) (*Attestation, error) {
	input := cryptobyte.String(econtent)
	var body cryptobyte.String
	if !input.ReadASN1(&body, asn1.SEQUENCE) || !input.Empty() {
		return nil, newError(KindDecode, "attestation is not a DER sequence")
	}

	var version cryptobyte.String
	var hasVersion bool
	if !body.ReadOptionalASN1(&version, &hasVersion, asn1.Tag(0).Constructed().ContextSpecific()) {
		return nil, newError(KindDecode, "malformed attestation version")
	}
	if hasVersion {
		var v int64
		if !version.ReadASN1Integer(&v) || !version.Empty() {
			return nil, newError(KindDecode, "malformed attestation version")
		}
	}

	var asID uint64
	if !body.ReadASN1Integer(&asID) {
		return nil, newError(KindDecode, "malformed AS id")
	}
	if asID > math.MaxUint32 {
		return nil, newError(KindDecode, fmt.Sprintf("AS id %d out of range", asID))
	}

	var blocks cryptobyte.String
	if !body.ReadASN1(&blocks, asn1.SEQUENCE) || !body.Empty() {
		return nil, newError(KindDecode, "malformed address blocks")
	}
	if blocks.Empty() {
		return nil, newError(KindDecode, "attestation has no address-family blocks")
	}

	set := NewSet()
	index := 0
	for blockCount := 0; !blocks.Empty(); blockCount++ {
		if blockCount == 2 {
			return nil, newError(KindDecode, "more than two address-family blocks")
		}
		var block cryptobyte.String
		if !blocks.ReadASN1(&block, asn1.SEQUENCE) {
			return nil, newError(KindDecode, "malformed address-family block")
		}
		famBits, err := readAddressFamily(&block)
		if err != nil {
			return nil, err
		}
		var addrs cryptobyte.String
		if !block.ReadASN1(&addrs, asn1.SEQUENCE) || !block.Empty() {
			return nil, newError(KindDecode, "malformed address sequence")
		}
		if addrs.Empty() {
			return nil, newError(KindDecode, "empty address sequence")
		}
		for !addrs.Empty() {
			rec, err := readAddress(&addrs, famBits)
			if err != nil {
				return nil, err
			}
			set.Add(rec, index)
			index++
		}
	}

	return &Attestation{ASID: uint32(asID), Prefixes: set}, nil
}

// readAddressFamily consumes the 2-octet family tag and returns the
// family's address width in bits.
func readAddressFamily(block *cryptobyte.String) (int, error) {
	var fam cryptobyte.String
	if !block.ReadASN1(&fam, asn1.OCTET_STRING) {
		return 0, newError(KindDecode, "malformed address family")
	}
	if len(fam) != 2 {
		return 0, newError(KindDecode, "address family must be 2 octets")
	}
	switch {
	case bytes.Equal(fam, []byte{0x00, 0x01}):
		return 32, nil
	case bytes.Equal(fam, []byte{0x00, 0x02}):
		return 128, nil
	}
	return 0, newError(KindFormat, fmt.Sprintf("invalid address-family %x", []byte(fam)))
}

// readAddress consumes one ROAIPAddress entry and applies the shared
// construction rule.
func readAddress(addrs *cryptobyte.String, famBits int) (PrefixRange, error) {
	var entry cryptobyte.String
	if !addrs.ReadASN1(&entry, asn1.SEQUENCE) {
		return PrefixRange{}, newError(KindDecode, "malformed address entry")
	}
	var bs encoding_asn1.BitString
	if !entry.ReadASN1BitString(&bs) {
		return PrefixRange{}, newError(KindDecode, "malformed address bit string")
	}
	if bs.BitLength > famBits {
		return PrefixRange{}, newError(KindDecode,
			fmt.Sprintf("prefix length %d out of range for address family", bs.BitLength))
	}
	prefix, err := prefixFromBits(bs.Bytes, bs.BitLength, famBits)
	if err != nil {
		return PrefixRange{}, err
	}

	maxLength := 0
	haveMax := false
	if entry.PeekASN1Tag(asn1.INTEGER) {
		var v int64
		if !entry.ReadASN1Integer(&v) {
			return PrefixRange{}, newError(KindDecode, "malformed max length")
		}
		if v < 0 || v > int64(famBits) {
			return PrefixRange{}, newError(KindDecode,
				fmt.Sprintf("max length %d out of range for address family", v))
		}
		maxLength, haveMax = int(v), true
	}
	if !entry.Empty() {
		return PrefixRange{}, newError(KindDecode, "trailing data in address entry")
	}
	return newPrefixRange(prefix, maxLength, haveMax)
}

// prefixFromBits rebuilds the network address by zero-extending the
// bit-string bytes to the family's full width. The declared bit count is
// the prefix length.
func prefixFromBits(raw []byte, bitLen, famBits int) (netip.Prefix, error) {
	if len(raw) != (bitLen+7)/8 {
		return netip.Prefix{}, newError(KindDecode,
			fmt.Sprintf("address has %d bytes for %d declared bits", len(raw), bitLen))
	}
	var addr netip.Addr
	if famBits == 32 {
		var b [4]byte
		copy(b[:], raw)
		addr = netip.AddrFrom4(b)
	} else {
		var b [16]byte
		copy(b[:], raw)
		addr = netip.AddrFrom16(b)
	}
	prefix, err := addr.Prefix(bitLen)
	if err != nil {
		return netip.Prefix{}, wrapError(KindDecode, "invalid prefix length", err)
	}
	return prefix, nil
}
