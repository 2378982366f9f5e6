package roa

import (
	"golang.org/x/crypto/cryptobyte"
	"golang.org/x/crypto/cryptobyte/asn1"
)

// MarshalAttestation renders an attestation eContent in DER. Records keep
// the order given, grouped into at most one IPv4 block followed by at most
// one IPv6 block; the schema cannot express an IPv6 record ahead of an IPv4
// one. At least one record is required.
func MarshalAttestation(asID uint32, recs []PrefixRange) ([]byte, error) {
	if len(recs) == 0 {
		return nil, newError(KindFormat, "attestation requires at least one prefix")
	}
	var v4, v6 []PrefixRange
	for _, rec := range recs {
		if rec.prefix.Addr().BitLen() == 32 {
			v4 = append(v4, rec)
		} else {
			v6 = append(v6, rec)
		}
	}

	b := cryptobyte.NewBuilder(nil)
	b.AddASN1(asn1.SEQUENCE, func(b *cryptobyte.Builder) {
		// version 0 is the DER default and must be omitted.
		b.AddASN1Int64(int64(asID))
		b.AddASN1(asn1.SEQUENCE, func(b *cryptobyte.Builder) {
			addFamilyBlock(b, []byte{0x00, 0x01}, v4)
			addFamilyBlock(b, []byte{0x00, 0x02}, v6)
		})
	})
	return b.Bytes()
}

func addFamilyBlock(b *cryptobyte.Builder, famTag []byte, recs []PrefixRange) {
	if len(recs) == 0 {
		return
	}
	b.AddASN1(asn1.SEQUENCE, func(b *cryptobyte.Builder) {
		b.AddASN1OctetString(famTag)
		b.AddASN1(asn1.SEQUENCE, func(b *cryptobyte.Builder) {
			for _, rec := range recs {
				addROAIPAddress(b, rec)
			}
		})
	})
}

func addROAIPAddress(b *cryptobyte.Builder, rec PrefixRange) {
	b.AddASN1(asn1.SEQUENCE, func(b *cryptobyte.Builder) {
		addr := rec.prefix.Addr().AsSlice()
		bits := rec.prefix.Bits()
		unused := uint8(0)
		if bits%8 != 0 {
			unused = uint8(8 - bits%8)
		}
		b.AddASN1(asn1.BIT_STRING, func(b *cryptobyte.Builder) {
			b.AddUint8(unused)
			b.AddBytes(addr[:(bits+7)/8])
		})
		switch rec.max.kind {
		case maxLengthExplicitEqual:
			b.AddASN1Int64(int64(bits))
		case maxLengthExplicit:
			b.AddASN1Int64(int64(rec.max.length))
		}
	})
}

// WrapROA wraps eContent bytes in the minimal CMS signed-data envelope the
// decoder accepts: empty digest-algorithm and signer sets, no certificates.
// The result is not a verifiable signed object; it exists for test vectors
// and fixtures.
func WrapROA(econtent []byte) ([]byte, error) {
	b := cryptobyte.NewBuilder(nil)
	b.AddASN1(asn1.SEQUENCE, func(b *cryptobyte.Builder) {
		b.AddASN1ObjectIdentifier(oidSignedData)
		b.AddASN1(asn1.Tag(0).Constructed().ContextSpecific(), func(b *cryptobyte.Builder) {
			b.AddASN1(asn1.SEQUENCE, func(b *cryptobyte.Builder) {
				// CMSVersion 3 per the RPKI signed-object profile.
				b.AddASN1Int64(3)
				b.AddASN1(asn1.SET, func(b *cryptobyte.Builder) {})
				b.AddASN1(asn1.SEQUENCE, func(b *cryptobyte.Builder) {
					b.AddASN1ObjectIdentifier(oidROAContent)
					b.AddASN1(asn1.Tag(0).Constructed().ContextSpecific(), func(b *cryptobyte.Builder) {
						b.AddASN1OctetString(econtent)
					})
				})
				b.AddASN1(asn1.SET, func(b *cryptobyte.Builder) {})
			})
		})
	})
	return b.Bytes()
}
