package roa

import (
	encoding_asn1 "encoding/asn1"

	"golang.org/x/crypto/cryptobyte"
	"golang.org/x/crypto/cryptobyte/asn1"
)

var (
	oidSignedData = encoding_asn1.ObjectIdentifier{1, 2, 840, 113549, 1, 7, 2}
	oidROAContent = encoding_asn1.ObjectIdentifier{1, 2, 840, 113549, 1, 9, 16, 1, 24}
)

// ReadROA decodes a DER-encoded, CMS-wrapped ROA object down to its
// attestation. The envelope is unwrapped in strictly ordered stages, each a
// hard gate: malformed DER at any level fails with KindDecode, a wrong
// object identifier or missing encapsulated content with KindFormat. The
// first failing stage aborts the whole decode.
//
// Signatures, certificates and CRLs carried by the envelope are
// framing-checked and skipped, never verified; only the unsigned content
// layer matters here.
func ReadROA(der []byte) (*Attestation, error) {
	econtent, err := encapsulatedROA(der)
	if err != nil {
		return nil, err
	}
	return ParseAttestation(econtent)
}

// encapsulatedROA unwraps ContentInfo -> SignedData -> encapContentInfo and
// returns the eContent octets.
func encapsulatedROA(der []byte) ([]byte, error) {
	input := cryptobyte.String(der)
	var contentInfo cryptobyte.String
	if !input.ReadASN1(&contentInfo, asn1.SEQUENCE) || !input.Empty() {
		return nil, newError(KindDecode, "input is not a DER content-info")
	}

	var contentType encoding_asn1.ObjectIdentifier
	if !contentInfo.ReadASN1ObjectIdentifier(&contentType) {
		return nil, newError(KindDecode, "malformed content type")
	}
	if !contentType.Equal(oidSignedData) {
		return nil, newError(KindFormat, "invalid OID for signed-data content")
	}

	var content cryptobyte.String
	if !contentInfo.ReadASN1(&content, asn1.Tag(0).Constructed().ContextSpecific()) || !contentInfo.Empty() {
		return nil, newError(KindDecode, "missing signed-data content")
	}
	var signedData cryptobyte.String
	if !content.ReadASN1(&signedData, asn1.SEQUENCE) || !content.Empty() {
		return nil, newError(KindDecode, "malformed signed-data")
	}

	var cmsVersion int64
	if !signedData.ReadASN1Integer(&cmsVersion) {
		return nil, newError(KindDecode, "malformed signed-data version")
	}
	if !signedData.SkipASN1(asn1.SET) {
		return nil, newError(KindDecode, "malformed digest algorithms")
	}
	var encap cryptobyte.String
	if !signedData.ReadASN1(&encap, asn1.SEQUENCE) {
		return nil, newError(KindDecode, "malformed encapsulated content info")
	}
	if !signedData.SkipOptionalASN1(asn1.Tag(0).Constructed().ContextSpecific()) {
		return nil, newError(KindDecode, "malformed certificate set")
	}
	if !signedData.SkipOptionalASN1(asn1.Tag(1).Constructed().ContextSpecific()) {
		return nil, newError(KindDecode, "malformed crl set")
	}
	if !signedData.SkipASN1(asn1.SET) || !signedData.Empty() {
		return nil, newError(KindDecode, "malformed signer infos")
	}

	var eContentType encoding_asn1.ObjectIdentifier
	if !encap.ReadASN1ObjectIdentifier(&eContentType) {
		return nil, newError(KindDecode, "malformed encapsulated content type")
	}
	if !eContentType.Equal(oidROAContent) {
		return nil, newError(KindFormat, "invalid OID for ROA content")
	}
	var wrapper cryptobyte.String
	var hasContent bool
	if !encap.ReadOptionalASN1(&wrapper, &hasContent, asn1.Tag(0).Constructed().ContextSpecific()) || !encap.Empty() {
		return nil, newError(KindDecode, "malformed encapsulated content")
	}
	if !hasContent {
		return nil, newError(KindFormat, "missing encapsulated content")
	}
	var econtent cryptobyte.String
	if !wrapper.ReadASN1(&econtent, asn1.OCTET_STRING) || !wrapper.Empty() {
		return nil, newError(KindDecode, "malformed encapsulated content")
	}
	return econtent, nil
}
