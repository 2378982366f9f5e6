package main

import (
	"encoding/base64"
	"fmt"
	"strings"

	"xdao.co/roasort/canon"
	"xdao.co/roasort/model"
	"xdao.co/roasort/roa"
)

func mustRange(s string) roa.PrefixRange {
	r, err := roa.ParsePrefixRange(s)
	if err != nil {
		panic(err)
	}
	return r
}

func main() {
	recs := []roa.PrefixRange{
		mustRange("10.0.0.0/24"),
		mustRange("10.0.0.0/24-24"),
		mustRange("10.0.0.0/8"),
		mustRange("2001:db8:db8::/48"),
		mustRange("2001:db8::/32"),
	}

	econtent, err := roa.MarshalAttestation(64512, recs)
	if err != nil {
		panic(err)
	}
	der, err := roa.WrapROA(econtent)
	if err != nil {
		panic(err)
	}

	res, err := canon.Run(model.KindROA, der)
	if err != nil {
		panic(err)
	}

	fmt.Printf("Source-CID=%s\n", res.SourceCID)
	fmt.Printf("Listing-CID=%s\n", res.ListingCID)
	fmt.Printf("Diagnostic=%s\n", res.Diagnostic)
	fmt.Printf("---BEGIN ROA (base64)---\n%s\n---END---\n", base64.StdEncoding.EncodeToString(der))
	fmt.Printf("---BEGIN LISTING---\n%s---END---\n", strings.Join(res.Lines, "\n")+"\n")
}
