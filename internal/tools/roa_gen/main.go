package main

import (
	"flag"
	"fmt"
	"os"
	"strconv"
	"strings"

	"xdao.co/roasort/canon"
	"xdao.co/roasort/model"
	"xdao.co/roasort/roa"
)

type multiStringFlag []string

func (m *multiStringFlag) String() string {
	return strings.Join(*m, ",")
}

func (m *multiStringFlag) Set(v string) error {
	*m = append(*m, v)
	return nil
}

func main() {
	var (
		prefixes multiStringFlag
		asStr    = flag.String("as", "", "origin AS number (decimal, 'AS' prefix allowed)")
		outPath  = flag.String("out", "", "output file path")
	)
	flag.Var(&prefixes, "prefix", "prefix range 'addr/len[-max]' (repeatable)")
	flag.Parse()

	if *asStr == "" || len(prefixes) == 0 || *outPath == "" {
		fmt.Fprintln(os.Stderr, "usage: roa_gen -as <asn> -prefix <addr/len[-max]> [-prefix ...] -out <file.roa>")
		os.Exit(2)
	}
	asID, err := parseASN(*asStr)
	if err != nil {
		fatalf("parse -as: %v", err)
	}

	recs := make([]roa.PrefixRange, 0, len(prefixes))
	for _, p := range prefixes {
		r, err := roa.ParsePrefixRange(p)
		if err != nil {
			fatalf("parse -prefix %q: %v", p, err)
		}
		recs = append(recs, r)
	}

	econtent, err := roa.MarshalAttestation(asID, recs)
	if err != nil {
		fatalf("encode attestation: %v", err)
	}
	der, err := roa.WrapROA(econtent)
	if err != nil {
		fatalf("wrap signed object: %v", err)
	}
	if _, err := canon.Run(model.KindROA, der); err != nil {
		fatalf("re-decode: %v", err)
	}

	if err := os.WriteFile(*outPath, der, 0o644); err != nil {
		fatalf("write: %v", err)
	}
}

func parseASN(s string) (uint32, error) {
	s = strings.TrimSpace(s)
	if len(s) > 2 && (strings.HasPrefix(s, "AS") || strings.HasPrefix(s, "as")) {
		s = s[2:]
	}
	v, err := strconv.ParseUint(s, 10, 32)
	if err != nil {
		return 0, err
	}
	return uint32(v), nil
}

func fatalf(format string, args ...any) {
	fmt.Fprintf(os.Stderr, format+"\n", args...)
	os.Exit(1)
}
