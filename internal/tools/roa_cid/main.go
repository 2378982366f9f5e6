package main

import (
	"fmt"
	"os"

	"xdao.co/roasort/canon"
	"xdao.co/roasort/model"
)

func main() {
	if len(os.Args) < 2 || len(os.Args) > 3 {
		fmt.Fprintln(os.Stderr, "usage: roa_cid <input> [text|roa]")
		os.Exit(2)
	}
	kind := model.KindText
	if len(os.Args) == 3 {
		k, err := canon.ParseKind(os.Args[2])
		if err != nil {
			fmt.Fprintf(os.Stderr, "kind: %v\n", err)
			os.Exit(2)
		}
		kind = k
	}
	b, err := os.ReadFile(os.Args[1])
	if err != nil {
		fmt.Fprintf(os.Stderr, "read: %v\n", err)
		os.Exit(1)
	}
	res, err := canon.Run(kind, b)
	if err != nil {
		fmt.Fprintf(os.Stderr, "canonicalize: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("%s %s\n", res.SourceCID, res.ListingCID)
}
