package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"os"

	"xdao.co/roasort/canon"
	"xdao.co/roasort/contentid"
	"xdao.co/roasort/listing"
	"xdao.co/roasort/model"
)

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

func run(args []string, out io.Writer, errOut io.Writer) int {
	if len(args) == 0 {
		printUsage(errOut)
		return 2
	}

	switch args[0] {
	case "canon":
		return cmdCanon(args[1:], out, errOut)
	case "verify":
		return cmdVerify(args[1:], out, errOut)
	case "cid":
		return cmdCID(args[1:], out, errOut)
	case "archive":
		return cmdArchive(args[1:], out, errOut)
	case "help", "-h", "--help":
		printUsage(out)
		return 0
	default:
		fmt.Fprintf(errOut, "unknown command: %s\n\n", args[0])
		printUsage(errOut)
		return 2
	}
}

func printUsage(w io.Writer) {
	fmt.Fprintln(w, "xdao-roasort: ROA prefix-range canonicalization CLI")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Usage:")
	fmt.Fprintln(w, "  xdao-roasort canon [-t text|roa] [-json] [file]")
	fmt.Fprintln(w, "  xdao-roasort verify <file>")
	fmt.Fprintln(w, "  xdao-roasort cid <file>")
	fmt.Fprintln(w, "  xdao-roasort archive put [common flags] <file>")
	fmt.Fprintln(w, "  xdao-roasort archive put-listing [common flags] [-t text|roa] [file]")
	fmt.Fprintln(w, "  xdao-roasort archive get [common flags] -cid <cid> [-out <file>]")
	fmt.Fprintln(w, "  xdao-roasort archive has [common flags] -cid <cid>")
	fmt.Fprintln(w, "  xdao-roasort archive export [common flags] -cid <cid> [-cid ...] [-label name=<cid> ...] [-out <bundle.tar>]")
	fmt.Fprintln(w, "  xdao-roasort archive import [common flags] [-ignore-unknown] [bundle.tar]")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Notes:")
	fmt.Fprintln(w, "  - canon reads a file or stdin; .zst and .gz inputs are decompressed transparently")
	fmt.Fprintln(w, "  - canon always prints the full canonical listing, even when verification fails")
	fmt.Fprintln(w, "  - verify and cid accept canonical listings only")
	fmt.Fprintln(w, "  - archive common flags: -backend <name> (default localfs), -archive-config <file>, -list-backends, plus backend flags")
}

func cmdCanon(args []string, out io.Writer, errOut io.Writer) int {
	fs := flag.NewFlagSet("canon", flag.ContinueOnError)
	fs.SetOutput(errOut)

	var kindName string
	var jsonOut bool
	fs.StringVar(&kindName, "t", "text", "Input kind: text or roa")
	fs.BoolVar(&jsonOut, "json", false, "Print the full result as JSON instead of the listing")

	if err := fs.Parse(args); err != nil {
		return 2
	}
	if fs.NArg() > 1 {
		fmt.Fprintln(errOut, "usage: xdao-roasort canon [-t text|roa] [-json] [file]")
		return 2
	}

	kind, err := canon.ParseKind(kindName)
	if err != nil {
		fmt.Fprintln(errOut, "invalid -t (expected text or roa)")
		return 2
	}

	data, err := readInput(fs.Arg(0))
	if err != nil {
		fmt.Fprintf(errOut, "Error: %v\n", err)
		return 1
	}

	res, err := canon.Run(kind, data)
	if err != nil {
		if jsonOut {
			if b, jerr := json.MarshalIndent(model.Classify(err), "", "  "); jerr == nil {
				_, _ = fmt.Fprintf(out, "%s\n", b)
			}
		}
		fmt.Fprintf(errOut, "Error: %v\n", err)
		return 1
	}

	if jsonOut {
		b, err := json.MarshalIndent(res, "", "  ")
		if err != nil {
			fmt.Fprintf(errOut, "Error: %v\n", err)
			return 1
		}
		_, _ = fmt.Fprintf(out, "%s\n", b)
		if !res.Clean() {
			return 1
		}
		return 0
	}

	for _, line := range res.Lines {
		_, _ = fmt.Fprintln(out, line)
	}
	if res.Diagnostic != "" {
		fmt.Fprintf(errOut, "Error: %s\n", res.Diagnostic)
		return 1
	}
	return 0
}

func cmdVerify(args []string, out io.Writer, errOut io.Writer) int {
	fs := flag.NewFlagSet("verify", flag.ContinueOnError)
	fs.SetOutput(errOut)
	if err := fs.Parse(args); err != nil {
		return 2
	}
	if fs.NArg() != 1 {
		fmt.Fprintln(errOut, "usage: xdao-roasort verify <file>")
		return 2
	}
	data, err := readInput(fs.Arg(0))
	if err != nil {
		fmt.Fprintf(errOut, "Error: %v\n", err)
		return 1
	}
	if _, err := listing.Canonicalize(data); err != nil {
		fmt.Fprintf(errOut, "Error: %v\n", err)
		return 1
	}
	_, _ = fmt.Fprintln(out, "OK")
	return 0
}

func cmdCID(args []string, out io.Writer, errOut io.Writer) int {
	fs := flag.NewFlagSet("cid", flag.ContinueOnError)
	fs.SetOutput(errOut)
	if err := fs.Parse(args); err != nil {
		return 2
	}
	if fs.NArg() != 1 {
		fmt.Fprintln(errOut, "usage: xdao-roasort cid <file>")
		return 2
	}
	data, err := readInput(fs.Arg(0))
	if err != nil {
		fmt.Fprintf(errOut, "Error: %v\n", err)
		return 1
	}
	if _, err := listing.Canonicalize(data); err != nil {
		fmt.Fprintf(errOut, "Error: %v\n", err)
		return 1
	}
	s, err := contentid.SumString(data)
	if err != nil {
		fmt.Fprintf(errOut, "Error: %v\n", err)
		return 1
	}
	_, _ = fmt.Fprintln(out, s)
	return 0
}
