package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"xdao.co/roasort/canon"
	"xdao.co/roasort/canon/grpccanon"
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
	fmt.Fprintln(w, "roacanoncli: minimal canonicalization gRPC client for walkthroughs")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Usage:")
	fmt.Fprintln(w, "  roacanoncli canon --target <host:port> [--type text|roa] [--json] <file>")
	fmt.Fprintln(w, "  roacanoncli canon --target <host:port> --type roa signed.roa")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Notes:")
	fmt.Fprintln(w, "  - talks to xdao-roagrpcd (or any canonicalizer gRPC server)")
	fmt.Fprintln(w, "  - '-' as file reads from stdin")
	fmt.Fprintln(w, "  - the server archives source and listing; CIDs appear in the result")
}

func cmdCanon(args []string, out io.Writer, errOut io.Writer) int {
	fs := flag.NewFlagSet("canon", flag.ContinueOnError)
	fs.SetOutput(errOut)

	var target string
	var kindName string
	var asJSON bool
	var timeout time.Duration
	fs.StringVar(&target, "target", "127.0.0.1:7777", "Canonicalizer gRPC target (host:port)")
	fs.StringVar(&kindName, "type", "text", "Input kind: text|roa")
	fs.BoolVar(&asJSON, "json", false, "Emit the full result as JSON")
	fs.DurationVar(&timeout, "timeout", 10*time.Second, "Per-RPC timeout")

	if err := fs.Parse(args); err != nil {
		return 2
	}
	if fs.NArg() != 1 {
		fmt.Fprintln(errOut, "usage: roacanoncli canon --target <host:port> [--type text|roa] [--json] <file>")
		return 2
	}

	kind, err := canon.ParseKind(kindName)
	if err != nil {
		fmt.Fprintln(errOut, "invalid --type (expected text or roa)")
		return 2
	}

	p := fs.Arg(0)
	var data []byte
	if p == "-" {
		data, err = io.ReadAll(os.Stdin)
	} else {
		data, err = os.ReadFile(p)
	}
	if err != nil {
		fmt.Fprintf(errOut, "read %s: %v\n", filepath.Base(p), err)
		return 1
	}

	client, err := grpccanon.Dial(target, grpccanon.DialOptions{Timeout: timeout})
	if err != nil {
		fmt.Fprintln(errOut, err)
		return 1
	}
	defer client.Close()
	client.Timeout = timeout

	res, err := client.Canonicalize(kind, data)
	if err != nil {
		fmt.Fprintln(errOut, err)
		return 1
	}

	if asJSON {
		b, err := json.MarshalIndent(res, "", "  ")
		if err != nil {
			fmt.Fprintln(errOut, err)
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
	_, _ = fmt.Fprintf(errOut, "Source-CID: %s\n", res.SourceCID)
	_, _ = fmt.Fprintf(errOut, "Listing-CID: %s\n", res.ListingCID)
	if res.Diagnostic != "" {
		_, _ = fmt.Fprintf(errOut, "Error: %s\n", res.Diagnostic)
		return 1
	}
	return 0
}
