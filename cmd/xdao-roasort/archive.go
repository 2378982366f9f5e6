package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/ipfs/go-cid"

	"xdao.co/roasort/canon"
	"xdao.co/roasort/contentid"
	"xdao.co/roasort/storage"
	"xdao.co/roasort/storage/archiveconfig"
	"xdao.co/roasort/storage/bundle"
	"xdao.co/roasort/storage/registry"

	_ "xdao.co/roasort/storage/grpcarchive"
	_ "xdao.co/roasort/storage/ipfs"
	_ "xdao.co/roasort/storage/localfs"
)

func cmdArchive(args []string, out io.Writer, errOut io.Writer) int {
	if len(args) == 0 {
		fmt.Fprintln(errOut, "usage: xdao-roasort archive <subcommand> ...")
		fmt.Fprintln(errOut, "subcommands: put, put-listing, get, has, export, import")
		return 2
	}
	switch args[0] {
	case "put":
		return cmdArchivePut(args[1:], out, errOut)
	case "put-listing":
		return cmdArchivePutListing(args[1:], out, errOut)
	case "get":
		return cmdArchiveGet(args[1:], out, errOut)
	case "has":
		return cmdArchiveHas(args[1:], out, errOut)
	case "export":
		return cmdArchiveExport(args[1:], out, errOut)
	case "import":
		return cmdArchiveImport(args[1:], out, errOut)
	default:
		fmt.Fprintf(errOut, "unknown archive subcommand: %s\n", args[0])
		return 2
	}
}

type commonFlags struct {
	backend      string
	configPath   string
	listBackends bool
}

func (c *commonFlags) add(fs *flag.FlagSet) {
	fs.StringVar(&c.backend, "backend", "", "Archive backend name (default localfs; with -archive-config, the preferred write backend)")
	fs.StringVar(&c.configPath, "archive-config", "", "Multi-backend archive config file (JSON)")
	fs.BoolVar(&c.listBackends, "list-backends", false, "List supported backends and exit")
	registry.RegisterFlags(fs, registry.UsageCLI)
}

func (c *commonFlags) open() (storage.Archive, func() error, error) {
	if c.configPath != "" {
		cfg, err := archiveconfig.LoadFile(c.configPath)
		if err != nil {
			return nil, nil, err
		}
		return cfg.Open(registry.UsageCLI, c.backend)
	}
	backend := c.backend
	if backend == "" {
		backend = "localfs"
	}
	return registry.Open(backend, registry.UsageCLI)
}

func printBackends(w io.Writer) {
	for _, b := range registry.List(registry.UsageCLI) {
		if b.Description == "" {
			_, _ = fmt.Fprintf(w, "%s\n", b.Name)
			continue
		}
		_, _ = fmt.Fprintf(w, "%s\t%s\n", b.Name, b.Description)
	}
}

func cmdArchivePut(args []string, out io.Writer, errOut io.Writer) int {
	fs := flag.NewFlagSet("archive put", flag.ContinueOnError)
	fs.SetOutput(errOut)
	var common commonFlags
	common.add(fs)
	if err := fs.Parse(args); err != nil {
		return 2
	}
	if common.listBackends {
		printBackends(out)
		return 0
	}
	if fs.NArg() != 1 {
		fmt.Fprintln(errOut, "usage: xdao-roasort archive put [common flags] <file>")
		return 2
	}

	arc, closeFn, err := common.open()
	if err != nil {
		fmt.Fprintf(errOut, "Error: %v\n", err)
		return 1
	}
	if closeFn != nil {
		defer closeFn()
	}

	p := fs.Arg(0)
	b, err := os.ReadFile(p)
	if err != nil {
		fmt.Fprintf(errOut, "Error: read %s: %v\n", filepath.Base(p), err)
		return 1
	}
	id, err := arc.Put(b)
	if err != nil {
		fmt.Fprintf(errOut, "Error: %v\n", err)
		return 1
	}
	_, _ = fmt.Fprintln(out, id.String())
	return 0
}

func cmdArchivePutListing(args []string, out io.Writer, errOut io.Writer) int {
	fs := flag.NewFlagSet("archive put-listing", flag.ContinueOnError)
	fs.SetOutput(errOut)
	var common commonFlags
	common.add(fs)

	var kindName string
	fs.StringVar(&kindName, "t", "text", "Input kind: text or roa")

	if err := fs.Parse(args); err != nil {
		return 2
	}
	if common.listBackends {
		printBackends(out)
		return 0
	}
	if fs.NArg() > 1 {
		fmt.Fprintln(errOut, "usage: xdao-roasort archive put-listing [common flags] [-t text|roa] [file]")
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
		fmt.Fprintf(errOut, "Error: %v\n", err)
		return 1
	}

	arc, closeFn, err := common.open()
	if err != nil {
		fmt.Fprintf(errOut, "Error: %v\n", err)
		return 1
	}
	if closeFn != nil {
		defer closeFn()
	}

	srcID, err := arc.Put(data)
	if err != nil {
		fmt.Fprintf(errOut, "Error: %v\n", err)
		return 1
	}
	listID, err := storage.PutListing(arc, res.Lines)
	if err != nil {
		fmt.Fprintf(errOut, "Error: %v\n", err)
		return 1
	}
	_, _ = fmt.Fprintf(out, "Source-CID: %s\n", srcID)
	_, _ = fmt.Fprintf(out, "Listing-CID: %s\n", listID)

	if res.Diagnostic != "" {
		fmt.Fprintf(errOut, "Error: %s\n", res.Diagnostic)
		return 1
	}
	return 0
}

func cmdArchiveGet(args []string, out io.Writer, errOut io.Writer) int {
	fs := flag.NewFlagSet("archive get", flag.ContinueOnError)
	fs.SetOutput(errOut)
	var common commonFlags
	common.add(fs)

	var cidStr string
	var outPath string
	fs.StringVar(&cidStr, "cid", "", "CID to fetch")
	fs.StringVar(&outPath, "out", "", "Output file (optional; default stdout)")

	if err := fs.Parse(args); err != nil {
		return 2
	}
	if common.listBackends {
		printBackends(out)
		return 0
	}
	if cidStr == "" {
		fmt.Fprintln(errOut, "missing -cid")
		return 2
	}
	if fs.NArg() != 0 {
		fmt.Fprintln(errOut, "usage: xdao-roasort archive get [common flags] -cid <cid> [-out <file>]")
		return 2
	}

	arc, closeFn, err := common.open()
	if err != nil {
		fmt.Fprintf(errOut, "Error: %v\n", err)
		return 1
	}
	if closeFn != nil {
		defer closeFn()
	}

	id, err := contentid.Parse(cidStr)
	if err != nil {
		fmt.Fprintf(errOut, "Error: %v\n", storage.ErrInvalidCID)
		return 1
	}

	b, err := arc.Get(id)
	if err != nil {
		fmt.Fprintf(errOut, "Error: %v\n", err)
		return 1
	}

	if outPath == "" {
		_, _ = out.Write(b)
		return 0
	}
	if err := os.WriteFile(outPath, b, 0o600); err != nil {
		fmt.Fprintf(errOut, "Error: write %s: %v\n", outPath, err)
		return 1
	}
	return 0
}

func cmdArchiveHas(args []string, out io.Writer, errOut io.Writer) int {
	fs := flag.NewFlagSet("archive has", flag.ContinueOnError)
	fs.SetOutput(errOut)
	var common commonFlags
	common.add(fs)

	var cidStr string
	fs.StringVar(&cidStr, "cid", "", "CID to probe")

	if err := fs.Parse(args); err != nil {
		return 2
	}
	if common.listBackends {
		printBackends(out)
		return 0
	}
	if cidStr == "" {
		fmt.Fprintln(errOut, "missing -cid")
		return 2
	}

	arc, closeFn, err := common.open()
	if err != nil {
		fmt.Fprintf(errOut, "Error: %v\n", err)
		return 1
	}
	if closeFn != nil {
		defer closeFn()
	}

	id, err := contentid.Parse(cidStr)
	if err != nil {
		fmt.Fprintf(errOut, "Error: %v\n", storage.ErrInvalidCID)
		return 1
	}
	if arc.Has(id) {
		_, _ = fmt.Fprintln(out, "true")
		return 0
	}
	_, _ = fmt.Fprintln(out, "false")
	return 1
}

func cmdArchiveExport(args []string, out io.Writer, errOut io.Writer) int {
	fs := flag.NewFlagSet("archive export", flag.ContinueOnError)
	fs.SetOutput(errOut)
	var common commonFlags
	common.add(fs)

	var cids multiString
	var labels multiString
	var outPath string
	fs.Var(&cids, "cid", "Object CID to export (repeatable)")
	fs.Var(&labels, "label", "Label as name=<cid>; labeled objects are exported too (repeatable)")
	fs.StringVar(&outPath, "out", "", "Output bundle file (default stdout)")

	if err := fs.Parse(args); err != nil {
		return 2
	}
	if common.listBackends {
		printBackends(out)
		return 0
	}
	if len(cids) == 0 && len(labels) == 0 {
		fmt.Fprintln(errOut, "usage: xdao-roasort archive export [common flags] -cid <cid> [-cid ...] [-label name=<cid> ...] [-out <bundle.tar>]")
		return 2
	}

	ids := make([]cid.Cid, 0, len(cids)+len(labels))
	for _, s := range cids {
		id, err := contentid.Parse(s)
		if err != nil {
			fmt.Fprintf(errOut, "Error: invalid -cid %q: %v\n", s, err)
			return 1
		}
		ids = append(ids, id)
	}
	labelMap := make(map[string]cid.Cid, len(labels))
	for _, l := range labels {
		name, v, ok := strings.Cut(l, "=")
		if !ok || name == "" {
			fmt.Fprintf(errOut, "invalid -label %q (expected name=<cid>)\n", l)
			return 2
		}
		id, err := contentid.Parse(v)
		if err != nil {
			fmt.Fprintf(errOut, "Error: invalid -label %q: %v\n", l, err)
			return 1
		}
		labelMap[name] = id
		ids = append(ids, id)
	}

	arc, closeFn, err := common.open()
	if err != nil {
		fmt.Fprintf(errOut, "Error: %v\n", err)
		return 1
	}
	if closeFn != nil {
		defer closeFn()
	}

	var w io.Writer = out
	if outPath != "" {
		f, err := os.Create(outPath)
		if err != nil {
			fmt.Fprintf(errOut, "Error: create %s: %v\n", outPath, err)
			return 1
		}
		defer f.Close()
		w = f
	}
	opts := bundle.ExportOptions{Labels: labelMap, IncludeIndex: true}
	if err := bundle.Export(w, arc, ids, opts); err != nil {
		fmt.Fprintf(errOut, "Error: %v\n", err)
		return 1
	}
	return 0
}

func cmdArchiveImport(args []string, out io.Writer, errOut io.Writer) int {
	fs := flag.NewFlagSet("archive import", flag.ContinueOnError)
	fs.SetOutput(errOut)
	var common commonFlags
	common.add(fs)

	var ignoreUnknown bool
	fs.BoolVar(&ignoreUnknown, "ignore-unknown", false, "Ignore unknown bundle entries instead of failing")

	if err := fs.Parse(args); err != nil {
		return 2
	}
	if common.listBackends {
		printBackends(out)
		return 0
	}
	if fs.NArg() > 1 {
		fmt.Fprintln(errOut, "usage: xdao-roasort archive import [common flags] [-ignore-unknown] [bundle.tar]")
		return 2
	}

	var r io.Reader = os.Stdin
	if fs.NArg() == 1 && fs.Arg(0) != "-" {
		f, err := os.Open(fs.Arg(0))
		if err != nil {
			fmt.Fprintf(errOut, "Error: %v\n", err)
			return 1
		}
		defer f.Close()
		r = f
	}

	arc, closeFn, err := common.open()
	if err != nil {
		fmt.Fprintf(errOut, "Error: %v\n", err)
		return 1
	}
	if closeFn != nil {
		defer closeFn()
	}

	if err := bundle.ImportWithOptions(r, arc, bundle.ImportOptions{IgnoreUnknown: ignoreUnknown}); err != nil {
		fmt.Fprintf(errOut, "Error: %v\n", err)
		return 1
	}
	return 0
}

type multiString []string

func (m *multiString) String() string { return strings.Join(*m, ",") }

func (m *multiString) Set(v string) error {
	v = strings.TrimSpace(v)
	if v == "" {
		return errors.New("empty value")
	}
	*m = append(*m, v)
	return nil
}
