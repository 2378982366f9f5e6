package ipfs

import (
	"flag"
	"os"

	"xdao.co/roasort/storage"
	"xdao.co/roasort/storage/registry"
)

var (
	flagBin  string
	flagPath string
)

func init() {
	registry.MustRegister(registry.Backend{
		Name:        "ipfs",
		Description: "Kubo-backed archive (shells out to the ipfs CLI)",
		Usage:       registry.UsageCLI | registry.UsageDaemon,
		RegisterFlags: func(fs *flag.FlagSet) {
			fs.StringVar(&flagBin, "ipfs-bin", "", "Path to the ipfs binary (for --backend=ipfs); defaults to $PATH lookup")
			fs.StringVar(&flagPath, "ipfs-path", "", "IPFS repo directory (for --backend=ipfs); defaults to the ambient IPFS_PATH")
		},
		Open: func() (storage.Archive, func() error, error) {
			opts := Options{Bin: flagBin}
			if flagPath != "" {
				opts.Env = append(os.Environ(), "IPFS_PATH="+flagPath)
			}
			return New(opts), nil, nil
		},
	})
}
