// Command finchd runs the FinchDB server: it opens (or creates) a
// partition file, wires the storage manager, write manager, and facade,
// and serves the line-oriented request protocol on the configured port.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/finch-db/finchdb/internal/kv"
	"github.com/finch-db/finchdb/internal/partition"
	"github.com/finch-db/finchdb/internal/server"
	"github.com/finch-db/finchdb/internal/storage"
	"github.com/finch-db/finchdb/internal/writebuffer"
	"github.com/finch-db/finchdb/pkg/options"
)

func main() {
	opts := options.NewDefaultOptions()

	root := &cobra.Command{
		Use:   "finchd",
		Short: "FinchDB key-value server",
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(opts)
		},
	}

	flags := root.Flags()
	flags.Uint32Var(&opts.BufferSizeBytes, "buffer-size", opts.BufferSizeBytes, "sets the size of the memory buffer")
	flags.StringVar(&opts.PartitionPath, "partition-path", opts.PartitionPath, "path to the partition file")
	flags.Uint16Var(&opts.GrowthPages, "growth-pages", opts.GrowthPages, "number of pages a full partition grows by (minimum 8)")
	flags.Uint16Var(&opts.Port, "port", opts.Port, "port on which the server listens")
	flags.BoolVar(&opts.DeleteOnClose, "delete-on-close", opts.DeleteOnClose, "remove the partition file when the server shuts down")
	flags.BoolVar(&opts.Trace, "trace", opts.Trace, "enable debug-level engine tracing")

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run(opts options.Options) error {
	if opts.GrowthPages < options.MinGrowthPages {
		opts.GrowthPages = options.MinGrowthPages
	}

	zapCfg := zap.NewProductionConfig()
	if opts.Trace {
		zapCfg.Level = zap.NewAtomicLevelAt(zap.DebugLevel)
	}
	zl, err := zapCfg.Build()
	if err != nil {
		return err
	}
	defer zl.Sync()
	logger := zl.Sugar()

	part, err := partition.OpenFile(opts, true, logger)
	if err != nil {
		return err
	}
	defer part.Close()

	storeMgr := storage.New(part, logger)
	writeMgr := writebuffer.New(storeMgr, opts.BufferSizeBytes, logger)
	facade := kv.New(writeMgr, storeMgr, logger)

	srv := server.New(facade, logger)
	return srv.ListenAndServe(fmt.Sprintf(":%d", opts.Port))
}
