// cmd/tools/listings-cli/main.go
package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"listings-workers/internal/common/logger"
)

type rootOptions struct {
	verbose    bool
	jsonOutput bool

	zapLog *zap.Logger
	log    logger.Logger
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}

	root := &cobra.Command{
		Use:   "listings-cli",
		Short: "Run the listing search pipeline by hand",
		Long: `listings-cli exposes the steps the search workers run so they can be
tried against a live listings API without starting a process instance.

  classify       decide whether a query names a place
  build-request  render the GET /listings path for a query and filters
  search         classify, fetch and filter in one go
  interactive    read queries from stdin; only the newest result is kept
  cache          manage the listings response cache
  registry       check the activity registry`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			level := "warn"
			if opts.verbose {
				level = "debug"
			}
			opts.zapLog = logger.New(level, "console")
			opts.log = logger.NewZapAdapter(opts.zapLog)
			return nil
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			if opts.zapLog != nil {
				_ = opts.zapLog.Sync()
			}
		},
	}

	root.PersistentFlags().BoolVarP(&opts.verbose, "verbose", "v", false, "Enable debug logging")
	root.PersistentFlags().BoolVar(&opts.jsonOutput, "json", false, "Print results as JSON")

	root.AddCommand(
		newClassifyCmd(opts),
		newBuildRequestCmd(opts),
		newSearchCmd(opts),
		newInteractiveCmd(opts),
		newCacheCmd(opts),
		newRegistryCmd(opts),
	)
	return root
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func printJSON(w io.Writer, v interface{}) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("encode output: %w", err)
	}
	return nil
}
