package main

import (
	"encoding/json"
	"os"
	"os/signal"
	"syscall"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"github.com/sells-group/visibility-cli/internal/batch"
)

var (
	batchFile        string
	batchLimit       int
	batchConcurrency int
)

var batchCmd = &cobra.Command{
	Use:   "batch",
	Short: "Scan many businesses from a CSV or XLSX file",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		profiles, err := batch.ReadProfiles(batchFile)
		if err != nil {
			return err
		}

		env, err := initPipeline(ctx)
		if err != nil {
			return err
		}
		defer env.Close()

		summary, err := batch.Process(ctx, profiles, batchLimit, batchConcurrency, env.Pipeline.Run)
		if err != nil {
			return eris.Wrap(err, "batch scan")
		}

		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(summary)
	},
}

func init() {
	batchCmd.Flags().StringVar(&batchFile, "file", "", "profiles file, .csv or .xlsx (required)")
	batchCmd.Flags().IntVar(&batchLimit, "limit", 0, "max profiles to scan (0 = all)")
	batchCmd.Flags().IntVar(&batchConcurrency, "concurrency", 2, "scans to run in parallel")
	_ = batchCmd.MarkFlagRequired("file")
	rootCmd.AddCommand(batchCmd)
}
