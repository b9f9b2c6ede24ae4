package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"github.com/sells-group/visibility-cli/internal/monitoring"
)

var statsLookback int

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Summarize scan health over a lookback window",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		st, err := openStore(ctx)
		if err != nil {
			return err
		}
		defer st.Close() //nolint:errcheck

		lookback := statsLookback
		if lookback == 0 {
			lookback = cfg.Monitoring.LookbackHours
		}

		snap, err := monitoring.NewCollector(st).Collect(ctx, lookback)
		if err != nil {
			return eris.Wrap(err, "collect stats")
		}

		alerts := monitoring.Evaluate(snap, monitoringThresholds())
		for _, a := range alerts {
			fmt.Fprintf(os.Stderr, "[%s] %s\n", a.Severity, a.Message)
		}

		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(snap)
	},
}

func monitoringThresholds() monitoring.Thresholds {
	return monitoring.Thresholds{
		MaxFailRate:    cfg.Monitoring.MaxFailRate,
		MaxCostUSD:     cfg.Monitoring.MaxCostUSD,
		MinFinishedFor: cfg.Monitoring.MinFinished,
	}
}

func init() {
	statsCmd.Flags().IntVar(&statsLookback, "lookback", 0, "lookback window in hours (default from config)")
	rootCmd.AddCommand(statsCmd)
}
