package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"text/tabwriter"
	"time"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"github.com/sells-group/visibility-cli/internal/model"
	"github.com/sells-group/visibility-cli/internal/store"
)

var scansCmd = &cobra.Command{
	Use:   "scans",
	Short: "Inspect scan history",
	Long:  "Commands for listing, viewing, and summarizing visibility scans.",
}

// -- scans list --

var scansListCmd = &cobra.Command{
	Use:   "list",
	Short: "List scans",
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx := cmd.Context()

		st, err := openStore(ctx)
		if err != nil {
			return err
		}
		defer st.Close() //nolint:errcheck

		status, _ := cmd.Flags().GetString("status")
		domain, _ := cmd.Flags().GetString("domain")
		limit, _ := cmd.Flags().GetInt("limit")

		scans, err := st.ListScans(ctx, store.ScanFilter{
			Status: model.ScanStatus(status),
			Domain: domain,
			Limit:  limit,
		})
		if err != nil {
			return eris.Wrap(err, "scans list")
		}

		if len(scans) == 0 {
			fmt.Fprintln(os.Stderr, "No scans found.")
			return nil
		}

		formatScansList(os.Stdout, scans)
		return nil
	},
}

// -- scans show --

var scansShowCmd = &cobra.Command{
	Use:   "show <scan-id>",
	Short: "Show full details of a scan",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		st, err := openStore(ctx)
		if err != nil {
			return err
		}
		defer st.Close() //nolint:errcheck

		scan, err := st.GetScan(ctx, args[0])
		if err != nil {
			return eris.Wrap(err, "scans show")
		}

		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(scan)
	},
}

// -- scans usage --

var scansUsageCmd = &cobra.Command{
	Use:   "usage <scan-id>",
	Short: "Show the per-call usage records of a scan",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		st, err := openStore(ctx)
		if err != nil {
			return err
		}
		defer st.Close() //nolint:errcheck

		records, err := st.ListUsage(ctx, args[0])
		if err != nil {
			return eris.Wrap(err, "scans usage")
		}

		if len(records) == 0 {
			fmt.Fprintln(os.Stderr, "No usage records found.")
			return nil
		}

		formatUsage(os.Stdout, records)
		return nil
	},
}

func formatScansList(w io.Writer, scans []model.Scan) {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tBUSINESS\tDOMAIN\tSTATUS\tRECOGNITION\tCOST\tCREATED")
	for _, s := range scans {
		recognition := "-"
		costUSD := "-"
		if s.Result != nil && s.Result.Analysis != nil {
			recognition = fmt.Sprintf("%d%%", s.Result.Analysis.OverallRecognition)
			costUSD = fmt.Sprintf("$%.4f", s.Result.TotalCostUSD)
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s\t%s\n",
			s.ID, s.Profile.Name, s.Profile.Domain, s.Status,
			recognition, costUSD, s.CreatedAt.Format(time.RFC3339),
		)
	}
	tw.Flush()
}

func formatUsage(w io.Writer, records []model.UsageRecord) {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "QUERY\tPROVIDER\tMODEL\tIN\tOUT\tCOST")

	var totalIn, totalOut int
	var totalCost float64
	for _, r := range records {
		fmt.Fprintf(tw, "%d\t%s\t%s\t%d\t%d\t$%.6f\n",
			r.QueryIndex, r.Provider, r.Model,
			r.Usage.InputTokens, r.Usage.OutputTokens, r.CostUSD,
		)
		totalIn += r.Usage.InputTokens
		totalOut += r.Usage.OutputTokens
		totalCost += r.CostUSD
	}
	fmt.Fprintf(tw, "\t\tTOTAL\t%d\t%d\t$%.6f\n", totalIn, totalOut, totalCost)
	tw.Flush()
}

func init() {
	scansListCmd.Flags().String("status", "", "filter by status (queued|generating|querying|aggregating|complete|failed)")
	scansListCmd.Flags().String("domain", "", "filter by business domain")
	scansListCmd.Flags().Int("limit", 20, "max scans to list")

	scansCmd.AddCommand(scansListCmd)
	scansCmd.AddCommand(scansShowCmd)
	scansCmd.AddCommand(scansUsageCmd)
	rootCmd.AddCommand(scansCmd)
}
