package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sells-group/visibility-cli/internal/model"
)

var (
	scanName       string
	scanDomain     string
	scanType       string
	scanLocation   string
	scanServices   []string
	scanCompetitor string
	scanQuiet      bool
)

var scanCmd = &cobra.Command{
	Use:   "scan",
	Short: "Run a visibility scan for a single business",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		env, err := initPipeline(ctx)
		if err != nil {
			return err
		}
		defer env.Close()

		profile := model.BusinessProfile{
			Name:       scanName,
			Domain:     scanDomain,
			Type:       scanType,
			Location:   scanLocation,
			Services:   scanServices,
			Competitor: scanCompetitor,
		}

		pipe := env.Pipeline
		if !scanQuiet {
			pipe = pipe.WithProgress(func(completed, total int) {
				fmt.Fprintf(os.Stderr, "\rquerying providers... %d/%d", completed, total)
				if completed == total {
					fmt.Fprintln(os.Stderr)
				}
			})
		}

		scan, err := pipe.Run(ctx, profile)
		if err != nil {
			return eris.Wrap(err, "scan run")
		}

		zap.L().Info("scan complete",
			zap.String("scan_id", scan.ID),
			zap.String("business", profile.Name),
			zap.Int("overall_recognition", scan.Result.Analysis.OverallRecognition),
			zap.Float64("cost_usd", scan.Result.TotalCostUSD),
		)

		// Print result JSON to stdout
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(scan)
	},
}

func init() {
	scanCmd.Flags().StringVar(&scanName, "name", "", "business name (required)")
	scanCmd.Flags().StringVar(&scanDomain, "domain", "", "business website domain")
	scanCmd.Flags().StringVar(&scanType, "type", "", "business type, e.g. plumber")
	scanCmd.Flags().StringVar(&scanLocation, "location", "", "city/region, e.g. \"Austin, TX\"")
	scanCmd.Flags().StringSliceVar(&scanServices, "services", nil, "services to test (first 3 are queried)")
	scanCmd.Flags().StringVar(&scanCompetitor, "competitor", "", "competitor name for comparison")
	scanCmd.Flags().BoolVar(&scanQuiet, "quiet", false, "suppress progress output")
	_ = scanCmd.MarkFlagRequired("name")
	rootCmd.AddCommand(scanCmd)
}
