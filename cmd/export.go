package main

import (
	"fmt"
	"sort"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"github.com/tealeg/xlsx/v2"
	"go.uber.org/zap"

	"github.com/sells-group/visibility-cli/internal/model"
)

var exportOut string

var exportCmd = &cobra.Command{
	Use:   "export <scan-id>",
	Short: "Export a completed scan to an XLSX workbook",
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
			return eris.Wrap(err, "export: load scan")
		}
		if scan.Result == nil {
			return eris.Errorf("scan %s has no result to export (status %s)", scan.ID, scan.Status)
		}

		usage, err := st.ListUsage(ctx, scan.ID)
		if err != nil {
			return eris.Wrap(err, "export: load usage")
		}

		out := exportOut
		if out == "" {
			out = fmt.Sprintf("visibility-%s.xlsx", scan.ID)
		}

		if err := writeWorkbook(out, scan, usage); err != nil {
			return err
		}

		zap.L().Info("scan exported", zap.String("scan_id", scan.ID), zap.String("file", out))
		return nil
	},
}

func writeWorkbook(path string, scan *model.Scan, usage []model.UsageRecord) error {
	f := xlsx.NewFile()

	if err := writeSummarySheet(f, scan); err != nil {
		return err
	}
	if err := writeResultsSheet(f, scan.Result.Results); err != nil {
		return err
	}
	if err := writeUsageSheet(f, usage); err != nil {
		return err
	}

	return eris.Wrap(f.Save(path), "export: save workbook")
}

func writeSummarySheet(f *xlsx.File, scan *model.Scan) error {
	sheet, err := f.AddSheet("Summary")
	if err != nil {
		return eris.Wrap(err, "export: add summary sheet")
	}

	addKV := func(key, value string) {
		row := sheet.AddRow()
		row.AddCell().Value = key
		row.AddCell().Value = value
	}

	result := scan.Result
	addKV("Scan ID", scan.ID)
	addKV("Business", scan.Profile.Name)
	addKV("Domain", scan.Profile.Domain)
	addKV("Status", string(scan.Status))
	addKV("Providers", fmt.Sprintf("%v", result.Providers))
	addKV("Overall recognition", fmt.Sprintf("%d%%", result.Analysis.OverallRecognition))
	addKV("Total tokens", fmt.Sprintf("%d", result.TotalTokens.Total()))
	addKV("Total cost (USD)", fmt.Sprintf("%.6f", result.TotalCostUSD))
	addKV("Duration (ms)", fmt.Sprintf("%d", result.DurationMs))

	if len(result.Analysis.KnowledgeGaps) > 0 {
		addKV("Knowledge gaps", fmt.Sprintf("%v", result.Analysis.KnowledgeGaps))
	}

	// Per-service knowledge, services sorted for a stable sheet.
	services := make([]string, 0, len(result.Analysis.ServiceKnowledge))
	for service := range result.Analysis.ServiceKnowledge {
		services = append(services, service)
	}
	sort.Strings(services)
	for _, service := range services {
		k := result.Analysis.ServiceKnowledge[service]
		addKV("Service: "+service, fmt.Sprintf("known by %v, unknown by %v", k.KnownBy, k.UnknownBy))
	}

	providers := make([]string, 0, len(result.Analysis.CompetitorPositioning))
	for p := range result.Analysis.CompetitorPositioning {
		providers = append(providers, p)
	}
	sort.Strings(providers)
	for _, p := range providers {
		addKV("Positioning: "+p, string(result.Analysis.CompetitorPositioning[p]))
	}

	return nil
}

func writeResultsSheet(f *xlsx.File, results []model.ProviderResult) error {
	sheet, err := f.AddSheet("Results")
	if err != nil {
		return eris.Wrap(err, "export: add results sheet")
	}

	header := sheet.AddRow()
	for _, h := range []string{"Query", "Type", "Provider", "Recognized", "Attribute", "Confidence", "Positioning", "Failure", "Latency (ms)", "Response"} {
		header.AddCell().Value = h
	}

	for _, r := range results {
		row := sheet.AddRow()
		row.AddCell().SetInt(r.QueryIndex)
		row.AddCell().Value = string(r.QueryType)
		row.AddCell().Value = r.Provider
		row.AddCell().SetBool(r.Recognized)
		row.AddCell().SetBool(r.AttributeMentioned)
		row.AddCell().SetInt(r.Confidence)
		row.AddCell().Value = string(r.Positioning)
		row.AddCell().Value = string(r.FailureKind)
		row.AddCell().SetInt64(r.LatencyMs)
		row.AddCell().Value = r.Response
	}

	return nil
}

func writeUsageSheet(f *xlsx.File, usage []model.UsageRecord) error {
	sheet, err := f.AddSheet("Usage")
	if err != nil {
		return eris.Wrap(err, "export: add usage sheet")
	}

	header := sheet.AddRow()
	for _, h := range []string{"Query", "Provider", "Model", "Input tokens", "Output tokens", "Cost (USD)"} {
		header.AddCell().Value = h
	}

	for _, rec := range usage {
		row := sheet.AddRow()
		row.AddCell().SetInt(rec.QueryIndex)
		row.AddCell().Value = rec.Provider
		row.AddCell().Value = rec.Model
		row.AddCell().SetInt(rec.Usage.InputTokens)
		row.AddCell().SetInt(rec.Usage.OutputTokens)
		row.AddCell().SetFloat(rec.CostUSD)
	}

	return nil
}

func init() {
	exportCmd.Flags().StringVar(&exportOut, "out", "", "output path (default visibility-<scan-id>.xlsx)")
	rootCmd.AddCommand(exportCmd)
}
