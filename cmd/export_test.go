package main

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tealeg/xlsx/v2"

	"github.com/sells-group/visibility-cli/internal/model"
)

func TestWriteWorkbook(t *testing.T) {
	scan := &model.Scan{
		ID: "scan-1",
		Profile: model.BusinessProfile{
			Name:   "Acme Plumbing",
			Domain: "acmeplumbing.com",
		},
		Status: model.ScanStatusComplete,
		Result: &model.ScanResult{
			Analysis: &model.Analysis{
				OverallRecognition: 75,
				ServiceKnowledge: map[string]model.ServiceKnowledge{
					"drain cleaning": {KnownBy: []string{"anthropic"}, UnknownBy: []string{"gemini"}},
				},
				KnowledgeGaps: []string{"pipe relining"},
				CompetitorPositioning: map[string]model.Positioning{
					"anthropic": model.PositioningStronger,
				},
			},
			Results: []model.ProviderResult{
				{
					Provider: "anthropic", QueryIndex: 0, QueryType: model.QueryBrandRecall,
					Recognized: true, Confidence: 80, Positioning: model.PositioningNotCompared,
					Response: "Acme Plumbing is well known.", LatencyMs: 1200,
				},
				{
					Provider: "gemini", QueryIndex: 0, QueryType: model.QueryBrandRecall,
					FailureKind: model.FailureTimeout, Response: "context deadline exceeded",
					Positioning: model.PositioningNotCompared,
				},
			},
			Providers:    []string{"anthropic", "gemini"},
			TotalTokens:  model.TokenUsage{InputTokens: 40, OutputTokens: 160},
			TotalCostUSD: 0.0012,
			DurationMs:   4100,
		},
	}
	usage := []model.UsageRecord{
		{
			ScanID: "scan-1", Provider: "anthropic", Model: "claude-haiku-4-5-20251001",
			QueryIndex: 0, Usage: model.TokenUsage{InputTokens: 40, OutputTokens: 160}, CostUSD: 0.0012,
		},
	}

	path := filepath.Join(t.TempDir(), "out.xlsx")
	require.NoError(t, writeWorkbook(path, scan, usage))

	f, err := xlsx.OpenFile(path)
	require.NoError(t, err)
	require.Len(t, f.Sheets, 3)
	assert.Equal(t, "Summary", f.Sheets[0].Name)
	assert.Equal(t, "Results", f.Sheets[1].Name)
	assert.Equal(t, "Usage", f.Sheets[2].Name)

	// Results sheet: header plus one row per provider result.
	results := f.Sheets[1]
	require.Len(t, results.Rows, 3)
	assert.Equal(t, "Provider", results.Rows[0].Cells[2].Value)
	assert.Equal(t, "anthropic", results.Rows[1].Cells[2].Value)
	assert.Equal(t, "timeout", results.Rows[2].Cells[7].Value)

	// Usage sheet carries the model id.
	assert.Equal(t, "claude-haiku-4-5-20251001", f.Sheets[2].Rows[1].Cells[2].Value)
}

func TestWriteWorkbookSummaryValues(t *testing.T) {
	scan := &model.Scan{
		ID:      "scan-2",
		Profile: model.BusinessProfile{Name: "Bolt", Domain: "bolt.io"},
		Status:  model.ScanStatusComplete,
		Result: &model.ScanResult{
			Analysis:     &model.Analysis{OverallRecognition: 25},
			Providers:    []string{"openai"},
			TotalTokens:  model.TokenUsage{InputTokens: 10, OutputTokens: 30},
			TotalCostUSD: 0.0001,
		},
	}

	path := filepath.Join(t.TempDir(), "out.xlsx")
	require.NoError(t, writeWorkbook(path, scan, nil))

	f, err := xlsx.OpenFile(path)
	require.NoError(t, err)

	summary := map[string]string{}
	for _, row := range f.Sheets[0].Rows {
		if len(row.Cells) >= 2 {
			summary[row.Cells[0].Value] = row.Cells[1].Value
		}
	}
	assert.Equal(t, "Bolt", summary["Business"])
	assert.Equal(t, "25%", summary["Overall recognition"])
	assert.Equal(t, "40", summary["Total tokens"])
}
