package main

import (
	"bytes"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/sells-group/visibility-cli/internal/model"
)

func TestFormatScansList(t *testing.T) {
	now := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)
	scans := []model.Scan{
		{
			ID:        "scan-1",
			Profile:   model.BusinessProfile{Name: "Acme Plumbing", Domain: "acmeplumbing.com"},
			Status:    model.ScanStatusComplete,
			CreatedAt: now,
			Result: &model.ScanResult{
				Analysis:     &model.Analysis{OverallRecognition: 75},
				TotalCostUSD: 0.0123,
			},
		},
		{
			ID:        "scan-2",
			Profile:   model.BusinessProfile{Name: "Bolt", Domain: "bolt.io"},
			Status:    model.ScanStatusQuerying,
			CreatedAt: now,
		},
	}

	var buf bytes.Buffer
	formatScansList(&buf, scans)
	out := buf.String()

	assert.Contains(t, out, "BUSINESS")
	assert.Contains(t, out, "Acme Plumbing")
	assert.Contains(t, out, "75%")
	assert.Contains(t, out, "$0.0123")
	// In-flight scan has no result columns.
	assert.Contains(t, out, "querying")
}

func TestFormatUsage(t *testing.T) {
	records := []model.UsageRecord{
		{QueryIndex: 0, Provider: "anthropic", Model: "m1", Usage: model.TokenUsage{InputTokens: 10, OutputTokens: 40}, CostUSD: 0.001},
		{QueryIndex: 1, Provider: "openai", Model: "m2", Usage: model.TokenUsage{InputTokens: 15, OutputTokens: 60}, CostUSD: 0.002},
	}

	var buf bytes.Buffer
	formatUsage(&buf, records)
	out := buf.String()

	assert.Contains(t, out, "PROVIDER")
	assert.Contains(t, out, "anthropic")
	assert.Contains(t, out, "TOTAL")
	assert.Contains(t, out, "25")  // total input tokens
	assert.Contains(t, out, "100") // total output tokens
	assert.Contains(t, out, "$0.003000")
}
