// Package store persists scans and usage records. Two backends are
// provided: SQLite for local use and Postgres for shared deployments.
package store

import (
	"context"
	"time"

	"github.com/sells-group/visibility-cli/internal/model"
)

// ScanFilter specifies criteria for listing scans.
type ScanFilter struct {
	Status       model.ScanStatus `json:"status,omitempty"`
	Domain       string           `json:"domain,omitempty"`
	CreatedAfter time.Time        `json:"created_after,omitempty"`
	Limit        int              `json:"limit,omitempty"`
	Offset       int              `json:"offset,omitempty"`
}

// Store defines the persistence interface for the scan pipeline. The
// pipeline writes once per scan; reads happen from the CLI and HTTP
// surfaces.
type Store interface {
	// Scans
	CreateScan(ctx context.Context, profile model.BusinessProfile) (*model.Scan, error)
	UpdateScanStatus(ctx context.Context, scanID string, status model.ScanStatus) error
	UpdateScanResult(ctx context.Context, scanID string, result *model.ScanResult) error
	GetScan(ctx context.Context, scanID string) (*model.Scan, error)
	ListScans(ctx context.Context, filter ScanFilter) ([]model.Scan, error)

	// Usage records (cost-tracking trail)
	SaveUsage(ctx context.Context, records []model.UsageRecord) error
	ListUsage(ctx context.Context, scanID string) ([]model.UsageRecord, error)

	// Lifecycle
	Migrate(ctx context.Context) error
	Close() error
}
