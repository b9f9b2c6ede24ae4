package batch

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tealeg/xlsx/v2"

	"github.com/sells-group/visibility-cli/internal/model"
)

func TestReadProfilesCSV(t *testing.T) {
	content := strings.Join([]string{
		"name,domain,type,location,services,competitor",
		`Acme Plumbing,acmeplumbing.com,plumber,"Austin, TX",drain cleaning; water heater repair,Bolt Plumbing`,
		"Bolt Plumbing,bolt.io,plumber,,,",
		",missing-name.com,,,,",
	}, "\n")

	path := filepath.Join(t.TempDir(), "profiles.csv")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	profiles, err := ReadProfiles(path)
	require.NoError(t, err)
	require.Len(t, profiles, 2, "nameless row is skipped")

	acme := profiles[0]
	assert.Equal(t, "Acme Plumbing", acme.Name)
	assert.Equal(t, "acmeplumbing.com", acme.Domain)
	assert.Equal(t, "Austin, TX", acme.Location)
	assert.Equal(t, []string{"drain cleaning", "water heater repair"}, acme.Services)
	assert.Equal(t, "Bolt Plumbing", acme.Competitor)

	assert.Empty(t, profiles[1].Services)
}

func TestReadProfilesXLSX(t *testing.T) {
	f := xlsx.NewFile()
	sheet, err := f.AddSheet("Profiles")
	require.NoError(t, err)

	header := sheet.AddRow()
	for _, h := range []string{"Name", "Domain", "Services"} {
		header.AddCell().Value = h
	}
	row := sheet.AddRow()
	row.AddCell().Value = "Acme Plumbing"
	row.AddCell().Value = "acmeplumbing.com"
	row.AddCell().Value = "drain cleaning"

	path := filepath.Join(t.TempDir(), "profiles.xlsx")
	require.NoError(t, f.Save(path))

	profiles, err := ReadProfiles(path)
	require.NoError(t, err)
	require.Len(t, profiles, 1)
	assert.Equal(t, "Acme Plumbing", profiles[0].Name)
	assert.Equal(t, []string{"drain cleaning"}, profiles[0].Services)
}

func TestReadProfilesErrors(t *testing.T) {
	_, err := ReadProfiles(filepath.Join(t.TempDir(), "profiles.txt"))
	assert.ErrorContains(t, err, "unsupported file type")

	path := filepath.Join(t.TempDir(), "noname.csv")
	require.NoError(t, os.WriteFile(path, []byte("domain,type\nacme.com,plumber"), 0o644))
	_, err = ReadProfiles(path)
	assert.ErrorContains(t, err, `"name" column`)
}

func TestProcessContainsFailures(t *testing.T) {
	profiles := []model.BusinessProfile{
		{Name: "A"}, {Name: "B"}, {Name: "C"},
	}

	summary, err := Process(context.Background(), profiles, 0, 2, func(_ context.Context, p model.BusinessProfile) (*model.Scan, error) {
		if p.Name == "B" {
			return nil, errors.New("provider exploded")
		}
		return &model.Scan{
			ID:     p.Name + "-scan",
			Result: &model.ScanResult{Analysis: &model.Analysis{}},
		}, nil
	})
	require.NoError(t, err)
	assert.Equal(t, Summary{Total: 3, Succeeded: 2, Failed: 1}, summary)
}

func TestProcessHonorsLimitAndConcurrency(t *testing.T) {
	profiles := make([]model.BusinessProfile, 10)
	for i := range profiles {
		profiles[i] = model.BusinessProfile{Name: string(rune('A' + i))}
	}

	var (
		mu      sync.Mutex
		inUse   int
		maxSeen int
		calls   atomic.Int64
	)
	summary, err := Process(context.Background(), profiles, 6, 2, func(context.Context, model.BusinessProfile) (*model.Scan, error) {
		mu.Lock()
		inUse++
		if inUse > maxSeen {
			maxSeen = inUse
		}
		mu.Unlock()

		calls.Add(1)

		mu.Lock()
		inUse--
		mu.Unlock()
		return &model.Scan{Result: &model.ScanResult{Analysis: &model.Analysis{}}}, nil
	})
	require.NoError(t, err)
	assert.Equal(t, 6, summary.Total)
	assert.EqualValues(t, 6, calls.Load())
	assert.LessOrEqual(t, maxSeen, 2)
}

func TestProcessEmpty(t *testing.T) {
	summary, err := Process(context.Background(), nil, 0, 4, func(context.Context, model.BusinessProfile) (*model.Scan, error) {
		t.Fatal("must not be called")
		return nil, nil
	})
	require.NoError(t, err)
	assert.Equal(t, Summary{}, summary)
}
