// Package batch reads business profiles from CSV or XLSX files and
// runs scans for them with bounded concurrency.
package batch

import (
	"encoding/csv"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/rotisserie/eris"
	"github.com/tealeg/xlsx/v2"

	"github.com/sells-group/visibility-cli/internal/model"
)

// ReadProfiles loads profiles from a .csv or .xlsx file. The first row
// must be a header naming at least a "name" column; recognized columns
// are name, domain, type, location, services, competitor. Services are
// separated with ";". Rows without a name are skipped.
func ReadProfiles(path string) ([]model.BusinessProfile, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".csv":
		f, err := os.Open(path)
		if err != nil {
			return nil, eris.Wrap(err, "batch: open csv")
		}
		defer f.Close()
		return readCSV(f)
	case ".xlsx":
		return readXLSX(path)
	default:
		return nil, eris.Errorf("batch: unsupported file type %q (want .csv or .xlsx)", filepath.Ext(path))
	}
}

func readCSV(r io.Reader) ([]model.BusinessProfile, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1 // allow variable fields

	rows, err := reader.ReadAll()
	if err != nil {
		return nil, eris.Wrap(err, "batch: read csv")
	}
	return rowsToProfiles(rows)
}

func readXLSX(path string) ([]model.BusinessProfile, error) {
	f, err := xlsx.OpenFile(path)
	if err != nil {
		return nil, eris.Wrap(err, "batch: open xlsx")
	}
	if len(f.Sheets) == 0 {
		return nil, eris.New("batch: xlsx has no sheets")
	}

	var rows [][]string
	for _, row := range f.Sheets[0].Rows {
		cells := make([]string, len(row.Cells))
		for i, cell := range row.Cells {
			cells[i] = strings.TrimSpace(cell.Value)
		}
		rows = append(rows, cells)
	}
	return rowsToProfiles(rows)
}

func rowsToProfiles(rows [][]string) ([]model.BusinessProfile, error) {
	if len(rows) == 0 {
		return nil, eris.New("batch: file is empty")
	}

	cols := make(map[string]int, len(rows[0]))
	for i, name := range rows[0] {
		cols[strings.ToLower(strings.TrimSpace(name))] = i
	}
	if _, ok := cols["name"]; !ok {
		return nil, eris.New(`batch: header row must contain a "name" column`)
	}

	field := func(row []string, col string) string {
		idx, ok := cols[col]
		if !ok || idx >= len(row) {
			return ""
		}
		return strings.TrimSpace(row[idx])
	}

	var profiles []model.BusinessProfile
	for _, row := range rows[1:] {
		name := field(row, "name")
		if name == "" {
			continue
		}

		profile := model.BusinessProfile{
			Name:       name,
			Domain:     field(row, "domain"),
			Type:       field(row, "type"),
			Location:   field(row, "location"),
			Competitor: field(row, "competitor"),
		}
		if services := field(row, "services"); services != "" {
			for _, s := range strings.Split(services, ";") {
				if s = strings.TrimSpace(s); s != "" {
					profile.Services = append(profile.Services, s)
				}
			}
		}
		profiles = append(profiles, profile)
	}

	return profiles, nil
}
