// Package cohort loads institution target lists from CSV and XLSX files for
// batch analysis.
package cohort

import (
	"encoding/csv"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/rotisserie/eris"
	"github.com/tealeg/xlsx/v2"

	"github.com/charter-stone/analyst-cli/internal/model"
)

// Load reads a cohort file and returns the institutions it lists. The format
// is chosen by extension (.csv or .xlsx). The first row must be a header
// containing a name column ("name", "institution", or "institution_name")
// and an "ein" column, in any order.
func Load(path string) ([]model.Institution, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".csv":
		f, err := os.Open(path)
		if err != nil {
			return nil, eris.Wrap(err, "cohort: open file")
		}
		defer f.Close() //nolint:errcheck
		return parseCSV(f)
	case ".xlsx":
		return parseXLSX(path)
	default:
		return nil, eris.Errorf("cohort: unsupported file type %q (want .csv or .xlsx)", filepath.Ext(path))
	}
}

func parseCSV(r io.Reader) ([]model.Institution, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1 // allow variable fields

	var rows [][]string
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, eris.Wrap(err, "cohort: read csv row")
		}
		rows = append(rows, record)
	}
	return fromRows(rows)
}

func parseXLSX(path string) ([]model.Institution, error) {
	f, err := xlsx.OpenFile(path)
	if err != nil {
		return nil, eris.Wrap(err, "cohort: open xlsx")
	}
	if len(f.Sheets) == 0 {
		return nil, eris.New("cohort: xlsx file has no sheets")
	}

	var rows [][]string
	for _, row := range f.Sheets[0].Rows {
		cells := make([]string, len(row.Cells))
		for j, cell := range row.Cells {
			cells[j] = cell.String()
		}
		rows = append(rows, cells)
	}
	return fromRows(rows)
}

// fromRows maps a header row plus data rows to institutions. Rows missing a
// name or EIN are skipped; EINs are normalized to bare digits.
func fromRows(rows [][]string) ([]model.Institution, error) {
	if len(rows) == 0 {
		return nil, eris.New("cohort: file is empty")
	}

	nameCol, einCol := -1, -1
	for i, h := range rows[0] {
		switch strings.ToLower(strings.TrimSpace(h)) {
		case "name", "institution", "institution_name":
			nameCol = i
		case "ein":
			einCol = i
		}
	}
	if nameCol < 0 || einCol < 0 {
		return nil, eris.New("cohort: header must contain name and ein columns")
	}

	var institutions []model.Institution
	for _, row := range rows[1:] {
		if nameCol >= len(row) || einCol >= len(row) {
			continue
		}
		name := strings.TrimSpace(row[nameCol])
		ein := model.NormalizeEIN(row[einCol])
		if name == "" || ein == "" {
			continue
		}
		institutions = append(institutions, model.Institution{Name: name, EIN: ein})
	}
	if len(institutions) == 0 {
		return nil, eris.New("cohort: no usable rows")
	}
	return institutions, nil
}
