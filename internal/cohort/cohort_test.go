package cohort

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tealeg/xlsx/v2"
)

func writeTestCSV(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "cohort.csv")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func writeTestXLSX(t *testing.T, rows [][]string) string {
	t.Helper()
	f := xlsx.NewFile()
	sheet, err := f.AddSheet("Targets")
	require.NoError(t, err)
	for _, rowData := range rows {
		row := sheet.AddRow()
		for _, cellData := range rowData {
			row.AddCell().SetString(cellData)
		}
	}
	path := filepath.Join(t.TempDir(), "cohort.xlsx")
	require.NoError(t, f.Save(path))
	return path
}

func TestLoad_CSV(t *testing.T) {
	path := writeTestCSV(t, "name,ein\nAlbright College,23-1352615\nCabrini University,231352200\n")

	institutions, err := Load(path)
	require.NoError(t, err)
	require.Len(t, institutions, 2)
	assert.Equal(t, "Albright College", institutions[0].Name)
	assert.Equal(t, "231352615", institutions[0].EIN)
	assert.Equal(t, "231352200", institutions[1].EIN)
}

func TestLoad_CSVColumnOrder(t *testing.T) {
	path := writeTestCSV(t, "ein,institution\n23-1352615,Albright College\n")

	institutions, err := Load(path)
	require.NoError(t, err)
	require.Len(t, institutions, 1)
	assert.Equal(t, "Albright College", institutions[0].Name)
	assert.Equal(t, "231352615", institutions[0].EIN)
}

func TestLoad_CSVSkipsIncompleteRows(t *testing.T) {
	path := writeTestCSV(t, "name,ein\nAlbright College,23-1352615\n,23-9999999\nNo EIN Here,\n")

	institutions, err := Load(path)
	require.NoError(t, err)
	require.Len(t, institutions, 1)
}

func TestLoad_XLSX(t *testing.T) {
	path := writeTestXLSX(t, [][]string{
		{"Name", "EIN"},
		{"Albright College", "23-1352615"},
		{"Keystone College", "24-0795473"},
	})

	institutions, err := Load(path)
	require.NoError(t, err)
	require.Len(t, institutions, 2)
	assert.Equal(t, "Keystone College", institutions[1].Name)
	assert.Equal(t, "240795473", institutions[1].EIN)
}

func TestLoad_MissingHeader(t *testing.T) {
	path := writeTestCSV(t, "school,tax_id\nAlbright College,23-1352615\n")

	_, err := Load(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "header must contain name and ein")
}

func TestLoad_NoUsableRows(t *testing.T) {
	path := writeTestCSV(t, "name,ein\n")

	_, err := Load(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no usable rows")
}

func TestLoad_UnsupportedExtension(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cohort.txt")
	require.NoError(t, os.WriteFile(path, []byte("x"), 0o644))

	_, err := Load(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unsupported file type")
}
