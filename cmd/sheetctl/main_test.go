package main

import (
	"bytes"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"sheet-sync/internal/config"
	"sheet-sync/internal/constants"
)

type sheetData struct {
	name string
	rows [][]string
}

// writeBook сохраняет книгу <dir>/<id>.xlsx с указанными листами
func writeBook(t *testing.T, dir, id string, sheets ...sheetData) {
	t.Helper()

	f := excelize.NewFile()
	defer f.Close()

	for i, sh := range sheets {
		if i == 0 {
			require.NoError(t, f.SetSheetName("Sheet1", sh.name))
		} else {
			_, err := f.NewSheet(sh.name)
			require.NoError(t, err)
		}
		for r, row := range sh.rows {
			vals := append([]string(nil), row...)
			cell, err := excelize.CoordinatesToCellName(1, r+1)
			require.NoError(t, err)
			require.NoError(t, f.SetSheetRow(sh.name, cell, &vals))
		}
	}
	require.NoError(t, f.SaveAs(filepath.Join(dir, id+".xlsx")))
}

func cellValue(t *testing.T, dir, id, sheet, cell string) string {
	t.Helper()

	f, err := excelize.OpenFile(filepath.Join(dir, id+".xlsx"))
	require.NoError(t, err)
	defer f.Close()

	v, err := f.GetCellValue(sheet, cell)
	require.NoError(t, err)
	return v
}

func newTestRoot(t *testing.T, confirmAnswer bool) (*rootOptions, string) {
	t.Helper()

	dir := t.TempDir()
	writeBook(t, dir, "mt-main",
		sheetData{name: constants.SheetRules, rows: [][]string{
			{"ID", "Вкл", "Категория", "Хэштеги", "Лист-источник", "Заголовок-источник", "Лист-приемник", "Заголовок-приемник", "Внешний", "ID документа"},
			{"r1", "TRUE", "цены", "", constants.SheetPrimary, "Цена", constants.SheetOrder, "Цена", "", ""},
		}},
		sheetData{name: constants.SheetPrimary, rows: [][]string{
			{"ID", "Цена"},
			{"A1", "150"},
			{"A2", "90"},
		}},
		sheetData{name: constants.SheetOrder, rows: [][]string{
			{"ID", "Цена"},
			{"A2", "10"},
			{"A1", "100"},
		}},
	)

	cfg := &config.Config{
		Store:   config.Store{Driver: "xlsx", Dir: dir},
		Journal: config.Journal{Driver: "sqlite3", DSN: "file:" + filepath.Join(dir, "journal.db")},
		Rules:   config.Rules{Sheet: constants.SheetRules},
	}

	opts := &rootOptions{
		loadConfig: func(string) (*config.Config, error) { return cfg, nil },
		confirm: func(string, string) (bool, error) {
			return confirmAnswer, nil
		},
	}
	return opts, dir
}

func execute(t *testing.T, opts *rootOptions, args ...string) (string, error) {
	t.Helper()

	cmd := newRootCommandWith(opts)
	var out, errOut bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	cmd.SetArgs(args)

	err := cmd.Execute()
	return out.String(), err
}

func TestSyncRowCommand(t *testing.T) {
	opts, dir := newTestRoot(t, true)

	out, err := execute(t, opts, "sync-row", "A1", "--doc", "mt-main")
	require.NoError(t, err)

	assert.Contains(t, out, `"status": "success"`)
	assert.Equal(t, "150", cellValue(t, dir, "mt-main", constants.SheetOrder, "B3"))
	assert.Equal(t, "10", cellValue(t, dir, "mt-main", constants.SheetOrder, "B2"))
}

func TestSyncFullCommand(t *testing.T) {
	opts, dir := newTestRoot(t, true)

	out, err := execute(t, opts, "sync-full", "--doc", "mt-main")
	require.NoError(t, err)

	assert.Contains(t, out, `"rows_processed": 2`)
	assert.Equal(t, "90", cellValue(t, dir, "mt-main", constants.SheetOrder, "B2"))
	assert.Equal(t, "150", cellValue(t, dir, "mt-main", constants.SheetOrder, "B3"))
}

func TestSortCommand_Cancelled(t *testing.T) {
	opts, dir := newTestRoot(t, false)

	out, err := execute(t, opts, "sort", "--doc", "mt-main", "--mode", "byPrice")
	require.NoError(t, err)

	assert.Contains(t, out, "cancelled")
	// лист не тронут
	assert.Equal(t, "A2", cellValue(t, dir, "mt-main", constants.SheetOrder, "A2"))
}

func TestSortCommand_UnknownMode(t *testing.T) {
	opts, _ := newTestRoot(t, true)

	_, err := execute(t, opts, "sort", "--doc", "mt-main", "--mode", "byColor")
	assert.Error(t, err)
}

func TestSortColumnCommand(t *testing.T) {
	opts, dir := newTestRoot(t, true)

	_, err := execute(t, opts, "sort-column", "цена", "--doc", "mt-main", "--sheet", constants.SheetOrder, "--desc")
	require.NoError(t, err)

	assert.Equal(t, "A1", cellValue(t, dir, "mt-main", constants.SheetOrder, "A2"))
	assert.Equal(t, "A2", cellValue(t, dir, "mt-main", constants.SheetOrder, "A3"))
}

func TestRulesCommand(t *testing.T) {
	opts, _ := newTestRoot(t, true)

	out, err := execute(t, opts, "rules", "--doc", "mt-main")
	require.NoError(t, err)

	assert.Contains(t, out, "r1")
	assert.Contains(t, out, constants.SheetOrder+" / Цена")
}

func TestRunsCommands(t *testing.T) {
	opts, _ := newTestRoot(t, true)

	_, err := execute(t, opts, "sync-row", "A1", "--doc", "mt-main")
	require.NoError(t, err)

	out, err := execute(t, opts, "runs", "list", "--doc", "mt-main")
	require.NoError(t, err)
	assert.Contains(t, out, "sync_row")

	out, err = execute(t, opts, "runs", "prune", "--older-than", "1h")
	require.NoError(t, err)
	assert.Contains(t, out, "deleted 0 runs")
}

func TestCommandsRequireDoc(t *testing.T) {
	opts, _ := newTestRoot(t, true)

	_, err := execute(t, opts, "sync-full")
	assert.ErrorContains(t, err, "--doc is required")
}
