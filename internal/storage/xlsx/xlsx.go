// Package xlsx - хранилище рабочих листов поверх книг .xlsx (excelize).
// Документ с id X - это файл <dir>/X.xlsx. Каждый изменяющий вызов
// заканчивается одним сохранением книги: это единица пакетной записи.
package xlsx

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"math"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"sync"

	"github.com/xuri/excelize/v2"

	"sheet-sync/internal/storage"
)

var ErrInvalidDocumentID = errors.New("invalid document id")

// Store не держит книги между вызовами: каждый вызов открывает файл заново
// и закрывает его, так что правки, сделанные в файле вручную, видны сразу.
// Мьютекс на документ упорядочивает вызовы внутри процесса.
type Store struct {
	dir   string
	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

func New(dir string) *Store {
	return &Store{dir: dir, locks: make(map[string]*sync.Mutex)}
}

func (s *Store) OpenDocument(ctx context.Context, id string) (storage.Document, error) {
	const op = "storage.xlsx.OpenDocument"

	err := s.read(id, op, func(f *excelize.File) error { return nil })
	if err != nil {
		return storage.Document{}, err
	}
	return storage.Document{ID: id}, nil
}

func (s *Store) Worksheet(ctx context.Context, doc storage.Document, name string) (storage.Sheet, error) {
	const op = "storage.xlsx.Worksheet"

	err := s.read(doc.ID, op, func(f *excelize.File) error {
		return hasSheet(f, name)
	})
	if err != nil {
		return storage.Sheet{}, err
	}
	return storage.Sheet{DocID: doc.ID, Name: name}, nil
}

func (s *Store) ReadAll(ctx context.Context, sh storage.Sheet) ([][]string, error) {
	const op = "storage.xlsx.ReadAll"

	var rows [][]string
	err := s.read(sh.DocID, op, func(f *excelize.File) error {
		var err error
		rows, err = readRows(f, sh.Name)
		return err
	})
	if err != nil {
		return nil, err
	}
	return rows, nil
}

func (s *Store) ReadColumn(ctx context.Context, sh storage.Sheet, col int) ([]string, error) {
	rows, err := s.ReadAll(ctx, sh)
	if err != nil {
		return nil, err
	}

	out := make([]string, 0, len(rows))
	for _, row := range rows {
		out = append(out, cellAt(row, col))
	}
	for len(out) > 0 && out[len(out)-1] == "" {
		out = out[:len(out)-1]
	}
	return out, nil
}

func (s *Store) ReadRow(ctx context.Context, sh storage.Sheet, row int) ([]string, error) {
	rows, err := s.ReadAll(ctx, sh)
	if err != nil {
		return nil, err
	}
	if row < 1 || row > len(rows) {
		return []string{}, nil
	}
	return rows[row-1], nil
}

func (s *Store) ReadCell(ctx context.Context, sh storage.Sheet, row, col int) (string, error) {
	const op = "storage.xlsx.ReadCell"

	cell, err := excelize.CoordinatesToCellName(col, row)
	if err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}

	var val string
	err = s.read(sh.DocID, op, func(f *excelize.File) error {
		if err := hasSheet(f, sh.Name); err != nil {
			return err
		}
		val, err = f.GetCellValue(sh.Name, cell)
		if err != nil {
			return fmt.Errorf("%s!%s: %w", sh.Name, cell, err)
		}
		return nil
	})
	if err != nil {
		return "", err
	}
	return val, nil
}

func (s *Store) WriteCell(ctx context.Context, sh storage.Sheet, row, col int, value string) error {
	return s.WriteCells(ctx, sh, []storage.CellUpdate{{Row: row, Col: col, Value: value}})
}

func (s *Store) WriteCells(ctx context.Context, sh storage.Sheet, updates []storage.CellUpdate) error {
	const op = "storage.xlsx.WriteCells"

	return s.mutate(sh, op, func(f *excelize.File) error {
		for _, u := range updates {
			cell, err := excelize.CoordinatesToCellName(u.Col, u.Row)
			if err != nil {
				return err
			}
			if err := f.SetCellValue(sh.Name, cell, cellValue(u.Value)); err != nil {
				return err
			}
		}
		return nil
	})
}

func (s *Store) WriteRange(ctx context.Context, sh storage.Sheet, rng storage.Range, rows [][]string) error {
	const op = "storage.xlsx.WriteRange"

	if !rng.Valid() {
		return fmt.Errorf("%s: %w", op, storage.ErrInvalidRange)
	}

	return s.mutate(sh, op, func(f *excelize.File) error {
		for i := 0; i < len(rows) && i < rng.Rows(); i++ {
			vals := make([]any, rng.Cols())
			for j := range vals {
				var v string
				if j < len(rows[i]) {
					v = rows[i][j]
				}
				vals[j] = cellValue(v)
			}

			start, err := excelize.CoordinatesToCellName(rng.FromCol, rng.FromRow+i)
			if err != nil {
				return err
			}
			if err := f.SetSheetRow(sh.Name, start, &vals); err != nil {
				return err
			}
		}
		return nil
	})
}

// ClearRange очищает значения и сбрасывает оформление ячеек диапазона
func (s *Store) ClearRange(ctx context.Context, sh storage.Sheet, rng storage.Range) error {
	const op = "storage.xlsx.ClearRange"

	if !rng.Valid() {
		return fmt.Errorf("%s: %w", op, storage.ErrInvalidRange)
	}

	return s.mutate(sh, op, func(f *excelize.File) error {
		rows, err := f.GetRows(sh.Name)
		if err != nil {
			return err
		}

		// за пределами заполненной области очищать нечего
		toRow := min(rng.ToRow, len(rows))
		for r := rng.FromRow; r <= toRow; r++ {
			toCol := min(rng.ToCol, len(rows[r-1]))
			for c := rng.FromCol; c <= toCol; c++ {
				cell, err := excelize.CoordinatesToCellName(c, r)
				if err != nil {
					return err
				}
				if err := f.SetCellStr(sh.Name, cell, ""); err != nil {
					return err
				}
			}
		}

		ref, err := rng.A1()
		if err != nil {
			return err
		}
		from, to, _ := strings.Cut(ref, ":")
		return f.SetCellStyle(sh.Name, from, to, 0)
	})
}

func (s *Store) ApplyFormatting(ctx context.Context, sh storage.Sheet, style storage.CellStyle, ranges ...storage.Range) error {
	const op = "storage.xlsx.ApplyFormatting"

	if len(ranges) == 0 {
		return nil
	}

	return s.mutate(sh, op, func(f *excelize.File) error {
		styleID, err := f.NewStyle(toExcelStyle(style))
		if err != nil {
			return err
		}

		for _, rng := range ranges {
			ref, err := rng.A1()
			if err != nil {
				return err
			}
			from, to, _ := strings.Cut(ref, ":")
			if err := f.SetCellStyle(sh.Name, from, to, styleID); err != nil {
				return err
			}
		}
		return nil
	})
}

func (s *Store) AppendRow(ctx context.Context, sh storage.Sheet, values []string) error {
	const op = "storage.xlsx.AppendRow"

	return s.mutate(sh, op, func(f *excelize.File) error {
		rows, err := f.GetRows(sh.Name)
		if err != nil {
			return err
		}

		start, err := excelize.CoordinatesToCellName(1, len(rows)+1)
		if err != nil {
			return err
		}
		vals := make([]any, len(values))
		for i, v := range values {
			vals[i] = cellValue(v)
		}
		return f.SetSheetRow(sh.Name, start, &vals)
	})
}

// DeleteRows удаляет строки снизу вверх, чтобы номера оставшихся не сдвигались
func (s *Store) DeleteRows(ctx context.Context, sh storage.Sheet, rows []int) error {
	const op = "storage.xlsx.DeleteRows"

	sorted := append([]int(nil), rows...)
	sort.Sort(sort.Reverse(sort.IntSlice(sorted)))

	return s.mutate(sh, op, func(f *excelize.File) error {
		for _, r := range sorted {
			if err := f.RemoveRow(sh.Name, r); err != nil {
				return err
			}
		}
		return nil
	})
}

// read открывает книгу на время fn и закрывает ее
func (s *Store) read(id, op string, fn func(f *excelize.File) error) error {
	path, err := s.path(id)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	lock := s.lock(id)
	lock.Lock()
	defer lock.Unlock()

	f, err := open(id, path)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	defer f.Close()

	if err := fn(f); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

// mutate перечитывает книгу с диска, применяет изменения и сохраняет ее один раз
func (s *Store) mutate(sh storage.Sheet, op string, fn func(f *excelize.File) error) error {
	path, err := s.path(sh.DocID)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	lock := s.lock(sh.DocID)
	lock.Lock()
	defer lock.Unlock()

	f, err := open(sh.DocID, path)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	defer f.Close()

	if err := hasSheet(f, sh.Name); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if err := fn(f); err != nil {
		return fmt.Errorf("%s: %s: %w", op, sh, err)
	}
	if err := f.Save(); err != nil {
		return fmt.Errorf("%s: save %s: %w", op, path, err)
	}
	return nil
}

func (s *Store) path(id string) (string, error) {
	if id == "" || strings.ContainsAny(id, `/\`) || strings.Contains(id, "..") {
		return "", fmt.Errorf("%w: %q", ErrInvalidDocumentID, id)
	}
	return filepath.Join(s.dir, id+".xlsx"), nil
}

func (s *Store) lock(id string) *sync.Mutex {
	s.mu.Lock()
	defer s.mu.Unlock()

	l, ok := s.locks[id]
	if !ok {
		l = &sync.Mutex{}
		s.locks[id] = l
	}
	return l
}

func open(id, path string) (*excelize.File, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) || os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", storage.ErrDocumentNotFound, id)
		}
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	return f, nil
}

func hasSheet(f *excelize.File, name string) error {
	idx, err := f.GetSheetIndex(name)
	if err != nil {
		return err
	}
	if idx < 0 {
		return fmt.Errorf("%w: %s", storage.ErrSheetNotFound, name)
	}
	return nil
}

func readRows(f *excelize.File, sheet string) ([][]string, error) {
	if err := hasSheet(f, sheet); err != nil {
		return nil, err
	}

	rows, err := f.GetRows(sheet)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", sheet, err)
	}

	// хвостовые пустые строки не отдаем
	end := len(rows)
	for end > 0 && isBlank(rows[end-1]) {
		end--
	}
	return rows[:end], nil
}

// cellValue повторяет ввод пользователя в редакторе: числа пишутся числами,
// остальное строкой. Целые с ведущим нулем (артикулы вида 007) остаются текстом.
func cellValue(v string) any {
	t := strings.TrimSpace(v)
	if t == "" || strings.Trim(t, "0123456789+-.eE") != "" {
		return v
	}
	if len(t) > 1 && t[0] == '0' && t[1] != '.' {
		return v
	}
	n, err := strconv.ParseFloat(t, 64)
	if err != nil || math.IsNaN(n) || math.IsInf(n, 0) {
		return v
	}
	return n
}

func toExcelStyle(style storage.CellStyle) *excelize.Style {
	st := &excelize.Style{
		Font: &excelize.Font{Bold: style.Bold},
	}
	if style.Foreground != "" {
		st.Font.Color = strings.TrimPrefix(style.Foreground, "#")
	}
	if style.Background != "" {
		st.Fill = excelize.Fill{
			Type:    "pattern",
			Color:   []string{strings.TrimPrefix(style.Background, "#")},
			Pattern: 1,
		}
	}
	return st
}

func cellAt(row []string, col int) string {
	if col < 1 || col > len(row) {
		return ""
	}
	return row[col-1]
}

func isBlank(row []string) bool {
	for _, v := range row {
		if v != "" {
			return false
		}
	}
	return true
}
