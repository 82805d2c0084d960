// Package memory - хранилище рабочих листов в памяти процесса.
// Используется как драйвер для локальной разработки и в тестах сервисов:
// считает вызовы по операциям, чтобы проверять пакетность записи.
package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"sheet-sync/internal/storage"
)

type sheetData struct {
	cells  [][]string
	styles map[int]storage.CellStyle
}

type Store struct {
	mu       sync.Mutex
	docs     map[string]map[string]*sheetData
	calls    map[string]int
	failures map[string]error
}

func New() *Store {
	return &Store{
		docs:     make(map[string]map[string]*sheetData),
		calls:    make(map[string]int),
		failures: make(map[string]error),
	}
}

// AddSheet создает (или заменяет) лист с начальным содержимым
func (s *Store) AddSheet(docID, name string, values [][]string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.docs[docID] == nil {
		s.docs[docID] = make(map[string]*sheetData)
	}
	s.docs[docID][name] = &sheetData{
		cells:  copyGrid(values),
		styles: make(map[int]storage.CellStyle),
	}
}

// Values - текущее содержимое листа без хвостовых пустых строк
func (s *Store) Values(docID, name string) [][]string {
	s.mu.Lock()
	defer s.mu.Unlock()

	sh := s.docs[docID][name]
	if sh == nil {
		return nil
	}
	return trimGrid(sh.cells)
}

// Styles - оформление строк листа (номер строки с 1 -> стиль)
func (s *Store) Styles(docID, name string) map[int]storage.CellStyle {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make(map[int]storage.CellStyle)
	if sh := s.docs[docID][name]; sh != nil {
		for row, st := range sh.styles {
			out[row] = st
		}
	}
	return out
}

// Calls - число вызовов операции ("WriteRange", "ReadAll" ...)
func (s *Store) Calls(op string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls[op]
}

// FailOn заставляет операцию op возвращать err. sheet пустой - для всех листов.
func (s *Store) FailOn(op, sheet string, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failures[op+":"+sheet] = err
}

func (s *Store) OpenDocument(ctx context.Context, id string) (storage.Document, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.enter("OpenDocument", ""); err != nil {
		return storage.Document{}, err
	}
	if _, ok := s.docs[id]; !ok {
		return storage.Document{}, fmt.Errorf("%w: %s", storage.ErrDocumentNotFound, id)
	}
	return storage.Document{ID: id}, nil
}

func (s *Store) Worksheet(ctx context.Context, doc storage.Document, name string) (storage.Sheet, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.enter("Worksheet", name); err != nil {
		return storage.Sheet{}, err
	}
	sheets, ok := s.docs[doc.ID]
	if !ok {
		return storage.Sheet{}, fmt.Errorf("%w: %s", storage.ErrDocumentNotFound, doc.ID)
	}
	if _, ok := sheets[name]; !ok {
		return storage.Sheet{}, fmt.Errorf("%w: %s", storage.ErrSheetNotFound, name)
	}
	return storage.Sheet{DocID: doc.ID, Name: name}, nil
}

func (s *Store) ReadAll(ctx context.Context, sh storage.Sheet) ([][]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := s.sheet("ReadAll", sh)
	if err != nil {
		return nil, err
	}
	return trimGrid(data.cells), nil
}

func (s *Store) ReadColumn(ctx context.Context, sh storage.Sheet, col int) ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := s.sheet("ReadColumn", sh)
	if err != nil {
		return nil, err
	}

	var out []string
	for _, row := range data.cells {
		out = append(out, cellAt(row, col))
	}
	for len(out) > 0 && out[len(out)-1] == "" {
		out = out[:len(out)-1]
	}
	return out, nil
}

func (s *Store) ReadRow(ctx context.Context, sh storage.Sheet, row int) ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := s.sheet("ReadRow", sh)
	if err != nil {
		return nil, err
	}
	if row < 1 || row > len(data.cells) {
		return []string{}, nil
	}
	return trimRow(data.cells[row-1]), nil
}

func (s *Store) ReadCell(ctx context.Context, sh storage.Sheet, row, col int) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := s.sheet("ReadCell", sh)
	if err != nil {
		return "", err
	}
	if row < 1 || row > len(data.cells) {
		return "", nil
	}
	return cellAt(data.cells[row-1], col), nil
}

func (s *Store) WriteCell(ctx context.Context, sh storage.Sheet, row, col int, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := s.sheet("WriteCell", sh)
	if err != nil {
		return err
	}
	data.set(row, col, value)
	return nil
}

func (s *Store) WriteCells(ctx context.Context, sh storage.Sheet, updates []storage.CellUpdate) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := s.sheet("WriteCells", sh)
	if err != nil {
		return err
	}
	for _, u := range updates {
		data.set(u.Row, u.Col, u.Value)
	}
	return nil
}

func (s *Store) WriteRange(ctx context.Context, sh storage.Sheet, rng storage.Range, rows [][]string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := s.sheet("WriteRange", sh)
	if err != nil {
		return err
	}
	if !rng.Valid() {
		return storage.ErrInvalidRange
	}
	for i, row := range rows {
		for j, v := range row {
			if i >= rng.Rows() || j >= rng.Cols() {
				continue
			}
			data.set(rng.FromRow+i, rng.FromCol+j, v)
		}
	}
	return nil
}

func (s *Store) ClearRange(ctx context.Context, sh storage.Sheet, rng storage.Range) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := s.sheet("ClearRange", sh)
	if err != nil {
		return err
	}
	if !rng.Valid() {
		return storage.ErrInvalidRange
	}
	for r := rng.FromRow; r <= rng.ToRow && r <= len(data.cells); r++ {
		row := data.cells[r-1]
		for c := rng.FromCol; c <= rng.ToCol && c <= len(row); c++ {
			row[c-1] = ""
		}
		delete(data.styles, r)
	}
	return nil
}

func (s *Store) ApplyFormatting(ctx context.Context, sh storage.Sheet, style storage.CellStyle, ranges ...storage.Range) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := s.sheet("ApplyFormatting", sh)
	if err != nil {
		return err
	}
	for _, rng := range ranges {
		for r := rng.FromRow; r <= rng.ToRow; r++ {
			data.styles[r] = style
		}
	}
	return nil
}

func (s *Store) AppendRow(ctx context.Context, sh storage.Sheet, values []string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := s.sheet("AppendRow", sh)
	if err != nil {
		return err
	}
	data.cells = append(trimGrid(data.cells), append([]string(nil), values...))
	return nil
}

func (s *Store) DeleteRows(ctx context.Context, sh storage.Sheet, rows []int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := s.sheet("DeleteRows", sh)
	if err != nil {
		return err
	}

	sorted := append([]int(nil), rows...)
	sort.Sort(sort.Reverse(sort.IntSlice(sorted)))
	for _, r := range sorted {
		if r < 1 || r > len(data.cells) {
			continue
		}
		data.cells = append(data.cells[:r-1], data.cells[r:]...)
	}
	return nil
}

// enter считает вызов и возвращает внедренную ошибку, если она есть
func (s *Store) enter(op, sheet string) error {
	s.calls[op]++
	if err, ok := s.failures[op+":"+sheet]; ok {
		return err
	}
	if err, ok := s.failures[op+":"]; ok {
		return err
	}
	return nil
}

func (s *Store) sheet(op string, sh storage.Sheet) (*sheetData, error) {
	if err := s.enter(op, sh.Name); err != nil {
		return nil, err
	}
	data := s.docs[sh.DocID][sh.Name]
	if data == nil {
		return nil, fmt.Errorf("%w: %s", storage.ErrSheetNotFound, sh)
	}
	return data, nil
}

func (d *sheetData) set(row, col int, value string) {
	for len(d.cells) < row {
		d.cells = append(d.cells, nil)
	}
	r := d.cells[row-1]
	for len(r) < col {
		r = append(r, "")
	}
	r[col-1] = value
	d.cells[row-1] = r
}

func cellAt(row []string, col int) string {
	if col < 1 || col > len(row) {
		return ""
	}
	return row[col-1]
}

func trimRow(row []string) []string {
	end := len(row)
	for end > 0 && row[end-1] == "" {
		end--
	}
	return append([]string{}, row[:end]...)
}

func trimGrid(grid [][]string) [][]string {
	end := len(grid)
	for end > 0 && len(trimRow(grid[end-1])) == 0 {
		end--
	}
	out := make([][]string, end)
	for i := 0; i < end; i++ {
		out[i] = trimRow(grid[i])
	}
	return out
}

func copyGrid(grid [][]string) [][]string {
	out := make([][]string, len(grid))
	for i, row := range grid {
		out[i] = append([]string{}, row...)
	}
	return out
}
