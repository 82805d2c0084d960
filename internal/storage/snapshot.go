package storage

import "strings"

// Snapshot - содержимое рабочего листа, прочитанное один раз за операцию.
// Первая строка - заголовки, остальные строки выровнены по ширине листа.
type Snapshot struct {
	Sheet       Sheet
	Headers     []string
	HeaderIndex map[string]int
	Rows        [][]string
}

func NewSnapshot(sheet Sheet, values [][]string) *Snapshot {
	snap := &Snapshot{
		Sheet:       sheet,
		HeaderIndex: make(map[string]int),
	}
	if len(values) == 0 {
		return snap
	}

	snap.Headers = make([]string, len(values[0]))
	for i, h := range values[0] {
		h = strings.TrimSpace(h)
		snap.Headers[i] = h
		if _, ok := snap.HeaderIndex[h]; !ok && h != "" {
			snap.HeaderIndex[h] = i
		}
	}

	width := len(snap.Headers)
	for _, row := range values[1:] {
		if len(row) > width {
			width = len(row)
		}
	}

	snap.Rows = make([][]string, 0, len(values)-1)
	for _, row := range values[1:] {
		padded := make([]string, width)
		copy(padded, row)
		snap.Rows = append(snap.Rows, padded)
	}

	return snap
}

// Width - число колонок листа (не меньше числа заголовков)
func (s *Snapshot) Width() int {
	if len(s.Rows) > 0 {
		return len(s.Rows[0])
	}
	return len(s.Headers)
}

// Index - точное совпадение заголовка после обрезки пробелов, позиция с 0
func (s *Snapshot) Index(name string) (int, bool) {
	idx, ok := s.HeaderIndex[strings.TrimSpace(name)]
	return idx, ok
}

func (s *Snapshot) Row(i int) RowView {
	return RowView{snap: s, values: s.Rows[i], Position: i}
}

// FindKey возвращает позицию строки (с 0) с ключом key в первой колонке
func (s *Snapshot) FindKey(key string) (int, bool) {
	key = strings.TrimSpace(key)
	if key == "" {
		return 0, false
	}
	for i, row := range s.Rows {
		if len(row) > 0 && strings.TrimSpace(row[0]) == key {
			return i, true
		}
	}
	return 0, false
}

// RowView - строка листа с доступом по имени заголовка.
// Get различает "колонки нет" (false) и "ячейка пустая" ("", true).
type RowView struct {
	snap     *Snapshot
	values   []string
	Position int
}

func (r RowView) Get(field string) (string, bool) {
	idx, ok := r.snap.Index(field)
	if !ok || idx >= len(r.values) {
		return "", false
	}
	return r.values[idx], true
}

func (r RowView) At(idx int) string {
	if idx < 0 || idx >= len(r.values) {
		return ""
	}
	return r.values[idx]
}

// Key - значение первой колонки (артикул)
func (r RowView) Key() string {
	return strings.TrimSpace(r.At(0))
}

func (r RowView) Values() []string {
	return r.values
}

func (r RowView) Empty() bool {
	for _, v := range r.values {
		if v != "" {
			return false
		}
	}
	return true
}
