package storage

import (
	"errors"
	"fmt"

	"github.com/xuri/excelize/v2"
)

var (
	ErrDocumentNotFound = errors.New("document not found")
	ErrSheetNotFound    = errors.New("worksheet not found")
	ErrHeaderNotFound   = errors.New("header not found")
	ErrRowNotFound      = errors.New("row not found")
	ErrInvalidRange     = errors.New("invalid range")
)

// Document - открытый документ (книга) хранилища
type Document struct {
	ID string `json:"id"`
}

// Sheet - ссылка на рабочий лист внутри документа
type Sheet struct {
	DocID string `json:"doc_id"`
	Name  string `json:"name"`
}

func (s Sheet) String() string {
	return s.DocID + "/" + s.Name
}

// Range - прямоугольный диапазон, строки и колонки с 1
type Range struct {
	FromRow int
	FromCol int
	ToRow   int
	ToCol   int
}

func CellRange(row, col int) Range {
	return Range{FromRow: row, FromCol: col, ToRow: row, ToCol: col}
}

// RowsRange - строки fromRow..toRow по колонкам A..cols
func RowsRange(fromRow, toRow, cols int) Range {
	return Range{FromRow: fromRow, FromCol: 1, ToRow: toRow, ToCol: cols}
}

func (r Range) Rows() int { return r.ToRow - r.FromRow + 1 }
func (r Range) Cols() int { return r.ToCol - r.FromCol + 1 }

func (r Range) Valid() bool {
	return r.FromRow >= 1 && r.FromCol >= 1 && r.ToRow >= r.FromRow && r.ToCol >= r.FromCol
}

// A1 возвращает ссылку вида "A2:F120"
func (r Range) A1() (string, error) {
	if !r.Valid() {
		return "", fmt.Errorf("%w: %d:%d-%d:%d", ErrInvalidRange, r.FromRow, r.FromCol, r.ToRow, r.ToCol)
	}
	from, err := excelize.CoordinatesToCellName(r.FromCol, r.FromRow)
	if err != nil {
		return "", err
	}
	to, err := excelize.CoordinatesToCellName(r.ToCol, r.ToRow)
	if err != nil {
		return "", err
	}
	return from + ":" + to, nil
}

// CellStyle - оформление строки-заголовка группы, цвета в виде "#RRGGBB"
type CellStyle struct {
	Background string `json:"background"`
	Foreground string `json:"foreground"`
	Bold       bool   `json:"bold"`
}

// CellUpdate - запись одной ячейки в пакетной операции
type CellUpdate struct {
	Row   int    `json:"row"`
	Col   int    `json:"col"`
	Value string `json:"value"`
}
