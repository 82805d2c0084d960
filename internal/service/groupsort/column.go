package groupsort

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"strings"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"

	"sheet-sync/internal/header"
	"sheet-sync/internal/storage"
)

// SortByHeader сортирует строки данных листа по одной колонке.
// Колонка ищется терпимо к написанию; не найдена - ошибка.
// Числа сравниваются как числа, остальное - по алфавиту без учета регистра, пустые в конце.
func (s *Service) SortByHeader(ctx context.Context, docID, sheet, column string, ascending bool) (storage.ColumnSortResult, error) {
	const op = "service.groupsort.SortByHeader"

	doc, err := s.store.OpenDocument(ctx, docID)
	if err != nil {
		return storage.ColumnSortResult{}, fmt.Errorf("%s: %w", op, err)
	}
	snap, err := s.load(ctx, doc, sheet)
	if err != nil {
		return storage.ColumnSortResult{}, fmt.Errorf("%s: %w", op, err)
	}

	col, err := header.Find(snap.Headers, column)
	if err != nil {
		return storage.ColumnSortResult{}, fmt.Errorf("%s: sheet '%s': %w", op, sheet, err)
	}

	res := storage.ColumnSortResult{
		Status:    storage.StatusSuccess,
		Sheet:     sheet,
		Column:    column,
		Resolved:  snap.Headers[col],
		Ascending: ascending,
		Rows:      len(snap.Rows),
	}
	if len(snap.Rows) < 2 {
		return res, nil
	}

	rows := append([][]string(nil), snap.Rows...)
	cl := collate.New(language.Russian, collate.IgnoreCase)

	sort.SliceStable(rows, func(i, j int) bool {
		a, b := strings.TrimSpace(rows[i][col]), strings.TrimSpace(rows[j][col])
		if a == "" || b == "" {
			return a != "" && b == ""
		}

		var c int
		na, okA := parseNumber(a)
		nb, okB := parseNumber(b)
		switch {
		case okA && okB:
			if na < nb {
				c = -1
			} else if na > nb {
				c = 1
			}
		default:
			c = cl.CompareString(a, b)
		}

		if ascending {
			return c < 0
		}
		return c > 0
	})

	rng := storage.RowsRange(2, len(rows)+1, snap.Width())
	if err := s.store.WriteRange(ctx, snap.Sheet, rng, rows); err != nil {
		return storage.ColumnSortResult{}, fmt.Errorf("%s: %w", op, err)
	}

	s.log.Info("sheet sorted by column",
		slog.String("op", op),
		slog.String("doc", docID),
		slog.String("sheet", sheet),
		slog.String("column", res.Resolved),
		slog.Bool("ascending", ascending),
	)
	return res, nil
}
