package groupsort

import (
	"context"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"sheet-sync/internal/storage"
	"sheet-sync/internal/storage/memory"
)

func newColumnFixture() *memory.Store {
	st := memory.New()
	st.AddSheet(testDoc, "Заказ", [][]string{
		{"ID", "Цена / EXW", "Название"},
		{"A1", "100", "яблоко"},
		{"A2", "", "Банан"},
		{"A3", "9", "абрикос"},
		{"A4", "25.5", "Вишня"},
	})
	return st
}

func column(values [][]string, col int) []string {
	var out []string
	for _, row := range values[1:] {
		out = append(out, row[col])
	}
	return out
}

func TestSortByHeader(t *testing.T) {
	tests := []struct {
		name      string
		column    string
		ascending bool
		wantIDs   []string
		resolved  string
	}{
		{
			name:      "числа по возрастанию, пустые в конце",
			column:    "цена/exw",
			ascending: true,
			wantIDs:   []string{"A3", "A4", "A1", "A2"},
			resolved:  "Цена / EXW",
		},
		{
			name:      "числа по убыванию, пустые все равно в конце",
			column:    "Цена / EXW",
			ascending: false,
			wantIDs:   []string{"A1", "A4", "A3", "A2"},
			resolved:  "Цена / EXW",
		},
		{
			name:      "текст без учета регистра",
			column:    "  НАЗВАНИЕ ",
			ascending: true,
			wantIDs:   []string{"A3", "A2", "A4", "A1"},
			resolved:  "Название",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			st := newColumnFixture()
			svc := NewService(slog.Default(), st)

			res, err := svc.SortByHeader(context.Background(), testDoc, "Заказ", tt.column, tt.ascending)
			require.NoError(t, err)

			assert.Equal(t, storage.StatusSuccess, res.Status)
			assert.Equal(t, tt.resolved, res.Resolved)
			assert.Equal(t, 4, res.Rows)
			assert.Equal(t, tt.wantIDs, column(st.Values(testDoc, "Заказ"), 0))
			assert.Equal(t, 1, st.Calls("WriteRange"))
		})
	}
}

func TestSortByHeader_UnresolvedColumn(t *testing.T) {
	st := newColumnFixture()
	before := st.Values(testDoc, "Заказ")

	_, err := NewService(slog.Default(), st).SortByHeader(context.Background(), testDoc, "Заказ", "Остаток", true)
	assert.ErrorIs(t, err, storage.ErrHeaderNotFound)
	assert.Equal(t, before, st.Values(testDoc, "Заказ"))
	assert.Equal(t, 0, st.Calls("WriteRange"))
}

func TestSortByHeader_MissingSheet(t *testing.T) {
	_, err := NewService(slog.Default(), newColumnFixture()).SortByHeader(context.Background(), testDoc, "Прайс", "ID", true)
	assert.ErrorIs(t, err, storage.ErrSheetNotFound)
}
