package memory

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"sheet-sync/internal/storage"
)

func TestStore_ReadWrite(t *testing.T) {
	ctx := context.Background()
	st := New()
	st.AddSheet("doc", "Заказ", [][]string{
		{"ID", "Цена"},
		{"A1", "10"},
		{"A2"},
	})

	doc, err := st.OpenDocument(ctx, "doc")
	require.NoError(t, err)

	sh, err := st.Worksheet(ctx, doc, "Заказ")
	require.NoError(t, err)

	col, err := st.ReadColumn(ctx, sh, 1)
	require.NoError(t, err)
	assert.Equal(t, []string{"ID", "A1", "A2"}, col)

	require.NoError(t, st.WriteCells(ctx, sh, []storage.CellUpdate{{Row: 3, Col: 2, Value: "20"}, {Row: 4, Col: 1, Value: "A3"}}))

	cell, err := st.ReadCell(ctx, sh, 3, 2)
	require.NoError(t, err)
	assert.Equal(t, "20", cell)
	assert.Equal(t, [][]string{{"ID", "Цена"}, {"A1", "10"}, {"A2", "20"}, {"A3"}}, st.Values("doc", "Заказ"))
	assert.Equal(t, 1, st.Calls("WriteCells"))
}

func TestStore_ClearWriteFormat(t *testing.T) {
	ctx := context.Background()
	st := New()
	st.AddSheet("doc", "Заказ", [][]string{{"ID", "Цена"}, {"A1", "10"}, {"A2", "20"}})
	sh := storage.Sheet{DocID: "doc", Name: "Заказ"}

	require.NoError(t, st.ApplyFormatting(ctx, sh, storage.CellStyle{Background: "#666666"}, storage.RowsRange(2, 2, 2)))
	require.NoError(t, st.ClearRange(ctx, sh, storage.RowsRange(2, 3, 2)))
	assert.Empty(t, st.Styles("doc", "Заказ"))
	assert.Equal(t, [][]string{{"ID", "Цена"}}, st.Values("doc", "Заказ"))

	require.NoError(t, st.WriteRange(ctx, sh, storage.RowsRange(2, 3, 2), [][]string{{"B1", "1"}, {"B2", "2"}}))
	assert.Equal(t, [][]string{{"ID", "Цена"}, {"B1", "1"}, {"B2", "2"}}, st.Values("doc", "Заказ"))
}

func TestStore_Errors(t *testing.T) {
	ctx := context.Background()
	st := New()
	st.AddSheet("doc", "Заказ", [][]string{{"ID"}})

	_, err := st.OpenDocument(ctx, "missing")
	assert.ErrorIs(t, err, storage.ErrDocumentNotFound)

	_, err = st.Worksheet(ctx, storage.Document{ID: "doc"}, "Прайс")
	assert.ErrorIs(t, err, storage.ErrSheetNotFound)

	boom := errors.New("quota exceeded")
	st.FailOn("ReadAll", "Заказ", boom)
	_, err = st.ReadAll(ctx, storage.Sheet{DocID: "doc", Name: "Заказ"})
	assert.ErrorIs(t, err, boom)
}

func TestStore_AppendAndDeleteRows(t *testing.T) {
	ctx := context.Background()
	st := New()
	st.AddSheet("doc", "Заказ", [][]string{{"ID"}, {"A1"}, {"A2"}, {"A3"}})
	sh := storage.Sheet{DocID: "doc", Name: "Заказ"}

	require.NoError(t, st.DeleteRows(ctx, sh, []int{2, 4}))
	require.NoError(t, st.AppendRow(ctx, sh, []string{"A4"}))

	assert.Equal(t, [][]string{{"ID"}, {"A2"}, {"A4"}}, st.Values("doc", "Заказ"))
}
