package sheets

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"sheet-sync/http-server/runlog"
	"sheet-sync/internal/service/groupsort"
	"sheet-sync/internal/storage"
)

type MockSheetSorter struct {
	mock.Mock
}

func (m *MockSheetSorter) SortSheets(ctx context.Context, docID string, mode groupsort.Mode) (storage.SortResult, error) {
	args := m.Called(ctx, docID, mode)
	return args.Get(0).(storage.SortResult), args.Error(1)
}

func TestSortSheets_Success(t *testing.T) {
	sorter := new(MockSheetSorter)
	result := storage.SortResult{
		Status: storage.StatusSuccess,
		Mode:   string(groupsort.ByPrice),
		Sheets: []storage.SheetSortResult{{Name: "Заказ", Groups: 3, Rows: 12}},
		Errors: []string{"Sheet 'Заказ SS' not found"},
	}
	sorter.On("SortSheets", mock.Anything, "doc-1", groupsort.ByPrice).Return(result, nil).Once()

	handler := SortSheets(slog.Default(), sorter, runlog.New(slog.Default(), nil), time.Second)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/sort", strings.NewReader(`{"doc_id":"doc-1","mode":"byPrice"}`))
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusOK, rr.Code)

	var resp Response
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	require.Len(t, resp.Sheets, 1)
	assert.Equal(t, 3, resp.Sheets[0].Groups)
	assert.Equal(t, []string{"Sheet 'Заказ SS' not found"}, resp.Errors)

	sorter.AssertExpectations(t)
}

func TestSortSheets_UnknownMode(t *testing.T) {
	sorter := new(MockSheetSorter)
	handler := SortSheets(slog.Default(), sorter, runlog.New(slog.Default(), nil), time.Second)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/sort", strings.NewReader(`{"doc_id":"doc-1","mode":"byColor"}`))
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusBadRequest, rr.Code)
	assert.Contains(t, rr.Body.String(), "unknown sort mode")
	sorter.AssertNotCalled(t, "SortSheets", mock.Anything, mock.Anything, mock.Anything)
}

func TestSortSheets_DocumentMissing(t *testing.T) {
	sorter := new(MockSheetSorter)
	sorter.On("SortSheets", mock.Anything, "nope", groupsort.ByManufacturer).
		Return(storage.SortResult{}, fmt.Errorf("open: %w", storage.ErrDocumentNotFound)).Once()

	handler := SortSheets(slog.Default(), sorter, runlog.New(slog.Default(), nil), time.Second)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/sort", strings.NewReader(`{"doc_id":"nope","mode":"byManufacturer"}`))
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusNotFound, rr.Code)
	sorter.AssertExpectations(t)
}
