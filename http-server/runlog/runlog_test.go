package runlog

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"sheet-sync/internal/service/groupsort"
	"sheet-sync/internal/service/propagate"
	"sheet-sync/internal/storage"
)

type MockSaver struct {
	mock.Mock
}

func (m *MockSaver) SaveRun(ctx context.Context, run storage.Run) error {
	args := m.Called(ctx, run)
	return args.Error(0)
}

func TestRecord_SavesRun(t *testing.T) {
	saver := new(MockSaver)
	saver.On("SaveRun", mock.Anything, mock.MatchedBy(func(run storage.Run) bool {
		return run.Operation == "sync_row" &&
			run.DocID == "doc-1" &&
			run.Status == storage.StatusSuccess &&
			string(run.Detail) == `{"article":"A1"}` &&
			!run.FinishedAt.Before(run.StartedAt)
	})).Return(nil).Once()

	rec := New(slog.Default(), saver)
	id := rec.Record("sync_row", "doc-1", time.Now(), storage.StatusSuccess, map[string]string{"article": "A1"})

	_, err := uuid.Parse(id)
	assert.NoError(t, err)
	saver.AssertExpectations(t)
}

func TestRecord_SaveErrorDoesNotBreak(t *testing.T) {
	saver := new(MockSaver)
	saver.On("SaveRun", mock.Anything, mock.Anything).Return(errors.New("db down")).Once()

	rec := New(slog.Default(), saver)
	id := rec.Record("sort_sheets", "doc-1", time.Now(), storage.StatusFailed, nil)

	assert.NotEmpty(t, id)
	saver.AssertExpectations(t)
}

func TestRecord_WithoutSaver(t *testing.T) {
	// журнал не настроен, id все равно выдается
	rec := New(slog.Default(), nil)
	assert.NotEmpty(t, rec.Record("sync_full", "doc-1", time.Now(), storage.StatusSuccess, nil))

	var nilRec *Recorder
	assert.NotEmpty(t, nilRec.Record("sync_full", "doc-1", time.Now(), storage.StatusSuccess, nil))
}

func TestHTTPStatus(t *testing.T) {
	tests := []struct {
		err  error
		want int
	}{
		{fmt.Errorf("open: %w", storage.ErrDocumentNotFound), http.StatusNotFound},
		{fmt.Errorf("sheet: %w", storage.ErrSheetNotFound), http.StatusNotFound},
		{fmt.Errorf("row: %w", storage.ErrRowNotFound), http.StatusNotFound},
		{fmt.Errorf("column: %w", storage.ErrHeaderNotFound), http.StatusNotFound},
		{fmt.Errorf("mode: %w", groupsort.ErrUnknownMode), http.StatusBadRequest},
		{propagate.ErrEmptyArticle, http.StatusBadRequest},
		{fmt.Errorf("read: %w", context.DeadlineExceeded), http.StatusGatewayTimeout},
		{errors.New("boom"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.err.Error(), func(t *testing.T) {
			assert.Equal(t, tt.want, HTTPStatus(tt.err))
		})
	}
}

func TestFail(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/api/v1/sync/row", nil)
	rr := httptest.NewRecorder()

	Fail(rr, req, "run-1", fmt.Errorf("sync: %w", storage.ErrSheetNotFound))

	assert.Equal(t, http.StatusNotFound, rr.Code)

	var resp ErrorResponse
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	assert.Equal(t, storage.StatusFailed, resp.Status)
	assert.Equal(t, "run-1", resp.RunID)
	assert.Contains(t, resp.Error, "worksheet not found")
}
