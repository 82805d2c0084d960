// Package runlog записывает каждый вызов операции в журнал запусков
// и переводит ошибки сервисов в HTTP-ответы.
package runlog

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/render"
	"github.com/google/uuid"

	"sheet-sync/internal/service/groupsort"
	"sheet-sync/internal/service/propagate"
	"sheet-sync/internal/storage"
)

const saveTimeout = 5 * time.Second

type Saver interface {
	SaveRun(ctx context.Context, run storage.Run) error
}

type Recorder struct {
	log   *slog.Logger
	saver Saver
}

// New - saver может быть nil, тогда запуски только получают id
func New(log *slog.Logger, saver Saver) *Recorder {
	return &Recorder{log: log, saver: saver}
}

// Record сохраняет запуск и возвращает его id. Ошибка журнала не ломает ответ.
func (rec *Recorder) Record(operation, docID string, started time.Time, status storage.Status, detail any) string {
	const op = "runlog.Record"

	id := uuid.NewString()
	if rec == nil || rec.saver == nil {
		return id
	}

	raw, err := json.Marshal(detail)
	if err != nil {
		rec.log.Error("failed to marshal run detail", slog.String("op", op), slog.String("error", err.Error()))
		raw = nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), saveTimeout)
	defer cancel()

	err = rec.saver.SaveRun(ctx, storage.Run{
		ID:         id,
		Operation:  operation,
		DocID:      docID,
		Status:     status,
		Detail:     raw,
		StartedAt:  started,
		FinishedAt: time.Now(),
	})
	if err != nil {
		rec.log.Error("failed to save run",
			slog.String("op", op),
			slog.String("operation", operation),
			slog.String("error", err.Error()),
		)
	}
	return id
}

type ErrorResponse struct {
	Status storage.Status `json:"status"`
	Error  string         `json:"error"`
	RunID  string         `json:"run_id,omitempty"`
}

// HTTPStatus - код ответа для ошибки сервиса
func HTTPStatus(err error) int {
	switch {
	case errors.Is(err, storage.ErrDocumentNotFound),
		errors.Is(err, storage.ErrSheetNotFound),
		errors.Is(err, storage.ErrRowNotFound),
		errors.Is(err, storage.ErrHeaderNotFound):
		return http.StatusNotFound
	case errors.Is(err, groupsort.ErrUnknownMode),
		errors.Is(err, propagate.ErrEmptyArticle):
		return http.StatusBadRequest
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout
	default:
		return http.StatusInternalServerError
	}
}

// Fail отвечает JSON с описанием ошибки
func Fail(w http.ResponseWriter, r *http.Request, runID string, err error) {
	render.Status(r, HTTPStatus(err))
	render.JSON(w, r, ErrorResponse{Status: storage.StatusFailed, Error: err.Error(), RunID: runID})
}
