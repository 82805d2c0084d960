package get

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"

	"sheet-sync/internal/storage"
	"sheet-sync/internal/storage/journal"
)

type RunGetter interface {
	GetRun(ctx context.Context, id string) (*storage.Run, error)
}

type RunLister interface {
	ListRuns(ctx context.Context, docID string, limit int) ([]*storage.Run, error)
}

// GetRun отдает запись журнала по id запуска
func GetRun(log *slog.Logger, getter RunGetter, timeout time.Duration) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.status.GetRun"

		id := chi.URLParam(r, "id")
		if id == "" {
			http.Error(w, "missing run id", http.StatusBadRequest)
			return
		}

		ctx, cancel := context.WithTimeout(r.Context(), timeout)
		defer cancel()

		run, err := getter.GetRun(ctx, id)
		if errors.Is(err, journal.ErrRunNotFound) {
			http.Error(w, "run not found", http.StatusNotFound)
			return
		}
		if err != nil {
			log.Error("failed to get run", slog.String("op", op), slog.String("id", id), slog.String("error", err.Error()))
			http.Error(w, "internal error", http.StatusInternalServerError)
			return
		}

		render.JSON(w, r, run)
	}
}

// ListRuns - последние запуски по документу, ?doc_id=...&limit=...
func ListRuns(log *slog.Logger, lister RunLister, timeout time.Duration) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.status.ListRuns"

		docID := r.URL.Query().Get("doc_id")
		if docID == "" {
			http.Error(w, "doc_id is required", http.StatusBadRequest)
			return
		}

		limit := 20
		if raw := r.URL.Query().Get("limit"); raw != "" {
			n, err := strconv.Atoi(raw)
			if err != nil || n <= 0 {
				http.Error(w, "invalid limit", http.StatusBadRequest)
				return
			}
			limit = n
		}

		ctx, cancel := context.WithTimeout(r.Context(), timeout)
		defer cancel()

		runs, err := lister.ListRuns(ctx, docID, limit)
		if err != nil {
			log.Error("failed to list runs", slog.String("op", op), slog.String("doc", docID), slog.String("error", err.Error()))
			http.Error(w, "internal error", http.StatusInternalServerError)
			return
		}
		if runs == nil {
			runs = []*storage.Run{}
		}

		render.JSON(w, r, runs)
	}
}
