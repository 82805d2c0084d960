package event

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"

	"sheet-sync/http-server/runlog"
	"sheet-sync/internal/storage"
)

type EventSyncer interface {
	SyncEvent(ctx context.Context, docID string, edit storage.Edit) (storage.EventSyncResult, error)
}

// Projects - код проекта (mt, sk, ss) -> id документа
type Projects interface {
	DocumentFor(project string) (string, bool)
}

type Response struct {
	RunID string `json:"run_id"`
	storage.EventSyncResult
}

// HandleEdit принимает уведомление редактора о правке ячейки
func HandleEdit(log *slog.Logger, syncer EventSyncer, projects Projects, runs *runlog.Recorder, timeout time.Duration) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.webhook.HandleEdit"

		project := chi.URLParam(r, "project")
		docID, ok := projects.DocumentFor(project)
		if !ok {
			log.With(slog.String("op", op), slog.String("project", project)).Warn("Unknown project")
			http.Error(w, "unknown project", http.StatusNotFound)
			return
		}

		var edit storage.Edit
		if err := json.NewDecoder(r.Body).Decode(&edit); err != nil {
			http.Error(w, "invalid JSON", http.StatusBadRequest)
			return
		}
		if edit.Sheet == "" || edit.Row < 1 || edit.Col < 1 {
			http.Error(w, "sheet, row and col are required", http.StatusBadRequest)
			return
		}

		ctx, cancel := context.WithTimeout(r.Context(), timeout)
		defer cancel()

		started := time.Now()
		res, err := syncer.SyncEvent(ctx, docID, edit)
		if err != nil {
			log.With(
				slog.String("op", op),
				slog.String("doc", docID),
				slog.String("sheet", edit.Sheet),
				slog.String("error", err.Error()),
			).Error("Failed to process edit")

			id := runs.Record("sync_event", docID, started, storage.StatusFailed, map[string]string{"error": err.Error()})
			runlog.Fail(w, r, id, err)
			return
		}

		id := runs.Record("sync_event", docID, started, res.Status, res)
		render.JSON(w, r, Response{RunID: id, EventSyncResult: res})
	}
}
