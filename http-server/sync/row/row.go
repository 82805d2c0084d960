package row

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/render"

	"sheet-sync/http-server/runlog"
	"sheet-sync/internal/storage"
)

type RowSyncer interface {
	SyncRow(ctx context.Context, docID, article, sourceSheet string) (storage.RowSyncResult, error)
}

type Request struct {
	DocID       string `json:"doc_id"`
	Article     string `json:"article"`
	SourceSheet string `json:"source_sheet"`
}

type Response struct {
	RunID string `json:"run_id"`
	storage.RowSyncResult
}

func SyncRow(log *slog.Logger, syncer RowSyncer, runs *runlog.Recorder, timeout time.Duration) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.sync.SyncRow"

		var req Request
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "invalid JSON", http.StatusBadRequest)
			return
		}
		if req.DocID == "" || req.Article == "" || req.SourceSheet == "" {
			http.Error(w, "doc_id, article and source_sheet are required", http.StatusBadRequest)
			return
		}

		ctx, cancel := context.WithTimeout(r.Context(), timeout)
		defer cancel()

		started := time.Now()
		res, err := syncer.SyncRow(ctx, req.DocID, req.Article, req.SourceSheet)
		if err != nil {
			log.With(
				slog.String("op", op),
				slog.String("doc", req.DocID),
				slog.String("article", req.Article),
				slog.String("error", err.Error()),
			).Error("Failed to sync row")

			id := runs.Record("sync_row", req.DocID, started, storage.StatusFailed, map[string]string{"error": err.Error()})
			runlog.Fail(w, r, id, err)
			return
		}

		id := runs.Record("sync_row", req.DocID, started, res.Status, res)
		render.JSON(w, r, Response{RunID: id, RowSyncResult: res})
	}
}
