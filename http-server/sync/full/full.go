package full

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

type FullSyncer interface {
	SyncFull(ctx context.Context, docID, sourceSheet string) (storage.FullSyncResult, error)
}

type Request struct {
	DocID       string `json:"doc_id"`
	SourceSheet string `json:"source_sheet"`
}

type Response struct {
	RunID string `json:"run_id"`
	storage.FullSyncResult
}

func SyncFull(log *slog.Logger, syncer FullSyncer, runs *runlog.Recorder, timeout time.Duration) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.sync.SyncFull"

		var req Request
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "invalid JSON", http.StatusBadRequest)
			return
		}
		if req.DocID == "" || req.SourceSheet == "" {
			http.Error(w, "doc_id and source_sheet are required", http.StatusBadRequest)
			return
		}

		ctx, cancel := context.WithTimeout(r.Context(), timeout)
		defer cancel()

		started := time.Now()
		res, err := syncer.SyncFull(ctx, req.DocID, req.SourceSheet)
		if err != nil {
			log.With(
				slog.String("op", op),
				slog.String("doc", req.DocID),
				slog.String("sheet", req.SourceSheet),
				slog.String("error", err.Error()),
			).Error("Failed to sync sheet")

			id := runs.Record("sync_full", req.DocID, started, storage.StatusFailed, map[string]string{"error": err.Error()})
			runlog.Fail(w, r, id, err)
			return
		}

		id := runs.Record("sync_full", req.DocID, started, res.Status, res)
		render.JSON(w, r, Response{RunID: id, FullSyncResult: res})
	}
}
