package sheets

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/render"

	"sheet-sync/http-server/runlog"
	"sheet-sync/internal/service/groupsort"
	"sheet-sync/internal/storage"
)

type SheetSorter interface {
	SortSheets(ctx context.Context, docID string, mode groupsort.Mode) (storage.SortResult, error)
}

type Request struct {
	DocID string `json:"doc_id"`
	Mode  string `json:"mode"`
}

type Response struct {
	RunID string `json:"run_id"`
	storage.SortResult
}

// SortSheets группирует строки всех листов семейства "Заказ"
func SortSheets(log *slog.Logger, sorter SheetSorter, runs *runlog.Recorder, timeout time.Duration) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.sort.SortSheets"

		var req Request
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "invalid JSON", http.StatusBadRequest)
			return
		}
		if req.DocID == "" {
			http.Error(w, "doc_id is required", http.StatusBadRequest)
			return
		}

		mode, err := groupsort.ParseMode(req.Mode)
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}

		ctx, cancel := context.WithTimeout(r.Context(), timeout)
		defer cancel()

		started := time.Now()
		res, err := sorter.SortSheets(ctx, req.DocID, mode)
		if err != nil {
			log.With(
				slog.String("op", op),
				slog.String("doc", req.DocID),
				slog.String("mode", string(mode)),
				slog.String("error", err.Error()),
			).Error("Failed to sort sheets")

			id := runs.Record("sort_sheets", req.DocID, started, storage.StatusFailed, map[string]string{"error": err.Error()})
			runlog.Fail(w, r, id, err)
			return
		}

		id := runs.Record("sort_sheets", req.DocID, started, res.Status, res)
		render.JSON(w, r, Response{RunID: id, SortResult: res})
	}
}
