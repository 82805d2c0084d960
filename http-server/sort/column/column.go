package column

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

type ColumnSorter interface {
	SortByHeader(ctx context.Context, docID, sheet, column string, ascending bool) (storage.ColumnSortResult, error)
}

type Request struct {
	DocID      string `json:"doc_id"`
	SheetName  string `json:"sheet_name"`
	ColumnName string `json:"column_name"`
	// по умолчанию по возрастанию
	Ascending  *bool  `json:"ascending"`
}

type Response struct {
	RunID string `json:"run_id"`
	storage.ColumnSortResult
}

func SortColumn(log *slog.Logger, sorter ColumnSorter, runs *runlog.Recorder, timeout time.Duration) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.sort.SortColumn"

		var req Request
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "invalid JSON", http.StatusBadRequest)
			return
		}
		if req.DocID == "" || req.SheetName == "" || req.ColumnName == "" {
			http.Error(w, "doc_id, sheet_name and column_name are required", http.StatusBadRequest)
			return
		}
		ascending := true
		if req.Ascending != nil {
			ascending = *req.Ascending
		}

		ctx, cancel := context.WithTimeout(r.Context(), timeout)
		defer cancel()

		started := time.Now()
		res, err := sorter.SortByHeader(ctx, req.DocID, req.SheetName, req.ColumnName, ascending)
		if err != nil {
			log.With(
				slog.String("op", op),
				slog.String("doc", req.DocID),
				slog.String("sheet", req.SheetName),
				slog.String("column", req.ColumnName),
				slog.String("error", err.Error()),
			).Error("Failed to sort column")

			id := runs.Record("sort_column", req.DocID, started, storage.StatusFailed, map[string]string{"error": err.Error()})
			runlog.Fail(w, r, id, err)
			return
		}

		id := runs.Record("sort_column", req.DocID, started, res.Status, res)
		render.JSON(w, r, Response{RunID: id, ColumnSortResult: res})
	}
}
