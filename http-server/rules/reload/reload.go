package reload

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

type RuleReloader interface {
	Reload(ctx context.Context, docID string) ([]storage.Rule, error)
}

type Request struct {
	DocID string `json:"doc_id"`
}

type Response struct {
	RunID  string         `json:"run_id"`
	Status storage.Status `json:"status"`
	Count  int            `json:"count"`
	Rules  []storage.Rule `json:"rules"`
}

// Reload перечитывает лист правил мимо TTL кэша
func Reload(log *slog.Logger, reloader RuleReloader, runs *runlog.Recorder, timeout time.Duration) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.rules.Reload"

		var req Request
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "invalid JSON", http.StatusBadRequest)
			return
		}
		if req.DocID == "" {
			http.Error(w, "doc_id is required", http.StatusBadRequest)
			return
		}

		ctx, cancel := context.WithTimeout(r.Context(), timeout)
		defer cancel()

		started := time.Now()
		rules, err := reloader.Reload(ctx, req.DocID)
		if err != nil {
			log.With(
				slog.String("op", op),
				slog.String("doc", req.DocID),
				slog.String("error", err.Error()),
			).Error("Failed to reload rules")

			id := runs.Record("reload_rules", req.DocID, started, storage.StatusFailed, map[string]string{"error": err.Error()})
			runlog.Fail(w, r, id, err)
			return
		}

		if rules == nil {
			rules = []storage.Rule{}
		}
		id := runs.Record("reload_rules", req.DocID, started, storage.StatusSuccess, map[string]int{"count": len(rules)})
		render.JSON(w, r, Response{RunID: id, Status: storage.StatusSuccess, Count: len(rules), Rules: rules})
	}
}
