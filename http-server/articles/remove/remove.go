package remove

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

type ArticleRemover interface {
	DeleteArticles(ctx context.Context, docID string, articles []string) (storage.ArticlesResult, error)
}

type Request struct {
	DocID    string   `json:"doc_id"`
	Articles []string `json:"articles"`
}

type Response struct {
	RunID string `json:"run_id"`
	storage.ArticlesResult
}

func DeleteArticles(log *slog.Logger, remover ArticleRemover, runs *runlog.Recorder, timeout time.Duration) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.articles.DeleteArticles"

		var req Request
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "invalid JSON", http.StatusBadRequest)
			return
		}
		if req.DocID == "" || len(req.Articles) == 0 {
			http.Error(w, "doc_id and articles are required", http.StatusBadRequest)
			return
		}

		ctx, cancel := context.WithTimeout(r.Context(), timeout)
		defer cancel()

		started := time.Now()
		res, err := remover.DeleteArticles(ctx, req.DocID, req.Articles)
		if err != nil {
			log.With(
				slog.String("op", op),
				slog.String("doc", req.DocID),
				slog.Int("articles", len(req.Articles)),
				slog.String("error", err.Error()),
			).Error("Failed to delete articles")

			id := runs.Record("delete_articles", req.DocID, started, storage.StatusFailed, map[string]string{"error": err.Error()})
			runlog.Fail(w, r, id, err)
			return
		}

		id := runs.Record("delete_articles", req.DocID, started, res.Status, res)
		render.JSON(w, r, Response{RunID: id, ArticlesResult: res})
	}
}
