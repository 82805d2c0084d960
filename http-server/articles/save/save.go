package save

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/render"

	"sheet-sync/http-server/runlog"
	"sheet-sync/internal/storage"
)

type ArticleAdder interface {
	AddArticle(ctx context.Context, docID, article string) (storage.ArticlesResult, error)
}

type Request struct {
	DocID   string `json:"doc_id"`
	Article string `json:"article"`
}

type Response struct {
	RunID string `json:"run_id"`
	storage.ArticlesResult
}

// AddArticle добавляет артикул во все листы семейства артикулов
func AddArticle(log *slog.Logger, adder ArticleAdder, runs *runlog.Recorder, timeout time.Duration) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.articles.AddArticle"

		var req Request
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "invalid JSON", http.StatusBadRequest)
			return
		}
		if req.DocID == "" || strings.TrimSpace(req.Article) == "" {
			http.Error(w, "doc_id and article are required", http.StatusBadRequest)
			return
		}

		ctx, cancel := context.WithTimeout(r.Context(), timeout)
		defer cancel()

		started := time.Now()
		res, err := adder.AddArticle(ctx, req.DocID, req.Article)
		if err != nil {
			log.With(
				slog.String("op", op),
				slog.String("doc", req.DocID),
				slog.String("article", req.Article),
				slog.String("error", err.Error()),
			).Error("Failed to add article")

			id := runs.Record("add_article", req.DocID, started, storage.StatusFailed, map[string]string{"error": err.Error()})
			runlog.Fail(w, r, id, err)
			return
		}

		id := runs.Record("add_article", req.DocID, started, res.Status, res)
		render.Status(r, http.StatusCreated)
		render.JSON(w, r, Response{RunID: id, ArticlesResult: res})
	}
}
