package main

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/render"
	"github.com/rs/cors"

	removearticles "sheet-sync/http-server/articles/remove"
	savearticle "sheet-sync/http-server/articles/save"
	reloadrules "sheet-sync/http-server/rules/reload"
	"sheet-sync/http-server/runlog"
	sortcolumn "sheet-sync/http-server/sort/column"
	sortsheets "sheet-sync/http-server/sort/sheets"
	getstatus "sheet-sync/http-server/status/get"
	syncevent "sheet-sync/http-server/sync/event"
	syncfull "sheet-sync/http-server/sync/full"
	syncrow "sheet-sync/http-server/sync/row"
	"sheet-sync/internal/app"
	"sheet-sync/internal/config"
	"sheet-sync/internal/middleware/auth"
	"sheet-sync/internal/middleware/signature"
)

func routes(cfg *config.Config, log *slog.Logger, a *app.App, runs *runlog.Recorder) *chi.Mux {
	router := chi.NewRouter()

	corsHandler := cors.New(cors.Options{
		AllowedOrigins:   cfg.CORSOrigins,
		AllowedMethods:   []string{"GET", "POST", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", signature.Header},
		AllowCredentials: true,
	})

	router.Use(corsHandler.Handler)

	router.Use(middleware.RequestID)
	//ip пользователя
	router.Use(middleware.RealIP)
	router.Use(middleware.Logger)
	router.Use(middleware.Recoverer)

	timeout := cfg.HTTPServer.OpTimeout

	router.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		render.JSON(w, r, map[string]string{"status": "ok", "store": cfg.Store.Driver})
	})

	// уведомления редактора о правках, проект -> документ по конфигу
	router.With(signature.Verify(log, cfg.Webhook.Secret)).
		Post("/webhook/sheets/{project}", syncevent.HandleEdit(log, a.Sync, cfg, runs, timeout))

	router.Route("/api/v1", func(api chi.Router) {
		api.Use(auth.BasicAuth(cfg.AdminLogin, cfg.AdminPass))

		api.Post("/sync/row", syncrow.SyncRow(log, a.Sync, runs, timeout))
		api.Post("/sync/full", syncfull.SyncFull(log, a.Sync, runs, timeout))

		api.Post("/sort", sortsheets.SortSheets(log, a.Sort, runs, timeout))
		api.Post("/sort/column", sortcolumn.SortColumn(log, a.Sort, runs, timeout))

		api.Post("/articles", savearticle.AddArticle(log, a.Sync, runs, timeout))
		api.Delete("/articles", removearticles.DeleteArticles(log, a.Sync, runs, timeout))

		api.Post("/rules/reload", reloadrules.Reload(log, a.Rules, runs, timeout))

		if a.Journal != nil {
			api.Get("/status/{id}", getstatus.GetRun(log, a.Journal, cfg.HTTPServer.Timeout))
			api.Get("/runs", getstatus.ListRuns(log, a.Journal, cfg.HTTPServer.Timeout))
		}
	})

	return router
}
