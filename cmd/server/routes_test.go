package main

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"sheet-sync/http-server/runlog"
	"sheet-sync/internal/app"
	"sheet-sync/internal/config"
	"sheet-sync/internal/constants"
	"sheet-sync/internal/middleware/signature"
	"sheet-sync/internal/storage/memory"
)

func newTestServer(t *testing.T, cfg *config.Config) (http.Handler, *memory.Store) {
	t.Helper()

	a, err := app.New(cfg, slog.Default())
	require.NoError(t, err)
	t.Cleanup(func() { a.Close() })

	mem := a.Store.(*memory.Store)
	mem.AddSheet("doc-mt", constants.SheetRules, [][]string{
		{"ID", "Вкл", "Категория", "Хэштеги", "Лист-источник", "Заголовок-источник", "Лист-приемник", "Заголовок-приемник", "Внешний", "ID документа"},
		{"r1", "да", "цены", "", "Главная", "Цена", "Заказ", "Цена", "", ""},
	})
	mem.AddSheet("doc-mt", "Главная", [][]string{
		{"ID", "Цена"},
		{"A1", "150"},
	})
	mem.AddSheet("doc-mt", "Заказ", [][]string{
		{"ID", "Цена"},
		{"A1", "100"},
	})

	return routes(cfg, slog.Default(), a, runlog.New(slog.Default(), nil)), mem
}

func baseConfig() *config.Config {
	cfg := &config.Config{
		Store:    config.Store{Driver: "memory"},
		Projects: map[string]string{"mt": "doc-mt"},
	}
	cfg.HTTPServer.OpTimeout = 5 * time.Second
	return cfg
}

func TestRoutes_SyncRowEndToEnd(t *testing.T) {
	h, mem := newTestServer(t, baseConfig())

	req := httptest.NewRequest(http.MethodPost, "/api/v1/sync/row",
		strings.NewReader(`{"doc_id":"doc-mt","article":"A1","source_sheet":"Главная"}`))
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)

	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
	assert.Equal(t, [][]string{{"ID", "Цена"}, {"A1", "150"}}, mem.Values("doc-mt", "Заказ"))
}

func TestRoutes_WebhookSignature(t *testing.T) {
	cfg := baseConfig()
	cfg.Webhook.Secret = "s3cret"
	h, mem := newTestServer(t, cfg)

	body := `{"sheet":"Главная","row":2,"col":2,"value":"150","header_name":"Цена","row_key":"A1"}`

	// без подписи
	req := httptest.NewRequest(http.MethodPost, "/webhook/sheets/mt", strings.NewReader(body))
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	assert.Equal(t, http.StatusUnauthorized, rr.Code)

	// с подписью
	req = httptest.NewRequest(http.MethodPost, "/webhook/sheets/mt", strings.NewReader(body))
	req.Header.Set(signature.Header, signature.Sign("s3cret", []byte(body)))
	rr = httptest.NewRecorder()
	h.ServeHTTP(rr, req)

	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())

	var resp map[string]any
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	assert.Equal(t, "success", resp["status"])
	assert.Equal(t, [][]string{{"ID", "Цена"}, {"A1", "150"}}, mem.Values("doc-mt", "Заказ"))
}

func TestRoutes_BasicAuth(t *testing.T) {
	cfg := baseConfig()
	cfg.AdminLogin = "operator"
	cfg.AdminPass = "pass"
	h, _ := newTestServer(t, cfg)

	body := `{"doc_id":"doc-mt","mode":"byManufacturer"}`

	req := httptest.NewRequest(http.MethodPost, "/api/v1/sort", strings.NewReader(body))
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	assert.Equal(t, http.StatusUnauthorized, rr.Code)

	// health открыт всегда
	req = httptest.NewRequest(http.MethodGet, "/health", nil)
	rr = httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	assert.Equal(t, http.StatusOK, rr.Code)
}

func TestRoutes_StatusNotMountedWithoutJournal(t *testing.T) {
	h, _ := newTestServer(t, baseConfig())

	req := httptest.NewRequest(http.MethodGet, "/api/v1/status/some-id", nil)
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusNotFound, rr.Code)
}
