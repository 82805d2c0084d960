package signature

import (
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestVerify(t *testing.T) {
	const body = `{"sheet":"Главная","row":2,"col":3,"value":"150"}`

	// обработчик проверяет, что тело дошло целиком
	echo := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got, err := io.ReadAll(r.Body)
		require.NoError(t, err)
		assert.Equal(t, body, string(got))
		w.WriteHeader(http.StatusOK)
	})

	tests := []struct {
		name       string
		secret     string
		header     string
		wantStatus int
	}{
		{name: "верная подпись", secret: "s3cret", header: Sign("s3cret", []byte(body)), wantStatus: http.StatusOK},
		{name: "чужой секрет", secret: "s3cret", header: Sign("other", []byte(body)), wantStatus: http.StatusUnauthorized},
		{name: "без префикса", secret: "s3cret", header: strings.TrimPrefix(Sign("s3cret", []byte(body)), "sha256="), wantStatus: http.StatusUnauthorized},
		{name: "нет заголовка", secret: "s3cret", wantStatus: http.StatusUnauthorized},
		{name: "секрет не задан", secret: "", wantStatus: http.StatusOK},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			handler := Verify(slog.Default(), tt.secret)(echo)

			req := httptest.NewRequest(http.MethodPost, "/webhook/sheets/mt", strings.NewReader(body))
			if tt.header != "" {
				req.Header.Set(Header, tt.header)
			}
			rr := httptest.NewRecorder()
			handler.ServeHTTP(rr, req)

			assert.Equal(t, tt.wantStatus, rr.Code)
		})
	}
}

func TestSign(t *testing.T) {
	// HMAC-SHA256("key", "The quick brown fox jumps over the lazy dog")
	got := Sign("key", []byte("The quick brown fox jumps over the lazy dog"))
	assert.Equal(t, "sha256=f7bc83f430538424b13298e6aa6fb143ef4d59a14946175997479dbc2d1a3cd8", got)
}
