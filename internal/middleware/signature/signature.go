// Package signature проверяет подпись уведомлений редактора таблиц:
// заголовок X-Webhook-Signature: sha256=<hex HMAC-SHA256 тела запроса>.
package signature

import (
	"bytes"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"io"
	"log/slog"
	"net/http"
	"strings"
)

const (
	Header = "X-Webhook-Signature"
	prefix = "sha256="

	maxBody = 1 << 20
)

// Sign возвращает значение заголовка подписи для тела body
func Sign(secret string, body []byte) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(body)
	return prefix + hex.EncodeToString(mac.Sum(nil))
}

// Verify - проверка подписи. Пустой секрет - проверка выключена.
func Verify(log *slog.Logger, secret string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		if secret == "" {
			return next
		}

		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			const op = "middleware.signature.Verify"

			body, err := io.ReadAll(io.LimitReader(r.Body, maxBody))
			if err != nil {
				http.Error(w, "cannot read body", http.StatusBadRequest)
				return
			}
			r.Body.Close()

			got := r.Header.Get(Header)
			if !strings.HasPrefix(got, prefix) || !hmac.Equal([]byte(got), []byte(Sign(secret, body))) {
				log.With(slog.String("op", op), slog.String("path", r.URL.Path)).Warn("invalid webhook signature")
				http.Error(w, "invalid signature", http.StatusUnauthorized)
				return
			}

			r.Body = io.NopCloser(bytes.NewReader(body))
			next.ServeHTTP(w, r)
		})
	}
}
