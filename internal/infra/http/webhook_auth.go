package http

import (
	"crypto/subtle"
	"net/http"
)

// SecretParam называет параметр адреса вебхука с секретом, который знает только Telegram.
const SecretParam = "secret"

// WebhookSecretMiddleware отклоняет запросы вебхука без верного секрета.
func WebhookSecretMiddleware(secret string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		if secret == "" {
			return next
		}
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			got := r.URL.Query().Get(SecretParam)
			if subtle.ConstantTimeCompare([]byte(got), []byte(secret)) != 1 {
				http.Error(w, "подпись недействительна", http.StatusUnauthorized)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
