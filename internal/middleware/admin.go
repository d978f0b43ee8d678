package middleware

import (
	"crypto/subtle"
	"net/http"
)

// AdminSecretHeader это заголовок с административным секретом
const AdminSecretHeader = "X-Admin-Secret"

// AdminAuth создает middleware, пропускающий запрос только при совпадении
// заголовка X-Admin-Secret с настроенным секретом. Сравнение выполняется
// за постоянное время.
func AdminAuth(secret string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			provided := r.Header.Get(AdminSecretHeader)
			if provided == "" {
				http.Error(w, `{"error":{"code":"UNAUTHORIZED","message":"missing admin secret header"}}`, http.StatusUnauthorized)
				return
			}

			if subtle.ConstantTimeCompare([]byte(provided), []byte(secret)) != 1 {
				http.Error(w, `{"error":{"code":"UNAUTHORIZED","message":"invalid admin secret"}}`, http.StatusUnauthorized)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
