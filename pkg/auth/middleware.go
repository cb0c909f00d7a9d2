package auth

import (
	"context"
	"net/http"
	"strings"

	"github.com/farhyn/catalog-platform/pkg/interfaces"
)

type ctxKey string

const (
	principalKey ctxKey = "principal"
	userIDKey    ctxKey = "user_id"

	// AccessTokenCookie cookie, из которого берется токен при отсутствии заголовка Authorization
	AccessTokenCookie = "access_token"
)

// WithPrincipal кладет пользователя в контекст
func WithPrincipal(ctx context.Context, p *interfaces.Principal) context.Context {
	ctx = context.WithValue(ctx, principalKey, p)
	return context.WithValue(ctx, userIDKey, p.UserID)
}

// PrincipalFromContext возвращает пользователя запроса
func PrincipalFromContext(ctx context.Context) (*interfaces.Principal, bool) {
	p, ok := ctx.Value(principalKey).(*interfaces.Principal)
	return p, ok && p != nil
}

// UserIDFromContext возвращает идентификатор пользователя или пустую строку
func UserIDFromContext(ctx context.Context) string {
	id, _ := ctx.Value(userIDKey).(string)
	return id
}

// TokenFromRequest извлекает токен из "Authorization: Bearer" или cookie access_token
func TokenFromRequest(r *http.Request) string {
	if header := r.Header.Get("Authorization"); header != "" {
		parts := strings.SplitN(header, " ", 2)
		if len(parts) == 2 && strings.EqualFold(parts[0], "Bearer") {
			return strings.TrimSpace(parts[1])
		}
		return ""
	}
	if c, err := r.Cookie(AccessTokenCookie); err == nil {
		return c.Value
	}
	return ""
}

// AuthMiddleware пропускает только запросы с валидным токеном
func AuthMiddleware(authPort interfaces.AuthPort, logger interfaces.LoggerPort) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := TokenFromRequest(r)
			if token == "" {
				writeUnauthorized(w, "Authentication credentials were not provided.")
				return
			}

			principal, err := authPort.Authenticate(r.Context(), token)
			if err != nil {
				logger.WarnWithContext(r.Context(), "Невалидный токен",
					interfaces.LogField{Key: "error", Value: err.Error()})
				writeUnauthorized(w, "Given token not valid for any token type")
				return
			}

			next.ServeHTTP(w, r.WithContext(WithPrincipal(r.Context(), principal)))
		})
	}
}

func writeUnauthorized(w http.ResponseWriter, detail string) {
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("WWW-Authenticate", `Bearer realm="api"`)
	w.WriteHeader(http.StatusUnauthorized)
	_, _ = w.Write([]byte(`{"detail":"` + detail + `"}`))
}
