package handlers

import (
	"context"
	"crypto/subtle"
	"net/http"
	"time"

	"github.com/farhyn/catalog-platform/pkg/auth"
	"github.com/farhyn/catalog-platform/pkg/interfaces"
	"github.com/google/uuid"
)

const ssoStateCookie = "sso_state"

// SSOProvider вход через внешний OIDC провайдер (Keycloak)
type SSOProvider interface {
	AuthCodeURL(state string) string
	Exchange(ctx context.Context, code string) (string, time.Time, error)
}

// SSOHandler перенаправляет на страницу входа провайдера и принимает код авторизации
type SSOHandler struct {
	provider   SSOProvider
	cookies    CookieConfig
	redirectTo string
	logger     interfaces.LoggerPort
}

// NewSSOHandler redirectTo адрес фронтенда после успешного входа
func NewSSOHandler(provider SSOProvider, cookies CookieConfig, redirectTo string, logger interfaces.LoggerPort) *SSOHandler {
	if redirectTo == "" {
		redirectTo = "/"
	}
	return &SSOHandler{provider: provider, cookies: cookies, redirectTo: redirectTo, logger: logger}
}

// Login обрабатывает GET /api/sso/login/
func (h *SSOHandler) Login(w http.ResponseWriter, r *http.Request) {
	state := uuid.New().String()
	http.SetCookie(w, &http.Cookie{
		Name:     ssoStateCookie,
		Value:    state,
		Path:     "/",
		Domain:   h.cookies.Domain,
		MaxAge:   300,
		Secure:   h.cookies.Secure,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
	http.Redirect(w, r, h.provider.AuthCodeURL(state), http.StatusFound)
}

// Callback обрабатывает GET /api/sso/callback/
func (h *SSOHandler) Callback(w http.ResponseWriter, r *http.Request) {
	state, err := r.Cookie(ssoStateCookie)
	if err != nil || subtle.ConstantTimeCompare([]byte(state.Value), []byte(r.URL.Query().Get("state"))) != 1 {
		writeJSON(w, r, http.StatusBadRequest, messageResponse{Error: "Invalid SSO state"})
		return
	}

	code := r.URL.Query().Get("code")
	if code == "" {
		writeJSON(w, r, http.StatusBadRequest, messageResponse{Error: "Authorization code is missing"})
		return
	}

	idToken, expiry, err := h.provider.Exchange(r.Context(), code)
	if err != nil {
		h.logger.WarnWithContext(r.Context(), "Ошибка входа через SSO", interfaces.LogField{Key: "error", Value: err.Error()})
		writeJSON(w, r, http.StatusUnauthorized, messageResponse{Error: "Invalid credentials"})
		return
	}

	maxAge := int(time.Until(expiry).Seconds())
	if maxAge <= 0 {
		maxAge = 3600
	}
	http.SetCookie(w, &http.Cookie{Name: ssoStateCookie, Value: "", Path: "/", Domain: h.cookies.Domain, MaxAge: -1})
	http.SetCookie(w, &http.Cookie{
		Name:     auth.AccessTokenCookie,
		Value:    idToken,
		Path:     "/",
		Domain:   h.cookies.Domain,
		MaxAge:   maxAge,
		Secure:   h.cookies.Secure,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
	http.Redirect(w, r, h.redirectTo, http.StatusFound)
}
