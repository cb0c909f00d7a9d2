package handlers

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/farhyn/catalog-platform/pkg/auth"
	"github.com/farhyn/catalog-platform/pkg/interfaces"
	"github.com/farhyn/catalog-platform/services/catalog-service/internal/domain/models"
	"github.com/farhyn/catalog-platform/services/catalog-service/internal/domain/services"
	"github.com/farhyn/catalog-platform/services/catalog-service/internal/security"
	"github.com/farhyn/catalog-platform/services/catalog-service/internal/utils"
	"github.com/go-chi/render"
)

const (
	RefreshTokenCookie = "refresh_token"
	profileNotFound    = "Profile not found"
)

// MemberService операции над пользователями, нужные обработчикам
type MemberService interface {
	Register(ctx context.Context, in services.RegisterInput) (*models.User, *security.TokenPair, error)
	Login(ctx context.Context, email, password string) (*models.User, *security.TokenPair, error)
	Refresh(ctx context.Context, refreshToken string) (*security.TokenPair, error)
	GetProfile(ctx context.Context, userID string) (*models.Profile, error)
	UpdateProfile(ctx context.Context, caller *interfaces.Principal, targetUserID string, in services.ProfileInput) (*models.Profile, error)
	TokenTTL() (access, refresh int)
}

// CookieConfig атрибуты cookie с токенами
type CookieConfig struct {
	Domain string
	Secure bool
}

// MemberHandler регистрация, вход и профиль
type MemberHandler struct {
	memberService  MemberService
	cookies        CookieConfig
	maxUploadBytes int64
	logger         interfaces.LoggerPort
}

func NewMemberHandler(memberService MemberService, cookies CookieConfig, maxUploadBytes int64, logger interfaces.LoggerPort) *MemberHandler {
	return &MemberHandler{
		memberService:  memberService,
		cookies:        cookies,
		maxUploadBytes: maxUploadBytes,
		logger:         logger,
	}
}

type userResponse struct {
	ID        int64  `json:"id"`
	Email     string `json:"email"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
}

type authResponse struct {
	Status  string              `json:"status"`
	Message string              `json:"message"`
	Tokens  *security.TokenPair `json:"tokens,omitempty"`
	User    userResponse        `json:"user"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type refreshRequest struct {
	Refresh string `json:"refresh"`
}

func newUserResponse(u *models.User) userResponse {
	return userResponse{ID: u.ID, Email: u.Email, FirstName: u.FirstName, LastName: u.LastName}
}

// Register обрабатывает POST /api/register/
func (h *MemberHandler) Register(w http.ResponseWriter, r *http.Request) {
	var in services.RegisterInput
	if err := render.DecodeJSON(r.Body, &in); err != nil {
		writeJSON(w, r, http.StatusBadRequest, map[string]string{"detail": "JSON parse error"})
		return
	}

	user, tokens, err := h.memberService.Register(r.Context(), in)
	if err != nil {
		writeError(w, r, h.logger, err, profileNotFound)
		return
	}

	writeJSON(w, r, http.StatusCreated, authResponse{
		Status:  "success",
		Message: "User registered successfully",
		Tokens:  tokens,
		User:    newUserResponse(user),
	})
}

// Login обрабатывает POST /api/login/ и выставляет cookie с токенами
func (h *MemberHandler) Login(w http.ResponseWriter, r *http.Request) {
	var in loginRequest
	if err := render.DecodeJSON(r.Body, &in); err != nil {
		writeJSON(w, r, http.StatusBadRequest, map[string]string{"detail": "JSON parse error"})
		return
	}
	if in.Email == "" || in.Password == "" {
		writeJSON(w, r, http.StatusBadRequest, messageResponse{Error: "Please provide both email and password"})
		return
	}

	user, tokens, err := h.memberService.Login(r.Context(), in.Email, in.Password)
	if err != nil {
		writeError(w, r, h.logger, err, profileNotFound)
		return
	}

	accessTTL, refreshTTL := h.memberService.TokenTTL()
	h.setCookie(w, RefreshTokenCookie, tokens.Refresh, refreshTTL)
	h.setCookie(w, auth.AccessTokenCookie, tokens.Access, accessTTL)

	writeJSON(w, r, http.StatusOK, authResponse{
		Status:  "success",
		Message: "Login successful",
		User:    newUserResponse(user),
	})
}

// Refresh обрабатывает POST /api/token/refresh/; токен берется из тела или cookie
func (h *MemberHandler) Refresh(w http.ResponseWriter, r *http.Request) {
	var in refreshRequest
	if err := render.DecodeJSON(r.Body, &in); err != nil && r.ContentLength > 0 {
		writeJSON(w, r, http.StatusBadRequest, map[string]string{"detail": "JSON parse error"})
		return
	}
	if in.Refresh == "" {
		if c, err := r.Cookie(RefreshTokenCookie); err == nil {
			in.Refresh = c.Value
		}
	}
	if in.Refresh == "" {
		writeJSON(w, r, http.StatusBadRequest, map[string][]string{"refresh": {"This field is required."}})
		return
	}

	tokens, err := h.memberService.Refresh(r.Context(), in.Refresh)
	if err != nil {
		writeError(w, r, h.logger, err, profileNotFound)
		return
	}

	accessTTL, refreshTTL := h.memberService.TokenTTL()
	h.setCookie(w, RefreshTokenCookie, tokens.Refresh, refreshTTL)
	h.setCookie(w, auth.AccessTokenCookie, tokens.Access, accessTTL)
	writeJSON(w, r, http.StatusOK, tokens)
}

// Logout обрабатывает POST /api/logout/
func (h *MemberHandler) Logout(w http.ResponseWriter, r *http.Request) {
	h.setCookie(w, RefreshTokenCookie, "", -1)
	h.setCookie(w, auth.AccessTokenCookie, "", -1)
	writeJSON(w, r, http.StatusOK, messageResponse{Message: "Logout successful"})
}

// GetProfile обрабатывает GET /api/profile/
func (h *MemberHandler) GetProfile(w http.ResponseWriter, r *http.Request) {
	profile, err := h.memberService.GetProfile(r.Context(), auth.UserIDFromContext(r.Context()))
	if err != nil {
		writeError(w, r, h.logger, err, profileNotFound)
		return
	}
	writeJSON(w, r, http.StatusOK, profile)
}

// UpdateProfile обрабатывает PUT /api/profile/update/.
// Staff может указать чужой профиль параметром user.
func (h *MemberHandler) UpdateProfile(w http.ResponseWriter, r *http.Request) {
	caller, _ := auth.PrincipalFromContext(r.Context())
	target := auth.UserIDFromContext(r.Context())
	if u := r.URL.Query().Get("user"); u != "" {
		target = u
	}

	picture, closePicture, err := formUpload(w, r, "profile_picture", h.maxUploadBytes)
	if err != nil {
		writeError(w, r, h.logger, err, profileNotFound)
		return
	}
	defer closePicture()

	in := services.ProfileInput{Picture: picture}
	if r.MultipartForm != nil {
		if values, ok := r.MultipartForm.Value["bio"]; ok && len(values) > 0 {
			bio := values[0]
			in.Bio = &bio
		}
	} else if strings.HasPrefix(r.Header.Get("Content-Type"), "application/json") {
		var body struct {
			Bio *string `json:"bio"`
		}
		if err := render.DecodeJSON(r.Body, &body); err != nil {
			writeError(w, r, h.logger, utils.NewValidationError("bio", "Invalid value."), profileNotFound)
			return
		}
		in.Bio = body.Bio
	}

	profile, err := h.memberService.UpdateProfile(r.Context(), caller, target, in)
	if err != nil {
		if errors.Is(err, utils.ErrForbidden) {
			h.logger.WarnWithContext(r.Context(), "Попытка изменить чужой профиль",
				interfaces.LogField{Key: "target_user", Value: target})
		}
		writeError(w, r, h.logger, err, profileNotFound)
		return
	}
	writeJSON(w, r, http.StatusOK, profile)
}

func (h *MemberHandler) setCookie(w http.ResponseWriter, name, value string, maxAge int) {
	http.SetCookie(w, &http.Cookie{
		Name:     name,
		Value:    value,
		Path:     "/",
		Domain:   h.cookies.Domain,
		MaxAge:   maxAge,
		Secure:   h.cookies.Secure,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
}
