package handlers

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/farhyn/catalog-platform/pkg/auth"
	"github.com/farhyn/catalog-platform/pkg/interfaces"
	"github.com/farhyn/catalog-platform/services/catalog-service/internal/adapters/logger"
	"github.com/farhyn/catalog-platform/services/catalog-service/internal/domain/models"
	"github.com/farhyn/catalog-platform/services/catalog-service/internal/security"
	"github.com/farhyn/catalog-platform/services/catalog-service/internal/utils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newMemberFixture() (*MemberHandler, *fakeMemberService) {
	svc := &fakeMemberService{
		user:   &models.User{ID: 42, Email: "ann@example.com", FirstName: "Ann", LastName: "Lee"},
		tokens: &security.TokenPair{Access: "acc", Refresh: "ref"},
		profile: &models.Profile{
			ID: 1, UserID: 42, Username: "ann@example.com", FirstName: "Ann", LastName: "Lee", Bio: "hello",
		},
	}
	return NewMemberHandler(svc, CookieConfig{Domain: "example.com", Secure: true}, 1<<20, logger.NewNopLogger()), svc
}

func withPrincipal(r *http.Request, p *interfaces.Principal) *http.Request {
	return r.WithContext(auth.WithPrincipal(r.Context(), p))
}

func cookieByName(rec *httptest.ResponseRecorder, name string) *http.Cookie {
	for _, c := range rec.Result().Cookies() {
		if c.Name == name {
			return c
		}
	}
	return nil
}

func TestMemberHandler_Register(t *testing.T) {
	h, svc := newMemberFixture()

	req := httptest.NewRequest(http.MethodPost, "/api/register/", strings.NewReader(
		`{"email":"ann@example.com","first_name":"Ann","last_name":"Lee","password":"secret123","confirm_password":"secret123"}`))
	rec := httptest.NewRecorder()
	h.Register(rec, req)

	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	assert.JSONEq(t, `{
		"status": "success",
		"message": "User registered successfully",
		"tokens": {"access": "acc", "refresh": "ref"},
		"user": {"id": 42, "email": "ann@example.com", "first_name": "Ann", "last_name": "Lee"}
	}`, rec.Body.String())
	assert.Equal(t, "secret123", svc.registered.ConfirmPassword)

	svc.err = utils.NewValidationError("email", "A user with this email already exists.")
	rec = httptest.NewRecorder()
	h.Register(rec, httptest.NewRequest(http.MethodPost, "/api/register/", strings.NewReader(`{"email":"ann@example.com"}`)))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.JSONEq(t, `{"email":["A user with this email already exists."]}`, rec.Body.String())

	rec = httptest.NewRecorder()
	h.Register(rec, httptest.NewRequest(http.MethodPost, "/api/register/", strings.NewReader(`{bad json`)))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestMemberHandler_Login(t *testing.T) {
	h, svc := newMemberFixture()

	rec := httptest.NewRecorder()
	h.Login(rec, httptest.NewRequest(http.MethodPost, "/api/login/", strings.NewReader(`{"email":"ann@example.com","password":"secret123"}`)))
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	body := decodeBody(t, rec)
	assert.Equal(t, "Login successful", body["message"])
	assert.Nil(t, body["tokens"])

	access := cookieByName(rec, auth.AccessTokenCookie)
	require.NotNil(t, access)
	assert.Equal(t, "acc", access.Value)
	assert.True(t, access.HttpOnly)
	assert.True(t, access.Secure)
	assert.Equal(t, 3600, access.MaxAge)
	refresh := cookieByName(rec, RefreshTokenCookie)
	require.NotNil(t, refresh)
	assert.Equal(t, "ref", refresh.Value)
	assert.Equal(t, 14*24*3600, refresh.MaxAge)

	rec = httptest.NewRecorder()
	h.Login(rec, httptest.NewRequest(http.MethodPost, "/api/login/", strings.NewReader(`{"email":"ann@example.com"}`)))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "Please provide both email and password", decodeBody(t, rec)["error"])

	svc.err = utils.ErrInvalidCredentials
	rec = httptest.NewRecorder()
	h.Login(rec, httptest.NewRequest(http.MethodPost, "/api/login/", strings.NewReader(`{"email":"ann@example.com","password":"nope"}`)))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, "Invalid credentials", decodeBody(t, rec)["error"])
	assert.Nil(t, cookieByName(rec, auth.AccessTokenCookie))
}

func TestMemberHandler_Refresh(t *testing.T) {
	h, svc := newMemberFixture()

	rec := httptest.NewRecorder()
	h.Refresh(rec, httptest.NewRequest(http.MethodPost, "/api/token/refresh/", strings.NewReader(`{"refresh":"from-body"}`)))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "from-body", svc.refreshWith)
	assert.JSONEq(t, `{"access":"acc","refresh":"ref"}`, rec.Body.String())

	req := httptest.NewRequest(http.MethodPost, "/api/token/refresh/", nil)
	req.AddCookie(&http.Cookie{Name: RefreshTokenCookie, Value: "from-cookie"})
	rec = httptest.NewRecorder()
	h.Refresh(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "from-cookie", svc.refreshWith)

	rec = httptest.NewRecorder()
	h.Refresh(rec, httptest.NewRequest(http.MethodPost, "/api/token/refresh/", nil))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, decodeBody(t, rec), "refresh")

	svc.err = utils.ErrInvalidToken
	rec = httptest.NewRecorder()
	h.Refresh(rec, httptest.NewRequest(http.MethodPost, "/api/token/refresh/", strings.NewReader(`{"refresh":"stale"}`)))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, "token_not_valid", decodeBody(t, rec)["code"])
}

func TestMemberHandler_Logout(t *testing.T) {
	h, _ := newMemberFixture()

	rec := httptest.NewRecorder()
	h.Logout(rec, httptest.NewRequest(http.MethodPost, "/api/logout/", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	for _, name := range []string{auth.AccessTokenCookie, RefreshTokenCookie} {
		c := cookieByName(rec, name)
		require.NotNil(t, c, name)
		assert.Empty(t, c.Value)
		assert.Negative(t, c.MaxAge)
	}
}

func TestMemberHandler_GetProfile(t *testing.T) {
	h, svc := newMemberFixture()

	req := withPrincipal(httptest.NewRequest(http.MethodGet, "/api/profile/", nil), &interfaces.Principal{UserID: "42"})
	rec := httptest.NewRecorder()
	h.GetProfile(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "42", svc.target)
	body := decodeBody(t, rec)
	assert.Equal(t, "ann@example.com", body["username"])
	assert.Equal(t, "hello", body["bio"])
	assert.Nil(t, body["profile_picture"])

	svc.err = utils.ErrProfileNotFound
	rec = httptest.NewRecorder()
	h.GetProfile(rec, req)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "Profile not found", decodeBody(t, rec)["error"])
}

func TestMemberHandler_UpdateProfile(t *testing.T) {
	caller := &interfaces.Principal{UserID: "42"}

	t.Run("multipart with picture", func(t *testing.T) {
		h, svc := newMemberFixture()
		body, contentType := multipartBody(t, "profile_picture", "me.png", []byte("avatar"), map[string]string{"bio": "new bio"})
		req := httptest.NewRequest(http.MethodPut, "/api/profile/update/", body)
		req.Header.Set("Content-Type", contentType)
		rec := httptest.NewRecorder()
		h.UpdateProfile(rec, withPrincipal(req, caller))

		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
		assert.Equal(t, "new bio", svc.updateBio)
		assert.Equal(t, []byte("avatar"), svc.updateFile)
		assert.Equal(t, "me.png", svc.updateIn.Picture.Filename)
		assert.Equal(t, "42", svc.target)
		assert.Same(t, caller, svc.caller)
	})

	t.Run("json bio only", func(t *testing.T) {
		h, svc := newMemberFixture()
		req := httptest.NewRequest(http.MethodPut, "/api/profile/update/", strings.NewReader(`{"bio":"json bio"}`))
		req.Header.Set("Content-Type", "application/json; charset=utf-8")
		rec := httptest.NewRecorder()
		h.UpdateProfile(rec, withPrincipal(req, caller))

		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
		assert.Equal(t, "json bio", svc.updateBio)
		assert.Nil(t, svc.updateIn.Picture)
	})

	t.Run("staff targets another user", func(t *testing.T) {
		h, svc := newMemberFixture()
		req := httptest.NewRequest(http.MethodPut, "/api/profile/update/?user=7", strings.NewReader(`{"bio":"x"}`))
		req.Header.Set("Content-Type", "application/json")
		rec := httptest.NewRecorder()
		h.UpdateProfile(rec, withPrincipal(req, &interfaces.Principal{UserID: "1", Staff: true}))

		require.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "7", svc.target)
	})

	t.Run("forbidden", func(t *testing.T) {
		h, svc := newMemberFixture()
		svc.err = utils.ErrForbidden
		req := httptest.NewRequest(http.MethodPut, "/api/profile/update/?user=7", strings.NewReader(`{"bio":"x"}`))
		req.Header.Set("Content-Type", "application/json")
		rec := httptest.NewRecorder()
		h.UpdateProfile(rec, withPrincipal(req, caller))

		assert.Equal(t, http.StatusForbidden, rec.Code)
		assert.Equal(t, "You do not have permission to edit this profile", decodeBody(t, rec)["detail"])
	})

	t.Run("validation", func(t *testing.T) {
		h, svc := newMemberFixture()
		svc.err = utils.NewValidationError("bio", "Ensure this field has no more than 2000 characters.")
		req := httptest.NewRequest(http.MethodPut, "/api/profile/update/", strings.NewReader(`{"bio":"long"}`))
		req.Header.Set("Content-Type", "application/json")
		rec := httptest.NewRecorder()
		h.UpdateProfile(rec, withPrincipal(req, caller))

		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Contains(t, decodeBody(t, rec), "bio")
	})
}
