package api

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/farhyn/catalog-platform/pkg/interfaces"
	pkgmodels "github.com/farhyn/catalog-platform/pkg/models"
	pkgutils "github.com/farhyn/catalog-platform/pkg/utils"
	"github.com/farhyn/catalog-platform/services/catalog-service/internal/adapters/logger"
	"github.com/farhyn/catalog-platform/services/catalog-service/internal/api/handlers"
	"github.com/farhyn/catalog-platform/services/catalog-service/internal/domain/models"
	"github.com/farhyn/catalog-platform/services/catalog-service/internal/domain/services"
	"github.com/farhyn/catalog-platform/services/catalog-service/internal/security"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type tokenAuth map[string]*interfaces.Principal

func (a tokenAuth) Authenticate(_ context.Context, token string) (*interfaces.Principal, error) {
	if p, ok := a[token]; ok {
		return p, nil
	}
	return nil, errors.New("unknown token")
}

type stubProducts struct{}

func (stubProducts) CreateShopifyProduct(context.Context, *services.Upload, string) (*models.Product, error) {
	return &models.Product{ID: 1}, nil
}

func (stubProducts) CreateAmazonProduct(context.Context, *services.Upload, string) (*models.Product, error) {
	return &models.Product{ID: 1}, nil
}

func (stubProducts) ListProducts(_ context.Context, _ pkgmodels.Marketplace, page *pkgutils.Pagination) ([]*models.Product, error) {
	page.SetTotal(0)
	return []*models.Product{}, nil
}

func (stubProducts) GetProduct(_ context.Context, id int64) (*models.Product, error) {
	return &models.Product{ID: id}, nil
}

func (stubProducts) DeleteProduct(context.Context, int64, string) error { return nil }

type stubMembers struct{}

func (stubMembers) Register(context.Context, services.RegisterInput) (*models.User, *security.TokenPair, error) {
	return &models.User{ID: 1}, &security.TokenPair{}, nil
}

func (stubMembers) Login(context.Context, string, string) (*models.User, *security.TokenPair, error) {
	return &models.User{ID: 1}, &security.TokenPair{Access: "a", Refresh: "r"}, nil
}

func (stubMembers) Refresh(context.Context, string) (*security.TokenPair, error) {
	return &security.TokenPair{}, nil
}

func (stubMembers) GetProfile(_ context.Context, userID string) (*models.Profile, error) {
	return &models.Profile{Username: userID}, nil
}

func (stubMembers) UpdateProfile(context.Context, *interfaces.Principal, string, services.ProfileInput) (*models.Profile, error) {
	return &models.Profile{}, nil
}

func (stubMembers) TokenTTL() (int, int) { return 60, 120 }

func newTestRouter(cfg RouterConfig) http.Handler {
	log := logger.NewNopLogger()
	h := Handlers{
		Products: handlers.NewProductHandler(stubProducts{}, 1<<20, log),
		Members:  handlers.NewMemberHandler(stubMembers{}, handlers.CookieConfig{}, 1<<20, log),
	}
	authPort := tokenAuth{"good": {UserID: "42"}}
	return SetupRouter(h, authPort, log, cfg)
}

func TestSetupRouter_Routes(t *testing.T) {
	router := newTestRouter(RouterConfig{MetricsEnabled: true})

	tests := []struct {
		name   string
		method string
		path   string
		token  string
		want   int
	}{
		{name: "health", method: http.MethodGet, path: "/health", want: http.StatusOK},
		{name: "health head", method: http.MethodHead, path: "/health", want: http.StatusOK},
		{name: "metrics", method: http.MethodGet, path: "/metrics", want: http.StatusOK},
		{name: "swagger", method: http.MethodGet, path: "/swagger/doc.json", want: http.StatusOK},
		{name: "login is public", method: http.MethodPost, path: "/api/login/", want: http.StatusBadRequest},
		{name: "list requires token", method: http.MethodGet, path: "/api/shopify-products/", want: http.StatusUnauthorized},
		{name: "bad token", method: http.MethodGet, path: "/api/shopify-products/", token: "bad", want: http.StatusUnauthorized},
		{name: "list", method: http.MethodGet, path: "/api/shopify-products/", token: "good", want: http.StatusOK},
		{name: "amazon list", method: http.MethodGet, path: "/api/amazon-products/", token: "good", want: http.StatusOK},
		{name: "detail", method: http.MethodGet, path: "/api/shopify-products/3/", token: "good", want: http.StatusOK},
		{name: "delete", method: http.MethodDelete, path: "/api/amazon-products/3/delete/", token: "good", want: http.StatusOK},
		{name: "profile", method: http.MethodGet, path: "/api/profile/", token: "good", want: http.StatusOK},
		{name: "logout", method: http.MethodPost, path: "/api/logout/", token: "good", want: http.StatusOK},
		{name: "sso disabled", method: http.MethodGet, path: "/api/sso/login/", want: http.StatusNotFound},
		{name: "wrong method", method: http.MethodPost, path: "/api/profile/", token: "good", want: http.StatusMethodNotAllowed},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(tt.method, tt.path, nil)
			if tt.token != "" {
				req.Header.Set("Authorization", "Bearer "+tt.token)
			}
			rec := httptest.NewRecorder()
			router.ServeHTTP(rec, req)
			assert.Equal(t, tt.want, rec.Code, rec.Body.String())
		})
	}
}

func TestSetupRouter_HealthCheckFailure(t *testing.T) {
	router := newTestRouter(RouterConfig{
		HealthCheck: func(context.Context) error { return errors.New("postgres down") },
	})

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))
	require.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.Contains(t, rec.Body.String(), "postgres down")

	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}
