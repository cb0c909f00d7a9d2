package auth

import (
	"context"
	"fmt"
	"time"

	"github.com/coreos/go-oidc/v3/oidc"
	"github.com/farhyn/catalog-platform/pkg/interfaces"
	"github.com/patrickmn/go-cache"
	"golang.org/x/oauth2"
)

// StaffRole роль Keycloak, дающая права staff
const StaffRole = "catalog-staff"

// KeycloakConfig конфигурация для Keycloak
type KeycloakConfig struct {
	ServerURL    string
	Realm        string
	ClientID     string
	ClientSecret string
	RedirectURL  string
}

// KeycloakClaims claims из токена Keycloak
type KeycloakClaims struct {
	UserID      string `json:"sub"`
	Username    string `json:"preferred_username"`
	Email       string `json:"email"`
	RealmAccess struct {
		Roles []string `json:"roles"`
	} `json:"realm_access"`
	ResourceAccess map[string]struct {
		Roles []string `json:"roles"`
	} `json:"resource_access"`
}

// tokenVerifier выделен для подмены в тестах
type tokenVerifier interface {
	Verify(ctx context.Context, rawIDToken string) (*oidc.IDToken, error)
}

// KeycloakClient проверяет токены Keycloak и реализует interfaces.AuthPort
type KeycloakClient struct {
	verifier     tokenVerifier
	oauth2Config *oauth2.Config
	tokenCache   *cache.Cache
	clientID     string
}

// NewKeycloakClient создает клиент, загружая OIDC discovery документ realm'а
func NewKeycloakClient(ctx context.Context, cfg KeycloakConfig) (*KeycloakClient, error) {
	providerURL := fmt.Sprintf("%s/realms/%s", cfg.ServerURL, cfg.Realm)

	provider, err := oidc.NewProvider(ctx, providerURL)
	if err != nil {
		return nil, fmt.Errorf("failed to create OIDC provider: %w", err)
	}

	return &KeycloakClient{
		verifier: provider.Verifier(&oidc.Config{ClientID: cfg.ClientID, SkipIssuerCheck: true}),
		oauth2Config: &oauth2.Config{
			ClientID:     cfg.ClientID,
			ClientSecret: cfg.ClientSecret,
			RedirectURL:  cfg.RedirectURL,
			Endpoint:     provider.Endpoint(),
			Scopes:       []string{oidc.ScopeOpenID, "profile", "email"},
		},
		tokenCache: cache.New(5*time.Minute, 10*time.Minute),
		clientID:   cfg.ClientID,
	}, nil
}

// ValidateToken проверяет токен; успешные проверки кэшируются до истечения токена
func (k *KeycloakClient) ValidateToken(ctx context.Context, tokenString string) (*KeycloakClaims, error) {
	if cached, found := k.tokenCache.Get(tokenString); found {
		return cached.(*KeycloakClaims), nil
	}

	idToken, err := k.verifier.Verify(ctx, tokenString)
	if err != nil {
		return nil, fmt.Errorf("failed to verify token: %w", err)
	}

	var claims KeycloakClaims
	if err := idToken.Claims(&claims); err != nil {
		return nil, fmt.Errorf("failed to decode claims: %w", err)
	}

	if ttl := time.Until(idToken.Expiry); ttl > 0 {
		k.tokenCache.Set(tokenString, &claims, ttl)
	}
	return &claims, nil
}

// Authenticate реализует interfaces.AuthPort
func (k *KeycloakClient) Authenticate(ctx context.Context, token string) (*interfaces.Principal, error) {
	claims, err := k.ValidateToken(ctx, token)
	if err != nil {
		return nil, err
	}
	return k.principal(claims), nil
}

func (k *KeycloakClient) principal(claims *KeycloakClaims) *interfaces.Principal {
	roles := append([]string{}, claims.RealmAccess.Roles...)
	if client, ok := claims.ResourceAccess[k.clientID]; ok {
		roles = append(roles, client.Roles...)
	}
	p := &interfaces.Principal{
		UserID: claims.UserID,
		Email:  claims.Email,
		Roles:  roles,
	}
	p.Staff = p.HasRole(StaffRole)
	return p
}

// AuthCodeURL адрес страницы входа Keycloak
func (k *KeycloakClient) AuthCodeURL(state string) string {
	return k.oauth2Config.AuthCodeURL(state)
}

// Exchange обменивает код авторизации на id_token и срок его действия
func (k *KeycloakClient) Exchange(ctx context.Context, code string) (string, time.Time, error) {
	token, err := k.oauth2Config.Exchange(ctx, code)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("failed to exchange code: %w", err)
	}
	rawIDToken, ok := token.Extra("id_token").(string)
	if !ok || rawIDToken == "" {
		return "", time.Time{}, fmt.Errorf("id_token missing in token response")
	}
	if _, err := k.ValidateToken(ctx, rawIDToken); err != nil {
		return "", time.Time{}, err
	}
	return rawIDToken, token.Expiry, nil
}
