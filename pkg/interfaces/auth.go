package interfaces

import (
	"context"
)

// Principal аутентифицированный пользователь запроса
type Principal struct {
	UserID string
	Email  string
	Roles  []string
	Staff  bool
}

// HasRole проверяет наличие роли у пользователя
func (p *Principal) HasRole(role string) bool {
	for _, r := range p.Roles {
		if r == role {
			return true
		}
	}
	return false
}

// AuthPort проверяет токен доступа.
// Реализации: локальный JWT (HS256) и Keycloak (OIDC).
type AuthPort interface {
	Authenticate(ctx context.Context, token string) (*Principal, error)
}
