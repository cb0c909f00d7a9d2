package auth

import (
	"context"
	"errors"

	"github.com/farhyn/catalog-platform/pkg/interfaces"
)

var ErrNoAuthenticators = errors.New("no authenticators configured")

// ChainAuth пробует порты по очереди и возвращает первого распознанного пользователя
type ChainAuth []interfaces.AuthPort

func (c ChainAuth) Authenticate(ctx context.Context, token string) (*interfaces.Principal, error) {
	err := ErrNoAuthenticators
	for _, port := range c {
		if port == nil {
			continue
		}
		var p *interfaces.Principal
		if p, err = port.Authenticate(ctx, token); err == nil {
			return p, nil
		}
	}
	return nil, err
}
