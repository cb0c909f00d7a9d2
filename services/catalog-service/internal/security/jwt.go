package security

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/farhyn/catalog-platform/pkg/interfaces"
	"github.com/farhyn/catalog-platform/services/catalog-service/internal/domain/models"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

var (
	ErrInvalidToken = errors.New("invalid token")
	ErrExpiredToken = errors.New("token expired")
)

// Типы токенов в claim token_type
const (
	AccessToken  = "access"
	RefreshToken = "refresh"
)

// JWTManager выпускает и проверяет пары access/refresh токенов (HS256)
type JWTManager struct {
	secret     []byte
	accessTTL  time.Duration
	refreshTTL time.Duration
	issuer     string
	now        func() time.Time
}

type Claims struct {
	jwt.RegisteredClaims
	UserID    string `json:"user_id"`
	Email     string `json:"email"`
	Staff     bool   `json:"is_staff"`
	TokenType string `json:"token_type"`
}

// TokenPair пара токенов в формате ответа API
type TokenPair struct {
	Refresh string `json:"refresh"`
	Access  string `json:"access"`
}

func NewJWTManager(secret string, accessTTL, refreshTTL time.Duration, issuer string) (*JWTManager, error) {
	if len(secret) < 16 {
		return nil, fmt.Errorf("jwt secret must be at least 16 bytes")
	}
	return &JWTManager{
		secret:     []byte(secret),
		accessTTL:  accessTTL,
		refreshTTL: refreshTTL,
		issuer:     issuer,
		now:        time.Now,
	}, nil
}

// AccessTTL срок жизни access токена
func (m *JWTManager) AccessTTL() time.Duration { return m.accessTTL }

// RefreshTTL срок жизни refresh токена
func (m *JWTManager) RefreshTTL() time.Duration { return m.refreshTTL }

// GeneratePair выпускает access и refresh токены пользователя
func (m *JWTManager) GeneratePair(user *models.User) (*TokenPair, error) {
	access, err := m.generate(user, AccessToken, m.accessTTL)
	if err != nil {
		return nil, err
	}
	refresh, err := m.generate(user, RefreshToken, m.refreshTTL)
	if err != nil {
		return nil, err
	}
	return &TokenPair{Refresh: refresh, Access: access}, nil
}

func (m *JWTManager) generate(user *models.User, tokenType string, ttl time.Duration) (string, error) {
	now := m.now()
	userID := strconv.FormatInt(user.ID, 10)
	claims := Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.New().String(),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			Issuer:    m.issuer,
			Subject:   userID,
		},
		UserID:    userID,
		Email:     user.Email,
		Staff:     user.IsStaff,
		TokenType: tokenType,
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(m.secret)
	if err != nil {
		return "", fmt.Errorf("failed to sign %s token: %w", tokenType, err)
	}
	return signed, nil
}

// Validate проверяет подпись, срок и тип токена
func (m *JWTManager) Validate(tokenString, tokenType string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return m.secret, nil
	}, jwt.WithIssuer(m.issuer), jwt.WithTimeFunc(m.now))
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrExpiredToken
		}
		return nil, ErrInvalidToken
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid || claims.TokenType != tokenType {
		return nil, ErrInvalidToken
	}
	return claims, nil
}

// Authenticate реализует interfaces.AuthPort для access токенов
func (m *JWTManager) Authenticate(_ context.Context, token string) (*interfaces.Principal, error) {
	claims, err := m.Validate(token, AccessToken)
	if err != nil {
		return nil, err
	}
	p := &interfaces.Principal{UserID: claims.UserID, Email: claims.Email, Staff: claims.Staff}
	if claims.Staff {
		p.Roles = []string{"staff"}
	}
	return p, nil
}
