package postgres

import (
	"context"

	"github.com/farhyn/catalog-platform/services/catalog-service/internal/domain/models"
)

// UserRepository хранилище пользователей и профилей
type UserRepository interface {
	// CreateUser возвращает utils.ErrEmailTaken при нарушении уникальности email
	CreateUser(ctx context.Context, user *models.User) error
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)
	GetUserByID(ctx context.Context, userID int64) (*models.User, error)

	CreateProfile(ctx context.Context, profile *models.Profile) error
	GetProfileByUserID(ctx context.Context, userID int64) (*models.Profile, error)
	// UpdateProfile применяет непустые поля update и возвращает обновленный профиль
	UpdateProfile(ctx context.Context, userID int64, update models.ProfileUpdate) (*models.Profile, error)
}
