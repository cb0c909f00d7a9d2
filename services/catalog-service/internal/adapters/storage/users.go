package storage

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/farhyn/catalog-platform/services/catalog-service/internal/domain/models"
	"github.com/farhyn/catalog-platform/services/catalog-service/internal/infrastructure/postgres"
	"github.com/farhyn/catalog-platform/services/catalog-service/internal/utils"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const (
	userColumns    = `id, email, first_name, last_name, password_hash, is_staff, is_active, created_at, updated_at`
	profileColumns = `id, user_id, bio, profile_picture, created_at, updated_at`
)

// UserStorage репозиторий пользователей и профилей
type UserStorage struct {
	storage
}

var _ postgres.UserRepository = (*UserStorage)(nil)

func NewUserStorage(pool *pgxpool.Pool) *UserStorage {
	return &UserStorage{storage{pool: pool}}
}

// CreateUser вставляет пользователя; email приводится к нижнему регистру
func (r *UserStorage) CreateUser(ctx context.Context, user *models.User) error {
	query := `
		INSERT INTO catalog.users (email, first_name, last_name, password_hash, is_staff)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, is_active, created_at, updated_at
	`

	user.Email = strings.ToLower(user.Email)
	err := r.getExecutor(ctx).QueryRow(ctx, query,
		user.Email, user.FirstName, user.LastName, user.PasswordHash, user.IsStaff,
	).Scan(&user.ID, &user.IsActive, &user.CreatedAt, &user.UpdatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return utils.ErrEmailTaken
		}
		return fmt.Errorf("failed to save user: %w", err)
	}
	return nil
}

func (r *UserStorage) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	query := `SELECT ` + userColumns + ` FROM catalog.users WHERE email = $1`
	return r.getUser(ctx, query, strings.ToLower(email))
}

func (r *UserStorage) GetUserByID(ctx context.Context, userID int64) (*models.User, error) {
	query := `SELECT ` + userColumns + ` FROM catalog.users WHERE id = $1`
	return r.getUser(ctx, query, userID)
}

func (r *UserStorage) getUser(ctx context.Context, query string, arg interface{}) (*models.User, error) {
	var u models.User
	err := r.getExecutor(ctx).QueryRow(ctx, query, arg).Scan(&u.ID, &u.Email, &u.FirstName, &u.LastName,
		&u.PasswordHash, &u.IsStaff, &u.IsActive, &u.CreatedAt, &u.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	return &u, nil
}

// CreateProfile создает пустой профиль пользователя
func (r *UserStorage) CreateProfile(ctx context.Context, profile *models.Profile) error {
	query := `
		INSERT INTO catalog.profiles (user_id, bio, profile_picture)
		VALUES ($1, $2, $3)
		RETURNING id, created_at, updated_at
	`

	err := r.getExecutor(ctx).QueryRow(ctx, query, profile.UserID, profile.Bio, profile.PictureKey).
		Scan(&profile.ID, &profile.CreatedAt, &profile.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to save profile: %w", err)
	}
	return nil
}

func (r *UserStorage) GetProfileByUserID(ctx context.Context, userID int64) (*models.Profile, error) {
	query := `SELECT ` + profileColumns + ` FROM catalog.profiles WHERE user_id = $1`

	profile, err := scanProfile(r.getExecutor(ctx).QueryRow(ctx, query, userID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get profile: %w", err)
	}
	return profile, nil
}

// UpdateProfile обновляет bio и/или картинку; nil-поля сохраняют текущее значение
func (r *UserStorage) UpdateProfile(ctx context.Context, userID int64, update models.ProfileUpdate) (*models.Profile, error) {
	query := `
		UPDATE catalog.profiles
		SET bio = COALESCE($2, bio),
		    profile_picture = COALESCE($3, profile_picture),
		    updated_at = now()
		WHERE user_id = $1
		RETURNING ` + profileColumns

	profile, err := scanProfile(r.getExecutor(ctx).QueryRow(ctx, query, userID, update.Bio, update.PictureKey))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to update profile: %w", err)
	}
	return profile, nil
}

func scanProfile(row pgx.Row) (*models.Profile, error) {
	var p models.Profile
	if err := row.Scan(&p.ID, &p.UserID, &p.Bio, &p.PictureKey, &p.CreatedAt, &p.UpdatedAt); err != nil {
		return nil, err
	}
	return &p, nil
}
