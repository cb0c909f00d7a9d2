package services

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"unicode/utf8"

	"github.com/farhyn/catalog-platform/pkg/interfaces"
	"github.com/farhyn/catalog-platform/pkg/tx"
	"github.com/farhyn/catalog-platform/services/catalog-service/internal/adapters/objectstore"
	"github.com/farhyn/catalog-platform/services/catalog-service/internal/domain/models"
	"github.com/farhyn/catalog-platform/services/catalog-service/internal/infrastructure/postgres"
	"github.com/farhyn/catalog-platform/services/catalog-service/internal/security"
	"github.com/farhyn/catalog-platform/services/catalog-service/internal/utils"
)

const (
	maxBioLength      = 2000
	maxPasswordBytes  = 72
	defaultAvatarSize = 5 << 20
)

// AvatarExtensions допустимые расширения картинки профиля
var AvatarExtensions = []string{".jpg", ".jpeg", ".png", ".gif"}

// RegisterInput данные регистрации
type RegisterInput struct {
	Email           string `json:"email" validate:"required,max=254,strict_email"`
	FirstName       string `json:"first_name" validate:"required,max=30"`
	LastName        string `json:"last_name" validate:"required,max=30"`
	Password        string `json:"password" validate:"required,min=8"`
	ConfirmPassword string `json:"confirm_password" validate:"required,eqfield=Password"`
}

// ProfileInput изменения профиля из формы; nil-поля не меняются
type ProfileInput struct {
	Bio     *string
	Picture *Upload
}

// MemberService регистрация, вход и профили пользователей
type MemberService struct {
	users     postgres.UserRepository
	txManager tx.TxManager
	tokens    *security.JWTManager
	store     interfaces.ObjectStoragePort
	avatars   UploadPolicy
	logger    interfaces.LoggerPort
}

// NewMemberService создает сервис; avatars с нулевыми полями заменяется ограничениями по умолчанию
func NewMemberService(
	users postgres.UserRepository,
	txManager tx.TxManager,
	tokens *security.JWTManager,
	store interfaces.ObjectStoragePort,
	avatars UploadPolicy,
	logger interfaces.LoggerPort,
) *MemberService {
	if avatars.MaxSize == 0 {
		avatars.MaxSize = defaultAvatarSize
	}
	if len(avatars.AllowedExtensions) == 0 {
		avatars.AllowedExtensions = AvatarExtensions
	}
	return &MemberService{
		users:     users,
		txManager: txManager,
		tokens:    tokens,
		store:     store,
		avatars:   avatars,
		logger:    logger,
	}
}

// Register создает пользователя и пустой профиль в одной транзакции
func (s *MemberService) Register(ctx context.Context, in RegisterInput) (*models.User, *security.TokenPair, error) {
	verr := &utils.ValidationError{}
	if err := utils.ValidateStruct(in); err != nil {
		if !errors.As(err, &verr) {
			return nil, nil, err
		}
	}
	if len(in.Password) > maxPasswordBytes {
		verr.Add("password", fmt.Sprintf("Ensure this field has no more than %d characters.", maxPasswordBytes))
	}
	if err := verr.OrNil(); err != nil {
		return nil, nil, err
	}

	hash, err := security.HashPassword(in.Password)
	if err != nil {
		return nil, nil, err
	}

	user := &models.User{
		Email:        in.Email,
		FirstName:    in.FirstName,
		LastName:     in.LastName,
		PasswordHash: hash,
	}
	err = s.txManager.Do(ctx, func(ctx context.Context) error {
		if err := s.users.CreateUser(ctx, user); err != nil {
			return err
		}
		return s.users.CreateProfile(ctx, &models.Profile{UserID: user.ID})
	})
	if err != nil {
		if errors.Is(err, utils.ErrEmailTaken) {
			return nil, nil, utils.NewValidationError("email", "A user with this email already exists.")
		}
		return nil, nil, fmt.Errorf("failed to register user: %w", err)
	}

	pair, err := s.tokens.GeneratePair(user)
	if err != nil {
		return nil, nil, err
	}

	s.logger.InfoWithContext(ctx, "Пользователь зарегистрирован", interfaces.LogField{Key: "user_id", Value: user.ID})
	return user, pair, nil
}

// Login проверяет email и пароль; неизвестный пользователь и неверный пароль неразличимы
func (s *MemberService) Login(ctx context.Context, email, password string) (*models.User, *security.TokenPair, error) {
	user, err := s.users.GetUserByEmail(ctx, email)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to get user: %w", err)
	}
	if user == nil || !user.IsActive {
		return nil, nil, utils.ErrInvalidCredentials
	}

	ok, err := security.CheckPassword(user.PasswordHash, password)
	if err != nil {
		s.logger.WarnWithContext(ctx, "Некорректный хэш пароля",
			interfaces.LogField{Key: "user_id", Value: user.ID},
			interfaces.LogField{Key: "error", Value: err.Error()},
		)
		return nil, nil, utils.ErrInvalidCredentials
	}
	if !ok {
		return nil, nil, utils.ErrInvalidCredentials
	}

	pair, err := s.tokens.GeneratePair(user)
	if err != nil {
		return nil, nil, err
	}
	return user, pair, nil
}

// Refresh выпускает новую пару по refresh токену
func (s *MemberService) Refresh(ctx context.Context, refreshToken string) (*security.TokenPair, error) {
	claims, err := s.tokens.Validate(refreshToken, security.RefreshToken)
	if err != nil {
		return nil, utils.ErrInvalidToken
	}

	userID, err := strconv.ParseInt(claims.UserID, 10, 64)
	if err != nil {
		return nil, utils.ErrInvalidToken
	}
	user, err := s.users.GetUserByID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	if user == nil || !user.IsActive {
		return nil, utils.ErrInvalidToken
	}
	return s.tokens.GeneratePair(user)
}

// GetProfile профиль пользователя userID
func (s *MemberService) GetProfile(ctx context.Context, userID string) (*models.Profile, error) {
	id, err := strconv.ParseInt(userID, 10, 64)
	if err != nil {
		return nil, utils.ErrProfileNotFound
	}

	profile, err := s.users.GetProfileByUserID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get profile: %w", err)
	}
	if profile == nil {
		return nil, utils.ErrProfileNotFound
	}
	if err := s.resolveOwner(ctx, profile); err != nil {
		return nil, err
	}
	s.resolvePicture(profile)
	return profile, nil
}

// UpdateProfile меняет профиль targetUserID; править может владелец или staff
func (s *MemberService) UpdateProfile(ctx context.Context, caller *interfaces.Principal, targetUserID string, in ProfileInput) (*models.Profile, error) {
	if caller == nil {
		return nil, utils.ErrForbidden
	}
	if caller.UserID != targetUserID && !caller.Staff {
		return nil, utils.ErrForbidden
	}

	profile, err := s.GetProfile(ctx, targetUserID)
	if err != nil {
		return nil, err
	}

	verr := &utils.ValidationError{}
	if in.Bio != nil && utf8.RuneCountInString(*in.Bio) > maxBioLength {
		verr.Add("bio", fmt.Sprintf("Ensure this field has no more than %d characters.", maxBioLength))
	}
	if in.Picture != nil {
		var pictureErr *utils.ValidationError
		if err := s.avatars.Validate("profile_picture", in.Picture); errors.As(err, &pictureErr) {
			for _, m := range pictureErr.Fields["profile_picture"] {
				verr.Add("profile_picture", m)
			}
		} else if err != nil {
			return nil, err
		}
	}
	if err := verr.OrNil(); err != nil {
		return nil, err
	}

	update := models.ProfileUpdate{Bio: in.Bio}
	if in.Picture != nil {
		key := objectstore.UploadKey(objectstore.ProfilePicPrefix, in.Picture.Filename)
		data, err := readUpload(in.Picture)
		if err != nil {
			return nil, err
		}
		if err := objectstore.Replace(ctx, s.store, s.logger, profile.PictureKey, key, data,
			contentTypeOr(in.Picture, "application/octet-stream")); err != nil {
			return nil, fmt.Errorf("failed to store profile picture: %w", err)
		}
		update.PictureKey = &key
	}

	updated, err := s.users.UpdateProfile(ctx, profile.UserID, update)
	if err != nil {
		return nil, fmt.Errorf("failed to update profile: %w", err)
	}
	if updated == nil {
		return nil, utils.ErrProfileNotFound
	}
	updated.Username, updated.FirstName, updated.LastName = profile.Username, profile.FirstName, profile.LastName
	s.resolvePicture(updated)
	return updated, nil
}

// TokenTTL сроки жизни access и refresh токенов в секундах, для cookie
func (s *MemberService) TokenTTL() (access, refresh int) {
	return int(s.tokens.AccessTTL().Seconds()), int(s.tokens.RefreshTTL().Seconds())
}

// resolveOwner заполняет поля владельца; логином служит email
func (s *MemberService) resolveOwner(ctx context.Context, p *models.Profile) error {
	user, err := s.users.GetUserByID(ctx, p.UserID)
	if err != nil {
		return fmt.Errorf("failed to get profile owner: %w", err)
	}
	if user == nil {
		return utils.ErrProfileNotFound
	}
	p.Username, p.FirstName, p.LastName = user.Email, user.FirstName, user.LastName
	return nil
}

func (s *MemberService) resolvePicture(p *models.Profile) {
	if p.PictureKey != nil && *p.PictureKey != "" {
		u := s.store.URL(*p.PictureKey)
		p.PictureURL = &u
	}
}
