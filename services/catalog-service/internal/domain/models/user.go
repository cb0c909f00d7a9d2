package models

import "time"

// User учетная запись; email служит и логином
type User struct {
	ID           int64     `json:"id"`
	Email        string    `json:"email"`
	FirstName    string    `json:"first_name"`
	LastName     string    `json:"last_name"`
	PasswordHash string    `json:"-"`
	IsStaff      bool      `json:"-"`
	IsActive     bool      `json:"-"`
	CreatedAt    time.Time `json:"-"`
	UpdatedAt    time.Time `json:"-"`
}

// Profile профиль пользователя, создается вместе с ним
type Profile struct {
	ID         int64     `json:"id"`
	UserID     int64     `json:"user"`
	Username   string    `json:"username"`
	FirstName  string    `json:"first_name"`
	LastName   string    `json:"last_name"`
	Bio        string    `json:"bio"`
	PictureKey *string   `json:"-"`
	PictureURL *string   `json:"profile_picture"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// ProfileUpdate изменения профиля; nil-поля не трогаются
type ProfileUpdate struct {
	Bio        *string
	PictureKey *string
}
