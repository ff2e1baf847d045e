package types

import (
	"time"

	"github.com/google/uuid"
)

// User is the stored account. PasswordHash never leaves the server.
type User struct {
	ID           uuid.UUID `json:"_id"`
	Name         string    `json:"name"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	Bio          string    `json:"bio"`
	ImageURL     string    `json:"imageUrl"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

// UserView is the sanitized user returned by every read and update.
type UserView struct {
	ID       uuid.UUID `json:"_id"`
	Name     string    `json:"name"`
	Email    string    `json:"email"`
	Bio      string    `json:"bio"`
	ImageURL string    `json:"imageUrl"`
}

func (u *User) View() *UserView {
	return &UserView{
		ID:       u.ID,
		Name:     u.Name,
		Email:    u.Email,
		Bio:      u.Bio,
		ImageURL: u.ImageURL,
	}
}

// UpdateProfileParams carries an optional profile edit.
// A nil pointer means the field was not sent.
type UpdateProfileParams struct {
	Name  *string
	Bio   *string
	Image *Blob
}
