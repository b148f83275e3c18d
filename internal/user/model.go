package user

import (
	"strings"
	"time"
)

const (
	DefaultProfilePic = "https://i.ibb.co/4pDNDk1/avatar.png"
	DefaultBio        = "bio"
	MaxBioLength      = 250
)

type User struct {
	ID           string    `json:"_id"`
	Name         string    `json:"name" validate:"required"`
	Email        string    `json:"email" validate:"required,email"`
	PasswordHash string    `json:"-"` // never return
	ProfilePic   string    `json:"profilePic" validate:"required"`
	Bio          string    `json:"bio" validate:"max=250"`
	Friends      []string  `json:"-"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`

	// plaintext awaiting hashing by Store on the next write
	pendingPassword *string
}

// SetPassword marks the password as changed. The Store hashes it before the
// record is persisted; the plaintext is never written.
func (u *User) SetPassword(plain string) {
	u.pendingPassword = &plain
}

// PasswordChanged reports whether SetPassword was called since the last write.
func (u *User) PasswordChanged() bool {
	return u.pendingPassword != nil
}

func (u *User) normalize() {
	u.Name = strings.TrimSpace(u.Name)
	u.Email = strings.TrimSpace(u.Email)
	if u.ProfilePic == "" {
		u.ProfilePic = DefaultProfilePic
	}
	if u.Bio == "" {
		u.Bio = DefaultBio
	}
	if u.Friends == nil {
		u.Friends = []string{}
	}
}

// Profile is the public view of a user returned by the API.
type Profile struct {
	ID         string `json:"_id"`
	Name       string `json:"name"`
	Email      string `json:"email"`
	ProfilePic string `json:"profilePic"`
	Bio        string `json:"bio"`
}

func (u *User) Profile() Profile {
	return Profile{
		ID:         u.ID,
		Name:       u.Name,
		Email:      u.Email,
		ProfilePic: u.ProfilePic,
		Bio:        u.Bio,
	}
}

// SearchResult is the trimmed view returned by user search.
type SearchResult struct {
	ID         string `json:"_id"`
	Name       string `json:"name"`
	Email      string `json:"email"`
	ProfilePic string `json:"profilePic"`
}

func (u *User) SearchResult() SearchResult {
	return SearchResult{ID: u.ID, Name: u.Name, Email: u.Email, ProfilePic: u.ProfilePic}
}
