package user

import (
	"context"
	"errors"
	"strings"
	"unicode/utf8"

	"github.com/google/uuid"
	"github.com/samber/oops"

	"github.com/sudo-init-do/userhub/internal/apperr"
	"github.com/sudo-init-do/userhub/internal/password"
)

// Validator checks struct tags on a User before it is written.
type Validator interface {
	Validate(i any) error
}

// Store is the credential store. It owns the rule that a pending password is
// hashed on every write and that records without one are never rehashed.
type Store struct {
	repo     Repository
	hasher   password.Hasher
	validate Validator
}

func NewStore(repo Repository, hasher password.Hasher, validate Validator) *Store {
	return &Store{repo: repo, hasher: hasher, validate: validate}
}

// Create hashes the pending password, fills defaults and inserts the user.
func (s *Store) Create(ctx context.Context, u *User) error {
	if !u.PasswordChanged() {
		return apperr.Validation("Please add a password")
	}
	if u.ID == "" {
		u.ID = uuid.NewString()
	}
	if err := s.prepare(u); err != nil {
		return err
	}
	return s.repo.Create(ctx, u)
}

// Save persists changes to an existing user.
func (s *Store) Save(ctx context.Context, u *User) error {
	if err := s.prepare(u); err != nil {
		return err
	}
	return s.repo.Update(ctx, u)
}

func (s *Store) prepare(u *User) error {
	u.normalize()
	if err := s.validate.Validate(u); err != nil {
		return err
	}
	if !u.PasswordChanged() {
		return nil
	}

	plain := *u.pendingPassword
	if utf8.RuneCountInString(plain) < password.MinLength {
		return apperr.Validation("Password must be at least %d characters", password.MinLength)
	}
	if len(plain) > password.MaxLength {
		return apperr.Validation("Password must not be more than %d bytes", password.MaxLength)
	}
	digest, err := s.hasher.Hash(plain)
	if err != nil {
		return oops.With("operation", "hash password").Wrap(err)
	}
	u.PasswordHash = digest
	u.pendingPassword = nil
	return nil
}

// VerifyPassword reports whether plain matches the stored digest.
func (s *Store) VerifyPassword(u *User, plain string) (bool, error) {
	return s.hasher.Verify(plain, u.PasswordHash)
}

func (s *Store) GetByID(ctx context.Context, id string) (*User, error) {
	u, err := s.repo.GetByID(ctx, id)
	return u, notFound(err)
}

func (s *Store) GetByEmail(ctx context.Context, email string) (*User, error) {
	u, err := s.repo.GetByEmail(ctx, strings.TrimSpace(email))
	return u, notFound(err)
}

// Search excludes the requesting user from the matches.
func (s *Store) Search(ctx context.Context, query string, requester *User) ([]*User, error) {
	return s.repo.Search(ctx, query, requester.ID)
}

func notFound(err error) error {
	if errors.Is(err, ErrNotFound) {
		return apperr.New(apperr.CodeUserNotFound, "User not found")
	}
	return err
}
