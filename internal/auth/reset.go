package auth

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"io"
	"time"

	"github.com/google/uuid"
	"github.com/samber/oops"

	"github.com/sudo-init-do/userhub/internal/apperr"
	"github.com/sudo-init-do/userhub/internal/user"
)

const (
	// DefaultResetTokenTTL is how long a reset link stays usable.
	DefaultResetTokenTTL = 30 * time.Minute
	// ResetTokenBytes is the number of random bytes in a reset token.
	ResetTokenBytes = 32
)

// ErrResetNotFound is returned when no live reset token matches.
var ErrResetNotFound = errors.New("reset token not found")

// ResetToken is a stored reset request. Only the hash of the plaintext is kept.
type ResetToken struct {
	ID        string
	UserID    string
	TokenHash string
	CreatedAt time.Time
	ExpiresAt time.Time
}

// ResetRepository manages reset token persistence.
type ResetRepository interface {
	// Create stores a new reset token.
	Create(ctx context.Context, token *ResetToken) error

	// FindActive returns the token with tokenHash that expires after now, or
	// ErrResetNotFound.
	FindActive(ctx context.Context, tokenHash string, now time.Time) (*ResetToken, error)

	// Delete removes a single token.
	Delete(ctx context.Context, id string) error

	// DeleteByUser removes every token for a user. Deleting nothing is not an error.
	DeleteByUser(ctx context.Context, userID string) error

	// DeleteExpired removes tokens that expired before now and returns the count.
	DeleteExpired(ctx context.Context, now time.Time) (int64, error)
}

// ResetOptions configure a ResetService.
type ResetOptions struct {
	TTL time.Duration
	// SingleUse deletes a token once it has been redeemed. When false a token
	// can be redeemed again until it expires.
	SingleUse bool
}

// ResetService issues and redeems password reset tokens.
type ResetService struct {
	repo      ResetRepository
	users     *user.Store
	ttl       time.Duration
	singleUse bool
	rand      io.Reader
	now       func() time.Time
}

func NewResetService(repo ResetRepository, users *user.Store, opts ResetOptions) *ResetService {
	ttl := opts.TTL
	if ttl <= 0 {
		ttl = DefaultResetTokenTTL
	}
	return &ResetService{
		repo:      repo,
		users:     users,
		ttl:       ttl,
		singleUse: opts.SingleUse,
		rand:      rand.Reader,
		now:       time.Now,
	}
}

// TTL returns how long issued tokens stay valid.
func (s *ResetService) TTL() time.Duration {
	return s.ttl
}

// Issue replaces any existing token for u and returns the new plaintext.
// The plaintext is hex(32 random bytes) followed by the user id.
func (s *ResetService) Issue(ctx context.Context, u *user.User) (string, error) {
	if err := s.repo.DeleteByUser(ctx, u.ID); err != nil {
		return "", oops.With("operation", "delete previous reset tokens", "user_id", u.ID).Wrap(err)
	}

	raw := make([]byte, ResetTokenBytes)
	if _, err := io.ReadFull(s.rand, raw); err != nil {
		return "", oops.With("operation", "generate reset token").Wrap(err)
	}
	plaintext := hex.EncodeToString(raw) + u.ID

	now := s.now()
	token := &ResetToken{
		ID:        uuid.NewString(),
		UserID:    u.ID,
		TokenHash: HashResetToken(plaintext),
		CreatedAt: now,
		ExpiresAt: now.Add(s.ttl),
	}
	if err := s.repo.Create(ctx, token); err != nil {
		return "", oops.With("operation", "store reset token", "user_id", u.ID).Wrap(err)
	}
	return plaintext, nil
}

// Redeem sets newPassword on the user named by a live token and returns the
// updated user.
func (s *ResetService) Redeem(ctx context.Context, plaintext, newPassword string) (*user.User, error) {
	token, err := s.repo.FindActive(ctx, HashResetToken(plaintext), s.now())
	if err != nil {
		if errors.Is(err, ErrResetNotFound) {
			return nil, apperr.New(apperr.CodeInvalidResetToken, "Invalid or Expired Token")
		}
		return nil, oops.With("operation", "find reset token").Wrap(err)
	}

	u, err := s.users.GetByID(ctx, token.UserID)
	if err != nil {
		return nil, err
	}
	u.SetPassword(newPassword)
	if err := s.users.Save(ctx, u); err != nil {
		return nil, err
	}

	if s.singleUse {
		if err := s.repo.Delete(ctx, token.ID); err != nil && !errors.Is(err, ErrResetNotFound) {
			return nil, oops.With("operation", "delete redeemed reset token", "user_id", u.ID).Wrap(err)
		}
	}
	return u, nil
}

// PruneExpired deletes tokens that can no longer be redeemed.
func (s *ResetService) PruneExpired(ctx context.Context) (int64, error) {
	n, err := s.repo.DeleteExpired(ctx, s.now())
	if err != nil {
		return 0, oops.With("operation", "prune expired reset tokens").Wrap(err)
	}
	return n, nil
}

// HashResetToken returns the hex sha256 of a plaintext reset token.
func HashResetToken(plaintext string) string {
	sum := sha256.Sum256([]byte(plaintext))
	return hex.EncodeToString(sum[:])
}
