package auth

import (
	"context"
	"log/slog"
	"net/http"
	"strings"

	"github.com/sudo-init-do/userhub/internal/alerts"
	"github.com/sudo-init-do/userhub/internal/apperr"
	"github.com/sudo-init-do/userhub/internal/logging"
	"github.com/sudo-init-do/userhub/internal/metrics"
	"github.com/sudo-init-do/userhub/internal/user"
)

// Options configure a Service.
type Options struct {
	// FrontendURL is the base of the reset link: <FrontendURL>/resetpassword/<token>.
	FrontendURL string
	MailFrom    string
	MailReplyTo string
	Metrics     *metrics.Metrics
	Logger      *slog.Logger
}

// Service implements the account flows behind the /auth routes.
type Service struct {
	users   *user.Store
	resets  *ResetService
	mailer  alerts.Sender
	opts    Options
	logger  *slog.Logger
	metrics *metrics.Metrics
}

func NewService(users *user.Store, resets *ResetService, mailer alerts.Sender, opts Options) *Service {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		users:   users,
		resets:  resets,
		mailer:  mailer,
		opts:    opts,
		logger:  logger,
		metrics: opts.Metrics,
	}
}

// Register creates a user with a hashed password.
func (s *Service) Register(ctx context.Context, name, email, password string) (u *user.User, err error) {
	defer func() { s.metrics.AuthEvent("register", err) }()

	if _, err := s.users.GetByEmail(ctx, email); err == nil {
		return nil, apperr.New(apperr.CodeEmailTaken, "Email has already been registered")
	} else if !apperr.Is(err, apperr.CodeUserNotFound) {
		return nil, err
	}

	u = &user.User{Name: name, Email: email}
	u.SetPassword(password)
	if err := s.users.Create(ctx, u); err != nil {
		return nil, err
	}
	s.logger.InfoContext(ctx, "user registered", "user_id", u.ID)
	return u, nil
}

// Login returns the user whose email and password match.
func (s *Service) Login(ctx context.Context, email, password string) (u *user.User, err error) {
	defer func() { s.metrics.AuthEvent("login", err) }()

	u, err = s.users.GetByEmail(ctx, email)
	if err != nil {
		if apperr.Is(err, apperr.CodeUserNotFound) {
			// login answers 400 here; forgot-password keeps the 404
			return nil, apperr.NewWithStatus(apperr.CodeUserNotFound, http.StatusBadRequest, "User not found, please register")
		}
		return nil, err
	}

	ok, err := s.users.VerifyPassword(u, password)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, apperr.New(apperr.CodeInvalidCredentials, "Invalid email or password")
	}
	return u, nil
}

// ChangePassword replaces the password of u after checking the old one.
func (s *Service) ChangePassword(ctx context.Context, u *user.User, oldPassword, newPassword string) (err error) {
	defer func() { s.metrics.AuthEvent("change_password", err) }()

	if oldPassword == "" || newPassword == "" {
		return apperr.Validation("Please add old and new password")
	}
	if oldPassword == newPassword {
		return apperr.Validation("Old and new password are the same, please choose a different password")
	}

	ok, err := s.users.VerifyPassword(u, oldPassword)
	if err != nil {
		return err
	}
	if !ok {
		return apperr.New(apperr.CodeInvalidCredentials, "Old password is incorrect")
	}

	u.SetPassword(newPassword)
	return s.users.Save(ctx, u)
}

// ForgotPassword issues a reset token for email and mails the reset link.
// Any previous token for the user stops working.
func (s *Service) ForgotPassword(ctx context.Context, email string) (err error) {
	defer func() { s.metrics.AuthEvent("forgot_password", err) }()

	u, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		if apperr.Is(err, apperr.CodeUserNotFound) {
			return apperr.New(apperr.CodeUserNotFound, "User does not exist")
		}
		return err
	}

	plaintext, err := s.resets.Issue(ctx, u)
	if err != nil {
		return err
	}

	body, err := alerts.RenderPasswordReset(alerts.PasswordReset{
		Name:     u.Name,
		ResetURL: s.ResetURL(plaintext),
		ValidFor: s.resets.TTL(),
	})
	if err != nil {
		return err
	}

	err = s.mailer.Send(ctx, alerts.Message{
		From:    s.opts.MailFrom,
		ReplyTo: s.opts.MailReplyTo,
		To:      u.Email,
		Subject: alerts.PasswordResetSubject,
		HTML:    body,
	})
	s.metrics.EmailSent("password_reset", err)
	if err != nil {
		logging.LogError(ctx, s.logger, "password reset email failed", err, "user_id", u.ID)
		return apperr.New(apperr.CodeEmailDelivery, "Email not sent, please try again")
	}
	return nil
}

// ResetPassword redeems a reset token and sets the new password.
func (s *Service) ResetPassword(ctx context.Context, plaintext, newPassword string) (err error) {
	defer func() { s.metrics.AuthEvent("reset_password", err) }()

	u, err := s.resets.Redeem(ctx, plaintext, newPassword)
	if err != nil {
		return err
	}
	s.logger.InfoContext(ctx, "password reset", "user_id", u.ID)
	return nil
}

// ResetURL builds the frontend link that carries a reset token.
func (s *Service) ResetURL(plaintext string) string {
	return strings.TrimRight(s.opts.FrontendURL, "/") + "/resetpassword/" + plaintext
}
