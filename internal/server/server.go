// Package server wires the HTTP routes, middleware and handlers.
package server

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"github.com/samber/oops"
	"golang.org/x/time/rate"

	"github.com/sudo-init-do/userhub/internal/alerts"
	"github.com/sudo-init-do/userhub/internal/auth"
	"github.com/sudo-init-do/userhub/internal/config"
	"github.com/sudo-init-do/userhub/internal/metrics"
	mw "github.com/sudo-init-do/userhub/internal/middleware"
	"github.com/sudo-init-do/userhub/internal/password"
	"github.com/sudo-init-do/userhub/internal/user"
	"github.com/sudo-init-do/userhub/internal/validation"
)

// Pinger reports whether the database is reachable.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Deps are the collaborators the server is built from.
type Deps struct {
	Config  *config.Config
	Logger  *slog.Logger
	Users   user.Repository
	Resets  auth.ResetRepository
	Mailer  alerts.Sender
	Metrics *metrics.Metrics
	// DB backs the readiness probe; nil reports ready.
	DB Pinger
}

// New builds the echo instance serving the API.
func New(deps Deps) (*echo.Echo, error) {
	cfg := deps.Config
	logger := deps.Logger
	if logger == nil {
		logger = slog.Default()
	}

	hasher, err := password.NewBcryptHasher(cfg.Auth.BcryptCost)
	if err != nil {
		return nil, oops.With("operation", "create password hasher").Wrap(err)
	}
	tokens, err := auth.NewTokenIssuer(cfg.Auth.JWTSecret, cfg.Auth.SessionTTL)
	if err != nil {
		return nil, oops.With("operation", "create token issuer").Wrap(err)
	}

	validator := validation.New()
	store := user.NewStore(deps.Users, hasher, validator)
	resets := auth.NewResetService(deps.Resets, store, auth.ResetOptions{
		TTL:       cfg.Auth.ResetTokenTTL,
		SingleUse: cfg.Auth.SingleUseResetTokens,
	})
	authSvc := auth.NewService(store, resets, deps.Mailer, auth.Options{
		FrontendURL: cfg.Auth.FrontendURL,
		MailFrom:    cfg.Mail.From,
		MailReplyTo: cfg.Mail.ReplyTo,
		Metrics:     deps.Metrics,
		Logger:      logger,
	})

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Validator = validator
	e.HTTPErrorHandler = mw.ErrorHandler(logger)

	e.Use(echomw.RequestID())
	e.Use(mw.RequestID())
	e.Use(mw.RequestLogger(logger))
	e.Use(echomw.Recover())
	e.Use(echomw.CORSWithConfig(echomw.CORSConfig{
		AllowOrigins:     cfg.Server.AllowedOrigins,
		AllowCredentials: true,
	}))

	e.GET("/", func(c echo.Context) error {
		return c.String(http.StatusOK, "API is running...")
	})
	e.GET("/health", func(c echo.Context) error {
		return c.JSON(http.StatusOK, echo.Map{"status": "ok"})
	})
	e.GET("/ready", readyHandler(deps.DB))
	if deps.Metrics != nil {
		e.GET("/metrics", echo.WrapHandler(deps.Metrics.Handler()))
	}

	requireAuth := mw.RequireAuth(tokens, store)

	// per-IP rate limiting protects register/login/reset from abuse
	authGroup := e.Group("/api/v1/auth")
	if cfg.Server.AuthRateLimit > 0 {
		authGroup.Use(echomw.RateLimiter(echomw.NewRateLimiterMemoryStore(rate.Limit(cfg.Server.AuthRateLimit))))
	}
	auth.NewHandler(authSvc, tokens, cfg.Server.CookieSecure).Register(authGroup, requireAuth)

	userGroup := e.Group("/api/v1/user", requireAuth)
	user.NewHandler(store).Register(userGroup)

	return e, nil
}

func readyHandler(db Pinger) echo.HandlerFunc {
	return func(c echo.Context) error {
		if db == nil {
			return c.JSON(http.StatusOK, echo.Map{"status": "ready"})
		}
		ctx, cancel := context.WithTimeout(c.Request().Context(), 2*time.Second)
		defer cancel()
		if err := db.Ping(ctx); err != nil {
			return c.JSON(http.StatusServiceUnavailable, echo.Map{"status": "not_ready", "error": "db unreachable"})
		}
		return c.JSON(http.StatusOK, echo.Map{"status": "ready"})
	}
}
