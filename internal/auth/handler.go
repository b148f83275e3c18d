package auth

import (
	"github.com/labstack/echo/v4"

	"github.com/sudo-init-do/userhub/internal/user"
)

// Handler serves the /auth routes.
type Handler struct {
	svc          *Service
	tokens       *TokenIssuer
	cookieSecure bool
}

func NewHandler(svc *Service, tokens *TokenIssuer, cookieSecure bool) *Handler {
	return &Handler{svc: svc, tokens: tokens, cookieSecure: cookieSecure}
}

// Register mounts the handlers. requireAuth guards the routes that need a session.
func (h *Handler) Register(g *echo.Group, requireAuth echo.MiddlewareFunc) {
	g.POST("/register", h.Signup)
	g.POST("/login", h.Login)
	g.POST("/logout", h.Logout)
	g.POST("/forgotpassword", h.ForgotPassword)
	g.PUT("/resetpassword/:resetToken", h.ResetPassword)
	g.POST("/resetpassword/:resetToken", h.ResetPassword)
	g.PATCH("/changepassword", h.ChangePassword, requireAuth)
}

// SessionResponse is the profile plus the session token returned on signup and login.
type SessionResponse struct {
	user.Profile
	Token string `json:"token"`
}

// startSession issues a token for u, sets the cookie and returns the response body.
func (h *Handler) startSession(c echo.Context, u *user.User) (*SessionResponse, error) {
	token, expires, err := h.tokens.Issue(u.ID)
	if err != nil {
		return nil, err
	}
	SetSessionCookie(c, token, expires, h.cookieSecure)
	return &SessionResponse{Profile: u.Profile(), Token: token}, nil
}
