package auth

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/sudo-init-do/userhub/internal/apperr"
)

type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// POST /auth/login
func (h *Handler) Login(c echo.Context) error {
	req := new(LoginRequest)
	if err := c.Bind(req); err != nil {
		return apperr.Validation("invalid request")
	}
	if err := c.Validate(req); err != nil {
		return err
	}

	u, err := h.svc.Login(c.Request().Context(), req.Email, req.Password)
	if err != nil {
		return err
	}

	resp, err := h.startSession(c, u)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, resp)
}

// POST /auth/logout
// Only the cookie is cleared; a copied token stays valid until it expires.
func (h *Handler) Logout(c echo.Context) error {
	ClearSessionCookie(c, h.cookieSecure)
	return c.JSON(http.StatusOK, echo.Map{"message": "Successfully Logged Out"})
}
