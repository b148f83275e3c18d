package auth

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/sudo-init-do/userhub/internal/apperr"
)

type SignupRequest struct {
	Name     string `json:"name" validate:"required"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=6,max=72"`
}

// POST /auth/register
func (h *Handler) Signup(c echo.Context) error {
	req := new(SignupRequest)
	if err := c.Bind(req); err != nil {
		return apperr.Validation("invalid request")
	}
	if err := c.Validate(req); err != nil {
		return err
	}

	u, err := h.svc.Register(c.Request().Context(), req.Name, req.Email, req.Password)
	if err != nil {
		return err
	}

	resp, err := h.startSession(c, u)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, resp)
}
