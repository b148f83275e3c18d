package auth

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/sudo-init-do/userhub/internal/apperr"
)

type ForgotPasswordRequest struct {
	Email string `json:"email"`
}

// POST /auth/forgotpassword
func (h *Handler) ForgotPassword(c echo.Context) error {
	req := new(ForgotPasswordRequest)
	if err := c.Bind(req); err != nil {
		return apperr.Validation("invalid request")
	}

	if err := h.svc.ForgotPassword(c.Request().Context(), req.Email); err != nil {
		return err
	}
	return c.JSON(http.StatusOK, echo.Map{"success": true, "message": "Reset Email Sent"})
}

type ResetPasswordRequest struct {
	Password string `json:"password"`
}

// PUT /auth/resetpassword/:resetToken
// The token is checked before the password so an unknown token is always a 404.
func (h *Handler) ResetPassword(c echo.Context) error {
	req := new(ResetPasswordRequest)
	if err := c.Bind(req); err != nil {
		return apperr.Validation("invalid request")
	}

	if err := h.svc.ResetPassword(c.Request().Context(), c.Param("resetToken"), req.Password); err != nil {
		return err
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "Password Reset Successful, Please Login"})
}
