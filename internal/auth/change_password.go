package auth

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/sudo-init-do/userhub/internal/apperr"
	"github.com/sudo-init-do/userhub/internal/user"
)

type ChangePasswordRequest struct {
	OldPassword string `json:"oldPassword"`
	Password    string `json:"password"`
}

// PATCH /auth/changepassword
func (h *Handler) ChangePassword(c echo.Context) error {
	u, err := user.Current(c)
	if err != nil {
		return err
	}

	req := new(ChangePasswordRequest)
	if err := c.Bind(req); err != nil {
		return apperr.Validation("invalid request")
	}

	if err := h.svc.ChangePassword(c.Request().Context(), u, req.OldPassword, req.Password); err != nil {
		return err
	}
	return c.String(http.StatusOK, "Password change successfully")
}
