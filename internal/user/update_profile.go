package user

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/sudo-init-do/userhub/internal/apperr"
)

type UpdateProfileRequest struct {
	Name       string `json:"name"`
	ProfilePic string `json:"profilePic"`
	Bio        string `json:"bio"`
}

// PUT /user/updateuser
// Empty fields keep their stored value; the email cannot be changed here.
func (h *Handler) UpdateUser(c echo.Context) error {
	u, err := Current(c)
	if err != nil {
		return err
	}

	var req UpdateProfileRequest
	if err := c.Bind(&req); err != nil {
		return apperr.Validation("invalid request")
	}

	if req.Name != "" {
		u.Name = req.Name
	}
	if req.ProfilePic != "" {
		u.ProfilePic = req.ProfilePic
	}
	if req.Bio != "" {
		u.Bio = req.Bio
	}

	if err := h.store.Save(c.Request().Context(), u); err != nil {
		return err
	}

	return c.JSON(http.StatusOK, u.Profile())
}
