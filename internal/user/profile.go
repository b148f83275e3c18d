package user

import (
	"net/http"

	"github.com/labstack/echo/v4"
)

// GET /user/getuser
func (h *Handler) GetUser(c echo.Context) error {
	u, err := Current(c)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, u.Profile())
}
