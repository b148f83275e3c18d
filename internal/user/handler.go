package user

import (
	"github.com/labstack/echo/v4"

	"github.com/sudo-init-do/userhub/internal/apperr"
)

// Handler serves the /user routes. Every route sits behind the auth middleware.
type Handler struct {
	store *Store
}

func NewHandler(store *Store) *Handler {
	return &Handler{store: store}
}

// Register mounts the handlers on a group that already requires auth.
func (h *Handler) Register(g *echo.Group) {
	g.GET("/getuser", h.GetUser)
	g.PUT("/updateuser", h.UpdateUser)
	g.GET("/search", h.Search)
}

// Current returns the user resolved by the auth middleware.
func Current(c echo.Context) (*User, error) {
	u, ok := FromContext(c.Request().Context())
	if !ok {
		return nil, apperr.New(apperr.CodeUnauthorized, "Not authorized, please login")
	}
	return u, nil
}
