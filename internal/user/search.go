package user

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/sudo-init-do/userhub/internal/apperr"
)

// GET /user/search?query=
// Zero matches is reported as NOT_FOUND rather than an empty list.
func (h *Handler) Search(c echo.Context) error {
	u, err := Current(c)
	if err != nil {
		return err
	}

	query := c.QueryParam("query")
	if query == "" {
		return apperr.Validation("Search query is required")
	}

	users, err := h.store.Search(c.Request().Context(), query, u)
	if err != nil {
		return err
	}
	if len(users) == 0 {
		return apperr.New(apperr.CodeNotFound, "Users not found")
	}

	results := make([]SearchResult, 0, len(users))
	for _, found := range users {
		results = append(results, found.SearchResult())
	}
	return c.JSON(http.StatusOK, results)
}
