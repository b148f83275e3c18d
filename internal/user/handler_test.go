package user_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sudo-init-do/userhub/internal/apperr"
	"github.com/sudo-init-do/userhub/internal/user"
)

func serve(t *testing.T, h echo.HandlerFunc, method, target, body string, as *user.User) (*httptest.ResponseRecorder, error) {
	t.Helper()
	e := echo.New()

	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	} else {
		req = httptest.NewRequest(method, target, nil)
	}
	if as != nil {
		req = req.WithContext(user.NewContext(req.Context(), as))
	}
	rec := httptest.NewRecorder()
	return rec, h(e.NewContext(req, rec))
}

func seed(t *testing.T, store *user.Store, names ...string) []*user.User {
	t.Helper()
	out := make([]*user.User, 0, len(names))
	for _, name := range names {
		u := newUser(name, strings.ToLower(name)+"@x.com", "secret1")
		require.NoError(t, store.Create(context.Background(), u))
		out = append(out, u)
	}
	return out
}

func TestHandler_GetUser(t *testing.T) {
	store, _ := newStore(t)
	h := user.NewHandler(store)
	alice := seed(t, store, "Alice")[0]

	rec, err := serve(t, h.GetUser, http.MethodGet, "/api/v1/user/getuser", "", alice)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, rec.Code)

	var got map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	assert.Equal(t, alice.ID, got["_id"])
	assert.Equal(t, "Alice", got["name"])
	assert.NotContains(t, got, "password")
}

func TestHandler_GetUserUnauthenticated(t *testing.T) {
	store, _ := newStore(t)
	h := user.NewHandler(store)

	_, err := serve(t, h.GetUser, http.MethodGet, "/api/v1/user/getuser", "", nil)
	require.Error(t, err)
	assert.Equal(t, apperr.CodeUnauthorized, apperr.Code(err))
}

func TestHandler_UpdateUser(t *testing.T) {
	store, _ := newStore(t)
	h := user.NewHandler(store)
	alice := seed(t, store, "Alice")[0]
	digest := alice.PasswordHash

	rec, err := serve(t, h.UpdateUser, http.MethodPut, "/api/v1/user/updateuser",
		`{"bio":"gopher","email":"other@x.com"}`, alice)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, rec.Code)

	stored, err := store.GetByID(context.Background(), alice.ID)
	require.NoError(t, err)
	assert.Equal(t, "gopher", stored.Bio)
	assert.Equal(t, "Alice", stored.Name)
	assert.Equal(t, "alice@x.com", stored.Email)
	assert.Equal(t, digest, stored.PasswordHash)
}

func TestHandler_Search(t *testing.T) {
	store, _ := newStore(t)
	h := user.NewHandler(store)
	users := seed(t, store, "Alice", "Alicia", "Bob")
	alice := users[0]

	t.Run("matches other users", func(t *testing.T) {
		rec, err := serve(t, h.Search, http.MethodGet, "/api/v1/user/search?query=ali", "", alice)
		require.NoError(t, err)
		assert.Equal(t, http.StatusOK, rec.Code)

		var got []user.SearchResult
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
		require.Len(t, got, 1)
		assert.Equal(t, "Alicia", got[0].Name)
	})

	t.Run("no matches", func(t *testing.T) {
		_, err := serve(t, h.Search, http.MethodGet, "/api/v1/user/search?query=zed", "", alice)
		require.Error(t, err)
		assert.Equal(t, apperr.CodeNotFound, apperr.Code(err))
	})

	t.Run("only self matches", func(t *testing.T) {
		_, err := serve(t, h.Search, http.MethodGet, "/api/v1/user/search?query=alice@", "", alice)
		require.Error(t, err)
		assert.Equal(t, apperr.CodeNotFound, apperr.Code(err))
	})

	t.Run("missing query", func(t *testing.T) {
		_, err := serve(t, h.Search, http.MethodGet, "/api/v1/user/search", "", alice)
		require.Error(t, err)
		assert.Equal(t, apperr.CodeValidation, apperr.Code(err))
	})
}
