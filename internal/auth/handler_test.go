package auth_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sudo-init-do/userhub/internal/apperr"
	"github.com/sudo-init-do/userhub/internal/auth"
	"github.com/sudo-init-do/userhub/internal/user"
	"github.com/sudo-init-do/userhub/internal/validation"
)

type handlerFixture struct {
	*serviceFixture
	e      *echo.Echo
	issuer *auth.TokenIssuer
}

func newHandlerFixture(t *testing.T) *handlerFixture {
	t.Helper()
	f := newServiceFixture(t)
	issuer, err := auth.NewTokenIssuer("test-secret", 24*time.Hour)
	require.NoError(t, err)

	e := echo.New()
	e.Validator = validation.New()
	e.HTTPErrorHandler = func(err error, c echo.Context) {
		_ = c.JSON(apperr.Status(err), echo.Map{"code": apperr.Code(err), "message": err.Error()})
	}

	// resolves the session cookie the same way the real middleware does
	requireAuth := func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			cookie, err := c.Cookie(auth.CookieName)
			if err != nil {
				return apperr.New(apperr.CodeUnauthorized, "Not authorized, please login")
			}
			id, err := issuer.Verify(cookie.Value)
			if err != nil {
				return err
			}
			u, err := f.store.GetByID(c.Request().Context(), id)
			if err != nil {
				return err
			}
			c.SetRequest(c.Request().WithContext(user.NewContext(c.Request().Context(), u)))
			return next(c)
		}
	}

	auth.NewHandler(f.svc, issuer, true).Register(e.Group("/api/v1/auth"), requireAuth)
	return &handlerFixture{serviceFixture: f, e: e, issuer: issuer}
}

func (f *handlerFixture) do(method, target, body string, cookies ...*http.Cookie) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	for _, c := range cookies {
		req.AddCookie(c)
	}
	rec := httptest.NewRecorder()
	f.e.ServeHTTP(rec, req)
	return rec
}

func sessionCookie(t *testing.T, rec *httptest.ResponseRecorder) *http.Cookie {
	t.Helper()
	for _, c := range rec.Result().Cookies() {
		if c.Name == auth.CookieName {
			return c
		}
	}
	t.Fatalf("no %q cookie in response", auth.CookieName)
	return nil
}

func TestHandler_Signup(t *testing.T) {
	f := newHandlerFixture(t)

	rec := f.do(http.MethodPost, "/api/v1/auth/register", `{"name":"Alice","email":"a@x.com","password":"secret1"}`)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "Alice", body["name"])
	assert.Equal(t, "a@x.com", body["email"])
	assert.Equal(t, user.DefaultBio, body["bio"])
	assert.NotEmpty(t, body["_id"])
	assert.NotContains(t, body, "password")

	cookie := sessionCookie(t, rec)
	assert.Equal(t, body["token"], cookie.Value)
	assert.True(t, cookie.HttpOnly)
	assert.True(t, cookie.Secure)
	assert.Equal(t, http.SameSiteNoneMode, cookie.SameSite)
	assert.Equal(t, "/", cookie.Path)
	assert.WithinDuration(t, time.Now().Add(24*time.Hour), cookie.Expires, time.Minute)

	id, err := f.issuer.Verify(cookie.Value)
	require.NoError(t, err)
	assert.Equal(t, body["_id"], id)
}

func TestHandler_SignupErrors(t *testing.T) {
	f := newHandlerFixture(t)
	rec := f.do(http.MethodPost, "/api/v1/auth/register", `{"name":"Alice","email":"a@x.com","password":"secret1"}`)
	require.Equal(t, http.StatusCreated, rec.Code)

	tests := []struct {
		name       string
		body       string
		wantStatus int
		wantCode   string
	}{
		{name: "missing name", body: `{"email":"b@x.com","password":"secret1"}`, wantStatus: http.StatusBadRequest, wantCode: apperr.CodeValidation},
		{name: "short password", body: `{"name":"B","email":"b@x.com","password":"12345"}`, wantStatus: http.StatusBadRequest, wantCode: apperr.CodeValidation},
		{name: "long password", body: `{"name":"B","email":"b@x.com","password":"` + strings.Repeat("a", 80) + `"}`, wantStatus: http.StatusBadRequest, wantCode: apperr.CodeValidation},
		{name: "bad email", body: `{"name":"B","email":"nope","password":"secret1"}`, wantStatus: http.StatusBadRequest, wantCode: apperr.CodeValidation},
		{name: "duplicate email", body: `{"name":"A2","email":"a@x.com","password":"secret2"}`, wantStatus: http.StatusBadRequest, wantCode: apperr.CodeEmailTaken},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := f.do(http.MethodPost, "/api/v1/auth/register", tt.body)
			assert.Equal(t, tt.wantStatus, rec.Code)
			assert.Contains(t, rec.Body.String(), tt.wantCode)
		})
	}
}

func TestHandler_LoginAndLogout(t *testing.T) {
	f := newHandlerFixture(t)
	f.do(http.MethodPost, "/api/v1/auth/register", `{"name":"Alice","email":"a@x.com","password":"secret1"}`)

	rec := f.do(http.MethodPost, "/api/v1/auth/login", `{"email":"a@x.com","password":"wrong12"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Empty(t, rec.Result().Cookies())

	rec = f.do(http.MethodPost, "/api/v1/auth/login", `{"email":"ghost@x.com","password":"secret1"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.JSONEq(t, `{"code":"USER_NOT_FOUND","message":"User not found, please register"}`, rec.Body.String())

	rec = f.do(http.MethodPost, "/api/v1/auth/login", `{"email":"a@x.com","password":"secret1"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.NotEmpty(t, sessionCookie(t, rec).Value)

	rec = f.do(http.MethodPost, "/api/v1/auth/logout", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"message":"Successfully Logged Out"}`, rec.Body.String())

	cleared := sessionCookie(t, rec)
	assert.Empty(t, cleared.Value)
	assert.True(t, cleared.Expires.Equal(time.Unix(0, 0)))
	assert.True(t, cleared.HttpOnly)
}

func TestHandler_PasswordReset(t *testing.T) {
	f := newHandlerFixture(t)
	f.do(http.MethodPost, "/api/v1/auth/register", `{"name":"Alice","email":"a@x.com","password":"secret1"}`)

	rec := f.do(http.MethodPost, "/api/v1/auth/forgotpassword", `{"email":"ghost@x.com"}`)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = f.do(http.MethodPost, "/api/v1/auth/forgotpassword", `{"email":"a@x.com"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"success":true,"message":"Reset Email Sent"}`, rec.Body.String())
	require.Len(t, f.mail.sent, 1)

	html := f.mail.sent[0].HTML
	start := strings.Index(html, "/resetpassword/") + len("/resetpassword/")
	end := start + strings.Index(html[start:], `"`)
	plaintext := html[start:end]

	rec = f.do(http.MethodPut, "/api/v1/auth/resetpassword/"+plaintext+"x", `{"password":"newsecret"}`)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Contains(t, rec.Body.String(), apperr.CodeInvalidResetToken)

	rec = f.do(http.MethodPut, "/api/v1/auth/resetpassword/"+plaintext, `{"password":"123"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = f.do(http.MethodPut, "/api/v1/auth/resetpassword/"+plaintext, `{"password":"newsecret"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"message":"Password Reset Successful, Please Login"}`, rec.Body.String())

	rec = f.do(http.MethodPost, "/api/v1/auth/login", `{"email":"a@x.com","password":"newsecret"}`)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestHandler_ChangePassword(t *testing.T) {
	f := newHandlerFixture(t)
	rec := f.do(http.MethodPost, "/api/v1/auth/register", `{"name":"Alice","email":"a@x.com","password":"secret1"}`)
	cookie := sessionCookie(t, rec)

	rec = f.do(http.MethodPatch, "/api/v1/auth/changepassword", `{"oldPassword":"secret1","password":"secret2"}`)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = f.do(http.MethodPatch, "/api/v1/auth/changepassword", `{"oldPassword":"secret1","password":"secret1"}`, cookie)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = f.do(http.MethodPatch, "/api/v1/auth/changepassword", `{"oldPassword":"wrong12","password":"secret2"}`, cookie)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), apperr.CodeInvalidCredentials)

	rec = f.do(http.MethodPatch, "/api/v1/auth/changepassword", `{"oldPassword":"secret1","password":"`+strings.Repeat("b", 80)+`"}`, cookie)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), apperr.CodeValidation)

	rec = f.do(http.MethodPatch, "/api/v1/auth/changepassword", `{"oldPassword":"secret1","password":"secret2"}`, cookie)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Password change successfully", rec.Body.String())
}
