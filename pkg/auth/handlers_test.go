package auth

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

	"github.com/inkstonebooks/inkstone/pkg/binder"
	"github.com/inkstonebooks/inkstone/pkg/errcodes"
	"github.com/inkstonebooks/inkstone/pkg/models"
)

func newTestContext(t *testing.T, payload, method, path string) (echo.Context, *httptest.ResponseRecorder) {
	t.Helper()

	e := echo.New()
	b, err := binder.New()
	require.NoError(t, err)
	e.Binder = b
	e.HTTPErrorHandler = errcodes.NewHandler(nil).Handle

	req := httptest.NewRequest(method, path, strings.NewReader(payload))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rr := httptest.NewRecorder()
	return e.NewContext(req, rr), rr
}

func TestHandlerRegister(t *testing.T) {
	t.Parallel()

	db := newTestDB(t)
	svc := NewService(db, "test-secret")
	h := &handler{authService: svc}

	payload := `{"username":"inkreader","email":"reader@example.com","password":"securepassword123","password2":"securepassword123"}`
	c, rr := newTestContext(t, payload, http.MethodPost, "/auth/register")

	err := h.register(c)
	require.NoError(t, err)
	assert.Equal(t, http.StatusCreated, rr.Code)

	var resp models.User
	err = json.Unmarshal(rr.Body.Bytes(), &resp)
	require.NoError(t, err)
	assert.Equal(t, "inkreader", resp.Username)
	assert.Equal(t, models.RoleReader, resp.Role)

	// password hash never leaves the server
	assert.NotContains(t, rr.Body.String(), "password_hash")

	cookies := rr.Result().Cookies()
	require.Len(t, cookies, 1)
	assert.Equal(t, CookieName, cookies[0].Name)
	assert.NotEmpty(t, cookies[0].Value)
}

func TestHandlerRegister_PasswordMismatch(t *testing.T) {
	t.Parallel()

	db := newTestDB(t)
	svc := NewService(db, "test-secret")
	h := &handler{authService: svc}

	payload := `{"username":"inkreader","email":"reader@example.com","password":"securepassword123","password2":"differentpassword"}`
	c, _ := newTestContext(t, payload, http.MethodPost, "/auth/register")

	err := h.register(c)
	require.Error(t, err)

	var codeErr *errcodes.Error
	require.ErrorAs(t, err, &codeErr)
	assert.Equal(t, http.StatusBadRequest, codeErr.HTTPCode)
}

func TestHandlerLogin(t *testing.T) {
	t.Parallel()

	db := newTestDB(t)
	svc := NewService(db, "test-secret")
	h := &handler{authService: svc}
	ctx := context.Background()

	_, err := svc.Register(ctx, RegisterUserOptions{
		Username: "inkreader",
		Email:    "reader@example.com",
		Password: "securepassword123",
	})
	require.NoError(t, err)

	payload := `{"username":"inkreader","password":"securepassword123"}`
	c, rr := newTestContext(t, payload, http.MethodPost, "/auth/login")

	err = h.login(c)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, rr.Code)

	cookies := rr.Result().Cookies()
	require.Len(t, cookies, 1)
	assert.Equal(t, CookieName, cookies[0].Name)
	assert.Equal(t, int(TokenExpiry.Seconds()), cookies[0].MaxAge)
}

func TestHandlerLogin_RememberMeExtendsCookie(t *testing.T) {
	t.Parallel()

	db := newTestDB(t)
	svc := NewService(db, "test-secret")
	h := &handler{authService: svc}
	ctx := context.Background()

	_, err := svc.Register(ctx, RegisterUserOptions{
		Username: "inkreader",
		Email:    "reader@example.com",
		Password: "securepassword123",
	})
	require.NoError(t, err)

	payload := `{"username":"inkreader","password":"securepassword123","remember_me":true}`
	c, rr := newTestContext(t, payload, http.MethodPost, "/auth/login")

	err = h.login(c)
	require.NoError(t, err)

	cookies := rr.Result().Cookies()
	require.Len(t, cookies, 1)
	assert.Equal(t, int(RememberMeExpiry.Seconds()), cookies[0].MaxAge)
}

func TestHandlerLogin_InvalidCredentials(t *testing.T) {
	t.Parallel()

	db := newTestDB(t)
	svc := NewService(db, "test-secret")
	h := &handler{authService: svc}

	payload := `{"username":"ghost","password":"doesnotmatter"}`
	c, _ := newTestContext(t, payload, http.MethodPost, "/auth/login")

	err := h.login(c)
	require.Error(t, err)

	var codeErr *errcodes.Error
	require.ErrorAs(t, err, &codeErr)
	assert.Equal(t, http.StatusUnauthorized, codeErr.HTTPCode)
}

func TestHandlerLogout(t *testing.T) {
	t.Parallel()

	db := newTestDB(t)
	svc := NewService(db, "test-secret")
	h := &handler{authService: svc}

	c, rr := newTestContext(t, "", http.MethodPost, "/auth/logout")

	err := h.logout(c)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, rr.Code)

	cookies := rr.Result().Cookies()
	require.Len(t, cookies, 1)
	assert.Equal(t, CookieName, cookies[0].Name)
	assert.Equal(t, -1, cookies[0].MaxAge)
}
