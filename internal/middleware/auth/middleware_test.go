package auth

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/glebarez/sqlite"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/sareenotsorry/shop/internal/models"
	"github.com/sareenotsorry/shop/internal/service/token"
)

func newTestMiddleware(t *testing.T) *Middleware {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&models.RefreshToken{}))
	return &Middleware{Tokens: &token.Service{
		DB:            db,
		JWTSecret:     []byte("test-secret"),
		RefreshSecret: []byte("test-refresh-secret"),
	}}
}

func runWith(t *testing.T, m *Middleware, wrap func(echo.HandlerFunc) echo.HandlerFunc, cookies ...*http.Cookie) (echo.Context, *httptest.ResponseRecorder, error) {
	t.Helper()
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/api/v1/orders", nil)
	for _, ck := range cookies {
		req.AddCookie(ck)
	}
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	handler := wrap(func(c echo.Context) error {
		return c.NoContent(http.StatusOK)
	})
	return c, rec, handler(c)
}

func TestRequireLoginWithAccessCookie(t *testing.T) {
	m := newTestMiddleware(t)

	access, err := m.Tokens.SignAccessToken(7, models.RoleCustomer)
	require.NoError(t, err)

	c, rec, err := runWith(t, m, m.RequireLogin,
		&http.Cookie{Name: "accessToken", Value: access})
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, uint(7), UserID(c))
	require.Equal(t, models.RoleCustomer, Role(c))
}

func TestRequireLoginWithoutCookies(t *testing.T) {
	m := newTestMiddleware(t)

	_, _, err := runWith(t, m, m.RequireLogin)
	var httpErr *echo.HTTPError
	require.ErrorAs(t, err, &httpErr)
	require.Equal(t, http.StatusUnauthorized, httpErr.Code)
}

func TestRequireLoginRotatesFromRefreshCookie(t *testing.T) {
	m := newTestMiddleware(t)

	refresh, err := m.Tokens.SignRefreshToken(7, models.RoleCustomer)
	require.NoError(t, err)
	require.NoError(t, m.Tokens.SaveRefreshToken(refresh, 7))

	c, rec, err := runWith(t, m, m.RequireLogin,
		&http.Cookie{Name: "refreshToken", Value: refresh})
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, uint(7), UserID(c))

	// Fresh cookies were issued and the old refresh token is burned.
	names := make(map[string]bool)
	for _, ck := range rec.Result().Cookies() {
		names[ck.Name] = true
	}
	require.True(t, names["accessToken"])
	require.True(t, names["refreshToken"])

	_, err = m.Tokens.ValidateRefresh(refresh)
	require.Error(t, err)
}

func TestRequireLoginRejectsRevokedRefresh(t *testing.T) {
	m := newTestMiddleware(t)

	refresh, err := m.Tokens.SignRefreshToken(7, models.RoleCustomer)
	require.NoError(t, err)
	require.NoError(t, m.Tokens.SaveRefreshToken(refresh, 7))
	require.NoError(t, m.Tokens.Revoke(refresh))

	_, _, err = runWith(t, m, m.RequireLogin,
		&http.Cookie{Name: "refreshToken", Value: refresh})
	var httpErr *echo.HTTPError
	require.ErrorAs(t, err, &httpErr)
	require.Equal(t, http.StatusUnauthorized, httpErr.Code)
}

func TestRequireAdmin(t *testing.T) {
	m := newTestMiddleware(t)

	customerAccess, err := m.Tokens.SignAccessToken(7, models.RoleCustomer)
	require.NoError(t, err)
	_, _, err = runWith(t, m, m.RequireAdmin,
		&http.Cookie{Name: "accessToken", Value: customerAccess})
	var httpErr *echo.HTTPError
	require.ErrorAs(t, err, &httpErr)
	require.Equal(t, http.StatusForbidden, httpErr.Code)

	adminAccess, err := m.Tokens.SignAccessToken(1, models.RoleAdmin)
	require.NoError(t, err)
	c, rec, err := runWith(t, m, m.RequireAdmin,
		&http.Cookie{Name: "accessToken", Value: adminAccess})
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, models.RoleAdmin, Role(c))
}

func TestBadAccessTokenFallsBackToRefresh(t *testing.T) {
	m := newTestMiddleware(t)

	refresh, err := m.Tokens.SignRefreshToken(7, models.RoleCustomer)
	require.NoError(t, err)
	require.NoError(t, m.Tokens.SaveRefreshToken(refresh, 7))

	c, rec, err := runWith(t, m, m.RequireLogin,
		&http.Cookie{Name: "accessToken", Value: "garbage"},
		&http.Cookie{Name: "refreshToken", Value: refresh})
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, uint(7), UserID(c))
}
