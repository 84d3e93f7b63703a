package handlers

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/sareenotsorry/shop/internal/models"
	"github.com/sareenotsorry/shop/internal/service/token"
)

func newAuthHandler(t *testing.T) *AuthHandler {
	t.Helper()
	db := newHandlerDB(t)
	tokens := &token.Service{
		DB:            db,
		JWTSecret:     []byte("test-secret"),
		RefreshSecret: []byte("test-refresh-secret"),
	}
	return &AuthHandler{DB: db, Tokens: tokens}
}

func TestRegister(t *testing.T) {
	h := newAuthHandler(t)

	c, rec := newJSONContext(t, http.MethodPost, "/api/v1/register",
		map[string]any{"name": "Asha", "email": "asha@example.com", "password": "s3cret"}, 0, "")
	require.NoError(t, h.Register(c))
	require.Equal(t, http.StatusCreated, rec.Code)

	body := decodeBody(t, rec)
	require.Equal(t, "Asha", body["name"])
	require.Equal(t, models.RoleCustomer, body["role"])
	require.NotContains(t, rec.Body.String(), "s3cret")

	var user models.User
	require.NoError(t, h.DB.Where("email = ?", "asha@example.com").First(&user).Error)
	require.NotEqual(t, "s3cret", user.PasswordHash)
}

func TestRegisterDuplicateEmail(t *testing.T) {
	h := newAuthHandler(t)

	c, rec := newJSONContext(t, http.MethodPost, "/api/v1/register",
		map[string]any{"name": "Asha", "email": "asha@example.com", "password": "s3cret"}, 0, "")
	require.NoError(t, h.Register(c))
	require.Equal(t, http.StatusCreated, rec.Code)

	c, rec = newJSONContext(t, http.MethodPost, "/api/v1/register",
		map[string]any{"name": "Other", "email": "asha@example.com", "password": "other"}, 0, "")
	require.NoError(t, h.Register(c))
	require.Equal(t, http.StatusBadRequest, rec.Code)
	require.Equal(t, "user already exists", decodeBody(t, rec)["error"])
}

func TestRegisterMissingFields(t *testing.T) {
	h := newAuthHandler(t)

	c, rec := newJSONContext(t, http.MethodPost, "/api/v1/register",
		map[string]any{"email": "asha@example.com"}, 0, "")
	require.NoError(t, h.Register(c))
	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestLogin(t *testing.T) {
	h := newAuthHandler(t)

	c, rec := newJSONContext(t, http.MethodPost, "/api/v1/register",
		map[string]any{"name": "Asha", "email": "asha@example.com", "password": "s3cret"}, 0, "")
	require.NoError(t, h.Register(c))
	require.Equal(t, http.StatusCreated, rec.Code)

	c, rec = newJSONContext(t, http.MethodPost, "/api/v1/login",
		map[string]any{"email": "asha@example.com", "password": "s3cret"}, 0, "")
	require.NoError(t, h.Login(c))
	require.Equal(t, http.StatusOK, rec.Code)

	body := decodeBody(t, rec)
	require.NotEmpty(t, body["access_token"])
	require.NotEmpty(t, body["refresh_token"])

	cookies := rec.Result().Cookies()
	names := make(map[string]bool, len(cookies))
	for _, ck := range cookies {
		names[ck.Name] = true
	}
	require.True(t, names["accessToken"])
	require.True(t, names["refreshToken"])

	claims, err := h.Tokens.ParseAccess(body["access_token"].(string))
	require.NoError(t, err)
	require.Equal(t, models.RoleCustomer, claims["role"])
}

func TestLoginWrongPassword(t *testing.T) {
	h := newAuthHandler(t)

	c, rec := newJSONContext(t, http.MethodPost, "/api/v1/register",
		map[string]any{"name": "Asha", "email": "asha@example.com", "password": "s3cret"}, 0, "")
	require.NoError(t, h.Register(c))
	require.Equal(t, http.StatusCreated, rec.Code)

	c, rec = newJSONContext(t, http.MethodPost, "/api/v1/login",
		map[string]any{"email": "asha@example.com", "password": "wrong"}, 0, "")
	require.NoError(t, h.Login(c))
	require.Equal(t, http.StatusUnauthorized, rec.Code)

	c, rec = newJSONContext(t, http.MethodPost, "/api/v1/login",
		map[string]any{"email": "nobody@example.com", "password": "s3cret"}, 0, "")
	require.NoError(t, h.Login(c))
	require.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestLogoutRevokesRefreshToken(t *testing.T) {
	h := newAuthHandler(t)

	user := seedHandlerUser(t, h.DB, "asha", models.RoleCustomer)
	refresh, err := h.Tokens.SignRefreshToken(user.ID, user.Role)
	require.NoError(t, err)
	require.NoError(t, h.Tokens.SaveRefreshToken(refresh, user.ID))

	c, rec := newJSONContext(t, http.MethodPost, "/api/v1/logout", nil, 0, "")
	c.Request().AddCookie(&http.Cookie{Name: "refreshToken", Value: refresh})
	require.NoError(t, h.Logout(c))
	require.Equal(t, http.StatusOK, rec.Code)

	_, err = h.Tokens.ValidateRefresh(refresh)
	require.Error(t, err)
}
