package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"drgroup/cmd/internal/utils"

	"github.com/golang-jwt/jwt/v5"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var secret = []byte("middleware-secret")

func actorEcho(cfg *AuthMiddlewareConfig) (*echo.Echo, **utils.Actor) {
	var seen *utils.Actor
	e := echo.New()
	e.GET("/me", func(c echo.Context) error {
		actor, apierr := utils.GetActorFromContext(c)
		if apierr != nil {
			return c.JSON(apierr.Code(), apierr)
		}
		seen = actor
		return c.NoContent(http.StatusOK)
	}, NewAuthMiddleware(cfg))
	return e, &seen
}

func TestAuthMiddleware_Disabled(t *testing.T) {
	e, seen := actorEcho(&AuthMiddlewareConfig{Disabled: true})

	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/me", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Same(t, AnonymousActor, *seen)
}

func TestAuthMiddleware_ValidatesBearer(t *testing.T) {
	utils.UseKeyfunc(func(*jwt.Token) (any, error) { return secret, nil }, "")
	t.Cleanup(func() { utils.UseKeyfunc(nil, "") })

	e, seen := actorEcho(&AuthMiddlewareConfig{})
	exp := time.Now().Add(time.Hour).Unix()
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub":   "user-1",
		"email": "tesoreria@drgroup.co",
		"exp":   exp,
	}).SignedString(secret)
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/me", nil)
	req.Header.Set(echo.HeaderAuthorization, "Bearer "+signed)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	require.NotNil(t, *seen)
	assert.Equal(t, "user-1", (*seen).Sub)
	assert.Equal(t, "tesoreria@drgroup.co", (*seen).Label())
	assert.Equal(t, exp, (*seen).Exp)

	req = httptest.NewRequest(http.MethodGet, "/me", nil)
	req.Header.Set(echo.HeaderAuthorization, "Bearer not-a-token")
	rec = httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}
