package middleware

import (
	"net/http"

	"drgroup/cmd/internal/utils"
	"drgroup/cmd/internal/utils/apierror"

	"github.com/labstack/echo/v4"
)

// AnonymousActor is recorded on writes when token validation is disabled.
var AnonymousActor = &utils.Actor{Sub: "anonymous"}

type AuthMiddlewareConfig struct {
	// Disabled skips token validation, for local runs without an identity
	// provider. Every request then acts as AnonymousActor.
	Disabled bool
}

// NewAuthMiddleware validates the bearer token issued by the identity
// provider and stores the caller in the context.
func NewAuthMiddleware(cfg *AuthMiddlewareConfig) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if cfg.Disabled {
				c.Set(utils.ContextKeyActor, AnonymousActor)
				return next(c)
			}

			tokenData, err := utils.ParseTokenDataCtx(c)
			if err != nil {
				return c.JSON(http.StatusUnauthorized, apierror.InvalidAuthTokenError)
			}

			c.Set(utils.ContextKeyToken, tokenData)
			c.Set(utils.ContextKeyActor, &utils.Actor{
				Sub:   tokenData.Sub,
				Email: tokenData.Email,
				Exp:   tokenData.Exp,
			})
			return next(c)
		}
	}
}
