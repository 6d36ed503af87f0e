package utils

import (
	"github.com/labstack/echo/v4"
	"github.com/labstack/gommon/log"

	"drgroup/cmd/internal/utils/apierror"
)

const (
	ContextKeyToken = "token"
	ContextKeyActor = "actor"
)

// Actor identifies who performed a write. It is recorded in createdBy and
// updatedBy, never used for authorization.
type Actor struct {
	Sub   string
	Email string
	Exp   int64
}

// Label is what gets stored in audit fields.
func (a *Actor) Label() string {
	if a.Email != "" {
		return a.Email
	}
	return a.Sub
}

func GetActorFromContext(c echo.Context) (*Actor, apierror.ErrorResponse) {
	val := c.Get(ContextKeyActor)
	if val == nil {
		log.Warnf("route %s attempted to read nil actor from context", c.Request().URL)
		return nil, apierror.UnauthorizedError
	}

	actor, ok := val.(*Actor)
	if !ok {
		log.Warnf("expected actor type at '%s' context key, got %T", ContextKeyActor, val)
		return nil, apierror.InternalServerError
	}
	return actor, nil
}
