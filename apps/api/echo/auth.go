package echoapi

import (
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/PARTHSHARMA4010/ClarityAI/core/auth"
)

const (
	contextClaimsKey = "claims"
	bearerScheme     = "Bearer"
)

// authMiddleware authorizes the request's bearer token and stores its claims in the echo.Context.
// With a role, tokens of any other role are rejected.
func authMiddleware(guard *auth.Guard, role ...string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(ctx echo.Context) error {
			claims, err := guard.Authorize(bearerToken(ctx), role...)
			if err != nil {
				return err
			}
			ctx.Set(contextClaimsKey, claims)
			return next(ctx)
		}
	}
}

func bearerToken(ctx echo.Context) string {
	hdr := ctx.Request().Header.Get(echo.HeaderAuthorization)
	l := len(bearerScheme)
	if len(hdr) > l+1 && strings.EqualFold(hdr[:l], bearerScheme) && hdr[l] == ' ' {
		return hdr[l+1:]
	}
	return ""
}

func getContextClaims(ctx echo.Context) (auth.Claims, error) {
	if claims, ok := ctx.Get(contextClaimsKey).(auth.Claims); ok {
		return claims, nil
	}
	return auth.Claims{}, auth.ErrUnauthenticated
}
