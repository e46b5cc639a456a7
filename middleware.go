package auth

import (
	"strings"

	"github.com/goliatone/go-router"
)

// Protected returns middleware that validates the bearer access credential
// on each request, resolves the account it names, and stores both the claims
// and the user in the request context. Requests without a valid credential
// are rejected with 401 before the handler runs.
func Protected(manager *Manager, users UserStore) router.MiddlewareFunc {
	return func(hf router.HandlerFunc) router.HandlerFunc {
		return func(ctx router.Context) error {
			raw, err := bearerFromHeader(ctx)
			if err != nil {
				return unauthorized(ctx, "missing or malformed authorization header")
			}

			claims, err := manager.SessionFromToken(raw)
			if err != nil {
				return unauthorized(ctx, "invalid or expired credential")
			}

			user, err := users.GetByEmail(ctx.Context(), claims.Email())
			if err != nil {
				return unauthorized(ctx, "unknown principal")
			}

			if user.Deleted || user.Locked || !user.Active {
				return unauthorized(ctx, "account is not usable")
			}

			stdCtx := WithContext(ctx.Context(), user)
			stdCtx = WithClaimsContext(stdCtx, claims)
			ctx.SetContext(stdCtx)

			return hf(ctx)
		}
	}
}

func bearerFromHeader(ctx router.Context) (string, error) {
	a := ctx.GetString(router.HeaderAuthorization, "")
	scheme := "Bearer"
	if len(a) <= len(scheme)+1 || !strings.EqualFold(a[:len(scheme)], scheme) {
		return "", ErrUnableToDecodeSession
	}
	return strings.TrimSpace(a[len(scheme):]), nil
}

func unauthorized(ctx router.Context, msg string) error {
	return ctx.JSON(router.StatusUnauthorized, map[string]string{
		"error": msg,
	})
}
