package users

import (
	"strings"

	"github.com/goliatone/go-errors"
	"github.com/goliatone/go-router"
)

// ContextKeyUser is the router locals key under which the resolved acting
// user is stored by TokenMiddleware.
const ContextKeyUser = "user"

// TokenMiddleware resolves the bearer token from the Authorization header
// against the token store and injects the owning user into both the
// router locals and the request context. Workflow methods downstream
// receive the acting user explicitly; they never re-resolve the token.
func TokenMiddleware(resolver TokenResolver, errorHandler func(router.Context, error) error) router.MiddlewareFunc {
	if errorHandler == nil {
		errorHandler = defaultAuthErrorHandler
	}

	return func(next router.HandlerFunc) router.HandlerFunc {
		return func(ctx router.Context) error {
			token := bearerToken(ctx.Header("Authorization"))
			if token == "" {
				return errorHandler(ctx, ErrUnauthenticated)
			}

			user, err := resolver.Resolve(ctx.Context(), token)
			if err != nil {
				return errorHandler(ctx, err)
			}

			ctx.Locals(ContextKeyUser, user)
			ctx.SetContext(WithContext(ctx.Context(), user))

			return next(ctx)
		}
	}
}

// RequireRole gates a route on role membership of the acting user. Run it
// after TokenMiddleware.
func RequireRole(roleName string, errorHandler func(router.Context, error) error) router.MiddlewareFunc {
	if errorHandler == nil {
		errorHandler = defaultAuthErrorHandler
	}

	return func(next router.HandlerFunc) router.HandlerFunc {
		return func(ctx router.Context) error {
			user, ok := FromRouterContext(ctx)
			if !ok {
				return errorHandler(ctx, ErrUnauthenticated)
			}

			if !user.HasRole(roleName) {
				return errorHandler(ctx, errors.New("insufficient role", errors.CategoryAuthz).
					WithTextCode("FORBIDDEN").
					WithCode(errors.CodeForbidden).
					WithMetadata(map[string]any{
						"required_role": roleName,
					}))
			}

			return next(ctx)
		}
	}
}

func bearerToken(header string) string {
	const prefix = "Bearer "
	if !strings.HasPrefix(header, prefix) {
		return ""
	}
	return strings.TrimSpace(strings.TrimPrefix(header, prefix))
}

func defaultAuthErrorHandler(ctx router.Context, err error) error {
	var richErr *errors.Error
	if !errors.As(err, &richErr) {
		richErr = errors.Wrap(err, errors.CategoryAuth, "An unexpected authentication error").
			WithCode(errors.CodeUnauthorized)
	}

	status := richErr.Code
	if status == 0 {
		status = router.StatusUnauthorized
	}

	return ctx.JSON(status, map[string]any{
		"status":  "error",
		"message": richErr.Message,
	})
}
