package auth

import (
	"github.com/gofiber/fiber/v2"

	apperrors "github.com/helpdesk-kit/query-service/pkg/errorutil"
)

// RequireAction ensures the authenticated principal's role is permitted
// to perform the given action per the policy table.
func RequireAction(action Action) fiber.Handler {
	return func(c *fiber.Ctx) error {
		principal, ok := PrincipalFromContext(c)
		if !ok {
			return apperrors.NewUnauthorized("authentication required")
		}
		if !Allowed(principal.User.Role, action) {
			return apperrors.NewForbidden("role not permitted for this operation")
		}
		return c.Next()
	}
}

// RequireAuthenticated ensures a principal is present without any role
// restriction.
func RequireAuthenticated() fiber.Handler {
	return func(c *fiber.Ctx) error {
		if _, ok := PrincipalFromContext(c); !ok {
			return apperrors.NewUnauthorized("authentication required")
		}
		return c.Next()
	}
}
