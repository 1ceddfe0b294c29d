package auth

import (
	"errors"
	"strings"

	"interiors-erp/internal/config"
	"interiors-erp/internal/models"

	"github.com/gofiber/fiber/v2"
)

const (
	CtxCredentialKey = "credential"
	ctxRawTokenKey   = "raw_token"
)

func bearerToken(c *fiber.Ctx) (string, error) {
	authHeader := c.Get("Authorization")
	if authHeader == "" {
		return "", fiber.NewError(fiber.StatusUnauthorized, "Authorization header is missing")
	}

	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) != 2 || strings.ToLower(parts[0]) != "bearer" || strings.TrimSpace(parts[1]) == "" {
		return "", fiber.NewError(fiber.StatusUnauthorized, "Authorization header must be 'Bearer <token>'")
	}
	return strings.TrimSpace(parts[1]), nil
}

// Middleware resolves the bearer token into a Credential. Console tokens are
// checked against the session store, everything else must be a valid JWT
// belonging to a user that is still active.
func Middleware(cfg *config.Config, sessions SessionStore, users UserStatus) fiber.Handler {
	return func(c *fiber.Ctx) error {
		token, err := bearerToken(c)
		if err != nil {
			return err
		}

		var cred Credential
		if strings.HasPrefix(token, SuperAdminTokenPrefix) {
			session, err := sessions.Lookup(c.UserContext(), token)
			if errors.Is(err, ErrSessionNotFound) {
				return fiber.NewError(fiber.StatusUnauthorized, "Invalid or expired super admin token")
			}
			if err != nil {
				return err
			}
			cred = SuperAdminCredential{SessionID: session.ID, Email: session.Email}
		} else {
			claims, err := ParseToken(cfg.JWTSecret, token)
			if err != nil {
				return fiber.NewError(fiber.StatusUnauthorized, "Invalid or expired token")
			}
			active, err := users.IsActive(c.UserContext(), claims.UserID)
			if err != nil {
				return err
			}
			if !active {
				return fiber.NewError(fiber.StatusUnauthorized, "This account is deactivated")
			}
			cred = UserCredential{
				UserID:    claims.UserID,
				Email:     claims.Email,
				Role:      claims.Role,
				CompanyID: claims.CompanyID,
			}
		}

		c.Locals(CtxCredentialKey, cred)
		c.Locals(ctxRawTokenKey, token)
		return c.Next()
	}
}

func CredentialFrom(c *fiber.Ctx) (Credential, bool) {
	cred, ok := c.Locals(CtxCredentialKey).(Credential)
	return cred, ok
}

// CurrentUser returns the company user behind the request. Console sessions
// are refused because they are not bound to a company.
func CurrentUser(c *fiber.Ctx) (UserCredential, error) {
	cred, _ := CredentialFrom(c)
	switch v := cred.(type) {
	case UserCredential:
		return v, nil
	case SuperAdminCredential:
		return UserCredential{}, fiber.NewError(fiber.StatusForbidden, "This endpoint is for company users")
	default:
		return UserCredential{}, fiber.NewError(fiber.StatusUnauthorized, "Not authenticated")
	}
}

func RequireRole(allowedRoles ...models.UserRole) fiber.Handler {
	return func(c *fiber.Ctx) error {
		user, err := CurrentUser(c)
		if err != nil {
			return err
		}
		for _, r := range allowedRoles {
			if r == user.Role {
				return c.Next()
			}
		}
		return fiber.NewError(fiber.StatusForbidden, "You are not allowed to perform this action")
	}
}

func RequireSuperAdmin() fiber.Handler {
	return func(c *fiber.Ctx) error {
		cred, _ := CredentialFrom(c)
		switch cred.(type) {
		case SuperAdminCredential:
			return c.Next()
		case UserCredential:
			return fiber.NewError(fiber.StatusForbidden, "Super admin access required")
		default:
			return fiber.NewError(fiber.StatusUnauthorized, "Not authenticated")
		}
	}
}
