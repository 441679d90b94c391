package auth

import (
	"context"
	"strings"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/spec-kit/issue-tracker/internal/domain"
	apperrors "github.com/spec-kit/issue-tracker/pkg/util"
)

const (
	principalKey   = "auth_principal"
	tokenClaimsKey = "auth_claims"
)

// PrincipalResolver turns validated claims into a user record,
// provisioning one when none exists yet.
type PrincipalResolver interface {
	ResolvePrincipal(ctx context.Context, claims *Claims) (*domain.User, error)
}

// AuthMiddleware validates bearer tokens and resolves principals.
type AuthMiddleware struct {
	tokens   *TokenManager
	resolver PrincipalResolver
	revoker  TokenRevoker
	logger   *zap.Logger
}

// NewAuthMiddleware constructs middleware.
func NewAuthMiddleware(tokens *TokenManager, resolver PrincipalResolver, revoker TokenRevoker, logger *zap.Logger) *AuthMiddleware {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AuthMiddleware{tokens: tokens, resolver: resolver, revoker: revoker, logger: logger}
}

// Handle enforces authentication for protected routes.
func (m *AuthMiddleware) Handle(c *fiber.Ctx) error {
	authHeader := c.Get("Authorization")
	if authHeader == "" {
		return apperrors.NewUnauthorized("missing authorization header")
	}

	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return apperrors.NewUnauthorized("invalid authorization header")
	}

	claims, err := m.tokens.ParseToken(parts[1])
	if err != nil {
		return apperrors.NewUnauthorized("invalid token")
	}

	if m.revoker != nil && claims.ID != "" {
		revoked, err := m.revoker.IsRevoked(c.Context(), claims.ID)
		if err != nil {
			// revocation backend failure does not block the request
			m.logger.Error("revocation check failed",
				zap.String("jti", claims.ID),
				zap.Error(err))
		} else if revoked {
			return apperrors.NewUnauthorized("token revoked")
		}
	}

	user, err := m.resolver.ResolvePrincipal(c.Context(), claims)
	if err != nil {
		return apperrors.MapError(err)
	}

	c.Locals(principalKey, user)
	c.Locals(tokenClaimsKey, claims)
	return c.Next()
}

// PrincipalFromContext retrieves the authenticated user.
func PrincipalFromContext(c *fiber.Ctx) (*domain.User, bool) {
	val := c.Locals(principalKey)
	if val == nil {
		return nil, false
	}
	user, ok := val.(*domain.User)
	return user, ok
}

// ClaimsFromContext retrieves the parsed token claims.
func ClaimsFromContext(c *fiber.Ctx) (*Claims, bool) {
	val := c.Locals(tokenClaimsKey)
	if val == nil {
		return nil, false
	}
	claims, ok := val.(*Claims)
	return claims, ok
}
