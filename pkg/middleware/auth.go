// Package middleware holds fiber middleware shared by the HTTP routes.
package middleware

import (
	"context"
	"errors"
	"strings"

	"github.com/amirasaad/branchledger/pkg/config"
	"github.com/amirasaad/branchledger/pkg/domain/user"
	jwtware "github.com/gofiber/contrib/jwt"
	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
)

// TokenKey is the fiber local holding the validated *jwt.Token.
const TokenKey = "user"

// PrincipalKey is the fiber local holding the resolved user.Principal.
const PrincipalKey = "principal"

// JwtProtected validates the bearer token signed with cfg.Secret and stores
// it under TokenKey.
func JwtProtected(cfg *config.Jwt) fiber.Handler {
	return jwtware.New(jwtConfig(cfg))
}

// Protected is JwtProtected followed by ResolvePrincipal.
func Protected(cfg *config.Jwt, resolver PrincipalResolver) fiber.Handler {
	conf := jwtConfig(cfg)
	conf.SuccessHandler = ResolvePrincipal(resolver)
	return jwtware.New(conf)
}

func jwtConfig(cfg *config.Jwt) jwtware.Config {
	var secret string
	if cfg != nil {
		secret = cfg.Secret
	}
	return jwtware.Config{
		SigningKey:   jwtware.SigningKey{JWTAlg: jwtware.HS256, Key: []byte(secret)},
		ContextKey:   TokenKey,
		ErrorHandler: jwtError,
	}
}

func jwtError(c *fiber.Ctx, err error) error {
	if errors.Is(err, jwtware.ErrJWTMissingOrMalformed) ||
		strings.Contains(strings.ToLower(err.Error()), "missing or malformed") {
		return problem(c, fiber.StatusBadRequest, "Missing or malformed JWT", err.Error())
	}
	return problem(c, fiber.StatusUnauthorized, "Invalid or expired JWT", err.Error())
}

// PrincipalResolver loads the caller behind a validated token.
type PrincipalResolver interface {
	Principal(ctx context.Context, token *jwt.Token) (user.Principal, error)
}

// ResolvePrincipal turns the token stored by JwtProtected into a
// user.Principal. It must run after JwtProtected.
func ResolvePrincipal(resolver PrincipalResolver) fiber.Handler {
	return func(c *fiber.Ctx) error {
		token, ok := c.Locals(TokenKey).(*jwt.Token)
		if !ok {
			return problem(c, fiber.StatusUnauthorized, "Unauthorized", "missing user context")
		}
		p, err := resolver.Principal(c.UserContext(), token)
		if errors.Is(err, user.ErrUserUnauthorized) {
			return problem(c, fiber.StatusUnauthorized, "Unauthorized", err.Error())
		}
		if err != nil {
			return problem(c, fiber.StatusInternalServerError, "Internal Server Error", err.Error())
		}
		c.Locals(PrincipalKey, p)
		return c.Next()
	}
}

// GetPrincipal returns the principal stored by ResolvePrincipal.
func GetPrincipal(c *fiber.Ctx) (user.Principal, bool) {
	p, ok := c.Locals(PrincipalKey).(user.Principal)
	return p, ok
}

func problem(c *fiber.Ctx, status int, title, detail string) error {
	return c.Status(status).JSON(fiber.Map{
		"type":     "about:blank",
		"title":    title,
		"status":   status,
		"detail":   detail,
		"instance": c.OriginalURL(),
	}, "application/problem+json")
}
