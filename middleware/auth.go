package middleware

import (
	"context"

	"esports-arena/logger"
	"esports-arena/models"

	jwtware "github.com/gofiber/contrib/jwt"
	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
)

const (
	tokenKey   = "token"
	sessionKey = "session"
	userIDKey  = "user_id"
)

// SessionResolver turns a verified token into a live session.
type SessionResolver interface {
	ResolveSession(ctx context.Context, token *jwt.Token) (*models.Session, error)
}

// RequireSession rejects requests without a valid bearer token backed by an active session.
func RequireSession(secret []byte, sessions SessionResolver, log *logger.Logger) fiber.Handler {
	return jwtware.New(jwtware.Config{
		SigningKey: jwtware.SigningKey{JWTAlg: jwtware.HS256, Key: secret},
		ContextKey: tokenKey,
		Claims:     &jwt.RegisteredClaims{},
		SuccessHandler: func(c *fiber.Ctx) error {
			if !attachSession(c, sessions, log) {
				return unauthorized(c, "session expired or revoked")
			}
			return c.Next()
		},
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			log.Debug("🚫 [AUTH] token rejected", "path", c.Path(), "error", err)
			return unauthorized(c, "sign in required")
		},
	})
}

// OptionalSession attaches the session when a valid token is present and lets anonymous requests through.
func OptionalSession(secret []byte, sessions SessionResolver, log *logger.Logger) fiber.Handler {
	return jwtware.New(jwtware.Config{
		Filter: func(c *fiber.Ctx) bool {
			return c.Get(fiber.HeaderAuthorization) == ""
		},
		SigningKey: jwtware.SigningKey{JWTAlg: jwtware.HS256, Key: secret},
		ContextKey: tokenKey,
		Claims:     &jwt.RegisteredClaims{},
		SuccessHandler: func(c *fiber.Ctx) error {
			attachSession(c, sessions, log)
			return c.Next()
		},
		ErrorHandler: func(c *fiber.Ctx, _ error) error {
			return c.Next()
		},
	})
}

func attachSession(c *fiber.Ctx, sessions SessionResolver, log *logger.Logger) bool {
	token, _ := c.Locals(tokenKey).(*jwt.Token)
	session, err := sessions.ResolveSession(c.UserContext(), token)
	if err != nil {
		log.Debug("🚫 [AUTH] session rejected", "path", c.Path(), "error", err)
		return false
	}
	c.Locals(sessionKey, session)
	c.Locals(userIDKey, session.UserID)
	return true
}

// SessionFrom returns the session attached by RequireSession or OptionalSession, nil for anonymous requests.
func SessionFrom(c *fiber.Ctx) *models.Session {
	s, _ := c.Locals(sessionKey).(*models.Session)
	return s
}

// UserID returns the signed-in user's id, empty for anonymous requests.
func UserID(c *fiber.Ctx) string {
	id, _ := c.Locals(userIDKey).(string)
	return id
}

func unauthorized(c *fiber.Ctx, msg string) error {
	return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": msg})
}
