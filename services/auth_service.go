package services

import (
	"context"
	"errors"
	"fmt"
	"net/mail"
	"strings"
	"time"

	"esports-arena/logger"
	"esports-arena/models"
	"esports-arena/store"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

// dummyHash is compared against when the email is unknown so both paths cost one bcrypt check.
const dummyHash = "$2a$10$7zFqzDbD3RrlkMTczbXG9OWZ0FLOXjIxXzSZ.QZxkVXjXcx7QZQiC"

type AuthConfig struct {
	Secret     []byte
	SessionTTL time.Duration
	HashCost   int
}

// SignedSession is what sign-in and refresh hand back to the client.
type SignedSession struct {
	Token     string       `json:"token"`
	ExpiresAt time.Time    `json:"expires_at"`
	User      *models.User `json:"user"`
}

type AuthService struct {
	store store.Store
	cfg   AuthConfig
	log   *logger.Logger
	now   func() time.Time
}

func NewAuthService(st store.Store, cfg AuthConfig, log *logger.Logger) *AuthService {
	if cfg.HashCost == 0 {
		cfg.HashCost = bcrypt.DefaultCost
	}
	return &AuthService{store: st, cfg: cfg, log: log.With("component", "auth"), now: time.Now}
}

func normalizeEmail(email string) (string, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if _, err := mail.ParseAddress(email); err != nil {
		return "", fmt.Errorf("%w: invalid email", ErrInvalidInput)
	}
	return email, nil
}

// SignUp creates a user with a zero balance and opens a session.
func (s *AuthService) SignUp(ctx context.Context, email, password string) (*SignedSession, error) {
	email, err := normalizeEmail(email)
	if err != nil {
		return nil, err
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.cfg.HashCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}
	user := &models.User{
		ID:           uuid.NewString(),
		Email:        email,
		PasswordHash: string(hash),
	}
	if err := s.store.CreateUser(ctx, user); err != nil {
		if errors.Is(err, store.ErrDuplicate) {
			return nil, ErrEmailTaken
		}
		return nil, fmt.Errorf("failed to create user: %w", err)
	}
	s.log.Info("🆕 [AUTH] user signed up", "user_id", user.ID)
	return s.openSession(ctx, user)
}

func (s *AuthService) SignIn(ctx context.Context, email, password string) (*SignedSession, error) {
	email, err := normalizeEmail(email)
	if err != nil {
		return nil, ErrInvalidCredentials
	}
	user, err := s.store.GetUserByEmail(ctx, email)
	if err != nil {
		if !errors.Is(err, store.ErrNotFound) {
			return nil, fmt.Errorf("failed to load user: %w", err)
		}
		_ = bcrypt.CompareHashAndPassword([]byte(dummyHash), []byte(password))
		return nil, ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		s.log.Info("[AUTH] wrong password", "user_id", user.ID)
		return nil, ErrInvalidCredentials
	}
	return s.openSession(ctx, user)
}

// Refresh replaces the current session with a new one.
func (s *AuthService) Refresh(ctx context.Context, current *models.Session) (*SignedSession, error) {
	user, err := s.store.GetUser(ctx, current.UserID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, ErrSessionInvalid
		}
		return nil, fmt.Errorf("failed to load user: %w", err)
	}
	signed, err := s.openSession(ctx, user)
	if err != nil {
		return nil, err
	}
	if err := s.store.RevokeSession(ctx, current.ID, s.now()); err != nil && !errors.Is(err, store.ErrNotFound) {
		return nil, fmt.Errorf("failed to revoke session: %w", err)
	}
	return signed, nil
}

// SignOut revokes the session; the token stops working immediately.
func (s *AuthService) SignOut(ctx context.Context, sessionID string) error {
	if err := s.store.RevokeSession(ctx, sessionID, s.now()); err != nil && !errors.Is(err, store.ErrNotFound) {
		return fmt.Errorf("failed to revoke session: %w", err)
	}
	return nil
}

// ResolveSession maps a verified token to a live session.
func (s *AuthService) ResolveSession(ctx context.Context, token *jwt.Token) (*models.Session, error) {
	if token == nil {
		return nil, ErrSessionInvalid
	}
	claims, ok := token.Claims.(*jwt.RegisteredClaims)
	if !ok || claims.ID == "" || claims.Subject == "" {
		return nil, ErrSessionInvalid
	}
	session, err := s.store.GetSession(ctx, claims.ID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, ErrSessionInvalid
		}
		return nil, fmt.Errorf("failed to load session: %w", err)
	}
	if session.UserID != claims.Subject || !session.Active(s.now()) {
		return nil, ErrSessionInvalid
	}
	return session, nil
}

func (s *AuthService) openSession(ctx context.Context, user *models.User) (*SignedSession, error) {
	now := s.now()
	session := &models.Session{
		ID:        uuid.NewString(),
		UserID:    user.ID,
		Email:     user.Email,
		CreatedAt: now,
		ExpiresAt: now.Add(s.cfg.SessionTTL),
	}
	if err := s.store.CreateSession(ctx, session); err != nil {
		return nil, fmt.Errorf("failed to create session: %w", err)
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		ID:        session.ID,
		Subject:   user.ID,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(session.ExpiresAt),
	})
	signed, err := token.SignedString(s.cfg.Secret)
	if err != nil {
		return nil, fmt.Errorf("failed to sign token: %w", err)
	}
	return &SignedSession{Token: signed, ExpiresAt: session.ExpiresAt, User: user}, nil
}
