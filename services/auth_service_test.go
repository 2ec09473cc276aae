package services

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

var testSecret = []byte("test-secret")

func newAuthService(f *fixture) *AuthService {
	return NewAuthService(f.store, AuthConfig{Secret: testSecret, SessionTTL: time.Hour, HashCost: bcrypt.MinCost}, f.log)
}

// parseToken verifies the signature only; expiry is judged by the session row.
func parseToken(t *testing.T, raw string) *jwt.Token {
	t.Helper()
	tok, err := jwt.ParseWithClaims(raw, &jwt.RegisteredClaims{}, func(*jwt.Token) (any, error) {
		return testSecret, nil
	}, jwt.WithoutClaimsValidation(), jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	require.NoError(t, err)
	return tok
}

func TestSignUpNormalizesEmailAndStartsAtZero(t *testing.T) {
	f := newFixture(t)
	svc := newAuthService(f)

	signed, err := svc.SignUp(f.ctx, "  Player.One@Example.COM ", "hunter2hunter2")
	require.NoError(t, err)
	assert.NotEmpty(t, signed.Token)
	assert.Equal(t, "player.one@example.com", signed.User.Email)
	assert.Zero(t, signed.User.Coins)
	assert.NotEqual(t, "hunter2hunter2", signed.User.PasswordHash)

	_, err = svc.SignUp(f.ctx, "player.one@example.com", "another-password")
	require.ErrorIs(t, err, ErrEmailTaken)

	_, err = svc.SignUp(f.ctx, "not-an-email", "hunter2hunter2")
	require.ErrorIs(t, err, ErrInvalidInput)
}

func TestSignIn(t *testing.T) {
	f := newFixture(t)
	svc := newAuthService(f)
	_, err := svc.SignUp(f.ctx, "p@example.com", "correct-horse")
	require.NoError(t, err)

	signed, err := svc.SignIn(f.ctx, "P@example.com", "correct-horse")
	require.NoError(t, err)
	assert.Equal(t, "p@example.com", signed.User.Email)

	_, err = svc.SignIn(f.ctx, "p@example.com", "wrong-horse")
	require.ErrorIs(t, err, ErrInvalidCredentials)
	_, err = svc.SignIn(f.ctx, "nobody@example.com", "correct-horse")
	require.ErrorIs(t, err, ErrInvalidCredentials)
	_, err = svc.SignIn(f.ctx, "garbage", "correct-horse")
	require.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestResolveSession(t *testing.T) {
	f := newFixture(t)
	svc := newAuthService(f)
	signed, err := svc.SignUp(f.ctx, "p@example.com", "correct-horse")
	require.NoError(t, err)

	session, err := svc.ResolveSession(f.ctx, parseToken(t, signed.Token))
	require.NoError(t, err)
	assert.Equal(t, signed.User.ID, session.UserID)

	_, err = svc.ResolveSession(f.ctx, nil)
	require.ErrorIs(t, err, ErrSessionInvalid)

	forged := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{ID: session.ID, Subject: "someone-else"})
	raw, err := forged.SignedString(testSecret)
	require.NoError(t, err)
	_, err = svc.ResolveSession(f.ctx, parseToken(t, raw))
	require.ErrorIs(t, err, ErrSessionInvalid)
}

func TestResolveSessionRejectsExpired(t *testing.T) {
	f := newFixture(t)
	svc := newAuthService(f)
	svc.now = f.clock
	signed, err := svc.SignUp(f.ctx, "p@example.com", "correct-horse")
	require.NoError(t, err)

	f.advance(2 * time.Hour)
	_, err = svc.ResolveSession(f.ctx, parseToken(t, signed.Token))
	require.ErrorIs(t, err, ErrSessionInvalid)
}

func TestSignOutRevokesSession(t *testing.T) {
	f := newFixture(t)
	svc := newAuthService(f)
	signed, err := svc.SignUp(f.ctx, "p@example.com", "correct-horse")
	require.NoError(t, err)
	tok := parseToken(t, signed.Token)
	session, err := svc.ResolveSession(f.ctx, tok)
	require.NoError(t, err)

	require.NoError(t, svc.SignOut(f.ctx, session.ID))
	_, err = svc.ResolveSession(f.ctx, tok)
	require.ErrorIs(t, err, ErrSessionInvalid)

	// signing out twice is harmless
	require.NoError(t, svc.SignOut(f.ctx, session.ID))
}

func TestRefreshRevokesPreviousSession(t *testing.T) {
	f := newFixture(t)
	svc := newAuthService(f)
	signed, err := svc.SignUp(f.ctx, "p@example.com", "correct-horse")
	require.NoError(t, err)
	oldTok := parseToken(t, signed.Token)
	current, err := svc.ResolveSession(f.ctx, oldTok)
	require.NoError(t, err)

	fresh, err := svc.Refresh(f.ctx, current)
	require.NoError(t, err)
	assert.NotEqual(t, signed.Token, fresh.Token)

	_, err = svc.ResolveSession(f.ctx, oldTok)
	require.ErrorIs(t, err, ErrSessionInvalid)
	_, err = svc.ResolveSession(f.ctx, parseToken(t, fresh.Token))
	require.NoError(t, err)
}

func TestDefaultHashCost(t *testing.T) {
	f := newFixture(t)
	svc := NewAuthService(f.store, AuthConfig{Secret: testSecret}, f.log)
	assert.Equal(t, bcrypt.DefaultCost, svc.cfg.HashCost)
}
