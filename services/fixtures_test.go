package services

import (
	"context"
	"errors"
	"io"
	"testing"
	"time"

	"esports-arena/logger"
	"esports-arena/models"
	"esports-arena/store"

	"github.com/brianvoe/gofakeit/v7"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

// fixture wires services to a Memory store and a controllable clock.
type fixture struct {
	t     *testing.T
	ctx   context.Context
	store *store.Memory
	faker *gofakeit.Faker
	now   time.Time
	log   *logger.Logger
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	f := &fixture{
		t:     t,
		ctx:   context.Background(),
		store: store.NewMemory(),
		faker: gofakeit.New(42),
		now:   time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC),
		log:   logger.Nop(),
	}
	f.store.SetClock(f.clock)
	return f
}

func (f *fixture) clock() time.Time { return f.now }

func (f *fixture) advance(d time.Duration) { f.now = f.now.Add(d) }

func (f *fixture) user(coins int64) *models.User {
	f.t.Helper()
	u := &models.User{
		ID:           uuid.NewString(),
		Email:        f.faker.Email(),
		PasswordHash: "x",
		Coins:        coins,
	}
	require.NoError(f.t, f.store.CreateUser(f.ctx, u))
	return u
}

func (f *fixture) namedUser(coins int64, username string) *models.User {
	f.t.Helper()
	u := f.user(coins)
	require.NoError(f.t, f.store.SetUsername(f.ctx, u.ID, username))
	u.Username = &username
	return u
}

func (f *fixture) gameAccount(userID string) *models.GameAccount {
	f.t.Helper()
	a := &models.GameAccount{
		ID:       uuid.NewString(),
		UserID:   userID,
		GameName: "Free Fire",
		InGameID: f.faker.Numerify("#########"),
	}
	require.NoError(f.t, f.store.CreateGameAccount(f.ctx, a))
	return a
}

func (f *fixture) tournament(opts ...func(*models.Tournament)) *models.Tournament {
	f.t.Helper()
	t := &models.Tournament{
		ID:           uuid.NewString(),
		Title:        f.faker.Company() + " Cup",
		Game:         "Free Fire",
		Mode:         "Squad",
		Status:       models.TournamentStatusUpcoming,
		EntryFee:     30,
		PrizePool:    1000,
		StartTime:    f.now.Add(48 * time.Hour),
		RoomID:       f.faker.Numerify("room-####"),
		RoomPassword: f.faker.Numerify("####"),
		MaxPlayers:   models.DefaultMaxPlayers,
	}
	for _, o := range opts {
		o(t)
	}
	require.NoError(f.t, f.store.CreateTournament(f.ctx, t))
	return t
}

func (f *fixture) coins(userID string) int64 {
	f.t.Helper()
	u, err := f.store.GetUser(f.ctx, userID)
	require.NoError(f.t, err)
	return u.Coins
}

func (f *fixture) ledger(userID string) []models.WalletTransaction {
	f.t.Helper()
	entries, err := f.store.ListLedger(f.ctx, userID, 0)
	require.NoError(f.t, err)
	return entries
}

func (f *fixture) occupancy(tournamentID string) int {
	f.t.Helper()
	t, err := f.store.GetTournament(f.ctx, tournamentID)
	require.NoError(f.t, err)
	return t.CurrentPlayers
}

// register puts a user on a roster directly, bypassing the join path.
func (f *fixture) register(tournamentID, userID string) {
	f.t.Helper()
	require.NoError(f.t, f.store.CreateRegistration(f.ctx, &models.TournamentRegistration{
		ID:           uuid.NewString(),
		TournamentID: tournamentID,
		UserID:       userID,
	}))
	require.NoError(f.t, f.store.IncrementOccupancy(f.ctx, tournamentID))
}

// fakeBlobs records uploads in memory.
type fakeBlobs struct {
	keys []string
	err  error
}

func (b *fakeBlobs) Upload(_ context.Context, key, _ string, body io.Reader) (string, error) {
	if b.err != nil {
		return "", b.err
	}
	if _, err := io.ReadAll(body); err != nil {
		return "", err
	}
	b.keys = append(b.keys, key)
	return "https://cdn.test/" + key, nil
}

var errBoom = errors.New("boom")
