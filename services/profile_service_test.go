package services

import (
	"strings"
	"testing"

	"esports-arena/models"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newProfileService(f *fixture, blobs BlobStore) *ProfileService {
	s := NewProfileService(f.store, blobs, f.log)
	s.now = f.clock
	return s
}

func TestWinRateRounds(t *testing.T) {
	assert.Equal(t, 0, winRate(0, 0))
	assert.Equal(t, 33, winRate(1, 3))
	assert.Equal(t, 67, winRate(2, 3))
	assert.Equal(t, 100, winRate(4, 4))
}

func TestProfileStats(t *testing.T) {
	f := newFixture(t)
	svc := newProfileService(f, nil)
	u := f.user(0)

	for i, pos := range []int{1, 2, 1} {
		tour := f.tournament(withStatus(models.TournamentStatusCompleted))
		f.register(tour.ID, u.ID)
		require.NoError(t, f.store.CreateResult(f.ctx, &models.TournamentResult{
			ID: uuid.NewString(), TournamentID: tour.ID, UserID: u.ID, Position: pos, PrizeAmount: int64(100 * (i + 1)),
		}))
	}

	p, err := svc.Me(f.ctx, u.ID)
	require.NoError(t, err)
	assert.Equal(t, u.ID, p.User.ID)
	assert.Equal(t, models.PlayerStats{Matches: 3, Wins: 2, Earnings: 600, WinRate: 67}, p.Stats)

	_, err = svc.Me(f.ctx, "ghost")
	require.ErrorIs(t, err, ErrUserNotFound)
}

func TestSetUsername(t *testing.T) {
	f := newFixture(t)
	svc := newProfileService(f, nil)
	u := f.user(0)

	updated, err := svc.SetUsername(f.ctx, u.ID, "  headshot  ")
	require.NoError(t, err)
	require.NotNil(t, updated.Username)
	assert.Equal(t, "headshot", *updated.Username)

	_, err = svc.SetUsername(f.ctx, u.ID, "ab")
	require.ErrorIs(t, err, ErrInvalidInput)
	_, err = svc.SetUsername(f.ctx, u.ID, strings.Repeat("x", 25))
	require.ErrorIs(t, err, ErrInvalidInput)
	_, err = svc.SetUsername(f.ctx, "ghost", "validname")
	require.ErrorIs(t, err, ErrUserNotFound)
}

func TestUploadAvatar(t *testing.T) {
	f := newFixture(t)
	blobs := &fakeBlobs{}
	svc := newProfileService(f, blobs)
	u := f.user(0)

	updated, err := svc.UploadAvatar(f.ctx, u.ID, Upload{Filename: "me.webp", ContentType: "image/webp", Body: strings.NewReader("img")})
	require.NoError(t, err)
	require.Len(t, blobs.keys, 1)
	assert.True(t, strings.HasPrefix(blobs.keys[0], "avatars/"+u.ID+"-"))
	assert.True(t, strings.HasSuffix(blobs.keys[0], ".webp"))
	require.NotNil(t, updated.AvatarURL)
	assert.Equal(t, "https://cdn.test/"+blobs.keys[0], *updated.AvatarURL)

	failing := newProfileService(f, &fakeBlobs{err: errBoom})
	_, err = failing.UploadAvatar(f.ctx, u.ID, Upload{Filename: "me.png", Body: strings.NewReader("img")})
	require.ErrorIs(t, err, errBoom)

	_, err = newProfileService(f, nil).UploadAvatar(f.ctx, u.ID, Upload{Body: strings.NewReader("img")})
	require.Error(t, err)
}

func TestGameAccounts(t *testing.T) {
	f := newFixture(t)
	svc := newProfileService(f, nil)
	u := f.user(0)

	acc, err := svc.AddGameAccount(f.ctx, u.ID, CreateGameAccountInput{InGameID: " 123456789 "})
	require.NoError(t, err)
	assert.Equal(t, "Universal", acc.GameName)
	assert.Equal(t, "123456789", acc.InGameID)

	_, err = svc.AddGameAccount(f.ctx, u.ID, CreateGameAccountInput{GameName: "Free Fire", InGameID: "  "})
	require.ErrorIs(t, err, ErrInvalidInput)

	list, err := svc.GameAccounts(f.ctx, u.ID)
	require.NoError(t, err)
	require.Len(t, list, 1)

	other := f.user(0)
	require.ErrorIs(t, svc.RemoveGameAccount(f.ctx, other.ID, acc.ID), ErrGameAccountNotFound)
	require.NoError(t, svc.RemoveGameAccount(f.ctx, u.ID, acc.ID))
	require.ErrorIs(t, svc.RemoveGameAccount(f.ctx, u.ID, acc.ID), ErrGameAccountNotFound)

	list, err = svc.GameAccounts(f.ctx, u.ID)
	require.NoError(t, err)
	assert.Empty(t, list)
}
