package services

import (
	"testing"
	"time"

	"esports-arena/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTournamentService(f *fixture) *TournamentService {
	s := NewTournamentService(f.store, f.log)
	s.now = f.clock
	return s
}

func withStatus(status string) func(*models.Tournament) {
	return func(t *models.Tournament) { t.Status = status }
}

func TestAdvanceStatusMovesOneStepForward(t *testing.T) {
	f := newFixture(t)
	svc := newTournamentService(f)
	tour := f.tournament()

	_, err := svc.AdvanceStatus(f.ctx, tour.ID, models.TournamentStatusCompleted)
	require.ErrorIs(t, err, ErrInvalidStatusTransition)

	live, err := svc.AdvanceStatus(f.ctx, tour.ID, models.TournamentStatusLive)
	require.NoError(t, err)
	assert.Equal(t, models.TournamentStatusLive, live.Status)

	_, err = svc.AdvanceStatus(f.ctx, tour.ID, models.TournamentStatusUpcoming)
	require.ErrorIs(t, err, ErrInvalidStatusTransition)
	_, err = svc.AdvanceStatus(f.ctx, tour.ID, models.TournamentStatusLive)
	require.ErrorIs(t, err, ErrInvalidStatusTransition)

	done, err := svc.AdvanceStatus(f.ctx, tour.ID, models.TournamentStatusCompleted)
	require.NoError(t, err)
	assert.Equal(t, models.TournamentStatusCompleted, done.Status)

	_, err = svc.AdvanceStatus(f.ctx, tour.ID, "cancelled")
	require.ErrorIs(t, err, ErrInvalidInput)
	_, err = svc.AdvanceStatus(f.ctx, "missing", models.TournamentStatusLive)
	require.ErrorIs(t, err, ErrTournamentNotFound)
}

func TestRecordResultsCreditsPrizes(t *testing.T) {
	f := newFixture(t)
	svc := newTournamentService(f)
	tour := f.tournament(withStatus(models.TournamentStatusCompleted))
	winner := f.namedUser(10, "ace")
	runnerUp := f.user(0)
	f.register(tour.ID, winner.ID)
	f.register(tour.ID, runnerUp.ID)

	saved, err := svc.RecordResults(f.ctx, tour.ID, []ResultInput{
		{UserID: runnerUp.ID, Position: 2, Kills: 3},
		{UserID: winner.ID, Position: 1, Kills: 9, PrizeAmount: 500},
	})
	require.NoError(t, err)
	assert.Len(t, saved, 2)

	assert.Equal(t, int64(510), f.coins(winner.ID))
	assert.Equal(t, int64(0), f.coins(runnerUp.ID))

	entries := f.ledger(winner.ID)
	require.Len(t, entries, 1)
	assert.Equal(t, models.LedgerTypePrize, entries[0].Type)
	assert.Equal(t, int64(510), entries[0].BalanceAfter)
	assert.Contains(t, entries[0].Description, "(#1)")
	assert.Empty(t, f.ledger(runnerUp.ID))

	board, err := svc.Leaderboard(f.ctx, tour.ID)
	require.NoError(t, err)
	require.Len(t, board, 2)
	assert.Equal(t, "ace", board[0].Username)
	assert.Equal(t, 2, board[1].Position)

	_, err = svc.RecordResults(f.ctx, tour.ID, []ResultInput{{UserID: winner.ID, Position: 1, PrizeAmount: 500}})
	require.ErrorIs(t, err, ErrInvalidInput)
	assert.Equal(t, int64(510), f.coins(winner.ID))
}

func TestRecordResultsRejectsBadInput(t *testing.T) {
	f := newFixture(t)
	svc := newTournamentService(f)
	u := f.user(0)
	stranger := f.user(0)
	open := f.tournament()
	done := f.tournament(withStatus(models.TournamentStatusCompleted))
	f.register(open.ID, u.ID)
	f.register(done.ID, u.ID)

	_, err := svc.RecordResults(f.ctx, done.ID, nil)
	require.ErrorIs(t, err, ErrInvalidInput)

	_, err = svc.RecordResults(f.ctx, done.ID, []ResultInput{{UserID: u.ID, Position: 1}, {UserID: u.ID, Position: 2}})
	require.ErrorIs(t, err, ErrInvalidInput)

	_, err = svc.RecordResults(f.ctx, open.ID, []ResultInput{{UserID: u.ID, Position: 1}})
	require.ErrorIs(t, err, ErrInvalidStatusTransition)

	_, err = svc.RecordResults(f.ctx, done.ID, []ResultInput{
		{UserID: u.ID, Position: 1, PrizeAmount: 100},
		{UserID: stranger.ID, Position: 2},
	})
	require.ErrorIs(t, err, ErrInvalidInput)
	assert.Equal(t, int64(0), f.coins(u.ID), "partial results must roll back")

	board, err := svc.Leaderboard(f.ctx, done.ID)
	require.NoError(t, err)
	assert.Empty(t, board)
}

func TestDetailHidesRoomFromNonParticipants(t *testing.T) {
	f := newFixture(t)
	svc := newTournamentService(f)
	tour := f.tournament(func(t *models.Tournament) { t.PerKillCoins = 2 })
	player := f.namedUser(0, "sniper")
	nameless := f.user(0)
	f.register(tour.ID, player.ID)
	f.register(tour.ID, nameless.ID)

	anon, err := svc.Detail(f.ctx, tour.ID, "")
	require.NoError(t, err)
	assert.False(t, anon.Registered)
	assert.Empty(t, anon.Tournament.RoomID)
	assert.Empty(t, anon.Tournament.RoomPassword)
	assert.Equal(t, int64(1000+2*100), anon.Tournament.TotalPrize)
	require.Len(t, anon.Players, 2)
	assert.Equal(t, "sniper", anon.Players[0].Username)
	assert.Equal(t, nameless.DisplayName(), anon.Players[1].Username)
	assert.Nil(t, anon.Leaderboard)

	mine, err := svc.Detail(f.ctx, tour.ID, player.ID)
	require.NoError(t, err)
	assert.True(t, mine.Registered)
	assert.Equal(t, tour.RoomID, mine.Tournament.RoomID)
	assert.Equal(t, tour.RoomPassword, mine.Tournament.RoomPassword)

	_, err = svc.Detail(f.ctx, "missing", "")
	require.ErrorIs(t, err, ErrTournamentNotFound)
}

func TestEligibilityOrdering(t *testing.T) {
	f := newFixture(t)
	svc := newTournamentService(f)
	tour := f.tournament(func(t *models.Tournament) { t.EntryFee = 50 })

	e, err := svc.Eligibility(f.ctx, "", tour.ID, "")
	require.NoError(t, err)
	assert.Equal(t, ReasonUnauthenticated, e.Reason)

	poor := f.user(20)
	e, err = svc.Eligibility(f.ctx, poor.ID, tour.ID, "")
	require.NoError(t, err)
	assert.Equal(t, ReasonInsufficientBalance, e.Reason)
	assert.Equal(t, int64(30), e.Shortfall)

	u := f.user(100)
	e, err = svc.Eligibility(f.ctx, u.ID, tour.ID, "")
	require.NoError(t, err)
	assert.Equal(t, ReasonNoGameAccount, e.Reason)

	acc := f.gameAccount(u.ID)
	e, err = svc.Eligibility(f.ctx, u.ID, tour.ID, "")
	require.NoError(t, err)
	assert.Equal(t, ReasonGameAccountRequired, e.Reason)

	e, err = svc.Eligibility(f.ctx, u.ID, tour.ID, acc.ID)
	require.NoError(t, err)
	assert.True(t, e.Eligible())

	f.register(tour.ID, u.ID)
	e, err = svc.Eligibility(f.ctx, u.ID, tour.ID, acc.ID)
	require.NoError(t, err)
	assert.Equal(t, ReasonAlreadyJoined, e.Reason)
}

func TestEligibilityReportsAlreadyJoinedFirst(t *testing.T) {
	f := newFixture(t)
	svc := newTournamentService(f)
	u := f.user(0)
	tour := f.tournament(func(t *models.Tournament) { t.MaxPlayers = 1; t.EntryFee = 50 })
	f.register(tour.ID, u.ID)

	// broke, no game account and holding the only slot
	e, err := svc.Eligibility(f.ctx, u.ID, tour.ID, "")
	require.NoError(t, err)
	assert.Equal(t, ReasonAlreadyJoined, e.Reason)

	require.NoError(t, f.store.SetTournamentStatus(f.ctx, tour.ID, models.TournamentStatusLive))
	e, err = svc.Eligibility(f.ctx, u.ID, tour.ID, "")
	require.NoError(t, err)
	assert.Equal(t, ReasonAlreadyJoined, e.Reason)
}

func TestEligibilityClosedAndFull(t *testing.T) {
	f := newFixture(t)
	svc := newTournamentService(f)
	u := f.user(100)
	acc := f.gameAccount(u.ID)

	live := f.tournament(withStatus(models.TournamentStatusLive))
	e, err := svc.Eligibility(f.ctx, u.ID, live.ID, acc.ID)
	require.NoError(t, err)
	assert.Equal(t, ReasonRegistrationClosed, e.Reason)

	ends := f.now.Add(-time.Minute)
	late := f.tournament(func(t *models.Tournament) { t.RegistrationEndsAt = &ends })
	e, err = svc.Eligibility(f.ctx, u.ID, late.ID, acc.ID)
	require.NoError(t, err)
	assert.Equal(t, ReasonRegistrationClosed, e.Reason)

	full := f.tournament(func(t *models.Tournament) { t.MaxPlayers = 1 })
	f.register(full.ID, f.user(0).ID)
	e, err = svc.Eligibility(f.ctx, u.ID, full.ID, acc.ID)
	require.NoError(t, err)
	assert.Equal(t, ReasonTournamentFull, e.Reason)
}

func TestListTournaments(t *testing.T) {
	f := newFixture(t)
	svc := newTournamentService(f)
	later := f.tournament(func(t *models.Tournament) { t.Game = "Valorant"; t.StartTime = f.now.Add(72 * time.Hour) })
	sooner := f.tournament(func(t *models.Tournament) { t.StartTime = f.now.Add(time.Hour) })
	f.tournament(withStatus(models.TournamentStatusLive))

	all, err := svc.List(f.ctx, "")
	require.NoError(t, err)
	require.Len(t, all.Tournaments, 3)
	assert.Equal(t, []string{"Free Fire", "Valorant"}, all.Games)
	for _, tour := range all.Tournaments {
		assert.Empty(t, tour.RoomID)
		assert.NotZero(t, tour.TotalPrize)
	}

	upcoming, err := svc.List(f.ctx, models.TournamentStatusUpcoming)
	require.NoError(t, err)
	require.Len(t, upcoming.Tournaments, 2)
	assert.Equal(t, sooner.ID, upcoming.Tournaments[0].ID)
	assert.Equal(t, later.ID, upcoming.Tournaments[1].ID)

	_, err = svc.List(f.ctx, "archived")
	require.ErrorIs(t, err, ErrInvalidInput)
}

func TestMyMatchesTabs(t *testing.T) {
	f := newFixture(t)
	svc := newTournamentService(f)
	u := f.user(0)
	up := f.tournament()
	live := f.tournament(withStatus(models.TournamentStatusLive))
	done := f.tournament(withStatus(models.TournamentStatusCompleted))
	f.tournament() // not joined
	for _, tour := range []*models.Tournament{up, live, done} {
		f.register(tour.ID, u.ID)
	}

	all, err := svc.MyMatches(f.ctx, u.ID, "")
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, done.ID, all[0].TournamentID)

	for tab, want := range map[string]string{TabUpcoming: up.ID, TabLive: live.ID, TabCompleted: done.ID} {
		got, err := svc.MyMatches(f.ctx, u.ID, tab)
		require.NoError(t, err)
		require.Len(t, got, 1, tab)
		assert.Equal(t, want, got[0].TournamentID)
	}

	_, err = svc.MyMatches(f.ctx, u.ID, "finished")
	require.ErrorIs(t, err, ErrInvalidInput)
}

func TestCreateTournament(t *testing.T) {
	f := newFixture(t)
	svc := newTournamentService(f)

	tour, err := svc.Create(f.ctx, CreateTournamentInput{
		Title:     "  Weekend Clash  ",
		Game:      "Free Fire",
		EntryFee:  20,
		PrizePool: 800,
		StartTime: f.now.Add(24 * time.Hour),
	})
	require.NoError(t, err)
	assert.Equal(t, "Weekend Clash", tour.Title)
	assert.Equal(t, models.TournamentStatusUpcoming, tour.Status)
	assert.Equal(t, models.DefaultMaxPlayers, tour.MaxPlayers)
	assert.Equal(t, int64(800), tour.TotalPrize)

	start := f.now.Add(time.Hour)
	ends := start.Add(time.Minute)
	_, err = svc.Create(f.ctx, CreateTournamentInput{Title: "Late", Game: "Free Fire", StartTime: start, RegistrationEndsAt: &ends})
	require.ErrorIs(t, err, ErrInvalidInput)

	_, err = svc.Create(f.ctx, CreateTournamentInput{Title: "No start", Game: "Free Fire"})
	require.ErrorIs(t, err, ErrInvalidInput)

	_, err = svc.Create(f.ctx, CreateTournamentInput{Title: "Negative", Game: "Free Fire", StartTime: start, EntryFee: -1})
	require.ErrorIs(t, err, ErrInvalidInput)
}
