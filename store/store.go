// Package store persists the arena's entities. Postgres is the production backend; Memory backs local
// runs and tests with the same transactional contract.
package store

import (
	"context"
	"errors"
	"time"

	"esports-arena/models"
)

var (
	ErrNotFound       = errors.New("record not found")
	ErrDuplicate      = errors.New("duplicate record")
	ErrTournamentFull = errors.New("tournament is full")
)

const (
	SortByTime  = "time"
	SortByPrize = "prize"
	SortByEntry = "entry"
)

// TournamentFilter narrows tournament listings. Zero values mean "any".
type TournamentFilter struct {
	Statuses    []string
	GameName    string // case-insensitive substring of Tournament.Game
	StartsAfter *time.Time
	Sort        string
	Limit       int
}

// RegistrationFilter narrows registration counts.
type RegistrationFilter struct {
	UserID       string
	TournamentID string
	Since        *time.Time
}

// PaymentFilter narrows payment request listings.
type PaymentFilter struct {
	UserID string
	Status string
	Limit  int
}

// ResultTotals aggregates a player's results.
type ResultTotals struct {
	Wins     int64
	Earnings int64
}

var (
	_ Store = (*Postgres)(nil)
	_ Store = (*Memory)(nil)
)

// Store is the persistence boundary. Methods called on the Store handed to a Transaction callback run
// inside that transaction; any error returned by the callback rolls every write back.
type Store interface {
	Transaction(ctx context.Context, fn func(tx Store) error) error

	CreateUser(ctx context.Context, u *models.User) error
	GetUser(ctx context.Context, id string) (*models.User, error)
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)
	// LockUser reads the user row and holds it until the surrounding transaction ends.
	LockUser(ctx context.Context, id string) (*models.User, error)
	SetUserCoins(ctx context.Context, id string, coins int64) error
	SetUsername(ctx context.Context, id, username string) error
	SetAvatarURL(ctx context.Context, id, url string) error

	CreateSession(ctx context.Context, s *models.Session) error
	GetSession(ctx context.Context, id string) (*models.Session, error)
	RevokeSession(ctx context.Context, id string, at time.Time) error

	CreateGameAccount(ctx context.Context, a *models.GameAccount) error
	ListGameAccounts(ctx context.Context, userID string) ([]models.GameAccount, error)
	DeleteGameAccount(ctx context.Context, userID, id string) error

	CreateGame(ctx context.Context, g *models.Game) error
	ListActiveGames(ctx context.Context) ([]models.Game, error)
	GetGameBySlug(ctx context.Context, slug string) (*models.Game, error)

	CreateBanner(ctx context.Context, b *models.Banner) error
	ListActiveBanners(ctx context.Context) ([]models.Banner, error)

	CreateTournament(ctx context.Context, t *models.Tournament) error
	GetTournament(ctx context.Context, id string) (*models.Tournament, error)
	ListTournaments(ctx context.Context, f TournamentFilter) ([]models.Tournament, error)
	CountTournaments(ctx context.Context, f TournamentFilter) (int64, error)
	// IncrementOccupancy adds one player, failing with ErrTournamentFull at capacity.
	IncrementOccupancy(ctx context.Context, id string) error
	SetOccupancy(ctx context.Context, id string, players int) error
	SetTournamentStatus(ctx context.Context, id, status string) error

	GetRegistration(ctx context.Context, tournamentID, userID string) (*models.TournamentRegistration, error)
	GetRegistrationByID(ctx context.Context, id string) (*models.TournamentRegistration, error)
	CreateRegistration(ctx context.Context, r *models.TournamentRegistration) error
	ListRegistrationsByTournament(ctx context.Context, tournamentID string) ([]models.TournamentRegistration, error)
	// ListRegistrationsByUser returns the user's registrations with Tournament populated, newest first.
	ListRegistrationsByUser(ctx context.Context, userID string) ([]models.TournamentRegistration, error)
	CountRegistrations(ctx context.Context, f RegistrationFilter) (int64, error)
	RegistrationCounts(ctx context.Context) (map[string]int64, error)

	AppendLedger(ctx context.Context, e *models.WalletTransaction) error
	ListLedger(ctx context.Context, userID string, limit int) ([]models.WalletTransaction, error)

	CreatePaymentRequest(ctx context.Context, p *models.PaymentRequest) error
	GetPaymentRequest(ctx context.Context, id string) (*models.PaymentRequest, error)
	LockPaymentRequest(ctx context.Context, id string) (*models.PaymentRequest, error)
	UpdatePaymentStatus(ctx context.Context, id, status string, note *string) error
	ListPaymentRequests(ctx context.Context, f PaymentFilter) ([]models.PaymentRequest, error)

	GetSettings(ctx context.Context) (*models.PlatformSettings, error)
	SaveSettings(ctx context.Context, s *models.PlatformSettings) error

	CreateResult(ctx context.Context, r *models.TournamentResult) error
	ListResults(ctx context.Context, tournamentID string) ([]models.TournamentResult, error)
	ResultTotals(ctx context.Context, userID string) (ResultTotals, error)
	SumPrizesSince(ctx context.Context, since time.Time) (int64, error)

	GetSpinRecord(ctx context.Context, userID string) (*models.SpinRecord, error)
	SaveSpinRecord(ctx context.Context, r *models.SpinRecord) error

	GetJoinAttempt(ctx context.Context, userID, key string) (*models.JoinAttempt, error)
	CreateJoinAttempt(ctx context.Context, a *models.JoinAttempt) error
	SaveJoinAttempt(ctx context.Context, a *models.JoinAttempt) error
	// AbortStaleJoinAttempts marks pending attempts last touched before cutoff as aborted.
	AbortStaleJoinAttempts(ctx context.Context, cutoff time.Time) (int64, error)
}
