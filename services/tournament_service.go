package services

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"esports-arena/logger"
	"esports-arena/models"
	"esports-arena/store"

	"github.com/google/uuid"
)

// Match tabs for MyMatches.
const (
	TabAll       = "all"
	TabLive      = models.TournamentStatusLive
	TabUpcoming  = models.TournamentStatusUpcoming
	TabCompleted = models.TournamentStatusCompleted
)

// statusOrder ranks statuses; an advance must move exactly one step forward.
var statusOrder = map[string]int{
	models.TournamentStatusUpcoming:  0,
	models.TournamentStatusLive:      1,
	models.TournamentStatusCompleted: 2,
}

type CreateTournamentInput struct {
	Title              string             `json:"title" validate:"required,min=3,max=120"`
	Game               string             `json:"game" validate:"required"`
	Mode               string             `json:"mode"`
	Map                string             `json:"map"`
	Region             string             `json:"region"`
	EntryFee           int64              `json:"entry_fee" validate:"gte=0"`
	PrizePool          int64              `json:"prize_pool" validate:"gte=0"`
	PerKillCoins       int64              `json:"per_kill_coins" validate:"gte=0"`
	PrizeDistribution  []models.PrizeSlot `json:"prize_distribution" validate:"dive"`
	Description        string             `json:"description"`
	Rules              string             `json:"rules"`
	StartTime          time.Time          `json:"start_time" validate:"required"`
	RegistrationEndsAt *time.Time         `json:"registration_ends_at"`
	RoomID             string             `json:"room_id"`
	RoomPassword       string             `json:"room_password"`
	BannerURL          string             `json:"banner_url" validate:"omitempty,url"`
	ThumbnailURL       string             `json:"thumbnail_url" validate:"omitempty,url"`
	MaxPlayers         int                `json:"max_players" validate:"gte=0"`
}

type ResultInput struct {
	UserID      string `json:"user_id" validate:"required"`
	Position    int    `json:"position" validate:"required,gte=1"`
	Kills       int    `json:"kills" validate:"gte=0"`
	PrizeAmount int64  `json:"prize_amount" validate:"gte=0"`
}

// PlayerEntry is one registered player as shown on a tournament page.
type PlayerEntry struct {
	UserID    string    `json:"user_id"`
	Username  string    `json:"username"`
	AvatarURL *string   `json:"avatar_url,omitempty"`
	JoinedAt  time.Time `json:"joined_at"`
}

type TournamentDetail struct {
	Tournament  models.Tournament         `json:"tournament"`
	Players     []PlayerEntry             `json:"players"`
	Registered  bool                      `json:"registered"`
	Leaderboard []models.TournamentResult `json:"leaderboard,omitempty"`
}

type TournamentList struct {
	Tournaments []models.Tournament `json:"tournaments"`
	Games       []string            `json:"games"`
}

type TournamentService struct {
	store store.Store
	log   *logger.Logger
	now   func() time.Time
}

func NewTournamentService(st store.Store, log *logger.Logger) *TournamentService {
	return &TournamentService{store: st, log: log.With("component", "tournaments"), now: time.Now}
}

// List returns tournaments by start time, optionally of one status, plus the distinct game names among them.
func (s *TournamentService) List(ctx context.Context, status string) (*TournamentList, error) {
	f := store.TournamentFilter{Sort: store.SortByTime}
	if status != "" && status != TabAll {
		if _, ok := statusOrder[status]; !ok {
			return nil, fmt.Errorf("%w: unknown status %q", ErrInvalidInput, status)
		}
		f.Statuses = []string{status}
	}
	list, err := s.store.ListTournaments(ctx, f)
	if err != nil {
		return nil, fmt.Errorf("failed to list tournaments: %w", err)
	}

	seen := make(map[string]struct{})
	games := make([]string, 0)
	for i := range list {
		decorate(&list[i])
		hideRoom(&list[i])
		if _, ok := seen[list[i].Game]; !ok && list[i].Game != "" {
			seen[list[i].Game] = struct{}{}
			games = append(games, list[i].Game)
		}
	}
	sort.Strings(games)
	return &TournamentList{Tournaments: list, Games: games}, nil
}

// Detail loads a tournament with its roster. Room credentials are kept only for registered viewers.
func (s *TournamentService) Detail(ctx context.Context, tournamentID, viewerID string) (*TournamentDetail, error) {
	t, err := s.getTournament(ctx, s.store, tournamentID)
	if err != nil {
		return nil, err
	}
	regs, err := s.store.ListRegistrationsByTournament(ctx, t.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to list registrations: %w", err)
	}

	out := &TournamentDetail{Players: make([]PlayerEntry, 0, len(regs))}
	for _, r := range regs {
		if viewerID != "" && r.UserID == viewerID {
			out.Registered = true
		}
		entry := PlayerEntry{UserID: r.UserID, Username: "Player", JoinedAt: r.CreatedAt}
		if u, err := s.store.GetUser(ctx, r.UserID); err == nil {
			entry.Username = u.DisplayName()
			entry.AvatarURL = u.AvatarURL
		}
		out.Players = append(out.Players, entry)
	}

	decorate(t)
	if !out.Registered {
		hideRoom(t)
	}
	out.Tournament = *t

	if t.Status == models.TournamentStatusCompleted {
		if out.Leaderboard, err = s.Leaderboard(ctx, t.ID); err != nil {
			return nil, err
		}
	}
	return out, nil
}

// Leaderboard returns results by position with usernames filled in.
func (s *TournamentService) Leaderboard(ctx context.Context, tournamentID string) ([]models.TournamentResult, error) {
	results, err := s.store.ListResults(ctx, tournamentID)
	if err != nil {
		return nil, fmt.Errorf("failed to list results: %w", err)
	}
	for i := range results {
		results[i].Username = "Player"
		if u, err := s.store.GetUser(ctx, results[i].UserID); err == nil {
			results[i].Username = u.DisplayName()
		}
	}
	return results, nil
}

// Eligibility evaluates whether viewerID could join now. An empty viewerID is an anonymous visitor.
func (s *TournamentService) Eligibility(ctx context.Context, viewerID, tournamentID, gameAccountID string) (Eligibility, error) {
	t, err := s.getTournament(ctx, s.store, tournamentID)
	if err != nil {
		return Eligibility{}, err
	}
	if viewerID == "" {
		return EvaluateEligibility(EligibilityInput{}), nil
	}
	user, err := s.store.GetUser(ctx, viewerID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return Eligibility{Reason: ReasonUnauthenticated}, nil
		}
		return Eligibility{}, fmt.Errorf("failed to load user: %w", err)
	}
	if _, err := s.store.GetRegistration(ctx, t.ID, viewerID); err == nil {
		return Eligibility{Reason: ReasonAlreadyJoined}, nil
	} else if !errors.Is(err, store.ErrNotFound) {
		return Eligibility{}, fmt.Errorf("failed to check registration: %w", err)
	}
	accounts, err := s.store.ListGameAccounts(ctx, viewerID)
	if err != nil {
		return Eligibility{}, fmt.Errorf("failed to load game accounts: %w", err)
	}

	verdict := EvaluateEligibility(EligibilityInput{
		Authenticated:     true,
		Balance:           user.Coins,
		EntryFee:          t.EntryFee,
		GameAccountIDs:    accountIDs(accounts),
		SelectedAccountID: gameAccountID,
	})
	if !verdict.Eligible() {
		return verdict, nil
	}
	if !s.registrationOpen(t) {
		return Eligibility{Reason: ReasonRegistrationClosed}, nil
	}
	if t.IsFull() {
		return Eligibility{Reason: ReasonTournamentFull}, nil
	}
	return verdict, nil
}

func (s *TournamentService) registrationOpen(t *models.Tournament) bool {
	if t.Status != models.TournamentStatusUpcoming {
		return false
	}
	return t.RegistrationEndsAt == nil || s.now().Before(*t.RegistrationEndsAt)
}

// Create adds an upcoming tournament. A zero capacity falls back to DefaultMaxPlayers.
func (s *TournamentService) Create(ctx context.Context, in CreateTournamentInput) (*models.Tournament, error) {
	title := strings.TrimSpace(in.Title)
	game := strings.TrimSpace(in.Game)
	if title == "" || game == "" {
		return nil, fmt.Errorf("%w: title and game are required", ErrInvalidInput)
	}
	if in.StartTime.IsZero() {
		return nil, fmt.Errorf("%w: start_time is required", ErrInvalidInput)
	}
	if in.RegistrationEndsAt != nil && in.RegistrationEndsAt.After(in.StartTime) {
		return nil, fmt.Errorf("%w: registration must end before the start time", ErrInvalidInput)
	}
	if in.EntryFee < 0 || in.PrizePool < 0 || in.PerKillCoins < 0 || in.MaxPlayers < 0 {
		return nil, fmt.Errorf("%w: amounts and capacity cannot be negative", ErrInvalidInput)
	}

	maxPlayers := in.MaxPlayers
	if maxPlayers == 0 {
		maxPlayers = models.DefaultMaxPlayers
	}
	t := &models.Tournament{
		ID:                 uuid.NewString(),
		Title:              title,
		Game:               game,
		Mode:               in.Mode,
		Map:                in.Map,
		Region:             in.Region,
		Status:             models.TournamentStatusUpcoming,
		EntryFee:           in.EntryFee,
		PrizePool:          in.PrizePool,
		PerKillCoins:       in.PerKillCoins,
		PrizeDistribution:  in.PrizeDistribution,
		Description:        in.Description,
		Rules:              in.Rules,
		StartTime:          in.StartTime,
		RegistrationEndsAt: in.RegistrationEndsAt,
		RoomID:             in.RoomID,
		RoomPassword:       in.RoomPassword,
		BannerURL:          in.BannerURL,
		ThumbnailURL:       in.ThumbnailURL,
		MaxPlayers:         maxPlayers,
	}
	if err := s.store.CreateTournament(ctx, t); err != nil {
		return nil, fmt.Errorf("failed to create tournament: %w", err)
	}
	decorate(t)
	s.log.Info("🏆 [TOURNAMENT] created", "tournament_id", t.ID, "game", t.Game, "entry_fee", t.EntryFee)
	return t, nil
}

// AdvanceStatus moves a tournament one step along upcoming → live → completed.
func (s *TournamentService) AdvanceStatus(ctx context.Context, tournamentID, status string) (*models.Tournament, error) {
	next, ok := statusOrder[status]
	if !ok {
		return nil, fmt.Errorf("%w: unknown status %q", ErrInvalidInput, status)
	}
	var out *models.Tournament
	err := s.store.Transaction(ctx, func(tx store.Store) error {
		t, err := s.getTournament(ctx, tx, tournamentID)
		if err != nil {
			return err
		}
		if next != statusOrder[t.Status]+1 {
			return fmt.Errorf("%w: %s → %s", ErrInvalidStatusTransition, t.Status, status)
		}
		if err := tx.SetTournamentStatus(ctx, t.ID, status); err != nil {
			return fmt.Errorf("failed to update status: %w", err)
		}
		t.Status = status
		out = t
		return nil
	})
	if err != nil {
		return nil, err
	}
	decorate(out)
	s.log.Info("[TOURNAMENT] status advanced", "tournament_id", out.ID, "status", status)
	return out, nil
}

// RecordResults stores final standings of a completed tournament and credits each prize with a ledger
// entry, all in one transaction.
func (s *TournamentService) RecordResults(ctx context.Context, tournamentID string, results []ResultInput) ([]models.TournamentResult, error) {
	if len(results) == 0 {
		return nil, fmt.Errorf("%w: no results given", ErrInvalidInput)
	}
	seen := make(map[string]struct{}, len(results))
	for _, r := range results {
		if r.UserID == "" || r.Position < 1 || r.Kills < 0 || r.PrizeAmount < 0 {
			return nil, fmt.Errorf("%w: malformed result for %q", ErrInvalidInput, r.UserID)
		}
		if _, dup := seen[r.UserID]; dup {
			return nil, fmt.Errorf("%w: user %s listed twice", ErrInvalidInput, r.UserID)
		}
		seen[r.UserID] = struct{}{}
	}

	var saved []models.TournamentResult
	err := s.store.Transaction(ctx, func(tx store.Store) error {
		t, err := s.getTournament(ctx, tx, tournamentID)
		if err != nil {
			return err
		}
		if t.Status != models.TournamentStatusCompleted {
			return fmt.Errorf("%w: tournament is %s", ErrInvalidStatusTransition, t.Status)
		}
		existing, err := tx.ListResults(ctx, t.ID)
		if err != nil {
			return fmt.Errorf("failed to list results: %w", err)
		}
		if len(existing) > 0 {
			return fmt.Errorf("%w: results already recorded", ErrInvalidInput)
		}

		for _, in := range results {
			if _, err := tx.GetRegistration(ctx, t.ID, in.UserID); err != nil {
				if errors.Is(err, store.ErrNotFound) {
					return fmt.Errorf("%w: user %s is not registered", ErrInvalidInput, in.UserID)
				}
				return fmt.Errorf("failed to check registration: %w", err)
			}
			res := models.TournamentResult{
				ID:           uuid.NewString(),
				TournamentID: t.ID,
				UserID:       in.UserID,
				Position:     in.Position,
				Kills:        in.Kills,
				PrizeAmount:  in.PrizeAmount,
			}
			if err := tx.CreateResult(ctx, &res); err != nil {
				return fmt.Errorf("failed to save result: %w", err)
			}
			if in.PrizeAmount > 0 {
				if err := creditPrize(ctx, tx, t, &res); err != nil {
					return err
				}
			}
			saved = append(saved, res)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.log.Info("🏅 [TOURNAMENT] results recorded", "tournament_id", tournamentID, "count", len(saved))
	return saved, nil
}

func creditPrize(ctx context.Context, tx store.Store, t *models.Tournament, res *models.TournamentResult) error {
	user, err := tx.LockUser(ctx, res.UserID)
	if err != nil {
		return fmt.Errorf("failed to lock user: %w", err)
	}
	balance := user.Coins + res.PrizeAmount
	if err := tx.SetUserCoins(ctx, user.ID, balance); err != nil {
		return fmt.Errorf("failed to credit prize: %w", err)
	}
	ref := t.ID
	return tx.AppendLedger(ctx, &models.WalletTransaction{
		ID:           uuid.NewString(),
		UserID:       user.ID,
		Amount:       res.PrizeAmount,
		BalanceAfter: balance,
		Type:         models.LedgerTypePrize,
		Description:  fmt.Sprintf("Prize for %s (#%d)", t.Title, res.Position),
		ReferenceID:  &ref,
	})
}

// MyMatches lists the user's registrations, newest first, narrowed to one tab.
func (s *TournamentService) MyMatches(ctx context.Context, userID, tab string) ([]models.TournamentRegistration, error) {
	if tab == "" {
		tab = TabAll
	}
	if tab != TabAll {
		if _, ok := statusOrder[tab]; !ok {
			return nil, fmt.Errorf("%w: unknown tab %q", ErrInvalidInput, tab)
		}
	}
	regs, err := s.store.ListRegistrationsByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list registrations: %w", err)
	}
	out := make([]models.TournamentRegistration, 0, len(regs))
	for _, r := range regs {
		if r.Tournament == nil {
			continue
		}
		if tab != TabAll && r.Tournament.Status != tab {
			continue
		}
		decorate(r.Tournament)
		out = append(out, r)
	}
	return out, nil
}

func (s *TournamentService) getTournament(ctx context.Context, st store.Store, id string) (*models.Tournament, error) {
	t, err := st.GetTournament(ctx, id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, ErrTournamentNotFound
		}
		return nil, fmt.Errorf("failed to load tournament: %w", err)
	}
	return t, nil
}

func hideRoom(t *models.Tournament) {
	t.RoomID = ""
	t.RoomPassword = ""
}
