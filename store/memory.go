package store

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"esports-arena/models"
)

type memState struct {
	users         []models.User
	sessions      []models.Session
	gameAccounts  []models.GameAccount
	games         []models.Game
	banners       []models.Banner
	tournaments   []models.Tournament
	registrations []models.TournamentRegistration
	ledger        []models.WalletTransaction
	payments      []models.PaymentRequest
	settings      *models.PlatformSettings
	results       []models.TournamentResult
	spins         []models.SpinRecord
	attempts      []models.JoinAttempt
}

func (s *memState) clone() *memState {
	c := &memState{
		users:         append([]models.User(nil), s.users...),
		sessions:      append([]models.Session(nil), s.sessions...),
		gameAccounts:  append([]models.GameAccount(nil), s.gameAccounts...),
		games:         append([]models.Game(nil), s.games...),
		banners:       append([]models.Banner(nil), s.banners...),
		tournaments:   append([]models.Tournament(nil), s.tournaments...),
		registrations: append([]models.TournamentRegistration(nil), s.registrations...),
		ledger:        append([]models.WalletTransaction(nil), s.ledger...),
		payments:      append([]models.PaymentRequest(nil), s.payments...),
		results:       append([]models.TournamentResult(nil), s.results...),
		spins:         append([]models.SpinRecord(nil), s.spins...),
		attempts:      append([]models.JoinAttempt(nil), s.attempts...),
	}
	if s.settings != nil {
		cp := *s.settings
		c.settings = &cp
	}
	return c
}

// Memory is an in-process Store. Transactions are serialized and restore a snapshot on error.
type Memory struct {
	mu       *sync.Mutex
	state    *memState
	failures map[string]error
	inTx     bool
	now      func() time.Time
}

func NewMemory() *Memory {
	return &Memory{
		mu:       &sync.Mutex{},
		state:    &memState{},
		failures: map[string]error{},
		now:      time.Now,
	}
}

// FailOn makes the named write method return err until cleared with a nil err.
func (m *Memory) FailOn(op string, err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err == nil {
		delete(m.failures, op)
		return
	}
	m.failures[op] = err
}

// SetClock overrides the timestamp source used for created/updated times.
func (m *Memory) SetClock(now func() time.Time) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.now = now
}

func (m *Memory) lock() func() {
	if m.inTx {
		return func() {}
	}
	m.mu.Lock()
	return m.mu.Unlock
}

func (m *Memory) injected(op string) error {
	return m.failures[op]
}

func (m *Memory) Transaction(_ context.Context, fn func(tx Store) error) error {
	if m.inTx {
		return fn(m)
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	snapshot := m.state.clone()
	tx := &Memory{mu: m.mu, state: m.state, failures: m.failures, inTx: true, now: m.now}
	if err := fn(tx); err != nil {
		*m.state = *snapshot
		return err
	}
	return nil
}

func (m *Memory) stamp(t *time.Time) {
	if t.IsZero() {
		*t = m.now()
	}
}

func findIndex[T any](items []T, match func(*T) bool) int {
	for i := range items {
		if match(&items[i]) {
			return i
		}
	}
	return -1
}

func get[T any](items []T, match func(*T) bool) (*T, error) {
	i := findIndex(items, match)
	if i < 0 {
		return nil, ErrNotFound
	}
	out := items[i]
	return &out, nil
}

// --- users ---

func (m *Memory) CreateUser(_ context.Context, u *models.User) error {
	defer m.lock()()
	if err := m.injected("CreateUser"); err != nil {
		return err
	}
	if findIndex(m.state.users, func(x *models.User) bool { return x.ID == u.ID || x.Email == u.Email }) >= 0 {
		return fmt.Errorf("%w: user %s", ErrDuplicate, u.Email)
	}
	m.stamp(&u.CreatedAt)
	u.UpdatedAt = u.CreatedAt
	m.state.users = append(m.state.users, *u)
	return nil
}

func (m *Memory) GetUser(_ context.Context, id string) (*models.User, error) {
	defer m.lock()()
	return get(m.state.users, func(x *models.User) bool { return x.ID == id })
}

func (m *Memory) GetUserByEmail(_ context.Context, email string) (*models.User, error) {
	defer m.lock()()
	return get(m.state.users, func(x *models.User) bool { return x.Email == email })
}

func (m *Memory) LockUser(ctx context.Context, id string) (*models.User, error) {
	return m.GetUser(ctx, id)
}

func (m *Memory) updateUser(op, id string, apply func(*models.User)) error {
	defer m.lock()()
	if err := m.injected(op); err != nil {
		return err
	}
	i := findIndex(m.state.users, func(x *models.User) bool { return x.ID == id })
	if i < 0 {
		return ErrNotFound
	}
	apply(&m.state.users[i])
	m.state.users[i].UpdatedAt = m.now()
	return nil
}

func (m *Memory) SetUserCoins(_ context.Context, id string, coins int64) error {
	if coins < 0 {
		return fmt.Errorf("coins check violated for user %s", id)
	}
	return m.updateUser("SetUserCoins", id, func(u *models.User) { u.Coins = coins })
}

func (m *Memory) SetUsername(_ context.Context, id, username string) error {
	return m.updateUser("SetUsername", id, func(u *models.User) { u.Username = &username })
}

func (m *Memory) SetAvatarURL(_ context.Context, id, url string) error {
	return m.updateUser("SetAvatarURL", id, func(u *models.User) { u.AvatarURL = &url })
}

// --- sessions ---

func (m *Memory) CreateSession(_ context.Context, s *models.Session) error {
	defer m.lock()()
	if err := m.injected("CreateSession"); err != nil {
		return err
	}
	m.stamp(&s.CreatedAt)
	m.state.sessions = append(m.state.sessions, *s)
	return nil
}

func (m *Memory) GetSession(_ context.Context, id string) (*models.Session, error) {
	defer m.lock()()
	return get(m.state.sessions, func(x *models.Session) bool { return x.ID == id })
}

func (m *Memory) RevokeSession(_ context.Context, id string, at time.Time) error {
	defer m.lock()()
	i := findIndex(m.state.sessions, func(x *models.Session) bool { return x.ID == id && x.RevokedAt == nil })
	if i < 0 {
		return ErrNotFound
	}
	m.state.sessions[i].RevokedAt = &at
	return nil
}

// --- game accounts ---

func (m *Memory) CreateGameAccount(_ context.Context, a *models.GameAccount) error {
	defer m.lock()()
	if err := m.injected("CreateGameAccount"); err != nil {
		return err
	}
	m.stamp(&a.CreatedAt)
	m.state.gameAccounts = append(m.state.gameAccounts, *a)
	return nil
}

func (m *Memory) ListGameAccounts(_ context.Context, userID string) ([]models.GameAccount, error) {
	defer m.lock()()
	var out []models.GameAccount
	for _, a := range m.state.gameAccounts {
		if a.UserID == userID {
			out = append(out, a)
		}
	}
	return out, nil
}

func (m *Memory) DeleteGameAccount(_ context.Context, userID, id string) error {
	defer m.lock()()
	i := findIndex(m.state.gameAccounts, func(x *models.GameAccount) bool { return x.ID == id && x.UserID == userID })
	if i < 0 {
		return ErrNotFound
	}
	m.state.gameAccounts = append(m.state.gameAccounts[:i:i], m.state.gameAccounts[i+1:]...)
	return nil
}

// --- games & banners ---

func (m *Memory) CreateGame(_ context.Context, g *models.Game) error {
	defer m.lock()()
	if findIndex(m.state.games, func(x *models.Game) bool { return x.Slug == g.Slug }) >= 0 {
		return fmt.Errorf("%w: game slug %s", ErrDuplicate, g.Slug)
	}
	m.stamp(&g.CreatedAt)
	g.UpdatedAt = g.CreatedAt
	m.state.games = append(m.state.games, *g)
	return nil
}

func (m *Memory) ListActiveGames(_ context.Context) ([]models.Game, error) {
	defer m.lock()()
	var out []models.Game
	for _, g := range m.state.games {
		if g.IsActive {
			out = append(out, g)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].SortOrder < out[j].SortOrder })
	return out, nil
}

func (m *Memory) GetGameBySlug(_ context.Context, slug string) (*models.Game, error) {
	defer m.lock()()
	return get(m.state.games, func(x *models.Game) bool { return x.Slug == slug && x.IsActive })
}

func (m *Memory) CreateBanner(_ context.Context, b *models.Banner) error {
	defer m.lock()()
	m.stamp(&b.CreatedAt)
	m.state.banners = append(m.state.banners, *b)
	return nil
}

func (m *Memory) ListActiveBanners(_ context.Context) ([]models.Banner, error) {
	defer m.lock()()
	var out []models.Banner
	for _, b := range m.state.banners {
		if b.IsActive {
			out = append(out, b)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].SortOrder < out[j].SortOrder })
	return out, nil
}

// --- tournaments ---

func (m *Memory) CreateTournament(_ context.Context, t *models.Tournament) error {
	defer m.lock()()
	if findIndex(m.state.tournaments, func(x *models.Tournament) bool { return x.ID == t.ID }) >= 0 {
		return fmt.Errorf("%w: tournament %s", ErrDuplicate, t.ID)
	}
	m.stamp(&t.CreatedAt)
	t.UpdatedAt = t.CreatedAt
	m.state.tournaments = append(m.state.tournaments, *t)
	return nil
}

func (m *Memory) GetTournament(_ context.Context, id string) (*models.Tournament, error) {
	defer m.lock()()
	return get(m.state.tournaments, func(x *models.Tournament) bool { return x.ID == id })
}

func matchTournament(t *models.Tournament, f TournamentFilter) bool {
	if len(f.Statuses) > 0 {
		ok := false
		for _, s := range f.Statuses {
			if t.Status == s {
				ok = true
				break
			}
		}
		if !ok {
			return false
		}
	}
	if f.GameName != "" && !strings.Contains(strings.ToLower(t.Game), strings.ToLower(f.GameName)) {
		return false
	}
	if f.StartsAfter != nil && t.StartTime.Before(*f.StartsAfter) {
		return false
	}
	return true
}

func (m *Memory) ListTournaments(_ context.Context, f TournamentFilter) ([]models.Tournament, error) {
	defer m.lock()()
	var out []models.Tournament
	for i := range m.state.tournaments {
		if matchTournament(&m.state.tournaments[i], f) {
			out = append(out, m.state.tournaments[i])
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		switch f.Sort {
		case SortByPrize:
			return out[i].PrizePool > out[j].PrizePool
		case SortByEntry:
			return out[i].EntryFee < out[j].EntryFee
		default:
			return out[i].StartTime.Before(out[j].StartTime)
		}
	})
	if f.Limit > 0 && len(out) > f.Limit {
		out = out[:f.Limit]
	}
	return out, nil
}

func (m *Memory) CountTournaments(_ context.Context, f TournamentFilter) (int64, error) {
	defer m.lock()()
	var n int64
	for i := range m.state.tournaments {
		if matchTournament(&m.state.tournaments[i], f) {
			n++
		}
	}
	return n, nil
}

func (m *Memory) updateTournament(op, id string, apply func(*models.Tournament) error) error {
	defer m.lock()()
	if err := m.injected(op); err != nil {
		return err
	}
	i := findIndex(m.state.tournaments, func(x *models.Tournament) bool { return x.ID == id })
	if i < 0 {
		return ErrNotFound
	}
	return apply(&m.state.tournaments[i])
}

func (m *Memory) IncrementOccupancy(_ context.Context, id string) error {
	return m.updateTournament("IncrementOccupancy", id, func(t *models.Tournament) error {
		if t.IsFull() {
			return ErrTournamentFull
		}
		t.CurrentPlayers++
		return nil
	})
}

func (m *Memory) SetOccupancy(_ context.Context, id string, players int) error {
	return m.updateTournament("SetOccupancy", id, func(t *models.Tournament) error {
		t.CurrentPlayers = players
		return nil
	})
}

func (m *Memory) SetTournamentStatus(_ context.Context, id, status string) error {
	return m.updateTournament("SetTournamentStatus", id, func(t *models.Tournament) error {
		t.Status = status
		t.UpdatedAt = m.now()
		return nil
	})
}

// --- registrations ---

func (m *Memory) GetRegistration(_ context.Context, tournamentID, userID string) (*models.TournamentRegistration, error) {
	defer m.lock()()
	return get(m.state.registrations, func(x *models.TournamentRegistration) bool {
		return x.TournamentID == tournamentID && x.UserID == userID
	})
}

func (m *Memory) GetRegistrationByID(_ context.Context, id string) (*models.TournamentRegistration, error) {
	defer m.lock()()
	return get(m.state.registrations, func(x *models.TournamentRegistration) bool { return x.ID == id })
}

func (m *Memory) CreateRegistration(_ context.Context, r *models.TournamentRegistration) error {
	defer m.lock()()
	if err := m.injected("CreateRegistration"); err != nil {
		return err
	}
	if findIndex(m.state.registrations, func(x *models.TournamentRegistration) bool {
		return x.TournamentID == r.TournamentID && x.UserID == r.UserID
	}) >= 0 {
		return fmt.Errorf("%w: registration %s/%s", ErrDuplicate, r.TournamentID, r.UserID)
	}
	m.stamp(&r.CreatedAt)
	stored := *r
	stored.Tournament = nil
	m.state.registrations = append(m.state.registrations, stored)
	return nil
}

func (m *Memory) ListRegistrationsByTournament(_ context.Context, tournamentID string) ([]models.TournamentRegistration, error) {
	defer m.lock()()
	var out []models.TournamentRegistration
	for _, r := range m.state.registrations {
		if r.TournamentID == tournamentID {
			out = append(out, r)
		}
	}
	return out, nil
}

func (m *Memory) ListRegistrationsByUser(_ context.Context, userID string) ([]models.TournamentRegistration, error) {
	defer m.lock()()
	var out []models.TournamentRegistration
	for i := len(m.state.registrations) - 1; i >= 0; i-- {
		r := m.state.registrations[i]
		if r.UserID != userID {
			continue
		}
		if t, err := get(m.state.tournaments, func(x *models.Tournament) bool { return x.ID == r.TournamentID }); err == nil {
			r.Tournament = t
		}
		out = append(out, r)
	}
	return out, nil
}

func (m *Memory) CountRegistrations(_ context.Context, f RegistrationFilter) (int64, error) {
	defer m.lock()()
	var n int64
	for _, r := range m.state.registrations {
		if f.UserID != "" && r.UserID != f.UserID {
			continue
		}
		if f.TournamentID != "" && r.TournamentID != f.TournamentID {
			continue
		}
		if f.Since != nil && r.CreatedAt.Before(*f.Since) {
			continue
		}
		n++
	}
	return n, nil
}

func (m *Memory) RegistrationCounts(_ context.Context) (map[string]int64, error) {
	defer m.lock()()
	out := map[string]int64{}
	for _, r := range m.state.registrations {
		out[r.TournamentID]++
	}
	return out, nil
}

// --- ledger ---

func (m *Memory) AppendLedger(_ context.Context, e *models.WalletTransaction) error {
	defer m.lock()()
	if err := m.injected("AppendLedger"); err != nil {
		return err
	}
	m.stamp(&e.CreatedAt)
	m.state.ledger = append(m.state.ledger, *e)
	return nil
}

func (m *Memory) ListLedger(_ context.Context, userID string, limit int) ([]models.WalletTransaction, error) {
	defer m.lock()()
	var out []models.WalletTransaction
	for i := len(m.state.ledger) - 1; i >= 0; i-- {
		if m.state.ledger[i].UserID != userID {
			continue
		}
		out = append(out, m.state.ledger[i])
		if limit > 0 && len(out) == limit {
			break
		}
	}
	return out, nil
}

// --- payment requests ---

func (m *Memory) CreatePaymentRequest(_ context.Context, p *models.PaymentRequest) error {
	defer m.lock()()
	if err := m.injected("CreatePaymentRequest"); err != nil {
		return err
	}
	m.stamp(&p.CreatedAt)
	p.UpdatedAt = p.CreatedAt
	m.state.payments = append(m.state.payments, *p)
	return nil
}

func (m *Memory) GetPaymentRequest(_ context.Context, id string) (*models.PaymentRequest, error) {
	defer m.lock()()
	return get(m.state.payments, func(x *models.PaymentRequest) bool { return x.ID == id })
}

func (m *Memory) LockPaymentRequest(ctx context.Context, id string) (*models.PaymentRequest, error) {
	return m.GetPaymentRequest(ctx, id)
}

func (m *Memory) UpdatePaymentStatus(_ context.Context, id, status string, note *string) error {
	defer m.lock()()
	if err := m.injected("UpdatePaymentStatus"); err != nil {
		return err
	}
	i := findIndex(m.state.payments, func(x *models.PaymentRequest) bool { return x.ID == id })
	if i < 0 {
		return ErrNotFound
	}
	m.state.payments[i].Status = status
	m.state.payments[i].AdminNote = note
	m.state.payments[i].UpdatedAt = m.now()
	return nil
}

func (m *Memory) ListPaymentRequests(_ context.Context, f PaymentFilter) ([]models.PaymentRequest, error) {
	defer m.lock()()
	var out []models.PaymentRequest
	for i := len(m.state.payments) - 1; i >= 0; i-- {
		p := m.state.payments[i]
		if f.UserID != "" && p.UserID != f.UserID {
			continue
		}
		if f.Status != "" && p.Status != f.Status {
			continue
		}
		out = append(out, p)
		if f.Limit > 0 && len(out) == f.Limit {
			break
		}
	}
	return out, nil
}

// --- settings ---

func (m *Memory) GetSettings(_ context.Context) (*models.PlatformSettings, error) {
	defer m.lock()()
	if m.state.settings == nil {
		return nil, ErrNotFound
	}
	cp := *m.state.settings
	return &cp, nil
}

func (m *Memory) SaveSettings(_ context.Context, s *models.PlatformSettings) error {
	defer m.lock()()
	s.ID = models.SettingsRowID
	s.UpdatedAt = m.now()
	cp := *s
	m.state.settings = &cp
	return nil
}

// --- results ---

func (m *Memory) CreateResult(_ context.Context, r *models.TournamentResult) error {
	defer m.lock()()
	if err := m.injected("CreateResult"); err != nil {
		return err
	}
	m.stamp(&r.CreatedAt)
	m.state.results = append(m.state.results, *r)
	return nil
}

func (m *Memory) ListResults(_ context.Context, tournamentID string) ([]models.TournamentResult, error) {
	defer m.lock()()
	var out []models.TournamentResult
	for _, r := range m.state.results {
		if r.TournamentID == tournamentID {
			out = append(out, r)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Position < out[j].Position })
	return out, nil
}

func (m *Memory) ResultTotals(_ context.Context, userID string) (ResultTotals, error) {
	defer m.lock()()
	var t ResultTotals
	for _, r := range m.state.results {
		if r.UserID != userID {
			continue
		}
		if r.Position == 1 {
			t.Wins++
		}
		t.Earnings += r.PrizeAmount
	}
	return t, nil
}

func (m *Memory) SumPrizesSince(_ context.Context, since time.Time) (int64, error) {
	defer m.lock()()
	var total int64
	for _, r := range m.state.results {
		if !r.CreatedAt.Before(since) {
			total += r.PrizeAmount
		}
	}
	return total, nil
}

// --- spin ---

func (m *Memory) GetSpinRecord(_ context.Context, userID string) (*models.SpinRecord, error) {
	defer m.lock()()
	return get(m.state.spins, func(x *models.SpinRecord) bool { return x.UserID == userID })
}

func (m *Memory) SaveSpinRecord(_ context.Context, r *models.SpinRecord) error {
	defer m.lock()()
	if err := m.injected("SaveSpinRecord"); err != nil {
		return err
	}
	if i := findIndex(m.state.spins, func(x *models.SpinRecord) bool { return x.UserID == r.UserID }); i >= 0 {
		m.state.spins[i] = *r
		return nil
	}
	m.state.spins = append(m.state.spins, *r)
	return nil
}

// --- join attempts ---

func (m *Memory) GetJoinAttempt(_ context.Context, userID, key string) (*models.JoinAttempt, error) {
	defer m.lock()()
	return get(m.state.attempts, func(x *models.JoinAttempt) bool {
		return x.UserID == userID && x.IdempotencyKey == key
	})
}

func (m *Memory) CreateJoinAttempt(_ context.Context, a *models.JoinAttempt) error {
	defer m.lock()()
	if findIndex(m.state.attempts, func(x *models.JoinAttempt) bool {
		return x.UserID == a.UserID && x.IdempotencyKey == a.IdempotencyKey
	}) >= 0 {
		return fmt.Errorf("%w: join attempt %s", ErrDuplicate, a.IdempotencyKey)
	}
	m.stamp(&a.CreatedAt)
	a.UpdatedAt = a.CreatedAt
	m.state.attempts = append(m.state.attempts, *a)
	return nil
}

func (m *Memory) SaveJoinAttempt(_ context.Context, a *models.JoinAttempt) error {
	defer m.lock()()
	if err := m.injected("SaveJoinAttempt"); err != nil {
		return err
	}
	i := findIndex(m.state.attempts, func(x *models.JoinAttempt) bool { return x.ID == a.ID })
	if i < 0 {
		return ErrNotFound
	}
	a.UpdatedAt = m.now()
	m.state.attempts[i] = *a
	return nil
}

func (m *Memory) AbortStaleJoinAttempts(_ context.Context, cutoff time.Time) (int64, error) {
	defer m.lock()()
	var n int64
	for i := range m.state.attempts {
		a := &m.state.attempts[i]
		if a.Status == models.JoinAttemptPending && a.UpdatedAt.Before(cutoff) {
			a.Status = models.JoinAttemptAborted
			a.Reason = "expired"
			a.UpdatedAt = m.now()
			n++
		}
	}
	return n, nil
}
