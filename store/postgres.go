package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"esports-arena/models"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	gormlogger "gorm.io/gorm/logger"
)

// Postgres implements Store on GORM.
type Postgres struct {
	db *gorm.DB
}

func NewPostgres(db *gorm.DB) *Postgres {
	return &Postgres{db: db}
}

// OpenPostgres connects and migrates the schema.
func OpenPostgres(dsn string, logLevel gormlogger.LogLevel) (*Postgres, error) {
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger: gormlogger.Default.LogMode(logLevel),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	if err := Migrate(db); err != nil {
		return nil, err
	}
	return NewPostgres(db), nil
}

func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(
		&models.User{},
		&models.Session{},
		&models.GameAccount{},
		&models.Game{},
		&models.Banner{},
		&models.Tournament{},
		&models.TournamentRegistration{},
		&models.TournamentResult{},
		&models.WalletTransaction{},
		&models.PaymentRequest{},
		&models.PlatformSettings{},
		&models.SpinRecord{},
		&models.JoinAttempt{},
	); err != nil {
		return fmt.Errorf("failed to migrate database: %w", err)
	}
	return nil
}

// DB exposes the handle for health checks.
func (p *Postgres) DB() *gorm.DB { return p.db }

func (p *Postgres) Transaction(ctx context.Context, fn func(tx Store) error) error {
	return p.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&Postgres{db: tx})
	})
}

func (p *Postgres) conn(ctx context.Context) *gorm.DB {
	return p.db.WithContext(ctx)
}

// translate maps driver errors onto the package's sentinel errors.
func translate(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrNotFound
	}
	if isUniqueViolation(err) {
		return fmt.Errorf("%w: %v", ErrDuplicate, err)
	}
	return err
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}

func first[T any](q *gorm.DB, conds ...any) (*T, error) {
	var out T
	if err := q.First(&out, conds...).Error; err != nil {
		return nil, translate(err)
	}
	return &out, nil
}

// --- users ---

func (p *Postgres) CreateUser(ctx context.Context, u *models.User) error {
	return translate(p.conn(ctx).Create(u).Error)
}

func (p *Postgres) GetUser(ctx context.Context, id string) (*models.User, error) {
	return first[models.User](p.conn(ctx), "id = ?", id)
}

func (p *Postgres) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	return first[models.User](p.conn(ctx), "email = ?", email)
}

func (p *Postgres) LockUser(ctx context.Context, id string) (*models.User, error) {
	return first[models.User](p.conn(ctx).Clauses(clause.Locking{Strength: "UPDATE"}), "id = ?", id)
}

func (p *Postgres) SetUserCoins(ctx context.Context, id string, coins int64) error {
	return p.updateOne(p.conn(ctx).Model(&models.User{}).Where("id = ?", id).Update("coins", coins))
}

func (p *Postgres) SetUsername(ctx context.Context, id, username string) error {
	return p.updateOne(p.conn(ctx).Model(&models.User{}).Where("id = ?", id).Update("username", username))
}

func (p *Postgres) SetAvatarURL(ctx context.Context, id, url string) error {
	return p.updateOne(p.conn(ctx).Model(&models.User{}).Where("id = ?", id).Update("avatar_url", url))
}

func (p *Postgres) updateOne(res *gorm.DB) error {
	if res.Error != nil {
		return translate(res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// --- sessions ---

func (p *Postgres) CreateSession(ctx context.Context, s *models.Session) error {
	return translate(p.conn(ctx).Create(s).Error)
}

func (p *Postgres) GetSession(ctx context.Context, id string) (*models.Session, error) {
	return first[models.Session](p.conn(ctx), "id = ?", id)
}

func (p *Postgres) RevokeSession(ctx context.Context, id string, at time.Time) error {
	return p.updateOne(p.conn(ctx).Model(&models.Session{}).
		Where("id = ? AND revoked_at IS NULL", id).
		Update("revoked_at", at))
}

// --- game accounts ---

func (p *Postgres) CreateGameAccount(ctx context.Context, a *models.GameAccount) error {
	return translate(p.conn(ctx).Create(a).Error)
}

func (p *Postgres) ListGameAccounts(ctx context.Context, userID string) ([]models.GameAccount, error) {
	var out []models.GameAccount
	err := p.conn(ctx).Where("user_id = ?", userID).Order("created_at ASC").Find(&out).Error
	return out, translate(err)
}

func (p *Postgres) DeleteGameAccount(ctx context.Context, userID, id string) error {
	return p.updateOne(p.conn(ctx).Where("id = ? AND user_id = ?", id, userID).Delete(&models.GameAccount{}))
}

// --- games & banners ---

func (p *Postgres) CreateGame(ctx context.Context, g *models.Game) error {
	return translate(p.conn(ctx).Create(g).Error)
}

func (p *Postgres) ListActiveGames(ctx context.Context) ([]models.Game, error) {
	var out []models.Game
	err := p.conn(ctx).Where("is_active = ?", true).Order("sort_order ASC").Find(&out).Error
	return out, translate(err)
}

func (p *Postgres) GetGameBySlug(ctx context.Context, slug string) (*models.Game, error) {
	return first[models.Game](p.conn(ctx), "slug = ? AND is_active = ?", slug, true)
}

func (p *Postgres) CreateBanner(ctx context.Context, b *models.Banner) error {
	return translate(p.conn(ctx).Create(b).Error)
}

func (p *Postgres) ListActiveBanners(ctx context.Context) ([]models.Banner, error) {
	var out []models.Banner
	err := p.conn(ctx).Where("is_active = ?", true).Order("sort_order ASC").Find(&out).Error
	return out, translate(err)
}

// --- tournaments ---

func (p *Postgres) CreateTournament(ctx context.Context, t *models.Tournament) error {
	return translate(p.conn(ctx).Create(t).Error)
}

func (p *Postgres) GetTournament(ctx context.Context, id string) (*models.Tournament, error) {
	return first[models.Tournament](p.conn(ctx), "id = ?", id)
}

func (p *Postgres) tournamentQuery(ctx context.Context, f TournamentFilter) *gorm.DB {
	q := p.conn(ctx).Model(&models.Tournament{})
	if len(f.Statuses) > 0 {
		q = q.Where("status IN ?", f.Statuses)
	}
	if f.GameName != "" {
		q = q.Where("game ILIKE ?", "%"+f.GameName+"%")
	}
	if f.StartsAfter != nil {
		q = q.Where("start_time >= ?", *f.StartsAfter)
	}
	return q
}

func (p *Postgres) ListTournaments(ctx context.Context, f TournamentFilter) ([]models.Tournament, error) {
	q := p.tournamentQuery(ctx, f)
	switch f.Sort {
	case SortByPrize:
		q = q.Order("prize_pool DESC")
	case SortByEntry:
		q = q.Order("entry_fee ASC")
	default:
		q = q.Order("start_time ASC")
	}
	if f.Limit > 0 {
		q = q.Limit(f.Limit)
	}
	var out []models.Tournament
	err := q.Find(&out).Error
	return out, translate(err)
}

func (p *Postgres) CountTournaments(ctx context.Context, f TournamentFilter) (int64, error) {
	var n int64
	err := p.tournamentQuery(ctx, f).Count(&n).Error
	return n, translate(err)
}

func (p *Postgres) IncrementOccupancy(ctx context.Context, id string) error {
	res := p.conn(ctx).Model(&models.Tournament{}).
		Where("id = ? AND current_players < max_players", id).
		UpdateColumn("current_players", gorm.Expr("current_players + 1"))
	if res.Error != nil {
		return translate(res.Error)
	}
	if res.RowsAffected == 1 {
		return nil
	}
	var n int64
	if err := p.conn(ctx).Model(&models.Tournament{}).Where("id = ?", id).Count(&n).Error; err != nil {
		return translate(err)
	}
	if n == 0 {
		return ErrNotFound
	}
	return ErrTournamentFull
}

func (p *Postgres) SetOccupancy(ctx context.Context, id string, players int) error {
	return p.updateOne(p.conn(ctx).Model(&models.Tournament{}).Where("id = ?", id).
		UpdateColumn("current_players", players))
}

func (p *Postgres) SetTournamentStatus(ctx context.Context, id, status string) error {
	return p.updateOne(p.conn(ctx).Model(&models.Tournament{}).Where("id = ?", id).Update("status", status))
}

// --- registrations ---

func (p *Postgres) GetRegistration(ctx context.Context, tournamentID, userID string) (*models.TournamentRegistration, error) {
	return first[models.TournamentRegistration](p.conn(ctx), "tournament_id = ? AND user_id = ?", tournamentID, userID)
}

func (p *Postgres) GetRegistrationByID(ctx context.Context, id string) (*models.TournamentRegistration, error) {
	return first[models.TournamentRegistration](p.conn(ctx), "id = ?", id)
}

func (p *Postgres) CreateRegistration(ctx context.Context, r *models.TournamentRegistration) error {
	return translate(p.conn(ctx).Create(r).Error)
}

func (p *Postgres) ListRegistrationsByTournament(ctx context.Context, tournamentID string) ([]models.TournamentRegistration, error) {
	var out []models.TournamentRegistration
	err := p.conn(ctx).Where("tournament_id = ?", tournamentID).Order("created_at ASC").Find(&out).Error
	return out, translate(err)
}

func (p *Postgres) ListRegistrationsByUser(ctx context.Context, userID string) ([]models.TournamentRegistration, error) {
	var out []models.TournamentRegistration
	err := p.conn(ctx).Preload("Tournament").
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Find(&out).Error
	return out, translate(err)
}

func (p *Postgres) CountRegistrations(ctx context.Context, f RegistrationFilter) (int64, error) {
	q := p.conn(ctx).Model(&models.TournamentRegistration{})
	if f.UserID != "" {
		q = q.Where("user_id = ?", f.UserID)
	}
	if f.TournamentID != "" {
		q = q.Where("tournament_id = ?", f.TournamentID)
	}
	if f.Since != nil {
		q = q.Where("created_at >= ?", *f.Since)
	}
	var n int64
	err := q.Count(&n).Error
	return n, translate(err)
}

func (p *Postgres) RegistrationCounts(ctx context.Context) (map[string]int64, error) {
	var rows []struct {
		TournamentID string
		Count        int64
	}
	err := p.conn(ctx).Model(&models.TournamentRegistration{}).
		Select("tournament_id, COUNT(*) AS count").
		Group("tournament_id").
		Scan(&rows).Error
	if err != nil {
		return nil, translate(err)
	}
	out := make(map[string]int64, len(rows))
	for _, r := range rows {
		out[r.TournamentID] = r.Count
	}
	return out, nil
}

// --- ledger ---

func (p *Postgres) AppendLedger(ctx context.Context, e *models.WalletTransaction) error {
	return translate(p.conn(ctx).Create(e).Error)
}

func (p *Postgres) ListLedger(ctx context.Context, userID string, limit int) ([]models.WalletTransaction, error) {
	var out []models.WalletTransaction
	q := p.conn(ctx).Where("user_id = ?", userID).Order("created_at DESC")
	if limit > 0 {
		q = q.Limit(limit)
	}
	err := q.Find(&out).Error
	return out, translate(err)
}

// --- payment requests ---

func (p *Postgres) CreatePaymentRequest(ctx context.Context, r *models.PaymentRequest) error {
	return translate(p.conn(ctx).Create(r).Error)
}

func (p *Postgres) GetPaymentRequest(ctx context.Context, id string) (*models.PaymentRequest, error) {
	return first[models.PaymentRequest](p.conn(ctx), "id = ?", id)
}

func (p *Postgres) LockPaymentRequest(ctx context.Context, id string) (*models.PaymentRequest, error) {
	return first[models.PaymentRequest](p.conn(ctx).Clauses(clause.Locking{Strength: "UPDATE"}), "id = ?", id)
}

func (p *Postgres) UpdatePaymentStatus(ctx context.Context, id, status string, note *string) error {
	return p.updateOne(p.conn(ctx).Model(&models.PaymentRequest{}).Where("id = ?", id).
		Updates(map[string]any{"status": status, "admin_note": note}))
}

func (p *Postgres) ListPaymentRequests(ctx context.Context, f PaymentFilter) ([]models.PaymentRequest, error) {
	q := p.conn(ctx).Order("created_at DESC")
	if f.UserID != "" {
		q = q.Where("user_id = ?", f.UserID)
	}
	if f.Status != "" {
		q = q.Where("status = ?", f.Status)
	}
	if f.Limit > 0 {
		q = q.Limit(f.Limit)
	}
	var out []models.PaymentRequest
	err := q.Find(&out).Error
	return out, translate(err)
}

// --- settings ---

func (p *Postgres) GetSettings(ctx context.Context) (*models.PlatformSettings, error) {
	return first[models.PlatformSettings](p.conn(ctx), "id = ?", models.SettingsRowID)
}

func (p *Postgres) SaveSettings(ctx context.Context, s *models.PlatformSettings) error {
	s.ID = models.SettingsRowID
	return translate(p.conn(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "id"}},
		DoUpdates: clause.AssignmentColumns([]string{"upi_id", "upi_qr_url", "min_deposit", "min_withdraw", "updated_at"}),
	}).Create(s).Error)
}

// --- results ---

func (p *Postgres) CreateResult(ctx context.Context, r *models.TournamentResult) error {
	return translate(p.conn(ctx).Create(r).Error)
}

func (p *Postgres) ListResults(ctx context.Context, tournamentID string) ([]models.TournamentResult, error) {
	var out []models.TournamentResult
	err := p.conn(ctx).Where("tournament_id = ?", tournamentID).Order("position ASC").Find(&out).Error
	return out, translate(err)
}

func (p *Postgres) ResultTotals(ctx context.Context, userID string) (ResultTotals, error) {
	var t ResultTotals
	err := p.conn(ctx).Model(&models.TournamentResult{}).
		Select("COUNT(*) FILTER (WHERE position = 1) AS wins, COALESCE(SUM(prize_amount), 0) AS earnings").
		Where("user_id = ?", userID).
		Scan(&t).Error
	return t, translate(err)
}

func (p *Postgres) SumPrizesSince(ctx context.Context, since time.Time) (int64, error) {
	var total int64
	err := p.conn(ctx).Model(&models.TournamentResult{}).
		Select("COALESCE(SUM(prize_amount), 0)").
		Where("created_at >= ?", since).
		Scan(&total).Error
	return total, translate(err)
}

// --- spin ---

func (p *Postgres) GetSpinRecord(ctx context.Context, userID string) (*models.SpinRecord, error) {
	return first[models.SpinRecord](p.conn(ctx), "user_id = ?", userID)
}

func (p *Postgres) SaveSpinRecord(ctx context.Context, r *models.SpinRecord) error {
	return translate(p.conn(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "user_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"last_spin_at", "last_result_index", "last_result_label"}),
	}).Create(r).Error)
}

// --- join attempts ---

func (p *Postgres) GetJoinAttempt(ctx context.Context, userID, key string) (*models.JoinAttempt, error) {
	return first[models.JoinAttempt](p.conn(ctx), "user_id = ? AND idempotency_key = ?", userID, key)
}

func (p *Postgres) CreateJoinAttempt(ctx context.Context, a *models.JoinAttempt) error {
	return translate(p.conn(ctx).Create(a).Error)
}

func (p *Postgres) SaveJoinAttempt(ctx context.Context, a *models.JoinAttempt) error {
	return translate(p.conn(ctx).Save(a).Error)
}

func (p *Postgres) AbortStaleJoinAttempts(ctx context.Context, cutoff time.Time) (int64, error) {
	res := p.conn(ctx).Model(&models.JoinAttempt{}).
		Where("status = ? AND updated_at < ?", models.JoinAttemptPending, cutoff).
		Updates(map[string]any{"status": models.JoinAttemptAborted, "reason": "expired"})
	return res.RowsAffected, translate(res.Error)
}
