package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"esports-arena/logger"
	"esports-arena/metrics"
	"esports-arena/models"
	"esports-arena/store"

	"github.com/google/uuid"
)

type JoinStep string

const (
	StepEligibility        JoinStep = "eligibility"
	StepCheckDuplicate     JoinStep = "check_duplicate"
	StepDebitBalance       JoinStep = "debit_balance"
	StepInsertRegistration JoinStep = "insert_registration"
	StepAppendLedger       JoinStep = "append_ledger"
	StepIncrementOccupancy JoinStep = "increment_occupancy"
	StepSuccess            JoinStep = "success"
)

// JoinError reports which step aborted a join. Compensated is true when a debit had been applied and
// was rolled back.
type JoinError struct {
	Step        JoinStep
	Err         error
	Compensated bool
	Shortfall   int64
	cause       error
}

func (e *JoinError) Error() string {
	return e.Err.Error()
}

func (e *JoinError) Unwrap() error {
	return e.Err
}

// abortReasons resolves a stored reason back to its sentinel on idempotent replay.
var abortReasons = map[string]error{}

func init() {
	for _, err := range []error{
		ErrAlreadyJoined, ErrDebitFailed, ErrRegistrationFailed, ErrTournamentFull, ErrRegistrationClosed,
		ErrInsufficientBalance, ErrNoGameAccount, ErrGameAccountRequired, ErrTournamentNotFound, ErrUserNotFound,
	} {
		abortReasons[err.Error()] = err
	}
}

type JoinRequest struct {
	UserID         string
	TournamentID   string
	GameAccountID  string
	IdempotencyKey string
}

type JoinResult struct {
	Registration models.TournamentRegistration `json:"registration"`
	Tournament   models.Tournament             `json:"tournament"`
	Balance      int64                         `json:"balance"`
	Replayed     bool                          `json:"replayed"`
}

// JoinService registers players into tournaments, paying the entry fee from their coin balance.
type JoinService struct {
	store store.Store
	log   *logger.Logger
	now   func() time.Time
}

func NewJoinService(st store.Store, log *logger.Logger) *JoinService {
	return &JoinService{store: st, log: log.With("component", "join"), now: time.Now}
}

// Join runs duplicate check, debit, registration, ledger entry and occupancy increment in one
// transaction. A failure at any step leaves balance, roster and ledger untouched. Replaying an
// idempotency key returns the recorded outcome without running the steps again.
func (s *JoinService) Join(ctx context.Context, req JoinRequest) (*JoinResult, error) {
	if req.UserID == "" {
		return nil, ErrUnauthenticated
	}
	if req.IdempotencyKey == "" {
		req.IdempotencyKey = uuid.NewString()
	}

	attempt, replay, err := s.openAttempt(ctx, req)
	if err != nil {
		return nil, err
	}
	if replay != nil {
		return replay()
	}

	var result *JoinResult
	txErr := s.store.Transaction(ctx, func(tx store.Store) error {
		r, err := s.joinTx(ctx, tx, req)
		if err != nil {
			return err
		}
		// the succeeded outcome commits with the registration it points at
		attempt.Status = models.JoinAttemptSucceeded
		attempt.Step = string(StepSuccess)
		attempt.RegistrationID = &r.Registration.ID
		if err := tx.SaveJoinAttempt(ctx, attempt); err != nil {
			return fmt.Errorf("failed to record join outcome: %w", err)
		}
		result = r
		return nil
	})

	s.closeAttempt(ctx, attempt, result, txErr)
	if txErr != nil {
		return nil, txErr
	}
	result.Tournament.TotalPrize = CalculateTotalPrize(&result.Tournament)
	return result, nil
}

// openAttempt records a pending attempt, or returns a replay func for a key that was already used.
func (s *JoinService) openAttempt(ctx context.Context, req JoinRequest) (*models.JoinAttempt, func() (*JoinResult, error), error) {
	existing, err := s.store.GetJoinAttempt(ctx, req.UserID, req.IdempotencyKey)
	switch {
	case err == nil:
		if existing.TournamentID != req.TournamentID {
			return nil, nil, ErrIdempotencyKeyReused
		}
		return nil, func() (*JoinResult, error) { return s.replay(ctx, existing) }, nil
	case !errors.Is(err, store.ErrNotFound):
		return nil, nil, fmt.Errorf("failed to load join attempt: %w", err)
	}

	attempt := &models.JoinAttempt{
		ID:             uuid.NewString(),
		UserID:         req.UserID,
		IdempotencyKey: req.IdempotencyKey,
		TournamentID:   req.TournamentID,
		Status:         models.JoinAttemptPending,
	}
	if err := s.store.CreateJoinAttempt(ctx, attempt); err != nil {
		if errors.Is(err, store.ErrDuplicate) {
			return nil, nil, ErrJoinInProgress
		}
		return nil, nil, fmt.Errorf("failed to record join attempt: %w", err)
	}
	return attempt, nil, nil
}

func (s *JoinService) replay(ctx context.Context, a *models.JoinAttempt) (*JoinResult, error) {
	switch a.Status {
	case models.JoinAttemptPending:
		return nil, ErrJoinInProgress
	case models.JoinAttemptAborted:
		sentinel, ok := abortReasons[a.Reason]
		if !ok {
			sentinel = ErrRegistrationFailed
		}
		return nil, &JoinError{Step: JoinStep(a.Step), Err: sentinel, Compensated: a.Compensated}
	}

	if a.RegistrationID == nil {
		return nil, fmt.Errorf("join attempt %s succeeded without a registration", a.ID)
	}
	reg, err := s.store.GetRegistrationByID(ctx, *a.RegistrationID)
	if err != nil {
		return nil, fmt.Errorf("failed to load registration: %w", err)
	}
	t, err := s.store.GetTournament(ctx, reg.TournamentID)
	if err != nil {
		return nil, fmt.Errorf("failed to load tournament: %w", err)
	}
	u, err := s.store.GetUser(ctx, a.UserID)
	if err != nil {
		return nil, fmt.Errorf("failed to load user: %w", err)
	}
	t.TotalPrize = CalculateTotalPrize(t)
	s.log.Info("[JOIN] replayed idempotent join", "user_id", a.UserID, "tournament_id", reg.TournamentID)
	return &JoinResult{Registration: *reg, Tournament: *t, Balance: u.Coins, Replayed: true}, nil
}

func (s *JoinService) joinTx(ctx context.Context, tx store.Store, req JoinRequest) (*JoinResult, error) {
	user, err := tx.LockUser(ctx, req.UserID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, &JoinError{Step: StepEligibility, Err: ErrUserNotFound}
		}
		return nil, fmt.Errorf("failed to lock user: %w", err)
	}
	t, err := tx.GetTournament(ctx, req.TournamentID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, &JoinError{Step: StepEligibility, Err: ErrTournamentNotFound}
		}
		return nil, fmt.Errorf("failed to load tournament: %w", err)
	}

	// CHECK_DUPLICATE
	if _, err := tx.GetRegistration(ctx, t.ID, user.ID); err == nil {
		return nil, &JoinError{Step: StepCheckDuplicate, Err: ErrAlreadyJoined}
	} else if !errors.Is(err, store.ErrNotFound) {
		return nil, &JoinError{Step: StepCheckDuplicate, Err: ErrRegistrationFailed, cause: err}
	}

	accounts, err := tx.ListGameAccounts(ctx, req.UserID)
	if err != nil {
		return nil, fmt.Errorf("failed to load game accounts: %w", err)
	}

	verdict := EvaluateEligibility(EligibilityInput{
		Authenticated:     true,
		Balance:           user.Coins,
		EntryFee:          t.EntryFee,
		GameAccountIDs:    accountIDs(accounts),
		SelectedAccountID: req.GameAccountID,
	})
	if !verdict.Eligible() {
		return nil, &JoinError{Step: StepEligibility, Err: verdict.Err(), Shortfall: verdict.Shortfall}
	}
	if t.Status != models.TournamentStatusUpcoming {
		return nil, &JoinError{Step: StepEligibility, Err: ErrRegistrationClosed}
	}
	if t.RegistrationEndsAt != nil && !s.now().Before(*t.RegistrationEndsAt) {
		return nil, &JoinError{Step: StepEligibility, Err: ErrRegistrationClosed}
	}
	if t.IsFull() {
		return nil, &JoinError{Step: StepEligibility, Err: ErrTournamentFull}
	}

	// DEBIT_BALANCE
	balanceAfter := user.Coins - t.EntryFee
	if t.EntryFee > 0 {
		if err := tx.SetUserCoins(ctx, user.ID, balanceAfter); err != nil {
			return nil, &JoinError{Step: StepDebitBalance, Err: ErrDebitFailed, cause: err}
		}
	}
	debited := t.EntryFee > 0

	// INSERT_REGISTRATION
	accountID := req.GameAccountID
	reg := &models.TournamentRegistration{
		ID:            uuid.NewString(),
		TournamentID:  t.ID,
		UserID:        user.ID,
		GameAccountID: &accountID,
	}
	if err := tx.CreateRegistration(ctx, reg); err != nil {
		if errors.Is(err, store.ErrDuplicate) {
			return nil, &JoinError{Step: StepInsertRegistration, Err: ErrAlreadyJoined, Compensated: debited, cause: err}
		}
		return nil, &JoinError{Step: StepInsertRegistration, Err: ErrRegistrationFailed, Compensated: debited, cause: err}
	}

	// APPEND_LEDGER_ENTRY
	if debited {
		ref := t.ID
		entry := &models.WalletTransaction{
			ID:           uuid.NewString(),
			UserID:       user.ID,
			Amount:       -t.EntryFee,
			BalanceAfter: balanceAfter,
			Type:         models.LedgerTypeEntryFee,
			Description:  "Entry fee for " + t.Title,
			ReferenceID:  &ref,
		}
		if err := tx.AppendLedger(ctx, entry); err != nil {
			return nil, &JoinError{Step: StepAppendLedger, Err: ErrRegistrationFailed, Compensated: true, cause: err}
		}
	}

	// INCREMENT_OCCUPANCY
	if err := tx.IncrementOccupancy(ctx, t.ID); err != nil {
		if errors.Is(err, store.ErrTournamentFull) {
			return nil, &JoinError{Step: StepIncrementOccupancy, Err: ErrTournamentFull, Compensated: debited, cause: err}
		}
		return nil, &JoinError{Step: StepIncrementOccupancy, Err: ErrRegistrationFailed, Compensated: debited, cause: err}
	}
	t.CurrentPlayers++

	return &JoinResult{Registration: *reg, Tournament: *t, Balance: balanceAfter}, nil
}

// closeAttempt logs the outcome and persists aborts. Succeeded attempts were already saved inside the
// join transaction; a failed abort write is logged and left to the reconciler.
func (s *JoinService) closeAttempt(ctx context.Context, a *models.JoinAttempt, result *JoinResult, joinErr error) {
	log := s.log.With("user_id", a.UserID, "tournament_id", a.TournamentID, "key", a.IdempotencyKey)

	if joinErr == nil {
		log.Info("✅ [JOIN] player registered", "balance", result.Balance)
		metrics.JoinAttempts.WithLabelValues(a.Status, a.Step).Inc()
		return
	}

	a.Status = models.JoinAttemptAborted
	a.RegistrationID = nil
	a.Step = "internal"
	a.Reason = ErrRegistrationFailed.Error()
	var je *JoinError
	if errors.As(joinErr, &je) {
		a.Step = string(je.Step)
		a.Reason = je.Err.Error()
		a.Compensated = je.Compensated
		if je.cause != nil {
			log.Warn("❌ [JOIN] aborted", "step", je.Step, "reason", je.Err.Error(), "compensated", je.Compensated, "error", je.cause)
		} else {
			log.Info("[JOIN] rejected", "step", je.Step, "reason", je.Err.Error())
		}
	} else {
		log.Error("❌ [JOIN] failed", "error", joinErr)
	}
	metrics.JoinAttempts.WithLabelValues(a.Status, a.Step).Inc()

	if err := s.store.SaveJoinAttempt(ctx, a); err != nil {
		log.Error("❌ [JOIN] failed to persist attempt outcome", "error", err)
	}
}

func accountIDs(accounts []models.GameAccount) []string {
	ids := make([]string, len(accounts))
	for i, a := range accounts {
		ids[i] = a.ID
	}
	return ids
}
