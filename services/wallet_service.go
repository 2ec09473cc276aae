package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"esports-arena/logger"
	"esports-arena/metrics"
	"esports-arena/models"
	"esports-arena/store"

	"github.com/google/uuid"
)

const (
	TransactionListLimit = 20
	RequestListLimit     = 10
	PendingListLimit     = 50
)

type WithdrawRequest struct {
	UserID string
	Amount int64
	UPIID  string
}

type DepositRequest struct {
	UserID string
	Amount int64
	Proof  *Upload
}

// WalletOverview is what the wallet page shows.
type WalletOverview struct {
	Balance      int64                      `json:"balance"`
	Settings     *SettingsView              `json:"settings"`
	Transactions []models.WalletTransaction `json:"transactions"`
	Requests     []models.PaymentRequest    `json:"requests"`
}

type WalletService struct {
	store    store.Store
	settings *SettingsService
	blobs    BlobStore
	log      *logger.Logger
	now      func() time.Time
}

func NewWalletService(st store.Store, settings *SettingsService, blobs BlobStore, log *logger.Logger) *WalletService {
	return &WalletService{store: st, settings: settings, blobs: blobs, log: log.With("component", "wallet"), now: time.Now}
}

func (s *WalletService) Overview(ctx context.Context, userID string) (*WalletOverview, error) {
	user, err := s.store.GetUser(ctx, userID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to load user: %w", err)
	}
	view, err := s.settings.View(ctx)
	if err != nil {
		return nil, err
	}
	txs, err := s.store.ListLedger(ctx, userID, TransactionListLimit)
	if err != nil {
		return nil, fmt.Errorf("failed to list transactions: %w", err)
	}
	reqs, err := s.store.ListPaymentRequests(ctx, store.PaymentFilter{UserID: userID, Limit: RequestListLimit})
	if err != nil {
		return nil, fmt.Errorf("failed to list payment requests: %w", err)
	}
	return &WalletOverview{Balance: user.Coins, Settings: view, Transactions: txs, Requests: reqs}, nil
}

// Withdraw debits the balance immediately and files a pending request for manual payout.
// Both validations run before anything is written.
func (s *WalletService) Withdraw(ctx context.Context, req WithdrawRequest) (*models.PaymentRequest, int64, error) {
	if req.Amount <= 0 {
		return nil, 0, ErrInvalidAmount
	}
	upi := strings.TrimSpace(req.UPIID)
	if upi == "" {
		return nil, 0, fmt.Errorf("%w: upi_id is required", ErrInvalidInput)
	}
	settings, err := s.settings.Get(ctx)
	if err != nil {
		return nil, 0, err
	}
	if req.Amount < settings.MinWithdrawOrDefault() {
		return nil, 0, fmt.Errorf("%w: minimum withdrawal is %d", ErrBelowMinimum, settings.MinWithdrawOrDefault())
	}

	var (
		request *models.PaymentRequest
		balance int64
	)
	err = s.store.Transaction(ctx, func(tx store.Store) error {
		user, err := tx.LockUser(ctx, req.UserID)
		if err != nil {
			if errors.Is(err, store.ErrNotFound) {
				return ErrUserNotFound
			}
			return fmt.Errorf("failed to lock user: %w", err)
		}
		if req.Amount > user.Coins {
			return ErrInsufficientBalance
		}

		balance = user.Coins - req.Amount
		if err := tx.SetUserCoins(ctx, user.ID, balance); err != nil {
			return fmt.Errorf("failed to debit balance: %w", err)
		}

		request = &models.PaymentRequest{
			ID:     uuid.NewString(),
			UserID: user.ID,
			Type:   models.PaymentTypeWithdraw,
			Amount: req.Amount,
			Status: models.PaymentStatusPending,
			UPIID:  &upi,
		}
		ref := request.ID
		if err := tx.AppendLedger(ctx, &models.WalletTransaction{
			ID:           uuid.NewString(),
			UserID:       user.ID,
			Amount:       -req.Amount,
			BalanceAfter: balance,
			Type:         models.LedgerTypeWithdrawal,
			Description:  "Withdrawal request to " + upi,
			ReferenceID:  &ref,
		}); err != nil {
			return fmt.Errorf("failed to append ledger entry: %w", err)
		}
		if err := tx.CreatePaymentRequest(ctx, request); err != nil {
			return fmt.Errorf("failed to create withdrawal request: %w", err)
		}
		return nil
	})
	if err != nil {
		s.log.Warn("❌ [WALLET] withdrawal rejected", "user_id", req.UserID, "amount", req.Amount, "error", err)
		return nil, 0, err
	}

	metrics.PaymentRequests.WithLabelValues(models.PaymentTypeWithdraw, models.PaymentStatusPending).Inc()
	s.log.Info("💸 [WALLET] withdrawal requested", "user_id", req.UserID, "amount", req.Amount, "request_id", request.ID)
	return request, balance, nil
}

// Deposit files a pending request; the balance changes only when an admin approves it. A proof image
// that fails to upload is dropped and the request is still filed.
func (s *WalletService) Deposit(ctx context.Context, req DepositRequest) (*models.PaymentRequest, error) {
	if req.Amount <= 0 {
		return nil, ErrInvalidAmount
	}
	settings, err := s.settings.Get(ctx)
	if err != nil {
		return nil, err
	}
	if req.Amount < settings.MinDepositOrDefault() {
		return nil, fmt.Errorf("%w: minimum deposit is %d", ErrBelowMinimum, settings.MinDepositOrDefault())
	}
	if _, err := s.store.GetUser(ctx, req.UserID); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to load user: %w", err)
	}

	request := &models.PaymentRequest{
		ID:     uuid.NewString(),
		UserID: req.UserID,
		Type:   models.PaymentTypeDeposit,
		Amount: req.Amount,
		Status: models.PaymentStatusPending,
	}
	if req.Proof != nil && s.blobs != nil {
		key := paymentProofKey(req.UserID, s.now(), req.Proof.Filename)
		url, err := s.blobs.Upload(ctx, key, req.Proof.ContentType, req.Proof.Body)
		if err != nil {
			s.log.Warn("⚠️ [WALLET] payment proof upload failed, filing request without it", "user_id", req.UserID, "error", err)
		} else {
			request.ScreenshotURL = &url
		}
	}

	if err := s.store.CreatePaymentRequest(ctx, request); err != nil {
		return nil, fmt.Errorf("failed to create deposit request: %w", err)
	}
	metrics.PaymentRequests.WithLabelValues(models.PaymentTypeDeposit, models.PaymentStatusPending).Inc()
	s.log.Info("📥 [WALLET] deposit requested", "user_id", req.UserID, "amount", req.Amount, "request_id", request.ID)
	return request, nil
}

func (s *WalletService) ListPending(ctx context.Context) ([]models.PaymentRequest, error) {
	out, err := s.store.ListPaymentRequests(ctx, store.PaymentFilter{Status: models.PaymentStatusPending, Limit: PendingListLimit})
	if err != nil {
		return nil, fmt.Errorf("failed to list pending requests: %w", err)
	}
	return out, nil
}

// Approve settles a pending request. Approved deposits credit the balance with a ledger entry;
// approved withdrawals were already debited when filed.
func (s *WalletService) Approve(ctx context.Context, requestID string, note *string) (*models.PaymentRequest, error) {
	return s.review(ctx, requestID, models.PaymentStatusApproved, note)
}

// Reject closes a pending request. A rejected withdrawal is not refunded automatically.
func (s *WalletService) Reject(ctx context.Context, requestID string, note *string) (*models.PaymentRequest, error) {
	return s.review(ctx, requestID, models.PaymentStatusRejected, note)
}

func (s *WalletService) review(ctx context.Context, requestID, status string, note *string) (*models.PaymentRequest, error) {
	var out *models.PaymentRequest
	err := s.store.Transaction(ctx, func(tx store.Store) error {
		req, err := tx.LockPaymentRequest(ctx, requestID)
		if err != nil {
			if errors.Is(err, store.ErrNotFound) {
				return ErrPaymentRequestNotFound
			}
			return fmt.Errorf("failed to lock payment request: %w", err)
		}
		if req.Status != models.PaymentStatusPending {
			return ErrPaymentNotPending
		}

		if status == models.PaymentStatusApproved && req.Type == models.PaymentTypeDeposit {
			user, err := tx.LockUser(ctx, req.UserID)
			if err != nil {
				return fmt.Errorf("failed to lock user: %w", err)
			}
			balance := user.Coins + req.Amount
			if err := tx.SetUserCoins(ctx, user.ID, balance); err != nil {
				return fmt.Errorf("failed to credit balance: %w", err)
			}
			ref := req.ID
			if err := tx.AppendLedger(ctx, &models.WalletTransaction{
				ID:           uuid.NewString(),
				UserID:       user.ID,
				Amount:       req.Amount,
				BalanceAfter: balance,
				Type:         models.LedgerTypeDeposit,
				Description:  "Deposit approved",
				ReferenceID:  &ref,
			}); err != nil {
				return fmt.Errorf("failed to append ledger entry: %w", err)
			}
		}

		if err := tx.UpdatePaymentStatus(ctx, req.ID, status, note); err != nil {
			return fmt.Errorf("failed to update payment request: %w", err)
		}
		req.Status = status
		req.AdminNote = note
		out = req
		return nil
	})
	if err != nil {
		return nil, err
	}
	metrics.PaymentRequests.WithLabelValues(out.Type, status).Inc()
	s.log.Info("[WALLET] payment request reviewed", "request_id", out.ID, "type", out.Type, "status", status)
	return out, nil
}
