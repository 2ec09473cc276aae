package services

import (
	"context"
	"errors"
	"fmt"

	"esports-arena/logger"
	"esports-arena/models"
	"esports-arena/store"
)

// SettingsView is the effective payment configuration, with defaults applied.
type SettingsView struct {
	UPIID       *string `json:"upi_id,omitempty"`
	UPIQRURL    *string `json:"upi_qr_url,omitempty"`
	MinDeposit  int64   `json:"min_deposit"`
	MinWithdraw int64   `json:"min_withdraw"`
}

type SettingsUpdate struct {
	UPIID       *string `json:"upi_id"`
	UPIQRURL    *string `json:"upi_qr_url"`
	MinDeposit  *int64  `json:"min_deposit" validate:"omitempty,min=1"`
	MinWithdraw *int64  `json:"min_withdraw" validate:"omitempty,min=1"`
}

type SettingsService struct {
	store store.Store
	log   *logger.Logger
}

func NewSettingsService(st store.Store, log *logger.Logger) *SettingsService {
	return &SettingsService{store: st, log: log.With("component", "settings")}
}

// Get returns the settings row, or an empty row when none exists yet.
func (s *SettingsService) Get(ctx context.Context) (*models.PlatformSettings, error) {
	row, err := s.store.GetSettings(ctx)
	if errors.Is(err, store.ErrNotFound) {
		return &models.PlatformSettings{ID: models.SettingsRowID}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load platform settings: %w", err)
	}
	return row, nil
}

func (s *SettingsService) View(ctx context.Context) (*SettingsView, error) {
	row, err := s.Get(ctx)
	if err != nil {
		return nil, err
	}
	return &SettingsView{
		UPIID:       row.UPIID,
		UPIQRURL:    row.UPIQRURL,
		MinDeposit:  row.MinDepositOrDefault(),
		MinWithdraw: row.MinWithdrawOrDefault(),
	}, nil
}

// Update merges non-nil fields into the settings row.
func (s *SettingsService) Update(ctx context.Context, u SettingsUpdate) (*SettingsView, error) {
	row, err := s.Get(ctx)
	if err != nil {
		return nil, err
	}
	if u.UPIID != nil {
		row.UPIID = u.UPIID
	}
	if u.UPIQRURL != nil {
		row.UPIQRURL = u.UPIQRURL
	}
	if u.MinDeposit != nil {
		row.MinDeposit = u.MinDeposit
	}
	if u.MinWithdraw != nil {
		row.MinWithdraw = u.MinWithdraw
	}
	if err := s.store.SaveSettings(ctx, row); err != nil {
		return nil, fmt.Errorf("failed to save platform settings: %w", err)
	}
	s.log.Info("[SETTINGS] updated", "min_deposit", row.MinDepositOrDefault(), "min_withdraw", row.MinWithdrawOrDefault())
	return s.View(ctx)
}
