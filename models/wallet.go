package models

import (
	"time"
)

const (
	LedgerTypeEntryFee   = "entry_fee"
	LedgerTypeWithdrawal = "withdrawal"
	LedgerTypeDeposit    = "deposit"
	LedgerTypePrize      = "prize"
	LedgerTypeRefund     = "refund"
)

// WalletTransaction is one append-only ledger entry. BalanceAfter = previous balance + Amount.
type WalletTransaction struct {
	ID           string    `json:"id" gorm:"primaryKey;type:uuid"`
	UserID       string    `json:"user_id" gorm:"type:uuid;not null;index"`
	Amount       int64     `json:"amount" gorm:"not null"`
	BalanceAfter int64     `json:"balance_after" gorm:"not null"`
	Type         string    `json:"type" gorm:"type:varchar(32);not null;index"`
	Description  string    `json:"description"`
	ReferenceID  *string   `json:"reference_id,omitempty" gorm:"type:uuid"`
	CreatedAt    time.Time `json:"created_at" gorm:"autoCreateTime;index"`
}

const (
	PaymentTypeDeposit  = "deposit"
	PaymentTypeWithdraw = "withdraw"

	PaymentStatusPending  = "pending"
	PaymentStatusApproved = "approved"
	PaymentStatusRejected = "rejected"
)

// PaymentRequest is a deposit or withdrawal awaiting manual review.
type PaymentRequest struct {
	ID            string  `json:"id" gorm:"primaryKey;type:uuid"`
	UserID        string  `json:"user_id" gorm:"type:uuid;not null;index"`
	Type          string  `json:"type" gorm:"type:varchar(16);not null"`
	Amount        int64   `json:"amount" gorm:"not null"`
	Status        string  `json:"status" gorm:"type:varchar(16);not null;default:'pending';index"`
	ScreenshotURL *string `json:"screenshot_url,omitempty"`
	UPIID         *string `json:"upi_id,omitempty" gorm:"column:upi_id"`
	AdminNote     *string `json:"admin_note,omitempty"`
	Timestamps
}

// SettingsRowID is the primary key of the single platform_settings row.
const SettingsRowID = "main"

// DefaultMinAmount applies when the settings row or a minimum is missing.
const DefaultMinAmount int64 = 50

// PlatformSettings carries the wallet payment configuration.
type PlatformSettings struct {
	ID          string    `json:"id" gorm:"primaryKey"`
	UPIID       *string   `json:"upi_id,omitempty" gorm:"column:upi_id"`
	UPIQRURL    *string   `json:"upi_qr_url,omitempty" gorm:"column:upi_qr_url"`
	MinDeposit  *int64    `json:"min_deposit,omitempty"`
	MinWithdraw *int64    `json:"min_withdraw,omitempty"`
	UpdatedAt   time.Time `json:"updated_at" gorm:"autoUpdateTime"`
}

func (PlatformSettings) TableName() string { return "platform_settings" }

// MinDepositOrDefault returns the configured deposit minimum, or DefaultMinAmount.
func (p *PlatformSettings) MinDepositOrDefault() int64 {
	if p == nil || p.MinDeposit == nil {
		return DefaultMinAmount
	}
	return *p.MinDeposit
}

// MinWithdrawOrDefault returns the configured withdrawal minimum, or DefaultMinAmount.
func (p *PlatformSettings) MinWithdrawOrDefault() int64 {
	if p == nil || p.MinWithdraw == nil {
		return DefaultMinAmount
	}
	return *p.MinWithdraw
}
