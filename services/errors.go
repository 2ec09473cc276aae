package services

import "errors"

var (
	ErrUnauthenticated    = errors.New("sign in required")
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrEmailTaken         = errors.New("email already registered")
	ErrSessionInvalid     = errors.New("session expired or revoked")

	ErrUserNotFound           = errors.New("user not found")
	ErrTournamentNotFound     = errors.New("tournament not found")
	ErrGameNotFound           = errors.New("game not found")
	ErrGameAccountNotFound    = errors.New("game account not found")
	ErrPaymentRequestNotFound = errors.New("payment request not found")

	// join aborts; messages are shown to players verbatim
	ErrAlreadyJoined        = errors.New("already joined")
	ErrDebitFailed          = errors.New("could not deduct entry fee")
	ErrRegistrationFailed   = errors.New("could not join")
	ErrTournamentFull       = errors.New("tournament is full")
	ErrRegistrationClosed   = errors.New("registration is closed")
	ErrInsufficientBalance  = errors.New("insufficient balance")
	ErrNoGameAccount        = errors.New("add a game account first")
	ErrGameAccountRequired  = errors.New("select a game account")
	ErrJoinInProgress       = errors.New("join already in progress")
	ErrIdempotencyKeyReused = errors.New("idempotency key was issued for another tournament")

	ErrInvalidAmount           = errors.New("amount must be positive")
	ErrBelowMinimum            = errors.New("amount is below the minimum")
	ErrPaymentNotPending       = errors.New("payment request already reviewed")
	ErrSpinCooldown            = errors.New("spin available again after cooldown")
	ErrInvalidStatusTransition = errors.New("invalid tournament status transition")
	ErrInvalidInput            = errors.New("invalid input")
)
