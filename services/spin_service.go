package services

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"
	"time"

	"esports-arena/logger"
	"esports-arena/metrics"
	"esports-arena/models"
	"esports-arena/store"
)

// SpinCooldown is the minimum gap between two spins of the same user.
const SpinCooldown = 24 * time.Hour

// WheelSegments are the labels shown on the wheel, clockwise from the top.
var WheelSegments = []string{"₹5", "Better Luck", "₹10", "Try Again", "₹100", "Better Luck", "₹5", "Try Again"}

// LosingSegments are the only indexes a draw may land on.
var LosingSegments = []int{1, 3, 5, 7}

// CanSpin is true when there is no previous spin or the cooldown has fully elapsed.
func CanSpin(last *time.Time, now time.Time) bool {
	return last == nil || !now.Before(last.Add(SpinCooldown))
}

// SpinRemaining is the time left until the next spin, zero when one is available.
func SpinRemaining(last *time.Time, now time.Time) time.Duration {
	if CanSpin(last, now) {
		return 0
	}
	return last.Add(SpinCooldown).Sub(now)
}

type SpinStatus struct {
	CanSpin          bool       `json:"can_spin"`
	LastSpinAt       *time.Time `json:"last_spin_at,omitempty"`
	NextSpinAt       *time.Time `json:"next_spin_at,omitempty"`
	RemainingSeconds int64      `json:"remaining_seconds"`
	Segments         []string   `json:"segments"`
}

type SpinOutcome struct {
	Index    int        `json:"index"`
	Label    string     `json:"label"`
	Rotation float64    `json:"rotation"` // degrees the client wheel turns before stopping
	Status   SpinStatus `json:"status"`
}

type SpinService struct {
	store store.Store
	log   *logger.Logger
	now   func() time.Time
	intn  func(n int) int
}

func NewSpinService(st store.Store, log *logger.Logger) *SpinService {
	return &SpinService{store: st, log: log.With("component", "spin"), now: time.Now, intn: rand.IntN}
}

func (s *SpinService) status(rec *models.SpinRecord, now time.Time) SpinStatus {
	st := SpinStatus{CanSpin: true, Segments: WheelSegments}
	if rec == nil {
		return st
	}
	last := rec.LastSpinAt
	next := last.Add(SpinCooldown)
	st.LastSpinAt = &last
	st.NextSpinAt = &next
	st.CanSpin = CanSpin(&last, now)
	st.RemainingSeconds = int64(SpinRemaining(&last, now).Round(time.Second) / time.Second)
	return st
}

func (s *SpinService) Status(ctx context.Context, userID string) (SpinStatus, error) {
	rec, err := s.store.GetSpinRecord(ctx, userID)
	if err != nil && !errors.Is(err, store.ErrNotFound) {
		return SpinStatus{}, fmt.Errorf("failed to load spin record: %w", err)
	}
	if errors.Is(err, store.ErrNotFound) {
		rec = nil
	}
	return s.status(rec, s.now()), nil
}

// Spin draws a segment and starts the cooldown. It fails with ErrSpinCooldown inside the window.
func (s *SpinService) Spin(ctx context.Context, userID string) (*SpinOutcome, error) {
	now := s.now()
	var out *SpinOutcome
	err := s.store.Transaction(ctx, func(tx store.Store) error {
		if _, err := tx.LockUser(ctx, userID); err != nil {
			if errors.Is(err, store.ErrNotFound) {
				return ErrUserNotFound
			}
			return fmt.Errorf("failed to lock user: %w", err)
		}
		rec, err := tx.GetSpinRecord(ctx, userID)
		switch {
		case err == nil:
			if !CanSpin(&rec.LastSpinAt, now) {
				return ErrSpinCooldown
			}
		case !errors.Is(err, store.ErrNotFound):
			return fmt.Errorf("failed to load spin record: %w", err)
		}

		index := LosingSegments[s.intn(len(LosingSegments))]
		next := &models.SpinRecord{
			UserID:          userID,
			LastSpinAt:      now,
			LastResultIndex: index,
			LastResultLabel: WheelSegments[index],
		}
		if err := tx.SaveSpinRecord(ctx, next); err != nil {
			return fmt.Errorf("failed to save spin record: %w", err)
		}
		out = &SpinOutcome{
			Index:    index,
			Label:    WheelSegments[index],
			Rotation: landingRotation(index, 5+s.intn(3)),
			Status:   s.status(next, now),
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	metrics.Spins.Inc()
	s.log.Info("🎡 [SPIN] drawn", "user_id", userID, "index", out.Index, "label", out.Label)
	return out, nil
}

// landingRotation turns the wheel fullTurns times and stops with the middle of segment index under
// the top pointer.
func landingRotation(index, fullTurns int) float64 {
	segment := 360.0 / float64(len(WheelSegments))
	return float64(fullTurns)*360 + (360 - float64(index)*segment - segment/2)
}
