package workers

import (
	"context"
	"fmt"
	"time"

	"esports-arena/logger"
	"esports-arena/metrics"
	"esports-arena/models"
	"esports-arena/store"
)

// Reconciler repairs derived state the join path keeps in step transactionally: the occupancy counter of
// open tournaments and join attempts abandoned mid-flight.
type Reconciler struct {
	store      store.Store
	log        *logger.Logger
	attemptTTL time.Duration
	now        func() time.Time
}

func NewReconciler(st store.Store, attemptTTL time.Duration, log *logger.Logger) *Reconciler {
	return &Reconciler{store: st, attemptTTL: attemptTTL, log: log.With("component", "reconciler"), now: time.Now}
}

// Run performs one pass. Errors from one tournament do not stop the rest.
func (r *Reconciler) Run(ctx context.Context) error {
	fixed, err := r.reconcileOccupancy(ctx)
	if err != nil {
		return err
	}
	expired, err := r.store.AbortStaleJoinAttempts(ctx, r.now().Add(-r.attemptTTL))
	if err != nil {
		return fmt.Errorf("failed to expire join attempts: %w", err)
	}
	if fixed > 0 || expired > 0 {
		r.log.Info("🔧 [RECONCILE] pass complete", "occupancy_fixed", fixed, "attempts_expired", expired)
	}
	return nil
}

func (r *Reconciler) reconcileOccupancy(ctx context.Context) (int, error) {
	open, err := r.store.ListTournaments(ctx, store.TournamentFilter{
		Statuses: []string{models.TournamentStatusUpcoming, models.TournamentStatusLive},
	})
	if err != nil {
		return 0, fmt.Errorf("failed to list tournaments: %w", err)
	}
	counts, err := r.store.RegistrationCounts(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to count registrations: %w", err)
	}

	fixed := 0
	for _, t := range open {
		if int64(t.CurrentPlayers) == counts[t.ID] {
			continue
		}
		// Recount under a transaction; a join may have committed since the bulk read.
		var before, after int
		err := r.store.Transaction(ctx, func(tx store.Store) error {
			current, err := tx.GetTournament(ctx, t.ID)
			if err != nil {
				return err
			}
			n, err := tx.CountRegistrations(ctx, store.RegistrationFilter{TournamentID: t.ID})
			if err != nil {
				return err
			}
			before, after = current.CurrentPlayers, int(n)
			if before == after {
				return nil
			}
			return tx.SetOccupancy(ctx, t.ID, after)
		})
		if err != nil {
			r.log.Error("❌ [RECONCILE] failed to fix occupancy", "tournament_id", t.ID, "error", err)
			continue
		}
		if before != after {
			fixed++
			metrics.OccupancyCorrections.Inc()
			r.log.Warn("⚠️ [RECONCILE] occupancy corrected", "tournament_id", t.ID, "from", before, "to", after)
		}
	}
	return fixed, nil
}
