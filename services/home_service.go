package services

import (
	"context"
	"fmt"
	"time"

	"esports-arena/models"
	"esports-arena/store"
)

const homeUpcomingLimit = 6

type HomeOverview struct {
	Banners          []models.Banner     `json:"banners"`
	Upcoming         []models.Tournament `json:"upcoming"`
	LiveCount        int64               `json:"live_count"`
	JoinedLast24h    int64               `json:"joined_last_24h"`
	PrizesWonLast24h int64               `json:"prizes_won_last_24h"`
}

type HomeService struct {
	store store.Store
	now   func() time.Time
}

func NewHomeService(st store.Store) *HomeService {
	return &HomeService{store: st, now: time.Now}
}

func (s *HomeService) Overview(ctx context.Context) (*HomeOverview, error) {
	now := s.now()
	since := now.Add(-24 * time.Hour)

	banners, err := s.store.ListActiveBanners(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list banners: %w", err)
	}
	upcoming, err := s.store.ListTournaments(ctx, store.TournamentFilter{
		Statuses:    []string{models.TournamentStatusUpcoming},
		StartsAfter: &now,
		Sort:        store.SortByTime,
		Limit:       homeUpcomingLimit,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list upcoming tournaments: %w", err)
	}
	for i := range upcoming {
		decorate(&upcoming[i])
		hideRoom(&upcoming[i])
	}
	live, err := s.store.CountTournaments(ctx, store.TournamentFilter{Statuses: []string{models.TournamentStatusLive}})
	if err != nil {
		return nil, fmt.Errorf("failed to count live tournaments: %w", err)
	}
	joined, err := s.store.CountRegistrations(ctx, store.RegistrationFilter{Since: &since})
	if err != nil {
		return nil, fmt.Errorf("failed to count registrations: %w", err)
	}
	prizes, err := s.store.SumPrizesSince(ctx, since)
	if err != nil {
		return nil, fmt.Errorf("failed to sum prizes: %w", err)
	}

	return &HomeOverview{
		Banners:          banners,
		Upcoming:         upcoming,
		LiveCount:        live,
		JoinedLast24h:    joined,
		PrizesWonLast24h: prizes,
	}, nil
}
