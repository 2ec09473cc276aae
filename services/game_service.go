package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"esports-arena/logger"
	"esports-arena/models"
	"esports-arena/store"

	"github.com/google/uuid"
	"github.com/gosimple/slug"
	"golang.org/x/text/cases"
)

// GameVisuals are the fallback images for a tournament without its own artwork.
type GameVisuals struct {
	Thumbnail string `json:"thumbnail"`
	Banner    string `json:"banner"`
}

var defaultVisuals = GameVisuals{
	Thumbnail: "/images/generic-card.jpg",
	Banner:    "/images/generic-banner.jpg",
}

var freeFireVisuals = GameVisuals{
	Thumbnail: "/images/freefire-card.jpg",
	Banner:    "/images/freefire-banner.jpg",
}

// visualKeys are matched in order as case-insensitive substrings of the game name.
var visualKeys = []struct {
	key     string
	visuals GameVisuals
}{
	{"free fire", freeFireVisuals},
	{"garena free fire", freeFireVisuals},
	{"ff", freeFireVisuals},
}

var folder = cases.Fold()

// VisualsFor returns the artwork for a free-text game name.
func VisualsFor(gameName string) GameVisuals {
	if gameName == "" {
		return defaultVisuals
	}
	normalized := folder.String(gameName)
	for _, v := range visualKeys {
		if strings.Contains(normalized, v.key) {
			return v.visuals
		}
	}
	return defaultVisuals
}

type CreateGameInput struct {
	Name      string `json:"name" validate:"required,min=2,max=80"`
	ImageURL  string `json:"image_url" validate:"omitempty,url"`
	SortOrder int    `json:"sort_order"`
}

// GameTournamentsQuery filters a game's tournament list. Filter is all|live|upcoming, Sort is time|prize|entry.
type GameTournamentsQuery struct {
	Filter string
	Sort   string
}

type GameService struct {
	store store.Store
	log   *logger.Logger
}

func NewGameService(st store.Store, log *logger.Logger) *GameService {
	return &GameService{store: st, log: log.With("component", "games")}
}

// ListGames returns active games by sort order, each with its live tournament count.
func (s *GameService) ListGames(ctx context.Context) ([]models.Game, error) {
	games, err := s.store.ListActiveGames(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list games: %w", err)
	}
	for i := range games {
		n, err := s.store.CountTournaments(ctx, store.TournamentFilter{
			Statuses: []string{models.TournamentStatusLive},
			GameName: games[i].Name,
		})
		if err != nil {
			return nil, fmt.Errorf("failed to count live tournaments: %w", err)
		}
		games[i].LiveTournaments = n
	}
	return games, nil
}

func (s *GameService) GetGame(ctx context.Context, gameSlug string) (*models.Game, error) {
	g, err := s.store.GetGameBySlug(ctx, gameSlug)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, ErrGameNotFound
		}
		return nil, fmt.Errorf("failed to load game: %w", err)
	}
	return g, nil
}

// Tournaments lists tournaments whose game name contains the game's name, case-insensitively.
func (s *GameService) Tournaments(ctx context.Context, gameSlug string, q GameTournamentsQuery) (*models.Game, []models.Tournament, error) {
	g, err := s.GetGame(ctx, gameSlug)
	if err != nil {
		return nil, nil, err
	}
	f := store.TournamentFilter{GameName: g.Name, Sort: q.Sort}
	switch q.Filter {
	case "", "all":
	case models.TournamentStatusLive, models.TournamentStatusUpcoming:
		f.Statuses = []string{q.Filter}
	default:
		return nil, nil, fmt.Errorf("%w: unknown filter %q", ErrInvalidInput, q.Filter)
	}
	switch q.Sort {
	case "", store.SortByTime, store.SortByPrize, store.SortByEntry:
	default:
		return nil, nil, fmt.Errorf("%w: unknown sort %q", ErrInvalidInput, q.Sort)
	}

	list, err := s.store.ListTournaments(ctx, f)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to list tournaments: %w", err)
	}
	decorateAll(list)
	return g, list, nil
}

func (s *GameService) CreateGame(ctx context.Context, in CreateGameInput) (*models.Game, error) {
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return nil, fmt.Errorf("%w: name is required", ErrInvalidInput)
	}
	g := &models.Game{
		ID:        uuid.NewString(),
		Name:      name,
		Slug:      slug.Make(name),
		ImageURL:  in.ImageURL,
		IsActive:  true,
		SortOrder: in.SortOrder,
	}
	if err := s.store.CreateGame(ctx, g); err != nil {
		if errors.Is(err, store.ErrDuplicate) {
			return nil, fmt.Errorf("%w: game %q already exists", ErrInvalidInput, g.Slug)
		}
		return nil, fmt.Errorf("failed to create game: %w", err)
	}
	s.log.Info("🎮 [GAMES] created", "game_id", g.ID, "slug", g.Slug)
	return g, nil
}

func (s *GameService) CreateBanner(ctx context.Context, b *models.Banner) error {
	b.ID = uuid.NewString()
	b.IsActive = true
	if err := s.store.CreateBanner(ctx, b); err != nil {
		return fmt.Errorf("failed to create banner: %w", err)
	}
	return nil
}

// decorate fills calculated fields and fallback artwork.
func decorate(t *models.Tournament) {
	t.TotalPrize = CalculateTotalPrize(t)
	if t.ThumbnailURL == "" || t.BannerURL == "" {
		v := VisualsFor(t.Game)
		if t.ThumbnailURL == "" {
			t.ThumbnailURL = v.Thumbnail
		}
		if t.BannerURL == "" {
			t.BannerURL = v.Banner
		}
	}
}

func decorateAll(list []models.Tournament) {
	for i := range list {
		decorate(&list[i])
	}
}
