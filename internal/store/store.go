package store

import (
	"context"
	"encoding/json"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"github.com/fwdcp/pugchamp/internal/draft"
)

// Store backs the draft's persistence collaborators with Postgres.
type Store struct {
	db  *gorm.DB
	log *zap.Logger
}

func Open(dsn string, log *zap.Logger) (*Store, error) {
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{})
	if err != nil {
		return nil, errors.Wrap(err, "opening database")
	}

	if err := db.AutoMigrate(&User{}, &Game{}, &GamePlayer{}, &Penalty{}); err != nil {
		return nil, errors.Wrap(err, "migrating schema")
	}

	return &Store{db: db, log: log}, nil
}

func NewWithDB(db *gorm.DB, log *zap.Logger) *Store {
	return &Store{db: db, log: log}
}

func (s *Store) User(ctx context.Context, id draft.PlayerID) (draft.Profile, error) {
	var user User
	if err := s.db.WithContext(ctx).First(&user, "id = ?", string(id)).Error; err != nil {
		return draft.Profile{}, errors.Wrapf(err, "fetching user %s", id)
	}
	return toProfile(user), nil
}

func (s *Store) Users(ctx context.Context, ids []draft.PlayerID) ([]draft.Profile, error) {
	raw := make([]string, len(ids))
	for i, id := range ids {
		raw[i] = string(id)
	}

	var users []User
	if err := s.db.WithContext(ctx).Where("id IN ?", raw).Find(&users).Error; err != nil {
		return nil, errors.Wrap(err, "fetching users")
	}

	byID := make(map[string]User, len(users))
	for _, u := range users {
		byID[u.ID] = u
	}

	// Preserve request order; unknown ids resolve to bare profiles so
	// callers never lose a candidate.
	out := make([]draft.Profile, 0, len(ids))
	for _, id := range ids {
		if u, ok := byID[string(id)]; ok {
			out = append(out, toProfile(u))
			continue
		}
		out = append(out, draft.Profile{ID: id, Alias: string(id)})
	}
	return out, nil
}

func toProfile(u User) draft.Profile {
	return draft.Profile{
		ID:              draft.PlayerID(u.ID),
		Alias:           u.Alias,
		SteamID:         u.SteamID,
		RatingMean:      u.RatingMean,
		RatingDeviation: u.RatingDeviation,
		CaptainScore:    u.CaptainScore,
		TotalGames:      u.TotalGames,
	}
}

// CreateGame persists a drafted match atomically: the game row, its audit
// documents, and the queryable roster rows.
func (s *Store) CreateGame(ctx context.Context, rec draft.GameRecord) (string, error) {
	teams, err := json.Marshal(rec.Teams)
	if err != nil {
		return "", errors.Wrap(err, "encoding teams")
	}
	choices, err := json.Marshal(rec.Choices)
	if err != nil {
		return "", errors.Wrap(err, "encoding draft choices")
	}
	pool, err := json.Marshal(struct {
		Maps     []string                    `json:"maps"`
		Players  map[draft.PlayerID][]string `json:"players"`
		Captains []draft.PlayerID            `json:"captains"`
	}{rec.PoolMaps, rec.PoolPlayers, rec.PoolCaptains})
	if err != nil {
		return "", errors.Wrap(err, "encoding draft pool")
	}

	game := Game{
		ID:           uuid.NewString(),
		Status:       "initializing",
		Date:         time.Now(),
		Map:          rec.Map,
		Teams:        teams,
		DraftChoices: choices,
		DraftPool:    pool,
	}
	for _, team := range rec.Teams {
		for _, slot := range team.Players {
			game.Players = append(game.Players, GamePlayer{
				GameID:  game.ID,
				UserID:  string(slot.User),
				Role:    slot.Role,
				Faction: string(team.Faction),
			})
		}
	}

	if err := s.db.WithContext(ctx).Create(&game).Error; err != nil {
		return "", errors.Wrap(err, "creating game")
	}

	s.log.Info("game created", zap.String("game", game.ID), zap.String("map", game.Map))
	return game.ID, nil
}

func (s *Store) CreatePenalty(ctx context.Context, rec draft.PenaltyRecord) error {
	penalty := Penalty{
		ID:     uuid.NewString(),
		UserID: string(rec.User),
		Type:   rec.Type,
		Reason: rec.Reason,
		Date:   rec.Date,
		Active: rec.Active,
	}
	if err := s.db.WithContext(ctx).Create(&penalty).Error; err != nil {
		return errors.Wrap(err, "creating penalty")
	}
	return nil
}

// LatestMap returns the map of the player's most recent game, or "" when
// the player has no recorded games.
func (s *Store) LatestMap(ctx context.Context, player draft.PlayerID) (string, error) {
	var game Game
	err := s.db.WithContext(ctx).
		Joins("JOIN game_players ON game_players.game_id = games.id").
		Where("game_players.user_id = ?", string(player)).
		Order("games.date DESC").
		First(&game).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return "", nil
	}
	if err != nil {
		return "", errors.Wrapf(err, "fetching latest game for %s", player)
	}
	return game.Map, nil
}

// Restrictions derives aspect restrictions from active penalties: a live
// "captain" penalty keeps a player out of the captain pool.
func (s *Store) Restrictions(ctx context.Context, ids []draft.PlayerID) (map[draft.PlayerID][]string, error) {
	raw := make([]string, len(ids))
	for i, id := range ids {
		raw[i] = string(id)
	}

	var penalties []Penalty
	err := s.db.WithContext(ctx).
		Where("user_id IN ? AND active = ?", raw, true).
		Find(&penalties).Error
	if err != nil {
		return nil, errors.Wrap(err, "fetching penalties")
	}

	out := make(map[draft.PlayerID][]string, len(ids))
	for _, p := range penalties {
		id := draft.PlayerID(p.UserID)
		if !containsAspect(out[id], p.Type) {
			out[id] = append(out[id], p.Type)
		}
	}
	return out, nil
}

// RefreshRestrictions is the hook the draft calls when a draft starts or
// ends. Restrictions here are derived on read, so there is nothing to
// recompute; downstream consumers watch the penalties table.
func (s *Store) RefreshRestrictions(ctx context.Context, ids []draft.PlayerID) error {
	s.log.Debug("restriction refresh requested", zap.Int("players", len(ids)))
	return nil
}

func containsAspect(aspects []string, aspect string) bool {
	for _, a := range aspects {
		if a == aspect {
			return true
		}
	}
	return false
}
