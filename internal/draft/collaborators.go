package draft

import (
	"context"
	"time"
)

// Profile is the cached view of a player the draft needs: display alias
// plus the precomputed statistics the automated strategies read.
type Profile struct {
	ID              PlayerID
	Alias           string
	SteamID         string
	RatingMean      float64
	RatingDeviation float64
	CaptainScore    float64
	TotalGames      int
}

// Directory resolves player identities to cached profiles.
type Directory interface {
	User(ctx context.Context, id PlayerID) (Profile, error)
	Users(ctx context.Context, ids []PlayerID) ([]Profile, error)
}

// GameTeamRecord is one finalized side of a drafted match.
type GameTeamRecord struct {
	Captain PlayerID     `json:"captain"`
	Faction Faction      `json:"faction"`
	Players []PlayerSlot `json:"players"`
}

// ChoiceRecord is one entry of the persisted draft log: a committed choice
// flattened together with the turn definition it answered. The fields are
// spelled out so the shared type key survives marshaling.
type ChoiceRecord struct {
	Type     TurnType   `json:"type"`
	Method   TurnMethod `json:"method"`
	Team     int        `json:"team"`
	Pool     PoolScope  `json:"pool,omitempty"`
	User     PlayerID   `json:"user,omitempty"`
	Faction  Faction    `json:"faction,omitempty"`
	Captain  PlayerID   `json:"captain,omitempty"`
	Player   PlayerID   `json:"player,omitempty"`
	Role     string     `json:"role,omitempty"`
	Override bool       `json:"override,omitempty"`
	Map      string     `json:"map,omitempty"`
}

func newChoiceRecord(def TurnDefinition, choice Choice) ChoiceRecord {
	return ChoiceRecord{
		Type:     def.Type,
		Method:   def.Method,
		Team:     def.Team,
		Pool:     def.Pool,
		User:     choice.User,
		Faction:  choice.Faction,
		Captain:  choice.Captain,
		Player:   choice.Player,
		Role:     choice.Role,
		Override: choice.Override,
		Map:      choice.Map,
	}
}

// GameRecord is everything persisted when a completed draft becomes a
// match: final teams, the full choice log, and the pools that were
// available at draft time for audit.
type GameRecord struct {
	Map          string
	Teams        []GameTeamRecord
	Choices      []ChoiceRecord
	PoolMaps     []string
	PoolPlayers  map[PlayerID][]string
	PoolCaptains []PlayerID
}

// PenaltyRecord is a disciplinary entry, created when a captain lets their
// turn expire.
type PenaltyRecord struct {
	User   PlayerID
	Type   string
	Reason string
	Date   time.Time
	Active bool
}

// GameStore is the persistence collaborator: match creation, penalties,
// and the recent-map lookup backing the freshness strategies.
type GameStore interface {
	CreateGame(ctx context.Context, rec GameRecord) (string, error)
	CreatePenalty(ctx context.Context, rec PenaltyRecord) error
	// LatestMap returns the map of the player's most recent game, or ""
	// when the player has no recorded games.
	LatestMap(ctx context.Context, player PlayerID) (string, error)
}

// Allocator assigns a persisted match to a game server. Failure does not
// roll the match record back, but it does end the draft.
type Allocator interface {
	AssignServer(ctx context.Context, gameID string) error
}

// Notifier publishes human-readable action lines and structured
// operational errors.
type Notifier interface {
	PostAction(ctx context.Context, user PlayerID, action string)
	PostError(ctx context.Context, description string, err error)
}

// RestrictionEngine exposes aspect-based player restrictions (for example
// a temporary ban from captaining). The draft seeds its captain pool from
// these and asks for a refresh whenever a draft starts or ends.
type RestrictionEngine interface {
	Restrictions(ctx context.Context, ids []PlayerID) (map[PlayerID][]string, error)
	RefreshRestrictions(ctx context.Context, ids []PlayerID) error
}
