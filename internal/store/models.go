package store

import (
	"time"

	"gorm.io/datatypes"
)

// User is the cached player profile the draft reads: alias plus the
// precomputed statistics (rating, captain score, career games).
type User struct {
	ID              string `gorm:"primaryKey"`
	Alias           string
	SteamID         string `gorm:"index"`
	RatingMean      float64
	RatingDeviation float64
	CaptainScore    float64
	TotalGames      int
	UpdatedAt       time.Time
}

// Game is a persisted match produced by a completed draft. Teams,
// DraftChoices, and DraftPool are audit documents; GamePlayer rows carry
// the queryable roster.
type Game struct {
	ID           string `gorm:"type:uuid;primaryKey"`
	Status       string
	Date         time.Time `gorm:"index"`
	Map          string
	Teams        datatypes.JSON
	DraftChoices datatypes.JSON
	DraftPool    datatypes.JSON
	CreatedAt    time.Time

	Players []GamePlayer `gorm:"foreignKey:GameID"`
}

type GamePlayer struct {
	ID      uint   `gorm:"primaryKey"`
	GameID  string `gorm:"type:uuid;index"`
	UserID  string `gorm:"index"`
	Role    string
	Faction string
}

// Penalty is a disciplinary record; an active "captain" penalty restricts
// the player from captaining.
type Penalty struct {
	ID     string `gorm:"type:uuid;primaryKey"`
	UserID string `gorm:"index"`
	Type   string
	Reason string
	Date   time.Time
	Active bool
}
