package types

import "time"

// UserProfile is a resolved player identity as shown to clients.
type UserProfile struct {
	ID              string  `json:"id"`
	Alias           string  `json:"alias"`
	SteamID         string  `json:"steamId,omitempty"`
	RatingMean      float64 `json:"ratingMean,omitempty"`
	RatingDeviation float64 `json:"ratingDeviation,omitempty"`
	CaptainScore    float64 `json:"captainScore,omitempty"`
	TotalGames      int     `json:"totalGames,omitempty"`
}

type RoleInfo struct {
	Name             string  `json:"name"`
	Min              int     `json:"min"`
	Max              int     `json:"max"`
	Priority         float64 `json:"priority"`
	OverrideImmune   bool    `json:"overrideImmune,omitempty"`
	PreventOverrides bool    `json:"preventOverrides,omitempty"`
}

type MapInfo struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

type RestrictedPickInfo struct {
	Role   string `json:"role"`
	Player string `json:"player"`
	Team   int    `json:"team"`
}

// TurnStatus merges a turn definition with the choice committed for it, if
// any, with player identities resolved.
type TurnStatus struct {
	Type     string       `json:"type"`
	Method   string       `json:"method"`
	Team     int          `json:"team"`
	Pool     string       `json:"pool,omitempty"`
	Faction  string       `json:"faction,omitempty"`
	Captain  *UserProfile `json:"captain,omitempty"`
	Player   *UserProfile `json:"player,omitempty"`
	Role     string       `json:"role,omitempty"`
	Override bool         `json:"override,omitempty"`
	Map      string       `json:"map,omitempty"`
}

type TeamSlot struct {
	User *UserProfile `json:"user"`
	Role string       `json:"role"`
}

type TeamStatus struct {
	Faction                  string       `json:"faction,omitempty"`
	Captain                  *UserProfile `json:"captain,omitempty"`
	Players                  []TeamSlot   `json:"players"`
	RestrictedPicksRemaining int          `json:"restrictedPicksRemaining"`
}

// DraftStatus is the full externally observable draft state, rebuilt and
// broadcast after every state change.
type DraftStatus struct {
	Active             bool                     `json:"active"`
	Complete           bool                     `json:"complete"`
	CurrentTurn        int                      `json:"currentTurn"`
	Roles              []RoleInfo               `json:"roles"`
	TeamSize           int                      `json:"teamSize"`
	UnavailablePlayers []string                 `json:"unavailablePlayers"`
	MapPool            []MapInfo                `json:"mapPool"`
	PickedMap          string                   `json:"pickedMap,omitempty"`
	RemainingMaps      []string                 `json:"remainingMaps"`
	AllowedRoles       []string                 `json:"allowedRoles"`
	OverrideRoles      []string                 `json:"overrideRoles"`
	RestrictedPicks    []RestrictedPickInfo     `json:"restrictedPicks"`
	TurnStartTime      *time.Time               `json:"turnStartTime,omitempty"`
	TurnEndTime        *time.Time               `json:"turnEndTime,omitempty"`
	CaptainPool        []UserProfile            `json:"captainPool"`
	FullPlayerList     []UserProfile            `json:"fullPlayerList"`
	PlayerPool         map[string][]UserProfile `json:"playerPool"`
	DraftTurns         []TurnStatus             `json:"draftTurns"`
	DraftTeams         []TeamStatus             `json:"draftTeams"`
	CurrentGame        string                   `json:"currentGame,omitempty"`
}
