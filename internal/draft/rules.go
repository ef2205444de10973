package draft

import (
	"time"
)

type PlayerID string

type Faction string

const (
	FactionRED Faction = "RED"
	FactionBLU Faction = "BLU"
)

// RoleRule is the per-role capacity rule a team composition must satisfy.
// Max defaults to the team size when the config leaves it unset.
type RoleRule struct {
	Name             string
	Min              int
	Max              int
	Priority         float64
	OverrideImmune   bool
	PreventOverrides bool
}

type TurnType string

const (
	TurnFactionSelect           TurnType = "factionSelect"
	TurnCaptainSelect           TurnType = "captainSelect"
	TurnPlayerPick              TurnType = "playerPick"
	TurnCaptainRolePick         TurnType = "captainRolePick"
	TurnPlayerOrCaptainRolePick TurnType = "playerOrCaptainRolePick"
	TurnMapBan                  TurnType = "mapBan"
	TurnMapPick                 TurnType = "mapPick"
)

type TurnMethod string

const (
	MethodCaptain       TurnMethod = "captain"
	MethodRandom        TurnMethod = "random"
	MethodSuccess       TurnMethod = "success"
	MethodSuccessRandom TurnMethod = "success-random"
	MethodExperience    TurnMethod = "experience"
	MethodBalance       TurnMethod = "balance"
	MethodFresh         TurnMethod = "fresh"
)

type PoolScope string

const (
	PoolGlobal PoolScope = "global"
	PoolTeam   PoolScope = "team"
)

// TurnDefinition is one configured step of the draft order.
type TurnDefinition struct {
	Type   TurnType   `json:"type"`
	Method TurnMethod `json:"method"`
	Team   int        `json:"team"`
	Pool   PoolScope  `json:"pool,omitempty"`
}

type MapInfo struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// Config holds the immutable rule set for a draft: role capacity rules,
// the ordered turn sequence, the map pool, and the global limits.
type Config struct {
	Roles               []RoleRule
	TurnOrder           []TurnDefinition
	Maps                []MapInfo
	TeamSize            int
	RestrictedPickLimit int
	TurnTimeLimit       time.Duration
	SeparateCaptainPool bool
}

func (c *Config) role(name string) (RoleRule, bool) {
	for _, r := range c.Roles {
		if r.Name == name {
			return r, true
		}
	}
	return RoleRule{}, false
}

func (c *Config) roleNames() []string {
	names := make([]string, len(c.Roles))
	for i, r := range c.Roles {
		names[i] = r.Name
	}
	return names
}

func (c *Config) mapIDs() []string {
	ids := make([]string, len(c.Maps))
	for i, m := range c.Maps {
		ids[i] = m.ID
	}
	return ids
}

func (c *Config) rolePriority(name string) float64 {
	if r, ok := c.role(name); ok && r.Priority > 0 {
		return r.Priority
	}
	return 1
}
