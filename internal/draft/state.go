package draft

import (
	"time"
)

// Team is one side of the draft as it fills up.
type Team struct {
	Faction                  Faction
	Captain                  PlayerID
	Players                  []PlayerSlot
	RestrictedPicksRemaining int
}

func (t Team) clone() Team {
	out := t
	out.Players = make([]PlayerSlot, len(t.Players))
	copy(out.Players, t.Players)
	return out
}

// RestrictedPick locks a player to a role on a specific team because the
// role's remaining pool barely covers demand.
type RestrictedPick struct {
	Role   string   `json:"role"`
	Player PlayerID `json:"player"`
	Team   int      `json:"team"`
}

// Choice is a single structured draft decision, human or automated.
// User carries the acting identity on human turns and stays empty otherwise.
type Choice struct {
	Type     TurnType `json:"type"`
	User     PlayerID `json:"user,omitempty"`
	Faction  Faction  `json:"faction,omitempty"`
	Captain  PlayerID `json:"captain,omitempty"`
	Player   PlayerID `json:"player,omitempty"`
	Role     string   `json:"role,omitempty"`
	Override bool     `json:"override,omitempty"`
	Map      string   `json:"map,omitempty"`
}

// session is the full mutable state of one draft, owned by the service
// loop. Everything here is reset on cleanup; nothing survives the process.
type session struct {
	active   bool
	complete bool

	currentTurn   int
	turnStartTime time.Time

	playerPool     map[string][]PlayerID
	captainPool    []PlayerID
	fullPlayerList []PlayerID

	draftChoices []Choice

	teams []Team

	unavailablePlayers []PlayerID
	pickedMap          string
	remainingMaps      []string

	allowedRoles    []string
	overrideRoles   []string
	restrictedPicks []RestrictedPick

	currentGame string
}

func (s *session) cloneTeams() []Team {
	out := make([]Team, len(s.teams))
	for i, t := range s.teams {
		out[i] = t.clone()
	}
	return out
}

func (s *session) isUnavailable(player PlayerID) bool {
	for _, p := range s.unavailablePlayers {
		if p == player {
			return true
		}
	}
	return false
}

// recomputeUnavailable rebuilds the seated-player set from the canonical
// team state. Always derived, never patched incrementally.
func (s *session) recomputeUnavailable() {
	seen := make(map[PlayerID]bool)
	var out []PlayerID
	for _, team := range s.teams {
		for _, slot := range team.Players {
			if !seen[slot.User] {
				seen[slot.User] = true
				out = append(out, slot.User)
			}
		}
		if team.Captain != "" && !seen[team.Captain] {
			seen[team.Captain] = true
			out = append(out, team.Captain)
		}
	}
	s.unavailablePlayers = out
}

func containsPlayer(players []PlayerID, player PlayerID) bool {
	for _, p := range players {
		if p == player {
			return true
		}
	}
	return false
}

func containsString(values []string, value string) bool {
	for _, v := range values {
		if v == value {
			return true
		}
	}
	return false
}

func withoutString(values []string, value string) []string {
	out := make([]string, 0, len(values))
	for _, v := range values {
		if v != value {
			out = append(out, v)
		}
	}
	return out
}

func differencePlayers(players []PlayerID, exclude []PlayerID) []PlayerID {
	var out []PlayerID
	for _, p := range players {
		if !containsPlayer(exclude, p) {
			out = append(out, p)
		}
	}
	return out
}

func restrictedFor(picks []RestrictedPick, player PlayerID) bool {
	for _, rp := range picks {
		if rp.Player == player {
			return true
		}
	}
	return false
}

func restrictionAllows(picks []RestrictedPick, player PlayerID, role string, team int) bool {
	for _, rp := range picks {
		if rp.Player == player && rp.Role == role && rp.Team == team {
			return true
		}
	}
	return false
}

func restrictedToTeam(picks []RestrictedPick, player PlayerID, team int) bool {
	for _, rp := range picks {
		if rp.Player == player && rp.Team == team {
			return true
		}
	}
	return false
}
