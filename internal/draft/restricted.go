package draft

import "slices"

// computeAllowedRoles decides which roles a pick on the given team may
// target. While the team has spare capacity beyond its shortages, any role
// not already at its maximum is open; once capacity equals the shortfall,
// only underfilled roles may be picked.
func (c *Config) computeAllowedRoles(team []PlayerSlot) []string {
	state := c.teamState(team)

	if state.Remaining > state.UnderfilledTotal {
		var out []string
		for _, name := range c.roleNames() {
			if !containsString(state.FilledRoles, name) {
				out = append(out, name)
			}
		}
		return out
	}

	return state.UnderfilledRoles
}

// computeOverrideRoles finds underfilled roles whose natural pool is spent,
// opening them to the full player list. Roles marked override-immune stay
// closed no matter what.
func (c *Config) computeOverrideRoles(team []PlayerSlot, pool map[string][]PlayerID, unavailable []PlayerID) []string {
	state := c.teamState(team)

	var out []string
	for _, role := range state.UnderfilledRoles {
		rule, ok := c.role(role)
		if !ok || rule.OverrideImmune {
			continue
		}
		if len(differencePlayers(pool[role], unavailable)) == 0 {
			out = append(out, role)
		}
	}
	return out
}

func restrictedToRole(picks []RestrictedPick, player PlayerID, role string) bool {
	for _, rp := range picks {
		if rp.Player == player && rp.Role == role {
			return true
		}
	}
	return false
}

// computeRestrictedPicks runs the restricted-pick fixed point. For every
// role that prevents overrides, if the available pool barely covers the
// still-needed counts across both teams, every available player becomes
// restricted to exactly the teams that need the role. Restricting a player
// shrinks the available count seen by other roles on the next pass, so the
// set only grows; iteration stops at the first unchanged pass.
func (c *Config) computeRestrictedPicks(teams []Team, pool map[string][]PlayerID, unavailable []PlayerID) []RestrictedPick {
	var picks []RestrictedPick

	for {
		old := picks
		picks = nil

		for _, rule := range c.Roles {
			if !rule.PreventOverrides {
				continue
			}

			needed := make([]int, len(teams))
			neededTotal := 0
			for i, team := range teams {
				seated := 0
				for _, slot := range team.Players {
					if slot.Role == rule.Name {
						seated++
					}
				}
				n := rule.Min - seated
				if n < 0 {
					n = 0
				}
				needed[i] = n
				neededTotal += n
			}

			var available []PlayerID
			for _, player := range pool[rule.Name] {
				if containsPlayer(unavailable, player) {
					continue
				}
				if restrictedFor(old, player) && !restrictedToRole(old, player, rule.Name) {
					continue
				}
				available = append(available, player)
			}

			if len(available) > neededTotal {
				continue
			}

			for teamIndex, n := range needed {
				if n <= 0 {
					continue
				}
				for _, player := range available {
					picks = append(picks, RestrictedPick{Role: rule.Name, Player: player, Team: teamIndex})
				}
			}
		}

		if slices.Equal(picks, old) {
			return picks
		}
	}
}
