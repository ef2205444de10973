package draft

// PlayerSlot is one seated player and the role they were drafted into.
type PlayerSlot struct {
	User PlayerID `json:"user"`
	Role string   `json:"role"`
}

// TeamState is the capacity summary of a team's current composition.
// It is derived purely from the player-role list and the configured rules.
type TeamState struct {
	Players          int
	UnderfilledRoles []string
	UnderfilledTotal int
	FilledRoles      []string
	OverfilledTotal  int
	Remaining        int
}

func (c *Config) roleDistribution(players []PlayerSlot) map[string]int {
	counts := make(map[string]int, len(c.Roles))
	for _, r := range c.Roles {
		counts[r.Name] = 0
	}
	for _, p := range players {
		counts[p.Role]++
	}
	return counts
}

// teamState computes per-role fill counts against the configured minimums
// and maximums. Roles at or above their maximum land in FilledRoles; roles
// below their minimum land in UnderfilledRoles with the shortfall summed.
func (c *Config) teamState(players []PlayerSlot) TeamState {
	counts := c.roleDistribution(players)

	state := TeamState{}
	for _, role := range c.Roles {
		state.Players += counts[role.Name]

		if counts[role.Name] < role.Min {
			state.UnderfilledRoles = append(state.UnderfilledRoles, role.Name)
			state.UnderfilledTotal += role.Min - counts[role.Name]
		}

		if counts[role.Name] >= role.Max {
			state.FilledRoles = append(state.FilledRoles, role.Name)
			state.OverfilledTotal += counts[role.Name] - role.Max
		}
	}

	state.Remaining = c.TeamSize - state.Players

	return state
}
