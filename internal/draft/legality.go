package draft

// mapState pairs the picked map (empty until a mapPick commits) with the
// maps still open to ban or pick.
type mapState struct {
	picked    string
	remaining []string
}

// legalState reports whether a prospective team/map configuration can still
// reach (or, with final, has reached) a valid completed draft. Callers
// validate candidate state with this before committing it; a false result
// on state built from validated inputs is an integrity violation, not a
// user error.
func (c *Config) legalState(teams []Team, maps mapState, final bool) bool {
	for _, team := range teams {
		state := c.teamState(team.Players)

		if state.Remaining < 0 {
			return false
		}

		if state.Remaining < state.UnderfilledTotal {
			return false
		}

		if state.OverfilledTotal > 0 {
			return false
		}

		if final {
			if team.Captain == "" {
				return false
			}

			if team.Faction != FactionRED && team.Faction != FactionBLU {
				return false
			}

			if state.Remaining != 0 {
				return false
			}

			if state.UnderfilledTotal > 0 {
				return false
			}
		}
	}

	if maps.picked == "" && len(maps.remaining) == 0 {
		return false
	}

	if final {
		if maps.picked == "" {
			return false
		}

		if teams[0].Faction == teams[1].Faction {
			return false
		}
	}

	return true
}
