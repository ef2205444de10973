package draft

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/fwdcp/pugchamp/pkg/types"
)

// status serializes the current session for external consumption, with
// player identities resolved through the directory cache. A directory
// failure degrades to bare identities rather than blocking the broadcast.
func (s *Service) status() types.DraftStatus {
	status := types.DraftStatus{
		Active:             s.s.active,
		Complete:           s.s.complete,
		CurrentTurn:        s.s.currentTurn,
		TeamSize:           s.cfg.TeamSize,
		PickedMap:          s.s.pickedMap,
		RemainingMaps:      s.s.remainingMaps,
		AllowedRoles:       s.s.allowedRoles,
		OverrideRoles:      s.s.overrideRoles,
		CurrentGame:        s.s.currentGame,
		UnavailablePlayers: make([]string, 0, len(s.s.unavailablePlayers)),
	}

	for _, role := range s.cfg.Roles {
		status.Roles = append(status.Roles, types.RoleInfo{
			Name:             role.Name,
			Min:              role.Min,
			Max:              role.Max,
			Priority:         role.Priority,
			OverrideImmune:   role.OverrideImmune,
			PreventOverrides: role.PreventOverrides,
		})
	}
	for _, m := range s.cfg.Maps {
		status.MapPool = append(status.MapPool, types.MapInfo{ID: m.ID, Name: m.Name})
	}

	for _, player := range s.s.unavailablePlayers {
		status.UnavailablePlayers = append(status.UnavailablePlayers, string(player))
	}
	for _, rp := range s.s.restrictedPicks {
		status.RestrictedPicks = append(status.RestrictedPicks, types.RestrictedPickInfo{
			Role:   rp.Role,
			Player: string(rp.Player),
			Team:   rp.Team,
		})
	}

	if s.s.active && !s.s.complete {
		start := s.s.turnStartTime
		end := start.Add(s.cfg.TurnTimeLimit)
		status.TurnStartTime = &start
		status.TurnEndTime = &end
	}

	profiles := s.resolveProfiles()

	for _, captain := range s.s.captainPool {
		status.CaptainPool = append(status.CaptainPool, *profiles[captain])
	}
	for _, player := range s.s.fullPlayerList {
		status.FullPlayerList = append(status.FullPlayerList, *profiles[player])
	}

	status.PlayerPool = make(map[string][]types.UserProfile, len(s.s.playerPool))
	for role, players := range s.s.playerPool {
		pool := make([]types.UserProfile, 0, len(players))
		for _, player := range players {
			pool = append(pool, *profiles[player])
		}
		status.PlayerPool[role] = pool
	}

	for i, def := range s.cfg.TurnOrder {
		turn := types.TurnStatus{
			Type:   string(def.Type),
			Method: string(def.Method),
			Team:   def.Team,
			Pool:   string(def.Pool),
		}
		if i < len(s.s.draftChoices) {
			choice := s.s.draftChoices[i]
			turn.Faction = string(choice.Faction)
			turn.Role = choice.Role
			turn.Override = choice.Override
			turn.Map = choice.Map
			if choice.Captain != "" {
				turn.Captain = profiles[choice.Captain]
			}
			if choice.Player != "" {
				turn.Player = profiles[choice.Player]
			}
		}
		status.DraftTurns = append(status.DraftTurns, turn)
	}

	for _, team := range s.s.teams {
		teamStatus := types.TeamStatus{
			Faction:                  string(team.Faction),
			RestrictedPicksRemaining: team.RestrictedPicksRemaining,
			Players:                  make([]types.TeamSlot, 0, len(team.Players)),
		}
		if team.Captain != "" {
			teamStatus.Captain = profiles[team.Captain]
		}
		for _, slot := range team.Players {
			teamStatus.Players = append(teamStatus.Players, types.TeamSlot{
				User: profiles[slot.User],
				Role: slot.Role,
			})
		}
		status.DraftTeams = append(status.DraftTeams, teamStatus)
	}

	return status
}

// resolveProfiles batch-fetches every identity the snapshot mentions. The
// returned map always has an entry for every requested id.
func (s *Service) resolveProfiles() map[PlayerID]*types.UserProfile {
	ids := unionPlayers(s.s.captainPool, s.s.fullPlayerList)

	out := make(map[PlayerID]*types.UserProfile, len(ids))
	for _, id := range ids {
		out[id] = &types.UserProfile{ID: string(id), Alias: string(id)}
	}

	if len(ids) == 0 {
		return out
	}

	ctx, cancel := context.WithTimeout(s.ctx, 2*time.Second)
	defer cancel()

	profiles, err := s.users.Users(ctx, ids)
	if err != nil {
		s.log.Warn("resolving draft profiles", zap.Error(err))
		return out
	}

	for _, p := range profiles {
		out[p.ID] = &types.UserProfile{
			ID:              string(p.ID),
			Alias:           p.Alias,
			SteamID:         p.SteamID,
			RatingMean:      p.RatingMean,
			RatingDeviation: p.RatingDeviation,
			CaptainScore:    p.CaptainScore,
			TotalGames:      p.TotalGames,
		}
	}

	return out
}
