package draft

import (
	"context"
	"errors"
	"math"
	"math/rand"
	"sort"
)

var ErrUnsupportedTurn = errors.New("unsupported turn type and method")
var ErrNoCaptainCandidates = errors.New("no potential captains to select from")
var ErrNoPlayerCandidates = errors.New("no players to choose from")
var ErrNoAllowedRoles = errors.New("no allowed roles to choose from")

// autoView is the copy of session state an automated choice works from.
// The service hands it a snapshot so statistics reads never race a commit.
type autoView struct {
	turn            TurnDefinition
	teams           []Team
	playerPool      map[string][]PlayerID
	captainPool     []PlayerID
	fullPlayerList  []PlayerID
	unavailable     []PlayerID
	allowedRoles    []string
	overrideRoles   []string
	restrictedPicks []RestrictedPick
	remainingMaps   []string
}

// autoEngine makes choices for turns whose method is not "captain". Every
// supported (type, method) pair has an explicit arm; anything else is a
// configuration error that aborts the draft.
type autoEngine struct {
	cfg   *Config
	rng   *rand.Rand
	users Directory
	games GameStore
}

func (e *autoEngine) choose(ctx context.Context, v autoView) (Choice, error) {
	choice := Choice{Type: v.turn.Type}

	switch v.turn.Type {
	case TurnFactionSelect:
		if v.turn.Method == MethodRandom {
			if e.rng.Intn(2) == 0 {
				choice.Faction = FactionBLU
			} else {
				choice.Faction = FactionRED
			}
			return choice, nil
		}

	case TurnCaptainSelect:
		return e.chooseCaptain(ctx, v)

	case TurnPlayerPick:
		return e.choosePlayer(ctx, v)

	case TurnCaptainRolePick:
		if v.turn.Method == MethodRandom {
			role, err := e.weightedRole(v.allowedRoles)
			if err != nil {
				return Choice{}, err
			}
			choice.Role = role
			return choice, nil
		}

	case TurnPlayerOrCaptainRolePick:
		// Only human captain choice is supported for this turn type.

	case TurnMapBan:
		switch v.turn.Method {
		case MethodRandom:
			choice.Map = pickString(e.rng, v.remainingMaps)
			return choice, nil
		case MethodFresh:
			m, err := e.freshMap(ctx, v, true)
			if err != nil {
				return Choice{}, err
			}
			choice.Map = m
			return choice, nil
		}

	case TurnMapPick:
		switch v.turn.Method {
		case MethodRandom:
			choice.Map = pickString(e.rng, v.remainingMaps)
			return choice, nil
		case MethodFresh:
			m, err := e.freshMap(ctx, v, false)
			if err != nil {
				return Choice{}, err
			}
			choice.Map = m
			return choice, nil
		}
	}

	return Choice{}, ErrUnsupportedTurn
}

// weightedRole draws a role from the allowed set, weighted by configured
// priority.
func (e *autoEngine) weightedRole(allowed []string) (string, error) {
	if len(allowed) == 0 {
		return "", ErrNoAllowedRoles
	}
	weights := make([]float64, len(allowed))
	for i, role := range allowed {
		weights[i] = e.cfg.rolePriority(role)
	}
	return allowed[weightedIndex(e.rng, weights)], nil
}

func (e *autoEngine) chooseCaptain(ctx context.Context, v autoView) (Choice, error) {
	choice := Choice{Type: v.turn.Type}

	var pool []PlayerID
	switch v.turn.Pool {
	case PoolGlobal:
		pool = differencePlayers(v.captainPool, v.unavailable)
	case PoolTeam:
		for _, slot := range v.teams[v.turn.Team].Players {
			if containsPlayer(v.captainPool, slot.User) {
				pool = append(pool, slot.User)
			}
		}
	}

	if len(pool) == 0 {
		return Choice{}, ErrNoCaptainCandidates
	}

	switch v.turn.Method {
	case MethodRandom:
		choice.Captain = pickPlayer(e.rng, pool)
		return choice, nil

	case MethodSuccess:
		profiles, err := e.users.Users(ctx, pool)
		if err != nil {
			return Choice{}, err
		}
		weights := make([]float64, len(profiles))
		for i, p := range profiles {
			weights[i] = p.CaptainScore
		}
		choice.Captain = profiles[weightedIndex(e.rng, weights)].ID
		return choice, nil

	case MethodSuccessRandom:
		profiles, err := e.users.Users(ctx, pool)
		if err != nil {
			return Choice{}, err
		}
		candidates := make([]PlayerID, len(profiles))
		weights := make([]float64, len(profiles))
		for i, p := range profiles {
			candidates[i] = p.ID
			weights[i] = p.CaptainScore
		}

		// Draw without replacement until two finalists are collected,
		// then flip between them.
		var finalists []PlayerID
		for len(finalists) < 2 && len(candidates) > 0 {
			i := weightedIndex(e.rng, weights)
			finalists = append(finalists, candidates[i])
			candidates = append(candidates[:i], candidates[i+1:]...)
			weights = append(weights[:i], weights[i+1:]...)
		}
		choice.Captain = pickPlayer(e.rng, finalists)
		return choice, nil

	case MethodExperience:
		profiles, err := e.users.Users(ctx, pool)
		if err != nil {
			return Choice{}, err
		}
		best := profiles[0]
		for _, p := range profiles[1:] {
			if p.TotalGames > best.TotalGames {
				best = p
			}
		}
		choice.Captain = best.ID
		return choice, nil
	}

	return Choice{}, ErrUnsupportedTurn
}

// playerCandidates is the eligible pool for a role pick: the role's pool
// (or the full list on an override), minus seated players and players
// restricted away from this role/team pairing.
func (e *autoEngine) playerCandidates(v autoView, role string, override bool) []PlayerID {
	base := v.playerPool[role]
	if override {
		base = v.fullPlayerList
	}

	var out []PlayerID
	for _, player := range differencePlayers(base, v.unavailable) {
		if restrictedFor(v.restrictedPicks, player) && !restrictionAllows(v.restrictedPicks, player, role, v.turn.Team) {
			continue
		}
		out = append(out, player)
	}
	return out
}

func (e *autoEngine) choosePlayer(ctx context.Context, v autoView) (Choice, error) {
	choice := Choice{Type: v.turn.Type}

	switch v.turn.Method {
	case MethodRandom:
		role, err := e.weightedRole(v.allowedRoles)
		if err != nil {
			return Choice{}, err
		}
		choice.Role = role
		choice.Override = containsString(v.overrideRoles, choice.Role)

		pool := e.playerCandidates(v, choice.Role, choice.Override)
		if len(pool) == 0 {
			return Choice{}, ErrNoPlayerCandidates
		}
		choice.Player = pickPlayer(e.rng, pool)
		return choice, nil

	case MethodBalance:
		if len(v.allowedRoles) == 0 {
			return Choice{}, ErrNoAllowedRoles
		}
		dist := e.cfg.roleDistribution(v.teams[v.turn.Team].Players)

		// Most-starved role first: weight shortage by priority, divide by
		// how many pool players could still fill it.
		bestScore := math.Inf(-1)
		for _, role := range v.allowedRoles {
			rule, _ := e.cfg.role(role)
			needed := float64(rule.Min - dist[role])
			available := float64(len(differencePlayers(v.playerPool[role], v.unavailable)))
			score := (e.cfg.rolePriority(role)*needed + epsilon) / (available + epsilon)
			if score > bestScore {
				bestScore = score
				choice.Role = role
			}
		}
		choice.Override = containsString(v.overrideRoles, choice.Role)

		ids := e.playerCandidates(v, choice.Role, choice.Override)
		if len(ids) == 0 {
			return Choice{}, ErrNoPlayerCandidates
		}
		pool, err := e.users.Users(ctx, ids)
		if err != nil {
			return Choice{}, err
		}

		target, err := e.balanceTarget(ctx, v, pool)
		if err != nil {
			return Choice{}, err
		}

		sort.SliceStable(pool, func(i, j int) bool {
			di := math.Abs(pool[i].RatingMean - target)
			dj := math.Abs(pool[j].RatingMean - target)
			if di != dj {
				return di < dj
			}
			return pool[i].RatingDeviation < pool[j].RatingDeviation
		})
		choice.Player = pool[0].ID
		return choice, nil
	}

	return Choice{}, ErrUnsupportedTurn
}

// balanceTarget computes the rating a balance pick should aim for: the
// rating gap to the opposing team while this team is behind on head count,
// otherwise the candidate pool's average.
func (e *autoEngine) balanceTarget(ctx context.Context, v autoView, pool []Profile) (float64, error) {
	ally := v.teams[v.turn.Team]
	enemy := v.teams[1-v.turn.Team]

	if len(ally.Players) < len(enemy.Players) {
		allyTotal, err := e.ratingTotal(ctx, ally.Players)
		if err != nil {
			return 0, err
		}
		enemyTotal, err := e.ratingTotal(ctx, enemy.Players)
		if err != nil {
			return 0, err
		}
		return enemyTotal - allyTotal, nil
	}

	total := 0.0
	for _, p := range pool {
		total += p.RatingMean
	}
	return total / float64(len(pool)), nil
}

func (e *autoEngine) ratingTotal(ctx context.Context, slots []PlayerSlot) (float64, error) {
	ids := make([]PlayerID, len(slots))
	for i, slot := range slots {
		ids[i] = slot.User
	}
	profiles, err := e.users.Users(ctx, ids)
	if err != nil {
		return 0, err
	}
	total := 0.0
	for _, p := range profiles {
		total += p.RatingMean
	}
	return total, nil
}

// freshMap counts, for each seated player, the map of their single most
// recent game. A ban targets the most-counted map, a pick the
// least-counted; ties break to the lexicographically smallest map id. With
// no recent games touching the remaining pool it falls back to a uniform
// draw.
func (e *autoEngine) freshMap(ctx context.Context, v autoView, ban bool) (string, error) {
	seen := make(map[PlayerID]bool)
	counts := make(map[string]int)

	for _, team := range v.teams {
		for _, slot := range team.Players {
			if seen[slot.User] {
				continue
			}
			seen[slot.User] = true

			m, err := e.games.LatestMap(ctx, slot.User)
			if err != nil {
				return "", err
			}
			if m == "" || !containsString(v.remainingMaps, m) {
				continue
			}
			counts[m]++
		}
	}

	if len(counts) == 0 {
		return pickString(e.rng, v.remainingMaps), nil
	}

	ids := make([]string, 0, len(counts))
	for id := range counts {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	best := ids[0]
	for _, id := range ids[1:] {
		if ban && counts[id] > counts[best] {
			best = id
		}
		if !ban && counts[id] < counts[best] {
			best = id
		}
	}
	return best, nil
}
