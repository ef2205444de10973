package draft

import (
	"context"
	"errors"
	"math/rand"
	"testing"
)

func autoTestConfig() *Config {
	return rulesConfig(3,
		RoleRule{Name: "fragger", Min: 1, Max: 2, Priority: 2},
		RoleRule{Name: "support", Min: 1, Max: 2, Priority: 1},
	)
}

func newTestEngine(seed int64, users *fakeDirectory, games *fakeGames) *autoEngine {
	if users == nil {
		users = newFakeDirectory()
	}
	if games == nil {
		games = newFakeGames()
	}
	return &autoEngine{
		cfg:   autoTestConfig(),
		rng:   rand.New(rand.NewSource(seed)),
		users: users,
		games: games,
	}
}

func TestAutoFactionSelectRandom(t *testing.T) {
	e := newTestEngine(1, nil, nil)

	choice, err := e.choose(context.Background(), autoView{
		turn:  TurnDefinition{Type: TurnFactionSelect, Method: MethodRandom},
		teams: []Team{{}, {}},
	})
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if choice.Faction != FactionRED && choice.Faction != FactionBLU {
		t.Fatalf("faction select produced %q", choice.Faction)
	}
}

func TestAutoCaptainSelectEmptyPool(t *testing.T) {
	e := newTestEngine(1, nil, nil)

	_, err := e.choose(context.Background(), autoView{
		turn:  TurnDefinition{Type: TurnCaptainSelect, Method: MethodRandom, Pool: PoolGlobal},
		teams: []Team{{}, {}},
	})
	if !errors.Is(err, ErrNoCaptainCandidates) {
		t.Fatalf("expected ErrNoCaptainCandidates, got %v", err)
	}
}

func TestAutoCaptainSelectSuccessFavorsHighScore(t *testing.T) {
	users := newFakeDirectory()
	users.add(Profile{ID: "strong", CaptainScore: 5})
	users.add(Profile{ID: "weak", CaptainScore: 0})

	e := newTestEngine(42, users, nil)

	view := autoView{
		turn:        TurnDefinition{Type: TurnCaptainSelect, Method: MethodSuccess, Pool: PoolGlobal},
		teams:       []Team{{}, {}},
		captainPool: []PlayerID{"strong", "weak"},
	}

	counts := map[PlayerID]int{}
	for i := 0; i < 1000; i++ {
		choice, err := e.choose(context.Background(), view)
		if err != nil {
			t.Fatalf("unexpected err: %v", err)
		}
		counts[choice.Captain]++
	}

	if counts["strong"] < 900 {
		t.Fatalf("high-score captain chosen only %d of 1000", counts["strong"])
	}
}

func TestAutoCaptainSelectSuccessRandom(t *testing.T) {
	users := newFakeDirectory()
	users.add(Profile{ID: "a", CaptainScore: 10})
	users.add(Profile{ID: "b", CaptainScore: 1})
	users.add(Profile{ID: "c", CaptainScore: 1})

	e := newTestEngine(3, users, nil)

	view := autoView{
		turn:        TurnDefinition{Type: TurnCaptainSelect, Method: MethodSuccessRandom, Pool: PoolGlobal},
		teams:       []Team{{}, {}},
		captainPool: []PlayerID{"a", "b", "c"},
	}

	for i := 0; i < 100; i++ {
		choice, err := e.choose(context.Background(), view)
		if err != nil {
			t.Fatalf("unexpected err: %v", err)
		}
		if choice.Captain != "a" && choice.Captain != "b" && choice.Captain != "c" {
			t.Fatalf("unknown finalist %q", choice.Captain)
		}
	}
}

func TestAutoCaptainSelectExperience(t *testing.T) {
	users := newFakeDirectory()
	users.add(Profile{ID: "rookie", TotalGames: 3})
	users.add(Profile{ID: "veteran", TotalGames: 250})
	users.add(Profile{ID: "regular", TotalGames: 80})

	e := newTestEngine(1, users, nil)

	choice, err := e.choose(context.Background(), autoView{
		turn:        TurnDefinition{Type: TurnCaptainSelect, Method: MethodExperience, Pool: PoolGlobal},
		teams:       []Team{{}, {}},
		captainPool: []PlayerID{"rookie", "veteran", "regular"},
	})
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if choice.Captain != "veteran" {
		t.Fatalf("experience pick: got %q, want veteran", choice.Captain)
	}
}

func TestAutoCaptainSelectTeamScope(t *testing.T) {
	e := newTestEngine(1, nil, nil)

	choice, err := e.choose(context.Background(), autoView{
		turn: TurnDefinition{Type: TurnCaptainSelect, Method: MethodRandom, Pool: PoolTeam, Team: 0},
		teams: []Team{
			{Players: []PlayerSlot{{User: "seated", Role: "fragger"}}},
			{},
		},
		captainPool: []PlayerID{"seated", "outsider"},
	})
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if choice.Captain != "seated" {
		t.Fatalf("team-scope select: got %q, want seated", choice.Captain)
	}
}

func TestAutoPlayerPickRandomRespectsRestrictions(t *testing.T) {
	e := newTestEngine(1, nil, nil)

	// The only support candidate is restricted to team 1; an automated
	// pick for team 0 has nobody left.
	_, err := e.choose(context.Background(), autoView{
		turn:            TurnDefinition{Type: TurnPlayerPick, Method: MethodRandom, Team: 0},
		teams:           []Team{{}, {}},
		allowedRoles:    []string{"support"},
		playerPool:      map[string][]PlayerID{"support": {"m1"}},
		restrictedPicks: []RestrictedPick{{Role: "support", Player: "m1", Team: 1}},
	})
	if !errors.Is(err, ErrNoPlayerCandidates) {
		t.Fatalf("expected ErrNoPlayerCandidates, got %v", err)
	}
}

func TestAutoPlayerPickRandomExcludesUnavailable(t *testing.T) {
	e := newTestEngine(1, nil, nil)

	choice, err := e.choose(context.Background(), autoView{
		turn:         TurnDefinition{Type: TurnPlayerPick, Method: MethodRandom, Team: 0},
		teams:        []Team{{}, {}},
		allowedRoles: []string{"fragger"},
		playerPool:   map[string][]PlayerID{"fragger": {"seated", "free"}},
		unavailable:  []PlayerID{"seated"},
	})
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if choice.Player != "free" {
		t.Fatalf("random pick: got %q, want free", choice.Player)
	}
	if choice.Role != "fragger" {
		t.Fatalf("random pick role: got %q", choice.Role)
	}
}

func TestAutoPlayerPickBalanceTargetsRatingGap(t *testing.T) {
	users := newFakeDirectory()
	users.add(Profile{ID: "enemy1", RatingMean: 1800})
	users.add(Profile{ID: "close", RatingMean: 1750, RatingDeviation: 100})
	users.add(Profile{ID: "far", RatingMean: 1200, RatingDeviation: 50})

	e := newTestEngine(1, users, nil)

	// Team 0 is a player down, so the target is the 1800 rating gap;
	// "close" sits nearer to it than "far".
	choice, err := e.choose(context.Background(), autoView{
		turn: TurnDefinition{Type: TurnPlayerPick, Method: MethodBalance, Team: 0},
		teams: []Team{
			{},
			{Players: []PlayerSlot{{User: "enemy1", Role: "fragger"}}},
		},
		allowedRoles:   []string{"fragger"},
		playerPool:     map[string][]PlayerID{"fragger": {"close", "far"}},
		fullPlayerList: []PlayerID{"close", "far"},
	})
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if choice.Player != "close" {
		t.Fatalf("balance pick: got %q, want close", choice.Player)
	}
}

func TestAutoPlayerPickBalanceTieBreaksOnDeviation(t *testing.T) {
	users := newFakeDirectory()
	users.add(Profile{ID: "risky", RatingMean: 1500, RatingDeviation: 300})
	users.add(Profile{ID: "steady", RatingMean: 1500, RatingDeviation: 40})

	e := newTestEngine(1, users, nil)

	// Equal team sizes: the target is the candidate average (1500), both
	// candidates tie on distance, the lower deviation wins.
	choice, err := e.choose(context.Background(), autoView{
		turn:           TurnDefinition{Type: TurnPlayerPick, Method: MethodBalance, Team: 0},
		teams:          []Team{{}, {}},
		allowedRoles:   []string{"fragger"},
		playerPool:     map[string][]PlayerID{"fragger": {"risky", "steady"}},
		fullPlayerList: []PlayerID{"risky", "steady"},
	})
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if choice.Player != "steady" {
		t.Fatalf("balance tie-break: got %q, want steady", choice.Player)
	}
}

func TestAutoCaptainRolePickRandom(t *testing.T) {
	e := newTestEngine(1, nil, nil)

	choice, err := e.choose(context.Background(), autoView{
		turn:         TurnDefinition{Type: TurnCaptainRolePick, Method: MethodRandom, Team: 0},
		teams:        []Team{{Captain: "cap"}, {}},
		allowedRoles: []string{"fragger", "support"},
	})
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if choice.Role != "fragger" && choice.Role != "support" {
		t.Fatalf("role pick produced %q", choice.Role)
	}
}

func TestAutoPlayerOrCaptainRolePickUnsupported(t *testing.T) {
	e := newTestEngine(1, nil, nil)

	_, err := e.choose(context.Background(), autoView{
		turn:  TurnDefinition{Type: TurnPlayerOrCaptainRolePick, Method: MethodRandom, Team: 0},
		teams: []Team{{}, {}},
	})
	if !errors.Is(err, ErrUnsupportedTurn) {
		t.Fatalf("expected ErrUnsupportedTurn, got %v", err)
	}
}

func TestAutoUnknownMethodUnsupported(t *testing.T) {
	e := newTestEngine(1, nil, nil)

	_, err := e.choose(context.Background(), autoView{
		turn:          TurnDefinition{Type: TurnMapBan, Method: TurnMethod("psychic")},
		teams:         []Team{{}, {}},
		remainingMaps: []string{"granary"},
	})
	if !errors.Is(err, ErrUnsupportedTurn) {
		t.Fatalf("expected ErrUnsupportedTurn, got %v", err)
	}
}

func TestAutoMapFresh(t *testing.T) {
	games := newFakeGames()
	games.latestMaps["a"] = "granary"
	games.latestMaps["b"] = "granary"
	games.latestMaps["c"] = "badlands"

	e := newTestEngine(1, nil, games)

	view := autoView{
		turn: TurnDefinition{Type: TurnMapBan, Method: MethodFresh, Team: 0},
		teams: []Team{
			{Players: []PlayerSlot{{User: "a", Role: "fragger"}, {User: "b", Role: "support"}}},
			{Players: []PlayerSlot{{User: "c", Role: "fragger"}}},
		},
		remainingMaps: []string{"granary", "badlands", "process"},
	}

	choice, err := e.choose(context.Background(), view)
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if choice.Map != "granary" {
		t.Fatalf("fresh ban: got %q, want granary", choice.Map)
	}

	view.turn = TurnDefinition{Type: TurnMapPick, Method: MethodFresh, Team: 0}
	choice, err = e.choose(context.Background(), view)
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if choice.Map != "badlands" {
		t.Fatalf("fresh pick: got %q, want badlands", choice.Map)
	}
}

func TestAutoMapFreshFallsBackToRandom(t *testing.T) {
	e := newTestEngine(1, nil, nil)

	choice, err := e.choose(context.Background(), autoView{
		turn:          TurnDefinition{Type: TurnMapPick, Method: MethodFresh, Team: 0},
		teams:         []Team{{}, {}},
		remainingMaps: []string{"granary", "badlands"},
	})
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if choice.Map != "granary" && choice.Map != "badlands" {
		t.Fatalf("fresh fallback produced %q", choice.Map)
	}
}
