package draft

import "testing"

func legalityConfig() *Config {
	return rulesConfig(2,
		RoleRule{Name: "fragger", Min: 1, Max: 2, Priority: 1},
		RoleRule{Name: "support", Min: 1, Max: 2, Priority: 1},
	)
}

func TestLegalState(t *testing.T) {
	cfg := legalityConfig()

	fullTeam := func(faction Faction, captain PlayerID, a, b PlayerID) Team {
		return Team{
			Faction: faction,
			Captain: captain,
			Players: []PlayerSlot{
				{User: a, Role: "fragger"},
				{User: b, Role: "support"},
			},
		}
	}

	cases := []struct {
		name  string
		teams []Team
		maps  mapState
		final bool
		want  bool
	}{
		{
			name:  "fresh draft is legal",
			teams: []Team{{}, {}},
			maps:  mapState{remaining: []string{"granary", "badlands"}},
			want:  true,
		},
		{
			name: "oversized team is illegal",
			teams: []Team{
				{Players: []PlayerSlot{
					{User: "a", Role: "fragger"},
					{User: "b", Role: "fragger"},
					{User: "c", Role: "support"},
				}},
				{},
			},
			maps: mapState{remaining: []string{"granary"}},
			want: false,
		},
		{
			name: "capacity below remaining minimums is illegal",
			teams: []Team{
				{Players: []PlayerSlot{
					{User: "a", Role: "fragger"},
					{User: "b", Role: "fragger"},
				}},
				{},
			},
			maps: mapState{remaining: []string{"granary"}},
			want: false,
		},
		{
			name:  "no picked map and no remaining maps is illegal",
			teams: []Team{{}, {}},
			maps:  mapState{},
			want:  false,
		},
		{
			name:  "picked map with empty remainder is legal",
			teams: []Team{{}, {}},
			maps:  mapState{picked: "granary"},
			want:  true,
		},
		{
			name: "complete draft is legal final",
			teams: []Team{
				fullTeam(FactionRED, "a", "a", "b"),
				fullTeam(FactionBLU, "c", "c", "d"),
			},
			maps:  mapState{picked: "granary"},
			final: true,
			want:  true,
		},
		{
			name: "final requires distinct factions",
			teams: []Team{
				fullTeam(FactionRED, "a", "a", "b"),
				fullTeam(FactionRED, "c", "c", "d"),
			},
			maps:  mapState{picked: "granary"},
			final: true,
			want:  false,
		},
		{
			name: "final requires both captains",
			teams: []Team{
				fullTeam(FactionRED, "", "a", "b"),
				fullTeam(FactionBLU, "c", "c", "d"),
			},
			maps:  mapState{picked: "granary"},
			final: true,
			want:  false,
		},
		{
			name: "final requires a picked map",
			teams: []Team{
				fullTeam(FactionRED, "a", "a", "b"),
				fullTeam(FactionBLU, "c", "c", "d"),
			},
			maps:  mapState{remaining: []string{"granary"}},
			final: true,
			want:  false,
		},
		{
			name: "final requires full teams",
			teams: []Team{
				{Faction: FactionRED, Captain: "a", Players: []PlayerSlot{{User: "a", Role: "fragger"}}},
				fullTeam(FactionBLU, "c", "c", "d"),
			},
			maps:  mapState{picked: "granary"},
			final: true,
			want:  false,
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := cfg.legalState(tc.teams, tc.maps, tc.final)
			if got != tc.want {
				t.Fatalf("legalState: got %v, want %v", got, tc.want)
			}
		})
	}
}
