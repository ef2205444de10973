package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/fwdcp/pugchamp/internal/draft"
)

func writeDraftConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "draft.json")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestLoadDraftConfig(t *testing.T) {
	path := writeDraftConfig(t, `{
		"teamSize": 6,
		"restrictedPickLimit": 2,
		"turnTimeLimit": "1m30s",
		"separateCaptainPool": true,
		"roles": [
			{"name": "scout", "min": 2, "max": 2},
			{"name": "medic", "min": 1, "max": 1, "priority": 2, "preventOverrides": true},
			{"name": "flex", "min": 0}
		],
		"turnOrder": [
			{"type": "captainSelect", "method": "random", "team": 0, "pool": "global"},
			{"type": "mapPick", "method": "captain", "team": 0}
		],
		"maps": [{"id": "cp_process_final", "name": "Process"}]
	}`)

	cfg, err := LoadDraftConfig(path)
	require.NoError(t, err)

	require.Equal(t, 6, cfg.TeamSize)
	require.Equal(t, 2, cfg.RestrictedPickLimit)
	require.Equal(t, 90*time.Second, cfg.TurnTimeLimit)
	require.True(t, cfg.SeparateCaptainPool)

	require.Equal(t, []draft.RoleRule{
		{Name: "scout", Min: 2, Max: 2, Priority: 1},
		{Name: "medic", Min: 1, Max: 1, Priority: 2, PreventOverrides: true},
		// Max defaults to the team size, priority to 1.
		{Name: "flex", Min: 0, Max: 6, Priority: 1},
	}, cfg.Roles)

	require.Len(t, cfg.TurnOrder, 2)
	require.Equal(t, draft.TurnCaptainSelect, cfg.TurnOrder[0].Type)
	require.Equal(t, draft.PoolGlobal, cfg.TurnOrder[0].Pool)
	require.Equal(t, []draft.MapInfo{{ID: "cp_process_final", Name: "Process"}}, cfg.Maps)
}

func TestLoadDraftConfigRejectsBadDocuments(t *testing.T) {
	cases := []struct {
		name string
		body string
	}{
		{
			name: "missing file",
			body: "",
		},
		{
			name: "bad json",
			body: `{"teamSize": `,
		},
		{
			name: "bad duration",
			body: `{"teamSize": 6, "turnTimeLimit": "soon",
				"roles": [{"name": "scout", "min": 1}],
				"turnOrder": [{"type": "mapPick", "method": "random", "team": 0}],
				"maps": [{"id": "m", "name": "M"}]}`,
		},
		{
			name: "no roles",
			body: `{"teamSize": 6, "turnTimeLimit": "1m", "roles": [],
				"turnOrder": [{"type": "mapPick", "method": "random", "team": 0}],
				"maps": [{"id": "m", "name": "M"}]}`,
		},
		{
			name: "unknown turn type",
			body: `{"teamSize": 6, "turnTimeLimit": "1m",
				"roles": [{"name": "scout", "min": 1}],
				"turnOrder": [{"type": "coinToss", "method": "random", "team": 0}],
				"maps": [{"id": "m", "name": "M"}]}`,
		},
		{
			name: "turn for nonexistent team",
			body: `{"teamSize": 6, "turnTimeLimit": "1m",
				"roles": [{"name": "scout", "min": 1}],
				"turnOrder": [{"type": "mapPick", "method": "random", "team": 2}],
				"maps": [{"id": "m", "name": "M"}]}`,
		},
		{
			name: "turn without method",
			body: `{"teamSize": 6, "turnTimeLimit": "1m",
				"roles": [{"name": "scout", "min": 1}],
				"turnOrder": [{"type": "mapPick", "team": 0}],
				"maps": [{"id": "m", "name": "M"}]}`,
		},
		{
			name: "captain selection without pool",
			body: `{"teamSize": 6, "turnTimeLimit": "1m",
				"roles": [{"name": "scout", "min": 1}],
				"turnOrder": [{"type": "captainSelect", "method": "random", "team": 0}],
				"maps": [{"id": "m", "name": "M"}]}`,
		},
		{
			name: "empty map pool",
			body: `{"teamSize": 6, "turnTimeLimit": "1m",
				"roles": [{"name": "scout", "min": 1}],
				"turnOrder": [{"type": "mapPick", "method": "random", "team": 0}],
				"maps": []}`,
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "missing.json")
			if tc.body != "" {
				path = writeDraftConfig(t, tc.body)
			}
			_, err := LoadDraftConfig(path)
			require.Error(t, err)
		})
	}
}

func TestLoadReadsEnvironment(t *testing.T) {
	t.Setenv("PUGCHAMP_HTTP_ADDR", ":9999")
	t.Setenv("PUGCHAMP_LOG_LEVEL", "")

	cfg := Load()
	require.Equal(t, ":9999", cfg.HTTPAddr)
	require.Equal(t, "info", cfg.LogLevel)
	require.Equal(t, "draft.json", cfg.DraftConfigPath)
}
