package config

import (
	"encoding/json"
	"os"
	"time"

	"github.com/cockroachdb/errors"

	"github.com/fwdcp/pugchamp/internal/draft"
)

// Config stores runtime configuration for the service.
type Config struct {
	HTTPAddr        string
	DatabaseURL     string
	LogLevel        string
	DraftConfigPath string
	AllocatorURL    string
}

func Load() *Config {
	return &Config{
		HTTPAddr:        getEnv("PUGCHAMP_HTTP_ADDR", ":8080"),
		DatabaseURL:     getEnv("PUGCHAMP_DATABASE_URL", ""),
		LogLevel:        getEnv("PUGCHAMP_LOG_LEVEL", "info"),
		DraftConfigPath: getEnv("PUGCHAMP_DRAFT_CONFIG", "draft.json"),
		AllocatorURL:    getEnv("PUGCHAMP_ALLOCATOR_URL", ""),
	}
}

func getEnv(key, fallback string) string {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		return v
	}
	return fallback
}

type roleRuleDoc struct {
	Name             string  `json:"name"`
	Min              int     `json:"min"`
	Max              *int    `json:"max,omitempty"`
	Priority         float64 `json:"priority,omitempty"`
	OverrideImmune   bool    `json:"overrideImmune,omitempty"`
	PreventOverrides bool    `json:"preventOverrides,omitempty"`
}

type draftConfigDoc struct {
	TeamSize            int                    `json:"teamSize"`
	RestrictedPickLimit int                    `json:"restrictedPickLimit"`
	TurnTimeLimit       string                 `json:"turnTimeLimit"`
	SeparateCaptainPool bool                   `json:"separateCaptainPool"`
	Roles               []roleRuleDoc          `json:"roles"`
	TurnOrder           []draft.TurnDefinition `json:"turnOrder"`
	Maps                []draft.MapInfo        `json:"maps"`
}

// LoadDraftConfig reads and normalizes the draft rule set: role maximums
// default to the team size, priorities to 1.
func LoadDraftConfig(path string) (*draft.Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(err, "reading draft config")
	}

	var doc draftConfigDoc
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, errors.Wrap(err, "parsing draft config")
	}

	limit, err := time.ParseDuration(doc.TurnTimeLimit)
	if err != nil {
		return nil, errors.Wrap(err, "parsing turn time limit")
	}

	cfg := &draft.Config{
		TeamSize:            doc.TeamSize,
		RestrictedPickLimit: doc.RestrictedPickLimit,
		TurnTimeLimit:       limit,
		SeparateCaptainPool: doc.SeparateCaptainPool,
		TurnOrder:           doc.TurnOrder,
		Maps:                doc.Maps,
	}

	for _, role := range doc.Roles {
		rule := draft.RoleRule{
			Name:             role.Name,
			Min:              role.Min,
			Max:              doc.TeamSize,
			Priority:         role.Priority,
			OverrideImmune:   role.OverrideImmune,
			PreventOverrides: role.PreventOverrides,
		}
		if role.Max != nil {
			rule.Max = *role.Max
		}
		if rule.Priority == 0 {
			rule.Priority = 1
		}
		cfg.Roles = append(cfg.Roles, rule)
	}

	return cfg, validateDraftConfig(cfg)
}

func validateDraftConfig(cfg *draft.Config) error {
	if cfg.TeamSize <= 0 {
		return errors.New("team size must be positive")
	}
	if len(cfg.Roles) == 0 {
		return errors.New("at least one role is required")
	}
	if len(cfg.TurnOrder) == 0 {
		return errors.New("turn order is empty")
	}
	if len(cfg.Maps) == 0 {
		return errors.New("map pool is empty")
	}
	if cfg.TurnTimeLimit <= 0 {
		return errors.New("turn time limit must be positive")
	}

	for i, def := range cfg.TurnOrder {
		if def.Team != 0 && def.Team != 1 {
			return errors.Newf("turn %d: team must be 0 or 1", i)
		}
		switch def.Type {
		case draft.TurnFactionSelect, draft.TurnCaptainSelect, draft.TurnPlayerPick,
			draft.TurnCaptainRolePick, draft.TurnPlayerOrCaptainRolePick,
			draft.TurnMapBan, draft.TurnMapPick:
		default:
			return errors.Newf("turn %d: unknown type %q", i, def.Type)
		}
		if def.Method == "" {
			return errors.Newf("turn %d: method is required", i)
		}
		if def.Type == draft.TurnCaptainSelect {
			switch def.Pool {
			case draft.PoolGlobal, draft.PoolTeam:
			default:
				return errors.Newf("turn %d: captain selection requires a pool scope of %q or %q",
					i, draft.PoolGlobal, draft.PoolTeam)
			}
		}
	}

	return nil
}
