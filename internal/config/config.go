package config

import (
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/posflag"
	"github.com/knadh/koanf/v2"
	"github.com/spf13/cobra"
)

type Config struct {
	Server       ServerConfig       `koanf:"server"`
	Models       ModelsConfig       `koanf:"models"`
	Orchestrator OrchestratorConfig `koanf:"orchestrator"`
	Tools        ToolsConfig        `koanf:"tools"`
	Sessions     SessionsConfig     `koanf:"sessions"`
	Suggest      SuggestConfig      `koanf:"suggest"`
	Prompts      PromptsConfig      `koanf:"prompts"`
}

type ServerConfig struct {
	Port            int    `koanf:"port"`
	LogLevel        string `koanf:"log_level"`
	ReadTimeout     string `koanf:"read_timeout"`
	WriteTimeout    string `koanf:"write_timeout"`
	ShutdownTimeout string `koanf:"shutdown_timeout"`
}

type ModelsConfig struct {
	Default   string          `koanf:"default"`
	Fallback  string          `koanf:"fallback"`
	Embedding string          `koanf:"embedding"`
	Registry  []ModelRegistry `koanf:"registry"`
}

type ModelRegistry struct {
	Name     string `koanf:"name"`
	Provider string `koanf:"provider"`
	BaseURL  string `koanf:"base_url"`
	APIKey   string `koanf:"api_key"`
}

type OrchestratorConfig struct {
	MaxPasses        int    `koanf:"max_passes"`
	HistoryWindow    int    `koanf:"history_window"`
	ReasoningTimeout string `koanf:"reasoning_timeout"`
	MaxToolsPerPass  int    `koanf:"max_tools_per_pass"`
}

type ToolsConfig struct {
	Salon SalonToolConfig `koanf:"salon"`
}

type SalonToolConfig struct {
	BaseURL string `koanf:"base_url"`
	Timeout string `koanf:"timeout"`
}

type SessionsConfig struct {
	IdleTTL       string `koanf:"idle_ttl"`
	EvictSchedule string `koanf:"evict_schedule"`
}

type SuggestConfig struct {
	TopK     int     `koanf:"top_k"`
	MinScore float64 `koanf:"min_score"`
	SeedPath string  `koanf:"seed_path"`
}

type PromptsConfig struct {
	System   string `koanf:"system"`
	Greeting string `koanf:"greeting"`
	Goodbye  string `koanf:"goodbye"`
}

const (
	DefaultServerPort            = 8080
	DefaultServerLogLevel        = "info"
	DefaultServerReadTimeout     = "10s"
	DefaultServerWriteTimeout    = "30s"
	DefaultServerShutdownTimeout = "5s"

	DefaultModelDefault   = "gpt-4o-mini"
	DefaultModelFallback  = "claude-sonnet-4-5"
	DefaultModelEmbedding = "text-embedding-3-small"

	DefaultOrchestratorMaxPasses        = 6
	DefaultOrchestratorHistoryWindow    = 20
	DefaultOrchestratorReasoningTimeout = "60s"
	DefaultOrchestratorMaxToolsPerPass  = 4

	DefaultSalonToolBaseURL = "http://localhost:9090"
	DefaultSalonToolTimeout = "10s"

	DefaultSessionsIdleTTL       = "30m"
	DefaultSessionsEvictSchedule = "@every 5m"

	DefaultSuggestTopK     = 5
	DefaultSuggestMinScore = 0.35
)

const DefaultSystemPrompt = `You are a friendly beauty salon assistant. You help customers with
beauty consultation, appointment booking, salon and service discovery, and pricing.
Use the available tools to answer questions about availability, bookings, services,
and salons. Answer directly when no tool is needed. Always reply in natural language.`

const DefaultGreetingPrompt = `Generate a brief, friendly greeting as a beauty salon assistant.
Mention that you can help with beauty advice, appointment booking, and salon services,
and that the visitor can type 'exit' anytime to leave.`

const DefaultGoodbyePrompt = `Generate a brief, warm goodbye message as a beauty salon assistant,
inviting the visitor to come back for more beauty services.`

// Load builds the configuration by layering defaults, an optional YAML file,
// SALONMATE_ environment variables, and cobra flags, in that order.
func Load(cmd *cobra.Command) (*Config, error) {
	k := koanf.New(".")

	defaults := map[string]interface{}{
		"server.port":             DefaultServerPort,
		"server.log_level":        DefaultServerLogLevel,
		"server.read_timeout":     DefaultServerReadTimeout,
		"server.write_timeout":    DefaultServerWriteTimeout,
		"server.shutdown_timeout": DefaultServerShutdownTimeout,
		"models.default":          DefaultModelDefault,
		"models.fallback":         DefaultModelFallback,
		"models.embedding":        DefaultModelEmbedding,
		"models.registry": []ModelRegistry{
			{Name: DefaultModelDefault, Provider: "openai"},
			{Name: DefaultModelFallback, Provider: "anthropic"},
			{Name: DefaultModelEmbedding, Provider: "openai"},
		},
		"orchestrator.max_passes":         DefaultOrchestratorMaxPasses,
		"orchestrator.history_window":     DefaultOrchestratorHistoryWindow,
		"orchestrator.reasoning_timeout":  DefaultOrchestratorReasoningTimeout,
		"orchestrator.max_tools_per_pass": DefaultOrchestratorMaxToolsPerPass,
		"tools.salon.base_url":            DefaultSalonToolBaseURL,
		"tools.salon.timeout":             DefaultSalonToolTimeout,
		"sessions.idle_ttl":               DefaultSessionsIdleTTL,
		"sessions.evict_schedule":         DefaultSessionsEvictSchedule,
		"suggest.top_k":                   DefaultSuggestTopK,
		"suggest.min_score":               DefaultSuggestMinScore,
		"suggest.seed_path":               "",
		"prompts.system":                  DefaultSystemPrompt,
		"prompts.greeting":                DefaultGreetingPrompt,
		"prompts.goodbye":                 DefaultGoodbyePrompt,
	}
	for key, value := range defaults {
		k.Set(key, value)
	}

	configPath := ""
	if cmd != nil {
		if flag := cmd.Flags().Lookup("config"); flag != nil {
			configPath = strings.TrimSpace(flag.Value.String())
		}
	}

	if configPath != "" {
		if err := k.Load(file.Provider(configPath), yaml.Parser()); err != nil {
			return nil, err
		}
	} else {
		home, err := os.UserHomeDir()
		if err == nil {
			globalPath := filepath.Join(home, ".salonmate", "config.yaml")
			if err := k.Load(file.Provider(globalPath), yaml.Parser()); err != nil {
				slog.Debug("Global config not found or invalid", "path", globalPath, "error", err)
			}
		}
	}

	k.Load(env.Provider("SALONMATE_", ".", func(s string) string {
		return strings.Replace(strings.ToLower(strings.TrimPrefix(s, "SALONMATE_")), "_", ".", -1)
	}), nil)

	if cmd != nil {
		k.Load(posflag.Provider(cmd.Flags(), ".", k), nil)
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, err
	}

	for i, m := range cfg.Models.Registry {
		if m.Provider == "" {
			cfg.Models.Registry[i].Provider = "openai"
		}
	}

	// Inject standard API key env vars when the registry leaves them blank.
	if key := os.Getenv("OPENAI_API_KEY"); key != "" {
		for i, m := range cfg.Models.Registry {
			if m.Provider == "openai" && m.APIKey == "" {
				cfg.Models.Registry[i].APIKey = key
			}
		}
	}
	if key := os.Getenv("ANTHROPIC_API_KEY"); key != "" {
		for i, m := range cfg.Models.Registry {
			if m.Provider == "anthropic" && m.APIKey == "" {
				cfg.Models.Registry[i].APIKey = key
			}
		}
	}
	if key := os.Getenv("GEMINI_API_KEY"); key != "" {
		for i, m := range cfg.Models.Registry {
			if m.Provider == "gemini" && m.APIKey == "" {
				cfg.Models.Registry[i].APIKey = key
			}
		}
	}

	return &cfg, nil
}
