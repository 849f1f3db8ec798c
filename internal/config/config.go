package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

type Config struct {
	NATS      NATSConfig                 `yaml:"nats"`
	Store     StoreConfig                `yaml:"store"`
	Web       WebConfig                  `yaml:"web"`
	Scheduler SchedulerConfig            `yaml:"scheduler"`
	History   HistoryConfig              `yaml:"history"`
	Defaults  DefaultsConfig             `yaml:"defaults"`
	Agents    map[string]AgentDefinition `yaml:"agents"`
	Swarms    []SwarmDefinition          `yaml:"swarms"`
}

// AgentDefinition is the per-type runtime configuration. Retries is a
// pointer so an explicit `retries: 0` is distinguishable from "use the
// default".
type AgentDefinition struct {
	Description string        `yaml:"description"`
	Timeout     time.Duration `yaml:"timeout"`
	Retries     *int          `yaml:"retries"`
}

// DefaultsConfig is applied wherever an agent definition is silent.
type DefaultsConfig struct {
	Timeout time.Duration `yaml:"timeout"`
	Retries int           `yaml:"retries"`
}

type NATSConfig struct {
	Port    int    `yaml:"port"`
	DataDir string `yaml:"data_dir"`
}

type StoreConfig struct {
	Path string `yaml:"path"`
}

type WebConfig struct {
	Enabled bool `yaml:"enabled"`
	Port    int  `yaml:"port"`
	// AuthHash is a bcrypt hash of the API password. Empty disables auth.
	AuthHash string `yaml:"auth_hash"`
}

type SchedulerConfig struct {
	PollInterval time.Duration `yaml:"poll_interval"`
}

type HistoryConfig struct {
	Capacity int `yaml:"capacity"`
}

// SwarmDefinition is a recurring swarm the scheduler dispatches on a
// cron schedule.
type SwarmDefinition struct {
	Name       string         `yaml:"name"`
	Schedule   string         `yaml:"schedule"`
	AgentTypes []string       `yaml:"agent_types"`
	Task       map[string]any `yaml:"task"`
}

// ResolveTimeout returns the definition's timeout or the default.
func (d AgentDefinition) ResolveTimeout(defaults DefaultsConfig) time.Duration {
	if d.Timeout > 0 {
		return d.Timeout
	}
	return defaults.Timeout
}

// ResolveRetries returns the definition's retry budget or the default.
func (d AgentDefinition) ResolveRetries(defaults DefaultsConfig) int {
	if d.Retries != nil {
		return *d.Retries
	}
	return defaults.Retries
}

func defaults() Config {
	return Config{
		NATS: NATSConfig{
			Port:    4222,
			DataDir: "data/nats",
		},
		Store: StoreConfig{
			Path: "data/smenos.db",
		},
		Web: WebConfig{
			Enabled: true,
			Port:    8080,
		},
		Scheduler: SchedulerConfig{
			PollInterval: 30 * time.Second,
		},
		History: HistoryConfig{
			Capacity: 100,
		},
		Defaults: DefaultsConfig{
			Timeout: 30 * time.Second,
			Retries: 2,
		},
	}
}

func Load() (*Config, error) {
	cfg := defaults()

	path := os.Getenv("SMENOS_CONFIG")
	if path == "" {
		path = "config/smenos.yaml"
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if !os.IsNotExist(err) {
			return nil, fmt.Errorf("read config: %w", err)
		}
		// Config file not found, use defaults + env
	} else {
		// Expand environment variables in YAML
		expanded := os.ExpandEnv(string(data))
		if err := yaml.Unmarshal([]byte(expanded), &cfg); err != nil {
			return nil, fmt.Errorf("parse config: %w", err)
		}
	}

	applyEnv(&cfg)

	return &cfg, nil
}

func applyEnv(cfg *Config) {
	if v := os.Getenv("SMENOS_STORE_PATH"); v != "" {
		cfg.Store.Path = v
	}
	if v := os.Getenv("SMENOS_NATS_PORT"); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			cfg.NATS.Port = port
		}
	}
	if v := os.Getenv("SMENOS_WEB_PORT"); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			cfg.Web.Port = port
		}
	}
	if v := os.Getenv("SMENOS_WEB_AUTH_HASH"); v != "" {
		cfg.Web.AuthHash = v
	}
	if v := os.Getenv("SMENOS_HISTORY_CAPACITY"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			cfg.History.Capacity = n
		}
	}
}
