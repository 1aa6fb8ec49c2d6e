// Package config binds the environment-variable table from the system's
// external interface contract to a typed Config struct, using viper for
// env lookup so that cmd/repograph's cobra flags can override individual
// values without the orchestrator ever touching os.Getenv directly.
package config

import (
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config mirrors the "Configuration (environment)" table: every field has
// the documented default and env var name.
type Config struct {
	BackendURL      string        `mapstructure:"backend_url"`
	BackendMode     string        `mapstructure:"backend_mode"`
	InternalAPIToken string       `mapstructure:"internal_api_token"`
	OfflineOutDir   string        `mapstructure:"offline_out_dir"`
	MemgraphURI     string        `mapstructure:"memgraph_uri"`
	MemgraphHost    string        `mapstructure:"memgraph_host"`
	MemgraphPort    string        `mapstructure:"memgraph_port"`
	BatchSize       int           `mapstructure:"batch_size"`
	AnomalyTZ       string        `mapstructure:"anomaly_tz"`
	WalkMaxCommits  int           `mapstructure:"walk_max_commits"`
	WalkWorkers     int           `mapstructure:"walk_workers"`
	ShallowClone    bool          `mapstructure:"shallow_clone"`
	StatusTimeout   time.Duration `mapstructure:"status_timeout"`
}

// Load reads the environment (and any previously bound pflag set) into a
// Config, applying the documented defaults first.
func Load(v *viper.Viper) (*Config, error) {
	if v == nil {
		v = viper.New()
	}
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	v.SetDefault("backend_url", "http://localhost:3000")
	v.SetDefault("backend_mode", "offline")
	v.SetDefault("internal_api_token", "")
	v.SetDefault("offline_out_dir", ".offline_out")
	v.SetDefault("memgraph_uri", "")
	v.SetDefault("memgraph_host", "localhost")
	v.SetDefault("memgraph_port", "7687")
	v.SetDefault("batch_size", 5000)
	v.SetDefault("anomaly_tz", "UTC")
	v.SetDefault("walk_max_commits", 0)
	v.SetDefault("walk_workers", 8)
	v.SetDefault("shallow_clone", false)
	v.SetDefault("status_timeout", 10*time.Second)

	// Bind the spec's literal env var names (not the mapstructure/viper
	// snake_case keys) explicitly, since they don't follow one convention.
	binds := map[string]string{
		"backend_url":        "BACKEND_URL",
		"backend_mode":       "BACKEND_MODE",
		"internal_api_token": "INTERNAL_API_TOKEN",
		"offline_out_dir":    "OFFLINE_OUT_DIR",
		"memgraph_uri":       "MEMGRAPH_URI",
		"memgraph_host":      "MEMGRAPH_HOST",
		"memgraph_port":      "MEMGRAPH_PORT",
		"batch_size":         "BATCH_SIZE",
		"anomaly_tz":         "ANOMALY_TZ",
		"walk_max_commits":   "WALK_MAX_COMMITS",
		"walk_workers":       "WALK_WORKERS",
		"shallow_clone":      "SHALLOW_CLONE",
	}
	for key, env := range binds {
		if err := v.BindEnv(key, env); err != nil {
			return nil, err
		}
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, err
	}
	if cfg.MemgraphURI == "" {
		cfg.MemgraphURI = "bolt://" + cfg.MemgraphHost + ":" + cfg.MemgraphPort
	}
	return cfg, nil
}
