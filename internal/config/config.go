package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/BurntSushi/toml"

	"github.com/tarofit/fitcoach/internal/workout"
)

type Config struct {
	Environment string
	Host        string
	Port        int

	// logging
	LogLevel      string `toml:"log_level"`
	LogsPath      string `toml:"logs_path"`
	LogToStdout   bool   `toml:"log_to_stdout"`
	SentryEnabled bool   `toml:"sentry_enabled"`

	// prometheus metrics server
	MetricsHost string `toml:"metrics_host"`
	MetricsPort int    `toml:"metrics_port"`

	// redis
	RedisHost string `toml:"redis_host"`
	RedisPort int    `toml:"redis_port"`

	// pose detector sidecar
	PoseDetectorURL     string `toml:"pose_detector_url"`
	PoseDetectorTimeout string `toml:"pose_detector_timeout"`

	// workout sessions
	SessionTTL      string `toml:"session_ttl"`
	FrameRatePerMin int    `toml:"frame_rate_per_min"`

	// assets
	MotivationCSVPath string `toml:"motivation_csv_path"`
	DebugFramesPath   string `toml:"debug_frames_path"`

	// counter tuning overrides, all optional
	Tuning *workout.Tuning `toml:"tuning"`
}

// GetPoseDetectorTimeout falls back to 10s on a missing or bad value.
func (c *Config) GetPoseDetectorTimeout() time.Duration {
	d, err := time.ParseDuration(c.PoseDetectorTimeout)
	if err != nil || d <= 0 {
		return 10 * time.Second
	}
	return d
}

// GetSessionTTL falls back to 30m on a missing or bad value.
func (c *Config) GetSessionTTL() time.Duration {
	d, err := time.ParseDuration(c.SessionTTL)
	if err != nil || d <= 0 {
		return 30 * time.Minute
	}
	return d
}

type Toml struct {
	Development *Config
	Production  *Config
}

func (t *Toml) Get(env string) (*Config, error) {
	switch strings.ToLower(env) {
	case "dev", "development":
		return t.Development, nil
	case "prod", "production":
		return t.Production, nil
	default:
		return nil, fmt.Errorf("unknown env: %s", env)
	}
}

// Load reads the TOML config file and returns the section for the given
// environment, with the tuning overrides validated.
func Load(env, path string) (*Config, error) {
	var tomlFile Toml
	if _, err := toml.DecodeFile(path, &tomlFile); err != nil {
		return nil, fmt.Errorf("decode config file: %w", err)
	}

	cfg, err := tomlFile.Get(env)
	if err != nil {
		return nil, err
	}
	if cfg == nil {
		return nil, fmt.Errorf("no config section for env: %s", env)
	}

	if cfg.Tuning != nil {
		if err := cfg.Tuning.Validate(); err != nil {
			return nil, fmt.Errorf("tuning: %w", err)
		}
	}

	cfg.Environment = env
	return cfg, nil
}
