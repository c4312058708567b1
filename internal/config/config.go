package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// ErrInvalid is returned by Validate for unusable settings.
var ErrInvalid = errors.New("invalid configuration")

// Config holds all gridplanner configuration.
type Config struct {
	Planner   PlannerConfig   `yaml:"planner"`
	Transport TransportConfig `yaml:"transport"`
	HTTP      HTTPConfig      `yaml:"http"`
	Logging   LoggingConfig   `yaml:"logging"`
}

// PlannerConfig is fixed for the lifetime of the process.
type PlannerConfig struct {
	Size          float64 `yaml:"size"`         // physical span of the grid side
	Resolution    float64 `yaml:"resolution"`   // span of one cell
	EnableCross   bool    `yaml:"enable_cross"` // 8-directional movement
	RobotFrame    string  `yaml:"robot_frame"`
	OccupiedValue int8    `yaml:"occupied_value"`
}

// TransportConfig names the input and output channels.
type TransportConfig struct {
	Input  string      `yaml:"input"`
	Output string      `yaml:"output"`
	Redis  RedisConfig `yaml:"redis"`
}

// RedisConfig configures the pub/sub transport.
type RedisConfig struct {
	Addr     string `yaml:"addr"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
	LatchKey string `yaml:"latch_key"` // empty disables latching
	LatchTTL string `yaml:"latch_ttl"`
}

// HTTPConfig configures the plan endpoint.
type HTTPConfig struct {
	Addr string `yaml:"addr"`
	Mode string `yaml:"mode"` // gin mode: debug, release, test
}

// LoggingConfig configures logging.
type LoggingConfig struct {
	Level  string `yaml:"level"`  // debug, info, warn, error
	Format string `yaml:"format"` // json, console
}

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	return &Config{
		Planner: PlannerConfig{
			Size:          10,
			Resolution:    0.1,
			EnableCross:   false,
			RobotFrame:    "base_link",
			OccupiedValue: 100,
		},
		Transport: TransportConfig{
			Input:  "occuMap",
			Output: "pathPoints",
			Redis: RedisConfig{
				Addr:     "localhost:6379",
				LatchKey: "pathPoints:latest",
				LatchTTL: "60s",
			},
		},
		HTTP: HTTPConfig{
			Addr: ":8080",
			Mode: "release",
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
		},
	}
}

// Load reads a YAML file on top of the defaults, then applies .env and
// environment overrides. A missing file yields the defaults.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case err == nil:
			if err := yaml.Unmarshal(data, cfg); err != nil {
				return nil, fmt.Errorf("failed to parse config: %w", err)
			}
		case !os.IsNotExist(err):
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
	}

	// .env is optional
	_ = godotenv.Load()

	if err := cfg.applyEnvOverrides(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Save saves configuration to a YAML file.
func (c *Config) Save(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}
	return nil
}

// applyEnvOverrides applies GRIDPLANNER_* environment variables.
func (c *Config) applyEnvOverrides() error {
	if v := os.Getenv("GRIDPLANNER_REDIS_ADDR"); v != "" {
		c.Transport.Redis.Addr = v
	}
	if v := os.Getenv("GRIDPLANNER_REDIS_PASSWORD"); v != "" {
		c.Transport.Redis.Password = v
	}
	if v := os.Getenv("GRIDPLANNER_INPUT"); v != "" {
		c.Transport.Input = v
	}
	if v := os.Getenv("GRIDPLANNER_OUTPUT"); v != "" {
		c.Transport.Output = v
	}
	if v := os.Getenv("GRIDPLANNER_ROBOT_FRAME"); v != "" {
		c.Planner.RobotFrame = v
	}
	if v := os.Getenv("GRIDPLANNER_HTTP_ADDR"); v != "" {
		c.HTTP.Addr = v
	}
	if v := os.Getenv("GRIDPLANNER_LOG_LEVEL"); v != "" {
		c.Logging.Level = v
	}
	if v := os.Getenv("GRIDPLANNER_ENABLE_CROSS"); v != "" {
		cross, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("%w: GRIDPLANNER_ENABLE_CROSS must be a boolean: %v", ErrInvalid, err)
		}
		c.Planner.EnableCross = cross
	}
	return nil
}

// Validate checks the settings that would otherwise fail at the first
// snapshot.
func (c *Config) Validate() error {
	if c.Planner.Size <= 0 {
		return fmt.Errorf("%w: planner.size must be positive, got %v", ErrInvalid, c.Planner.Size)
	}
	if c.Planner.Resolution <= 0 {
		return fmt.Errorf("%w: planner.resolution must be positive, got %v", ErrInvalid, c.Planner.Resolution)
	}
	if c.Planner.RobotFrame == "" {
		return fmt.Errorf("%w: planner.robot_frame is empty", ErrInvalid)
	}
	if c.Transport.Input == "" || c.Transport.Output == "" {
		return fmt.Errorf("%w: transport input and output must be set", ErrInvalid)
	}
	if _, err := time.ParseDuration(c.Transport.Redis.LatchTTL); c.Transport.Redis.LatchKey != "" && err != nil {
		return fmt.Errorf("%w: transport.redis.latch_ttl: %v", ErrInvalid, err)
	}
	return nil
}

// GetLatchTTL returns the latch TTL as a duration.
func (c *Config) GetLatchTTL() time.Duration {
	d, err := time.ParseDuration(c.Transport.Redis.LatchTTL)
	if err != nil {
		return 60 * time.Second
	}
	return d
}
