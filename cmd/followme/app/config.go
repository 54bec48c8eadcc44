package app

import (
	"fmt"
	"log/slog"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/roman-kulish/follow-mission/internal/feed/fake"
	"github.com/roman-kulish/follow-mission/internal/mission"
	"github.com/roman-kulish/follow-mission/internal/vehicle/sim"
)

// TimeDuration wraps time.Duration for YAML values like "1s" or "500ms".
type TimeDuration time.Duration

func (d *TimeDuration) UnmarshalYAML(value *yaml.Node) error {
	duration, err := time.ParseDuration(value.Value)
	if err != nil {
		return fmt.Errorf("parsing duration '%s': %w", value.Value, err)
	}

	*d = TimeDuration(duration)
	return nil
}

func (d TimeDuration) Duration() time.Duration {
	return time.Duration(d)
}

// Config represents the main application configuration
type Config struct {
	Settings Settings      `yaml:"settings"`
	Vehicle  sim.Config    `yaml:"vehicle"`
	Mission  MissionConfig `yaml:"mission"`
	Feed     FeedConfig    `yaml:"feed"`
	Storage  StorageConfig `yaml:"storage"`
}

// Settings represents global application settings
type Settings struct {
	LogLevel string `yaml:"logLevel"`
}

// Level parses the configured log level, defaulting to info.
func (s Settings) Level() (slog.Level, error) {
	if s.LogLevel == "" {
		return slog.LevelInfo, nil
	}

	var level slog.Level
	if err := level.UnmarshalText([]byte(s.LogLevel)); err != nil {
		return 0, err
	}
	return level, nil
}

// MissionConfig represents mission sequencing settings
type MissionConfig struct {
	PollInterval TimeDuration `yaml:"pollInterval"`
	SettleDelay  TimeDuration `yaml:"settleDelay"`
	Linger       TimeDuration `yaml:"linger"`
}

// FeedConfig represents the location feed settings
type FeedConfig struct {
	Latitude  float64      `yaml:"latitude"`
	Longitude float64      `yaml:"longitude"`
	Count     int          `yaml:"count"`
	Interval  TimeDuration `yaml:"interval"`
}

// StorageConfig represents flight record storage settings
type StorageConfig struct {
	DataDirectory string `yaml:"dataDirectory"`
	MaxBatchSize  int    `yaml:"maxBatchSize"`
}

// LoadConfig reads and validates the YAML configuration at path, filling in
// defaults for anything omitted.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading configuration file: %w", err)
	}

	var config Config
	if err = yaml.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("parsing configuration file: %w", err)
	}

	if config.Mission.PollInterval <= 0 {
		config.Mission.PollInterval = TimeDuration(mission.DefaultPollInterval)
	}
	if config.Mission.SettleDelay <= 0 {
		config.Mission.SettleDelay = TimeDuration(mission.DefaultSettleDelay)
	}

	if config.Feed.Latitude == 0 && config.Feed.Longitude == 0 {
		config.Feed.Latitude = fake.DefaultLatitude
		config.Feed.Longitude = fake.DefaultLongitude
	}
	if config.Feed.Count <= 0 {
		config.Feed.Count = fake.DefaultCount
	}
	if config.Feed.Interval <= 0 {
		config.Feed.Interval = TimeDuration(fake.DefaultInterval)
	}

	return &config, nil
}
