package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
	"github.com/wricardo/martian-robots/game/engine"
	"github.com/wricardo/martian-robots/game/protocol"
)

// EnvPrefix prefixes environment overrides, e.g. MARS_RULES_SCENT_MODE
const EnvPrefix = "MARS"

// Settings holds the tunable rules and server behaviour
type Settings struct {
	Rules    RuleSettings    `mapstructure:"rules"`
	Missions MissionSettings `mapstructure:"missions"`
	Sessions SessionSettings `mapstructure:"sessions"`
}

// RuleSettings holds simulation and validation rules
type RuleSettings struct {
	ScentMode       string `mapstructure:"scent_mode"`
	MaxCoordinate   int    `mapstructure:"max_coordinate"`
	MaxInstructions int    `mapstructure:"max_instructions"`
}

// MissionSettings locates the mission catalogue
type MissionSettings struct {
	Dir     string `mapstructure:"dir"`
	Default string `mapstructure:"default"`
}

// SessionSettings controls replay session expiry
type SessionSettings struct {
	TTL             time.Duration `mapstructure:"ttl"`
	CleanupInterval time.Duration `mapstructure:"cleanup_interval"`
}

// LoadSettings reads settings from path, or from marsrover.{toml,yaml,json}
// in the working directory when path is empty, then applies MARS_ env
// overrides. A missing default file is not an error.
func LoadSettings(path string) (Settings, error) {
	v := viper.New()

	v.SetDefault("rules.scent_mode", engine.DefaultScentMode.String())
	v.SetDefault("rules.max_coordinate", protocol.DefaultMaxCoordinate)
	v.SetDefault("rules.max_instructions", protocol.DefaultMaxInstructions)
	v.SetDefault("missions.dir", "missions")
	v.SetDefault("missions.default", DefaultMissionName)
	v.SetDefault("sessions.ttl", "30m")
	v.SetDefault("sessions.cleanup_interval", "5m")

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.AddConfigPath(".")
		v.SetConfigName("marsrover")
	}

	v.SetEnvPrefix(EnvPrefix)
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if path != "" || !errors.As(err, &notFound) {
			return Settings{}, fmt.Errorf("read settings: %w", err)
		}
	}

	var s Settings
	if err := v.Unmarshal(&s); err != nil {
		return Settings{}, fmt.Errorf("unmarshal settings: %w", err)
	}
	if _, err := s.EngineRules(); err != nil {
		return Settings{}, err
	}
	return s, nil
}

// EngineRules converts the rule settings into engine rules
func (s Settings) EngineRules() (engine.Rules, error) {
	mode, err := engine.ParseScentMode(s.Rules.ScentMode)
	if err != nil {
		return engine.Rules{}, fmt.Errorf("rules.scent_mode: %w", err)
	}
	return engine.Rules{ScentMode: mode}, nil
}

// Limits returns the parser limits. Non-positive values fall back to defaults
// inside protocol.NewParser.
func (s Settings) Limits() protocol.Limits {
	return protocol.Limits{
		MaxCoordinate:   s.Rules.MaxCoordinate,
		MaxInstructions: s.Rules.MaxInstructions,
	}
}
