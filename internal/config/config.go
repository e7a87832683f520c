package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/pbaille/bazi/internal/domain"
	"github.com/pbaille/bazi/internal/strength"
	"github.com/pbaille/bazi/internal/weights"
)

// ErrInvalid is wrapped by every validation failure
var ErrInvalid = errors.New("invalid config")

// Config is the bazi configuration file
type Config struct {
	Log      LogConfig       `yaml:"log"`
	Store    StoreConfig     `yaml:"store"`
	Server   ServerConfig    `yaml:"server"`
	Weights  weights.Params  `yaml:"weights"`
	Strength strength.Params `yaml:"strength"`
}

// LogConfig selects the logger format and level
type LogConfig struct {
	Mode  string `yaml:"mode"`
	Level string `yaml:"level"`
}

// StoreConfig locates the history database
type StoreConfig struct {
	Path string `yaml:"path"`
}

// ServerConfig configures the REST server
type ServerConfig struct {
	Addr string `yaml:"addr"`
}

// Default returns the built-in configuration
func Default() *Config {
	home, _ := os.UserHomeDir()
	return &Config{
		Log:      LogConfig{Mode: "dev", Level: "warn"},
		Store:    StoreConfig{Path: filepath.Join(home, ".bazi", "bazi.db")},
		Server:   ServerConfig{Addr: ":8080"},
		Weights:  weights.DefaultParams(),
		Strength: strength.DefaultParams(),
	}
}

// Load reads a YAML file over the defaults. Keys absent from the file keep their default.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}

	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	if err := mergeBonuses(data, cfg); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// bonusOverlay records which bonus fields a file actually sets
type bonusOverlay struct {
	Transformed *float64 `yaml:"transformed"`
	Combined    *float64 `yaml:"combined"`
}

// mergeBonuses rebuilds each bonus entry named in data from its default, so a file that
// sets one field keeps the other. yaml.v3 decodes map values from zero.
func mergeBonuses(data []byte, cfg *Config) error {
	var file struct {
		Weights struct {
			Bonuses map[domain.InteractionType]bonusOverlay `yaml:"bonuses"`
		} `yaml:"weights"`
	}
	if err := yaml.Unmarshal(data, &file); err != nil {
		return fmt.Errorf("parse config: %w", err)
	}
	if len(file.Weights.Bonuses) == 0 {
		return nil
	}

	defaults := weights.DefaultParams().Bonuses
	if cfg.Weights.Bonuses == nil {
		cfg.Weights.Bonuses = make(map[domain.InteractionType]weights.Bonus, len(file.Weights.Bonuses))
	}
	for t, o := range file.Weights.Bonuses {
		b := defaults[t]
		if o.Transformed != nil {
			b.Transformed = *o.Transformed
		}
		if o.Combined != nil {
			b.Combined = *o.Combined
		}
		cfg.Weights.Bonuses[t] = b
	}
	return nil
}

// Save writes the configuration as YAML
func (c *Config) Save(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("create config dir: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("write config: %w", err)
	}
	return nil
}

// Validate checks the tunables for internal consistency
func (c *Config) Validate() error {
	for t, b := range c.Weights.Bonuses {
		if !t.IsCombination() {
			return fmt.Errorf("%w: bonus for non-combination type %q", ErrInvalid, t)
		}
		if b.Combined < 0 || b.Transformed < b.Combined {
			return fmt.Errorf("%w: %s bonus needs 0 <= combined <= transformed", ErrInvalid, t)
		}
	}
	if c.Weights.ClashPenalty < 0 {
		return fmt.Errorf("%w: clash_penalty must not be negative", ErrInvalid)
	}
	for ph, m := range c.Weights.Multipliers {
		if m <= 0 {
			return fmt.Errorf("%w: multiplier for %s must be positive", ErrInvalid, ph)
		}
	}
	if m := c.Weights.Multipliers; m[domain.Prosperous] < m[domain.Dead] {
		return fmt.Errorf("%w: prosperous multiplier below dead", ErrInvalid)
	}

	s := c.Strength
	if s.MinPercent < 0 || s.MinPercent > s.MaxPercent {
		return fmt.Errorf("%w: need 0 <= min_percent <= max_percent", ErrInvalid)
	}
	t := s.Thresholds
	if !(t.ExtremelyStrong > t.Strong && t.Strong > t.Neutral && t.Neutral > t.Weak) {
		return fmt.Errorf("%w: verdict thresholds must strictly descend", ErrInvalid)
	}
	if s.Dose <= 0 {
		return fmt.Errorf("%w: dose must be positive", ErrInvalid)
	}
	if s.FollowingRatio <= 0 || s.MixedRatio <= 0 || s.MixedRatio > 1 {
		return fmt.Errorf("%w: following_ratio must be positive and mixed_ratio in (0, 1]", ErrInvalid)
	}
	if s.TopPairs < 0 {
		return fmt.Errorf("%w: top_pairs must not be negative", ErrInvalid)
	}
	return nil
}
