package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/jwebster45206/banter-engine/pkg/prompts"
	"github.com/jwebster45206/banter-engine/pkg/trigger"
)

// Tuning holds the structured banter knobs loaded from a YAML file.
// Zero values fall back to the compiled-in defaults, so a tuning file
// may override only the fields it cares about.
type Tuning struct {
	CooldownSeconds        int `yaml:"cooldown_seconds"`
	AmbientIntervalSeconds int `yaml:"ambient_interval_seconds"`
	StepThreshold          int `yaml:"step_threshold"`

	Priorities map[string]int `yaml:"priorities"`

	ExchangeWeights prompts.Weights `yaml:"exchange_weights"`
}

// DefaultTuning mirrors the compiled-in trigger and prompt defaults.
func DefaultTuning() *Tuning {
	cfg := trigger.DefaultConfig()
	priorities := make(map[string]int, len(cfg.Priorities))
	for t, p := range cfg.Priorities {
		priorities[string(t)] = p
	}
	return &Tuning{
		CooldownSeconds:        int(cfg.Cooldown / time.Second),
		AmbientIntervalSeconds: int(cfg.AmbientInterval / time.Second),
		StepThreshold:          cfg.StepThreshold,
		Priorities:             priorities,
		ExchangeWeights:        prompts.DefaultWeights(),
	}
}

// LoadTuning reads and merges a YAML tuning file over the defaults.
// An empty path returns the defaults unchanged.
func LoadTuning(path string) (*Tuning, error) {
	t := DefaultTuning()
	if path == "" {
		return t, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read tuning file: %w", err)
	}

	var overrides Tuning
	if err := yaml.Unmarshal(data, &overrides); err != nil {
		return nil, fmt.Errorf("failed to parse tuning file: %w", err)
	}

	if overrides.CooldownSeconds > 0 {
		t.CooldownSeconds = overrides.CooldownSeconds
	}
	if overrides.AmbientIntervalSeconds > 0 {
		t.AmbientIntervalSeconds = overrides.AmbientIntervalSeconds
	}
	if overrides.StepThreshold > 0 {
		t.StepThreshold = overrides.StepThreshold
	}
	for name, p := range overrides.Priorities {
		if _, ok := t.Priorities[name]; !ok {
			return nil, fmt.Errorf("unknown trigger type in tuning file: %q", name)
		}
		t.Priorities[name] = p
	}
	if overrides.ExchangeWeights != (prompts.Weights{}) {
		t.ExchangeWeights = overrides.ExchangeWeights
	}

	return t, nil
}

// TriggerConfig converts the tuning into the detector's config struct.
func (t *Tuning) TriggerConfig() trigger.Config {
	priorities := make(map[trigger.Type]int, len(t.Priorities))
	for name, p := range t.Priorities {
		priorities[trigger.Type(name)] = p
	}
	return trigger.Config{
		Cooldown:        time.Duration(t.CooldownSeconds) * time.Second,
		AmbientInterval: time.Duration(t.AmbientIntervalSeconds) * time.Second,
		StepThreshold:   t.StepThreshold,
		Priorities:      priorities,
	}
}

// Weights returns the exchange-type selection weights.
func (t *Tuning) Weights() prompts.Weights {
	return t.ExchangeWeights
}
