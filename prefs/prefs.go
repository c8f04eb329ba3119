// Package prefs persists user preferences as a flat JSON file. Preferences
// are an explicit configuration object passed to whoever needs them; the
// package holds no process-wide state.
package prefs

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/sweetpotato0/colloquy/config"
	"github.com/sweetpotato0/colloquy/pkg/logging"
)

// DefaultFileName is the preferences file name used by Load and Save when
// given a directory.
const DefaultFileName = "user_preferences.json"

// ModelSettings are the generation settings the user last selected.
type ModelSettings struct {
	Model        string  `json:"model"`
	Temperature  float64 `json:"temperature"`
	TopP         float64 `json:"top_p"`
	TopK         int     `json:"top_k"`
	ShowThinking bool    `json:"show_thinking"`
}

// Preferences is the full set of persisted user preferences.
type Preferences struct {
	Theme             string         `json:"theme"`
	ModelSettings     ModelSettings  `json:"model_settings"`
	AgentEnabled      bool           `json:"agent_enabled"`
	MultiAgentEnabled bool           `json:"multi_agent_enabled"`
	WebSearchEnabled  bool           `json:"web_search_enabled"`
	AgentRoles        map[int]string `json:"agent_roles"`
}

// Default returns the preferences used when no file exists yet.
func Default() *Preferences {
	return &Preferences{
		Theme: "Dark",
		ModelSettings: ModelSettings{
			Model:       "gemini-2.0-flash",
			Temperature: 0.7,
			TopP:        1.0,
			TopK:        32,
		},
		AgentRoles: make(map[int]string),
	}
}

// Validate checks the preferences for storable values.
func (p *Preferences) Validate() error {
	v := config.NewValidator()
	v.RequireNonEmpty("model", p.ModelSettings.Model)
	v.ValidateFloatRange("temperature", p.ModelSettings.Temperature, 0.0, 2.0)
	v.ValidateFloatRange("top_p", p.ModelSettings.TopP, 0.0, 1.0)
	v.RequirePositive("top_k", p.ModelSettings.TopK)
	return v.Error()
}

// Load reads preferences from path. A missing file is not an error; the
// defaults are returned instead.
func Load(path string) (*Preferences, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			logging.WithComponent("prefs").Info("preferences file not found, using defaults", "path", path)
			return Default(), nil
		}
		return nil, fmt.Errorf("failed to read preferences: %w", err)
	}

	prefs := Default()
	if err := json.Unmarshal(raw, prefs); err != nil {
		return nil, fmt.Errorf("failed to decode preferences: %w", err)
	}
	if prefs.AgentRoles == nil {
		prefs.AgentRoles = make(map[int]string)
	}
	return prefs, nil
}

// Save writes preferences to path, creating parent directories as needed.
func (p *Preferences) Save(path string) error {
	if err := p.Validate(); err != nil {
		return err
	}

	raw, err := json.MarshalIndent(p, "", "    ")
	if err != nil {
		return fmt.Errorf("failed to encode preferences: %w", err)
	}

	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("failed to create preferences directory: %w", err)
		}
	}
	if err := os.WriteFile(path, raw, 0o644); err != nil {
		return fmt.Errorf("failed to write preferences: %w", err)
	}
	return nil
}
