// Package action manages user-defined custom actions. Actions are small
// declarative operations on the current input text (insert a snippet,
// insert and trigger a generation, clear buffers) persisted as a JSON file.
package action

import (
	"encoding/json"
	"fmt"
	"os"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/sweetpotato0/colloquy/errors"
)

// DefaultFileName is the actions file name used by LoadFile and SaveFile
// when given a directory.
const DefaultFileName = "custom_actions.json"

// Action types.
const (
	TypeInsertText = "insert_text"
	TypeGenerate   = "generate"
	TypeClear      = "clear"

	// typeExecuteCode is recognized only to reject it: arbitrary code
	// execution is not supported.
	typeExecuteCode = "execute_code"
)

// Clear targets.
const (
	TargetInput  = "input"
	TargetOutput = "output"
	TargetBoth   = "both"
)

// Action is a single user-defined action.
type Action struct {
	Type    string `json:"type"`
	Text    string `json:"text,omitempty"`
	Replace bool   `json:"replace,omitempty"`
	Target  string `json:"target,omitempty"`
}

// Validate checks that the action is well formed.
func (a Action) Validate() error {
	switch a.Type {
	case TypeInsertText, TypeGenerate:
		return nil
	case TypeClear:
		switch a.Target {
		case TargetInput, TargetOutput, TargetBoth, "":
			return nil
		}
		return fmt.Errorf("%w: unknown clear target %q", errors.ErrInvalidInput, a.Target)
	case typeExecuteCode:
		return fmt.Errorf("%w: action type %q is not supported", errors.ErrInvalidInput, a.Type)
	default:
		return fmt.Errorf("%w: unknown action type %q", errors.ErrInvalidInput, a.Type)
	}
}

// Outcome is the result of applying an action to the current input text.
type Outcome struct {
	// Input is the input text after the action ran.
	Input string
	// TriggerGeneration is set when the caller should start a generation
	// with the new input.
	TriggerGeneration bool
	// ClearInput and ClearOutput report which buffers a clear action
	// targeted.
	ClearInput  bool
	ClearOutput bool
}

// Apply runs the action against the current input text.
func (a Action) Apply(input string, now time.Time) (Outcome, error) {
	if err := a.Validate(); err != nil {
		return Outcome{}, err
	}

	switch a.Type {
	case TypeInsertText, TypeGenerate:
		text := expandPlaceholders(a.Text, now)
		out := Outcome{TriggerGeneration: a.Type == TypeGenerate}
		if a.Replace {
			out.Input = text
			return out, nil
		}
		if input != "" && !strings.HasSuffix(input, "\n") && !strings.HasSuffix(input, " ") {
			text = " " + text
		}
		out.Input = input + text
		return out, nil

	case TypeClear:
		target := a.Target
		if target == "" {
			target = TargetBoth
		}
		out := Outcome{
			ClearInput:  target == TargetInput || target == TargetBoth,
			ClearOutput: target == TargetOutput || target == TargetBoth,
		}
		if !out.ClearInput {
			out.Input = input
		}
		return out, nil
	}
	return Outcome{}, fmt.Errorf("%w: unknown action type %q", errors.ErrInvalidInput, a.Type)
}

func expandPlaceholders(text string, now time.Time) string {
	text = strings.ReplaceAll(text, "{DATE}", now.Format("2006-01-02"))
	text = strings.ReplaceAll(text, "{TIME}", now.Format("15:04:05"))
	return text
}

// Manager holds named actions behind a mutex and loads/saves them as JSON.
type Manager struct {
	mu      sync.RWMutex
	actions map[string]Action
}

// NewManager creates an empty action manager.
func NewManager() *Manager {
	return &Manager{actions: make(map[string]Action)}
}

// Register adds or replaces a named action.
func (m *Manager) Register(name string, a Action) error {
	if name == "" {
		return fmt.Errorf("%w: action name cannot be empty", errors.ErrInvalidInput)
	}
	if err := a.Validate(); err != nil {
		return fmt.Errorf("action %q: %w", name, err)
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.actions[name] = a
	return nil
}

// Get retrieves an action by name.
func (m *Manager) Get(name string) (Action, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	a, ok := m.actions[name]
	if !ok {
		return Action{}, fmt.Errorf("action %q: %w", name, errors.ErrNotFound)
	}
	return a, nil
}

// Remove deletes a named action.
func (m *Manager) Remove(name string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.actions[name]; !ok {
		return fmt.Errorf("action %q: %w", name, errors.ErrNotFound)
	}
	delete(m.actions, name)
	return nil
}

// List returns the action names in sorted order.
func (m *Manager) List() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()

	names := make([]string, 0, len(m.actions))
	for name := range m.actions {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Apply looks up a named action and runs it against input.
func (m *Manager) Apply(name, input string) (Outcome, error) {
	a, err := m.Get(name)
	if err != nil {
		return Outcome{}, err
	}
	return a.Apply(input, time.Now())
}

// LoadFile replaces the manager's actions with the contents of a JSON file.
// A missing file leaves the manager empty. Files containing an
// execute_code action are rejected.
func (m *Manager) LoadFile(path string) error {
	raw, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("failed to read actions: %w", err)
	}

	var actions map[string]Action
	if err := json.Unmarshal(raw, &actions); err != nil {
		return fmt.Errorf("failed to decode actions: %w", err)
	}
	for name, a := range actions {
		if err := a.Validate(); err != nil {
			return fmt.Errorf("action %q: %w", name, err)
		}
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.actions = actions
	if m.actions == nil {
		m.actions = make(map[string]Action)
	}
	return nil
}

// SaveFile writes the manager's actions to a JSON file.
func (m *Manager) SaveFile(path string) error {
	m.mu.RLock()
	raw, err := json.MarshalIndent(m.actions, "", "    ")
	m.mu.RUnlock()
	if err != nil {
		return fmt.Errorf("failed to encode actions: %w", err)
	}
	if err := os.WriteFile(path, raw, 0o644); err != nil {
		return fmt.Errorf("failed to write actions: %w", err)
	}
	return nil
}
