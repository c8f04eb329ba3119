package prefs

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

// InstructionsFileName is the system-instructions file name.
const InstructionsFileName = "instructions.json"

// Instructions holds the system and developer instructions prepended to
// prompts.
type Instructions struct {
	System    string `json:"system"`
	Developer string `json:"developer"`
}

// InstructionPresets are ready-made system instructions the user can start
// from.
var InstructionPresets = map[string]string{
	"General Assistant": "You are a helpful, accurate, and friendly assistant. Provide clear and concise answers.",
	"Code Assistant":    "You are an expert programmer. Provide working code examples with explanations. Focus on best practices and clean code.",
	"Creative Writer":   "You are a creative writing assistant. Help with storytelling, character development, and engaging narratives.",
}

// LoadInstructions reads instructions from path. A missing file returns
// empty instructions.
func LoadInstructions(path string) (*Instructions, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return &Instructions{}, nil
		}
		return nil, fmt.Errorf("failed to read instructions: %w", err)
	}

	var inst Instructions
	if err := json.Unmarshal(raw, &inst); err != nil {
		return nil, fmt.Errorf("failed to decode instructions: %w", err)
	}
	return &inst, nil
}

// Save writes the instructions to path.
func (i *Instructions) Save(path string) error {
	raw, err := json.MarshalIndent(i, "", "    ")
	if err != nil {
		return fmt.Errorf("failed to encode instructions: %w", err)
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("failed to create instructions directory: %w", err)
		}
	}
	if err := os.WriteFile(path, raw, 0o644); err != nil {
		return fmt.Errorf("failed to write instructions: %w", err)
	}
	return nil
}

// Apply prepends the system instructions to prompt when set.
func (i *Instructions) Apply(prompt string) string {
	if i.System == "" {
		return prompt
	}
	return fmt.Sprintf("%s\n\n%s", i.System, prompt)
}
