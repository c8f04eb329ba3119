package action

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	colloquyerrors "github.com/sweetpotato0/colloquy/errors"
)

var fixedNow = time.Date(2025, 3, 14, 9, 26, 53, 0, time.UTC)

func TestInsertTextAppends(t *testing.T) {
	a := Action{Type: TypeInsertText, Text: "summarize this"}

	out, err := a.Apply("please", fixedNow)
	if err != nil {
		t.Fatalf("Apply() error = %v", err)
	}
	if out.Input != "please summarize this" {
		t.Errorf("Input = %q", out.Input)
	}
	if out.TriggerGeneration {
		t.Error("insert_text should not trigger generation")
	}
}

func TestInsertTextReplace(t *testing.T) {
	a := Action{Type: TypeInsertText, Text: "fresh start", Replace: true}

	out, err := a.Apply("old text", fixedNow)
	if err != nil {
		t.Fatalf("Apply() error = %v", err)
	}
	if out.Input != "fresh start" {
		t.Errorf("Input = %q", out.Input)
	}
}

func TestPlaceholderExpansion(t *testing.T) {
	a := Action{Type: TypeInsertText, Text: "report for {DATE} at {TIME}", Replace: true}

	out, err := a.Apply("", fixedNow)
	if err != nil {
		t.Fatalf("Apply() error = %v", err)
	}
	if out.Input != "report for 2025-03-14 at 09:26:53" {
		t.Errorf("Input = %q", out.Input)
	}
}

func TestGenerateTriggers(t *testing.T) {
	a := Action{Type: TypeGenerate, Text: "and translate to French"}

	out, err := a.Apply("hello", fixedNow)
	if err != nil {
		t.Fatalf("Apply() error = %v", err)
	}
	if !out.TriggerGeneration {
		t.Error("generate action should trigger generation")
	}
	if out.Input != "hello and translate to French" {
		t.Errorf("Input = %q", out.Input)
	}
}

func TestClearTargets(t *testing.T) {
	tests := []struct {
		target                  string
		clearInput, clearOutput bool
	}{
		{TargetInput, true, false},
		{TargetOutput, false, true},
		{TargetBoth, true, true},
		{"", true, true},
	}
	for _, tt := range tests {
		out, err := Action{Type: TypeClear, Target: tt.target}.Apply("text", fixedNow)
		if err != nil {
			t.Fatalf("Apply(target=%q) error = %v", tt.target, err)
		}
		if out.ClearInput != tt.clearInput || out.ClearOutput != tt.clearOutput {
			t.Errorf("target %q: ClearInput=%v ClearOutput=%v", tt.target, out.ClearInput, out.ClearOutput)
		}
		if tt.clearInput && out.Input != "" {
			t.Errorf("target %q: input should be cleared, got %q", tt.target, out.Input)
		}
	}
}

func TestExecuteCodeRejected(t *testing.T) {
	err := Action{Type: "execute_code", Text: "os.system('rm -rf /')"}.Validate()
	if err == nil {
		t.Fatal("execute_code must be rejected")
	}
	if !errors.Is(err, colloquyerrors.ErrInvalidInput) {
		t.Errorf("error = %v, want ErrInvalidInput", err)
	}
}

func TestManagerRegisterGetRemove(t *testing.T) {
	m := NewManager()
	if err := m.Register("Summarize", Action{Type: TypeGenerate, Text: "Summarize:"}); err != nil {
		t.Fatalf("Register() error = %v", err)
	}
	if err := m.Register("", Action{Type: TypeInsertText}); err == nil {
		t.Error("empty name should be rejected")
	}

	if _, err := m.Get("Summarize"); err != nil {
		t.Errorf("Get() error = %v", err)
	}
	if _, err := m.Get("missing"); !errors.Is(err, colloquyerrors.ErrNotFound) {
		t.Errorf("Get(missing) = %v, want ErrNotFound", err)
	}

	if err := m.Remove("Summarize"); err != nil {
		t.Errorf("Remove() error = %v", err)
	}
	if err := m.Remove("Summarize"); !errors.Is(err, colloquyerrors.ErrNotFound) {
		t.Errorf("second Remove() = %v, want ErrNotFound", err)
	}
}

func TestManagerListSorted(t *testing.T) {
	m := NewManager()
	for _, name := range []string{"zeta", "alpha", "mid"} {
		if err := m.Register(name, Action{Type: TypeInsertText}); err != nil {
			t.Fatal(err)
		}
	}
	got := m.List()
	want := []string{"alpha", "mid", "zeta"}
	if len(got) != len(want) {
		t.Fatalf("List() = %v", got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("List() = %v, want %v", got, want)
		}
	}
}

func TestLoadSaveRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), DefaultFileName)

	m := NewManager()
	if err := m.Register("Today", Action{Type: TypeInsertText, Text: "Date: {DATE}"}); err != nil {
		t.Fatal(err)
	}
	if err := m.Register("Wipe", Action{Type: TypeClear, Target: TargetInput}); err != nil {
		t.Fatal(err)
	}
	if err := m.SaveFile(path); err != nil {
		t.Fatalf("SaveFile() error = %v", err)
	}

	loaded := NewManager()
	if err := loaded.LoadFile(path); err != nil {
		t.Fatalf("LoadFile() error = %v", err)
	}
	a, err := loaded.Get("Wipe")
	if err != nil {
		t.Fatalf("Get() after load error = %v", err)
	}
	if a.Target != TargetInput {
		t.Errorf("Target = %q", a.Target)
	}
}

func TestLoadMissingFileIsEmpty(t *testing.T) {
	m := NewManager()
	if err := m.LoadFile(filepath.Join(t.TempDir(), DefaultFileName)); err != nil {
		t.Fatalf("LoadFile() error = %v", err)
	}
	if len(m.List()) != 0 {
		t.Errorf("List() = %v, want empty", m.List())
	}
}

func TestLoadRejectsExecuteCode(t *testing.T) {
	path := filepath.Join(t.TempDir(), DefaultFileName)
	data := `{"Evil": {"type": "execute_code", "code": "import os"}}`
	if err := os.WriteFile(path, []byte(data), 0o644); err != nil {
		t.Fatal(err)
	}

	m := NewManager()
	err := m.LoadFile(path)
	if err == nil {
		t.Fatal("LoadFile() must reject execute_code actions")
	}
	if !errors.Is(err, colloquyerrors.ErrInvalidInput) {
		t.Errorf("error = %v, want ErrInvalidInput", err)
	}
}
