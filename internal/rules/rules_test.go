package rules

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/emiliopalmerini/mfocus/internal/classifier"
	"github.com/emiliopalmerini/mfocus/internal/domain"
)

func TestDefault_Classifies(t *testing.T) {
	f := Default()
	set, err := f.CategorySet()
	if err != nil {
		t.Fatalf("CategorySet() error: %v", err)
	}
	c, err := classifier.New(set, 0, f.Rules)
	if err != nil {
		t.Fatalf("default rules do not compile: %v", err)
	}

	tests := []struct {
		source string
		want   string
	}{
		{"https://github.com/emiliopalmerini/mfocus/pull/3", "Code Review"},
		{"https://github.com/emiliopalmerini/mfocus", "Coding/Programming"},
		{"https://www.youtube.com/watch?v=1", "Video Streaming"},
		{"https://www.reddit.com/r/golang", "Social Media"},
		{"https://meet.google.com/abc-defg-hij", "Meetings/Calls"},
		{"Calculator", domain.CategoryOther},
	}
	for _, tt := range tests {
		if got := c.ClassifySource(tt.source); got.Name != tt.want {
			t.Errorf("ClassifySource(%q) = %q, want %q", tt.source, got.Name, tt.want)
		}
	}

	if gaming, ok := set.Get("Gaming"); !ok || !gaming.Distraction {
		t.Errorf("Gaming = %+v, want a distraction category", gaming)
	}
	if other := set.Other(); other.Color != "#6B7280" {
		t.Errorf("Other color = %q, want #6B7280", other.Color)
	}
}

func TestLoad(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "rules.yaml")
	content := `
categories:
  - name: Deep Work
    color: "#000000"
rules:
  - pattern: vim
    category: Deep Work
  - pattern: '^term'
    kind: regex
    category: Deep Work
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	f, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if len(f.Rules) != 2 {
		t.Fatalf("got %d rules, want 2", len(f.Rules))
	}
	if f.Rules[0].Kind != domain.MatchSubstring || f.Rules[1].Kind != domain.MatchRegex {
		t.Errorf("kinds = %q, %q", f.Rules[0].Kind, f.Rules[1].Kind)
	}
}

func TestLoad_Errors(t *testing.T) {
	dir := t.TempDir()
	bad := filepath.Join(dir, "bad.yaml")
	if err := os.WriteFile(bad, []byte("rules:\n  - pattern: x\n    kind: glob\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	if _, err := Load(filepath.Join(dir, "missing.yaml")); err == nil {
		t.Error("Load(missing) expected error")
	}
	if _, err := Load(bad); err == nil {
		t.Error("Load(unknown kind) expected error")
	}
}

func TestLoad_EmptyPathUsesDefaults(t *testing.T) {
	f, err := Load("")
	if err != nil {
		t.Fatalf("Load(\"\") error: %v", err)
	}
	if len(f.Categories) != len(Default().Categories) {
		t.Errorf("Load(\"\") returned %d categories", len(f.Categories))
	}
}
