package styles

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestLoadDefault(t *testing.T) {
	c, err := LoadDefault()
	if err != nil {
		t.Fatalf("LoadDefault() error = %v", err)
	}
	if c.BasePrompt == "" {
		t.Error("embedded catalog has no base prompt")
	}
	if len(c.Categories) < 4 {
		t.Errorf("embedded catalog has only %d categories", len(c.Categories))
	}
	for _, id := range []string{"silhouette", "neckline", "yarn", "pattern", "palette"} {
		if _, ok := c.Category(id); !ok {
			t.Errorf("embedded catalog missing category %q", id)
		}
	}
}

func TestBuildPrompt(t *testing.T) {
	c, err := LoadDefault()
	if err != nil {
		t.Fatalf("LoadDefault() error = %v", err)
	}

	sel := Selection{
		"neckline": {"turtleneck"},
		"yarn":     {"chunky"},
		"pattern":  {"cable", "ribbed"},
		"palette":  {"red"},
	}
	prompt, err := c.BuildPrompt(sel, "cozy winter mood")
	if err != nil {
		t.Fatalf("BuildPrompt() error = %v", err)
	}

	for _, want := range []string{
		c.BasePrompt,
		"turtleneck",
		"chunky",
		"cable knit",
		"ribbed",
		"red",
		"cozy winter mood",
	} {
		if !strings.Contains(prompt, want) {
			t.Errorf("prompt %q missing %q", prompt, want)
		}
	}
}

func TestBuildPromptDeterministicOrder(t *testing.T) {
	c, _ := LoadDefault()
	sel := Selection{
		"palette":  {"navy"},
		"neckline": {"crew"},
	}
	first, err := c.BuildPrompt(sel, "")
	if err != nil {
		t.Fatalf("BuildPrompt() error = %v", err)
	}
	for i := 0; i < 10; i++ {
		again, _ := c.BuildPrompt(sel, "")
		if again != first {
			t.Fatalf("prompt not deterministic: %q vs %q", first, again)
		}
	}
	// Catalog order puts the neckline before the palette regardless of
	// map iteration order.
	if strings.Index(first, "crew") > strings.Index(first, "navy") {
		t.Errorf("prompt %q not in catalog order", first)
	}
}

func TestBuildPromptRejectsUnknownIDs(t *testing.T) {
	c, _ := LoadDefault()

	if _, err := c.BuildPrompt(Selection{"hat_style": {"beanie"}}, ""); err == nil {
		t.Error("unknown category accepted")
	}
	if _, err := c.BuildPrompt(Selection{"yarn": {"polyester"}}, ""); err == nil {
		t.Error("unknown option accepted")
	}
}

func TestBuildPromptSingleChoiceEnforced(t *testing.T) {
	c, _ := LoadDefault()
	if _, err := c.BuildPrompt(Selection{"neckline": {"crew", "vneck"}}, ""); err == nil {
		t.Error("two necklines accepted on a single-choice category")
	}
	// Multi categories accept several options.
	if _, err := c.BuildPrompt(Selection{"pattern": {"cable", "fairisle"}}, ""); err != nil {
		t.Errorf("multi selection rejected: %v", err)
	}
}

func TestBuildPromptFreeTextOnly(t *testing.T) {
	c, _ := LoadDefault()
	prompt, err := c.BuildPrompt(nil, "a red wool sweater")
	if err != nil {
		t.Fatalf("BuildPrompt() error = %v", err)
	}
	if !strings.HasSuffix(prompt, "a red wool sweater") {
		t.Errorf("prompt = %q", prompt)
	}
}

func TestLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "catalog.yaml")
	custom := `
base_prompt: "knitted sweater"
categories:
  - id: mood
    label: Mood
    options:
      - id: cozy
        label: Cozy
        prompt: "cozy and warm"
`
	if err := os.WriteFile(path, []byte(custom), 0o644); err != nil {
		t.Fatal(err)
	}

	c, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if _, ok := c.Category("mood"); !ok {
		t.Error("custom category not loaded")
	}

	if _, err := Load(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Error("missing file accepted")
	}
}

func TestValidateRejectsBrokenCatalogs(t *testing.T) {
	broken := []string{
		``, // no categories
		"categories:\n  - id: a\n    options: []\n",
		"categories:\n  - id: a\n    options:\n      - id: x\n        prompt: p\n  - id: a\n    options:\n      - id: y\n        prompt: p\n",
		"categories:\n  - id: a\n    options:\n      - id: x\n        prompt: \"\"\n",
	}
	for i, doc := range broken {
		if _, err := parse([]byte(doc)); err == nil {
			t.Errorf("broken catalog %d accepted", i)
		}
	}
}
