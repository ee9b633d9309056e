// Package styles holds the sweater design vocabulary: the categorized
// option catalog the UI presents and the prompt assembly that turns a
// selection into generator input.
package styles

import (
	_ "embed"
	"fmt"
	"os"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"
)

//go:embed defaults.yaml
var defaultCatalogYAML []byte

// Option is one selectable design choice within a category.
type Option struct {
	ID     string `yaml:"id" json:"id"`
	Label  string `yaml:"label" json:"label"`
	Prompt string `yaml:"prompt" json:"-"`
}

// Category is one group of mutually related options (neckline, yarn, ...).
type Category struct {
	ID      string   `yaml:"id" json:"id"`
	Label   string   `yaml:"label" json:"label"`
	Options []Option `yaml:"options" json:"options"`

	// Multi marks categories where several options combine (patterns,
	// details); single-choice categories replace instead.
	Multi bool `yaml:"multi" json:"multi"`
}

// Catalog is the full design vocabulary.
type Catalog struct {
	// BasePrompt anchors every generated prompt to knitwear.
	BasePrompt string     `yaml:"base_prompt" json:"-"`
	Categories []Category `yaml:"categories" json:"categories"`
}

// LoadDefault parses the embedded catalog. The embedded file is validated
// by tests, so a parse failure here is a build defect.
func LoadDefault() (*Catalog, error) {
	return parse(defaultCatalogYAML)
}

// LoadFile parses a catalog from a YAML file, for deployments that curate
// their own vocabulary.
func LoadFile(path string) (*Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("styles: reading catalog: %w", err)
	}
	return parse(data)
}

// Load returns the file catalog when path is set, else the embedded one.
func Load(path string) (*Catalog, error) {
	if path == "" {
		return LoadDefault()
	}
	return LoadFile(path)
}

func parse(data []byte) (*Catalog, error) {
	var c Catalog
	if err := yaml.Unmarshal(data, &c); err != nil {
		return nil, fmt.Errorf("styles: parsing catalog: %w", err)
	}
	if err := c.validate(); err != nil {
		return nil, err
	}
	return &c, nil
}

// validate enforces the structural invariants prompt assembly relies on:
// unique category and option IDs and a non-empty prompt per option.
func (c *Catalog) validate() error {
	if len(c.Categories) == 0 {
		return fmt.Errorf("styles: catalog has no categories")
	}

	seenCat := make(map[string]bool)
	for _, cat := range c.Categories {
		if cat.ID == "" {
			return fmt.Errorf("styles: category with empty id")
		}
		if seenCat[cat.ID] {
			return fmt.Errorf("styles: duplicate category id %q", cat.ID)
		}
		seenCat[cat.ID] = true

		if len(cat.Options) == 0 {
			return fmt.Errorf("styles: category %q has no options", cat.ID)
		}
		seenOpt := make(map[string]bool)
		for _, opt := range cat.Options {
			if opt.ID == "" {
				return fmt.Errorf("styles: category %q has an option with empty id", cat.ID)
			}
			if seenOpt[opt.ID] {
				return fmt.Errorf("styles: duplicate option id %q in category %q", opt.ID, cat.ID)
			}
			seenOpt[opt.ID] = true
			if strings.TrimSpace(opt.Prompt) == "" {
				return fmt.Errorf("styles: option %q in category %q has no prompt text", opt.ID, cat.ID)
			}
		}
	}
	return nil
}

// Category returns the category with the given ID.
func (c *Catalog) Category(id string) (Category, bool) {
	for _, cat := range c.Categories {
		if cat.ID == id {
			return cat, true
		}
	}
	return Category{}, false
}

// optionPrompt resolves one option's prompt fragment.
func (c *Catalog) optionPrompt(categoryID, optionID string) (string, bool) {
	cat, ok := c.Category(categoryID)
	if !ok {
		return "", false
	}
	for _, opt := range cat.Options {
		if opt.ID == optionID {
			return opt.Prompt, true
		}
	}
	return "", false
}

// Selection maps category IDs to the chosen option IDs.
type Selection map[string][]string

// BuildPrompt assembles a generation prompt from a selection plus optional
// free text. Categories are emitted in catalog order so the same selection
// always yields the same prompt; unknown category or option IDs fail
// loudly instead of silently shaping a different design.
func (c *Catalog) BuildPrompt(sel Selection, freeText string) (string, error) {
	parts := []string{c.BasePrompt}

	for _, cat := range c.Categories {
		chosen, ok := sel[cat.ID]
		if !ok || len(chosen) == 0 {
			continue
		}
		if !cat.Multi && len(chosen) > 1 {
			return "", fmt.Errorf("styles: category %q accepts a single choice, got %d", cat.ID, len(chosen))
		}
		for _, optionID := range chosen {
			fragment, ok := c.optionPrompt(cat.ID, optionID)
			if !ok {
				return "", fmt.Errorf("styles: unknown option %q in category %q", optionID, cat.ID)
			}
			parts = append(parts, fragment)
		}
	}

	// Reject selections naming categories the catalog doesn't have.
	for id := range sel {
		if _, ok := c.Category(id); !ok {
			return "", fmt.Errorf("styles: unknown category %q", id)
		}
	}

	if ft := strings.TrimSpace(freeText); ft != "" {
		parts = append(parts, ft)
	}

	var nonEmpty []string
	for _, p := range parts {
		if strings.TrimSpace(p) != "" {
			nonEmpty = append(nonEmpty, strings.TrimSpace(p))
		}
	}
	return strings.Join(nonEmpty, ", "), nil
}

// CategoryIDs returns all category IDs, sorted, for diagnostics.
func (c *Catalog) CategoryIDs() []string {
	ids := make([]string, 0, len(c.Categories))
	for _, cat := range c.Categories {
		ids = append(ids, cat.ID)
	}
	sort.Strings(ids)
	return ids
}
