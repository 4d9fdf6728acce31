// Package kb is the read-only knowledge base the annotation and rendering
// layers draw their Chinese text from. The 2026 content ships embedded; a
// file on disk can replace it at runtime.
package kb

import (
	_ "embed"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"ziwei/internal/palace"
)

//go:embed kb_2026.yaml
var embedded []byte

// Transformation letters, in their conventional order.
var Kinds = []string{"祿", "權", "科", "忌"}

type Year struct {
	Number       int    `yaml:"number"`
	Label        string `yaml:"label"`
	Headline     string `yaml:"headline"`
	Pressure     string `yaml:"pressure"`
	Fortune      string `yaml:"fortune"`
	ReadingOrder string `yaml:"reading_order"`
}

type PalaceEntry struct {
	Scene       string   `yaml:"scene"`
	Description string   `yaml:"description"`
	Actions     []string `yaml:"actions"`
}

// Persona is keyed by a single star or a two-star combination. Combination
// entries usually only carry Tag.
type Persona struct {
	Tag      string `yaml:"tag"`
	Gift     string `yaml:"gift"`
	Shadow   string `yaml:"shadow"`
	Need     string `yaml:"need"`
	Practice string `yaml:"practice"`
}

// Line renders the persona as one line of plain-language explanation.
func (p Persona) Line(name string) string {
	if p.Gift == "" {
		return fmt.Sprintf("【%s】%s", name, p.Tag)
	}
	return fmt.Sprintf("【%s】天賦：%s｜陰影：%s｜需要：%s｜練習：%s", name, p.Gift, p.Shadow, p.Need, p.Practice)
}

type Transformation struct {
	Tone     string `yaml:"tone"`
	Status   string `yaml:"status"`
	Guidance string `yaml:"guidance"`
	Life     string `yaml:"life"`
}

// Month is one themed monthly strategy. Focus is "lu" or "ji" and tells the
// renderer which annual palace the month leans on.
type Month struct {
	Month       int    `yaml:"month"`
	Theme       string `yaml:"theme"`
	Description string `yaml:"description"`
	Action      string `yaml:"action"`
	Focus       string `yaml:"focus"`
	Color       string `yaml:"color"`
}

// Base is one loaded knowledge base.
type Base struct {
	Year            Year                      `yaml:"year"`
	Palaces         map[string]PalaceEntry    `yaml:"palaces"`
	Personas        map[string]Persona        `yaml:"personas"`
	Transformations map[string]Transformation `yaml:"transformations"`
	Months          []Month                   `yaml:"months"`
	HealthNotes     []string                  `yaml:"health_notes"`

	palaces map[palace.Key]PalaceEntry
}

// Parse decodes and validates a knowledge base document.
func Parse(data []byte) (*Base, error) {
	var b Base
	if err := yaml.Unmarshal(data, &b); err != nil {
		return nil, fmt.Errorf("decode kb: %w", err)
	}
	if err := b.index(); err != nil {
		return nil, err
	}
	return &b, nil
}

// LoadFile reads a knowledge base from disk.
func LoadFile(path string) (*Base, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read kb %s: %w", path, err)
	}
	return Parse(data)
}

// Embedded returns the built-in 2026 knowledge base.
func Embedded() *Base {
	b, err := Parse(embedded)
	if err != nil {
		panic(fmt.Sprintf("embedded kb is invalid: %v", err))
	}
	return b
}

func (b *Base) index() error {
	b.palaces = make(map[palace.Key]PalaceEntry, palace.Count)
	for name, entry := range b.Palaces {
		k, ok := palace.Normalize(name)
		if !ok {
			return fmt.Errorf("kb: unknown palace %q", name)
		}
		if _, dup := b.palaces[k]; dup {
			return fmt.Errorf("kb: palace %q listed twice", k)
		}
		b.palaces[k] = entry
	}
	var missing []string
	for _, k := range palace.Keys() {
		if _, ok := b.palaces[k]; !ok {
			missing = append(missing, k.String())
		}
	}
	if len(missing) > 0 {
		return fmt.Errorf("kb: missing palaces %s", strings.Join(missing, ","))
	}

	for _, kind := range Kinds {
		if _, ok := b.Transformations[kind]; !ok {
			return fmt.Errorf("kb: missing transformation %s", kind)
		}
	}

	if len(b.Months) != 12 {
		return fmt.Errorf("kb: want 12 months, got %d", len(b.Months))
	}
	for i, m := range b.Months {
		if m.Month != i+1 {
			return fmt.Errorf("kb: month %d out of order at position %d", m.Month, i+1)
		}
	}
	return nil
}

func (b *Base) Palace(k palace.Key) (PalaceEntry, bool) {
	e, ok := b.palaces[k]
	return e, ok
}

func (b *Base) Persona(key string) (Persona, bool) {
	p, ok := b.Personas[key]
	return p, ok
}

func (b *Base) Transformation(kind string) (Transformation, bool) {
	t, ok := b.Transformations[kind]
	return t, ok
}

// Month returns the entry for month n (1-based).
func (b *Base) Month(n int) (Month, bool) {
	if n < 1 || n > len(b.Months) {
		return Month{}, false
	}
	return b.Months[n-1], true
}

// Fill substitutes {{lu}} and {{ji}} placeholders in narrative templates.
func Fill(tmpl, lu, ji string) string {
	return strings.NewReplacer("{{lu}}", lu, "{{ji}}", ji).Replace(tmpl)
}
