package render

import (
	"errors"
	"fmt"
	"strings"

	"ziwei/internal/annotate"
	"ziwei/internal/kb"
	"ziwei/internal/palace"
	"ziwei/pkg/models"
)

var ErrNoPalace = errors.New("no such palace")

const (
	noMeaning  = "（此宮位人生意義待補）"
	noProfile  = "（尚未建立白話）"
	fewMajors  = "此宮主星較少：更建議看你在此領域的行為模式與四化提示。"
	maxPersona = 3
)

// Panel is the detail view of one palace.
type Panel struct {
	Index        int       `json:"index"`
	Prev         int       `json:"prev"`
	Next         int       `json:"next"`
	Name         string    `json:"name"`
	Key          string    `json:"key"`
	Scene        string    `json:"scene,omitempty"`
	StemBranch   string    `json:"stem_branch"`
	Changsheng12 string    `json:"changsheng12,omitempty"`
	Nominal      bool      `json:"nominal,omitempty"`
	Body         bool      `json:"body,omitempty"`
	Majors       []StarTag `json:"majors"`
	Minors       []string  `json:"minors"`
	Meaning      string    `json:"meaning"`
	Actions      []string  `json:"actions,omitempty"`
	Persona      []string  `json:"persona"`
	Borrow       string    `json:"borrow,omitempty"`
	Natal        []string  `json:"natal,omitempty"`
	Annual       []string  `json:"annual,omitempty"`
	HealthNotes  []string  `json:"health_notes,omitempty"`
}

// HasHua reports whether any natal or annual transformation line applies.
func (p Panel) HasHua() bool { return len(p.Natal)+len(p.Annual) > 0 }

// Detail builds the panel for palace idx. Prev and Next wrap around the ring.
func Detail(c *models.Chart, anns []models.Annotation, base *kb.Base, idx int) (Panel, error) {
	if !palace.ValidIndex(idx) || idx >= len(c.Palaces) || idx >= len(anns) {
		return Panel{}, fmt.Errorf("%w: %d", ErrNoPalace, idx)
	}
	p := c.Palaces[idx]
	a := anns[idx]
	key := palace.KeyByName(a.Key)

	panel := Panel{
		Index:        idx,
		Prev:         palace.Prev(idx),
		Next:         palace.Next(idx),
		Name:         p.Name,
		Key:          a.Key,
		StemBranch:   p.HeavenlyStem + p.EarthlyBranch,
		Changsheng12: p.Changsheng12,
		Nominal:      p.EarthlyBranch == c.SoulBranch,
		Body:         p.IsBodyPalace,
		Majors:       starTags(p.MajorStars),
		Meaning:      noMeaning,
	}
	for _, s := range p.MinorStars {
		panel.Minors = append(panel.Minors, s.Name)
	}
	if entry, ok := base.Palace(key); ok {
		panel.Scene = entry.Scene
		panel.Meaning = entry.Description
		panel.Actions = entry.Actions
	}

	panel.Persona = personaLines(base, a.EffectiveMajors)

	if a.Borrowed() {
		src := c.Palaces[a.SourceIndex]
		stars := "（對宮亦無主星）"
		if len(a.EffectiveMajors) > 0 {
			stars = strings.Join(a.EffectiveMajors, "、")
		}
		panel.Borrow = fmt.Sprintf("本宮無主星，借對宮【%s】（#%d）主星來讀：%s", src.Name, a.SourceIndex, stars)
	}

	for _, s := range p.MajorStars {
		if s.Mutagen == "" {
			continue
		}
		if t, ok := base.Transformation(s.Mutagen); ok {
			panel.Natal = append(panel.Natal, fmt.Sprintf("本命 %s 化%s：%s", s.Name, s.Mutagen, t.Life))
		}
	}
	for _, h := range a.Annual {
		t, ok := base.Transformation(h.Kind)
		if !ok {
			continue
		}
		line := fmt.Sprintf("%d %s 化%s：%s", base.Year.Number, h.Star, h.Kind, t.Life)
		if h.Borrowed {
			line += "（借對宮）"
		}
		panel.Annual = append(panel.Annual, line)
	}

	if key == palace.Health {
		panel.HealthNotes = base.HealthNotes
	}
	return panel, nil
}

// personaLines explains the effective majors. A two-star combination entry,
// when the knowledge base has one, leads; each star then gets its own line.
func personaLines(base *kb.Base, majors []string) []string {
	if len(majors) == 0 {
		return []string{fewMajors}
	}
	var lines []string
	if key, p, ok := annotate.PersonaKey(base, majors); ok && key != majors[0] {
		lines = append(lines, p.Line(key))
	}
	for i, name := range majors {
		if i == maxPersona {
			break
		}
		if p, ok := base.Persona(name); ok {
			lines = append(lines, p.Line(name))
		} else {
			lines = append(lines, fmt.Sprintf("【%s】%s", name, noProfile))
		}
	}
	return lines
}
