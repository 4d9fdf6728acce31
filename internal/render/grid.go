// Package render turns a chart and its annotations into view-models: the
// 12-palace grid, the clash line, the palace detail panel and the summaries.
// Every builder is a pure function of its inputs.
package render

import (
	"ziwei/internal/annotate"
	"ziwei/internal/kb"
	"ziwei/internal/palace"
	"ziwei/pkg/models"
)

// Grid geometry, in SVG user units.
const (
	CellSize = 100
	GridSize = 4 * CellSize
)

type position struct{ row, col int }

// The ring runs clockwise from 巳 in the top-left corner; the inner 2×2 block
// is the centre panel.
var ring = map[string]position{
	"巳": {0, 0}, "午": {0, 1}, "未": {0, 2}, "申": {0, 3},
	"辰": {1, 0}, "酉": {1, 3},
	"卯": {2, 0}, "戌": {2, 3},
	"寅": {3, 0}, "丑": {3, 1}, "子": {3, 2}, "亥": {3, 3},
}

// StarTag is a star with its natal and annual transformation letters.
type StarTag struct {
	Name   string `json:"name"`
	Natal  string `json:"natal,omitempty"`
	Annual string `json:"annual,omitempty"`
}

type Cell struct {
	Index        int       `json:"index"`
	Row          int       `json:"row"`
	Col          int       `json:"col"`
	Name         string    `json:"name"`
	Branch       string    `json:"branch"`
	Stem         string    `json:"stem"`
	Changsheng12 string    `json:"changsheng12,omitempty"`
	Majors       []StarTag `json:"majors"`
	Minors       []string  `json:"minors"`
	Nominal      bool      `json:"nominal"`
	Body         bool      `json:"body,omitempty"`
	Borrowed     bool      `json:"borrowed,omitempty"`
	Hua          []string  `json:"hua,omitempty"`
}

// Has reports whether the cell's annual set contains kind.
func (c Cell) Has(kind string) bool {
	for _, k := range c.Hua {
		if k == kind {
			return true
		}
	}
	return false
}

// X and Y are the cell's top-left corner; CX and CY its centre.
func (c Cell) X() int  { return c.Col * CellSize }
func (c Cell) Y() int  { return c.Row * CellSize }
func (c Cell) CX() int { return c.X() + CellSize/2 }
func (c Cell) CY() int { return c.Y() + CellSize/2 }

type Grid struct {
	Cells    []Cell `json:"cells"`
	Nominal  int    `json:"nominal"`
	Pressure int    `json:"pressure"`
	Fortune  int    `json:"fortune"`
	Selected int    `json:"selected"`
}

// BuildGrid lays the 12 palaces out by branch. anns must come from
// annotate.ResolveAll on the same chart.
func BuildGrid(c *models.Chart, anns []models.Annotation) Grid {
	g := Grid{
		Cells:    make([]Cell, len(c.Palaces)),
		Nominal:  -1,
		Pressure: annotate.LocateStar(c, annotate.PressureStar),
		Fortune:  annotate.LocateStar(c, annotate.FortuneStar),
		Selected: -1,
	}
	for i, p := range c.Palaces {
		pos, ok := ring[p.EarthlyBranch]
		if !ok {
			pos = position{-1, -1}
		}
		cell := Cell{
			Index:        i,
			Row:          pos.row,
			Col:          pos.col,
			Name:         p.Name,
			Branch:       p.EarthlyBranch,
			Stem:         p.HeavenlyStem,
			Changsheng12: p.Changsheng12,
			Body:         p.IsBodyPalace,
			Majors:       starTags(p.MajorStars),
		}
		for _, s := range p.MinorStars {
			cell.Minors = append(cell.Minors, s.Name)
		}
		if p.EarthlyBranch == c.SoulBranch && g.Nominal < 0 {
			cell.Nominal = true
			g.Nominal = i
		}
		if i < len(anns) {
			cell.Borrowed = anns[i].Borrowed()
			present := annotate.Kinds(anns[i].Annual)
			for _, kind := range kb.Kinds {
				if present[kind] {
					cell.Hua = append(cell.Hua, kind)
				}
			}
		}
		g.Cells[i] = cell
	}
	return g
}

func starTags(stars []models.Star) []StarTag {
	out := make([]StarTag, 0, len(stars))
	for _, s := range stars {
		tag := StarTag{Name: s.Name, Natal: s.Mutagen}
		if kind, ok := annotate.AnnualHua(s.Name); ok {
			tag.Annual = kind
		}
		out = append(out, tag)
	}
	return out
}

// Line is a segment between two cell centres.
type Line struct {
	From int `json:"from"`
	To   int `json:"to"`
	X1   int `json:"x1"`
	Y1   int `json:"y1"`
	X2   int `json:"x2"`
	Y2   int `json:"y2"`
}

// ClashLine joins palace idx to its opposite. It reports false when idx is
// not a palace (the pressure star was not found) or a cell is off the ring.
func ClashLine(g Grid, idx int) (Line, bool) {
	if !palace.ValidIndex(idx) || len(g.Cells) != palace.Count {
		return Line{}, false
	}
	a, b := g.Cells[idx], g.Cells[palace.Opposite(idx)]
	if a.Row < 0 || b.Row < 0 {
		return Line{}, false
	}
	return Line{From: a.Index, To: b.Index, X1: a.CX(), Y1: a.CY(), X2: b.CX(), Y2: b.CY()}, true
}
