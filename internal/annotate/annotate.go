// Package annotate derives per-palace readings from a chart: which major
// stars a palace is read with (its own, or borrowed from the opposite palace),
// which persona text applies, and where the year's transformations land.
package annotate

import (
	"ziwei/internal/palace"
	"ziwei/pkg/models"
)

// Resolve reads palace i. A palace with at least one major star is read
// directly; an empty one borrows the majors of its opposite palace. The
// borrow never recurses, so an opposite palace that is also empty yields an
// empty list.
func Resolve(c *models.Chart, i int) models.Annotation {
	p := c.Palaces[i]
	a := models.Annotation{
		Index: i,
		Key:   palace.KeyOf(p.Name).String(),
	}
	if len(p.MajorStars) > 0 {
		a.Mode = models.ModeDirect
		a.SourceIndex = i
		a.EffectiveMajors = p.MajorNames()
	} else {
		a.Mode = models.ModeBorrow
		a.SourceIndex = palace.Opposite(i)
		a.EffectiveMajors = c.Palaces[a.SourceIndex].MajorNames()
	}
	a.Annual = AnnualSet(c, i, a)
	return a
}

// ResolveAll annotates every palace of a validated chart.
func ResolveAll(c *models.Chart) []models.Annotation {
	out := make([]models.Annotation, len(c.Palaces))
	for i := range c.Palaces {
		out[i] = Resolve(c, i)
	}
	return out
}

// AnnualSet lists the year's transformations that bear on palace i: those of
// its own major and minor stars, plus those of borrowed majors (flagged).
func AnnualSet(c *models.Chart, i int, a models.Annotation) []models.AnnualHua {
	var out []models.AnnualHua
	p := c.Palaces[i]
	for _, group := range [][]models.Star{p.MajorStars, p.MinorStars} {
		for _, s := range group {
			if kind, ok := AnnualHua(s.Name); ok {
				out = append(out, models.AnnualHua{Star: s.Name, Kind: kind})
			}
		}
	}
	if a.Mode == models.ModeBorrow {
		for _, name := range a.EffectiveMajors {
			if kind, ok := AnnualHua(name); ok {
				out = append(out, models.AnnualHua{Star: name, Kind: kind, Borrowed: true})
			}
		}
	}
	return out
}

// Kinds returns the distinct transformation letters in an annual set.
func Kinds(set []models.AnnualHua) map[string]bool {
	out := make(map[string]bool, len(set))
	for _, h := range set {
		out[h.Kind] = true
	}
	return out
}

// LocateStar returns the index of the palace holding star among its major or
// minor stars, or -1.
func LocateStar(c *models.Chart, star string) int {
	for i, p := range c.Palaces {
		for _, group := range [][]models.Star{p.MajorStars, p.MinorStars} {
			for _, s := range group {
				if s.Name == star {
					return i
				}
			}
		}
	}
	return -1
}

// FindPalace returns the index of the palace whose name normalises to k, or
// -1.
func FindPalace(c *models.Chart, k palace.Key) int {
	for i, p := range c.Palaces {
		if palace.KeyOf(p.Name) == k {
			return i
		}
	}
	return -1
}
