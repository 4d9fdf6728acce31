package chart

import (
	"errors"
	"fmt"
	"strings"

	"ziwei/internal/palace"
	"ziwei/pkg/models"
)

// ErrInvalidChart is returned when the engine output does not have the
// shape the rest of the service relies on.
var ErrInvalidChart = errors.New("invalid chart")

var mutagens = map[string]bool{"": true, "祿": true, "權": true, "科": true, "忌": true}

// Validate checks engine output at the boundary: 12 palaces, each on a
// distinct known branch with a known stem, named stars, known natal
// mutagens, and a soul branch that one of the palaces carries.
func Validate(c *models.Chart) error {
	if c == nil {
		return fmt.Errorf("%w: nil chart", ErrInvalidChart)
	}
	if len(c.Palaces) != palace.Count {
		return fmt.Errorf("%w: want %d palaces, got %d", ErrInvalidChart, palace.Count, len(c.Palaces))
	}

	var problems []string
	seen := make(map[string]int, palace.Count)
	for i, p := range c.Palaces {
		if strings.TrimSpace(p.Name) == "" {
			problems = append(problems, fmt.Sprintf("palace %d has no name", i))
		}
		if !palace.IsBranch(p.EarthlyBranch) {
			problems = append(problems, fmt.Sprintf("palace %d has unknown branch %q", i, p.EarthlyBranch))
		} else if prev, dup := seen[p.EarthlyBranch]; dup {
			problems = append(problems, fmt.Sprintf("palaces %d and %d share branch %s", prev, i, p.EarthlyBranch))
		} else {
			seen[p.EarthlyBranch] = i
		}
		if !palace.IsStem(p.HeavenlyStem) {
			problems = append(problems, fmt.Sprintf("palace %d has unknown stem %q", i, p.HeavenlyStem))
		}
		for _, s := range p.MajorStars {
			if strings.TrimSpace(s.Name) == "" {
				problems = append(problems, fmt.Sprintf("palace %d has an unnamed major star", i))
			}
			if !mutagens[s.Mutagen] {
				problems = append(problems, fmt.Sprintf("palace %d star %s has unknown mutagen %q", i, s.Name, s.Mutagen))
			}
		}
		for _, s := range p.MinorStars {
			if strings.TrimSpace(s.Name) == "" {
				problems = append(problems, fmt.Sprintf("palace %d has an unnamed minor star", i))
			}
		}
	}
	if _, ok := seen[c.SoulBranch]; !ok {
		problems = append(problems, fmt.Sprintf("soul branch %q matches no palace", c.SoulBranch))
	}

	if len(problems) > 0 {
		return fmt.Errorf("%w: %s", ErrInvalidChart, strings.Join(problems, "; "))
	}
	return nil
}
