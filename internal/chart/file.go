package chart

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"ziwei/pkg/models"
)

// FileProvider serves charts from JSON fixtures on disk, named by FixtureName.
// When Fallback is set, requests without a matching fixture get that file.
type FileProvider struct {
	Dir      string
	Fallback string
}

// FixtureName is the file a request maps to, e.g.
// "gregorian_1995-01-01_06_male.json".
func FixtureName(req Request) string {
	gender := "male"
	if req.Gender == models.GenderFemale.Localized() {
		gender = "female"
	}
	leap := ""
	if req.Calendar == models.CalendarLunar && req.LeapMonth {
		leap = "L"
	}
	cal := req.Calendar
	if cal == "" {
		cal = models.CalendarSolar
	}
	return fmt.Sprintf("%s_%04d-%s%02d-%02d_%02d_%s.json", cal, req.Year, leap, req.Month, req.Day, req.TimeSlot, gender)
}

func (p *FileProvider) BySolar(ctx context.Context, req Request) (*models.Chart, error) {
	req.Calendar = models.CalendarSolar
	return p.load(req)
}

func (p *FileProvider) ByLunar(ctx context.Context, req Request) (*models.Chart, error) {
	req.Calendar = models.CalendarLunar
	return p.load(req)
}

func (p *FileProvider) load(req Request) (*models.Chart, error) {
	path := filepath.Join(p.Dir, FixtureName(req))
	b, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) && p.Fallback != "" {
		path = filepath.Join(p.Dir, p.Fallback)
		b, err = os.ReadFile(path)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: no fixture for %s: %v", ErrEngine, FixtureName(req), err)
	}

	var c models.Chart
	if err := json.Unmarshal(b, &c); err != nil {
		return nil, fmt.Errorf("%w: decode %s: %v", ErrInvalidChart, path, err)
	}
	return &c, nil
}
