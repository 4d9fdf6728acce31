// Package chart is the boundary to the external chart engine. Everything the
// engine returns is validated here before the rest of the service sees it.
package chart

import (
	"context"
	"errors"
	"fmt"

	"ziwei/internal/timeslot"
	"ziwei/pkg/models"
)

// ErrEngine wraps any failure reported by the chart engine itself.
var ErrEngine = errors.New("chart engine failed")

// Request carries the normalised birth data the engine needs.
type Request struct {
	Calendar  models.Calendar `json:"calendar"`
	Year      int             `json:"year"`
	Month     int             `json:"month"`
	Day       int             `json:"day"`
	LeapMonth bool            `json:"leap_month"`
	TimeSlot  int             `json:"time_slot"`
	Gender    string          `json:"gender"` // 男 or 女
	FixLeap   bool            `json:"fix_leap"`
	Locale    string          `json:"locale"`
}

// Date formats the request date the way the engine parses it.
func (r Request) Date() string {
	return fmt.Sprintf("%d-%d-%d", r.Year, r.Month, r.Day)
}

// Provider computes natal charts. BySolar ignores LeapMonth.
type Provider interface {
	BySolar(ctx context.Context, req Request) (*models.Chart, error)
	ByLunar(ctx context.Context, req Request) (*models.Chart, error)
}

// Func adapts a single function to Provider, dispatching both calendars to it.
type Func func(ctx context.Context, req Request) (*models.Chart, error)

func (f Func) BySolar(ctx context.Context, req Request) (*models.Chart, error) { return f(ctx, req) }
func (f Func) ByLunar(ctx context.Context, req Request) (*models.Chart, error) { return f(ctx, req) }

// Compute dispatches on the request calendar and validates the result.
func Compute(ctx context.Context, p Provider, req Request) (*models.Chart, error) {
	if !timeslot.Valid(req.TimeSlot) {
		return nil, fmt.Errorf("%w: %d", timeslot.ErrSlotOutOfRange, req.TimeSlot)
	}

	var (
		c   *models.Chart
		err error
	)
	if req.Calendar == models.CalendarLunar {
		c, err = p.ByLunar(ctx, req)
	} else {
		c, err = p.BySolar(ctx, req)
	}
	if err != nil {
		return nil, err
	}
	if err := Validate(c); err != nil {
		return nil, err
	}
	return c, nil
}

// Candidate is one evaluation of an ambiguous birth time.
type Candidate struct {
	Slot  int           `json:"slot"`
	Label string        `json:"label"`
	Chart *models.Chart `json:"chart"`
}

// ComputeCandidates evaluates the same request once per slot. Any failure
// fails the whole set.
func ComputeCandidates(ctx context.Context, p Provider, req Request, slots []int) ([]Candidate, error) {
	out := make([]Candidate, 0, len(slots))
	for _, slot := range slots {
		r := req
		r.TimeSlot = slot
		c, err := Compute(ctx, p, r)
		if err != nil {
			return nil, fmt.Errorf("slot %d: %w", slot, err)
		}
		out = append(out, Candidate{Slot: slot, Label: timeslot.Label(slot), Chart: c})
	}
	return out, nil
}
