package session

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"ziwei/internal/annotate"
	"ziwei/internal/chart"
	"ziwei/internal/palace"
	"ziwei/internal/prefs"
	"ziwei/internal/timeslot"
	"ziwei/pkg/logger"
	"ziwei/pkg/models"
)

// PrefsSaver remembers the last birth date, time and calendar for an owner.
type PrefsSaver interface {
	Save(ctx context.Context, owner string, p prefs.Prefs) error
}

// ReadingSaver records each successful calculation.
type ReadingSaver interface {
	Create(ctx context.Context, r *models.Reading) error
}

type Options struct {
	Locale  string
	FixLeap bool
	MinYear int
	MaxYear int
}

// Controller drives state transitions for every session in Store.
type Controller struct {
	Provider chart.Provider
	Store    *Store
	Prefs    PrefsSaver
	Readings ReadingSaver
	Options  Options

	observers []func(id string, st State)
	now       func() time.Time
}

func NewController(p chart.Provider, store *Store, opts Options) *Controller {
	if opts.Locale == "" {
		opts.Locale = "zh-TW"
	}
	return &Controller{Provider: p, Store: store, Options: opts, now: time.Now}
}

// Subscribe registers fn to run after every change of the selected palace.
// Call it before serving requests.
func (c *Controller) Subscribe(fn func(id string, st State)) {
	c.observers = append(c.observers, fn)
}

func (c *Controller) notify(id string, st State) {
	for _, fn := range c.observers {
		fn(id, st)
	}
}

// State returns the current state of session id.
func (c *Controller) State(id string) State {
	return c.Store.Get(id)
}

// Calculate validates the input, computes the chart and commits it. Input
// errors leave the state untouched; engine errors put the session back on
// the input stage. A 子 hour without early/late yields the choose stage.
func (c *Controller) Calculate(ctx context.Context, id, owner string, in models.BirthInput) (State, error) {
	log := logger.Named("session").With("session", id)

	in, slots, err := c.normalize(in)
	if err != nil {
		log.Infow("rejected input", "err", err)
		return c.Store.Get(id), err
	}

	req := chart.Request{
		Calendar:  in.Calendar,
		Year:      in.Year,
		Month:     in.Month,
		Day:       in.Day,
		LeapMonth: in.LeapMonth,
		TimeSlot:  in.TimeSlot,
		Gender:    in.Gender.Localized(),
		FixLeap:   c.Options.FixLeap,
		Locale:    c.Options.Locale,
	}

	if len(slots) > 1 {
		cands, err := chart.ComputeCandidates(ctx, c.Provider, req, slots)
		if err != nil {
			return c.fail(id, in, err), fmt.Errorf("%w: %w", ErrCalculationFailed, err)
		}
		st := Initial()
		st.Stage = StageChoose
		st.Input = in
		st.Candidates = cands
		c.Store.Put(id, st)
		log.Infow("ambiguous hour", "calendar", in.Calendar, "slots", slots)
		return st, nil
	}

	ch, err := chart.Compute(ctx, c.Provider, req)
	if err != nil {
		return c.fail(id, in, err), fmt.Errorf("%w: %w", ErrCalculationFailed, err)
	}
	return c.commit(ctx, id, owner, in, ch), nil
}

// Choose commits one of the pending 子-hour candidates.
func (c *Controller) Choose(ctx context.Context, id, owner string, slot int) (State, error) {
	cur := c.Store.Get(id)
	if cur.Stage != StageChoose {
		return cur, ErrNotChoosing
	}
	for _, cand := range cur.Candidates {
		if cand.Slot == slot {
			in := cur.Input
			in.TimeSlot = slot
			in.SlotLabel = cand.Label
			return c.commit(ctx, id, owner, in, cand.Chart), nil
		}
	}
	return cur, fmt.Errorf("%w: slot %d is not a candidate", ErrInvalidInput, slot)
}

// Select makes palace idx the selected one.
func (c *Controller) Select(id string, idx int) (State, error) {
	return c.move(id, func(int) int { return idx })
}

// Next selects the following palace, wrapping after 11.
func (c *Controller) Next(id string) (State, error) {
	return c.move(id, func(cur int) int {
		if cur < 0 {
			return 0
		}
		return palace.Next(cur)
	})
}

// Prev selects the preceding palace, wrapping before 0.
func (c *Controller) Prev(id string) (State, error) {
	return c.move(id, func(cur int) int {
		if cur < 0 {
			return palace.Count - 1
		}
		return palace.Prev(cur)
	})
}

func (c *Controller) move(id string, to func(cur int) int) (State, error) {
	st, err := c.Store.Update(id, func(cur State) (State, error) {
		if !cur.HasChart() {
			return cur, ErrNoChart
		}
		idx := to(cur.Selected)
		if !palace.ValidIndex(idx) {
			return cur, fmt.Errorf("%w: palace %d", ErrInvalidInput, idx)
		}
		cur.Selected = idx
		cur.Err = ""
		return cur, nil
	})
	if err != nil {
		return st, err
	}
	c.notify(id, st)
	return st, nil
}

// Reset returns to the input stage, keeping the last input for the form.
func (c *Controller) Reset(id string) State {
	prev := c.Store.Get(id)
	st := Initial()
	st.Input = prev.Input
	c.Store.Put(id, st)
	return st
}

func (c *Controller) fail(id string, in models.BirthInput, cause error) State {
	logger.Named("session").Warnw("calculation failed",
		"session", id, "calendar", in.Calendar, "slot", in.TimeSlot, "err", cause)
	st := Initial()
	st.Input = in
	st.Err = Message(ErrCalculationFailed)
	c.Store.Put(id, st)
	return st
}

func (c *Controller) commit(ctx context.Context, id, owner string, in models.BirthInput, ch *models.Chart) State {
	st := State{
		Stage:        StageResult,
		Input:        in,
		Chart:        ch,
		Annotations:  annotate.ResolveAll(ch),
		FocusIndex:   annotate.LocateStar(ch, annotate.PressureStar),
		FortuneIndex: annotate.LocateStar(ch, annotate.FortuneStar),
		Selected:     annotate.FindPalace(ch, palace.Soul),
	}
	c.Store.Put(id, st)
	logger.Named("session").Infow("chart computed",
		"session", id, "calendar", in.Calendar, "slot", in.TimeSlot, "soul", ch.Soul)

	c.remember(ctx, owner, in, ch)
	c.notify(id, st)
	return st
}

// remember stores prefs and the reading. Failures are logged; the visitor
// still gets the chart.
func (c *Controller) remember(ctx context.Context, owner string, in models.BirthInput, ch *models.Chart) {
	if owner == "" {
		return
	}
	log := logger.Named("session").With("owner", owner)

	if c.Prefs != nil {
		dob := fmt.Sprintf("%04d-%02d-%02d", in.Year, in.Month, in.Day)
		p := prefs.Prefs{DOB: dob, TOB: in.Time, Calendar: prefs.CalendarValue(in.Calendar, in.LeapMonth)}
		if err := c.Prefs.Save(ctx, owner, p); err != nil {
			log.Warnw("save prefs failed", "err", err)
		}
	}

	if c.Readings != nil {
		var soul []string
		if i := annotate.FindPalace(ch, palace.Soul); i >= 0 {
			soul = ch.Palaces[i].MajorNames()
		}
		r := &models.Reading{
			ID:                uuid.NewString(),
			Owner:             owner,
			Input:             in,
			SoulStars:         soul,
			FiveElementsClass: ch.FiveElementsClass,
			CreatedAt:         c.now().UTC(),
		}
		if err := c.Readings.Create(ctx, r); err != nil {
			log.Warnw("save reading failed", "err", err)
		}
	}
}

// normalize checks the date, fills defaults and resolves the time slot. It
// returns the slots to evaluate: one, or both 子-hour candidates.
func (c *Controller) normalize(in models.BirthInput) (models.BirthInput, []int, error) {
	if in.Year == 0 || in.Month == 0 || in.Day == 0 {
		return in, nil, ErrMissingBirthDate
	}
	if in.Calendar == "" {
		in.Calendar = models.CalendarSolar
	}
	if in.Calendar != models.CalendarSolar && in.Calendar != models.CalendarLunar {
		return in, nil, fmt.Errorf("%w: calendar %q", ErrInvalidInput, in.Calendar)
	}
	if in.Gender == "" {
		in.Gender = models.GenderMale
	}
	if in.Gender != models.GenderMale && in.Gender != models.GenderFemale {
		return in, nil, fmt.Errorf("%w: gender %q", ErrInvalidInput, in.Gender)
	}
	if in.Calendar == models.CalendarSolar {
		in.LeapMonth = false
	}

	if o := c.Options; o.MinYear > 0 && o.MaxYear > 0 && (in.Year < o.MinYear || in.Year > o.MaxYear) {
		return in, nil, fmt.Errorf("%w: year %d outside %d–%d", ErrInvalidInput, in.Year, o.MinYear, o.MaxYear)
	}
	if in.Month < 1 || in.Month > 12 {
		return in, nil, fmt.Errorf("%w: month %d", ErrInvalidInput, in.Month)
	}
	if last := timeslot.DaysInMonth(in.Calendar, in.Year, in.Month); in.Day < 1 || in.Day > last {
		return in, nil, fmt.Errorf("%w: day %d", ErrInvalidInput, in.Day)
	}

	if strings.TrimSpace(in.Branch) != "" {
		res, err := timeslot.FromBranch(in.Branch, timeslot.ParseChoice(in.ZiChoice))
		if err != nil {
			return in, nil, fmt.Errorf("%w: %w", ErrInvalidInput, err)
		}
		if res.Ambiguous {
			return in, res.Candidates, nil
		}
		in.TimeSlot = res.Slot
	} else {
		slot, err := timeslot.FromClock(in.Time)
		if err != nil {
			return in, nil, fmt.Errorf("%w: %w", ErrInvalidInput, err)
		}
		if in.Time == "" {
			in.Time = timeslot.DefaultClock
		}
		in.TimeSlot = slot
	}
	in.SlotLabel = timeslot.Label(in.TimeSlot)
	return in, []int{in.TimeSlot}, nil
}
