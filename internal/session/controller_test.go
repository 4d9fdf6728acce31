package session

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ziwei/internal/chart"
	"ziwei/internal/chart/charttest"
	"ziwei/internal/prefs"
	"ziwei/pkg/models"
)

type fakePrefs struct {
	mu    sync.Mutex
	saved map[string]prefs.Prefs
	err   error
}

func (f *fakePrefs) Save(_ context.Context, owner string, p prefs.Prefs) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.saved == nil {
		f.saved = map[string]prefs.Prefs{}
	}
	f.saved[owner] = p
	return f.err
}

type fakeReadings struct {
	got []*models.Reading
}

func (f *fakeReadings) Create(_ context.Context, r *models.Reading) error {
	f.got = append(f.got, r)
	return nil
}

type harness struct {
	ctl      *Controller
	requests []chart.Request
	prefs    *fakePrefs
	readings *fakeReadings
	fail     error
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	h := &harness{prefs: &fakePrefs{}, readings: &fakeReadings{}}
	p := chart.Func(func(_ context.Context, req chart.Request) (*models.Chart, error) {
		h.requests = append(h.requests, req)
		if h.fail != nil {
			return nil, h.fail
		}
		return charttest.Sample(), nil
	})
	h.ctl = NewController(p, NewStore(), Options{FixLeap: true, MinYear: 1930, MaxYear: 2026})
	h.ctl.Prefs = h.prefs
	h.ctl.Readings = h.readings
	return h
}

func sampleInput() models.BirthInput {
	return models.BirthInput{Year: 1995, Month: 1, Day: 1, Time: "12:00", Gender: models.GenderMale, Calendar: models.CalendarSolar}
}

func TestCalculateExampleScenario(t *testing.T) {
	h := newHarness(t)

	st, err := h.ctl.Calculate(context.Background(), "s1", "owner-1", sampleInput())
	require.NoError(t, err)

	require.Len(t, h.requests, 1)
	req := h.requests[0]
	assert.Equal(t, 6, req.TimeSlot)
	assert.Equal(t, "男", req.Gender)
	assert.Equal(t, "zh-TW", req.Locale)
	assert.True(t, req.FixLeap)
	assert.Equal(t, "1995-1-1", req.Date())

	assert.Equal(t, StageResult, st.Stage)
	assert.True(t, st.HasChart())
	assert.Len(t, st.Annotations, 12)
	assert.Equal(t, charttest.SoulIndex, st.Selected)
	assert.Equal(t, charttest.PressureIndex, st.FocusIndex)
	assert.Equal(t, charttest.FortuneIndex, st.FortuneIndex)
	assert.Equal(t, "午時 11:00–12:59", st.Input.SlotLabel)
	assert.Empty(t, st.Err)

	assert.Equal(t, prefs.Prefs{DOB: "1995-01-01", TOB: "12:00", Calendar: "gregorian"}, h.prefs.saved["owner-1"])
	require.Len(t, h.readings.got, 1)
	assert.Equal(t, []string{"巨門"}, h.readings.got[0].SoulStars)
	assert.Equal(t, "土五局", h.readings.got[0].FiveElementsClass)
	assert.NotEmpty(t, h.readings.got[0].ID)

	assert.Equal(t, st.Stage, h.ctl.State("s1").Stage)
}

func TestCalculateDefaultsClock(t *testing.T) {
	h := newHarness(t)
	in := sampleInput()
	in.Time = ""

	st, err := h.ctl.Calculate(context.Background(), "s1", "", in)
	require.NoError(t, err)
	assert.Equal(t, 6, h.requests[0].TimeSlot)
	assert.Equal(t, "12:00", st.Input.Time)
	assert.Empty(t, h.prefs.saved, "no owner, nothing remembered")
}

func TestCalculateMissingDateKeepsState(t *testing.T) {
	h := newHarness(t)
	_, err := h.ctl.Calculate(context.Background(), "s1", "o", sampleInput())
	require.NoError(t, err)

	in := sampleInput()
	in.Day = 0
	st, err := h.ctl.Calculate(context.Background(), "s1", "o", in)
	require.ErrorIs(t, err, ErrMissingBirthDate)
	assert.Equal(t, StageResult, st.Stage)
	assert.Equal(t, StageResult, h.ctl.State("s1").Stage)
	assert.Len(t, h.requests, 1)

	_, err = h.ctl.Calculate(context.Background(), "fresh", "o", models.BirthInput{})
	require.ErrorIs(t, err, ErrMissingBirthDate)
	assert.Equal(t, 1, h.ctl.Store.Len())
}

func TestCalculateInvalidInput(t *testing.T) {
	cases := map[string]func(in *models.BirthInput){
		"year too early": func(in *models.BirthInput) { in.Year = 1800 },
		"month":          func(in *models.BirthInput) { in.Month = 13 },
		"feb 30":         func(in *models.BirthInput) { in.Month, in.Day = 2, 30 },
		"clock":          func(in *models.BirthInput) { in.Time = "ab:00" },
		"branch":         func(in *models.BirthInput) { in.Branch = "X" },
		"calendar":       func(in *models.BirthInput) { in.Calendar = "julian" },
		"gender":         func(in *models.BirthInput) { in.Gender = "other" },
	}
	for name, mutate := range cases {
		t.Run(name, func(t *testing.T) {
			h := newHarness(t)
			in := sampleInput()
			mutate(&in)
			_, err := h.ctl.Calculate(context.Background(), "s1", "", in)
			assert.ErrorIs(t, err, ErrInvalidInput)
			assert.Empty(t, h.requests)
		})
	}
}

func TestCalculateLunarLeap(t *testing.T) {
	h := newHarness(t)
	in := sampleInput()
	in.Calendar = models.CalendarLunar
	in.LeapMonth = true
	in.Day = 30

	_, err := h.ctl.Calculate(context.Background(), "s1", "o", in)
	require.NoError(t, err)
	assert.True(t, h.requests[0].LeapMonth)
	assert.Equal(t, models.CalendarLunar, h.requests[0].Calendar)
	assert.Equal(t, "lunar+leap", h.prefs.saved["o"].Calendar)
}

func TestCalculateProviderFailure(t *testing.T) {
	h := newHarness(t)
	_, err := h.ctl.Calculate(context.Background(), "s1", "o", sampleInput())
	require.NoError(t, err)

	boom := errors.New("iztro exploded")
	h.fail = boom
	st, err := h.ctl.Calculate(context.Background(), "s1", "o", sampleInput())
	require.ErrorIs(t, err, ErrCalculationFailed)
	assert.ErrorIs(t, err, boom)

	assert.Equal(t, StageInput, st.Stage)
	assert.Nil(t, st.Chart)
	assert.Equal(t, -1, st.Selected)
	assert.Equal(t, "演算失敗：請確認輸入資料是否正確，或切換『曆法』重算。", st.Err)
	assert.Equal(t, 1995, st.Input.Year)
	assert.Equal(t, StageInput, h.ctl.State("s1").Stage)
	assert.Len(t, h.readings.got, 1)
}

func TestCalculateInvalidChart(t *testing.T) {
	h := newHarness(t)
	h.ctl.Provider = chart.Func(func(context.Context, chart.Request) (*models.Chart, error) {
		c := charttest.Sample()
		c.Palaces = c.Palaces[:6]
		return c, nil
	})

	_, err := h.ctl.Calculate(context.Background(), "s1", "", sampleInput())
	assert.ErrorIs(t, err, ErrCalculationFailed)
	assert.ErrorIs(t, err, chart.ErrInvalidChart)
}

func TestAmbiguousZiHour(t *testing.T) {
	h := newHarness(t)
	in := sampleInput()
	in.Time = ""
	in.Branch = "子"

	st, err := h.ctl.Calculate(context.Background(), "s1", "o", in)
	require.NoError(t, err)
	assert.Equal(t, StageChoose, st.Stage)
	require.Len(t, st.Candidates, 2)
	assert.Equal(t, 0, st.Candidates[0].Slot)
	assert.Equal(t, 12, st.Candidates[1].Slot)
	require.Len(t, h.requests, 2)
	assert.Empty(t, h.readings.got)

	_, err = h.ctl.Choose(context.Background(), "s1", "o", 5)
	assert.ErrorIs(t, err, ErrInvalidInput)

	st, err = h.ctl.Choose(context.Background(), "s1", "o", 12)
	require.NoError(t, err)
	assert.Equal(t, StageResult, st.Stage)
	assert.Equal(t, 12, st.Input.TimeSlot)
	assert.Equal(t, "晚子時 23:00–23:59", st.Input.SlotLabel)
	assert.Len(t, h.readings.got, 1)

	_, err = h.ctl.Choose(context.Background(), "s1", "o", 12)
	assert.ErrorIs(t, err, ErrNotChoosing)
}

func TestExplicitZiChoice(t *testing.T) {
	h := newHarness(t)
	in := sampleInput()
	in.Branch = "子"
	in.ZiChoice = "early"

	st, err := h.ctl.Calculate(context.Background(), "s1", "", in)
	require.NoError(t, err)
	assert.Equal(t, StageResult, st.Stage)
	assert.Equal(t, 0, h.requests[0].TimeSlot)
}

func TestAmbiguousFailureResets(t *testing.T) {
	h := newHarness(t)
	h.fail = chart.ErrEngine
	in := sampleInput()
	in.Branch = "子時"

	st, err := h.ctl.Calculate(context.Background(), "s1", "", in)
	assert.ErrorIs(t, err, ErrCalculationFailed)
	assert.Equal(t, StageInput, st.Stage)
	assert.Empty(t, st.Candidates)
}

func TestSelection(t *testing.T) {
	h := newHarness(t)
	var notified []int
	h.ctl.Subscribe(func(id string, st State) {
		assert.Equal(t, "s1", id)
		notified = append(notified, st.Selected)
	})

	_, err := h.ctl.Select("s1", 3)
	require.ErrorIs(t, err, ErrNoChart)

	_, err = h.ctl.Calculate(context.Background(), "s1", "", sampleInput())
	require.NoError(t, err)

	st, err := h.ctl.Select("s1", 11)
	require.NoError(t, err)
	assert.Equal(t, 11, st.Selected)

	st, err = h.ctl.Next("s1")
	require.NoError(t, err)
	assert.Equal(t, 0, st.Selected)

	st, err = h.ctl.Prev("s1")
	require.NoError(t, err)
	assert.Equal(t, 11, st.Selected)

	_, err = h.ctl.Select("s1", 12)
	assert.ErrorIs(t, err, ErrInvalidInput)
	assert.Equal(t, 11, h.ctl.State("s1").Selected)

	assert.Equal(t, []int{charttest.SoulIndex, 11, 0, 11}, notified)
}

func TestNextPrevWithoutSelection(t *testing.T) {
	h := newHarness(t)
	h.ctl.Store.Put("s1", State{Stage: StageResult, Chart: charttest.Sample(), Selected: -1})

	st, err := h.ctl.Next("s1")
	require.NoError(t, err)
	assert.Equal(t, 0, st.Selected)

	h.ctl.Store.Put("s2", State{Stage: StageResult, Chart: charttest.Sample(), Selected: -1})
	st, err = h.ctl.Prev("s2")
	require.NoError(t, err)
	assert.Equal(t, 11, st.Selected)
}

func TestReset(t *testing.T) {
	h := newHarness(t)
	_, err := h.ctl.Calculate(context.Background(), "s1", "", sampleInput())
	require.NoError(t, err)

	st := h.ctl.Reset("s1")
	assert.Equal(t, StageInput, st.Stage)
	assert.Nil(t, st.Chart)
	assert.Equal(t, -1, st.Selected)
	assert.Equal(t, 1995, st.Input.Year)
	assert.False(t, h.ctl.State("s1").HasChart())
}

func TestRememberFailureDoesNotFail(t *testing.T) {
	h := newHarness(t)
	h.prefs.err = errors.New("disk full")
	st, err := h.ctl.Calculate(context.Background(), "s1", "o", sampleInput())
	require.NoError(t, err)
	assert.Equal(t, StageResult, st.Stage)
}
