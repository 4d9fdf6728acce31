package render

import (
	"fmt"

	"ziwei/internal/kb"
	"ziwei/internal/timeslot"
	"ziwei/pkg/models"
)

// Stage names which part of the page is visible.
const (
	StageInput  = "input"
	StageChoose = "choose"
	StageResult = "result"
)

// Page is everything the layout template needs.
type Page struct {
	Title      string
	Stage      string
	Error      string
	SessionID  string
	Form       Form
	Result     *Result
	Candidates []CandidateView
}

// Form carries the current field values and dropdown options.
type Form struct {
	Calendar  string
	Year      int
	Month     int
	Day       int
	LeapMonth bool
	Time      string
	Branch    string
	ZiChoice  string
	Gender    string

	Years    []int
	Months   []int
	Days     []int
	Branches []string
}

// NewForm fills the form from the last input, clamping the day to the
// selected month.
func NewForm(in models.BirthInput, minYear, maxYear int) Form {
	cal := in.Calendar
	if cal == "" {
		cal = models.CalendarSolar
	}
	gender := in.Gender
	if gender == "" {
		gender = models.GenderMale
	}
	f := Form{
		Calendar:  string(cal),
		Year:      in.Year,
		Month:     in.Month,
		Day:       in.Day,
		LeapMonth: in.LeapMonth,
		Time:      in.Time,
		Branch:    in.Branch,
		ZiChoice:  in.ZiChoice,
		Gender:    string(gender),
		Years:     timeslot.Years(minYear, maxYear),
		Months:    timeslot.Months(),
		Branches:  timeslot.Branches(),
	}
	if f.Time == "" && f.Branch == "" {
		f.Time = timeslot.DefaultClock
	}
	if f.Year > 0 && f.Month > 0 {
		f.Days = timeslot.Days(cal, f.Year, f.Month)
		if f.Day > 0 {
			f.Day = timeslot.ClampDay(cal, f.Year, f.Month, f.Day)
		}
	} else {
		f.Days = timeslot.Days(cal, 2000, 1)
	}
	return f
}

// CandidateView is one side of an ambiguous 子-hour choice.
type CandidateView struct {
	Slot    int
	Label   string
	Soul    string
	Bureau  string
	Profile ProfileView
}

func Candidate(slot int, c *models.Chart, base *kb.Base) CandidateView {
	return CandidateView{
		Slot:    slot,
		Label:   timeslot.Label(slot),
		Soul:    c.Soul,
		Bureau:  c.FiveElementsClass,
		Profile: Profile(c, base),
	}
}

// Result is the rendered chart page.
type Result struct {
	Grid     Grid         `json:"grid"`
	Clash    *Line        `json:"clash,omitempty"`
	Panel    *Panel       `json:"panel,omitempty"`
	Profile  ProfileView  `json:"profile"`
	Aphorism AphorismView `json:"aphorism"`
	Months   []MonthView  `json:"months"`
	Bureau   string       `json:"bureau"`
	Destiny  string       `json:"destiny"`
	Year     int          `json:"year"`
}

// BuildResult assembles the result view. selected < 0 renders no panel.
func BuildResult(c *models.Chart, anns []models.Annotation, base *kb.Base, selected int) (*Result, error) {
	g := BuildGrid(c, anns)
	g.Selected = selected
	aph := Aphorism(c, base)
	r := &Result{
		Grid:     g,
		Profile:  Profile(c, base),
		Aphorism: aph,
		Months:   Months(base, aph.FortuneName, aph.PressureName),
		Bureau:   c.FiveElementsClass,
		Destiny:  fmt.Sprintf("%s 生 / 命主 %s", c.ChineseDate, c.Soul),
		Year:     base.Year.Number,
	}
	if line, ok := ClashLine(g, g.Pressure); ok {
		r.Clash = &line
	}
	if selected >= 0 {
		p, err := Detail(c, anns, base, selected)
		if err != nil {
			return nil, err
		}
		r.Panel = &p
	}
	return r, nil
}
