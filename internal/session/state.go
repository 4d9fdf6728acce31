// Package session owns the per-visitor view state: which stage of the page
// is showing, the computed chart and its annotations, and the selected
// palace. States are values; every transition stores a new one.
package session

import (
	"time"

	"ziwei/internal/chart"
	"ziwei/pkg/models"
)

type Stage string

const (
	StageInput  Stage = "input"
	StageChoose Stage = "choose"
	StageResult Stage = "result"
)

type State struct {
	Stage        Stage
	Input        models.BirthInput
	Chart        *models.Chart
	Annotations  []models.Annotation
	FocusIndex   int
	FortuneIndex int
	Selected     int
	Candidates   []chart.Candidate
	Err          string
	UpdatedAt    time.Time
}

// Initial is the state of a visitor who has not calculated anything.
func Initial() State {
	return State{Stage: StageInput, FocusIndex: -1, FortuneIndex: -1, Selected: -1}
}

// HasChart reports whether a committed chart is present.
func (s State) HasChart() bool {
	return s.Stage == StageResult && s.Chart != nil
}

// CookieName carries the visitor's session id.
const CookieName = "ziwei_sid"
