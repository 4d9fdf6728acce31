// Package charttest provides a fixed natal chart for tests across packages.
//
// The sample is the chart for 1995-01-01 at 12:00 (male, solar calendar):
// 命宮 at index 4 (午), 廉貞 at index 3 (巳), and indices 0 and 9 without
// major stars.
package charttest

import (
	_ "embed"
	"encoding/json"
	"fmt"

	"ziwei/pkg/models"
)

//go:embed sample_1995.json
var sampleJSON []byte

// SampleJSON returns the raw fixture as the chart engine would emit it.
func SampleJSON() []byte {
	return append([]byte(nil), sampleJSON...)
}

// Sample returns a fresh copy of the fixture chart.
func Sample() *models.Chart {
	var c models.Chart
	if err := json.Unmarshal(sampleJSON, &c); err != nil {
		panic(fmt.Sprintf("charttest: bad fixture: %v", err))
	}
	return &c
}

// Indices of interest in Sample.
const (
	SoulIndex     = 4
	PressureIndex = 3
	FortuneIndex  = 6
	EmptyIndex    = 9
	EmptyIndex2   = 0
	HealthIndex   = 11
)
