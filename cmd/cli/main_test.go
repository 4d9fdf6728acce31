package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/pterm/pterm"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ziwei/internal/annotate"
	"ziwei/internal/chart"
	"ziwei/internal/chart/charttest"
	"ziwei/internal/export"
	"ziwei/internal/grpcserver"
	"ziwei/internal/kb"
	"ziwei/internal/reading"
	"ziwei/internal/session"
	"ziwei/pkg/database"
	"ziwei/pkg/models"
)

func testApp() *app {
	store := kb.NewStore(kb.Embedded())
	p := chart.Func(func(context.Context, chart.Request) (*models.Chart, error) {
		return charttest.Sample(), nil
	})
	return &app{
		kb:    store,
		svc:   grpcserver.NewServer(p, store, session.Options{}),
		close: func() {},
	}
}

func TestMain(m *testing.M) {
	pterm.DisableColor()
	os.Exit(m.Run())
}

func TestBirthFlagsInput(t *testing.T) {
	in, err := birthFlags{date: "1995/01/01", clock: "12:00", gender: "Female", calendar: "gregorian"}.input()
	require.NoError(t, err)
	assert.Equal(t, 1995, in.Year)
	assert.Equal(t, 1, in.Day)
	assert.Equal(t, models.GenderFemale, in.Gender)

	_, err = birthFlags{calendar: "gregorian"}.input()
	assert.Error(t, err)

	_, err = birthFlags{date: "1995-02-30", calendar: "gregorian"}.input()
	assert.Error(t, err)
}

func TestChartCommand(t *testing.T) {
	cmd := newChartCmd(testApp())
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetArgs([]string{"--date", "1995-01-01", "--time", "12:00", "--months"})
	require.NoError(t, cmd.Execute())

	s := out.String()
	assert.Contains(t, s, "巨門")
	assert.Contains(t, s, "沖線：#3 → #9")
	assert.Contains(t, s, "12 月")
}

func TestChartCommandAmbiguousHour(t *testing.T) {
	cmd := newChartCmd(testApp())
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetArgs([]string{"--date", "1995-01-01", "--branch", "子"})
	require.NoError(t, cmd.Execute())
	assert.Contains(t, out.String(), "--zi early")
}

func TestPalaceCommand(t *testing.T) {
	cmd := newPalaceCmd(testApp())
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs([]string{"9", "--date", "1995-01-01"})
	require.NoError(t, cmd.Execute())
	assert.Contains(t, out.String(), "借對宮")

	cmd = newPalaceCmd(testApp())
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs([]string{"12", "--date", "1995-01-01"})
	assert.Error(t, cmd.Execute())
}

func TestExportThenInspect(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.csv")

	cmd := newExportCmd(testApp())
	cmd.SetArgs([]string{"--date", "1995-01-01", "--out", path})
	require.NoError(t, cmd.Execute())

	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(raw, []byte(export.BOM)))

	inspect := newInspectCmd()
	var out bytes.Buffer
	inspect.SetOut(&out)
	inspect.SetArgs([]string{path})
	require.NoError(t, inspect.Execute())
	assert.Contains(t, out.String(), "流年化忌宮位")
	assert.Contains(t, out.String(), annotate.PressureStar)
}

func TestReadingsCommand(t *testing.T) {
	a := testApp()
	a.cfg.DB.Path = filepath.Join(t.TempDir(), "cli.db")

	db, err := database.Open(database.Config{Path: a.cfg.DB.Path})
	require.NoError(t, err)
	require.NoError(t, database.Migrate(db))
	repo := reading.NewRepo(db)
	require.NoError(t, repo.Create(context.Background(), &models.Reading{
		ID:                "r1",
		Owner:             "alice",
		Input:             models.BirthInput{Year: 1995, Month: 1, Day: 1, SlotLabel: "午時", Gender: models.GenderMale, Calendar: models.CalendarSolar},
		SoulStars:         []string{"巨門"},
		FiveElementsClass: "水二局",
	}))
	require.NoError(t, db.Close())

	cmd := newReadingsCmd(a)
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetArgs([]string{"--owner", "alice"})
	require.NoError(t, cmd.Execute())
	assert.Contains(t, out.String(), "1995-01-01")
	assert.Contains(t, out.String(), "1 of 1")

	path := filepath.Join(t.TempDir(), "readings.csv")
	cmd = newReadingsCmd(a)
	cmd.SetArgs([]string{"--owner", "alice", "--csv", path})
	require.NoError(t, cmd.Execute())
	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(raw), "r1,")
	assert.Contains(t, string(raw), "巨門")
}
