package chart

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ziwei/internal/chart/charttest"
	"ziwei/pkg/models"
)

func TestFixtureName(t *testing.T) {
	assert.Equal(t, "gregorian_1995-01-01_06_male.json",
		FixtureName(Request{Year: 1995, Month: 1, Day: 1, TimeSlot: 6, Gender: "男"}))
	assert.Equal(t, "lunar_1994-L08-15_12_female.json",
		FixtureName(Request{Calendar: models.CalendarLunar, Year: 1994, Month: 8, Day: 15, LeapMonth: true, TimeSlot: 12, Gender: "女"}))
	assert.Equal(t, "gregorian_1994-08-15_00_male.json",
		FixtureName(Request{Calendar: models.CalendarSolar, Year: 1994, Month: 8, Day: 15, LeapMonth: true, Gender: "男"}))
}

func TestFileProvider(t *testing.T) {
	dir := t.TempDir()
	req := Request{Year: 1995, Month: 1, Day: 1, TimeSlot: 6, Gender: "男"}
	require.NoError(t, os.WriteFile(filepath.Join(dir, FixtureName(req)), charttest.SampleJSON(), 0o644))

	p := &FileProvider{Dir: dir}
	c, err := Compute(context.Background(), p, req)
	require.NoError(t, err)
	assert.Equal(t, "午", c.SoulBranch)

	_, err = p.ByLunar(context.Background(), req)
	assert.ErrorIs(t, err, ErrEngine)
}

func TestFileProviderFallback(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "default.json"), charttest.SampleJSON(), 0o644))

	p := &FileProvider{Dir: dir, Fallback: "default.json"}
	c, err := p.ByLunar(context.Background(), Request{Year: 2001, Month: 3, Day: 3, TimeSlot: 3})
	require.NoError(t, err)
	assert.Len(t, c.Palaces, 12)
}

func TestFileProviderBadJSON(t *testing.T) {
	dir := t.TempDir()
	req := Request{Year: 1995, Month: 1, Day: 1, TimeSlot: 6}
	require.NoError(t, os.WriteFile(filepath.Join(dir, FixtureName(req)), []byte("{"), 0o644))

	_, err := (&FileProvider{Dir: dir}).BySolar(context.Background(), req)
	assert.ErrorIs(t, err, ErrInvalidChart)
}
