package chart

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ziwei/internal/chart/charttest"
	"ziwei/pkg/models"
)

func TestValidateSample(t *testing.T) {
	require.NoError(t, Validate(charttest.Sample()))
}

func TestValidateRejects(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(c *models.Chart)
		want   string
	}{
		{"nil palaces", func(c *models.Chart) { c.Palaces = nil }, "want 12 palaces, got 0"},
		{"eleven palaces", func(c *models.Chart) { c.Palaces = c.Palaces[:11] }, "got 11"},
		{"unknown branch", func(c *models.Chart) { c.Palaces[2].EarthlyBranch = "X" }, "unknown branch"},
		{"duplicate branch", func(c *models.Chart) { c.Palaces[2].EarthlyBranch = c.Palaces[3].EarthlyBranch }, "share branch"},
		{"unknown stem", func(c *models.Chart) { c.Palaces[5].HeavenlyStem = "" }, "unknown stem"},
		{"unnamed palace", func(c *models.Chart) { c.Palaces[1].Name = " " }, "has no name"},
		{"bad mutagen", func(c *models.Chart) { c.Palaces[3].MajorStars[0].Mutagen = "X" }, "unknown mutagen"},
		{"unnamed star", func(c *models.Chart) { c.Palaces[1].MajorStars[0].Name = "" }, "unnamed major star"},
		{"soul branch", func(c *models.Chart) { c.SoulBranch = "" }, "soul branch"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			c := charttest.Sample()
			tc.mutate(c)
			err := Validate(c)
			require.ErrorIs(t, err, ErrInvalidChart)
			assert.Contains(t, err.Error(), tc.want)
		})
	}
}

func TestValidateNil(t *testing.T) {
	assert.ErrorIs(t, Validate(nil), ErrInvalidChart)
}
