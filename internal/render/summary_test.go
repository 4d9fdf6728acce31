package render

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ziwei/internal/annotate"
	"ziwei/internal/chart/charttest"
	"ziwei/internal/kb"
)

func TestProfile(t *testing.T) {
	p := Profile(charttest.Sample(), kb.Embedded())

	assert.Equal(t, "巨門", p.Soul)
	assert.Equal(t, "天同、天梁", p.Spirit)
	assert.Equal(t, "紫微、破軍", p.Health)
	assert.Equal(t, "太陰", p.Spouse)
	assert.Equal(t, "（無）", p.Friends)
	assert.NotEmpty(t, p.ReadingOrder)
}

func TestAphorism(t *testing.T) {
	a := Aphorism(charttest.Sample(), kb.Embedded())

	assert.Equal(t, "兄弟", a.PressureName)
	assert.Equal(t, "福德", a.FortuneName)
	assert.Contains(t, a.Text, "落入你的【兄弟】")
	assert.Contains(t, a.Text, "進入【福德】")
	assert.NotContains(t, a.Text, "{{")
}

func TestAphorismUnlocated(t *testing.T) {
	c := charttest.Sample()
	c.Palaces[3].MajorStars = c.Palaces[3].MajorStars[1:]
	c.Palaces[6].MajorStars = c.Palaces[6].MajorStars[1:]

	a := Aphorism(c, kb.Embedded())
	assert.Equal(t, -1, a.PressureIndex)
	assert.Equal(t, -1, a.FortuneIndex)
	assert.Contains(t, a.Text, "【（未定位）】")
}

func TestMonths(t *testing.T) {
	ms := Months(kb.Embedded(), "福德", "兄弟")
	require.Len(t, ms, 12)

	assert.Equal(t, "1 月", ms[0].Label)
	assert.Equal(t, "（壓力點：兄弟）", ms[0].Focus)
	assert.Equal(t, "（機會點：福德）", ms[1].Focus)
	assert.Equal(t, "crimson", ms[0].Color)
	assert.Equal(t, "gold", ms[1].Color)
	assert.Contains(t, ms[0].Task(), "年度過渡期：")
	for i, m := range ms {
		assert.Equal(t, i+1, m.Month)
	}
}

func TestBuildResult(t *testing.T) {
	c := charttest.Sample()
	anns := annotate.ResolveAll(c)

	r, err := BuildResult(c, anns, kb.Embedded(), charttest.SoulIndex)
	require.NoError(t, err)
	require.NotNil(t, r.Clash)
	assert.Equal(t, 9, r.Clash.To)
	require.NotNil(t, r.Panel)
	assert.Equal(t, charttest.SoulIndex, r.Grid.Selected)
	assert.Equal(t, "土五局", r.Bureau)
	assert.Equal(t, "甲戌 丙子 丙辰 甲午 生 / 命主 破軍", r.Destiny)
	assert.Equal(t, 2026, r.Year)

	again, err := BuildResult(c, anns, kb.Embedded(), charttest.SoulIndex)
	require.NoError(t, err)
	assert.Equal(t, r, again)

	none, err := BuildResult(c, anns, kb.Embedded(), -1)
	require.NoError(t, err)
	assert.Nil(t, none.Panel)
}
