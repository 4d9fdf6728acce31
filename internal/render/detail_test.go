package render

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ziwei/internal/annotate"
	"ziwei/internal/chart/charttest"
	"ziwei/internal/kb"
)

func detail(t *testing.T, idx int) Panel {
	t.Helper()
	c := charttest.Sample()
	p, err := Detail(c, annotate.ResolveAll(c), kb.Embedded(), idx)
	require.NoError(t, err)
	return p
}

func TestDetailSoulPalace(t *testing.T) {
	p := detail(t, charttest.SoulIndex)

	assert.Equal(t, "命宮", p.Name)
	assert.Equal(t, "命", p.Key)
	assert.Equal(t, "核心人格", p.Scene)
	assert.Equal(t, "庚午", p.StemBranch)
	assert.Equal(t, "胎", p.Changsheng12)
	assert.True(t, p.Nominal)
	assert.Equal(t, 3, p.Prev)
	assert.Equal(t, 5, p.Next)
	require.NotEmpty(t, p.Persona)
	assert.Contains(t, p.Persona[0], "【巨門】天賦：")
	assert.Empty(t, p.Borrow)
	assert.False(t, p.HasHua())
	assert.Empty(t, p.HealthNotes)
	assert.NotEmpty(t, p.Actions)
}

func TestDetailBorrowedPalace(t *testing.T) {
	p := detail(t, charttest.EmptyIndex)

	assert.Empty(t, p.Majors)
	assert.Equal(t, []string{"文昌"}, p.Minors)
	assert.Equal(t, "交友", p.Key)
	assert.Contains(t, p.Borrow, "【兄弟】（#3）")
	assert.Contains(t, p.Borrow, "廉貞、貪狼")

	require.GreaterOrEqual(t, len(p.Persona), 3)
	assert.Contains(t, p.Persona[0], "【廉貞貪狼】")
	assert.Contains(t, p.Persona[1], "【廉貞】")
	assert.Contains(t, p.Persona[2], "【貪狼】")

	assert.Empty(t, p.Natal)
	require.Len(t, p.Annual, 2)
	assert.Contains(t, p.Annual[0], "2026 文昌 化科")
	assert.Contains(t, p.Annual[1], "2026 廉貞 化忌")
	assert.Contains(t, p.Annual[1], "（借對宮）")
}

func TestDetailNatalAndAnnual(t *testing.T) {
	p := detail(t, charttest.PressureIndex)

	require.Len(t, p.Natal, 1)
	assert.Contains(t, p.Natal[0], "本命 廉貞 化祿")
	require.Len(t, p.Annual, 1)
	assert.Contains(t, p.Annual[0], "2026 廉貞 化忌")
	assert.NotContains(t, p.Annual[0], "借")
}

func TestDetailHealthNotes(t *testing.T) {
	p := detail(t, charttest.HealthIndex)
	assert.Len(t, p.HealthNotes, 3)
	assert.Equal(t, 0, p.Next)
	assert.Contains(t, p.Natal[0], "破軍 化權")
}

func TestDetailWrap(t *testing.T) {
	p := detail(t, 0)
	assert.Equal(t, 11, p.Prev)
	assert.Equal(t, 1, p.Next)
}

func TestDetailOutOfRange(t *testing.T) {
	c := charttest.Sample()
	anns := annotate.ResolveAll(c)
	for _, idx := range []int{-1, 12} {
		_, err := Detail(c, anns, kb.Embedded(), idx)
		assert.ErrorIs(t, err, ErrNoPalace)
	}
}

func TestDetailUnknownStarProfile(t *testing.T) {
	c := charttest.Sample()
	c.Palaces[4].MajorStars[0].Name = "未知星"
	p, err := Detail(c, annotate.ResolveAll(c), kb.Embedded(), 4)
	require.NoError(t, err)
	assert.Equal(t, []string{"【未知星】（尚未建立白話）"}, p.Persona)
}

func TestDetailNoMajorsAnywhere(t *testing.T) {
	c := charttest.Sample()
	c.Palaces[3].MajorStars = nil
	p, err := Detail(c, annotate.ResolveAll(c), kb.Embedded(), 9)
	require.NoError(t, err)
	assert.Equal(t, []string{fewMajors}, p.Persona)
	assert.Contains(t, p.Borrow, "對宮亦無主星")
}
