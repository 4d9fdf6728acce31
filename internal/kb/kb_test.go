package kb

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ziwei/internal/palace"
)

func TestEmbedded(t *testing.T) {
	b := Embedded()

	assert.Equal(t, 2026, b.Year.Number)
	assert.Equal(t, "丙午", b.Year.Label)

	for _, k := range palace.Keys() {
		e, ok := b.Palace(k)
		require.True(t, ok, k.String())
		assert.NotEmpty(t, e.Scene, k.String())
		assert.NotEmpty(t, e.Description, k.String())
		assert.NotEmpty(t, e.Actions, k.String())
	}

	for _, kind := range Kinds {
		tr, ok := b.Transformation(kind)
		require.True(t, ok)
		assert.NotEmpty(t, tr.Life)
	}

	for n := 1; n <= 12; n++ {
		m, ok := b.Month(n)
		require.True(t, ok)
		assert.Equal(t, n, m.Month)
		assert.Contains(t, []string{"lu", "ji"}, m.Focus)
		assert.NotEmpty(t, m.Color)
	}
	_, ok := b.Month(13)
	assert.False(t, ok)

	assert.NotEmpty(t, b.HealthNotes)
}

func TestPersonas(t *testing.T) {
	b := Embedded()

	p, ok := b.Persona("紫微")
	require.True(t, ok)
	assert.Equal(t, "【紫微】天賦：主心骨、格局感｜陰影：容易背太多、控制/責任過頭｜需要：信任與授權｜練習：把『我扛』改成『我帶』", p.Line("紫微"))

	combo, ok := b.Persona("紫微天府")
	require.True(t, ok)
	assert.True(t, strings.HasPrefix(combo.Line("紫微天府"), "【紫微天府】君臣同宮"))

	_, ok = b.Persona("天府紫微")
	assert.False(t, ok, "only one canonical order is stored")
}

func TestFill(t *testing.T) {
	got := Fill("忌在【{{ji}}】，祿在【{{lu}}】", "財帛", "疾厄")
	assert.Equal(t, "忌在【疾厄】，祿在【財帛】", got)
}

func TestParse_Errors(t *testing.T) {
	_, err := Parse([]byte("palaces: ["))
	assert.ErrorContains(t, err, "decode kb")

	_, err = Parse([]byte("palaces:\n  命:\n    scene: x\n"))
	assert.ErrorContains(t, err, "missing palaces")

	_, err = Parse([]byte("palaces:\n  無名:\n    scene: x\n"))
	assert.ErrorContains(t, err, "unknown palace")

	doc := strings.Replace(string(embedded), "  忌:\n    tone: 卡", "  X:\n    tone: 卡", 1)
	_, err = Parse([]byte(doc))
	assert.ErrorContains(t, err, "missing transformation 忌")

	doc = strings.Replace(string(embedded), "  - month: 12\n", "  - month: 13\n", 1)
	_, err = Parse([]byte(doc))
	assert.ErrorContains(t, err, "out of order")
}

func TestParse_AliasedPalaceNames(t *testing.T) {
	doc := strings.Replace(string(embedded), "\n  交友:\n", "\n  僕役宮:\n", 1)
	b, err := Parse([]byte(doc))
	require.NoError(t, err)
	e, ok := b.Palace(palace.Friends)
	require.True(t, ok)
	assert.Equal(t, "人際與支持", e.Scene)
}
