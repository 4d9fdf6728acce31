package render

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ziwei/internal/annotate"
	"ziwei/internal/chart/charttest"
)

func sampleGrid(t *testing.T) Grid {
	t.Helper()
	c := charttest.Sample()
	return BuildGrid(c, annotate.ResolveAll(c))
}

func TestBuildGridPositions(t *testing.T) {
	g := sampleGrid(t)
	require.Len(t, g.Cells, 12)

	seen := map[[2]int]bool{}
	for _, cell := range g.Cells {
		pos := [2]int{cell.Row, cell.Col}
		assert.False(t, seen[pos], "cell %d overlaps", cell.Index)
		seen[pos] = true

		inCentre := cell.Row >= 1 && cell.Row <= 2 && cell.Col >= 1 && cell.Col <= 2
		assert.False(t, inCentre, "cell %d in centre", cell.Index)
		assert.True(t, cell.Row >= 0 && cell.Row < 4 && cell.Col >= 0 && cell.Col < 4)
	}

	assert.Equal(t, [2]int{0, 0}, [2]int{g.Cells[3].Row, g.Cells[3].Col}, "巳 top-left")
	assert.Equal(t, [2]int{0, 1}, [2]int{g.Cells[4].Row, g.Cells[4].Col}, "午")
	assert.Equal(t, [2]int{3, 0}, [2]int{g.Cells[0].Row, g.Cells[0].Col}, "寅 bottom-left")
	assert.Equal(t, [2]int{3, 3}, [2]int{g.Cells[9].Row, g.Cells[9].Col}, "亥 bottom-right")
}

func TestBuildGridFlags(t *testing.T) {
	g := sampleGrid(t)

	assert.Equal(t, charttest.SoulIndex, g.Nominal)
	nominal := 0
	for _, cell := range g.Cells {
		if cell.Nominal {
			nominal++
		}
	}
	assert.Equal(t, 1, nominal)

	assert.Equal(t, charttest.PressureIndex, g.Pressure)
	assert.Equal(t, charttest.FortuneIndex, g.Fortune)
	assert.Equal(t, -1, g.Selected)

	assert.Equal(t, []string{"忌"}, g.Cells[3].Hua)
	assert.Equal(t, []string{"科", "忌"}, g.Cells[9].Hua)
	assert.True(t, g.Cells[9].Borrowed)
	assert.Equal(t, []string{"祿"}, g.Cells[0].Hua)
	assert.True(t, g.Cells[0].Has("祿"))
	assert.False(t, g.Cells[0].Has("忌"))
	assert.Empty(t, g.Cells[4].Hua)
	assert.True(t, g.Cells[8].Body)

	lz := g.Cells[3].Majors[0]
	assert.Equal(t, StarTag{Name: "廉貞", Natal: "祿", Annual: "忌"}, lz)
	assert.Equal(t, []string{"鈴星"}, g.Cells[3].Minors)
}

func TestClashLine(t *testing.T) {
	g := sampleGrid(t)

	line, ok := ClashLine(g, g.Pressure)
	require.True(t, ok)
	assert.Equal(t, Line{From: 3, To: 9, X1: 50, Y1: 50, X2: 350, Y2: 350}, line)

	for _, v := range []int{line.X1, line.Y1, line.X2, line.Y2} {
		assert.True(t, v >= 0 && v <= GridSize)
	}

	_, ok = ClashLine(g, -1)
	assert.False(t, ok)
	_, ok = ClashLine(Grid{}, 3)
	assert.False(t, ok)
}

func TestClashLineEndpointsAreCellCentres(t *testing.T) {
	g := sampleGrid(t)
	for i := range g.Cells {
		line, ok := ClashLine(g, i)
		require.True(t, ok)
		assert.Equal(t, g.Cells[i].CX(), line.X1)
		assert.Equal(t, g.Cells[i].CY(), line.Y1)
		assert.Equal(t, g.Cells[(i+6)%12].CX(), line.X2)
	}
}
