package timeslot

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIndex_AllHours(t *testing.T) {
	for h := 0; h <= 23; h++ {
		slot, err := Index(h)
		require.NoError(t, err)

		switch h {
		case 0:
			assert.Equal(t, 0, slot)
		case 23:
			assert.Equal(t, 12, slot)
		default:
			assert.Equal(t, (h+1)/2, slot, "hour %d", h)
			assert.NotEqual(t, 0, slot)
			assert.NotEqual(t, 12, slot)
		}
		assert.True(t, Valid(slot))
	}
}

func TestIndex_OutOfRange(t *testing.T) {
	for _, h := range []int{-1, 24, 99} {
		_, err := Index(h)
		assert.ErrorIs(t, err, ErrHourOutOfRange)
	}
}

func TestFromClock(t *testing.T) {
	tests := []struct {
		in   string
		want int
	}{
		{"", 6},
		{"12:00", 6},
		{"00:30", 0},
		{"23:59", 12},
		{"01:00", 1},
		{"02:59", 1},
		{"22:10", 11},
		{"7", 4},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := FromClock(tt.in)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}

	_, err := FromClock("noon")
	assert.ErrorIs(t, err, ErrBadClock)
	_, err = FromClock("25:00")
	assert.ErrorIs(t, err, ErrHourOutOfRange)
}

func TestFromBranch(t *testing.T) {
	res, err := FromBranch("午", Unspecified)
	require.NoError(t, err)
	assert.Equal(t, Result{Slot: 6}, res)

	res, err = FromBranch("亥時", Late)
	require.NoError(t, err)
	assert.Equal(t, 11, res.Slot)
	assert.False(t, res.Ambiguous)

	res, err = FromBranch("子", Early)
	require.NoError(t, err)
	assert.Equal(t, Result{Slot: 0}, res)

	res, err = FromBranch("子時", Late)
	require.NoError(t, err)
	assert.Equal(t, Result{Slot: 12}, res)

	res, err = FromBranch("晚子", Unspecified)
	require.NoError(t, err)
	assert.Equal(t, 12, res.Slot)

	_, err = FromBranch("午夜", Unspecified)
	assert.ErrorIs(t, err, ErrUnknownBranch)
}

func TestFromBranch_ZiIsAmbiguousWithoutChoice(t *testing.T) {
	res, err := FromBranch("子", Unspecified)
	require.NoError(t, err)
	assert.True(t, res.Ambiguous)
	assert.Equal(t, []int{EarlyZi, LateZi}, res.Candidates)
}

func TestParseChoice(t *testing.T) {
	assert.Equal(t, Early, ParseChoice("early"))
	assert.Equal(t, Early, ParseChoice(" 早子 "))
	assert.Equal(t, Late, ParseChoice("LATE"))
	assert.Equal(t, Late, ParseChoice("夜子"))
	assert.Equal(t, Unspecified, ParseChoice(""))
	assert.Equal(t, Unspecified, ParseChoice("both"))
}

func TestLabel(t *testing.T) {
	assert.Contains(t, Label(0), "早子")
	assert.Contains(t, Label(12), "晚子")
	assert.Contains(t, Label(6), "午")
	assert.Empty(t, Label(13))
	assert.Empty(t, Label(-1))
}

func TestBranchesReturnsCopy(t *testing.T) {
	b := Branches()
	require.Len(t, b, 12)
	b[0] = "x"
	assert.Equal(t, "子", Branches()[0])
}
