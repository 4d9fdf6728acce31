package timeslot

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"ziwei/pkg/models"
)

// LunarMaxDays is the longest a lunar month can be. Whether a given lunar
// month has 29 or 30 days is left for the chart engine to reject.
const LunarMaxDays = 30

// DaysInMonth returns the number of selectable days for a month.
func DaysInMonth(cal models.Calendar, year, month int) int {
	if month < 1 || month > 12 {
		return 0
	}
	if cal == models.CalendarLunar {
		return LunarMaxDays
	}
	return time.Date(year, time.Month(month)+1, 0, 0, 0, 0, 0, time.UTC).Day()
}

// ClampDay keeps a previously selected day inside the month after the year
// or month dropdown changed.
func ClampDay(cal models.Calendar, year, month, day int) int {
	last := DaysInMonth(cal, year, month)
	switch {
	case day < 1:
		return 1
	case day > last:
		return last
	default:
		return day
	}
}

// Years lists selectable years, newest first.
func Years(from, to int) []int {
	if from > to {
		return nil
	}
	out := make([]int, 0, to-from+1)
	for y := to; y >= from; y-- {
		out = append(out, y)
	}
	return out
}

func Months() []int {
	return seq(12)
}

func Days(cal models.Calendar, year, month int) []int {
	return seq(DaysInMonth(cal, year, month))
}

func seq(n int) []int {
	out := make([]int, n)
	for i := range out {
		out[i] = i + 1
	}
	return out
}

// ParseDate splits "YYYY-MM-DD" (also accepting "/" separators) and checks the
// day against the month for the given calendar.
func ParseDate(cal models.Calendar, s string) (year, month, day int, err error) {
	s = strings.ReplaceAll(strings.TrimSpace(s), "/", "-")
	parts := strings.Split(s, "-")
	if len(parts) != 3 {
		return 0, 0, 0, fmt.Errorf("invalid date %q", s)
	}
	nums := make([]int, 3)
	for i, p := range parts {
		n, convErr := strconv.Atoi(p)
		if convErr != nil {
			return 0, 0, 0, fmt.Errorf("invalid date %q: %w", s, convErr)
		}
		nums[i] = n
	}
	year, month, day = nums[0], nums[1], nums[2]
	if month < 1 || month > 12 {
		return 0, 0, 0, fmt.Errorf("invalid month %d", month)
	}
	if day < 1 || day > DaysInMonth(cal, year, month) {
		return 0, 0, 0, fmt.Errorf("invalid day %d for %04d-%02d", day, year, month)
	}
	return year, month, day, nil
}
