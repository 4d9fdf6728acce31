// Package timeslot converts birth times into the 13-slot index the chart
// engine expects: 0 is the early 子 hour (00:00–00:59), 12 the late 子 hour
// (23:00–23:59), and 1–11 the two-hour blocks from 丑 to 亥.
package timeslot

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

const (
	EarlyZi = 0
	LateZi  = 12
	Count   = 13

	// DefaultClock is used when no time of day was entered.
	DefaultClock = "12:00"
)

var (
	ErrHourOutOfRange = errors.New("hour out of range")
	ErrBadClock       = errors.New("invalid time of day")
	ErrUnknownBranch  = errors.New("unknown double-hour branch")
	ErrSlotOutOfRange = errors.New("time slot out of range")
)

// Choice disambiguates the 子 double hour, which straddles midnight.
type Choice int

const (
	Unspecified Choice = iota
	Early
	Late
)

// ParseChoice maps form values to a Choice. Anything unrecognised is
// Unspecified.
func ParseChoice(s string) Choice {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "early", "早", "早子":
		return Early
	case "late", "晚", "晚子", "夜子":
		return Late
	default:
		return Unspecified
	}
}

// Result is the outcome of normalising a double-hour selection. When
// Ambiguous is set, Candidates holds both slots and the caller evaluates
// each.
type Result struct {
	Slot       int
	Ambiguous  bool
	Candidates []int
}

var branches = []string{"子", "丑", "寅", "卯", "辰", "巳", "午", "未", "申", "酉", "戌", "亥"}

var labels = [Count]string{
	"早子時 00:00–00:59",
	"丑時 01:00–02:59",
	"寅時 03:00–04:59",
	"卯時 05:00–06:59",
	"辰時 07:00–08:59",
	"巳時 09:00–10:59",
	"午時 11:00–12:59",
	"未時 13:00–14:59",
	"申時 15:00–16:59",
	"酉時 17:00–18:59",
	"戌時 19:00–20:59",
	"亥時 21:00–22:59",
	"晚子時 23:00–23:59",
}

// Index maps an hour of day to a slot.
func Index(hour int) (int, error) {
	if hour < 0 || hour > 23 {
		return 0, fmt.Errorf("%w: %d", ErrHourOutOfRange, hour)
	}
	switch hour {
	case 0:
		return EarlyZi, nil
	case 23:
		return LateZi, nil
	default:
		return (hour + 1) / 2, nil
	}
}

// FromClock parses "HH:MM" (minutes are ignored) or a bare hour. An empty
// string means DefaultClock.
func FromClock(s string) (int, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		s = DefaultClock
	}
	hourPart, _, _ := strings.Cut(s, ":")
	hour, err := strconv.Atoi(strings.TrimSpace(hourPart))
	if err != nil {
		return 0, fmt.Errorf("%w: %q", ErrBadClock, s)
	}
	return Index(hour)
}

// FromBranch maps a double-hour branch name (with or without the trailing
// 時) to a slot. 子 without an explicit choice is ambiguous.
func FromBranch(branch string, choice Choice) (Result, error) {
	b := strings.TrimSuffix(strings.TrimSpace(branch), "時")
	switch b {
	case "早子":
		return Result{Slot: EarlyZi}, nil
	case "晚子":
		return Result{Slot: LateZi}, nil
	case "子":
		switch choice {
		case Early:
			return Result{Slot: EarlyZi}, nil
		case Late:
			return Result{Slot: LateZi}, nil
		default:
			return Result{Ambiguous: true, Candidates: []int{EarlyZi, LateZi}}, nil
		}
	}
	for i, name := range branches {
		if name == b && i > 0 {
			return Result{Slot: i}, nil
		}
	}
	return Result{}, fmt.Errorf("%w: %q", ErrUnknownBranch, branch)
}

// Label returns the display name of a slot.
func Label(slot int) string {
	if slot < 0 || slot >= Count {
		return ""
	}
	return labels[slot]
}

// Valid reports whether slot is one the chart engine accepts.
func Valid(slot int) bool {
	return slot >= 0 && slot < Count
}

// Branches returns the 12 branch names in order, for form dropdowns.
func Branches() []string {
	return append([]string(nil), branches...)
}
