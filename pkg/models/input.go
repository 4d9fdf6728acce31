package models

// Calendar selects which calendar the birth date is expressed in.
type Calendar string

const (
	CalendarSolar Calendar = "gregorian"
	CalendarLunar Calendar = "lunar"
)

// Gender is the form value; the chart engine receives the localized form.
type Gender string

const (
	GenderMale   Gender = "male"
	GenderFemale Gender = "female"
)

// Localized returns the string the chart engine expects.
func (g Gender) Localized() string {
	if g == GenderFemale {
		return "女"
	}
	return "男"
}

// BirthInput is what the visitor submits. Either Time (HH:MM) or Branch is
// used to derive the time slot; Branch wins when both are present.
type BirthInput struct {
	Year      int      `json:"year"`
	Month     int      `json:"month"`
	Day       int      `json:"day"`
	LeapMonth bool     `json:"leap_month,omitempty"`
	Time      string   `json:"time,omitempty"`
	Branch    string   `json:"branch,omitempty"`
	ZiChoice  string   `json:"zi_choice,omitempty"` // "early", "late" or empty
	Gender    Gender   `json:"gender"`
	Calendar  Calendar `json:"calendar"`
	TimeSlot  int      `json:"time_slot"`
	SlotLabel string   `json:"slot_label,omitempty"`
}
