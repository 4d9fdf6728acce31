package models

// Star is one named body placed into a palace by the chart engine.
// Mutagen carries the natal transformation letter (祿/權/科/忌) when the
// engine assigns one; it is empty otherwise.
type Star struct {
	Name    string `json:"name"`
	Mutagen string `json:"mutagen,omitempty"`
}

// Palace is one of the 12 houses of a natal chart, as returned by the
// chart engine. Index within Chart.Palaces is the only stable address.
type Palace struct {
	Name           string `json:"name"`
	EarthlyBranch  string `json:"earthly_branch"`
	HeavenlyStem   string `json:"heavenly_stem"`
	Changsheng12   string `json:"changsheng12,omitempty"`
	IsBodyPalace   bool   `json:"is_body_palace,omitempty"`
	MajorStars     []Star `json:"major_stars"`
	MinorStars     []Star `json:"minor_stars"`
	AdjectiveStars []Star `json:"adjective_stars,omitempty"`
}

// MajorNames returns the names of the palace's major stars in engine order.
func (p Palace) MajorNames() []string {
	out := make([]string, 0, len(p.MajorStars))
	for _, s := range p.MajorStars {
		out = append(out, s.Name)
	}
	return out
}

// Chart is the natal chart produced by the chart engine. It is treated as
// immutable: a recalculation replaces it wholesale.
type Chart struct {
	SolarDate         string   `json:"solar_date,omitempty"`
	LunarDate         string   `json:"lunar_date,omitempty"`
	ChineseDate       string   `json:"chinese_date"`
	Time              string   `json:"time,omitempty"`
	TimeRange         string   `json:"time_range,omitempty"`
	Zodiac            string   `json:"zodiac,omitempty"`
	Soul              string   `json:"soul"`
	Body              string   `json:"body,omitempty"`
	FiveElementsClass string   `json:"five_elements_class"`
	SoulBranch        string   `json:"earthly_branch_of_soul_palace"`
	BodyBranch        string   `json:"earthly_branch_of_body_palace,omitempty"`
	Palaces           []Palace `json:"palaces"`
}
