package render

import (
	"fmt"
	"strings"

	"ziwei/internal/annotate"
	"ziwei/internal/kb"
	"ziwei/internal/palace"
	"ziwei/pkg/models"
)

// Unlocated stands in for a palace name when a star is not on the chart.
const Unlocated = "（未定位）"

const none = "（無）"

// ProfileView is the one-minute summary of the palaces a newcomer reads first.
type ProfileView struct {
	Soul         string `json:"soul"`
	Spirit       string `json:"spirit"`
	Health       string `json:"health"`
	Spouse       string `json:"spouse"`
	Friends      string `json:"friends"`
	ReadingOrder string `json:"reading_order"`
}

// Profile lists at most two major stars for 命, 福德, 疾厄, 夫妻 and 交友.
// Palaces are found by name, so a chart that labels 命宮 differently still
// resolves.
func Profile(c *models.Chart, base *kb.Base) ProfileView {
	pick := func(k palace.Key) string {
		i := annotate.FindPalace(c, k)
		if i < 0 {
			return none
		}
		names := c.Palaces[i].MajorNames()
		if len(names) == 0 {
			return none
		}
		if len(names) > 2 {
			names = names[:2]
		}
		return strings.Join(names, "、")
	}
	return ProfileView{
		Soul:         pick(palace.Soul),
		Spirit:       pick(palace.Spirit),
		Health:       pick(palace.Health),
		Spouse:       pick(palace.Spouse),
		Friends:      pick(palace.Friends),
		ReadingOrder: base.Year.ReadingOrder,
	}
}

// AphorismView is the year narrative.
type AphorismView struct {
	Text          string `json:"text"`
	PressureName  string `json:"pressure_name"`
	FortuneName   string `json:"fortune_name"`
	PressureIndex int    `json:"pressure_index"`
	FortuneIndex  int    `json:"fortune_index"`
}

// Aphorism names the palaces holding the pressure and fortune stars.
func Aphorism(c *models.Chart, base *kb.Base) AphorismView {
	v := AphorismView{
		PressureIndex: annotate.LocateStar(c, annotate.PressureStar),
		FortuneIndex:  annotate.LocateStar(c, annotate.FortuneStar),
		PressureName:  Unlocated,
		FortuneName:   Unlocated,
	}
	if v.PressureIndex >= 0 {
		v.PressureName = c.Palaces[v.PressureIndex].Name
	}
	if v.FortuneIndex >= 0 {
		v.FortuneName = c.Palaces[v.FortuneIndex].Name
	}
	v.Text = base.Year.Headline +
		kb.Fill(base.Year.Pressure, v.FortuneName, v.PressureName) +
		kb.Fill(base.Year.Fortune, v.FortuneName, v.PressureName)
	return v
}

// MonthView is one line of the monthly strategy list.
type MonthView struct {
	Month       int    `json:"month"`
	Label       string `json:"label"`
	Theme       string `json:"theme"`
	Description string `json:"description"`
	Action      string `json:"action"`
	Focus       string `json:"focus"`
	Color       string `json:"color"`
}

// Task is the one-line form used by the list and the export.
func (m MonthView) Task() string {
	return fmt.Sprintf("%s：%s%s%s", m.Theme, m.Description, m.Action, m.Focus)
}

// Months tags each month with the palace it leans on: the fortune palace
// for "lu" months, the pressure palace for "ji" months.
func Months(base *kb.Base, luName, jiName string) []MonthView {
	out := make([]MonthView, 0, len(base.Months))
	for _, m := range base.Months {
		v := MonthView{
			Month:       m.Month,
			Label:       fmt.Sprintf("%d 月", m.Month),
			Theme:       m.Theme,
			Description: m.Description,
			Action:      m.Action,
			Color:       m.Color,
		}
		switch m.Focus {
		case "lu":
			v.Focus = fmt.Sprintf("（機會點：%s）", luName)
		case "ji":
			v.Focus = fmt.Sprintf("（壓力點：%s）", jiName)
		}
		out = append(out, v)
	}
	return out
}
