// Package export writes a computed chart as a spreadsheet-friendly CSV: a
// UTF-8 byte-order mark, a summary block, the 12 palaces and the 12 months.
package export

import (
	"errors"
	"fmt"
	"net/url"
	"strings"

	"ziwei/internal/kb"
	"ziwei/internal/palace"
	"ziwei/internal/render"
	"ziwei/internal/timeslot"
	"ziwei/pkg/models"
)

const (
	Filename = "紫微斗數_2026流年.csv"
	MIME     = "text/csv;charset=utf-8"
	BOM      = "\uFEFF"
)

// ErrNoChart is returned when there is nothing to export.
var ErrNoChart = errors.New("no chart to export")

var (
	summaryHeader = []string{"項目", "內容"}
	palaceHeader  = []string{"宮位", "場景", "說明", "有效主星", "借星", "來源宮位", "今年四化", "行動建議"}
	monthHeader   = []string{"月份", "主題", "說明", "行動", "色系"}
)

// Disposition is the Content-Disposition value for a download of Filename.
func Disposition() string {
	return fmt.Sprintf("attachment; filename=\"ziwei_2026.csv\"; filename*=UTF-8''%s", url.PathEscape(Filename))
}

type Pair struct {
	Key   string
	Value string
}

type PalaceRow struct {
	Palace      string
	Scene       string
	Description string
	Stars       string
	Borrowed    string
	Source      string
	Hua         string
	Actions     string
}

func (r PalaceRow) record() []string {
	return []string{r.Palace, r.Scene, r.Description, r.Stars, r.Borrowed, r.Source, r.Hua, r.Actions}
}

type MonthRow struct {
	Month       string
	Theme       string
	Description string
	Action      string
	Color       string
}

func (r MonthRow) record() []string {
	return []string{r.Month, r.Theme, r.Description, r.Action, r.Color}
}

// Document is the full export in row form.
type Document struct {
	Summary []Pair
	Palaces []PalaceRow
	Months  []MonthRow
}

// Source is what Build reads from a finished calculation.
type Source struct {
	Input       models.BirthInput
	Chart       *models.Chart
	Annotations []models.Annotation
	KB          *kb.Base
}

// Build turns a calculation into rows. It fails with ErrNoChart when no
// chart has been computed.
func Build(src Source) (Document, error) {
	if src.Chart == nil || len(src.Annotations) != len(src.Chart.Palaces) {
		return Document{}, ErrNoChart
	}
	c, base := src.Chart, src.KB
	aph := render.Aphorism(c, base)
	profile := render.Profile(c, base)

	calendar := "國曆"
	if src.Input.Calendar == models.CalendarLunar {
		calendar = "農曆"
		if src.Input.LeapMonth {
			calendar += "（閏月）"
		}
	}

	doc := Document{
		Summary: []Pair{
			{"出生日期", fmt.Sprintf("%04d-%02d-%02d（%s）", src.Input.Year, src.Input.Month, src.Input.Day, calendar)},
			{"時辰", timeslot.Label(src.Input.TimeSlot)},
			{"性別", src.Input.Gender.Localized()},
			{"四柱", c.ChineseDate},
			{"五行局", c.FiveElementsClass},
			{"命主", c.Soul},
			{"身主", c.Body},
			{"命宮主星", profile.Soul},
			{"流年化忌宮位", aph.PressureName},
			{"流年化祿宮位", aph.FortuneName},
			{"年度主軸", aph.Text},
		},
	}

	for i, a := range src.Annotations {
		p := c.Palaces[i]
		row := PalaceRow{
			Palace:   p.Name,
			Stars:    strings.Join(a.EffectiveMajors, "、"),
			Borrowed: "否",
			Source:   c.Palaces[a.SourceIndex].Name,
			Hua:      huaText(a.Annual),
		}
		if a.Borrowed() {
			row.Borrowed = "是"
		}
		if entry, ok := base.Palace(palace.KeyByName(a.Key)); ok {
			row.Scene = entry.Scene
			row.Description = entry.Description
			row.Actions = strings.Join(entry.Actions, "\n")
		}
		doc.Palaces = append(doc.Palaces, row)
	}

	for _, m := range render.Months(base, aph.FortuneName, aph.PressureName) {
		doc.Months = append(doc.Months, MonthRow{
			Month:       m.Label,
			Theme:       m.Theme,
			Description: m.Description + m.Focus,
			Action:      m.Action,
			Color:       m.Color,
		})
	}
	return doc.normalized(), nil
}

// normalized returns doc with every field's line endings folded to LF, the
// form Parse hands back.
func (doc Document) normalized() Document {
	out := Document{
		Summary: make([]Pair, len(doc.Summary)),
		Palaces: make([]PalaceRow, len(doc.Palaces)),
		Months:  make([]MonthRow, len(doc.Months)),
	}
	for i, p := range doc.Summary {
		out.Summary[i] = Pair{Key: lineEndings.Replace(p.Key), Value: lineEndings.Replace(p.Value)}
	}
	for i, r := range doc.Palaces {
		out.Palaces[i] = PalaceRow{
			Palace:      lineEndings.Replace(r.Palace),
			Scene:       lineEndings.Replace(r.Scene),
			Description: lineEndings.Replace(r.Description),
			Stars:       lineEndings.Replace(r.Stars),
			Borrowed:    lineEndings.Replace(r.Borrowed),
			Source:      lineEndings.Replace(r.Source),
			Hua:         lineEndings.Replace(r.Hua),
			Actions:     lineEndings.Replace(r.Actions),
		}
	}
	for i, r := range doc.Months {
		out.Months[i] = MonthRow{
			Month:       lineEndings.Replace(r.Month),
			Theme:       lineEndings.Replace(r.Theme),
			Description: lineEndings.Replace(r.Description),
			Action:      lineEndings.Replace(r.Action),
			Color:       lineEndings.Replace(r.Color),
		}
	}
	return out
}

func huaText(set []models.AnnualHua) string {
	parts := make([]string, 0, len(set))
	for _, h := range set {
		s := h.Star + "化" + h.Kind
		if h.Borrowed {
			s += "（借）"
		}
		parts = append(parts, s)
	}
	return strings.Join(parts, "、")
}
