package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/pterm/pterm"

	"ziwei/internal/export"
	"ziwei/internal/grpcserver"
	"ziwei/internal/render"
	"ziwei/pkg/models"
)

func gridCell(c render.Cell) string {
	parts := []string{pterm.Bold.Sprint(c.Name), c.Stem + c.Branch}
	for _, s := range c.Majors {
		star := pterm.Yellow(s.Name)
		if s.Natal != "" {
			star += pterm.Red(s.Natal)
		}
		if s.Annual != "" {
			star += pterm.Cyan(s.Annual)
		}
		parts = append(parts, star)
	}
	if c.Borrowed {
		parts = append(parts, pterm.Gray("借"))
	}
	if c.Nominal {
		parts[0] = pterm.Bold.Sprint("★" + c.Name)
	}
	return strings.Join(parts, " ")
}

// gridTable lays the 12 palaces on the 4x4 ring; the centre carries the
// bureau and the four pillars.
func gridTable(res *render.Result) pterm.TableData {
	data := make(pterm.TableData, 4)
	for r := range data {
		data[r] = make([]string, 4)
	}
	for _, c := range res.Grid.Cells {
		data[c.Row][c.Col] = gridCell(c)
	}
	data[1][1] = res.Bureau
	data[2][1] = res.Destiny
	return data
}

func printResult(w io.Writer, in models.BirthInput, res *render.Result) error {
	fmt.Fprintln(w, pterm.DefaultSection.Sprintf("%04d-%02d-%02d %s", in.Year, in.Month, in.Day, in.SlotLabel))

	table, err := pterm.DefaultTable.WithBoxed().WithRowSeparator("-").WithData(gridTable(res)).Srender()
	if err != nil {
		return err
	}
	fmt.Fprintln(w, table)

	if res.Clash != nil {
		fmt.Fprintln(w, pterm.Red(fmt.Sprintf("沖線：#%d → #%d", res.Clash.From, res.Clash.To)))
	}

	p := res.Profile
	fmt.Fprintln(w, pterm.DefaultBox.WithTitle("性格輪廓").Sprint(strings.Join([]string{
		"命宮：" + p.Soul,
		"福德：" + p.Spirit,
		"疾厄：" + p.Health,
		"夫妻 / 交友：" + p.Spouse + " ／ " + p.Friends,
	}, "\n")))
	fmt.Fprintln(w, res.Aphorism.Text)
	return nil
}

func printMonths(w io.Writer, months []render.MonthView) error {
	data := pterm.TableData{{"月份", "任務"}}
	for _, m := range months {
		data = append(data, []string{m.Label, m.Task()})
	}
	s, err := pterm.DefaultTable.WithHasHeader().WithData(data).Srender()
	if err != nil {
		return err
	}
	fmt.Fprintln(w, s)
	return nil
}

func printCandidates(w io.Writer, cands []grpcserver.CandidateSummary) error {
	fmt.Fprintln(w, pterm.Warning.Sprint("子時跨越午夜，請以 --zi early 或 --zi late 指定："))
	data := pterm.TableData{{"slot", "時辰", "命主", "五行局"}}
	for _, c := range cands {
		data = append(data, []string{fmt.Sprint(c.Slot), c.Label, c.Soul, c.Bureau})
	}
	s, err := pterm.DefaultTable.WithHasHeader().WithData(data).Srender()
	if err != nil {
		return err
	}
	fmt.Fprintln(w, s)
	return nil
}

func printPanel(w io.Writer, p *render.Panel) error {
	title := fmt.Sprintf("%s #%d %s", p.Name, p.Index, p.StemBranch)
	var lines []string
	if p.Scene != "" {
		lines = append(lines, p.Scene)
	}
	var majors []string
	for _, s := range p.Majors {
		majors = append(majors, s.Name+s.Natal+s.Annual)
	}
	if len(majors) == 0 {
		majors = []string{"（無資料）"}
	}
	lines = append(lines, "主星："+strings.Join(majors, "、"))
	if len(p.Minors) > 0 {
		lines = append(lines, "輔星："+strings.Join(p.Minors, "、"))
	}
	if p.Borrow != "" {
		lines = append(lines, p.Borrow)
	}
	lines = append(lines, "", p.Meaning)
	lines = append(lines, p.Persona...)
	if p.HasHua() {
		lines = append(lines, "")
		lines = append(lines, p.Natal...)
		lines = append(lines, p.Annual...)
	}
	for _, a := range p.Actions {
		lines = append(lines, "・"+a)
	}
	for _, n := range p.HealthNotes {
		lines = append(lines, "！"+n)
	}
	fmt.Fprintln(w, pterm.DefaultBox.WithTitle(title).Sprint(strings.Join(lines, "\n")))
	return nil
}

func printDocument(w io.Writer, doc export.Document) error {
	summary := pterm.TableData{{"項目", "內容"}}
	for _, p := range doc.Summary {
		summary = append(summary, []string{p.Key, p.Value})
	}
	palaces := pterm.TableData{{"宮位", "有效主星", "借星", "今年四化"}}
	for _, r := range doc.Palaces {
		palaces = append(palaces, []string{r.Palace, r.Stars, r.Borrowed, r.Hua})
	}
	months := pterm.TableData{{"月份", "主題", "色系"}}
	for _, m := range doc.Months {
		months = append(months, []string{m.Month, m.Theme, m.Color})
	}
	for _, t := range []pterm.TableData{summary, palaces, months} {
		s, err := pterm.DefaultTable.WithHasHeader().WithData(t).Srender()
		if err != nil {
			return err
		}
		fmt.Fprintln(w, s)
	}
	return nil
}
