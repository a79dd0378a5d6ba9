package shiori

import (
	"encoding/base64"
	"fmt"
	"strings"

	"github.com/Funya-okina/sightseeingLog/internal/models"
)

// checklistItems is the static packing checklist rendered in every shiori.
var checklistItems = []string{
	"財布・現金・カード",
	"スマートフォン・充電器",
	"健康保険証",
	"着替え",
	"常備薬",
	"雨具",
}

// RenderDocument composes the normalized trip data and the generated
// artifacts into a single Markdown document. It is a pure function: identical
// input produces byte-identical markup. Each section is gated on its own
// data; a section with no qualifying data is omitted entirely, never emitted
// as a heading over an empty body. The cover block is the one exception: it
// is always present, empty or not, because it anchors the page layout.
func RenderDocument(doc models.Document) string {
	var b strings.Builder

	writeCover(&b, doc)
	writeSchedule(&b, doc.Trip)
	writePurpose(&b, doc.Trip)
	writeBudget(&b, doc.Trip.Budget)
	writeItinerary(&b, doc.DayGroups, doc.Inferred)

	return b.String()
}

func writeCover(b *strings.Builder, doc models.Document) {
	b.WriteString("# 旅のしおり\n\n")
	if len(doc.Cover) > 0 {
		b.WriteString("![表紙](data:image/png;base64,")
		b.WriteString(base64.StdEncoding.EncodeToString(doc.Cover))
		b.WriteString(")\n\n")
	}
	if doc.Narrative != "" {
		b.WriteString(doc.Narrative)
		b.WriteString("\n\n")
	}
}

func writeSchedule(b *strings.Builder, trip models.Trip) {
	if trip.DateRange == "" && len(trip.Members) == 0 {
		return
	}
	b.WriteString("## 日程・メンバー\n\n")
	if trip.DateRange != "" {
		fmt.Fprintf(b, "**日程**: %s\n\n", trip.DateRange)
	}
	if len(trip.Members) > 0 {
		b.WriteString("| 役割 | 名前 | ひとこと |\n|---|---|---|\n")
		for _, m := range trip.Members {
			fmt.Fprintf(b, "| %s | %s | %s |\n", m.Label, m.Name, m.Episode)
		}
		b.WriteString("\n")
	}
}

func writePurpose(b *strings.Builder, trip models.Trip) {
	b.WriteString("## 旅の目的・宿・持ち物\n\n")
	if trip.Purpose != "" {
		fmt.Fprintf(b, "**目的**: %s\n\n", trip.Purpose)
	}
	if len(trip.Hotels) > 0 {
		b.WriteString("**宿泊先**:\n\n")
		for _, h := range trip.Hotels {
			fmt.Fprintf(b, "- %s\n", h)
		}
		b.WriteString("\n")
	}
	b.WriteString("**持ち物チェックリスト**:\n\n")
	for _, item := range checklistItems {
		fmt.Fprintf(b, "- [ ] %s\n", item)
	}
	b.WriteString("\n")
}

func writeBudget(b *strings.Builder, budget models.BudgetSummary) {
	if len(budget.Rows) == 0 {
		return
	}
	b.WriteString("## おこづかい帳\n\n")
	b.WriteString("| 項目 | 内訳 | 金額 |\n|---|---|---|\n")
	for _, row := range budget.Rows {
		details := strings.ReplaceAll(row.Details, "\n", "<br>")
		fmt.Fprintf(b, "| %s | %s | %s |\n", row.Title, details, row.TotalDisplay)
	}
	fmt.Fprintf(b, "| **合計** | | **%s** |\n\n", formatYen(budget.GrandTotal))
}

func writeItinerary(b *strings.Builder, groups []models.DayGroup, inferred *models.InferredItinerary) {
	hasEvents := false
	for _, g := range groups {
		if len(g.Events) > 0 {
			hasEvents = true
			break
		}
	}
	if !hasEvents {
		return
	}

	notes := map[string]string{}
	if inferred != nil {
		for _, d := range inferred.Days {
			notes[d.Date] = d.Note
		}
	}

	b.WriteString("## 行程\n\n")
	for _, g := range groups {
		if len(g.Events) == 0 {
			continue
		}
		fmt.Fprintf(b, "### %s\n\n", g.Label)
		if note := notes[g.Label]; note != "" {
			b.WriteString(note)
			b.WriteString("\n\n")
		}
		b.WriteString("| 時刻 | 場所 | 写真 |\n|---|---|---|\n")
		for _, ev := range g.Events {
			photo := ""
			if ev.ImageData != "" {
				photo = fmt.Sprintf("![](%s)", ev.ImageData)
			}
			fmt.Fprintf(b, "| %s | %s | %s |\n", ev.Clock, ev.PlaceName, photo)
		}
		b.WriteString("\n")
	}
}
