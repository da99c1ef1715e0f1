package cli

import (
	"fmt"
	"sort"
	"strings"

	"tripwise/internal/models/response_models"
	"tripwise/pkg/itinerary"
)

func money(v float64) string {
	return fmt.Sprintf("%.2f", v)
}

func (p *Printer) Document(id string, doc *itinerary.Document) {
	m := doc.Metadata
	title := m.Destination
	if id != "" {
		title += "  [" + id + "]"
	}
	p.Header(title)
	p.Printf("%s → %s  (%d days)  %d travelers  budget %s", m.StartDate, m.EndDate, m.TotalDays, m.PeopleCount, money(m.Budget))
	if len(m.Preferences) > 0 {
		keys := make([]string, 0, len(m.Preferences))
		for k := range m.Preferences {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		prefs := make([]string, 0, len(keys))
		for _, k := range keys {
			prefs = append(prefs, k+"="+m.Preferences[k])
		}
		p.Printf("preferences: %s", strings.Join(prefs, ", "))
	}
	if doc.Summary != "" {
		p.Printf("")
		p.Printf("%s", doc.Summary)
	}

	p.Printf("")
	p.Header("Budget")
	rows := make([][]string, 0, len(itinerary.Categories)+1)
	for _, c := range itinerary.Categories {
		rows = append(rows, []string{string(c), money(doc.BudgetBreakdown.Get(c))})
	}
	rows = append(rows, []string{"total", money(doc.BudgetBreakdown.Total())})
	p.Table([]string{"CATEGORY", "AMOUNT"}, rows)

	for _, day := range doc.DailyItinerary {
		p.Printf("")
		p.Header(strings.TrimSpace(fmt.Sprintf("Day %d  %s  %s", day.Day, day.Date, day.Theme)))
		items := make([][]string, 0, len(day.Items))
		for i, it := range day.Items {
			items = append(items, []string{
				fmt.Sprintf("%d:%d", day.Day, i), it.Time, string(it.Type), it.Title, it.Location, money(float64(it.EstimatedCost)),
			})
		}
		if len(items) > 0 {
			p.Table([]string{"REF", "TIME", "TYPE", "TITLE", "LOCATION", "COST"}, items)
		}
	}

	if len(doc.AccommodationSuggestions) > 0 {
		p.Printf("")
		p.Header("Accommodation")
		for _, a := range doc.AccommodationSuggestions {
			p.Printf("- %s (%s) %s", a.Name, a.Location, a.PriceRange)
		}
	}
	if len(doc.TravelTips) > 0 {
		p.Printf("")
		p.Header("Tips")
		for _, t := range doc.TravelTips {
			p.Printf("- %s", t)
		}
	}
}

func (p *Printer) Records(recs []itinerary.Record) {
	if len(recs) == 0 {
		p.Printf("no saved itineraries")
		return
	}
	rows := make([][]string, 0, len(recs))
	for _, r := range recs {
		rows = append(rows, []string{r.ID, r.Title, r.StartDate, r.EndDate, money(r.Budget)})
	}
	p.Table([]string{"ID", "TITLE", "START", "END", "BUDGET"}, rows)
}

func (p *Printer) Expenses(list []response_models.ExpenseResponse) {
	if len(list) == 0 {
		p.Printf("no expenses")
		return
	}
	rows := make([][]string, 0, len(list))
	var total float64
	for _, e := range list {
		total += e.Amount
		source := ""
		if e.VoiceInput {
			source = "voice"
		}
		rows = append(rows, []string{e.ID, e.ExpenseDate, e.Category, money(e.Amount), e.Description, source})
	}
	p.Table([]string{"ID", "DATE", "CATEGORY", "AMOUNT", "DESCRIPTION", "SOURCE"}, rows)
	p.Printf("total %s", money(total))
}

func (p *Printer) Stats(s *response_models.ExpenseStats) {
	p.Printf("spent %s across %d expenses (avg %s)", money(s.TotalSpent), s.ExpenseCount, money(s.AvgExpense))
	keys := make([]string, 0, len(s.ByCategory))
	for k := range s.ByCategory {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	rows := make([][]string, 0, len(keys))
	for _, k := range keys {
		c := s.ByCategory[k]
		rows = append(rows, []string{k, money(c.Total), fmt.Sprint(c.Count)})
	}
	if len(rows) > 0 {
		p.Table([]string{"CATEGORY", "TOTAL", "COUNT"}, rows)
	}
}

func (p *Printer) Comparison(cmp response_models.BudgetComparison) {
	rows := make([][]string, 0, len(cmp))
	add := func(name string) {
		if l, ok := cmp[name]; ok {
			rows = append(rows, []string{name, money(l.Budget), money(l.Actual), money(l.Difference), fmt.Sprintf("%.1f%%", l.Percentage), l.Status})
		}
	}
	for _, c := range itinerary.Categories {
		add(string(c))
	}
	add("total")
	p.Table([]string{"CATEGORY", "BUDGET", "ACTUAL", "DIFF", "USED", "STATUS"}, rows)
}

func (p *Printer) Analysis(a *response_models.BudgetAnalysis) {
	if a.OverspendingAlert.HasOverspending {
		p.Warning(a.OverspendingAlert.Message)
	} else if a.OverspendingAlert.Message != "" {
		p.Success(a.OverspendingAlert.Message)
	}
	t := a.TrendPrediction
	p.Printf("trend: %s (predicted total %s, %d days left)", t.WarningLevel, money(t.PredictedTotal), a.RemainingDays)
	if t.Message != "" {
		p.Printf("%s", t.Message)
	}
	for _, s := range a.SavingSuggestions {
		p.Printf("- [%s] %s (save ~%s)", s.Category, s.Suggestion, money(s.EstimatedSaving))
	}
	if !a.Generated {
		p.Printf("%s", p.muted.Render("estimate computed locally"))
	}
}
