package http

import (
	"log/slog"
	"net/http"
	"time"

	"aptcost/internal/core"
)

type categoryCard struct {
	Key   string
	Label string
	Color string
	Total string
	Count int
}

type statsView struct {
	Invested          string
	Remaining         string
	Percent           string
	PercentValue      float64
	BankLoanDisbursed string
	BankLoanPending   string
	Target            string
	Cap               string
	TotalCount        int
	MonthCount        int
	MonthTotal        string
	Recent            *recentView
	Cards             []categoryCard
}

type recentView struct {
	Description string
	Amount      string
	Date        string
}

// handleStats renders the dashboard stats partial: progress against the
// apartment target, the bank loan position, per-category cards, and
// this-month activity.
func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	records, err := s.loadRecords(r.Context())
	if err != nil {
		slog.ErrorContext(r.Context(), "Stats load failed", "error", err)
		NewHTMXResponse().
			Status(http.StatusInternalServerError).
			ErrorMessage("Could not load records").
			Write(w)
		return
	}

	data := buildStatsView(records, time.Now())
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	s.render(w, r, "stats.html", data)
}

func buildStatsView(records []core.ExpenseRecord, now time.Time) statsView {
	totals := core.CategoryTotals(records)
	progress := core.ComputeProgress(totals)
	month := core.StatsForMonth(records, now)

	view := statsView{
		Invested:          core.FormatINR(progress.Invested),
		Remaining:         core.FormatINR(progress.Remaining),
		Percent:           formatPercent(progress.PercentComplete),
		PercentValue:      progress.PercentComplete,
		BankLoanDisbursed: core.FormatINR(progress.BankLoanDisbursed),
		BankLoanPending:   core.FormatINR(progress.BankLoanPending),
		Target:            core.FormatINR(core.Money{Paise: core.ApartmentTarget}),
		Cap:               core.FormatINR(core.Money{Paise: core.BankLoanCap}),
		TotalCount:        totals.CountTotal,
		MonthCount:        month.Count,
		MonthTotal:        core.FormatINR(month.Sum),
		Cards:             buildCategoryCards(totals),
	}

	if recent, ok := core.MostRecent(records); ok {
		rv := recentView{
			Description: recent.Description,
			Amount:      formatRecordAmount(recent.Amount),
		}
		if when, ok := core.EffectiveDate(recent); ok {
			rv.Date = when.Format("2006-01-02")
		}
		view.Recent = &rv
	}

	return view
}

func buildCategoryCards(t core.Totals) []categoryCard {
	cards := []categoryCard{
		{Key: core.TypeBankLoan, Total: core.FormatINR(t.BankLoan), Count: t.CountBankLoan},
		{Key: core.TypeCash, Total: core.FormatINR(t.Cash), Count: t.CountCash},
		{Key: core.TypeEMI, Total: core.FormatINR(t.EMI), Count: t.CountEMI},
		{Key: core.TypeMiscellaneous, Total: core.FormatINR(t.Miscellaneous), Count: t.CountMiscellaneous},
	}
	for i := range cards {
		cat := core.ParseCategory(cards[i].Key)
		cards[i].Label = cat.Label()
		cards[i].Color = cat.Color()
	}
	if t.CountOther > 0 {
		cards = append(cards, categoryCard{
			Key:   core.KeyOther,
			Label: "Other",
			Color: "#6c757d",
			Total: core.FormatINR(t.Other),
			Count: t.CountOther,
		})
	}
	return cards
}
