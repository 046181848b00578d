package http

import (
	"log/slog"
	"net/http"
	"strings"

	"aptcost/internal/core"
)

type recordView struct {
	ID          string
	Description string
	Amount      string
	RawAmount   string
	TypeKey     string
	TypeLabel   string
	TypeColor   string
	Date        string
}

type groupView struct {
	Key      string
	Label    string
	Color    string
	Count    int
	Subtotal string
	Records  []recordView
}

type sectionView struct {
	ID     string
	Title  string
	Groups []groupView
}

type sectionsView struct {
	Query    string
	Sections []sectionView
	Empty    bool
}

// handleSections renders the three grouped record sections. An optional q
// parameter narrows all sections to matching records first.
func (s *Server) handleSections(w http.ResponseWriter, r *http.Request) {
	records, err := s.loadRecords(r.Context())
	if err != nil {
		slog.ErrorContext(r.Context(), "Sections load failed", "error", err)
		NewHTMXResponse().
			Status(http.StatusInternalServerError).
			ErrorMessage("Could not load records").
			Write(w)
		return
	}

	query := strings.TrimSpace(r.URL.Query().Get("q"))
	data := buildSectionsView(records, query)

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	s.render(w, r, "sections.html", data)
}

// buildSectionsView splits records into the ledger (bank loan, cash, and
// anything uncategorised), miscellaneous spends, and EMI payments. The two
// single-purpose sections collapse under one forced label each.
func buildSectionsView(records []core.ExpenseRecord, query string) sectionsView {
	matched := core.Search(records, query)

	ledger := core.FilterExcludingKind(matched, core.KindEMI, core.KindMiscellaneous)
	misc := core.FilterByKind(matched, core.KindMiscellaneous)
	emi := core.FilterByKind(matched, core.KindEMI)

	miscCat := core.ParseCategory(core.TypeMiscellaneous)
	emiCat := core.ParseCategory(core.TypeEMI)

	view := sectionsView{
		Query: query,
		Sections: []sectionView{
			{
				ID:     "ledger",
				Title:  "Apartment Ledger",
				Groups: buildGroupViews(core.GroupRecords(ledger, nil)),
			},
			{
				ID:    "miscellaneous",
				Title: "Miscellaneous Expenses",
				Groups: buildGroupViews(core.GroupRecords(misc, &core.GroupOverride{
					Label: miscCat.Label(),
					Color: miscCat.Color(),
				})),
			},
			{
				ID:    "emi",
				Title: "EMI Payments",
				Groups: buildGroupViews(core.GroupRecords(emi, &core.GroupOverride{
					Label: emiCat.Label(),
					Color: emiCat.Color(),
				})),
			},
		},
	}
	view.Empty = len(matched) == 0
	return view
}

func buildGroupViews(groups []core.Group) []groupView {
	out := make([]groupView, 0, len(groups))
	for _, g := range groups {
		gv := groupView{
			Key:      g.Key,
			Label:    g.Label,
			Color:    g.Color,
			Count:    g.Count,
			Subtotal: core.FormatINR(g.Subtotal),
			Records:  make([]recordView, 0, len(g.Records)),
		}
		for _, r := range g.Records {
			cat := r.Category()
			gv.Records = append(gv.Records, recordView{
				ID:          r.ID,
				Description: r.Description,
				Amount:      formatRecordAmount(r.Amount),
				RawAmount:   r.Amount,
				TypeKey:     cat.Key(),
				TypeLabel:   cat.Label(),
				TypeColor:   cat.Color(),
				Date:        r.Date.ISO(),
			})
		}
		out = append(out, gv)
	}
	return out
}
