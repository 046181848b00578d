package core

import "strings"

// GroupOverride collapses a pre-filtered list into a single group under a
// forced label, as the miscellaneous and EMI sections do.
type GroupOverride struct {
	Label string
	Color string
}

// Group is one display bucket of records: category metadata, the member
// records in their original order, and the bucket subtotal.
type Group struct {
	Key      string
	Label    string
	Color    string
	Count    int
	Subtotal Money
	Records  []ExpenseRecord
}

// GroupRecords buckets records by category key for display. Group order is
// the first-seen order of keys in the input, and members keep their input
// order; nothing is re-sorted. When force is non-nil all records collapse
// into one synthetic "all" group carrying the override's label and color.
// Unknown category keys get their raw string as label and a neutral color.
func GroupRecords(records []ExpenseRecord, force *GroupOverride) []Group {
	var (
		order  []string
		groups = make(map[string]*Group)
	)
	for _, r := range records {
		key := r.Category().Key()
		if force != nil {
			key = "all"
		}
		g, ok := groups[key]
		if !ok {
			g = &Group{Key: key}
			if force != nil {
				g.Label = force.Label
				g.Color = force.Color
				if g.Color == "" {
					g.Color = "#ff8c42"
				}
			} else {
				cat := r.Category()
				g.Label = cat.Label()
				g.Color = cat.Color()
			}
			groups[key] = g
			order = append(order, key)
		}
		g.Records = append(g.Records, r)
		g.Count++
		g.Subtotal = g.Subtotal.Add(r.AmountMoney())
	}
	out := make([]Group, 0, len(order))
	for _, key := range order {
		out = append(out, *groups[key])
	}
	return out
}

// FilterByKind keeps records whose category matches any of the given kinds.
func FilterByKind(records []ExpenseRecord, kinds ...CategoryKind) []ExpenseRecord {
	var out []ExpenseRecord
	for _, r := range records {
		for _, k := range kinds {
			if r.Category().Kind == k {
				out = append(out, r)
				break
			}
		}
	}
	return out
}

// FilterExcludingKind keeps records whose category matches none of the
// given kinds. The ledger section uses this to show everything that is
// neither EMI nor miscellaneous.
func FilterExcludingKind(records []ExpenseRecord, kinds ...CategoryKind) []ExpenseRecord {
	var out []ExpenseRecord
	for _, r := range records {
		excluded := false
		for _, k := range kinds {
			if r.Category().Kind == k {
				excluded = true
				break
			}
		}
		if !excluded {
			out = append(out, r)
		}
	}
	return out
}

// Search keeps records whose description contains the term
// case-insensitively, or whose raw amount string contains it verbatim.
// A blank term returns the input unchanged.
func Search(records []ExpenseRecord, term string) []ExpenseRecord {
	term = strings.TrimSpace(term)
	if term == "" {
		return records
	}
	lower := strings.ToLower(term)
	var out []ExpenseRecord
	for _, r := range records {
		if strings.Contains(strings.ToLower(r.Description), lower) ||
			strings.Contains(r.Amount, term) {
			out = append(out, r)
		}
	}
	return out
}
