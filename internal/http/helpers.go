package http

import (
	"html/template"
	"strconv"
	"strings"

	"aptcost/internal/core"
)

func templateFuncs() template.FuncMap {
	return template.FuncMap{
		"inr":     formatRecordAmount,
		"money":   func(m core.Money) string { return core.FormatINR(m) },
		"percent": formatPercent,
	}
}

// formatRecordAmount renders a stored amount string as INR. Malformed
// amounts coerce to zero, same as the aggregation rules.
func formatRecordAmount(amount string) string {
	return core.FormatINR(core.CoerceAmount(amount))
}

func formatPercent(p float64) string {
	return strconv.FormatFloat(p, 'f', 1, 64) + "%"
}

// sanitizeInput trims whitespace and strips control characters except tab,
// newline, and carriage return.
func sanitizeInput(s string) string {
	s = strings.TrimSpace(s)
	return strings.Map(func(r rune) rune {
		if r < 32 && r != 9 && r != 10 && r != 13 {
			return -1
		}
		return r
	}, s)
}

// recordInputFromForm builds a RecordInput from the expense form fields.
func recordInputFromForm(form map[string][]string) core.RecordInput {
	get := func(key string) string {
		if vals, ok := form[key]; ok && len(vals) > 0 {
			return vals[0]
		}
		return ""
	}
	return core.RecordInput{
		Type:        sanitizeInput(get("type")),
		Amount:      strings.TrimSpace(get("amount")),
		Description: sanitizeInput(get("description")),
		Date:        strings.TrimSpace(get("date")),
	}
}
