// Package export shapes a record snapshot into the downloadable multi-sheet
// xlsx report: a summary sheet of aggregate metrics, one sheet per category,
// and a final sheet with every transaction.
package export

import (
	"fmt"
	"io"
	"time"

	"github.com/xuri/excelize/v2"

	"aptcost/internal/core"
)

// Sheet names in workbook order. The Other sheet is appended only when
// uncategorised records exist.
const (
	SheetSummary         = "Summary"
	SheetBankLoan        = "Bank Loan"
	SheetCash            = "Cash Payments"
	SheetMiscellaneous   = "Miscellaneous"
	SheetEMI             = "EMI Payments"
	SheetOther           = "Other"
	SheetAllTransactions = "All Transactions"
)

// Filename returns the deterministic download name for an export generated
// on the given day.
func Filename(now time.Time) string {
	return "apartment-cost-tracker-" + now.UTC().Format("2006-01-02") + ".xlsx"
}

// Write builds the workbook for the snapshot and writes the xlsx bytes to w.
// The transform is pure: records plus the fixed target constants in, file
// bytes out, no remote state involved.
func Write(w io.Writer, records []core.ExpenseRecord) error {
	f, err := Build(records)
	if err != nil {
		return err
	}
	defer f.Close()
	if err := f.Write(w); err != nil {
		return fmt.Errorf("write workbook: %w", err)
	}
	return nil
}

// Build assembles the workbook in memory. Callers own the returned file and
// must Close it.
func Build(records []core.ExpenseRecord) (*excelize.File, error) {
	totals := core.CategoryTotals(records)

	buckets := map[core.CategoryKind][]core.ExpenseRecord{}
	for _, r := range records {
		kind := r.Category().Kind
		buckets[kind] = append(buckets[kind], r)
	}

	f := excelize.NewFile()
	if err := f.SetSheetName("Sheet1", SheetSummary); err != nil {
		f.Close()
		return nil, fmt.Errorf("create summary sheet: %w", err)
	}
	if err := writeSummarySheet(f, totals); err != nil {
		f.Close()
		return nil, err
	}

	sheets := []struct {
		name    string
		kind    core.CategoryKind
		skipNil bool
	}{
		{SheetBankLoan, core.KindBankLoan, false},
		{SheetCash, core.KindCash, false},
		{SheetMiscellaneous, core.KindMiscellaneous, false},
		{SheetEMI, core.KindEMI, false},
		{SheetOther, core.KindOther, true},
	}
	for _, s := range sheets {
		members := buckets[s.kind]
		if s.skipNil && len(members) == 0 {
			continue
		}
		if err := writeRecordsSheet(f, s.name, members); err != nil {
			f.Close()
			return nil, err
		}
	}
	if err := writeRecordsSheet(f, SheetAllTransactions, records); err != nil {
		f.Close()
		return nil, err
	}
	return f, nil
}

// writeSummarySheet emits one row per metric. The numbers come straight
// from core.CategoryTotals so the report can never disagree with the
// dashboard over the same snapshot.
func writeSummarySheet(f *excelize.File, t core.Totals) error {
	invested := t.CoreInvested()
	overallPending := core.Money{}
	if p := core.ApartmentTarget - invested.Paise; p > 0 {
		overallPending = core.Money{Paise: p}
	}
	bankPending := core.Money{}
	if p := core.BankLoanCap - t.BankLoan.Paise; p > 0 {
		bankPending = core.Money{Paise: p}
	}

	rows := [][]interface{}{
		{"Metric", "Amount (INR)", "Details"},
		{"Total Invested (Bank + Cash)", invested.Rupees(), "Pending " + core.FormatINR(overallPending)},
		{"Bank Loan Disbursed", t.BankLoan.Rupees(),
			fmt.Sprintf("Cap %s, Pending %s", core.FormatINR(core.Money{Paise: core.BankLoanCap}), core.FormatINR(bankPending))},
		{"Cash Payments", t.Cash.Rupees(), "Out of pocket"},
		{"Miscellaneous Costs", t.Miscellaneous.Rupees(), "Outside valuation"},
		{"EMI Paid", t.EMI.Rupees(), "Lifetime EMI payouts"},
		{"Other Expenses", t.Other.Rupees(), "Uncategorised entries"},
		{"Total Transactions", t.CountTotal, "All records"},
		{"Bank Loan Entries", t.CountBankLoan, "Transactions tagged as bank loan"},
		{"Cash Entries", t.CountCash, "Transactions tagged as cash"},
		{"Miscellaneous Entries", t.CountMiscellaneous, "Miscellaneous transactions"},
		{"EMI Entries", t.CountEMI, "EMI transactions"},
	}
	for i, row := range rows {
		cell := fmt.Sprintf("A%d", i+1)
		if err := f.SetSheetRow(SheetSummary, cell, &row); err != nil {
			return fmt.Errorf("summary row %d: %w", i+1, err)
		}
	}
	return nil
}

// writeRecordsSheet renders one tabular sheet. Empty buckets get a single
// "No data" marker cell instead of a bare header.
func writeRecordsSheet(f *excelize.File, name string, records []core.ExpenseRecord) error {
	if _, err := f.NewSheet(name); err != nil {
		return fmt.Errorf("create sheet %q: %w", name, err)
	}
	if len(records) == 0 {
		if err := f.SetCellValue(name, "A1", "No data"); err != nil {
			return fmt.Errorf("mark sheet %q empty: %w", name, err)
		}
		return nil
	}

	header := []interface{}{"Description", "Amount", "Type", "Date", "CreatedAt", "UpdatedAt"}
	if err := f.SetSheetRow(name, "A1", &header); err != nil {
		return fmt.Errorf("sheet %q header: %w", name, err)
	}
	if err := f.SetCellValue(name, "G1", "Export"); err != nil {
		return fmt.Errorf("sheet %q title: %w", name, err)
	}
	if err := f.SetCellValue(name, "H1", name); err != nil {
		return fmt.Errorf("sheet %q title: %w", name, err)
	}

	for i, r := range records {
		typ := r.Type
		if typ == "" {
			typ = "unknown"
		}
		row := []interface{}{
			r.Description,
			r.AmountMoney().Rupees(),
			typ,
			r.Date.ISO(),
			normalizeTimestamp(r.CreatedAt),
			normalizeTimestamp(r.UpdatedAt),
		}
		cell := fmt.Sprintf("A%d", i+2)
		if err := f.SetSheetRow(name, cell, &row); err != nil {
			return fmt.Errorf("sheet %q row %d: %w", name, i+2, err)
		}
	}
	return nil
}

// normalizeTimestamp serializes a system timestamp to RFC 3339, or to the
// empty string for the zero value so missing timestamps never break a row.
func normalizeTimestamp(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format(time.RFC3339)
}
