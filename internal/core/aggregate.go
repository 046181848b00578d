package core

// Fixed targets in paise. The apartment target is ₹1 crore, the bank loan
// cap ₹75 lakh. Surfacing these as configuration is out of scope; they are
// compile-time constants.
const (
	ApartmentTarget = 10_000_000 * 100
	BankLoanCap     = 7_500_000 * 100
)

// Totals holds per-category sums and counts plus the grand total. Every
// record contributes to exactly one category bucket and to Total, so the
// bucket sums always partition the grand total.
type Totals struct {
	BankLoan      Money
	Cash          Money
	EMI           Money
	Miscellaneous Money
	Other         Money

	Total Money

	CountBankLoan      int
	CountCash          int
	CountEMI           int
	CountMiscellaneous int
	CountOther         int
	CountTotal         int
}

// CategoryTotals sums coerced amounts per category over a full snapshot.
// It is total: malformed amounts contribute zero and unknown types land in
// the Other bucket. An empty or nil slice yields all-zero totals.
func CategoryTotals(records []ExpenseRecord) Totals {
	var t Totals
	for _, r := range records {
		amount := r.AmountMoney()
		t.Total = t.Total.Add(amount)
		t.CountTotal++
		switch r.Category().Kind {
		case KindBankLoan:
			t.BankLoan = t.BankLoan.Add(amount)
			t.CountBankLoan++
		case KindCash:
			t.Cash = t.Cash.Add(amount)
			t.CountCash++
		case KindEMI:
			t.EMI = t.EMI.Add(amount)
			t.CountEMI++
		case KindMiscellaneous:
			t.Miscellaneous = t.Miscellaneous.Add(amount)
			t.CountMiscellaneous++
		default:
			t.Other = t.Other.Add(amount)
			t.CountOther++
		}
	}
	return t
}

// CoreInvested is the bank-plus-cash subtotal reported on the export
// summary sheet, distinct from the grand total the progress bar tracks.
func (t Totals) CoreInvested() Money {
	return t.BankLoan.Add(t.Cash)
}

// Progress describes how far the tracked spend has come against the two
// fixed targets. Overshoot is clamped: Remaining never goes negative and
// PercentComplete never exceeds 100.
type Progress struct {
	Invested        Money
	Remaining       Money
	PercentComplete float64

	BankLoanDisbursed Money
	BankLoanPending   Money
}

// ComputeProgress derives progress from a snapshot's totals. Invested is
// the grand total across all categories, matching what the dashboard's
// headline card reports.
func ComputeProgress(t Totals) Progress {
	p := Progress{
		Invested:          t.Total,
		BankLoanDisbursed: t.BankLoan,
	}
	if remaining := ApartmentTarget - t.Total.Paise; remaining > 0 {
		p.Remaining = Money{Paise: remaining}
	}
	if pending := BankLoanCap - t.BankLoan.Paise; pending > 0 {
		p.BankLoanPending = Money{Paise: pending}
	}
	percent := float64(t.Total.Paise) / float64(ApartmentTarget) * 100
	if percent > 100 {
		percent = 100
	}
	p.PercentComplete = percent
	return p
}
