package shared

import "github.com/shopspring/decimal"

// BalanceTolerance is the maximum acceptable difference between total debits
// and total credits of a journal, in currency units.
const BalanceTolerance = 0.01

// Round2 rounds an amount to two decimal places. Rounding goes through
// decimal arithmetic so repeated per-line rounding cannot accumulate binary
// floating-point drift across large postings.
func Round2(v float64) float64 {
	f, _ := decimal.NewFromFloat(v).Round(2).Float64()
	return f
}

// Balanced reports whether rounded debit and credit totals agree within
// BalanceTolerance. A difference of exactly 0.01 counts as balanced.
func Balanced(totalDebit, totalCredit float64) bool {
	d := decimal.NewFromFloat(totalDebit).Round(2)
	c := decimal.NewFromFloat(totalCredit).Round(2)
	diff := d.Sub(c).Abs()
	return diff.LessThanOrEqual(decimal.NewFromFloat(BalanceTolerance))
}

// Difference returns the rounded signed difference totalDebit - totalCredit.
func Difference(totalDebit, totalCredit float64) float64 {
	d := decimal.NewFromFloat(totalDebit).Round(2)
	c := decimal.NewFromFloat(totalCredit).Round(2)
	f, _ := d.Sub(c).Round(2).Float64()
	return f
}
