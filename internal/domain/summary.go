package domain

import "github.com/shopspring/decimal"

// MonthlySummary aggregates one calendar month of transactions.
type MonthlySummary struct {
	Month        string           `json:"month"` // YYYY-MM
	TotalCredits decimal.Decimal  `json:"total_credits"`
	TotalDebits  decimal.Decimal  `json:"total_debits"`
	NetFlow      decimal.Decimal  `json:"net_flow"`
	AvgBalance   decimal.Decimal  `json:"avg_balance"`
	SalaryCredit *decimal.Decimal `json:"salary_credit,omitempty"`
}

// HasSalary reports whether a salary credit was detected for the month.
func (s MonthlySummary) HasSalary() bool {
	return s.SalaryCredit != nil
}
