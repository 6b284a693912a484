package domain

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// Direction says whether money entered or left the account.
type Direction string

const (
	Credit Direction = "credit"
	Debit  Direction = "debit"
)

// Valid reports whether d is one of the two known directions.
func (d Direction) Valid() bool {
	return d == Credit || d == Debit
}

// Transaction is one statement line as returned by the extraction step.
// Amount is always non-negative; Type carries the sign. Balance, when present,
// is the account balance immediately after the transaction.
type Transaction struct {
	Date        string           `json:"date"` // YYYY-MM-DD
	Description string           `json:"description"`
	Amount      decimal.Decimal  `json:"amount"`
	Type        Direction        `json:"type"`
	Balance     *decimal.Decimal `json:"balance,omitempty"`
}

// Validate checks the transaction invariants.
func (t Transaction) Validate() error {
	if t.Amount.IsNegative() {
		return fmt.Errorf("amount %s is negative", t.Amount.String())
	}
	if !t.Type.Valid() {
		return fmt.Errorf("unknown transaction type %q", t.Type)
	}
	return nil
}

// MonthKey returns the YYYY-MM bucket for the transaction date.
// ok is false when the date does not start with a parseable year-month.
func (t Transaction) MonthKey() (key string, ok bool) {
	if len(t.Date) < 7 {
		return "", false
	}
	key = t.Date[:7]
	if _, err := time.Parse("2006-01", key); err != nil {
		return "", false
	}
	return key, true
}

// ExtractedData is the structured content of a bank statement.
type ExtractedData struct {
	AccountHolderName    string          `json:"account_holder_name"`
	BankName             string          `json:"bank_name"`
	Branch               string          `json:"branch,omitempty"`
	AccountNumberMasked  string          `json:"account_number_masked"`
	AccountType          string          `json:"account_type,omitempty"`
	StatementPeriodStart string          `json:"statement_period_start"`
	StatementPeriodEnd   string          `json:"statement_period_end"`
	OpeningBalance       decimal.Decimal `json:"opening_balance"`
	ClosingBalance       decimal.Decimal `json:"closing_balance"`
	TotalCredits         decimal.Decimal `json:"total_credits"`
	TotalDebits          decimal.Decimal `json:"total_debits"`
	TransactionCount     int             `json:"transaction_count"`
	Transactions         []Transaction   `json:"transactions"`
}
