package keyword

import (
	"strings"

	"github.com/neurofin/loan-processor/internal/domain"
)

// Header prefixes that identify statement columns, lower-case.
var columnPrefixes = map[string][]string{
	"date":        {"date", "txn date", "value date"},
	"description": {"description", "narration", "particulars", "details"},
	"debit":       {"debit", "withdrawal"},
	"credit":      {"credit", "deposit"},
	"balance":     {"balance"},
}

var skipDescriptions = map[string]bool{
	"opening balance": true,
	"closing balance": true,
	"-":               true,
}

// columns maps a logical column to the table header that holds it.
func columns(headers []string) map[string]string {
	cols := make(map[string]string)
	for _, h := range headers {
		lower := strings.ToLower(strings.TrimSpace(h))
		for col, prefixes := range columnPrefixes {
			if _, taken := cols[col]; taken {
				continue
			}
			for _, p := range prefixes {
				if strings.HasPrefix(lower, p) {
					cols[col] = h
					break
				}
			}
		}
	}
	return cols
}

func transactionsFromTables(tables []domain.Table) []domain.Transaction {
	txns := []domain.Transaction{}
	for _, tbl := range tables {
		cols := columns(tbl.Headers)
		if cols["date"] == "" || cols["description"] == "" {
			continue
		}
		for _, row := range tbl.Rows {
			if t, ok := rowTransaction(row, cols); ok {
				txns = append(txns, t)
			}
		}
	}
	return txns
}

func rowTransaction(row map[string]string, cols map[string]string) (domain.Transaction, bool) {
	date := strings.TrimSpace(row[cols["date"]])
	desc := strings.TrimSpace(row[cols["description"]])
	if date == "" || desc == "" || skipDescriptions[strings.ToLower(desc)] {
		return domain.Transaction{}, false
	}

	t := domain.Transaction{Date: NormalizeDate(date), Description: desc}
	if credit, ok := ParseAmount(row[cols["credit"]]); ok && !credit.IsZero() {
		t.Amount, t.Type = credit.Abs(), domain.Credit
	} else if debit, ok := ParseAmount(row[cols["debit"]]); ok {
		t.Amount, t.Type = debit.Abs(), domain.Debit
	} else {
		return domain.Transaction{}, false
	}

	if cols["balance"] != "" {
		if bal, ok := ParseAmount(row[cols["balance"]]); ok {
			t.Balance = &bal
		}
	}
	return t, true
}
