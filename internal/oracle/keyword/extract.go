package keyword

import (
	"regexp"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/neurofin/loan-processor/internal/domain"
)

const (
	unknownHolder = "Unknown"
	unknownBank   = "Unknown Bank"
	// bankHeaderChars is how much of the text is searched for the bank name.
	bankHeaderChars = 500
)

const currency = `(?:INR|Rs\.?|₹)?\s*`
const number = `([\d,]+(?:\.\d+)?)`

var (
	holderRe   = regexp.MustCompile(`Account Holder[:\s]+([A-Z][A-Z .]*[A-Z])`)
	accountRe  = regexp.MustCompile(`Account (?:Number|No\.?)[:\s]+([\dX*][\dX* ]*[\dX*])`)
	periodRe   = regexp.MustCompile(`Statement Period[:\s]+(\S+)\s+to\s+(\S+)`)
	openingRe  = regexp.MustCompile(`Opening Balance[^:\n]*[:\s]+` + currency + number)
	closingRe  = regexp.MustCompile(`Closing Balance[^:\n]*[:\s]+` + currency + number)
	creditsRe  = regexp.MustCompile(`Total Credits[:\s]+` + currency + number)
	debitsRe   = regexp.MustCompile(`Total Debits[:\s]+` + currency + number)
	accTypeRe  = regexp.MustCompile(`(?i)\b(savings|current)\s+account\b`)
	nonDigitRe = regexp.MustCompile(`[^\dX*]`)
)

var bankPatterns = []struct {
	re   *regexp.Regexp
	name string
}{
	{regexp.MustCompile(`(?i)ICICI\s*Bank`), "ICICI Bank"},
	{regexp.MustCompile(`(?i)HDFC\s*Bank`), "HDFC Bank"},
	{regexp.MustCompile(`(?i)State Bank of India|\bSBI\b`), "State Bank of India"},
	{regexp.MustCompile(`(?i)Axis\s*Bank`), "Axis Bank"},
	{regexp.MustCompile(`(?i)Kotak\s*(?:Mahindra)?\s*Bank`), "Kotak Mahindra Bank"},
}

// dateLayouts are tried in order when normalizing statement dates.
var dateLayouts = []string{
	"2006-01-02",
	"02-Jan-2006",
	"02-Jan-06",
	"02 Jan 2006",
	"02/01/2006",
	"02-01-2006",
	"02.01.2006",
}

// NormalizeDate converts a statement date to YYYY-MM-DD. Unrecognized
// values are returned trimmed but otherwise unchanged.
func NormalizeDate(s string) string {
	s = strings.TrimSpace(s)
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.Format("2006-01-02")
		}
	}
	return s
}

// ParseAmount reads an amount such as "1,20,000.50". A "Dr" suffix marks an
// overdrawn balance and makes the amount negative. ok is false for blank
// cells and placeholders.
func ParseAmount(s string) (decimal.Decimal, bool) {
	s = strings.TrimSpace(s)
	s = strings.TrimSpace(strings.TrimPrefix(s, "₹"))
	drawn := false
	if t := strings.TrimSuffix(s, "."); len(t) >= 2 {
		switch strings.ToUpper(t[len(t)-2:]) {
		case "DR":
			drawn = true
			s = t[:len(t)-2]
		case "CR":
			s = t[:len(t)-2]
		}
	}
	s = strings.ReplaceAll(strings.TrimSpace(s), ",", "")
	if s == "" || s == "-" {
		return decimal.Zero, false
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, false
	}
	if drawn {
		d = d.Abs().Neg()
	}
	return d, true
}

func findAmount(re *regexp.Regexp, text string) (decimal.Decimal, bool) {
	m := re.FindStringSubmatch(text)
	if m == nil {
		return decimal.Zero, false
	}
	return ParseAmount(m[1])
}

// MaskAccount keeps the last four digits of an account number.
func MaskAccount(raw string) string {
	digits := nonDigitRe.ReplaceAllString(raw, "")
	if len(digits) <= 4 {
		return digits
	}
	return "XXXX" + digits[len(digits)-4:]
}

func extractHeader(text string, txns []domain.Transaction) *domain.ExtractedData {
	data := &domain.ExtractedData{
		AccountHolderName: unknownHolder,
		BankName:          unknownBank,
		AccountType:       "Savings",
	}

	if m := holderRe.FindStringSubmatch(text); m != nil {
		data.AccountHolderName = strings.TrimSpace(m[1])
	}

	header := text
	if len(header) > bankHeaderChars {
		header = header[:bankHeaderChars]
	}
	for _, p := range bankPatterns {
		if p.re.MatchString(header) {
			data.BankName = p.name
			break
		}
	}

	if m := accountRe.FindStringSubmatch(text); m != nil {
		data.AccountNumberMasked = MaskAccount(m[1])
	}
	if m := accTypeRe.FindStringSubmatch(text); m != nil {
		data.AccountType = strings.ToUpper(m[1][:1]) + strings.ToLower(m[1][1:])
	}

	if m := periodRe.FindStringSubmatch(text); m != nil {
		data.StatementPeriodStart = NormalizeDate(m[1])
		data.StatementPeriodEnd = NormalizeDate(m[2])
	} else if len(txns) > 0 {
		data.StatementPeriodStart = txns[0].Date
		data.StatementPeriodEnd = txns[len(txns)-1].Date
	}

	data.OpeningBalance, _ = findAmount(openingRe, text)

	closing, ok := findAmount(closingRe, text)
	if !ok {
		for i := len(txns) - 1; i >= 0; i-- {
			if txns[i].Balance != nil {
				closing = *txns[i].Balance
				break
			}
		}
	}
	data.ClosingBalance = closing

	credits, creditsOK := findAmount(creditsRe, text)
	debits, debitsOK := findAmount(debitsRe, text)
	if !creditsOK || !debitsOK {
		sumCredits, sumDebits := decimal.Zero, decimal.Zero
		for _, t := range txns {
			if t.Type == domain.Credit {
				sumCredits = sumCredits.Add(t.Amount)
			} else {
				sumDebits = sumDebits.Add(t.Amount)
			}
		}
		if !creditsOK {
			credits = sumCredits
		}
		if !debitsOK {
			debits = sumDebits
		}
	}
	data.TotalCredits = credits
	data.TotalDebits = debits

	return data
}
