package smsparser

import (
	"regexp"
	"strconv"
	"strings"
	"time"

	"cloud.google.com/go/civil"
	"github.com/shopspring/decimal"

	"github.com/Francisnampellah/MeMoney-sub000/internal/domain"
)

const numberPattern = `(\d[\d,]*(?:\.\d+)?)`

var (
	amountPattern  = regexp.MustCompile(`(?i)\bTsh\s?` + numberPattern)
	feePattern     = regexp.MustCompile(`(?i)total fee(?:\s+of)?\s*:?\s*Tsh\s?` + numberPattern)
	levyPattern    = regexp.MustCompile(`(?i)government levy(?:\s+of)?\s*:?\s*Tsh\s?` + numberPattern)
	balancePattern = regexp.MustCompile(`(?i)balance is\s*:?\s*Tsh\s?` + numberPattern)

	datePattern = regexp.MustCompile(`\b(\d{1,2})/(\d{1,2})/(\d{2})\b`)
	timePattern = regexp.MustCompile(`(?i)\b(\d{1,2}):(\d{2})\s*([AP]M)\b`)

	accountPattern = regexp.MustCompile(`(?i)\baccount\s+(?:no\.?\s*)?(\d+)`)

	// Names run until a boundary word, a sentence-ending period or the end of the text.
	outgoingPartyPattern = regexp.MustCompile(`(?i)\b(?:sent to|paid to)\s+(.+?)(?:\s+(?:for|on)\s|\.(?:\s|$)|$)`)
	incomingPartyPattern = regexp.MustCompile(`(?i)\bfrom\s+(.+?)(?:\s+(?:for|on)\s|\.(?:\s|$)|$)`)
)

// parseNumber strips grouping separators and parses the remainder.
func parseNumber(s string) (decimal.Decimal, bool) {
	cleaned := strings.ReplaceAll(s, ",", "")
	if cleaned == "" {
		return decimal.Zero, false
	}
	d, err := decimal.NewFromString(cleaned)
	if err != nil {
		return decimal.Zero, false
	}
	return d, true
}

func firstNumber(re *regexp.Regexp, raw string) (decimal.Decimal, bool) {
	m := re.FindStringSubmatch(raw)
	if m == nil {
		return decimal.Zero, false
	}
	return parseNumber(m[1])
}

// ExtractAmount returns the number immediately following the first currency
// marker, or zero.
func ExtractAmount(raw string) decimal.Decimal {
	d, _ := firstNumber(amountPattern, raw)
	return d
}

// ExtractFee returns the operator fee, or zero.
func ExtractFee(raw string) decimal.Decimal {
	d, _ := firstNumber(feePattern, raw)
	return d
}

// ExtractGovernmentLevy returns the levy, or zero.
func ExtractGovernmentLevy(raw string) decimal.Decimal {
	d, _ := firstNumber(levyPattern, raw)
	return d
}

// ExtractBalance returns the balance after the transaction. Nil means the
// message did not state one; a stated zero balance is returned as zero.
func ExtractBalance(raw string) *decimal.Decimal {
	d, ok := firstNumber(balancePattern, raw)
	if !ok {
		return nil
	}
	return &d
}

// ExtractDate finds a D/M/YY date and assumes the 21st century.
func ExtractDate(raw string) (civil.Date, bool) {
	m := datePattern.FindStringSubmatch(raw)
	if m == nil {
		return civil.Date{}, false
	}
	day, _ := strconv.Atoi(m[1])
	month, _ := strconv.Atoi(m[2])
	year, _ := strconv.Atoi(m[3])

	d := civil.Date{Year: 2000 + year, Month: time.Month(month), Day: day}
	if !d.IsValid() {
		return civil.Date{}, false
	}
	return d, true
}

// ExtractTime finds an H:MM AM/PM clock time and converts it to 24-hour form.
func ExtractTime(raw string) *civil.Time {
	m := timePattern.FindStringSubmatch(raw)
	if m == nil {
		return nil
	}
	hour, _ := strconv.Atoi(m[1])
	minute, _ := strconv.Atoi(m[2])
	if hour < 1 || hour > 12 || minute > 59 {
		return nil
	}

	hour %= 12
	if strings.EqualFold(m[3], "PM") {
		hour += 12
	}
	return &civil.Time{Hour: hour, Minute: minute}
}

// ExtractCounterpartyName pulls the other party out of the text. Outgoing
// messages are read from the "sent to"/"paid to" clause and fall back to the
// "from" clause (agent withdrawals); incoming messages use the "from" clause.
func ExtractCounterpartyName(raw string, direction domain.Direction) *string {
	var m []string
	if direction == domain.DirectionSent {
		m = outgoingPartyPattern.FindStringSubmatch(raw)
	}
	if m == nil {
		m = incomingPartyPattern.FindStringSubmatch(raw)
	}
	if m == nil {
		return nil
	}

	name := cleanName(m[1])
	// "255712345678 - JOHN MUSHI" carries a phone or till number before the name.
	if parts := strings.SplitN(name, " - ", 2); len(parts) == 2 {
		if second := cleanName(parts[1]); second != "" {
			name = second
		} else {
			name = cleanName(parts[0])
		}
	}
	if name == "" {
		return nil
	}
	return &name
}

// ExtractAccount returns the digits of an "account <digits>" reference.
func ExtractAccount(raw string) *string {
	m := accountPattern.FindStringSubmatch(raw)
	if m == nil {
		return nil
	}
	account := m[1]
	return &account
}

// ExtractStatus maps literal keywords to a status.
func ExtractStatus(raw string) domain.Status {
	switch {
	case strings.Contains(raw, "Confirmed"):
		return domain.StatusConfirmed
	case strings.Contains(raw, "Failed"):
		return domain.StatusFailed
	default:
		return domain.StatusUnknown
	}
}

func cleanName(s string) string {
	return strings.TrimSpace(strings.TrimRight(strings.TrimSpace(s), ".,;:"))
}
