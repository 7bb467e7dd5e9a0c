// Package reconcile collapses records that share a transaction identifier
// into one canonical record.
package reconcile

import (
	"strings"

	"github.com/shopspring/decimal"

	"github.com/Francisnampellah/MeMoney-sub000/internal/domain"
)

// RawTextSeparator joins divergent raw observations of the same transaction.
const RawTextSeparator = "\n---\n"

// Merge combines two observations of the same transaction. The first
// argument is the earlier observation and wins every tie.
//
// Merge(x, x) == x for every record x.
func Merge(a, b domain.TransactionRecord) domain.TransactionRecord {
	out := a

	if a.Status != domain.StatusConfirmed && b.Status == domain.StatusConfirmed {
		out.Status = domain.StatusConfirmed
	}

	if !a.Type.Specific() && b.Type.Specific() {
		out.Type = b.Type
		out.Channel = b.Channel
	}

	out.Amount = decimal.Max(a.Amount, b.Amount)
	out.Fee = decimal.Max(a.Fee, b.Fee)
	out.GovernmentLevy = decimal.Max(a.GovernmentLevy, b.GovernmentLevy)

	out.CounterpartyName = firstPresent(a.CounterpartyName, b.CounterpartyName)
	out.CounterpartyAccount = firstPresent(a.CounterpartyAccount, b.CounterpartyAccount)
	out.Time = firstPresent(a.Time, b.Time)
	out.BalanceAfter = firstPresent(a.BalanceAfter, b.BalanceAfter)

	out.RawText = mergeRawText(a.RawText, b.RawText)

	return out
}

func firstPresent[T any](a, b *T) *T {
	if a != nil {
		return a
	}
	return b
}

// mergeRawText appends the segments of b that a does not already carry.
func mergeRawText(a, b string) string {
	if a == b || b == "" {
		return a
	}
	if a == "" {
		return b
	}

	segments := strings.Split(a, RawTextSeparator)
	seen := make(map[string]bool, len(segments))
	for _, s := range segments {
		seen[s] = true
	}
	for _, s := range strings.Split(b, RawTextSeparator) {
		if !seen[s] {
			segments = append(segments, s)
			seen[s] = true
		}
	}
	return strings.Join(segments, RawTextSeparator)
}
