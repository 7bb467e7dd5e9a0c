// Package analytics aggregates reconciled records for reporting.
//
// A Snapshot is owned by the caller and built from one record slice. The
// aggregates are computed on first use and cached on the snapshot itself,
// so two snapshots never share state.
package analytics

import (
	"sort"
	"sync"

	"cloud.google.com/go/civil"
	"github.com/shopspring/decimal"

	"github.com/Francisnampellah/MeMoney-sub000/internal/domain"
)

// UnknownCounterparty buckets records without a counterparty name.
const UnknownCounterparty = "Unknown"

// Summary holds the totals over a snapshot.
type Summary struct {
	Count         int              `json:"count"`
	TotalSent     decimal.Decimal  `json:"total_sent"`
	TotalReceived decimal.Decimal  `json:"total_received"`
	TotalFees     decimal.Decimal  `json:"total_fees"`
	TotalLevies   decimal.Decimal  `json:"total_levies"`
	LatestBalance *decimal.Decimal `json:"latest_balance,omitempty"`
}

// Bucket is the total of one group of records.
type Bucket struct {
	Key   string          `json:"key"`
	Count int             `json:"count"`
	Total decimal.Decimal `json:"total"`
}

// Day is the money flow on one calendar date.
type Day struct {
	Date     civil.Date      `json:"date"`
	Count    int             `json:"count"`
	Sent     decimal.Decimal `json:"sent"`
	Received decimal.Decimal `json:"received"`
}

// Snapshot is an immutable view over a set of records.
type Snapshot struct {
	records []domain.TransactionRecord

	once           sync.Once
	summary        Summary
	byType         []Bucket
	byCounterparty []Bucket
	daily          []Day
}

// NewSnapshot copies records so later changes by the caller are not seen.
func NewSnapshot(records []domain.TransactionRecord) *Snapshot {
	return &Snapshot{records: append([]domain.TransactionRecord(nil), records...)}
}

// Records returns the records the snapshot was built from.
func (s *Snapshot) Records() []domain.TransactionRecord {
	return s.records
}

func (s *Snapshot) Summary() Summary {
	s.once.Do(s.compute)
	return s.summary
}

// ByType totals amounts per transaction type, largest first.
func (s *Snapshot) ByType() []Bucket {
	s.once.Do(s.compute)
	return s.byType
}

// ByCounterparty totals amounts per counterparty name, largest first.
func (s *Snapshot) ByCounterparty() []Bucket {
	s.once.Do(s.compute)
	return s.byCounterparty
}

// Daily returns one entry per date that has money flow, oldest first.
func (s *Snapshot) Daily() []Day {
	s.once.Do(s.compute)
	return s.daily
}

// countsAsFlow excludes records that did not move money: balance enquiries
// and operations the operator reported as failed.
func countsAsFlow(r domain.TransactionRecord) bool {
	return r.Type != domain.TypeBalanceCheck && r.Status != domain.StatusFailed
}

func (s *Snapshot) compute() {
	sum := Summary{
		Count:         len(s.records),
		TotalSent:     decimal.Zero,
		TotalReceived: decimal.Zero,
		TotalFees:     decimal.Zero,
		TotalLevies:   decimal.Zero,
	}
	types := map[string]*Bucket{}
	parties := map[string]*Bucket{}
	days := map[civil.Date]*Day{}

	var latest *domain.TransactionRecord
	for i := range s.records {
		r := &s.records[i]

		if r.BalanceAfter != nil && (latest == nil || later(*r, *latest)) {
			latest = r
		}
		if !countsAsFlow(*r) {
			continue
		}

		sum.TotalFees = sum.TotalFees.Add(r.Fee)
		sum.TotalLevies = sum.TotalLevies.Add(r.GovernmentLevy)

		day, ok := days[r.Date]
		if !ok {
			day = &Day{Date: r.Date, Sent: decimal.Zero, Received: decimal.Zero}
			days[r.Date] = day
		}
		day.Count++
		if r.Direction == domain.DirectionReceived {
			sum.TotalReceived = sum.TotalReceived.Add(r.Amount)
			day.Received = day.Received.Add(r.Amount)
		} else {
			sum.TotalSent = sum.TotalSent.Add(r.Amount)
			day.Sent = day.Sent.Add(r.Amount)
		}

		addTo(types, string(r.Type), r.Amount)
		party := UnknownCounterparty
		if r.CounterpartyName != nil && *r.CounterpartyName != "" {
			party = *r.CounterpartyName
		}
		addTo(parties, party, r.Amount)
	}

	if latest != nil {
		b := *latest.BalanceAfter
		sum.LatestBalance = &b
	}

	s.summary = sum
	s.byType = sortedBuckets(types)
	s.byCounterparty = sortedBuckets(parties)

	s.daily = make([]Day, 0, len(days))
	for _, d := range days {
		s.daily = append(s.daily, *d)
	}
	sort.Slice(s.daily, func(i, j int) bool { return s.daily[i].Date.Before(s.daily[j].Date) })
}

// later orders by date then time; a record without a time sorts before
// one with a time on the same date.
func later(a, b domain.TransactionRecord) bool {
	if a.Date != b.Date {
		return a.Date.After(b.Date)
	}
	switch {
	case a.Time == nil:
		return false
	case b.Time == nil:
		return true
	default:
		return seconds(*a.Time) > seconds(*b.Time)
	}
}

func seconds(t civil.Time) int {
	return t.Hour*3600 + t.Minute*60 + t.Second
}

func addTo(m map[string]*Bucket, key string, amount decimal.Decimal) {
	b, ok := m[key]
	if !ok {
		b = &Bucket{Key: key, Total: decimal.Zero}
		m[key] = b
	}
	b.Count++
	b.Total = b.Total.Add(amount)
}

func sortedBuckets(m map[string]*Bucket) []Bucket {
	out := make([]Bucket, 0, len(m))
	for _, b := range m {
		out = append(out, *b)
	}
	sort.Slice(out, func(i, j int) bool {
		if c := out[i].Total.Cmp(out[j].Total); c != 0 {
			return c > 0
		}
		return out[i].Key < out[j].Key
	})
	return out
}
