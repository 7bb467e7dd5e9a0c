package bigquery

import (
	"math/big"
	"testing"
	"time"

	"cloud.google.com/go/civil"
	"github.com/google/go-cmp/cmp"
	"github.com/shopspring/decimal"

	"github.com/Francisnampellah/MeMoney-sub000/internal/domain"
)

var decimalComparer = cmp.Comparer(func(a, b decimal.Decimal) bool { return a.Equal(b) })

func ptr[T any](v T) *T { return &v }

func sampleRecord() domain.TransactionRecord {
	return domain.TransactionRecord{
		TransactionID:       "DBC7XYZ123",
		Status:              domain.StatusConfirmed,
		Direction:           domain.DirectionSent,
		Type:                domain.TypeMoneyTransfer,
		Amount:              decimal.RequireFromString("16000.00"),
		Currency:            domain.CurrencyTZS,
		Fee:                 decimal.RequireFromString("975"),
		CounterpartyName:    ptr("CRDB BANK"),
		CounterpartyAccount: ptr("0152345678901"),
		Channel:             domain.ChannelBank,
		Date:                civil.Date{Year: 2026, Month: 2, Day: 12},
		Time:                &civil.Time{Hour: 15, Minute: 45},
		BalanceAfter:        ptr(decimal.RequireFromString("635.90")),
		RawText:             "DBC7XYZ123 Confirmed.",
	}
}

func TestRecordRowRoundTrip(t *testing.T) {
	tests := []struct {
		name   string
		record domain.TransactionRecord
	}{
		{"all fields", sampleRecord()},
		{"optional fields absent", func() domain.TransactionRecord {
			r := sampleRecord()
			r.CounterpartyName, r.CounterpartyAccount, r.Time, r.BalanceAfter = nil, nil, nil, nil
			return r
		}()},
		{"zero balance stays present", func() domain.TransactionRecord {
			r := sampleRecord()
			r.BalanceAfter = ptr(decimal.Zero)
			return r
		}()},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			row := RecordToRow(tt.record, "run-1", time.Now())
			if row.ParsingRunID != "run-1" {
				t.Errorf("ParsingRunID = %q", row.ParsingRunID)
			}
			got, err := RowToRecord(row)
			if err != nil {
				t.Fatalf("RowToRecord: %v", err)
			}
			if diff := cmp.Diff(tt.record, got, decimalComparer); diff != "" {
				t.Errorf("round trip mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestRowToRecord_NumericScale(t *testing.T) {
	row := RecordToRow(sampleRecord(), "run-1", time.Now())
	row.Amount = big.NewRat(1, 3)

	got, err := RowToRecord(row)
	if err != nil {
		t.Fatal(err)
	}
	if want := decimal.RequireFromString("0.333333333"); !got.Amount.Equal(want) {
		t.Errorf("Amount = %s, want %s", got.Amount, want)
	}
}

func TestMergedInRange(t *testing.T) {
	early := sampleRecord()
	early.BalanceAfter = nil
	late := sampleRecord()
	late.RawText = "second observation"
	other := sampleRecord()
	other.TransactionID = "OUTSIDE"
	other.Date = civil.Date{Year: 2026, Month: 3, Day: 20}

	got := mergedInRange(
		[]domain.TransactionRecord{early, other, late},
		civil.Date{Year: 2026, Month: 2, Day: 1},
		civil.Date{Year: 2026, Month: 2, Day: 28},
	)

	if len(got) != 1 {
		t.Fatalf("got %d records, want 1", len(got))
	}
	if got[0].BalanceAfter == nil {
		t.Error("later observation's balance should fill the gap")
	}
}
