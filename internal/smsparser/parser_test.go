package smsparser

import (
	"testing"
	"time"

	"cloud.google.com/go/civil"
	"github.com/google/go-cmp/cmp"
	"github.com/shopspring/decimal"

	"github.com/Francisnampellah/MeMoney-sub000/internal/domain"
)

func fixedClock() time.Time {
	return time.Date(2026, time.March, 1, 10, 0, 0, 0, time.UTC)
}

func TestParser_Build(t *testing.T) {
	p := New(WithClock(fixedClock))

	tests := []struct {
		name string
		raw  string
		want domain.TransactionRecord
	}{
		{
			name: "bank transfer",
			raw:  msgBankTransfer,
			want: domain.TransactionRecord{
				TransactionID:       "DBC7XYZ123",
				Status:              domain.StatusConfirmed,
				Direction:           domain.DirectionSent,
				Type:                domain.TypeMoneyTransfer,
				Amount:              dec("16000.00"),
				Currency:            "TZS",
				Fee:                 dec("975"),
				GovernmentLevy:      decimal.Zero,
				CounterpartyName:    ptr("CRDB BANK"),
				CounterpartyAccount: ptr("0152345678901"),
				Channel:             domain.ChannelBank,
				Date:                civil.Date{Year: 2026, Month: 2, Day: 12},
				Time:                &civil.Time{Hour: 15, Minute: 45},
				BalanceAfter:        ptr(dec("635.90")),
				RawText:             msgBankTransfer,
			},
		},
		{
			name: "abbreviated duplicate",
			raw:  msgBankShort,
			want: domain.TransactionRecord{
				TransactionID:    "DBC7XYZ123",
				Status:           domain.StatusConfirmed,
				Direction:        domain.DirectionSent,
				Type:             domain.TypeMoneyTransfer,
				Amount:           dec("16000"),
				Currency:         "TZS",
				CounterpartyName: ptr("CRDB BANK"),
				Channel:          domain.ChannelBank,
				Date:             civil.Date{Year: 2026, Month: 2, Day: 12},
				Time:             &civil.Time{Hour: 15, Minute: 45},
				RawText:          msgBankShort,
			},
		},
		{
			name: "peer receive",
			raw:  msgPeerReceive,
			want: domain.TransactionRecord{
				TransactionID:    "DBE9DEF789",
				Status:           domain.StatusConfirmed,
				Direction:        domain.DirectionReceived,
				Type:             domain.TypeMoneyTransfer,
				Amount:           dec("20000"),
				Currency:         "TZS",
				CounterpartyName: ptr("ASHA JUMA"),
				Channel:          domain.ChannelMobile,
				Date:             civil.Date{Year: 2026, Month: 2, Day: 14},
				Time:             &civil.Time{Hour: 18, Minute: 30},
				BalanceAfter:     ptr(dec("32500")),
				RawText:          msgPeerReceive,
			},
		},
		{
			name: "agent withdrawal",
			raw:  msgWithdrawal,
			want: domain.TransactionRecord{
				TransactionID:    "DBF1GHI012",
				Status:           domain.StatusConfirmed,
				Direction:        domain.DirectionSent,
				Type:             domain.TypeWithdrawal,
				Amount:           dec("10000"),
				Currency:         "TZS",
				Fee:              dec("1500"),
				GovernmentLevy:   dec("50"),
				CounterpartyName: ptr("MAMA NTILIE SHOP"),
				Channel:          domain.ChannelAgent,
				Date:             civil.Date{Year: 2026, Month: 2, Day: 15},
				Time:             &civil.Time{Hour: 11, Minute: 5},
				BalanceAfter:     ptr(dec("21000")),
				RawText:          msgWithdrawal,
			},
		},
		{
			name: "no date uses clock",
			raw:  "QX77 Confirmed. Your M-Pesa balance is Tsh5,000.00.",
			want: domain.TransactionRecord{
				TransactionID: "QX77",
				Status:        domain.StatusConfirmed,
				Direction:     domain.DirectionSent,
				Type:          domain.TypeBalanceCheck,
				Amount:        dec("5000"),
				Currency:      "TZS",
				Channel:       domain.ChannelMobile,
				Date:          civil.Date{Year: 2026, Month: 3, Day: 1},
				BalanceAfter:  ptr(dec("5000")),
				RawText:       "QX77 Confirmed. Your M-Pesa balance is Tsh5,000.00.",
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := p.Build(tt.raw)
			if !ok {
				t.Fatalf("Build(%q) rejected a valid message", tt.raw)
			}
			if diff := cmp.Diff(tt.want, got, decimalComparer); diff != "" {
				t.Errorf("Build mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestParser_BuildRejectsInvalid(t *testing.T) {
	for _, raw := range []string{"", "Hello", " leading space", "!!! promo"} {
		if _, ok := Build(raw); ok {
			t.Errorf("Build(%q) accepted an invalid message", raw)
		}
	}
}

func TestParser_BuildIsDeterministic(t *testing.T) {
	p := New(WithClock(fixedClock))
	a, _ := p.Build(msgPeerSend)
	b, _ := p.Build(msgPeerSend)
	if diff := cmp.Diff(a, b, decimalComparer); diff != "" {
		t.Errorf("repeated Build differs (-first +second):\n%s", diff)
	}
}
