package smsparser

import (
	"testing"

	"cloud.google.com/go/civil"
	"github.com/google/go-cmp/cmp"
	"github.com/shopspring/decimal"

	"github.com/Francisnampellah/MeMoney-sub000/internal/domain"
)

func TestExtractMoneyFields(t *testing.T) {
	tests := []struct {
		name    string
		extract func(string) decimal.Decimal
		raw     string
		want    string
	}{
		{"amount with grouping", ExtractAmount, "Tsh16,000.00 sent to X", "16000.00"},
		{"amount with cents", ExtractAmount, "balance is Tsh635.90", "635.90"},
		{"amount takes first marker", ExtractAmount, msgPeerSend, "5000"},
		{"amount with space after marker", ExtractAmount, "paid Tsh 2,500 to shop", "2500"},
		{"amount absent", ExtractAmount, "DBC7 Confirmed. Nothing here", "0"},
		{"fee", ExtractFee, msgBankTransfer, "975"},
		{"fee with of", ExtractFee, "Total fee of Tsh 1,500.00 charged", "1500"},
		{"fee absent", ExtractFee, msgBankShort, "0"},
		{"levy", ExtractGovernmentLevy, msgWithdrawal, "50"},
		{"levy zero", ExtractGovernmentLevy, msgBankTransfer, "0"},
		{"levy absent", ExtractGovernmentLevy, msgPeerReceive, "0"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := tt.extract(tt.raw)
			if !got.Equal(dec(tt.want)) {
				t.Errorf("got %s, want %s", got, tt.want)
			}
		})
	}
}

func TestExtractBalance(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want *decimal.Decimal
	}{
		{"present", msgBankTransfer, ptr(dec("635.90"))},
		{"present with grouping", msgPeerSend, ptr(dec("12500"))},
		{"zero is not unknown", "X1 Confirmed. Your balance is Tsh0.00.", ptr(decimal.Zero)},
		{"absent", msgBankShort, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ExtractBalance(tt.raw)
			if diff := cmp.Diff(tt.want, got, decimalComparer); diff != "" {
				t.Errorf("ExtractBalance mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestExtractDate(t *testing.T) {
	tests := []struct {
		name   string
		raw    string
		want   civil.Date
		wantOK bool
	}{
		{"two digit day", "on 12/2/26 at", civil.Date{Year: 2026, Month: 2, Day: 12}, true},
		{"single digit day", "on 2/2/26 at", civil.Date{Year: 2026, Month: 2, Day: 2}, true},
		{"two digit month", "on 05/11/25", civil.Date{Year: 2025, Month: 11, Day: 5}, true},
		{"impossible date", "on 31/2/26", civil.Date{}, false},
		{"absent", "no date here", civil.Date{}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := ExtractDate(tt.raw)
			if ok != tt.wantOK || got != tt.want {
				t.Errorf("ExtractDate(%q) = %v, %v; want %v, %v", tt.raw, got, ok, tt.want, tt.wantOK)
			}
		})
	}
}

func TestExtractTime(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want *civil.Time
	}{
		{"afternoon", "at 3:45 PM.", &civil.Time{Hour: 15, Minute: 45}},
		{"morning", "at 11:05 AM", &civil.Time{Hour: 11, Minute: 5}},
		{"lowercase meridiem", "at 9:10 am", &civil.Time{Hour: 9, Minute: 10}},
		{"midnight", "at 12:05 AM", &civil.Time{Hour: 0, Minute: 5}},
		{"noon", "at 12:30 PM", &civil.Time{Hour: 12, Minute: 30}},
		{"out of range hour", "at 13:00 PM", nil},
		{"absent", "no time", nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if diff := cmp.Diff(tt.want, ExtractTime(tt.raw)); diff != "" {
				t.Errorf("ExtractTime mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestExtractCounterpartyName(t *testing.T) {
	tests := []struct {
		name      string
		raw       string
		direction domain.Direction
		want      *string
	}{
		{"bank transfer stops at for", msgBankTransfer, domain.DirectionSent, ptr("CRDB BANK")},
		{"phone and name split", msgPeerSend, domain.DirectionSent, ptr("JOHN MUSHI")},
		{"incoming from clause", msgPeerReceive, domain.DirectionReceived, ptr("ASHA JUMA")},
		{"withdrawal falls back to from", msgWithdrawal, domain.DirectionSent, ptr("MAMA NTILIE SHOP")},
		{"name ends at end of text", "X1 Confirmed. Tsh500 paid to DUKA LA JUMA", domain.DirectionSent, ptr("DUKA LA JUMA")},
		{"word containing boundary", "X1 Tsh500 sent to PETER ONYANGO on 1/1/26", domain.DirectionSent, ptr("PETER ONYANGO")},
		{"no clause", "X1 Confirmed. Your balance is Tsh5.00", domain.DirectionSent, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ExtractCounterpartyName(tt.raw, tt.direction)
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("ExtractCounterpartyName mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestExtractAccount(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want *string
	}{
		{"bank account", msgBankTransfer, ptr("0152345678901")},
		{"account no prefix", "paid to LUKU Account No. 4401 on", ptr("4401")},
		{"absent", msgPeerSend, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if diff := cmp.Diff(tt.want, ExtractAccount(tt.raw)); diff != "" {
				t.Errorf("ExtractAccount mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestExtractStatus(t *testing.T) {
	tests := []struct {
		raw  string
		want domain.Status
	}{
		{msgBankTransfer, domain.StatusConfirmed},
		{"X1 Failed. Insufficient funds", domain.StatusFailed},
		{"X1 pending request", domain.StatusUnknown},
	}

	for _, tt := range tests {
		if got := ExtractStatus(tt.raw); got != tt.want {
			t.Errorf("ExtractStatus(%q) = %s, want %s", tt.raw, got, tt.want)
		}
	}
}
