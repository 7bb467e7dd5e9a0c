package smsparser

import (
	"github.com/google/go-cmp/cmp"
	"github.com/shopspring/decimal"
)

const (
	msgBankTransfer = "DBC7XYZ123 Confirmed. Tsh16,000.00 sent to CRDB BANK for account 0152345678901 on 12/2/26 at 3:45 PM. Total fee Tsh975.00. Government levy Tsh0.00. Your M-Pesa balance is Tsh635.90."
	msgBankShort    = "DBC7XYZ123 Confirmed. Tsh16,000.00 sent to CRDB BANK on 12/2/26 at 3:45 PM."
	msgPeerSend     = "DBD8ABC456 Confirmed. Tsh5,000.00 sent to 255712345678 - JOHN MUSHI on 13/2/26 at 9:10 AM. Total fee Tsh200.00. Government levy Tsh10.00. Your M-Pesa balance is Tsh12,500.00."
	msgPeerReceive  = "DBE9DEF789 Confirmed. You have received Tsh20,000.00 from 255754000111 - ASHA JUMA on 14/2/26 at 6:30 PM. Your M-Pesa balance is Tsh32,500.00."
	msgWithdrawal   = "DBF1GHI012 Confirmed. On 15/2/26 at 11:05 AM Withdraw Tsh10,000.00 from 305412 - MAMA NTILIE SHOP. Total fee Tsh1,500.00. Government levy Tsh50.00. Your M-Pesa balance is Tsh21,000.00."
)

var decimalComparer = cmp.Comparer(func(a, b decimal.Decimal) bool { return a.Equal(b) })

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func ptr[T any](v T) *T { return &v }
