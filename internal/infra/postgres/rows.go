package postgres

import (
	"fmt"

	"cloud.google.com/go/civil"
	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"

	"github.com/Francisnampellah/MeMoney-sub000/internal/domain"
)

// Numeric and date columns travel as text so decimal and civil values keep
// their exact form.
const selectColumns = `
	transaction_id, status, direction, transaction_type, channel,
	amount::text, currency, fee::text, government_levy::text, balance_after::text,
	counterparty_name, counterparty_account,
	to_char(transaction_date, 'YYYY-MM-DD'), transaction_time, raw_text`

// dbRow is the scanned form of a transactions row.
type dbRow struct {
	TransactionID       string
	Status              string
	Direction           string
	Type                string
	Channel             string
	Amount              string
	Currency            string
	Fee                 string
	GovernmentLevy      string
	BalanceAfter        *string
	CounterpartyName    *string
	CounterpartyAccount *string
	Date                string
	Time                *string
	RawText             string
}

func scanRow(row pgx.Row) (dbRow, error) {
	var r dbRow
	err := row.Scan(
		&r.TransactionID, &r.Status, &r.Direction, &r.Type, &r.Channel,
		&r.Amount, &r.Currency, &r.Fee, &r.GovernmentLevy, &r.BalanceAfter,
		&r.CounterpartyName, &r.CounterpartyAccount,
		&r.Date, &r.Time, &r.RawText,
	)
	return r, err
}

func (r dbRow) toRecord() (domain.TransactionRecord, error) {
	amount, err := decimal.NewFromString(r.Amount)
	if err != nil {
		return domain.TransactionRecord{}, fmt.Errorf("amount: %w", err)
	}
	fee, err := decimal.NewFromString(r.Fee)
	if err != nil {
		return domain.TransactionRecord{}, fmt.Errorf("fee: %w", err)
	}
	levy, err := decimal.NewFromString(r.GovernmentLevy)
	if err != nil {
		return domain.TransactionRecord{}, fmt.Errorf("government_levy: %w", err)
	}
	date, err := civil.ParseDate(r.Date)
	if err != nil {
		return domain.TransactionRecord{}, fmt.Errorf("transaction_date: %w", err)
	}

	rec := domain.TransactionRecord{
		TransactionID:       r.TransactionID,
		Status:              domain.Status(r.Status),
		Direction:           domain.Direction(r.Direction),
		Type:                domain.TransactionType(r.Type),
		Amount:              amount,
		Currency:            r.Currency,
		Fee:                 fee,
		GovernmentLevy:      levy,
		CounterpartyName:    r.CounterpartyName,
		CounterpartyAccount: r.CounterpartyAccount,
		Channel:             domain.Channel(r.Channel),
		Date:                date,
		RawText:             r.RawText,
	}
	if r.BalanceAfter != nil {
		balance, err := decimal.NewFromString(*r.BalanceAfter)
		if err != nil {
			return domain.TransactionRecord{}, fmt.Errorf("balance_after: %w", err)
		}
		rec.BalanceAfter = &balance
	}
	if r.Time != nil {
		t, err := civil.ParseTime(*r.Time)
		if err != nil {
			return domain.TransactionRecord{}, fmt.Errorf("transaction_time: %w", err)
		}
		rec.Time = &t
	}
	return rec, nil
}

// upsertArgs lists the parameters of upsertSQL for one record.
func upsertArgs(r domain.TransactionRecord, parsingRunID string) []any {
	var balance, tm *string
	if r.BalanceAfter != nil {
		s := r.BalanceAfter.String()
		balance = &s
	}
	if r.Time != nil {
		s := r.Time.String()
		tm = &s
	}
	return []any{
		r.TransactionID, parsingRunID,
		string(r.Status), string(r.Direction), string(r.Type), string(r.Channel),
		r.Amount.String(), r.Currency, r.Fee.String(), r.GovernmentLevy.String(), balance,
		r.CounterpartyName, r.CounterpartyAccount,
		r.Date.String(), tm, r.RawText,
	}
}
