package bigquery

import (
	"fmt"
	"math/big"
	"time"

	"cloud.google.com/go/bigquery"
	"cloud.google.com/go/civil"
	"github.com/shopspring/decimal"

	"github.com/Francisnampellah/MeMoney-sub000/internal/domain"
)

// NUMERIC columns carry nine fractional digits.
const numericScale = 9

// TransactionRow is one observation of a transaction written by a parsing run.
type TransactionRow struct {
	TransactionID string `bigquery:"transaction_id"` // REQUIRED
	ParsingRunID  string `bigquery:"parsing_run_id"` // REQUIRED

	Status          string `bigquery:"status"`
	Direction       string `bigquery:"direction"`
	TransactionType string `bigquery:"transaction_type"`
	Channel         string `bigquery:"channel"`

	Amount         *big.Rat `bigquery:"amount"` // REQUIRED NUMERIC
	Currency       string   `bigquery:"currency"`
	Fee            *big.Rat `bigquery:"fee"`
	GovernmentLevy *big.Rat `bigquery:"government_levy"`
	BalanceAfter   *big.Rat `bigquery:"balance_after"` // NULLABLE NUMERIC

	CounterpartyName    bigquery.NullString `bigquery:"counterparty_name"`
	CounterpartyAccount bigquery.NullString `bigquery:"counterparty_account"`

	TransactionDate civil.Date        `bigquery:"transaction_date"`
	TransactionTime bigquery.NullTime `bigquery:"transaction_time"`

	RawText    string    `bigquery:"raw_text"`
	IngestedTS time.Time `bigquery:"ingested_ts"`
}

// RecordToRow maps a reconciled record to its table row.
func RecordToRow(r domain.TransactionRecord, parsingRunID string, ingested time.Time) *TransactionRow {
	row := &TransactionRow{
		TransactionID:   r.TransactionID,
		ParsingRunID:    parsingRunID,
		Status:          string(r.Status),
		Direction:       string(r.Direction),
		TransactionType: string(r.Type),
		Channel:         string(r.Channel),
		Amount:          r.Amount.Rat(),
		Currency:        r.Currency,
		Fee:             r.Fee.Rat(),
		GovernmentLevy:  r.GovernmentLevy.Rat(),
		TransactionDate: r.Date,
		RawText:         r.RawText,
		IngestedTS:      ingested,
	}
	if r.BalanceAfter != nil {
		row.BalanceAfter = r.BalanceAfter.Rat()
	}
	if r.CounterpartyName != nil {
		row.CounterpartyName = bigquery.NullString{StringVal: *r.CounterpartyName, Valid: true}
	}
	if r.CounterpartyAccount != nil {
		row.CounterpartyAccount = bigquery.NullString{StringVal: *r.CounterpartyAccount, Valid: true}
	}
	if r.Time != nil {
		row.TransactionTime = bigquery.NullTime{Time: *r.Time, Valid: true}
	}
	return row
}

// RowToRecord is the inverse of RecordToRow.
func RowToRecord(row *TransactionRow) (domain.TransactionRecord, error) {
	amount, err := ratToDecimal(row.Amount)
	if err != nil {
		return domain.TransactionRecord{}, fmt.Errorf("RowToRecord: amount: %w", err)
	}
	fee, err := ratToDecimal(row.Fee)
	if err != nil {
		return domain.TransactionRecord{}, fmt.Errorf("RowToRecord: fee: %w", err)
	}
	levy, err := ratToDecimal(row.GovernmentLevy)
	if err != nil {
		return domain.TransactionRecord{}, fmt.Errorf("RowToRecord: government_levy: %w", err)
	}

	r := domain.TransactionRecord{
		TransactionID:  row.TransactionID,
		Status:         domain.Status(row.Status),
		Direction:      domain.Direction(row.Direction),
		Type:           domain.TransactionType(row.TransactionType),
		Amount:         amount,
		Currency:       row.Currency,
		Fee:            fee,
		GovernmentLevy: levy,
		Channel:        domain.Channel(row.Channel),
		Date:           row.TransactionDate,
		RawText:        row.RawText,
	}

	if row.BalanceAfter != nil {
		balance, err := ratToDecimal(row.BalanceAfter)
		if err != nil {
			return domain.TransactionRecord{}, fmt.Errorf("RowToRecord: balance_after: %w", err)
		}
		r.BalanceAfter = &balance
	}
	if row.CounterpartyName.Valid {
		name := row.CounterpartyName.StringVal
		r.CounterpartyName = &name
	}
	if row.CounterpartyAccount.Valid {
		account := row.CounterpartyAccount.StringVal
		r.CounterpartyAccount = &account
	}
	if row.TransactionTime.Valid {
		t := row.TransactionTime.Time
		r.Time = &t
	}
	return r, nil
}

// ratToDecimal converts a NUMERIC value; nil reads as zero.
func ratToDecimal(r *big.Rat) (decimal.Decimal, error) {
	if r == nil {
		return decimal.Zero, nil
	}
	return decimal.NewFromString(r.FloatString(numericScale))
}
