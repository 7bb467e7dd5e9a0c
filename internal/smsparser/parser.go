package smsparser

import (
	"time"

	"cloud.google.com/go/civil"

	"github.com/Francisnampellah/MeMoney-sub000/internal/domain"
)

// Parser builds transaction records from raw messages.
type Parser struct {
	now func() time.Time
}

// Option configures a Parser.
type Option func(*Parser)

// WithClock sets the clock used for the date of messages that carry none.
func WithClock(now func() time.Time) Option {
	return func(p *Parser) {
		p.now = now
	}
}

// New returns a Parser that uses the wall clock unless overridden.
func New(opts ...Option) *Parser {
	p := &Parser{now: time.Now}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

var defaultParser = New()

// Build parses raw with the default parser.
func Build(raw string) (domain.TransactionRecord, bool) {
	return defaultParser.Build(raw)
}

// Build composes a record from every extractor. It returns false for text
// that fails validation; nothing else about the message is fatal.
func (p *Parser) Build(raw string) (domain.TransactionRecord, bool) {
	if !Validate(raw) {
		return domain.TransactionRecord{}, false
	}

	id, _ := ExtractIdentifier(raw)
	direction := ClassifyDirection(raw)
	txType := ClassifyType(raw)

	date, ok := ExtractDate(raw)
	if !ok {
		date = civil.DateOf(p.now())
	}

	return domain.TransactionRecord{
		TransactionID:       id,
		Status:              ExtractStatus(raw),
		Direction:           direction,
		Type:                txType,
		Amount:              ExtractAmount(raw),
		Currency:            domain.CurrencyTZS,
		Fee:                 ExtractFee(raw),
		GovernmentLevy:      ExtractGovernmentLevy(raw),
		CounterpartyName:    ExtractCounterpartyName(raw, direction),
		CounterpartyAccount: ExtractAccount(raw),
		Channel:             InferChannel(txType, raw),
		Date:                date,
		Time:                ExtractTime(raw),
		BalanceAfter:        ExtractBalance(raw),
		RawText:             raw,
	}, true
}
