package domain

import (
	"cloud.google.com/go/civil"
	"github.com/shopspring/decimal"
)

// CurrencyTZS is the only currency used by the supported message family.
const CurrencyTZS = "TZS"

// Status is the confirmation state reported by the operator.
type Status string

const (
	StatusConfirmed Status = "Confirmed"
	StatusFailed    Status = "Failed"
	StatusUnknown   Status = "Unknown"
)

// Direction says whether money left or entered the wallet.
type Direction string

const (
	DirectionSent     Direction = "Sent"
	DirectionReceived Direction = "Received"
)

// TransactionType is the closed vocabulary assigned by the classifier.
type TransactionType string

const (
	TypeMoneyTransfer     TransactionType = "MoneyTransfer"
	TypeWithdrawal        TransactionType = "Withdrawal"
	TypeBillPayment       TransactionType = "BillPayment"
	TypeUtilityPayment    TransactionType = "UtilityPayment"
	TypeLoan              TransactionType = "Loan"
	TypeLoanRepayment     TransactionType = "LoanRepayment"
	TypeSavingsWithdrawal TransactionType = "SavingsWithdrawal"
	TypeSavingsDeposit    TransactionType = "SavingsDeposit"
	TypeAirtime           TransactionType = "Airtime"
	TypeBundles           TransactionType = "Bundles"
	TypeInsurance         TransactionType = "Insurance"
	TypeBetting           TransactionType = "Betting"
	TypeBalanceCheck      TransactionType = "BalanceCheck"
	TypeOther             TransactionType = "Other"
	TypeUnknown           TransactionType = "Unknown"
)

// TransactionTypes lists every member of the type vocabulary.
var TransactionTypes = []TransactionType{
	TypeMoneyTransfer, TypeWithdrawal, TypeBillPayment, TypeUtilityPayment,
	TypeLoan, TypeLoanRepayment, TypeSavingsWithdrawal, TypeSavingsDeposit,
	TypeAirtime, TypeBundles, TypeInsurance, TypeBetting, TypeBalanceCheck,
	TypeOther, TypeUnknown,
}

// Valid reports whether t belongs to the closed vocabulary.
func (t TransactionType) Valid() bool {
	for _, known := range TransactionTypes {
		if t == known {
			return true
		}
	}
	return false
}

// Specific reports whether t carries more information than a plain transfer.
// Reconciliation prefers specific types over MoneyTransfer and Unknown.
func (t TransactionType) Specific() bool {
	return t != TypeMoneyTransfer && t != TypeUnknown && t != ""
}

// Channel is the inferred settlement medium.
type Channel string

const (
	ChannelMobile   Channel = "Mobile"
	ChannelVisa     Channel = "Visa"
	ChannelBank     Channel = "Bank"
	ChannelAgent    Channel = "Agent"
	ChannelBusiness Channel = "Business"
)

// TransactionRecord is one parsed confirmation message.
// Records are values; nothing mutates a record after the builder returns it.
type TransactionRecord struct {
	TransactionID string          `json:"transaction_id"`
	Status        Status          `json:"status"`
	Direction     Direction       `json:"direction"`
	Type          TransactionType `json:"type"`

	Amount         decimal.Decimal `json:"amount"`
	Currency       string          `json:"currency"`
	Fee            decimal.Decimal `json:"fee"`
	GovernmentLevy decimal.Decimal `json:"government_levy"`

	CounterpartyName    *string `json:"counterparty_name,omitempty"`
	CounterpartyAccount *string `json:"counterparty_account,omitempty"`

	Channel Channel     `json:"channel"`
	Date    civil.Date  `json:"date"`
	Time    *civil.Time `json:"time,omitempty"`

	BalanceAfter *decimal.Decimal `json:"balance_after,omitempty"` // nil when the message carries no balance

	RawText string `json:"raw_text"`
}

// TotalCost is the amount plus fee and levy.
func (r TransactionRecord) TotalCost() decimal.Decimal {
	return r.Amount.Add(r.Fee).Add(r.GovernmentLevy)
}
