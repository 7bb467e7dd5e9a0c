package notionsync

import (
	"time"

	"cloud.google.com/go/civil"
	"github.com/jomei/notionapi"
	"github.com/shopspring/decimal"

	"github.com/Francisnampellah/MeMoney-sub000/internal/domain"
)

// Property names of the transactions database.
const (
	PropName           = "Name"
	PropTransactionID  = "Transaction ID"
	PropDate           = "Date"
	PropTime           = "Time"
	PropAmount         = "Amount"
	PropFee            = "Fee"
	PropGovernmentLevy = "Government Levy"
	PropBalanceAfter   = "Balance After"
	PropCurrency       = "Currency"
	PropType           = "Type"
	PropDirection      = "Direction"
	PropChannel        = "Channel"
	PropStatus         = "Status"
	PropCounterparty   = "Counterparty"
	PropAccount        = "Account"
	PropRawText        = "Raw Text"
)

// Notion caps a single rich text object at 2000 characters.
const maxRichTextLen = 2000

// RecordToNotionProperties maps a record onto a database row. Optional
// fields are left out rather than written empty.
func RecordToNotionProperties(r domain.TransactionRecord) notionapi.Properties {
	props := notionapi.Properties{
		PropName:           notionapi.TitleProperty{Title: text(pageTitle(r))},
		PropTransactionID:  notionapi.RichTextProperty{RichText: text(r.TransactionID)},
		PropDate:           dateProperty(r.Date),
		PropAmount:         number(r.Amount),
		PropFee:            number(r.Fee),
		PropGovernmentLevy: number(r.GovernmentLevy),
		PropCurrency:       selectProperty(r.Currency),
		PropType:           selectProperty(string(r.Type)),
		PropDirection:      selectProperty(string(r.Direction)),
		PropChannel:        selectProperty(string(r.Channel)),
		PropStatus:         selectProperty(string(r.Status)),
	}

	if r.Time != nil {
		props[PropTime] = notionapi.RichTextProperty{RichText: text(r.Time.String()[:5])}
	}
	if r.BalanceAfter != nil {
		props[PropBalanceAfter] = number(*r.BalanceAfter)
	}
	if r.CounterpartyName != nil {
		props[PropCounterparty] = notionapi.RichTextProperty{RichText: text(*r.CounterpartyName)}
	}
	if r.CounterpartyAccount != nil {
		props[PropAccount] = notionapi.RichTextProperty{RichText: text(*r.CounterpartyAccount)}
	}
	if r.RawText != "" {
		props[PropRawText] = notionapi.RichTextProperty{RichText: text(truncate(r.RawText, maxRichTextLen))}
	}
	return props
}

func pageTitle(r domain.TransactionRecord) string {
	if r.CounterpartyName != nil {
		return *r.CounterpartyName
	}
	return string(r.Type)
}

func text(content string) []notionapi.RichText {
	return []notionapi.RichText{{
		Type: notionapi.ObjectTypeText,
		Text: &notionapi.Text{Content: content},
	}}
}

func number(d decimal.Decimal) notionapi.NumberProperty {
	return notionapi.NumberProperty{Number: d.InexactFloat64()}
}

func selectProperty(name string) notionapi.SelectProperty {
	return notionapi.SelectProperty{Select: notionapi.Option{Name: name}}
}

func dateProperty(d civil.Date) notionapi.DateProperty {
	start := notionapi.Date(d.In(time.UTC))
	return notionapi.DateProperty{Date: &notionapi.DateObject{Start: &start}}
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}

// extractTransactionID reads the id back from a queried page.
// Returns "" for rows written by hand.
func extractTransactionID(page notionapi.Page) string {
	prop, ok := page.Properties[PropTransactionID]
	if !ok {
		return ""
	}
	if rt, ok := prop.(*notionapi.RichTextProperty); ok && len(rt.RichText) > 0 {
		if rt.RichText[0].PlainText != "" {
			return rt.RichText[0].PlainText
		}
		if rt.RichText[0].Text != nil {
			return rt.RichText[0].Text.Content
		}
	}
	return ""
}
