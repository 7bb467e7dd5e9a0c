package notionsync

import (
	"strings"
	"testing"

	"cloud.google.com/go/civil"
	"github.com/jomei/notionapi"
	"github.com/shopspring/decimal"
)

func TestRecordToNotionProperties(t *testing.T) {
	name := "JOHN MUSHI"
	balance := decimal.RequireFromString("635.90")
	r := record("A1")
	r.CounterpartyName = &name
	r.BalanceAfter = &balance
	r.Time = &civil.Time{Hour: 14, Minute: 5}
	r.RawText = strings.Repeat("x", 2500)

	props := RecordToNotionProperties(r)

	title := props[PropName].(notionapi.TitleProperty)
	if got := title.Title[0].Text.Content; got != name {
		t.Errorf("title = %q", got)
	}
	if got := props[PropBalanceAfter].(notionapi.NumberProperty).Number; got != 635.9 {
		t.Errorf("balance = %v", got)
	}
	if got := props[PropTime].(notionapi.RichTextProperty).RichText[0].Text.Content; got != "14:05" {
		t.Errorf("time = %q", got)
	}
	if got := len(props[PropRawText].(notionapi.RichTextProperty).RichText[0].Text.Content); got != maxRichTextLen {
		t.Errorf("raw text length = %d", got)
	}
	if got := props[PropType].(notionapi.SelectProperty).Select.Name; got != "MoneyTransfer" {
		t.Errorf("type = %q", got)
	}
}

func TestRecordToNotionProperties_OptionalFieldsOmitted(t *testing.T) {
	props := RecordToNotionProperties(record("A1"))

	for _, key := range []string{PropBalanceAfter, PropCounterparty, PropAccount, PropTime, PropRawText} {
		if _, ok := props[key]; ok {
			t.Errorf("%s should be absent", key)
		}
	}
	title := props[PropName].(notionapi.TitleProperty)
	if got := title.Title[0].Text.Content; got != "MoneyTransfer" {
		t.Errorf("title falls back to type, got %q", got)
	}
}

func TestExtractTransactionID(t *testing.T) {
	if got := extractTransactionID(existingPage("p", "A1")); got != "A1" {
		t.Errorf("got %q", got)
	}
	if got := extractTransactionID(notionapi.Page{}); got != "" {
		t.Errorf("got %q for page without properties", got)
	}
}
