package pipeline_test

import (
	"context"
	"os"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/shopspring/decimal"

	"github.com/Francisnampellah/MeMoney-sub000/internal/domain"
	"github.com/Francisnampellah/MeMoney-sub000/internal/pipeline"
	"github.com/Francisnampellah/MeMoney-sub000/internal/smsparser"
)

var decimalComparer = cmp.Comparer(func(a, b decimal.Decimal) bool { return a.Equal(b) })

func loadFixture(t *testing.T, name string) []string {
	t.Helper()
	data, err := os.ReadFile("testdata/" + name)
	if err != nil {
		t.Fatalf("reading fixture: %v", err)
	}
	msgs, err := pipeline.DecodeMessages(data)
	if err != nil {
		t.Fatalf("decoding fixture: %v", err)
	}
	return msgs
}

func ids(records []domain.TransactionRecord) []string {
	out := make([]string, len(records))
	for i, r := range records {
		out[i] = r.TransactionID
	}
	return out
}

func TestParseAll_Fixture(t *testing.T) {
	records := pipeline.ParseAll(loadFixture(t, "inbox.txt"))

	want := []string{"DBC7XYZ123", "DBD8ABC456", "DBE9DEF789", "DBF1GHI012"}
	if diff := cmp.Diff(want, ids(records)); diff != "" {
		t.Fatalf("record ids mismatch (-want +got):\n%s", diff)
	}

	transfer := records[0]
	if !transfer.Amount.Equal(decimal.RequireFromString("16000.00")) {
		t.Errorf("Amount = %s, want 16000.00", transfer.Amount)
	}
	if !transfer.Fee.Equal(decimal.RequireFromString("975")) {
		t.Errorf("Fee = %s, want 975", transfer.Fee)
	}
	if transfer.BalanceAfter == nil || !transfer.BalanceAfter.Equal(decimal.RequireFromString("635.90")) {
		t.Errorf("BalanceAfter = %v, want 635.90", transfer.BalanceAfter)
	}
	if strings.Count(transfer.RawText, "DBC7XYZ123") != 2 {
		t.Errorf("merged RawText should carry both observations, got %q", transfer.RawText)
	}

	if records[2].Direction != domain.DirectionReceived {
		t.Errorf("receive direction = %s", records[2].Direction)
	}
	if records[3].Type != domain.TypeWithdrawal || records[3].Channel != domain.ChannelAgent {
		t.Errorf("withdrawal classified as %s via %s", records[3].Type, records[3].Channel)
	}
}

func TestParseAll_JSONExportMatchesText(t *testing.T) {
	fromText := pipeline.ParseAll(loadFixture(t, "inbox.txt"))
	fromJSON := pipeline.ParseAll(loadFixture(t, "inbox.json"))

	if diff := cmp.Diff(fromText, fromJSON, decimalComparer); diff != "" {
		t.Errorf("JSON export parsed differently (-text +json):\n%s", diff)
	}
}

func TestParseAll_DuplicateMessage(t *testing.T) {
	m := "DBD8ABC456 Confirmed. Tsh5,000.00 sent to 255712345678 - JOHN MUSHI on 13/2/26 at 9:10 AM."

	records := pipeline.ParseAll([]string{m, m})
	if len(records) != 1 {
		t.Fatalf("got %d records, want 1", len(records))
	}
	if records[0].RawText != m {
		t.Errorf("identical observations should keep one raw text, got %q", records[0].RawText)
	}
}

func TestParseAll_Empty(t *testing.T) {
	if got := pipeline.ParseAll(nil); len(got) != 0 {
		t.Errorf("ParseAll(nil) = %d records", len(got))
	}
	if got := pipeline.ParseAll([]string{"", "hello", "!!"}); len(got) != 0 {
		t.Errorf("invalid-only batch produced %d records", len(got))
	}
}

func TestParseAllConcurrent_MatchesSequential(t *testing.T) {
	msgs := loadFixture(t, "inbox.txt")
	// Repeat the batch so workers interleave.
	var batch []string
	for i := 0; i < 25; i++ {
		batch = append(batch, msgs...)
	}

	want := pipeline.ParseAll(batch)
	for _, workers := range []int{1, 2, 8} {
		got, err := pipeline.ParseAllConcurrent(context.Background(), batch, workers)
		if err != nil {
			t.Fatalf("workers=%d: %v", workers, err)
		}
		if diff := cmp.Diff(want, got, decimalComparer); diff != "" {
			t.Errorf("workers=%d: mismatch (-sequential +concurrent):\n%s", workers, diff)
		}
	}
}

func TestRunBatch_Counts(t *testing.T) {
	res, err := pipeline.RunBatch(context.Background(), smsparser.New(), loadFixture(t, "inbox.txt"), 4)
	if err != nil {
		t.Fatalf("RunBatch failed: %v", err)
	}
	if res.Accepted != 5 || res.Rejected != 1 {
		t.Errorf("accepted=%d rejected=%d, want 5 and 1", res.Accepted, res.Rejected)
	}
	if res.Report.DuplicatesCollapsed != 1 || len(res.Records) != 4 {
		t.Errorf("report = %+v with %d records", res.Report, len(res.Records))
	}
}
