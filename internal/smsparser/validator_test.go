package smsparser

import "testing"

func TestValidate(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want bool
	}{
		{name: "confirmation message", raw: msgBankTransfer, want: true},
		{name: "identifier then space", raw: "QWE123 anything", want: true},
		{name: "empty", raw: "", want: false},
		{name: "single token without whitespace", raw: "DBC7XYZ123", want: false},
		{name: "leading whitespace", raw: " DBC7XYZ123 Confirmed.", want: false},
		{name: "punctuation in first token", raw: "Habari! karibu tena", want: false},
		{name: "symbol first", raw: "*150*00# menu", want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Validate(tt.raw); got != tt.want {
				t.Errorf("Validate(%q) = %v, want %v", tt.raw, got, tt.want)
			}
		})
	}
}

func TestExtractIdentifier(t *testing.T) {
	id, ok := ExtractIdentifier(msgPeerSend)
	if !ok {
		t.Fatal("expected identifier to be found")
	}
	if id != "DBD8ABC456" {
		t.Errorf("identifier = %q, want %q", id, "DBD8ABC456")
	}

	if _, ok := ExtractIdentifier("no-identifier here"); ok {
		t.Error("expected no identifier for hyphenated first token")
	}
}
