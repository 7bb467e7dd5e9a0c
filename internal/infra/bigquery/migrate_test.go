package bigquery

import (
	"strings"
	"testing"
)

func TestParseMigrationFilename(t *testing.T) {
	tests := []struct {
		filename string
		valid    bool
		version  int
		name     string
	}{
		{"0001_parsing_runs.sql", true, 1, "parsing_runs"},
		{"0012_add_index.sql", true, 12, "add_index"},
		{"001_invalid.sql", false, 0, ""},
		{"0001_test", false, 0, ""},
		{"0001.sql", false, 0, ""},
		{"invalid_0001_test.sql", false, 0, ""},
	}

	for _, tt := range tests {
		t.Run(tt.filename, func(t *testing.T) {
			version, name, ok := ParseMigrationFilename(tt.filename)
			if ok != tt.valid || version != tt.version || name != tt.name {
				t.Errorf("ParseMigrationFilename(%q) = %d, %q, %v", tt.filename, version, name, ok)
			}
		})
	}
}

func TestLoadMigrations(t *testing.T) {
	migrations, err := LoadMigrations("proj", "mobile_money")
	if err != nil {
		t.Fatalf("LoadMigrations: %v", err)
	}
	if len(migrations) < 2 {
		t.Fatalf("got %d migrations, want at least 2", len(migrations))
	}

	for i, m := range migrations {
		if i > 0 && m.Version <= migrations[i-1].Version {
			t.Errorf("migrations not sorted: %d after %d", m.Version, migrations[i-1].Version)
		}
		if strings.Contains(m.SQL, "{{") {
			t.Errorf("%04d_%s still has placeholders", m.Version, m.Name)
		}
		if !strings.Contains(m.SQL, "`proj.mobile_money.") {
			t.Errorf("%04d_%s does not target the dataset", m.Version, m.Name)
		}
	}

	again, _ := LoadMigrations("other", "dataset")
	if again[0].Checksum != migrations[0].Checksum {
		t.Error("checksum should not depend on placeholder values")
	}
}
