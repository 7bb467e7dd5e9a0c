package main

import (
	"context"
	"strings"
	"testing"

	"github.com/Francisnampellah/MeMoney-sub000/internal/config"
)

func TestMigrate_Validation(t *testing.T) {
	tests := []struct {
		name    string
		cfg     config.Config
		wantErr string
	}{
		{"memory is a no-op", config.Config{Store: config.StoreMemory, ParseWorkers: 1}, ""},
		{"bigquery needs a project", config.Config{Store: config.StoreBigQuery, ParseWorkers: 1}, "GCP_PROJECT_ID"},
		{"postgres needs a uri", config.Config{Store: config.StorePostgres, ParseWorkers: 1}, "DATABASE_URI"},
		{"unknown store", config.Config{Store: "sqlite", ParseWorkers: 1}, "unknown STORE"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := tt.cfg
			n, err := migrate(context.Background(), &cfg, "test")
			if tt.wantErr == "" {
				if err != nil || n != 0 {
					t.Fatalf("migrate = %d, %v", n, err)
				}
				return
			}
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Fatalf("err = %v, want it to mention %q", err, tt.wantErr)
			}
		})
	}
}
