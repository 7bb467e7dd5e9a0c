package app

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/Francisnampellah/MeMoney-sub000/internal/config"
	"github.com/Francisnampellah/MeMoney-sub000/internal/infra/memory"
	"github.com/Francisnampellah/MeMoney-sub000/internal/jobs"
	"github.com/Francisnampellah/MeMoney-sub000/internal/pipeline"
)

type fakeStorage struct {
	data map[string][]byte
}

func (f *fakeStorage) FetchFromGCS(ctx context.Context, gcsURI string) ([]byte, error) {
	b, ok := f.data[gcsURI]
	if !ok {
		return nil, errors.New("storage: object doesn't exist")
	}
	return b, nil
}

const export = `DBC7XYZ123 Confirmed. Tsh16,000.00 sent to CRDB BANK for account 0152345678901 on 12/2/26 at 3:45 PM. Total fee Tsh975.00. Your M-Pesa balance is Tsh635.90.
DBC7XYZ123 Confirmed. Tsh16,000.00 sent to CRDB BANK on 12/2/26 at 3:45 PM.
hello there`

func TestIngestJobHandler(t *testing.T) {
	store := memory.NewStore()
	handler := IngestJobHandler(pipeline.Deps{
		Store:   store,
		Storage: &fakeStorage{data: map[string][]byte{"gs://exports/inbox.txt": []byte(export)}},
		Workers: 2,
	})

	job := &jobs.IngestJob{JobID: "j1", GCSURI: "gs://exports/inbox.txt"}
	if err := handler(context.Background(), job); err != nil {
		t.Fatalf("handler: %v", err)
	}

	if job.ParsingRunID == "" {
		t.Error("parsing run id not recorded on the job")
	}
	if job.Accepted != 2 || job.Rejected != 1 || job.Stored != 1 {
		t.Errorf("job counts = accepted %d rejected %d stored %d", job.Accepted, job.Rejected, job.Stored)
	}
	if store.Len() != 1 {
		t.Errorf("store has %d records", store.Len())
	}

	missing := &jobs.IngestJob{JobID: "j2", GCSURI: "gs://exports/missing.txt"}
	err := handler(context.Background(), missing)
	if err == nil || !strings.Contains(err.Error(), "doesn't exist") {
		t.Errorf("err = %v", err)
	}
}

func TestOpenStore(t *testing.T) {
	store, closeStore, err := OpenStore(context.Background(), &config.Config{Store: config.StoreMemory})
	if err != nil {
		t.Fatalf("OpenStore: %v", err)
	}
	defer closeStore()
	if _, ok := store.(*memory.Store); !ok {
		t.Errorf("store = %T", store)
	}

	if _, _, err := OpenStore(context.Background(), &config.Config{Store: "sqlite"}); err == nil {
		t.Error("expected error for unknown store")
	}
}

func TestOpenPublisher_Disabled(t *testing.T) {
	p, closePub, err := OpenPublisher(&config.Config{})
	if err != nil {
		t.Fatalf("OpenPublisher: %v", err)
	}
	defer closePub()
	if p != nil {
		t.Errorf("publisher = %v, want nil without NATS_URL", p)
	}
}
