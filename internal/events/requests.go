package events

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/nats-io/nats.go"

	"github.com/Francisnampellah/MeMoney-sub000/internal/logger"
)

// IngestRequest asks a worker to ingest one export.
type IngestRequest struct {
	GCSURI string `json:"gcs_uri"`
}

// Subscriber is the subset of *nats.Conn used to receive requests.
type Subscriber interface {
	Subscribe(subject string, cb nats.MsgHandler) (*nats.Subscription, error)
}

// SubscribeIngestRequests calls handle for every well-formed request on
// subject. Malformed payloads and handler errors are logged and dropped;
// if the message expects a reply it gets {"error": ...} or {"status":"accepted"}.
func SubscribeIngestRequests(ctx context.Context, conn Subscriber, subject string, handle func(context.Context, IngestRequest) error) (*nats.Subscription, error) {
	log := logger.FromContext(ctx)

	sub, err := conn.Subscribe(subject, func(m *nats.Msg) {
		var req IngestRequest
		if err := json.Unmarshal(m.Data, &req); err != nil || req.GCSURI == "" {
			log.Warn().Err(err).Str("subject", m.Subject).Msg("Dropping malformed ingest request")
			respond(m, map[string]string{"error": "expected {\"gcs_uri\": \"gs://...\"}"})
			return
		}
		if err := handle(ctx, req); err != nil {
			log.Error().Err(err).Str("gcs_uri", req.GCSURI).Msg("Ingest request rejected")
			respond(m, map[string]string{"error": err.Error()})
			return
		}
		respond(m, map[string]string{"status": "accepted"})
	})
	if err != nil {
		return nil, fmt.Errorf("SubscribeIngestRequests: %w", err)
	}
	return sub, nil
}

func respond(m *nats.Msg, body map[string]string) {
	if m.Reply == "" || m.Sub == nil {
		return
	}
	data, _ := json.Marshal(body)
	_ = m.Respond(data)
}
