package events

import (
	"context"
	"encoding/json"
	"testing"

	"go-recruitment-workflow/internal/domain"

	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingWriter struct {
	msgs []kafka.Message
}

func (w *recordingWriter) WriteMessages(ctx context.Context, msgs ...kafka.Message) error {
	w.msgs = append(w.msgs, msgs...)
	return nil
}

func (w *recordingWriter) Close() error { return nil }

func TestPublishKeysBySubject(t *testing.T) {
	w := &recordingWriter{}
	p := newProducerWithWriter(w)

	err := p.Publish(context.Background(), domain.Event{
		Type:    domain.EventApplicationStatusChanged,
		Subject: "cand-1",
		ActorID: "cons-1",
		Data:    map[string]any{"to": "APPROVED"},
	})
	require.NoError(t, err)
	require.Len(t, w.msgs, 1)

	msg := w.msgs[0]
	assert.Equal(t, "cand-1", string(msg.Key))
	assert.Equal(t, "application.status_changed", string(msg.Headers[0].Value))

	var got domain.Event
	require.NoError(t, json.Unmarshal(msg.Value, &got))
	assert.NotEmpty(t, got.ID)
	assert.False(t, got.OccurredAt.IsZero())
	assert.Equal(t, "cons-1", got.ActorID)
}

func TestPublishWithoutBrokersIsNoop(t *testing.T) {
	var nilProducer *Producer
	assert.NoError(t, nilProducer.Publish(context.Background(), domain.Event{Type: domain.EventUserProvisioned}))

	p := NewProducer(Config{})
	assert.NoError(t, p.Publish(context.Background(), domain.Event{Type: domain.EventUserProvisioned}))
	assert.NoError(t, p.Close())
}
