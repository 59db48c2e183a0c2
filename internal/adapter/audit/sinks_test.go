package audit

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/hashicorp/go-hclog"
	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/segmentio/kafka-go"
	"github.com/srgjo27/seathold/internal/core/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeChannel struct {
	key    string
	msgs   []amqp.Publishing
	err    error
	closed bool
}

func (c *fakeChannel) PublishWithContext(_ context.Context, _, key string, _, _ bool, msg amqp.Publishing) error {
	if c.err != nil {
		return c.err
	}
	c.key = key
	c.msgs = append(c.msgs, msg)
	return nil
}

func (c *fakeChannel) Close() error {
	c.closed = true
	return nil
}

type fakeWriter struct {
	msgs []kafka.Message
	err  error
}

func (w *fakeWriter) WriteMessages(_ context.Context, msgs ...kafka.Message) error {
	if w.err != nil {
		return w.err
	}
	w.msgs = append(w.msgs, msgs...)
	return nil
}

func (w *fakeWriter) Close() error { return nil }

func TestAMQPSink_Publish(t *testing.T) {
	ch := &fakeChannel{}
	s := &AMQPSink{ch: ch, queue: "hold.transitions"}
	e := testEvent(domain.HoldConfirmed)

	require.NoError(t, s.Publish(context.Background(), e))

	require.Len(t, ch.msgs, 1)
	msg := ch.msgs[0]
	assert.Equal(t, "hold.transitions", ch.key)
	assert.Equal(t, "application/json", msg.ContentType)
	assert.Equal(t, amqp.Persistent, msg.DeliveryMode)
	assert.Equal(t, e.HoldID.String()+":CONFIRMED", msg.MessageId)

	var got domain.AuditEvent
	require.NoError(t, json.Unmarshal(msg.Body, &got))
	assert.Equal(t, e.HoldID, got.HoldID)
	assert.Equal(t, domain.HoldConfirmed, got.To)

	require.NoError(t, s.Close())
	assert.True(t, ch.closed)
}

func TestAMQPSink_PublishError(t *testing.T) {
	s := &AMQPSink{ch: &fakeChannel{err: errors.New("channel closed")}, queue: "q"}

	err := s.Publish(context.Background(), testEvent(domain.HoldExpired))
	assert.ErrorContains(t, err, "channel closed")
}

func TestKafkaSink_Publish(t *testing.T) {
	w := &fakeWriter{}
	s := &KafkaSink{writer: w}
	e := testEvent(domain.HoldCancelled)

	require.NoError(t, s.Publish(context.Background(), e))

	require.Len(t, w.msgs, 1)
	assert.Equal(t, []byte("s1"), w.msgs[0].Key)
	assert.Equal(t, e.Timestamp, w.msgs[0].Time)

	var got domain.AuditEvent
	require.NoError(t, json.Unmarshal(w.msgs[0].Value, &got))
	assert.Equal(t, e.SeatIDs, got.SeatIDs)
}

func TestKafkaSink_PublishError(t *testing.T) {
	s := &KafkaSink{writer: &fakeWriter{err: errors.New("leader not available")}}

	err := s.Publish(context.Background(), testEvent(domain.HoldCancelled))
	assert.ErrorContains(t, err, "leader not available")
}

func TestLogSink_Publish(t *testing.T) {
	var buf bytes.Buffer
	logger := hclog.New(&hclog.LoggerOptions{Output: &buf, Level: hclog.Info, JSONFormat: true})
	s := NewLogSink(logger)

	require.NoError(t, s.Publish(context.Background(), testEvent(domain.HoldExpired)))

	assert.Contains(t, buf.String(), `"to":"EXPIRED"`)
	assert.Contains(t, buf.String(), `"@module":"audit"`)
}
