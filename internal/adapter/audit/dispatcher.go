package audit

import (
	"context"
	"errors"
	"time"

	"github.com/armon/go-metrics"
	"github.com/hashicorp/go-hclog"
	"github.com/srgjo27/seathold/internal/core/domain"
	"github.com/srgjo27/seathold/internal/core/ports"
	"go.uber.org/atomic"
)

var ErrQueueFull = errors.New("audit queue full")

const drainTimeout = 5 * time.Second

// Dispatcher decouples hold transitions from the audit backend. Publish never
// blocks; events that do not fit in the buffer are dropped and counted.
type Dispatcher struct {
	sink   ports.AuditSink
	events chan domain.AuditEvent
	logger hclog.Logger

	delivered atomic.Int64
	dropped   atomic.Int64
	failed    atomic.Int64
}

func NewDispatcher(sink ports.AuditSink, buffer int, logger hclog.Logger) *Dispatcher {
	if buffer <= 0 {
		buffer = 1
	}
	if logger == nil {
		logger = hclog.NewNullLogger()
	}
	return &Dispatcher{
		sink:   sink,
		events: make(chan domain.AuditEvent, buffer),
		logger: logger.Named("audit"),
	}
}

func (d *Dispatcher) Publish(_ context.Context, event domain.AuditEvent) error {
	select {
	case d.events <- event:
		return nil
	default:
		d.dropped.Inc()
		metrics.IncrCounter([]string{"audit", "dropped"}, 1)
		return ErrQueueFull
	}
}

// Run forwards events to the sink until ctx is done, then flushes what is
// still buffered within drainTimeout.
func (d *Dispatcher) Run(ctx context.Context) {
	for {
		select {
		case e := <-d.events:
			d.forward(ctx, e)
		case <-ctx.Done():
			d.drain(context.WithoutCancel(ctx))
			return
		}
	}
}

func (d *Dispatcher) drain(ctx context.Context) {
	ctx, cancel := context.WithTimeout(ctx, drainTimeout)
	defer cancel()

	for {
		select {
		case e := <-d.events:
			d.forward(ctx, e)
		default:
			return
		}
	}
}

func (d *Dispatcher) forward(ctx context.Context, e domain.AuditEvent) {
	if err := d.sink.Publish(ctx, e); err != nil {
		d.failed.Inc()
		metrics.IncrCounter([]string{"audit", "failed"}, 1)
		d.logger.Warn("failed to deliver audit event", "hold_id", e.HoldID, "to", e.To, "error", err)
		return
	}
	d.delivered.Inc()
}

func (d *Dispatcher) Delivered() int64 { return d.delivered.Load() }
func (d *Dispatcher) Dropped() int64   { return d.dropped.Load() }
func (d *Dispatcher) Failed() int64    { return d.failed.Load() }
