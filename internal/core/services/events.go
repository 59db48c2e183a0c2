package services

import (
	"context"
	"time"

	"github.com/armon/go-metrics"
	"github.com/hashicorp/go-hclog"
	"github.com/srgjo27/seathold/internal/core/domain"
	"github.com/srgjo27/seathold/internal/core/ports"
)

// transitions reports committed hold transitions downstream. Nothing here may
// fail the transition that already happened.
type transitions struct {
	audit  ports.AuditSink
	cache  ports.SeatCache
	logger hclog.Logger
}

func (t *transitions) record(ctx context.Context, h *domain.Hold, from domain.HoldStatus, actor string, at time.Time) {
	metrics.IncrCounterWithLabels([]string{"hold", "transition"}, 1, []metrics.Label{
		{Name: "to", Value: string(h.Status)},
	})

	if t.cache != nil {
		if err := t.cache.Invalidate(ctx, h.ScreeningID); err != nil {
			t.logger.Warn("failed to invalidate seat cache", "screening_id", h.ScreeningID, "error", err)
		}
	}

	if t.audit == nil {
		return
	}

	event := domain.AuditEvent{
		HoldID:      h.ID,
		ScreeningID: h.ScreeningID,
		SeatIDs:     append([]string(nil), h.SeatIDs...),
		From:        from,
		To:          h.Status,
		Timestamp:   at,
		Actor:       actor,
	}
	if err := t.audit.Publish(ctx, event); err != nil {
		t.logger.Warn("audit event dropped", "hold_id", h.ID, "to", h.Status, "error", err)
	}
}
