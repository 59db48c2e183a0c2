package audit

import (
	"context"
	"strings"

	"github.com/hashicorp/go-hclog"
	"github.com/srgjo27/seathold/internal/core/domain"
)

// LogSink writes audit events to the service log.
type LogSink struct {
	logger hclog.Logger
}

func NewLogSink(logger hclog.Logger) *LogSink {
	return &LogSink{logger: logger.Named("audit")}
}

func (s *LogSink) Publish(_ context.Context, e domain.AuditEvent) error {
	s.logger.Info("hold transition",
		"hold_id", e.HoldID,
		"screening_id", e.ScreeningID,
		"seats", strings.Join(e.SeatIDs, ","),
		"from", e.From,
		"to", e.To,
		"actor", e.Actor,
		"at", e.Timestamp,
	)
	return nil
}
