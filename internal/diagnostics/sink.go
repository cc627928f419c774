package diagnostics

import (
	"context"

	"go.uber.org/zap"

	"stockwarden/internal/domain"
)

// Sink accepts structured race/clamp records. This core writes to it but
// does not care how records are stored.
type Sink interface {
	Record(ctx context.Context, rec domain.DiagnosticRecord) error
}

// ZapSink writes diagnostic records to the service log. Used as the fallback
// when no durable sink is configured, and layered under the MySQL sink so
// records are visible in both places.
type ZapSink struct {
	logger *zap.Logger
}

func NewZapSink(logger *zap.Logger) *ZapSink {
	return &ZapSink{logger: logger}
}

func (s *ZapSink) Record(_ context.Context, rec domain.DiagnosticRecord) error {
	s.logger.Warn("stock diagnostic",
		zap.String("kind", string(rec.Kind)),
		zap.Int("productId", rec.ProductID),
		zap.Uint("orderId", rec.OrderID),
		zap.Int("requested", rec.Requested),
		zap.Int("available", rec.Available),
		zap.Time("at", rec.At))
	return nil
}

// Tee fans a record out to every sink. The first error is returned after all
// sinks have been tried, so a failing durable sink never silences the log.
type Tee struct {
	sinks []Sink
}

func NewTee(sinks ...Sink) *Tee {
	return &Tee{sinks: sinks}
}

func (t *Tee) Record(ctx context.Context, rec domain.DiagnosticRecord) error {
	var firstErr error
	for _, s := range t.sinks {
		if err := s.Record(ctx, rec); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}
