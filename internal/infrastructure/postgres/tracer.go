package postgres

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	appLogger "github.com/fastygo/planner/pkg/logger"
)

type traceKey struct{}

type traceStart struct {
	sql   string
	start time.Time
}

// QueryTracer logs statements: failures at Warn, slow ones at Info, the rest at Debug.
type QueryTracer struct {
	logger *zap.Logger
	slow   time.Duration
}

func NewQueryTracer(logger *zap.Logger, slow time.Duration) *QueryTracer {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &QueryTracer{logger: logger.Named("pgx"), slow: slow}
}

func (t *QueryTracer) TraceQueryStart(ctx context.Context, _ *pgx.Conn, data pgx.TraceQueryStartData) context.Context {
	return context.WithValue(ctx, traceKey{}, traceStart{sql: data.SQL, start: time.Now()})
}

func (t *QueryTracer) TraceQueryEnd(ctx context.Context, _ *pgx.Conn, data pgx.TraceQueryEndData) {
	started, ok := ctx.Value(traceKey{}).(traceStart)
	if !ok {
		return
	}
	elapsed := time.Since(started.start)
	log := appLogger.WithRequestID(ctx, t.logger)
	fields := []zap.Field{
		zap.String("sql", started.sql),
		zap.Duration("duration", elapsed),
		zap.Int64("rows", data.CommandTag.RowsAffected()),
	}

	switch {
	case data.Err != nil:
		log.Warn("query failed", append(fields, zap.Error(data.Err))...)
	case t.slow > 0 && elapsed >= t.slow:
		log.Info("slow query", fields...)
	default:
		log.Debug("query", fields...)
	}
}

var _ pgx.QueryTracer = (*QueryTracer)(nil)
