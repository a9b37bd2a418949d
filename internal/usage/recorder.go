package usage

import (
	"context"
	"time"

	"ecomagent/internal/content"
	"ecomagent/internal/infra"
	"ecomagent/internal/sqlinline"
)

const recordTimeout = 2 * time.Second

// Event is the metadata kept for one generation call. It never contains the
// prompt or the generated text.
type Event struct {
	RequestID      string
	Kind           content.Kind
	Model          string
	Success        bool
	ErrorKind      string
	UpstreamStatus int
	Latency        time.Duration
	Locale         string
	Country        string
}

// Recorder stores generation events. Implementations must not fail the
// request that produced the event.
type Recorder interface {
	Record(ctx context.Context, ev Event)
}

// NopRecorder drops every event. Used when no database is configured.
type NopRecorder struct{}

func (NopRecorder) Record(context.Context, Event) {}

// SQLRecorder writes events to the generation_events table.
type SQLRecorder struct {
	sql    infra.SQLExecutor
	logger infra.Logger
}

func NewSQLRecorder(sql infra.SQLExecutor, logger infra.Logger) *SQLRecorder {
	return &SQLRecorder{sql: sql, logger: logger}
}

func (r *SQLRecorder) Record(ctx context.Context, ev Event) {
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), recordTimeout)
	defer cancel()
	_, err := r.sql.Exec(ctx, sqlinline.QInsertGenerationEvent,
		ev.RequestID,
		string(ev.Kind),
		ev.Model,
		ev.Success,
		ev.ErrorKind,
		ev.UpstreamStatus,
		int(ev.Latency.Milliseconds()),
		ev.Locale,
		ev.Country,
	)
	if err != nil {
		r.logger.Warn().Err(err).Str("kind", string(ev.Kind)).Str("request_id", ev.RequestID).Msg("usage: failed to record generation event")
	}
}

var (
	_ Recorder = NopRecorder{}
	_ Recorder = (*SQLRecorder)(nil)
)
