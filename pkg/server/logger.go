package server

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/google/uuid"
)

// JobLogWriter persists one structured log record for a batch job.
// *batch.PostgresStore implements it; the in-memory store does not, in which
// case job logs go to the process logger only.
type JobLogWriter interface {
	WriteJobLog(ctx context.Context, jobID uuid.UUID, at time.Time, level, message string, metadata []byte) error
}

// JobLogHandler is a slog.Handler scoped to one batch job. Every record is
// written to the job's persisted log trail and mirrored to the process
// handler, so a poll of a finished job can be debugged from the database
// alone.
type JobLogHandler struct {
	writer JobLogWriter
	jobID  uuid.UUID
	next   slog.Handler
	attrs  []slog.Attr
}

func NewJobLogHandler(writer JobLogWriter, jobID uuid.UUID, next slog.Handler) *JobLogHandler {
	return &JobLogHandler{writer: writer, jobID: jobID, next: next}
}

func (h *JobLogHandler) Enabled(ctx context.Context, level slog.Level) bool {
	return h.next == nil || h.next.Enabled(ctx, level)
}

func (h *JobLogHandler) Handle(ctx context.Context, r slog.Record) error {
	meta := make(map[string]interface{}, r.NumAttrs()+len(h.attrs))
	for _, a := range h.attrs {
		meta[a.Key] = a.Value.Any()
	}
	r.Attrs(func(a slog.Attr) bool {
		meta[a.Key] = a.Value.Any()
		return true
	})
	metaJSON, err := json.Marshal(meta)
	if err != nil {
		metaJSON = []byte("{}")
	}

	// Inserts use a background context so the trail survives a cancelled
	// request context.
	if err := h.writer.WriteJobLog(context.Background(), h.jobID, r.Time, r.Level.String(), r.Message, metaJSON); err != nil && h.next != nil {
		rec := slog.NewRecord(time.Now(), slog.LevelWarn, "failed to persist job log", 0)
		rec.AddAttrs(slog.String("error", err.Error()))
		_ = h.next.Handle(ctx, rec)
	}

	if h.next != nil {
		return h.next.Handle(ctx, r)
	}
	return nil
}

func (h *JobLogHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	out := *h
	out.attrs = append(append([]slog.Attr{}, h.attrs...), attrs...)
	if h.next != nil {
		out.next = h.next.WithAttrs(attrs)
	}
	return &out
}

func (h *JobLogHandler) WithGroup(name string) slog.Handler {
	out := *h
	if h.next != nil {
		out.next = h.next.WithGroup(name)
	}
	return &out
}
