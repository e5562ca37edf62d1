package repo

import (
	"context"
	"sync"

	"jobacq/internal/platform/store"
	"jobacq/internal/services/backfill/domain"
)

// EventsTable is the clickhouse table dispatch events land in
const EventsTable = "acq_dispatch_events"

// ClickhouseEvents buffers events in memory and writes them in one batch on Flush
type ClickhouseEvents struct {
	ch store.Clickhouse

	mu  sync.Mutex
	buf []domain.Event
}

// NewEvents returns a sink on ch, or a discarding sink when ch is nil
func NewEvents(ch store.Clickhouse) domain.EventSink {
	if ch == nil {
		return discard{}
	}
	return &ClickhouseEvents{ch: ch}
}

// Add buffers ev
func (e *ClickhouseEvents) Add(ev domain.Event) {
	e.mu.Lock()
	e.buf = append(e.buf, ev)
	e.mu.Unlock()
}

// Flush writes and clears the buffer; on error the events are dropped
func (e *ClickhouseEvents) Flush(ctx context.Context) error {
	e.mu.Lock()
	evs := e.buf
	e.buf = nil
	e.mu.Unlock()
	if len(evs) == 0 {
		return nil
	}
	return e.ch.Insert(ctx, EventsTable, Rows(evs))
}

// Rows maps events to the table's column order
func Rows(evs []domain.Event) [][]any {
	rows := make([][]any, 0, len(evs))
	for _, ev := range evs {
		rows = append(rows, []any{
			ev.RunID,
			ev.At.UTC(),
			ev.Provider,
			ev.Key.String(),
			string(ev.Outcome),
			uint32(max(ev.Items, 0)),
			uint32(max(ev.Accepted, 0)),
			uint32(max(ev.Elapsed.Milliseconds(), 0)),
			ev.Err,
		})
	}
	return rows
}

type discard struct{}

func (discard) Add(domain.Event)            {}
func (discard) Flush(context.Context) error { return nil }
