package pipeline

import (
	"context"
	"time"

	"logsentry/internal/logger"
	"logsentry/internal/metrics"
	"logsentry/internal/store"
	"logsentry/internal/transform/syslog"
)

// Source yields one opaque payload per inbound message. A nil payload
// with a nil error means nothing arrived before the source's own
// timeout; the loop just reads again.
type Source interface {
	Receive(ctx context.Context) ([]byte, error)
	Close() error
}

// Ingest is the write path: receive, normalize, append. Events are
// processed strictly one at a time; there is no buffering beyond the
// transport's own socket buffer, and a failed append drops the event.
type Ingest struct {
	source  Source
	parser  *syslog.Parser
	store   *store.Store
	metrics *metrics.IngestMetrics
}

// NewIngest creates the ingest pipeline.
func NewIngest(source Source, parser *syslog.Parser, st *store.Store, m *metrics.IngestMetrics) *Ingest {
	return &Ingest{
		source:  source,
		parser:  parser,
		store:   st,
		metrics: m,
	}
}

// Run blocks on the receive loop until the context is cancelled.
func (p *Ingest) Run(ctx context.Context) error {
	logger.Infof("Ingest pipeline started")

	for {
		payload, err := p.source.Receive(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			logger.Errorf("Failed to receive payload: %v", err)
			time.Sleep(500 * time.Millisecond)
			continue
		}
		if payload == nil {
			continue
		}
		p.handle(ctx, payload)
	}
}

func (p *Ingest) handle(ctx context.Context, payload []byte) {
	if p.metrics != nil {
		p.metrics.DatagramsTotal.Inc()
	}

	event, extracted := p.parser.Parse(payload)
	if !extracted {
		// Degraded record: stored anyway, raw line preserved.
		if p.metrics != nil {
			p.metrics.EmptyExtraction.Inc()
		}
		logger.Debugf("No recognizable fields in line: %.80s", event.Sidecar.Raw)
	}

	if err := p.store.AppendEvent(ctx, event); err != nil {
		if p.metrics != nil {
			p.metrics.StoreErrors.Inc()
		}
		logger.Errorf("Failed to append event, dropping: %v", err)
		return
	}
	if p.metrics != nil {
		p.metrics.EventsStored.Inc()
	}
	logger.Debugf("Stored event action=%s status=%s user=%s ip=%s", event.Action, event.Status, event.User, event.IP)
}

// Close releases the underlying source.
func (p *Ingest) Close() error {
	return p.source.Close()
}
