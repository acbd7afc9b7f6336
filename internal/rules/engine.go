package rules

import (
	"context"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"

	"logsentry/internal/logger"
	"logsentry/internal/metrics"
	"logsentry/internal/store"
	"logsentry/internal/transform/syslog"
	"logsentry/pkg/models"
)

// Rule is one fixed, compiled detection. Evaluate reads the event
// store and returns zero or more alerts; it must not write alerts
// itself.
type Rule interface {
	Name() string
	Evaluate(ctx context.Context, st *store.Store) ([]models.Alert, error)
}

// AlertMirror receives a copy of every written alert, for external
// pickup alongside the alert store.
type AlertMirror interface {
	WriteAlerts(alerts []models.Alert) error
}

// Config controls the engine cadence and suppression window.
type Config struct {
	Interval        time.Duration
	Cooldown        time.Duration
	SuppressionSize int
}

// Engine evaluates the rule set on a fixed global cadence. Rules run
// sequentially within a cycle and fail independently; a cycle with an
// unreachable store degrades to a no-op and the next tick retries.
type Engine struct {
	store    *store.Store
	rules    []Rule
	interval time.Duration
	suppress *expirable.LRU[string, struct{}]
	metrics  *metrics.EngineMetrics
	mirror   AlertMirror
	now      func() time.Time
}

// NewEngine creates a rule engine over the given store and rule set.
func NewEngine(st *store.Store, ruleSet []Rule, cfg Config, m *metrics.EngineMetrics) *Engine {
	if cfg.Interval <= 0 {
		cfg.Interval = 30 * time.Second
	}
	if cfg.Cooldown <= 0 {
		cfg.Cooldown = 2 * time.Minute
	}
	if cfg.SuppressionSize <= 0 {
		cfg.SuppressionSize = 4096
	}

	return &Engine{
		store:    st,
		rules:    ruleSet,
		interval: cfg.Interval,
		suppress: expirable.NewLRU[string, struct{}](cfg.SuppressionSize, nil, cfg.Cooldown),
		metrics:  m,
		now:      time.Now,
	}
}

// SetMirror attaches an optional alert mirror.
func (e *Engine) SetMirror(m AlertMirror) {
	e.mirror = m
}

// Run evaluates one cycle immediately and then on every interval tick
// until the context is cancelled.
func (e *Engine) Run(ctx context.Context) error {
	logger.Infof("Rule engine started: %d rules, interval %s", len(e.rules), e.interval)

	ticker := time.NewTicker(e.interval)
	defer ticker.Stop()

	e.RunCycle(ctx)
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			e.RunCycle(ctx)
		}
	}
}

// RunCycle evaluates every rule once.
func (e *Engine) RunCycle(ctx context.Context) {
	if e.metrics != nil {
		e.metrics.CyclesTotal.Inc()
	}

	if err := e.store.Ping(ctx); err != nil {
		if e.metrics != nil {
			e.metrics.DegradedCycles.Inc()
		}
		logger.Errorf("Store unavailable, skipping cycle: %v", err)
		return
	}

	for _, r := range e.rules {
		alerts, err := r.Evaluate(ctx, e.store)
		if err != nil {
			if e.metrics != nil {
				e.metrics.RuleErrors.WithLabelValues(r.Name()).Inc()
			}
			logger.Errorf("Rule %q failed: %v", r.Name(), err)
			continue
		}
		for _, a := range alerts {
			e.emit(ctx, a)
		}
	}
}

func (e *Engine) emit(ctx context.Context, a models.Alert) {
	if a.Time == "" {
		a.Time = e.now().UTC().Format(syslog.TimestampLayout)
	}

	fp := a.Fingerprint()
	if e.suppress.Contains(fp) {
		if e.metrics != nil {
			e.metrics.AlertsSuppressed.WithLabelValues(a.Rule).Inc()
		}
		logger.Debugf("Suppressed alert within cooldown: %s", fp)
		return
	}

	if err := e.store.AppendAlert(ctx, a); err != nil {
		logger.Errorf("Failed to append alert, dropping: %v", err)
		return
	}
	e.suppress.Add(fp, struct{}{})
	if e.metrics != nil {
		e.metrics.AlertsTotal.WithLabelValues(a.Rule).Inc()
	}
	logger.Infof("Alert raised rule=%q severity=%s ip=%s user=%s", a.Rule, a.Severity, a.IP, a.User)

	if e.mirror != nil {
		if err := e.mirror.WriteAlerts([]models.Alert{a}); err != nil {
			logger.Warnf("Failed to mirror alert: %v", err)
		}
	}
}
