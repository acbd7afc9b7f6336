package rules

import (
	"context"
	"fmt"
	"time"

	"logsentry/internal/store"
	"logsentry/internal/transform/syslog"
	"logsentry/pkg/models"
)

// BruteForceConfig controls the brute-force-then-success rule.
type BruteForceConfig struct {
	Window    time.Duration
	Threshold int
}

// BruteForce flags source addresses with repeated failed logins inside
// the window followed by a success at or after the latest failure.
// A success that predates the last failure does not count.
type BruteForce struct {
	window    time.Duration
	threshold int
	now       func() time.Time
}

// NewBruteForce creates the rule with defaults of 5 failures in 5
// minutes.
func NewBruteForce(cfg BruteForceConfig) *BruteForce {
	if cfg.Window <= 0 {
		cfg.Window = 5 * time.Minute
	}
	if cfg.Threshold <= 0 {
		cfg.Threshold = 5
	}
	return &BruteForce{
		window:    cfg.Window,
		threshold: cfg.Threshold,
		now:       time.Now,
	}
}

// Name implements Rule.
func (r *BruteForce) Name() string {
	return "Brute force then success (T1110)"
}

// Evaluate implements Rule.
func (r *BruteForce) Evaluate(ctx context.Context, st *store.Store) ([]models.Alert, error) {
	since := r.now().UTC().Add(-r.window).Format(syslog.TimestampLayout)

	ips, err := st.FailureSourcesSince(ctx, since, r.threshold)
	if err != nil {
		return nil, err
	}

	var out []models.Alert
	for _, ip := range ips {
		ok, err := st.SuccessAfterLatestFailure(ctx, ip)
		if err != nil {
			return out, err
		}
		if !ok {
			continue
		}
		out = append(out, models.Alert{
			Rule:     r.Name(),
			Severity: models.SeverityHigh,
			IP:       ip,
			Details:  fmt.Sprintf("Multiple failed logins followed by success from %s", ip),
		})
	}
	return out, nil
}
