package rules

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"logsentry/internal/store"
	"logsentry/pkg/models"
)

const domainsCursor = "malicious_domains"

// DomainsConfig controls the known-bad-domain rule.
type DomainsConfig struct {
	Recent     int
	Indicators map[string]string
}

// Domains matches the host component of browsed URLs against a static
// reputation list of indicator substrings.
type Domains struct {
	recent     int
	indicators map[string]string
}

// NewDomains creates the rule. An empty indicator map falls back to
// the built-in reputation list.
func NewDomains(cfg DomainsConfig) *Domains {
	if cfg.Recent <= 0 {
		cfg.Recent = 20
	}
	indicators := cfg.Indicators
	if len(indicators) == 0 {
		indicators = DefaultIndicators
	}
	lowered := make(map[string]string, len(indicators))
	for k, v := range indicators {
		lowered[strings.ToLower(k)] = v
	}
	return &Domains{recent: cfg.Recent, indicators: lowered}
}

// Name implements Rule.
func (r *Domains) Name() string {
	return "Malicious website visited"
}

// Evaluate implements Rule.
func (r *Domains) Evaluate(ctx context.Context, st *store.Store) ([]models.Alert, error) {
	cursor, err := st.Cursor(ctx, domainsCursor)
	if err != nil {
		return nil, err
	}

	events, err := st.RecentByActionAfter(ctx, models.ActionBrowse, cursor, r.recent)
	if err != nil {
		return nil, err
	}

	var out []models.Alert
	maxID := cursor
	for _, ev := range events {
		if ev.ID > maxID {
			maxID = ev.ID
		}
		domain := hostOf(ev.Sidecar.URL)
		if domain == "" {
			continue
		}
		for indicator, reason := range r.indicators {
			if !strings.Contains(domain, indicator) {
				continue
			}
			out = append(out, models.Alert{
				Rule:     r.Name(),
				Severity: models.SeverityHigh,
				User:     ev.User,
				Host:     ev.Host,
				Details:  fmt.Sprintf("%s flagged: %s", domain, reason),
			})
		}
	}

	if maxID > cursor {
		if err := st.SetCursor(ctx, domainsCursor, maxID); err != nil {
			return out, err
		}
	}
	return out, nil
}

// hostOf returns the lowercased host component of a URL, or "" when no
// host is derivable. Schemeless strings have no host and never match.
func hostOf(raw string) string {
	if raw == "" {
		return ""
	}
	u, err := url.Parse(raw)
	if err != nil {
		return ""
	}
	return strings.ToLower(u.Host)
}
