package rules

import (
	"context"
	"fmt"
	"strconv"

	"logsentry/internal/logger"
	"logsentry/internal/store"
	"logsentry/pkg/models"
)

const offHoursCursor = "offhours_admin"

// OffHoursConfig controls the off-hours account creation rule. The
// business-hours interval is half-open: [Start, End).
type OffHoursConfig struct {
	Start int
	End   int
}

// OffHours flags account creation events whose timestamp falls outside
// business hours. A persisted watermark keeps each qualifying event
// from re-alerting on later cycles.
type OffHours struct {
	start int
	end   int
}

// NewOffHours creates the rule with a default 09:00-18:00 interval.
func NewOffHours(cfg OffHoursConfig) *OffHours {
	if cfg.Start == 0 && cfg.End == 0 {
		cfg.Start = 9
		cfg.End = 18
	}
	return &OffHours{start: cfg.Start, end: cfg.End}
}

// Name implements Rule.
func (r *OffHours) Name() string {
	return "Admin created off-hours T1136"
}

// Evaluate implements Rule.
func (r *OffHours) Evaluate(ctx context.Context, st *store.Store) ([]models.Alert, error) {
	cursor, err := st.Cursor(ctx, offHoursCursor)
	if err != nil {
		return nil, err
	}

	events, err := st.EventsByActionAfter(ctx, models.ActionCreateUser, cursor)
	if err != nil {
		return nil, err
	}

	var out []models.Alert
	maxID := cursor
	for _, ev := range events {
		if ev.ID > maxID {
			maxID = ev.ID
		}
		hour, ok := hourOf(ev.Timestamp)
		if !ok {
			logger.Debugf("Unparseable timestamp on createuser event %d: %q", ev.ID, ev.Timestamp)
			continue
		}
		if hour >= r.start && hour < r.end {
			continue
		}
		out = append(out, models.Alert{
			Rule:     r.Name(),
			Severity: models.SeverityMedium,
			IP:       ev.IP,
			User:     ev.User,
			Host:     ev.Host,
			Details:  fmt.Sprintf("User creation outside business hours at %s", ev.Timestamp),
		})
	}

	if maxID > cursor {
		if err := st.SetCursor(ctx, offHoursCursor, maxID); err != nil {
			return out, err
		}
	}
	return out, nil
}

// hourOf extracts the hour field from an ISO-8601 timestamp
// (positions 11-12, after "YYYY-MM-DDT").
func hourOf(ts string) (int, bool) {
	if len(ts) < 13 {
		return 0, false
	}
	h, err := strconv.Atoi(ts[11:13])
	if err != nil || h < 0 || h > 23 {
		return 0, false
	}
	return h, true
}
