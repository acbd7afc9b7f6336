package store

import (
	"context"
	"fmt"

	"logsentry/pkg/models"
)

type sqlDataAlert struct {
	ID       int64  `db:"id"`
	Time     string `db:"time"`
	Rule     string `db:"rule"`
	Severity string `db:"severity"`
	IP       string `db:"ip"`
	User     string `db:"user"`
	Host     string `db:"host"`
	Details  string `db:"details"`
}

func (d *sqlDataAlert) model() models.Alert {
	return models.Alert{
		ID:       d.ID,
		Time:     d.Time,
		Rule:     d.Rule,
		Severity: d.Severity,
		IP:       d.IP,
		User:     d.User,
		Host:     d.Host,
		Details:  d.Details,
	}
}

// AppendAlert appends one alert inside a short-lived transaction.
// Alerts are never updated or deduplicated at the store level.
func (s *Store) AppendAlert(ctx context.Context, a models.Alert) error {
	row := sqlDataAlert{
		Time:     a.Time,
		Rule:     a.Rule,
		Severity: a.Severity,
		IP:       a.IP,
		User:     a.User,
		Host:     a.Host,
		Details:  a.Details,
	}

	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	_, err = tx.NamedExecContext(ctx, `
		INSERT INTO alerts (time, rule, severity, ip, user, host, details)
		VALUES (:time, :rule, :severity, :ip, :user, :host, :details)`, &row)
	if err != nil {
		tx.Rollback()
		return fmt.Errorf("insert alert: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit alert: %w", err)
	}
	return nil
}

// RecentAlerts returns up to limit alerts, newest first.
func (s *Store) RecentAlerts(ctx context.Context, limit int) ([]models.Alert, error) {
	var rows []sqlDataAlert
	err := s.db.SelectContext(ctx, &rows, `
		SELECT * FROM alerts
		ORDER BY time DESC, id DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("select alerts: %w", err)
	}

	out := make([]models.Alert, 0, len(rows))
	for i := range rows {
		out = append(out, rows[i].model())
	}
	return out, nil
}
