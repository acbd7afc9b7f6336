package store

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"logsentry/pkg/models"
)

type sqlDataEvent struct {
	ID        int64  `db:"id"`
	Timestamp string `db:"timestamp"`
	Host      string `db:"host"`
	User      string `db:"user"`
	Action    string `db:"action"`
	Status    string `db:"status"`
	IP        string `db:"ip"`
	Sidecar   []byte `db:"sidecar"`
}

func (d *sqlDataEvent) scan(m *models.Event) error {
	sidecar, err := json.Marshal(m.Sidecar)
	if err != nil {
		return fmt.Errorf("marshal sidecar: %w", err)
	}

	d.ID = m.ID
	d.Timestamp = m.Timestamp
	d.Host = m.Host
	d.User = m.User
	d.Action = m.Action
	d.Status = m.Status
	d.IP = m.IP
	d.Sidecar = sidecar
	return nil
}

func (d *sqlDataEvent) model() (models.Event, error) {
	m := models.Event{
		ID:        d.ID,
		Timestamp: d.Timestamp,
		Host:      d.Host,
		User:      d.User,
		Action:    d.Action,
		Status:    d.Status,
		IP:        d.IP,
	}
	if len(d.Sidecar) > 0 {
		if err := json.Unmarshal(d.Sidecar, &m.Sidecar); err != nil {
			return m, fmt.Errorf("unmarshal sidecar: %w", err)
		}
	}
	return m, nil
}

// AppendEvent appends one canonical event inside a short-lived
// transaction. On failure the event is dropped by the caller; there is
// no retry queue.
func (s *Store) AppendEvent(ctx context.Context, ev models.Event) error {
	var row sqlDataEvent
	if err := row.scan(&ev); err != nil {
		return err
	}

	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	_, err = tx.NamedExecContext(ctx, `
		INSERT INTO events (timestamp, host, user, action, status, ip, sidecar)
		VALUES (:timestamp, :host, :user, :action, :status, :ip, :sidecar)`, &row)
	if err != nil {
		tx.Rollback()
		return fmt.Errorf("insert event: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit event: %w", err)
	}
	return nil
}

// EventFilter narrows a RecentEvents query. Zero-valued members are
// not applied.
type EventFilter struct {
	Since  string // inclusive lower bound on timestamp
	Action string
	Status string
	Host   string
}

// RecentEvents returns up to limit events matching the filter, newest
// first.
func (s *Store) RecentEvents(ctx context.Context, f EventFilter, limit int) ([]models.Event, error) {
	var conds []string
	var args []interface{}

	if f.Since != "" {
		conds = append(conds, "timestamp >= ?")
		args = append(args, f.Since)
	}
	if f.Action != "" {
		conds = append(conds, "action = ?")
		args = append(args, f.Action)
	}
	if f.Status != "" {
		conds = append(conds, "status = ?")
		args = append(args, f.Status)
	}
	if f.Host != "" {
		conds = append(conds, "host = ?")
		args = append(args, f.Host)
	}

	q := "SELECT * FROM events"
	if len(conds) > 0 {
		q += " WHERE " + strings.Join(conds, " AND ")
	}
	q += " ORDER BY timestamp DESC, id DESC LIMIT ?"
	args = append(args, limit)

	return s.selectEvents(ctx, q, args...)
}

// FailureSourcesSince returns the source IPs with at least threshold
// failed logins since the given timestamp. The "-" placeholder for an
// absent address never qualifies.
func (s *Store) FailureSourcesSince(ctx context.Context, since string, threshold int) ([]string, error) {
	var ips []string
	err := s.db.SelectContext(ctx, &ips, `
		SELECT ip FROM events
		WHERE timestamp >= ? AND action = 'login' AND status = 'fail' AND ip != '-'
		GROUP BY ip
		HAVING COUNT(*) >= ?`, since, threshold)
	if err != nil {
		return nil, fmt.Errorf("select failure sources: %w", err)
	}
	return ips, nil
}

// SuccessAfterLatestFailure reports whether a successful login exists
// for ip with a timestamp at or after that ip's latest failed login.
func (s *Store) SuccessAfterLatestFailure(ctx context.Context, ip string) (bool, error) {
	var n int
	err := s.db.GetContext(ctx, &n, `
		SELECT COUNT(*) FROM events
		WHERE ip = ? AND action = 'login' AND status = 'success'
		  AND timestamp >= (
			SELECT MAX(timestamp) FROM events
			WHERE ip = ? AND action = 'login' AND status = 'fail'
		  )`, ip, ip)
	if err != nil {
		return false, fmt.Errorf("correlate success after failure: %w", err)
	}
	return n > 0, nil
}

// EventsByActionAfter returns all events with the given action and an
// id strictly greater than afterID, oldest first.
func (s *Store) EventsByActionAfter(ctx context.Context, action string, afterID int64) ([]models.Event, error) {
	return s.selectEvents(ctx, `
		SELECT * FROM events
		WHERE action = ? AND id > ?
		ORDER BY id`, action, afterID)
}

// RecentByActionAfter returns up to limit of the most recent events
// with the given action and an id strictly greater than afterID,
// newest first.
func (s *Store) RecentByActionAfter(ctx context.Context, action string, afterID int64, limit int) ([]models.Event, error) {
	return s.selectEvents(ctx, `
		SELECT * FROM events
		WHERE action = ? AND id > ?
		ORDER BY id DESC LIMIT ?`, action, afterID, limit)
}

func (s *Store) selectEvents(ctx context.Context, query string, args ...interface{}) ([]models.Event, error) {
	var rows []sqlDataEvent
	if err := s.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("select events: %w", err)
	}

	out := make([]models.Event, 0, len(rows))
	for i := range rows {
		m, err := rows[i].model()
		if err != nil {
			return nil, err
		}
		out = append(out, m)
	}
	return out, nil
}
