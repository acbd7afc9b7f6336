package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
)

// Cursor returns the persisted watermark for a rule: the id of the
// last event that rule has already considered. A rule with no cursor
// yet starts at zero.
func (s *Store) Cursor(ctx context.Context, rule string) (int64, error) {
	var id int64
	err := s.db.GetContext(ctx, &id, `SELECT last_id FROM rule_cursors WHERE rule = ?`, rule)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("select cursor for %s: %w", rule, err)
	}
	return id, nil
}

// SetCursor advances the watermark for a rule. Cursors only move
// forward; a stale id is ignored.
func (s *Store) SetCursor(ctx context.Context, rule string, id int64) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO rule_cursors (rule, last_id) VALUES (?, ?)
		ON CONFLICT(rule) DO UPDATE SET last_id = excluded.last_id
		WHERE excluded.last_id > rule_cursors.last_id`, rule, id)
	if err != nil {
		return fmt.Errorf("set cursor for %s: %w", rule, err)
	}
	return nil
}
