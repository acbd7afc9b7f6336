package store

import (
	"context"
	"fmt"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"logsentry/pkg/models"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	st, err := Open(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	require.NoError(t, st.Init(context.Background()))
	t.Cleanup(func() { st.Close() })
	return st
}

func ts(offset time.Duration) string {
	return time.Date(2026, 2, 4, 10, 0, 0, 0, time.UTC).Add(offset).Format("2006-01-02T15:04:05")
}

func loginEvent(when, ip, status string) models.Event {
	return models.Event{
		Timestamp: when,
		Host:      "host-a",
		User:      "admin",
		Action:    models.ActionLogin,
		Status:    status,
		IP:        ip,
		Sidecar:   models.Sidecar{Raw: fmt.Sprintf("auth user=admin ip=%s action=login status=%s", ip, status)},
	}
}

func TestAppendAndRecentEventsOrdering(t *testing.T) {
	st := newTestStore(t)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		ev := loginEvent(ts(time.Duration(i)*time.Minute), "10.0.0.1", models.StatusFail)
		require.NoError(t, st.AppendEvent(ctx, ev))
	}

	events, err := st.RecentEvents(ctx, EventFilter{}, 10)
	require.NoError(t, err)
	require.Len(t, events, 3)

	// Newest first.
	assert.Equal(t, ts(2*time.Minute), events[0].Timestamp)
	assert.Equal(t, ts(0), events[2].Timestamp)
	assert.Greater(t, events[0].ID, events[2].ID)
}

func TestSidecarRoundTrip(t *testing.T) {
	st := newTestStore(t)
	ctx := context.Background()

	ev := models.Event{
		Timestamp: ts(0),
		Host:      "host-a",
		User:      "bob",
		Action:    models.ActionBrowse,
		Status:    models.StatusSuccess,
		IP:        "-",
		Sidecar: models.Sidecar{
			URL:   "http://example.com/x",
			Title: "Example Page",
			Raw:   `chrome visit user=bob url=http://example.com/x title="Example Page" action=browse status=success`,
		},
	}
	require.NoError(t, st.AppendEvent(ctx, ev))

	events, err := st.RecentEvents(ctx, EventFilter{Action: models.ActionBrowse}, 1)
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.Equal(t, ev.Sidecar, events[0].Sidecar)
}

func TestRecentEventsFilters(t *testing.T) {
	st := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, st.AppendEvent(ctx, loginEvent(ts(0), "10.0.0.1", models.StatusFail)))
	require.NoError(t, st.AppendEvent(ctx, loginEvent(ts(time.Minute), "10.0.0.2", models.StatusSuccess)))
	other := loginEvent(ts(2*time.Minute), "10.0.0.3", models.StatusFail)
	other.Host = "host-b"
	require.NoError(t, st.AppendEvent(ctx, other))

	byStatus, err := st.RecentEvents(ctx, EventFilter{Status: models.StatusFail}, 10)
	require.NoError(t, err)
	assert.Len(t, byStatus, 2)

	byHost, err := st.RecentEvents(ctx, EventFilter{Host: "host-b"}, 10)
	require.NoError(t, err)
	require.Len(t, byHost, 1)
	assert.Equal(t, "10.0.0.3", byHost[0].IP)

	since, err := st.RecentEvents(ctx, EventFilter{Since: ts(time.Minute)}, 10)
	require.NoError(t, err)
	assert.Len(t, since, 2)

	limited, err := st.RecentEvents(ctx, EventFilter{}, 1)
	require.NoError(t, err)
	assert.Len(t, limited, 1)
}

func TestFailureSourcesSince(t *testing.T) {
	st := newTestStore(t)
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		require.NoError(t, st.AppendEvent(ctx, loginEvent(ts(time.Duration(i)*time.Second), "10.0.0.1", models.StatusFail)))
	}
	for i := 0; i < 4; i++ {
		require.NoError(t, st.AppendEvent(ctx, loginEvent(ts(time.Duration(i)*time.Second), "10.0.0.2", models.StatusFail)))
	}
	// Events whose source address was never extracted do not qualify.
	for i := 0; i < 5; i++ {
		require.NoError(t, st.AppendEvent(ctx, loginEvent(ts(time.Duration(i)*time.Second), "-", models.StatusFail)))
	}

	ips, err := st.FailureSourcesSince(ctx, ts(0), 5)
	require.NoError(t, err)
	assert.Equal(t, []string{"10.0.0.1"}, ips)

	none, err := st.FailureSourcesSince(ctx, ts(time.Hour), 5)
	require.NoError(t, err)
	assert.Empty(t, none)
}

func TestSuccessAfterLatestFailure(t *testing.T) {
	st := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, st.AppendEvent(ctx, loginEvent(ts(0), "10.0.0.1", models.StatusFail)))
	require.NoError(t, st.AppendEvent(ctx, loginEvent(ts(time.Minute), "10.0.0.1", models.StatusFail)))

	// Success before the latest failure does not correlate.
	require.NoError(t, st.AppendEvent(ctx, loginEvent(ts(30*time.Second), "10.0.0.1", models.StatusSuccess)))
	ok, err := st.SuccessAfterLatestFailure(ctx, "10.0.0.1")
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, st.AppendEvent(ctx, loginEvent(ts(2*time.Minute), "10.0.0.1", models.StatusSuccess)))
	ok, err = st.SuccessAfterLatestFailure(ctx, "10.0.0.1")
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestEventsByActionAfter(t *testing.T) {
	st := newTestStore(t)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		ev := loginEvent(ts(time.Duration(i)*time.Minute), "-", models.StatusSuccess)
		ev.Action = models.ActionCreateUser
		require.NoError(t, st.AppendEvent(ctx, ev))
	}

	all, err := st.EventsByActionAfter(ctx, models.ActionCreateUser, 0)
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Less(t, all[0].ID, all[2].ID)

	rest, err := st.EventsByActionAfter(ctx, models.ActionCreateUser, all[1].ID)
	require.NoError(t, err)
	require.Len(t, rest, 1)
	assert.Equal(t, all[2].ID, rest[0].ID)
}

func TestAlertAppendAndRecent(t *testing.T) {
	st := newTestStore(t)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		require.NoError(t, st.AppendAlert(ctx, models.Alert{
			Time:     ts(time.Duration(i) * time.Minute),
			Rule:     "test rule",
			Severity: models.SeverityHigh,
			IP:       fmt.Sprintf("10.0.0.%d", i),
		}))
	}

	alerts, err := st.RecentAlerts(ctx, 2)
	require.NoError(t, err)
	require.Len(t, alerts, 2)
	assert.Equal(t, "10.0.0.2", alerts[0].IP)
	assert.Equal(t, "10.0.0.1", alerts[1].IP)
}

func TestCursors(t *testing.T) {
	st := newTestStore(t)
	ctx := context.Background()

	id, err := st.Cursor(ctx, "some_rule")
	require.NoError(t, err)
	assert.Equal(t, int64(0), id)

	require.NoError(t, st.SetCursor(ctx, "some_rule", 42))
	id, err = st.Cursor(ctx, "some_rule")
	require.NoError(t, err)
	assert.Equal(t, int64(42), id)

	// Cursors never move backward.
	require.NoError(t, st.SetCursor(ctx, "some_rule", 7))
	id, err = st.Cursor(ctx, "some_rule")
	require.NoError(t, err)
	assert.Equal(t, int64(42), id)
}
