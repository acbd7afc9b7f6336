package syslog

import (
	"reflect"
	"testing"
	"time"
)

func TestExtractFieldsOrderIndependent(t *testing.T) {
	a := ExtractFields("action=login user=bob")
	b := ExtractFields("user=bob action=login")

	want := map[string]string{"action": "login", "user": "bob"}
	if !reflect.DeepEqual(a, want) {
		t.Fatalf("unexpected fields: %v", a)
	}
	if !reflect.DeepEqual(a, b) {
		t.Fatalf("field order changed the mapping: %v vs %v", a, b)
	}
}

func TestExtractFieldsQuotedSpan(t *testing.T) {
	fields := ExtractFields(`file user=bob path="C:\Users\bob\My Docs" access=read action=file_access status=success`)

	if got := fields["path"]; got != `C:\Users\bob\My Docs` {
		t.Fatalf("unexpected path: %q", got)
	}
	if got := fields["access"]; got != "read" {
		t.Fatalf("unexpected access: %q", got)
	}
}

func TestExtractFieldsEscapedQuote(t *testing.T) {
	fields := ExtractFields(`title="say \"hi\" now" action=browse`)
	if got := fields["title"]; got != `say "hi" now` {
		t.Fatalf("unexpected title: %q", got)
	}
}

func TestExtractFieldsNoTokens(t *testing.T) {
	fields := ExtractFields("complete garbage with no tokens at all")
	if len(fields) != 0 {
		t.Fatalf("expected empty mapping, got %v", fields)
	}
}

func TestParseDefaulting(t *testing.T) {
	p := NewParser("localhost")
	ev, extracted := p.Parse([]byte("complete garbage with no tokens at all"))

	if extracted {
		t.Fatalf("expected no extraction")
	}
	if ev.Host != "unknown" || ev.User != "unknown" || ev.Action != "unknown" || ev.Status != "unknown" {
		t.Fatalf("unexpected defaults: %+v", ev)
	}
	if ev.IP != "-" {
		t.Fatalf("unexpected ip default: %q", ev.IP)
	}
	if ev.Sidecar.URL != "" || ev.Sidecar.Title != "" {
		t.Fatalf("expected url/title absent: %+v", ev.Sidecar)
	}
	if ev.Sidecar.Raw != "complete garbage with no tokens at all" {
		t.Fatalf("raw line not retained: %q", ev.Sidecar.Raw)
	}
	if ev.Timestamp == "" {
		t.Fatalf("expected ingestion-time fallback timestamp")
	}
}

func TestParseEnvelopeTimestamp(t *testing.T) {
	p := NewParser("localhost")
	ev, extracted := p.Parse([]byte("<13>2026-02-04T09:44:43 localhost auth user=bob action=login status=success"))

	if !extracted {
		t.Fatalf("expected extraction")
	}
	if ev.Timestamp != "2026-02-04T09:44:43" {
		t.Fatalf("unexpected timestamp: %q", ev.Timestamp)
	}
	if ev.User != "bob" || ev.Action != "login" || ev.Status != "success" {
		t.Fatalf("unexpected fields: %+v", ev)
	}
}

func TestParseFallbackTimestampWithoutEnvelope(t *testing.T) {
	p := NewParser("localhost")
	fixed := time.Date(2026, 3, 1, 12, 30, 0, 0, time.UTC)
	p.now = func() time.Time { return fixed }

	ev, _ := p.Parse([]byte("user=bob action=login status=fail"))
	if ev.Timestamp != "2026-03-01T12:30:00" {
		t.Fatalf("unexpected fallback timestamp: %q", ev.Timestamp)
	}
}

func TestParsePermissiveDecode(t *testing.T) {
	p := NewParser("localhost")
	payload := append([]byte{0xff, 0xfe}, []byte(" user=bob action=login status=success")...)
	ev, extracted := p.Parse(payload)

	if !extracted {
		t.Fatalf("expected extraction despite invalid bytes")
	}
	if ev.User != "bob" {
		t.Fatalf("unexpected user: %q", ev.User)
	}
}

func TestParseBrowseEvent(t *testing.T) {
	p := NewParser("localhost")
	ev, _ := p.Parse([]byte(`<13>2026-02-04T20:15:00 localhost chrome visit user=bob url=http://example.com/x title="Example Page" action=browse status=success`))

	if ev.Action != "browse" {
		t.Fatalf("unexpected action: %q", ev.Action)
	}
	if ev.Sidecar.URL != "http://example.com/x" {
		t.Fatalf("unexpected url: %q", ev.Sidecar.URL)
	}
	if ev.Sidecar.Title != "Example Page" {
		t.Fatalf("unexpected title: %q", ev.Sidecar.Title)
	}
}

func TestEnvelopeTimestampMissingMarker(t *testing.T) {
	if _, ok := EnvelopeTimestamp("<13>2026-02-04T09:44:43 otherhost user=bob", "localhost"); ok {
		t.Fatalf("expected no envelope timestamp without marker")
	}
	if _, ok := EnvelopeTimestamp("2026-02-04T09:44:43 localhost user=bob", "localhost"); ok {
		t.Fatalf("expected no envelope timestamp without priority prefix")
	}
}
