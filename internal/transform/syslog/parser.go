package syslog

import (
	"regexp"
	"strings"
	"time"

	"logsentry/pkg/models"
)

// TimestampLayout is the ISO-8601 second resolution layout used for
// ingestion-time fallbacks and alert times.
const TimestampLayout = "2006-01-02T15:04:05"

// fieldRe matches one key=value token. A value is either a quoted span
// (backslash escapes honored) or a maximal run of non-whitespace.
var fieldRe = regexp.MustCompile(`(\w+)=("(?:[^"\\]|\\.)*"|\S+)`)

// Parser turns raw wire payloads into canonical events. It never
// fails: garbled input degrades to an all-defaults event.
type Parser struct {
	marker string
	now    func() time.Time
}

// NewParser creates a parser. marker is the envelope substring that
// separates the transport header from the message body.
func NewParser(marker string) *Parser {
	if marker == "" {
		marker = "localhost"
	}
	return &Parser{marker: marker, now: time.Now}
}

// Parse decodes one payload permissively and builds the canonical
// event, applying the defaulting rules for absent fields. The second
// return value reports whether any field token was recognized; an
// all-defaults event is still a valid event.
func (p *Parser) Parse(payload []byte) (models.Event, bool) {
	line := strings.TrimSpace(strings.ToValidUTF8(string(payload), "�"))

	timestamp, ok := EnvelopeTimestamp(line, p.marker)
	if !ok {
		timestamp = p.now().UTC().Format(TimestampLayout)
	}

	fields := ExtractFields(line)

	return models.Event{
		Timestamp: timestamp,
		Host:      fieldOr(fields, "host", "unknown"),
		User:      fieldOr(fields, "user", "unknown"),
		Action:    fieldOr(fields, "action", "unknown"),
		Status:    fieldOr(fields, "status", "unknown"),
		IP:        fieldOr(fields, "ip", "-"),
		Sidecar: models.Sidecar{
			URL:   fields["url"],
			Title: fields["title"],
			Raw:   line,
		},
	}, len(fields) > 0
}

// ExtractFields scans a line for key=value tokens in any order and
// returns the resulting mapping. Unrecognized text is ignored; a line
// with no tokens yields an empty map.
func ExtractFields(line string) map[string]string {
	fields := make(map[string]string)
	for _, m := range fieldRe.FindAllStringSubmatch(line, -1) {
		fields[m[1]] = unquote(m[2])
	}
	return fields
}

// EnvelopeTimestamp recovers the timestamp from a transport envelope of
// the form `<pri>timestamp marker ...`. The text between the first `>`
// and the marker substring is taken verbatim.
func EnvelopeTimestamp(line, marker string) (string, bool) {
	mi := strings.Index(line, marker)
	if mi < 0 {
		return "", false
	}
	gi := strings.Index(line, ">")
	if gi < 0 || gi > mi {
		return "", false
	}
	ts := strings.TrimSpace(line[gi+1 : mi])
	if ts == "" {
		return "", false
	}
	return ts, true
}

func fieldOr(fields map[string]string, key, fallback string) string {
	if v, ok := fields[key]; ok && v != "" {
		return v
	}
	return fallback
}

// unquote strips the surrounding quotes from a quoted span and resolves
// escaped quotes. Other backslashes stay literal so Windows paths
// survive extraction unchanged. Unquoted values pass through untouched.
func unquote(v string) string {
	if len(v) < 2 || v[0] != '"' || v[len(v)-1] != '"' {
		return v
	}
	return strings.ReplaceAll(v[1:len(v)-1], `\"`, `"`)
}
