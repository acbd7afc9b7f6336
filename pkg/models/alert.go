package models

import "strings"

// Alert is one detection raised by a rule. Alerts are immutable once
// written and reference events only by denormalized ip/user/host values.
type Alert struct {
	ID       int64  `json:"id,omitempty"`
	Time     string `json:"time"`
	Rule     string `json:"rule"`
	Severity string `json:"severity"`
	IP       string `json:"ip,omitempty"`
	User     string `json:"user,omitempty"`
	Host     string `json:"host,omitempty"`
	Details  string `json:"details,omitempty"`
}

// Severity levels, lowest to highest.
const (
	SeverityLow      = "low"
	SeverityMedium   = "medium"
	SeverityHigh     = "high"
	SeverityCritical = "critical"
)

// SeverityWeight maps a severity level to an ordinal for sorting and
// scoring. Unknown levels weigh the same as low.
func SeverityWeight(level string) int {
	switch strings.ToLower(level) {
	case SeverityCritical:
		return 7
	case SeverityHigh:
		return 5
	case SeverityMedium:
		return 3
	case SeverityLow:
		return 1
	default:
		return 1
	}
}

// Fingerprint identifies the alert condition for suppression purposes.
// Two alerts with the same fingerprint describe the same ongoing
// condition, not two independent detections.
func (a *Alert) Fingerprint() string {
	return a.Rule + "|" + a.IP + "|" + a.User + "|" + a.Host
}
