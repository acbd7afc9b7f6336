package rules

// DefaultIndicators is the built-in reputation list: indicator
// substring to human-readable reason. Deployments override it
// wholesale via rules.domains.indicators in the config file.
var DefaultIndicators = map[string]string{
	"evil-tracker":  "known tracking and malware distribution domain",
	"phish":         "credential phishing infrastructure",
	"malware-cdn":   "malware delivery network",
	"cryptominer":   "in-browser cryptomining service",
	"darkfileshare": "unsanctioned exfiltration file host",
	"free-vbucks":   "scam and credential harvesting site",
}
