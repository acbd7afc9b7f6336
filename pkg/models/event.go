package models

// Event is the canonical, normalized representation of one observed
// activity, independent of the source format that produced it.
type Event struct {
	ID        int64   `json:"id,omitempty"`
	Timestamp string  `json:"timestamp"`
	Host      string  `json:"host"`
	User      string  `json:"user"`
	Action    string  `json:"action"`
	Status    string  `json:"status"`
	IP        string  `json:"ip"`
	Sidecar   Sidecar `json:"sidecar"`
}

// Sidecar carries fields that are not promoted to first-class columns.
// Raw is always the original unparsed line; URL and Title are populated
// only for browsing-type events.
type Sidecar struct {
	URL   string `json:"url,omitempty"`
	Title string `json:"title,omitempty"`
	Raw   string `json:"raw"`
}

// Well-known action values emitted by agents. The extractor does not
// restrict actions to this set.
const (
	ActionBrowse     = "browse"
	ActionLogin      = "login"
	ActionFileAccess = "file_access"
	ActionCreateUser = "createuser"
)

const (
	StatusSuccess = "success"
	StatusFail    = "fail"
)
