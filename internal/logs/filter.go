package logs

import (
	"strings"

	"obdexporter/internal/logging"
)

// Filter selects log lines. The zero value matches everything. Both console
// (key=value) and JSON ("key":"value") records are recognized.
type Filter struct {
	// RunID keeps lines tagged with this export run.
	RunID string
	// Events keeps lines whose event_type is one of these values.
	Events []string
}

// Match reports whether line passes the filter.
func (f Filter) Match(line string) bool {
	if f.RunID != "" && !hasField(line, logging.FieldRunID, f.RunID) {
		return false
	}
	if len(f.Events) == 0 {
		return true
	}
	for _, event := range f.Events {
		if hasField(line, logging.FieldEventType, event) {
			return true
		}
	}
	return false
}

func hasField(line, key, value string) bool {
	if strings.Contains(line, `"`+key+`":"`+value+`"`) {
		return true
	}
	needle := key + "=" + value
	for rest := line; ; {
		idx := strings.Index(rest, needle)
		if idx < 0 {
			return false
		}
		startOK := idx == 0 || rest[idx-1] == ' '
		end := idx + len(needle)
		if startOK && (end == len(rest) || rest[end] == ' ') {
			return true
		}
		rest = rest[idx+1:]
	}
}
