// Package tools implements the built-in side-effecting actions the model may
// invoke through tool calls. The OS-level reminder and notification
// facilities are external collaborators reached through narrow interfaces, so
// the package stays testable and platform-free.
//
// Every tool maps its own failure modes (permission denied, invalid date,
// save failed) to a short user-visible string; tool execution never surfaces
// an error into the stream.
package tools

import "time"

// Clock supplies the current time. Injected so relative-date confirmations
// are deterministic under test.
type Clock func() time.Time

const (
	okPrefix   = "✅ "
	failPrefix = "⚠️ "
)

// confirmTimeLayout is how due times are rendered back to the user.
const confirmTimeLayout = "Mon, Jan 2 at 3:04 PM"

// parseDueDate accepts the date shapes models actually emit. The leading
// directive message asks for RFC 3339, but local-format fallbacks keep the
// tool usable when the model drops the offset.
func parseDueDate(raw string, now time.Time) (time.Time, bool) {
	layouts := []string{
		time.RFC3339,
		"2006-01-02T15:04:05",
		"2006-01-02 15:04",
		"2006-01-02",
	}
	for _, layout := range layouts {
		var t time.Time
		var err error
		if layout == time.RFC3339 {
			t, err = time.Parse(layout, raw)
		} else {
			t, err = time.ParseInLocation(layout, raw, now.Location())
		}
		if err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}
