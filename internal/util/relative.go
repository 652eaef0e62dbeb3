package util

import (
	"fmt"
	"time"
)

// RelativeTime renders t relative to now the way the task list shows it:
// "Just now", "5m ago", "3h ago", "Yesterday", "4d ago", then "Jan 2".
// Future timestamps render as "Just now".
func RelativeTime(now, t time.Time) string {
	d := now.Sub(t)
	switch {
	case d < time.Minute:
		return "Just now"
	case d < time.Hour:
		return fmt.Sprintf("%dm ago", int(d/time.Minute))
	case d < 24*time.Hour:
		return fmt.Sprintf("%dh ago", int(d/time.Hour))
	}
	days := int(d / (24 * time.Hour))
	switch {
	case days == 1:
		return "Yesterday"
	case days < 7:
		return fmt.Sprintf("%dd ago", days)
	default:
		return t.In(now.Location()).Format("Jan 2")
	}
}
