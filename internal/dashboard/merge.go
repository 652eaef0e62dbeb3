// Package dashboard ranks mail into tasks and assembles the dashboard view.
package dashboard

import (
	"fmt"
	"strings"
	"time"

	"dayboard/internal/model"
	"dayboard/internal/util"
)

// UrgencyAt maps a position in the ranked mail list to an urgency tier.
func UrgencyAt(i int) model.Urgency {
	switch {
	case i < 2:
		return model.UrgencyHigh
	case i < 5:
		return model.UrgencyMedium
	default:
		return model.UrgencyLow
	}
}

// Merge turns ranked messages into tasks and pairs them with today's events.
func Merge(messages []model.NormalizedMessage, events []model.NormalizedEvent, now time.Time) model.Dashboard {
	tasks := make([]model.PriorityTask, 0, len(messages))
	for i, m := range messages {
		tasks = append(tasks, model.PriorityTask{
			ID:          m.ID,
			Title:       m.Subject,
			Description: m.Snippet,
			Source:      model.OriginMail,
			Urgency:     UrgencyAt(i),
			Sender:      m.From.Name,
			SenderEmail: m.From.Email,
			Timestamp:   m.Date,
			DisplayTime: util.RelativeTime(now, m.Date),
			ThreadID:    m.ThreadID,
		})
	}
	if events == nil {
		events = []model.NormalizedEvent{}
	}
	return model.Dashboard{
		Tasks:          tasks,
		Meetings:       events,
		AttentionCount: len(tasks) + len(events),
		Summary:        Summary(len(tasks), len(events)),
	}
}

// Summary is the one-line attention sentence shown above the task list.
func Summary(emails, meetings int) string {
	var parts []string
	if emails > 0 {
		parts = append(parts, plural(emails, "email"))
	}
	if meetings > 0 {
		parts = append(parts, plural(meetings, "meeting"))
	}
	if len(parts) == 0 {
		return "No items requiring attention today"
	}
	return "You have " + strings.Join(parts, " and ") + " needing your attention"
}

func plural(n int, noun string) string {
	if n == 1 {
		return fmt.Sprintf("1 %s", noun)
	}
	return fmt.Sprintf("%d %ss", n, noun)
}
