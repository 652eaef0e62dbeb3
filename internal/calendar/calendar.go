// Package calendar pulls today's events from the primary calendar.
package calendar

import (
	"context"
	"log/slog"
	"time"

	"dayboard/internal/model"
	"dayboard/internal/util"

	calendarv3 "google.golang.org/api/calendar/v3"
)

const maxEvents = 20

// DayWindow returns local midnight of now's day and the following midnight.
func DayWindow(now time.Time) (start, end time.Time) {
	y, m, d := now.Date()
	start = time.Date(y, m, d, 0, 0, 0, 0, now.Location())
	return start, start.AddDate(0, 0, 1)
}

// FetchToday lists single-instance events of now's local day in start
// order. Failures are logged and yield an empty slice.
func FetchToday(ctx context.Context, svc *calendarv3.Service, now time.Time, logger *slog.Logger) []model.NormalizedEvent {
	start, end := DayWindow(now)
	events, err := svc.Events.List("primary").
		TimeMin(start.Format(time.RFC3339)).
		TimeMax(end.Format(time.RFC3339)).
		SingleEvents(true).
		OrderBy("startTime").
		MaxResults(maxEvents).
		Context(ctx).
		Do()
	if err != nil {
		logger.Error("list events", "error", err)
		return []model.NormalizedEvent{}
	}
	return NormalizeEvents(events.Items)
}

// NormalizeEvents maps provider events, dropping those without a title.
func NormalizeEvents(items []*calendarv3.Event) []model.NormalizedEvent {
	out := make([]model.NormalizedEvent, 0, len(items))
	for _, ev := range items {
		if ev == nil || ev.Summary == "" {
			continue
		}
		out = append(out, normalizeEvent(ev))
	}
	return out
}

func normalizeEvent(ev *calendarv3.Event) model.NormalizedEvent {
	start, allDay := eventTime(ev.Start)
	end, _ := eventTime(ev.End)

	n := model.NormalizedEvent{
		ID:          ev.Id,
		Title:       ev.Summary,
		Description: optional(ev.Description),
		Start:       start,
		End:         end,
		IsAllDay:    allDay,
		Location:    optional(ev.Location),
		MeetLink:    meetLink(ev),
		Attendees:   []model.Attendee{},
	}
	for _, a := range ev.Attendees {
		if a == nil || a.Self {
			continue
		}
		n.Attendees = append(n.Attendees, model.Attendee{
			Name:           displayName(a.DisplayName, a.Email),
			Email:          a.Email,
			ResponseStatus: a.ResponseStatus,
		})
	}
	if o := ev.Organizer; o != nil {
		n.Organizer = &model.Organizer{
			Name:  displayName(o.DisplayName, o.Email),
			Email: o.Email,
			Self:  o.Self,
		}
	}
	return n
}

// eventTime returns dateTime when set, else the all-day date.
func eventTime(t *calendarv3.EventDateTime) (string, bool) {
	if t == nil {
		return "", true
	}
	if t.DateTime != "" {
		return t.DateTime, false
	}
	return t.Date, true
}

func meetLink(ev *calendarv3.Event) *string {
	if ev.HangoutLink != "" {
		return optional(ev.HangoutLink)
	}
	if ev.ConferenceData == nil {
		return nil
	}
	for _, ep := range ev.ConferenceData.EntryPoints {
		if ep != nil && ep.EntryPointType == "video" && ep.Uri != "" {
			return optional(ep.Uri)
		}
	}
	return nil
}

func displayName(name, email string) string {
	if name != "" {
		return name
	}
	return util.LocalPart(email)
}

func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
