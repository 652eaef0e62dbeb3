// Package gmail pulls unread important mail and expands conversations.
package gmail

import (
	"context"
	"log/slog"
	"strings"
	"sync"
	"time"

	"dayboard/internal/model"
	"dayboard/internal/util"

	_ "github.com/emersion/go-message/charset"
	"github.com/emersion/go-message/mail"
	gmailv1 "google.golang.org/api/gmail/v1"
)

const (
	user = "me"

	// ImportantQuery selects recent unread mail outside the bulk categories.
	ImportantQuery = "is:unread -category:promotions -category:social -category:updates newer_than:30d"

	listLimit   = 20
	detailLimit = 10
	workerCount = 10

	NoSubject = "(No subject)"
)

// FetchImportant lists unread important mail and returns up to ten messages,
// deduplicated by thread and sorted by priority. Provider failures are
// logged and degrade to fewer (or no) messages.
func FetchImportant(ctx context.Context, svc *gmailv1.Service, logger *slog.Logger) []model.NormalizedMessage {
	list, err := svc.Users.Messages.List(user).
		Q(ImportantQuery).
		MaxResults(listLimit).
		Context(ctx).
		Do()
	if err != nil {
		logger.Error("list messages", "error", err)
		return []model.NormalizedMessage{}
	}

	ids := make([]string, 0, detailLimit)
	for _, m := range list.Messages {
		if len(ids) == detailLimit {
			break
		}
		ids = append(ids, m.Id)
	}
	return NormalizeMessages(fetchMetadata(ctx, svc, ids, logger))
}

// fetchMetadata gets From/Subject/Date for each id with a bounded worker
// pool. out[i] belongs to ids[i]; failed fetches leave a nil entry.
func fetchMetadata(ctx context.Context, svc *gmailv1.Service, ids []string, logger *slog.Logger) []*gmailv1.Message {
	out := make([]*gmailv1.Message, len(ids))
	if len(ids) == 0 {
		return out
	}

	jobs := make(chan int)
	var wg sync.WaitGroup
	for range min(workerCount, len(ids)) {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range jobs {
				msg, err := svc.Users.Messages.Get(user, ids[i]).
					Format("metadata").
					MetadataHeaders("From", "Subject", "Date").
					Context(ctx).
					Do()
				if err != nil {
					logger.Warn("get message", "id", ids[i], "error", err)
					continue
				}
				out[i] = msg
			}
		}()
	}
	for i := range ids {
		jobs <- i
	}
	close(jobs)
	wg.Wait()
	return out
}

// NormalizeMessages converts provider messages in provider order, skipping
// nil entries, keeps the first message of each thread and sorts by priority.
func NormalizeMessages(raw []*gmailv1.Message) []model.NormalizedMessage {
	out := make([]model.NormalizedMessage, 0, len(raw))
	seen := make(map[string]bool, len(raw))
	for _, m := range raw {
		if m == nil {
			continue
		}
		n := normalizeMessage(m)
		if seen[n.ThreadID] {
			continue
		}
		seen[n.ThreadID] = true
		out = append(out, n)
	}
	SortByPriority(out)
	return out
}

func normalizeMessage(m *gmailv1.Message) model.NormalizedMessage {
	var from, subject, date string
	if m.Payload != nil {
		from, subject, date = scanHeaders(m.Payload.Headers)
	}

	labels := m.LabelIds
	if labels == nil {
		labels = []string{}
	}
	n := model.NormalizedMessage{
		ID:       m.Id,
		ThreadID: m.ThreadId,
		Subject:  decodeSubject(subject),
		Snippet:  util.DecodeEntities(m.Snippet),
		From:     util.ParseFrom(from),
		Date:     messageDate(date, m.InternalDate),
		Labels:   labels,
	}
	n.IsUnread = n.HasLabel("UNREAD")
	return n
}

func scanHeaders(headers []*gmailv1.MessagePartHeader) (from, subject, date string) {
	for _, h := range headers {
		if h == nil {
			continue
		}
		switch strings.ToLower(h.Name) {
		case "from":
			from = h.Value
		case "subject":
			subject = h.Value
		case "date":
			date = h.Value
		}
	}
	return from, subject, date
}

// decodeSubject undoes RFC 2047 encoding and HTML entities.
func decodeSubject(raw string) string {
	var h mail.Header
	h.Set("Subject", raw)
	s, err := h.Subject()
	if err != nil {
		s = raw
	}
	s = strings.TrimSpace(util.DecodeEntities(s))
	if s == "" {
		return NoSubject
	}
	return s
}

// messageDate parses the Date header, falling back to the provider's
// internalDate (epoch milliseconds).
func messageDate(header string, internalMillis int64) time.Time {
	if header != "" {
		var h mail.Header
		h.Set("Date", header)
		if t, err := h.Date(); err == nil && !t.IsZero() {
			return t.UTC()
		}
		if t, ok := parseDateLoose(header); ok {
			return t
		}
	}
	if internalMillis > 0 {
		return time.UnixMilli(internalMillis).UTC()
	}
	return time.Time{}
}

// parseDateLoose tries layouts seen in the wild that net/mail rejects.
func parseDateLoose(h string) (time.Time, bool) {
	h = strings.TrimSpace(h)
	// Drop a trailing comment such as "(UTC)".
	if i := strings.Index(h, " ("); i > 0 {
		h = h[:i]
	}
	layouts := []string{
		time.RFC1123Z,
		time.RFC1123,
		time.RFC822Z,
		time.RFC822,
		time.RFC850,
		time.RFC3339,
		"Mon, 2 Jan 2006 15:04:05 -0700",
		"Mon, 2 Jan 2006 15:04:05 MST",
		"2 Jan 2006 15:04:05 -0700",
	}
	for _, l := range layouts {
		if t, err := time.Parse(l, h); err == nil {
			return t.UTC(), true
		}
	}
	return time.Time{}, false
}
