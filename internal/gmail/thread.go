package gmail

import (
	"context"
	"log/slog"

	"dayboard/internal/model"
	"dayboard/internal/util"

	gmailv1 "google.golang.org/api/gmail/v1"
)

const threadLimit = 5

// FetchThread returns the last five messages of a conversation, oldest
// first, with plain-text bodies. Messages without a body are dropped and
// failures yield an empty slice.
func FetchThread(ctx context.Context, svc *gmailv1.Service, threadID string, logger *slog.Logger) []model.ThreadMessage {
	th, err := svc.Users.Threads.Get(user, threadID).
		Format("full").
		Context(ctx).
		Do()
	if err != nil {
		logger.Error("get thread", "thread_id", threadID, "error", err)
		return []model.ThreadMessage{}
	}

	msgs := th.Messages
	if len(msgs) > threadLimit {
		msgs = msgs[len(msgs)-threadLimit:]
	}

	out := make([]model.ThreadMessage, 0, len(msgs))
	for _, m := range msgs {
		if m == nil || m.Payload == nil {
			continue
		}
		body := util.Truncate(extractBody(m.Payload), util.MaxBodyChars)
		if body == "" {
			continue
		}
		from, _, date := scanHeaders(m.Payload.Headers)
		out = append(out, model.ThreadMessage{
			ID:   m.Id,
			From: util.ParseFrom(from),
			Date: messageDate(date, m.InternalDate),
			Body: body,
		})
	}
	return out
}
