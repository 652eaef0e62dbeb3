package gmail

import (
	"sort"
	"strings"

	"dayboard/internal/model"
)

var urgentKeywords = []string{"urgent", "asap", "important", "action required", "deadline", "today"}

// Score ranks a message: INBOX +2, IMPORTANT +3, STARRED +3, and +2 once when
// the subject mentions an urgent keyword.
func Score(m model.NormalizedMessage) int {
	score := 0
	if m.HasLabel("INBOX") {
		score += 2
	}
	if m.HasLabel("IMPORTANT") {
		score += 3
	}
	if m.HasLabel("STARRED") {
		score += 3
	}
	subject := strings.ToLower(m.Subject)
	for _, kw := range urgentKeywords {
		if strings.Contains(subject, kw) {
			score += 2
			break
		}
	}
	return score
}

// SortByPriority orders by score desc, then date desc. Ties keep input order.
func SortByPriority(msgs []model.NormalizedMessage) {
	scores := make(map[string]int, len(msgs))
	for _, m := range msgs {
		scores[m.ID] = Score(m)
	}
	sort.SliceStable(msgs, func(i, j int) bool {
		si, sj := scores[msgs[i].ID], scores[msgs[j].ID]
		if si != sj {
			return si > sj
		}
		return msgs[i].Date.After(msgs[j].Date)
	})
}
