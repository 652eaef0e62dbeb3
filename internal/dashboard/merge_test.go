package dashboard

import (
	"fmt"
	"testing"
	"time"

	"dayboard/internal/model"
)

func TestMergeUrgencyTiers(t *testing.T) {
	now := time.Date(2024, 3, 15, 12, 0, 0, 0, time.UTC)
	var msgs []model.NormalizedMessage
	for i := 0; i < 7; i++ {
		msgs = append(msgs, model.NormalizedMessage{
			ID:       fmt.Sprintf("m%d", i),
			ThreadID: fmt.Sprintf("t%d", i),
			Subject:  "s",
			From:     model.Person{Name: "Ann", Email: "ann@example.com"},
			Date:     now.Add(-time.Duration(i) * time.Hour),
		})
	}

	d := Merge(msgs, nil, now)
	want := []model.Urgency{"high", "high", "medium", "medium", "medium", "low", "low"}
	if len(d.Tasks) != len(want) {
		t.Fatalf("tasks = %d", len(d.Tasks))
	}
	for i, u := range want {
		if d.Tasks[i].Urgency != u {
			t.Errorf("task %d urgency = %s; want %s", i, d.Tasks[i].Urgency, u)
		}
		if d.Tasks[i].ID != msgs[i].ID {
			t.Errorf("task %d id = %s; order not preserved", i, d.Tasks[i].ID)
		}
	}
	first := d.Tasks[0]
	if first.Source != model.OriginMail || first.Sender != "Ann" || first.SenderEmail != "ann@example.com" || first.ThreadID != "t0" {
		t.Errorf("task fields = %+v", first)
	}
	if first.DisplayTime != "Just now" || d.Tasks[3].DisplayTime != "3h ago" {
		t.Errorf("display times = %q, %q", first.DisplayTime, d.Tasks[3].DisplayTime)
	}
	if d.Meetings == nil {
		t.Errorf("meetings should be an empty slice")
	}
	if d.AttentionCount != 7 {
		t.Errorf("AttentionCount = %d", d.AttentionCount)
	}
}

func TestMergeEmpty(t *testing.T) {
	d := Merge(nil, nil, time.Now())
	if d.Tasks == nil || len(d.Tasks) != 0 || d.AttentionCount != 0 {
		t.Fatalf("dashboard = %+v", d)
	}
	if d.Summary != "No items requiring attention today" {
		t.Fatalf("summary = %q", d.Summary)
	}
}

func TestSummary(t *testing.T) {
	tests := []struct {
		emails, meetings int
		want             string
	}{
		{0, 0, "No items requiring attention today"},
		{1, 0, "You have 1 email needing your attention"},
		{3, 1, "You have 3 emails and 1 meeting needing your attention"},
		{0, 2, "You have 2 meetings needing your attention"},
	}
	for _, tc := range tests {
		if got := Summary(tc.emails, tc.meetings); got != tc.want {
			t.Errorf("Summary(%d, %d) = %q; want %q", tc.emails, tc.meetings, got, tc.want)
		}
	}
}
