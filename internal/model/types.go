package model

import "time"

// Provider names the OAuth identity provider a credential belongs to.
type Provider string

const ProviderGoogle Provider = "google"

// Credential is a delegated OAuth token pair for one user and provider.
// ExpiresAt is in epoch seconds.
type Credential struct {
	ID           string   `db:"id" json:"id"`
	UserID       string   `db:"user_id" json:"user_id"`
	Provider     Provider `db:"provider" json:"provider"`
	AccessToken  string   `db:"access_token" json:"access_token"`
	RefreshToken string   `db:"refresh_token" json:"refresh_token,omitempty"`
	ExpiresAt    int64    `db:"expires_at" json:"expires_at"`
	Scope        string   `db:"scope" json:"scope,omitempty"`
	CreatedAt    int64    `db:"created_at" json:"created_at"`
	UpdatedAt    int64    `db:"updated_at" json:"updated_at"`
}

// Person is a display name plus address, used for senders and organizers.
type Person struct {
	Name  string `json:"name"`
	Email string `json:"email"`
}

// NormalizedMessage is one Gmail message reduced to what the dashboard shows.
type NormalizedMessage struct {
	ID       string    `json:"id"`
	ThreadID string    `json:"threadId"`
	Subject  string    `json:"subject"`
	Snippet  string    `json:"snippet"`
	From     Person    `json:"from"`
	Date     time.Time `json:"date"`
	IsUnread bool      `json:"isUnread"`
	Labels   []string  `json:"labels"`
}

// HasLabel reports whether the provider assigned the given label id.
func (m NormalizedMessage) HasLabel(label string) bool {
	for _, l := range m.Labels {
		if l == label {
			return true
		}
	}
	return false
}

// ThreadMessage is one message of an expanded conversation.
type ThreadMessage struct {
	ID   string    `json:"id"`
	From Person    `json:"from"`
	Date time.Time `json:"date"`
	Body string    `json:"body"`
}

type Attendee struct {
	Name           string `json:"name"`
	Email          string `json:"email"`
	ResponseStatus string `json:"responseStatus"`
}

type Organizer struct {
	Name  string `json:"name"`
	Email string `json:"email"`
	Self  bool   `json:"self"`
}

// NormalizedEvent is a calendar event for today. Start and End keep the
// provider's RFC 3339 dateTime, or the bare date for all-day events.
type NormalizedEvent struct {
	ID          string     `json:"id"`
	Title       string     `json:"title"`
	Description *string    `json:"description"`
	Start       string     `json:"start"`
	End         string     `json:"end"`
	IsAllDay    bool       `json:"isAllDay"`
	Location    *string    `json:"location"`
	MeetLink    *string    `json:"meetLink"`
	Attendees   []Attendee `json:"attendees"`
	Organizer   *Organizer `json:"organizer"`
}

// Origin tags where a task came from.
type Origin string

const (
	OriginMail     Origin = "mail"
	OriginCalendar Origin = "calendar"
)

type Urgency string

const (
	UrgencyHigh   Urgency = "high"
	UrgencyMedium Urgency = "medium"
	UrgencyLow    Urgency = "low"
)

// PriorityTask is one entry of the ranked task list.
type PriorityTask struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Source      Origin    `json:"source"`
	Urgency     Urgency   `json:"urgency"`
	Sender      string    `json:"sender,omitempty"`
	SenderEmail string    `json:"senderEmail,omitempty"`
	Timestamp   time.Time `json:"timestamp"`
	DisplayTime string    `json:"displayTime"`
	ThreadID    string    `json:"threadId,omitempty"`
}

// Dashboard is the merged view served to the presentation layer.
type Dashboard struct {
	Tasks          []PriorityTask    `json:"tasks"`
	Meetings       []NormalizedEvent `json:"meetings"`
	AttentionCount int               `json:"attentionCount"`
	Summary        string            `json:"summary"`
}
