package domain

type NotificationKind string

const (
	KindRoutine NotificationKind = "routine"
	KindTask    NotificationKind = "task"
)

type Urgency string

const (
	UrgencyNow      Urgency = "now"
	UrgencyToday    Urgency = "today"
	UrgencyTomorrow Urgency = "tomorrow"
)

// Notification is one due item reported to the client. ID is stable for the
// same item on the same day, so clients can hide what they have already shown.
type Notification struct {
	ID          string           `json:"id"`
	Kind        NotificationKind `json:"type"`
	ItemID      int64            `json:"item_id"`
	Title       string           `json:"title"`
	Description string           `json:"description,omitempty"`
	Message     string           `json:"message"`
	Schedule    string           `json:"time,omitempty"`
	Priority    Priority         `json:"priority,omitempty"`
	DueDate     string           `json:"due_date,omitempty"`
	Urgency     Urgency          `json:"urgency"`
	Seen        bool             `json:"seen"`
}

// Emailable reports whether the notification warrants an email: routines due
// now and tasks due today.
func (n Notification) Emailable() bool {
	return n.Urgency == UrgencyNow || n.Urgency == UrgencyToday
}

// EmailMessage is a rendered email handed to the notification sink.
type EmailMessage struct {
	NotificationID string `json:"notification_id"`
	To             string `json:"to"`
	Subject        string `json:"subject"`
	HTMLBody       string `json:"html_body"`
}
