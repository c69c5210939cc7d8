package domain

import (
	"sort"
	"strings"
	"time"
	"unicode/utf8"
)

// DateLayout is the calendar-date format used for due dates and execution dates.
const DateLayout = "2006-01-02"

const (
	MinTitleLength = 2
	MaxTitleLength = 255
)

type Priority string

const (
	PriorityLow    Priority = "low"
	PriorityMedium Priority = "medium"
	PriorityHigh   Priority = "high"
)

var priorityAliases = map[string]Priority{
	"low":    PriorityLow,
	"baixa":  PriorityLow,
	"medium": PriorityMedium,
	"media":  PriorityMedium,
	"média":  PriorityMedium,
	"high":   PriorityHigh,
	"alta":   PriorityHigh,
}

// ParsePriority accepts the canonical labels and their Portuguese aliases.
// An empty value defaults to medium.
func ParsePriority(s string) (Priority, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "" {
		return PriorityMedium, nil
	}
	p, ok := priorityAliases[s]
	if !ok {
		return "", NewValidationError("priority", "must be one of low, medium, high")
	}
	return p, nil
}

// Rank orders priorities: high > medium > low. Unknown values rank lowest.
func (p Priority) Rank() int {
	switch p {
	case PriorityHigh:
		return 3
	case PriorityMedium:
		return 2
	case PriorityLow:
		return 1
	default:
		return 0
	}
}

type TaskFilter string

const (
	TaskFilterAll       TaskFilter = "all"
	TaskFilterPending   TaskFilter = "pending"
	TaskFilterCompleted TaskFilter = "completed"
)

func ParseTaskFilter(s string) (TaskFilter, error) {
	switch f := TaskFilter(strings.ToLower(strings.TrimSpace(s))); f {
	case "":
		return TaskFilterAll, nil
	case TaskFilterAll, TaskFilterPending, TaskFilterCompleted:
		return f, nil
	default:
		return "", NewValidationError("filter", "must be one of all, pending, completed")
	}
}

// Task is a to-do item owned by exactly one user.
// DueDate holds the stored YYYY-MM-DD value, or "" when the task has no due date.
type Task struct {
	ID          int64     `json:"id"`
	OwnerID     int64     `json:"owner_id"`
	Title       string    `json:"title"`
	Description string    `json:"description,omitempty"`
	Completed   bool      `json:"completed"`
	Priority    Priority  `json:"priority"`
	DueDate     string    `json:"due_date,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// TaskInput is the user-supplied shape of a task before validation.
type TaskInput struct {
	Title       string
	Description string
	Priority    string
	DueDate     string
}

// Normalize validates the input and returns a task carrying the cleaned fields.
func (in TaskInput) Normalize() (Task, error) {
	title, err := ValidateTitle(in.Title)
	if err != nil {
		return Task{}, err
	}
	priority, err := ParsePriority(in.Priority)
	if err != nil {
		return Task{}, err
	}
	due, err := ParseDueDate(in.DueDate)
	if err != nil {
		return Task{}, err
	}
	return Task{
		Title:       title,
		Description: strings.TrimSpace(in.Description),
		Priority:    priority,
		DueDate:     due,
	}, nil
}

func ValidateTitle(title string) (string, error) {
	title = strings.TrimSpace(title)
	n := utf8.RuneCountInString(title)
	if n < MinTitleLength || n > MaxTitleLength {
		return "", NewValidationError("title", "must be between 2 and 255 characters")
	}
	return title, nil
}

// ParseDueDate checks that s is a calendar date. Empty means no due date.
func ParseDueDate(s string) (string, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return "", nil
	}
	d, err := time.Parse(DateLayout, s)
	if err != nil {
		return "", NewValidationError("due_date", "must be a date in YYYY-MM-DD format")
	}
	return d.Format(DateLayout), nil
}

// SortTasks orders by ascending due date (undated last), then descending
// priority, then ascending id.
func SortTasks(tasks []Task) {
	sort.SliceStable(tasks, func(i, j int) bool {
		a, b := tasks[i], tasks[j]
		if a.DueDate != b.DueDate {
			if a.DueDate == "" {
				return false
			}
			if b.DueDate == "" {
				return true
			}
			return a.DueDate < b.DueDate
		}
		if ra, rb := a.Priority.Rank(), b.Priority.Rank(); ra != rb {
			return ra > rb
		}
		return a.ID < b.ID
	})
}
