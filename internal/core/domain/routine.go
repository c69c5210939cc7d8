package domain

import (
	"fmt"
	"sort"
	"strings"
	"time"
)

type Weekday string

const (
	Monday    Weekday = "monday"
	Tuesday   Weekday = "tuesday"
	Wednesday Weekday = "wednesday"
	Thursday  Weekday = "thursday"
	Friday    Weekday = "friday"
	Saturday  Weekday = "saturday"
	Sunday    Weekday = "sunday"
)

// Weekdays lists the labels in calendar order, Monday first.
var Weekdays = []Weekday{Monday, Tuesday, Wednesday, Thursday, Friday, Saturday, Sunday}

var weekdayAliases = map[string]Weekday{
	"monday":    Monday,
	"tuesday":   Tuesday,
	"wednesday": Wednesday,
	"thursday":  Thursday,
	"friday":    Friday,
	"saturday":  Saturday,
	"sunday":    Sunday,
	"segunda":   Monday,
	"terca":     Tuesday,
	"terça":     Tuesday,
	"quarta":    Wednesday,
	"quinta":    Thursday,
	"sexta":     Friday,
	"sabado":    Saturday,
	"sábado":    Saturday,
	"domingo":   Sunday,
}

// WeekdayOf maps a time to its weekday label.
func WeekdayOf(t time.Time) Weekday {
	switch t.Weekday() {
	case time.Monday:
		return Monday
	case time.Tuesday:
		return Tuesday
	case time.Wednesday:
		return Wednesday
	case time.Thursday:
		return Thursday
	case time.Friday:
		return Friday
	case time.Saturday:
		return Saturday
	default:
		return Sunday
	}
}

func ParseWeekday(s string) (Weekday, error) {
	d, ok := weekdayAliases[strings.ToLower(strings.TrimSpace(s))]
	if !ok {
		return "", NewValidationError("days_of_week", fmt.Sprintf("unknown weekday %q", s))
	}
	return d, nil
}

func (d Weekday) bit() WeekdaySet {
	for i, w := range Weekdays {
		if w == d {
			return 1 << i
		}
	}
	return 0
}

// WeekdaySet is an order-irrelevant set of weekdays.
type WeekdaySet uint8

func NewWeekdaySet(days ...Weekday) WeekdaySet {
	var s WeekdaySet
	for _, d := range days {
		s |= d.bit()
	}
	return s
}

// ParseWeekdaySet builds a non-empty set from user-supplied labels.
func ParseWeekdaySet(labels []string) (WeekdaySet, error) {
	var s WeekdaySet
	for _, l := range labels {
		d, err := ParseWeekday(l)
		if err != nil {
			return 0, err
		}
		s |= d.bit()
	}
	if s.Empty() {
		return 0, NewValidationError("days_of_week", "at least one weekday is required")
	}
	return s, nil
}

// DecodeWeekdaySet parses the comma separated stored form.
func DecodeWeekdaySet(stored string) (WeekdaySet, error) {
	if strings.TrimSpace(stored) == "" {
		return 0, fmt.Errorf("empty weekday set")
	}
	return ParseWeekdaySet(strings.Split(stored, ","))
}

func (s WeekdaySet) Contains(d Weekday) bool { return s&d.bit() != 0 }

func (s WeekdaySet) Empty() bool { return s == 0 }

func (s WeekdaySet) Days() []Weekday {
	days := make([]Weekday, 0, len(Weekdays))
	for _, d := range Weekdays {
		if s.Contains(d) {
			days = append(days, d)
		}
	}
	return days
}

// String renders the canonical stored form, e.g. "monday,wednesday".
func (s WeekdaySet) String() string {
	days := s.Days()
	labels := make([]string, len(days))
	for i, d := range days {
		labels[i] = string(d)
	}
	return strings.Join(labels, ",")
}

// ParseClock parses a wall-clock time (HH:MM, seconds tolerated) into minutes
// since midnight.
func ParseClock(s string) (int, error) {
	s = strings.TrimSpace(s)
	for _, layout := range []string{"15:04", "15:04:05"} {
		if t, err := time.Parse(layout, s); err == nil {
			return t.Hour()*60 + t.Minute(), nil
		}
	}
	return 0, NewValidationError("time_schedule", "must be a time in HH:MM format")
}

// FormatClock renders minutes since midnight as HH:MM.
func FormatClock(minutes int) string {
	return fmt.Sprintf("%02d:%02d", minutes/60, minutes%60)
}

// Routine is a recurring daily activity. TimeSchedule and DaysOfWeek keep
// their stored text so a corrupt row can be detected and skipped.
type Routine struct {
	ID           int64     `json:"id"`
	OwnerID      int64     `json:"owner_id"`
	Title        string    `json:"title"`
	Description  string    `json:"description,omitempty"`
	TimeSchedule string    `json:"time_schedule,omitempty"`
	DaysOfWeek   string    `json:"days_of_week"`
	Active       bool      `json:"active"`
	CreatedAt    time.Time `json:"created_at"`
}

func (r *Routine) Weekdays() (WeekdaySet, error) {
	return DecodeWeekdaySet(r.DaysOfWeek)
}

// ScheduleMinutes returns the scheduled minute of day. ok is false when the
// routine has no schedule.
func (r *Routine) ScheduleMinutes() (minutes int, ok bool, err error) {
	if strings.TrimSpace(r.TimeSchedule) == "" {
		return 0, false, nil
	}
	m, err := ParseClock(r.TimeSchedule)
	if err != nil {
		return 0, false, err
	}
	return m, true, nil
}

// RoutineInput is the user-supplied shape of a routine before validation.
type RoutineInput struct {
	Title        string
	Description  string
	TimeSchedule string
	Days         []string
}

func (in RoutineInput) Normalize() (Routine, error) {
	title, err := ValidateTitle(in.Title)
	if err != nil {
		return Routine{}, err
	}
	days, err := ParseWeekdaySet(in.Days)
	if err != nil {
		return Routine{}, err
	}
	var schedule string
	if strings.TrimSpace(in.TimeSchedule) != "" {
		m, err := ParseClock(in.TimeSchedule)
		if err != nil {
			return Routine{}, err
		}
		schedule = FormatClock(m)
	}
	return Routine{
		Title:        title,
		Description:  strings.TrimSpace(in.Description),
		TimeSchedule: schedule,
		DaysOfWeek:   days.String(),
		Active:       true,
	}, nil
}

// SortRoutines orders by ascending schedule (unscheduled last), then id.
func SortRoutines(routines []Routine) {
	sort.SliceStable(routines, func(i, j int) bool {
		a, b := routines[i].TimeSchedule, routines[j].TimeSchedule
		if a != b {
			if a == "" {
				return false
			}
			if b == "" {
				return true
			}
			return a < b
		}
		return routines[i].ID < routines[j].ID
	})
}

// RoutineExecution is an append-only completion record.
type RoutineExecution struct {
	ID           int64     `json:"id"`
	RoutineID    int64     `json:"routine_id"`
	ExecutedDate string    `json:"executed_date"`
	ExecutedTime string    `json:"executed_time"`
	Notes        string    `json:"notes,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
}

// Dashboard summarises what the user has on for today.
type Dashboard struct {
	Date          string    `json:"date"`
	Weekday       Weekday   `json:"weekday"`
	PendingTasks  []Task    `json:"pending_tasks"`
	TodayRoutines []Routine `json:"today_routines"`
}
