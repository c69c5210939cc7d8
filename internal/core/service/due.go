package service

import (
	"fmt"
	"sort"
	"time"

	"github.com/rs/zerolog"

	"github.com/routinely/tracker/internal/core/domain"
	"github.com/routinely/tracker/internal/metrics"
)

// dueTolerance absorbs poll jitter around a routine's scheduled minute.
const dueTolerance = 1

// computeDue selects the routines due now and the incomplete tasks due today
// or tomorrow. Items with malformed stored values are logged and skipped.
// The result is ordered and free of duplicate ids.
func computeDue(now time.Time, routines []domain.Routine, tasks []domain.Task, log zerolog.Logger) []domain.Notification {
	today := now.Format(domain.DateLayout)
	tomorrow := now.AddDate(0, 0, 1).Format(domain.DateLayout)
	weekday := domain.WeekdayOf(now)
	nowMinutes := now.Hour()*60 + now.Minute()

	var due []domain.Notification
	seen := make(map[string]struct{})
	add := func(n domain.Notification) {
		if _, dup := seen[n.ID]; dup {
			return
		}
		seen[n.ID] = struct{}{}
		due = append(due, n)
	}

	var routineDue []domain.Notification
	for _, r := range routines {
		if !r.Active {
			continue
		}
		days, err := r.Weekdays()
		if err != nil {
			log.Warn().Err(err).Int64("routine_id", r.ID).Str("days_of_week", r.DaysOfWeek).Msg("skipping routine with malformed days")
			metrics.ItemsSkippedTotal.WithLabelValues("days").Inc()
			continue
		}
		if !days.Contains(weekday) {
			continue
		}
		minutes, scheduled, err := r.ScheduleMinutes()
		if err != nil {
			log.Warn().Err(err).Int64("routine_id", r.ID).Str("time_schedule", r.TimeSchedule).Msg("skipping routine with malformed schedule")
			metrics.ItemsSkippedTotal.WithLabelValues("schedule").Inc()
			continue
		}
		if !scheduled || abs(nowMinutes-minutes) > dueTolerance {
			continue
		}
		schedule := domain.FormatClock(minutes)
		routineDue = append(routineDue, domain.Notification{
			ID:          fmt.Sprintf("routine-%d-%s", r.ID, today),
			Kind:        domain.KindRoutine,
			ItemID:      r.ID,
			Title:       r.Title,
			Description: r.Description,
			Message:     fmt.Sprintf("Time for %s (%s)", r.Title, schedule),
			Schedule:    schedule,
			Urgency:     domain.UrgencyNow,
		})
	}
	sort.SliceStable(routineDue, func(i, j int) bool {
		if routineDue[i].Schedule != routineDue[j].Schedule {
			return routineDue[i].Schedule < routineDue[j].Schedule
		}
		return routineDue[i].ItemID < routineDue[j].ItemID
	})

	var taskDue []domain.Notification
	for _, t := range tasks {
		if t.Completed || t.DueDate == "" {
			continue
		}
		d, err := time.Parse(domain.DateLayout, t.DueDate)
		if err != nil {
			log.Warn().Err(err).Int64("task_id", t.ID).Str("due_date", t.DueDate).Msg("skipping task with malformed due date")
			metrics.ItemsSkippedTotal.WithLabelValues("due_date").Inc()
			continue
		}
		var urgency domain.Urgency
		switch d.Format(domain.DateLayout) {
		case today:
			urgency = domain.UrgencyToday
		case tomorrow:
			urgency = domain.UrgencyTomorrow
		default:
			continue
		}
		taskDue = append(taskDue, domain.Notification{
			ID:          fmt.Sprintf("task-%d-%s", t.ID, today),
			Kind:        domain.KindTask,
			ItemID:      t.ID,
			Title:       t.Title,
			Description: t.Description,
			Message:     fmt.Sprintf("%s is due %s", t.Title, urgency),
			Priority:    t.Priority,
			DueDate:     t.DueDate,
			Urgency:     urgency,
		})
	}
	sort.SliceStable(taskDue, func(i, j int) bool {
		a, b := taskDue[i], taskDue[j]
		if a.Urgency != b.Urgency {
			return a.Urgency == domain.UrgencyToday
		}
		if ra, rb := a.Priority.Rank(), b.Priority.Rank(); ra != rb {
			return ra > rb
		}
		return a.ItemID < b.ItemID
	})

	for _, n := range routineDue {
		add(n)
	}
	for _, n := range taskDue {
		add(n)
	}
	return due
}

func abs(n int) int {
	if n < 0 {
		return -n
	}
	return n
}
