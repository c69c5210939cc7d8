package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/rs/zerolog"

	"github.com/routinely/tracker/internal/core/domain"
	"github.com/routinely/tracker/internal/core/ports"
)

const dashboardTaskLimit = 5

// ItemService manages the tasks and routines of a single owner.
type ItemService struct {
	tasks    ports.TaskRepository
	routines ports.RoutineRepository
	clock    ports.Clock
	log      zerolog.Logger
}

func NewItemService(tasks ports.TaskRepository, routines ports.RoutineRepository, clock ports.Clock, log zerolog.Logger) *ItemService {
	return &ItemService{tasks: tasks, routines: routines, clock: clock, log: log}
}

func (s *ItemService) AddTask(ctx context.Context, ownerID int64, in domain.TaskInput) (*domain.Task, error) {
	task, err := in.Normalize()
	if err != nil {
		return nil, err
	}
	now := s.clock.Now().UTC()
	task.OwnerID = ownerID
	task.CreatedAt = now
	task.UpdatedAt = now

	created, err := s.tasks.Create(ctx, &task)
	if err != nil {
		return nil, fmt.Errorf("add task: %w", err)
	}
	return created, nil
}

func (s *ItemService) UpdateTask(ctx context.Context, ownerID, taskID int64, in domain.TaskInput) (*domain.Task, error) {
	task, err := in.Normalize()
	if err != nil {
		return nil, err
	}
	task.ID = taskID
	task.OwnerID = ownerID
	task.UpdatedAt = s.clock.Now().UTC()

	if err := s.tasks.Update(ctx, &task); err != nil {
		return nil, fmt.Errorf("update task: %w", err)
	}
	return &task, nil
}

// ToggleTask flips completion. Tasks owned by someone else are left alone
// without an error.
func (s *ItemService) ToggleTask(ctx context.Context, ownerID, taskID int64) error {
	if err := s.tasks.Toggle(ctx, ownerID, taskID, s.clock.Now().UTC()); err != nil {
		return fmt.Errorf("toggle task: %w", err)
	}
	return nil
}

func (s *ItemService) DeleteTask(ctx context.Context, ownerID, taskID int64) error {
	if err := s.tasks.Delete(ctx, ownerID, taskID); err != nil {
		return fmt.Errorf("delete task: %w", err)
	}
	return nil
}

func (s *ItemService) ListTasks(ctx context.Context, ownerID int64, filter domain.TaskFilter) ([]domain.Task, error) {
	tasks, err := s.tasks.List(ctx, ownerID, filter)
	if err != nil {
		return nil, fmt.Errorf("list tasks: %w", err)
	}
	domain.SortTasks(tasks)
	return tasks, nil
}

func (s *ItemService) AddRoutine(ctx context.Context, ownerID int64, in domain.RoutineInput) (*domain.Routine, error) {
	routine, err := in.Normalize()
	if err != nil {
		return nil, err
	}
	routine.OwnerID = ownerID
	routine.CreatedAt = s.clock.Now().UTC()

	created, err := s.routines.Create(ctx, &routine)
	if err != nil {
		return nil, fmt.Errorf("add routine: %w", err)
	}
	return created, nil
}

func (s *ItemService) ToggleRoutine(ctx context.Context, ownerID, routineID int64) error {
	if err := s.routines.Toggle(ctx, ownerID, routineID); err != nil {
		return fmt.Errorf("toggle routine: %w", err)
	}
	return nil
}

func (s *ItemService) DeleteRoutine(ctx context.Context, ownerID, routineID int64) error {
	if err := s.routines.Delete(ctx, ownerID, routineID); err != nil {
		return fmt.Errorf("delete routine: %w", err)
	}
	return nil
}

func (s *ItemService) ListRoutines(ctx context.Context, ownerID int64) ([]domain.Routine, error) {
	routines, err := s.routines.List(ctx, ownerID)
	if err != nil {
		return nil, fmt.Errorf("list routines: %w", err)
	}
	domain.SortRoutines(routines)
	return routines, nil
}

// LogExecution appends a completion record stamped with the current date and time.
func (s *ItemService) LogExecution(ctx context.Context, ownerID, routineID int64, notes string) (*domain.RoutineExecution, error) {
	if _, err := s.routines.FindByID(ctx, ownerID, routineID); err != nil {
		return nil, err
	}
	now := s.clock.Now()
	exec, err := s.routines.AppendExecution(ctx, &domain.RoutineExecution{
		RoutineID:    routineID,
		ExecutedDate: now.Format(domain.DateLayout),
		ExecutedTime: now.Format("15:04"),
		Notes:        strings.TrimSpace(notes),
		CreatedAt:    now.UTC(),
	})
	if err != nil {
		return nil, fmt.Errorf("log execution: %w", err)
	}
	return exec, nil
}

// Dashboard returns the first pending tasks and the active routines scheduled
// for today.
func (s *ItemService) Dashboard(ctx context.Context, ownerID int64) (*domain.Dashboard, error) {
	now := s.clock.Now()
	today := domain.WeekdayOf(now)

	tasks, err := s.ListTasks(ctx, ownerID, domain.TaskFilterPending)
	if err != nil {
		return nil, err
	}
	if len(tasks) > dashboardTaskLimit {
		tasks = tasks[:dashboardTaskLimit]
	}

	routines, err := s.ListRoutines(ctx, ownerID)
	if err != nil {
		return nil, err
	}
	todays := make([]domain.Routine, 0, len(routines))
	for _, r := range routines {
		if !r.Active {
			continue
		}
		days, err := r.Weekdays()
		if err != nil {
			s.log.Warn().Err(err).Int64("routine_id", r.ID).Msg("skipping routine with malformed days")
			continue
		}
		if days.Contains(today) {
			todays = append(todays, r)
		}
	}

	return &domain.Dashboard{
		Date:          now.Format(domain.DateLayout),
		Weekday:       today,
		PendingTasks:  tasks,
		TodayRoutines: todays,
	}, nil
}
