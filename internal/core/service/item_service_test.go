package service

import (
	"context"
	"errors"
	"reflect"
	"testing"

	"github.com/rs/zerolog"

	"github.com/routinely/tracker/internal/core/domain"
)

func newItemFixture() (*ItemService, *stubStore, *fakeClock) {
	store := newStubStore()
	clock := newFakeClock(monday(8, 30))
	return NewItemService(stubTasks{store}, stubRoutines{store}, clock, zerolog.Nop()), store, clock
}

func TestItemService_AddTask_Validation(t *testing.T) {
	svc, _, _ := newItemFixture()
	ctx := context.Background()

	for _, in := range []domain.TaskInput{
		{Title: " a "},
		{Title: "Valid", Priority: "urgent"},
		{Title: "Valid", DueDate: "2026-02-30"},
		{Title: "Valid", DueDate: "tomorrow"},
	} {
		if _, err := svc.AddTask(ctx, 1, in); !errors.Is(err, domain.ErrValidation) {
			t.Fatalf("input %+v: expected ErrValidation, got %v", in, err)
		}
	}

	task, err := svc.AddTask(ctx, 1, domain.TaskInput{Title: "  Read book  "})
	if err != nil {
		t.Fatalf("add task: %v", err)
	}
	if task.Title != "Read book" || task.Priority != domain.PriorityMedium || task.Completed {
		t.Fatalf("unexpected defaults: %+v", task)
	}
}

func TestItemService_TaskRoundTrip(t *testing.T) {
	svc, _, clock := newItemFixture()
	ctx := context.Background()
	today := clock.Now().Format(domain.DateLayout)

	task, err := svc.AddTask(ctx, 1, domain.TaskInput{Title: "Buy milk", Priority: "alta", DueDate: today})
	if err != nil {
		t.Fatalf("add task: %v", err)
	}
	if task.Priority != domain.PriorityHigh {
		t.Fatalf("expected alias alta to map to high, got %s", task.Priority)
	}

	if err := svc.ToggleTask(ctx, 1, task.ID); err != nil {
		t.Fatalf("toggle: %v", err)
	}

	completed, _ := svc.ListTasks(ctx, 1, domain.TaskFilterCompleted)
	if len(completed) != 1 || completed[0].ID != task.ID {
		t.Fatalf("expected task in completed list, got %+v", completed)
	}
	pending, _ := svc.ListTasks(ctx, 1, domain.TaskFilterPending)
	if len(pending) != 0 {
		t.Fatalf("expected task excluded from pending, got %+v", pending)
	}
}

func TestItemService_ToggleForeignTaskIsNoop(t *testing.T) {
	svc, store, _ := newItemFixture()
	ctx := context.Background()

	task, _ := svc.AddTask(ctx, 1, domain.TaskInput{Title: "Mine"})
	if err := svc.ToggleTask(ctx, 2, task.ID); err != nil {
		t.Fatalf("toggle by another owner should not error: %v", err)
	}
	if store.tasks[task.ID].Completed {
		t.Fatalf("task of another owner was toggled")
	}
	if err := svc.DeleteTask(ctx, 2, task.ID); err != nil {
		t.Fatalf("delete by another owner should not error: %v", err)
	}
	if _, ok := store.tasks[task.ID]; !ok {
		t.Fatalf("task of another owner was deleted")
	}
}

func TestItemService_ListTasks_OrderIsStable(t *testing.T) {
	svc, _, _ := newItemFixture()
	ctx := context.Background()

	inputs := []domain.TaskInput{
		{Title: "No date high", Priority: "high"},
		{Title: "Later low", Priority: "low", DueDate: "2026-03-10"},
		{Title: "Soon low", Priority: "low", DueDate: "2026-03-03"},
		{Title: "Soon high", Priority: "high", DueDate: "2026-03-03"},
		{Title: "Soon medium", Priority: "medium", DueDate: "2026-03-03"},
	}
	for _, in := range inputs {
		if _, err := svc.AddTask(ctx, 1, in); err != nil {
			t.Fatalf("add: %v", err)
		}
	}

	first, _ := svc.ListTasks(ctx, 1, domain.TaskFilterAll)
	second, _ := svc.ListTasks(ctx, 1, domain.TaskFilterAll)
	if !reflect.DeepEqual(first, second) {
		t.Fatalf("listing is not idempotent")
	}

	var titles []string
	for _, task := range first {
		titles = append(titles, task.Title)
	}
	want := []string{"Soon high", "Soon medium", "Soon low", "Later low", "No date high"}
	if !reflect.DeepEqual(titles, want) {
		t.Fatalf("expected %v, got %v", want, titles)
	}
}

func TestItemService_UpdateTask(t *testing.T) {
	svc, _, _ := newItemFixture()
	ctx := context.Background()
	task, _ := svc.AddTask(ctx, 1, domain.TaskInput{Title: "Draft"})

	updated, err := svc.UpdateTask(ctx, 1, task.ID, domain.TaskInput{Title: "Final", Priority: "baixa"})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if updated.Title != "Final" || updated.Priority != domain.PriorityLow {
		t.Fatalf("unexpected update result: %+v", updated)
	}
	if _, err := svc.UpdateTask(ctx, 2, task.ID, domain.TaskInput{Title: "Hijack"}); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected ErrNotFound for foreign task, got %v", err)
	}
}

func TestItemService_AddRoutine_Validation(t *testing.T) {
	svc, _, _ := newItemFixture()
	ctx := context.Background()

	for _, in := range []domain.RoutineInput{
		{Title: "No days"},
		{Title: "Bad day", Days: []string{"someday"}},
		{Title: "Bad time", TimeSchedule: "7 o'clock", Days: []string{"monday"}},
		{Title: "Out of range", TimeSchedule: "24:10", Days: []string{"monday"}},
	} {
		if _, err := svc.AddRoutine(ctx, 1, in); !errors.Is(err, domain.ErrValidation) {
			t.Fatalf("input %+v: expected ErrValidation, got %v", in, err)
		}
	}

	r, err := svc.AddRoutine(ctx, 1, domain.RoutineInput{Title: "Gym", TimeSchedule: "18:00", Days: []string{"sexta", "monday", "quarta"}})
	if err != nil {
		t.Fatalf("add routine: %v", err)
	}
	if r.DaysOfWeek != "monday,wednesday,friday" || !r.Active {
		t.Fatalf("unexpected routine: %+v", r)
	}
}

func TestItemService_ListRoutines_ByTime(t *testing.T) {
	svc, _, _ := newItemFixture()
	ctx := context.Background()
	days := []string{"monday"}

	_, _ = svc.AddRoutine(ctx, 1, domain.RoutineInput{Title: "Whenever", Days: days})
	_, _ = svc.AddRoutine(ctx, 1, domain.RoutineInput{Title: "Evening", TimeSchedule: "21:00", Days: days})
	_, _ = svc.AddRoutine(ctx, 1, domain.RoutineInput{Title: "Morning", TimeSchedule: "7:05", Days: days})

	list, _ := svc.ListRoutines(ctx, 1)
	if len(list) != 3 || list[0].Title != "Morning" || list[1].Title != "Evening" || list[2].Title != "Whenever" {
		t.Fatalf("unexpected order: %+v", list)
	}
}

func TestItemService_DashboardAndExecutions(t *testing.T) {
	svc, store, _ := newItemFixture()
	ctx := context.Background()

	for i := 0; i < 7; i++ {
		_, _ = svc.AddTask(ctx, 1, domain.TaskInput{Title: "Task", DueDate: "2026-03-05"})
	}
	today, _ := svc.AddRoutine(ctx, 1, domain.RoutineInput{Title: "Monday thing", TimeSchedule: "09:00", Days: []string{"monday"}})
	_, _ = svc.AddRoutine(ctx, 1, domain.RoutineInput{Title: "Tuesday thing", Days: []string{"tuesday"}})
	off, _ := svc.AddRoutine(ctx, 1, domain.RoutineInput{Title: "Paused", Days: []string{"monday"}})
	_ = svc.ToggleRoutine(ctx, 1, off.ID)

	dash, err := svc.Dashboard(ctx, 1)
	if err != nil {
		t.Fatalf("dashboard: %v", err)
	}
	if len(dash.PendingTasks) != 5 {
		t.Fatalf("expected 5 pending tasks, got %d", len(dash.PendingTasks))
	}
	if len(dash.TodayRoutines) != 1 || dash.TodayRoutines[0].ID != today.ID {
		t.Fatalf("unexpected routines for today: %+v", dash.TodayRoutines)
	}
	if dash.Weekday != domain.Monday {
		t.Fatalf("expected monday, got %s", dash.Weekday)
	}

	exec, err := svc.LogExecution(ctx, 1, today.ID, "done early")
	if err != nil {
		t.Fatalf("log execution: %v", err)
	}
	if exec.ExecutedDate != "2026-03-02" || exec.ExecutedTime != "08:30" || len(store.executions) != 1 {
		t.Fatalf("unexpected execution: %+v", exec)
	}
	if _, err := svc.LogExecution(ctx, 2, today.ID, ""); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected ErrNotFound for foreign routine, got %v", err)
	}
}
