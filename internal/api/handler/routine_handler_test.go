package handler

import (
	"context"
	"errors"
	"net/http"
	"testing"

	"github.com/routinely/tracker/internal/core/domain"
)

func TestRoutineHandler_Create(t *testing.T) {
	svc := &stubItemService{
		addRoutineFn: func(_ context.Context, ownerID int64, in domain.RoutineInput) (*domain.Routine, error) {
			if len(in.Days) != 2 || in.Days[0] != "segunda" || in.TimeSchedule != "07:30" {
				t.Fatalf("unexpected input %+v", in)
			}
			return &domain.Routine{ID: 2, OwnerID: ownerID, Title: in.Title, DaysOfWeek: "monday,friday", Active: true}, nil
		},
	}
	h := NewRoutineHandler(svc)

	c, rec := newJSONContext(http.MethodPost, "/api/routines",
		`{"title":"Run","time_schedule":"07:30","days_of_week":["segunda","friday"]}`, 5)
	if err := h.Create(c); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d", rec.Code)
	}
}

func TestRoutineHandler_Create_MissingDays(t *testing.T) {
	h := NewRoutineHandler(&stubItemService{})

	c, _ := newJSONContext(http.MethodPost, "/api/routines", `{"title":"Run"}`, 5)
	err := h.Create(c)

	var ve *domain.ValidationError
	if !errors.As(err, &ve) || ve.Field != "days_of_week" {
		t.Fatalf("expected days_of_week validation error, got %v", err)
	}
}

func TestRoutineHandler_LogExecution_EmptyBody(t *testing.T) {
	svc := &stubItemService{
		logExecFn: func(_ context.Context, ownerID, routineID int64, notes string) (*domain.RoutineExecution, error) {
			if routineID != 2 || notes != "" {
				t.Fatalf("unexpected routine %d notes %q", routineID, notes)
			}
			return &domain.RoutineExecution{ID: 1, RoutineID: routineID, ExecutedDate: "2026-03-02", ExecutedTime: "07:31"}, nil
		},
	}
	h := NewRoutineHandler(svc)

	c, rec := newJSONContext(http.MethodPost, "/api/routines/2/executions", "", 5)
	c.SetParamNames("id")
	c.SetParamValues("2")
	if err := h.LogExecution(c); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d", rec.Code)
	}
}

func TestRoutineHandler_LogExecution_WithNotes(t *testing.T) {
	var got string
	svc := &stubItemService{
		logExecFn: func(_ context.Context, _, routineID int64, notes string) (*domain.RoutineExecution, error) {
			got = notes
			return &domain.RoutineExecution{RoutineID: routineID, Notes: notes}, nil
		},
	}
	h := NewRoutineHandler(svc)

	c, _ := newJSONContext(http.MethodPost, "/api/routines/2/executions", `{"notes":"felt good"}`, 5)
	c.SetParamNames("id")
	c.SetParamValues("2")
	if err := h.LogExecution(c); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != "felt good" {
		t.Fatalf("notes not forwarded, got %q", got)
	}
}

func TestRoutineHandler_Toggle_ForwardsError(t *testing.T) {
	svc := &stubItemService{
		toggleRoutFn: func(context.Context, int64, int64) error {
			return domain.ErrStoreUnavailable
		},
	}
	h := NewRoutineHandler(svc)

	c, _ := newJSONContext(http.MethodPost, "/api/routines/2/toggle", "", 5)
	c.SetParamNames("id")
	c.SetParamValues("2")
	if err := h.Toggle(c); !errors.Is(err, domain.ErrStoreUnavailable) {
		t.Fatalf("expected ErrStoreUnavailable, got %v", err)
	}
}
