package service

import (
	"context"
	"sync"
	"time"

	"github.com/routinely/tracker/internal/core/domain"
)

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func newFakeClock(now time.Time) *fakeClock { return &fakeClock{now: now} }

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Set(t time.Time) {
	c.mu.Lock()
	c.now = t
	c.mu.Unlock()
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.now = c.now.Add(d)
	c.mu.Unlock()
}

// monday is 2026-03-02, a Monday.
func monday(hour, minute int) time.Time {
	return time.Date(2026, 3, 2, hour, minute, 0, 0, time.UTC)
}

// stubStore is an in-memory implementation of the user, task, routine and
// audit repositories.
type stubStore struct {
	users      map[int64]*domain.User
	tasks      map[int64]*domain.Task
	routines   map[int64]*domain.Routine
	executions []domain.RoutineExecution
	audit      []domain.AuditEntry
	nextID     int64
	failWith   error
}

func newStubStore() *stubStore {
	return &stubStore{
		users:    make(map[int64]*domain.User),
		tasks:    make(map[int64]*domain.Task),
		routines: make(map[int64]*domain.Routine),
		nextID:   100,
	}
}

func (s *stubStore) id() int64 {
	s.nextID++
	return s.nextID
}

type stubUsers struct{ *stubStore }
type stubTasks struct{ *stubStore }
type stubRoutines struct{ *stubStore }
type stubAudit struct{ *stubStore }

func (r stubUsers) Create(_ context.Context, u *domain.User) (*domain.User, error) {
	if r.failWith != nil {
		return nil, r.failWith
	}
	for _, existing := range r.users {
		if existing.Username == u.Username {
			return nil, domain.ErrDuplicateUsername
		}
	}
	c := *u
	if c.ID == 0 {
		c.ID = r.id()
	}
	r.users[c.ID] = &c
	out := c
	return &out, nil
}

func (r stubUsers) FindByID(_ context.Context, id int64) (*domain.User, error) {
	u, ok := r.users[id]
	if !ok {
		return nil, domain.ErrUserNotFound
	}
	c := *u
	return &c, nil
}

func (r stubUsers) FindByUsername(_ context.Context, username string) (*domain.User, error) {
	if r.failWith != nil {
		return nil, r.failWith
	}
	for _, u := range r.users {
		if u.Username == username {
			c := *u
			return &c, nil
		}
	}
	return nil, domain.ErrUserNotFound
}

func (r stubUsers) List(_ context.Context) ([]domain.User, error) {
	out := make([]domain.User, 0, len(r.users))
	for _, u := range r.users {
		out = append(out, *u)
	}
	return out, nil
}

func (r stubUsers) UpdatePassword(_ context.Context, id int64, hash string) error {
	u, ok := r.users[id]
	if !ok {
		return domain.ErrUserNotFound
	}
	u.PasswordHash = hash
	return nil
}

func (r stubUsers) UpdateProfile(_ context.Context, id int64, email string, notify bool) error {
	u, ok := r.users[id]
	if !ok {
		return domain.ErrUserNotFound
	}
	u.Email = email
	u.EmailNotifications = notify
	return nil
}

func (r stubUsers) Delete(_ context.Context, id int64) error {
	if _, ok := r.users[id]; !ok {
		return domain.ErrUserNotFound
	}
	delete(r.users, id)
	for tid, t := range r.tasks {
		if t.OwnerID == id {
			delete(r.tasks, tid)
		}
	}
	for rid, rt := range r.routines {
		if rt.OwnerID == id {
			delete(r.routines, rid)
		}
	}
	return nil
}

func (r stubTasks) Create(_ context.Context, t *domain.Task) (*domain.Task, error) {
	c := *t
	c.ID = r.id()
	r.tasks[c.ID] = &c
	out := c
	return &out, nil
}

func (r stubTasks) Update(_ context.Context, t *domain.Task) error {
	existing, ok := r.tasks[t.ID]
	if !ok || existing.OwnerID != t.OwnerID {
		return domain.ErrNotFound
	}
	t.Completed = existing.Completed
	t.CreatedAt = existing.CreatedAt
	c := *t
	r.tasks[t.ID] = &c
	return nil
}

func (r stubTasks) Toggle(_ context.Context, ownerID, taskID int64, at time.Time) error {
	if t, ok := r.tasks[taskID]; ok && t.OwnerID == ownerID {
		t.Completed = !t.Completed
		t.UpdatedAt = at
	}
	return nil
}

func (r stubTasks) Delete(_ context.Context, ownerID, taskID int64) error {
	if t, ok := r.tasks[taskID]; ok && t.OwnerID == ownerID {
		delete(r.tasks, taskID)
	}
	return nil
}

func (r stubTasks) List(_ context.Context, ownerID int64, filter domain.TaskFilter) ([]domain.Task, error) {
	out := []domain.Task{}
	for _, t := range r.tasks {
		if t.OwnerID != ownerID {
			continue
		}
		if filter == domain.TaskFilterPending && t.Completed || filter == domain.TaskFilterCompleted && !t.Completed {
			continue
		}
		out = append(out, *t)
	}
	return out, nil
}

func (r stubRoutines) Create(_ context.Context, rt *domain.Routine) (*domain.Routine, error) {
	c := *rt
	c.ID = r.id()
	r.routines[c.ID] = &c
	out := c
	return &out, nil
}

func (r stubRoutines) FindByID(_ context.Context, ownerID, routineID int64) (*domain.Routine, error) {
	rt, ok := r.routines[routineID]
	if !ok || rt.OwnerID != ownerID {
		return nil, domain.ErrNotFound
	}
	c := *rt
	return &c, nil
}

func (r stubRoutines) Toggle(_ context.Context, ownerID, routineID int64) error {
	if rt, ok := r.routines[routineID]; ok && rt.OwnerID == ownerID {
		rt.Active = !rt.Active
	}
	return nil
}

func (r stubRoutines) Delete(_ context.Context, ownerID, routineID int64) error {
	if rt, ok := r.routines[routineID]; ok && rt.OwnerID == ownerID {
		delete(r.routines, routineID)
	}
	return nil
}

func (r stubRoutines) List(_ context.Context, ownerID int64) ([]domain.Routine, error) {
	out := []domain.Routine{}
	for _, rt := range r.routines {
		if rt.OwnerID == ownerID {
			out = append(out, *rt)
		}
	}
	return out, nil
}

func (r stubRoutines) AppendExecution(_ context.Context, e *domain.RoutineExecution) (*domain.RoutineExecution, error) {
	c := *e
	c.ID = r.id()
	r.executions = append(r.executions, c)
	return &c, nil
}

func (r stubAudit) Append(_ context.Context, e *domain.AuditEntry) error {
	r.audit = append(r.audit, *e)
	return nil
}

func (r stubAudit) List(_ context.Context, limit int) ([]domain.AuditEntry, error) {
	if limit > len(r.audit) {
		limit = len(r.audit)
	}
	return append([]domain.AuditEntry(nil), r.audit[:limit]...), nil
}

// stubLimiter records calls and returns a fixed wait.
type stubLimiter struct {
	wait     time.Duration
	failures map[string]int
	resets   int
}

func newStubLimiter() *stubLimiter { return &stubLimiter{failures: make(map[string]int)} }

func (l *stubLimiter) Check(context.Context, string) (time.Duration, error) { return l.wait, nil }

func (l *stubLimiter) RecordFailure(_ context.Context, origin string) error {
	l.failures[origin]++
	return nil
}

func (l *stubLimiter) Reset(context.Context, string) error {
	l.resets++
	return nil
}

// stubQueue collects enqueued emails. When full is set every enqueue is dropped.
type stubQueue struct {
	mu   sync.Mutex
	msgs []domain.EmailMessage
	full bool
}

func (q *stubQueue) Enqueue(msg domain.EmailMessage) bool {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.full {
		return false
	}
	q.msgs = append(q.msgs, msg)
	return true
}

func (q *stubQueue) sent() []domain.EmailMessage {
	q.mu.Lock()
	defer q.mu.Unlock()
	return append([]domain.EmailMessage(nil), q.msgs...)
}
