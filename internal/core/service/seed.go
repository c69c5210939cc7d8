package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/routinely/tracker/internal/core/domain"
	"github.com/routinely/tracker/internal/core/ports"
)

// Seed ids of the two protected accounts.
const (
	AdminUserID   int64 = 1
	PrimaryUserID int64 = 2
)

// ErrSeedRequired is returned when the store is empty and no seed
// credentials were configured.
var ErrSeedRequired = errors.New("store is empty and seed passwords are not set")

// SeedAccount describes one of the accounts created on first start.
type SeedAccount struct {
	Username    string
	Password    string
	DisplayName string
}

// Seeder creates the protected accounts and a few example items on an
// empty store, and checks that an existing store still holds them.
type Seeder struct {
	users     ports.UserRepository
	tasks     ports.TaskRepository
	routines  ports.RoutineRepository
	clock     ports.Clock
	protected []int64
	log       zerolog.Logger
}

func NewSeeder(users ports.UserRepository, tasks ports.TaskRepository, routines ports.RoutineRepository, clock ports.Clock, protected []int64, log zerolog.Logger) *Seeder {
	return &Seeder{users: users, tasks: tasks, routines: routines, clock: clock, protected: protected, log: log}
}

// Seed populates an empty store. On a populated store it only verifies that
// every protected id belongs to a seed account, so a registered user can
// never end up undeletable.
func (s *Seeder) Seed(ctx context.Context, admin, primary SeedAccount) error {
	for _, id := range s.protected {
		if id != AdminUserID && id != PrimaryUserID {
			return fmt.Errorf("seed: protected id %d is not a seed account", id)
		}
	}
	existing, err := s.users.List(ctx)
	if err != nil {
		return fmt.Errorf("seed: %w", err)
	}
	if len(existing) > 0 {
		return s.verify(existing, admin, primary)
	}
	if admin.Password == "" || primary.Password == "" {
		return fmt.Errorf("seed: %w", ErrSeedRequired)
	}

	now := s.clock.Now()
	for _, acc := range []struct {
		id    int64
		admin bool
		seed  SeedAccount
	}{
		{AdminUserID, true, admin},
		{PrimaryUserID, false, primary},
	} {
		if err := domain.ValidatePassword(acc.seed.Password); err != nil {
			return fmt.Errorf("seed %s: %w", acc.seed.Username, err)
		}
		hash, err := hashPassword(acc.seed.Password)
		if err != nil {
			return err
		}
		if _, err := s.users.Create(ctx, &domain.User{
			ID:           acc.id,
			Username:     acc.seed.Username,
			PasswordHash: hash,
			DisplayName:  acc.seed.DisplayName,
			IsAdmin:      acc.admin,
			CreatedAt:    now.UTC(),
		}); err != nil {
			return fmt.Errorf("seed %s: %w", acc.seed.Username, err)
		}
	}

	tasks := []domain.TaskInput{
		{Title: "Review study notes", Description: "Go over this week's classes", Priority: "high", DueDate: now.Format(domain.DateLayout)},
		{Title: "Organize the wardrobe", Description: "Separate clothes to donate", Priority: "medium", DueDate: now.AddDate(0, 0, 1).Format(domain.DateLayout)},
		{Title: "Call the dentist", Priority: "low", DueDate: now.AddDate(0, 0, 3).Format(domain.DateLayout)},
	}
	for _, in := range tasks {
		t, err := in.Normalize()
		if err != nil {
			return err
		}
		t.OwnerID = PrimaryUserID
		t.CreatedAt, t.UpdatedAt = now.UTC(), now.UTC()
		if _, err := s.tasks.Create(ctx, &t); err != nil {
			return fmt.Errorf("seed task: %w", err)
		}
	}

	everyDay := []string{"monday", "tuesday", "wednesday", "thursday", "friday", "saturday", "sunday"}
	routines := []domain.RoutineInput{
		{Title: "Morning skincare", Description: "Cleanser, moisturizer and sunscreen", TimeSchedule: "07:00", Days: everyDay},
		{Title: "Workout", Description: "30 minutes of exercise", TimeSchedule: "18:00", Days: []string{"monday", "wednesday", "friday"}},
		{Title: "Evening reading", Description: "Read before bed", TimeSchedule: "21:30", Days: everyDay},
	}
	for _, in := range routines {
		r, err := in.Normalize()
		if err != nil {
			return err
		}
		r.OwnerID = PrimaryUserID
		r.CreatedAt = now.UTC()
		if _, err := s.routines.Create(ctx, &r); err != nil {
			return fmt.Errorf("seed routine: %w", err)
		}
	}

	s.log.Info().Str("admin", admin.Username).Str("primary", primary.Username).Msg("seeded protected accounts")
	return nil
}

func (s *Seeder) verify(existing []domain.User, admin, primary SeedAccount) error {
	byID := make(map[int64]domain.User, len(existing))
	for _, u := range existing {
		byID[u.ID] = u
	}
	expected := map[int64]string{AdminUserID: admin.Username, PrimaryUserID: primary.Username}

	if u, ok := byID[AdminUserID]; !ok || !u.IsAdmin || u.Username != admin.Username {
		return fmt.Errorf("seed: user %d is not the admin account %q", AdminUserID, admin.Username)
	}
	for _, id := range s.protected {
		want := expected[id]
		u, found := byID[id]
		if !found {
			return fmt.Errorf("seed: protected account %q (id %d) is missing", want, id)
		}
		if u.Username != want {
			return fmt.Errorf("seed: protected id %d is held by %q, expected %q", id, u.Username, want)
		}
	}
	return nil
}
