package mongo

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/routinely/tracker/internal/core/domain"
)

// Needs a live server; set TRACKER_TEST_MONGO_URI to run.
func TestAuditRepository_AppendAndList(t *testing.T) {
	uri := os.Getenv("TRACKER_TEST_MONGO_URI")
	if uri == "" {
		t.Skip("TRACKER_TEST_MONGO_URI not set")
	}
	ctx := context.Background()
	store, err := Open(ctx, Config{URI: uri, Database: "tracker_test_" + uuid.NewString()[:8]}, zerolog.Nop())
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	t.Cleanup(func() {
		_ = store.drop(ctx)
		_ = store.Close()
	})

	repo := store.Audit()

	base := time.Date(2026, 3, 2, 10, 0, 0, 0, time.UTC)
	for i, op := range []domain.AuditOperation{domain.AuditLogin, domain.AuditDeleteUser, domain.AuditChangePassword} {
		err := repo.Append(ctx, &domain.AuditEntry{
			ID:        uuid.NewString(),
			Operation: op,
			Outcome:   domain.OutcomeSuccess,
			CreatedAt: base.Add(time.Duration(i) * time.Minute),
		})
		if err != nil {
			t.Fatalf("append: %v", err)
		}
	}

	entries, err := repo.List(ctx, 2)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(entries) != 2 || entries[0].Operation != domain.AuditChangePassword || entries[1].Operation != domain.AuditDeleteUser {
		t.Fatalf("unexpected entries: %+v", entries)
	}
}

func TestOpen_Unreachable(t *testing.T) {
	_, err := Open(context.Background(), Config{URI: "mongodb://127.0.0.1:1", Database: "x", Timeout: 300 * time.Millisecond}, zerolog.Nop())
	if err == nil {
		t.Fatalf("expected connection failure")
	}
}
