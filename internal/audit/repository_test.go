package audit

import (
	"context"
	"database/sql"
	"os"
	"testing"
	"time"

	_ "github.com/mattn/go-sqlite3"
)

func testDB(t *testing.T) *sql.DB {
	t.Helper()

	f, err := os.CreateTemp("", "audit-test-*.db")
	if err != nil {
		t.Fatalf("creating temp db: %v", err)
	}
	dbPath := f.Name()
	f.Close()
	t.Cleanup(func() { os.Remove(dbPath) })

	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		t.Fatalf("opening test db: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	migrationSQL := `
		CREATE TABLE audit_logs (
			id TEXT PRIMARY KEY,
			action TEXT NOT NULL,
			entity_type TEXT NOT NULL,
			entity_id TEXT,
			user_id TEXT,
			source TEXT NOT NULL,
			details TEXT,
			created_at TEXT NOT NULL
		) STRICT;
	`
	if _, err := db.Exec(migrationSQL); err != nil {
		t.Fatalf("applying audit schema: %v", err)
	}

	return db
}

func TestRecord_GeneratesIDAndTimestamp(t *testing.T) {
	repo := NewSQLiteRepository(testDB(t))

	entry := &Entry{
		Action:     ActionLogin,
		EntityType: EntitySession,
		UserID:     "usr-1",
		Source:     "api",
	}
	if err := repo.Record(context.Background(), entry); err != nil {
		t.Fatalf("Record() error = %v", err)
	}

	if entry.ID == "" {
		t.Error("Record() should generate an ID")
	}
	if entry.CreatedAt.IsZero() {
		t.Error("Record() should set CreatedAt")
	}
}

func TestList_Filtering(t *testing.T) {
	repo := NewSQLiteRepository(testDB(t))
	ctx := context.Background()

	base := time.Date(2026, 2, 1, 10, 0, 0, 0, time.UTC)
	seed := []Entry{
		{Action: ActionCreate, EntityType: EntityMachine, EntityID: "mac-1", UserID: "usr-1", Source: "api", CreatedAt: base},
		{Action: ActionDelete, EntityType: EntityMachine, EntityID: "mac-1", UserID: "usr-2", Source: "api", CreatedAt: base.Add(time.Minute)},
		{Action: ActionLogin, EntityType: EntitySession, UserID: "usr-1", Source: "api", CreatedAt: base.Add(2 * time.Minute)},
	}
	for i := range seed {
		if err := repo.Record(ctx, &seed[i]); err != nil {
			t.Fatalf("Record() error = %v", err)
		}
	}

	t.Run("no filter", func(t *testing.T) {
		result, err := repo.List(ctx, Filter{})
		if err != nil {
			t.Fatalf("List() error = %v", err)
		}
		if result.Total != 3 || len(result.Entries) != 3 {
			t.Errorf("List() total = %d, entries = %d, want 3/3", result.Total, len(result.Entries))
		}
		// Most recent first.
		if result.Entries[0].Action != ActionLogin {
			t.Errorf("first entry action = %q, want %q", result.Entries[0].Action, ActionLogin)
		}
	})

	t.Run("by action", func(t *testing.T) {
		result, err := repo.List(ctx, Filter{Action: ActionDelete})
		if err != nil {
			t.Fatalf("List() error = %v", err)
		}
		if result.Total != 1 || result.Entries[0].UserID != "usr-2" {
			t.Errorf("List(action=delete) = %+v", result)
		}
	})

	t.Run("by entity", func(t *testing.T) {
		result, err := repo.List(ctx, Filter{EntityType: EntityMachine, EntityID: "mac-1"})
		if err != nil {
			t.Fatalf("List() error = %v", err)
		}
		if result.Total != 2 {
			t.Errorf("List(entity=mac-1) total = %d, want 2", result.Total)
		}
	})

	t.Run("by user", func(t *testing.T) {
		result, err := repo.List(ctx, Filter{UserID: "usr-1"})
		if err != nil {
			t.Fatalf("List() error = %v", err)
		}
		if result.Total != 2 {
			t.Errorf("List(user=usr-1) total = %d, want 2", result.Total)
		}
	})

	t.Run("pagination", func(t *testing.T) {
		result, err := repo.List(ctx, Filter{Limit: 2})
		if err != nil {
			t.Fatalf("List() error = %v", err)
		}
		if result.Total != 3 || len(result.Entries) != 2 {
			t.Errorf("List(limit=2) total = %d, entries = %d, want 3/2", result.Total, len(result.Entries))
		}
	})
}

func TestRecord_DetailsRoundTrip(t *testing.T) {
	repo := NewSQLiteRepository(testDB(t))
	ctx := context.Background()

	entry := &Entry{
		Action:     ActionUpdate,
		EntityType: EntityUser,
		EntityID:   "usr-1",
		Source:     "api",
		Details:    map[string]any{"field": "email", "admin": true},
	}
	if err := repo.Record(ctx, entry); err != nil {
		t.Fatalf("Record() error = %v", err)
	}

	result, err := repo.List(ctx, Filter{EntityID: "usr-1"})
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if len(result.Entries) != 1 {
		t.Fatalf("List() returned %d entries, want 1", len(result.Entries))
	}

	details := result.Entries[0].Details
	if details["field"] != "email" || details["admin"] != true {
		t.Errorf("details = %v", details)
	}
}
