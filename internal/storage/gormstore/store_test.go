package gormstore

import (
	"context"
	"errors"
	"os"
	"strings"
	"testing"

	"github.com/google/uuid"
	"gorm.io/driver/mysql"

	"github.com/adanyl0v/tasklist/internal/config"
	"github.com/adanyl0v/tasklist/internal/storage"
)

func TestDSN(t *testing.T) {
	dsn := DSN(config.MySQLConfig{
		Addr:     "db:3306",
		Username: "todo",
		Password: "secret",
		Database: "tasks",
	})

	if !strings.HasPrefix(dsn, "todo:secret@tcp(db:3306)/tasks") {
		t.Fatalf("unexpected dsn %q", dsn)
	}
	if !strings.Contains(dsn, "parseTime=true") {
		t.Fatalf("expected parseTime in dsn %q", dsn)
	}
}

// openTestStore connects to TEST_MYSQL_DSN. Rows persist across runs, so
// tests use random usernames.
func openTestStore(t *testing.T) *Store {
	t.Helper()

	dsn := os.Getenv("TEST_MYSQL_DSN")
	if dsn == "" {
		t.Skip("TEST_MYSQL_DSN is not set")
	}

	store, err := New(context.Background(), mysql.Open(dsn))
	if err != nil {
		t.Fatalf("new store: %v", err)
	}
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func randomUsername() string {
	return "user-" + uuid.NewString()
}

func TestInsertAccountDuplicateUsername(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()
	username := randomUsername()

	if _, err := store.InsertAccount(ctx, username, "hash"); err != nil {
		t.Fatalf("insert account: %v", err)
	}
	_, err := store.InsertAccount(ctx, username, "hash")
	if !errors.Is(err, storage.ErrDuplicateUsername) {
		t.Fatalf("expected ErrDuplicateUsername, got %v", err)
	}
}

func TestUpdateTaskScoped(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	alice, err := store.InsertAccount(ctx, randomUsername(), "hash")
	if err != nil {
		t.Fatalf("insert alice: %v", err)
	}
	bob, err := store.InsertAccount(ctx, randomUsername(), "hash")
	if err != nil {
		t.Fatalf("insert bob: %v", err)
	}

	task, err := store.InsertTask(ctx, alice.ID, "secret", false)
	if err != nil {
		t.Fatalf("insert task: %v", err)
	}

	_, err = store.UpdateTaskScoped(ctx, task.ID, bob.ID, "stolen", true)
	if !errors.Is(err, storage.ErrTaskNotFound) {
		t.Fatalf("expected ErrTaskNotFound, got %v", err)
	}

	// Same values twice: MySQL reports no affected rows the second time.
	for i := 0; i < 2; i++ {
		updated, err := store.UpdateTaskScoped(ctx, task.ID, alice.ID, "secret", true)
		if err != nil {
			t.Fatalf("owner update %d: %v", i, err)
		}
		if !updated.Completed || updated.OwnerID != alice.ID {
			t.Fatalf("unexpected task %+v", updated)
		}
	}
}

func TestDeleteAccountCascade(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	account, err := store.InsertAccount(ctx, randomUsername(), "hash")
	if err != nil {
		t.Fatalf("insert account: %v", err)
	}
	if _, err := store.InsertTask(ctx, account.ID, "t1", false); err != nil {
		t.Fatalf("insert task: %v", err)
	}

	if err := store.DeleteAccountCascade(ctx, account.ID); err != nil {
		t.Fatalf("delete account: %v", err)
	}

	tasks, err := store.ListTasksByOwner(ctx, account.ID)
	if err != nil {
		t.Fatalf("list tasks: %v", err)
	}
	if len(tasks) != 0 {
		t.Fatalf("expected no tasks, got %+v", tasks)
	}

	_, err = store.InsertTask(ctx, account.ID, "late", false)
	if !errors.Is(err, storage.ErrOwnerNotFound) {
		t.Fatalf("expected ErrOwnerNotFound, got %v", err)
	}
}
