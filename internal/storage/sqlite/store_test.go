package sqlite

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/adanyl0v/tasklist/internal/models"
	"github.com/adanyl0v/tasklist/internal/storage"
)

func openTempStore(t *testing.T) *Store {
	t.Helper()

	store, err := Open(context.Background(), filepath.Join(t.TempDir(), "todo.db"))
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func mustInsertAccount(t *testing.T, store *Store, username string) *models.Account {
	t.Helper()

	account, err := store.InsertAccount(context.Background(), username, "hash-"+username)
	if err != nil {
		t.Fatalf("insert account %s: %v", username, err)
	}
	return account
}

func TestOpenRequiresPath(t *testing.T) {
	if _, err := Open(context.Background(), " "); err == nil {
		t.Fatal("expected error for empty path")
	}
}

func TestStoreNilSafe(t *testing.T) {
	var store *Store
	if err := store.Close(); err != nil {
		t.Fatalf("close nil store: %v", err)
	}
}

func TestOpenIsIdempotent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "todo.db")

	first, err := Open(context.Background(), path)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	mustInsertAccount(t, first, "alice")
	if err := first.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}

	second, err := Open(context.Background(), path)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer second.Close()

	account, err := second.FindAccountByUsername(context.Background(), "alice")
	if err != nil {
		t.Fatalf("find after reopen: %v", err)
	}
	if account.ID != 1 {
		t.Fatalf("expected account id 1, got %d", account.ID)
	}
}

func TestInsertAndFindAccount(t *testing.T) {
	store := openTempStore(t)
	ctx := context.Background()

	inserted := mustInsertAccount(t, store, "alice")
	if inserted.ID != 1 {
		t.Fatalf("expected first account id 1, got %d", inserted.ID)
	}

	found, err := store.FindAccountByUsername(ctx, "alice")
	if err != nil {
		t.Fatalf("find: %v", err)
	}
	if found.ID != inserted.ID || found.PasswordHash != "hash-alice" || found.Username != "alice" {
		t.Fatalf("unexpected account: %+v", found)
	}

	_, err = store.FindAccountByUsername(ctx, "bob")
	if !errors.Is(err, storage.ErrAccountNotFound) {
		t.Fatalf("expected ErrAccountNotFound, got %v", err)
	}
}

func TestInsertAccountDuplicateUsername(t *testing.T) {
	store := openTempStore(t)
	mustInsertAccount(t, store, "alice")

	_, err := store.InsertAccount(context.Background(), "alice", "other")
	if !errors.Is(err, storage.ErrDuplicateUsername) {
		t.Fatalf("expected ErrDuplicateUsername, got %v", err)
	}
}

func TestInsertTaskRequiresOwner(t *testing.T) {
	store := openTempStore(t)

	_, err := store.InsertTask(context.Background(), 99, "orphan", false)
	if !errors.Is(err, storage.ErrOwnerNotFound) {
		t.Fatalf("expected ErrOwnerNotFound, got %v", err)
	}
}

func TestTaskLifecycle(t *testing.T) {
	store := openTempStore(t)
	ctx := context.Background()
	owner := mustInsertAccount(t, store, "alice")

	task, err := store.InsertTask(ctx, owner.ID, "buy milk", false)
	if err != nil {
		t.Fatalf("insert task: %v", err)
	}

	updated, err := store.UpdateTaskScoped(ctx, task.ID, owner.ID, "buy oat milk", true)
	if err != nil {
		t.Fatalf("update task: %v", err)
	}
	if updated.Text != "buy oat milk" || !updated.Completed || updated.OwnerID != owner.ID {
		t.Fatalf("unexpected updated task: %+v", updated)
	}

	tasks, err := store.ListTasksByOwner(ctx, owner.ID)
	if err != nil {
		t.Fatalf("list tasks: %v", err)
	}
	if len(tasks) != 1 || *tasks[0] != *updated {
		t.Fatalf("unexpected tasks: %+v", tasks)
	}

	if err := store.DeleteTaskScoped(ctx, task.ID, owner.ID); err != nil {
		t.Fatalf("delete task: %v", err)
	}
	err = store.DeleteTaskScoped(ctx, task.ID, owner.ID)
	if !errors.Is(err, storage.ErrTaskNotFound) {
		t.Fatalf("expected ErrTaskNotFound on second delete, got %v", err)
	}
}

func TestScopedOperationsIgnoreOtherOwners(t *testing.T) {
	store := openTempStore(t)
	ctx := context.Background()
	alice := mustInsertAccount(t, store, "alice")
	bob := mustInsertAccount(t, store, "bob")

	task, err := store.InsertTask(ctx, alice.ID, "secret", false)
	if err != nil {
		t.Fatalf("insert task: %v", err)
	}

	_, err = store.UpdateTaskScoped(ctx, task.ID, bob.ID, "stolen", true)
	if !errors.Is(err, storage.ErrTaskNotFound) {
		t.Fatalf("expected ErrTaskNotFound for foreign update, got %v", err)
	}
	err = store.DeleteTaskScoped(ctx, task.ID, bob.ID)
	if !errors.Is(err, storage.ErrTaskNotFound) {
		t.Fatalf("expected ErrTaskNotFound for foreign delete, got %v", err)
	}

	bobTasks, err := store.ListTasksByOwner(ctx, bob.ID)
	if err != nil {
		t.Fatalf("list bob tasks: %v", err)
	}
	if len(bobTasks) != 0 {
		t.Fatalf("expected bob to see no tasks, got %+v", bobTasks)
	}

	aliceTasks, err := store.ListTasksByOwner(ctx, alice.ID)
	if err != nil {
		t.Fatalf("list alice tasks: %v", err)
	}
	if len(aliceTasks) != 1 || aliceTasks[0].Text != "secret" || aliceTasks[0].Completed {
		t.Fatalf("expected alice task unchanged, got %+v", aliceTasks)
	}
}

func TestDeleteAccountCascade(t *testing.T) {
	store := openTempStore(t)
	ctx := context.Background()
	alice := mustInsertAccount(t, store, "alice")
	bob := mustInsertAccount(t, store, "bob")

	for _, text := range []string{"t1", "t2"} {
		if _, err := store.InsertTask(ctx, alice.ID, text, false); err != nil {
			t.Fatalf("insert task: %v", err)
		}
	}
	if _, err := store.InsertTask(ctx, bob.ID, "keep", false); err != nil {
		t.Fatalf("insert task: %v", err)
	}

	if err := store.DeleteAccountCascade(ctx, alice.ID); err != nil {
		t.Fatalf("delete account: %v", err)
	}

	var count int
	err := store.sqlDB.QueryRow("SELECT COUNT(*) FROM todos WHERE user_id = ?", alice.ID).Scan(&count)
	if err != nil {
		t.Fatalf("count tasks: %v", err)
	}
	if count != 0 {
		t.Fatalf("expected no tasks for deleted account, got %d", count)
	}

	_, err = store.FindAccountByUsername(ctx, "alice")
	if !errors.Is(err, storage.ErrAccountNotFound) {
		t.Fatalf("expected deleted account to be gone, got %v", err)
	}

	bobTasks, err := store.ListTasksByOwner(ctx, bob.ID)
	if err != nil {
		t.Fatalf("list bob tasks: %v", err)
	}
	if len(bobTasks) != 1 {
		t.Fatalf("expected bob's task to survive, got %+v", bobTasks)
	}

	err = store.DeleteAccountCascade(ctx, alice.ID)
	if !errors.Is(err, storage.ErrAccountNotFound) {
		t.Fatalf("expected ErrAccountNotFound for second delete, got %v", err)
	}
}

func TestInTxRollsBackOnError(t *testing.T) {
	store := openTempStore(t)
	ctx := context.Background()
	errBoom := errors.New("boom")

	err := store.InTx(ctx, func(q storage.Querier) error {
		account, err := q.InsertAccount(ctx, "alice", "hash")
		if err != nil {
			return err
		}
		if _, err := q.InsertTask(ctx, account.ID, "welcome", false); err != nil {
			return err
		}
		return errBoom
	})
	if !errors.Is(err, errBoom) {
		t.Fatalf("expected errBoom, got %v", err)
	}

	_, err = store.FindAccountByUsername(ctx, "alice")
	if !errors.Is(err, storage.ErrAccountNotFound) {
		t.Fatalf("expected rolled back account, got %v", err)
	}

	var count int
	if err := store.sqlDB.QueryRow("SELECT COUNT(*) FROM todos").Scan(&count); err != nil {
		t.Fatalf("count tasks: %v", err)
	}
	if count != 0 {
		t.Fatalf("expected rolled back task, got %d rows", count)
	}
}

func TestUpSection(t *testing.T) {
	content := "-- +migrate Up\nCREATE TABLE a (id INTEGER);\n-- +migrate Down\nDROP TABLE a;\n"
	got := upSection(content)
	if got != "\nCREATE TABLE a (id INTEGER);\n" {
		t.Fatalf("unexpected up section %q", got)
	}
	if upSection("SELECT 1;") != "SELECT 1;" {
		t.Fatal("expected content without markers to be returned whole")
	}
}
