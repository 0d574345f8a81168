// Package sqlite provides the SQLite-backed credential store.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	msqlite "modernc.org/sqlite"
	sqlite3lib "modernc.org/sqlite/lib"

	"github.com/adanyl0v/tasklist/internal/models"
	"github.com/adanyl0v/tasklist/internal/storage"
	"github.com/adanyl0v/tasklist/internal/storage/sqlite/migrations"
)

const pragmas = "?_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)&_pragma=synchronous(NORMAL)"

type dbtx interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// Store keeps accounts and tasks in a single SQLite file.
//
// SQLite serialises writers anyway, so the pool is capped at one connection.
// That keeps transactions from tripping over SQLITE_BUSY while still letting
// the unique constraint decide registration races.
type Store struct {
	queries
	sqlDB *sql.DB
}

// Open opens the database at path and applies the embedded migrations.
func Open(ctx context.Context, path string) (*Store, error) {
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("storage path is required")
	}

	sqlDB, err := sql.Open("sqlite", filepath.Clean(path)+pragmas)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}
	sqlDB.SetMaxOpenConns(1)

	err = sqlDB.PingContext(ctx)
	if err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("ping sqlite db: %w", err)
	}

	err = applyMigrations(ctx, sqlDB, migrations.FS)
	if err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &Store{
		queries: queries{db: sqlDB},
		sqlDB:   sqlDB,
	}, nil
}

func (s *Store) Close() error {
	if s == nil || s.sqlDB == nil {
		return nil
	}
	return s.sqlDB.Close()
}

func (s *Store) Ping(ctx context.Context) error {
	return s.sqlDB.PingContext(ctx)
}

func (s *Store) InTx(ctx context.Context, fn func(q storage.Querier) error) error {
	tx, err := s.sqlDB.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	err = fn(queries{db: tx})
	if err != nil {
		return err
	}

	err = tx.Commit()
	if err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}

func (s *Store) DeleteAccountCascade(ctx context.Context, accountID int64) error {
	return s.InTx(ctx, func(q storage.Querier) error {
		return q.DeleteAccountCascade(ctx, accountID)
	})
}

type queries struct {
	db dbtx
}

func (q queries) FindAccountByUsername(ctx context.Context, username string) (*models.Account, error) {
	account := &models.Account{Username: username}

	const selectAccountQuery = `
SELECT id, password
FROM users WHERE username = ?
`
	err := q.db.QueryRowContext(ctx, selectAccountQuery, username).Scan(
		&account.ID,
		&account.PasswordHash,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, storage.ErrAccountNotFound
		}
		return nil, fmt.Errorf("select account by username: %w", err)
	}
	return account, nil
}

func (q queries) InsertAccount(ctx context.Context, username, passwordHash string) (*models.Account, error) {
	account := &models.Account{
		Username:     username,
		PasswordHash: passwordHash,
	}

	const insertAccountQuery = `
INSERT INTO users (username, password)
VALUES (?, ?)
RETURNING id
`
	err := q.db.QueryRowContext(ctx, insertAccountQuery, username, passwordHash).Scan(&account.ID)
	if err != nil {
		if isConstraintError(err, sqlite3lib.SQLITE_CONSTRAINT_UNIQUE, "unique constraint failed") {
			return nil, storage.ErrDuplicateUsername
		}
		return nil, fmt.Errorf("insert account: %w", err)
	}
	return account, nil
}

func (q queries) DeleteAccountCascade(ctx context.Context, accountID int64) error {
	const deleteTasksQuery = `
DELETE FROM todos WHERE user_id = ?
`
	_, err := q.db.ExecContext(ctx, deleteTasksQuery, accountID)
	if err != nil {
		return fmt.Errorf("delete tasks by owner: %w", err)
	}

	const deleteAccountQuery = `
DELETE FROM users WHERE id = ?
`
	res, err := q.db.ExecContext(ctx, deleteAccountQuery, accountID)
	if err != nil {
		return fmt.Errorf("delete account: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete account: %w", err)
	}
	if affected == 0 {
		return storage.ErrAccountNotFound
	}
	return nil
}

func (q queries) InsertTask(ctx context.Context, ownerID int64, text string, completed bool) (*models.Task, error) {
	task := &models.Task{
		OwnerID:   ownerID,
		Text:      text,
		Completed: completed,
	}

	const insertTaskQuery = `
INSERT INTO todos (user_id, task, completed)
VALUES (?, ?, ?)
RETURNING id
`
	err := q.db.QueryRowContext(ctx, insertTaskQuery, ownerID, text, completed).Scan(&task.ID)
	if err != nil {
		if isConstraintError(err, sqlite3lib.SQLITE_CONSTRAINT_FOREIGNKEY, "foreign key constraint failed") {
			return nil, storage.ErrOwnerNotFound
		}
		return nil, fmt.Errorf("insert task: %w", err)
	}
	return task, nil
}

func (q queries) ListTasksByOwner(ctx context.Context, ownerID int64) ([]*models.Task, error) {
	const selectTasksQuery = `
SELECT id, user_id, task, completed
FROM todos WHERE user_id = ?
ORDER BY id
`
	rows, err := q.db.QueryContext(ctx, selectTasksQuery, ownerID)
	if err != nil {
		return nil, fmt.Errorf("select tasks by owner: %w", err)
	}
	defer rows.Close()

	tasks := make([]*models.Task, 0)
	for rows.Next() {
		task := new(models.Task)
		err = rows.Scan(&task.ID, &task.OwnerID, &task.Text, &task.Completed)
		if err != nil {
			return nil, fmt.Errorf("scan task: %w", err)
		}
		tasks = append(tasks, task)
	}

	err = rows.Err()
	if err != nil {
		return nil, fmt.Errorf("iterate over tasks: %w", err)
	}
	return tasks, nil
}

func (q queries) UpdateTaskScoped(ctx context.Context, taskID, ownerID int64, text string, completed bool) (*models.Task, error) {
	task := &models.Task{ID: taskID}

	const updateTaskQuery = `
UPDATE todos SET task = ?, completed = ?
WHERE id = ? AND user_id = ?
RETURNING user_id, task, completed
`
	err := q.db.QueryRowContext(ctx, updateTaskQuery, text, completed, taskID, ownerID).Scan(
		&task.OwnerID,
		&task.Text,
		&task.Completed,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, storage.ErrTaskNotFound
		}
		return nil, fmt.Errorf("update task: %w", err)
	}
	return task, nil
}

func (q queries) DeleteTaskScoped(ctx context.Context, taskID, ownerID int64) error {
	const deleteTaskQuery = `
DELETE FROM todos WHERE id = ? AND user_id = ?
`
	res, err := q.db.ExecContext(ctx, deleteTaskQuery, taskID, ownerID)
	if err != nil {
		return fmt.Errorf("delete task: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete task: %w", err)
	}
	if affected == 0 {
		return storage.ErrTaskNotFound
	}
	return nil
}

// isConstraintError matches the extended result code, falling back to the
// message when only the primary SQLITE_CONSTRAINT code is reported.
func isConstraintError(err error, extendedCode int, message string) bool {
	var sqliteErr *msqlite.Error
	if !errors.As(err, &sqliteErr) {
		return false
	}
	switch sqliteErr.Code() {
	case extendedCode:
		return true
	case sqlite3lib.SQLITE_CONSTRAINT:
		return strings.Contains(strings.ToLower(sqliteErr.Error()), message)
	default:
		return false
	}
}

var _ storage.Store = (*Store)(nil)
