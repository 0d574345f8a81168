// Package postgres provides the PostgreSQL-backed credential store on pgx.
package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/adanyl0v/tasklist/internal/models"
	"github.com/adanyl0v/tasklist/internal/storage"
)

const schema = `
CREATE TABLE IF NOT EXISTS users (
    id BIGSERIAL PRIMARY KEY,
    username TEXT NOT NULL UNIQUE,
    password TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS todos (
    id BIGSERIAL PRIMARY KEY,
    user_id BIGINT NOT NULL REFERENCES users (id),
    task TEXT NOT NULL,
    completed BOOLEAN NOT NULL DEFAULT FALSE
);

CREATE INDEX IF NOT EXISTS todos_user_id_idx ON todos (user_id);
`

type dbtx interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

type Store struct {
	queries
	pgPool *pgxpool.Pool
}

// New wraps an already connected pool and makes sure the schema exists.
func New(ctx context.Context, pgPool *pgxpool.Pool) (*Store, error) {
	_, err := pgPool.Exec(ctx, schema)
	if err != nil {
		return nil, fmt.Errorf("failed to create schema: %w", err)
	}

	return &Store{
		queries: queries{db: pgPool},
		pgPool:  pgPool,
	}, nil
}

func (s *Store) Ping(ctx context.Context) error {
	return s.pgPool.Ping(ctx)
}

func (s *Store) Close() error {
	s.pgPool.Close()
	return nil
}

func (s *Store) InTx(ctx context.Context, fn func(q storage.Querier) error) error {
	tx, err := s.pgPool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	err = fn(queries{db: tx})
	if err != nil {
		return err
	}

	err = tx.Commit(ctx)
	if err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
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

	const selectAccountByUsernameQuery = `
SELECT id,
       password
FROM users
WHERE username = $1
`
	err := q.db.QueryRow(
		ctx,
		selectAccountByUsernameQuery,
		username,
	).Scan(
		&account.ID,
		&account.PasswordHash,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, storage.ErrAccountNotFound
		}
		return nil, fmt.Errorf("failed to select account by username: %w", err)
	}
	return account, nil
}

func (q queries) InsertAccount(ctx context.Context, username, passwordHash string) (*models.Account, error) {
	account := &models.Account{
		Username:     username,
		PasswordHash: passwordHash,
	}

	const insertAccountQuery = `
INSERT INTO users (username,
                   password)
VALUES ($1, $2)
RETURNING id
`
	err := q.db.QueryRow(
		ctx,
		insertAccountQuery,
		account.Username,
		account.PasswordHash,
	).Scan(&account.ID)
	if err != nil {
		if hasCode(err, pgerrcode.UniqueViolation) {
			return nil, storage.ErrDuplicateUsername
		}
		return nil, fmt.Errorf("failed to insert account: %w", err)
	}
	return account, nil
}

func (q queries) DeleteAccountCascade(ctx context.Context, accountID int64) error {
	const deleteTasksByOwnerQuery = `
DELETE FROM todos
       WHERE user_id = $1
`
	_, err := q.db.Exec(ctx, deleteTasksByOwnerQuery, accountID)
	if err != nil {
		return fmt.Errorf("failed to delete tasks by owner: %w", err)
	}

	const deleteAccountQuery = `
DELETE FROM users
       WHERE id = $1
`
	tag, err := q.db.Exec(ctx, deleteAccountQuery, accountID)
	if err != nil {
		return fmt.Errorf("failed to delete account: %w", err)
	}
	if tag.RowsAffected() == 0 {
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
INSERT INTO todos (user_id,
                   task,
                   completed)
VALUES ($1, $2, $3)
RETURNING id
`
	err := q.db.QueryRow(
		ctx,
		insertTaskQuery,
		task.OwnerID,
		task.Text,
		task.Completed,
	).Scan(&task.ID)
	if err != nil {
		if hasCode(err, pgerrcode.ForeignKeyViolation) {
			return nil, storage.ErrOwnerNotFound
		}
		return nil, fmt.Errorf("failed to insert task: %w", err)
	}
	return task, nil
}

func (q queries) ListTasksByOwner(ctx context.Context, ownerID int64) ([]*models.Task, error) {
	const selectTasksByOwnerQuery = `
SELECT id,
       user_id,
       task,
       completed
FROM todos
WHERE user_id = $1
ORDER BY id
`
	rows, err := q.db.Query(ctx, selectTasksByOwnerQuery, ownerID)
	if err != nil {
		return nil, fmt.Errorf("failed to select tasks by owner: %w", err)
	}
	defer rows.Close()

	tasks := make([]*models.Task, 0)
	for rows.Next() {
		task := new(models.Task)
		err = rows.Scan(
			&task.ID,
			&task.OwnerID,
			&task.Text,
			&task.Completed,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan task: %w", err)
		}
		tasks = append(tasks, task)
	}

	err = rows.Err()
	if err != nil {
		return nil, fmt.Errorf("failed to iterate over rows: %w", err)
	}
	return tasks, nil
}

func (q queries) UpdateTaskScoped(ctx context.Context, taskID, ownerID int64, text string, completed bool) (*models.Task, error) {
	task := &models.Task{ID: taskID}

	const updateTaskQuery = `
UPDATE todos
SET task = $1,
    completed = $2
WHERE id = $3 AND user_id = $4
RETURNING user_id, task, completed
`
	err := q.db.QueryRow(
		ctx,
		updateTaskQuery,
		text,
		completed,
		taskID,
		ownerID,
	).Scan(
		&task.OwnerID,
		&task.Text,
		&task.Completed,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, storage.ErrTaskNotFound
		}
		return nil, fmt.Errorf("failed to update task: %w", err)
	}
	return task, nil
}

func (q queries) DeleteTaskScoped(ctx context.Context, taskID, ownerID int64) error {
	const deleteTaskQuery = `
DELETE FROM todos
WHERE id = $1 AND user_id = $2
`
	tag, err := q.db.Exec(ctx, deleteTaskQuery, taskID, ownerID)
	if err != nil {
		return fmt.Errorf("failed to delete task: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return storage.ErrTaskNotFound
	}
	return nil
}

func hasCode(err error, code string) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == code
}

var _ storage.Store = (*Store)(nil)
