// Package storage defines the credential store the services depend on.
//
// Accounts and tasks live in two tables. Every task operation that can
// change or remove a row is scoped by (task id, owner id) in a single
// statement, so ownership is checked atomically with the write. Adapters
// live in the postgres, sqlite and gormstore subpackages.
package storage

import (
	"context"
	"errors"

	"github.com/adanyl0v/tasklist/internal/models"
)

var (
	ErrAccountNotFound   = errors.New("account not found")
	ErrDuplicateUsername = errors.New("username already exists")
	ErrOwnerNotFound     = errors.New("task owner does not exist")
	ErrTaskNotFound      = errors.New("task not found")
)

type Querier interface {
	// FindAccountByUsername returns ErrAccountNotFound when no account has
	// the given username.
	FindAccountByUsername(ctx context.Context, username string) (*models.Account, error)

	// InsertAccount returns ErrDuplicateUsername when the unique constraint
	// on username rejects the row.
	InsertAccount(ctx context.Context, username, passwordHash string) (*models.Account, error)

	// DeleteAccountCascade removes the account's tasks, then the account.
	// When called outside a transaction it opens one.
	DeleteAccountCascade(ctx context.Context, accountID int64) error

	// InsertTask returns ErrOwnerNotFound when ownerID references no account.
	InsertTask(ctx context.Context, ownerID int64, text string, completed bool) (*models.Task, error)

	ListTasksByOwner(ctx context.Context, ownerID int64) ([]*models.Task, error)

	// UpdateTaskScoped and DeleteTaskScoped return ErrTaskNotFound when no
	// task has both taskID and ownerID.
	UpdateTaskScoped(ctx context.Context, taskID, ownerID int64, text string, completed bool) (*models.Task, error)
	DeleteTaskScoped(ctx context.Context, taskID, ownerID int64) error
}

type Store interface {
	Querier

	// InTx runs fn in a transaction. The transaction commits when fn
	// returns nil and rolls back otherwise.
	InTx(ctx context.Context, fn func(q Querier) error) error

	Ping(ctx context.Context) error
	Close() error
}
