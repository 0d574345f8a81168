package services

import (
	"context"
	"errors"
	"time"

	"github.com/adanyl0v/tasklist/internal/models"
)

var (
	ErrMissingFields      = errors.New("username and password are required")
	ErrUsernameTaken      = errors.New("username already taken")
	ErrAccountNotFound    = errors.New("account not found")
	ErrInvalidCredentials = errors.New("invalid credentials")

	ErrMissingText   = errors.New("task text is required")
	ErrTaskNotFound  = errors.New("task not found")
	ErrOwnerNotFound = errors.New("task owner not found")
)

type AccountService interface {
	// Register creates an account with the given username and password.
	//
	// The account and its welcome task are inserted in one transaction,
	// and a bearer token for the new account is returned.
	//
	// It returns ErrMissingFields if either field is empty or
	// ErrUsernameTaken if the username is already claimed, including by
	// a concurrent registration.
	Register(ctx context.Context, username, password string) (string, error)

	// Login authenticates the account and issues a fresh bearer token.
	//
	// It returns ErrAccountNotFound if the username is unknown or
	// ErrInvalidCredentials if the password doesn't match.
	Login(ctx context.Context, username, password string) (string, error)

	// DeleteAccount re-authenticates the account and removes it together
	// with all of its tasks. Tokens issued earlier are not revoked.
	DeleteAccount(ctx context.Context, username, password string) error
}

// TaskService operates on tasks on behalf of an already verified owner.
// A task that doesn't exist and a task owned by someone else are reported
// the same way, as ErrTaskNotFound.
type TaskService interface {
	List(ctx context.Context, ownerID int64) ([]*models.Task, error)
	Create(ctx context.Context, ownerID int64, text string, completed bool) (*models.Task, error)
	Update(ctx context.Context, ownerID, taskID int64, text string, completed bool) (*models.Task, error)
	Delete(ctx context.Context, ownerID, taskID int64) error
}

// TokenIssuer signs bearer tokens for accounts.
type TokenIssuer interface {
	Issue(accountID int64) (string, time.Time, error)
}
