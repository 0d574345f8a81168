// Package gormstore provides the credential store on top of GORM.
//
// It is the object-relational counterpart of the postgres and sqlite
// adapters and honours the same contract: unique usernames come from the
// database index, scoped updates and deletes are single conditional
// statements, and account deletion runs in one transaction.
package gormstore

import (
	"context"
	"errors"
	"fmt"

	"github.com/uptrace/opentelemetry-go-extra/otelgorm"
	"gorm.io/gorm"

	"github.com/adanyl0v/tasklist/internal/models"
	"github.com/adanyl0v/tasklist/internal/storage"
)

type user struct {
	ID       int64  `gorm:"primaryKey;autoIncrement"`
	Username string `gorm:"uniqueIndex;type:varchar(255);not null"`
	Password string `gorm:"type:varchar(255);not null"`
}

func (user) TableName() string {
	return "users"
}

type todo struct {
	ID        int64  `gorm:"primaryKey;autoIncrement"`
	UserID    int64  `gorm:"index;not null"`
	User      *user  `gorm:"foreignKey:UserID;constraint:OnDelete:RESTRICT"`
	Task      string `gorm:"type:text;not null"`
	Completed bool   `gorm:"not null;default:false"`
}

func (todo) TableName() string {
	return "todos"
}

func (t todo) toModel() *models.Task {
	return &models.Task{
		ID:        t.ID,
		OwnerID:   t.UserID,
		Text:      t.Task,
		Completed: t.Completed,
	}
}

type Store struct {
	queries
}

// New opens a store over dialector. TranslateError must stay on: the
// duplicate-key and foreign-key checks rely on GORM's translated errors.
func New(ctx context.Context, dialector gorm.Dialector) (*Store, error) {
	db, err := gorm.Open(dialector, &gorm.Config{
		TranslateError: true,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open gorm db: %w", err)
	}

	err = db.Use(otelgorm.NewPlugin())
	if err != nil {
		return nil, fmt.Errorf("failed to register tracing plugin: %w", err)
	}

	err = db.WithContext(ctx).AutoMigrate(&user{}, &todo{})
	if err != nil {
		return nil, fmt.Errorf("failed to migrate schema: %w", err)
	}

	return &Store{queries: queries{db: db}}, nil
}

func (s *Store) Ping(ctx context.Context) error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}

func (s *Store) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

func (s *Store) InTx(ctx context.Context, fn func(q storage.Querier) error) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(queries{db: tx})
	})
}

func (s *Store) DeleteAccountCascade(ctx context.Context, accountID int64) error {
	return s.InTx(ctx, func(q storage.Querier) error {
		return q.DeleteAccountCascade(ctx, accountID)
	})
}

type queries struct {
	db *gorm.DB
}

func (q queries) FindAccountByUsername(ctx context.Context, username string) (*models.Account, error) {
	var row user
	err := q.db.WithContext(ctx).Where("username = ?", username).First(&row).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, storage.ErrAccountNotFound
		}
		return nil, fmt.Errorf("failed to find account: %w", err)
	}
	return &models.Account{
		ID:           row.ID,
		Username:     row.Username,
		PasswordHash: row.Password,
	}, nil
}

func (q queries) InsertAccount(ctx context.Context, username, passwordHash string) (*models.Account, error) {
	row := user{Username: username, Password: passwordHash}
	err := q.db.WithContext(ctx).Create(&row).Error
	if err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, storage.ErrDuplicateUsername
		}
		return nil, fmt.Errorf("failed to insert account: %w", err)
	}
	return &models.Account{
		ID:           row.ID,
		Username:     row.Username,
		PasswordHash: row.Password,
	}, nil
}

func (q queries) DeleteAccountCascade(ctx context.Context, accountID int64) error {
	err := q.db.WithContext(ctx).Where("user_id = ?", accountID).Delete(&todo{}).Error
	if err != nil {
		return fmt.Errorf("failed to delete tasks by owner: %w", err)
	}

	res := q.db.WithContext(ctx).Delete(&user{}, accountID)
	if res.Error != nil {
		return fmt.Errorf("failed to delete account: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return storage.ErrAccountNotFound
	}
	return nil
}

func (q queries) InsertTask(ctx context.Context, ownerID int64, text string, completed bool) (*models.Task, error) {
	row := todo{UserID: ownerID, Task: text, Completed: completed}
	// Select keeps a false Completed from being swapped for the column default.
	err := q.db.WithContext(ctx).
		Select("UserID", "Task", "Completed").
		Create(&row).Error
	if err != nil {
		if errors.Is(err, gorm.ErrForeignKeyViolated) {
			return nil, storage.ErrOwnerNotFound
		}
		return nil, fmt.Errorf("failed to insert task: %w", err)
	}
	return row.toModel(), nil
}

func (q queries) ListTasksByOwner(ctx context.Context, ownerID int64) ([]*models.Task, error) {
	var rows []todo
	err := q.db.WithContext(ctx).
		Where("user_id = ?", ownerID).
		Order("id").
		Find(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list tasks: %w", err)
	}

	tasks := make([]*models.Task, 0, len(rows))
	for _, row := range rows {
		tasks = append(tasks, row.toModel())
	}
	return tasks, nil
}

// UpdateTaskScoped issues one UPDATE conditioned on both ids. MySQL has no
// RETURNING and reports zero affected rows for a no-op update, so the row is
// read back under the same condition inside the transaction.
func (q queries) UpdateTaskScoped(ctx context.Context, taskID, ownerID int64, text string, completed bool) (*models.Task, error) {
	var updated todo
	err := q.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		err := tx.Model(&todo{}).
			Where("id = ? AND user_id = ?", taskID, ownerID).
			Updates(map[string]any{"task": text, "completed": completed}).Error
		if err != nil {
			return fmt.Errorf("failed to update task: %w", err)
		}
		return tx.Where("id = ? AND user_id = ?", taskID, ownerID).
			First(&updated).Error
	})
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, storage.ErrTaskNotFound
		}
		return nil, err
	}
	return updated.toModel(), nil
}

func (q queries) DeleteTaskScoped(ctx context.Context, taskID, ownerID int64) error {
	res := q.db.WithContext(ctx).
		Where("id = ? AND user_id = ?", taskID, ownerID).
		Delete(&todo{})
	if res.Error != nil {
		return fmt.Errorf("failed to delete task: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return storage.ErrTaskNotFound
	}
	return nil
}

var _ storage.Store = (*Store)(nil)
