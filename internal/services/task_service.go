package services

import (
	"context"
	"errors"

	"github.com/rs/zerolog"

	"github.com/adanyl0v/tasklist/internal/models"
	"github.com/adanyl0v/tasklist/internal/storage"
)

type taskServiceImpl struct {
	logger zerolog.Logger
	store  storage.Querier
}

func NewTaskService(
	logger zerolog.Logger,
	store storage.Querier,
) TaskService {
	return &taskServiceImpl{
		logger: logger,
		store:  store,
	}
}

func (s *taskServiceImpl) List(ctx context.Context, ownerID int64) ([]*models.Task, error) {
	tasks, err := s.store.ListTasksByOwner(ctx, ownerID)
	if err != nil {
		s.logger.Error().
			Err(err).
			Int64("account_id", ownerID).
			Msg("failed to select tasks by owner")
		return nil, err
	}

	s.logger.Debug().
		Int64("account_id", ownerID).
		Int("count", len(tasks)).
		Msg("selected tasks")
	return tasks, nil
}

func (s *taskServiceImpl) Create(ctx context.Context, ownerID int64, text string, completed bool) (*models.Task, error) {
	if text == "" {
		return nil, ErrMissingText
	}

	task, err := s.store.InsertTask(ctx, ownerID, text, completed)
	if err != nil {
		if errors.Is(err, storage.ErrOwnerNotFound) {
			// A still valid token for a deleted account.
			s.logger.Debug().
				Int64("account_id", ownerID).
				Msg("task owner not found")
			return nil, ErrOwnerNotFound
		}

		s.logger.Error().
			Err(err).
			Int64("account_id", ownerID).
			Msg("failed to insert task")
		return nil, err
	}

	s.logger.Info().
		Int64("account_id", ownerID).
		Int64("task_id", task.ID).
		Msg("created task")
	return task, nil
}

func (s *taskServiceImpl) Update(ctx context.Context, ownerID, taskID int64, text string, completed bool) (*models.Task, error) {
	if text == "" {
		return nil, ErrMissingText
	}

	task, err := s.store.UpdateTaskScoped(ctx, taskID, ownerID, text, completed)
	if err != nil {
		if errors.Is(err, storage.ErrTaskNotFound) {
			s.logger.Debug().
				Int64("account_id", ownerID).
				Int64("task_id", taskID).
				Msg("task not found")
			return nil, ErrTaskNotFound
		}

		s.logger.Error().
			Err(err).
			Int64("account_id", ownerID).
			Int64("task_id", taskID).
			Msg("failed to update task")
		return nil, err
	}

	s.logger.Info().
		Int64("account_id", ownerID).
		Int64("task_id", taskID).
		Msg("updated task")
	return task, nil
}

func (s *taskServiceImpl) Delete(ctx context.Context, ownerID, taskID int64) error {
	err := s.store.DeleteTaskScoped(ctx, taskID, ownerID)
	if err != nil {
		if errors.Is(err, storage.ErrTaskNotFound) {
			s.logger.Debug().
				Int64("account_id", ownerID).
				Int64("task_id", taskID).
				Msg("task not found")
			return ErrTaskNotFound
		}

		s.logger.Error().
			Err(err).
			Int64("account_id", ownerID).
			Int64("task_id", taskID).
			Msg("failed to delete task")
		return err
	}

	s.logger.Info().
		Int64("account_id", ownerID).
		Int64("task_id", taskID).
		Msg("deleted task")
	return nil
}
