package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/adanyl0v/tasklist/internal/models"
	"github.com/adanyl0v/tasklist/internal/password"
	"github.com/adanyl0v/tasklist/internal/storage"
)

type accountServiceImpl struct {
	logger zerolog.Logger
	store  storage.Store
	hasher password.Hasher
	tokens TokenIssuer
}

func NewAccountService(
	logger zerolog.Logger,
	store storage.Store,
	hasher password.Hasher,
	tokens TokenIssuer,
) AccountService {
	return &accountServiceImpl{
		logger: logger,
		store:  store,
		hasher: hasher,
		tokens: tokens,
	}
}

func (s *accountServiceImpl) Register(ctx context.Context, username, plaintext string) (string, error) {
	if username == "" || plaintext == "" {
		return "", ErrMissingFields
	}

	// Only a fast path: the unique index below decides races.
	_, err := s.store.FindAccountByUsername(ctx, username)
	if err == nil {
		s.logger.Debug().
			Str("username", username).
			Msg("username already taken")
		return "", ErrUsernameTaken
	} else if !errors.Is(err, storage.ErrAccountNotFound) {
		s.logger.Error().
			Err(err).
			Str("username", username).
			Msg("failed to select account by username")
		return "", err
	}

	digest, err := s.hasher.Hash(plaintext)
	if err != nil {
		s.logger.Error().
			Err(err).
			Msg("failed to hash password")
		return "", err
	}

	var (
		account *models.Account
		token   string
	)
	err = s.store.InTx(ctx, func(q storage.Querier) error {
		account, err = q.InsertAccount(ctx, username, digest)
		if err != nil {
			return err
		}

		_, err = q.InsertTask(ctx, account.ID, models.WelcomeTaskText, false)
		if err != nil {
			return fmt.Errorf("failed to insert welcome task: %w", err)
		}

		token, _, err = s.tokens.Issue(account.ID)
		if err != nil {
			return fmt.Errorf("failed to issue token: %w", err)
		}
		return nil
	})
	if err != nil {
		if errors.Is(err, storage.ErrDuplicateUsername) {
			s.logger.Debug().
				Str("username", username).
				Msg("username claimed concurrently")
			return "", ErrUsernameTaken
		}

		s.logger.Error().
			Err(err).
			Str("username", username).
			Msg("failed to register account")
		return "", err
	}

	s.logger.Info().
		Int64("account_id", account.ID).
		Str("username", username).
		Msg("registered account")
	return token, nil
}

func (s *accountServiceImpl) Login(ctx context.Context, username, plaintext string) (string, error) {
	account, err := s.authenticate(ctx, username, plaintext)
	if err != nil {
		return "", err
	}

	token, _, err := s.tokens.Issue(account.ID)
	if err != nil {
		s.logger.Error().
			Err(err).
			Int64("account_id", account.ID).
			Msg("failed to issue token")
		return "", err
	}

	s.logger.Info().
		Int64("account_id", account.ID).
		Msg("logged in")
	return token, nil
}

func (s *accountServiceImpl) DeleteAccount(ctx context.Context, username, plaintext string) error {
	account, err := s.authenticate(ctx, username, plaintext)
	if err != nil {
		return err
	}

	err = s.store.DeleteAccountCascade(ctx, account.ID)
	if err != nil {
		if errors.Is(err, storage.ErrAccountNotFound) {
			s.logger.Debug().
				Int64("account_id", account.ID).
				Msg("account deleted concurrently")
			return ErrAccountNotFound
		}

		s.logger.Error().
			Err(err).
			Int64("account_id", account.ID).
			Msg("failed to delete account")
		return err
	}

	s.logger.Info().
		Int64("account_id", account.ID).
		Msg("deleted account")
	return nil
}

func (s *accountServiceImpl) authenticate(ctx context.Context, username, plaintext string) (*models.Account, error) {
	if username == "" || plaintext == "" {
		return nil, ErrMissingFields
	}

	account, err := s.store.FindAccountByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, storage.ErrAccountNotFound) {
			s.logger.Debug().
				Str("username", username).
				Msg("account not found")
			return nil, ErrAccountNotFound
		}

		s.logger.Error().
			Err(err).
			Str("username", username).
			Msg("failed to select account by username")
		return nil, err
	}

	if !s.hasher.Verify(plaintext, account.PasswordHash) {
		s.logger.Debug().
			Int64("account_id", account.ID).
			Msg("passwords do not match")
		return nil, ErrInvalidCredentials
	}
	return account, nil
}
