package services

import (
	"context"
	"fmt"

	"duit/internal/amqp"
	"duit/internal/core"
	applog "duit/internal/log"
	"duit/internal/storage"
)

// SyncPublisher publishes mutation notifications for the sync worker.
// *amqp.Client satisfies it; a nil publisher disables sync.
type SyncPublisher interface {
	PublishTransactionSync(ctx context.Context, id, op string, version uint64) error
}

// TransactionService orchestrates transaction mutations across the store
// and the sync queue. The store write is authoritative; a failed publish
// is logged and never fails the request.
type TransactionService struct {
	store     storage.Store
	publisher SyncPublisher
	logger    *applog.Logger
}

func NewTransactionService(store storage.Store, publisher SyncPublisher, logger *applog.Logger) *TransactionService {
	return &TransactionService{
		store:     store,
		publisher: publisher,
		logger:    logger.WithComponent(applog.ComponentStore),
	}
}

func (s *TransactionService) List(ctx context.Context) ([]core.Transaction, error) {
	return s.store.List(ctx)
}

func (s *TransactionService) Get(ctx context.Context, id string) (core.Transaction, error) {
	return s.store.Get(ctx, id)
}

// Version exposes the store's mutation counter for cache keying.
func (s *TransactionService) Version() uint64 {
	return s.store.Version()
}

// Create validates and stores a new transaction, then publishes a sync
// message.
func (s *TransactionService) Create(ctx context.Context, tx core.Transaction) (core.Transaction, error) {
	if err := tx.Validate(); err != nil {
		return core.Transaction{}, err
	}

	created, err := s.store.Add(ctx, tx)
	if err != nil {
		return core.Transaction{}, fmt.Errorf("save transaction: %w", err)
	}

	s.publish(ctx, created.ID, amqp.OpCreate)
	return created, nil
}

// Update replaces an existing transaction, keeping its ID and creation
// time, then publishes a sync message.
func (s *TransactionService) Update(ctx context.Context, id string, tx core.Transaction) (core.Transaction, error) {
	if err := tx.Validate(); err != nil {
		return core.Transaction{}, err
	}

	if err := s.store.Update(ctx, id, tx); err != nil {
		return core.Transaction{}, err
	}

	s.publish(ctx, id, amqp.OpUpdate)
	return s.store.Get(ctx, id)
}

// Delete removes a transaction, then publishes a sync message. Removing
// an unknown ID surfaces storage.ErrNotFound to the caller.
func (s *TransactionService) Delete(ctx context.Context, id string) error {
	if err := s.store.Remove(ctx, id); err != nil {
		return err
	}

	s.publish(ctx, id, amqp.OpDelete)
	return nil
}

func (s *TransactionService) publish(ctx context.Context, id, op string) {
	if s.publisher == nil {
		return
	}
	if err := s.publisher.PublishTransactionSync(ctx, id, op, s.store.Version()); err != nil {
		s.logger.ErrorContext(ctx, "failed to publish sync message",
			applog.FieldTransactionID, id,
			applog.FieldOperation, op,
			applog.FieldError, err.Error())
	}
}

// Close releases the store and, when set, the publisher.
func (s *TransactionService) Close() error {
	var errs []error

	if s.store != nil {
		if err := s.store.Close(); err != nil {
			errs = append(errs, fmt.Errorf("storage: %w", err))
		}
	}

	if closer, ok := s.publisher.(interface{ Close() error }); ok {
		if err := closer.Close(); err != nil {
			errs = append(errs, fmt.Errorf("amqp: %w", err))
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("close transaction service: %v", errs)
	}
	return nil
}
