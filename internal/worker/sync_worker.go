// Package worker pushes stored transactions to the configured spreadsheet.
// It reacts to queue messages and sweeps unsynced rows on a timer so a
// lost message only delays a transaction, never strands it.
package worker

import (
	"context"
	"errors"
	"fmt"
	"time"

	"golang.org/x/sync/errgroup"

	"duit/internal/amqp"
	"duit/internal/core"
	applog "duit/internal/log"
	"duit/internal/sheets"
	"duit/internal/storage"
)

// SyncStore is the slice of the SQLite store the worker needs.
// *storage.SQLiteRepository satisfies it.
type SyncStore interface {
	Get(ctx context.Context, id string) (core.Transaction, error)
	GetPending(ctx context.Context, limit int) ([]storage.PendingTransaction, error)
	MarkSynced(ctx context.Context, id string) error
	MarkSyncError(ctx context.Context, id string) error
}

// SyncConsumer delivers queue messages to a handler until the context is
// cancelled. *amqp.Client satisfies it.
type SyncConsumer interface {
	ConsumeTransactionSync(ctx context.Context, handler func(*amqp.TransactionSyncMessage) error) error
}

type SyncWorker struct {
	store     SyncStore
	writer    sheets.TransactionWriter
	batchSize int
	logger    *applog.Logger
}

func NewSyncWorker(store SyncStore, writer sheets.TransactionWriter, batchSize int, logger *applog.Logger) *SyncWorker {
	return &SyncWorker{
		store:     store,
		writer:    writer,
		batchSize: batchSize,
		logger:    logger.WithComponent(applog.ComponentWorker),
	}
}

// Run consumes queue messages and sweeps pending rows every interval,
// until ctx is cancelled or either loop fails.
func (w *SyncWorker) Run(ctx context.Context, consumer SyncConsumer, interval time.Duration) error {
	if err := w.StartupSyncCheck(ctx); err != nil {
		w.logger.ErrorContext(ctx, "startup sync check failed", applog.FieldError, err.Error())
	}

	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		return consumer.ConsumeTransactionSync(ctx, func(msg *amqp.TransactionSyncMessage) error {
			return w.HandleSyncMessage(ctx, msg)
		})
	})

	g.Go(func() error {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-ticker.C:
				if err := w.ProcessPendingTransactions(ctx); err != nil {
					w.logger.ErrorContext(ctx, "pending sweep failed", applog.FieldError, err.Error())
				}
			}
		}
	})

	return g.Wait()
}

// HandleSyncMessage processes one queue message. Create and update fetch
// the transaction and append it to the sheet. Deletes are acknowledged
// without sheet work: the sheet is an append-only journal.
func (w *SyncWorker) HandleSyncMessage(ctx context.Context, msg *amqp.TransactionSyncMessage) error {
	w.logger.DebugContext(ctx, "processing sync message",
		applog.FieldTransactionID, msg.ID,
		applog.FieldOperation, msg.Op,
		"version", msg.Version)

	if msg.Op == amqp.OpDelete {
		return nil
	}

	tx, err := w.store.Get(ctx, msg.ID)
	if errors.Is(err, storage.ErrNotFound) {
		// Deleted between publish and delivery. Nothing to sync.
		w.logger.WarnContext(ctx, "transaction gone before sync",
			applog.FieldTransactionID, msg.ID)
		return nil
	}
	if err != nil {
		return fmt.Errorf("get transaction %s: %w", msg.ID, err)
	}

	return w.syncToSheet(ctx, tx)
}

// ProcessPendingTransactions sweeps rows that never made it to the sheet.
// This is the backup path for lost queue messages.
func (w *SyncWorker) ProcessPendingTransactions(ctx context.Context) error {
	return w.processPending(ctx, w.batchSize)
}

// StartupSyncCheck drains a larger pending backlog once at worker start,
// recovering from downtime.
func (w *SyncWorker) StartupSyncCheck(ctx context.Context) error {
	return w.processPending(ctx, w.batchSize*5)
}

func (w *SyncWorker) processPending(ctx context.Context, limit int) error {
	pending, err := w.store.GetPending(ctx, limit)
	if err != nil {
		return fmt.Errorf("get pending transactions: %w", err)
	}
	if len(pending) == 0 {
		return nil
	}

	w.logger.InfoContext(ctx, "processing pending transactions", "count", len(pending))

	for _, p := range pending {
		tx, err := w.store.Get(ctx, p.ID)
		if err != nil {
			w.logger.ErrorContext(ctx, "failed to load pending transaction",
				applog.FieldTransactionID, p.ID,
				applog.FieldError, err.Error())
			if err := w.store.MarkSyncError(ctx, p.ID); err != nil {
				w.logger.ErrorContext(ctx, "failed to mark sync error",
					applog.FieldTransactionID, p.ID,
					applog.FieldError, err.Error())
			}
			continue
		}

		if err := w.syncToSheet(ctx, tx); err != nil {
			w.logger.ErrorContext(ctx, "failed to sync pending transaction",
				applog.FieldTransactionID, p.ID,
				applog.FieldError, err.Error())
		}
	}

	return nil
}

func (w *SyncWorker) syncToSheet(ctx context.Context, tx core.Transaction) error {
	ref, err := w.writer.Append(ctx, tx)
	if err != nil {
		if markErr := w.store.MarkSyncError(ctx, tx.ID); markErr != nil {
			w.logger.ErrorContext(ctx, "failed to mark sync error",
				applog.FieldTransactionID, tx.ID,
				applog.FieldError, markErr.Error())
		}
		return fmt.Errorf("append to sheet: %w", err)
	}

	if err := w.store.MarkSynced(ctx, tx.ID); err != nil {
		return fmt.Errorf("mark synced: %w", err)
	}

	w.logger.InfoContext(ctx, "synced transaction to sheet",
		applog.FieldTransactionID, tx.ID,
		applog.FieldSheetsRef, ref)
	return nil
}
