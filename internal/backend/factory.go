package backend

import (
	"context"
	"fmt"

	"duit/internal/amqp"
	applog "duit/internal/log"
	"duit/internal/services"
	"duit/internal/storage"
)

type DefaultFactory struct {
	logger *applog.Logger
}

func NewFactory(logger *applog.Logger) Factory {
	return &DefaultFactory{
		logger: logger.WithComponent(applog.ComponentBackend),
	}
}

func (f *DefaultFactory) CreateBackend(ctx context.Context, config Config) (*services.TransactionService, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}

	var store storage.Store
	var err error

	switch config.Type {
	case FileBackend:
		store, err = storage.NewFileStore(config.StorePath)
		if err != nil {
			return nil, fmt.Errorf("initialize file store: %w", err)
		}
		f.logger.Info("initialized file backend", "path", config.StorePath)
	case SQLiteBackend:
		store, err = storage.NewSQLiteRepository(config.SQLiteDBPath)
		if err != nil {
			return nil, fmt.Errorf("initialize SQLite store: %w", err)
		}
		f.logger.Info("initialized sqlite backend", "db_path", config.SQLiteDBPath)
	case MemoryBackend:
		store = storage.NewSeededMemoryStore()
		f.logger.Info("initialized memory backend")
	default:
		return nil, fmt.Errorf("unsupported backend type: %s", config.Type)
	}

	// The sync queue is optional. A broker that is down at startup only
	// disables sync; the store still serves requests.
	var publisher services.SyncPublisher
	if config.AMQPURL != "" {
		amqpClient, err := amqp.NewClient(config.AMQPURL, config.AMQPExchange, config.AMQPQueue, f.logger)
		if err != nil {
			f.logger.Warn("failed to initialize AMQP client, continuing without sync",
				applog.FieldError, err.Error())
		} else {
			publisher = amqpClient
			f.logger.Info("initialized AMQP client",
				"exchange", config.AMQPExchange,
				"queue", config.AMQPQueue)
		}
	}

	return services.NewTransactionService(store, publisher, f.logger), nil
}
