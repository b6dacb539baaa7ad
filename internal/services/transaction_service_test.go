package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"duit/internal/amqp"
	"duit/internal/core"
	applog "duit/internal/log"
	"duit/internal/storage"
)

type publishedMessage struct {
	id      string
	op      string
	version uint64
}

type fakePublisher struct {
	messages []publishedMessage
	err      error
	closed   bool
}

func (p *fakePublisher) PublishTransactionSync(ctx context.Context, id, op string, version uint64) error {
	if p.err != nil {
		return p.err
	}
	p.messages = append(p.messages, publishedMessage{id: id, op: op, version: version})
	return nil
}

func (p *fakePublisher) Close() error {
	p.closed = true
	return nil
}

func newService(t *testing.T) (*TransactionService, *fakePublisher) {
	t.Helper()
	pub := &fakePublisher{}
	svc := NewTransactionService(storage.NewMemoryStore(), pub, applog.New(applog.DefaultConfig()))
	return svc, pub
}

func validTransaction() core.Transaction {
	return core.Transaction{
		Title:    "Makan siang",
		Amount:   core.Money{Rupiah: 45000},
		Category: "Food & Dining",
		Type:     core.Expense,
		Date:     time.Date(2025, time.August, 12, 0, 0, 0, 0, time.UTC),
	}
}

func TestCreatePublishesSyncMessage(t *testing.T) {
	svc, pub := newService(t)
	ctx := context.Background()

	created, err := svc.Create(ctx, validTransaction())
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if created.ID == "" {
		t.Fatal("created transaction has no ID")
	}

	if len(pub.messages) != 1 {
		t.Fatalf("published %d messages, want 1", len(pub.messages))
	}
	msg := pub.messages[0]
	if msg.id != created.ID || msg.op != amqp.OpCreate {
		t.Errorf("message = %+v", msg)
	}
	if msg.version != svc.Version() {
		t.Errorf("message version = %d, store version = %d", msg.version, svc.Version())
	}
}

func TestCreateRejectsInvalidTransaction(t *testing.T) {
	svc, pub := newService(t)

	tx := validTransaction()
	tx.Title = ""

	if _, err := svc.Create(context.Background(), tx); !errors.Is(err, core.ErrEmptyTitle) {
		t.Fatalf("got %v, want ErrEmptyTitle", err)
	}
	if len(pub.messages) != 0 {
		t.Error("invalid transaction must not publish")
	}
}

func TestUpdatePreservesCreatedAt(t *testing.T) {
	svc, pub := newService(t)
	ctx := context.Background()

	created, err := svc.Create(ctx, validTransaction())
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	changed := created
	changed.Title = "Makan malam"
	changed.Amount = core.Money{Rupiah: 60000}

	updated, err := svc.Update(ctx, created.ID, changed)
	if err != nil {
		t.Fatalf("Update: %v", err)
	}
	if updated.Title != "Makan malam" || updated.Amount.Rupiah != 60000 {
		t.Errorf("updated = %+v", updated)
	}
	if !updated.CreatedAt.Equal(created.CreatedAt) {
		t.Errorf("CreatedAt changed: %v -> %v", created.CreatedAt, updated.CreatedAt)
	}

	if len(pub.messages) != 2 || pub.messages[1].op != amqp.OpUpdate {
		t.Errorf("messages = %+v", pub.messages)
	}
}

func TestUpdateUnknownIDReturnsNotFound(t *testing.T) {
	svc, _ := newService(t)

	_, err := svc.Update(context.Background(), "missing", validTransaction())
	if !errors.Is(err, storage.ErrNotFound) {
		t.Fatalf("got %v, want ErrNotFound", err)
	}
}

func TestDeletePublishesSyncMessage(t *testing.T) {
	svc, pub := newService(t)
	ctx := context.Background()

	created, err := svc.Create(ctx, validTransaction())
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	if err := svc.Delete(ctx, created.ID); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if _, err := svc.Get(ctx, created.ID); !errors.Is(err, storage.ErrNotFound) {
		t.Errorf("Get after delete = %v, want ErrNotFound", err)
	}

	if len(pub.messages) != 2 || pub.messages[1].op != amqp.OpDelete {
		t.Errorf("messages = %+v", pub.messages)
	}
}

func TestDeleteUnknownIDReturnsNotFound(t *testing.T) {
	svc, pub := newService(t)

	if err := svc.Delete(context.Background(), "missing"); !errors.Is(err, storage.ErrNotFound) {
		t.Fatalf("got %v, want ErrNotFound", err)
	}
	if len(pub.messages) != 0 {
		t.Error("failed delete must not publish")
	}
}

func TestPublishFailureDoesNotFailRequest(t *testing.T) {
	pub := &fakePublisher{err: errors.New("broker down")}
	svc := NewTransactionService(storage.NewMemoryStore(), pub, applog.New(applog.DefaultConfig()))

	created, err := svc.Create(context.Background(), validTransaction())
	if err != nil {
		t.Fatalf("Create must succeed when publish fails, got %v", err)
	}

	if _, err := svc.Get(context.Background(), created.ID); err != nil {
		t.Errorf("transaction not stored: %v", err)
	}
}

func TestNilPublisherDisablesSync(t *testing.T) {
	svc := NewTransactionService(storage.NewMemoryStore(), nil, applog.New(applog.DefaultConfig()))

	if _, err := svc.Create(context.Background(), validTransaction()); err != nil {
		t.Fatalf("Create: %v", err)
	}
}

func TestCloseReleasesPublisher(t *testing.T) {
	svc, pub := newService(t)

	if err := svc.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
	if !pub.closed {
		t.Error("publisher not closed")
	}
}
