package amqp

import (
	"encoding/json"
	"fmt"
	"time"
)

// Sync operations carried by a TransactionSyncMessage.
const (
	OpCreate = "create"
	OpUpdate = "update"
	OpDelete = "delete"
)

// TransactionSyncMessage is the lightweight message published for each
// mutation. It carries only the ID, operation and version; the worker
// fetches the full transaction from the store.
type TransactionSyncMessage struct {
	ID        string    `json:"id"`
	Op        string    `json:"op"`
	Version   uint64    `json:"version"`
	Timestamp time.Time `json:"timestamp"`
}

// NewTransactionSyncMessage creates a sync message stamped with the current time.
func NewTransactionSyncMessage(id, op string, version uint64) *TransactionSyncMessage {
	return &TransactionSyncMessage{
		ID:        id,
		Op:        op,
		Version:   version,
		Timestamp: time.Now(),
	}
}

// Validate rejects messages with a missing ID or an unknown operation.
func (m *TransactionSyncMessage) Validate() error {
	if m.ID == "" {
		return fmt.Errorf("sync message has empty transaction id")
	}
	switch m.Op {
	case OpCreate, OpUpdate, OpDelete:
		return nil
	default:
		return fmt.Errorf("sync message has unknown operation %q", m.Op)
	}
}

// ToJSON converts the message to JSON bytes.
func (m *TransactionSyncMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

// TransactionSyncMessageFromJSON decodes and validates a message.
func TransactionSyncMessageFromJSON(data []byte) (*TransactionSyncMessage, error) {
	var msg TransactionSyncMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	if err := msg.Validate(); err != nil {
		return nil, err
	}
	return &msg, nil
}
