package amqp

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"finpanel/internal/core"
)

// NotificationKind tells consumers how to present a notification.
type NotificationKind string

const (
	KindReminder NotificationKind = "bill_reminder"
	KindOverdue  NotificationKind = "bill_overdue"
	KindBudget   NotificationKind = "budget_exceeded"
)

// NotificationMessage is published on the notifications queue. Key is the
// deduplication key; the same key is never published twice.
type NotificationMessage struct {
	ID         string           `json:"id"`
	Kind       NotificationKind `json:"kind"`
	Key        string           `json:"key"`
	Title      string           `json:"title"`
	Body       string           `json:"body"`
	RecordID   string           `json:"record_id,omitempty"`
	Issuer     string           `json:"issuer,omitempty"`
	Amount     core.Money       `json:"amount"`
	DueDate    core.Date        `json:"due_date"`
	DaysBefore *int             `json:"days_before,omitempty"`
	Timestamp  time.Time        `json:"timestamp"`
}

// NewNotificationMessage creates a notification with a fresh ID
func NewNotificationMessage(kind NotificationKind, key, title, body string) *NotificationMessage {
	return &NotificationMessage{
		ID:        uuid.NewString(),
		Kind:      kind,
		Key:       key,
		Title:     title,
		Body:      body,
		Timestamp: time.Now(),
	}
}

// ToJSON converts the message to JSON bytes
func (m *NotificationMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

// NotificationMessageFromJSON creates a message from JSON bytes
func NotificationMessageFromJSON(data []byte) (*NotificationMessage, error) {
	var msg NotificationMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	if msg.Key == "" {
		return nil, errors.New("notification without key")
	}
	return &msg, nil
}

// EventType identifies what changed on the ledger.
type EventType string

const (
	EventBillCreated       EventType = "bill.created"
	EventBillUpdated       EventType = "bill.updated"
	EventBillDeleted       EventType = "bill.deleted"
	EventFinanceChanged    EventType = "finance.changed"
	EventInvestmentChanged EventType = "investment.changed"
	EventGoalChanged       EventType = "goal.changed"
)

var knownEvents = map[EventType]bool{
	EventBillCreated:       true,
	EventBillUpdated:       true,
	EventBillDeleted:       true,
	EventFinanceChanged:    true,
	EventInvestmentChanged: true,
	EventGoalChanged:       true,
}

// Known reports whether t is one of the declared event types.
func (t EventType) Known() bool { return knownEvents[t] }

// LedgerEvent is a lightweight change notice from the ledger. It carries no
// record data; consumers refetch.
type LedgerEvent struct {
	ID         string    `json:"id"`
	Type       EventType `json:"type"`
	RecordID   string    `json:"record_id,omitempty"`
	OccurredAt time.Time `json:"occurred_at"`
}

// NewLedgerEvent creates an event with a fresh ID
func NewLedgerEvent(t EventType, recordID string) *LedgerEvent {
	return &LedgerEvent{
		ID:         uuid.NewString(),
		Type:       t,
		RecordID:   recordID,
		OccurredAt: time.Now(),
	}
}

// ToJSON converts the event to JSON bytes
func (e *LedgerEvent) ToJSON() ([]byte, error) {
	return json.Marshal(e)
}

// LedgerEventFromJSON creates an event from JSON bytes
func LedgerEventFromJSON(data []byte) (*LedgerEvent, error) {
	var ev LedgerEvent
	if err := json.Unmarshal(data, &ev); err != nil {
		return nil, err
	}
	if !ev.Type.Known() {
		return nil, fmt.Errorf("unknown ledger event type %q", ev.Type)
	}
	return &ev, nil
}
