package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"finpanel/internal/amqp"
	"finpanel/internal/analytics"
	"finpanel/internal/core"
	"finpanel/internal/log"
)

// Notifier delivers notifications, typically over AMQP.
type Notifier interface {
	PublishNotification(ctx context.Context, msg *amqp.NotificationMessage) error
}

// NotificationStore remembers which notification keys were already sent.
type NotificationStore interface {
	NotificationSent(ctx context.Context, key string) (bool, error)
	MarkNotificationSent(ctx context.Context, key, kind string, at time.Time) error
}

// ScanResult counts what one Scan did.
type ScanResult struct {
	Published int `json:"published"`
	Skipped   int `json:"skipped"`
	Failed    int `json:"failed"`
}

// NotificationService turns bill reminders, overdue bills and the budget
// alert into notifications, each sent at most once.
type NotificationService struct {
	notifier Notifier
	store    NotificationStore
	days     []int
	currency string
	logger   *log.Logger
}

// NewNotificationService creates a notification service. A nil days uses
// analytics.DefaultReminderDays.
func NewNotificationService(notifier Notifier, store NotificationStore, days []int, currency string, logger *log.Logger) *NotificationService {
	if logger == nil {
		logger = log.Discard()
	}
	if currency == "" {
		currency = "BRL"
	}
	return &NotificationService{
		notifier: notifier,
		store:    store,
		days:     days,
		currency: currency,
		logger:   logger.WithComponent(log.ComponentNotification),
	}
}

// Candidates builds every notification due for snap at now, without
// consulting the store.
func (s *NotificationService) Candidates(snap core.Snapshot, now time.Time) []*amqp.NotificationMessage {
	txs := snap.Transactions()
	var out []*amqp.NotificationMessage

	for _, r := range analytics.Reminders(txs, now, s.days) {
		days := r.DaysBefore
		title := fmt.Sprintf("Bill due in %d days", days)
		if days == 1 {
			title = "Bill due tomorrow"
		} else if days == 0 {
			title = "Bill due today"
		}
		msg := s.billMessage(amqp.KindReminder, fmt.Sprintf("reminder:%s:%d", recordKey(r.Record), days), title, r.Record)
		msg.DaysBefore = &days
		out = append(out, msg)
	}

	for _, r := range analytics.OverdueBills(txs, now) {
		key := fmt.Sprintf("overdue:%s:%s", recordKey(r), r.DueDate)
		out = append(out, s.billMessage(amqp.KindOverdue, key, "Bill overdue", r))
	}

	if b := analytics.BudgetAlert(txs, now); b.Exceeded {
		body := fmt.Sprintf("Expenses %s exceed income %s by %.2f%%",
			b.Expense.Display(s.currency), b.Income.Display(s.currency), b.PercentageOver)
		msg := amqp.NewNotificationMessage(amqp.KindBudget, "budget:"+b.Period, "Budget exceeded in "+b.Period, body)
		msg.Amount = b.Expense.Sub(b.Income)
		out = append(out, msg)
	}

	return out
}

func (s *NotificationService) billMessage(kind amqp.NotificationKind, key, title string, r core.TransactionRecord) *amqp.NotificationMessage {
	body := fmt.Sprintf("%s: %s due %s", analytics.Truncate(r.Issuer, 40), r.Amount.Display(s.currency), r.DueDate)
	msg := amqp.NewNotificationMessage(kind, key, title, body)
	msg.RecordID = r.ID
	msg.Issuer = r.Issuer
	msg.Amount = r.Amount
	msg.DueDate = r.DueDate
	return msg
}

// recordKey identifies a record in dedupe keys. Records without an ID fall
// back to issuer, amount and due date.
func recordKey(r core.TransactionRecord) string {
	if r.ID != "" {
		return r.ID
	}
	return fmt.Sprintf("%s|%d|%s", r.Issuer, r.Amount.Cents, r.DueDate)
}

// Scan publishes every candidate notification not sent before. A failed
// publish is counted, reported in the returned error and retried next scan.
func (s *NotificationService) Scan(ctx context.Context, snap core.Snapshot, now time.Time) (ScanResult, error) {
	var (
		result ScanResult
		errs   []error
	)
	sl := log.NewStructuredLogger(s.logger)

	for _, msg := range s.Candidates(snap, now) {
		if err := ctx.Err(); err != nil {
			return result, err
		}

		sent, err := s.store.NotificationSent(ctx, msg.Key)
		if err != nil {
			result.Failed++
			errs = append(errs, fmt.Errorf("check %s: %w", msg.Key, err))
			continue
		}
		if sent {
			result.Skipped++
			continue
		}

		if err := s.notifier.PublishNotification(ctx, msg); err != nil {
			result.Failed++
			errs = append(errs, fmt.Errorf("publish %s: %w", msg.Key, err))
			continue
		}
		if err := s.store.MarkNotificationSent(ctx, msg.Key, string(msg.Kind), now); err != nil {
			errs = append(errs, fmt.Errorf("mark %s: %w", msg.Key, err))
		}
		result.Published++
		sl.LogNotificationPublished(ctx, string(msg.Kind), msg.Key)
	}

	s.logger.InfoContext(ctx, "Notification scan finished",
		log.FieldOperation, log.OpScan,
		"published", result.Published,
		"skipped", result.Skipped,
		"failed", result.Failed)

	return result, errors.Join(errs...)
}
