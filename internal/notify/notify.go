// Package notify hands notification decisions to an external delivery sink.
package notify

import (
	"context"
	"errors"
	"time"
)

// ErrDeliveryFailed wraps any sink error that survived the retry budget.
var ErrDeliveryFailed = errors.New("notification delivery failed")

type Kind string

const (
	KindEscalation Kind = "escalation"
	KindAlert      Kind = "alert"
	KindPriority   Kind = "priority_raised"
)

// Notification is what to send and to whom. Recipients are role names or ids.
type Notification struct {
	ID          string    `json:"id"`
	Kind        Kind      `json:"kind"`
	WorkItemID  string    `json:"work_item_id"`
	RuleID      string    `json:"rule_id,omitempty"`
	ViolationID string    `json:"violation_id,omitempty"`
	Severity    string    `json:"severity,omitempty"`
	Recipients  []string  `json:"recipients"`
	Message     string    `json:"message"`
	CreatedAt   time.Time `json:"created_at"`
}

// Sink delivers a notification. Implementations must be safe for concurrent use.
type Sink interface {
	Send(ctx context.Context, n Notification) error
}
