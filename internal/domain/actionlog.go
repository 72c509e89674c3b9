package domain

import (
	"time"

	"github.com/google/uuid"
)

// ActionLogEntry is one dispatched action. Entries are append-only.
type ActionLogEntry struct {
	ID          string
	WorkItemID  string
	ViolationID *string
	RuleID      *string
	ActionType  ActionKind
	ActionData  map[string]any
	Message     string
	Success     bool
	ExecutedBy  string
	ExecutedAt  time.Time
}

func NewActionLogEntry(workItemID string, kind ActionKind, message string, now time.Time) *ActionLogEntry {
	return &ActionLogEntry{
		ID:         uuid.New().String(),
		WorkItemID: workItemID,
		ActionType: kind,
		ActionData: map[string]any{},
		Message:    message,
		Success:    true,
		ExecutedBy: ExecutedBySystem,
		ExecutedAt: now,
	}
}
