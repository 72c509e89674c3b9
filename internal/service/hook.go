package service

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/alexanderramin/slaguard/internal/contract"
	"github.com/alexanderramin/slaguard/internal/domain"
	"github.com/alexanderramin/slaguard/internal/engine"
	"github.com/alexanderramin/slaguard/internal/notify"
	"github.com/alexanderramin/slaguard/internal/repository"
	"github.com/alexanderramin/slaguard/internal/sweep"
	"github.com/google/uuid"
)

// ChangeHook reacts synchronously to a committed work item mutation. before
// is nil for a newly created item.
type ChangeHook interface {
	OnWorkItemChanged(ctx context.Context, before, after *domain.WorkItem) (contract.ChangeEffects, error)
}

// ItemEvaluator runs the rule engine for a single item.
type ItemEvaluator interface {
	EvaluateItem(ctx context.Context, item *domain.WorkItem) (*sweep.Report, error)
	ResolveItem(ctx context.Context, itemID, reason string) (int, error)
}

// PriorityNotifyRecipients receive the priority-raised notification.
var PriorityNotifyRecipients = []string{domain.RecipientAdmin, domain.RecipientAssignedTechnician}

type engineHook struct {
	evaluator ItemEvaluator
	actions   repository.ActionLogRepo
	sink      notify.Sink
	now       Clock
	logger    *slog.Logger
}

// NewEngineHook resolves violations of items that reach a terminal status,
// notifies when priority rises, and evaluates the enabled rules against
// every other change.
func NewEngineHook(evaluator ItemEvaluator, actions repository.ActionLogRepo, sink notify.Sink, logger *slog.Logger) ChangeHook {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &engineHook{evaluator: evaluator, actions: actions, sink: sink, now: defaultClock, logger: logger}
}

func (h *engineHook) OnWorkItemChanged(ctx context.Context, before, after *domain.WorkItem) (contract.ChangeEffects, error) {
	var fx contract.ChangeEffects
	if after.IsTerminal() {
		n, err := h.evaluator.ResolveItem(ctx, after.ID, "work item "+string(after.Status))
		fx.Resolved = n
		return fx, err
	}

	if before != nil && after.Priority.Rank() > before.Priority.Rank() {
		sent, err := h.notifyPriority(ctx, before.Priority, after)
		if err != nil {
			return fx, err
		}
		fx.PriorityNotified = sent
	}

	rep, err := h.evaluator.EvaluateItem(ctx, after)
	if rep != nil {
		fx.ViolationsDetected = rep.ViolationsDetected
		fx.ActionsDispatched = rep.ActionsDispatched
		fx.ActionsFailed = rep.ActionsFailed
	}
	return fx, err
}

// notifyPriority sends the priority-raised notification and records it in the
// action log. A sink failure is logged as a failed entry, not returned.
func (h *engineHook) notifyPriority(ctx context.Context, from domain.Priority, item *domain.WorkItem) (bool, error) {
	now := h.now()
	msg := fmt.Sprintf("priority of work item %s raised from %s to %s", item.ID, from, item.Priority)
	entry := domain.NewActionLogEntry(item.ID, domain.ActionNotify, "", now)
	entry.ActionData["from"] = string(from)
	entry.ActionData["to"] = string(item.Priority)

	recipients, skipped := engine.ResolveRecipients(item, PriorityNotifyRecipients)
	entry.ActionData["recipients"] = recipients
	if len(skipped) > 0 {
		entry.ActionData["skipped"] = skipped
	}

	err := h.sink.Send(ctx, notify.Notification{
		ID:         uuid.New().String(),
		Kind:       notify.KindPriority,
		WorkItemID: item.ID,
		Recipients: recipients,
		Message:    msg,
		CreatedAt:  now,
	})
	sent := err == nil
	if sent {
		entry.Message = "notified " + strings.Join(recipients, ",") + ": " + msg
	} else {
		entry.Success = false
		entry.Message = fmt.Sprintf("priority notification failed: %v", err)
		h.logger.WarnContext(ctx, "priority notification failed", "work_item_id", item.ID, "error", err)
	}
	if err := h.actions.Append(ctx, entry); err != nil {
		return false, err
	}
	return sent, nil
}
