package engine

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/alexanderramin/slaguard/internal/db"
	"github.com/alexanderramin/slaguard/internal/domain"
	"github.com/alexanderramin/slaguard/internal/notify"
	"github.com/alexanderramin/slaguard/internal/repository"
	"github.com/alexanderramin/slaguard/internal/scheduler"
)

// NoCandidateMessage is logged when a reassign action finds nobody eligible.
const NoCandidateMessage = "no candidate available"

// stepKey holds the action's position within its rule in the entry data.
const stepKey = "step"

type ActionResult struct {
	Kind    domain.ActionKind
	Success bool
	Message string
	EntryID string
}

// DispatchOutcome lists one result per action, in declaration order.
type DispatchOutcome struct {
	WorkItemID  string
	RuleID      string
	ViolationID string
	Results     []ActionResult
	// Skipped counts actions already logged by an earlier, interrupted dispatch.
	Skipped int
}

func (o *DispatchOutcome) Failed() int {
	n := 0
	for _, r := range o.Results {
		if !r.Success {
			n++
		}
	}
	return n
}

// Dispatcher executes rule actions. Each action is best effort: a failed
// notification or assignment becomes a failed log entry and the remaining
// actions still run. Only store failures abort the dispatch.
type Dispatcher struct {
	uow      db.UnitOfWork
	items    repository.WorkItemRepo
	actions  repository.ActionLogRepo
	assigner *Assigner
	sink     notify.Sink
	locks    *ItemLocks
	contacts Contacts
	now      func() time.Time
	logger   *slog.Logger
}

type DispatcherOption func(*Dispatcher)

func WithClock(now func() time.Time) DispatcherOption {
	return func(d *Dispatcher) { d.now = now }
}

func WithLogger(l *slog.Logger) DispatcherOption {
	return func(d *Dispatcher) { d.logger = l }
}

func WithContacts(c Contacts) DispatcherOption {
	return func(d *Dispatcher) { d.contacts = c }
}

func NewDispatcher(
	uow db.UnitOfWork,
	items repository.WorkItemRepo,
	actions repository.ActionLogRepo,
	assigner *Assigner,
	sink notify.Sink,
	locks *ItemLocks,
	opts ...DispatcherOption,
) *Dispatcher {
	d := &Dispatcher{
		uow:      uow,
		items:    items,
		actions:  actions,
		assigner: assigner,
		sink:     sink,
		locks:    locks,
		now:      defaultClock,
		logger:   slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Dispatch runs the rule's actions for one item under the item's lock.
// violation may be nil for operator-triggered runs.
//
// For a recorded violation each log entry carries its action's position, so a
// dispatch cut short by a store failure resumes after the last logged action
// instead of repeating it. The violation is stamped dispatched once every
// action has its entry.
func (d *Dispatcher) Dispatch(ctx context.Context, item *domain.WorkItem, rule *domain.Rule, violation *domain.Violation) (*DispatchOutcome, error) {
	unlock := d.locks.Lock(item.ID)
	defer unlock()

	outcome := &DispatchOutcome{WorkItemID: item.ID, RuleID: rule.ID}
	done := map[int]bool{}
	if violation != nil {
		outcome.ViolationID = violation.ID
		var err error
		if done, err = d.loggedSteps(ctx, violation.ID); err != nil {
			return outcome, fmt.Errorf("loading logged actions for violation %s: %w", violation.ID, err)
		}
	}
	for i, action := range rule.Actions {
		if done[i] {
			outcome.Skipped++
			continue
		}
		entry, err := d.dispatchOne(ctx, i, item.ID, rule, violation, action)
		if err != nil {
			return outcome, fmt.Errorf("dispatching %s for rule %s on %s: %w", action.Kind(), rule.ID, item.ID, err)
		}
		if !entry.Success {
			d.logger.WarnContext(ctx, "action failed",
				"work_item_id", item.ID, "rule_id", rule.ID, "action", string(entry.ActionType), "message", entry.Message)
		}
		outcome.Results = append(outcome.Results, ActionResult{
			Kind:    entry.ActionType,
			Success: entry.Success,
			Message: entry.Message,
			EntryID: entry.ID,
		})
	}
	if violation != nil {
		err := d.uow.WithinTx(ctx, func(ctx context.Context, tx db.DBTX) error {
			return repository.NewSQLiteViolationRepo(tx).MarkDispatched(ctx, violation.ID, d.now())
		})
		if err != nil {
			return outcome, fmt.Errorf("completing dispatch of violation %s: %w", violation.ID, err)
		}
	}
	return outcome, nil
}

// loggedSteps returns the action positions that already have a log entry
// for the violation.
func (d *Dispatcher) loggedSteps(ctx context.Context, violationID string) (map[int]bool, error) {
	entries, err := d.actions.List(ctx, repository.ActionLogFilter{ViolationID: violationID})
	if err != nil {
		return nil, err
	}
	done := make(map[int]bool, len(entries))
	for _, e := range entries {
		if step, ok := entryStep(e); ok {
			done[step] = true
		}
	}
	return done, nil
}

// entryStep reads the action position back from a stored entry. JSON
// decoding yields float64 for numbers.
func entryStep(e *domain.ActionLogEntry) (int, bool) {
	switch v := e.ActionData[stepKey].(type) {
	case int:
		return v, true
	case float64:
		return int(v), true
	}
	return 0, false
}

func (d *Dispatcher) dispatchOne(ctx context.Context, step int, itemID string, rule *domain.Rule, violation *domain.Violation, action domain.Action) (*domain.ActionLogEntry, error) {
	entry := d.newEntry(itemID, rule, violation, action)
	entry.ActionData[stepKey] = step
	switch a := action.(type) {
	case domain.Escalate:
		return entry, d.escalate(ctx, entry, rule, violation, a)
	case domain.Notify:
		if err := d.notifyRecipients(ctx, entry, rule, violation, a); err != nil {
			return entry, err
		}
	case domain.Reassign:
		if err := d.reassign(ctx, entry, a); err != nil {
			return entry, err
		}
	case domain.PriorityBoost:
		return entry, d.boost(ctx, entry, a)
	case domain.LogMessage:
		entry.Message = a.Message
	default:
		entry.Success = false
		entry.Message = fmt.Sprintf("unsupported action %T", action)
	}
	return entry, d.actions.Append(ctx, entry)
}

func (d *Dispatcher) newEntry(itemID string, rule *domain.Rule, violation *domain.Violation, action domain.Action) *domain.ActionLogEntry {
	entry := domain.NewActionLogEntry(itemID, action.Kind(), "", d.now())
	ruleID := rule.ID
	entry.RuleID = &ruleID
	if violation != nil {
		vid := violation.ID
		entry.ViolationID = &vid
	}
	spec := domain.EncodeAction(action)
	entry.ActionData["action"] = spec
	entry.ActionData["rule_id"] = rule.ID
	return entry
}

func (d *Dispatcher) notification(kind notify.Kind, itemID string, rule *domain.Rule, violation *domain.Violation, recipients []string, msg string) notify.Notification {
	n := notify.Notification{
		ID:         uuid.New().String(),
		Kind:       kind,
		WorkItemID: itemID,
		RuleID:     rule.ID,
		Severity:   string(rule.Severity),
		Recipients: recipients,
		Message:    msg,
		CreatedAt:  d.now(),
	}
	if violation != nil {
		n.ViolationID = violation.ID
		n.Severity = string(violation.Severity)
	}
	return n
}

// escalate records the escalation target on the item. The target is notified
// unless the item was already escalated earlier the same day. The notification
// goes out only after the item update has been written, inside the same
// transaction as the log entry, so a failed store write never publishes it.
func (d *Dispatcher) escalate(ctx context.Context, entry *domain.ActionLogEntry, rule *domain.Rule, violation *domain.Violation, a domain.Escalate) error {
	target := d.contacts.EscalationTarget(a.Target)
	now := d.now()
	entry.ActionData["target"] = target

	return d.uow.WithinTx(ctx, func(ctx context.Context, tx db.DBTX) error {
		items := repository.NewSQLiteWorkItemRepo(tx)
		w, err := items.GetByID(ctx, entry.WorkItemID)
		if err != nil {
			return err
		}
		alreadyToday := w.EscalatedAt != nil && domain.SameDay(*w.EscalatedAt, now)
		w.Escalate(target, now)
		if err := items.Update(ctx, w); err != nil {
			return err
		}

		entry.ActionData["notified"] = !alreadyToday
		entry.Message = fmt.Sprintf("escalated to %s", target)
		if alreadyToday {
			entry.Message = fmt.Sprintf("escalation to %s refreshed, already notified today", target)
		} else {
			msg := fmt.Sprintf("Work item %s escalated by rule %s", entry.WorkItemID, rule.Name)
			if err := d.sink.Send(ctx, d.notification(notify.KindEscalation, entry.WorkItemID, rule, violation, []string{target}, msg)); err != nil {
				entry.Success = false
				entry.ActionData["notified"] = false
				entry.Message = fmt.Sprintf("escalated to %s, notification failed: %v", target, err)
			}
		}
		return repository.NewSQLiteActionLogRepo(tx).Append(ctx, entry)
	})
}

func (d *Dispatcher) notifyRecipients(ctx context.Context, entry *domain.ActionLogEntry, rule *domain.Rule, violation *domain.Violation, a domain.Notify) error {
	item, err := d.items.GetByID(ctx, entry.WorkItemID)
	if err != nil {
		return err
	}
	resolved, skipped := ResolveRecipients(item, a.Recipients)
	entry.ActionData["recipients"] = resolved
	if len(skipped) > 0 {
		entry.ActionData["skipped"] = skipped
	}
	if len(resolved) == 0 {
		entry.Message = "no recipients resolved: " + strings.Join(skipped, ",")
		return nil
	}

	msg := fmt.Sprintf("SLA rule %q matched work item %s", rule.Name, item.ID)
	if err := d.sink.Send(ctx, d.notification(notify.KindAlert, item.ID, rule, violation, resolved, msg)); err != nil {
		entry.Success = false
		entry.Message = fmt.Sprintf("notification to %s failed: %v", strings.Join(resolved, ","), err)
		return nil
	}
	entry.Message = "notified " + strings.Join(resolved, ",")
	return nil
}

// reassign delegates to the scorer. Having no eligible candidate is recorded
// as a log entry and leaves the assignment unchanged.
func (d *Dispatcher) reassign(ctx context.Context, entry *domain.ActionLogEntry, a domain.Reassign) error {
	decision, err := d.assigner.Assign(ctx, entry.WorkItemID, a.Criteria, domain.ExecutedBySystem)
	switch {
	case err == nil:
		entry.ActionData["technician_id"] = decision.TechnicianID
		entry.ActionData["decision_id"] = decision.ID
		entry.ActionData["score"] = decision.Score
		entry.Message = fmt.Sprintf("assigned to %s (score %.3f)", decision.TechnicianID, decision.Score)
		return nil
	case errors.Is(err, scheduler.ErrNoEligibleCandidate):
		entry.ActionType = domain.ActionLog
		entry.ActionData["criteria"] = string(a.Criteria)
		entry.Message = NoCandidateMessage
		return nil
	case errors.Is(err, repository.ErrStoreUnavailable):
		return err
	default:
		entry.Success = false
		entry.Message = fmt.Sprintf("reassignment failed: %v", err)
		return nil
	}
}

// boost raises the priority inside one transaction with its log entry. It
// never lowers the priority.
func (d *Dispatcher) boost(ctx context.Context, entry *domain.ActionLogEntry, a domain.PriorityBoost) error {
	return d.uow.WithinTx(ctx, func(ctx context.Context, tx db.DBTX) error {
		items := repository.NewSQLiteWorkItemRepo(tx)
		w, err := items.GetByID(ctx, entry.WorkItemID)
		if err != nil {
			return err
		}
		from := w.Priority
		if w.RaisePriority(a.Priority, d.now()) {
			if err := items.Update(ctx, w); err != nil {
				return err
			}
			entry.Message = fmt.Sprintf("priority raised from %s to %s", from, a.Priority)
		} else {
			entry.Message = fmt.Sprintf("priority %s already at or above %s", from, a.Priority)
		}
		entry.ActionData["from"] = string(from)
		entry.ActionData["to"] = string(w.Priority)
		return repository.NewSQLiteActionLogRepo(tx).Append(ctx, entry)
	})
}
