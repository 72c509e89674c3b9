package domain

import (
	"fmt"
	"regexp"
	"time"
)

type ConditionKind string

const (
	ConditionPriorityEquals ConditionKind = "priority_equals"
	ConditionStatusIn       ConditionKind = "status_in"
	ConditionElapsedMinutes ConditionKind = "elapsed_minutes"
	ConditionIsOverdue      ConditionKind = "is_overdue"
)

// Condition is a closed set of predicates over a work item. Only the types in
// this file implement it.
type Condition interface {
	Kind() ConditionKind
	validate() error
	isCondition()
}

type PriorityEquals struct {
	Priority Priority
}

type StatusIn struct {
	Statuses []WorkItemStatus
}

// ElapsedMinutes holds when at least Threshold minutes passed since Anchor.
type ElapsedMinutes struct {
	Anchor    ElapsedAnchor
	Threshold int
}

type IsOverdue struct{}

func (PriorityEquals) Kind() ConditionKind { return ConditionPriorityEquals }
func (StatusIn) Kind() ConditionKind       { return ConditionStatusIn }
func (ElapsedMinutes) Kind() ConditionKind { return ConditionElapsedMinutes }
func (IsOverdue) Kind() ConditionKind      { return ConditionIsOverdue }

func (PriorityEquals) isCondition() {}
func (StatusIn) isCondition()       {}
func (ElapsedMinutes) isCondition() {}
func (IsOverdue) isCondition()      {}

func (c PriorityEquals) validate() error {
	if !c.Priority.Valid() {
		return fmt.Errorf("unknown priority %q", c.Priority)
	}
	return nil
}

func (c StatusIn) validate() error {
	if len(c.Statuses) == 0 {
		return fmt.Errorf("status set is empty")
	}
	for _, s := range c.Statuses {
		if !s.Valid() {
			return fmt.Errorf("unknown status %q", s)
		}
	}
	return nil
}

func (c ElapsedMinutes) validate() error {
	if c.Anchor != AnchorCreated && c.Anchor != AnchorStatusChanged {
		return fmt.Errorf("unknown anchor %q", c.Anchor)
	}
	if c.Threshold < 0 {
		return fmt.Errorf("threshold must be >= 0, got %d", c.Threshold)
	}
	return nil
}

func (IsOverdue) validate() error { return nil }

type ActionKind string

const (
	ActionEscalate      ActionKind = "escalate"
	ActionNotify        ActionKind = "notify"
	ActionReassign      ActionKind = "reassign"
	ActionPriorityBoost ActionKind = "priority_boost"
	ActionLog           ActionKind = "log"
)

// Action is a closed set of side effects a rule may request.
type Action interface {
	Kind() ActionKind
	validate() error
	isAction()
}

type Escalate struct {
	Target EscalationTarget
}

type Notify struct {
	Recipients []string
}

type Reassign struct {
	Criteria ReassignCriteria
}

type PriorityBoost struct {
	Priority Priority
}

type LogMessage struct {
	Message string
}

func (Escalate) Kind() ActionKind      { return ActionEscalate }
func (Notify) Kind() ActionKind        { return ActionNotify }
func (Reassign) Kind() ActionKind      { return ActionReassign }
func (PriorityBoost) Kind() ActionKind { return ActionPriorityBoost }
func (LogMessage) Kind() ActionKind    { return ActionLog }

func (Escalate) isAction()      {}
func (Notify) isAction()        {}
func (Reassign) isAction()      {}
func (PriorityBoost) isAction() {}
func (LogMessage) isAction()    {}

func (a Escalate) validate() error {
	if a.Target != EscalateSupervisor && a.Target != EscalateManager {
		return fmt.Errorf("unknown escalation target %q", a.Target)
	}
	return nil
}

func (a Notify) validate() error {
	if len(a.Recipients) == 0 {
		return fmt.Errorf("recipient list is empty")
	}
	for _, r := range a.Recipients {
		if r == "" {
			return fmt.Errorf("recipient must not be blank")
		}
	}
	return nil
}

func (a Reassign) validate() error {
	if a.Criteria != CriteriaBestAvailable && a.Criteria != CriteriaAvailableSpecialist {
		return fmt.Errorf("unknown reassign criteria %q", a.Criteria)
	}
	return nil
}

func (a PriorityBoost) validate() error {
	if !a.Priority.Valid() {
		return fmt.Errorf("unknown priority %q", a.Priority)
	}
	return nil
}

func (a LogMessage) validate() error {
	if a.Message == "" {
		return fmt.Errorf("message must not be blank")
	}
	return nil
}

// Rule is a conjunction of conditions mapped to an ordered list of actions.
// Priority orders simultaneous matches (higher first); it never suppresses
// other rules.
type Rule struct {
	ID          string
	Name        string
	Description string
	Conditions  []Condition
	Actions     []Action
	Severity    Severity
	Enabled     bool
	Priority    int
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

var ruleIDPattern = regexp.MustCompile(`^[a-z0-9][a-z0-9_\-]*$`)

// Validate checks the rule against the closed condition and action sets.
// Violations are reported as *ConfigurationError.
func (r *Rule) Validate() error {
	if !ruleIDPattern.MatchString(r.ID) {
		return &ConfigurationError{RuleID: r.ID, Field: "id", Message: "must be a lowercase key of letters, digits, '_' or '-'"}
	}
	if r.Name == "" {
		return &ConfigurationError{RuleID: r.ID, Field: "name", Message: "must not be blank"}
	}
	if !r.Severity.Valid() {
		return &ConfigurationError{RuleID: r.ID, Field: "severity", Message: fmt.Sprintf("unknown severity %q", r.Severity)}
	}
	if len(r.Conditions) == 0 {
		return &ConfigurationError{RuleID: r.ID, Field: "conditions", Message: "at least one condition is required"}
	}
	for i, c := range r.Conditions {
		if c == nil {
			return &ConfigurationError{RuleID: r.ID, Field: fmt.Sprintf("conditions[%d]", i), Message: "missing condition"}
		}
		if err := c.validate(); err != nil {
			return &ConfigurationError{RuleID: r.ID, Field: fmt.Sprintf("conditions[%d].%s", i, c.Kind()), Message: err.Error()}
		}
	}
	for i, a := range r.Actions {
		if a == nil {
			return &ConfigurationError{RuleID: r.ID, Field: fmt.Sprintf("actions[%d]", i), Message: "missing action"}
		}
		if err := a.validate(); err != nil {
			return &ConfigurationError{RuleID: r.ID, Field: fmt.Sprintf("actions[%d].%s", i, a.Kind()), Message: err.Error()}
		}
	}
	return nil
}
