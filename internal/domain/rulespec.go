package domain

import (
	"fmt"
	"slices"
)

// ConditionSpec is the serialized form of a Condition, shared by the JSON
// columns in the store and the YAML rule files.
type ConditionSpec struct {
	Type     string   `json:"type" yaml:"type"`
	Priority string   `json:"priority,omitempty" yaml:"priority,omitempty"`
	Statuses []string `json:"statuses,omitempty" yaml:"statuses,omitempty"`
	Anchor   string   `json:"anchor,omitempty" yaml:"anchor,omitempty"`
	Minutes  int      `json:"minutes,omitempty" yaml:"minutes,omitempty"`
}

// ActionSpec is the serialized form of an Action.
type ActionSpec struct {
	Type       string   `json:"type" yaml:"type"`
	Target     string   `json:"target,omitempty" yaml:"target,omitempty"`
	Recipients []string `json:"recipients,omitempty" yaml:"recipients,omitempty"`
	Criteria   string   `json:"criteria,omitempty" yaml:"criteria,omitempty"`
	Priority   string   `json:"priority,omitempty" yaml:"priority,omitempty"`
	Message    string   `json:"message,omitempty" yaml:"message,omitempty"`
}

type RuleSpec struct {
	ID          string          `json:"id" yaml:"id"`
	Name        string          `json:"name" yaml:"name"`
	Description string          `json:"description,omitempty" yaml:"description,omitempty"`
	Severity    string          `json:"severity" yaml:"severity"`
	Enabled     *bool           `json:"enabled,omitempty" yaml:"enabled,omitempty"`
	Priority    int             `json:"priority" yaml:"priority"`
	Conditions  []ConditionSpec `json:"conditions" yaml:"conditions"`
	Actions     []ActionSpec    `json:"actions" yaml:"actions"`
}

func (s ConditionSpec) Decode() (Condition, error) {
	switch ConditionKind(s.Type) {
	case ConditionPriorityEquals:
		return PriorityEquals{Priority: Priority(s.Priority)}, nil
	case ConditionStatusIn:
		statuses := make([]WorkItemStatus, len(s.Statuses))
		for i, st := range s.Statuses {
			statuses[i] = WorkItemStatus(st)
		}
		return StatusIn{Statuses: statuses}, nil
	case ConditionElapsedMinutes:
		anchor := ElapsedAnchor(s.Anchor)
		if anchor == "" {
			anchor = AnchorCreated
		}
		return ElapsedMinutes{Anchor: anchor, Threshold: s.Minutes}, nil
	case ConditionIsOverdue:
		return IsOverdue{}, nil
	default:
		return nil, fmt.Errorf("unknown condition type %q", s.Type)
	}
}

func (s ActionSpec) Decode() (Action, error) {
	switch ActionKind(s.Type) {
	case ActionEscalate:
		return Escalate{Target: EscalationTarget(s.Target)}, nil
	case ActionNotify:
		return Notify{Recipients: slices.Clone(s.Recipients)}, nil
	case ActionReassign:
		return Reassign{Criteria: ReassignCriteria(s.Criteria)}, nil
	case ActionPriorityBoost:
		return PriorityBoost{Priority: Priority(s.Priority)}, nil
	case ActionLog:
		return LogMessage{Message: s.Message}, nil
	default:
		return nil, fmt.Errorf("unknown action type %q", s.Type)
	}
}

func EncodeCondition(c Condition) ConditionSpec {
	switch v := c.(type) {
	case PriorityEquals:
		return ConditionSpec{Type: string(v.Kind()), Priority: string(v.Priority)}
	case StatusIn:
		statuses := make([]string, len(v.Statuses))
		for i, st := range v.Statuses {
			statuses[i] = string(st)
		}
		return ConditionSpec{Type: string(v.Kind()), Statuses: statuses}
	case ElapsedMinutes:
		return ConditionSpec{Type: string(v.Kind()), Anchor: string(v.Anchor), Minutes: v.Threshold}
	case IsOverdue:
		return ConditionSpec{Type: string(v.Kind())}
	}
	panic(fmt.Sprintf("unhandled condition %T", c))
}

func EncodeAction(a Action) ActionSpec {
	switch v := a.(type) {
	case Escalate:
		return ActionSpec{Type: string(v.Kind()), Target: string(v.Target)}
	case Notify:
		return ActionSpec{Type: string(v.Kind()), Recipients: slices.Clone(v.Recipients)}
	case Reassign:
		return ActionSpec{Type: string(v.Kind()), Criteria: string(v.Criteria)}
	case PriorityBoost:
		return ActionSpec{Type: string(v.Kind()), Priority: string(v.Priority)}
	case LogMessage:
		return ActionSpec{Type: string(v.Kind()), Message: v.Message}
	}
	panic(fmt.Sprintf("unhandled action %T", a))
}

func EncodeConditions(cs []Condition) []ConditionSpec {
	out := make([]ConditionSpec, len(cs))
	for i, c := range cs {
		out[i] = EncodeCondition(c)
	}
	return out
}

func EncodeActions(as []Action) []ActionSpec {
	out := make([]ActionSpec, len(as))
	for i, a := range as {
		out[i] = EncodeAction(a)
	}
	return out
}

// DecodeConditions decodes every spec, reporting the first unknown tag as a
// *ConfigurationError.
func DecodeConditions(ruleID string, specs []ConditionSpec) ([]Condition, error) {
	out := make([]Condition, 0, len(specs))
	for i, s := range specs {
		c, err := s.Decode()
		if err != nil {
			return nil, &ConfigurationError{RuleID: ruleID, Field: fmt.Sprintf("conditions[%d]", i), Message: err.Error()}
		}
		out = append(out, c)
	}
	return out, nil
}

func DecodeActions(ruleID string, specs []ActionSpec) ([]Action, error) {
	out := make([]Action, 0, len(specs))
	for i, s := range specs {
		a, err := s.Decode()
		if err != nil {
			return nil, &ConfigurationError{RuleID: ruleID, Field: fmt.Sprintf("actions[%d]", i), Message: err.Error()}
		}
		out = append(out, a)
	}
	return out, nil
}

// ToRule decodes and validates the spec. Enabled defaults to true.
func (s RuleSpec) ToRule() (*Rule, error) {
	conds, err := DecodeConditions(s.ID, s.Conditions)
	if err != nil {
		return nil, err
	}
	actions, err := DecodeActions(s.ID, s.Actions)
	if err != nil {
		return nil, err
	}
	r := &Rule{
		ID:          s.ID,
		Name:        s.Name,
		Description: s.Description,
		Conditions:  conds,
		Actions:     actions,
		Severity:    Severity(s.Severity),
		Enabled:     BoolFromPtrWithDefault(true, s.Enabled),
		Priority:    s.Priority,
	}
	if err := r.Validate(); err != nil {
		return nil, err
	}
	return r, nil
}

func SpecFromRule(r *Rule) RuleSpec {
	enabled := r.Enabled
	return RuleSpec{
		ID:          r.ID,
		Name:        r.Name,
		Description: r.Description,
		Severity:    string(r.Severity),
		Enabled:     &enabled,
		Priority:    r.Priority,
		Conditions:  EncodeConditions(r.Conditions),
		Actions:     EncodeActions(r.Actions),
	}
}
