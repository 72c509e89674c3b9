package testutil

import (
	"time"

	"github.com/alexanderramin/slaguard/internal/domain"
	"github.com/google/uuid"
)

// WorkItem options
type WorkItemOption func(*domain.WorkItem)

func WithPriority(p domain.Priority) WorkItemOption {
	return func(w *domain.WorkItem) {
		w.Priority = p
	}
}

func WithStatus(s domain.WorkItemStatus) WorkItemOption {
	return func(w *domain.WorkItem) {
		w.Status = s
	}
}

func WithRequiredSkill(skill string) WorkItemOption {
	return func(w *domain.WorkItem) {
		w.RequiredSkill = skill
	}
}

func WithLocation(loc string) WorkItemOption {
	return func(w *domain.WorkItem) {
		w.Location = loc
	}
}

func WithAssignee(techID string) WorkItemOption {
	return func(w *domain.WorkItem) {
		w.AssignedTechnicianID = &techID
	}
}

func WithDeadline(d time.Time) WorkItemOption {
	return func(w *domain.WorkItem) {
		w.DueDeadline = &d
	}
}

// WithCreatedAt also moves UpdatedAt so the item looks untouched since creation.
func WithCreatedAt(t time.Time) WorkItemOption {
	return func(w *domain.WorkItem) {
		w.CreatedAt = t
		w.UpdatedAt = t
	}
}

func WithStatusChangedAt(t time.Time) WorkItemOption {
	return func(w *domain.WorkItem) {
		w.StatusChangedAt = &t
	}
}

func WithCompletedAt(t time.Time) WorkItemOption {
	return func(w *domain.WorkItem) {
		w.Status = domain.StatusCompleted
		w.CompletedAt = &t
		w.StatusChangedAt = &t
	}
}

func WithViolationCount(n int) WorkItemOption {
	return func(w *domain.WorkItem) {
		w.ViolationCount = n
	}
}

func WithEscalation(target string, at time.Time) WorkItemOption {
	return func(w *domain.WorkItem) {
		w.EscalatedTo = &target
		w.EscalatedAt = &at
	}
}

func NewTestWorkItem(title string, opts ...WorkItemOption) *domain.WorkItem {
	now := time.Now().UTC()
	w := &domain.WorkItem{
		ID:        uuid.New().String(),
		Title:     title,
		Priority:  domain.PriorityMedium,
		Status:    domain.StatusPending,
		CreatedAt: now,
		UpdatedAt: now,
	}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// Technician options
type TechnicianOption func(*domain.Technician)

func WithSkills(skills ...string) TechnicianOption {
	return func(t *domain.Technician) {
		t.Specialization = skills
	}
}

func WithCapacity(n int) TechnicianOption {
	return func(t *domain.Technician) {
		t.MaxDailyTasks = n
	}
}

func WithPreferredLocation(loc string) TechnicianOption {
	return func(t *domain.Technician) {
		t.LocationPreference = loc
	}
}

func Inactive() TechnicianOption {
	return func(t *domain.Technician) {
		t.Active = false
	}
}

func NewTestTechnician(name string, opts ...TechnicianOption) *domain.Technician {
	now := time.Now().UTC()
	t := &domain.Technician{
		ID:            uuid.New().String(),
		Name:          name,
		MaxDailyTasks: 5,
		Active:        true,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// Rule options
type RuleOption func(*domain.Rule)

func WithConditions(cs ...domain.Condition) RuleOption {
	return func(r *domain.Rule) {
		r.Conditions = cs
	}
}

func WithActions(as ...domain.Action) RuleOption {
	return func(r *domain.Rule) {
		r.Actions = as
	}
}

func WithSeverity(s domain.Severity) RuleOption {
	return func(r *domain.Rule) {
		r.Severity = s
	}
}

func WithRulePriority(p int) RuleOption {
	return func(r *domain.Rule) {
		r.Priority = p
	}
}

func Disabled() RuleOption {
	return func(r *domain.Rule) {
		r.Enabled = false
	}
}

// NewTestRule builds an enabled rule matching overdue items with a single log
// action.
func NewTestRule(id string, opts ...RuleOption) *domain.Rule {
	now := time.Now().UTC()
	r := &domain.Rule{
		ID:         id,
		Name:       id,
		Conditions: []domain.Condition{domain.IsOverdue{}},
		Actions:    []domain.Action{domain.LogMessage{Message: "matched " + id}},
		Severity:   domain.SeverityMedium,
		Enabled:    true,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}
