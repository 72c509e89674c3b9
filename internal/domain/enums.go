package domain

type Priority string

const (
	PriorityLow      Priority = "low"
	PriorityMedium   Priority = "medium"
	PriorityHigh     Priority = "high"
	PriorityCritical Priority = "critical"
)

// Rank orders priorities from 1 (low) to 4 (critical). Unknown values rank 0.
func (p Priority) Rank() int {
	switch p {
	case PriorityLow:
		return 1
	case PriorityMedium:
		return 2
	case PriorityHigh:
		return 3
	case PriorityCritical:
		return 4
	default:
		return 0
	}
}

func (p Priority) Valid() bool { return p.Rank() > 0 }

type WorkItemStatus string

const (
	StatusPending    WorkItemStatus = "pending"
	StatusScheduled  WorkItemStatus = "scheduled"
	StatusInProgress WorkItemStatus = "in_progress"
	StatusCompleted  WorkItemStatus = "completed"
	StatusCancelled  WorkItemStatus = "cancelled"
)

// ValidStatuses is the canonical set of accepted work item status strings.
var ValidStatuses = map[WorkItemStatus]bool{
	StatusPending:    true,
	StatusScheduled:  true,
	StatusInProgress: true,
	StatusCompleted:  true,
	StatusCancelled:  true,
}

func (s WorkItemStatus) Valid() bool { return ValidStatuses[s] }

// IsTerminal reports whether the status ends the item's lifecycle.
func (s WorkItemStatus) IsTerminal() bool {
	return s == StatusCompleted || s == StatusCancelled
}

type Severity string

const (
	SeverityLow      Severity = "low"
	SeverityMedium   Severity = "medium"
	SeverityHigh     Severity = "high"
	SeverityCritical Severity = "critical"
)

var severityLadder = []Severity{SeverityLow, SeverityMedium, SeverityHigh, SeverityCritical}

func (s Severity) Rank() int {
	for i, v := range severityLadder {
		if v == s {
			return i + 1
		}
	}
	return 0
}

func (s Severity) Valid() bool { return s.Rank() > 0 }

// Bump returns the next severity level up. Critical stays critical.
func (s Severity) Bump() Severity {
	r := s.Rank()
	if r == 0 || r >= len(severityLadder) {
		return s
	}
	return severityLadder[r]
}

type ElapsedAnchor string

const (
	AnchorCreated       ElapsedAnchor = "created"
	AnchorStatusChanged ElapsedAnchor = "status_changed"
)

type EscalationTarget string

const (
	EscalateSupervisor EscalationTarget = "supervisor"
	EscalateManager    EscalationTarget = "manager"
)

type ReassignCriteria string

const (
	CriteriaBestAvailable       ReassignCriteria = "best_available"
	CriteriaAvailableSpecialist ReassignCriteria = "available_specialist"
)

// Recipient role names understood by the notify action. Anything else is
// treated as a literal technician or operator id.
const (
	RecipientAdmin              = "admin"
	RecipientManager            = "manager"
	RecipientSupervisor         = "supervisor"
	RecipientClient             = "client"
	RecipientAssignedTechnician = "assigned_technician"
)

// ExecutedBySystem marks ledger rows written by the sweep rather than an operator.
const ExecutedBySystem = "system"
