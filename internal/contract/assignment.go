package contract

import "github.com/alexanderramin/slaguard/internal/domain"

const DefaultAssignedBy = "manual"

type AssignmentRequest struct {
	WorkItemID string
	Criteria   domain.ReassignCriteria
	AssignedBy string
}

func NewAssignmentRequest(workItemID string) AssignmentRequest {
	return AssignmentRequest{
		WorkItemID: workItemID,
		Criteria:   domain.CriteriaBestAvailable,
		AssignedBy: DefaultAssignedBy,
	}
}

// AssignmentResult carries the decision, with its ranked alternatives, when
// Outcome is action_taken.
type AssignmentResult struct {
	WorkItemID string
	Outcome    Outcome
	Reason     string
	Decision   *domain.AssignmentDecision
}

// BulkAssignmentRequest assigns the listed items. An empty list means every
// unassigned open item, highest priority first.
type BulkAssignmentRequest struct {
	WorkItemIDs []string
	Criteria    domain.ReassignCriteria
	AssignedBy  string
}

func NewBulkAssignmentRequest(ids ...string) BulkAssignmentRequest {
	return BulkAssignmentRequest{
		WorkItemIDs: ids,
		Criteria:    domain.CriteriaBestAvailable,
		AssignedBy:  DefaultAssignedBy,
	}
}

type BulkAssignmentResult struct {
	Results  []AssignmentResult
	Assigned int
	Skipped  int
	Failed   int
}

// Add appends r and updates the tallies.
func (b *BulkAssignmentResult) Add(r AssignmentResult) {
	b.Results = append(b.Results, r)
	switch r.Outcome {
	case OutcomeActionTaken:
		b.Assigned++
	case OutcomeNoAction:
		b.Skipped++
	default:
		b.Failed++
	}
}
