package contract

import "github.com/alexanderramin/slaguard/internal/domain"

// ChangeEffects is what the change hook did in response to a work item
// mutation.
type ChangeEffects struct {
	ViolationsDetected int
	ActionsDispatched  int
	ActionsFailed      int
	Resolved           int
	PriorityNotified   bool
}

type ChangeResult struct {
	WorkItem *domain.WorkItem
	Effects  ChangeEffects
}
