package engine

import "github.com/alexanderramin/slaguard/internal/domain"

// Contacts maps escalation roles to the operator ids that receive them.
// Empty entries fall back to the role name.
type Contacts struct {
	Supervisor string
	Manager    string
}

func (c Contacts) EscalationTarget(t domain.EscalationTarget) string {
	switch t {
	case domain.EscalateSupervisor:
		if c.Supervisor != "" {
			return c.Supervisor
		}
	case domain.EscalateManager:
		if c.Manager != "" {
			return c.Manager
		}
	}
	return string(t)
}

// ResolveRecipients expands role placeholders for one item. The
// assigned_technician role resolves to the technician id, or is skipped when
// the item is unassigned. Duplicates are dropped.
func ResolveRecipients(item *domain.WorkItem, recipients []string) (resolved, skipped []string) {
	seen := make(map[string]bool, len(recipients))
	for _, r := range recipients {
		target := r
		if r == domain.RecipientAssignedTechnician {
			if item.AssignedTechnicianID == nil {
				skipped = append(skipped, r)
				continue
			}
			target = *item.AssignedTechnicianID
		}
		if seen[target] {
			continue
		}
		seen[target] = true
		resolved = append(resolved, target)
	}
	return resolved, skipped
}
