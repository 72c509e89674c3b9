package cli

import (
	"context"
	"fmt"
	"strings"

	"github.com/alexanderramin/slaguard/internal/repository"
)

// resolveWorkItemID accepts a full work item ID or a unique prefix of one.
func resolveWorkItemID(ctx context.Context, app *App, input string) (string, error) {
	if input == "" {
		return "", fmt.Errorf("work item ID is required")
	}
	items, err := app.WorkItems.List(ctx, repository.WorkItemFilter{IncludeTerminal: true})
	if err != nil {
		return "", err
	}
	ids := make([]string, len(items))
	for i, w := range items {
		ids[i] = w.ID
	}
	return matchPrefix("work item", input, ids)
}

// resolveTechnicianID accepts a technician ID, a unique ID prefix, or an
// exact name (case-insensitive).
func resolveTechnicianID(ctx context.Context, app *App, input string) (string, error) {
	if input == "" {
		return "", fmt.Errorf("technician ID is required")
	}
	techs, err := app.Technicians.List(ctx, false)
	if err != nil {
		return "", err
	}
	ids := make([]string, len(techs))
	for i, t := range techs {
		if strings.EqualFold(t.Name, input) {
			return t.ID, nil
		}
		ids[i] = t.ID
	}
	return matchPrefix("technician", input, ids)
}

func matchPrefix(kind, input string, ids []string) (string, error) {
	var matches []string
	for _, id := range ids {
		if id == input {
			return id, nil
		}
		if strings.HasPrefix(id, input) {
			matches = append(matches, id)
		}
	}
	switch len(matches) {
	case 0:
		return "", fmt.Errorf("%s not found: %q", kind, input)
	case 1:
		return matches[0], nil
	default:
		return "", fmt.Errorf("%s ID prefix %q is ambiguous (%d matches)", kind, input, len(matches))
	}
}

// technicianNames maps technician IDs to names for display. Lookup failures
// fall back to an empty map so listings still render with truncated IDs.
func technicianNames(ctx context.Context, app *App) map[string]string {
	names := make(map[string]string)
	techs, err := app.Technicians.List(ctx, false)
	if err != nil {
		return names
	}
	for _, t := range techs {
		names[t.ID] = t.Name
	}
	return names
}
