package catalog

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/alexanderramin/slaguard/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaults_AreValidAndOrdered(t *testing.T) {
	rules := Defaults()
	require.Len(t, rules, 4)

	ids := make([]string, len(rules))
	for i, r := range rules {
		ids[i] = r.ID
		require.NoError(t, r.Validate())
		assert.True(t, r.Enabled)
		if i > 0 {
			assert.Greater(t, rules[i-1].Priority, r.Priority)
		}
	}
	assert.Equal(t, []string{"critical_immediate", "overdue_tasks", "high_priority_4h", "medium_priority_24h"}, ids)
}

func TestDefaults_CriticalImmediateShape(t *testing.T) {
	r, ok := Default("critical_immediate")
	require.True(t, ok)
	assert.Equal(t, domain.SeverityCritical, r.Severity)
	assert.Equal(t, []domain.Condition{
		domain.PriorityEquals{Priority: domain.PriorityCritical},
		domain.StatusIn{Statuses: []domain.WorkItemStatus{domain.StatusPending, domain.StatusScheduled}},
		domain.ElapsedMinutes{Anchor: domain.AnchorCreated, Threshold: 30},
	}, r.Conditions)
	assert.Equal(t, []domain.Action{
		domain.Escalate{Target: domain.EscalateSupervisor},
		domain.Notify{Recipients: []string{domain.RecipientAdmin, domain.RecipientManager}},
		domain.Reassign{Criteria: domain.CriteriaBestAvailable},
	}, r.Actions)

	_, ok = Default("missing")
	assert.False(t, ok)
}

func TestDefaults_ReturnsFreshCopies(t *testing.T) {
	a := Defaults()
	a[0].Enabled = false
	assert.True(t, Defaults()[0].Enabled)
}

func TestExportParse_RoundTrip(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Export(&buf, Defaults()))
	assert.Contains(t, buf.String(), "critical_immediate")

	parsed, err := Parse(&buf)
	require.NoError(t, err)
	require.Len(t, parsed, 4)
	for i, want := range Defaults() {
		got := parsed[i]
		assert.Equal(t, want.ID, got.ID)
		assert.Equal(t, want.Conditions, got.Conditions)
		assert.Equal(t, want.Actions, got.Actions)
		assert.Equal(t, want.Priority, got.Priority)
		assert.Equal(t, want.Enabled, got.Enabled)
	}
}

func TestParse_RejectsUnknownTags(t *testing.T) {
	src := `
rules:
  - id: weekend
    name: Weekend
    severity: low
    conditions:
      - type: is_weekend
    actions:
      - type: log
        message: hi
`
	_, err := Parse(strings.NewReader(src))
	var cfgErr *domain.ConfigurationError
	require.True(t, errors.As(err, &cfgErr), "got %v", err)
	assert.Equal(t, "weekend", cfgErr.RuleID)
	assert.Equal(t, "conditions[0]", cfgErr.Field)
}

func TestParse_RejectsUnknownAction(t *testing.T) {
	src := `
rules:
  - id: page
    name: Page
    severity: high
    conditions:
      - type: is_overdue
    actions:
      - type: page_oncall
`
	_, err := Parse(strings.NewReader(src))
	var cfgErr *domain.ConfigurationError
	require.True(t, errors.As(err, &cfgErr), "got %v", err)
	assert.Equal(t, "actions[0]", cfgErr.Field)
}

func TestParse_RejectsDuplicateIDs(t *testing.T) {
	src := `
rules:
  - id: dup
    name: A
    severity: low
    conditions: [{type: is_overdue}]
    actions: []
  - id: dup
    name: B
    severity: low
    conditions: [{type: is_overdue}]
    actions: []
`
	_, err := Parse(strings.NewReader(src))
	var cfgErr *domain.ConfigurationError
	require.True(t, errors.As(err, &cfgErr), "got %v", err)
	assert.Equal(t, "rules[1].id", cfgErr.Field)
}

func TestParse_RejectsUnknownFields(t *testing.T) {
	src := `
rules:
  - id: x
    name: X
    severity: low
    colour: red
    conditions: [{type: is_overdue}]
`
	_, err := Parse(strings.NewReader(src))
	require.Error(t, err)
}

func TestParse_DisabledAndAnchor(t *testing.T) {
	src := `
rules:
  - id: stale
    name: Stale in progress
    severity: medium
    enabled: false
    priority: 5
    conditions:
      - type: status_in
        statuses: [in_progress]
      - type: elapsed_minutes
        anchor: status_changed
        minutes: 120
    actions:
      - type: notify
        recipients: [assigned_technician]
`
	rules, err := Parse(strings.NewReader(src))
	require.NoError(t, err)
	require.Len(t, rules, 1)
	assert.False(t, rules[0].Enabled)
	assert.Equal(t, domain.ElapsedMinutes{Anchor: domain.AnchorStatusChanged, Threshold: 120}, rules[0].Conditions[1])
}

func TestParse_EmptyFile(t *testing.T) {
	rules, err := Parse(strings.NewReader(""))
	require.NoError(t, err)
	assert.Empty(t, rules)
}

func TestLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "rules.yaml")
	var buf bytes.Buffer
	require.NoError(t, Export(&buf, Defaults()[:1]))
	require.NoError(t, os.WriteFile(path, buf.Bytes(), 0o644))

	rules, err := LoadFile(path)
	require.NoError(t, err)
	require.Len(t, rules, 1)
	assert.Equal(t, "critical_immediate", rules[0].ID)

	_, err = LoadFile(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}
