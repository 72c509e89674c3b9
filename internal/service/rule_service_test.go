package service

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/alexanderramin/slaguard/internal/domain"
	"github.com/alexanderramin/slaguard/internal/repository"
	"github.com/alexanderramin/slaguard/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRuleService_CreateRejectsInvalidRule(t *testing.T) {
	h := newServiceHarness(t)
	ctx := context.Background()

	bad := testutil.NewTestRule("no_conditions", testutil.WithConditions())
	err := h.Rules.Create(ctx, bad)

	var cfgErr *domain.ConfigurationError
	require.True(t, errors.As(err, &cfgErr))
	assert.Equal(t, "conditions", cfgErr.Field)

	_, err = h.rules.GetByID(ctx, "no_conditions")
	assert.ErrorIs(t, err, repository.ErrNotFound)

	ev := h.observer.last()
	assert.Equal(t, "rule.create", ev.Name)
	assert.False(t, ev.Success)
}

func TestRuleService_CreateDuplicate(t *testing.T) {
	h := newServiceHarness(t)
	ctx := context.Background()

	require.NoError(t, h.Rules.Create(ctx, testutil.NewTestRule("dup")))
	err := h.Rules.Create(ctx, testutil.NewTestRule("dup"))
	assert.ErrorIs(t, err, repository.ErrConflict)
}

func TestRuleService_SetEnabled(t *testing.T) {
	h := newServiceHarness(t)
	ctx := context.Background()
	require.NoError(t, h.Rules.Create(ctx, testutil.NewTestRule("toggle")))

	r, err := h.Rules.SetEnabled(ctx, "toggle", false)
	require.NoError(t, err)
	assert.False(t, r.Enabled)

	enabled, err := h.Rules.List(ctx, true)
	require.NoError(t, err)
	assert.Empty(t, enabled)

	_, err = h.Rules.SetEnabled(ctx, "missing", true)
	assert.ErrorIs(t, err, repository.ErrNotFound)
}

func TestRuleService_SeedDefaultsIsIdempotent(t *testing.T) {
	h := newServiceHarness(t)
	ctx := context.Background()

	n, err := h.Rules.SeedDefaults(ctx)
	require.NoError(t, err)
	assert.Equal(t, 4, n)

	n, err = h.Rules.SeedDefaults(ctx)
	require.NoError(t, err)
	assert.Zero(t, n)

	all, err := h.Rules.List(ctx, false)
	require.NoError(t, err)
	require.Len(t, all, 4)
	assert.Equal(t, "critical_immediate", all[0].ID)
}

func TestRuleService_EnsureCatalog(t *testing.T) {
	t.Run("empty catalog gets defaults", func(t *testing.T) {
		h := newServiceHarness(t)
		n, err := h.Rules.EnsureCatalog(context.Background(), "")
		require.NoError(t, err)
		assert.Equal(t, 4, n)
	})

	t.Run("existing catalog is left alone", func(t *testing.T) {
		h := newServiceHarness(t)
		ctx := context.Background()
		require.NoError(t, h.Rules.Create(ctx, testutil.NewTestRule("custom")))

		n, err := h.Rules.EnsureCatalog(ctx, "")
		require.NoError(t, err)
		assert.Zero(t, n)
		all, err := h.Rules.List(ctx, false)
		require.NoError(t, err)
		assert.Len(t, all, 1)
	})

	t.Run("empty catalog loads rule file", func(t *testing.T) {
		h := newServiceHarness(t)
		path := filepath.Join(t.TempDir(), "rules.yaml")
		require.NoError(t, os.WriteFile(path, []byte(`rules:
  - id: stale
    name: Stale work
    severity: low
    priority: 10
    conditions:
      - type: elapsed_minutes
        minutes: 60
    actions:
      - type: log
        message: stale
`), 0o644))

		n, err := h.Rules.EnsureCatalog(context.Background(), path)
		require.NoError(t, err)
		assert.Equal(t, 1, n)
		r, err := h.Rules.GetByID(context.Background(), "stale")
		require.NoError(t, err)
		assert.Equal(t, domain.SeverityLow, r.Severity)
	})
}

func TestRuleService_ExportImportRoundTrip(t *testing.T) {
	src := newServiceHarness(t)
	ctx := context.Background()
	_, err := src.Rules.SeedDefaults(ctx)
	require.NoError(t, err)
	_, err = src.Rules.SetEnabled(ctx, "medium_priority_24h", false)
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, src.Rules.Export(ctx, &buf))

	dst := newServiceHarness(t)
	require.NoError(t, dst.Rules.Create(ctx, testutil.NewTestRule("overdue_tasks")))

	res, err := dst.Rules.Import(ctx, &buf)
	require.NoError(t, err)
	assert.Equal(t, 3, res.Created)
	assert.Equal(t, 1, res.Updated)

	got, err := dst.Rules.List(ctx, false)
	require.NoError(t, err)
	want, err := src.Rules.List(ctx, false)
	require.NoError(t, err)
	require.Len(t, got, len(want))
	for i := range want {
		assert.Equal(t, domain.SpecFromRule(want[i]), domain.SpecFromRule(got[i]))
	}
}

func TestRuleService_ImportRejectsUnknownTagWithoutWriting(t *testing.T) {
	h := newServiceHarness(t)
	ctx := context.Background()

	_, err := h.Rules.Import(ctx, strings.NewReader(`rules:
  - id: good
    name: Good
    severity: low
    priority: 1
    conditions: [{type: is_overdue}]
    actions: [{type: log, message: ok}]
  - id: bad
    name: Bad
    severity: low
    priority: 1
    conditions: [{type: phase_of_moon}]
    actions: [{type: log, message: ok}]
`))
	var cfgErr *domain.ConfigurationError
	require.True(t, errors.As(err, &cfgErr))
	assert.Equal(t, "bad", cfgErr.RuleID)

	all, err := h.Rules.List(ctx, false)
	require.NoError(t, err)
	assert.Empty(t, all)
}

func TestRuleService_Delete(t *testing.T) {
	h := newServiceHarness(t)
	ctx := context.Background()
	require.NoError(t, h.Rules.Create(ctx, testutil.NewTestRule("gone")))

	require.NoError(t, h.Rules.Delete(ctx, "gone"))
	assert.ErrorIs(t, h.Rules.Delete(ctx, "gone"), repository.ErrNotFound)
}
