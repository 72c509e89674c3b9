package service

import (
	"context"
	"testing"

	"github.com/alexanderramin/slaguard/internal/domain"
	"github.com/alexanderramin/slaguard/internal/repository"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTechnicianService_CreateAssignsIDAndTimestamps(t *testing.T) {
	h := newServiceHarness(t)
	ctx := context.Background()

	tech := &domain.Technician{Name: "Ana", Specialization: []string{"cardio"}, MaxDailyTasks: 6, Active: true}
	require.NoError(t, h.Technicians.Create(ctx, tech))
	assert.NotEmpty(t, tech.ID)
	assert.Equal(t, testNow, tech.CreatedAt)

	got, err := h.Technicians.GetByID(ctx, tech.ID)
	require.NoError(t, err)
	assert.Equal(t, "Ana", got.Name)
	assert.True(t, got.HasSkill("Cardio"))

	ev := h.observer.last()
	assert.Equal(t, "technician.create", ev.Name)
	assert.True(t, ev.Success)
}

func TestTechnicianService_Validation(t *testing.T) {
	h := newServiceHarness(t)
	ctx := context.Background()

	err := h.Technicians.Create(ctx, &domain.Technician{Name: "  "})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "name must not be blank")
	assert.False(t, h.observer.last().Success)

	err = h.Technicians.Create(ctx, &domain.Technician{Name: "Bo", MaxDailyTasks: -1})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "must not be negative")

	tech := h.seedTech(t, "Cy")
	tech.Name = ""
	assert.Error(t, h.Technicians.Update(ctx, tech))
}

func TestTechnicianService_SetActive(t *testing.T) {
	h := newServiceHarness(t)
	ctx := context.Background()
	ana := h.seedTech(t, "Ana")
	h.seedTech(t, "Bo")

	got, err := h.Technicians.SetActive(ctx, ana.ID, false)
	require.NoError(t, err)
	assert.False(t, got.Active)
	assert.Equal(t, testNow, got.UpdatedAt)

	active, err := h.Technicians.List(ctx, true)
	require.NoError(t, err)
	require.Len(t, active, 1)
	assert.Equal(t, "Bo", active[0].Name)

	_, err = h.Technicians.SetActive(ctx, "ghost", true)
	assert.ErrorIs(t, err, repository.ErrNotFound)
}
