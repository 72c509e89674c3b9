package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/alexanderramin/slaguard/internal/domain"
	"github.com/alexanderramin/slaguard/internal/repository"
	"github.com/google/uuid"
)

type technicianService struct {
	techs    repository.TechnicianRepo
	now      Clock
	observer UseCaseObserver
}

func NewTechnicianService(techs repository.TechnicianRepo, observers ...UseCaseObserver) TechnicianService {
	return &technicianService{techs: techs, now: defaultClock, observer: useCaseObserverOrNoop(observers)}
}

func validateTechnician(t *domain.Technician) error {
	if strings.TrimSpace(t.Name) == "" {
		return fmt.Errorf("technician name must not be blank")
	}
	if t.MaxDailyTasks < 0 {
		return fmt.Errorf("max daily tasks must not be negative, got %d", t.MaxDailyTasks)
	}
	return nil
}

func (s *technicianService) Create(ctx context.Context, t *domain.Technician) (err error) {
	defer observe(ctx, s.observer, "technician.create", time.Now(), &err, map[string]any{"name": t.Name})

	if err := validateTechnician(t); err != nil {
		return err
	}
	if t.ID == "" {
		t.ID = uuid.New().String()
	}
	now := s.now()
	t.CreatedAt = now
	t.UpdatedAt = now
	return s.techs.Create(ctx, t)
}

func (s *technicianService) GetByID(ctx context.Context, id string) (*domain.Technician, error) {
	return s.techs.GetByID(ctx, id)
}

func (s *technicianService) List(ctx context.Context, activeOnly bool) ([]*domain.Technician, error) {
	return s.techs.List(ctx, activeOnly)
}

func (s *technicianService) Update(ctx context.Context, t *domain.Technician) (err error) {
	defer observe(ctx, s.observer, "technician.update", time.Now(), &err, map[string]any{"technician_id": t.ID})

	if err := validateTechnician(t); err != nil {
		return err
	}
	t.UpdatedAt = s.now()
	return s.techs.Update(ctx, t)
}

func (s *technicianService) SetActive(ctx context.Context, id string, active bool) (t *domain.Technician, err error) {
	defer observe(ctx, s.observer, "technician.set_active", time.Now(), &err, map[string]any{"technician_id": id, "active": active})

	t, err = s.techs.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	t.Active = active
	t.UpdatedAt = s.now()
	if err := s.techs.Update(ctx, t); err != nil {
		return nil, err
	}
	return t, nil
}
