package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/pkordes/hila-planner/internal/domain"
	"github.com/pkordes/hila-planner/internal/repo"
)

// TemplateService saves days as reusable templates and loads them onto
// other days.
type TemplateService struct {
	templates repo.TemplateRepo
	trips     repo.ItineraryRepo
	ids       domain.IDGenerator
	now       domain.Clock
}

// NewTemplateService constructs a TemplateService.
func NewTemplateService(templates repo.TemplateRepo, trips repo.ItineraryRepo, ids domain.IDGenerator, now domain.Clock) *TemplateService {
	return &TemplateService{templates: templates, trips: trips, ids: ids, now: now}
}

// Save snapshots the day's activities into a new template.
// Returns domain.ErrNotFound if the day does not exist, domain.ErrEmptyDay
// if it has no activities, and domain.ErrValidation if name is blank.
func (s *TemplateService) Save(ctx context.Context, dayID uuid.UUID, name, description string) (domain.DayTemplate, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return domain.DayTemplate{}, fmt.Errorf("%w: name is required", domain.ErrValidation)
	}
	if _, err := s.trips.GetDay(ctx, dayID); err != nil {
		return domain.DayTemplate{}, fmt.Errorf("service.TemplateService.Save: %w", err)
	}
	acts, err := s.trips.ListActivities(ctx, dayID)
	if err != nil {
		return domain.DayTemplate{}, fmt.Errorf("service.TemplateService.Save: %w", err)
	}
	if len(acts) == 0 {
		return domain.DayTemplate{}, domain.ErrEmptyDay
	}

	tmpl := domain.DayTemplate{
		ID:          s.ids.NewID(),
		Name:        name,
		Description: strings.TrimSpace(description),
		Activities:  domain.SnapshotActivities(acts),
		CreatedAt:   s.now(),
	}
	result, err := s.templates.Create(ctx, tmpl)
	if err != nil {
		return domain.DayTemplate{}, fmt.Errorf("service.TemplateService.Save: %w", err)
	}
	return result, nil
}

// List returns every template, newest first.
func (s *TemplateService) List(ctx context.Context) ([]domain.DayTemplate, error) {
	templates, err := s.templates.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("service.TemplateService.List: %w", err)
	}
	if templates == nil {
		return []domain.DayTemplate{}, nil
	}
	return templates, nil
}

// Get returns a single template.
// Returns domain.ErrNotFound if it does not exist.
func (s *TemplateService) Get(ctx context.Context, id uuid.UUID) (domain.DayTemplate, error) {
	result, err := s.templates.GetByID(ctx, id)
	if err != nil {
		return domain.DayTemplate{}, fmt.Errorf("service.TemplateService.Get: %w", err)
	}
	return result, nil
}

// Remove deletes a template. Days it was loaded onto are not affected.
// Returns domain.ErrNotFound if it does not exist.
func (s *TemplateService) Remove(ctx context.Context, id uuid.UUID) error {
	if err := s.templates.Delete(ctx, id); err != nil {
		return fmt.Errorf("service.TemplateService.Remove: %w", err)
	}
	return nil
}

// LoadToDay replaces every activity of the day with fresh copies of the
// template's activities, numbered 1..N in template order.
// Returns domain.ErrNotFound if the template or the day does not exist.
func (s *TemplateService) LoadToDay(ctx context.Context, templateID, dayID uuid.UUID) ([]domain.Activity, error) {
	tmpl, err := s.templates.GetByID(ctx, templateID)
	if err != nil {
		return nil, fmt.Errorf("service.TemplateService.LoadToDay: %w", err)
	}
	acts := tmpl.Instantiate(dayID, s.ids, s.now())
	result, err := s.trips.ReplaceActivities(ctx, dayID, acts)
	if err != nil {
		return nil, fmt.Errorf("service.TemplateService.LoadToDay: %w", err)
	}
	return result, nil
}
