package repo

import (
	"context"
	"fmt"
	"sync"

	"github.com/google/uuid"

	"github.com/pkordes/hila-planner/internal/domain"
)

// memTemplateRepo keeps day templates in process memory, newest first.
type memTemplateRepo struct {
	mu        sync.RWMutex
	templates []domain.DayTemplate
}

// NewMemoryTemplateRepo returns an empty in-memory TemplateRepo.
func NewMemoryTemplateRepo() TemplateRepo {
	return &memTemplateRepo{}
}

func (r *memTemplateRepo) Create(_ context.Context, tmpl domain.DayTemplate) (domain.DayTemplate, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	stored := copyTemplate(tmpl)
	r.templates = append([]domain.DayTemplate{stored}, r.templates...)
	return copyTemplate(stored), nil
}

func (r *memTemplateRepo) GetByID(_ context.Context, id uuid.UUID) (domain.DayTemplate, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, t := range r.templates {
		if t.ID == id {
			return copyTemplate(t), nil
		}
	}
	return domain.DayTemplate{}, fmt.Errorf("repo.memTemplateRepo.GetByID: %w", domain.ErrNotFound)
}

func (r *memTemplateRepo) List(_ context.Context) ([]domain.DayTemplate, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]domain.DayTemplate, len(r.templates))
	for i, t := range r.templates {
		out[i] = copyTemplate(t)
	}
	return out, nil
}

func (r *memTemplateRepo) Delete(_ context.Context, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for i, t := range r.templates {
		if t.ID == id {
			r.templates = append(r.templates[:i], r.templates[i+1:]...)
			return nil
		}
	}
	return fmt.Errorf("repo.memTemplateRepo.Delete: %w", domain.ErrNotFound)
}

func copyTemplate(t domain.DayTemplate) domain.DayTemplate {
	t.Activities = append([]domain.TemplateActivity{}, t.Activities...)
	return t
}
