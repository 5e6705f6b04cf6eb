package repo

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"

	"github.com/pkordes/hila-planner/internal/domain"
)

// TemplateRepo defines the persistence operations for day templates.
// Templates are immutable once created.
type TemplateRepo interface {
	// Create stores a template and its copied activities.
	Create(ctx context.Context, tmpl domain.DayTemplate) (domain.DayTemplate, error)

	// GetByID retrieves a template. Returns domain.ErrNotFound if absent.
	GetByID(ctx context.Context, id uuid.UUID) (domain.DayTemplate, error)

	// List returns every template, most recently created first.
	List(ctx context.Context) ([]domain.DayTemplate, error)

	// Delete removes a template. Returns domain.ErrNotFound if absent.
	Delete(ctx context.Context, id uuid.UUID) error
}

// pgTemplateRepo is the Postgres implementation of TemplateRepo.
type pgTemplateRepo struct {
	db db
}

// NewTemplateRepo constructs a TemplateRepo backed by the provided db connection.
func NewTemplateRepo(db db) TemplateRepo {
	return &pgTemplateRepo{db: db}
}

func (r *pgTemplateRepo) Create(ctx context.Context, tmpl domain.DayTemplate) (domain.DayTemplate, error) {
	const insTemplate = `
		INSERT INTO day_templates (id, name, description, created_at)
		VALUES (@id, @name, @description, @created_at)`
	const insActivity = `
		INSERT INTO day_template_activities (template_id, position, asset_id, start_time, custom_note, sort_order)
		VALUES (@template_id, @position, @asset_id, @start_time, @custom_note, @sort_order)`

	err := pgx.BeginFunc(ctx, r.db, func(tx pgx.Tx) error {
		if _, err := tx.Exec(ctx, insTemplate, pgx.NamedArgs{
			"id":          tmpl.ID,
			"name":        tmpl.Name,
			"description": tmpl.Description,
			"created_at":  tmpl.CreatedAt,
		}); err != nil {
			return err
		}
		for i, a := range tmpl.Activities {
			if _, err := tx.Exec(ctx, insActivity, pgx.NamedArgs{
				"template_id": tmpl.ID,
				"position":    i,
				"asset_id":    a.AssetID,
				"start_time":  a.StartTime,
				"custom_note": a.CustomNote,
				"sort_order":  a.SortOrder,
			}); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return domain.DayTemplate{}, fmt.Errorf("repo.TemplateRepo.Create: %w", err)
	}
	return r.GetByID(ctx, tmpl.ID)
}

func (r *pgTemplateRepo) GetByID(ctx context.Context, id uuid.UUID) (domain.DayTemplate, error) {
	const q = `SELECT id, name, description, created_at FROM day_templates WHERE id = @id`

	t, err := scanTemplate(r.db.QueryRow(ctx, q, pgx.NamedArgs{"id": id}))
	if err != nil {
		return domain.DayTemplate{}, fmt.Errorf("repo.TemplateRepo.GetByID: %w", err)
	}
	byTemplate, err := r.loadActivities(ctx, []uuid.UUID{t.ID})
	if err != nil {
		return domain.DayTemplate{}, fmt.Errorf("repo.TemplateRepo.GetByID: %w", err)
	}
	t.Activities = byTemplate[t.ID]
	return t, nil
}

func (r *pgTemplateRepo) List(ctx context.Context) ([]domain.DayTemplate, error) {
	const q = `SELECT id, name, description, created_at FROM day_templates ORDER BY created_at DESC, id`

	rows, err := r.db.Query(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("repo.TemplateRepo.List: %w", err)
	}
	defer rows.Close()

	templates := []domain.DayTemplate{}
	var ids []uuid.UUID
	for rows.Next() {
		t, err := scanTemplate(rows)
		if err != nil {
			return nil, fmt.Errorf("repo.TemplateRepo.List: scan: %w", err)
		}
		templates = append(templates, t)
		ids = append(ids, t.ID)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("repo.TemplateRepo.List: rows: %w", err)
	}

	byTemplate, err := r.loadActivities(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("repo.TemplateRepo.List: %w", err)
	}
	for i := range templates {
		templates[i].Activities = byTemplate[templates[i].ID]
	}
	return templates, nil
}

func (r *pgTemplateRepo) Delete(ctx context.Context, id uuid.UUID) error {
	// day_template_activities cascade.
	tag, err := r.db.Exec(ctx, `DELETE FROM day_templates WHERE id = @id`, pgx.NamedArgs{"id": id})
	if err != nil {
		return fmt.Errorf("repo.TemplateRepo.Delete: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("repo.TemplateRepo.Delete: %w", domain.ErrNotFound)
	}
	return nil
}

// loadActivities fetches the copied activities of the given templates in
// their captured order.
func (r *pgTemplateRepo) loadActivities(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID][]domain.TemplateActivity, error) {
	out := make(map[uuid.UUID][]domain.TemplateActivity, len(ids))
	if len(ids) == 0 {
		return out, nil
	}
	const q = `
		SELECT template_id, asset_id, start_time, custom_note, sort_order
		FROM day_template_activities
		WHERE template_id = ANY(@ids)
		ORDER BY template_id, position`

	rows, err := r.db.Query(ctx, q, pgx.NamedArgs{"ids": ids})
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var (
			templateID pgtype.UUID
			assetID    pgtype.UUID
			a          domain.TemplateActivity
		)
		if err := rows.Scan(&templateID, &assetID, &a.StartTime, &a.CustomNote, &a.SortOrder); err != nil {
			return nil, err
		}
		a.AssetID = toUUID(assetID)
		tid := toUUID(templateID)
		out[tid] = append(out[tid], a)
	}
	return out, rows.Err()
}

func scanTemplate(s scanner) (domain.DayTemplate, error) {
	var (
		t  domain.DayTemplate
		id pgtype.UUID
	)
	if err := s.Scan(&id, &t.Name, &t.Description, &t.CreatedAt); err != nil {
		return domain.DayTemplate{}, notFound(err)
	}
	t.ID = toUUID(id)
	return t, nil
}
