package repo

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"

	"github.com/pkordes/hila-planner/internal/domain"
)

// AssetRepo defines the persistence operations for library assets.
// The service layer depends on this interface, not on a concrete store.
type AssetRepo interface {
	// Create inserts a new asset. ID and timestamps are supplied by the caller.
	Create(ctx context.Context, asset domain.Asset) (domain.Asset, error)

	// GetByID retrieves a single asset.
	// Returns domain.ErrNotFound if no asset with that ID exists.
	GetByID(ctx context.Context, id uuid.UUID) (domain.Asset, error)

	// List returns the assets matching filter, most recently created first.
	List(ctx context.Context, filter domain.AssetFilter) ([]domain.Asset, error)

	// Update overwrites every mutable field of an existing asset.
	// Returns domain.ErrNotFound if no asset with that ID exists.
	Update(ctx context.Context, asset domain.Asset) (domain.Asset, error)

	// Delete removes an asset. Activities referencing it are left untouched.
	// Returns domain.ErrNotFound if it does not exist.
	Delete(ctx context.Context, id uuid.UUID) error
}

// pgAssetRepo is the Postgres implementation of AssetRepo.
type pgAssetRepo struct {
	db db
}

// NewAssetRepo constructs an AssetRepo backed by the provided db connection.
// In production pass *pgxpool.Pool; in tests pass a pgx.Tx for rollback isolation.
func NewAssetRepo(db db) AssetRepo {
	return &pgAssetRepo{db: db}
}

const assetColumns = `id, type, country, city, title, description_he, images, expert_notes, tags,
	cost_price, selling_price, phone, address, lat, lng, created_at, updated_at`

func assetArgs(a domain.Asset) pgx.NamedArgs {
	return pgx.NamedArgs{
		"id":             a.ID,
		"type":           string(a.Type),
		"country":        a.Country,
		"city":           a.City,
		"title":          a.Title,
		"description_he": a.DescriptionHe,
		"images":         nonNil(a.Images),
		"expert_notes":   a.ExpertNotes,
		"tags":           nonNil(a.Tags),
		"cost_price":     a.CostPrice,
		"selling_price":  a.SellingPrice,
		"phone":          a.Phone,
		"address":        a.Address,
		"lat":            a.Lat, // nil becomes NULL
		"lng":            a.Lng,
		"created_at":     a.CreatedAt,
		"updated_at":     a.UpdatedAt,
	}
}

func (r *pgAssetRepo) Create(ctx context.Context, asset domain.Asset) (domain.Asset, error) {
	const q = `
		INSERT INTO assets (id, type, country, city, title, description_he, images, expert_notes, tags,
		                    cost_price, selling_price, phone, address, lat, lng, created_at, updated_at)
		VALUES (@id, @type, @country, @city, @title, @description_he, @images, @expert_notes, @tags,
		        @cost_price, @selling_price, @phone, @address, @lat, @lng, @created_at, @updated_at)
		RETURNING ` + assetColumns

	result, err := scanAsset(r.db.QueryRow(ctx, q, assetArgs(asset)))
	if err != nil {
		return domain.Asset{}, fmt.Errorf("repo.AssetRepo.Create: %w", err)
	}
	return result, nil
}

func (r *pgAssetRepo) GetByID(ctx context.Context, id uuid.UUID) (domain.Asset, error) {
	q := `SELECT ` + assetColumns + ` FROM assets WHERE id = @id`

	result, err := scanAsset(r.db.QueryRow(ctx, q, pgx.NamedArgs{"id": id}))
	if err != nil {
		return domain.Asset{}, fmt.Errorf("repo.AssetRepo.GetByID: %w", err)
	}
	return result, nil
}

// List filters in SQL. The search is a case-insensitive substring match over
// title, city, description and each tag, with LIKE wildcards in the input
// matched literally.
func (r *pgAssetRepo) List(ctx context.Context, filter domain.AssetFilter) ([]domain.Asset, error) {
	q := `
		SELECT ` + assetColumns + `
		FROM assets
		WHERE (@type = '' OR type = @type)
		  AND (@country = '' OR country = @country)
		  AND (@search = ''
		       OR title ILIKE @pattern
		       OR city ILIKE @pattern
		       OR description_he ILIKE @pattern
		       OR EXISTS (SELECT 1 FROM unnest(tags) AS tag WHERE tag ILIKE @pattern))
		ORDER BY created_at DESC, id`

	rows, err := r.db.Query(ctx, q, pgx.NamedArgs{
		"type":    string(filter.Type),
		"country": filter.Country,
		"search":  filter.Search,
		"pattern": containsPattern(filter.Search),
	})
	if err != nil {
		return nil, fmt.Errorf("repo.AssetRepo.List: %w", err)
	}
	defer rows.Close()

	assets := []domain.Asset{}
	for rows.Next() {
		a, err := scanAsset(rows)
		if err != nil {
			return nil, fmt.Errorf("repo.AssetRepo.List: scan: %w", err)
		}
		assets = append(assets, a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("repo.AssetRepo.List: rows: %w", err)
	}
	return assets, nil
}

func (r *pgAssetRepo) Update(ctx context.Context, asset domain.Asset) (domain.Asset, error) {
	const q = `
		UPDATE assets
		SET type           = @type,
		    country        = @country,
		    city           = @city,
		    title          = @title,
		    description_he = @description_he,
		    images         = @images,
		    expert_notes   = @expert_notes,
		    tags           = @tags,
		    cost_price     = @cost_price,
		    selling_price  = @selling_price,
		    phone          = @phone,
		    address        = @address,
		    lat            = @lat,
		    lng            = @lng,
		    updated_at     = @updated_at
		WHERE id = @id
		RETURNING ` + assetColumns

	result, err := scanAsset(r.db.QueryRow(ctx, q, assetArgs(asset)))
	if err != nil {
		return domain.Asset{}, fmt.Errorf("repo.AssetRepo.Update: %w", err)
	}
	return result, nil
}

func (r *pgAssetRepo) Delete(ctx context.Context, id uuid.UUID) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM assets WHERE id = @id`, pgx.NamedArgs{"id": id})
	if err != nil {
		return fmt.Errorf("repo.AssetRepo.Delete: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("repo.AssetRepo.Delete: %w", domain.ErrNotFound)
	}
	return nil
}

// scanAsset maps a single database row into a domain.Asset.
func scanAsset(s scanner) (domain.Asset, error) {
	var (
		a     domain.Asset
		id    pgtype.UUID
		atype string
	)
	err := s.Scan(&id, &atype, &a.Country, &a.City, &a.Title, &a.DescriptionHe, &a.Images,
		&a.ExpertNotes, &a.Tags, &a.CostPrice, &a.SellingPrice, &a.Phone, &a.Address,
		&a.Lat, &a.Lng, &a.CreatedAt, &a.UpdatedAt)
	if err != nil {
		return domain.Asset{}, notFound(err)
	}
	a.ID = toUUID(id)
	a.Type = domain.AssetType(atype)
	return a, nil
}

// nonNil keeps NOT NULL text[] columns from receiving NULL.
func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}

// likeEscaper escapes the LIKE metacharacters using the default escape
// character, backslash.
var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// containsPattern builds an ILIKE pattern matching s anywhere in the value.
func containsPattern(s string) string {
	return "%" + likeEscaper.Replace(s) + "%"
}
