package repo

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"

	"github.com/pkordes/hila-planner/internal/domain"
)

// DayPlan receives a trip's current days and returns the days the trip
// should have afterwards. Returned days that already exist are updated in
// place (their activities survive); new IDs are inserted; existing days
// missing from the result are deleted together with their activities.
type DayPlan func(existing []domain.Day) []domain.Day

// ItineraryRepo defines the persistence operations for trips, their days,
// and the activities inside each day. Trips, days and activities form one
// consistency unit: every multi-row change is applied atomically.
type ItineraryRepo interface {
	// CreateTrip inserts a trip together with its generated days.
	CreateTrip(ctx context.Context, trip domain.Trip, days []domain.Day) (domain.Trip, error)

	// GetTrip retrieves a trip. Returns domain.ErrNotFound if absent.
	GetTrip(ctx context.Context, id uuid.UUID) (domain.Trip, error)

	// GetTripByToken retrieves the trip currently shared under token.
	// Returns domain.ErrNotFound if no trip holds that token.
	GetTripByToken(ctx context.Context, token string) (domain.Trip, error)

	// ListTripsPaged returns one page of trips, newest first, and the total count.
	ListTripsPaged(ctx context.Context, p domain.PaginationParams) ([]domain.Trip, int64, error)

	// UpdateTrip overwrites the mutable fields of a trip. When plan is non-nil
	// the trip's days are reconciled with its result in the same transaction.
	// The share token is not touched. Returns domain.ErrNotFound if absent.
	UpdateTrip(ctx context.Context, trip domain.Trip, plan DayPlan) (domain.Trip, error)

	// DeleteTrip removes a trip, its days and their activities.
	// Returns domain.ErrNotFound if absent.
	DeleteTrip(ctx context.Context, id uuid.UUID) error

	// SetShareTokenIfEmpty stores token on the trip unless it already has
	// one, and returns the token the trip holds afterwards.
	SetShareTokenIfEmpty(ctx context.Context, tripID uuid.UUID, token string) (string, error)

	// ClearShareToken removes the trip's token. Returns domain.ErrNotFound if
	// the trip is absent.
	ClearShareToken(ctx context.Context, tripID uuid.UUID) error

	// ListDays returns the trip's days ordered by day number.
	// An unknown trip yields an empty slice.
	ListDays(ctx context.Context, tripID uuid.UUID) ([]domain.Day, error)

	// GetDay retrieves a day. Returns domain.ErrNotFound if absent.
	GetDay(ctx context.Context, dayID uuid.UUID) (domain.Day, error)

	// ListActivities returns the day's activities ordered by sort order.
	// An unknown day yields an empty slice.
	ListActivities(ctx context.Context, dayID uuid.UUID) ([]domain.Activity, error)

	// AppendActivity inserts the activity at the end of its day, assigning
	// SortOrder = max+1 (or 1). Returns domain.ErrNotFound if the day is absent.
	AppendActivity(ctx context.Context, activity domain.Activity) (domain.Activity, error)

	// DeleteActivity removes one activity and renumbers the rest of its day.
	// Returns domain.ErrNotFound if absent.
	DeleteActivity(ctx context.Context, activityID uuid.UUID) error

	// ReorderActivities renumbers the day's activities to follow orderedIDs
	// (see domain.Reorder). Returns domain.ErrNotFound if the day is absent.
	ReorderActivities(ctx context.Context, dayID uuid.UUID, orderedIDs []uuid.UUID) ([]domain.Activity, error)

	// MoveActivity swaps an activity with its neighbour in dir. moved is
	// false when it is already at that end. Returns domain.ErrNotFound if the
	// day is absent or the activity does not belong to it.
	MoveActivity(ctx context.Context, dayID, activityID uuid.UUID, dir domain.Direction) ([]domain.Activity, bool, error)

	// ReplaceActivities discards every activity of the day and inserts acts.
	// Returns domain.ErrNotFound if the day is absent.
	ReplaceActivities(ctx context.Context, dayID uuid.UUID, acts []domain.Activity) ([]domain.Activity, error)
}

// pgItineraryRepo is the Postgres implementation of ItineraryRepo.
type pgItineraryRepo struct {
	db db
}

// NewItineraryRepo constructs an ItineraryRepo backed by the provided db connection.
func NewItineraryRepo(db db) ItineraryRepo {
	return &pgItineraryRepo{db: db}
}

const tripColumns = `id, client_name, start_date, end_date, status, cover_image, share_token, created_at, updated_at`

func (r *pgItineraryRepo) CreateTrip(ctx context.Context, trip domain.Trip, days []domain.Day) (domain.Trip, error) {
	const q = `
		INSERT INTO trips (id, client_name, start_date, end_date, status, cover_image, created_at, updated_at)
		VALUES (@id, @client_name, @start_date, @end_date, @status, @cover_image, @created_at, @updated_at)
		RETURNING ` + tripColumns

	var result domain.Trip
	err := pgx.BeginFunc(ctx, r.db, func(tx pgx.Tx) error {
		var err error
		result, err = scanTrip(tx.QueryRow(ctx, q, pgx.NamedArgs{
			"id":          trip.ID,
			"client_name": trip.ClientName,
			"start_date":  trip.StartDate,
			"end_date":    trip.EndDate,
			"status":      string(trip.Status),
			"cover_image": trip.CoverImage,
			"created_at":  trip.CreatedAt,
			"updated_at":  trip.UpdatedAt,
		}))
		if err != nil {
			return err
		}
		for _, d := range days {
			if err := insertDay(ctx, tx, d); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return domain.Trip{}, fmt.Errorf("repo.ItineraryRepo.CreateTrip: %w", err)
	}
	return result, nil
}

func (r *pgItineraryRepo) GetTrip(ctx context.Context, id uuid.UUID) (domain.Trip, error) {
	q := `SELECT ` + tripColumns + ` FROM trips WHERE id = @id`
	result, err := scanTrip(r.db.QueryRow(ctx, q, pgx.NamedArgs{"id": id}))
	if err != nil {
		return domain.Trip{}, fmt.Errorf("repo.ItineraryRepo.GetTrip: %w", err)
	}
	return result, nil
}

func (r *pgItineraryRepo) GetTripByToken(ctx context.Context, token string) (domain.Trip, error) {
	q := `SELECT ` + tripColumns + ` FROM trips WHERE share_token = @token`
	result, err := scanTrip(r.db.QueryRow(ctx, q, pgx.NamedArgs{"token": token}))
	if err != nil {
		return domain.Trip{}, fmt.Errorf("repo.ItineraryRepo.GetTripByToken: %w", err)
	}
	return result, nil
}

func (r *pgItineraryRepo) ListTripsPaged(ctx context.Context, p domain.PaginationParams) ([]domain.Trip, int64, error) {
	var total int64
	if err := r.db.QueryRow(ctx, `SELECT count(*) FROM trips`).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("repo.ItineraryRepo.ListTripsPaged: count: %w", err)
	}

	q := `
		SELECT ` + tripColumns + `
		FROM trips
		ORDER BY created_at DESC, id
		LIMIT @limit OFFSET @offset`
	rows, err := r.db.Query(ctx, q, pgx.NamedArgs{"limit": p.Limit, "offset": p.Offset()})
	if err != nil {
		return nil, 0, fmt.Errorf("repo.ItineraryRepo.ListTripsPaged: %w", err)
	}
	defer rows.Close()

	trips := []domain.Trip{}
	for rows.Next() {
		t, err := scanTrip(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("repo.ItineraryRepo.ListTripsPaged: scan: %w", err)
		}
		trips = append(trips, t)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("repo.ItineraryRepo.ListTripsPaged: rows: %w", err)
	}
	return trips, total, nil
}

func (r *pgItineraryRepo) UpdateTrip(ctx context.Context, trip domain.Trip, plan DayPlan) (domain.Trip, error) {
	const q = `
		UPDATE trips
		SET client_name = @client_name,
		    start_date  = @start_date,
		    end_date    = @end_date,
		    status      = @status,
		    cover_image = @cover_image,
		    updated_at  = @updated_at
		WHERE id = @id
		RETURNING ` + tripColumns

	var result domain.Trip
	err := pgx.BeginFunc(ctx, r.db, func(tx pgx.Tx) error {
		var err error
		result, err = scanTrip(tx.QueryRow(ctx, q, pgx.NamedArgs{
			"id":          trip.ID,
			"client_name": trip.ClientName,
			"start_date":  trip.StartDate,
			"end_date":    trip.EndDate,
			"status":      string(trip.Status),
			"cover_image": trip.CoverImage,
			"updated_at":  trip.UpdatedAt,
		}))
		if err != nil || plan == nil {
			return err
		}
		return applyDayPlan(ctx, tx, trip.ID, plan)
	})
	if err != nil {
		return domain.Trip{}, fmt.Errorf("repo.ItineraryRepo.UpdateTrip: %w", err)
	}
	return result, nil
}

// applyDayPlan reconciles the stored days of a trip with plan's result.
// Day numbers are first moved out of the way so the (trip_id, day_number)
// uniqueness holds at every statement.
func applyDayPlan(ctx context.Context, tx pgx.Tx, tripID uuid.UUID, plan DayPlan) error {
	existing, err := listDays(ctx, tx, tripID)
	if err != nil {
		return err
	}
	want := plan(existing)

	keep := make(map[uuid.UUID]bool, len(want))
	for _, d := range want {
		keep[d.ID] = true
	}
	known := make(map[uuid.UUID]bool, len(existing))
	for _, d := range existing {
		known[d.ID] = true
		if !keep[d.ID] {
			if _, err := tx.Exec(ctx, `DELETE FROM trip_days WHERE id = @id`, pgx.NamedArgs{"id": d.ID}); err != nil {
				return err
			}
		}
	}
	if _, err := tx.Exec(ctx, `UPDATE trip_days SET day_number = -day_number WHERE trip_id = @trip_id`,
		pgx.NamedArgs{"trip_id": tripID}); err != nil {
		return err
	}
	for _, d := range want {
		if !known[d.ID] {
			if err := insertDay(ctx, tx, d); err != nil {
				return err
			}
			continue
		}
		if _, err := tx.Exec(ctx, `UPDATE trip_days SET day_number = @day_number, date = @date WHERE id = @id`,
			pgx.NamedArgs{"id": d.ID, "day_number": d.DayNumber, "date": d.Date}); err != nil {
			return err
		}
	}
	return nil
}

func (r *pgItineraryRepo) DeleteTrip(ctx context.Context, id uuid.UUID) error {
	// trip_days and trip_activities cascade via ON DELETE CASCADE.
	tag, err := r.db.Exec(ctx, `DELETE FROM trips WHERE id = @id`, pgx.NamedArgs{"id": id})
	if err != nil {
		return fmt.Errorf("repo.ItineraryRepo.DeleteTrip: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("repo.ItineraryRepo.DeleteTrip: %w", domain.ErrNotFound)
	}
	return nil
}

func (r *pgItineraryRepo) SetShareTokenIfEmpty(ctx context.Context, tripID uuid.UUID, token string) (string, error) {
	const q = `
		UPDATE trips
		SET share_token = COALESCE(share_token, @token)
		WHERE id = @id
		RETURNING share_token`

	var got string
	if err := r.db.QueryRow(ctx, q, pgx.NamedArgs{"id": tripID, "token": token}).Scan(&got); err != nil {
		return "", fmt.Errorf("repo.ItineraryRepo.SetShareTokenIfEmpty: %w", notFound(err))
	}
	return got, nil
}

func (r *pgItineraryRepo) ClearShareToken(ctx context.Context, tripID uuid.UUID) error {
	tag, err := r.db.Exec(ctx, `UPDATE trips SET share_token = NULL WHERE id = @id`, pgx.NamedArgs{"id": tripID})
	if err != nil {
		return fmt.Errorf("repo.ItineraryRepo.ClearShareToken: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("repo.ItineraryRepo.ClearShareToken: %w", domain.ErrNotFound)
	}
	return nil
}

func (r *pgItineraryRepo) ListDays(ctx context.Context, tripID uuid.UUID) ([]domain.Day, error) {
	days, err := listDays(ctx, r.db, tripID)
	if err != nil {
		return nil, fmt.Errorf("repo.ItineraryRepo.ListDays: %w", err)
	}
	return days, nil
}

func (r *pgItineraryRepo) GetDay(ctx context.Context, dayID uuid.UUID) (domain.Day, error) {
	const q = `SELECT id, trip_id, day_number, date FROM trip_days WHERE id = @id`
	d, err := scanDay(r.db.QueryRow(ctx, q, pgx.NamedArgs{"id": dayID}))
	if err != nil {
		return domain.Day{}, fmt.Errorf("repo.ItineraryRepo.GetDay: %w", err)
	}
	return d, nil
}

func (r *pgItineraryRepo) ListActivities(ctx context.Context, dayID uuid.UUID) ([]domain.Activity, error) {
	acts, err := listActivities(ctx, r.db, dayID)
	if err != nil {
		return nil, fmt.Errorf("repo.ItineraryRepo.ListActivities: %w", err)
	}
	return acts, nil
}

func (r *pgItineraryRepo) AppendActivity(ctx context.Context, activity domain.Activity) (domain.Activity, error) {
	const q = `
		INSERT INTO trip_activities (id, day_id, asset_id, start_time, custom_note, sort_order, created_at)
		VALUES (@id, @day_id, @asset_id, @start_time, @custom_note,
		        (SELECT COALESCE(MAX(sort_order), 0) + 1 FROM trip_activities WHERE day_id = @day_id),
		        @created_at)
		RETURNING id, day_id, asset_id, start_time, custom_note, sort_order, created_at`

	var result domain.Activity
	err := pgx.BeginFunc(ctx, r.db, func(tx pgx.Tx) error {
		if err := lockDay(ctx, tx, activity.DayID); err != nil {
			return err
		}
		var err error
		result, err = scanActivity(tx.QueryRow(ctx, q, pgx.NamedArgs{
			"id":          activity.ID,
			"day_id":      activity.DayID,
			"asset_id":    activity.AssetID,
			"start_time":  activity.StartTime,
			"custom_note": activity.CustomNote,
			"created_at":  activity.CreatedAt,
		}))
		return err
	})
	if err != nil {
		return domain.Activity{}, fmt.Errorf("repo.ItineraryRepo.AppendActivity: %w", err)
	}
	return result, nil
}

func (r *pgItineraryRepo) DeleteActivity(ctx context.Context, activityID uuid.UUID) error {
	err := pgx.BeginFunc(ctx, r.db, func(tx pgx.Tx) error {
		var dayID pgtype.UUID
		err := tx.QueryRow(ctx, `DELETE FROM trip_activities WHERE id = @id RETURNING day_id`,
			pgx.NamedArgs{"id": activityID}).Scan(&dayID)
		if err != nil {
			return notFound(err)
		}
		_, err = renumber(ctx, tx, toUUID(dayID), nil)
		return err
	})
	if err != nil {
		return fmt.Errorf("repo.ItineraryRepo.DeleteActivity: %w", err)
	}
	return nil
}

func (r *pgItineraryRepo) ReorderActivities(ctx context.Context, dayID uuid.UUID, orderedIDs []uuid.UUID) ([]domain.Activity, error) {
	var result []domain.Activity
	err := pgx.BeginFunc(ctx, r.db, func(tx pgx.Tx) error {
		if err := lockDay(ctx, tx, dayID); err != nil {
			return err
		}
		var err error
		result, err = renumber(ctx, tx, dayID, orderedIDs)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("repo.ItineraryRepo.ReorderActivities: %w", err)
	}
	return result, nil
}

func (r *pgItineraryRepo) MoveActivity(ctx context.Context, dayID, activityID uuid.UUID, dir domain.Direction) ([]domain.Activity, bool, error) {
	var (
		result []domain.Activity
		moved  bool
	)
	err := pgx.BeginFunc(ctx, r.db, func(tx pgx.Tx) error {
		if err := lockDay(ctx, tx, dayID); err != nil {
			return err
		}
		current, err := listActivities(ctx, tx, dayID)
		if err != nil {
			return err
		}
		if !containsActivity(current, activityID) {
			return domain.ErrNotFound
		}
		result, moved = domain.SwapWithNeighbour(current, activityID, dir)
		if !moved {
			return nil
		}
		return writeSortOrders(ctx, tx, current, result)
	})
	if err != nil {
		return nil, false, fmt.Errorf("repo.ItineraryRepo.MoveActivity: %w", err)
	}
	return result, moved, nil
}

func (r *pgItineraryRepo) ReplaceActivities(ctx context.Context, dayID uuid.UUID, acts []domain.Activity) ([]domain.Activity, error) {
	const ins = `
		INSERT INTO trip_activities (id, day_id, asset_id, start_time, custom_note, sort_order, created_at)
		VALUES (@id, @day_id, @asset_id, @start_time, @custom_note, @sort_order, @created_at)`

	err := pgx.BeginFunc(ctx, r.db, func(tx pgx.Tx) error {
		if err := lockDay(ctx, tx, dayID); err != nil {
			return err
		}
		if _, err := tx.Exec(ctx, `DELETE FROM trip_activities WHERE day_id = @day_id`,
			pgx.NamedArgs{"day_id": dayID}); err != nil {
			return err
		}
		for _, a := range acts {
			if _, err := tx.Exec(ctx, ins, pgx.NamedArgs{
				"id":          a.ID,
				"day_id":      dayID,
				"asset_id":    a.AssetID,
				"start_time":  a.StartTime,
				"custom_note": a.CustomNote,
				"sort_order":  a.SortOrder,
				"created_at":  a.CreatedAt,
			}); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("repo.ItineraryRepo.ReplaceActivities: %w", err)
	}
	return r.ListActivities(ctx, dayID)
}

// --- helpers ----------------------------------------------------------------

// lockDay takes a row lock on the day so concurrent appends and reorders of
// the same day serialize. Returns domain.ErrNotFound if the day is absent.
func lockDay(ctx context.Context, tx pgx.Tx, dayID uuid.UUID) error {
	var id pgtype.UUID
	err := tx.QueryRow(ctx, `SELECT id FROM trip_days WHERE id = @id FOR UPDATE`, pgx.NamedArgs{"id": dayID}).Scan(&id)
	return notFound(err)
}

// renumber applies domain.Reorder to the day's activities and persists
// the sort orders that changed. The (day_id, sort_order) constraint is
// deferred, so intermediate duplicates are fine inside the transaction.
func renumber(ctx context.Context, tx pgx.Tx, dayID uuid.UUID, orderedIDs []uuid.UUID) ([]domain.Activity, error) {
	current, err := listActivities(ctx, tx, dayID)
	if err != nil {
		return nil, err
	}
	next := domain.Reorder(current, orderedIDs)
	if err := writeSortOrders(ctx, tx, current, next); err != nil {
		return nil, err
	}
	return next, nil
}

func writeSortOrders(ctx context.Context, tx pgx.Tx, before, after []domain.Activity) error {
	old := make(map[uuid.UUID]int, len(before))
	for _, a := range before {
		old[a.ID] = a.SortOrder
	}
	for _, a := range after {
		if old[a.ID] == a.SortOrder {
			continue
		}
		if _, err := tx.Exec(ctx, `UPDATE trip_activities SET sort_order = @sort_order WHERE id = @id`,
			pgx.NamedArgs{"id": a.ID, "sort_order": a.SortOrder}); err != nil {
			return err
		}
	}
	return nil
}

func containsActivity(acts []domain.Activity, id uuid.UUID) bool {
	for _, a := range acts {
		if a.ID == id {
			return true
		}
	}
	return false
}

func insertDay(ctx context.Context, q db, d domain.Day) error {
	const ins = `
		INSERT INTO trip_days (id, trip_id, day_number, date)
		VALUES (@id, @trip_id, @day_number, @date)`
	_, err := q.Exec(ctx, ins, pgx.NamedArgs{
		"id":         d.ID,
		"trip_id":    d.TripID,
		"day_number": d.DayNumber,
		"date":       d.Date,
	})
	return err
}

func listDays(ctx context.Context, q db, tripID uuid.UUID) ([]domain.Day, error) {
	const sel = `
		SELECT id, trip_id, day_number, date
		FROM trip_days
		WHERE trip_id = @trip_id
		ORDER BY day_number`

	rows, err := q.Query(ctx, sel, pgx.NamedArgs{"trip_id": tripID})
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	days := []domain.Day{}
	for rows.Next() {
		d, err := scanDay(rows)
		if err != nil {
			return nil, err
		}
		days = append(days, d)
	}
	return days, rows.Err()
}

func listActivities(ctx context.Context, q db, dayID uuid.UUID) ([]domain.Activity, error) {
	const sel = `
		SELECT id, day_id, asset_id, start_time, custom_note, sort_order, created_at
		FROM trip_activities
		WHERE day_id = @day_id
		ORDER BY sort_order, created_at`

	rows, err := q.Query(ctx, sel, pgx.NamedArgs{"day_id": dayID})
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	acts := []domain.Activity{}
	for rows.Next() {
		a, err := scanActivity(rows)
		if err != nil {
			return nil, err
		}
		acts = append(acts, a)
	}
	return acts, rows.Err()
}

// scanTrip maps a single database row into a domain.Trip.
func scanTrip(s scanner) (domain.Trip, error) {
	var (
		t      domain.Trip
		id     pgtype.UUID
		start  pgtype.Date
		end    pgtype.Date
		status string
		token  pgtype.Text
	)
	err := s.Scan(&id, &t.ClientName, &start, &end, &status, &t.CoverImage, &token, &t.CreatedAt, &t.UpdatedAt)
	if err != nil {
		return domain.Trip{}, notFound(err)
	}
	t.ID = toUUID(id)
	t.StartDate = start.Time
	t.EndDate = end.Time
	t.Status = domain.TripStatus(status)
	if token.Valid {
		t.ShareToken = token.String
	}
	return t, nil
}

func scanDay(s scanner) (domain.Day, error) {
	var (
		d      domain.Day
		id     pgtype.UUID
		tripID pgtype.UUID
		date   pgtype.Date
	)
	if err := s.Scan(&id, &tripID, &d.DayNumber, &date); err != nil {
		return domain.Day{}, notFound(err)
	}
	d.ID = toUUID(id)
	d.TripID = toUUID(tripID)
	d.Date = date.Time
	return d, nil
}

func scanActivity(s scanner) (domain.Activity, error) {
	var (
		a       domain.Activity
		id      pgtype.UUID
		dayID   pgtype.UUID
		assetID pgtype.UUID
	)
	if err := s.Scan(&id, &dayID, &assetID, &a.StartTime, &a.CustomNote, &a.SortOrder, &a.CreatedAt); err != nil {
		return domain.Activity{}, notFound(err)
	}
	a.ID = toUUID(id)
	a.DayID = toUUID(dayID)
	a.AssetID = toUUID(assetID)
	return a, nil
}
