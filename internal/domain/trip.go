// Package domain contains the core data types for the itinerary planner.
// It depends only on google/uuid and is imported by every other internal
// package (geo, repo, service, handler).
package domain

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// MaxTripDays is the longest trip, in calendar days inclusive, that may be created.
const MaxTripDays = 30

// TripStatus is the lifecycle state of a trip.
type TripStatus string

const (
	TripDraft     TripStatus = "draft"
	TripProposal  TripStatus = "proposal"
	TripConfirmed TripStatus = "confirmed"
)

var tripStatusLabels = map[TripStatus]string{
	TripDraft:     "טיוטה",
	TripProposal:  "הצעה",
	TripConfirmed: "מאושר",
}

// Valid reports whether s is a known status.
func (s TripStatus) Valid() bool {
	_, ok := tripStatusLabels[s]
	return ok
}

// Label returns the Hebrew display label of the status.
func (s TripStatus) Label() string {
	if l, ok := tripStatusLabels[s]; ok {
		return l
	}
	return string(s)
}

// Next returns the status reached by one "advance":
// draft → proposal → confirmed → draft.
func (s TripStatus) Next() TripStatus {
	switch s {
	case TripDraft:
		return TripProposal
	case TripProposal:
		return TripConfirmed
	default:
		return TripDraft
	}
}

// Trip is an engagement with one client. Dates are calendar dates stored as
// UTC midnight and the range is inclusive. ShareToken is empty when the trip
// has not been shared.
type Trip struct {
	ID         uuid.UUID
	ClientName string
	StartDate  time.Time
	EndDate    time.Time
	Status     TripStatus
	CoverImage string
	ShareToken string
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// TripPatch carries a partial trip update. Nil fields are left unchanged.
type TripPatch struct {
	ClientName *string
	StartDate  *time.Time
	EndDate    *time.Time
	Status     *TripStatus
	CoverImage *string
}

// Apply merges the non-nil fields of p into a copy of t.
func (p TripPatch) Apply(t Trip) Trip {
	if p.ClientName != nil {
		t.ClientName = *p.ClientName
	}
	if p.StartDate != nil {
		t.StartDate = DateOf(*p.StartDate)
	}
	if p.EndDate != nil {
		t.EndDate = DateOf(*p.EndDate)
	}
	if p.Status != nil {
		t.Status = *p.Status
	}
	if p.CoverImage != nil {
		t.CoverImage = *p.CoverImage
	}
	return t
}

// Day is one calendar day of a trip. DayNumber is 1-based and equals the
// calendar offset from the trip start plus one.
type Day struct {
	ID        uuid.UUID
	TripID    uuid.UUID
	DayNumber int
	Date      time.Time
}

// DateOf truncates t to its calendar date at UTC midnight.
func DateOf(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// ValidateDateRange checks that end is not before start and that the
// inclusive range spans at most MaxTripDays calendar days.
func ValidateDateRange(start, end time.Time) error {
	start, end = DateOf(start), DateOf(end)
	if end.Before(start) {
		return fmt.Errorf("%w: end_date must not be before start_date", ErrInvalidDateRange)
	}
	if n := SpanDays(start, end); n > MaxTripDays {
		return fmt.Errorf("%w: trip spans %d days, maximum is %d", ErrInvalidDateRange, n, MaxTripDays)
	}
	return nil
}

// SpanDays returns the number of calendar days in the inclusive range
// without materialising them. It is zero when end precedes start.
func SpanDays(start, end time.Time) int64 {
	start, end = DateOf(start), DateOf(end)
	if end.Before(start) {
		return 0
	}
	return (end.Unix()-start.Unix())/secondsPerDay + 1
}

const secondsPerDay = 24 * 60 * 60

// DayDates returns every calendar date from start to end inclusive.
// It returns nil when end precedes start.
func DayDates(start, end time.Time) []time.Time {
	start, end = DateOf(start), DateOf(end)
	var out []time.Time
	for d := start; !d.After(end); d = d.AddDate(0, 0, 1) {
		out = append(out, d)
	}
	return out
}

// BuildDays creates one Day per date of the inclusive range, numbered 1..N.
func BuildDays(tripID uuid.UUID, start, end time.Time, ids IDGenerator) []Day {
	dates := DayDates(start, end)
	days := make([]Day, len(dates))
	for i, d := range dates {
		days[i] = Day{ID: ids.NewID(), TripID: tripID, DayNumber: i + 1, Date: d}
	}
	return days
}

// ResizeDays reconciles existing days with a new inclusive date range.
// Days whose date is still inside the range are kept (and renumbered); the
// rest are returned in removed. Dates with no existing day get a new Day.
func ResizeDays(tripID uuid.UUID, existing []Day, start, end time.Time, ids IDGenerator) (kept []Day, removed []Day) {
	byDate := make(map[time.Time]Day, len(existing))
	for _, d := range existing {
		byDate[DateOf(d.Date)] = d
	}
	inRange := make(map[time.Time]bool)
	for i, date := range DayDates(start, end) {
		inRange[date] = true
		d, ok := byDate[date]
		if !ok {
			d = Day{ID: ids.NewID(), TripID: tripID, Date: date}
		}
		d.DayNumber = i + 1
		kept = append(kept, d)
	}
	for _, d := range existing {
		if !inRange[DateOf(d.Date)] {
			removed = append(removed, d)
		}
	}
	return kept, removed
}
