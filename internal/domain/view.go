package domain

import "github.com/google/uuid"

// ScheduledAsset is an activity joined with the asset it references.
type ScheduledAsset struct {
	Activity Activity
	Asset    Asset
}

// TimelineDay is one day of a client-facing timeline.
type TimelineDay struct {
	Day        Day
	Activities []ScheduledAsset
}

// Timeline is the read-only projection of a trip shown to clients.
// Only activities whose asset resolves are included, and only days with at
// least one such activity.
type Timeline struct {
	Trip            Trip
	Days            []TimelineDay
	TotalDays       int
	TotalActivities int
}

// CostSummary aggregates prices over the resolvable activities of a trip.
type CostSummary struct {
	TripID        uuid.UUID
	Activities    int
	Unresolved    int
	TotalCost     float64
	TotalSelling  float64
	Profit        float64
	MarginPercent int
}

// AssetCandidate is a possibly incomplete asset payload supplied by the
// import collaborator. Missing values are filled in by Normalize.
type AssetCandidate struct {
	Title         string
	Type          string
	Country       string
	City          string
	DescriptionHe string
	Tags          []string
	Images        []string
	ExpertNotes   string
	CostPrice     *float64
	SellingPrice  *float64
	Phone         string
	Address       string
	Lat           *float64
	Lng           *float64
}

// Normalize converts the candidate into an Asset. An empty or unknown type
// becomes AssetAttraction, missing prices become 0, and nil slices become
// empty ones.
func (c AssetCandidate) Normalize() Asset {
	t, ok := ParseAssetType(c.Type)
	if !ok {
		t = AssetAttraction
	}
	a := Asset{
		Type:          t,
		Country:       c.Country,
		City:          c.City,
		Title:         c.Title,
		DescriptionHe: c.DescriptionHe,
		Images:        append([]string{}, c.Images...),
		ExpertNotes:   c.ExpertNotes,
		Tags:          append([]string{}, c.Tags...),
		Phone:         c.Phone,
		Address:       c.Address,
	}
	if c.CostPrice != nil {
		a.CostPrice = *c.CostPrice
	}
	if c.SellingPrice != nil {
		a.SellingPrice = *c.SellingPrice
	}
	if c.Lat != nil && c.Lng != nil {
		lat, lng := *c.Lat, *c.Lng
		a.Lat, a.Lng = &lat, &lng
	}
	return a
}
