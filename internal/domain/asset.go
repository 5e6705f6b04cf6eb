package domain

import (
	"math"
	"strings"
	"time"

	"github.com/google/uuid"
)

// AssetType is the kind of sellable travel component an Asset represents.
type AssetType string

const (
	AssetHotel      AssetType = "hotel"
	AssetRestaurant AssetType = "restaurant"
	AssetAttraction AssetType = "attraction"
	AssetFlight     AssetType = "flight"
	AssetTransfer   AssetType = "transfer"
	AssetExperience AssetType = "experience"
)

// AssetTypes lists every valid AssetType in display order.
var AssetTypes = []AssetType{
	AssetHotel, AssetRestaurant, AssetAttraction, AssetFlight, AssetTransfer, AssetExperience,
}

var assetTypeLabels = map[AssetType]string{
	AssetHotel:      "מלון",
	AssetRestaurant: "מסעדה",
	AssetAttraction: "אטרקציה",
	AssetFlight:     "טיסה",
	AssetTransfer:   "העברה",
	AssetExperience: "חוויה",
}

// Label returns the Hebrew display label of the type, or the raw value for
// an unknown type.
func (t AssetType) Label() string {
	if l, ok := assetTypeLabels[t]; ok {
		return l
	}
	return string(t)
}

// Valid reports whether t is one of AssetTypes.
func (t AssetType) Valid() bool {
	_, ok := assetTypeLabels[t]
	return ok
}

// ParseAssetType accepts either the type code ("hotel") or its Hebrew label
// ("מלון"). The second return value is false for anything else.
func ParseAssetType(s string) (AssetType, bool) {
	s = strings.TrimSpace(s)
	if t := AssetType(strings.ToLower(s)); t.Valid() {
		return t, true
	}
	for t, label := range assetTypeLabels {
		if label == s {
			return t, true
		}
	}
	return "", false
}

// Asset is a sellable travel component in the shared library.
// Lat and Lng are nil when the location is unknown. Phone and Address are
// empty strings when not provided.
type Asset struct {
	ID            uuid.UUID
	Type          AssetType
	Country       string
	City          string
	Title         string
	DescriptionHe string
	Images        []string
	ExpertNotes   string
	Tags          []string
	CostPrice     float64
	SellingPrice  float64
	Phone         string
	Address       string
	Lat           *float64
	Lng           *float64
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// HasLocation reports whether both coordinates are set.
func (a Asset) HasLocation() bool {
	return a.Lat != nil && a.Lng != nil
}

// Profit is the selling price minus the cost price. It may be negative.
func (a Asset) Profit() float64 {
	return a.SellingPrice - a.CostPrice
}

// MarginPercent is the profit as a whole percentage of the selling price,
// rounded half up. A zero selling price yields 0.
func (a Asset) MarginPercent() int {
	return MarginPercent(a.CostPrice, a.SellingPrice)
}

// MarginPercent computes round((selling-cost)/selling*100), or 0 when
// selling is not positive.
func MarginPercent(cost, selling float64) int {
	if selling <= 0 {
		return 0
	}
	return int(math.Floor((selling-cost)/selling*100 + 0.5))
}

// Clone returns a copy of a that shares no slices or pointers with it.
func (a Asset) Clone() Asset {
	c := a
	c.Images = append([]string(nil), a.Images...)
	c.Tags = append([]string(nil), a.Tags...)
	if a.Lat != nil {
		v := *a.Lat
		c.Lat = &v
	}
	if a.Lng != nil {
		v := *a.Lng
		c.Lng = &v
	}
	return c
}

// AssetPatch carries a partial update. Nil fields are left unchanged.
// ClearLocation removes both coordinates.
type AssetPatch struct {
	Type          *AssetType
	Country       *string
	City          *string
	Title         *string
	DescriptionHe *string
	Images        *[]string
	ExpertNotes   *string
	Tags          *[]string
	CostPrice     *float64
	SellingPrice  *float64
	Phone         *string
	Address       *string
	Lat           *float64
	Lng           *float64
	ClearLocation bool
}

// Apply merges the non-nil fields of p into a copy of a.
// ID and CreatedAt are never touched.
func (p AssetPatch) Apply(a Asset) Asset {
	out := a.Clone()
	if p.Type != nil {
		out.Type = *p.Type
	}
	if p.Country != nil {
		out.Country = *p.Country
	}
	if p.City != nil {
		out.City = *p.City
	}
	if p.Title != nil {
		out.Title = *p.Title
	}
	if p.DescriptionHe != nil {
		out.DescriptionHe = *p.DescriptionHe
	}
	if p.Images != nil {
		out.Images = append([]string(nil), (*p.Images)...)
	}
	if p.ExpertNotes != nil {
		out.ExpertNotes = *p.ExpertNotes
	}
	if p.Tags != nil {
		out.Tags = append([]string(nil), (*p.Tags)...)
	}
	if p.CostPrice != nil {
		out.CostPrice = *p.CostPrice
	}
	if p.SellingPrice != nil {
		out.SellingPrice = *p.SellingPrice
	}
	if p.Phone != nil {
		out.Phone = *p.Phone
	}
	if p.Address != nil {
		out.Address = *p.Address
	}
	if p.ClearLocation {
		out.Lat, out.Lng = nil, nil
	}
	if p.Lat != nil {
		v := *p.Lat
		out.Lat = &v
	}
	if p.Lng != nil {
		v := *p.Lng
		out.Lng = &v
	}
	return out
}

// AssetFilter narrows an asset listing. Empty fields do not filter.
type AssetFilter struct {
	Type    AssetType
	Country string
	Search  string
}

// Matches reports whether a satisfies every set field of f.
// Search is a case-insensitive substring match against the title, city,
// Hebrew description, or any tag.
func (f AssetFilter) Matches(a Asset) bool {
	if f.Type != "" && a.Type != f.Type {
		return false
	}
	if f.Country != "" && a.Country != f.Country {
		return false
	}
	if f.Search == "" {
		return true
	}
	q := strings.ToLower(f.Search)
	if strings.Contains(strings.ToLower(a.Title), q) ||
		strings.Contains(strings.ToLower(a.City), q) ||
		strings.Contains(strings.ToLower(a.DescriptionHe), q) {
		return true
	}
	for _, tag := range a.Tags {
		if strings.Contains(strings.ToLower(tag), q) {
			return true
		}
	}
	return false
}

// FilterOptions lists the distinct values present in the library, each
// sorted ascending.
type FilterOptions struct {
	Types     []string
	Countries []string
	Cities    []string
}
