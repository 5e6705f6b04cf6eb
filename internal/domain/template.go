package domain

import (
	"time"

	"github.com/google/uuid"
)

// TemplateActivity is a copied activity inside a DayTemplate.
type TemplateActivity struct {
	AssetID    uuid.UUID
	StartTime  string
	CustomNote string
	SortOrder  int
}

// DayTemplate is a named snapshot of one day's activity sequence.
// Activities hold values copied at save time, never references to the
// source day, and a template is not modified after creation.
type DayTemplate struct {
	ID          uuid.UUID
	Name        string
	Description string
	Activities  []TemplateActivity
	CreatedAt   time.Time
}

// SnapshotActivities copies the day's activities, in sort order, into
// template form.
func SnapshotActivities(acts []Activity) []TemplateActivity {
	sorted := append([]Activity(nil), acts...)
	SortActivities(sorted)
	out := make([]TemplateActivity, len(sorted))
	for i, a := range sorted {
		out[i] = TemplateActivity{
			AssetID:    a.AssetID,
			StartTime:  a.StartTime,
			CustomNote: a.CustomNote,
			SortOrder:  a.SortOrder,
		}
	}
	return out
}

// Instantiate builds fresh activities for dayID from the template, with new
// ids and sort orders 1..N in template order.
func (t DayTemplate) Instantiate(dayID uuid.UUID, ids IDGenerator, now time.Time) []Activity {
	out := make([]Activity, len(t.Activities))
	for i, ta := range t.Activities {
		out[i] = Activity{
			ID:         ids.NewID(),
			DayID:      dayID,
			AssetID:    ta.AssetID,
			StartTime:  ta.StartTime,
			CustomNote: ta.CustomNote,
			SortOrder:  i + 1,
			CreatedAt:  now,
		}
	}
	return out
}
