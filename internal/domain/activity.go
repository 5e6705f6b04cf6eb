package domain

import (
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"
)

// Activity is a scheduled use of an Asset within a Day.
// AssetID is a weak reference: the asset may have been deleted since.
// StartTime is free text and is not parsed.
type Activity struct {
	ID         uuid.UUID
	DayID      uuid.UUID
	AssetID    uuid.UUID
	StartTime  string
	CustomNote string
	SortOrder  int
	CreatedAt  time.Time
}

// Direction is the way MoveActivity shifts an activity.
type Direction string

const (
	MoveUp   Direction = "up"
	MoveDown Direction = "down"
)

// ParseDirection validates a direction string.
func ParseDirection(s string) (Direction, error) {
	switch Direction(s) {
	case MoveUp, MoveDown:
		return Direction(s), nil
	}
	return "", fmt.Errorf("%w: direction must be \"up\" or \"down\"", ErrValidation)
}

// SortActivities orders activities by SortOrder, keeping the input order for
// equal values.
func SortActivities(acts []Activity) {
	sort.SliceStable(acts, func(i, j int) bool { return acts[i].SortOrder < acts[j].SortOrder })
}

// NextSortOrder returns max(SortOrder)+1, or 1 for an empty day.
func NextSortOrder(acts []Activity) int {
	maxOrder := 0
	for _, a := range acts {
		if a.SortOrder > maxOrder {
			maxOrder = a.SortOrder
		}
	}
	return maxOrder + 1
}

// SwapWithNeighbour returns the day's activities, already sorted, with the
// given activity swapped with its neighbour in direction dir and all sort
// orders renumbered 1..N. moved is false when the activity is absent or
// already at that end of the list.
func SwapWithNeighbour(sorted []Activity, activityID uuid.UUID, dir Direction) (out []Activity, moved bool) {
	idx := -1
	for i, a := range sorted {
		if a.ID == activityID {
			idx = i
			break
		}
	}
	if idx == -1 {
		return sorted, false
	}
	swap := idx - 1
	if dir == MoveDown {
		swap = idx + 1
	}
	if swap < 0 || swap >= len(sorted) {
		return sorted, false
	}
	ids := make([]uuid.UUID, len(sorted))
	for i, a := range sorted {
		ids[i] = a.ID
	}
	ids[idx], ids[swap] = ids[swap], ids[idx]
	return Reorder(sorted, ids), true
}

// Reorder renumbers a day's activities to follow orderedIDs: the activity at
// position i of orderedIDs gets SortOrder i+1. IDs that do not belong to the
// day are ignored. Activities missing from orderedIDs follow the listed ones
// in their previous relative order, so sort orders stay distinct and
// contiguous. The result is sorted by SortOrder.
func Reorder(acts []Activity, orderedIDs []uuid.UUID) []Activity {
	current := append([]Activity(nil), acts...)
	SortActivities(current)

	byID := make(map[uuid.UUID]int, len(current))
	for i, a := range current {
		byID[a.ID] = i
	}
	placed := make(map[uuid.UUID]bool, len(current))
	out := make([]Activity, 0, len(current))
	for _, id := range orderedIDs {
		i, ok := byID[id]
		if !ok || placed[id] {
			continue
		}
		placed[id] = true
		out = append(out, current[i])
	}
	for _, a := range current {
		if !placed[a.ID] {
			out = append(out, a)
		}
	}
	for i := range out {
		out[i].SortOrder = i + 1
	}
	return out
}
