package meeting

import "sort"

// Renumberer reassigns meeting numbers of a section after some of its meetings were deleted.
// It returns only the meetings whose number changed.
type Renumberer interface {
	Renumber(meetings []Meeting) []Meeting
}

// KeepNumbers leaves gaps in the numbering as they are. It is the default.
type KeepNumbers struct{}

func (KeepNumbers) Renumber([]Meeting) []Meeting { return nil }

// DenseRenumberer numbers a section's meetings 1..n in chronological order.
type DenseRenumberer struct{}

func (DenseRenumberer) Renumber(meetings []Meeting) []Meeting {
	sorted := make([]Meeting, len(meetings))
	copy(sorted, meetings)
	sort.SliceStable(sorted, func(i, j int) bool {
		a, b := sorted[i], sorted[j]
		if a.Date != b.Date {
			return a.Date.Before(b.Date)
		}
		if a.StartTime != b.StartTime {
			return a.StartTime < b.StartTime
		}
		return a.MeetingNumber < b.MeetingNumber
	})

	var changed []Meeting
	for i, mtg := range sorted {
		if mtg.MeetingNumber != i+1 {
			mtg.MeetingNumber = i + 1
			changed = append(changed, mtg)
		}
	}
	return changed
}

var (
	_ Renumberer = KeepNumbers{}     // interface compliance check
	_ Renumberer = DenseRenumberer{} // interface compliance check
)
