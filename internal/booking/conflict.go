// Package booking provides pure conflict detection and resource usage
// computations over the set of existing event bookings.
package booking

import "time"

// Booking is the slice of an event relevant to venue occupancy.
type Booking struct {
	EventID string
	VenueID string
	Start   time.Time
	End     time.Time
	// Active reports whether the event still holds its venue slot; rejected
	// and completed events do not.
	Active bool
}

// Conflict details a venue double-booking that callers can surface to users.
type Conflict struct {
	WithEventID string
	VenueID     string
	Start       time.Time
	End         time.Time
}

// Overlaps reports whether two half-open intervals [aStart, aEnd) and
// [bStart, bEnd) intersect. Intervals that touch exactly at an endpoint do
// not overlap.
func Overlaps(aStart, aEnd, bStart, bEnd time.Time) bool {
	return aStart.Before(bEnd) && aEnd.After(bStart)
}

// VenueConflicts returns the active bookings at venueID whose time range
// overlaps [start, end). The booking identified by excludeEventID is ignored
// so an event being edited does not conflict with itself.
func VenueConflicts(existing []Booking, venueID string, start, end time.Time, excludeEventID string) []Conflict {
	if venueID == "" {
		return nil
	}

	var conflicts []Conflict
	for _, b := range existing {
		if !b.Active || b.VenueID != venueID {
			continue
		}
		if excludeEventID != "" && b.EventID == excludeEventID {
			continue
		}
		if !Overlaps(start, end, b.Start, b.End) {
			continue
		}
		conflicts = append(conflicts, Conflict{
			WithEventID: b.EventID,
			VenueID:     b.VenueID,
			Start:       b.Start,
			End:         b.End,
		})
	}
	return conflicts
}

// HasVenueConflict reports whether any active booking at venueID overlaps
// [start, end).
func HasVenueConflict(existing []Booking, venueID string, start, end time.Time, excludeEventID string) bool {
	return len(VenueConflicts(existing, venueID, start, end, excludeEventID)) > 0
}

// Demand is one event's requested count against a resource.
type Demand struct {
	EventID    string
	ResourceID string
	Count      int
}

// Usage aggregates consumption of a single resource.
type Usage struct {
	ResourceID string
	Used       int
	Total      int
}

// criticalThresholdPercent marks a resource as critical once usage reaches
// this share of its total capacity.
const criticalThresholdPercent = 90

// UsageFor sums the demanded counts for resourceID. Callers pass only the
// demands of events in consuming execution states.
func UsageFor(demands []Demand, resourceID string, total int) Usage {
	used := 0
	for _, d := range demands {
		if d.ResourceID == resourceID {
			used += d.Count
		}
	}
	return Usage{ResourceID: resourceID, Used: used, Total: total}
}

// Percent returns the integer usage percentage, rounded half away from zero.
func (u Usage) Percent() int {
	if u.Total <= 0 {
		return 0
	}
	return (u.Used*100 + u.Total/2) / u.Total
}

// Remaining returns the unallocated capacity, never negative.
func (u Usage) Remaining() int {
	if u.Used >= u.Total {
		return 0
	}
	return u.Total - u.Used
}

// Critical reports whether usage has reached the critical threshold.
func (u Usage) Critical() bool {
	return u.Percent() >= criticalThresholdPercent
}
