package domain

import "time"

// LoadState is the dispatch lifecycle position of a load, derived from its
// dispatch timestamp and landed flag rather than stored.
type LoadState string

const (
	// LoadStateOpen accepts manifests and has no countdown running.
	LoadStateOpen LoadState = "open"
	// LoadStateCountdown has a dispatch call scheduled in the future.
	LoadStateCountdown LoadState = "countdown"
	// LoadStateDispatchDue has passed its dispatch call and awaits landing.
	LoadStateDispatchDue LoadState = "dispatch_due"
	// LoadStateLanded is terminal; the load no longer accepts any change.
	LoadStateLanded LoadState = "landed"
)

// DispatchOffsets are the supported dispatch call durations.
var DispatchOffsets = []time.Duration{
	5 * time.Minute,
	10 * time.Minute,
	15 * time.Minute,
	20 * time.Minute,
}

// Load represents one scheduled aircraft flight with a fixed seat capacity.
type Load struct {
	ID         string
	Name       string
	LoadNumber int
	MaxSlots   int
	IsOpen     bool
	HasLanded  bool
	DispatchAt *time.Time

	Plane      *Plane
	Pilot      *DropzoneUser
	GCA        *DropzoneUser
	LoadMaster *DropzoneUser

	Slots []Slot

	CreatedAt time.Time
}

// Plane is an aircraft assignable to loads; its MaxSlots bounds the load's
// capacity when assigned.
type Plane struct {
	ID           string
	Name         string
	Registration string
	MaxSlots     int
}

// State derives the lifecycle position at the given instant.
func (l Load) State(now time.Time) LoadState {
	switch {
	case l.HasLanded:
		return LoadStateLanded
	case l.DispatchAt == nil:
		return LoadStateOpen
	case l.DispatchAt.After(now):
		return LoadStateCountdown
	default:
		return LoadStateDispatchDue
	}
}

// SlotCount reports the number of occupied slots.
func (l Load) SlotCount() int {
	return len(l.Slots)
}

// IsFull reports whether the load has no remaining capacity.
func (l Load) IsFull() bool {
	return l.SlotCount() >= l.MaxSlots
}

// Available reports the number of unoccupied slots, never negative.
func (l Load) Available() int {
	if n := l.MaxSlots - l.SlotCount(); n > 0 {
		return n
	}
	return 0
}

// AcceptsManifests reports whether slot changes are still allowed. Only the
// terminal landed state closes a load to manifesting; a load past its
// dispatch call still accepts changes until it is marked landed.
func (l Load) AcceptsManifests(now time.Time) bool {
	return l.State(now) != LoadStateLanded
}

// CountdownRemaining reports the time until dispatch, zero when no call is
// scheduled or the call has already elapsed.
func (l Load) CountdownRemaining(now time.Time) time.Duration {
	if l.DispatchAt == nil || !l.DispatchAt.After(now) {
		return 0
	}
	return l.DispatchAt.Sub(now)
}

// SlotsInGroup returns the slots sharing the given group number, in manifest
// order. A zero group number never matches.
func (l Load) SlotsInGroup(groupNumber int) []Slot {
	if groupNumber == 0 {
		return nil
	}
	var group []Slot
	for _, s := range l.Slots {
		if s.GroupNumber == groupNumber {
			group = append(group, s)
		}
	}
	return group
}

// FindSlot returns the slot with the given ID, or nil.
func (l Load) FindSlot(slotID string) *Slot {
	for i := range l.Slots {
		if l.Slots[i].ID == slotID {
			return &l.Slots[i]
		}
	}
	return nil
}

// ValidDispatchOffset reports whether d is one of the supported call lengths.
func ValidDispatchOffset(d time.Duration) bool {
	for _, offset := range DispatchOffsets {
		if d == offset {
			return true
		}
	}
	return false
}
