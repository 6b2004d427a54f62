package domain

import "time"

// DropzoneUser is a participant registered at one dropzone, carrying the
// role and profile state used for permission and eligibility checks.
type DropzoneUser struct {
	ID      string
	UserID  string
	Name    string
	Role    string
	Credits float64

	Profile ParticipantProfile
}

// ParticipantProfile is the read-only eligibility snapshot supplied by the
// remote service. It must be re-read per decision, never cached across
// screens.
type ParticipantProfile struct {
	HasLicense      bool
	HasRig          bool
	HasExitWeight   bool
	RigInspected    bool
	MembershipUntil *time.Time
	RepackDueAt     *time.Time
	Credits         float64
	ExitWeight      float64
}

// MembershipCurrent reports whether the participant's membership covers the
// given instant. An absent expiry is treated as lapsed.
func (p ParticipantProfile) MembershipCurrent(now time.Time) bool {
	return p.MembershipUntil != nil && p.MembershipUntil.After(now)
}

// ReserveInDate reports whether the reserve repack is still valid. An absent
// repack date means no rig data and is handled by the rig checks instead.
func (p ParticipantProfile) ReserveInDate(now time.Time) bool {
	return p.RepackDueAt == nil || p.RepackDueAt.After(now)
}
