// Package eligibility decides whether a participant may be manifested, as a
// pure function over a profile snapshot. The checks run in a fixed order so
// the first reason reported is always the most fundamental blocker; callers
// must re-evaluate on every attempt rather than cache a verdict.
package eligibility

import (
	"strings"
	"time"

	"github.com/Amnesthesia/dz-app/internal/domain"
)

// ReasonCode identifies an unmet manifest requirement.
type ReasonCode string

const (
	ReasonProfileIncomplete   ReasonCode = "profile_incomplete"
	ReasonMembershipExpired   ReasonCode = "membership_expired"
	ReasonRigInspectionNeeded ReasonCode = "rig_inspection_required"
	ReasonReserveRepackDue    ReasonCode = "reserve_repack_due"
	ReasonInsufficientCredits ReasonCode = "insufficient_credits"
)

// Reason is one unmet requirement with a user-facing message.
type Reason struct {
	Code    ReasonCode
	Message string
}

// Evaluate returns the unmet requirements for the profile at the given
// instant, in precedence order, or an empty slice when the participant is
// eligible. creditSystem toggles the credit balance check for dropzones
// that bill per jump.
func Evaluate(profile domain.ParticipantProfile, creditSystem bool, now time.Time) []Reason {
	var reasons []Reason

	if missing := incompleteProfileFields(profile); len(missing) > 0 {
		reasons = append(reasons, Reason{
			Code:    ReasonProfileIncomplete,
			Message: "Update your profile before manifesting: " + strings.Join(missing, " and ") + " missing",
		})
	}

	if !profile.MembershipCurrent(now) {
		reasons = append(reasons, Reason{
			Code:    ReasonMembershipExpired,
			Message: "Your membership is out of date",
		})
	}

	if !profile.RigInspected {
		reasons = append(reasons, Reason{
			Code:    ReasonRigInspectionNeeded,
			Message: "Your rig needs to be inspected before manifesting",
		})
	}

	if !profile.ReserveInDate(now) {
		reasons = append(reasons, Reason{
			Code:    ReasonReserveRepackDue,
			Message: "Your rig needs a reserve repack",
		})
	}

	if creditSystem && profile.Credits <= 0 {
		reasons = append(reasons, Reason{
			Code:    ReasonInsufficientCredits,
			Message: "You have no credits on your account",
		})
	}

	return reasons
}

// Eligible reports whether no requirement is unmet.
func Eligible(profile domain.ParticipantProfile, creditSystem bool, now time.Time) bool {
	return len(Evaluate(profile, creditSystem, now)) == 0
}

// incompleteProfileFields lists the missing profile basics. Exit weight and
// rig are reported together when both are absent.
func incompleteProfileFields(profile domain.ParticipantProfile) []string {
	var missing []string
	if !profile.HasExitWeight {
		missing = append(missing, "exit weight")
	}
	if !profile.HasRig {
		missing = append(missing, "rig")
	}
	return missing
}
