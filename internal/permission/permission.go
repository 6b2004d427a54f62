// Package permission is the single capability lookup consulted by every
// mutating entry point. A role is a named set of capability grants; checks
// are pure set-membership lookups against the current role snapshot and are
// never cached beyond one decision.
package permission

// Capability names one grantable action.
type Capability string

const (
	// Slot capabilities come in self / others / self-only-group tiers.
	CreateSlot             Capability = "createSlot"
	CreateUserSlot         Capability = "createUserSlot"
	CreateUserSlotWithSelf Capability = "createUserSlotWithSelf"
	UpdateSlot             Capability = "updateSlot"
	UpdateUserSlot         Capability = "updateUserSlot"
	DeleteSlot             Capability = "deleteSlot"
	DeleteUserSlot         Capability = "deleteUserSlot"

	CreateLoad Capability = "createLoad"
	UpdateLoad Capability = "updateLoad"
	DeleteLoad Capability = "deleteLoad"

	ReadUser   Capability = "readUser"
	UpdateUser Capability = "updateUser"
)

// selfToOthers maps each act-on-self capability to its act-on-others
// counterpart.
var selfToOthers = map[Capability]Capability{
	CreateSlot: CreateUserSlot,
	UpdateSlot: UpdateUserSlot,
	DeleteSlot: DeleteUserSlot,
}

// Set is an immutable collection of granted capabilities.
type Set map[Capability]struct{}

// NewSet builds a Set from explicit grants.
func NewSet(grants ...Capability) Set {
	s := make(Set, len(grants))
	for _, g := range grants {
		s[g] = struct{}{}
	}
	return s
}

// Has reports whether the capability is granted.
func (s Set) Has(c Capability) bool {
	_, ok := s[c]
	return ok
}

// Allowed reports whether the actor may perform the capability against the
// target. When the actor is not the target, the act-on-others counterpart
// must be granted instead. Denial is silent; the caller decides whether to
// surface a message or hide the affordance.
func (s Set) Allowed(c Capability, actorIsTarget bool) bool {
	if actorIsTarget {
		return s.Has(c)
	}
	if others, ok := selfToOthers[c]; ok {
		return s.Has(others)
	}
	return s.Has(c)
}

// CanManifestGroup reports whether the actor may start a group manifest at
// all, in either the full or self-only tier.
func (s Set) CanManifestGroup() bool {
	return s.Has(CreateUserSlot) || s.Has(CreateUserSlotWithSelf)
}

// SelfGroupOnly reports whether the actor may only form groups consisting
// of themselves plus their passengers.
func (s Set) SelfGroupOnly() bool {
	return s.Has(CreateUserSlotWithSelf) && !s.Has(CreateUserSlot)
}

// roleGrants is the authorization table: one entry per role, consulted
// uniformly instead of per-call-site flags.
var roleGrants = map[string]Set{
	"student": NewSet(
		CreateSlot, UpdateSlot, DeleteSlot,
	),
	"fun_jumper": NewSet(
		CreateSlot, UpdateSlot, DeleteSlot, CreateUserSlotWithSelf,
	),
	"coach": NewSet(
		CreateSlot, UpdateSlot, DeleteSlot, CreateUserSlotWithSelf, ReadUser,
	),
	"instructor": NewSet(
		CreateSlot, UpdateSlot, DeleteSlot,
		CreateUserSlot, UpdateUserSlot, DeleteUserSlot,
		ReadUser, UpdateLoad,
	),
	"gca": NewSet(
		CreateSlot, UpdateSlot, DeleteSlot, UpdateLoad, ReadUser,
	),
	"pilot": NewSet(
		CreateSlot, UpdateSlot, DeleteSlot, UpdateLoad,
	),
	"rigger": NewSet(
		CreateSlot, UpdateSlot, DeleteSlot, ReadUser, UpdateUser,
	),
	"manifest": NewSet(
		CreateSlot, UpdateSlot, DeleteSlot,
		CreateUserSlot, UpdateUserSlot, DeleteUserSlot,
		CreateLoad, UpdateLoad, DeleteLoad,
		ReadUser, UpdateUser,
	),
	"owner": NewSet(
		CreateSlot, UpdateSlot, DeleteSlot,
		CreateUserSlot, UpdateUserSlot, DeleteUserSlot,
		CreateLoad, UpdateLoad, DeleteLoad,
		ReadUser, UpdateUser,
	),
}

// ForRole resolves a role name to its grants. Unknown roles hold nothing.
func ForRole(role string) Set {
	if grants, ok := roleGrants[role]; ok {
		return grants
	}
	return Set{}
}
