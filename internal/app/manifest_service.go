package app

import (
	"context"

	"github.com/Amnesthesia/dz-app/internal/clock"
	"github.com/Amnesthesia/dz-app/internal/domain"
	"github.com/Amnesthesia/dz-app/internal/eligibility"
	"github.com/Amnesthesia/dz-app/internal/permission"
	"github.com/Amnesthesia/dz-app/internal/session"
)

// SlotWriter executes slot mutations against the authoritative remote
// service and returns the reconciled load payload.
type SlotWriter interface {
	CreateSlots(ctx context.Context, in CreateSlotsRequest) (ManifestResult, error)
	UpdateSlot(ctx context.Context, in UpdateSlotRequest) (domain.Load, error)
	DeleteSlot(ctx context.Context, slotID, idempotencyKey string) (domain.Load, error)
}

// ProfileSource supplies a fresh eligibility snapshot for a participant.
// Profiles are re-read per decision, never cached across attempts.
type ProfileSource interface {
	DropzoneUser(ctx context.Context, dropzoneID, dropzoneUserID string) (domain.DropzoneUser, error)
}

// SlotUser is one member of a slot-creation request.
type SlotUser struct {
	UserID              string
	PassengerName       string
	PassengerExitWeight float64
}

// CreateSlotsRequest is the batched slot creation payload; a single manifest
// is a batch of one.
type CreateSlotsRequest struct {
	LoadID         string
	Config         domain.ActivityConfig
	Members        []SlotUser
	IdempotencyKey string
}

// UpdateSlotRequest changes an existing slot's activity configuration.
type UpdateSlotRequest struct {
	SlotID         string
	Config         domain.ActivityConfig
	IdempotencyKey string
}

// ManifestResult is the authoritative outcome of a slot creation.
type ManifestResult struct {
	Load        domain.Load
	GroupNumber int
	SlotIDs     []string
}

// IneligibleError reports the unmet requirements blocking a participant.
type IneligibleError struct {
	UserID  string
	Reasons []eligibility.Reason
}

func (e IneligibleError) Error() string {
	if len(e.Reasons) == 0 {
		return domain.ErrNotEligible.Error()
	}
	return e.Reasons[0].Message
}

func (e IneligibleError) Is(target error) bool {
	return target == domain.ErrNotEligible
}

// ManifestService enforces per-load capacity, eligibility and permission
// rules for individual slot changes, delegating the actual mutation to the
// remote service and reconciling the session snapshot from its response.
type ManifestService struct {
	slots    SlotWriter
	profiles ProfileSource
	session  *session.Session
	clock    clock.Clock
}

func NewManifestService(slots SlotWriter, profiles ProfileSource, sess *session.Session, clk clock.Clock) *ManifestService {
	return &ManifestService{
		slots:    slots,
		profiles: profiles,
		session:  sess,
		clock:    clk,
	}
}

// CanAllocate reports whether count more slots fit on the load right now.
// This is fast advisory feedback; the remote service re-validates at commit.
func (s *ManifestService) CanAllocate(loadID string, count int) bool {
	load, ok := s.session.Load(loadID)
	if !ok {
		return false
	}
	if !load.AcceptsManifests(s.clock.Now()) {
		return false
	}
	return load.SlotCount()+count <= load.MaxSlots
}

// Eligibility re-evaluates the unmet requirements for a participant against
// a fresh profile snapshot. An empty list means eligible.
func (s *ManifestService) Eligibility(ctx context.Context, dropzoneUserID string) ([]eligibility.Reason, error) {
	user, err := s.profiles.DropzoneUser(ctx, s.session.Dropzone().ID, dropzoneUserID)
	if err != nil {
		return nil, err
	}
	return eligibility.Evaluate(user.Profile, s.session.Dropzone().CreditSystem, s.clock.Now()), nil
}

// AllocateInput describes a single-slot manifest request. An empty UserID
// manifests the acting user.
type AllocateInput struct {
	LoadID              string
	UserID              string
	Config              domain.ActivityConfig
	PassengerName       string
	PassengerExitWeight float64
	// IdempotencyKey pins retries of the same logical request; generated
	// when empty.
	IdempotencyKey string
}

// Allocate manifests one participant on a load. All permission, eligibility
// and capacity violations are detected before the remote call is issued.
func (s *ManifestService) Allocate(ctx context.Context, in AllocateInput) (domain.Slot, error) {
	actor := s.session.CurrentUser()
	targetID := in.UserID
	if targetID == "" {
		targetID = actor.ID
	}
	actorIsTarget := targetID == actor.ID

	if !s.session.Grants().Allowed(permission.CreateSlot, actorIsTarget) {
		return domain.Slot{}, domain.ErrForbidden
	}

	if fieldErrs := validateConfig(in.Config); len(fieldErrs) > 0 {
		return domain.Slot{}, fieldErrs
	}

	load, ok := s.session.Load(in.LoadID)
	if !ok {
		return domain.Slot{}, domain.ErrLoadNotFound
	}
	now := s.clock.Now()
	if !load.AcceptsManifests(now) {
		return domain.Slot{}, domain.ErrLoadClosed
	}
	if !load.IsOpen && actorIsTarget && !s.session.Grants().Has(permission.CreateUserSlot) {
		return domain.Slot{}, domain.ErrLoadClosed
	}

	target, err := s.profiles.DropzoneUser(ctx, s.session.Dropzone().ID, targetID)
	if err != nil {
		return domain.Slot{}, err
	}
	if reasons := eligibility.Evaluate(target.Profile, s.session.Dropzone().CreditSystem, now); len(reasons) > 0 {
		return domain.Slot{}, IneligibleError{UserID: targetID, Reasons: reasons}
	}

	if load.SlotCount()+1 > load.MaxSlots {
		return domain.Slot{}, domain.ErrCapacityExceeded
	}

	key := in.IdempotencyKey
	if key == "" {
		key = newIdempotencyKey()
	}
	result, err := s.slots.CreateSlots(ctx, CreateSlotsRequest{
		LoadID: in.LoadID,
		Config: in.Config,
		Members: []SlotUser{{
			UserID:              targetID,
			PassengerName:       in.PassengerName,
			PassengerExitWeight: in.PassengerExitWeight,
		}},
		IdempotencyKey: key,
	})
	if err != nil {
		return domain.Slot{}, err
	}

	s.session.ApplyLoad(result.Load)

	if len(result.SlotIDs) > 0 {
		if slot := result.Load.FindSlot(result.SlotIDs[0]); slot != nil {
			return *slot, nil
		}
	}
	return domain.Slot{}, domain.ErrSlotNotFound
}

// DeallocateInput identifies the slot to remove.
type DeallocateInput struct {
	LoadID         string
	SlotID         string
	IdempotencyKey string
}

// Deallocate removes a slot, gated on the delete-self or delete-others
// capability depending on who occupies it.
func (s *ManifestService) Deallocate(ctx context.Context, in DeallocateInput) error {
	load, ok := s.session.Load(in.LoadID)
	if !ok {
		return domain.ErrLoadNotFound
	}
	slot := load.FindSlot(in.SlotID)
	if slot == nil {
		return domain.ErrSlotNotFound
	}
	if !load.AcceptsManifests(s.clock.Now()) {
		return domain.ErrLoadClosed
	}

	actorIsTarget := slot.UserID == s.session.CurrentUser().ID
	if !s.session.Grants().Allowed(permission.DeleteSlot, actorIsTarget) {
		return domain.ErrForbidden
	}

	key := in.IdempotencyKey
	if key == "" {
		key = newIdempotencyKey()
	}
	updated, err := s.slots.DeleteSlot(ctx, in.SlotID, key)
	if err != nil {
		return err
	}
	s.session.ApplyLoad(updated)
	return nil
}

// EditSlotInput changes the activity configuration of an existing slot.
type EditSlotInput struct {
	LoadID         string
	SlotID         string
	Config         domain.ActivityConfig
	IdempotencyKey string
}

// EditSlot updates a slot's jump configuration, gated on the update-self or
// update-others capability.
func (s *ManifestService) EditSlot(ctx context.Context, in EditSlotInput) (domain.Load, error) {
	load, ok := s.session.Load(in.LoadID)
	if !ok {
		return domain.Load{}, domain.ErrLoadNotFound
	}
	slot := load.FindSlot(in.SlotID)
	if slot == nil {
		return domain.Load{}, domain.ErrSlotNotFound
	}
	if !load.AcceptsManifests(s.clock.Now()) {
		return domain.Load{}, domain.ErrLoadClosed
	}

	actorIsTarget := slot.UserID == s.session.CurrentUser().ID
	if !s.session.Grants().Allowed(permission.UpdateSlot, actorIsTarget) {
		return domain.Load{}, domain.ErrForbidden
	}

	if fieldErrs := validateConfig(in.Config); len(fieldErrs) > 0 {
		return domain.Load{}, fieldErrs
	}

	key := in.IdempotencyKey
	if key == "" {
		key = newIdempotencyKey()
	}
	updated, err := s.slots.UpdateSlot(ctx, UpdateSlotRequest{
		SlotID:         in.SlotID,
		Config:         in.Config,
		IdempotencyKey: key,
	})
	if err != nil {
		return domain.Load{}, err
	}
	s.session.ApplyLoad(updated)
	return updated, nil
}

// validateConfig enforces the required activity selections before any
// network call.
func validateConfig(cfg domain.ActivityConfig) domain.FieldErrors {
	var errs domain.FieldErrors
	if cfg.JumpTypeID == "" {
		errs = append(errs, domain.FieldError{Field: "jumpType", Message: "You must specify the type of jump"})
	}
	if cfg.TicketTypeID == "" {
		errs = append(errs, domain.FieldError{Field: "ticketType", Message: "You must select a ticket type to manifest"})
	}
	return errs
}
