package app

import (
	"context"

	"github.com/Amnesthesia/dz-app/internal/clock"
	"github.com/Amnesthesia/dz-app/internal/domain"
	"github.com/Amnesthesia/dz-app/internal/eligibility"
	"github.com/Amnesthesia/dz-app/internal/session"
)

// GroupService coordinates atomic multi-participant manifests: the whole
// request is validated before any remote call, and the remote service
// creates all slots in one batch or none at all.
type GroupService struct {
	slots    SlotWriter
	profiles ProfileSource
	session  *session.Session
	clock    clock.Clock
}

func NewGroupService(slots SlotWriter, profiles ProfileSource, sess *session.Session, clk clock.Clock) *GroupService {
	return &GroupService{
		slots:    slots,
		profiles: profiles,
		session:  sess,
		clock:    clk,
	}
}

// GroupInput is an indivisible manifest request: every member shares one
// activity configuration.
type GroupInput struct {
	LoadID         string
	Members        []SlotUser
	Config         domain.ActivityConfig
	IdempotencyKey string
}

// GroupResult is the authoritative outcome of a group manifest. Every
// created slot shares GroupNumber.
type GroupResult struct {
	Load        domain.Load
	GroupNumber int
	SlotIDs     []string
}

// Manifest allocates slots for all members or none. Validation order:
// required fields, actor permission, per-member eligibility, whole-batch
// capacity. Only then is the batched remote call issued.
func (s *GroupService) Manifest(ctx context.Context, in GroupInput) (GroupResult, error) {
	if len(in.Members) == 0 {
		return GroupResult{}, domain.ErrEmptyGroup
	}
	if fieldErrs := validateConfig(in.Config); len(fieldErrs) > 0 {
		return GroupResult{}, fieldErrs
	}

	grants := s.session.Grants()
	if !grants.CanManifestGroup() {
		return GroupResult{}, domain.ErrForbidden
	}
	actor := s.session.CurrentUser()
	if grants.SelfGroupOnly() {
		// The self-only tier covers the actor plus their passengers, not
		// other registered participants.
		for _, m := range in.Members {
			if m.UserID != actor.ID {
				return GroupResult{}, domain.ErrForbidden
			}
		}
	}

	now := s.clock.Now()
	creditSystem := s.session.Dropzone().CreditSystem
	for _, m := range in.Members {
		user, err := s.profiles.DropzoneUser(ctx, s.session.Dropzone().ID, m.UserID)
		if err != nil {
			return GroupResult{}, err
		}
		if reasons := eligibility.Evaluate(user.Profile, creditSystem, now); len(reasons) > 0 {
			return GroupResult{}, IneligibleError{UserID: m.UserID, Reasons: reasons}
		}
	}

	load, ok := s.session.Load(in.LoadID)
	if !ok {
		return GroupResult{}, domain.ErrLoadNotFound
	}
	if !load.AcceptsManifests(now) {
		return GroupResult{}, domain.ErrLoadClosed
	}
	// The batch must fit as a whole; fitting members one at a time is not
	// a valid outcome.
	if load.SlotCount()+len(in.Members) > load.MaxSlots {
		return GroupResult{}, domain.ErrCapacityExceeded
	}

	key := in.IdempotencyKey
	if key == "" {
		key = newIdempotencyKey()
	}
	result, err := s.slots.CreateSlots(ctx, CreateSlotsRequest{
		LoadID:         in.LoadID,
		Config:         in.Config,
		Members:        in.Members,
		IdempotencyKey: key,
	})
	if err != nil {
		return GroupResult{}, err
	}

	s.session.ApplyLoad(result.Load)

	return GroupResult{
		Load:        result.Load,
		GroupNumber: result.GroupNumber,
		SlotIDs:     result.SlotIDs,
	}, nil
}
