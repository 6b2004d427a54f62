package app

import (
	"context"
	"fmt"
	"time"

	"github.com/Amnesthesia/dz-app/internal/domain"
)

// fakeSlotWriter behaves like the authoritative server: it applies slot
// mutations to its copy of the load and returns the reconciled payload.
type fakeSlotWriter struct {
	load      domain.Load
	nextGroup int
	err       error
	calls     int
	lastReq   CreateSlotsRequest
}

func (f *fakeSlotWriter) CreateSlots(_ context.Context, in CreateSlotsRequest) (ManifestResult, error) {
	f.calls++
	f.lastReq = in
	if f.err != nil {
		return ManifestResult{}, f.err
	}

	f.nextGroup++
	var ids []string
	for i, m := range in.Members {
		id := fmt.Sprintf("slot-%d-%d", f.nextGroup, i)
		f.load.Slots = append(f.load.Slots, domain.Slot{
			ID:                  id,
			LoadID:              f.load.ID,
			UserID:              m.UserID,
			GroupNumber:         f.nextGroup,
			PassengerName:       m.PassengerName,
			PassengerExitWeight: m.PassengerExitWeight,
			JumpType:            &domain.JumpType{ID: in.Config.JumpTypeID},
			TicketType:          &domain.TicketType{ID: in.Config.TicketTypeID},
		})
		ids = append(ids, id)
	}
	return ManifestResult{Load: f.load, GroupNumber: f.nextGroup, SlotIDs: ids}, nil
}

func (f *fakeSlotWriter) UpdateSlot(_ context.Context, in UpdateSlotRequest) (domain.Load, error) {
	f.calls++
	if f.err != nil {
		return domain.Load{}, f.err
	}
	for i := range f.load.Slots {
		if f.load.Slots[i].ID == in.SlotID {
			f.load.Slots[i].JumpType = &domain.JumpType{ID: in.Config.JumpTypeID}
			f.load.Slots[i].TicketType = &domain.TicketType{ID: in.Config.TicketTypeID}
			return f.load, nil
		}
	}
	return domain.Load{}, domain.ErrSlotNotFound
}

func (f *fakeSlotWriter) DeleteSlot(_ context.Context, slotID, _ string) (domain.Load, error) {
	f.calls++
	if f.err != nil {
		return domain.Load{}, f.err
	}
	for i := range f.load.Slots {
		if f.load.Slots[i].ID == slotID {
			f.load.Slots = append(f.load.Slots[:i], f.load.Slots[i+1:]...)
			return f.load, nil
		}
	}
	return domain.Load{}, domain.ErrSlotNotFound
}

// fakeLoadWriter echoes load updates back the way the server would.
type fakeLoadWriter struct {
	load    domain.Load
	err     error
	calls   int
	lastReq UpdateLoadRequest
	planes  map[string]domain.Plane
	nextNum int
}

func (f *fakeLoadWriter) CreateLoad(_ context.Context, in CreateLoadRequest) (domain.Load, error) {
	f.calls++
	if f.err != nil {
		return domain.Load{}, f.err
	}
	f.nextNum++
	plane := domain.Plane{ID: in.PlaneID, MaxSlots: in.MaxSlots}
	if p, ok := f.planes[in.PlaneID]; ok {
		plane = p
	}
	return domain.Load{
		ID:         fmt.Sprintf("load-%d", f.nextNum),
		Name:       in.Name,
		LoadNumber: f.nextNum,
		MaxSlots:   in.MaxSlots,
		IsOpen:     in.IsOpen,
		Plane:      &plane,
	}, nil
}

func (f *fakeLoadWriter) UpdateLoad(_ context.Context, in UpdateLoadRequest) (domain.Load, error) {
	f.calls++
	f.lastReq = in
	if f.err != nil {
		return domain.Load{}, f.err
	}
	if in.PilotID != nil {
		f.load.Pilot = &domain.DropzoneUser{ID: *in.PilotID}
	}
	if in.GCAID != nil {
		f.load.GCA = &domain.DropzoneUser{ID: *in.GCAID}
	}
	if in.LoadMasterID != nil {
		f.load.LoadMaster = &domain.DropzoneUser{ID: *in.LoadMasterID}
	}
	if in.PlaneID != nil {
		if p, ok := f.planes[*in.PlaneID]; ok {
			f.load.Plane = &p
			f.load.MaxSlots = p.MaxSlots
		} else {
			f.load.Plane = &domain.Plane{ID: *in.PlaneID}
		}
	}
	if in.DispatchAt != nil {
		t := *in.DispatchAt
		f.load.DispatchAt = &t
	}
	if in.ClearDispatch {
		f.load.DispatchAt = nil
	}
	if in.HasLanded != nil {
		f.load.HasLanded = *in.HasLanded
	}
	return f.load, nil
}

// fakeProfiles serves participant snapshots from a fixed map.
type fakeProfiles struct {
	users map[string]domain.DropzoneUser
}

func (f *fakeProfiles) DropzoneUser(_ context.Context, _, id string) (domain.DropzoneUser, error) {
	u, ok := f.users[id]
	if !ok {
		return domain.DropzoneUser{}, domain.ErrUserNotFound
	}
	return u, nil
}

func eligibleProfile(now time.Time) domain.ParticipantProfile {
	membership := now.Add(90 * 24 * time.Hour)
	repack := now.Add(60 * 24 * time.Hour)
	return domain.ParticipantProfile{
		HasLicense:      true,
		HasRig:          true,
		HasExitWeight:   true,
		RigInspected:    true,
		MembershipUntil: &membership,
		RepackDueAt:     &repack,
		Credits:         100,
		ExitWeight:      80,
	}
}
