package app

import (
	"context"
	"time"

	"github.com/Amnesthesia/dz-app/internal/clock"
	"github.com/Amnesthesia/dz-app/internal/domain"
	"github.com/Amnesthesia/dz-app/internal/permission"
	"github.com/Amnesthesia/dz-app/internal/session"
)

// LoadWriter executes load mutations against the authoritative remote
// service.
type LoadWriter interface {
	CreateLoad(ctx context.Context, in CreateLoadRequest) (domain.Load, error)
	UpdateLoad(ctx context.Context, in UpdateLoadRequest) (domain.Load, error)
}

// CreateLoadRequest creates a new load; capacity follows the plane.
type CreateLoadRequest struct {
	DropzoneID     string
	Name           string
	PlaneID        string
	MaxSlots       int
	IsOpen         bool
	IdempotencyKey string
}

// UpdateLoadRequest carries a partial load update. Nil pointers leave the
// field unchanged; ClearDispatch distinguishes cancelling a call from not
// touching it.
type UpdateLoadRequest struct {
	LoadID         string
	PilotID        *string
	GCAID          *string
	LoadMasterID   *string
	PlaneID        *string
	DispatchAt     *time.Time
	ClearDispatch  bool
	HasLanded      *bool
	IdempotencyKey string
}

// LoadService owns the dispatch lifecycle and crew/plane assignment. It
// gates every mutation on the update-load capability and on the load not
// having reached the terminal landed state.
type LoadService struct {
	loads   LoadWriter
	session *session.Session
	clock   clock.Clock
}

func NewLoadService(loads LoadWriter, sess *session.Session, clk clock.Clock) *LoadService {
	return &LoadService{
		loads:   loads,
		session: sess,
		clock:   clk,
	}
}

// CreateLoadInput describes a new load.
type CreateLoadInput struct {
	Name           string
	PlaneID        string
	IsOpen         bool
	IdempotencyKey string
}

// CreateLoad creates a load on the selected plane. The dropzone must have
// completed setup and the actor must hold the create-load capability.
func (s *LoadService) CreateLoad(ctx context.Context, in CreateLoadInput) (domain.Load, error) {
	if !s.session.Grants().Has(permission.CreateLoad) {
		return domain.Load{}, domain.ErrForbidden
	}
	dz := s.session.Dropzone()
	if !dz.SetupComplete() {
		return domain.Load{}, domain.ErrSetupIncomplete
	}

	var plane *domain.Plane
	for i := range dz.Planes {
		if dz.Planes[i].ID == in.PlaneID {
			plane = &dz.Planes[i]
			break
		}
	}
	if plane == nil {
		return domain.Load{}, domain.FieldErrors{{Field: "plane", Message: "You must select a plane for the load"}}
	}

	key := in.IdempotencyKey
	if key == "" {
		key = newIdempotencyKey()
	}
	load, err := s.loads.CreateLoad(ctx, CreateLoadRequest{
		DropzoneID:     dz.ID,
		Name:           in.Name,
		PlaneID:        plane.ID,
		MaxSlots:       plane.MaxSlots,
		IsOpen:         in.IsOpen,
		IdempotencyKey: key,
	})
	if err != nil {
		return domain.Load{}, err
	}
	s.session.ApplyLoad(load)
	return load, nil
}

// ScheduleCall starts the dispatch countdown with one of the supported
// offsets. A call can only be scheduled while none is pending.
func (s *LoadService) ScheduleCall(ctx context.Context, loadID string, offset time.Duration) (domain.Load, error) {
	load, err := s.mutableLoad(loadID)
	if err != nil {
		return domain.Load{}, err
	}
	if !domain.ValidDispatchOffset(offset) {
		return domain.Load{}, domain.ErrInvalidOffset
	}
	if load.DispatchAt != nil {
		return domain.Load{}, domain.ErrCallScheduled
	}

	dispatchAt := s.clock.Now().Add(offset)
	return s.update(ctx, UpdateLoadRequest{
		LoadID:     loadID,
		DispatchAt: &dispatchAt,
	})
}

// CancelCall clears a pending dispatch call. Once the call has elapsed the
// load is dispatch-due and the call can no longer be cancelled.
func (s *LoadService) CancelCall(ctx context.Context, loadID string) (domain.Load, error) {
	load, err := s.mutableLoad(loadID)
	if err != nil {
		return domain.Load{}, err
	}
	if load.State(s.clock.Now()) != domain.LoadStateCountdown {
		return domain.Load{}, domain.ErrDispatchElapsed
	}

	return s.update(ctx, UpdateLoadRequest{
		LoadID:        loadID,
		ClearDispatch: true,
	})
}

// MarkLanded finalizes a dispatch-due load. Both a pilot and a load master
// must be assigned first; landed is terminal.
func (s *LoadService) MarkLanded(ctx context.Context, loadID string) (domain.Load, error) {
	load, err := s.mutableLoad(loadID)
	if err != nil {
		return domain.Load{}, err
	}
	if load.State(s.clock.Now()) != domain.LoadStateDispatchDue {
		return domain.Load{}, domain.ErrDispatchPending
	}
	if load.LoadMaster == nil {
		return domain.Load{}, domain.ErrMissingCrew
	}
	if load.Pilot == nil {
		return domain.Load{}, domain.ErrMissingPilot
	}

	landed := true
	return s.update(ctx, UpdateLoadRequest{
		LoadID:    loadID,
		HasLanded: &landed,
	})
}

// AssignPilot sets the load's pilot. Allowed in any non-terminal state.
func (s *LoadService) AssignPilot(ctx context.Context, loadID, dropzoneUserID string) (domain.Load, error) {
	if _, err := s.mutableLoad(loadID); err != nil {
		return domain.Load{}, err
	}
	return s.update(ctx, UpdateLoadRequest{LoadID: loadID, PilotID: &dropzoneUserID})
}

// AssignGCA sets the load's ground control authority.
func (s *LoadService) AssignGCA(ctx context.Context, loadID, dropzoneUserID string) (domain.Load, error) {
	if _, err := s.mutableLoad(loadID); err != nil {
		return domain.Load{}, err
	}
	return s.update(ctx, UpdateLoadRequest{LoadID: loadID, GCAID: &dropzoneUserID})
}

// AssignLoadMaster sets the load's load master.
func (s *LoadService) AssignLoadMaster(ctx context.Context, loadID, dropzoneUserID string) (domain.Load, error) {
	if _, err := s.mutableLoad(loadID); err != nil {
		return domain.Load{}, err
	}
	return s.update(ctx, UpdateLoadRequest{LoadID: loadID, LoadMasterID: &dropzoneUserID})
}

// AssignPlane reassigns the aircraft. Moving to a plane that cannot seat
// the current occupants is rejected with the exact overflow count rather
// than truncating slots.
func (s *LoadService) AssignPlane(ctx context.Context, loadID string, plane domain.Plane) (domain.Load, error) {
	load, err := s.mutableLoad(loadID)
	if err != nil {
		return domain.Load{}, err
	}
	if load.SlotCount() > plane.MaxSlots {
		return domain.Load{}, domain.CapacityShortfallError{Excess: load.SlotCount() - plane.MaxSlots}
	}
	return s.update(ctx, UpdateLoadRequest{LoadID: loadID, PlaneID: &plane.ID})
}

// mutableLoad fetches the snapshot and rejects mutation of landed loads or
// actors without the update-load capability.
func (s *LoadService) mutableLoad(loadID string) (domain.Load, error) {
	if !s.session.Grants().Has(permission.UpdateLoad) {
		return domain.Load{}, domain.ErrForbidden
	}
	load, ok := s.session.Load(loadID)
	if !ok {
		return domain.Load{}, domain.ErrLoadNotFound
	}
	if load.HasLanded {
		return domain.Load{}, domain.ErrLoadClosed
	}
	return load, nil
}

func (s *LoadService) update(ctx context.Context, in UpdateLoadRequest) (domain.Load, error) {
	if in.IdempotencyKey == "" {
		in.IdempotencyKey = newIdempotencyKey()
	}
	load, err := s.loads.UpdateLoad(ctx, in)
	if err != nil {
		return domain.Load{}, err
	}
	s.session.ApplyLoad(load)
	return load, nil
}
