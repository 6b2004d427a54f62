package app

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/Amnesthesia/dz-app/internal/clock"
	"github.com/Amnesthesia/dz-app/internal/domain"
	"github.com/Amnesthesia/dz-app/internal/session"
)

func newLoadFixture(t *testing.T, role string, load domain.Load) (*LoadService, *fakeLoadWriter, *session.Session) {
	t.Helper()
	sess := session.New(testDropzone(), testActor(role))
	sess.ApplyLoad(load)

	writer := &fakeLoadWriter{
		load: load,
		planes: map[string]domain.Plane{
			"plane-1": {ID: "plane-1", Name: "Caravan", MaxSlots: 14},
			"plane-2": {ID: "plane-2", Name: "C182", MaxSlots: 4},
		},
	}
	svc := NewLoadService(writer, sess, clock.NewFixed(testNow))
	return svc, writer, sess
}

func TestLoadService_DispatchCalls(t *testing.T) {
	t.Parallel()

	t.Run("ten minute call then cancel", func(t *testing.T) {
		svc, _, sess := newLoadFixture(t, "manifest", openLoad(8))

		load, err := svc.ScheduleCall(context.Background(), "load-1", 10*time.Minute)
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		want := testNow.Add(600 * time.Second)
		if load.DispatchAt == nil || !load.DispatchAt.Equal(want) {
			t.Fatalf("expected dispatch at %v, got %v", want, load.DispatchAt)
		}
		if load.State(testNow) != domain.LoadStateCountdown {
			t.Fatalf("expected countdown state, got %s", load.State(testNow))
		}

		load, err = svc.CancelCall(context.Background(), "load-1")
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if load.DispatchAt != nil {
			t.Fatalf("expected dispatch cleared, got %v", load.DispatchAt)
		}
		current, _ := sess.Load("load-1")
		if current.DispatchAt != nil {
			t.Fatalf("expected snapshot reconciled, got %v", current.DispatchAt)
		}
	})

	t.Run("unsupported offset is rejected", func(t *testing.T) {
		svc, writer, _ := newLoadFixture(t, "manifest", openLoad(8))

		_, err := svc.ScheduleCall(context.Background(), "load-1", 7*time.Minute)
		if !errors.Is(err, domain.ErrInvalidOffset) {
			t.Fatalf("expected ErrInvalidOffset, got %v", err)
		}
		if writer.calls != 0 {
			t.Fatalf("expected no remote call, got %d", writer.calls)
		}
	})

	t.Run("second call cannot stack on a pending one", func(t *testing.T) {
		load := openLoad(8)
		at := testNow.Add(15 * time.Minute)
		load.DispatchAt = &at
		svc, _, _ := newLoadFixture(t, "manifest", load)

		_, err := svc.ScheduleCall(context.Background(), "load-1", 5*time.Minute)
		if !errors.Is(err, domain.ErrCallScheduled) {
			t.Fatalf("expected ErrCallScheduled, got %v", err)
		}
	})

	t.Run("cancel after the call elapsed is rejected", func(t *testing.T) {
		load := openLoad(8)
		at := testNow.Add(-1 * time.Minute)
		load.DispatchAt = &at
		svc, _, _ := newLoadFixture(t, "manifest", load)

		_, err := svc.CancelCall(context.Background(), "load-1")
		if !errors.Is(err, domain.ErrDispatchElapsed) {
			t.Fatalf("expected ErrDispatchElapsed, got %v", err)
		}
	})

	t.Run("update load requires the capability", func(t *testing.T) {
		svc, _, _ := newLoadFixture(t, "student", openLoad(8))

		_, err := svc.ScheduleCall(context.Background(), "load-1", 10*time.Minute)
		if !errors.Is(err, domain.ErrForbidden) {
			t.Fatalf("expected ErrForbidden, got %v", err)
		}
	})
}

func TestLoadService_MarkLanded(t *testing.T) {
	t.Parallel()

	dispatchDue := func() domain.Load {
		load := openLoad(8)
		at := testNow.Add(-5 * time.Minute)
		load.DispatchAt = &at
		load.Pilot = &domain.DropzoneUser{ID: "du-pilot"}
		load.LoadMaster = &domain.DropzoneUser{ID: "du-lm"}
		return load
	}

	t.Run("lands a dispatch-due load with full crew", func(t *testing.T) {
		svc, _, sess := newLoadFixture(t, "manifest", dispatchDue())

		load, err := svc.MarkLanded(context.Background(), "load-1")
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if !load.HasLanded {
			t.Fatalf("expected load to be landed")
		}
		current, _ := sess.Load("load-1")
		if current.State(testNow) != domain.LoadStateLanded {
			t.Fatalf("expected landed state, got %s", current.State(testNow))
		}
	})

	t.Run("missing load master fails with MissingCrew", func(t *testing.T) {
		load := dispatchDue()
		load.LoadMaster = nil
		svc, writer, sess := newLoadFixture(t, "manifest", load)

		_, err := svc.MarkLanded(context.Background(), "load-1")
		if !errors.Is(err, domain.ErrMissingCrew) {
			t.Fatalf("expected ErrMissingCrew, got %v", err)
		}
		if writer.calls != 0 {
			t.Fatalf("expected no remote call, got %d", writer.calls)
		}
		current, _ := sess.Load("load-1")
		if current.State(testNow) != domain.LoadStateDispatchDue {
			t.Fatalf("expected state to remain dispatch_due, got %s", current.State(testNow))
		}
	})

	t.Run("missing pilot fails with MissingPilot", func(t *testing.T) {
		load := dispatchDue()
		load.Pilot = nil
		svc, _, _ := newLoadFixture(t, "manifest", load)

		_, err := svc.MarkLanded(context.Background(), "load-1")
		if !errors.Is(err, domain.ErrMissingPilot) {
			t.Fatalf("expected ErrMissingPilot, got %v", err)
		}
	})

	t.Run("landing before the call elapses is rejected", func(t *testing.T) {
		load := dispatchDue()
		at := testNow.Add(5 * time.Minute)
		load.DispatchAt = &at
		svc, _, _ := newLoadFixture(t, "manifest", load)

		_, err := svc.MarkLanded(context.Background(), "load-1")
		if !errors.Is(err, domain.ErrDispatchPending) {
			t.Fatalf("expected ErrDispatchPending, got %v", err)
		}
	})

	t.Run("landed is absorbing", func(t *testing.T) {
		load := dispatchDue()
		load.HasLanded = true
		svc, writer, _ := newLoadFixture(t, "manifest", load)

		if _, err := svc.MarkLanded(context.Background(), "load-1"); !errors.Is(err, domain.ErrLoadClosed) {
			t.Fatalf("expected ErrLoadClosed for landed, got %v", err)
		}
		if _, err := svc.ScheduleCall(context.Background(), "load-1", 10*time.Minute); !errors.Is(err, domain.ErrLoadClosed) {
			t.Fatalf("expected ErrLoadClosed for schedule, got %v", err)
		}
		if _, err := svc.AssignPilot(context.Background(), "load-1", "du-x"); !errors.Is(err, domain.ErrLoadClosed) {
			t.Fatalf("expected ErrLoadClosed for crew change, got %v", err)
		}
		if writer.calls != 0 {
			t.Fatalf("expected no remote call, got %d", writer.calls)
		}
	})
}

func TestLoadService_AssignPlane(t *testing.T) {
	t.Parallel()

	t.Run("smaller plane than current occupants is rejected", func(t *testing.T) {
		load := openLoad(14,
			domain.Slot{ID: "s1", UserID: "a"},
			domain.Slot{ID: "s2", UserID: "b"},
			domain.Slot{ID: "s3", UserID: "c"},
			domain.Slot{ID: "s4", UserID: "d"},
			domain.Slot{ID: "s5", UserID: "e"},
			domain.Slot{ID: "s6", UserID: "f"},
		)
		load.Plane = &domain.Plane{ID: "plane-1", Name: "Caravan", MaxSlots: 14}
		svc, writer, sess := newLoadFixture(t, "manifest", load)

		_, err := svc.AssignPlane(context.Background(), "load-1", domain.Plane{ID: "plane-2", MaxSlots: 4})
		var shortfall domain.CapacityShortfallError
		if !errors.As(err, &shortfall) {
			t.Fatalf("expected CapacityShortfallError, got %v", err)
		}
		if shortfall.Excess != 2 {
			t.Fatalf("expected overflow of 2, got %d", shortfall.Excess)
		}
		if writer.calls != 0 {
			t.Fatalf("expected no remote call, got %d", writer.calls)
		}
		current, _ := sess.Load("load-1")
		if current.Plane == nil || current.Plane.ID != "plane-1" {
			t.Fatalf("expected plane unchanged, got %+v", current.Plane)
		}
	})

	t.Run("reassignment succeeds when everyone fits", func(t *testing.T) {
		load := openLoad(14, domain.Slot{ID: "s1", UserID: "a"})
		load.Plane = &domain.Plane{ID: "plane-1", MaxSlots: 14}
		svc, _, sess := newLoadFixture(t, "manifest", load)

		updated, err := svc.AssignPlane(context.Background(), "load-1", domain.Plane{ID: "plane-2", MaxSlots: 4})
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if updated.Plane == nil || updated.Plane.ID != "plane-2" {
			t.Fatalf("expected plane-2, got %+v", updated.Plane)
		}
		if updated.MaxSlots != 4 {
			t.Fatalf("expected capacity to follow the plane, got %d", updated.MaxSlots)
		}
		current, _ := sess.Load("load-1")
		if current.MaxSlots != 4 {
			t.Fatalf("expected snapshot reconciled, got %d", current.MaxSlots)
		}
	})
}

func TestLoadService_CreateLoad(t *testing.T) {
	t.Parallel()

	t.Run("creates a load sized by the plane", func(t *testing.T) {
		svc, _, sess := newLoadFixture(t, "manifest", openLoad(8))

		load, err := svc.CreateLoad(context.Background(), CreateLoadInput{
			Name:    "Sunset",
			PlaneID: "plane-2",
			IsOpen:  true,
		})
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if load.MaxSlots != 4 {
			t.Fatalf("expected capacity 4 from plane, got %d", load.MaxSlots)
		}
		if _, ok := sess.Load(load.ID); !ok {
			t.Fatalf("expected new load in snapshot")
		}
	})

	t.Run("requires the create-load capability", func(t *testing.T) {
		svc, _, _ := newLoadFixture(t, "fun_jumper", openLoad(8))

		_, err := svc.CreateLoad(context.Background(), CreateLoadInput{PlaneID: "plane-1"})
		if !errors.Is(err, domain.ErrForbidden) {
			t.Fatalf("expected ErrForbidden, got %v", err)
		}
	})

	t.Run("unknown plane fails field validation", func(t *testing.T) {
		svc, writer, _ := newLoadFixture(t, "manifest", openLoad(8))

		_, err := svc.CreateLoad(context.Background(), CreateLoadInput{PlaneID: "plane-9"})
		var fieldErrs domain.FieldErrors
		if !errors.As(err, &fieldErrs) {
			t.Fatalf("expected FieldErrors, got %v", err)
		}
		if fieldErrs.For("plane") == "" {
			t.Fatalf("expected plane field error, got %v", fieldErrs)
		}
		if writer.calls != 0 {
			t.Fatalf("expected no remote call, got %d", writer.calls)
		}
	})
}
