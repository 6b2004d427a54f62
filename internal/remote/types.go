package remote

import (
	"time"

	"github.com/Amnesthesia/dz-app/internal/domain"
)

// Wire shapes for the manifest server API. Mutation responses share one
// envelope carrying the authoritative record plus any errors.

type envelope struct {
	Load           *loadPayload  `json:"load,omitempty"`
	Slot           *slotPayload  `json:"slot,omitempty"`
	CreatedSlotIDs []string      `json:"created_slot_ids,omitempty"`
	GroupNumber    int           `json:"group_number,omitempty"`
	Errors         []string      `json:"errors,omitempty"`
	FieldErrors    []fieldError  `json:"field_errors,omitempty"`
}

type fieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

type loadPayload struct {
	ID         string        `json:"id"`
	Name       string        `json:"name"`
	LoadNumber int           `json:"load_number"`
	MaxSlots   int           `json:"max_slots"`
	IsOpen     bool          `json:"is_open"`
	HasLanded  bool          `json:"has_landed"`
	DispatchAt *time.Time    `json:"dispatch_at,omitempty"`
	Plane      *planePayload `json:"plane,omitempty"`
	Pilot      *userPayload  `json:"pilot,omitempty"`
	GCA        *userPayload  `json:"gca,omitempty"`
	LoadMaster *userPayload  `json:"load_master,omitempty"`
	Slots      []slotPayload `json:"slots"`
	CreatedAt  time.Time     `json:"created_at"`
}

type planePayload struct {
	ID           string `json:"id"`
	Name         string `json:"name"`
	Registration string `json:"registration"`
	MaxSlots     int    `json:"max_slots"`
}

type slotPayload struct {
	ID                  string          `json:"id"`
	LoadID              string          `json:"load_id"`
	UserID              string          `json:"user_id"`
	UserName            string          `json:"user_name"`
	GroupNumber         int             `json:"group_number,omitempty"`
	JumpType            *namedPayload   `json:"jump_type,omitempty"`
	TicketType          *ticketPayload  `json:"ticket_type,omitempty"`
	Extras              []extraPayload  `json:"extras,omitempty"`
	PassengerName       string          `json:"passenger_name,omitempty"`
	PassengerExitWeight float64         `json:"passenger_exit_weight,omitempty"`
	ExitWeight          float64         `json:"exit_weight,omitempty"`
	CreatedAt           time.Time       `json:"created_at"`
}

type namedPayload struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

type ticketPayload struct {
	ID       string  `json:"id"`
	Name     string  `json:"name"`
	Altitude int     `json:"altitude"`
	IsTandem bool    `json:"is_tandem"`
	Cost     float64 `json:"cost"`
}

type extraPayload struct {
	ID   string  `json:"id"`
	Name string  `json:"name"`
	Cost float64 `json:"cost"`
}

type userPayload struct {
	ID      string          `json:"id"`
	UserID  string          `json:"user_id"`
	Name    string          `json:"name"`
	Role    string          `json:"role"`
	Credits float64         `json:"credits"`
	Profile *profilePayload `json:"profile,omitempty"`
}

type profilePayload struct {
	HasLicense      bool       `json:"has_license"`
	HasRig          bool       `json:"has_rig"`
	HasExitWeight   bool       `json:"has_exit_weight"`
	RigInspected    bool       `json:"rig_inspected"`
	MembershipUntil *time.Time `json:"membership_expires_at,omitempty"`
	RepackDueAt     *time.Time `json:"repack_expires_at,omitempty"`
	Credits         float64    `json:"credits"`
	ExitWeight      float64    `json:"exit_weight"`
}

type dropzonePayload struct {
	ID             string          `json:"id"`
	Name           string          `json:"name"`
	IsPublic       bool            `json:"is_public"`
	CreditSystem   bool            `json:"credit_system"`
	PrimaryColor   string          `json:"primary_color"`
	SecondaryColor string          `json:"secondary_color"`
	Planes         []planePayload  `json:"planes"`
	TicketTypes    []ticketPayload `json:"ticket_types"`
	JumpTypes      []namedPayload  `json:"jump_types"`
	Extras         []extraPayload  `json:"extras"`
	CurrentUser    *userPayload    `json:"current_user,omitempty"`
}

type loadListPayload struct {
	Loads []loadPayload `json:"loads"`
}

type createLoadBody struct {
	DropzoneID string `json:"dropzone_id"`
	Name       string `json:"name,omitempty"`
	PlaneID    string `json:"plane_id"`
	MaxSlots   int    `json:"max_slots"`
	IsOpen     bool   `json:"is_open"`
}

type updateLoadBody struct {
	PilotID       *string    `json:"pilot_id,omitempty"`
	GCAID         *string    `json:"gca_id,omitempty"`
	LoadMasterID  *string    `json:"load_master_id,omitempty"`
	PlaneID       *string    `json:"plane_id,omitempty"`
	DispatchAt    *time.Time `json:"dispatch_at,omitempty"`
	ClearDispatch bool       `json:"clear_dispatch,omitempty"`
	HasLanded     *bool      `json:"has_landed,omitempty"`
}

type createSlotsBody struct {
	JumpTypeID   string         `json:"jump_type_id"`
	TicketTypeID string         `json:"ticket_type_id"`
	ExtraIDs     []string       `json:"extra_ids,omitempty"`
	UserGroup    []slotUserBody `json:"user_group"`
}

type slotUserBody struct {
	UserID              string  `json:"user_id"`
	PassengerName       string  `json:"passenger_name,omitempty"`
	PassengerExitWeight float64 `json:"passenger_exit_weight,omitempty"`
}

type updateSlotBody struct {
	JumpTypeID   string   `json:"jump_type_id"`
	TicketTypeID string   `json:"ticket_type_id"`
	ExtraIDs     []string `json:"extra_ids,omitempty"`
}

func (p loadPayload) toDomain() domain.Load {
	l := domain.Load{
		ID:         p.ID,
		Name:       p.Name,
		LoadNumber: p.LoadNumber,
		MaxSlots:   p.MaxSlots,
		IsOpen:     p.IsOpen,
		HasLanded:  p.HasLanded,
		DispatchAt: p.DispatchAt,
		CreatedAt:  p.CreatedAt,
	}
	if p.Plane != nil {
		plane := p.Plane.toDomain()
		l.Plane = &plane
	}
	if p.Pilot != nil {
		u := p.Pilot.toDomain()
		l.Pilot = &u
	}
	if p.GCA != nil {
		u := p.GCA.toDomain()
		l.GCA = &u
	}
	if p.LoadMaster != nil {
		u := p.LoadMaster.toDomain()
		l.LoadMaster = &u
	}
	for _, sp := range p.Slots {
		l.Slots = append(l.Slots, sp.toDomain())
	}
	return l
}

func (p planePayload) toDomain() domain.Plane {
	return domain.Plane{
		ID:           p.ID,
		Name:         p.Name,
		Registration: p.Registration,
		MaxSlots:     p.MaxSlots,
	}
}

func (p slotPayload) toDomain() domain.Slot {
	s := domain.Slot{
		ID:                  p.ID,
		LoadID:              p.LoadID,
		UserID:              p.UserID,
		UserName:            p.UserName,
		GroupNumber:         p.GroupNumber,
		PassengerName:       p.PassengerName,
		PassengerExitWeight: p.PassengerExitWeight,
		ExitWeight:          p.ExitWeight,
		CreatedAt:           p.CreatedAt,
	}
	if p.JumpType != nil {
		s.JumpType = &domain.JumpType{ID: p.JumpType.ID, Name: p.JumpType.Name}
	}
	if p.TicketType != nil {
		t := p.TicketType.toDomain()
		s.TicketType = &t
	}
	for _, e := range p.Extras {
		s.Extras = append(s.Extras, domain.Extra{ID: e.ID, Name: e.Name, Cost: e.Cost})
	}
	return s
}

func (p ticketPayload) toDomain() domain.TicketType {
	return domain.TicketType{
		ID:       p.ID,
		Name:     p.Name,
		Altitude: p.Altitude,
		IsTandem: p.IsTandem,
		Cost:     p.Cost,
	}
}

func (p userPayload) toDomain() domain.DropzoneUser {
	u := domain.DropzoneUser{
		ID:      p.ID,
		UserID:  p.UserID,
		Name:    p.Name,
		Role:    p.Role,
		Credits: p.Credits,
	}
	if p.Profile != nil {
		u.Profile = domain.ParticipantProfile{
			HasLicense:      p.Profile.HasLicense,
			HasRig:          p.Profile.HasRig,
			HasExitWeight:   p.Profile.HasExitWeight,
			RigInspected:    p.Profile.RigInspected,
			MembershipUntil: p.Profile.MembershipUntil,
			RepackDueAt:     p.Profile.RepackDueAt,
			Credits:         p.Profile.Credits,
			ExitWeight:      p.Profile.ExitWeight,
		}
	}
	return u
}

func (p dropzonePayload) toDomain() domain.Dropzone {
	dz := domain.Dropzone{
		ID:             p.ID,
		Name:           p.Name,
		IsPublic:       p.IsPublic,
		CreditSystem:   p.CreditSystem,
		PrimaryColor:   p.PrimaryColor,
		SecondaryColor: p.SecondaryColor,
	}
	for _, pl := range p.Planes {
		dz.Planes = append(dz.Planes, pl.toDomain())
	}
	for _, t := range p.TicketTypes {
		dz.TicketTypes = append(dz.TicketTypes, t.toDomain())
	}
	for _, j := range p.JumpTypes {
		dz.JumpTypes = append(dz.JumpTypes, domain.JumpType{ID: j.ID, Name: j.Name})
	}
	for _, e := range p.Extras {
		dz.Extras = append(dz.Extras, domain.Extra{ID: e.ID, Name: e.Name, Cost: e.Cost})
	}
	return dz
}
