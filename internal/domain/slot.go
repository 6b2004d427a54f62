package domain

import "time"

// Slot is one occupied seat on a load, tied to one dropzone user and one
// activity configuration. Slots created together share a group number.
type Slot struct {
	ID          string
	LoadID      string
	UserID      string
	UserName    string
	GroupNumber int

	JumpType   *JumpType
	TicketType *TicketType
	Extras     []Extra

	// Passenger fields are set when the slot represents a tandem or guest
	// booked by someone else.
	PassengerName       string
	PassengerExitWeight float64

	ExitWeight float64
	CreatedAt  time.Time
}

// ActivityConfig is the jump configuration shared by every member of a
// manifest request.
type ActivityConfig struct {
	JumpTypeID   string
	TicketTypeID string
	ExtraIDs     []string
}

// JumpType categorizes what the jumper intends to do on the load.
type JumpType struct {
	ID   string
	Name string
}

// TicketType determines altitude and pricing for a slot.
type TicketType struct {
	ID       string
	Name     string
	Altitude int
	IsTandem bool
	Cost     float64
}

// Extra is an optional add-on purchased with a ticket.
type Extra struct {
	ID   string
	Name string
	Cost float64
}
