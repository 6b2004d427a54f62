package domain

// Dropzone is the operational context a session is scoped to.
type Dropzone struct {
	ID             string
	Name           string
	IsPublic       bool
	CreditSystem   bool
	PrimaryColor   string
	SecondaryColor string

	Planes      []Plane
	TicketTypes []TicketType
	JumpTypes   []JumpType
	Extras      []Extra
}

// SetupComplete reports whether the dropzone has the minimum configuration
// required before any load can be manifested.
func (d Dropzone) SetupComplete() bool {
	return len(d.Planes) > 0 && len(d.TicketTypes) > 0
}
