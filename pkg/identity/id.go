package identity

// ID names a user. The zero value is the guest.
type ID string

const Guest ID = ""

func (id ID) IsGuest() bool { return id == Guest }

func (id ID) String() string { return string(id) }

// Scope returns base for the guest and base_<id> otherwise.
func (id ID) Scope(base string) string {
	if id.IsGuest() {
		return base
	}
	return base + "_" + string(id)
}
