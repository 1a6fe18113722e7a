package domain

// SpyRole is the role label handed to the spy.
const SpyRole = "Spy"

// RoleAssignment is what one player learns when a round starts
type RoleAssignment struct {
	Role     string  `json:"role"`
	Location *string `json:"location"` // nil for the spy
	IsSpy    bool    `json:"isSpy"`
}

// LocationName returns the location or "" for the spy
func (r RoleAssignment) LocationName() string {
	if r.Location == nil {
		return ""
	}
	return *r.Location
}

func spyAssignment() RoleAssignment {
	return RoleAssignment{Role: SpyRole, IsSpy: true}
}

func civilianAssignment(role, location string) RoleAssignment {
	return RoleAssignment{Role: role, Location: &location}
}
