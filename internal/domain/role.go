package domain

import "fmt"

// Role is the closed set of user roles. Access checks switch on it
// exhaustively; free-form role strings are rejected at the boundary.
type Role string

const (
	// RoleTechnician manages users, test items and test results.
	RoleTechnician Role = "technician"
	// RolePatient views only their own results and summary.
	RolePatient Role = "patient"
)

// ParseRole converts an external role string into a Role, rejecting
// anything outside the two known variants.
func ParseRole(s string) (Role, error) {
	switch Role(s) {
	case RoleTechnician:
		return RoleTechnician, nil
	case RolePatient:
		return RolePatient, nil
	default:
		return "", fmt.Errorf("unknown role %q", s)
	}
}

func (r Role) String() string { return string(r) }

// Valid reports whether the role is one of the two known variants.
func (r Role) Valid() bool {
	return r == RoleTechnician || r == RolePatient
}
