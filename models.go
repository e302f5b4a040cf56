package session

import (
	"time"
)

// Role is a marketplace role a user may hold. It is a defined type so a
// plain string variable cannot slip in where a role is expected.
type Role string

const (
	// RoleBuyer purchases produce on the marketplace
	RoleBuyer Role = "buyer"
	// RoleFarmer lists and sells produce
	RoleFarmer Role = "farmer"
	// RoleOfficer is a field extension officer handling farm visits
	RoleOfficer Role = "officer"
)

// User is the marketplace identity as returned by the backend. Roles is
// never empty for a registered user; the active role is tracked separately
// by SessionStore and must be an element of Roles while authenticated.
type User struct {
	ID              string         `json:"id,omitempty"`
	FullName        string         `json:"full_name,omitempty"`
	Email           string         `json:"email,omitempty"`
	Phone           string         `json:"phone_number,omitempty"`
	Roles           []Role         `json:"roles,omitempty"`
	ProfileImageURL string         `json:"profile_image_url,omitempty"`
	Region          string         `json:"region,omitempty"`
	FarmDetail      *FarmDetail    `json:"farm_detail,omitempty"`
	OfficerDetail   *OfficerDetail `json:"officer_detail,omitempty"`
	DeliveryAddress string         `json:"delivery_address,omitempty"`
	Metadata        map[string]any `json:"metadata,omitempty"`
	CreatedAt       *time.Time     `json:"created_at,omitempty"`
	UpdatedAt       *time.Time     `json:"updated_at,omitempty"`
}

// HasRole reports whether the user holds the given role.
func (u *User) HasRole(role Role) bool {
	if u == nil {
		return false
	}
	for _, r := range u.Roles {
		if r == role {
			return true
		}
	}
	return false
}

// DefaultRole returns the first role in registration/assignment order,
// which is the role a fresh session falls back to when none was chosen.
func (u *User) DefaultRole() Role {
	if u == nil || len(u.Roles) == 0 {
		return ""
	}
	return u.Roles[0]
}

// FarmDetail carries farmer-specific profile attributes.
type FarmDetail struct {
	FarmName  string   `json:"farm_name,omitempty"`
	Location  string   `json:"location,omitempty"`
	SizeAcres float64  `json:"size_acres,omitempty"`
	Crops     []string `json:"crops,omitempty"`
}

// OfficerDetail carries field-officer-specific profile attributes.
type OfficerDetail struct {
	StaffID        string   `json:"staff_id,omitempty"`
	Districts      []string `json:"districts,omitempty"`
	Specialization string   `json:"specialization,omitempty"`
}

// AuthResult is the payload returned by login and register endpoints.
type AuthResult struct {
	Token string `json:"token"`
	User  *User  `json:"user"`
}
