package domain

// Role is the caller's account type as asserted by the identity provider.
type Role string

const (
	RoleVolunteer    Role = "volunteer"
	RoleOrganization Role = "organization"
	RoleAdmin        Role = "admin"
)

// IsValid checks if the role is one of the supported enum values.
func (r Role) IsValid() bool {
	switch r {
	case RoleVolunteer, RoleOrganization, RoleAdmin:
		return true
	}
	return false
}

func (r Role) String() string {
	return string(r)
}

// Actor is the trusted identity of the caller. It is resolved at the transport
// boundary and passed explicitly into every core operation.
//
// OrganizationID is only meaningful for RoleOrganization callers; it names the
// organization the caller acts for.
type Actor struct {
	UserID         UserID
	Role           Role
	OrganizationID OrganizationID
	Name           string
	Email          string
}

// IsAuthenticated reports whether the actor carries a usable identity.
func (a Actor) IsAuthenticated() bool {
	return !a.UserID.IsNil() && a.Role.IsValid()
}

func (a Actor) HasRole(role Role) bool {
	return a.IsAuthenticated() && a.Role == role
}

// ActsFor reports whether the actor is an organization account acting for org.
func (a Actor) ActsFor(org OrganizationID) bool {
	return a.HasRole(RoleOrganization) && !a.OrganizationID.IsNil() && a.OrganizationID == org
}
