package models

// Role is an identity's privilege tier. Tiers form a total order and are
// compared through rank, never through declaration position.
type Role string

const (
	RoleUser      Role = "USER"
	RoleProUser   Role = "PRO_USER"
	RoleModerator Role = "MODERATOR"
	RoleAdmin     Role = "ADMIN"
)

var roleRank = map[Role]int{
	RoleUser:      0,
	RoleProUser:   1,
	RoleModerator: 2,
	RoleAdmin:     3,
}

// Known reports whether r is one of the defined tiers.
func (r Role) Known() bool {
	_, ok := roleRank[r]
	return ok
}

// AtLeast reports whether r sits at or above min in the tier order.
// An unknown tier is always below any known minimum.
func (r Role) AtLeast(min Role) bool {
	rr, ok := roleRank[r]
	if !ok {
		return false
	}
	mr, ok := roleRank[min]
	if !ok {
		return false
	}
	return rr >= mr
}
