package sdk

// GuestID identifies a device. It is generated once and never expires.
type GuestID string

// AuthToken is the opaque bearer string issued by the Member backend.
type AuthToken string

// Principal is the identity driving authorization decisions.
//
// It is a closed union: the only implementations are Guest and Member. Values are
// immutable after construction; the session swaps whole values on every transition.
type Principal interface {
	// Kind reports which variant is active.
	Kind() PrincipalKind
	// GuestID is the device guest id. Members keep the id of the device they logged in on.
	GuestID() GuestID

	sealed()
}

// PrincipalKind differentiates guests and members.
type PrincipalKind string

const (
	PrincipalGuest  PrincipalKind = "guest"
	PrincipalMember PrincipalKind = "member"
)

// Guest is an anonymous visitor attributed by device guest id.
type Guest struct {
	ID GuestID
}

func (g Guest) Kind() PrincipalKind { return PrincipalGuest }
func (g Guest) GuestID() GuestID    { return g.ID }
func (Guest) sealed()               {}

// Member is a verified VIP member.
type Member struct {
	Profile MemberProfile
	Token   AuthToken
	Device  GuestID
}

func (m Member) Kind() PrincipalKind { return PrincipalMember }
func (m Member) GuestID() GuestID    { return m.Device }
func (Member) sealed()               {}

// AsMember returns the Member variant when p is one.
func AsMember(p Principal) (Member, bool) {
	m, ok := p.(Member)
	return m, ok
}

// IsMember reports whether p is an authenticated member.
func IsMember(p Principal) bool {
	_, ok := AsMember(p)
	return ok
}
