package sdk

import "fmt"

// Capability names a membership-gated feature.
type Capability string

const (
	CapScanReceipt       Capability = "scan-receipt"
	CapRedeemReward      Capability = "redeem-reward"
	CapViewProfile       Capability = "view-profile"
	CapViewNotifications Capability = "view-notifications"
)

// Capabilities lists every gated feature.
func Capabilities() []Capability {
	return []Capability{CapScanReceipt, CapRedeemReward, CapViewProfile, CapViewNotifications}
}

// ParseCapability validates a capability name.
func ParseCapability(name string) (Capability, error) {
	for _, c := range Capabilities() {
		if string(c) == name {
			return c, nil
		}
	}
	return "", &ValidationError{Field: "capability", Reason: fmt.Sprintf("unknown capability %q", name)}
}

// Decision is the gate outcome a consumer renders.
type Decision int

const (
	// Deny is a hard block with no preview.
	Deny Decision = iota
	// Teaser renders a blurred preview with an upgrade prompt.
	Teaser
	// Allow renders the restricted content.
	Allow
)

func (d Decision) String() string {
	switch d {
	case Allow:
		return "allow"
	case Teaser:
		return "teaser"
	default:
		return "deny"
	}
}

// CanAccess decides whether principal may use capability. teaser tells the gate the
// caller can render a preview for guests.
//
// Every capability is VIP-wide: any member tier is allowed. Tier differences are
// business rules on the backend, not gate outcomes.
func CanAccess(principal Principal, capability Capability, teaser bool) Decision {
	if !capability.known() {
		return Deny
	}
	switch principal.(type) {
	case Member:
		return Allow
	case Guest:
		if teaser {
			return Teaser
		}
	}
	return Deny
}

// DefaultTeaser reports whether the stock views for capability show a guest preview.
func DefaultTeaser(capability Capability) bool {
	return capability.known()
}

func (c Capability) known() bool {
	switch c {
	case CapScanReceipt, CapRedeemReward, CapViewProfile, CapViewNotifications:
		return true
	}
	return false
}
