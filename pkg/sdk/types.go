package sdk

import (
	"fmt"
	"strings"
)

// Tier is a membership level. It drives business multipliers, not gate outcomes.
type Tier string

const (
	TierGold     Tier = "Gold"
	TierPlatinum Tier = "Platinum"
	TierDiamond  Tier = "Diamond"
)

// Valid reports whether t is one of the known tiers.
func (t Tier) Valid() bool {
	switch t {
	case TierGold, TierPlatinum, TierDiamond:
		return true
	}
	return false
}

// TierProgress tracks points toward the next tier. Target is backend-authoritative.
type TierProgress struct {
	Current  int    `json:"current"`
	Target   int    `json:"target"`
	NextTier string `json:"nextTier"`
}

// MemberProfile is the verified member identity returned by the Member backend.
type MemberProfile struct {
	CIF              string        `json:"cif"`
	Name             string        `json:"name"`
	Email            string        `json:"email"`
	Phone            string        `json:"phone"`
	DateOfBirth      string        `json:"dateOfBirth,omitempty"`
	Address          string        `json:"address,omitempty"`
	Gender           string        `json:"gender,omitempty"`
	Tier             Tier          `json:"memberTier"`
	RegistrationDate string        `json:"registrationDate,omitempty"`
	Status           string        `json:"status,omitempty"`
	ProfilePicture   string        `json:"profilePicture,omitempty"`
	TierProgress     *TierProgress `json:"tierProgress,omitempty"`
}

// Validate enforces the invariants the UI relies on.
func (p MemberProfile) Validate() error {
	if strings.TrimSpace(p.CIF) == "" {
		return fmt.Errorf("%w: profile cif is empty", ErrDataUnavailable)
	}
	if strings.TrimSpace(p.Name) == "" {
		return fmt.Errorf("%w: profile name is empty", ErrDataUnavailable)
	}
	if !p.Tier.Valid() {
		return fmt.Errorf("%w: unknown member tier %q", ErrDataUnavailable, p.Tier)
	}
	if tp := p.TierProgress; tp != nil {
		if tp.Current < 0 || tp.Target < 0 {
			return fmt.Errorf("%w: negative tier progress", ErrDataUnavailable)
		}
		if tp.Current > tp.Target {
			return fmt.Errorf("%w: tier progress %d exceeds target %d", ErrDataUnavailable, tp.Current, tp.Target)
		}
	}
	return nil
}

// OpeningHours is a single open/close pair, "HH:MM".
type OpeningHours struct {
	Open  string `json:"open"`
	Close string `json:"close"`
}

// OperatingHours lists opening hours by day class.
type OperatingHours struct {
	Weekdays OpeningHours  `json:"weekdays"`
	Weekends OpeningHours  `json:"weekends"`
	Holidays *OpeningHours `json:"holidays,omitempty"`
}

// ContactInfo holds the optional store contact channels.
type ContactInfo struct {
	Phone     string `json:"phone,omitempty"`
	Email     string `json:"email,omitempty"`
	Website   string `json:"website,omitempty"`
	Instagram string `json:"instagram,omitempty"`
}

// Coordinates locate a store on the mall map.
type Coordinates struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// StoreLocation is the map position and nearby landmarks.
type StoreLocation struct {
	Coordinates Coordinates `json:"coordinates"`
	Landmarks   []string    `json:"landmarks"`
}

// Store is a tenant of the mall.
type Store struct {
	ID                string         `json:"id"`
	Name              string         `json:"name"`
	Category          string         `json:"category"`
	Subcategory       string         `json:"subcategory"`
	Floor             string         `json:"floor"`
	UnitNumber        string         `json:"unitNumber"`
	Description       string         `json:"description"`
	ImageURL          string         `json:"imageUrl"`
	Gallery           []string       `json:"gallery,omitempty"`
	OperatingHours    OperatingHours `json:"operatingHours"`
	ContactInfo       ContactInfo    `json:"contactInfo"`
	Amenities         []string       `json:"amenities"`
	CurrentPromotions []string       `json:"currentPromotions"`
	Rating            float64        `json:"rating,omitempty"`
	Tags              []string       `json:"tags"`
	Location          StoreLocation  `json:"location"`
	IsVIPPartner      bool           `json:"isVIPPartner"`
	PointsMultiplier  float64        `json:"pointsMultiplier,omitempty"`
}

// Promotion is a mall or store promotion.
type Promotion struct {
	ID               string   `json:"id"`
	Title            string   `json:"title"`
	Description      string   `json:"description"`
	LongDescription  string   `json:"longDescription"`
	ImageURL         string   `json:"imageUrl"`
	Gallery          []string `json:"gallery,omitempty"`
	StartDate        string   `json:"startDate"`
	EndDate          string   `json:"endDate"`
	DiscountType     string   `json:"discountType"`
	DiscountValue    float64  `json:"discountValue"`
	MinimumSpend     float64  `json:"minimumSpend,omitempty"`
	MaximumDiscount  float64  `json:"maximumDiscount,omitempty"`
	ApplicableStores []string `json:"applicableStores"`
	TermsConditions  string   `json:"termsConditions"`
	IsActive         bool     `json:"isActive"`
	IsExpired        bool     `json:"isExpired"`
	Category         string   `json:"category"`
	IsVIPExclusive   bool     `json:"isVIPExclusive"`
	UsageLimit       int      `json:"usageLimit,omitempty"`
	UsedCount        int      `json:"usedCount,omitempty"`
	Priority         int      `json:"priority"`
}

// Event is a scheduled mall event.
type Event struct {
	ID                   string   `json:"id"`
	Title                string   `json:"title"`
	Description          string   `json:"description"`
	ImageURL             string   `json:"imageUrl"`
	StartDate            string   `json:"startDate"`
	EndDate              string   `json:"endDate"`
	Location             string   `json:"location"`
	Category             string   `json:"category"`
	IsVIPExclusive       bool     `json:"isVIPExclusive"`
	RegistrationRequired bool     `json:"registrationRequired"`
	Capacity             int      `json:"capacity,omitempty"`
	RegisteredCount      int      `json:"registeredCount,omitempty"`
	Tags                 []string `json:"tags"`
}

// ExpiringPoints is the next batch of points due to expire.
type ExpiringPoints struct {
	Amount     int    `json:"amount"`
	ExpiryDate string `json:"expiryDate"`
}

// PointsBalance is the member's points summary.
type PointsBalance struct {
	CurrentBalance  int             `json:"currentBalance"`
	TotalEarned     int             `json:"totalEarned"`
	TotalRedeemed   int             `json:"totalRedeemed"`
	ExpiringPoints  *ExpiringPoints `json:"expiringPoints,omitempty"`
	LastTransaction string          `json:"lastTransaction"`
	StreakDays      int             `json:"streakDays,omitempty"`
}

// Validate rejects balances the UI cannot render.
func (b PointsBalance) Validate() error {
	if b.CurrentBalance < 0 || b.TotalEarned < 0 || b.TotalRedeemed < 0 {
		return fmt.Errorf("%w: negative points balance", ErrDataUnavailable)
	}
	return nil
}

// StoreInfo is the short store reference attached to a transaction.
type StoreInfo struct {
	Name string `json:"name"`
	Logo string `json:"logo"`
}

// PointsTransaction is one ledger line.
type PointsTransaction struct {
	ID           string     `json:"id"`
	Date         string     `json:"date"`
	Type         string     `json:"type"`
	Amount       int        `json:"amount"`
	Source       string     `json:"source"`
	Description  string     `json:"description"`
	BalanceAfter int        `json:"balanceAfter"`
	ReceiptID    string     `json:"receiptId,omitempty"`
	StoreInfo    *StoreInfo `json:"storeInfo,omitempty"`
	Multiplier   float64    `json:"multiplier,omitempty"`
}

// Reward is a catalog item redeemable with points.
type Reward struct {
	ID              string `json:"id"`
	Name            string `json:"name"`
	Description     string `json:"description"`
	ImageURL        string `json:"imageUrl"`
	PointsCost      int    `json:"pointsCost"`
	Category        string `json:"category"`
	StockAvailable  int    `json:"stockAvailable"`
	IsLimited       bool   `json:"isLimited"`
	ValidUntil      string `json:"validUntil,omitempty"`
	TermsConditions string `json:"termsConditions"`
	PartnerID       string `json:"partnerId"`
	PartnerName     string `json:"partnerName"`
	PartnerLogo     string `json:"partnerLogo"`
	IsVIPExclusive  bool   `json:"isVIPExclusive"`
	Popularity      int    `json:"popularity,omitempty"`
}

// NotificationAction is what tapping a notification does.
type NotificationAction struct {
	Type   string `json:"type"`
	Target string `json:"target"`
}

// Notification is an in-app member notification.
type Notification struct {
	ID         string              `json:"id"`
	Title      string              `json:"title"`
	Message    string              `json:"message"`
	Type       string              `json:"type"`
	Timestamp  string              `json:"timestamp"`
	IsRead     bool                `json:"isRead"`
	ActionData *NotificationAction `json:"actionData,omitempty"`
	ImageURL   string              `json:"imageUrl,omitempty"`
}

// LoginResult is the payload of a successful login.
type LoginResult struct {
	Token   AuthToken     `json:"token"`
	Profile MemberProfile `json:"profile"`
}
