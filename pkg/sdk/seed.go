package sdk

// Seed data is served when neither the network nor the cache can answer. Every call
// returns a fresh copy so callers may modify what they get.

func SeedStores() []Store {
	return []Store{
		{
			ID:          "1",
			Name:        "Zara",
			Category:    "Fashion",
			Subcategory: "Clothing",
			Floor:       "Ground Floor",
			UnitNumber:  "G-101",
			Description: "International fashion retailer offering trendy clothing for men, women, and children.",
			ImageURL:    "/zara-fashion-store.png",
			Gallery:     []string{"/retail-store-interior.png", "/placeholder-ets53.png"},
			OperatingHours: OperatingHours{
				Weekdays: OpeningHours{Open: "10:00", Close: "22:00"},
				Weekends: OpeningHours{Open: "10:00", Close: "23:00"},
			},
			ContactInfo:       ContactInfo{Phone: "+62-21-5555-0101", Website: "https://zara.com", Instagram: "@zara"},
			Amenities:         []string{"Air Conditioning", "Fitting Rooms", "Credit Card"},
			CurrentPromotions: []string{"Up to 50% off selected items"},
			Rating:            4.5,
			Tags:              []string{"Fashion", "Trendy", "International"},
			Location: StoreLocation{
				Coordinates: Coordinates{X: 100, Y: 150},
				Landmarks:   []string{"Near Main Entrance", "Opposite Food Court"},
			},
			IsVIPPartner:     true,
			PointsMultiplier: 2,
		},
		{
			ID:          "2",
			Name:        "Starbucks",
			Category:    "Food & Dining",
			Subcategory: "Coffee",
			Floor:       "1st Floor",
			UnitNumber:  "1-205",
			Description: "Premium coffee chain serving specialty coffee drinks and light meals.",
			ImageURL:    "/bustling-coffee-shop.png",
			OperatingHours: OperatingHours{
				Weekdays: OpeningHours{Open: "07:00", Close: "22:00"},
				Weekends: OpeningHours{Open: "07:00", Close: "23:00"},
			},
			ContactInfo:       ContactInfo{Phone: "+62-21-5555-0205"},
			Amenities:         []string{"WiFi", "Air Conditioning", "Takeaway"},
			CurrentPromotions: []string{"Buy 2 Get 1 Free on selected drinks"},
			Rating:            4.3,
			Tags:              []string{"Coffee", "Premium", "WiFi"},
			Location: StoreLocation{
				Coordinates: Coordinates{X: 200, Y: 100},
				Landmarks:   []string{"Near Escalator", "Food Court Area"},
			},
			IsVIPPartner:     true,
			PointsMultiplier: 1.5,
		},
		{
			ID:          "3",
			Name:        "Samsung Store",
			Category:    "Electronics",
			Subcategory: "Mobile & Gadgets",
			Floor:       "2nd Floor",
			UnitNumber:  "2-301",
			Description: "Official Samsung store featuring the latest smartphones, tablets, and accessories.",
			ImageURL:    "/samsung-electronics-store.png",
			OperatingHours: OperatingHours{
				Weekdays: OpeningHours{Open: "10:00", Close: "21:00"},
				Weekends: OpeningHours{Open: "10:00", Close: "22:00"},
			},
			ContactInfo:       ContactInfo{Phone: "+62-21-5555-0301", Website: "https://samsung.com/id"},
			Amenities:         []string{"Product Demo", "Technical Support", "Warranty Service"},
			CurrentPromotions: []string{"Trade-in program available"},
			Rating:            4.4,
			Tags:              []string{"Electronics", "Smartphones", "Official Store"},
			Location: StoreLocation{
				Coordinates: Coordinates{X: 150, Y: 200},
				Landmarks:   []string{"Electronics Section", "Near Cinema"},
			},
		},
	}
}

// SeedStore returns the seeded store with id, or nil.
func SeedStore(id string) *Store {
	for _, s := range SeedStores() {
		if s.ID == id {
			return &s
		}
	}
	return nil
}

func SeedPromotions() []Promotion {
	return []Promotion{
		{
			ID:               "1",
			Title:            "Weekend Fashion Sale",
			Description:      "Up to 70% off on selected fashion items",
			LongDescription:  "Enjoy massive discounts on premium fashion brands this weekend. Valid for all participating fashion stores.",
			ImageURL:         "/fashion-sale.png",
			StartDate:        "2024-01-15T00:00:00Z",
			EndDate:          "2024-01-21T23:59:59Z",
			DiscountType:     "Percentage",
			DiscountValue:    70,
			MinimumSpend:     500000,
			ApplicableStores: []string{"1", "4", "7"},
			TermsConditions:  "Valid for selected items only. Cannot be combined with other offers.",
			IsActive:         true,
			Category:         "Fashion",
			Priority:         1,
		},
		{
			ID:               "2",
			Title:            "VIP Double Points",
			Description:      "Earn 2x points on all purchases",
			LongDescription:  "VIP members get double points on every purchase made during this promotion period.",
			ImageURL:         "/vip-double-points.png",
			StartDate:        "2024-01-10T00:00:00Z",
			EndDate:          "2024-01-31T23:59:59Z",
			DiscountType:     "Points",
			DiscountValue:    2,
			ApplicableStores: []string{},
			TermsConditions:  "Valid for VIP members only. Applies to all participating stores.",
			IsActive:         true,
			Category:         "Points",
			IsVIPExclusive:   true,
			Priority:         2,
		},
	}
}

func SeedEvents() []Event {
	return []Event{
		{
			ID:                   "1",
			Title:                "Fashion Week Showcase",
			Description:          "Latest fashion trends from top designers",
			ImageURL:             "/fashion-week-event.png",
			StartDate:            "2024-01-25T19:00:00Z",
			EndDate:              "2024-01-25T21:00:00Z",
			Location:             "Main Atrium",
			Category:             "Fashion",
			RegistrationRequired: true,
			Capacity:             200,
			RegisteredCount:      150,
			Tags:                 []string{"Fashion", "Showcase", "Trends"},
		},
		{
			ID:                   "2",
			Title:                "VIP Wine Tasting",
			Description:          "Exclusive wine tasting event for VIP members",
			ImageURL:             "/wine-tasting.png",
			StartDate:            "2024-01-30T18:00:00Z",
			EndDate:              "2024-01-30T20:00:00Z",
			Location:             "VIP Lounge",
			Category:             "Food",
			IsVIPExclusive:       true,
			RegistrationRequired: true,
			Capacity:             50,
			RegisteredCount:      35,
			Tags:                 []string{"VIP", "Wine", "Exclusive"},
		},
	}
}

func SeedPointsBalance() PointsBalance {
	return PointsBalance{
		CurrentBalance:  15750,
		TotalEarned:     45200,
		TotalRedeemed:   29450,
		ExpiringPoints:  &ExpiringPoints{Amount: 2500, ExpiryDate: "2024-03-15T23:59:59Z"},
		LastTransaction: "2024-01-10T14:30:00Z",
		StreakDays:      7,
	}
}

func SeedTransactions() []PointsTransaction {
	return []PointsTransaction{
		{
			ID:           "1",
			Date:         "2024-01-10T14:30:00Z",
			Type:         "Earn",
			Amount:       250,
			Source:       "Purchase",
			Description:  "Shopping at Zara",
			BalanceAfter: 15750,
			ReceiptID:    "RCP-001",
			StoreInfo:    &StoreInfo{Name: "Zara", Logo: "/generic-fashion-logo.png"},
			Multiplier:   2,
		},
		{
			ID:           "2",
			Date:         "2024-01-09T16:45:00Z",
			Type:         "Earn",
			Amount:       150,
			Source:       "Purchase",
			Description:  "Coffee at Starbucks",
			BalanceAfter: 15500,
			ReceiptID:    "RCP-002",
			StoreInfo:    &StoreInfo{Name: "Starbucks", Logo: "/generic-coffee-logo.png"},
			Multiplier:   1.5,
		},
		{
			ID:           "3",
			Date:         "2024-01-08T12:20:00Z",
			Type:         "Redeem",
			Amount:       -500,
			Source:       "Reward",
			Description:  "Free Coffee Voucher",
			BalanceAfter: 15350,
			Multiplier:   1,
		},
	}
}

func SeedRewards() []Reward {
	return []Reward{
		{
			ID:              "1",
			Name:            "Free Coffee Voucher",
			Description:     "Get a free regular coffee at participating cafes",
			ImageURL:        "/coffee-voucher-reward.png",
			PointsCost:      500,
			Category:        "Food & Beverage",
			StockAvailable:  100,
			TermsConditions: "Valid for 30 days from redemption. One per customer.",
			PartnerID:       "2",
			PartnerName:     "Starbucks",
			PartnerLogo:     "/generic-coffee-logo.png",
			Popularity:      85,
		},
		{
			ID:              "2",
			Name:            "10% Discount Voucher",
			Description:     "10% off your next fashion purchase",
			ImageURL:        "/placeholder-bkxrj.png",
			PointsCost:      1000,
			Category:        "Fashion",
			StockAvailable:  50,
			IsLimited:       true,
			ValidUntil:      "2024-02-29T23:59:59Z",
			TermsConditions: "Minimum purchase of Rp 500,000. Valid at participating fashion stores.",
			PartnerID:       "1",
			PartnerName:     "Zara",
			PartnerLogo:     "/generic-fashion-logo.png",
			IsVIPExclusive:  true,
			Popularity:      92,
		},
		{
			ID:              "3",
			Name:            "Movie Ticket",
			Description:     "Free movie ticket for any show",
			ImageURL:        "/placeholder.svg?height=150&width=200",
			PointsCost:      2000,
			Category:        "Entertainment",
			StockAvailable:  25,
			IsLimited:       true,
			ValidUntil:      "2024-01-31T23:59:59Z",
			TermsConditions: "Valid for regular seats only. Subject to availability.",
			PartnerID:       "5",
			PartnerName:     "Cinema XXI",
			PartnerLogo:     "/placeholder.svg?height=40&width=40",
			Popularity:      78,
		},
	}
}

func SeedNotifications() []Notification {
	return []Notification{
		{
			ID:         "1",
			Title:      "Points Earned!",
			Message:    "You earned 250 points from your purchase at Zara",
			Type:       "points",
			Timestamp:  "2024-01-10T14:30:00Z",
			ActionData: &NotificationAction{Type: "navigate", Target: "/me"},
			ImageURL:   "/generic-fashion-logo.png",
		},
		{
			ID:         "2",
			Title:      "New VIP Promotion",
			Message:    "Exclusive 30% off at participating fashion stores this weekend",
			Type:       "promotion",
			Timestamp:  "2024-01-10T10:00:00Z",
			ActionData: &NotificationAction{Type: "navigate", Target: "/explore"},
		},
		{
			ID:         "3",
			Title:      "Fashion Week Event",
			Message:    "Don't miss the fashion showcase tomorrow at 7 PM",
			Type:       "event",
			Timestamp:  "2024-01-09T16:00:00Z",
			IsRead:     true,
			ActionData: &NotificationAction{Type: "navigate", Target: "/events"},
		},
		{
			ID:         "4",
			Title:      "Receipt Approved",
			Message:    "Your Starbucks receipt has been approved. 150 points added!",
			Type:       "receipt_update",
			Timestamp:  "2024-01-09T12:15:00Z",
			IsRead:     true,
			ActionData: &NotificationAction{Type: "navigate", Target: "/me"},
		},
	}
}

// DemoProfile is the profile of the demo member served by the twin backends.
func DemoProfile(cif string) MemberProfile {
	return MemberProfile{
		CIF:              cif,
		Name:             "John Doe",
		Email:            "john.doe@email.com",
		Phone:            "+62812345678",
		DateOfBirth:      "1990-01-15",
		Address:          "Jakarta, Indonesia",
		Gender:           "L",
		Tier:             TierGold,
		RegistrationDate: "2023-06-15T00:00:00Z",
		Status:           "Active",
		TierProgress:     &TierProgress{Current: 15750, Target: 25000, NextTier: "Platinum"},
	}
}
