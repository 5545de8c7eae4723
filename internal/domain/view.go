package domain

// Read models: a property with every LocalizedValue resolved for one language.

type PropertyView struct {
	ID               string         `json:"id"`
	Language         string         `json:"language"`
	Name             string         `json:"name"`
	Summary          string         `json:"summary"`
	Status           string         `json:"status"`
	Archived         bool           `json:"archived"`
	Version          string         `json:"version"`
	IsPublished      bool           `json:"isPublished"`
	HeroImages       []ImageView    `json:"heroImages"`
	Facilities       []FacilityView `json:"facilities"`
	Pages            []PageView     `json:"pages"`
	Rentals          []RentalView   `json:"rentals"`
	Theme            Theme          `json:"theme"`
	ListingLanguages []string       `json:"listingLanguages"`
	Guest            *GuestView     `json:"guest,omitempty"`
}

type ImageView struct {
	URL string `json:"url"`
	Alt string `json:"alt"`
}

type FacilityView struct {
	Icon  string `json:"icon,omitempty"`
	Label string `json:"label"`
}

type PageView struct {
	Slug     string        `json:"slug"`
	Title    string        `json:"title"`
	Sections []SectionView `json:"sections"`
}

type SectionView struct {
	Heading string   `json:"heading"`
	Body    string   `json:"body"`
	Images  []string `json:"images,omitempty"`
}

// RentalView never exposes bookings.
type RentalView struct {
	ID           string         `json:"id"`
	Name         string         `json:"name"`
	Rates        []Rate         `json:"rates,omitempty"`
	Availability []DateRange    `json:"availability,omitempty"`
	Conditions   ConditionsView `json:"conditions"`
}

type ConditionsView struct {
	CheckIn  string `json:"checkIn,omitempty"`
	CheckOut string `json:"checkOut,omitempty"`
	MinStay  int    `json:"minStay,omitempty"`
	Notes    string `json:"notes,omitempty"`
}

// GuestView is attached only after a guest link matched a booking.
type GuestView struct {
	GuestNames    []string            `json:"guestNames"`
	CheckIn       string              `json:"checkIn"`
	CheckOut      string              `json:"checkOut"`
	ArrivalStatus string              `json:"arrivalStatus,omitempty"`
	VIP           bool                `json:"vip,omitempty"`
	RepeatVisit   bool                `json:"repeatVisit,omitempty"`
	Wifi          *Wifi               `json:"wifi,omitempty"`
	Equipment     []InstructionView   `json:"equipment,omitempty"`
	HealthSafety  []SafetyContactView `json:"healthSafety,omitempty"`
}

type InstructionView struct {
	Title string `json:"title"`
	Body  string `json:"body"`
}

type SafetyContactView struct {
	Name  string `json:"name"`
	Phone string `json:"phone"`
	Role  string `json:"role"`
}

// PropertySummary is one row of the admin listing.
type PropertySummary struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Status      string `json:"status"`
	Version     string `json:"version"`
	HasDraft    bool   `json:"hasDraft"`
	IsPublished bool   `json:"isPublished"`
}
