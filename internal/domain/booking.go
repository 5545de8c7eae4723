package domain

// Booking belongs to one rental unit. BookingID + DateOfBooking form the guest-link token.
type Booking struct {
	ID                string   `json:"id"`
	GuestNames        []string `json:"guestNames,omitempty"`
	CheckIn           string   `json:"checkIn"`
	CheckOut          string   `json:"checkOut"`
	Source            string   `json:"source,omitempty"`
	BookingID         string   `json:"bookingId"`
	DateOfBooking     string   `json:"dateOfBooking"`
	PreferredLanguage string   `json:"preferredLanguage,omitempty"`
	ArrivalStatus     string   `json:"arrivalStatus,omitempty"`
	VIP               bool     `json:"vip,omitempty"`
	RepeatVisit       bool     `json:"repeatVisit,omitempty"`
}
