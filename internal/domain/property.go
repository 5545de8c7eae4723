package domain

import (
	"fmt"
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

const (
	StatusRental = "rental"
	StatusSale   = "sale"
)

// Property is one versioned property record as stored in a published, draft or archive slot.
type Property struct {
	ID               string         `json:"id"`
	Name             LocalizedValue `json:"name"`
	Summary          LocalizedValue `json:"summary"`
	Status           string         `json:"status"`
	Archived         bool           `json:"archived"`
	Version          string         `json:"version"`
	IsPublished      bool           `json:"isPublished"`
	HeroImages       []HeroImage    `json:"heroImages,omitempty"`
	Facilities       []Facility     `json:"facilities,omitempty"`
	Pages            []Page         `json:"pages,omitempty"`
	Rentals          []RentalUnit   `json:"rentals,omitempty"`
	GuestInfo        *GuestInfo     `json:"guestInfo,omitempty"`
	ThemeName        string         `json:"themeName,omitempty"`
	Theme            *Theme         `json:"theme,omitempty"`
	ListingLanguages []string       `json:"listingLanguages,omitempty"`
}

type HeroImage struct {
	URL string         `json:"url"`
	Alt LocalizedValue `json:"alt"`
}

type Facility struct {
	Icon  string         `json:"icon,omitempty"`
	Label LocalizedValue `json:"label"`
}

type Page struct {
	Slug     string         `json:"slug"`
	Title    LocalizedValue `json:"title"`
	Sections []Section      `json:"sections,omitempty"`
}

type Section struct {
	Heading LocalizedValue `json:"heading"`
	Body    LocalizedValue `json:"body"`
	Images  []string       `json:"images,omitempty"`
}

type RentalUnit struct {
	ID           string         `json:"id"`
	Name         LocalizedValue `json:"name"`
	Bookings     []Booking      `json:"bookings,omitempty"`
	Rates        []Rate         `json:"rates,omitempty"`
	Availability []DateRange    `json:"availability,omitempty"`
	Conditions   Conditions     `json:"conditions"`
}

type Rate struct {
	From     string  `json:"from"`
	To       string  `json:"to"`
	Nightly  float64 `json:"nightly"`
	Currency string  `json:"currency"`
}

type DateRange struct {
	From string `json:"from"`
	To   string `json:"to"`
}

type Conditions struct {
	CheckIn  string         `json:"checkIn,omitempty"`
	CheckOut string         `json:"checkOut,omitempty"`
	MinStay  int            `json:"minStay,omitempty"`
	Notes    LocalizedValue `json:"notes"`
}

// GuestInfo is only shown to guests arriving through a matched guest link.
type GuestInfo struct {
	Wifi         *Wifi           `json:"wifi,omitempty"`
	Equipment    []Instruction   `json:"equipment,omitempty"`
	HealthSafety []SafetyContact `json:"healthSafety,omitempty"`
}

type Wifi struct {
	Network  string `json:"network"`
	Password string `json:"password"`
}

type Instruction struct {
	Title LocalizedValue `json:"title"`
	Body  LocalizedValue `json:"body"`
}

type SafetyContact struct {
	Name  string         `json:"name"`
	Phone string         `json:"phone"`
	Role  LocalizedValue `json:"role"`
}

var idRe = regexp.MustCompile(`^[a-z0-9][a-z0-9_-]*$`)

// ValidateID checks a property id is a usable slug (it doubles as a directory name).
func ValidateID(id string) error {
	if !idRe.MatchString(id) {
		return fmt.Errorf("%w: property id %q must be a lowercase slug", ErrInvalidData, id)
	}
	return nil
}

func ValidateStatus(status string) error {
	switch status {
	case StatusRental, StatusSale:
		return nil
	}
	return fmt.Errorf("%w: status %q must be %q or %q", ErrInvalidData, status, StatusRental, StatusSale)
}

var (
	nonSlug    = regexp.MustCompile(`[^a-z0-9_]+`)
	underscore = regexp.MustCompile(`_{2,}`)
)

// Slugify turns a display name into a property id: "Villa Élise" -> "villa_elise".
func Slugify(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	out, _, _ := transform.String(t, s)
	out = strings.ToLower(out)
	out = nonSlug.ReplaceAllString(out, "_")
	out = underscore.ReplaceAllString(out, "_")
	return strings.Trim(out, "_")
}
