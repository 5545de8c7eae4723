package app

import (
	"net/url"
	"strings"

	"propsite/internal/domain"
)

const GuestSource = "guest"

// GuestRequest carries the guest-link query parameters of a property page request.
type GuestRequest struct {
	Source      string
	BookingID   string
	BookingDate string
	Lang        string
}

func (g GuestRequest) IsGuest() bool { return g.Source == GuestSource }

func normalizeID(s string) string { return strings.ToLower(strings.TrimSpace(s)) }

// normalizeDate keeps only ASCII digits in order: "07/02/2026" -> "07022026".
// It is not calendar aware; "2026-02-07" normalizes to a different token.
func normalizeDate(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	var b strings.Builder
	for _, r := range s {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// FindBooking returns the first booking whose normalized bookingId and dateOfBooking
// equal the supplied ones. Empty supplied tokens never match.
func FindBooking(bookings []domain.Booking, suppliedID, suppliedDate string) *domain.Booking {
	id, date := normalizeID(suppliedID), normalizeDate(suppliedDate)
	if id == "" || date == "" {
		return nil
	}
	for i := range bookings {
		if normalizeID(bookings[i].BookingID) == id && normalizeDate(bookings[i].DateOfBooking) == date {
			return &bookings[i]
		}
	}
	return nil
}

// FindPropertyBooking scans the rental units of p in stored order.
func FindPropertyBooking(p *domain.Property, suppliedID, suppliedDate string) *domain.Booking {
	if p == nil {
		return nil
	}
	for i := range p.Rentals {
		if b := FindBooking(p.Rentals[i].Bookings, suppliedID, suppliedDate); b != nil {
			return b
		}
	}
	return nil
}

// GuestLanguage returns the booking's preferred language when it is supported.
func GuestLanguage(b domain.Booking) (string, bool) {
	l := strings.ToLower(strings.TrimSpace(b.PreferredLanguage))
	if l == "" || !domain.IsSupportedLanguage(l) {
		return "", false
	}
	return l, true
}

type GuestAction int

const (
	// GuestNone: not a guest-link request.
	GuestNone GuestAction = iota
	// GuestGranted: booking matched, guest-only content may be shown.
	GuestGranted
	// GuestRedirectCanonical: claimed guest source without a matching booking.
	GuestRedirectCanonical
	// GuestRedirectLanguage: matched, but the URL language differs from the guest's.
	GuestRedirectLanguage
)

func (a GuestAction) String() string {
	switch a {
	case GuestGranted:
		return "granted"
	case GuestRedirectCanonical:
		return "mismatch"
	case GuestRedirectLanguage:
		return "redirect_lang"
	}
	return "none"
}

type GuestDecision struct {
	Action  GuestAction
	Booking *domain.Booking
	// Lang is the language the page must be rendered in (or redirected to).
	Lang string
}

func (d GuestDecision) Redirects() bool {
	return d.Action == GuestRedirectCanonical || d.Action == GuestRedirectLanguage
}

// DecideGuest applies the guest-link policy to a request and its booking lookup result.
func DecideGuest(req GuestRequest, booking *domain.Booking, fallback string) GuestDecision {
	lang := domain.NormalizeLanguage(req.Lang, fallback)
	if !req.IsGuest() {
		return GuestDecision{Action: GuestNone, Lang: lang}
	}
	if booking == nil {
		return GuestDecision{Action: GuestRedirectCanonical, Lang: lang}
	}
	if pl, ok := GuestLanguage(*booking); ok && pl != lang {
		return GuestDecision{Action: GuestRedirectLanguage, Booking: booking, Lang: pl}
	}
	return GuestDecision{Action: GuestGranted, Booking: booking, Lang: lang}
}

// RedirectURL rewrites the request URL for a redirecting decision: the canonical URL
// drops every guest parameter, the language redirect only replaces lang.
func (d GuestDecision) RedirectURL(u url.URL) string {
	q := u.Query()
	switch d.Action {
	case GuestRedirectCanonical:
		q.Del("source")
		q.Del("bookingId")
		q.Del("bookingDate")
	case GuestRedirectLanguage:
		q.Set("lang", d.Lang)
	}
	u.RawQuery = q.Encode()
	return u.RequestURI()
}
