package app_test

import (
	"net/url"
	"testing"

	"propsite/internal/app"
	"propsite/internal/domain"
)

func bookings() []domain.Booking {
	return []domain.Booking{
		{ID: "b1", BookingID: "ABC123", DateOfBooking: "07/02/2026", PreferredLanguage: "fr"},
		{ID: "b2", BookingID: "xyz-9", DateOfBooking: "2026-01-15"},
	}
}

func TestFindBooking(t *testing.T) {
	cases := []struct {
		name, id, date, want string
	}{
		{"exact", "ABC123", "07/02/2026", "b1"},
		{"case and spaces", "  abc123 ", "07/02/2026", "b1"},
		{"other separators", "ABC123", "07-02-2026", "b1"},
		{"digits only", "ABC123", "07022026", "b1"},
		{"reordered date does not match", "ABC123", "2026-02-07", ""},
		{"wrong id", "ABC124", "07/02/2026", ""},
		{"empty id", "", "07/02/2026", ""},
		{"empty date", "ABC123", "", ""},
		{"date without digits", "ABC123", "--/--", ""},
		{"second booking", "XYZ-9", "2026.01.15", "b2"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			b := app.FindBooking(bookings(), tc.id, tc.date)
			got := ""
			if b != nil {
				got = b.ID
			}
			if got != tc.want {
				t.Fatalf("FindBooking(%q,%q)=%q want %q", tc.id, tc.date, got, tc.want)
			}
		})
	}
}

func TestFindBooking_EmptyStoredTokensNeverMatch(t *testing.T) {
	bs := []domain.Booking{{ID: "blank"}}
	if b := app.FindBooking(bs, "", ""); b != nil {
		t.Fatalf("blank booking matched")
	}
}

func TestFindPropertyBooking_ScansRentals(t *testing.T) {
	p := &domain.Property{Rentals: []domain.RentalUnit{
		{ID: "r1"},
		{ID: "r2", Bookings: bookings()},
	}}
	if b := app.FindPropertyBooking(p, "xyz-9", "20260115"); b == nil || b.ID != "b2" {
		t.Fatalf("got %+v", b)
	}
	if b := app.FindPropertyBooking(nil, "x", "1"); b != nil {
		t.Fatalf("nil property matched")
	}
}

func TestDecideGuest(t *testing.T) {
	bs := bookings()
	fr, plain := &bs[0], &bs[1]

	d := app.DecideGuest(app.GuestRequest{Lang: "de"}, nil, "en")
	if d.Action != app.GuestNone || d.Lang != "de" {
		t.Fatalf("non-guest: %+v", d)
	}

	d = app.DecideGuest(app.GuestRequest{Source: "guest", Lang: "fr"}, nil, "en")
	if d.Action != app.GuestRedirectCanonical || !d.Redirects() {
		t.Fatalf("mismatch: %+v", d)
	}

	d = app.DecideGuest(app.GuestRequest{Source: "guest", Lang: "en"}, fr, "en")
	if d.Action != app.GuestRedirectLanguage || d.Lang != "fr" {
		t.Fatalf("language redirect: %+v", d)
	}

	d = app.DecideGuest(app.GuestRequest{Source: "guest", Lang: "fr"}, fr, "en")
	if d.Action != app.GuestGranted || d.Booking != fr || d.Redirects() {
		t.Fatalf("granted: %+v", d)
	}

	d = app.DecideGuest(app.GuestRequest{Source: "guest", Lang: "it"}, plain, "en")
	if d.Action != app.GuestGranted || d.Lang != "it" {
		t.Fatalf("no preferred language: %+v", d)
	}
}

func TestGuestLanguage(t *testing.T) {
	if l, ok := app.GuestLanguage(domain.Booking{PreferredLanguage: " DE "}); !ok || l != "de" {
		t.Fatalf("got %q %v", l, ok)
	}
	if _, ok := app.GuestLanguage(domain.Booking{PreferredLanguage: "jp"}); ok {
		t.Fatalf("unsupported language accepted")
	}
}

func TestRedirectURL(t *testing.T) {
	u, _ := url.Parse("/v1/properties/villa_x?source=guest&bookingId=ABC&bookingDate=07022026&lang=en&utm=x")

	canon := app.GuestDecision{Action: app.GuestRedirectCanonical, Lang: "en"}
	got, _ := url.Parse(canon.RedirectURL(*u))
	q := got.Query()
	if got.Path != "/v1/properties/villa_x" || q.Has("source") || q.Has("bookingId") || q.Has("bookingDate") {
		t.Fatalf("canonical redirect kept guest params: %s", got)
	}
	if q.Get("lang") != "en" || q.Get("utm") != "x" {
		t.Fatalf("canonical redirect dropped other params: %s", got)
	}

	lang := app.GuestDecision{Action: app.GuestRedirectLanguage, Lang: "fr"}
	got, _ = url.Parse(lang.RedirectURL(*u))
	q = got.Query()
	if q.Get("lang") != "fr" || q.Get("source") != "guest" || q.Get("bookingId") != "ABC" {
		t.Fatalf("language redirect: %s", got)
	}
}
