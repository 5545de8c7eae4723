package app

import "propsite/internal/domain"

// resolver binds the language pair every LocalizedValue of one view is resolved with.
type resolver struct{ lang, fallback string }

func (r resolver) s(v domain.LocalizedValue) string { return v.Resolve(r.lang, r.fallback) }

// mapView resolves p for lang. Guest-only data is added separately by mapGuest.
func mapView(p *domain.Property, lang, fallback string, themes map[string]domain.Theme) domain.PropertyView {
	r := resolver{lang: lang, fallback: fallback}
	v := domain.PropertyView{
		ID:               p.ID,
		Language:         lang,
		Name:             r.s(p.Name),
		Summary:          r.s(p.Summary),
		Status:           p.Status,
		Archived:         p.Archived,
		Version:          p.Version,
		IsPublished:      p.IsPublished,
		HeroImages:       make([]domain.ImageView, 0, len(p.HeroImages)),
		Facilities:       make([]domain.FacilityView, 0, len(p.Facilities)),
		Pages:            make([]domain.PageView, 0, len(p.Pages)),
		Rentals:          make([]domain.RentalView, 0, len(p.Rentals)),
		Theme:            ResolveTheme(p.ThemeRef(), themes),
		ListingLanguages: append([]string(nil), p.ListingLanguages...),
	}
	for _, h := range p.HeroImages {
		v.HeroImages = append(v.HeroImages, domain.ImageView{URL: h.URL, Alt: r.s(h.Alt)})
	}
	for _, f := range p.Facilities {
		v.Facilities = append(v.Facilities, domain.FacilityView{Icon: f.Icon, Label: r.s(f.Label)})
	}
	for _, pg := range p.Pages {
		pv := domain.PageView{Slug: pg.Slug, Title: r.s(pg.Title), Sections: make([]domain.SectionView, 0, len(pg.Sections))}
		for _, sec := range pg.Sections {
			pv.Sections = append(pv.Sections, domain.SectionView{
				Heading: r.s(sec.Heading),
				Body:    r.s(sec.Body),
				Images:  append([]string(nil), sec.Images...),
			})
		}
		v.Pages = append(v.Pages, pv)
	}
	for _, u := range p.Rentals {
		v.Rentals = append(v.Rentals, domain.RentalView{
			ID:           u.ID,
			Name:         r.s(u.Name),
			Rates:        append([]domain.Rate(nil), u.Rates...),
			Availability: append([]domain.DateRange(nil), u.Availability...),
			Conditions: domain.ConditionsView{
				CheckIn:  u.Conditions.CheckIn,
				CheckOut: u.Conditions.CheckOut,
				MinStay:  u.Conditions.MinStay,
				Notes:    r.s(u.Conditions.Notes),
			},
		})
	}
	return v
}

func mapGuest(p *domain.Property, b *domain.Booking, lang, fallback string) *domain.GuestView {
	r := resolver{lang: lang, fallback: fallback}
	g := &domain.GuestView{
		GuestNames:    append([]string(nil), b.GuestNames...),
		CheckIn:       b.CheckIn,
		CheckOut:      b.CheckOut,
		ArrivalStatus: b.ArrivalStatus,
		VIP:           b.VIP,
		RepeatVisit:   b.RepeatVisit,
	}
	if p.GuestInfo == nil {
		return g
	}
	if w := p.GuestInfo.Wifi; w != nil {
		g.Wifi = &domain.Wifi{Network: w.Network, Password: w.Password}
	}
	for _, in := range p.GuestInfo.Equipment {
		g.Equipment = append(g.Equipment, domain.InstructionView{Title: r.s(in.Title), Body: r.s(in.Body)})
	}
	for _, c := range p.GuestInfo.HealthSafety {
		g.HealthSafety = append(g.HealthSafety, domain.SafetyContactView{Name: c.Name, Phone: c.Phone, Role: r.s(c.Role)})
	}
	return g
}

func mapSummary(p *domain.Property, hasDraft, published bool) domain.PropertySummary {
	return domain.PropertySummary{
		ID:          p.ID,
		Name:        p.Name.Resolve(domain.DefaultLanguage, domain.DefaultLanguage),
		Status:      p.Status,
		Version:     p.Version,
		HasDraft:    hasDraft,
		IsPublished: published,
	}
}
