package app

import (
	"sort"

	"propsite/internal/domain"
)

// ResolveTheme picks the shared theme named by ref (it wins over an inline theme),
// else the inline theme, else the default, then fills every empty field from the default.
func ResolveTheme(ref domain.ThemeRef, library map[string]domain.Theme) domain.Theme {
	def := domain.DefaultTheme()
	var t domain.Theme
	switch {
	case ref.Name != "" && hasTheme(library, ref.Name):
		t = library[ref.Name]
		if t.Name == "" {
			t.Name = ref.Name
		}
	case ref.Inline != nil:
		t = *ref.Inline
	default:
		return def
	}
	return fillTheme(t, def)
}

func hasTheme(library map[string]domain.Theme, name string) bool {
	_, ok := library[name]
	return ok
}

func fillTheme(t, def domain.Theme) domain.Theme {
	if t.Name == "" {
		t.Name = def.Name
	}
	t.Light = fillPalette(t.Light, def.Light)
	t.Dark = fillPalette(t.Dark, def.Dark)
	t.Fonts.Heading = fillFont(t.Fonts.Heading, def.Fonts.Heading)
	t.Fonts.Body = fillFont(t.Fonts.Body, def.Fonts.Body)
	t.HeadingSizes = fillLevels(t.HeadingSizes, def.HeadingSizes)
	t.HeadingTransforms = fillLevels(t.HeadingTransforms, def.HeadingTransforms)
	t.BodyTextSize = or(t.BodyTextSize, def.BodyTextSize)
	t.CornerRadius = or(t.CornerRadius, def.CornerRadius)
	return t
}

func fillPalette(p, def domain.Palette) domain.Palette {
	p.Primary = or(p.Primary, def.Primary)
	p.Secondary = or(p.Secondary, def.Secondary)
	p.Accent = or(p.Accent, def.Accent)
	p.Background = or(p.Background, def.Background)
	p.Surface = or(p.Surface, def.Surface)
	p.Text = or(p.Text, def.Text)
	p.MutedText = or(p.MutedText, def.MutedText)
	return p
}

// A font without a family is treated as absent; URL and weight come along with it.
func fillFont(f, def domain.Font) domain.Font {
	if f.Family == "" {
		return def
	}
	f.Weight = or(f.Weight, def.Weight)
	return f
}

// fillLevels copies the map so the library entry is never mutated. Keys other than
// h1..h6 are passed through as stored.
func fillLevels(m, def map[string]string) map[string]string {
	out := make(map[string]string, len(def)+len(m))
	for k, v := range m {
		out[k] = v
	}
	for _, lvl := range domain.HeadingLevels {
		out[lvl] = or(m[lvl], def[lvl])
	}
	return out
}

func or(v, def string) string {
	if v == "" {
		return def
	}
	return v
}

func sortThemes(ts []domain.Theme) {
	sort.Slice(ts, func(i, j int) bool { return ts[i].Name < ts[j].Name })
}
