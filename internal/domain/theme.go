package domain

// Palette entries left empty are filled from DefaultTheme at resolution time.
type Palette struct {
	Primary    string `json:"primary,omitempty"`
	Secondary  string `json:"secondary,omitempty"`
	Accent     string `json:"accent,omitempty"`
	Background string `json:"background,omitempty"`
	Surface    string `json:"surface,omitempty"`
	Text       string `json:"text,omitempty"`
	MutedText  string `json:"mutedText,omitempty"`
}

type Font struct {
	Family string `json:"family,omitempty"`
	URL    string `json:"url,omitempty"`
	Weight string `json:"weight,omitempty"`
}

type Fonts struct {
	Heading Font `json:"heading"`
	Body    Font `json:"body"`
}

// Theme is a named palette pair with typography settings.
// HeadingSizes and HeadingTransforms are keyed h1..h6; resolution fills those levels
// from the default and keeps any other key unchanged.
type Theme struct {
	Name              string            `json:"name,omitempty"`
	Light             Palette           `json:"light"`
	Dark              Palette           `json:"dark"`
	Fonts             Fonts             `json:"fonts"`
	HeadingSizes      map[string]string `json:"headingSizes,omitempty"`
	HeadingTransforms map[string]string `json:"headingTransforms,omitempty"`
	BodyTextSize      string            `json:"bodyTextSize,omitempty"`
	CornerRadius      string            `json:"cornerRadius,omitempty"`
}

// ThemeRef is what a property carries: a shared theme name, an inline theme, or neither.
type ThemeRef struct {
	Name   string
	Inline *Theme
}

func (p Property) ThemeRef() ThemeRef { return ThemeRef{Name: p.ThemeName, Inline: p.Theme} }

var HeadingLevels = []string{"h1", "h2", "h3", "h4", "h5", "h6"}

func DefaultTheme() Theme {
	return Theme{
		Name: "default",
		Light: Palette{
			Primary:    "#1f4e5f",
			Secondary:  "#c9a66b",
			Accent:     "#e07a5f",
			Background: "#ffffff",
			Surface:    "#f5f3ef",
			Text:       "#1b1b1b",
			MutedText:  "#6b6b6b",
		},
		Dark: Palette{
			Primary:    "#7fb8c9",
			Secondary:  "#d8bc8a",
			Accent:     "#f2a48f",
			Background: "#121212",
			Surface:    "#1e1e1e",
			Text:       "#f1f1f1",
			MutedText:  "#a0a0a0",
		},
		Fonts: Fonts{
			Heading: Font{Family: "Playfair Display", Weight: "600"},
			Body:    Font{Family: "Inter", Weight: "400"},
		},
		HeadingSizes: map[string]string{
			"h1": "3rem", "h2": "2.25rem", "h3": "1.75rem",
			"h4": "1.375rem", "h5": "1.125rem", "h6": "1rem",
		},
		HeadingTransforms: map[string]string{
			"h1": "none", "h2": "none", "h3": "none",
			"h4": "none", "h5": "uppercase", "h6": "uppercase",
		},
		BodyTextSize: "1rem",
		CornerRadius: "8px",
	}
}
