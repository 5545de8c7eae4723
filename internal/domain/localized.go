package domain

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"

	"golang.org/x/text/language"
)

const DefaultLanguage = "en"

// SupportedLanguages are the listing languages a property can be translated into.
var SupportedLanguages = []string{"en", "fr", "de", "es", "it", "nl", "pt"}

func IsSupportedLanguage(code string) bool {
	for _, l := range SupportedLanguages {
		if l == code {
			return true
		}
	}
	return false
}

// NormalizeLanguage maps a requested code ("FR", "fr-CA", " de ") to a supported base
// language. Missing or unsupported codes return fallback.
func NormalizeLanguage(code, fallback string) string {
	if fallback == "" {
		fallback = DefaultLanguage
	}
	c := strings.ToLower(strings.TrimSpace(code))
	if c == "" {
		return fallback
	}
	if tag, err := language.Parse(c); err == nil {
		if base, conf := tag.Base(); conf != language.No {
			c = base.String()
		}
	}
	if IsSupportedLanguage(c) {
		return c
	}
	return fallback
}

type Translation struct {
	Lang string
	Text string
}

// LocalizedValue holds either one plain string or an ordered set of per-language
// translations. A value with zero translations is the plain form.
type LocalizedValue struct {
	value        string
	translations []Translation
}

func Plain(s string) LocalizedValue { return LocalizedValue{value: s} }

// Translated builds the translation form. Later duplicates of a language overwrite the
// earlier text but keep its position.
func Translated(ts ...Translation) LocalizedValue {
	var v LocalizedValue
	for _, t := range ts {
		v.set(t.Lang, t.Text)
	}
	return v
}

func (v *LocalizedValue) set(lang, text string) {
	for i := range v.translations {
		if v.translations[i].Lang == lang {
			v.translations[i].Text = text
			return
		}
	}
	v.translations = append(v.translations, Translation{Lang: lang, Text: text})
}

func (v LocalizedValue) IsTranslated() bool { return len(v.translations) > 0 }

func (v LocalizedValue) IsZero() bool { return v.value == "" && len(v.translations) == 0 }

// Value returns the plain string form (empty for translated values).
func (v LocalizedValue) Value() string { return v.value }

func (v LocalizedValue) Translations() []Translation {
	out := make([]Translation, len(v.translations))
	copy(out, v.translations)
	return out
}

func (v LocalizedValue) Get(lang string) (string, bool) {
	for _, t := range v.translations {
		if t.Lang == lang {
			return t.Text, true
		}
	}
	return "", false
}

// Resolve picks the display string: requested language, then fallback, then the first
// translation in stored order, then the plain value. It never fails. Both codes go
// through NormalizeLanguage.
func (v LocalizedValue) Resolve(requested, fallback string) string {
	if len(v.translations) == 0 {
		return v.value
	}
	fallback = NormalizeLanguage(fallback, DefaultLanguage)
	lang := NormalizeLanguage(requested, fallback)
	if s, ok := v.Get(lang); ok {
		return s
	}
	if s, ok := v.Get(fallback); ok {
		return s
	}
	return v.translations[0].Text
}

func (v LocalizedValue) String() string { return v.Resolve(DefaultLanguage, DefaultLanguage) }

func (v LocalizedValue) MarshalJSON() ([]byte, error) {
	if len(v.translations) == 0 {
		return json.Marshal(v.value)
	}
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, t := range v.translations {
		if i > 0 {
			buf.WriteByte(',')
		}
		k, err := json.Marshal(t.Lang)
		if err != nil {
			return nil, err
		}
		s, err := json.Marshal(t.Text)
		if err != nil {
			return nil, err
		}
		buf.Write(k)
		buf.WriteByte(':')
		buf.Write(s)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

func (v *LocalizedValue) UnmarshalJSON(b []byte) error {
	*v = LocalizedValue{}
	b = bytes.TrimSpace(b)
	if len(b) == 0 || bytes.Equal(b, []byte("null")) {
		return nil
	}
	switch b[0] {
	case '"':
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return fmt.Errorf("%w: localized string: %v", ErrInvalidData, err)
		}
		v.value = s
		return nil
	case '{':
		return v.decodeObject(b)
	default:
		return fmt.Errorf("%w: localized value must be a string or an object, got %.20s", ErrInvalidData, b)
	}
}

// decodeObject walks the tokens so translation order survives the round trip.
func (v *LocalizedValue) decodeObject(b []byte) error {
	dec := json.NewDecoder(bytes.NewReader(b))
	if _, err := dec.Token(); err != nil {
		return fmt.Errorf("%w: localized object: %v", ErrInvalidData, err)
	}
	for dec.More() {
		kt, err := dec.Token()
		if err != nil {
			return fmt.Errorf("%w: localized object: %v", ErrInvalidData, err)
		}
		key, _ := kt.(string)
		var text string
		if err := dec.Decode(&text); err != nil {
			return fmt.Errorf("%w: translation %q must be a string: %v", ErrInvalidData, key, err)
		}
		v.set(key, text)
	}
	if _, err := dec.Token(); err != nil {
		return fmt.Errorf("%w: localized object: %v", ErrInvalidData, err)
	}
	return nil
}
