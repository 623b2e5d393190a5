package domain

import "sort"

// DefaultLocale is the locale used when no better match exists.
const DefaultLocale = "en"

// InternationalString is a localised text: a mapping from a locale tag
// (e.g. "en", "fr") to the text in that locale.
type InternationalString map[string]string

// Localised returns the text for the first locale in prefs that is
// present. Falls back to DefaultLocale, then to any locale in
// deterministic (sorted) order. Returns "" for an empty string.
func (s InternationalString) Localised(prefs ...string) string {
	for _, l := range prefs {
		if t, ok := s[l]; ok {
			return t
		}
	}
	if t, ok := s[DefaultLocale]; ok {
		return t
	}
	locales := make([]string, 0, len(s))
	for l := range s {
		locales = append(locales, l)
	}
	sort.Strings(locales)
	if len(locales) > 0 {
		return s[locales[0]]
	}
	return ""
}

// Set records text for a locale, allocating the map if needed.
// Returns the (possibly new) map so callers can assign through nil.
func (s InternationalString) Set(locale, text string) InternationalString {
	if s == nil {
		s = make(InternationalString, 1)
	}
	if locale == "" {
		locale = DefaultLocale
	}
	s[locale] = text
	return s
}

// Equal reports whether two international strings carry the same
// locale/text pairs.
func (s InternationalString) Equal(other InternationalString) bool {
	if len(s) != len(other) {
		return false
	}
	for l, t := range s {
		if other[l] != t {
			return false
		}
	}
	return true
}

// String implements fmt.Stringer using the default locale preference.
func (s InternationalString) String() string {
	return s.Localised()
}
