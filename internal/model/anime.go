package model

import "strings"

// SearchResult is a catalog entry returned by a provider search.
// Results are immutable once returned.
type SearchResult struct {
	Name       string
	Identifier string
	Languages  LanguageSet
}

// DisplayName returns the results list label, e.g. "Frieren (SUB, DUB)"
func (r SearchResult) DisplayName() string {
	langs := r.Languages.Strings()
	if len(langs) == 0 {
		return r.Name
	}
	return r.Name + " (" + strings.Join(langs, ", ") + ")"
}
