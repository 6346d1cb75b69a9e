package model

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
)

// Language is the audio track variant offered by a provider.
type Language string

const (
	LanguageSub Language = "SUB"
	LanguageDub Language = "DUB"
)

// String returns the string representation of Language
func (l Language) String() string {
	return string(l)
}

// TranslationType returns the provider-side name of the language
func (l Language) TranslationType() string {
	return strings.ToLower(string(l))
}

// ParseLanguage resolves a user-facing language label (case-insensitive)
func ParseLanguage(s string) (Language, error) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "SUB":
		return LanguageSub, nil
	case "DUB":
		return LanguageDub, nil
	case "":
		return "", fmt.Errorf("language is empty")
	default:
		return "", fmt.Errorf("unknown language: %q", s)
	}
}

// LanguageSet is an unordered set of languages.
type LanguageSet map[Language]struct{}

// NewLanguageSet creates a set from the given languages
func NewLanguageSet(langs ...Language) LanguageSet {
	set := make(LanguageSet, len(langs))
	for _, l := range langs {
		set[l] = struct{}{}
	}
	return set
}

// Has reports whether the set contains the language
func (s LanguageSet) Has(l Language) bool {
	_, ok := s[l]
	return ok
}

// Sorted returns languages in display order: SUB first, then DUB.
func (s LanguageSet) Sorted() []Language {
	out := make([]Language, 0, len(s))
	for l := range s {
		out = append(out, l)
	}
	sort.Slice(out, func(i, j int) bool { return languageRank(out[i]) < languageRank(out[j]) })
	return out
}

// Preferred picks the language used for episode listing
func (s LanguageSet) Preferred() Language {
	if s.Has(LanguageSub) || len(s) == 0 {
		return LanguageSub
	}
	return s.Sorted()[0]
}

// Strings returns language labels in display order
func (s LanguageSet) Strings() []string {
	sorted := s.Sorted()
	out := make([]string, len(sorted))
	for i, l := range sorted {
		out[i] = l.String()
	}
	return out
}

func languageRank(l Language) int {
	switch l {
	case LanguageSub:
		return 0
	case LanguageDub:
		return 1
	default:
		return 2
	}
}

// Quality is a vertical stream resolution in pixels.
type Quality int

const (
	Quality1080 Quality = 1080
	Quality720  Quality = 720
	Quality480  Quality = 480
	Quality360  Quality = 360

	DefaultQuality = Quality720
)

// Qualities lists the selectable qualities, best first
var Qualities = []Quality{Quality1080, Quality720, Quality480, Quality360}

// String returns the bare number, e.g. "720"
func (q Quality) String() string {
	return strconv.Itoa(int(q))
}

// Label returns the quality with a "p" suffix, e.g. "720p"
func (q Quality) Label() string {
	return q.String() + "p"
}

// ParseQuality parses one of the enumerated qualities. A trailing "p" is accepted.
func ParseQuality(s string) (Quality, error) {
	s = strings.TrimSuffix(strings.TrimSpace(s), "p")
	if s == "" {
		return 0, fmt.Errorf("quality is empty")
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, fmt.Errorf("invalid quality %q: %w", s, err)
	}
	for _, q := range Qualities {
		if int(q) == n {
			return q, nil
		}
	}
	return 0, fmt.Errorf("unsupported quality: %d", n)
}

// QualityStrings returns the selectable qualities as labels for selectors
func QualityStrings() []string {
	out := make([]string, len(Qualities))
	for i, q := range Qualities {
		out[i] = q.String()
	}
	return out
}
