// Package normalizer collapses inconsistently-spelled grammar and vocabulary
// identifiers into one canonical key space. Scheduling state is keyed by the
// canonical form, so two spellings of the same particle pair always land on
// the same record.
package normalizer

import (
	"regexp"
	"strings"
)

var (
	// Hangul syllable block.
	hangulSlash   = regexp.MustCompile(`([\x{AC00}-\x{D7A3}])/([\x{AC00}-\x{D7A3}])`)
	hangulHyphen  = regexp.MustCompile(`([\x{AC00}-\x{D7A3}])-([\x{AC00}-\x{D7A3}])`)
	prefixedSlash = regexp.MustCompile(`(-[\x{AC00}-\x{D7A3}]+)/(-[\x{AC00}-\x{D7A3}]+)`)
	prefixedPair  = regexp.MustCompile(`(-[\x{AC00}-\x{D7A3}]+)-(-[\x{AC00}-\x{D7A3}]+)`)
	doublePrefix  = regexp.MustCompile(`_-([\x{AC00}-\x{D7A3}])`)
	disallowed    = regexp.MustCompile(`[^\p{L}\p{N}\s_\-]`)
	whitespace    = regexp.MustCompile(`\s+`)
	underscores   = regexp.MustCompile(`_+`)
)

// compoundSplits separate pattern pairs that were written with no separator
// at all. These need explicit rules: there is no boundary to match on.
var compoundSplits = [...][2]string{
	{"이에요예요", "이에요_예요"},
	{"아요어요", "아요_어요"},
	{"은는", "은_는"},
	{"이가", "이_가"},
	{"을를", "을_를"},
}

// Normalize maps a raw identifier to its canonical form. Deterministic,
// idempotent, and total: any input yields a cleaned canonical string, Hangul
// content passes through untouched.
//
// Examples:
//
//	"-아요/-어요"  -> "-아요_어요"
//	"-아요-어요"   -> "-아요_어요"
//	"-이에요/예요" -> "-이에요_예요"
//	"Topic Marker" -> "topic_marker"
func Normalize(raw string) string {
	s := strings.TrimSpace(raw)
	if s == "" {
		return s
	}

	// Separator variants between two Hangul blocks: / and - both mean "or".
	s = hangulSlash.ReplaceAllString(s, "${1}_${2}")
	s = hangulHyphen.ReplaceAllString(s, "${1}_${2}")

	for _, sp := range compoundSplits {
		s = strings.ReplaceAll(s, sp[0], sp[1])
	}

	// Prefixed pairs like "-아요/-어요" keep the leading hyphen of the first
	// alternative only.
	s = prefixedSlash.ReplaceAllString(s, "${1}_${2}")
	s = prefixedPair.ReplaceAllString(s, "${1}_${2}")

	s = lowerASCII(s)
	s = disallowed.ReplaceAllString(s, "")
	s = whitespace.ReplaceAllString(s, "_")
	s = underscores.ReplaceAllString(s, "_")
	// The whitespace step can create new "_-Hangul" sequences ("honorific
	// -지만" -> "honorific_-지만"), so this cleanup must run last or a second
	// pass would produce a different key.
	s = doublePrefix.ReplaceAllString(s, "_${1}")
	return strings.Trim(s, "_")
}

// lowerASCII lowercases Latin letters only; other scripts are left alone.
func lowerASCII(s string) string {
	return strings.Map(func(r rune) rune {
		if r >= 'A' && r <= 'Z' {
			return r + ('a' - 'A')
		}
		return r
	}, s)
}
