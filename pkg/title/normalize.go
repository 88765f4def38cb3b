// Package title normalizes disc image file names and matches them against
// catalog titles.
package title

import (
	"path/filepath"
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

var (
	// tagRegex matches bracketed dump tags: (USA), (Disc 1), [SLUS-00594], (Rev 1), [!].
	tagRegex = regexp.MustCompile(`\s*[\(\[][^\)\]]*[\)\]]`)

	// serialRegex matches bare PlayStation serials such as SLUS_005.94 or SCES-02105.
	serialRegex = regexp.MustCompile(`(?i)\b(slus|sles|scus|sces|slps|scps|slpm|sips)[-_ ]?\d{3}\.?\d{2}\b`)

	// discRegex matches an untagged trailing disc marker ("Disc 2", "CD1").
	discRegex = regexp.MustCompile(`(?i)\s+(disc|disk|cd)\s*\d+$`)

	romanNumeralRegex = regexp.MustCompile(`(?i) (ii|iii|iv|v|vi|vii|viii|ix)\b`)
)

var romanToArabic = map[string]string{
	"II": "2", "III": "3", "IV": "4", "V": "5",
	"VI": "6", "VII": "7", "VIII": "8", "IX": "9",
}

// FromFileName returns the human title embedded in a disc image path:
// directory and extension removed, dump tags and serials stripped,
// underscores treated as spaces.
func FromFileName(path string) string {
	name := filepath.Base(path)
	name = strings.TrimSuffix(name, filepath.Ext(name))
	name = strings.ReplaceAll(name, "_", " ")
	name = tagRegex.ReplaceAllString(name, "")
	name = serialRegex.ReplaceAllString(name, "")
	name = discRegex.ReplaceAllString(name, "")
	return strings.Join(strings.Fields(name), " ")
}

// NormalizeRomanNumerals converts Roman numerals (II-IX) to Arabic numbers.
// Standalone "I" and numerals at the start of the string are left alone.
func NormalizeRomanNumerals(s string) string {
	return romanNumeralRegex.ReplaceAllStringFunc(s, func(match string) string {
		roman := strings.TrimSpace(match)
		if arabic, ok := romanToArabic[strings.ToUpper(roman)]; ok {
			return " " + arabic
		}
		return match
	})
}

// Clean normalizes a title for comparison: lowercase, accents removed,
// leading articles dropped, Roman numerals converted, punctuation stripped.
func Clean(title string) string {
	s := strings.ToLower(title)
	s = NormalizeRomanNumerals(s)
	s = removeAccents(s)

	s = strings.ReplaceAll(s, "&", " and ")
	s = strings.ReplaceAll(s, "-", " ")
	s = strings.ReplaceAll(s, "'", "")
	s = strings.ReplaceAll(s, ".", " ")

	// "Legend of Mana: The ..." keeps both halves but loses their articles.
	parts := strings.Split(s, ":")
	for i, part := range parts {
		parts[i] = stripLeadingArticle(strings.TrimSpace(part))
	}
	s = strings.Join(parts, " ")

	var b strings.Builder
	for _, r := range s {
		if unicode.IsLetter(r) || unicode.IsDigit(r) || unicode.IsSpace(r) {
			b.WriteRune(r)
		}
	}

	return strings.Join(strings.Fields(b.String()), " ")
}

func removeAccents(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	result, _, _ := transform.String(t, s)
	return result
}

func stripLeadingArticle(s string) string {
	for _, art := range []string{"the ", "a ", "an "} {
		if strings.HasPrefix(s, art) {
			return strings.TrimPrefix(s, art)
		}
	}
	return s
}
