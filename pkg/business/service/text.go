package service

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

type ITextService interface {
	StripDiacritics(input string) string
	NormalizeQuery(input string) string
	SafeFileName(input string) string
}

// TextService normalizes user-facing Spanish text: search queries going
// to the hosted index and names reused as file names.
type TextService struct{}

func NewTextService() *TextService {
	return &TextService{}
}

// StripDiacritics turns "azúcar" into "azucar". Decompose, drop the
// combining marks, recompose.
func (ts *TextService) StripDiacritics(input string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	output, _, err := transform.String(t, input)
	if err != nil {
		return input
	}
	return output
}

// NormalizeQuery collapses whitespace and strips diacritics so that
// queries typed with or without accents hit the same index terms.
func (ts *TextService) NormalizeQuery(input string) string {
	return strings.Join(strings.Fields(ts.StripDiacritics(input)), " ")
}

// SafeFileName reduces input to lowercase ascii letters, digits,
// dashes and underscores.
func (ts *TextService) SafeFileName(input string) string {
	var builder strings.Builder
	for _, r := range strings.ToLower(ts.StripDiacritics(input)) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9', r == '-', r == '_':
			builder.WriteRune(r)
		case r == ' ':
			builder.WriteRune('-')
		}
	}
	return builder.String()
}
