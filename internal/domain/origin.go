package domain

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// FoldText lower-cases s and strips combining accents ("Manhã" -> "manha").
func FoldText(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	folded, _, err := transform.String(t, s)
	if err != nil {
		folded = s
	}
	return strings.ToLower(strings.TrimSpace(folded))
}

// ClassifyOrigin maps a member's free-text origem onto an Origin bucket.
// Rules are substring matches checked in order.
func ClassifyOrigin(origem string) Origin {
	s := FoldText(origem)
	switch {
	case s == "":
		return OriginSemOrigem
	case strings.Contains(s, "manh"):
		return OriginManha
	case strings.Contains(s, "noite"), strings.Contains(s, "quarta"):
		return OriginNoite
	case strings.Contains(s, "mj"), strings.Contains(s, "event"):
		return OriginEvento
	default:
		return OriginSemOrigem
	}
}
