// Package textnorm normaliza texto para búsquedas sin distinguir mayúsculas ni tildes
// ("Café" y "cafe" coinciden).
package textnorm

import (
	"strings"
	"unicode"

	"golang.org/x/text/cases"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// Fold quita diacríticos y aplica case folding.
func Fold(s string) string {
	// El transformer tiene estado: se construye en cada llamada.
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	out, _, err := transform.String(t, s)
	if err != nil {
		out = s
	}
	return cases.Fold().String(out)
}

// Contains indica si needle aparece en haystack tras normalizar ambos. needle vacío siempre coincide.
func Contains(haystack, needle string) bool {
	needle = strings.TrimSpace(needle)
	if needle == "" {
		return true
	}
	return strings.Contains(Fold(haystack), Fold(needle))
}
