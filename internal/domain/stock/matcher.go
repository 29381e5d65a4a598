package stock

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"

	"github.com/jhoicas/control-stock/internal/domain/entity"
)

// MatchStrategy indica cómo se resolvió un producto por nombre.
type MatchStrategy string

const (
	MatchNone      MatchStrategy = ""
	MatchExactName MatchStrategy = "nombre_exacto"
	MatchAllTokens MatchStrategy = "todas_las_palabras"
	MatchSubstring MatchStrategy = "subcadena"
)

const minTokenLen = 3

// Normalize pasa a minúsculas, quita tildes y colapsa espacios.
func Normalize(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	folded, _, err := transform.String(t, s)
	if err != nil {
		folded = s
	}
	return strings.Join(strings.Fields(strings.ToLower(folded)), " ")
}

// Tokens devuelve las secuencias de letras de al menos tres caracteres, normalizadas.
func Tokens(s string) []string {
	fields := strings.FieldsFunc(Normalize(s), func(r rune) bool { return !unicode.IsLetter(r) })
	out := fields[:0]
	for _, f := range fields {
		if len([]rune(f)) >= minTokenLen {
			out = append(out, f)
		}
	}
	return out
}

// MatchByName busca un producto por nombre con tres estrategias crecientes:
// nombre exacto, todas las palabras presentes, subcadena. Gana el primer candidato
// que coincide en la primera estrategia con resultado.
func MatchByName(query string, candidates []*entity.Product) (*entity.Product, MatchStrategy) {
	q := Normalize(query)
	if q == "" {
		return nil, MatchNone
	}
	names := make([]string, len(candidates))
	for i, p := range candidates {
		names[i] = Normalize(p.Name)
	}

	for i, n := range names {
		if n == q {
			return candidates[i], MatchExactName
		}
	}

	if tokens := Tokens(query); len(tokens) > 0 {
		for i, n := range names {
			if containsAll(n, tokens) {
				return candidates[i], MatchAllTokens
			}
		}
	}

	for i, n := range names {
		if strings.Contains(n, q) {
			return candidates[i], MatchSubstring
		}
	}
	return nil, MatchNone
}

func containsAll(s string, tokens []string) bool {
	for _, t := range tokens {
		if !strings.Contains(s, t) {
			return false
		}
	}
	return true
}
