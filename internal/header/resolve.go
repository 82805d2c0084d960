// Package header сопоставляет названия колонок, введенные людьми, с логическими полями.
//
// Листы правят вручную, поэтому текст заголовков "плывет": лишние слова,
// знаки препинания, смешение языков. Сопоставление идет по уровням, от точного
// к приблизительному, и останавливается на первом уровне, давшем результат.
package header

import (
	"fmt"
	"strings"
	"unicode"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"golang.org/x/text/unicode/norm"

	"sheet-sync/internal/storage"
)

const (
	manufacturerMarker = "производ"
	currencyMarker     = "exw"

	// MinOverlapScore - минимальная доля совпавших слов для уровня 5
	MinOverlapScore = 0.5
)

// Candidate - заголовок в нормализованном виде вместе с набором слов
type Candidate struct {
	Norm   string
	Tokens map[string]struct{}
}

func NewCandidate(s string) Candidate {
	n := Normalize(s)
	return Candidate{Norm: n, Tokens: tokenSet(n)}
}

// Tier - один уровень сопоставления; возвращает позицию заголовка или -1
type Tier func(headers []Candidate, target Candidate) int

// Tiers - порядок уровней сопоставления
var Tiers = []Tier{
	ExactTier,
	ManufacturerTier,
	ContainsTier,
	SubsetTier,
	OverlapTier,
	CurrencyTier,
}

// Normalize: обрезка, нижний регистр, схлопывание пробелов, единый вид " / ".
func Normalize(s string) string {
	s = norm.NFC.String(s)
	s = cases.Lower(language.Und).String(strings.TrimSpace(s))
	s = collapse(s)
	s = strings.ReplaceAll(s, " / ", "/")
	s = strings.ReplaceAll(s, "/", " / ")
	return collapse(s)
}

// Tokens - слова заголовка без пробелов и знаков , ; : / \
func Tokens(s string) []string {
	return strings.FieldsFunc(Normalize(s), isSeparator)
}

// Resolve возвращает позицию (с 0) заголовка, соответствующего target.
func Resolve(headers []string, target string) (int, bool) {
	t := NewCandidate(target)
	if t.Norm == "" {
		return -1, false
	}

	cands := make([]Candidate, len(headers))
	for i, h := range headers {
		cands[i] = NewCandidate(h)
	}

	for _, tier := range Tiers {
		if idx := tier(cands, t); idx >= 0 {
			return idx, true
		}
	}
	return -1, false
}

// Find - как Resolve, но отсутствие заголовка возвращается ошибкой
func Find(headers []string, target string) (int, error) {
	idx, ok := Resolve(headers, target)
	if !ok {
		return -1, fmt.Errorf("%w: %q", storage.ErrHeaderNotFound, target)
	}
	return idx, nil
}

func ExactTier(headers []Candidate, target Candidate) int {
	for i, h := range headers {
		if h.Norm == target.Norm {
			return i
		}
	}
	return -1
}

func ManufacturerTier(headers []Candidate, target Candidate) int {
	return markerTier(headers, target, manufacturerMarker)
}

func ContainsTier(headers []Candidate, target Candidate) int {
	if target.Norm == "" {
		return -1
	}
	for i, h := range headers {
		if strings.Contains(h.Norm, target.Norm) {
			return i
		}
	}
	return -1
}

func SubsetTier(headers []Candidate, target Candidate) int {
	if len(target.Tokens) == 0 {
		return -1
	}
	for i, h := range headers {
		if subset(target.Tokens, h.Tokens) {
			return i
		}
	}
	return -1
}

// OverlapTier выбирает заголовок с наибольшей долей общих слов; при равенстве - первый.
func OverlapTier(headers []Candidate, target Candidate) int {
	if len(target.Tokens) == 0 {
		return -1
	}

	best, bestScore := -1, 0.0
	for i, h := range headers {
		if len(h.Tokens) == 0 {
			continue
		}
		overlap := 0
		for tok := range target.Tokens {
			if _, ok := h.Tokens[tok]; ok {
				overlap++
			}
		}
		score := float64(overlap) / float64(len(target.Tokens))
		if overlap > 0 && score > bestScore {
			best, bestScore = i, score
		}
	}

	if best >= 0 && bestScore >= MinOverlapScore {
		return best
	}
	return -1
}

func CurrencyTier(headers []Candidate, target Candidate) int {
	return markerTier(headers, target, currencyMarker)
}

func markerTier(headers []Candidate, target Candidate, marker string) int {
	if !strings.Contains(target.Norm, marker) {
		return -1
	}
	for i, h := range headers {
		if strings.Contains(h.Norm, marker) {
			return i
		}
	}
	return -1
}

func subset(sub, set map[string]struct{}) bool {
	for tok := range sub {
		if _, ok := set[tok]; !ok {
			return false
		}
	}
	return true
}

func tokenSet(normalized string) map[string]struct{} {
	set := make(map[string]struct{})
	for _, tok := range strings.FieldsFunc(normalized, isSeparator) {
		set[tok] = struct{}{}
	}
	return set
}

func isSeparator(r rune) bool {
	if unicode.IsSpace(r) {
		return true
	}
	switch r {
	case ',', ';', ':', '/', '\\':
		return true
	}
	return false
}

func collapse(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
