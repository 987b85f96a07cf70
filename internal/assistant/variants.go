package assistant

import (
	"math"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// companySuffixes are tried in this order, both stripped and appended.
var companySuffixes = []string{" Inc", " LLC", " Ltd", " Corp", " Co"}

const (
	// prefixRatio is the share of a long single word kept as a prefix variant.
	prefixRatio = 0.7
	// prefixMinLength is the rune count a single word must exceed to get a prefix variant.
	prefixMinLength = 5
	// suffixMaxLength bounds the queries that get company suffixes appended.
	suffixMaxLength = 15
)

// NameVariations returns the textual variants of a company or person name used to
// broaden a calendar text search. Variants keep the order of the rules that produced
// them and duplicates are dropped on first sight, so the result is deterministic.
//
// An empty (or whitespace-only) input yields a single empty variant.
func NameVariations(raw string) []string {
	original := strings.TrimSpace(raw)
	if original == "" {
		return []string{""}
	}

	upper := cases.Upper(language.Und)
	lower := cases.Lower(language.Und)
	words := strings.Fields(original)

	set := newOrderedSet()
	set.add(original)
	set.add(lower.String(original))
	set.add(upper.String(original))
	set.add(strings.Join(words, ""))
	set.add(strings.Join(words, "-"))
	set.add(strings.Join(words, "."))

	if len(words) > 1 {
		var camel, pascal, acronym strings.Builder
		for i, w := range words {
			if i == 0 {
				camel.WriteString(lower.String(w))
			} else {
				camel.WriteString(capitalize(w))
			}
			pascal.WriteString(capitalize(w))
			r, _ := utf8.DecodeRuneInString(w)
			acronym.WriteRune(r)
		}
		set.add(camel.String())
		set.add(pascal.String())
		set.add(upper.String(acronym.String()))
	}

	length := utf8.RuneCountInString(original)
	if len(words) == 1 && length > prefixMinLength {
		n := int(math.Ceil(float64(length) * prefixRatio))
		set.add(string([]rune(original)[:n]))
	}

	for _, suffix := range companySuffixes {
		if strings.HasSuffix(original, suffix) {
			set.add(strings.TrimSuffix(original, suffix))
		} else if len(words) <= 2 && length < suffixMaxLength {
			set.add(original + suffix)
		}
	}

	return set.values()
}

// capitalize upper-cases the first rune of w and lower-cases the rest.
func capitalize(w string) string {
	r, size := utf8.DecodeRuneInString(w)
	if r == utf8.RuneError {
		return w
	}
	return cases.Upper(language.Und).String(string(r)) + cases.Lower(language.Und).String(w[size:])
}

// wordCount counts whitespace separated words, treating an empty query as one word.
func wordCount(s string) int {
	n := len(strings.Fields(s))
	if n == 0 {
		return 1
	}
	return n
}

type orderedSet struct {
	seen  map[string]struct{}
	items []string
}

func newOrderedSet() *orderedSet {
	return &orderedSet{seen: make(map[string]struct{})}
}

func (s *orderedSet) add(v string) {
	if _, ok := s.seen[v]; ok {
		return
	}
	s.seen[v] = struct{}{}
	s.items = append(s.items, v)
}

func (s *orderedSet) values() []string {
	return s.items
}
