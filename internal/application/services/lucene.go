package services

import (
	"fmt"
	"strings"
	"unicode"

	"github.com/imiq-project/Dashbot/internal/domain/entities"
	"github.com/imiq-project/Dashbot/internal/domain/repositories"
)

// luceneSpecials are characters with syntactic meaning in Lucene queries.
const luceneSpecials = `+-&|!(){}[]^"~*?:\/`

// stopWords are query words that carry no entity signal, English and
// German mixed since campus queries arrive in both.
var stopWords = map[string]struct{}{
	"the": {}, "a": {}, "an": {}, "of": {}, "in": {}, "at": {}, "to": {},
	"is": {}, "are": {}, "where": {}, "what": {}, "which": {}, "how": {},
	"der": {}, "die": {}, "das": {}, "ein": {}, "eine": {}, "und": {},
	"im": {}, "am": {}, "zum": {}, "zur": {}, "wo": {}, "ist": {},
}

// strippablePrefixes are leading fragments users attach to entity names
// that the knowledge base does not store.
var strippablePrefixes = []string{
	"building ",
	"bldg ",
	"gebäude ",
	"magdeburg ",
	"ovgu ",
	"the ",
}

// stopSuffixes are trailing transit words stripped before stop lookups.
var stopSuffixes = []string{
	" tram stop",
	" bus stop",
	" station",
	" stop",
	" haltestelle",
}

// NormalizeQuery lowercases, trims, collapses whitespace and strips known
// prefixes and transit suffixes from a raw mention.
func NormalizeQuery(raw string) string {
	query := strings.ToLower(strings.TrimSpace(raw))
	query = strings.Join(strings.Fields(query), " ")

	for _, prefix := range strippablePrefixes {
		if strings.HasPrefix(query, prefix) && len(query) > len(prefix) {
			query = query[len(prefix):]
			break
		}
	}
	for _, suffix := range stopSuffixes {
		if strings.HasSuffix(query, suffix) && len(query) > len(suffix) {
			query = strings.TrimSuffix(query, suffix)
			break
		}
	}
	return strings.TrimSpace(query)
}

// IsNumericQuery reports whether the query is purely a number, such as a
// bare building number.
func IsNumericQuery(query string) bool {
	if query == "" {
		return false
	}
	for _, r := range query {
		if !unicode.IsDigit(r) {
			return false
		}
	}
	return true
}

// NumericVariants expands a bare number into the name forms buildings are
// stored under. "3" becomes building 03, building 3, 03 and 3.
func NumericVariants(query string) []string {
	trimmed := strings.TrimLeft(query, "0")
	if trimmed == "" {
		trimmed = "0"
	}
	padded := trimmed
	if len(trimmed) == 1 {
		padded = "0" + trimmed
	}

	variants := []string{
		"building " + padded,
		"building " + trimmed,
		padded,
		trimmed,
	}

	seen := make(map[string]struct{}, len(variants))
	unique := variants[:0]
	for _, v := range variants {
		if _, ok := seen[v]; ok {
			continue
		}
		seen[v] = struct{}{}
		unique = append(unique, v)
	}
	return unique
}

// EscapeLucene escapes Lucene query syntax characters in a term.
func EscapeLucene(term string) string {
	var b strings.Builder
	b.Grow(len(term))
	for _, r := range term {
		if strings.ContainsRune(luceneSpecials, r) {
			b.WriteByte('\\')
		}
		b.WriteRune(r)
	}
	return b.String()
}

// BuildFulltextQuery turns a normalized mention into a Lucene query.
// Words of four or more characters get a fuzzy clause plus a boosted
// exact clause; shorter words and numeric queries match exactly only,
// so a stray digit can never fuzzy-match half the graph.
func BuildFulltextQuery(normalized string) repositories.FulltextQuery {
	words := QueryWords(normalized)

	if IsNumericQuery(normalized) {
		var clauses []string
		for _, variant := range NumericVariants(normalized) {
			clauses = append(clauses, fmt.Sprintf("%q", EscapeLucene(variant)))
		}
		return repositories.FulltextQuery{
			Lucene:    strings.Join(clauses, " OR "),
			Raw:       normalized,
			Words:     words,
			ExactOnly: true,
		}
	}

	var clauses []string
	for _, word := range words {
		escaped := EscapeLucene(word)
		if len([]rune(word)) >= 4 {
			clauses = append(clauses, escaped+"~1", escaped+"^2")
		} else {
			clauses = append(clauses, escaped)
		}
	}
	return repositories.FulltextQuery{
		Lucene: strings.Join(clauses, " "),
		Raw:    normalized,
		Words:  words,
	}
}

// QueryWords splits a normalized query into significant words, dropping
// stop words unless the whole query is stop words.
func QueryWords(normalized string) []string {
	fields := strings.Fields(normalized)
	words := make([]string, 0, len(fields))
	for _, field := range fields {
		if _, ok := stopWords[field]; ok {
			continue
		}
		words = append(words, field)
	}
	if len(words) == 0 {
		return fields
	}
	return words
}

// ApplyNameBoost re-ranks fulltext candidates with corpus-aware name
// matching: rare query words count for much more than common ones, and
// hits in the entity name beat hits buried in descriptive fields.
func ApplyNameBoost(candidates []*entities.ScoredCandidate, query repositories.FulltextQuery) {
	if len(candidates) == 0 || len(query.Words) == 0 {
		return
	}

	// Document frequency of each query word within the candidate set.
	frequency := make(map[string]int, len(query.Words))
	for _, word := range query.Words {
		for _, candidate := range candidates {
			if candidateContainsWord(candidate.Entity, word) {
				frequency[word]++
			}
		}
	}

	for _, candidate := range candidates {
		name := strings.ToLower(candidate.Entity.Name)
		boost := 0.0
		for _, word := range query.Words {
			if !candidateContainsWord(candidate.Entity, word) {
				continue
			}
			switch freq := frequency[word]; {
			case freq <= 1:
				boost += 10
			case freq <= 3:
				boost += 3
			default:
				boost += 0.5
			}
			if strings.Contains(name, word) {
				boost += 2
			}
		}
		if len(query.Words) > 1 && strings.Contains(name, query.Raw) {
			boost += 5
		}
		if boost > 0 {
			candidate.Score += boost
			candidate.MatchKind = entities.MatchFulltextBoosted
		}
	}
}

func candidateContainsWord(entity *entities.LocationEntity, word string) bool {
	if strings.Contains(strings.ToLower(entity.Name), word) {
		return true
	}
	for _, alias := range entity.Aliases {
		if strings.Contains(strings.ToLower(alias), word) {
			return true
		}
	}
	for _, field := range []string{entity.Description, entity.Category, entity.Address} {
		if field != "" && strings.Contains(strings.ToLower(field), word) {
			return true
		}
	}
	return false
}
