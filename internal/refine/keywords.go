package refine

import (
	"regexp"
	"strings"
)

// Keywords is a free-text request reduced to searchable terms.
type Keywords struct {
	Terms    []string `json:"search_terms"`
	Query    string   `json:"search_query"`
	Original string   `json:"original_text"`
}

var nonWord = regexp.MustCompile(`[^\w\s']`)

var stopWords = toSet(
	"a", "an", "the", "some", "any", "this", "that", "these", "those",
	"i", "me", "my", "we", "our", "you", "your", "it", "its",
	"want", "need", "get", "give", "have", "like", "love", "crave", "craving",
	"order", "find", "search", "looking", "show", "bring", "make",
	"would", "could", "can", "please", "just", "really", "very", "wanna",
	"gonna", "gotta", "lemme", "let", "im", "i'm", "id", "i'd",
	"um", "uh", "hmm", "oh", "ah", "er", "basically", "actually",
	"maybe", "probably", "think", "guess", "something", "anything", "stuff",
	"for", "to", "from", "with", "without", "and", "or", "but", "of", "in", "on", "at",
	"tonight", "today", "now", "right", "later", "soon",
	"here", "there", "nearby", "near", "close", "around", "somewhere", "anywhere",
	"food", "eat", "eating", "hungry", "meal", "dinner", "lunch", "breakfast",
	"snack", "delivery", "deliver", "delivered", "ordering",
	"be", "is", "are", "was", "were", "been", "being",
	"do", "does", "did", "doing", "done",
	"go", "going", "went", "gone",
	"know", "see", "feel", "look",
	"good", "great", "nice", "best", "better",
	"one", "two", "three", "first", "second",
	"also", "too", "so", "then", "than", "as", "if",
	"yes", "no", "ok", "okay", "sure", "alright",
	"hey", "hi", "hello", "thanks", "thank",
)

func toSet(words ...string) map[string]struct{} {
	m := make(map[string]struct{}, len(words))
	for _, w := range words {
		m[w] = struct{}{}
	}
	return m
}

// ExtractKeywords strips filler words from a spoken or typed request, e.g.
// "I'd really love a spicy chicken shawarma tonight" -> [spicy chicken shawarma].
// Terms keep their first-occurrence order and are deduplicated.
func ExtractKeywords(text string) Keywords {
	original := strings.TrimSpace(text)
	if original == "" {
		return Keywords{Terms: []string{}}
	}

	cleaned := nonWord.ReplaceAllString(strings.ToLower(original), " ")

	terms := []string{}
	seen := make(map[string]struct{})
	for _, word := range strings.Fields(cleaned) {
		word = strings.Trim(word, "'")
		if len(word) < 2 {
			continue
		}
		if _, stop := stopWords[word]; stop {
			continue
		}
		if _, dup := seen[word]; dup {
			continue
		}
		seen[word] = struct{}{}
		terms = append(terms, word)
	}

	return Keywords{
		Terms:    terms,
		Query:    strings.Join(terms, " "),
		Original: original,
	}
}
