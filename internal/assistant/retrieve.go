package assistant

import (
	"math"
	"regexp"
	"sort"
	"strconv"
	"strings"
)

var firstInteger = regexp.MustCompile(`\d+`)

// categoryKeywords is checked in order; the first category with a matching token is used.
var categoryKeywords = []struct {
	category string
	words    []string
}{
	{"headphones", []string{"headphone", "headphones"}},
	{"earbuds", []string{"earbud", "earbuds"}},
	{"speakers", []string{"speaker", "speakers"}},
	{"smartwatches", []string{"watch", "smartwatch"}},
	{"soundbars", []string{"soundbar", "soundbars"}},
}

var browseKeywords = []string{"headphones", "products", "items"}

// Retrieve finds the knowledge items relevant to a classified query. It never
// modifies index; conv is consulted only for warranty and shipping follow-ups.
func Retrieve(intent Intent, tokens []string, message string, index []KnowledgeItem, conv Conversation) []KnowledgeItem {
	var results []KnowledgeItem
	switch {
	case intent == IntentPrice:
		results = matchTitles(tokens, index)
	case intent == IntentRecommendation:
		results = recommend(tokens, message, index)
	case intent == IntentGeneral && containsAny(tokens, browseKeywords):
		results = filter(index, func(it KnowledgeItem) bool {
			return it.Kind == KindProduct && strings.Contains(it.contentLower, "headphone")
		})
	default:
		results = search(tokens, index)
	}

	if len(results) == 0 && len(conv.LastProducts) > 0 && (intent == IntentWarranty || intent == IntentShipping) {
		results = filter(index, func(it KnowledgeItem) bool {
			return containsString(conv.LastProducts, it.Title)
		})
	}
	return results
}

func matchTitles(tokens []string, index []KnowledgeItem) []KnowledgeItem {
	return filter(index, func(it KnowledgeItem) bool {
		return it.Kind == KindProduct && anySubstring(tokens, it.titleLower)
	})
}

func recommend(tokens []string, message string, index []KnowledgeItem) []KnowledgeItem {
	budget := ExtractBudget(message)
	category, hasCategory := ExtractCategory(tokens)
	inCategory := func(it KnowledgeItem) bool {
		return it.Kind == KindProduct && (!hasCategory || it.Category == category)
	}

	results := filter(index, func(it KnowledgeItem) bool {
		return inCategory(it) && it.Price <= budget
	})
	sort.SliceStable(results, func(i, j int) bool { return results[i].Rating > results[j].Rating })

	if len(results) == 0 && !math.IsInf(budget, 1) {
		// Nothing fits the budget: show the cheapest options in the category instead.
		results = filter(index, inCategory)
		sort.SliceStable(results, func(i, j int) bool { return results[i].Price < results[j].Price })
	}
	return results
}

// search tries substring matches on title and content first, then falls back to
// edit distance against the whole title.
func search(tokens []string, index []KnowledgeItem) []KnowledgeItem {
	results := filter(index, func(it KnowledgeItem) bool {
		return anySubstring(tokens, it.titleLower) || anySubstring(tokens, it.contentLower)
	})
	if len(results) > 0 {
		return results
	}
	return filter(index, func(it KnowledgeItem) bool {
		for _, tok := range tokens {
			if Levenshtein(tok, it.titleLower) <= fuzzyThreshold(tok) {
				return true
			}
		}
		return false
	})
}

func fuzzyThreshold(token string) int {
	if len([]rune(token)) > 5 {
		return 3
	}
	return 2
}

// ExtractBudget returns the first integer in the message, or +Inf when there is none.
func ExtractBudget(message string) float64 {
	m := firstInteger.FindString(message)
	if m == "" {
		return math.Inf(1)
	}
	v, err := strconv.ParseFloat(m, 64)
	if err != nil {
		return math.Inf(1)
	}
	return v
}

// ExtractCategory maps tokens to a catalog category.
func ExtractCategory(tokens []string) (string, bool) {
	for _, c := range categoryKeywords {
		if containsAny(tokens, c.words) {
			return c.category, true
		}
	}
	return "", false
}

func filter(items []KnowledgeItem, keep func(KnowledgeItem) bool) []KnowledgeItem {
	var out []KnowledgeItem
	for _, it := range items {
		if keep(it) {
			out = append(out, it)
		}
	}
	return out
}

func anySubstring(tokens []string, s string) bool {
	for _, tok := range tokens {
		if strings.Contains(s, tok) {
			return true
		}
	}
	return false
}

func containsAny(tokens []string, needles []string) bool {
	for _, n := range needles {
		if containsString(tokens, n) {
			return true
		}
	}
	return false
}

func containsString(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
