package assistant

import (
	"fmt"
	"regexp"
	"strings"

	"shopbot-backend/internal/catalog"
)

const (
	ReplyNoResults     = "I searched the website but couldn’t find relevant information."
	ReplyNoPricing     = "I searched the website but couldn’t find pricing information for that product."
	ReplyNeedTwo       = "Please mention at least two products to compare."
	PriceNotAvailable  = "price not available"
	WarrantyNotDefined = "warranty not specified"
)

// QueryResult is the answer handed back to callers.
type QueryResult struct {
	Reply    string            `json:"reply"`
	Products []catalog.Product `json:"products"`
}

var (
	pricePattern    = regexp.MustCompile(`₹\d+`)
	warrantyPattern = regexp.MustCompile(`(?i)\d+\s*year`)
)

// ExtractPrice finds a rupee amount such as "₹1999".
func ExtractPrice(content string) (string, bool) {
	m := pricePattern.FindString(content)
	return m, m != ""
}

// ExtractWarranty finds a warranty period such as "2 year".
func ExtractWarranty(content string) (string, bool) {
	m := warrantyPattern.FindString(content)
	return m, m != ""
}

// Synthesize writes the reply for the retrieved items.
func Synthesize(intent Intent, results []KnowledgeItem) QueryResult {
	if len(results) == 0 {
		return QueryResult{Reply: ReplyNoResults, Products: []catalog.Product{}}
	}

	switch intent {
	case IntentComparison:
		return compare(results)
	case IntentRecommendation, IntentPrice:
		top := head(results, 3)
		return QueryResult{Reply: joinContent(top, "\n\n"), Products: productsOf(top)}
	default:
		return QueryResult{Reply: joinContent(head(results, 2), " "), Products: []catalog.Product{}}
	}
}

func compare(results []KnowledgeItem) QueryResult {
	var pair []KnowledgeItem
	for _, it := range results {
		if it.Kind == KindProduct {
			pair = append(pair, it)
		}
		if len(pair) == 2 {
			break
		}
	}
	if len(pair) < 2 {
		return QueryResult{Reply: ReplyNeedTwo, Products: []catalog.Product{}}
	}

	var b strings.Builder
	b.WriteString("Here is a detailed comparison:\n")
	for i, it := range pair {
		price, ok := ExtractPrice(it.Content)
		if !ok {
			price = PriceNotAvailable
		}
		warranty, ok := ExtractWarranty(it.Content)
		if !ok {
			warranty = WarrantyNotDefined
		}
		if i > 0 {
			b.WriteString("\n")
		}
		fmt.Fprintf(&b, "• %s: costs %s, comes with %s warranty.", it.Title, price, warranty)
	}
	fmt.Fprintf(&b, "\n\nSummary:\n%s is better for premium features, while %s is more budget-friendly.",
		pair[0].Title, pair[1].Title)

	return QueryResult{Reply: b.String(), Products: productsOf(pair)}
}

func head(items []KnowledgeItem, n int) []KnowledgeItem {
	if len(items) > n {
		return items[:n]
	}
	return items
}

func joinContent(items []KnowledgeItem, sep string) string {
	parts := make([]string, len(items))
	for i, it := range items {
		parts[i] = it.Content
	}
	return strings.Join(parts, sep)
}

func productsOf(items []KnowledgeItem) []catalog.Product {
	out := make([]catalog.Product, len(items))
	for i, it := range items {
		out[i] = it.Product
	}
	return out
}
