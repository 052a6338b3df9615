// Package assistant answers free-text shopping questions against the product catalog.
//
// A query flows through Normalize, the Classifier, Retrieve and Synthesize. The only
// state carried between queries is a Conversation, which callers pass in and get back.
package assistant

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/rs/zerolog"

	"shopbot-backend/internal/catalog"
)

const KindProduct = "product"

// KnowledgeItem is the searchable form of one product.
type KnowledgeItem struct {
	Kind     string
	Title    string
	Category string
	Price    float64
	Rating   float64
	Images   []string
	Features []string
	// Content is the display sentence shown in replies and searched by text queries.
	Content string
	Product catalog.Product

	titleLower   string
	contentLower string
}

// BuildIndex turns the catalog into knowledge items, one per valid product, in catalog order.
func BuildIndex(products []catalog.Product, log zerolog.Logger) []KnowledgeItem {
	items := make([]KnowledgeItem, 0, len(products))
	for _, p := range products {
		if err := p.Validate(); err != nil {
			log.Warn().Err(err).Int("id", p.ID).Msg("skipping product during indexing")
			continue
		}
		content := describe(p)
		items = append(items, KnowledgeItem{
			Kind:         KindProduct,
			Title:        p.Name,
			Category:     p.Category,
			Price:        p.Price,
			Rating:       p.Rating,
			Images:       p.Images,
			Features:     p.Features,
			Content:      content,
			Product:      p,
			titleLower:   strings.ToLower(p.Name),
			contentLower: strings.ToLower(content),
		})
	}
	return items
}

func describe(p catalog.Product) string {
	return fmt.Sprintf("%s is a %s priced at ₹%s. It has a rating of %s/5. Features: %s.",
		p.Name, p.Category, formatNumber(p.Price), formatNumber(p.Rating), strings.Join(p.Features, ", "))
}

// formatNumber prints 1999 as "1999" and 4.5 as "4.5".
func formatNumber(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
