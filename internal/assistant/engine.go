package assistant

import (
	"github.com/rs/zerolog"

	"shopbot-backend/internal/catalog"
)

// Conversation is the follow-up context of one chat: the titles of the products
// surfaced by the previous answer.
type Conversation struct {
	LastProducts []string `json:"lastProducts"`
}

// remember records the products among results for the next turn.
func remember(results []KnowledgeItem) Conversation {
	titles := make([]string, 0, len(results))
	for _, it := range results {
		if it.Kind == KindProduct {
			titles = append(titles, it.Title)
		}
	}
	return Conversation{LastProducts: titles}
}

type Engine struct {
	products   []catalog.Product
	index      []KnowledgeItem
	classifier *Classifier
	log        zerolog.Logger
}

type EngineOption func(*Engine)

func WithClassifier(c *Classifier) EngineOption {
	return func(e *Engine) { e.classifier = c }
}

func WithLogger(log zerolog.Logger) EngineOption {
	return func(e *Engine) { e.log = log }
}

// NewEngine indexes the catalog once. The catalog slice must not be modified afterwards.
func NewEngine(products []catalog.Product, opts ...EngineOption) *Engine {
	e := &Engine{
		products:   products,
		classifier: defaultClassifier,
		log:        zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(e)
	}
	e.index = BuildIndex(products, e.log)
	return e
}

// Answer runs one query against conv and returns the reply together with the
// conversation to use for the next turn.
func (e *Engine) Answer(conv Conversation, message string) (QueryResult, Conversation) {
	tokens := Normalize(message)
	intent := e.classifier.Classify(tokens)
	results := Retrieve(intent, tokens, message, e.index, conv)

	e.log.Debug().
		Str("intent", string(intent)).
		Strs("tokens", tokens).
		Int("results", len(results)).
		Msg("query classified")

	next := remember(results)
	if intent == IntentPrice && len(results) == 0 {
		return QueryResult{Reply: ReplyNoPricing, Products: []catalog.Product{}}, next
	}
	return Synthesize(intent, results), next
}

// Products returns the catalog the engine was built from.
func (e *Engine) Products() []catalog.Product {
	return e.products
}

// Size is the number of indexed items.
func (e *Engine) Size() int {
	return len(e.index)
}
