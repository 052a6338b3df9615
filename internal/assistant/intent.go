package assistant

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

type Intent string

const (
	IntentPrice          Intent = "price"
	IntentRecommendation Intent = "recommendation"
	IntentComparison     Intent = "comparison"
	IntentWarranty       Intent = "warranty"
	IntentShipping       Intent = "shipping"
	IntentGeneral        Intent = "general"
)

// Rule maps keywords to an intent. A keyword with spaces matches consecutive tokens.
type Rule struct {
	Intent   Intent   `yaml:"intent"`
	Keywords []string `yaml:"keywords"`
}

// DefaultRules is evaluated top to bottom; the first matching rule wins.
var DefaultRules = []Rule{
	{Intent: IntentComparison, Keywords: []string{"compare", "vs"}},
	{Intent: IntentPrice, Keywords: []string{"price", "cost", "how much"}},
	{Intent: IntentRecommendation, Keywords: []string{"suggest", "recommend", "best", "under", "budget", "top"}},
	{Intent: IntentWarranty, Keywords: []string{"warranty", "guarantee"}},
	{Intent: IntentShipping, Keywords: []string{"delivery", "shipping"}},
}

type Classifier struct {
	rules []Rule
}

func NewClassifier(rules []Rule) *Classifier {
	return &Classifier{rules: rules}
}

var defaultClassifier = NewClassifier(DefaultRules)

// Classify uses the default rule table.
func Classify(tokens []string) Intent {
	return defaultClassifier.Classify(tokens)
}

func (c *Classifier) Classify(tokens []string) Intent {
	for _, r := range c.rules {
		for _, kw := range r.Keywords {
			if containsPhrase(tokens, kw) {
				return r.Intent
			}
		}
	}
	return IntentGeneral
}

// Rules returns a copy of the classifier's table.
func (c *Classifier) Rules() []Rule {
	out := make([]Rule, len(c.rules))
	for i, r := range c.rules {
		out[i] = Rule{Intent: r.Intent, Keywords: append([]string(nil), r.Keywords...)}
	}
	return out
}

func containsPhrase(tokens []string, phrase string) bool {
	words := strings.Fields(phrase)
	if len(words) == 0 || len(words) > len(tokens) {
		return false
	}
	for i := 0; i+len(words) <= len(tokens); i++ {
		match := true
		for j, w := range words {
			if tokens[i+j] != w {
				match = false
				break
			}
		}
		if match {
			return true
		}
	}
	return false
}

// LoadRules reads keyword overrides from a YAML file of the form
//
//	rules:
//	  - intent: comparison
//	    keywords: [compare, versus]
//
// Priority always follows DefaultRules; intents missing from the file keep their defaults.
func LoadRules(path string) ([]Rule, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var file struct {
		Rules []Rule `yaml:"rules"`
	}
	if err := yaml.Unmarshal(b, &file); err != nil {
		return nil, fmt.Errorf("parsing intent rules %s: %w", path, err)
	}

	overrides := make(map[Intent][]string, len(file.Rules))
	for _, r := range file.Rules {
		if !isRuleIntent(r.Intent) {
			return nil, fmt.Errorf("intent rules %s: unknown intent %q", path, r.Intent)
		}
		kws := make([]string, 0, len(r.Keywords))
		for _, kw := range r.Keywords {
			if kw = strings.ToLower(strings.TrimSpace(kw)); kw != "" {
				kws = append(kws, kw)
			}
		}
		overrides[r.Intent] = kws
	}

	rules := NewClassifier(DefaultRules).Rules()
	for i := range rules {
		if kws, ok := overrides[rules[i].Intent]; ok {
			rules[i].Keywords = kws
		}
	}
	return rules, nil
}

func isRuleIntent(i Intent) bool {
	for _, r := range DefaultRules {
		if r.Intent == i {
			return true
		}
	}
	return false
}
