// Package classify decides whether an inbound post is a relay-worthy
// alert and resolves its audience context from a fixed keyword
// vocabulary.
package classify

import (
	"fmt"
	"regexp"
	"strings"
)

// Context describes the audience a matched keyword maps to.
type Context struct {
	Country  string
	Flag     string
	Audience string
}

// Classifier matches text against an ordered keyword vocabulary.
// Vocabulary order is significant: when several terms match the same
// message, ResolveContext returns the context of the first term in
// declared order, so resolution is deterministic.
type Classifier struct {
	terms    []string
	patterns map[string]*regexp.Regexp
	contexts map[string]Context
	fallback Context
	combined *regexp.Regexp
}

// DefaultTerms is the active vocabulary, in priority order.
func DefaultTerms() []string {
	return []string{"nigeria", "hausa", "urdu", "hindi"}
}

// DefaultContexts maps vocabulary terms to audience contexts. The
// filipino entry has no active term but is kept so re-enabling the
// term needs only a vocabulary change.
func DefaultContexts() map[string]Context {
	return map[string]Context{
		"nigeria":  {Country: "Nigeria", Flag: "🇳🇬", Audience: "Nigeria Users"},
		"hausa":    {Country: "Nigeria", Flag: "🇳🇬", Audience: "Nigeria Users"},
		"filipino": {Country: "Philippines", Flag: "🇵🇭", Audience: "Philippines Users"},
		"hindi":    {Country: "India", Flag: "🇮🇳", Audience: "India Users"},
		"urdu":     {Country: "Pakistan", Flag: "🇵🇰", Audience: "Pakistan Users"},
	}
}

// DefaultContext is used when no matched term has a context mapping.
func DefaultContext() Context {
	return Context{Country: "Nigeria", Flag: "🇳🇬", Audience: "Nigeria Users"}
}

// New compiles a classifier for the given vocabulary. Terms match
// case-insensitively on word boundaries; spaces inside a term match
// any run of whitespace.
func New(terms []string, contexts map[string]Context, fallback Context) (*Classifier, error) {
	if len(terms) == 0 {
		return nil, fmt.Errorf("classify: empty vocabulary")
	}

	c := &Classifier{
		terms:    append([]string(nil), terms...),
		patterns: make(map[string]*regexp.Regexp, len(terms)),
		contexts: contexts,
		fallback: fallback,
	}

	alternatives := make([]string, 0, len(terms))
	for _, term := range terms {
		expr := termExpr(term)
		p, err := regexp.Compile(`(?i)\b` + expr + `\b`)
		if err != nil {
			return nil, fmt.Errorf("classify: term %q: %w", term, err)
		}
		c.patterns[term] = p
		alternatives = append(alternatives, expr)
	}

	combined, err := regexp.Compile(`(?i)\b(?:` + strings.Join(alternatives, "|") + `)\b`)
	if err != nil {
		return nil, fmt.Errorf("classify: combined pattern: %w", err)
	}
	c.combined = combined

	return c, nil
}

// NewDefault builds a classifier with the built-in vocabulary.
func NewDefault() *Classifier {
	c, err := New(DefaultTerms(), DefaultContexts(), DefaultContext())
	if err != nil {
		panic(err) // built-in vocabulary always compiles
	}
	return c
}

func termExpr(term string) string {
	return strings.ReplaceAll(regexp.QuoteMeta(term), " ", `\s+`)
}

// IsAlert reports whether the text contains any vocabulary term.
func (c *Classifier) IsAlert(text string) bool {
	return c.combined.MatchString(text)
}

// Matches returns the set of vocabulary terms present in the text.
func (c *Classifier) Matches(text string) map[string]bool {
	matched := make(map[string]bool)
	for _, term := range c.terms {
		if c.patterns[term].MatchString(text) {
			matched[term] = true
		}
	}
	return matched
}

// ResolveContext walks the vocabulary in declared order and returns
// the context of the first matched term that has a mapping, or the
// fallback context when none does.
func (c *Classifier) ResolveContext(matched map[string]bool) Context {
	for _, term := range c.terms {
		if !matched[term] {
			continue
		}
		if ctx, ok := c.contexts[strings.ToLower(term)]; ok {
			return ctx
		}
	}
	return c.fallback
}
