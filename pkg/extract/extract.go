// Package extract pulls structured alert fields out of free-form
// source posts: the payout amount, a currency code, the recipient
// list and the attribution line.
package extract

import (
	"regexp"
	"strings"
)

// NotSpecified is the amount sentinel when no currency pattern matches.
const NotSpecified = "Not specified"

// DefaultCurrency is the code sentinel when no parenthesized code is found.
const DefaultCurrency = "CRYPTO"

// Alert holds the fields extracted from one source post. It is built
// once per inbound event and not mutated afterwards.
type Alert struct {
	Amount      string
	Currency    string
	Users       []string
	Attribution string
	Body        string
}

// UserCount returns the number of extracted recipients.
func (a *Alert) UserCount() int {
	return len(a.Users)
}

// LineKind tags a source line for the detail scanner.
type LineKind int

const (
	LineOther LineKind = iota
	LineRecipients
	LineAttribution
)

// Extractor owns the compiled patterns. Construct once at startup and
// share; it is read-only after New.
type Extractor struct {
	amountPatterns []*regexp.Regexp
	currencyCode   *regexp.Regexp
	cleaner        *Cleaner
}

// Amount matchers in priority order: naira symbol, NGN code, named
// currency, dollar, then a bare "<number> per user" fallback. The
// first match wins.
var amountExprs = []string{
	`(?i)(₦\s?\d[\d,]*(?:\.\d+)?(?:\s*(?:per|/)\s*user)?)`,
	`(?i)(NGN\s?\d[\d,]*(?:\.\d+)?(?:\s*(?:per|/)\s*user)?)`,
	`(?i)(Naira\s?\d[\d,]*(?:\.\d+)?(?:\s*(?:per|/)\s*user)?)`,
	`(?i)(\$\s?\d[\d,]*(?:\.\d+)?(?:\s*(?:per|/)\s*user)?)`,
	`(?i)(\d[\d,]*(?:\.\d+)?\s*per\s+user)`,
}

func New() *Extractor {
	e := &Extractor{
		currencyCode: regexp.MustCompile(`\(([A-Z]{3,10})\)`),
		cleaner:      NewCleaner(),
	}
	for _, expr := range amountExprs {
		e.amountPatterns = append(e.amountPatterns, regexp.MustCompile(expr))
	}
	return e
}

// Extract builds an Alert from raw post text.
func (e *Extractor) Extract(raw string) Alert {
	a := Alert{
		Amount:   e.Amount(raw),
		Currency: e.Currency(raw),
		Body:     e.cleaner.Clean(raw),
	}
	a.Users, a.Attribution = e.Details(raw)
	return a
}

// Amount returns the first matching currency-tagged amount substring
// verbatim, or NotSpecified.
func (e *Extractor) Amount(text string) string {
	for _, p := range e.amountPatterns {
		if m := p.FindStringSubmatch(text); m != nil {
			return strings.TrimSpace(m[1])
		}
	}
	return NotSpecified
}

// Currency returns the parenthesized uppercase currency code, e.g.
// "USDT" from "(USDT)", or DefaultCurrency when absent.
func (e *Extractor) Currency(text string) string {
	if m := e.currencyCode.FindStringSubmatch(text); m != nil {
		return m[1]
	}
	return DefaultCurrency
}

// ClassifyLine tags a single trimmed line by its prefix.
func ClassifyLine(line string) LineKind {
	switch {
	case strings.HasPrefix(line, "👥"):
		return LineRecipients
	case strings.HasPrefix(line, "🎁"),
		strings.HasPrefix(strings.ToLower(line), "by:"):
		return LineAttribution
	default:
		return LineOther
	}
}

// Details scans the text for recipient and attribution lines. If a
// kind occurs more than once the last occurrence wins. The recipient
// list keeps source order and duplicates; names are trimmed. The
// attribution is normalized to "By: <who>".
func (e *Extractor) Details(text string) (users []string, attribution string) {
	for _, line := range strings.Split(text, "\n") {
		stripped := strings.TrimSpace(line)
		switch ClassifyLine(stripped) {
		case LineAttribution:
			by := strings.TrimSpace(strings.TrimPrefix(stripped, "🎁"))
			if strings.HasPrefix(strings.ToLower(by), "by:") {
				attribution = by
			} else {
				attribution = "By: " + by
			}
		case LineRecipients:
			body := strings.TrimSpace(strings.TrimPrefix(stripped, "👥"))
			_, names, ok := strings.Cut(body, ":")
			if !ok {
				continue
			}
			parsed := make([]string, 0, 4)
			for _, name := range strings.Split(names, ",") {
				if n := strings.TrimSpace(name); n != "" {
					parsed = append(parsed, n)
				}
			}
			users = parsed
		}
	}
	return users, attribution
}
