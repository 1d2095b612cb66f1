package extract

import (
	"regexp"
	"strings"
	"unicode"
)

// Section headers that start a leaderboard block. Compared against the
// lowercased trimmed line.
var leaderboardHeaders = []string{
	"⭐️--- this week’s top rain collectors",
	"🌟--- this month’s top rain collectors",
	"💸--- this week’s top rain givers",
	"🌾--- top 10 farmers",
}

// Markers for ranked leaderboard entries that continue a skipped block.
var rankedMarkers = []string{"1️⃣", "2️⃣", "3️⃣", "4️⃣", "5️⃣"}

// Cleaner normalizes raw post text before it is relayed. Cleaning is
// idempotent: cleaning already-clean text yields the same output.
type Cleaner struct {
	blankRuns      *regexp.Regexp
	horizontalRuns *regexp.Regexp
}

func NewCleaner() *Cleaner {
	return &Cleaner{
		blankRuns:      regexp.MustCompile(`\n{3,}`),
		horizontalRuns: regexp.MustCompile(`[ \t]{2,}`),
	}
}

// Clean collapses emoji spam and whitespace runs, strips leaderboard
// blocks, and drops blank lines.
func (c *Cleaner) Clean(text string) string {
	trimmed := strings.TrimSpace(text)
	trimmed = collapseWideRepeats(trimmed)
	trimmed = c.blankRuns.ReplaceAllString(trimmed, "\n\n")
	trimmed = c.horizontalRuns.ReplaceAllString(trimmed, " ")

	var kept []string
	skipBlock := false
	for _, line := range strings.Split(trimmed, "\n") {
		normalized := strings.ToLower(strings.TrimSpace(line))
		if isLeaderboardHeader(normalized) {
			skipBlock = true
			continue
		}
		if skipBlock && isRankedEntry(normalized) {
			continue
		}
		skipBlock = false
		if strings.TrimSpace(line) != "" {
			kept = append(kept, line)
		}
	}
	return strings.Join(kept, "\n")
}

func isLeaderboardHeader(normalized string) bool {
	for _, h := range leaderboardHeaders {
		if strings.HasPrefix(normalized, h) {
			return true
		}
	}
	return false
}

func isRankedEntry(normalized string) bool {
	if normalized == "" {
		return true
	}
	r := []rune(normalized)[0]
	if unicode.IsDigit(r) {
		return true
	}
	for _, m := range rankedMarkers {
		if strings.HasPrefix(normalized, m) {
			return true
		}
	}
	return false
}

// collapseWideRepeats reduces runs of three or more identical
// supplementary-plane runes (emoji and the like) down to two. RE2 has
// no backreferences, so this is a rune scan.
func collapseWideRepeats(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	var prev rune = -1
	run := 0
	for _, r := range s {
		if r == prev {
			run++
		} else {
			prev = r
			run = 1
		}
		if r >= 0x10000 && run > 2 {
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}
