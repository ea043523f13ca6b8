package chat

import (
	"regexp"
	"strings"
	"unicode/utf8"
)

// Title extraction is a heuristic over user text, not a parser. Each
// pattern family contributes candidates; when none match, a significant
// word fallback builds a single candidate from the leftover words.
var titlePatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)(?:filme|movie|film)\s+["']?([^"'?!.]+)["']?`),
	regexp.MustCompile(`["']([^"']+)["']`),
	regexp.MustCompile(`(?i)sobre\s+([^?!.]+)`),
	regexp.MustCompile(`\b([A-Z][a-z]+(?:\s+[A-Z][a-z]+)*)\b`),
}

var fallbackStopwords = map[string]struct{}{
	"sobre":  {},
	"filme":  {},
	"movie":  {},
	"qual":   {},
	"onde":   {},
	"como":   {},
	"quando": {},
	"quem":   {},
}

// ExtractMovieTitles derives candidate movie titles from a chat message.
// Candidates are deduplicated preserving discovery order; an empty result
// means no movie was mentioned.
func ExtractMovieTitles(message string) []string {
	var titles []string
	seen := make(map[string]struct{})
	add := func(candidate string) {
		candidate = strings.TrimSpace(candidate)
		if utf8.RuneCountInString(candidate) <= 2 {
			return
		}
		if _, ok := seen[candidate]; ok {
			return
		}
		seen[candidate] = struct{}{}
		titles = append(titles, candidate)
	}

	for _, pattern := range titlePatterns {
		for _, match := range pattern.FindAllStringSubmatch(message, -1) {
			add(match[1])
		}
	}

	if len(titles) == 0 {
		var significant []string
		for _, word := range strings.Fields(message) {
			if utf8.RuneCountInString(word) <= 3 {
				continue
			}
			if _, stop := fallbackStopwords[strings.ToLower(word)]; stop {
				continue
			}
			significant = append(significant, word)
		}
		if len(significant) > 0 {
			titles = append(titles, strings.Join(significant, " "))
		}
	}

	return titles
}
