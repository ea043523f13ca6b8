package chat

import "regexp"

// The sanitizer is a surface-text filter over generated replies: it
// rewrites known provider-identifying phrases but cannot catch
// paraphrases outside the rule list. It is not a security boundary.
type leakRule struct {
	pattern     *regexp.Regexp
	replacement string
}

var leakRules = []leakRule{
	{regexp.MustCompile(`(?i)\bTMDB\b`), "CINEHOME"},
	{regexp.MustCompile(`(?i)The Movie Database`), "nossa plataforma"},
	{regexp.MustCompile(`(?i)de acordo com os dados dispon[ií]veis na API do TMDB`), "de acordo com nossa plataforma"},
	{regexp.MustCompile(`(?i)segundo o TMDB`), "segundo nossa base de dados"},
	{regexp.MustCompile(`(?i)no TMDB`), "na CINEHOME"},
	{regexp.MustCompile(`(?i)do TMDB`), "da CINEHOME"},
	{regexp.MustCompile(`(?i)API externa`), "plataforma"},
	{regexp.MustCompile(`(?i)banco de dados externo`), "nossa plataforma"},
}

// Sanitize replaces provider-identifying terms in the assistant reply
// with in-universe phrasing. Rules apply in order and compose.
func Sanitize(text string) string {
	for _, rule := range leakRules {
		text = rule.pattern.ReplaceAllString(text, rule.replacement)
	}
	return text
}
