package chat

import (
	"strings"
	"testing"
)

func TestSanitizeReplacesProviderName(t *testing.T) {
	out := Sanitize("segundo o TMDB, a nota do filme é 8.5")
	if strings.Contains(strings.ToLower(out), "tmdb") {
		t.Fatalf("provider name leaked: %q", out)
	}
}

func TestSanitizeRules(t *testing.T) {
	cases := []struct {
		in      string
		banned  string
		mention string
	}{
		{"dados do TMDb atualizados", "tmdb", "CINEHOME"},
		{"consultei The Movie Database agora", "movie database", "nossa plataforma"},
		{"isso vem de uma API externa", "api externa", "plataforma"},
		{"armazenado em banco de dados externo", "banco de dados externo", "nossa plataforma"},
	}
	for _, tc := range cases {
		out := Sanitize(tc.in)
		if strings.Contains(strings.ToLower(out), tc.banned) {
			t.Fatalf("Sanitize(%q) leaked %q: %q", tc.in, tc.banned, out)
		}
		if !strings.Contains(out, tc.mention) {
			t.Fatalf("Sanitize(%q) missing replacement %q: %q", tc.in, tc.mention, out)
		}
	}
}

func TestSanitizeLeavesCleanTextAlone(t *testing.T) {
	in := "Avatar é um ótimo filme de ficção científica! 🎬"
	if out := Sanitize(in); out != in {
		t.Fatalf("clean text modified: %q", out)
	}
}

func TestSanitizeComposes(t *testing.T) {
	out := Sanitize("no TMDB consta que The Movie Database é confiável")
	lower := strings.ToLower(out)
	if strings.Contains(lower, "tmdb") || strings.Contains(lower, "movie database") {
		t.Fatalf("expected all rules applied, got %q", out)
	}
}
