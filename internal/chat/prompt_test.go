package chat

import (
	"strings"
	"testing"

	"github.com/eliswilliam/CINEHOME/internal/models"

	"github.com/cloudwego/eino/schema"
)

func sampleMovie() *Movie {
	return &Movie{
		Title:         "Interestelar",
		OriginalTitle: "Interstellar",
		Year:          "2014",
		Rating:        8.4,
		Votes:         35000,
		Genres:        []string{"Ficção científica", "Drama"},
		Runtime:       "2h 49min",
		Synopsis:      "Exploradores viajam por um buraco de minhoca.",
		Popularity:    120.5,
		Status:        "Released",
		Budget:        "US$ 165.000.000",
		Revenue:       "US$ 701.729.206",
	}
}

func TestBuildMessagesLayout(t *testing.T) {
	history := []Message{
		{Role: models.RoleUser, Content: "oi"},
		{Role: models.RoleAssistant, Content: "olá! 🎬"},
	}
	messages := BuildMessages(history, nil, "me indique um filme")

	if len(messages) != 4 {
		t.Fatalf("expected 4 messages, got %d", len(messages))
	}
	if messages[0].Role != schema.System {
		t.Fatalf("first message must be the system prompt, got %s", messages[0].Role)
	}
	if messages[1].Role != schema.User || messages[1].Content != "oi" {
		t.Fatalf("history order broken: %+v", messages[1])
	}
	if messages[2].Role != schema.Assistant {
		t.Fatalf("expected assistant role, got %s", messages[2].Role)
	}
	last := messages[len(messages)-1]
	if last.Role != schema.User || last.Content != "me indique um filme" {
		t.Fatalf("current message must come last: %+v", last)
	}
}

func TestBuildMessagesOmitsContextWithoutMovies(t *testing.T) {
	messages := BuildMessages(nil, nil, "oi")
	system := messages[0].Content
	if strings.Contains(system, "INFORMAÇÕES DOS FILMES") {
		t.Fatalf("context section present without movies")
	}
	if !strings.Contains(system, "CINEHOME") {
		t.Fatalf("persona missing from system prompt")
	}
}

func TestBuildMessagesMovieContext(t *testing.T) {
	messages := BuildMessages(nil, []*Movie{sampleMovie()}, "fale do filme")
	system := messages[0].Content

	for _, want := range []string{
		"INFORMAÇÕES DOS FILMES",
		"TÍTULO: Interestelar",
		"TÍTULO ORIGINAL: Interstellar",
		"ANO: 2014",
		"⭐ 8.4/10 (35000 votos)",
		"GÊNEROS: Ficção científica, Drama",
		"DURAÇÃO: 2h 49min",
		"ORÇAMENTO: US$ 165.000.000",
		"RECEITA: US$ 701.729.206",
	} {
		if !strings.Contains(system, want) {
			t.Fatalf("system prompt missing %q", want)
		}
	}
}

func TestBuildMessagesSkipsUnavailableMoney(t *testing.T) {
	movie := sampleMovie()
	movie.Budget = NotAvailable
	movie.Revenue = NotAvailable
	system := BuildMessages(nil, []*Movie{movie}, "oi")[0].Content
	if strings.Contains(system, "ORÇAMENTO") || strings.Contains(system, "RECEITA") {
		t.Fatalf("unavailable money fields should be omitted")
	}
}

func TestBuildMessagesDeterministic(t *testing.T) {
	history := []Message{{Role: models.RoleUser, Content: "oi"}}
	movies := []*Movie{sampleMovie()}

	a := BuildMessages(history, movies, "de novo")
	b := BuildMessages(history, movies, "de novo")
	if len(a) != len(b) {
		t.Fatalf("length mismatch")
	}
	for i := range a {
		if a[i].Role != b[i].Role || a[i].Content != b[i].Content {
			t.Fatalf("non-deterministic output at index %d", i)
		}
	}
}
