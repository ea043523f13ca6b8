package chat

import (
	"fmt"
	"strings"

	"github.com/eliswilliam/CINEHOME/internal/models"

	"github.com/cloudwego/eino/schema"
)

// The persona and non-disclosure rules are fixed text. Keeping the prompt
// free of timestamps or randomness makes assembled output reproducible
// for identical history and metadata.
const promptHeader = `Você é o Assistente Virtual da CINEHOME 🎬, uma plataforma de streaming de filmes e séries.

⚠️ REGRAS DE SEGURANÇA CRÍTICAS (PROIBIDO VIOLAR):
━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━
🚫 JAMAIS mencione as palavras: "TMDB", "TMDb", "The Movie Database", "API", "banco de dados externo"
🚫 JAMAIS revele a origem técnica dos dados
🚫 JAMAIS diga "de acordo com o TMDB" ou "segundo o TMDB"
🚫 JAMAIS mencione que os dados vêm de fora da CINEHOME
✅ SEMPRE diga: "de acordo com nossa plataforma" ou "na CINEHOME" ou "em nossa base de dados"
✅ SEMPRE apresente as informações como se fossem EXCLUSIVAS da CINEHOME
━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━
`

const promptFooter = `
INSTRUÇÕES DE FORMATAÇÃO:
1. NUNCA use asteriscos (*), sublinhados (_) ou qualquer sintaxe Markdown
2. NUNCA use **negrito** ou *itálico* com asteriscos
3. Use apenas texto simples e limpo
4. Para destacar informações importantes, use MAIÚSCULAS ou emojis
5. Organize as informações de forma clara com quebras de linha

INSTRUÇÕES DE CONTEÚDO:
1. SEMPRE que houver informações no contexto acima, USE-AS como fonte principal
2. Apresente as informações como dados EXCLUSIVOS da CINEHOME
3. Seja amigável, informal e entusiasmado sobre filmes
4. Use emojis relacionados a cinema quando apropriado 🎥🍿🎬⭐
5. Se o usuário perguntar sobre um filme e você tiver dados, forneça de forma organizada
6. Se não encontrar o filme, diga: "Este filme não está disponível em nossa plataforma no momento"
7. Ajude o usuário a descobrir filmes baseado em suas preferências
8. Responda SEMPRE em português brasileiro de forma profissional mas amigável
9. Se o usuário fizer perguntas gerais sobre cinema, responda com conhecimento geral

LEMBRE-SE: Você representa a CINEHOME e todas as informações vêm da nossa plataforma!`

// BuildMessages assembles the full LLM input: system prompt (persona,
// non-disclosure rules, optional movie context), retained history in
// order, then the current user message.
func BuildMessages(history []Message, movies []*Movie, userMessage string) []*schema.Message {
	messages := make([]*schema.Message, 0, len(history)+2)
	messages = append(messages, &schema.Message{
		Role:    schema.System,
		Content: systemPrompt(movies),
	})
	for _, msg := range history {
		messages = append(messages, &schema.Message{
			Role:    schemaRole(msg.Role),
			Content: msg.Content,
		})
	}
	messages = append(messages, &schema.Message{
		Role:    schema.User,
		Content: userMessage,
	})
	return messages
}

func systemPrompt(movies []*Movie) string {
	var b strings.Builder
	b.WriteString(promptHeader)
	if len(movies) > 0 {
		b.WriteString("\n\n=== INFORMAÇÕES DOS FILMES (Base de Dados CINEHOME) ===\n")
		for _, movie := range movies {
			writeMovieBlock(&b, movie)
		}
	}
	b.WriteString(promptFooter)
	return b.String()
}

func writeMovieBlock(b *strings.Builder, m *Movie) {
	fmt.Fprintf(b, "\n📽️ FILME ENCONTRADO:\n")
	fmt.Fprintf(b, "   TÍTULO: %s\n", m.Title)
	fmt.Fprintf(b, "   TÍTULO ORIGINAL: %s\n", m.OriginalTitle)
	fmt.Fprintf(b, "   ANO: %s\n", m.Year)
	fmt.Fprintf(b, "   AVALIAÇÃO: ⭐ %.1f/10 (%d votos)\n", m.Rating, m.Votes)
	fmt.Fprintf(b, "   GÊNEROS: %s\n", strings.Join(m.Genres, ", "))
	fmt.Fprintf(b, "   DURAÇÃO: %s\n", m.Runtime)
	fmt.Fprintf(b, "   SINOPSE: %s\n", m.Synopsis)
	fmt.Fprintf(b, "   POPULARIDADE: %.1f\n", m.Popularity)
	fmt.Fprintf(b, "   STATUS: %s\n", m.Status)
	if m.Budget != "" && m.Budget != NotAvailable {
		fmt.Fprintf(b, "   ORÇAMENTO: %s\n", m.Budget)
	}
	if m.Revenue != "" && m.Revenue != NotAvailable {
		fmt.Fprintf(b, "   RECEITA: %s\n", m.Revenue)
	}
	b.WriteString("\n---\n")
}

func schemaRole(role models.Role) schema.RoleType {
	switch role {
	case models.RoleAssistant:
		return schema.Assistant
	case models.RoleSystem:
		return schema.System
	default:
		return schema.User
	}
}
