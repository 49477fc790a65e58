package chat

import (
	"fmt"
	"strings"

	"github.com/markaz/report-assistant/internal/entity"
	"github.com/markaz/report-assistant/internal/pkg/tokens"
)

const systemPromptTemplate = `You are a helpful real estate analyst assistant that answers questions based on the KFH Real Estate Report 2025 Q1.
Use only the information from the provided context to answer questions. If you're unsure or the context doesn't contain the relevant information, say so.

RESPONSE STYLE: CONCISE & FOCUSED
- Keep answers brief and to the point
- Use bullet points for key data
- Highlight important numbers with **bold**
- Avoid lengthy explanations unless specifically requested
- Focus on the most relevant information first

DEFINITION RESPONSES:
- For "what is", "definition", "what does mean" questions:
  * Provide clear, concise definitions
  * Use bullet points for key characteristics
  * Highlight specific requirements or criteria with **bold**
  * Include relevant examples if available
  * Keep to 3-5 key points maximum

Context from KFH Real Estate Report 2025 Q1:
%s

Always provide accurate, data-driven insights based on the report content.
Be concise and direct in your responses.`

const emptyContextNote = "No relevant excerpts were found in the report for this question. " +
	"Say that the report does not cover it, or answer from general knowledge while making clear the answer is not from the report."

// buildPrompt assembles the chat-completions message list: analyst system
// prompt carrying the retrieved context, then the trimmed history ending
// with the current question.
func buildPrompt(passages []entity.Passage, history []entity.Message, question string, historyBudget int) []entity.ChatMessage {
	system := fmt.Sprintf(systemPromptTemplate, contextBlock(passages))

	trimmed := trimHistory(history, historyBudget)

	messages := make([]entity.ChatMessage, 0, len(trimmed)+2)
	messages = append(messages, entity.ChatMessage{Role: entity.RoleSystem, Content: system})
	for _, m := range trimmed {
		messages = append(messages, entity.ChatMessage{Role: m.Role, Content: m.Content})
	}
	messages = append(messages, entity.ChatMessage{Role: entity.RoleUser, Content: question})

	return messages
}

// contextBlock renders retrieved passages with their source citations, one
// blank-line-separated block per passage.
func contextBlock(passages []entity.Passage) string {
	if len(passages) == 0 {
		return emptyContextNote
	}

	blocks := make([]string, 0, len(passages))
	for _, p := range passages {
		var b strings.Builder
		b.WriteString(p.Text)
		b.WriteString("\nSource: ")
		b.WriteString(p.Citation())
		if p.Title != "" {
			b.WriteString("\nTitle: ")
			b.WriteString(p.Title)
		}
		blocks = append(blocks, b.String())
	}
	return strings.Join(blocks, "\n\n")
}

// trimHistory drops the oldest turns until the remainder fits the token
// budget. History order is preserved; the newest turns always survive.
func trimHistory(history []entity.Message, budget int) []entity.Message {
	if budget <= 0 {
		return nil
	}

	total := 0
	start := len(history)
	for i := len(history) - 1; i >= 0; i-- {
		cost := tokens.Estimate(history[i].Content)
		if total+cost > budget {
			break
		}
		total += cost
		start = i
	}

	return history[start:]
}

var definitionKeywords = []string{
	"what is", "what are", "definition", "define", "what does mean",
	"what does this mean", "explain", "describe", "tell me about",
	"meaning of", "concept of", "understanding",
}

// detectDefinitionRequest reports whether the user asked for a definition
// or explanation, which gets bullet formatting.
func detectDefinitionRequest(input string) bool {
	lower := strings.ToLower(input)
	for _, kw := range definitionKeywords {
		if strings.Contains(lower, kw) {
			return true
		}
	}
	return false
}

const definitionHeader = "## Definition"

// formatDefinitionResponse restructures a definition answer into a headed
// bullet list when the model returned loose prose.
func formatDefinitionResponse(response string) string {
	if strings.HasPrefix(response, "##") {
		return response
	}

	if strings.Contains(response, "•") || strings.Contains(response, "* ") || strings.Contains(response, "- ") {
		return definitionHeader + "\n\n" + response
	}

	sentences := strings.Split(response, ". ")
	if len(sentences) <= 1 {
		return response
	}

	var b strings.Builder
	b.WriteString(definitionHeader)
	b.WriteString("\n\n")
	for _, sentence := range sentences {
		sentence = strings.TrimSpace(sentence)
		if sentence == "" {
			continue
		}
		b.WriteString("- ")
		b.WriteString(strings.TrimSuffix(sentence, "."))
		b.WriteString("\n")
	}
	return b.String()
}
