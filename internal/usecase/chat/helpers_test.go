package chat

import (
	"strings"
	"testing"

	"github.com/markaz/report-assistant/internal/entity"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestContextBlock(t *testing.T) {
	t.Run("empty retrieval yields fallback note", func(t *testing.T) {
		assert.Equal(t, emptyContextNote, contextBlock(nil))
	})

	t.Run("passages rendered with citations", func(t *testing.T) {
		passages := []entity.Passage{
			{Text: "Rental rates rose 3%.", Source: "report.pdf", PageNumbers: "12"},
			{Text: "Vacancy fell.", Source: "report.pdf", Title: "Office market"},
		}

		block := contextBlock(passages)

		assert.Contains(t, block, "Rental rates rose 3%.")
		assert.Contains(t, block, "Source: report.pdf - p. 12")
		assert.Contains(t, block, "Title: Office market")
		assert.Contains(t, block, "\n\n")
	})
}

func TestBuildPrompt(t *testing.T) {
	passages := []entity.Passage{{Text: "Credit grew.", Source: "report.pdf"}}
	history := []entity.Message{
		{Role: entity.RoleUser, Content: "first question"},
		{Role: entity.RoleAssistant, Content: "first answer"},
	}

	messages := buildPrompt(passages, history, "second question", 1000)

	require.Len(t, messages, 4)
	assert.Equal(t, entity.RoleSystem, messages[0].Role)
	assert.Contains(t, messages[0].Content, "Credit grew.")
	assert.Equal(t, "first question", messages[1].Content)
	assert.Equal(t, "first answer", messages[2].Content)
	assert.Equal(t, entity.RoleUser, messages[3].Role)
	assert.Equal(t, "second question", messages[3].Content)
}

func TestTrimHistory(t *testing.T) {
	// 30 ASCII chars estimate to 15 tokens each
	content := strings.Repeat("a", 30)
	history := []entity.Message{
		{Role: entity.RoleUser, Content: content},
		{Role: entity.RoleAssistant, Content: content},
		{Role: entity.RoleUser, Content: content},
	}

	t.Run("everything fits", func(t *testing.T) {
		assert.Len(t, trimHistory(history, 1000), 3)
	})

	t.Run("oldest turns dropped first", func(t *testing.T) {
		trimmed := trimHistory(history, 30)
		require.Len(t, trimmed, 2)
		assert.Equal(t, entity.RoleAssistant, trimmed[0].Role)
	})

	t.Run("zero budget drops everything", func(t *testing.T) {
		assert.Empty(t, trimHistory(history, 0))
	})

	t.Run("order preserved", func(t *testing.T) {
		trimmed := trimHistory(history, 1000)
		assert.Equal(t, entity.RoleUser, trimmed[0].Role)
		assert.Equal(t, entity.RoleUser, trimmed[2].Role)
	})
}

func TestDetectDefinitionRequest(t *testing.T) {
	assert.True(t, detectDefinitionRequest("What is a REIT?"))
	assert.True(t, detectDefinitionRequest("define occupancy rate"))
	assert.True(t, detectDefinitionRequest("Explain the credit figures"))
	assert.False(t, detectDefinitionRequest("How did rents change in Q1?"))
}

func TestFormatDefinitionResponse(t *testing.T) {
	t.Run("already headed passes through", func(t *testing.T) {
		in := "## Definition\n\n- a point"
		assert.Equal(t, in, formatDefinitionResponse(in))
	})

	t.Run("existing bullets get a header", func(t *testing.T) {
		out := formatDefinitionResponse("- first\n- second")
		assert.True(t, strings.HasPrefix(out, definitionHeader))
		assert.Contains(t, out, "- first")
	})

	t.Run("prose becomes bullets", func(t *testing.T) {
		out := formatDefinitionResponse("A REIT owns property. It pays out income. Investors buy shares.")
		assert.True(t, strings.HasPrefix(out, definitionHeader))
		assert.Contains(t, out, "- A REIT owns property\n")
		assert.Contains(t, out, "- Investors buy shares\n")
	})

	t.Run("single sentence unchanged", func(t *testing.T) {
		in := "A REIT owns property"
		assert.Equal(t, in, formatDefinitionResponse(in))
	})
}
