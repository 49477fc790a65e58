package entity

import "time"

// Message roles as they appear on the chat-completions wire.
const (
	RoleSystem    = "system"
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// Message is a single turn of a conversation.
type Message struct {
	Role      string    `json:"role"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"created_at"`
}

// Session holds the per-user conversation state for one interactive session.
// History is append-only and chronological; the session lives in process
// memory only and is destroyed on expiry or explicit delete.
type Session struct {
	ID            string    `json:"id"`
	Authenticated bool      `json:"authenticated"`
	Messages      []Message `json:"messages"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// Passage is one retrieved report excerpt with its similarity score.
// Produced fresh per query, never persisted beyond the request.
type Passage struct {
	Text        string  `json:"text"`
	Score       float64 `json:"score"`
	Source      string  `json:"source"`
	Title       string  `json:"title,omitempty"`
	PageNumbers string  `json:"page_numbers,omitempty"`
}

// Citation renders the passage origin the way the report assistant cites it:
// "filename - p. 12, 13".
func (p Passage) Citation() string {
	if p.PageNumbers == "" {
		return p.Source
	}
	return p.Source + " - p. " + p.PageNumbers
}

// Chart types supported by the visualization branch.
const (
	ChartBar     = "bar"
	ChartPie     = "pie"
	ChartLine    = "line"
	ChartScatter = "scatter"
)

// ChartSpec is the structured chart description emitted when the user
// explicitly asks for a visualization. Categories and Values are parallel,
// sorted by descending value.
type ChartSpec struct {
	Type       string    `json:"type"`
	Title      string    `json:"title"`
	Categories []string  `json:"categories"`
	Values     []float64 `json:"values"`
	Labels     []string  `json:"labels"`
}

// Answer is the composer's result for a single question.
type Answer struct {
	Text     string     `json:"text"`
	Passages []Passage  `json:"passages"`
	Chart    *ChartSpec `json:"chart,omitempty"`
}
