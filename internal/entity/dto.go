package entity

import "time"

// AskRequest is the body of POST /sessions/{id}/messages.
type AskRequest struct {
	Question string `json:"question" validate:"required,max=4000"`
}

// AskResponse carries the composed answer back to the client.
type AskResponse struct {
	Answer   string       `json:"answer"`
	Passages []PassageDTO `json:"passages"`
	Chart    *ChartSpec   `json:"chart,omitempty"`
}

// PassageDTO is the wire form of a retrieved passage.
type PassageDTO struct {
	Text   string  `json:"text"`
	Score  float64 `json:"score"`
	Source string  `json:"source"`
	Title  string  `json:"title,omitempty"`
}

// SessionDTO is the wire form of a session with its transcript.
type SessionDTO struct {
	ID        string       `json:"id"`
	Messages  []MessageDTO `json:"messages"`
	CreatedAt time.Time    `json:"created_at"`
	UpdatedAt time.Time    `json:"updated_at"`
}

// MessageDTO is the wire form of one conversation turn.
type MessageDTO struct {
	Role      string    `json:"role"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"created_at"`
}

// CreateSessionResponse is the body of a successful POST /sessions.
type CreateSessionResponse struct {
	SessionID string `json:"session_id"`
}

// ErrorResponse is the uniform error body.
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}
