package models

// Message is a single turn in a conversation. Order is significant:
// the slice a client submits is the exact model input order.
type Message struct {
	Role    string `json:"role" validate:"required,oneof=user assistant system"`
	Content string `json:"content"`
}

// CompletionRequest is the submission payload for one completion.
// Model is optional; the gateway resolves an effective model when it is
// empty.
type CompletionRequest struct {
	Messages []Message `json:"messages" validate:"required,min=1,dive"`
	Model    string    `json:"model,omitempty"`
}
