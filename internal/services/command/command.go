// Package command classifies raw user input before it reaches the
// completion pipeline. Input starting with the "/" sigil may name an
// inline command that alters conversation state locally; anything else
// is an ordinary message.
package command

import "strings"

// Kind discriminates the outcome of parsing one input line.
type Kind int

const (
	// NotHandled means the input is an ordinary user message,
	// including slash-prefixed text with an unrecognised keyword.
	NotHandled Kind = iota
	// Reset requests clearing the conversation and usage state.
	Reset
	// Tool names a tool with a prompt. Recognised but not executed.
	Tool
	// System injects a system message into the conversation.
	System
)

// Result is the classification of one input line. Exactly one Result is
// produced per input.
type Result struct {
	Kind   Kind
	Tool   string
	Prompt string
	Text   string
}

const sigil = "/"

// Parse classifies raw input. Pure and total: every input yields exactly
// one Result, and identical input yields an identical Result.
func Parse(input string) Result {
	if !strings.HasPrefix(input, sigil) {
		return Result{Kind: NotHandled}
	}

	fields := strings.Fields(input[len(sigil):])
	if len(fields) == 0 {
		return Result{Kind: NotHandled}
	}
	keyword := fields[0]
	remainder := strings.Join(fields[1:], " ")

	switch keyword {
	case "image":
		return Result{Kind: Tool, Tool: "image_gen", Prompt: remainder}
	case "reset":
		return Result{Kind: Reset}
	case "system":
		return Result{Kind: System, Text: remainder}
	default:
		// Deliberate fallback: the literal text, sigil included, is
		// treated as a normal user message.
		return Result{Kind: NotHandled}
	}
}
