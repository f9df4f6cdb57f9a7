package client

import (
	"testing"

	"github.com/calebmah/streamchat/internal/services/chat/models"
	"github.com/calebmah/streamchat/internal/stream"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStateTokenFolding(t *testing.T) {
	s := NewState()
	s.Append(models.Message{Role: "user", Content: "hi"})

	s.Apply(stream.Token("Hel"))
	s.Apply(stream.Token("lo"))
	s.Apply(stream.Token(" there"))

	conv := s.Conversation()
	require.Len(t, conv, 2)
	assert.Equal(t, "user", conv[0].Role)
	assert.Equal(t, "assistant", conv[1].Role)
	assert.Equal(t, "Hello there", conv[1].Content)
}

func TestStateTokenFoldingStartsNewAssistantTurn(t *testing.T) {
	s := NewState()
	s.Append(models.Message{Role: "user", Content: "first"})
	s.Apply(stream.Token("answer one"))
	s.Apply(stream.End())

	// Next turn: the user message in between forces a fresh assistant entry
	s.Append(models.Message{Role: "user", Content: "second"})
	s.Begin()
	s.Apply(stream.Token("answer two"))

	conv := s.Conversation()
	require.Len(t, conv, 4)
	assert.Equal(t, "answer one", conv[1].Content)
	assert.Equal(t, "answer two", conv[3].Content)
}

func TestStateUsageReplacedNotAccumulated(t *testing.T) {
	s := NewState()

	s.Apply(stream.UsageReport(stream.Usage{PromptTokens: 10, CompletionTokens: 10, TotalTokens: 20, Cost: 1.0}))
	s.Begin()
	s.Apply(stream.UsageReport(stream.Usage{PromptTokens: 3, CompletionTokens: 4, TotalTokens: 7, Cost: 0.5}))

	usage := s.Usage()
	assert.Equal(t, 7, usage.TotalTokens)
	assert.Equal(t, 0.5, usage.Cost)
}

func TestStateTerminationFinality(t *testing.T) {
	s := NewState()
	s.Apply(stream.Token("kept"))
	s.Apply(stream.End())

	// Anything after the sentinel must not mutate state
	s.Apply(stream.Token(" dropped"))
	s.Apply(stream.UsageReport(stream.Usage{TotalTokens: 99, Cost: 9.9}))

	conv := s.Conversation()
	require.Len(t, conv, 1)
	assert.Equal(t, "kept", conv[0].Content)
	assert.Equal(t, stream.Usage{}, s.Usage())
	assert.True(t, s.Terminated())
}

func TestStateReset(t *testing.T) {
	s := NewState()
	s.Append(models.Message{Role: "user", Content: "hi"})
	s.Apply(stream.Token("yo"))
	s.Apply(stream.UsageReport(stream.Usage{TotalTokens: 5, Cost: 0.1}))

	s.Reset()

	assert.Empty(t, s.Conversation())
	assert.Equal(t, stream.Usage{}, s.Usage())
	assert.False(t, s.Terminated())
}
