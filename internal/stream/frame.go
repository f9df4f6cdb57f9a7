// Package stream defines the wire protocol carried between the completion
// gateway and its clients: token deltas, a usage report and a termination
// sentinel, framed as line-oriented "data:" blocks separated by blank lines.
package stream

import (
	"bytes"
	"encoding/json"
	"strings"
)

// EndSentinel is the reserved payload that marks the end of a response
// stream. Its receipt is the sole authoritative signal that no further
// frames follow.
const EndSentinel = "[END_OF_STREAM]"

const (
	framePrefix    = "data: "
	frameDelimiter = "\n\n"
	usageType      = "usage"
)

// EventKind discriminates the variants of Event.
type EventKind int

const (
	// KindToken carries one incremental fragment of assistant output.
	KindToken EventKind = iota
	// KindUsage carries the authoritative token counts and cost for a
	// completed response. Emitted at most once per response.
	KindUsage
	// KindEnd marks the end of the response stream.
	KindEnd
)

// Usage holds the token counts and dollar cost for one completion.
// It is replaced wholesale on each completion, never merged.
type Usage struct {
	PromptTokens     int     `json:"prompt_tokens"`
	CompletionTokens int     `json:"completion_tokens"`
	TotalTokens      int     `json:"total_tokens"`
	Cost             float64 `json:"cost"`
}

// Event is one unit of the wire protocol.
type Event struct {
	Kind  EventKind
	Token string
	Usage Usage
}

// Token builds a token delta event
func Token(text string) Event {
	return Event{Kind: KindToken, Token: text}
}

// UsageReport builds a usage report event
func UsageReport(u Usage) Event {
	return Event{Kind: KindUsage, Usage: u}
}

// End builds the termination event
func End() Event {
	return Event{Kind: KindEnd}
}

// usageEnvelope is the structured payload of a usage frame.
type usageEnvelope struct {
	Type  string `json:"type"`
	Usage Usage  `json:"usage"`
}

// EncodeFrame serialises an event into one frame. Every payload line is
// prefixed with "data: " and the frame is terminated by a blank line, so
// tokens containing newlines survive framing intact.
func EncodeFrame(ev Event) []byte {
	var payload string
	switch ev.Kind {
	case KindUsage:
		// Usage contains only numeric fields; Marshal cannot fail.
		raw, _ := json.Marshal(usageEnvelope{Type: usageType, Usage: ev.Usage})
		payload = string(raw)
	case KindEnd:
		payload = EndSentinel
	default:
		payload = ev.Token
	}

	var b bytes.Buffer
	for i, line := range strings.Split(payload, "\n") {
		if i > 0 {
			b.WriteByte('\n')
		}
		b.WriteString(framePrefix)
		b.WriteString(line)
	}
	b.WriteString(frameDelimiter)
	return b.Bytes()
}

// Classify maps a decoded frame payload to an event. The order is
// deterministic: structured usage payload first, then the termination
// sentinel, then a literal token. Total over all inputs.
func Classify(payload string) Event {
	var env usageEnvelope
	if err := json.Unmarshal([]byte(payload), &env); err == nil && env.Type == usageType {
		return UsageReport(env.Usage)
	}
	if payload == EndSentinel {
		return End()
	}
	return Token(payload)
}

// Decoder incrementally reassembles frames from a byte stream. The
// transport may split frames across arbitrary chunk boundaries; Feed
// buffers partial input and only yields events for complete frames.
type Decoder struct {
	buf bytes.Buffer
}

// Feed appends raw bytes and returns the events for every frame
// completed so far, in arrival order.
func (d *Decoder) Feed(p []byte) []Event {
	d.buf.Write(p)

	var events []Event
	for {
		raw := d.buf.Bytes()
		idx := bytes.Index(raw, []byte(frameDelimiter))
		if idx < 0 {
			return events
		}
		frame := string(raw[:idx])
		d.buf.Next(idx + len(frameDelimiter))
		events = append(events, Classify(stripPrefix(frame)))
	}
}

// stripPrefix removes the "data: " marker from each payload line and
// rejoins multi-line payloads with the newline the encoder split on.
func stripPrefix(frame string) string {
	lines := strings.Split(frame, "\n")
	for i, line := range lines {
		if strings.HasPrefix(line, framePrefix) {
			lines[i] = line[len(framePrefix):]
		} else if strings.HasPrefix(line, "data:") {
			lines[i] = line[len("data:"):]
		}
	}
	return strings.Join(lines, "\n")
}
