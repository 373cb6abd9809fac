// Package core holds the provider-agnostic types shared by the stream
// controller, the provider adapters and the delta aggregator.
package core

import (
	"context"
	"fmt"
)

// FinishReason is the provider-supplied tag on the final chunk of a turn.
type FinishReason string

const (
	FinishNone      FinishReason = ""
	FinishStop      FinishReason = "stop"
	FinishToolCalls FinishReason = "tool_calls"
	// FinishOther covers truncation and any reason this module does not act on.
	FinishOther FinishReason = "other"
)

// ToolCallDelta is one incremental tool-call fragment. Index is the position
// the provider assigned the call in its response; ID and Name arrive once,
// early, while ArgsFragment accumulates across many chunks.
type ToolCallDelta struct {
	Index        int
	ID           string
	Name         string
	ArgsFragment string
}

// Chunk is one decoded streaming event in provider-neutral form.
type Chunk struct {
	TextDelta  string
	ToolDeltas []ToolCallDelta
	Finish     FinishReason
}

// ToolCall is a fully reassembled tool invocation, produced by the aggregator
// after a tool_calls finish reason.
type ToolCall struct {
	Index int
	ID    string
	Name  string
	Args  string // concatenated argument fragments; valid JSON only as a whole
}

// ToolDef describes one catalog entry as advertised to the provider.
type ToolDef struct {
	Name        string
	Description string
	JSONSchema  string
}

// Message is the wire-neutral form of one conversation message.
type Message struct {
	Role    string
	Content string
	Images  []Image
}

// Image is an attachment in wire-neutral form.
type Image struct {
	Data []byte
	MIME string
}

// StreamParams carries everything an adapter needs for one streamed call.
type StreamParams struct {
	Model       string
	Messages    []Message
	ToolDefs    []ToolDef
	MaxTokens   int
	Temperature float32
}

// StreamClient is implemented by provider adapters. Stream opens the
// connection, decodes the provider's framing and pushes chunks through emit
// in arrival order. A non-nil error from emit stops the read loop and is
// returned unchanged. Stream returns nil on normal termination (sentinel or
// final finish reason) and a taxonomy error otherwise.
type StreamClient interface {
	Name() string
	Stream(ctx context.Context, params StreamParams, emit func(Chunk) error) error
}

// DefaultImagePrompt is substituted when a message carries images but no text.
func DefaultImagePrompt(n int) string {
	if n == 1 {
		return "What's in this image?"
	}
	return fmt.Sprintf("What's in these %d images?", n)
}
