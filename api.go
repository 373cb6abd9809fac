package llmstream

import "context"

// MessageRole defines who authored a message.
type MessageRole string

const (
	RoleSystem    MessageRole = "system"
	RoleUser      MessageRole = "user"
	RoleAssistant MessageRole = "assistant"
)

// ImageBlob is an image attachment supplied by the caller.
// The core never mutates it; adapters base64-encode Data for the wire.
type ImageBlob struct {
	Data []byte
	MIME string
}

// Message is one conversational message.
type Message struct {
	Role    MessageRole
	Content string
	Images  []ImageBlob
}

// EventKind tags a StreamEvent.
type EventKind int

const (
	// EventTextDelta carries an incremental text fragment.
	EventTextDelta EventKind = iota
	// EventToolResult carries the confirmation string of one executed tool call.
	EventToolResult
	// EventEnd marks a normal end of the stream. Terminal.
	EventEnd
	// EventFailure carries a terminal error. Terminal.
	EventFailure
)

// StreamEvent is the sole output of a stream. Consumers append Text for
// EventTextDelta/EventToolResult in arrival order and stop on EventEnd or
// EventFailure. Err is set only for EventFailure; match it against the
// sentinels in the errors package with errors.Is.
type StreamEvent struct {
	Kind EventKind
	Text string
	Err  error
}

// Tool is implemented by any callable action the model can invoke.
// Parameters must return a pointer to a zero-value struct for JSON schema
// generation and unmarshalling. Execute returns a short user-visible
// confirmation; it reports an error only for failures the executor should
// render as a warning string, never for control flow.
type Tool interface {
	Name() string
	Description() string
	Parameters() any
	Execute(ctx context.Context, args any) (string, error)
}

// Request describes a single streamed turn.
type Request struct {
	// Provider selects a configured provider by name ("openai", "gemini").
	// Empty selects the configured default.
	Provider    string
	Messages    []Message
	MaxTokens   int
	Temperature float32
}

// Streamer is the only type applications use.
type Streamer interface {
	// Stream opens one streamed completion and returns its event sequence.
	// The channel is unbuffered and closed after a terminal event.
	// Cancelling ctx closes the connection; tool calls whose buffers were not
	// finalized before cancellation are never executed.
	Stream(ctx context.Context, req Request) <-chan StreamEvent
}
