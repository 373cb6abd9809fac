// Package aggregate folds raw per-chunk deltas into appended text and
// partially-assembled tool-call records keyed by the index the provider
// assigned each call.
package aggregate

import (
	"sort"
	"strings"

	"github.com/kerinova/llmstream/internal/core"
)

// State tracks the aggregator lifecycle.
type State int

const (
	StateIdle State = iota
	StateAccumulating
	StateFinished
	StateAborted
)

type buffer struct {
	index int
	id    string
	name  string
	args  strings.Builder
}

// Aggregator is single-use: one instance per stream invocation, never shared.
type Aggregator struct {
	state   State
	buffers map[int]*buffer
	finish  core.FinishReason
}

func New() *Aggregator {
	return &Aggregator{buffers: make(map[int]*buffer)}
}

func (a *Aggregator) State() State { return a.state }

// Finish reports the finish reason recorded from the final chunk.
func (a *Aggregator) Finish() core.FinishReason { return a.finish }

// Apply folds one decoded chunk. Text deltas are forwarded through emitText
// immediately rather than buffered, so the caller can render incrementally.
// A non-nil error from emitText stops processing and is returned unchanged.
func (a *Aggregator) Apply(c core.Chunk, emitText func(string) error) error {
	if a.state == StateFinished || a.state == StateAborted {
		return nil
	}
	a.state = StateAccumulating

	if c.TextDelta != "" {
		if err := emitText(c.TextDelta); err != nil {
			return err
		}
	}

	for _, d := range c.ToolDeltas {
		b, ok := a.buffers[d.Index]
		if !ok {
			b = &buffer{index: d.Index}
			a.buffers[d.Index] = b
		}
		// ID and name arrive once, early; fragments append across many chunks.
		if d.ID != "" {
			b.id = d.ID
		}
		if d.Name != "" {
			b.name = d.Name
		}
		b.args.WriteString(d.ArgsFragment)
	}

	if c.Finish != core.FinishNone {
		a.finish = c.Finish
		a.state = StateFinished
	}
	return nil
}

// Abort marks the stream as terminated by a transport or provider failure.
// Buffered tool calls are abandoned.
func (a *Aggregator) Abort() {
	a.state = StateAborted
}

// Finalize consumes the buffered tool calls. Buffers are complete only when
// the stream finished with a tool_calls reason; any other termination
// (natural stop, truncation, abort) discards partial buffers silently, since
// the protocol cannot distinguish mid-stream abandonment from a drop.
// Results are ordered by ascending index.
func (a *Aggregator) Finalize() []core.ToolCall {
	if a.state != StateFinished || a.finish != core.FinishToolCalls || len(a.buffers) == 0 {
		return nil
	}
	calls := make([]core.ToolCall, 0, len(a.buffers))
	for _, b := range a.buffers {
		calls = append(calls, core.ToolCall{
			Index: b.index,
			ID:    b.id,
			Name:  b.name,
			Args:  b.args.String(),
		})
	}
	sort.Slice(calls, func(i, j int) bool { return calls[i].Index < calls[j].Index })
	a.buffers = make(map[int]*buffer)
	return calls
}
