// Package llmstream streams chat completions from remote model providers to a
// desktop assistant. One call opens one cancellable stream: text deltas are
// delivered as they arrive, fragmented tool calls are reassembled and executed
// after the stream finishes, and every transport failure surfaces as a single
// terminal event.
package llmstream

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	moderr "github.com/kerinova/llmstream/errors"
	"github.com/kerinova/llmstream/internal/aggregate"
	"github.com/kerinova/llmstream/internal/config"
	"github.com/kerinova/llmstream/internal/core"
	provfactory "github.com/kerinova/llmstream/internal/providers"
	"github.com/kerinova/llmstream/internal/util"
)

type streamer struct {
	defaultProvider string
	providers       map[string]config.ProviderConfig
	clients         map[string]core.StreamClient // provider -> singleton client, read-only after construction
	logger          *slog.Logger
	httpClient      *http.Client
	tools           []Tool
	toolDefs        []core.ToolDef
	now             func() time.Time
}

// Option allows functional configuration.
type Option func(*streamer)

// WithLogger sets a custom slog logger.
func WithLogger(l *slog.Logger) Option { return func(s *streamer) { s.logger = l } }

// WithHTTPClient sets a custom http.Client. Streaming responses must not be
// cut off by a client-level timeout; prefer transport-level timeouts.
func WithHTTPClient(c *http.Client) Option { return func(s *streamer) { s.httpClient = c } }

// WithClock overrides the time source used for the leading directive message.
func WithClock(now func() time.Time) Option { return func(s *streamer) { s.now = now } }

// WithTools replaces the tool catalog advertised to the provider. The catalog
// is fixed for the life of the streamer.
func WithTools(tools ...Tool) Option { return func(s *streamer) { s.tools = tools } }

// NewFromFile loads config via the default loader and returns a Streamer.
func NewFromFile(opts ...Option) (Streamer, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	return NewStreamer(*cfg, opts...), nil
}

// NewStreamer builds a streamer from config and options. Provider clients are
// constructed eagerly so no mutable state is shared between calls.
func NewStreamer(cfg config.Config, opts ...Option) Streamer {
	s := &streamer{
		defaultProvider: cfg.DefaultProvider,
		providers:       cfg.Providers,
		clients:         make(map[string]core.StreamClient),
		logger:          slog.Default(),
		httpClient:      &http.Client{},
		now:             time.Now,
	}
	for _, o := range opts {
		o(s)
	}
	for name, pc := range cfg.Providers {
		client, err := provfactory.NewStreamClient(name, pc, s.httpClient, s.logger)
		if err != nil {
			s.logger.Warn("skipping unrecognized provider in config", slog.String("provider", name))
			continue
		}
		s.clients[name] = client
	}
	s.toolDefs = make([]core.ToolDef, len(s.tools))
	for i, t := range s.tools {
		s.toolDefs[i] = core.ToolDef{
			Name:        t.Name(),
			Description: t.Description(),
			JSONSchema:  util.GenerateJSONSchema(t.Parameters()),
		}
	}
	return s
}

// Stream opens one streamed turn. The returned channel is unbuffered; the
// producer suspends between reads so the consumer paces the stream. The
// channel closes after EventEnd or EventFailure, or silently once ctx is
// cancelled.
func (s *streamer) Stream(ctx context.Context, req Request) <-chan StreamEvent {
	events := make(chan StreamEvent)
	go s.run(ctx, req, events)
	return events
}

func (s *streamer) run(ctx context.Context, req Request, events chan<- StreamEvent) {
	defer close(events)

	name := req.Provider
	if name == "" {
		name = s.defaultProvider
	}
	pc, ok := s.providers[name]
	client := s.clients[name]
	if !ok || client == nil {
		s.send(ctx, events, StreamEvent{Kind: EventFailure, Err: fmt.Errorf("%w: %q", moderr.ErrUnknownProvider, name)})
		return
	}
	if pc.APIKey == "" {
		s.send(ctx, events, StreamEvent{Kind: EventFailure, Err: fmt.Errorf("%w for provider %q", moderr.ErrNoCredential, name)})
		return
	}

	agg := aggregate.New()
	emit := func(c core.Chunk) error {
		return agg.Apply(c, func(text string) error {
			if !s.send(ctx, events, StreamEvent{Kind: EventTextDelta, Text: text}) {
				return ctx.Err()
			}
			return nil
		})
	}

	start := s.now()
	err := client.Stream(ctx, core.StreamParams{
		Model:       pc.Model,
		Messages:    s.translate(req.Messages),
		ToolDefs:    s.toolDefs,
		MaxTokens:   boundedInt(req.MaxTokens, pc.MaxOutputTokens),
		Temperature: req.Temperature,
	}, emit)
	duration := time.Since(start)

	s.logger.Info("stream turn",
		slog.String("provider", client.Name()),
		slog.String("model", pc.Model),
		slog.Duration("latency_ms", duration),
		slog.Bool("error", err != nil),
	)

	if err != nil {
		agg.Abort()
		if ctx.Err() != nil {
			// Consumer cancelled; it is no longer listening.
			return
		}
		s.send(ctx, events, StreamEvent{Kind: EventFailure, Err: err})
		return
	}
	if ctx.Err() != nil {
		// Cancelled between the last read and finalization: unconfirmed
		// intent is never acted upon.
		return
	}

	// Tool calls run sequentially so confirmation text lands in the transcript
	// in the order the model requested them.
	for _, call := range agg.Finalize() {
		if ctx.Err() != nil {
			return
		}
		result := s.executeTool(ctx, call)
		if !s.send(ctx, events, StreamEvent{Kind: EventToolResult, Text: result}) {
			return
		}
	}

	s.send(ctx, events, StreamEvent{Kind: EventEnd})
}

// send delivers one event, giving up when the consumer cancels.
func (s *streamer) send(ctx context.Context, events chan<- StreamEvent, ev StreamEvent) bool {
	select {
	case events <- ev:
		return true
	case <-ctx.Done():
		return false
	}
}

// translate drops system messages from the per-turn array and prepends one
// synthesized directive carrying the current date, time and timezone, so the
// model can resolve relative times ("in 10 minutes") deterministically.
// Adapters decide how the directive reaches providers without a system role.
func (s *streamer) translate(msgs []Message) []core.Message {
	out := make([]core.Message, 0, len(msgs)+1)
	out = append(out, core.Message{Role: string(RoleSystem), Content: directive(s.now())})
	for _, m := range msgs {
		if m.Role == RoleSystem {
			continue
		}
		images := make([]core.Image, len(m.Images))
		for i, img := range m.Images {
			images[i] = core.Image{Data: img.Data, MIME: img.MIME}
		}
		out = append(out, core.Message{
			Role:    string(m.Role),
			Content: m.Content,
			Images:  images,
		})
	}
	return out
}

func directive(now time.Time) string {
	return fmt.Sprintf(
		"You are a helpful desktop assistant. The current date and time is %s (timezone %s). "+
			"Resolve relative times against it and pass absolute ISO 8601 timestamps to tools.",
		now.Format("Monday, January 2, 2006 at 3:04:05 PM"),
		now.Location(),
	)
}

func boundedInt(req, max int) int {
	if max <= 0 {
		return req
	}
	if req <= 0 {
		return max
	}
	if req > max {
		return max
	}
	return req
}
