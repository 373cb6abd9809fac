package openai

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"

	moderr "github.com/kerinova/llmstream/errors"
	"github.com/kerinova/llmstream/internal/config"
	"github.com/kerinova/llmstream/internal/core"
	"github.com/kerinova/llmstream/internal/providers/sse"
)

const defaultEndpoint = "https://api.openai.com/v1/chat/completions"

// doneSentinel terminates the stream; nothing after it is read.
const doneSentinel = "[DONE]"

type Client struct {
	apiKey     string
	endpoint   string
	httpClient *http.Client
	logger     *slog.Logger
}

func New(pc config.ProviderConfig, hc *http.Client, logger *slog.Logger) *Client {
	if logger == nil {
		logger = slog.Default()
	}
	return &Client{
		apiKey:     pc.APIKey,
		endpoint:   defaultEndpoint,
		httpClient: hc,
		logger:     logger,
	}
}

// NewWithEndpoint points the client at an OpenAI-compatible server.
func NewWithEndpoint(pc config.ProviderConfig, endpoint string, hc *http.Client, logger *slog.Logger) *Client {
	c := New(pc, hc, logger)
	c.endpoint = endpoint
	return c
}

func (c *Client) Name() string { return "openai" }

type chatRequest struct {
	Model       string           `json:"model"`
	Messages    []map[string]any `json:"messages"`
	Tools       []map[string]any `json:"tools,omitempty"`
	MaxTokens   int              `json:"max_tokens,omitempty"`
	Temperature float32          `json:"temperature,omitempty"`
	Stream      bool             `json:"stream"`
}

type apiError struct {
	Message string `json:"message"`
	Type    string `json:"type"`
}

// chatChunk is one decoded "data:" payload of the SSE stream.
type chatChunk struct {
	Choices []struct {
		Delta struct {
			Content   string `json:"content"`
			ToolCalls []struct {
				Index    int    `json:"index"`
				ID       string `json:"id"`
				Function struct {
					Name      string `json:"name"`
					Arguments string `json:"arguments"`
				} `json:"function"`
			} `json:"tool_calls"`
		} `json:"delta"`
		FinishReason string `json:"finish_reason"`
	} `json:"choices"`
	Error *apiError `json:"error"`
}

func (c *Client) Stream(ctx context.Context, params core.StreamParams, emit func(core.Chunk) error) error {
	payload := chatRequest{
		Model:       params.Model,
		Messages:    mapChatMessages(params.Messages),
		MaxTokens:   params.MaxTokens,
		Temperature: params.Temperature,
		Stream:      true,
	}
	if len(params.ToolDefs) > 0 {
		payload.Tools = mapTools(params.ToolDefs)
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("openai marshal payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("%w: openai build request: %w", moderr.ErrNetwork, err)
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "text/event-stream")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		return fmt.Errorf("%w: openai: %w", moderr.ErrNetwork, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		b, _ := io.ReadAll(resp.Body)
		return moderr.FromStatus(resp.StatusCode, errorMessage(b), "openai")
	}

	reader := sse.NewReader(resp.Body)
	for {
		line, err := reader.Next()
		if err != nil {
			if err == io.EOF {
				return nil
			}
			if ctx.Err() != nil {
				return ctx.Err()
			}
			return fmt.Errorf("%w: openai read stream: %w", moderr.ErrNetwork, err)
		}
		if line == doneSentinel {
			return nil
		}

		var chunk chatChunk
		if err := json.Unmarshal([]byte(line), &chunk); err != nil {
			// Providers emit occasional keep-alive or partial noise lines.
			c.logger.Debug("openai: skipping undecodable stream line", slog.String("line", line))
			continue
		}
		if chunk.Error != nil {
			return fmt.Errorf("%w: openai: %s", moderr.ErrProtocol, chunk.Error.Message)
		}
		if err := emit(toCoreChunk(chunk)); err != nil {
			return err
		}
	}
}

func toCoreChunk(cc chatChunk) core.Chunk {
	out := core.Chunk{}
	if len(cc.Choices) == 0 {
		return out
	}
	choice := cc.Choices[0]
	out.TextDelta = choice.Delta.Content
	for _, tc := range choice.Delta.ToolCalls {
		out.ToolDeltas = append(out.ToolDeltas, core.ToolCallDelta{
			Index:        tc.Index,
			ID:           tc.ID,
			Name:         tc.Function.Name,
			ArgsFragment: tc.Function.Arguments,
		})
	}
	out.Finish = mapFinishReason(choice.FinishReason)
	return out
}

func mapFinishReason(s string) core.FinishReason {
	switch s {
	case "":
		return core.FinishNone
	case "stop":
		return core.FinishStop
	case "tool_calls", "function_call":
		return core.FinishToolCalls
	default:
		return core.FinishOther
	}
}

// errorMessage pulls the human-readable message out of an error response body
// when the body parses; otherwise the raw body is used.
func errorMessage(body []byte) string {
	var envelope struct {
		Error apiError `json:"error"`
	}
	if err := json.Unmarshal(body, &envelope); err == nil && envelope.Error.Message != "" {
		return envelope.Error.Message
	}
	return string(body)
}

func mapChatMessages(msgs []core.Message) []map[string]any {
	out := make([]map[string]any, 0, len(msgs))
	for _, m := range msgs {
		role := mapRole(m.Role)
		if len(m.Images) == 0 {
			out = append(out, map[string]any{"role": role, "content": m.Content})
			continue
		}
		// Images go before text; some multimodal models attend better that way.
		content := make([]any, 0, len(m.Images)+1)
		for _, img := range m.Images {
			content = append(content, map[string]any{
				"type": "image_url",
				"image_url": map[string]any{
					"url": dataURL(img),
				},
			})
		}
		text := m.Content
		if text == "" {
			text = core.DefaultImagePrompt(len(m.Images))
		}
		content = append(content, map[string]any{"type": "text", "text": text})
		out = append(out, map[string]any{"role": role, "content": content})
	}
	return out
}

func mapRole(role string) string {
	switch role {
	case "system", "user", "assistant":
		return role
	default:
		return "user"
	}
}

func dataURL(img core.Image) string {
	mime := img.MIME
	if mime == "" {
		mime = "image/png"
	}
	return "data:" + mime + ";base64," + base64.StdEncoding.EncodeToString(img.Data)
}

func mapTools(defs []core.ToolDef) []map[string]any {
	out := make([]map[string]any, len(defs))
	for i, d := range defs {
		out[i] = map[string]any{
			"type": "function",
			"function": map[string]any{
				"name":        d.Name,
				"description": d.Description,
				"parameters":  coerceParams(d.JSONSchema),
			},
		}
	}
	return out
}

// coerceParams ensures the parameters JSON meets Chat Completions expectations
// for a function JSON Schema (must be type: object at top-level).
func coerceParams(schema string) any {
	var m map[string]any
	if err := json.Unmarshal([]byte(schema), &m); err != nil {
		return map[string]any{"type": "object", "properties": map[string]any{}}
	}
	if t, ok := m["type"].(string); !ok || t != "object" {
		m["type"] = "object"
	}
	if _, ok := m["properties"]; !ok {
		m["properties"] = map[string]any{}
	}
	return m
}
