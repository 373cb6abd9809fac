package gemini

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

const defaultBaseURL = "https://generativelanguage.googleapis.com/v1beta"

type Client struct {
	apiKey     string
	baseURL    string
	httpClient *http.Client
	logger     *slog.Logger
}

func New(pc config.ProviderConfig, hc *http.Client, logger *slog.Logger) *Client {
	if logger == nil {
		logger = slog.Default()
	}
	return &Client{apiKey: pc.APIKey, baseURL: defaultBaseURL, httpClient: hc, logger: logger}
}

// NewWithBaseURL points the client at an alternative API host.
func NewWithBaseURL(pc config.ProviderConfig, baseURL string, hc *http.Client, logger *slog.Logger) *Client {
	c := New(pc, hc, logger)
	c.baseURL = baseURL
	return c
}

func (c *Client) Name() string { return "gemini" }

type generateRequest struct {
	Contents         []map[string]any `json:"contents"`
	Tools            []map[string]any `json:"tools,omitempty"`
	GenerationConfig map[string]any   `json:"generationConfig,omitempty"`
}

// generateChunk is one JSON envelope of the streamed response.
type generateChunk struct {
	Candidates []struct {
		Content struct {
			Parts []struct {
				Text         string `json:"text"`
				FunctionCall *struct {
					Name string          `json:"name"`
					Args json.RawMessage `json:"args"`
				} `json:"functionCall"`
			} `json:"parts"`
		} `json:"content"`
		FinishReason string `json:"finishReason"`
	} `json:"candidates"`
	Error *struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

func (c *Client) Stream(ctx context.Context, params core.StreamParams, emit func(core.Chunk) error) error {
	payload := generateRequest{
		Contents:         mapContents(params.Messages),
		GenerationConfig: map[string]any{},
	}
	if params.MaxTokens > 0 {
		payload.GenerationConfig["maxOutputTokens"] = params.MaxTokens
	}
	if params.Temperature > 0 {
		payload.GenerationConfig["temperature"] = params.Temperature
	}
	if len(params.ToolDefs) > 0 {
		payload.Tools = mapTools(params.ToolDefs)
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("gemini marshal payload: %w", err)
	}
	url := fmt.Sprintf("%s/models/%s:streamGenerateContent?alt=sse&key=%s", c.baseURL, params.Model, c.apiKey)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("%w: gemini build request: %w", moderr.ErrNetwork, err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		return fmt.Errorf("%w: gemini: %w", moderr.ErrNetwork, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		b, _ := io.ReadAll(resp.Body)
		return moderr.FromStatus(resp.StatusCode, errorMessage(b), "gemini")
	}

	reader := sse.NewReader(resp.Body)
	// Gemini delivers whole functionCall parts rather than fragmented
	// argument runs; indices are assigned in encounter order.
	nextIndex := 0
	sawToolCall := false
	for {
		line, err := reader.Next()
		if err != nil {
			if err == io.EOF {
				return nil
			}
			if ctx.Err() != nil {
				return ctx.Err()
			}
			return fmt.Errorf("%w: gemini read stream: %w", moderr.ErrNetwork, err)
		}

		var chunk generateChunk
		if err := json.Unmarshal([]byte(line), &chunk); err != nil {
			c.logger.Debug("gemini: skipping undecodable stream line", slog.String("line", line))
			continue
		}
		if chunk.Error != nil {
			return fmt.Errorf("%w: gemini: %s", moderr.ErrProtocol, chunk.Error.Message)
		}

		out := core.Chunk{}
		if len(chunk.Candidates) > 0 {
			cand := chunk.Candidates[0]
			for _, p := range cand.Content.Parts {
				if p.Text != "" {
					out.TextDelta += p.Text
				}
				if p.FunctionCall != nil {
					args := string(p.FunctionCall.Args)
					if args == "" {
						args = "{}"
					}
					out.ToolDeltas = append(out.ToolDeltas, core.ToolCallDelta{
						Index:        nextIndex,
						Name:         p.FunctionCall.Name,
						ArgsFragment: args,
					})
					nextIndex++
					sawToolCall = true
				}
			}
			out.Finish = mapFinishReason(cand.FinishReason, sawToolCall)
		}
		if err := emit(out); err != nil {
			return err
		}
	}
}

// mapFinishReason normalizes Gemini finish reasons. Gemini reports STOP even
// when the turn ended in function calls, so the presence of calls decides.
func mapFinishReason(s string, sawToolCall bool) core.FinishReason {
	switch s {
	case "":
		return core.FinishNone
	case "STOP":
		if sawToolCall {
			return core.FinishToolCalls
		}
		return core.FinishStop
	default:
		return core.FinishOther
	}
}

func errorMessage(body []byte) string {
	var envelope struct {
		Error struct {
			Message string `json:"message"`
		} `json:"error"`
	}
	if err := json.Unmarshal(body, &envelope); err == nil && envelope.Error.Message != "" {
		return envelope.Error.Message
	}
	return string(body)
}

// mapContents maps wire-neutral messages to Gemini contents. Gemini has no
// system role; system-authored messages become leading user turns.
func mapContents(msgs []core.Message) []map[string]any {
	out := make([]map[string]any, 0, len(msgs))
	for _, m := range msgs {
		parts := []any{}
		// Images go before text; some multimodal models attend better that way.
		for _, img := range m.Images {
			mime := img.MIME
			if mime == "" {
				mime = "image/png"
			}
			parts = append(parts, map[string]any{
				"inline_data": map[string]any{
					"mime_type": mime,
					"data":      base64.StdEncoding.EncodeToString(img.Data),
				},
			})
		}
		text := m.Content
		if text == "" && len(m.Images) > 0 {
			text = core.DefaultImagePrompt(len(m.Images))
		}
		if text != "" {
			parts = append(parts, map[string]any{"text": text})
		}
		// The API rejects a content entry with no parts.
		if len(parts) == 0 {
			continue
		}
		out = append(out, map[string]any{
			"role":  mapRole(m.Role),
			"parts": parts,
		})
	}
	return out
}

func mapRole(role string) string {
	switch role {
	case "assistant":
		return "model"
	default:
		// user, system and anything unrecognized speak as the user.
		return "user"
	}
}

func mapTools(defs []core.ToolDef) []map[string]any {
	decls := make([]map[string]any, len(defs))
	for i, d := range defs {
		decls[i] = map[string]any{
			"name":        d.Name,
			"description": d.Description,
			"parameters":  json.RawMessage(d.JSONSchema),
		}
	}
	return []map[string]any{{"function_declarations": decls}}
}
