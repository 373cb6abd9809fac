//go:build integration
// +build integration

package integration

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	_ "github.com/joho/godotenv/autoload"
	llm "github.com/kerinova/llmstream"
	"github.com/kerinova/llmstream/internal/config"
	"github.com/kerinova/llmstream/tests/toolfakes"
	"github.com/kerinova/llmstream/tools"
)

func writeConfig(t *testing.T, yaml string) {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	if err := os.WriteFile(path, []byte(yaml), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}
	t.Setenv("ASSISTANT_CONFIG_PATH", path)
	config.ResetForTest()
}

func TestOpenAI_StreamText(t *testing.T) {
	apiKey := os.Getenv("OPENAI_API_KEY")
	if apiKey == "" {
		t.Skip("OPENAI_API_KEY not set; skipping integration test")
	}
	writeConfig(t, `assistant:
  default_provider: openai
  providers:
    openai:
      api_key: `+apiKey+`
      model: gpt-4o-mini
      max_output_tokens: 200
`)

	streamer, err := llm.NewFromFile()
	if err != nil {
		t.Fatalf("NewFromFile: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 60*time.Second)
	defer cancel()

	var text strings.Builder
	sawEnd := false
	for ev := range streamer.Stream(ctx, llm.Request{
		Messages: []llm.Message{{Role: llm.RoleUser, Content: "Reply with the single word: pong"}},
	}) {
		switch ev.Kind {
		case llm.EventTextDelta:
			text.WriteString(ev.Text)
		case llm.EventEnd:
			sawEnd = true
		case llm.EventFailure:
			t.Fatalf("stream failed: %v", ev.Err)
		}
	}
	if !sawEnd {
		t.Fatal("stream ended without End event")
	}
	if !strings.Contains(strings.ToLower(text.String()), "pong") {
		t.Errorf("unexpected reply: %q", text.String())
	}
}

func TestOpenAI_StreamReminderTool(t *testing.T) {
	apiKey := os.Getenv("OPENAI_API_KEY")
	if apiKey == "" {
		t.Skip("OPENAI_API_KEY not set; skipping integration test")
	}
	writeConfig(t, `assistant:
  default_provider: openai
  providers:
    openai:
      api_key: `+apiKey+`
      model: gpt-4o-mini
      max_output_tokens: 200
`)

	store := &toolfakes.MemoryReminders{}
	streamer, err := llm.NewFromFile(
		llm.WithTools(tools.NewReminderTool(store, nil)),
	)
	if err != nil {
		t.Fatalf("NewFromFile: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 60*time.Second)
	defer cancel()

	var results []string
	for ev := range streamer.Stream(ctx, llm.Request{
		Messages: []llm.Message{{Role: llm.RoleUser, Content: "Remind me to call mom in 2 minutes."}},
	}) {
		switch ev.Kind {
		case llm.EventToolResult:
			results = append(results, ev.Text)
		case llm.EventFailure:
			t.Fatalf("stream failed: %v", ev.Err)
		}
	}
	if len(store.Entries) != 1 {
		t.Fatalf("expected 1 reminder created, got %d (results: %v)", len(store.Entries), results)
	}
	if len(results) == 0 || !strings.HasPrefix(results[0], "✅") {
		t.Errorf("expected a success confirmation, got %v", results)
	}
}
