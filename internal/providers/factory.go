package providers

import (
	"log/slog"
	"net/http"

	moderr "github.com/kerinova/llmstream/errors"
	"github.com/kerinova/llmstream/internal/config"
	"github.com/kerinova/llmstream/internal/core"
	"github.com/kerinova/llmstream/internal/providers/gemini"
	"github.com/kerinova/llmstream/internal/providers/openai"
)

func NewStreamClient(name string, pc config.ProviderConfig, hc *http.Client, logger *slog.Logger) (core.StreamClient, error) {
	switch name {
	case "openai":
		return openai.New(pc, hc, logger), nil
	case "gemini":
		return gemini.New(pc, hc, logger), nil
	default:
		return nil, moderr.ErrUnknownProvider
	}
}
