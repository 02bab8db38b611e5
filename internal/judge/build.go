package judge

import (
	"net/http"
	"strings"
	"time"

	"doodle-judge/internal/config"

	"github.com/rs/zerolog/log"
)

// FromConfig builds the coordinator used by the server. Providers are tried
// in the order JUDGE_PROVIDERS lists them, each as a batch call first and
// per-drawing calls second. A provider without an API key is skipped. With
// no usable provider the mock strategy scores every round.
func FromConfig(cfg config.Config) *Coordinator {
	client := &http.Client{Timeout: time.Duration(cfg.JudgeTimeoutSeconds) * time.Second}
	strategies := make([]Strategy, 0, 2*len(cfg.JudgeProviders))
	for _, name := range cfg.JudgeProviders {
		var provider Provider
		switch strings.ToLower(strings.TrimSpace(name)) {
		case "openai":
			if strings.TrimSpace(cfg.OpenAIAPIKey) == "" {
				continue
			}
			provider = &OpenAI{APIKey: cfg.OpenAIAPIKey, Model: cfg.OpenAIModel, BaseURL: cfg.OpenAIBaseURL, Client: client}
		case "gemini":
			if strings.TrimSpace(cfg.GeminiAPIKey) == "" {
				continue
			}
			provider = &Gemini{APIKey: cfg.GeminiAPIKey, Model: cfg.GeminiModel, BaseURL: cfg.GeminiBaseURL, Client: client}
		default:
			log.Warn().Str("provider", name).Msg("unknown judge provider ignored")
			continue
		}
		strategies = append(strategies, Batch(provider), PerItem(provider))
	}
	if len(strategies) == 0 {
		strategies = append(strategies, Mock())
	}
	coordinator := NewCoordinator(cfg.BlankDrawingBytes, strategies...)
	log.Info().Strs("strategies", coordinator.Strategies()).Msg("judge configured")
	return coordinator
}
