package judge

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
)

// Fixed sampling settings so repeated judging of the same round stays close.
const (
	judgeTemperature = 0.2
	openAISeed       = 7
	judgeMaxTokens   = 600
)

type OpenAI struct {
	APIKey  string
	Model   string
	BaseURL string
	Client  *http.Client
}

type openAIChatRequest struct {
	Model       string              `json:"model"`
	Messages    []openAIChatMessage `json:"messages"`
	Temperature float64             `json:"temperature"`
	Seed        int                 `json:"seed,omitempty"`
	MaxTokens   int                 `json:"max_tokens,omitempty"`
}

type openAIChatMessage struct {
	Role    string `json:"role"`
	Content any    `json:"content"`
}

type openAIContentPart struct {
	Type     string          `json:"type"`
	Text     string          `json:"text,omitempty"`
	ImageURL *openAIImageURL `json:"image_url,omitempty"`
}

type openAIImageURL struct {
	URL    string `json:"url"`
	Detail string `json:"detail,omitempty"`
}

type openAIChatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
	Error *struct {
		Message string `json:"message"`
		Type    string `json:"type"`
	} `json:"error,omitempty"`
}

func (p *OpenAI) Name() string {
	return "openai"
}

func (p *OpenAI) Complete(ctx context.Context, req Request) (string, error) {
	parts := []openAIContentPart{{Type: "text", Text: req.Prompt}}
	for _, image := range req.Images {
		parts = append(parts, openAIContentPart{
			Type:     "image_url",
			ImageURL: &openAIImageURL{URL: dataURL(image), Detail: "low"},
		})
	}
	payload, err := json.Marshal(openAIChatRequest{
		Model: p.Model,
		Messages: []openAIChatMessage{
			{Role: "system", Content: req.System},
			{Role: "user", Content: parts},
		},
		Temperature: judgeTemperature,
		Seed:        openAISeed,
		MaxTokens:   judgeMaxTokens,
	})
	if err != nil {
		return "", fmt.Errorf("failed to build OpenAI request")
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, strings.TrimRight(p.BaseURL, "/")+"/chat/completions", bytes.NewReader(payload))
	if err != nil {
		return "", fmt.Errorf("failed to build OpenAI request")
	}
	httpReq.Header.Set("Authorization", "Bearer "+strings.TrimSpace(p.APIKey))
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := httpClient(p.Client).Do(httpReq)
	if err != nil {
		if ctx.Err() != nil {
			return "", ctx.Err()
		}
		return "", &ProviderError{Provider: p.Name(), Message: "failed to reach OpenAI"}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", &ProviderError{Provider: p.Name(), Status: resp.StatusCode, Message: "failed to read OpenAI response"}
	}
	var parsed openAIChatResponse
	_ = json.Unmarshal(body, &parsed)
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		message := fmt.Sprintf("OpenAI request failed (%d)", resp.StatusCode)
		if parsed.Error != nil && parsed.Error.Message != "" {
			message += ": " + parsed.Error.Message
		}
		return "", &ProviderError{Provider: p.Name(), Status: resp.StatusCode, Message: message}
	}
	if parsed.Error != nil && parsed.Error.Message != "" {
		return "", &ProviderError{Provider: p.Name(), Status: resp.StatusCode, Message: "OpenAI error: " + parsed.Error.Message}
	}
	if len(parsed.Choices) == 0 {
		return "", &ProviderError{Provider: p.Name(), Status: resp.StatusCode, Message: "OpenAI returned no choices"}
	}
	return parsed.Choices[0].Message.Content, nil
}

func dataURL(image Image) string {
	mime := image.MIME
	if mime == "" {
		mime = "image/png"
	}
	return "data:" + mime + ";base64," + base64.StdEncoding.EncodeToString(image.Data)
}

var defaultClient = &http.Client{}

func httpClient(client *http.Client) *http.Client {
	if client != nil {
		return client
	}
	return defaultClient
}
