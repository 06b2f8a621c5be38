package service

import (
	"context"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/almostcrackd/captionboard/internal/prompts"
	"github.com/go-resty/resty/v2"
)

// CaptionerService generates image captions using a Vision Language Model.
type CaptionerService struct {
	client      *resty.Client
	model       string
	apiKey      string
	endpoint    string
	maxCaptions int
}

// CaptionerConfig holds configuration for the captioner service.
type CaptionerConfig struct {
	Provider    string
	Model       string
	APIKey      string
	BaseURL     string
	MaxCaptions int
}

// NewCaptionerService creates a new captioner service.
// Parameters:
//   - cfg: captioner configuration including provider, model, and API key.
//
// Returns:
//   - *CaptionerService: initialized captioner client wrapper.
func NewCaptionerService(cfg *CaptionerConfig) *CaptionerService {
	client := resty.New()
	client.SetHeader("Authorization", "Bearer "+cfg.APIKey)
	client.SetHeader("Content-Type", "application/json")
	// Set timeout to prevent hanging requests
	client.SetTimeout(60 * time.Second)

	// Default to OpenAI compatible endpoint if not specified
	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = "https://api.openai.com/v1"
	}
	endpoint := baseURL + "/chat/completions"

	maxCaptions := cfg.MaxCaptions
	if maxCaptions <= 0 {
		maxCaptions = 5
	}

	return &CaptionerService{
		client:      client,
		model:       cfg.Model,
		apiKey:      cfg.APIKey,
		endpoint:    endpoint,
		maxCaptions: maxCaptions,
	}
}

// GetModel returns the model name being used.
func (s *CaptionerService) GetModel() string {
	return s.model
}

// OpenAI-compatible Chat Completion API request/response structures
type openAIRequest struct {
	Model     string          `json:"model"`
	Messages  []openAIMessage `json:"messages"`
	MaxTokens int             `json:"max_tokens"`
}

type openAIMessage struct {
	Role    string      `json:"role"`
	Content interface{} `json:"content"` // string for system, []interface{} for user with images
}

type openAITextContent struct {
	Type string `json:"type"`
	Text string `json:"text"`
}

type openAIImageContent struct {
	Type     string         `json:"type"`
	ImageURL openAIImageURL `json:"image_url"`
}

type openAIImageURL struct {
	URL    string `json:"url"`
	Detail string `json:"detail,omitempty"`
}

type openAIResponse struct {
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

// GenerateCaptions generates captions for an image reachable at a public URL.
// Parameters:
//   - ctx: context for cancellation and deadlines.
//   - imageURL: publicly accessible image URL.
//
// Returns:
//   - []string: generated caption lines, at most MaxCaptions.
//   - error: non-nil if the API request fails or yields no captions.
func (s *CaptionerService) GenerateCaptions(ctx context.Context, imageURL string) ([]string, error) {
	req := openAIRequest{
		Model: s.model,
		Messages: []openAIMessage{
			{
				Role:    "system",
				Content: prompts.CaptionSystemPrompt,
			},
			{
				Role: "user",
				Content: []interface{}{
					openAITextContent{
						Type: "text",
						Text: prompts.CaptionUserPrompt(s.maxCaptions),
					},
					openAIImageContent{
						Type: "image_url",
						ImageURL: openAIImageURL{
							URL:    imageURL,
							Detail: "auto",
						},
					},
				},
			},
		},
		MaxTokens: 400,
	}

	var resp openAIResponse
	httpResp, err := s.client.R().
		SetContext(ctx).
		SetBody(req).
		SetResult(&resp).
		Post(s.endpoint)

	if err != nil {
		return nil, fmt.Errorf("failed to call captioner API: %w", err)
	}

	// Check HTTP status code
	if httpResp.StatusCode() < 200 || httpResp.StatusCode() >= 300 {
		errorMsg := fmt.Sprintf("HTTP %d", httpResp.StatusCode())
		if resp.Error != nil {
			errorMsg = fmt.Sprintf("HTTP %d: %s", httpResp.StatusCode(), resp.Error.Message)
		} else if len(httpResp.Body()) > 0 {
			errorMsg = fmt.Sprintf("HTTP %d: %s", httpResp.StatusCode(), string(httpResp.Body()))
		}
		return nil, fmt.Errorf("captioner API returned error: %s", errorMsg)
	}

	if resp.Error != nil {
		return nil, fmt.Errorf("captioner API error: %s", resp.Error.Message)
	}

	if len(resp.Choices) == 0 {
		return nil, fmt.Errorf("no response from captioner API (status: %d)", httpResp.StatusCode())
	}

	captions := splitCaptionLines(resp.Choices[0].Message.Content, s.maxCaptions)
	if len(captions) == 0 {
		return nil, fmt.Errorf("captioner returned no usable captions")
	}
	return captions, nil
}

// listMarker matches a leading bullet or "1." / "1)" style numbering that
// some models prepend despite the prompt.
var listMarker = regexp.MustCompile(`^([-*•]|\d{1,2}[.)])\s+`)

// splitCaptionLines turns model output into clean caption lines, stripping
// blank lines, list markers, and surrounding quotes.
func splitCaptionLines(content string, max int) []string {
	lines := strings.Split(content, "\n")
	captions := make([]string, 0, len(lines))
	for _, line := range lines {
		line = strings.TrimSpace(line)
		line = listMarker.ReplaceAllString(line, "")
		line = strings.TrimSpace(strings.Trim(line, `"`))
		if line == "" {
			continue
		}
		captions = append(captions, line)
		if len(captions) == max {
			break
		}
	}
	return captions
}
