package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
)

const openAIEndpoint = "https://api.openai.com/v1/chat/completions"

// OpenAIProvider calls the chat-completions API. The default model is
// gpt-4o-mini, the workhorse for the credit analysis prompts.
type OpenAIProvider struct {
	// Endpoint overrides the API URL, mainly for tests.
	Endpoint string
}

var _ Provider = (*OpenAIProvider)(nil)

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model          string        `json:"model"`
	Messages       []chatMessage `json:"messages"`
	Temperature    float64       `json:"temperature"`
	MaxTokens      int           `json:"max_tokens"`
	ResponseFormat *struct {
		Type string `json:"type"`
	} `json:"response_format,omitempty"`
}

type chatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
	Error *struct {
		Message string `json:"message"`
		Type    string `json:"type"`
	} `json:"error"`
}

func (p *OpenAIProvider) GenerateResponse(ctx context.Context, prompt string, systemPrompt string, options map[string]interface{}) (string, error) {
	key := apiKey(options, "OPENAI_API_KEY")
	if key == "" {
		return "", fmt.Errorf("OPENAI_API_KEY environment variable not set")
	}

	reqBody := chatRequest{
		Model: stringOpt(options, OptModel, "gpt-4o-mini"),
		Messages: []chatMessage{
			{Role: "system", Content: systemPrompt},
			{Role: "user", Content: prompt},
		},
		Temperature: floatOpt(options, OptTemperature, 0.5),
		MaxTokens:   intOpt(options, OptMaxTokens, 1000),
	}
	if boolOpt(options, OptJSONMode) {
		reqBody.ResponseFormat = &struct {
			Type string `json:"type"`
		}{Type: "json_object"}
	}

	jsonBytes, err := json.Marshal(reqBody)
	if err != nil {
		return "", fmt.Errorf("openai marshal request: %w", err)
	}

	endpoint := p.Endpoint
	if endpoint == "" {
		endpoint = openAIEndpoint
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewBuffer(jsonBytes))
	if err != nil {
		return "", fmt.Errorf("openai build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+key)

	res, err := http.DefaultClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("openai api call: %w", err)
	}
	defer res.Body.Close()

	body, err := io.ReadAll(res.Body)
	if err != nil {
		return "", fmt.Errorf("openai read body: %w", err)
	}

	var response chatResponse
	if err := json.Unmarshal(body, &response); err != nil {
		return "", fmt.Errorf("openai unmarshal response: %w", err)
	}
	if res.StatusCode != http.StatusOK {
		if response.Error != nil {
			return "", fmt.Errorf("openai api error: %s (%s)", response.Error.Message, response.Error.Type)
		}
		return "", fmt.Errorf("openai api error: status=%d body=%s", res.StatusCode, string(body))
	}
	if len(response.Choices) == 0 {
		return "", fmt.Errorf("openai returned no choices: %s", string(body))
	}

	return response.Choices[0].Message.Content, nil
}

func (p *OpenAIProvider) AdaptInstructions(raw string) string {
	return raw
}
