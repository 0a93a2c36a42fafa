package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
)

const deepSeekEndpoint = "https://api.deepseek.com/chat/completions"

// DeepSeekProvider is an alternative oracle behind the same chat-completions
// wire shape as OpenAI.
type DeepSeekProvider struct {
	Endpoint string
}

var _ Provider = (*DeepSeekProvider)(nil)

type deepSeekRequest struct {
	Model          string        `json:"model"`
	Messages       []chatMessage `json:"messages"`
	Temperature    float64       `json:"temperature"`
	MaxTokens      int           `json:"max_tokens"`
	Stream         bool          `json:"stream"`
	ResponseFormat struct {
		Type string `json:"type"`
	} `json:"response_format"`
}

func (p *DeepSeekProvider) GenerateResponse(ctx context.Context, prompt string, systemPrompt string, options map[string]interface{}) (string, error) {
	key := apiKey(options, "DEEPSEEK_API_KEY")
	if key == "" {
		return "", fmt.Errorf("DEEPSEEK_API_KEY environment variable not set")
	}

	reqBody := deepSeekRequest{
		Model: stringOpt(options, OptModel, "deepseek-chat"),
		Messages: []chatMessage{
			{Role: "system", Content: systemPrompt},
			{Role: "user", Content: prompt},
		},
		Temperature: floatOpt(options, OptTemperature, 0.5),
		MaxTokens:   intOpt(options, OptMaxTokens, 1000),
	}
	reqBody.ResponseFormat.Type = "text"
	if boolOpt(options, OptJSONMode) {
		reqBody.ResponseFormat.Type = "json_object"
	}

	jsonBytes, err := json.Marshal(reqBody)
	if err != nil {
		return "", fmt.Errorf("deepseek marshal request: %w", err)
	}

	endpoint := p.Endpoint
	if endpoint == "" {
		endpoint = deepSeekEndpoint
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewBuffer(jsonBytes))
	if err != nil {
		return "", fmt.Errorf("deepseek build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Authorization", "Bearer "+key)

	res, err := http.DefaultClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("deepseek api call: %w", err)
	}
	defer res.Body.Close()

	body, err := io.ReadAll(res.Body)
	if err != nil {
		return "", fmt.Errorf("deepseek read body: %w", err)
	}
	if res.StatusCode != http.StatusOK {
		return "", fmt.Errorf("deepseek api error: status=%d body=%s", res.StatusCode, string(body))
	}

	var response chatResponse
	if err := json.Unmarshal(body, &response); err != nil {
		return "", fmt.Errorf("deepseek unmarshal response: %w", err)
	}
	if len(response.Choices) == 0 {
		return "", fmt.Errorf("deepseek returned no choices: %s", string(body))
	}

	return response.Choices[0].Message.Content, nil
}

func (p *DeepSeekProvider) AdaptInstructions(raw string) string {
	return raw
}
