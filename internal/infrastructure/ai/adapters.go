package ai

import (
	"encoding/json"
	"net/http"

	"github.com/pbooth01/cli2ansible/internal/domain"
)

func openaiAdapter() providerAdapter {
	return providerAdapter{
		buildRequest:  buildOpenAIRequest,
		parseResponse: parseOpenAIResponse,
		setHeaders:    setOpenAIHeaders,
	}
}

func anthropicAdapter() providerAdapter {
	return providerAdapter{
		buildRequest:  buildAnthropicRequest,
		parseResponse: parseAnthropicResponse,
		setHeaders:    setAnthropicHeaders,
	}
}

func buildOpenAIRequest(settings domain.CleanerSettings, prompt string) ([]byte, error) {
	return json.Marshal(map[string]interface{}{
		"model": defaultString(settings.Model, "gpt-4o"),
		"messages": []map[string]string{
			{"role": "system", "content": systemPrompt},
			{"role": "user", "content": prompt},
		},
		"temperature":     0.3,
		"response_format": map[string]string{"type": "json_object"},
	})
}

func parseOpenAIResponse(body []byte) (string, error) {
	var response struct {
		Choices []struct {
			Message struct {
				Content string `json:"content"`
			} `json:"message"`
		} `json:"choices"`
	}
	if err := json.Unmarshal(body, &response); err != nil {
		return "", err
	}
	if len(response.Choices) == 0 {
		return "", nil
	}
	return response.Choices[0].Message.Content, nil
}

func setOpenAIHeaders(req *http.Request, settings domain.CleanerSettings) error {
	apiKey, err := apiKeyFromEnv(settings, "OPENAI_API_KEY")
	if err != nil {
		return err
	}
	req.Header.Set("authorization", "Bearer "+apiKey)
	return nil
}

func buildAnthropicRequest(settings domain.CleanerSettings, prompt string) ([]byte, error) {
	return json.Marshal(map[string]interface{}{
		"model":      defaultString(settings.Model, "claude-3-5-sonnet-20240620"),
		"max_tokens": 4096,
		"system":     systemPrompt,
		"messages": []map[string]interface{}{
			{
				"role": "user",
				"content": []map[string]string{
					{"type": "text", "text": prompt},
				},
			},
		},
	})
}

func parseAnthropicResponse(body []byte) (string, error) {
	var response struct {
		Content []struct {
			Text string `json:"text"`
		} `json:"content"`
	}
	if err := json.Unmarshal(body, &response); err != nil {
		return "", err
	}
	if len(response.Content) == 0 {
		return "", nil
	}
	return response.Content[0].Text, nil
}

func setAnthropicHeaders(req *http.Request, settings domain.CleanerSettings) error {
	apiKey, err := apiKeyFromEnv(settings, "ANTHROPIC_API_KEY")
	if err != nil {
		return err
	}
	req.Header.Set("x-api-key", apiKey)
	req.Header.Set("anthropic-version", "2023-06-01")
	return nil
}
