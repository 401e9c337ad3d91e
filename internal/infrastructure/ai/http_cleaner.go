// Package ai hosts the LLM-backed session cleaners.
package ai

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/pbooth01/cli2ansible/internal/domain"
	"github.com/pbooth01/cli2ansible/internal/ports"
)

type httpCleaner struct {
	name       string
	settings   domain.CleanerSettings
	httpClient *http.Client
	adapter    providerAdapter
}

type providerAdapter struct {
	buildRequest  func(domain.CleanerSettings, string) ([]byte, error)
	parseResponse func([]byte) (string, error)
	setHeaders    func(*http.Request, domain.CleanerSettings) error
}

func newHTTPCleaner(name string, settings domain.CleanerSettings, client *http.Client, adapter providerAdapter) ports.Cleaner {
	return &httpCleaner{
		name:       name,
		settings:   settings,
		httpClient: client,
		adapter:    adapter,
	}
}

// CleanCommands sends the commands to the provider and parses the structured
// verdict. Provider failures never leak response bodies: only the provider
// name and HTTP status reach the caller.
func (c *httpCleaner) CleanCommands(ctx context.Context, sessionID uuid.UUID, commands []domain.Command) ([]domain.CleanedCommand, domain.CleaningReport, error) {
	if len(commands) == 0 {
		return []domain.CleanedCommand{}, domain.CleaningReport{
			SessionID:         sessionID,
			CleaningRationale: "No commands to clean",
			GeneratedAt:       time.Now().UTC(),
		}, nil
	}

	requestBody, err := c.adapter.buildRequest(c.settings, cleaningPrompt(commands))
	if err != nil {
		return nil, domain.CleaningReport{}, err
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.settings.Endpoint, bytes.NewReader(requestBody))
	if err != nil {
		return nil, domain.CleaningReport{}, err
	}
	httpReq.Header.Set("content-type", "application/json")
	if err := c.adapter.setHeaders(httpReq, c.settings); err != nil {
		return nil, domain.CleaningReport{}, err
	}

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, domain.CleaningReport{}, fmt.Errorf("%s request failed: %w", c.name, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		return nil, domain.CleaningReport{}, fmt.Errorf("%s request failed with status %d", c.name, resp.StatusCode)
	}

	var responseBody bytes.Buffer
	if _, err := responseBody.ReadFrom(resp.Body); err != nil {
		return nil, domain.CleaningReport{}, err
	}

	content, err := c.adapter.parseResponse(responseBody.Bytes())
	if err != nil {
		return nil, domain.CleaningReport{}, err
	}
	if content == "" {
		return nil, domain.CleaningReport{}, fmt.Errorf("%s returned an empty response", c.name)
	}

	return parseVerdict(content, commands, sessionID)
}

// verdict is the JSON document the prompt asks the model to produce.
type verdict struct {
	EssentialCommands []struct {
		Command              string `json:"command"`
		Reason               string `json:"reason"`
		IsDuplicate          bool   `json:"is_duplicate"`
		IsErrorCorrection    bool   `json:"is_error_correction"`
		FirstOccurrenceIndex int    `json:"first_occurrence_index"`
	} `json:"essential_commands"`
	RemovedCommands []struct {
		Command           string `json:"command"`
		Reason            string `json:"reason"`
		IsDuplicate       bool   `json:"is_duplicate"`
		IsErrorCorrection bool   `json:"is_error_correction"`
		OriginalIndex     int    `json:"original_index"`
	} `json:"removed_commands"`
	Rationale string `json:"rationale"`
}

func parseVerdict(content string, commands []domain.Command, sessionID uuid.UUID) ([]domain.CleanedCommand, domain.CleaningReport, error) {
	var v verdict
	if err := json.Unmarshal([]byte(extractJSON(content)), &v); err != nil {
		return nil, domain.CleaningReport{}, fmt.Errorf("invalid cleaner response: %w", err)
	}

	cleaned := make([]domain.CleanedCommand, 0, len(v.EssentialCommands))
	for _, entry := range v.EssentialCommands {
		idx := entry.FirstOccurrenceIndex
		if idx < 0 || idx >= len(commands) {
			continue
		}
		cleaned = append(cleaned, domain.CleanedCommand{
			SessionID:         sessionID,
			Command:           entry.Command,
			Reason:            entry.Reason,
			FirstOccurrence:   commands[idx].Timestamp,
			OccurrenceCount:   1,
			IsDuplicate:       entry.IsDuplicate,
			IsErrorCorrection: entry.IsErrorCorrection,
		})
	}

	var duplicates, corrections int
	for _, removed := range v.RemovedCommands {
		if removed.IsDuplicate {
			duplicates++
		}
		if removed.IsErrorCorrection {
			corrections++
		}
	}

	report := domain.CleaningReport{
		SessionID:               sessionID,
		OriginalCommandCount:    len(commands),
		CleanedCommandCount:     len(cleaned),
		DuplicatesRemoved:       duplicates,
		ErrorCorrectionsRemoved: corrections,
		CleaningRationale:       v.Rationale,
		GeneratedAt:             time.Now().UTC(),
	}
	return cleaned, report, nil
}

// extractJSON unwraps a fenced code block when the model ignores the
// JSON-only instruction.
func extractJSON(content string) string {
	content = strings.TrimSpace(content)
	if !strings.HasPrefix(content, "```") {
		return content
	}
	content = strings.TrimPrefix(content, "```json")
	content = strings.TrimPrefix(content, "```")
	if end := strings.Index(content, "```"); end != -1 {
		content = content[:end]
	}
	return strings.TrimSpace(content)
}

func apiKeyFromEnv(settings domain.CleanerSettings, fallback string) (string, error) {
	envVar := settings.APIKeyEnv
	if envVar == "" {
		envVar = fallback
	}
	key := os.Getenv(envVar)
	if key == "" {
		return "", fmt.Errorf("missing API key: set %s", envVar)
	}
	return key, nil
}

func defaultString(value, fallback string) string {
	if value != "" {
		return value
	}
	return fallback
}
