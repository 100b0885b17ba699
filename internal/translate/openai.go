// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package translate

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"
)

// DefaultModel is used when no model is configured.
const DefaultModel = "gpt-4o-mini"

// OpenAIService implements Service on top of the OpenAI chat completions API.
type OpenAIService struct {
	client openai.Client
	model  string
}

// NewOpenAIService creates an OpenAI-backed translation service.
func NewOpenAIService(apiKey, model string) *OpenAIService {
	if model == "" {
		model = DefaultModel
	}
	return &OpenAIService{
		client: openai.NewClient(option.WithAPIKey(apiKey)),
		model:  model,
	}
}

// translationSystemPrompt instructs the model to echo the payload shape back
// with translated values only.
func translationSystemPrompt(source, target string) string {
	return fmt.Sprintf(`You are a professional translator for a notary-services website.
Translate the JSON payload from language %q into language %q.

Rules:
- Respond with a single valid JSON object of the exact same shape: {"fields": {...}, "faq": [...]}.
- Translate every value; keep all keys unchanged.
- "faq" is an ordered list of {"question", "answer"} pairs. Translate each question and answer independently, keep the pairing and the order exactly as given, and return the same number of entries.
- Preserve HTML tags, Markdown markup and placeholders untouched; translate only human-readable text.
- Do not add commentary, markdown fences or extra keys.`, source, target)
}

// Translate performs one chat completion for a single target locale.
func (s *OpenAIService) Translate(ctx context.Context, req Request) (*Response, error) {
	payload, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("encoding translation payload: %w", err)
	}

	completion, err := s.client.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Model: openai.ChatModel(s.model),
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.SystemMessage(translationSystemPrompt(req.SourceLocale, req.TargetLocale)),
			openai.UserMessage(string(payload)),
		},
		Temperature: openai.Float(0.2),
	})
	if err != nil {
		return nil, fmt.Errorf("openai translate %s->%s: %w", req.SourceLocale, req.TargetLocale, err)
	}
	if len(completion.Choices) == 0 {
		return nil, fmt.Errorf("openai translate %s->%s: no choices returned", req.SourceLocale, req.TargetLocale)
	}

	resp, err := parseResponse(completion.Choices[0].Message.Content)
	if err != nil {
		return nil, fmt.Errorf("openai translate %s->%s: %w", req.SourceLocale, req.TargetLocale, err)
	}

	// A reply that reorders or drops FAQ entries would silently break the
	// positional numbering, so treat it as malformed.
	if len(req.FAQ) > 0 && len(resp.FAQ) != len(req.FAQ) {
		return nil, fmt.Errorf("openai translate %s->%s: faq entry count mismatch (sent %d, got %d)",
			req.SourceLocale, req.TargetLocale, len(req.FAQ), len(resp.FAQ))
	}

	return resp, nil
}

// parseResponse decodes the model reply, tolerating markdown code fences
// some models wrap JSON in despite instructions.
func parseResponse(content string) (*Response, error) {
	content = strings.TrimSpace(content)
	if strings.HasPrefix(content, "```") {
		content = strings.TrimPrefix(content, "```json")
		content = strings.TrimPrefix(content, "```")
		content = strings.TrimSuffix(strings.TrimSpace(content), "```")
		content = strings.TrimSpace(content)
	}

	var resp Response
	if err := json.Unmarshal([]byte(content), &resp); err != nil {
		return nil, fmt.Errorf("malformed response: %w", err)
	}
	if resp.Fields == nil {
		resp.Fields = map[string]string{}
	}
	return &resp, nil
}
