// Package extraction turns workshop transcripts into use case database
// entries with a two-step workflow: a single model call extracts one
// natural-language prompt per use case, then each prompt is run through
// the agent to perform the actual creation.
package extraction

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/usecasehq/usecase-engine/pkg/llm"
)

const extractionPrompt = `You are an expert at extracting use cases from workshop transcripts.

Your task is to read the transcript and create a natural language prompt for EACH use case
that can be executed by an AI agent to create the use case in a database.

For each use case mentioned in the transcript, create a prompt following this template:
"Create a use case called '[TITLE]' for company '[COMPANY]' in the '[INDUSTRY]' sector. Description: [DETAILED DESCRIPTION]. Expected benefit: [SPECIFIC BENEFITS]. Contributors: [NAME (ROLE), NAME (ROLE)]"

INSTRUCTIONS:
1. Extract ALL use cases discussed in the transcript (there may be multiple)
2. For each use case, identify:
   - A clear, concise title
   - The company name (exactly as mentioned)
   - The industry/sector
   - A detailed description of what the use case does
   - The expected benefits (include metrics/percentages when mentioned)
   - All people who contributed ideas (with their roles)

3. Return ONLY a JSON array of prompt strings
4. Each prompt should be a complete, standalone instruction
5. Use exact quotes for percentages and metrics when available

CRITICAL: Return ONLY the JSON array, no other text, no markdown formatting, no preamble.`

// AgentRunner is the subset of the agent the processor needs.
type AgentRunner interface {
	Run(ctx context.Context, userMessage string, history []llm.Message) (string, []llm.Message, error)
}

// PromptResult is the outcome of running one extracted prompt.
type PromptResult struct {
	Prompt   string `json:"prompt"`
	Response string `json:"response,omitempty"`
	Error    string `json:"error,omitempty"`
	Success  bool   `json:"success"`
}

// Summary reports the outcome of processing one transcript.
type Summary struct {
	PromptsExtracted int            `json:"prompts_extracted"`
	UseCasesCreated  int            `json:"use_cases_created"`
	Results          []PromptResult `json:"results"`
}

// Processor extracts use case prompts from transcripts and executes them.
type Processor struct {
	client llm.ChatClient
	runner AgentRunner
	logger *zap.Logger
}

// NewProcessor creates a transcript processor.
func NewProcessor(client llm.ChatClient, runner AgentRunner, logger *zap.Logger) *Processor {
	return &Processor{
		client: client,
		runner: runner,
		logger: logger.Named("extraction"),
	}
}

// ExtractPrompts performs the extraction model call and parses the
// returned JSON array of prompt strings. Markdown code fences around the
// array are tolerated.
func (p *Processor) ExtractPrompts(ctx context.Context, transcript string) ([]string, error) {
	resp, err := p.client.CreateCompletion(ctx, &llm.CompletionRequest{
		SystemPrompt: extractionPrompt,
		Messages: []llm.Message{
			{Role: llm.RoleUser, Content: "Extract use case prompts from this transcript:\n\n" + transcript},
		},
		MaxTokens:   3000,
		Temperature: 0.3,
	})
	if err != nil {
		return nil, fmt.Errorf("extraction call: %w", err)
	}

	prompts, err := parsePromptArray(resp.Content)
	if err != nil {
		p.logger.Error("Failed to parse extraction response",
			zap.String("content", resp.Content),
			zap.Error(err))
		return nil, err
	}

	p.logger.Info("Extracted use case prompts", zap.Int("count", len(prompts)))
	return prompts, nil
}

// ProcessTranscript runs the complete workflow: extract prompts, then
// feed each one to the agent with a fresh conversation. A failing prompt
// does not stop the remaining ones.
func (p *Processor) ProcessTranscript(ctx context.Context, transcript string) (*Summary, error) {
	prompts, err := p.ExtractPrompts(ctx, transcript)
	if err != nil {
		return nil, err
	}

	summary := &Summary{PromptsExtracted: len(prompts)}
	for i, prompt := range prompts {
		p.logger.Info("Running extracted prompt",
			zap.Int("index", i+1),
			zap.Int("total", len(prompts)))

		answer, _, err := p.runner.Run(ctx, prompt, nil)
		if err != nil {
			p.logger.Error("Prompt failed",
				zap.Int("index", i+1),
				zap.Error(err))
			summary.Results = append(summary.Results, PromptResult{
				Prompt: prompt,
				Error:  err.Error(),
			})
			continue
		}

		summary.UseCasesCreated++
		summary.Results = append(summary.Results, PromptResult{
			Prompt:   prompt,
			Response: answer,
			Success:  true,
		})
	}

	return summary, nil
}

// parsePromptArray strips optional markdown fences and decodes the JSON
// array of prompt strings.
func parsePromptArray(content string) ([]string, error) {
	cleaned := strings.TrimSpace(content)

	if idx := strings.Index(cleaned, "```json"); idx >= 0 {
		cleaned = cleaned[idx+len("```json"):]
		if end := strings.Index(cleaned, "```"); end >= 0 {
			cleaned = cleaned[:end]
		}
	} else if idx := strings.Index(cleaned, "```"); idx >= 0 {
		cleaned = cleaned[idx+len("```"):]
		if end := strings.Index(cleaned, "```"); end >= 0 {
			cleaned = cleaned[:end]
		}
	}
	cleaned = strings.TrimSpace(cleaned)

	var prompts []string
	if err := json.Unmarshal([]byte(cleaned), &prompts); err != nil {
		return nil, fmt.Errorf("failed to parse prompt array: %w", err)
	}
	return prompts, nil
}
