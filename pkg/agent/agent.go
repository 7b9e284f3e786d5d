// Package agent implements the multi-round tool-calling loop that turns
// natural-language requests into use case database operations.
package agent

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/usecasehq/usecase-engine/pkg/llm"
)

// DefaultMaxRounds bounds the number of tool-calling rounds per request.
const DefaultMaxRounds = 10

// Agent drives the conversation with the model: it seeds the system
// prompt, offers the tool catalog each round, executes the model's tool
// calls sequentially, and stops as soon as the model answers in plain
// text. At the round limit a final call without tools forces a text
// answer from whatever has been gathered.
type Agent struct {
	client      llm.ChatClient
	executor    llm.ToolExecutor
	tools       []llm.ToolDefinition
	maxRounds   int
	temperature float64
	recorder    llm.Recorder
	logger      *zap.Logger
}

// Options configure an Agent beyond its required dependencies.
type Options struct {
	MaxRounds   int
	Temperature float64

	// Recorder, when set, receives one CompletionRecord per model round
	// for persistence. Recording is fire-and-forget and never affects
	// the run's outcome.
	Recorder llm.Recorder
}

// New creates an agent over the given model client and tool executor.
func New(client llm.ChatClient, executor llm.ToolExecutor, tools []llm.ToolDefinition, opts Options, logger *zap.Logger) *Agent {
	maxRounds := opts.MaxRounds
	if maxRounds <= 0 {
		maxRounds = DefaultMaxRounds
	}

	return &Agent{
		client:      client,
		executor:    executor,
		tools:       tools,
		maxRounds:   maxRounds,
		temperature: opts.Temperature,
		recorder:    opts.Recorder,
		logger:      logger.Named("agent"),
	}
}

// Run processes one user message. history carries the prior turns of the
// conversation (empty for a fresh one) and the returned slice is the
// updated history including this turn, suitable for passing back in.
func (a *Agent) Run(ctx context.Context, userMessage string, history []llm.Message) (string, []llm.Message, error) {
	messages := make([]llm.Message, len(history), len(history)+1)
	copy(messages, history)
	messages = append(messages, llm.Message{Role: llm.RoleUser, Content: userMessage})

	a.logger.Info("Agent run started",
		zap.String("model", a.client.GetModel()),
		zap.Int("history_length", len(history)))

	start := time.Now()

	for round := 1; round <= a.maxRounds; round++ {
		roundStart := time.Now()
		resp, err := a.client.CreateCompletion(ctx, &llm.CompletionRequest{
			SystemPrompt: a.systemPrompt(),
			Messages:     messages,
			Tools:        a.tools,
			Temperature:  a.temperature,
		})
		a.record(round, len(messages), roundStart, resp, err)
		if err != nil {
			return "", history, fmt.Errorf("round %d: %w", round, err)
		}

		// Plain text means the model is done.
		if len(resp.ToolCalls) == 0 {
			messages = append(messages, llm.Message{Role: llm.RoleAssistant, Content: resp.Content})
			a.logger.Info("Agent run completed",
				zap.Int("rounds", round),
				zap.Duration("elapsed", time.Since(start)))
			return resp.Content, messages, nil
		}

		a.logger.Debug("Executing tool calls",
			zap.Int("round", round),
			zap.Int("count", len(resp.ToolCalls)))

		messages = append(messages, llm.Message{
			Role:      llm.RoleAssistant,
			Content:   resp.Content,
			ToolCalls: resp.ToolCalls,
		})

		for _, tc := range resp.ToolCalls {
			result, err := a.executor.ExecuteTool(ctx, tc.Function.Name, tc.Function.Arguments)
			if err != nil {
				// A failing tool never aborts the round; the fault goes
				// back to the model as the tool result.
				a.logger.Error("Tool execution fault",
					zap.String("tool", tc.Function.Name),
					zap.Error(err))
				result = fmt.Sprintf(`{"error":%q}`, err.Error())
			}

			messages = append(messages, llm.Message{
				Role:       llm.RoleTool,
				Content:    result,
				ToolCallID: tc.ID,
			})
		}
	}

	// Round limit reached: one final call without tools so the model has
	// to answer in text.
	a.logger.Warn("Max rounds reached, forcing final answer",
		zap.Int("max_rounds", a.maxRounds))

	roundStart := time.Now()
	resp, err := a.client.CreateCompletion(ctx, &llm.CompletionRequest{
		SystemPrompt: a.systemPrompt(),
		Messages:     messages,
		Temperature:  a.temperature,
	})
	a.record(a.maxRounds+1, len(messages), roundStart, resp, err)
	if err != nil {
		return "", history, fmt.Errorf("final round: %w", err)
	}

	messages = append(messages, llm.Message{Role: llm.RoleAssistant, Content: resp.Content})

	a.logger.Info("Agent run completed",
		zap.Int("rounds", a.maxRounds),
		zap.Duration("elapsed", time.Since(start)))

	return resp.Content, messages, nil
}

// record hands one round's outcome to the recorder, if one is configured.
func (a *Agent) record(round, messageCount int, startedAt time.Time, resp *llm.CompletionResponse, err error) {
	if a.recorder == nil {
		return
	}

	rec := &llm.CompletionRecord{
		Model:        a.client.GetModel(),
		Round:        round,
		MessageCount: messageCount,
		DurationMs:   int(time.Since(startedAt).Milliseconds()),
		StartedAt:    startedAt,
	}
	if err != nil {
		rec.Error = err.Error()
	} else {
		rec.Content = resp.Content
		rec.ToolCallCount = len(resp.ToolCalls)
		rec.PromptTokens = resp.PromptTokens
		rec.CompletionTokens = resp.CompletionTokens
		rec.TotalTokens = resp.TotalTokens
	}

	a.recorder.Record(rec)
}

func (a *Agent) systemPrompt() string {
	var toolList strings.Builder
	for _, t := range a.tools {
		desc := t.Description
		if len(desc) > 100 {
			desc = desc[:100] + "..."
		}
		fmt.Fprintf(&toolList, "- %s: %s\n", t.Name, desc)
	}

	return fmt.Sprintf(`You are a helpful assistant managing a use case database for AI/ML projects.

You have access to tools that interact with the database. Your job is to help users query, create, update, and delete use cases, companies, industries, and persons.

CRITICAL RULES - TOOL USAGE:
1. ALWAYS use tools to perform database operations
2. NEVER assume or fabricate success/failure of operations
3. When asked to create/update/delete/query, you MUST call the appropriate tool
4. Wait for the tool's actual response before telling the user what happened
5. If a tool returns an error (including permission errors), report it honestly
6. NEVER say "I've successfully [action]" unless a tool returned success
7. If you don't have permission, the tool will tell you - report that error to the user

DATABASE OPERATIONS - ALWAYS USE TOOLS:
- To view/query data, use get/filter tools
- To create data, use create tools
- To update data, use update tools
- To delete data, use delete tools
- To link persons to use cases, use add_persons_to_use_case

PERMISSION SYSTEM:
- Some operations require specific permissions (maintainer or admin)
- The tools will check permissions automatically
- If denied, report the permission error clearly to the user
- Don't apologize excessively - just explain what permission is needed

RESPONSE STYLE:
- Be concise and helpful
- Present data clearly (use lists, grouping by category when appropriate)
- When operations succeed, confirm briefly
- When operations fail, explain why clearly
- Ask clarifying questions if the request is ambiguous

Available tools and their purposes:
%s
Remember: ALWAYS call the appropriate tool - never assume results!`, toolList.String())
}
