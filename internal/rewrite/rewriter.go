// Package rewrite turns context-dependent chat messages into standalone queries.
package rewrite

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/nsf-ai/knowledge-assistant/internal/llm"
	"github.com/nsf-ai/knowledge-assistant/internal/model"
	"github.com/nsf-ai/knowledge-assistant/pkg/apperr"
	"github.com/nsf-ai/knowledge-assistant/pkg/metrics"
)

// maxHistory is the number of recent turns used as rewriting context.
const maxHistory = 3

const promptTemplate = `Given the conversation history and current user message, return the current message as-is if it's standalone and clear. If it references previous context or is unclear without history, rephrase it to be a complete, standalone question.

Conversation History:
%s
Current Message: %s

Return only the standalone version of the message:`

// Rewriter produces standalone queries from recent conversation history.
type Rewriter struct {
	client llm.Client
	model  string
}

// New creates a rewriter backed by the given completion client.
// model may be empty to use the provider default.
func New(client llm.Client, model string) *Rewriter {
	return &Rewriter{
		client: client,
		model:  model,
	}
}

// Rewrite returns message unchanged when there is no history to
// disambiguate against; otherwise it issues one deterministic
// completion over the last three turns. A completion failure
// propagates: falling back to the raw message would silently degrade
// answer quality.
func (r *Rewriter) Rewrite(ctx context.Context, message string, history []model.Turn) (string, error) {
	if len(history) == 0 {
		return message, nil
	}

	if len(history) > maxHistory {
		history = history[len(history)-maxHistory:]
	}

	var b strings.Builder
	for _, turn := range history {
		fmt.Fprintf(&b, "User: %s\nAssistant: %s\n", turn.UserMessage, turn.AIResponse)
	}

	prompt := fmt.Sprintf(promptTemplate, b.String(), message)

	start := time.Now()
	resp, err := r.client.Complete(ctx, &llm.CompletionRequest{
		Model: r.model,
		Messages: []llm.ChatMessage{
			{Role: "user", Content: prompt},
		},
		Temperature: 0,
	})
	if err != nil {
		metrics.RewriteCallDuration.WithLabelValues(r.client.Name(), "error").Observe(time.Since(start).Seconds())
		return "", apperr.Engine("query rewrite failed", err)
	}
	metrics.RewriteCallDuration.WithLabelValues(r.client.Name(), "success").Observe(time.Since(start).Seconds())

	return strings.TrimSpace(resp.Content), nil
}
