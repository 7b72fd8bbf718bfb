// Package assist composes answers to emergency questions from retrieved
// guidance snippets, optionally using a hosted completion API.
package assist

import (
	"context"
	"fmt"
	"strings"

	sdk "github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
	"github.com/rotisserie/eris"

	"github.com/reliefmap/shelter-cli/internal/retrieval"
)

// Completer generates a free-text answer from a prompt. The on-device model
// of the mobile client and the hosted API both sit behind this interface.
type Completer interface {
	Complete(ctx context.Context, system, prompt string, maxTokens int) (string, error)
}

const systemPrompt = "You are an emergency-assistance guide. Answer briefly and " +
	"practically, using only the provided reference snippets. If the snippets " +
	"do not cover the question, say so and advise calling local emergency services."

// Answer retrieves context for the question and produces a response. With a
// nil completer it returns the formatted snippets themselves, so the command
// remains useful fully offline.
func Answer(ctx context.Context, idx *retrieval.Index, completer Completer, question string, topK, maxTokens int) (string, error) {
	matches, err := idx.Search(ctx, question, topK)
	if err != nil {
		return "", eris.Wrap(err, "assist: retrieve snippets")
	}
	if len(matches) == 0 {
		return "No guidance found for this question. Call local emergency services if you are in danger.", nil
	}

	if completer == nil {
		return formatSnippets(matches), nil
	}

	answer, err := completer.Complete(ctx, systemPrompt, buildPrompt(question, matches), maxTokens)
	if err != nil {
		return "", eris.Wrap(err, "assist: complete")
	}
	return answer, nil
}

func buildPrompt(question string, matches []retrieval.Match) string {
	var b strings.Builder
	b.WriteString("Reference snippets:\n\n")
	for i, m := range matches {
		fmt.Fprintf(&b, "[%d] %s\n%s\n\n", i+1, m.Snippet.Title, strings.TrimSpace(m.Snippet.Text))
	}
	fmt.Fprintf(&b, "Question: %s", question)
	return b.String()
}

func formatSnippets(matches []retrieval.Match) string {
	var b strings.Builder
	b.WriteString("Relevant guidance:\n")
	for _, m := range matches {
		fmt.Fprintf(&b, "\n## %s\n%s\n", m.Snippet.Title, strings.TrimSpace(m.Snippet.Text))
	}
	return b.String()
}

// anthropicCompleter implements Completer using the official SDK.
type anthropicCompleter struct {
	client sdk.Client
	model  string
}

// NewAnthropicCompleter creates a Completer backed by the Anthropic API.
func NewAnthropicCompleter(apiKey, model string) Completer {
	return &anthropicCompleter{
		client: sdk.NewClient(option.WithAPIKey(apiKey)),
		model:  model,
	}
}

func (c *anthropicCompleter) Complete(ctx context.Context, system, prompt string, maxTokens int) (string, error) {
	msg, err := c.client.Messages.New(ctx, sdk.MessageNewParams{
		Model:     sdk.Model(c.model),
		MaxTokens: int64(maxTokens),
		System:    []sdk.TextBlockParam{{Text: system}},
		Messages:  []sdk.MessageParam{sdk.NewUserMessage(sdk.NewTextBlock(prompt))},
	})
	if err != nil {
		return "", eris.Wrap(err, "assist: create message")
	}

	var b strings.Builder
	for _, block := range msg.Content {
		if block.Type == "text" {
			b.WriteString(block.Text)
		}
	}
	return b.String(), nil
}
