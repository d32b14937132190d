// Package llm provides the model-invocation side of a chat turn.
package llm

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"google.golang.org/genai"
)

// ErrEmptyResponse is returned when the model answers without any text.
var ErrEmptyResponse = errors.New("model returned no text")

// Options tunes generation.
type Options struct {
	Model       string
	Temperature float32
	TopP        float32
}

// Generator is the part of the genai models API the client calls.
type Generator interface {
	GenerateContent(ctx context.Context, model string, contents []*genai.Content, config *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error)
}

// Client wraps the Google GenAI client and produces assistant replies.
type Client struct {
	models Generator
	opts   Options
}

// NewClient creates a client for the Gemini API with the given API key.
func NewClient(ctx context.Context, apiKey string, opts Options) (*Client, error) {
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create GenAI client: %w", err)
	}
	return NewClientWithGenerator(client.Models, opts), nil
}

// NewClientWithGenerator creates a client over an existing generator.
func NewClientWithGenerator(models Generator, opts Options) *Client {
	return &Client{models: models, opts: opts}
}

// Reply sends one turn to the model. The system prompt carries the persona;
// contextBlock, when non-empty, is sent as a second system segment ahead of
// the user input.
func (c *Client) Reply(ctx context.Context, systemPrompt, contextBlock, userInput string) (string, error) {
	config := &genai.GenerateContentConfig{
		SystemInstruction: systemContent(systemPrompt, contextBlock),
		Temperature:       genai.Ptr(c.opts.Temperature),
		TopP:              genai.Ptr(c.opts.TopP),
	}

	resp, err := c.models.GenerateContent(ctx, c.opts.Model, genai.Text(userInput), config)
	if err != nil {
		return "", fmt.Errorf("failed to generate reply: %w", err)
	}

	text := responseText(resp)
	if text == "" {
		return "", ErrEmptyResponse
	}
	return text, nil
}

func systemContent(systemPrompt, contextBlock string) *genai.Content {
	parts := []*genai.Part{{Text: strings.TrimSpace(systemPrompt)}}
	if contextBlock != "" {
		parts = append(parts, &genai.Part{Text: "Context information:\n" + contextBlock})
	}
	return &genai.Content{Parts: parts}
}

// responseText joins the text parts of the first candidate.
func responseText(resp *genai.GenerateContentResponse) string {
	if resp == nil || len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return ""
	}

	var sb strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		if part.Text != "" && !part.Thought {
			sb.WriteString(part.Text)
		}
	}
	return strings.TrimSpace(sb.String())
}
