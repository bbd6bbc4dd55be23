package openai

import (
	"context"
	"errors"
	"time"

	"github.com/sashabaranov/go-openai"

	"github.com/flarexio/ragblade/llm"
)

var ErrNoResponse = errors.New("no response generated")

// NewGenerator builds a Generator on any OpenAI-compatible chat completion
// endpoint. Pointing BaseURL at an Ollama instance (e.g.
// http://localhost:11434/v1) uses local models.
func NewGenerator(cfg llm.Config) llm.Generator {
	c := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		c.BaseURL = cfg.BaseURL
	}

	return &generator{
		client:  openai.NewClientWithConfig(c),
		model:   cfg.Model,
		timeout: cfg.Timeout.Duration(),
	}
}

type generator struct {
	client  *openai.Client
	model   string
	timeout time.Duration
}

func (g *generator) Generate(ctx context.Context, prompt string) (string, error) {
	if g.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, g.timeout)
		defer cancel()
	}

	resp, err := g.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: g.model,
		Messages: []openai.ChatCompletionMessage{
			{
				Role:    openai.ChatMessageRoleUser,
				Content: prompt,
			},
		},
	})

	if err != nil {
		return "", err
	}

	if len(resp.Choices) == 0 {
		return "", ErrNoResponse
	}

	return resp.Choices[0].Message.Content, nil
}

func (g *generator) Model() string {
	return g.model
}
