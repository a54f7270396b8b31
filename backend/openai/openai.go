// Package openai plays personas with an OpenAI-compatible chat completion
// service, including Azure OpenAI deployments.
//
// Each Invoke is one persona turn: the rendered instructions and any
// observations become system messages, the persona's own earlier messages
// become assistant messages, and everything else is user input. Tool calls
// requested by the model run against the persona's scoped tool set for a
// bounded number of rounds.
package openai

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	openaisdk "github.com/openai/openai-go"
	"github.com/openai/openai-go/azure"
	"github.com/openai/openai-go/option"

	"github.com/tailored-agentic-units/groupchat/backend"
	"github.com/tailored-agentic-units/groupchat/core/protocol"
)

var (
	// ErrEmptyResponse is returned when a completion carries no choices.
	ErrEmptyResponse = errors.New("model returned no choices")
	// ErrToolRounds is returned when the model keeps requesting tools past
	// the configured number of rounds.
	ErrToolRounds = errors.New("tool call rounds exhausted")
	// ErrMissingModel is returned by New when no model is configured.
	ErrMissingModel = errors.New("model is required")
)

// Backend implements backend.Backend over the chat completions API.
type Backend struct {
	client        openaisdk.Client
	model         string
	maxToolRounds int
}

// New creates a Backend from cfg. Extra request options are applied last
// and override the configured ones.
func New(cfg Config, opts ...option.RequestOption) (*Backend, error) {
	if cfg.Model == "" {
		return nil, ErrMissingModel
	}

	reqOpts := []option.RequestOption{option.WithMaxRetries(cfg.MaxRetries)}
	if cfg.TimeoutSeconds > 0 {
		reqOpts = append(reqOpts, option.WithRequestTimeout(time.Duration(cfg.TimeoutSeconds)*time.Second))
	}

	if cfg.AzureEndpoint != "" {
		version := cfg.AzureAPIVersion
		if version == "" {
			version = DefaultAzureAPIVersion
		}
		reqOpts = append(reqOpts, azure.WithEndpoint(cfg.AzureEndpoint, version))
		if cfg.APIKey != "" {
			reqOpts = append(reqOpts, azure.WithAPIKey(cfg.APIKey))
		}
	} else {
		if cfg.APIKey != "" {
			reqOpts = append(reqOpts, option.WithAPIKey(cfg.APIKey))
		}
		if cfg.BaseURL != "" {
			reqOpts = append(reqOpts, option.WithBaseURL(cfg.BaseURL))
		}
	}

	rounds := cfg.MaxToolRounds
	if rounds <= 0 {
		rounds = DefaultMaxToolRounds
	}

	return &Backend{
		client:        openaisdk.NewClient(append(reqOpts, opts...)...),
		model:         cfg.Model,
		maxToolRounds: rounds,
	}, nil
}

// Model returns the configured model or deployment name.
func (b *Backend) Model() string { return b.model }

// Invoke runs one persona turn.
func (b *Backend) Invoke(ctx context.Context, inv backend.Invocation) (protocol.Message, error) {
	set := inv.Tools
	if set == nil {
		set = backend.NoTools{}
	}

	params := openaisdk.ChatCompletionNewParams{
		Model:    openaisdk.ChatModel(b.model),
		Messages: messages(inv),
	}
	if defs := set.List(); len(defs) > 0 {
		params.Tools = toolParams(defs)
	}

	var calls []protocol.ToolCall

	for round := 0; ; round++ {
		completion, err := b.client.Chat.Completions.New(ctx, params)
		if err != nil {
			return protocol.Message{}, fmt.Errorf("chat completion failed: %w", err)
		}
		if len(completion.Choices) == 0 {
			return protocol.Message{}, ErrEmptyResponse
		}

		msg := completion.Choices[0].Message
		if len(msg.ToolCalls) == 0 {
			return protocol.Message{Content: msg.Content, ToolCalls: calls}, nil
		}
		if round >= b.maxToolRounds {
			return protocol.Message{}, fmt.Errorf("%w: %d", ErrToolRounds, b.maxToolRounds)
		}

		params.Messages = append(params.Messages, msg.ToParam())

		for _, tc := range msg.ToolCalls {
			res, err := set.Execute(ctx, tc.Function.Name, json.RawMessage(tc.Function.Arguments))
			if err != nil {
				return protocol.Message{}, fmt.Errorf("tool %s failed: %w", tc.Function.Name, err)
			}

			calls = append(calls, protocol.ToolCall{
				ID:        tc.ID,
				Name:      tc.Function.Name,
				Arguments: tc.Function.Arguments,
				Result:    res.Content,
				IsError:   res.IsError,
			})
			params.Messages = append(params.Messages, openaisdk.ToolMessage(res.Content, tc.ID))
		}
	}
}

func messages(inv backend.Invocation) []openaisdk.ChatCompletionMessageParamUnion {
	out := make([]openaisdk.ChatCompletionMessageParamUnion, 0, len(inv.Transcript)+len(inv.Observations)+1)

	if inv.Instructions != "" {
		out = append(out, openaisdk.SystemMessage(inv.Instructions))
	}
	for _, o := range inv.Observations {
		out = append(out, openaisdk.SystemMessage(fmt.Sprintf("Current output of %s:\n%s", o.Tool, o.Content)))
	}

	for _, m := range inv.Transcript {
		switch {
		case m.IsUser():
			out = append(out, openaisdk.UserMessage(m.Content))
		case m.SpeakerID == inv.Persona.ID:
			out = append(out, openaisdk.AssistantMessage(m.Content))
		default:
			out = append(out, openaisdk.UserMessage(m.Content))
		}
	}
	return out
}

func toolParams(defs []protocol.Tool) []openaisdk.ChatCompletionToolParam {
	out := make([]openaisdk.ChatCompletionToolParam, 0, len(defs))
	for _, t := range defs {
		params := t.Parameters
		if params == nil {
			params = map[string]any{"type": "object", "properties": map[string]any{}}
		}
		fn := openaisdk.FunctionDefinitionParam{
			Name:       t.Name,
			Parameters: openaisdk.FunctionParameters(params),
		}
		if t.Description != "" {
			fn.Description = openaisdk.String(t.Description)
		}
		out = append(out, openaisdk.ChatCompletionToolParam{Function: fn})
	}
	return out
}
