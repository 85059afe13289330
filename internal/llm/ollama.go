package llm

import (
	"context"
	"errors"
	"fmt"
	"iter"
	"net/http"
	"net/url"
	"sort"
	"strings"

	"github.com/ollama/ollama/api"
	"google.golang.org/adk/model"
	"google.golang.org/genai"
)

var errStopped = errors.New("consumer stopped iteration")

// OllamaModel adapts a local Ollama server to the ADK model.LLM interface
type OllamaModel struct {
	client    *api.Client
	modelName string
}

// NewOllamaModel creates an Ollama-backed model
func NewOllamaModel(_ context.Context, cfg Config) (model.LLM, error) {
	raw := cfg.OllamaURL
	if raw == "" {
		raw = defaultOllamaURL
	}
	u, err := url.Parse(raw)
	if err != nil {
		return nil, fmt.Errorf("invalid OLLAMA_URL: %w", err)
	}
	name := cfg.Model
	if name == "" {
		name = defaultOllamaModel
	}
	return &OllamaModel{
		client:    api.NewClient(u, http.DefaultClient),
		modelName: name,
	}, nil
}

// Name returns the model name
func (m *OllamaModel) Name() string {
	return m.modelName
}

// GenerateContent implements model.LLM
func (m *OllamaModel) GenerateContent(ctx context.Context, req *model.LLMRequest, stream bool) iter.Seq2[*model.LLMResponse, error] {
	return func(yield func(*model.LLMResponse, error) bool) {
		chatReq := &api.ChatRequest{
			Model:    m.modelName,
			Messages: toOllamaMessages(req.Contents),
			Stream:   &stream,
		}
		if len(req.Tools) > 0 {
			chatReq.Tools = toOllamaTools(req.Tools)
		}

		if !stream {
			var final api.ChatResponse
			err := m.client.Chat(ctx, chatReq, func(resp api.ChatResponse) error {
				final = resp
				return nil
			})
			if err != nil {
				yield(nil, fmt.Errorf("ollama chat: %w", err))
				return
			}
			resp := fromOllamaMessage(final.Message)
			resp.TurnComplete = true
			yield(resp, nil)
			return
		}

		err := m.client.Chat(ctx, chatReq, func(chunk api.ChatResponse) error {
			if chunk.Message.Content == "" && len(chunk.Message.ToolCalls) == 0 {
				return nil
			}
			resp := fromOllamaMessage(chunk.Message)
			resp.Partial = !chunk.Done
			resp.TurnComplete = chunk.Done
			if !yield(resp, nil) {
				return errStopped
			}
			return nil
		})
		if err != nil && !errors.Is(err, errStopped) {
			yield(nil, fmt.Errorf("ollama chat: %w", err))
		}
	}
}

// ollamaRole maps genai roles onto Ollama's chat roles
func ollamaRole(role string) string {
	if role == "model" {
		return "assistant"
	}
	return role
}

func toOllamaMessages(contents []*genai.Content) []api.Message {
	messages := make([]api.Message, 0, len(contents))
	for _, content := range contents {
		if content == nil {
			continue
		}
		var text strings.Builder
		var calls []api.ToolCall
		for _, part := range content.Parts {
			text.WriteString(part.Text)
			if fc := part.FunctionCall; fc != nil {
				args := make(api.ToolCallFunctionArguments, len(fc.Args))
				for k, v := range fc.Args {
					args[k] = v
				}
				calls = append(calls, api.ToolCall{
					Function: api.ToolCallFunction{Name: fc.Name, Arguments: args},
				})
			}
			if fr := part.FunctionResponse; fr != nil {
				// tool results go back as plain text; Ollama has no structured slot for them
				fmt.Fprintf(&text, "%s result: %v", fr.Name, fr.Response)
			}
		}
		messages = append(messages, api.Message{
			Role:      ollamaRole(content.Role),
			Content:   text.String(),
			ToolCalls: calls,
		})
	}
	return messages
}

// toOllamaTools converts the ADK tool declarations, ordered by name so
// requests are stable across calls
func toOllamaTools(tools map[string]any) []api.Tool {
	names := make([]string, 0, len(tools))
	for name := range tools {
		names = append(names, name)
	}
	sort.Strings(names)

	var out []api.Tool
	for _, name := range names {
		decl, ok := tools[name].(map[string]any)
		if !ok {
			continue
		}
		description, _ := decl["description"].(string)
		params, _ := decl["parameters"].(map[string]any)
		out = append(out, api.Tool{
			Type: "function",
			Function: api.ToolFunction{
				Name:        name,
				Description: description,
				Parameters: api.ToolFunctionParameters{
					Type:       "object",
					Properties: toOllamaProperties(params),
				},
			},
		})
	}
	return out
}

func toOllamaProperties(params map[string]any) map[string]api.ToolProperty {
	result := make(map[string]api.ToolProperty)
	props, _ := params["properties"].(map[string]any)
	for name, raw := range props {
		prop, ok := raw.(map[string]any)
		if !ok {
			continue
		}
		p := api.ToolProperty{Type: api.PropertyType{"string"}}
		if t, ok := prop["type"].(string); ok {
			p.Type = api.PropertyType{strings.ToLower(t)}
		}
		if d, ok := prop["description"].(string); ok {
			p.Description = d
		}
		result[name] = p
	}
	return result
}

// fromOllamaMessage converts a reply into an ADK response. Tool calls take
// precedence over text so the runner dispatches them.
func fromOllamaMessage(msg api.Message) *model.LLMResponse {
	content := &genai.Content{Role: "model"}
	if len(msg.ToolCalls) == 0 {
		content.Parts = []*genai.Part{genai.NewPartFromText(msg.Content)}
		return &model.LLMResponse{Content: content}
	}
	for _, tc := range msg.ToolCalls {
		args := make(map[string]any, len(tc.Function.Arguments))
		for k, v := range tc.Function.Arguments {
			args[k] = v
		}
		content.Parts = append(content.Parts, &genai.Part{
			FunctionCall: &genai.FunctionCall{Name: tc.Function.Name, Args: args},
		})
	}
	return &model.LLMResponse{Content: content}
}
