package openai

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/StevenAdams-JaTango/TestAppJATANGO/internal/interfaces"
)

const (
	defaultEndpoint = "https://api.openai.com/v1/chat/completions"
	defaultModel    = "gpt-4o-mini"
)

// Client talks to an OpenAI-compatible chat completions endpoint with
// function calling support.
type Client struct {
	endpoint string
	apiKey   string
	model    string
	client   *http.Client
}

// New returns a client for the hosted OpenAI API.
func New(apiKey string) *Client {
	return NewWithEndpointModel("", apiKey, "")
}

// NewWithEndpointModel creates a client with custom endpoint and model, for
// self-hosted OpenAI-compatible servers.
func NewWithEndpointModel(endpoint, apiKey, model string) *Client {
	if endpoint == "" {
		endpoint = defaultEndpoint
	}
	if model == "" {
		model = defaultModel
	}
	return &Client{
		endpoint: endpoint,
		apiKey:   apiKey,
		model:    model,
		client:   &http.Client{Timeout: 60 * time.Second},
	}
}

type wireFunction struct {
	Name        string         `json:"name"`
	Description string         `json:"description,omitempty"`
	Parameters  map[string]any `json:"parameters,omitempty"`
}

type wireTool struct {
	Type     string       `json:"type"`
	Function wireFunction `json:"function"`
}

type wireFunctionCall struct {
	Name      string `json:"name"`
	Arguments string `json:"arguments"`
}

type wireToolCall struct {
	ID       string           `json:"id"`
	Type     string           `json:"type"`
	Function wireFunctionCall `json:"function"`
}

type wireMessage struct {
	Role       string         `json:"role"`
	Content    string         `json:"content"`
	ToolCalls  []wireToolCall `json:"tool_calls,omitempty"`
	ToolCallID string         `json:"tool_call_id,omitempty"`
	Name       string         `json:"name,omitempty"`
}

type chatRequest struct {
	Model    string        `json:"model"`
	Messages []wireMessage `json:"messages"`
	Tools    []wireTool    `json:"tools,omitempty"`
}

type chatResponse struct {
	Choices []struct {
		Message wireMessage `json:"message"`
	} `json:"choices"`
	Error *struct {
		Message string `json:"message"`
		Type    string `json:"type"`
	} `json:"error"`
}

// Chat runs one chat-completion turn over the full message history.
func (c *Client) Chat(ctx context.Context, messages []interfaces.ChatMessage, tools []interfaces.ToolSpec, opts ...interfaces.LLMOption) (*interfaces.ChatResult, error) {
	reqBody := chatRequest{Model: c.model, Messages: toWire(messages)}
	for _, t := range tools {
		reqBody.Tools = append(reqBody.Tools, wireTool{
			Type:     "function",
			Function: wireFunction{Name: t.Name, Description: t.Description, Parameters: t.Parameters},
		})
	}

	b, err := json.Marshal(reqBody)
	if err != nil {
		return nil, fmt.Errorf("marshal chat request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(b))
	if err != nil {
		return nil, fmt.Errorf("new request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("post chat completion: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response body: %w", err)
	}

	var out chatResponse
	if err := json.Unmarshal(body, &out); err != nil {
		return nil, fmt.Errorf("unmarshal chat response: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		if out.Error != nil {
			return nil, fmt.Errorf("chat completion failed: %s (%s)", out.Error.Message, out.Error.Type)
		}
		return nil, fmt.Errorf("chat completion status %d: %s", resp.StatusCode, string(body))
	}
	if len(out.Choices) == 0 {
		return nil, fmt.Errorf("chat completion returned no choices")
	}

	msg := out.Choices[0].Message
	result := &interfaces.ChatResult{Content: msg.Content}
	for _, tc := range msg.ToolCalls {
		result.ToolCalls = append(result.ToolCalls, interfaces.ToolCall{
			ID:        tc.ID,
			Name:      tc.Function.Name,
			Arguments: tc.Function.Arguments,
		})
	}
	return result, nil
}

// Generate is the plain single-prompt path.
func (c *Client) Generate(ctx context.Context, prompt string, opts ...interfaces.LLMOption) (string, error) {
	res, err := c.Chat(ctx, []interfaces.ChatMessage{{Role: "user", Content: prompt}}, nil, opts...)
	if err != nil {
		return "", err
	}
	return res.Content, nil
}

func toWire(messages []interfaces.ChatMessage) []wireMessage {
	out := make([]wireMessage, 0, len(messages))
	for _, m := range messages {
		wm := wireMessage{
			Role:       m.Role,
			Content:    m.Content,
			ToolCallID: m.ToolCallID,
			Name:       m.Name,
		}
		for _, tc := range m.ToolCalls {
			wm.ToolCalls = append(wm.ToolCalls, wireToolCall{
				ID:       tc.ID,
				Type:     "function",
				Function: wireFunctionCall{Name: tc.Name, Arguments: tc.Arguments},
			})
		}
		out = append(out, wm)
	}
	return out
}
