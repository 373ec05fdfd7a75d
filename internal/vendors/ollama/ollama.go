package ollama

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/StevenAdams-JaTango/TestAppJATANGO/internal/interfaces"
)

// ollamaLLM talks to a local Ollama server. Tool calling uses /api/chat,
// plain generation uses /api/generate.
type ollamaLLM struct {
	baseURL string
	model   string
	client  *http.Client
}

// New returns a client configured for the local Ollama HTTP API.
func New() interfaces.LLM {
	return NewWithEndpointModel("http://localhost:11434", "llama3.1")
}

// NewWithEndpointModel creates an Ollama client with custom base URL and model.
func NewWithEndpointModel(baseURL, model string) interfaces.LLM {
	if baseURL == "" {
		baseURL = "http://localhost:11434"
	}
	if model == "" {
		model = "llama3.1"
	}
	return &ollamaLLM{
		baseURL: strings.TrimSuffix(baseURL, "/"),
		model:   model,
		client:  &http.Client{Timeout: 60 * time.Second},
	}
}

type generateRequest struct {
	Model  string `json:"model"`
	Prompt string `json:"prompt"`
	Stream bool   `json:"stream"`
}

type generateResponse struct {
	Response string `json:"response"`
	Done     bool   `json:"done"`
}

func (o *ollamaLLM) Generate(ctx context.Context, prompt string, opts ...interfaces.LLMOption) (string, error) {
	reqBody := generateRequest{Model: o.model, Prompt: prompt, Stream: false}
	b, err := json.Marshal(reqBody)
	if err != nil {
		return "", fmt.Errorf("marshal ollama request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, o.baseURL+"/api/generate", bytes.NewReader(b))
	if err != nil {
		return "", fmt.Errorf("new request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := o.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("post to ollama: %w", err)
	}
	defer resp.Body.Close()

	var out generateResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", fmt.Errorf("decode ollama response: %w", err)
	}
	return out.Response, nil
}

type chatToolFunction struct {
	Name        string         `json:"name"`
	Description string         `json:"description,omitempty"`
	Parameters  map[string]any `json:"parameters,omitempty"`
}

type chatTool struct {
	Type     string           `json:"type"`
	Function chatToolFunction `json:"function"`
}

type chatToolCall struct {
	Function struct {
		Name      string          `json:"name"`
		Arguments json.RawMessage `json:"arguments"`
	} `json:"function"`
}

type chatMessage struct {
	Role      string         `json:"role"`
	Content   string         `json:"content"`
	ToolCalls []chatToolCall `json:"tool_calls,omitempty"`
}

type chatRequest struct {
	Model    string        `json:"model"`
	Messages []chatMessage `json:"messages"`
	Tools    []chatTool    `json:"tools,omitempty"`
	Stream   bool          `json:"stream"`
}

type chatResponse struct {
	Message chatMessage `json:"message"`
	Done    bool        `json:"done"`
}

func (o *ollamaLLM) Chat(ctx context.Context, messages []interfaces.ChatMessage, tools []interfaces.ToolSpec, opts ...interfaces.LLMOption) (*interfaces.ChatResult, error) {
	reqBody := chatRequest{Model: o.model, Stream: false}
	for _, m := range messages {
		reqBody.Messages = append(reqBody.Messages, chatMessage{Role: m.Role, Content: m.Content})
	}
	for _, t := range tools {
		reqBody.Tools = append(reqBody.Tools, chatTool{
			Type:     "function",
			Function: chatToolFunction{Name: t.Name, Description: t.Description, Parameters: t.Parameters},
		})
	}

	b, err := json.Marshal(reqBody)
	if err != nil {
		return nil, fmt.Errorf("marshal ollama chat request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, o.baseURL+"/api/chat", bytes.NewReader(b))
	if err != nil {
		return nil, fmt.Errorf("new request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := o.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("post to ollama chat: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("ollama chat returned status %d", resp.StatusCode)
	}

	var out chatResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, fmt.Errorf("decode ollama chat response: %w", err)
	}

	result := &interfaces.ChatResult{Content: out.Message.Content}
	for i, tc := range out.Message.ToolCalls {
		result.ToolCalls = append(result.ToolCalls, interfaces.ToolCall{
			ID:        fmt.Sprintf("call-%d", i),
			Name:      tc.Function.Name,
			Arguments: string(tc.Function.Arguments),
		})
	}
	return result, nil
}
