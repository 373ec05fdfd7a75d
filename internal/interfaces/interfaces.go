package interfaces

import (
	"context"
	"io"
)

// TTS is the text-to-speech interface. Implementations should be swappable.
type TTS interface {
	// Speak converts text into audio bytes (e.g., encoded PCM or an audio format)
	Speak(ctx context.Context, text string, opts ...TTSOption) ([]byte, error)
	// SpeakStream writes audio bytes for the given text to the provided writer as they are produced.
	// Implementations that can stream should provide this for low-latency playback.
	SpeakStream(ctx context.Context, text string, w io.Writer, opts ...TTSOption) error
}

// STT is the speech-to-text interface.
type STT interface {
	// Recognize converts audio bytes into text (returns transcript and confidence)
	Recognize(ctx context.Context, audio []byte, opts ...STTOption) (string, float32, error)
}

// LiveTranscript is one incremental result from a streaming recognizer.
type LiveTranscript struct {
	Text  string
	Final bool
}

// STTStream is an open live recognition stream. Send accepts raw audio
// frames; Results delivers transcripts until the stream closes.
type STTStream interface {
	Send(audio []byte) error
	Results() <-chan LiveTranscript
	Close() error
}

// StreamingSTT marks an STT vendor that can transcribe continuously over a
// live connection instead of per-utterance batch requests.
type StreamingSTT interface {
	STT
	StartStream(ctx context.Context, sampleRate int) (STTStream, error)
}

// ChatMessage is one turn in a chat-completion conversation.
type ChatMessage struct {
	Role       string     `json:"role"`
	Content    string     `json:"content,omitempty"`
	ToolCalls  []ToolCall `json:"tool_calls,omitempty"`
	ToolCallID string     `json:"tool_call_id,omitempty"`
	Name       string     `json:"name,omitempty"`
}

// ToolCall is a tool invocation requested by the model.
type ToolCall struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Arguments string `json:"arguments"` // raw JSON object
}

// ToolSpec describes a callable tool exposed to the model.
type ToolSpec struct {
	Name        string         `json:"name"`
	Description string         `json:"description"`
	Parameters  map[string]any `json:"parameters"`
}

// ChatResult is the model's reply for one turn: either assistant text,
// tool calls, or both.
type ChatResult struct {
	Content   string
	ToolCalls []ToolCall
}

// LLM is the language model interface.
type LLM interface {
	// Generate takes a prompt and returns a generated text response
	Generate(ctx context.Context, prompt string, opts ...LLMOption) (string, error)
	// Chat runs one chat-completion turn over the full message history,
	// exposing the given tools to the model.
	Chat(ctx context.Context, messages []ChatMessage, tools []ToolSpec, opts ...LLMOption) (*ChatResult, error)
}

// VAD detects voice activity in raw audio frames.
type VAD interface {
	// IsSpeech reports whether the audio chunk contains speech.
	IsSpeech(audio []byte) bool
}

// TurnDetector decides whether the user has finished their turn given the
// transcript so far and the trailing silence duration in milliseconds.
type TurnDetector interface {
	EndOfTurn(transcript string, silenceMs int) bool
}

// Option types are intentionally small placeholders to allow vendor-specific options.
type TTSOption func(*map[string]any)
type STTOption func(*map[string]any)
type LLMOption func(*map[string]any)
