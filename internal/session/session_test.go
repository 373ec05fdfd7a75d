package session

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/StevenAdams-JaTango/TestAppJATANGO/internal/assistant"
	"github.com/StevenAdams-JaTango/TestAppJATANGO/internal/interfaces"
	"github.com/StevenAdams-JaTango/TestAppJATANGO/internal/room"
)

// recordingLLM captures the user text of every chat turn.
type recordingLLM struct {
	mu    sync.Mutex
	turns []string
}

func (l *recordingLLM) Generate(ctx context.Context, prompt string, opts ...interfaces.LLMOption) (string, error) {
	return "", errors.New("not used")
}

func (l *recordingLLM) Chat(ctx context.Context, messages []interfaces.ChatMessage, tools []interfaces.ToolSpec, opts ...interfaces.LLMOption) (*interfaces.ChatResult, error) {
	if len(messages) > 0 {
		l.mu.Lock()
		l.turns = append(l.turns, messages[len(messages)-1].Content)
		l.mu.Unlock()
	}
	return &interfaces.ChatResult{Content: "noted"}, nil
}

func (l *recordingLLM) Turns() []string {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]string(nil), l.turns...)
}

type emptyRoom struct{}

func (emptyRoom) RemoteParticipants() []room.Participant { return nil }

func (emptyRoom) PerformRPC(ctx context.Context, dest, method, payload string, timeout time.Duration) (string, error) {
	return "", errors.New("no peers")
}

type alwaysEnds struct{}

func (alwaysEnds) EndOfTurn(transcript string, silenceMs int) bool { return true }

func newStreamingSession(llm interfaces.LLM, det interfaces.TurnDetector) *AgentSession {
	s := New(Options{LLM: llm, TurnDetector: det})
	rm := emptyRoom{}
	s.asst = assistant.New(llm, nil, rm, room.NewNotifier(rm))
	return s
}

func TestStreamTurns_FlushOnStreamEnd(t *testing.T) {
	llm := &recordingLLM{}
	s := newStreamingSession(llm, nil)

	results := make(chan interfaces.LiveTranscript, 4)
	results <- interfaces.LiveTranscript{Text: "add product", Final: true}
	results <- interfaces.LiveTranscript{Text: "please", Final: true}
	results <- interfaces.LiveTranscript{Text: "interim noise", Final: false}
	close(results)

	s.streamTurns(results, "seller-1")

	turns := llm.Turns()
	if len(turns) != 1 {
		t.Fatalf("turns = %q", turns)
	}
	if turns[0] != "add product please" {
		t.Fatalf("turn text = %q", turns[0])
	}
}

func TestStreamTurns_TurnDetectorFiresMidStream(t *testing.T) {
	llm := &recordingLLM{}
	s := newStreamingSession(llm, alwaysEnds{})
	defer s.Stop()

	results := make(chan interfaces.LiveTranscript, 1)
	results <- interfaces.LiveTranscript{Text: "add product.", Final: true}

	done := make(chan struct{})
	go func() {
		s.streamTurns(results, "seller-1")
		close(done)
	}()

	deadline := time.After(2 * time.Second)
	for len(llm.Turns()) == 0 {
		select {
		case <-deadline:
			t.Fatal("no turn fired from the live stream")
		case <-time.After(50 * time.Millisecond):
		}
	}

	s.Stop()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("stream loop did not stop")
	}

	if turns := llm.Turns(); turns[0] != "add product." {
		t.Fatalf("turn text = %q", turns[0])
	}
}
