package piper

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/StevenAdams-JaTango/TestAppJATANGO/internal/interfaces"
)

// piperTTS posts text to a Piper HTTP server and reads back WAV audio.
type piperTTS struct {
	endpoint string
	client   *http.Client
}

// New returns a Piper TTS implementation with the default local endpoint.
func New() interfaces.TTS { return NewWithEndpoint("http://localhost:7071/tts") }

// NewWithEndpoint allows overriding the Piper TTS endpoint.
func NewWithEndpoint(endpoint string) interfaces.TTS {
	if endpoint == "" {
		endpoint = "http://localhost:7071/tts"
	}
	// Larger timeout: the Piper binary may take time to start and stream audio.
	return &piperTTS{endpoint: endpoint, client: &http.Client{Timeout: 120 * time.Second}}
}

func (p *piperTTS) post(ctx context.Context, text string) (*http.Response, error) {
	form := url.Values{}
	form.Set("text", text)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.endpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return nil, fmt.Errorf("new request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	resp, err := p.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("post form to piper tts: %w", err)
	}
	return resp, nil
}

func (p *piperTTS) Speak(ctx context.Context, text string, opts ...interfaces.TTSOption) ([]byte, error) {
	resp, err := p.post(ctx, text)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read tts response: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("piper tts bad status %d: %s", resp.StatusCode, string(body))
	}
	return body, nil
}

// SpeakStream streams audio produced by the Piper server directly to the
// provided writer, avoiding buffering large audio in memory.
func (p *piperTTS) SpeakStream(ctx context.Context, text string, w io.Writer, opts ...interfaces.TTSOption) error {
	resp, err := p.post(ctx, text)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		b, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("piper tts bad status %d: %s", resp.StatusCode, string(b))
	}

	if _, err := io.Copy(w, resp.Body); err != nil {
		return fmt.Errorf("stream tts response: %w", err)
	}
	return nil
}
