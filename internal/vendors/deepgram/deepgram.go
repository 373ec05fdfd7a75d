package deepgram

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/gorilla/websocket"

	"github.com/StevenAdams-JaTango/TestAppJATANGO/internal/interfaces"
)

const (
	defaultBaseURL = "https://api.deepgram.com"
	defaultModel   = "nova-2"
)

// Client is a Deepgram STT adapter supporting both batch transcription and
// live websocket streaming.
type Client struct {
	apiKey  string
	baseURL string
	model   string
	client  *http.Client
}

// New constructs a Deepgram client.
func New(apiKey string) *Client {
	return NewWithBaseURL(apiKey, defaultBaseURL)
}

// NewWithBaseURL allows overriding the API base URL (tests).
func NewWithBaseURL(apiKey, baseURL string) *Client {
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	return &Client{
		apiKey:  apiKey,
		baseURL: strings.TrimSuffix(baseURL, "/"),
		model:   defaultModel,
		client:  &http.Client{Timeout: 30 * time.Second},
	}
}

type listenResponse struct {
	Results struct {
		Channels []struct {
			Alternatives []struct {
				Transcript string  `json:"transcript"`
				Confidence float64 `json:"confidence"`
			} `json:"alternatives"`
		} `json:"channels"`
	} `json:"results"`
}

// Recognize implements interfaces.STT via the batch /v1/listen endpoint.
func (c *Client) Recognize(ctx context.Context, audio []byte, opts ...interfaces.STTOption) (string, float32, error) {
	reqURL := fmt.Sprintf("%s/v1/listen?model=%s&smart_format=true", c.baseURL, url.QueryEscape(c.model))

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, reqURL, bytes.NewReader(audio))
	if err != nil {
		return "", 0, fmt.Errorf("new request: %w", err)
	}
	req.Header.Set("Authorization", "Token "+c.apiKey)
	req.Header.Set("Content-Type", "audio/wav")

	resp, err := c.client.Do(req)
	if err != nil {
		return "", 0, fmt.Errorf("post to deepgram: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", 0, fmt.Errorf("read response body: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return "", 0, fmt.Errorf("deepgram returned status %d: %s", resp.StatusCode, string(body))
	}

	var out listenResponse
	if err := json.Unmarshal(body, &out); err != nil {
		return "", 0, fmt.Errorf("unmarshal response: %w", err)
	}
	if len(out.Results.Channels) == 0 || len(out.Results.Channels[0].Alternatives) == 0 {
		return "", 0, nil
	}
	alt := out.Results.Channels[0].Alternatives[0]
	return alt.Transcript, float32(alt.Confidence), nil
}

// StartStream implements interfaces.StreamingSTT; the session layer upgrades
// to live transcription whenever the configured STT vendor supports it.
func (c *Client) StartStream(ctx context.Context, sampleRate int) (interfaces.STTStream, error) {
	return c.OpenLiveStream(ctx, sampleRate)
}

// LiveStream is a websocket connection to Deepgram's live transcription API.
type LiveStream struct {
	conn    *websocket.Conn
	results chan interfaces.LiveTranscript
}

// OpenLiveStream dials the live transcription websocket for raw 16-bit PCM
// at the given sample rate and starts reading results.
func (c *Client) OpenLiveStream(ctx context.Context, sampleRate int) (*LiveStream, error) {
	wsURL := strings.Replace(c.baseURL, "http", "ws", 1)
	wsURL = fmt.Sprintf("%s/v1/listen?model=%s&encoding=linear16&sample_rate=%d&interim_results=true",
		wsURL, url.QueryEscape(c.model), sampleRate)

	header := http.Header{}
	header.Set("Authorization", "Token "+c.apiKey)

	conn, resp, err := websocket.DefaultDialer.DialContext(ctx, wsURL, header)
	if err != nil {
		if resp != nil {
			b, _ := io.ReadAll(resp.Body)
			return nil, fmt.Errorf("dial deepgram live: %w (status %d: %s)", err, resp.StatusCode, string(b))
		}
		return nil, fmt.Errorf("dial deepgram live: %w", err)
	}

	ls := &LiveStream{conn: conn, results: make(chan interfaces.LiveTranscript, 16)}
	go ls.readLoop()
	return ls, nil
}

type liveMessage struct {
	Type    string `json:"type"`
	IsFinal bool   `json:"is_final"`
	Channel struct {
		Alternatives []struct {
			Transcript string `json:"transcript"`
		} `json:"alternatives"`
	} `json:"channel"`
}

func (ls *LiveStream) readLoop() {
	defer close(ls.results)
	for {
		_, msg, err := ls.conn.ReadMessage()
		if err != nil {
			return
		}
		var lm liveMessage
		if err := json.Unmarshal(msg, &lm); err != nil {
			continue
		}
		if lm.Type != "Results" || len(lm.Channel.Alternatives) == 0 {
			continue
		}
		text := lm.Channel.Alternatives[0].Transcript
		if text == "" {
			continue
		}
		ls.results <- interfaces.LiveTranscript{Text: text, Final: lm.IsFinal}
	}
}

// Send writes a raw audio chunk to the stream.
func (ls *LiveStream) Send(audio []byte) error {
	if err := ls.conn.WriteMessage(websocket.BinaryMessage, audio); err != nil {
		return fmt.Errorf("write audio frame: %w", err)
	}
	return nil
}

// Results delivers transcripts until the stream closes.
func (ls *LiveStream) Results() <-chan interfaces.LiveTranscript { return ls.results }

// Close tells the server the stream is done and closes the connection.
func (ls *LiveStream) Close() error {
	// Deepgram expects a CloseStream text frame before the ws close.
	_ = ls.conn.WriteMessage(websocket.TextMessage, []byte(`{"type":"CloseStream"}`))
	return ls.conn.Close()
}
