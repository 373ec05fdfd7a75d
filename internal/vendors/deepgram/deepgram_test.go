package deepgram

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"github.com/StevenAdams-JaTango/TestAppJATANGO/internal/interfaces"
)

func TestRecognize(t *testing.T) {
	var gotAuth string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		io.WriteString(w, `{"results":{"channels":[{"alternatives":[{"transcript":"add product","confidence":0.97}]}]}}`)
	}))
	defer srv.Close()

	c := NewWithBaseURL("dg-key", srv.URL)
	text, conf, err := c.Recognize(context.Background(), []byte("wav-bytes"))
	if err != nil {
		t.Fatalf("Recognize failed: %v", err)
	}
	if text != "add product" {
		t.Fatalf("text = %q", text)
	}
	if conf < 0.96 || conf > 0.98 {
		t.Fatalf("confidence = %v", conf)
	}
	if gotAuth != "Token dg-key" {
		t.Fatalf("authorization = %q", gotAuth)
	}
}

func TestLiveStream(t *testing.T) {
	upgrader := websocket.Upgrader{}
	gotAudio := make(chan []byte, 1)
	gotClose := make(chan string, 1)

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.Header.Get("Authorization"); got != "Token dg-key" {
			t.Errorf("authorization = %q", got)
		}
		q := r.URL.Query()
		if q.Get("encoding") != "linear16" || q.Get("sample_rate") != "48000" {
			t.Errorf("query = %s", r.URL.RawQuery)
		}

		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			t.Errorf("upgrade: %v", err)
			return
		}
		defer conn.Close()

		for {
			mt, msg, err := conn.ReadMessage()
			if err != nil {
				return
			}
			switch mt {
			case websocket.BinaryMessage:
				gotAudio <- msg
				conn.WriteMessage(websocket.TextMessage,
					[]byte(`{"type":"Results","is_final":true,"channel":{"alternatives":[{"transcript":"add product"}]}}`))
			case websocket.TextMessage:
				gotClose <- string(msg)
				return
			}
		}
	}))
	defer srv.Close()

	c := NewWithBaseURL("dg-key", srv.URL)
	stream, err := c.StartStream(context.Background(), 48000)
	if err != nil {
		t.Fatalf("StartStream failed: %v", err)
	}

	if err := stream.Send([]byte("pcm-frame")); err != nil {
		t.Fatalf("Send failed: %v", err)
	}
	select {
	case got := <-gotAudio:
		if string(got) != "pcm-frame" {
			t.Fatalf("server received %q", got)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("server never received the audio frame")
	}

	var res interfaces.LiveTranscript
	select {
	case res = <-stream.Results():
	case <-time.After(2 * time.Second):
		t.Fatal("no transcript delivered")
	}
	if res.Text != "add product" || !res.Final {
		t.Fatalf("transcript = %+v", res)
	}

	if err := stream.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}
	select {
	case msg := <-gotClose:
		if !strings.Contains(msg, "CloseStream") {
			t.Fatalf("close frame = %q", msg)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("server never saw the CloseStream frame")
	}
}

func TestLiveStream_SkipsInterimAndEmpty(t *testing.T) {
	upgrader := websocket.Upgrader{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		defer conn.Close()
		conn.WriteMessage(websocket.TextMessage, []byte(`{"type":"Metadata"}`))
		conn.WriteMessage(websocket.TextMessage,
			[]byte(`{"type":"Results","is_final":false,"channel":{"alternatives":[{"transcript":""}]}}`))
		conn.WriteMessage(websocket.TextMessage,
			[]byte(`{"type":"Results","is_final":false,"channel":{"alternatives":[{"transcript":"add pro"}]}}`))
		conn.WriteMessage(websocket.TextMessage,
			[]byte(`{"type":"Results","is_final":true,"channel":{"alternatives":[{"transcript":"add product"}]}}`))
		// hold the socket open until the client closes
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}))
	defer srv.Close()

	c := NewWithBaseURL("dg-key", srv.URL)
	stream, err := c.StartStream(context.Background(), 48000)
	if err != nil {
		t.Fatalf("StartStream failed: %v", err)
	}
	defer stream.Close()

	var got []interfaces.LiveTranscript
	timeout := time.After(2 * time.Second)
	for len(got) < 2 {
		select {
		case res := <-stream.Results():
			got = append(got, res)
		case <-timeout:
			t.Fatalf("only received %d transcripts: %+v", len(got), got)
		}
	}
	if got[0].Text != "add pro" || got[0].Final {
		t.Fatalf("interim = %+v", got[0])
	}
	if got[1].Text != "add product" || !got[1].Final {
		t.Fatalf("final = %+v", got[1])
	}
}
