package session

import (
	"context"
	"fmt"
	"io"
	"log"
	"sync"
	"time"

	"github.com/pion/webrtc/v4"

	"github.com/StevenAdams-JaTango/TestAppJATANGO/internal/assistant"
	"github.com/StevenAdams-JaTango/TestAppJATANGO/internal/interfaces"
	"github.com/StevenAdams-JaTango/TestAppJATANGO/internal/room"
)

// Options bind the named external providers for one agent session.
type Options struct {
	STT          interfaces.STT
	LLM          interfaces.LLM
	TTS          interfaces.TTS
	VAD          interfaces.VAD
	TurnDetector interfaces.TurnDetector

	// NoiseCancellation is forwarded to the room audio input options.
	NoiseCancellation bool
}

// AgentSession wires speech-to-text, the language model, text-to-speech,
// voice activity detection and turn detection around one room connection.
// It performs no business logic of its own; the assistant does.
type AgentSession struct {
	opts Options

	mu    sync.Mutex
	asst  *assistant.Assistant
	rm    *room.LiveKit
	audio *room.AudioWriter

	// one conversation at a time: a turn runs to completion before the next
	turnMu sync.Mutex

	ctx    context.Context
	cancel context.CancelFunc
}

// New creates a session from provider options.
func New(opts Options) *AgentSession {
	ctx, cancel := context.WithCancel(context.Background())
	return &AgentSession{opts: opts, ctx: ctx, cancel: cancel}
}

// Handlers returns the room callbacks to pass into room.Connect.
func (s *AgentSession) Handlers() room.Handlers {
	return room.Handlers{
		OnAudioTrack: func(track *webrtc.TrackRemote, identity string) {
			log.Printf("session: subscribed to audio from %s", identity)
			go s.consumeTrack(track, identity)
		},
		OnParticipantJoined: func(p room.Participant) {
			log.Printf("session: participant joined identity=%s agent=%v", p.Identity, p.IsAgent)
		},
		OnParticipantLeft: func(p room.Participant) {
			log.Printf("session: participant left identity=%s", p.Identity)
		},
		OnDisconnected: func() {
			log.Printf("session: room disconnected")
			s.cancel()
		},
	}
}

// Start binds the connected room and the agent, publishes the agent's voice
// track and speaks the greeting.
func (s *AgentSession) Start(ctx context.Context, rm *room.LiveKit, asst *assistant.Assistant) error {
	audio, err := rm.PublishAudioTrack()
	if err != nil {
		return fmt.Errorf("publish agent audio: %w", err)
	}

	s.mu.Lock()
	s.rm = rm
	s.asst = asst
	s.audio = audio
	s.mu.Unlock()

	greeting, err := asst.Greeting(ctx)
	if err != nil {
		// a failed greeting should not kill the session
		log.Printf("session: greeting failed: %v", err)
		return nil
	}
	s.speak(ctx, greeting)
	return nil
}

// Stop cancels the session loops and leaves the room.
func (s *AgentSession) Stop() {
	s.cancel()
	s.mu.Lock()
	rm := s.rm
	s.mu.Unlock()
	if rm != nil {
		rm.Disconnect()
	}
}

// Done reports session termination.
func (s *AgentSession) Done() <-chan struct{} { return s.ctx.Done() }

const (
	// pollInterval batches RTP payloads before VAD/turn checks
	pollInterval = 250 * time.Millisecond
	// minSilence before a buffered utterance is sent to STT
	minSilence = 600 * time.Millisecond
	// streamSampleRate is advertised to live recognizers for the room audio
	streamSampleRate = 48000
)

// consumeTrack runs the STT -> assistant -> TTS turn cycle for one remote
// audio track. Vendors that support live streaming get the continuous path;
// everything else falls back to buffered batch recognition.
func (s *AgentSession) consumeTrack(track *webrtc.TrackRemote, identity string) {
	if live, ok := s.opts.STT.(interfaces.StreamingSTT); ok {
		stream, err := live.StartStream(s.ctx, streamSampleRate)
		if err != nil {
			log.Printf("session: open live stt: %v (falling back to batch)", err)
		} else {
			defer stream.Close()
			go s.feedStream(stream, track, identity)
			s.streamTurns(stream.Results(), identity)
			return
		}
	}
	s.consumeTrackBatch(track, identity)
}

// feedStream forwards remote RTP payloads into the live recognition stream.
func (s *AgentSession) feedStream(stream interfaces.STTStream, track *webrtc.TrackRemote, identity string) {
	for {
		pkt, _, err := track.ReadRTP()
		if err != nil {
			if err != io.EOF {
				log.Printf("session: read rtp from %s: %v", identity, err)
			}
			return
		}
		if s.ctx.Err() != nil {
			return
		}
		if err := stream.Send(pkt.Payload); err != nil {
			log.Printf("session: send audio to live stt: %v", err)
			return
		}
	}
}

// streamTurns accumulates final transcripts from the live recognition stream
// and hands completed turns to the assistant. When the stream ends, whatever
// is pending becomes the last turn.
func (s *AgentSession) streamTurns(results <-chan interfaces.LiveTranscript, identity string) {
	var (
		transcript string
		lastFinal  = time.Now()
	)

	ticker := time.NewTicker(pollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-s.ctx.Done():
			return

		case res, ok := <-results:
			if !ok {
				if transcript != "" {
					s.handleTurn(transcript, identity)
				}
				return
			}
			if !res.Final || res.Text == "" {
				continue
			}
			if transcript != "" {
				transcript += " "
			}
			transcript += res.Text
			lastFinal = time.Now()

		case <-ticker.C:
			if transcript == "" {
				continue
			}
			silence := time.Since(lastFinal)
			if s.opts.TurnDetector != nil {
				if !s.opts.TurnDetector.EndOfTurn(transcript, int(silence.Milliseconds())) {
					continue
				}
			} else if silence < minSilence {
				continue
			}
			turn := transcript
			transcript = ""
			s.handleTurn(turn, identity)
		}
	}
}

// consumeTrackBatch accumulates speech locally and recognizes it one
// utterance at a time. RTP payloads arrive codec-encoded; the energy gate and
// the batch recognizer read them as 16-bit PCM, so a decode step belongs in
// front of this path before transcription accuracy matters.
func (s *AgentSession) consumeTrackBatch(track *webrtc.TrackRemote, identity string) {
	var (
		buf        []byte
		transcript string
		lastVoice  = time.Now()
	)

	frames := make(chan []byte, 64)
	go func() {
		defer close(frames)
		for {
			pkt, _, err := track.ReadRTP()
			if err != nil {
				if err != io.EOF {
					log.Printf("session: read rtp from %s: %v", identity, err)
				}
				return
			}
			select {
			case frames <- pkt.Payload:
			case <-s.ctx.Done():
				return
			}
		}
	}()

	ticker := time.NewTicker(pollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-s.ctx.Done():
			return

		case frame, ok := <-frames:
			if !ok {
				return
			}
			if s.opts.VAD == nil || s.opts.VAD.IsSpeech(frame) {
				buf = append(buf, frame...)
				lastVoice = time.Now()
			}

		case <-ticker.C:
			if len(buf) == 0 {
				continue
			}
			silence := time.Since(lastVoice)
			if silence < minSilence {
				continue
			}

			text, conf, err := s.opts.STT.Recognize(s.ctx, buf)
			if err != nil {
				log.Printf("session: stt error: %v", err)
				buf = buf[:0]
				continue
			}
			buf = buf[:0]
			if text == "" || conf < 0.5 {
				continue
			}
			if transcript != "" {
				transcript += " "
			}
			transcript += text

			if s.opts.TurnDetector != nil && !s.opts.TurnDetector.EndOfTurn(transcript, int(silence.Milliseconds())) {
				continue
			}

			turn := transcript
			transcript = ""
			s.handleTurn(turn, identity)
		}
	}
}

// handleTurn runs one conversation turn to completion. The enclosing turn
// waits for persistence and RPC responses before the reply is spoken, so
// turns never interleave.
func (s *AgentSession) handleTurn(userText, identity string) {
	s.turnMu.Lock()
	defer s.turnMu.Unlock()

	s.mu.Lock()
	asst := s.asst
	s.mu.Unlock()
	if asst == nil {
		return
	}

	log.Printf("session: user %s said: %s", identity, userText)
	reply, err := asst.Respond(s.ctx, userText)
	if err != nil {
		log.Printf("session: respond error: %v", err)
		reply = "Sorry, I ran into a problem. Please try again."
	}
	if reply == "" {
		return
	}
	log.Printf("session: agent reply: %s", reply)
	s.speak(s.ctx, reply)
}

func (s *AgentSession) speak(ctx context.Context, text string) {
	s.mu.Lock()
	audio := s.audio
	s.mu.Unlock()
	if audio == nil || s.opts.TTS == nil {
		return
	}

	data, err := s.opts.TTS.Speak(ctx, text)
	if err != nil {
		log.Printf("session: tts error: %v", err)
		return
	}
	if err := audio.WriteAudio(data); err != nil {
		log.Printf("session: publish audio: %v", err)
	}
}
