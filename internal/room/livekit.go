package room

import (
	"context"
	"fmt"
	"log"
	"strings"
	"time"

	lksdk "github.com/livekit/server-sdk-go/v2"
	"github.com/pion/webrtc/v4"
	"github.com/pion/webrtc/v4/pkg/media"
)

// Handlers are callbacks the session layer hooks into room events.
type Handlers struct {
	// OnAudioTrack is invoked once per subscribed remote audio track.
	OnAudioTrack func(track *webrtc.TrackRemote, identity string)
	// OnParticipantJoined / OnParticipantLeft track room membership.
	OnParticipantJoined func(p Participant)
	OnParticipantLeft   func(p Participant)
	// OnDisconnected fires when the room connection drops.
	OnDisconnected func()
}

// ConnectOptions configure the room join.
type ConnectOptions struct {
	URL   string
	Token string
	// NoiseCancellation requests the denoised audio variant from the media
	// server pipeline; the filtering itself happens upstream.
	NoiseCancellation bool
	Handlers          Handlers
}

// LiveKit is the lksdk-backed Session implementation.
type LiveKit struct {
	room *lksdk.Room
}

// Connect joins the LiveKit room and wires the given handlers.
func Connect(opts ConnectOptions) (*LiveKit, error) {
	h := opts.Handlers
	cb := &lksdk.RoomCallback{
		OnParticipantConnected: func(rp *lksdk.RemoteParticipant) {
			if h.OnParticipantJoined != nil {
				h.OnParticipantJoined(toParticipant(rp))
			}
		},
		OnParticipantDisconnected: func(rp *lksdk.RemoteParticipant) {
			if h.OnParticipantLeft != nil {
				h.OnParticipantLeft(toParticipant(rp))
			}
		},
		OnDisconnected: func() {
			if h.OnDisconnected != nil {
				h.OnDisconnected()
			}
		},
		ParticipantCallback: lksdk.ParticipantCallback{
			OnTrackSubscribed: func(track *webrtc.TrackRemote, pub *lksdk.RemoteTrackPublication, rp *lksdk.RemoteParticipant) {
				if track.Kind() != webrtc.RTPCodecTypeAudio {
					return
				}
				if h.OnAudioTrack != nil {
					h.OnAudioTrack(track, rp.Identity())
				}
			},
		},
	}

	r, err := lksdk.ConnectToRoomWithToken(opts.URL, opts.Token, cb)
	if err != nil {
		return nil, fmt.Errorf("connect to livekit room: %w", err)
	}
	if opts.NoiseCancellation {
		// filtering runs in the media server pipeline, nothing to do locally
		log.Printf("room %s: noise cancellation requested", r.Name())
	}
	return &LiveKit{room: r}, nil
}

func toParticipant(rp *lksdk.RemoteParticipant) Participant {
	return Participant{
		Identity: rp.Identity(),
		IsAgent:  rp.Kind() == lksdk.ParticipantAgent,
	}
}

// RemoteParticipants implements Session.
func (l *LiveKit) RemoteParticipants() []Participant {
	remotes := l.room.GetRemoteParticipants()
	out := make([]Participant, 0, len(remotes))
	for _, rp := range remotes {
		out = append(out, toParticipant(rp))
	}
	return out
}

// PerformRPC implements Session. The call runs to completion or timeout;
// ctx cancellation surfaces as context.DeadlineExceeded so callers can
// classify timeouts.
func (l *LiveKit) PerformRPC(ctx context.Context, destIdentity, method, payload string, timeout time.Duration) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	type rpcResult struct {
		resp string
		err  error
	}
	done := make(chan rpcResult, 1)
	go func() {
		resp, err := l.room.LocalParticipant.PerformRpc(lksdk.PerformRpcParams{
			DestinationIdentity: destIdentity,
			Method:              method,
			Payload:             payload,
			ResponseTimeout:     &timeout,
		})
		var respStr string
		if resp != nil {
			respStr = *resp
		}
		done <- rpcResult{resp: respStr, err: err}
	}()

	select {
	case <-ctx.Done():
		return "", ctx.Err()
	case res := <-done:
		if res.err != nil && isRPCTimeout(res.err) {
			return "", fmt.Errorf("rpc %s: %w", method, context.DeadlineExceeded)
		}
		return res.resp, res.err
	}
}

// isRPCTimeout matches the SDK's own RPC timeout errors (connection and
// response timeout), which do not wrap context.DeadlineExceeded.
func isRPCTimeout(err error) bool {
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "timeout") || strings.Contains(msg, "timed out")
}

// PublishAudioTrack publishes an Opus sample track for the agent's voice and
// returns a writer the session feeds synthesized audio into.
func (l *LiveKit) PublishAudioTrack() (*AudioWriter, error) {
	track, err := lksdk.NewLocalSampleTrack(webrtc.RTPCodecCapability{
		MimeType:  webrtc.MimeTypeOpus,
		ClockRate: 48000,
		Channels:  1,
	})
	if err != nil {
		return nil, fmt.Errorf("create sample track: %w", err)
	}
	if _, err := l.room.LocalParticipant.PublishTrack(track, &lksdk.TrackPublicationOptions{
		Name: "agent-voice",
	}); err != nil {
		return nil, fmt.Errorf("publish track: %w", err)
	}
	return &AudioWriter{track: track}, nil
}

// LocalIdentity returns the agent's own identity in the room.
func (l *LiveKit) LocalIdentity() string {
	return l.room.LocalParticipant.Identity()
}

// Disconnect leaves the room.
func (l *LiveKit) Disconnect() {
	l.room.Disconnect()
}

// AudioWriter streams synthesized audio samples into the agent's published
// track in 100ms chunks.
type AudioWriter struct {
	track *lksdk.LocalSampleTrack
}

// WriteAudio chunks raw audio bytes into samples and writes them at a fixed
// 100ms cadence, mirroring real-time playback. The bytes are forwarded
// unencoded: PCM from the speech vendor still needs an Opus encode step
// before subscribers of this track can decode it.
func (w *AudioWriter) WriteAudio(data []byte) error {
	const chunkDuration = 100 * time.Millisecond
	sampleRate := 48000
	bytesPerChunk := sampleRate * 2 / 10 // 16-bit mono, 100ms

	for i := 0; i < len(data); i += bytesPerChunk {
		end := i + bytesPerChunk
		if end > len(data) {
			end = len(data)
		}
		sample := media.Sample{Data: data[i:end], Duration: chunkDuration}
		if err := w.track.WriteSample(sample, nil); err != nil {
			return fmt.Errorf("write sample: %w", err)
		}
		time.Sleep(chunkDuration)
	}
	return nil
}
