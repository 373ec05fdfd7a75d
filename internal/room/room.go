package room

import (
	"context"
	"time"
)

// Participant is a read-only snapshot of a remote participant, as pushed by
// the realtime transport.
type Participant struct {
	Identity string
	IsAgent  bool
}

// Session is the subset of a realtime room the agent needs: the current
// remote participant set plus targeted RPC delivery. The concrete
// implementation lives in livekit.go; tests inject fakes.
type Session interface {
	// RemoteParticipants returns the current remote participant snapshot
	// in the transport's iteration order.
	RemoteParticipants() []Participant
	// PerformRPC invokes a named method on the destination participant's
	// client and waits up to timeout for its response payload.
	PerformRPC(ctx context.Context, destIdentity, method, payload string, timeout time.Duration) (string, error)
}

// ResolveSeller returns the identity of the first non-agent participant.
// An empty room or agent-only room yields ok=false; that is a normal
// outcome, not an error.
func ResolveSeller(s Session) (string, bool) {
	return firstHuman(s)
}

// ResolveBroadcaster returns the identity of the participant assumed to run
// the live show UI. The filtering rule is the same as ResolveSeller; the two
// lookups are kept separate for clarity at their call sites. With more than
// one human participant the results may disagree depending on iteration
// order.
func ResolveBroadcaster(s Session) (string, bool) {
	return firstHuman(s)
}

func firstHuman(s Session) (string, bool) {
	for _, p := range s.RemoteParticipants() {
		if p.IsAgent {
			continue
		}
		return p.Identity, true
	}
	return "", false
}
