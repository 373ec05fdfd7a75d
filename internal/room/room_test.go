package room

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"
)

// fakeSession is an in-memory Session for tests.
type fakeSession struct {
	participants []Participant

	rpcCalls    int
	lastDest    string
	lastMethod  string
	lastPayload string
	rpcResp     string
	rpcErr      error
}

func (f *fakeSession) RemoteParticipants() []Participant { return f.participants }

func (f *fakeSession) PerformRPC(ctx context.Context, dest, method, payload string, timeout time.Duration) (string, error) {
	f.rpcCalls++
	f.lastDest = dest
	f.lastMethod = method
	f.lastPayload = payload
	return f.rpcResp, f.rpcErr
}

func TestResolveSeller(t *testing.T) {
	cases := []struct {
		name         string
		participants []Participant
		want         string
		wantOK       bool
	}{
		{"empty room", nil, "", false},
		{"agent only", []Participant{{Identity: "bot", IsAgent: true}}, "", false},
		{"single human", []Participant{{Identity: "alice"}}, "alice", true},
		{"agent before human", []Participant{{Identity: "bot", IsAgent: true}, {Identity: "bob"}}, "bob", true},
		{"first human wins", []Participant{{Identity: "alice"}, {Identity: "bob"}}, "alice", true},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			s := &fakeSession{participants: tc.participants}
			got, ok := ResolveSeller(s)
			if got != tc.want || ok != tc.wantOK {
				t.Fatalf("ResolveSeller = (%q, %v), want (%q, %v)", got, ok, tc.want, tc.wantOK)
			}
			// broadcaster uses the same filtering rule
			got2, ok2 := ResolveBroadcaster(s)
			if got2 != got || ok2 != ok {
				t.Fatalf("ResolveBroadcaster = (%q, %v), differs from seller (%q, %v)", got2, ok2, got, ok)
			}
		})
	}
}

func TestNotifier_SendsPayload(t *testing.T) {
	s := &fakeSession{rpcResp: "ok"}
	n := NewNotifier(s)

	resp, err := n.NotifyProductAdded(context.Background(), "broadcaster-1", "prod-9", "Mug")
	if err != nil {
		t.Fatalf("NotifyProductAdded failed: %v", err)
	}
	if resp != "ok" {
		t.Fatalf("response = %q", resp)
	}
	if s.lastDest != "broadcaster-1" || s.lastMethod != "addProductToShow" {
		t.Fatalf("rpc dest/method = %q/%q", s.lastDest, s.lastMethod)
	}

	var payload map[string]string
	if err := json.Unmarshal([]byte(s.lastPayload), &payload); err != nil {
		t.Fatalf("payload is not valid JSON: %v", err)
	}
	if payload["productId"] != "prod-9" || payload["name"] != "Mug" {
		t.Fatalf("payload = %v", payload)
	}
}

func TestNotifier_Timeout(t *testing.T) {
	s := &fakeSession{rpcErr: context.DeadlineExceeded}
	n := NewNotifier(s)

	_, err := n.NotifyProductAdded(context.Background(), "b", "p", "n")
	var te *RPCTimeoutError
	if !errors.As(err, &te) {
		t.Fatalf("expected RPCTimeoutError, got %T: %v", err, err)
	}
	if s.rpcCalls != 1 {
		t.Fatalf("expected exactly one attempt, got %d", s.rpcCalls)
	}
}

func TestNotifier_DeliveryFailure(t *testing.T) {
	s := &fakeSession{rpcErr: errors.New("participant not found")}
	n := NewNotifier(s)

	_, err := n.NotifyProductAdded(context.Background(), "b", "p", "n")
	var de *RPCDeliveryError
	if !errors.As(err, &de) {
		t.Fatalf("expected RPCDeliveryError, got %T: %v", err, err)
	}
	if s.rpcCalls != 1 {
		t.Fatalf("expected exactly one attempt, got %d", s.rpcCalls)
	}
}

func TestIsRPCTimeout(t *testing.T) {
	cases := []struct {
		err  error
		want bool
	}{
		{errors.New("rpc response timeout"), true},
		{errors.New("Connection Timeout"), true},
		{errors.New("request timed out waiting for response"), true},
		{errors.New("recipient disconnected"), false},
		{errors.New("unsupported method"), false},
	}
	for _, tc := range cases {
		if got := isRPCTimeout(tc.err); got != tc.want {
			t.Fatalf("isRPCTimeout(%q) = %v, want %v", tc.err, got, tc.want)
		}
	}
}

func TestGenerateAccessToken(t *testing.T) {
	tok, err := GenerateAccessToken("key", "secret", "room-1", "agent-1", 60)
	if err != nil {
		t.Fatalf("GenerateAccessToken failed: %v", err)
	}
	if tok == "" {
		t.Fatal("empty token")
	}

	if _, err := GenerateAccessToken("", "", "room-1", "agent-1", 60); err == nil {
		t.Fatal("expected error without credentials")
	}
}
