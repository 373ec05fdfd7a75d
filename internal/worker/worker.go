package worker

import (
	"context"
	"fmt"
	"log"
	"sync"

	"github.com/StevenAdams-JaTango/TestAppJATANGO/internal/assistant"
	"github.com/StevenAdams-JaTango/TestAppJATANGO/internal/config"
	"github.com/StevenAdams-JaTango/TestAppJATANGO/internal/interfaces"
	"github.com/StevenAdams-JaTango/TestAppJATANGO/internal/room"
	"github.com/StevenAdams-JaTango/TestAppJATANGO/internal/session"
	"github.com/StevenAdams-JaTango/TestAppJATANGO/internal/store"
	"github.com/StevenAdams-JaTango/TestAppJATANGO/internal/supabase"
)

// Worker manages agent sessions keyed by room. It is a light-weight
// in-memory manager that records session lifecycle in the local store.
type Worker struct {
	mu       sync.Mutex
	sessions map[string]*session.AgentSession
	ids      map[string]string // room -> store session id

	cfg      *config.Config
	store    *store.Store
	stt      interfaces.STT
	llm      interfaces.LLM
	tts      interfaces.TTS
	vad      interfaces.VAD
	turndet  interfaces.TurnDetector
	products *supabase.Client
}

// New creates a Worker with concrete providers (injected via factory).
func New(cfg *config.Config, st *store.Store, stt interfaces.STT, llm interfaces.LLM, tts interfaces.TTS, vad interfaces.VAD, td interfaces.TurnDetector) *Worker {
	return &Worker{
		sessions: make(map[string]*session.AgentSession),
		ids:      make(map[string]string),
		cfg:      cfg,
		store:    st,
		stt:      stt,
		llm:      llm,
		tts:      tts,
		vad:      vad,
		turndet:  td,
		products: supabase.New(cfg.SupabaseURL, cfg.SupabaseServiceRoleKey),
	}
}

// SpawnAgent joins the room as the product assistant and starts the voice
// session. One agent per room.
func (w *Worker) SpawnAgent(ctx context.Context, roomName string) error {
	w.mu.Lock()
	if _, ok := w.sessions[roomName]; ok {
		w.mu.Unlock()
		return fmt.Errorf("agent already exists for room %s", roomName)
	}
	w.mu.Unlock()

	if w.cfg.LiveKitURL == "" {
		return fmt.Errorf("livekit url not configured")
	}

	token, err := room.GenerateAccessToken(w.cfg.LiveKitAPIKey, w.cfg.LiveKitAPISecret, roomName, w.cfg.AgentIdentity, 3600)
	if err != nil {
		return fmt.Errorf("generate access token: %w", err)
	}

	sess := session.New(session.Options{
		STT:               w.stt,
		LLM:               w.llm,
		TTS:               w.tts,
		VAD:               w.vad,
		TurnDetector:      w.turndet,
		NoiseCancellation: true,
	})

	rm, err := room.Connect(room.ConnectOptions{
		URL:               w.cfg.LiveKitURL,
		Token:             token,
		NoiseCancellation: true,
		Handlers:          sess.Handlers(),
	})
	if err != nil {
		return fmt.Errorf("connect to room %s: %w", roomName, err)
	}

	sessionID := ""
	if w.store != nil {
		sessionID, err = w.store.CreateSession(roomName, w.cfg.AgentIdentity)
		if err != nil {
			log.Printf("worker: record session: %v", err)
		}
	}

	asst := assistant.New(w.llm, w.products, rm, room.NewNotifier(rm))
	if w.store != nil && sessionID != "" {
		asst.WithRecorder(w.store, sessionID)
	}

	if err := sess.Start(ctx, rm, asst); err != nil {
		rm.Disconnect()
		return fmt.Errorf("start session in room %s: %w", roomName, err)
	}

	w.mu.Lock()
	w.sessions[roomName] = sess
	w.ids[roomName] = sessionID
	w.mu.Unlock()

	// reap the session when the room connection ends
	go func() {
		<-sess.Done()
		w.mu.Lock()
		delete(w.sessions, roomName)
		id := w.ids[roomName]
		delete(w.ids, roomName)
		w.mu.Unlock()
		if w.store != nil && id != "" {
			_ = w.store.UpdateSessionStatus(id, "ended")
		}
		log.Printf("worker: session for room %s ended", roomName)
	}()

	log.Printf("worker: agent joined room %s as %s", roomName, w.cfg.AgentIdentity)
	return nil
}

// StopAgent stops the agent for the given room.
func (w *Worker) StopAgent(roomName string) error {
	w.mu.Lock()
	sess, ok := w.sessions[roomName]
	id := w.ids[roomName]
	delete(w.sessions, roomName)
	delete(w.ids, roomName)
	w.mu.Unlock()
	if !ok {
		return fmt.Errorf("no agent for room %s", roomName)
	}

	sess.Stop()
	if w.store != nil && id != "" {
		_ = w.store.UpdateSessionStatus(id, "ended")
	}
	return nil
}
