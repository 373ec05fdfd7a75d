package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/StevenAdams-JaTango/TestAppJATANGO/internal/config"
	"github.com/StevenAdams-JaTango/TestAppJATANGO/internal/factory"
	"github.com/StevenAdams-JaTango/TestAppJATANGO/internal/store"
	"github.com/StevenAdams-JaTango/TestAppJATANGO/internal/vad"
	"github.com/StevenAdams-JaTango/TestAppJATANGO/internal/worker"
)

func usage() {
	fmt.Fprintln(os.Stderr, "usage: agent <command>")
	fmt.Fprintln(os.Stderr, "")
	fmt.Fprintln(os.Stderr, "commands:")
	fmt.Fprintln(os.Stderr, "  download-files   one-time: download VAD model assets")
	fmt.Fprintln(os.Stderr, "  dev              run in development mode")
	fmt.Fprintln(os.Stderr, "  start            run in production mode")
	os.Exit(2)
}

func main() {
	if len(os.Args) < 2 {
		usage()
	}

	cfg := config.LoadFromEnv()

	switch os.Args[1] {
	case "download-files":
		if err := vad.DownloadAssets(context.Background(), cfg.ModelCacheDir); err != nil {
			log.Fatalf("download files: %v", err)
		}
		fmt.Println("model assets ready")
	case "dev":
		run(cfg, true)
	case "start":
		run(cfg, false)
	default:
		usage()
	}
}

func run(cfg *config.Config, dev bool) {
	if dev {
		log.Printf("starting in development mode, room=%s", cfg.RoomName)
	} else {
		log.Printf("starting, room=%s", cfg.RoomName)
	}

	tts, err := factory.NewTTS(cfg)
	if err != nil {
		log.Fatalf("new tts: %v", err)
	}
	stt, err := factory.NewSTT(cfg)
	if err != nil {
		log.Fatalf("new stt: %v", err)
	}
	llm, err := factory.NewLLM(cfg)
	if err != nil {
		log.Fatalf("new llm: %v", err)
	}
	// VAD model is loaded once at startup
	detector, err := factory.NewVAD(cfg)
	if err != nil {
		log.Fatalf("new vad: %v", err)
	}
	turndet, err := factory.NewTurnDetector(cfg)
	if err != nil {
		log.Fatalf("new turn detector: %v", err)
	}

	if err := os.MkdirAll(filepath.Dir(cfg.DatabasePath), 0755); err != nil {
		log.Fatalf("create data dir: %v", err)
	}
	st, err := store.Open(cfg.DatabasePath)
	if err != nil {
		log.Fatalf("open db: %v", err)
	}
	defer st.Close()

	w := worker.New(cfg, st, stt, llm, tts, detector, turndet)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if err := w.SpawnAgent(ctx, cfg.RoomName); err != nil {
		log.Fatalf("spawn agent: %v", err)
	}

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, os.Interrupt, syscall.SIGTERM)
	<-sig

	log.Printf("shutting down")
	if err := w.StopAgent(cfg.RoomName); err != nil {
		log.Printf("stop agent: %v", err)
	}
}
