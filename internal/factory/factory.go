package factory

import (
	"errors"

	"github.com/StevenAdams-JaTango/TestAppJATANGO/internal/config"
	"github.com/StevenAdams-JaTango/TestAppJATANGO/internal/interfaces"
	"github.com/StevenAdams-JaTango/TestAppJATANGO/internal/turndetect"
	"github.com/StevenAdams-JaTango/TestAppJATANGO/internal/vad"
	"github.com/StevenAdams-JaTango/TestAppJATANGO/internal/vendors/deepgram"
	"github.com/StevenAdams-JaTango/TestAppJATANGO/internal/vendors/ollama"
	"github.com/StevenAdams-JaTango/TestAppJATANGO/internal/vendors/openai"
	"github.com/StevenAdams-JaTango/TestAppJATANGO/internal/vendors/piper"
	"github.com/StevenAdams-JaTango/TestAppJATANGO/internal/vendors/whisper"
)

func NewTTS(cfg *config.Config) (interfaces.TTS, error) {
	switch cfg.TTSVendor {
	case "piper":
		if ep := cfg.Vendor("piper", "endpoint"); ep != "" {
			return piper.NewWithEndpoint(ep), nil
		}
		return piper.New(), nil
	default:
		return nil, errors.New("unknown tts vendor: " + cfg.TTSVendor)
	}
}

func NewSTT(cfg *config.Config) (interfaces.STT, error) {
	switch cfg.STTVendor {
	case "whisper":
		if ep := cfg.Vendor("whisper", "endpoint"); ep != "" {
			return whisper.NewWithEndpoint(ep), nil
		}
		return whisper.New(), nil
	case "deepgram":
		return deepgram.New(cfg.Vendor("deepgram", "api_key")), nil
	default:
		return nil, errors.New("unknown stt vendor: " + cfg.STTVendor)
	}
}

func NewLLM(cfg *config.Config) (interfaces.LLM, error) {
	switch cfg.LLMVendor {
	case "openai":
		return openai.NewWithEndpointModel(
			cfg.Vendor("openai", "endpoint"),
			cfg.Vendor("openai", "api_key"),
			cfg.Vendor("openai", "model"),
		), nil
	case "ollama":
		return ollama.NewWithEndpointModel(
			cfg.Vendor("ollama", "endpoint"),
			cfg.Vendor("ollama", "model"),
		), nil
	default:
		return nil, errors.New("unknown llm vendor: " + cfg.LLMVendor)
	}
}

// NewVAD loads the voice activity detector once at startup.
func NewVAD(cfg *config.Config) (interfaces.VAD, error) {
	return vad.Load(cfg.ModelCacheDir, vad.DefaultOptions())
}

// NewTurnDetector returns the end-of-turn model wrapper.
func NewTurnDetector(cfg *config.Config) (interfaces.TurnDetector, error) {
	return turndetect.NewMultilingual(), nil
}
