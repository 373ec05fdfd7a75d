package config

import (
	"bufio"
	"os"
	"path/filepath"
	"strings"
	"sync"
)

// Config contains runtime configuration and vendor selection for the voice
// product agent.
type Config struct {
	// Vendor keys: e.g., "whisper", "deepgram", "piper", "openai"
	TTSVendor string `json:"tts_vendor"`
	STTVendor string `json:"stt_vendor"`
	LLMVendor string `json:"llm_vendor"`

	// Supabase persistence endpoint. Missing values are sent as empty
	// credentials and fail at request time, not at startup.
	SupabaseURL            string `json:"supabase_url"`
	SupabaseServiceRoleKey string `json:"supabase_service_role_key"`

	// LiveKit room access
	LiveKitURL       string `json:"livekit_url"`
	LiveKitAPIKey    string `json:"livekit_api_key"`
	LiveKitAPISecret string `json:"livekit_api_secret"`

	// Room the agent should join (dev/start commands)
	RoomName      string `json:"room_name"`
	AgentIdentity string `json:"agent_identity"`

	// Local bookkeeping database
	DatabasePath string `json:"database_path"`

	// Cache directory for downloaded VAD model assets
	ModelCacheDir string `json:"model_cache_dir"`

	// Generic map for vendor-specific settings
	VendorSettings map[string]map[string]string `json:"vendor_settings"`
}

// LoadFromEnv constructs a Config reading from environment variables, with a
// .env file in the working directory as fallback. Supported env vars:
//
//	TTS_VENDOR, STT_VENDOR, LLM_VENDOR
//	SUPABASE_URL, SUPABASE_SERVICE_ROLE_KEY
//	LIVEKIT_URL, LIVEKIT_API_KEY, LIVEKIT_API_SECRET
//	ROOM_NAME, AGENT_IDENTITY, DATABASE_PATH, MODEL_CACHE_DIR
//	WHISPER_ENDPOINT, PIPER_ENDPOINT, DEEPGRAM_API_KEY,
//	OPENAI_API_KEY, OPENAI_ENDPOINT, OPENAI_MODEL,
//	OLLAMA_ENDPOINT, OLLAMA_MODEL
func LoadFromEnv() *Config {
	cfg := &Config{
		TTSVendor:              getEnv("TTS_VENDOR", "piper"),
		STTVendor:              getEnv("STT_VENDOR", "whisper"),
		LLMVendor:              getEnv("LLM_VENDOR", "openai"),
		SupabaseURL:            getEnv("SUPABASE_URL", ""),
		SupabaseServiceRoleKey: getEnv("SUPABASE_SERVICE_ROLE_KEY", ""),
		LiveKitURL:             getEnv("LIVEKIT_URL", ""),
		LiveKitAPIKey:          getEnv("LIVEKIT_API_KEY", ""),
		LiveKitAPISecret:       getEnv("LIVEKIT_API_SECRET", ""),
		RoomName:               getEnv("ROOM_NAME", "default"),
		AgentIdentity:          getEnv("AGENT_IDENTITY", "product-agent"),
		DatabasePath:           getEnv("DATABASE_PATH", "data/jatango.agent.db"),
		ModelCacheDir:          getEnv("MODEL_CACHE_DIR", defaultCacheDir()),
		VendorSettings:         make(map[string]map[string]string),
	}

	if ep := getEnv("WHISPER_ENDPOINT", ""); ep != "" {
		cfg.setVendor("whisper", "endpoint", ep)
	}
	if ep := getEnv("PIPER_ENDPOINT", ""); ep != "" {
		cfg.setVendor("piper", "endpoint", ep)
	}
	if k := getEnv("DEEPGRAM_API_KEY", ""); k != "" {
		cfg.setVendor("deepgram", "api_key", k)
	}
	if k := getEnv("OPENAI_API_KEY", ""); k != "" {
		cfg.setVendor("openai", "api_key", k)
	}
	if ep := getEnv("OPENAI_ENDPOINT", ""); ep != "" {
		cfg.setVendor("openai", "endpoint", ep)
	}
	if m := getEnv("OPENAI_MODEL", ""); m != "" {
		cfg.setVendor("openai", "model", m)
	}
	if ep := getEnv("OLLAMA_ENDPOINT", ""); ep != "" {
		cfg.setVendor("ollama", "endpoint", ep)
	}
	if m := getEnv("OLLAMA_MODEL", ""); m != "" {
		cfg.setVendor("ollama", "model", m)
	}

	return cfg
}

func (c *Config) setVendor(vendor, key, value string) {
	if c.VendorSettings == nil {
		c.VendorSettings = make(map[string]map[string]string)
	}
	if _, ok := c.VendorSettings[vendor]; !ok {
		c.VendorSettings[vendor] = make(map[string]string)
	}
	c.VendorSettings[vendor][key] = value
}

// Vendor returns a vendor-specific setting or "" when unset.
func (c *Config) Vendor(vendor, key string) string {
	if c.VendorSettings == nil {
		return ""
	}
	vs, ok := c.VendorSettings[vendor]
	if !ok {
		return ""
	}
	return vs[key]
}

func defaultCacheDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".cache/jatango-agent"
	}
	return filepath.Join(home, ".cache", "jatango-agent")
}

func getEnv(key, def string) string {
	v := ""
	if val, ok := lookupEnv(key); ok {
		v = val
	} else {
		// fallback to .env file if present
		loadDotEnvOnce.Do(loadDotEnv)
		if dotEnv != nil {
			if val2, ok := dotEnv[key]; ok && val2 != "" {
				v = val2
			}
		}
	}
	if v == "" {
		return def
	}
	return v
}

// lookupEnv is a thin wrapper over os.LookupEnv so tests can replace it if needed.
var lookupEnv = func(key string) (string, bool) { return os.LookupEnv(key) }

var (
	dotEnv         map[string]string
	loadDotEnvOnce sync.Once
)

// loadDotEnv loads a .env file from the current working directory and
// populates the dotEnv map. It ignores lines starting with '#' and empty lines.
func loadDotEnv() {
	cwd, err := os.Getwd()
	if err != nil {
		return
	}
	path := filepath.Join(cwd, ".env")
	data, err := os.ReadFile(path)
	if err != nil {
		// no .env present - nothing to do
		return
	}

	m := make(map[string]string)
	scanner := bufio.NewScanner(strings.NewReader(string(data)))
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		// split at first '='
		idx := strings.Index(line, "=")
		if idx <= 0 {
			continue
		}
		k := strings.TrimSpace(line[:idx])
		v := strings.TrimSpace(line[idx+1:])
		// remove surrounding quotes if present
		if len(v) >= 2 {
			if (v[0] == '"' && v[len(v)-1] == '"') || (v[0] == '\'' && v[len(v)-1] == '\'') {
				v = v[1 : len(v)-1]
			}
		}
		m[k] = v
	}
	dotEnv = m
}
