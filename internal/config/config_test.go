package config

import "testing"

func TestLoadFromEnv_Defaults(t *testing.T) {
	for _, k := range []string{
		"TTS_VENDOR", "STT_VENDOR", "LLM_VENDOR",
		"SUPABASE_URL", "ROOM_NAME", "AGENT_IDENTITY", "DATABASE_PATH",
	} {
		t.Setenv(k, "")
	}

	cfg := LoadFromEnv()
	if cfg.TTSVendor != "piper" || cfg.STTVendor != "whisper" || cfg.LLMVendor != "openai" {
		t.Fatalf("vendor defaults: %s/%s/%s", cfg.TTSVendor, cfg.STTVendor, cfg.LLMVendor)
	}
	if cfg.RoomName != "default" || cfg.AgentIdentity != "product-agent" {
		t.Fatalf("room defaults: %s/%s", cfg.RoomName, cfg.AgentIdentity)
	}
	if cfg.DatabasePath != "data/jatango.agent.db" {
		t.Fatalf("database path = %s", cfg.DatabasePath)
	}
}

func TestLoadFromEnv_Overrides(t *testing.T) {
	t.Setenv("STT_VENDOR", "deepgram")
	t.Setenv("SUPABASE_URL", "https://example.supabase.co")
	t.Setenv("SUPABASE_SERVICE_ROLE_KEY", "svc-key")
	t.Setenv("DEEPGRAM_API_KEY", "dg-key")
	t.Setenv("OPENAI_MODEL", "gpt-4o")
	t.Setenv("OLLAMA_ENDPOINT", "http://ollama:11434")
	t.Setenv("OLLAMA_MODEL", "llama3.2")

	cfg := LoadFromEnv()
	if cfg.STTVendor != "deepgram" {
		t.Fatalf("stt vendor = %s", cfg.STTVendor)
	}
	if cfg.SupabaseURL != "https://example.supabase.co" || cfg.SupabaseServiceRoleKey != "svc-key" {
		t.Fatalf("supabase config: %s / %s", cfg.SupabaseURL, cfg.SupabaseServiceRoleKey)
	}
	if got := cfg.Vendor("deepgram", "api_key"); got != "dg-key" {
		t.Fatalf("deepgram api_key = %q", got)
	}
	if got := cfg.Vendor("openai", "model"); got != "gpt-4o" {
		t.Fatalf("openai model = %q", got)
	}
	if got := cfg.Vendor("ollama", "endpoint"); got != "http://ollama:11434" {
		t.Fatalf("ollama endpoint = %q", got)
	}
	if got := cfg.Vendor("ollama", "model"); got != "llama3.2" {
		t.Fatalf("ollama model = %q", got)
	}
	if got := cfg.Vendor("openai", "missing"); got != "" {
		t.Fatalf("unset vendor key = %q", got)
	}
}
