package vad

import (
	"context"
	"encoding/binary"
	"io"
	"math"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
)

func pcmSine(samples int, amplitude float64) []byte {
	out := make([]byte, samples*2)
	for i := 0; i < samples; i++ {
		v := amplitude * math.Sin(2*math.Pi*float64(i)/80)
		s := int16(v * 32767)
		binary.LittleEndian.PutUint16(out[i*2:], uint16(s))
	}
	return out
}

func TestIsSpeech(t *testing.T) {
	v := NewEnergy(DefaultOptions())

	if !v.IsSpeech(pcmSine(1600, 0.2)) {
		t.Fatal("loud tone not detected as speech")
	}
	if v.IsSpeech(pcmSine(1600, 0.001)) {
		t.Fatal("near-silence detected as speech")
	}
	if v.IsSpeech(make([]byte, 1600*2)) {
		t.Fatal("digital silence detected as speech")
	}
	if v.IsSpeech(nil) {
		t.Fatal("empty chunk detected as speech")
	}
	if v.IsSpeech([]byte{0x01}) {
		t.Fatal("sub-sample chunk detected as speech")
	}
}

func TestIsSpeech_ThresholdOverride(t *testing.T) {
	strict := NewEnergy(Options{Threshold: 0.5})
	if strict.IsSpeech(pcmSine(1600, 0.2)) {
		t.Fatal("strict threshold passed a moderate tone")
	}
}

func TestLoad_RequiresCachedModel(t *testing.T) {
	dir := t.TempDir()
	if _, err := Load(dir, DefaultOptions()); err == nil {
		t.Fatal("expected error without a cached model")
	}

	if err := os.WriteFile(filepath.Join(dir, sileroModelFile), []byte("model-bytes"), 0644); err != nil {
		t.Fatal(err)
	}
	if _, err := Load(dir, DefaultOptions()); err != nil {
		t.Fatalf("load with cached model: %v", err)
	}
}

func TestDownloadAssets_SkipsCached(t *testing.T) {
	dir := t.TempDir()
	dest := filepath.Join(dir, sileroModelFile)
	if err := os.WriteFile(dest, []byte("cached"), 0644); err != nil {
		t.Fatal(err)
	}

	// the URL is a constant, so a network hit here would fail the test only
	// by mutating the cached file; assert the bytes stay untouched instead
	if err := DownloadAssets(context.Background(), dir); err != nil {
		t.Fatalf("download assets: %v", err)
	}
	got, err := os.ReadFile(dest)
	if err != nil {
		t.Fatal(err)
	}
	if string(got) != "cached" {
		t.Fatalf("cached model was replaced: %q", got)
	}
}

func TestDownloadAssets_WritesFile(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		io.WriteString(w, "onnx-bytes")
	}))
	defer srv.Close()

	dir := t.TempDir()
	if err := downloadTo(context.Background(), srv.URL, filepath.Join(dir, sileroModelFile)); err != nil {
		t.Fatalf("download: %v", err)
	}
	got, err := os.ReadFile(filepath.Join(dir, sileroModelFile))
	if err != nil {
		t.Fatal(err)
	}
	if string(got) != "onnx-bytes" {
		t.Fatalf("model bytes = %q", got)
	}
	if _, err := os.Stat(filepath.Join(dir, sileroModelFile+".tmp")); !os.IsNotExist(err) {
		t.Fatal("temp file left behind")
	}
}
