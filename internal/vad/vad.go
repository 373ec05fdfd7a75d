package vad

import (
	"context"
	"encoding/binary"
	"fmt"
	"io"
	"log"
	"math"
	"net/http"
	"os"
	"path/filepath"
	"time"
)

// sileroModelURL is the published silero-vad ONNX model asset. It is fetched
// once by the download-files command and cached locally.
const sileroModelURL = "https://github.com/snakers4/silero-vad/raw/master/files/silero_vad.onnx"

const sileroModelFile = "silero_vad.onnx"

// DownloadAssets prefetches the VAD model assets into cacheDir. Already
// present files are kept.
func DownloadAssets(ctx context.Context, cacheDir string) error {
	if err := os.MkdirAll(cacheDir, 0755); err != nil {
		return fmt.Errorf("create cache dir: %w", err)
	}

	dest := filepath.Join(cacheDir, sileroModelFile)
	if fi, err := os.Stat(dest); err == nil && fi.Size() > 0 {
		log.Printf("vad: model already cached at %s", dest)
		return nil
	}

	if err := downloadTo(ctx, sileroModelURL, dest); err != nil {
		return err
	}
	log.Printf("vad: downloaded model to %s", dest)
	return nil
}

// downloadTo fetches url into dest through a temp file so a failed download
// never leaves a partial model behind.
func downloadTo(ctx context.Context, url, dest string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return fmt.Errorf("new request: %w", err)
	}
	client := &http.Client{Timeout: 5 * time.Minute}
	resp, err := client.Do(req)
	if err != nil {
		return fmt.Errorf("download vad model: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("download vad model: status %d", resp.StatusCode)
	}

	tmp := dest + ".tmp"
	f, err := os.Create(tmp)
	if err != nil {
		return fmt.Errorf("create model file: %w", err)
	}
	if _, err := io.Copy(f, resp.Body); err != nil {
		f.Close()
		os.Remove(tmp)
		return fmt.Errorf("write model file: %w", err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("close model file: %w", err)
	}
	if err := os.Rename(tmp, dest); err != nil {
		return fmt.Errorf("move model into place: %w", err)
	}
	return nil
}

// Options tune the energy detector.
type Options struct {
	// Threshold is the minimum RMS amplitude (0..1) treated as speech.
	Threshold float64
}

// DefaultOptions are tuned for 16-bit PCM voice audio.
func DefaultOptions() Options {
	return Options{Threshold: 0.015}
}

// EnergyVAD gates audio frames on RMS energy. It is loaded once at startup;
// the cached silero model asset is verified at load time so the richer ONNX
// path can attach without changing callers.
type EnergyVAD struct {
	opts Options
}

// Load verifies the model assets exist and returns the detector.
func Load(cacheDir string, opts Options) (*EnergyVAD, error) {
	dest := filepath.Join(cacheDir, sileroModelFile)
	if _, err := os.Stat(dest); err != nil {
		return nil, fmt.Errorf("vad model not found at %s, run the download-files command first: %w", dest, err)
	}
	return &EnergyVAD{opts: opts}, nil
}

// NewEnergy returns a detector without requiring model assets (tests, dev).
func NewEnergy(opts Options) *EnergyVAD {
	return &EnergyVAD{opts: opts}
}

// IsSpeech reports whether the 16-bit little-endian PCM chunk contains
// speech-level energy.
func (v *EnergyVAD) IsSpeech(audio []byte) bool {
	if len(audio) < 2 {
		return false
	}
	var sum float64
	n := len(audio) / 2
	for i := 0; i < n; i++ {
		s := int16(binary.LittleEndian.Uint16(audio[i*2:]))
		f := float64(s) / 32768.0
		sum += f * f
	}
	rms := math.Sqrt(sum / float64(n))
	return rms >= v.opts.Threshold
}
