package turndetect

import "strings"

// SilenceDetector decides end of turn from trailing silence, with a shorter
// wait when the transcript already reads as a finished sentence. It stands in
// for a hosted multilingual turn-detection model behind the same interface.
type SilenceDetector struct {
	// SilenceMs is the trailing silence required for an unfinished phrase.
	SilenceMs int
	// TerminalSilenceMs applies when the phrase ends with terminal punctuation.
	TerminalSilenceMs int
}

// NewMultilingual returns the default detector used by the session bootstrap.
func NewMultilingual() *SilenceDetector {
	return &SilenceDetector{SilenceMs: 900, TerminalSilenceMs: 400}
}

// EndOfTurn implements interfaces.TurnDetector.
func (d *SilenceDetector) EndOfTurn(transcript string, silenceMs int) bool {
	t := strings.TrimSpace(transcript)
	if t == "" {
		return false
	}
	required := d.SilenceMs
	if strings.HasSuffix(t, ".") || strings.HasSuffix(t, "?") || strings.HasSuffix(t, "!") {
		required = d.TerminalSilenceMs
	}
	return silenceMs >= required
}
