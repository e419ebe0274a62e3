package speech

// Timing estimation constants, calibrated against typical synthesized speech.
const (
	// estimatedCharsPerSecond approximates natural speaking rate when no
	// audio is available to measure.
	estimatedCharsPerSecond = 12.0

	// mp3BytesPerSecond approximates the byte rate of the synthesized MP3
	// stream, used to derive a duration from audio size.
	mp3BytesPerSecond = 24000.0
)

// EstimateTiming distributes each character's start time evenly across the
// utterance duration: start[i] = i * duration / charCount. When duration is
// not positive it is derived from text length at an assumed speaking rate.
// Returns a zero-value Estimated for empty text.
func EstimateTiming(text string, duration float64) Estimated {
	runes := []rune(text)
	if len(runes) == 0 {
		return Estimated{}
	}

	if duration <= 0 {
		duration = float64(len(runes)) / estimatedCharsPerSecond
	}

	perChar := duration / float64(len(runes))
	est := Estimated{
		Characters: make([]string, len(runes)),
		StartTimes: make([]float64, len(runes)),
	}
	for i, r := range runes {
		est.Characters[i] = string(r)
		est.StartTimes[i] = float64(i) * perChar
	}
	return est
}

// EstimateDurationFromAudio derives an approximate utterance duration in
// seconds from the size of the synthesized MP3 payload.
func EstimateDurationFromAudio(audio []byte) float64 {
	if len(audio) == 0 {
		return 0
	}
	return float64(len(audio)) / mp3BytesPerSecond
}
