package speech

import (
	"math"
	"testing"
)

func TestEstimateTiming_DistributesEvenly(t *testing.T) {
	est := EstimateTiming("abcd", 2.0)

	if len(est.Characters) != 4 || len(est.StartTimes) != 4 {
		t.Fatalf("lengths = %d/%d, want 4/4", len(est.Characters), len(est.StartTimes))
	}
	want := []float64{0, 0.5, 1.0, 1.5}
	for i, w := range want {
		if math.Abs(est.StartTimes[i]-w) > 1e-9 {
			t.Errorf("StartTimes[%d] = %v, want %v", i, est.StartTimes[i], w)
		}
	}
	if est.Characters[0] != "a" || est.Characters[3] != "d" {
		t.Errorf("Characters = %v", est.Characters)
	}
}

func TestEstimateTiming_DerivesDurationFromLength(t *testing.T) {
	// 24 chars at 12 chars/sec gives a 2 second estimate.
	text := "abcdefghijklmnopqrstuvwx"
	est := EstimateTiming(text, 0)

	if len(est.StartTimes) != 24 {
		t.Fatalf("StartTimes count = %d, want 24", len(est.StartTimes))
	}
	last := est.StartTimes[23]
	want := 23.0 * (2.0 / 24.0)
	if math.Abs(last-want) > 1e-9 {
		t.Errorf("last start = %v, want %v", last, want)
	}
}

func TestEstimateTiming_MultibyteRunes(t *testing.T) {
	est := EstimateTiming("héllo", 1.0)
	if len(est.Characters) != 5 {
		t.Fatalf("Characters count = %d, want 5", len(est.Characters))
	}
	if est.Characters[1] != "é" {
		t.Errorf("Characters[1] = %q, want %q", est.Characters[1], "é")
	}
}

func TestEstimateTiming_EmptyText(t *testing.T) {
	est := EstimateTiming("", 3.0)
	if len(est.Characters) != 0 || len(est.StartTimes) != 0 {
		t.Errorf("expected zero estimate, got %+v", est)
	}
}

func TestEstimateDurationFromAudio(t *testing.T) {
	if got := EstimateDurationFromAudio(make([]byte, 48000)); got != 2.0 {
		t.Errorf("duration = %v, want 2", got)
	}
	if got := EstimateDurationFromAudio(nil); got != 0 {
		t.Errorf("duration for empty audio = %v, want 0", got)
	}
}
