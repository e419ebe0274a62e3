package speech

import "encoding/json"

// Alignment is the normalized timing attached to one synthesized utterance.
// Exactly one concrete representation exists per deployment:
//
//   - Estimated: per-character start times derived from a duration heuristic
//   - Marks: viseme and word marks reported by the synthesis backend
//
// The sealed interface makes the "both populated" state unrepresentable.
type Alignment interface {
	alignment()
}

// Estimated is a uniform per-character timing estimate. It is a heuristic
// fallback for backends that cannot report real timing and is never presented
// as ground truth.
type Estimated struct {
	Characters []string  `json:"characters"`
	StartTimes []float64 `json:"character_start_times_seconds"`
}

func (Estimated) alignment() {}

// MarshalJSON tags the variant so clients can dispatch on "type".
func (e Estimated) MarshalJSON() ([]byte, error) {
	type alias Estimated
	return json.Marshal(struct {
		Type string `json:"type"`
		alias
	}{Type: "estimated", alias: alias(e)})
}

// VisemeMark is one mouth-shape event, in seconds from utterance start.
type VisemeMark struct {
	Time   float64 `json:"time"`
	Viseme string  `json:"viseme"`
}

// WordMark is one word boundary event, in seconds from utterance start.
type WordMark struct {
	Time  float64 `json:"time"`
	Value string  `json:"value"`
}

// Marks is backend-provided timing: viseme events for lip-sync plus word
// boundaries for caption highlighting.
type Marks struct {
	Visemes []VisemeMark `json:"visemes"`
	Words   []WordMark   `json:"words"`
}

func (Marks) alignment() {}

// MarshalJSON tags the variant so clients can dispatch on "type".
func (m Marks) MarshalJSON() ([]byte, error) {
	type alias Marks
	return json.Marshal(struct {
		Type string `json:"type"`
		alias
	}{Type: "marks", alias: alias(m)})
}
