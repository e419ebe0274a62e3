package speech

import (
	"bufio"
	"bytes"
	"encoding/json"

	"github.com/voxpersona/voxpersona/internal/log"
)

// rawMark is one line of the newline-delimited JSON speech mark stream.
// Times arrive in milliseconds.
type rawMark struct {
	Time  int64  `json:"time"`
	Type  string `json:"type"`
	Value string `json:"value"`
}

// ParseSpeechMarks parses a newline-delimited JSON mark stream into viseme
// and word marks, converting times from milliseconds to seconds. Malformed
// lines are skipped individually with a warning; a bad line never aborts the
// whole parse. Marks with unknown types are ignored.
func ParseSpeechMarks(data []byte, logger log.Logger) Marks {
	if logger == nil {
		logger = log.NewNop()
	}

	var marks Marks
	scanner := bufio.NewScanner(bytes.NewReader(data))
	for scanner.Scan() {
		line := bytes.TrimSpace(scanner.Bytes())
		if len(line) == 0 {
			continue
		}

		var m rawMark
		if err := json.Unmarshal(line, &m); err != nil {
			logger.Warn("skipping malformed speech mark", "error", err, "line", string(line))
			continue
		}

		seconds := float64(m.Time) / 1000.0
		switch m.Type {
		case "viseme":
			marks.Visemes = append(marks.Visemes, VisemeMark{Time: seconds, Viseme: m.Value})
		case "word":
			marks.Words = append(marks.Words, WordMark{Time: seconds, Value: m.Value})
		}
	}
	if err := scanner.Err(); err != nil {
		logger.Warn("speech mark stream truncated", "error", err)
	}
	return marks
}
