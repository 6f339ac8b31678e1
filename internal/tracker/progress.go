package tracker

import (
	"bytes"
	"encoding/json"
	"math"
	"strconv"
	"strings"
	"time"

	"prodimport/internal/models"
)

// Progress is one observed state of an import job.
type Progress struct {
	JobID     string    `json:"job_id"`
	Percent   float64   `json:"percent"`
	Message   string    `json:"message"`
	Status    string    `json:"status,omitempty"`
	Completed bool      `json:"completed"`
	At        time.Time `json:"at"`
}

// Evaluate turns a raw status response into a Progress. Percent is always
// within [0,100] and is forced to 100 once the job reports COMPLETED.
func Evaluate(jobID string, s *models.ImportStatus) Progress {
	p := Progress{JobID: jobID, At: time.Now()}
	if s == nil {
		return p
	}
	p.Percent = ClampPercent(CoercePercent(s.Percent))
	p.Message = s.MessageText()
	if status, ok := s.StatusText(); ok {
		p.Status = status
		p.Completed = IsCompleted(status)
	}
	if p.Completed {
		p.Percent = 100
	}
	return p
}

// IsCompleted reports whether status is the terminal COMPLETED token,
// compared case-insensitively. No other value ends tracking.
func IsCompleted(status string) bool {
	return strings.ToUpper(status) == models.ImportStatusCompleted
}

// ClampPercent maps non-finite values to 0 and clamps the rest to [0,100].
func ClampPercent(p float64) float64 {
	if math.IsNaN(p) || math.IsInf(p, 0) {
		return 0
	}
	return max(0, min(100, p))
}

// CoercePercent converts the loosely typed percent field to a number.
// Absent and null are 0, booleans are 1 or 0, strings are parsed after
// trimming (empty is 0). Anything unparseable is NaN.
func CoercePercent(raw json.RawMessage) float64 {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 {
		return 0
	}
	switch raw[0] {
	case 'n':
		return 0
	case 't':
		return 1
	case 'f':
		return 0
	case '[', '{':
		return math.NaN()
	case '"':
		var s string
		if err := json.Unmarshal(raw, &s); err != nil {
			return math.NaN()
		}
		s = strings.TrimSpace(s)
		if s == "" {
			return 0
		}
		return parseFloat(s)
	}
	return parseFloat(string(raw))
}

func parseFloat(s string) float64 {
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return math.NaN()
	}
	return f
}
