package training

import (
	"encoding/json"
	"os"
	"time"
)

// History appends one JSON record per epoch to a file, so a long run's loss
// curve survives the process. Records are line-delimited; a missing file is
// created on first append.
type History struct {
	path string
}

// NewHistory returns a history writer for path, or nil if path is empty
// (a nil History ignores appends).
func NewHistory(path string) *History {
	if path == "" {
		return nil
	}
	return &History{path: path}
}

// EpochRecord is one epoch's logged losses.
type EpochRecord struct {
	Epoch     int     `json:"epoch"`
	Loss      float64 `json:"loss"`
	ClassLoss float64 `json:"class_loss"`
	ParamLoss float64 `json:"param_loss"`
	Time      string  `json:"time"`
}

// Append writes one record. Errors are returned, not fatal; callers decide
// whether a broken history file should stop a run.
func (h *History) Append(rec EpochRecord) error {
	if h == nil {
		return nil
	}
	rec.Time = time.Now().Format(time.RFC3339)
	line, err := json.Marshal(rec)
	if err != nil {
		return err
	}
	f, err := os.OpenFile(h.path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return err
	}
	defer f.Close()
	if _, err := f.Write(append(line, '\n')); err != nil {
		return err
	}
	return nil
}
