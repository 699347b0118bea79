package models

import "time"

// GenerationRun records one assembly of the journal
type GenerationRun struct {
	ID        string        `json:"id"`
	Trigger   string        `json:"trigger"`
	Pages     int           `json:"pages"`
	Failures  int           `json:"failures"`
	Duration  time.Duration `json:"duration"`
	Error     string        `json:"error,omitempty"`
	StartedAt time.Time     `json:"started_at"`
}

// Succeeded reports whether the run wrote a document
func (r GenerationRun) Succeeded() bool {
	return r.Error == ""
}
