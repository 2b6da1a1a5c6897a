package model

import "time"

// Source identifies one of the three upstream feeds, in processing order
type Source int

const (
	SourceFirst Source = iota + 1
	SourceSecond
	SourceThird
)

func (s Source) String() string {
	switch s {
	case SourceFirst:
		return "source1"
	case SourceSecond:
		return "source2"
	case SourceThird:
		return "source3"
	default:
		return "unknown"
	}
}

// Payloads holds the respondent entries of the three feeds, already unwrapped
// from their envelopes (data / survey_answer.data.item)
type Payloads struct {
	First  []map[string]any
	Second []map[string]any
	Third  []map[string]any
}

// OrderedMap is a decoded object that keeps its keys in document order
type OrderedMap struct {
	Keys   []string
	Values map[string]any
}

// SyncStatus is the outcome of a sync run
type SyncStatus string

const (
	SyncCompleted SyncStatus = "completed"
	SyncSkipped   SyncStatus = "skipped"
	SyncFailed    SyncStatus = "failed"
)

// SourceCounts counts respondent entries per feed
type SourceCounts struct {
	First  int `json:"source1"`
	Second int `json:"source2"`
	Third  int `json:"source3"`
}

// SyncResult is returned after a sync run
type SyncResult struct {
	RunID      string       `json:"runId"`
	Status     SyncStatus   `json:"status"`
	Fetched    SourceCounts `json:"fetched"`
	Skipped    int          `json:"skippedEntries"`
	Documents  int          `json:"documents"`
	Inserted   int          `json:"inserted"`
	StartedAt  time.Time    `json:"startedAt"`
	FinishedAt time.Time    `json:"finishedAt"`
}

// ValidationIssue is one problem found in a stored document
type ValidationIssue struct {
	Field      string `json:"field,omitempty"`
	QuestionID string `json:"questionId,omitempty"`
	Message    string `json:"message"`
}
