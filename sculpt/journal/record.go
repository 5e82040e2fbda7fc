// Package journal provides operation-journal recording for the sculpt
// engine. This package has no dependencies on sculpt/ — it stores pure data
// types.
package journal

// CutRecord captures a single boolean subtraction attempt.
type CutRecord struct {
	ParentID   string
	ParentName string
	RemovedID  string
	Succeeded  bool
	Reason     string // failure reason when Succeeded is false
}

// ReplayRecord captures one history replay (resize or subtraction delete).
type ReplayRecord struct {
	ParentID     string
	Trigger      string // "resize" or "delete-subtraction"
	RecordsTotal int
	RecordsCut   int // cuts that succeeded during the replay
}

// FilletRecord captures one fillet reapplication outcome.
type FilletRecord struct {
	ParentID string
	Radius   float64
	Applied  bool
	Reason   string // why the fillet was skipped, when Applied is false
}
