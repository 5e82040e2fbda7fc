package journal

// Level controls the verbosity of operation journaling.
type Level string

const (
	// LevelNone disables journaling (zero overhead).
	LevelNone Level = "none"
	// LevelOps captures every structural operation and fillet outcome.
	LevelOps Level = "ops"
)

// validLevels maps accepted level strings.
var validLevels = map[Level]bool{
	LevelNone: true,
	LevelOps:  true,
	"":        true, // empty defaults to none
}

// IsValidLevel returns true if the given level string is recognized.
func IsValidLevel(level string) bool {
	return validLevels[Level(level)]
}

// Journal collects operation records during an editing session. It is the
// engine's diagnostic channel: boolean failures and skipped fillets are
// visible here without digging through logs.
type Journal struct {
	Level   Level
	Cuts    []CutRecord
	Replays []ReplayRecord
	Fillets []FilletRecord
}

// New creates a Journal ready for recording.
func New(level Level) *Journal {
	return &Journal{
		Level:   level,
		Cuts:    make([]CutRecord, 0),
		Replays: make([]ReplayRecord, 0),
		Fillets: make([]FilletRecord, 0),
	}
}

func (j *Journal) enabled() bool {
	return j != nil && j.Level == LevelOps
}

// RecordCut appends a boolean-cut record.
func (j *Journal) RecordCut(record CutRecord) {
	if !j.enabled() {
		return
	}
	j.Cuts = append(j.Cuts, record)
}

// RecordReplay appends a history-replay record.
func (j *Journal) RecordReplay(record ReplayRecord) {
	if !j.enabled() {
		return
	}
	j.Replays = append(j.Replays, record)
}

// RecordFillet appends a fillet-reapplication record.
func (j *Journal) RecordFillet(record FilletRecord) {
	if !j.enabled() {
		return
	}
	j.Fillets = append(j.Fillets, record)
}
