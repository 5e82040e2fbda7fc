package journal

// Summary aggregates statistics from a Journal.
type Summary struct {
	Cuts           int
	FailedCuts     int
	Replays        int
	FilletsApplied int
	FilletsSkipped int
	CutsPerParent  map[string]int // parent object ID -> successful cut count
}

// Summarize computes aggregate statistics from a Journal.
// Safe for nil or empty journals (returns zero-value fields).
func Summarize(j *Journal) *Summary {
	summary := &Summary{
		CutsPerParent: make(map[string]int),
	}
	if j == nil {
		return summary
	}

	for _, c := range j.Cuts {
		if c.Succeeded {
			summary.Cuts++
			summary.CutsPerParent[c.ParentID]++
		} else {
			summary.FailedCuts++
		}
	}

	summary.Replays = len(j.Replays)

	for _, f := range j.Fillets {
		if f.Applied {
			summary.FilletsApplied++
		} else {
			summary.FilletsSkipped++
		}
	}

	return summary
}
