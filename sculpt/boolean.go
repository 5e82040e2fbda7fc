package sculpt

import (
	"github.com/sirupsen/logrus"

	"github.com/sculpt-engine/sculpt-engine/sculpt/journal"
)

// BooleanResult describes the single mutation performed by one pipeline
// pass: the parent kept its identity with a replaced solid, the cutter was
// removed from the scene.
type BooleanResult struct {
	Parent    *Object
	RemovedID string
	Record    *SubtractionRecord
}

// CheckAndPerformBooleanOperations runs one pass of the collision -> cut ->
// capture -> fillet pipeline. At most one colliding pair is resolved per
// invocation; callers re-invoke after each object move so chained overlaps
// resolve one deterministic mutation at a time. Pair scanning is in
// ascending index order, so results are reproducible for a given object
// ordering.
//
// Returns (nil, nil) when no pair collides. A kernel failure on the current
// pair aborts only that pair: the scene is left exactly as it was, the
// failure is journaled, and (nil, nil) is returned.
func (e *Engine) CheckAndPerformBooleanOperations() (*BooleanResult, error) {
	pi, ci, found := findCollidingPair(e.objects)
	if !found {
		return nil, nil
	}
	parent, cutter := e.objects[pi], e.objects[ci]

	rec, err := captureSubtraction(parent, cutter)
	if err != nil {
		// Collision scanning only admits meshed objects, so a capture
		// failure is a programming error upstream, not a geometry problem.
		return nil, err
	}

	records := append(append([]*SubtractionRecord(nil), parent.Subtractions...), rec)
	baseSize, _, _ := parent.LocalBounds()

	// The full result — fresh base, every cut replayed, fillets
	// re-derived, new mesh — is computed before anything is published. A
	// stale filleted solid is never shown merged with a new un-filleted
	// cut, and a failed cut leaves no partial mutation.
	staged, err := e.rebuildAndStage(parent, baseSize, records)
	if err != nil {
		logrus.Warnf("boolean cut %q - %q failed, pair skipped: %v", parent.Name, cutter.Name, err)
		e.journal.RecordCut(journal.CutRecord{
			ParentID:   parent.ID,
			ParentName: parent.Name,
			RemovedID:  cutter.ID,
			Succeeded:  false,
			Reason:     err.Error(),
		})
		return nil, nil
	}

	next := make([]*Object, 0, len(e.objects)-1)
	for _, o := range e.objects {
		switch o {
		case cutter:
			// removed from the scene; its solid is released below
		case parent:
			next = append(next, staged)
		default:
			next = append(next, o)
		}
	}
	if parent.Solid != nil && parent.Solid != staged.Solid {
		e.kernel.Release(parent.Solid)
	}
	if cutter.Solid != nil {
		e.kernel.Release(cutter.Solid)
	}
	e.publish(next)

	e.journal.RecordCut(journal.CutRecord{
		ParentID:   parent.ID,
		ParentName: parent.Name,
		RemovedID:  cutter.ID,
		Succeeded:  true,
	})
	logrus.Infof("<< Cut: %q minus %q, offset %v", parent.Name, cutter.Name, rec.Offset)

	return &BooleanResult{Parent: staged, RemovedID: cutter.ID, Record: rec}, nil
}

// ResolveAll re-invokes the pipeline until no colliding pair remains,
// returning the number of mutations performed. maxPasses bounds runaway
// scenes; 0 means len(objects) passes, which is always enough because each
// mutation removes one object.
func (e *Engine) ResolveAll(maxPasses int) (int, error) {
	if maxPasses <= 0 {
		maxPasses = len(e.objects)
	}
	n := 0
	for i := 0; i < maxPasses; i++ {
		res, err := e.CheckAndPerformBooleanOperations()
		if err != nil {
			return n, err
		}
		if res == nil {
			break
		}
		n++
	}
	return n, nil
}
