package sculpt

import (
	"fmt"

	"github.com/sirupsen/logrus"
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/sculpt-engine/sculpt-engine/sculpt/journal"
)

// The history store keeps every performed subtraction as data relative to
// the parent's own frame, never in world coordinates. Resizing the parent
// therefore only moves each cut relative to the new minimum corner; the
// cut's geometry is never re-derived from the long-gone cutting object.

// detectAnchor decides the anchor convention of a local mesh once, at
// capture time. A center-anchored mesh has its bounds centered on the
// origin; a corner-anchored mesh has its minimum corner there.
func detectAnchor(m *Mesh) Anchor {
	min, max, ok := m.Bounds()
	if !ok {
		return AnchorCenter
	}
	center := r3.Scale(0.5, r3.Add(min, max))
	half := r3.Scale(0.5, r3.Sub(max, min))
	if r3.Norm(center) <= r3.Norm(r3.Sub(center, half)) {
		return AnchorCenter
	}
	return AnchorCorner
}

// worldMinCorner computes the world position of an object's minimum corner
// under the corner-normalized convention: for a center-anchored mesh, half
// the scaled bounding size is subtracted from the position.
func worldMinCorner(position, scale, size r3.Vec, anchor Anchor) r3.Vec {
	if anchor == AnchorCorner {
		return position
	}
	return r3.Sub(position, r3.Scale(0.5, mulElem(size, scale)))
}

// captureSubtraction builds the SubtractionRecord for cutter being removed
// from parent. Sizes come from the actual mesh bounds, not from stored
// parameters, which may be stale after prior edits.
func captureSubtraction(parent, cutter *Object) (*SubtractionRecord, error) {
	parentSize, _, ok := parent.LocalBounds()
	if !ok {
		return nil, fmt.Errorf("parent %q has no mesh", parent.Name)
	}
	cutterSize, _, ok := cutter.LocalBounds()
	if !ok {
		return nil, fmt.Errorf("cutter %q has no mesh", cutter.Name)
	}

	anchor := detectAnchor(cutter.Mesh)
	parentMin := worldMinCorner(parent.Position, parent.Scale, parentSize, detectAnchor(parent.Mesh))
	cutterMin := worldMinCorner(cutter.Position, cutter.Scale, cutterSize, anchor)

	// Offset in the parent's frame: distance from the parent's minimum
	// corner, de-scaled by the parent's own scale.
	offset := divElem(r3.Sub(cutterMin, parentMin), parent.Scale)
	rotation := r3.Sub(cutter.Rotation, parent.Rotation)

	rec := &SubtractionRecord{
		Geometry:   cutter.Mesh,
		CutterKind: cutter.Kind,
		Size:       cutterSize,
		Offset:     offset,
		Rotation:   rotation,
		Scale:      cutter.Scale,
		Anchor:     anchor,
	}
	for i, v := range [3]float64{cutterSize.X, cutterSize.Y, cutterSize.Z} {
		rec.Dims[i] = NewParamExpr(v)
	}
	for i, v := range [3]float64{offset.X, offset.Y, offset.Z} {
		rec.PositionExpr[i] = NewParamExpr(v)
	}
	for i, v := range [3]float64{rotation.X, rotation.Y, rotation.Z} {
		rec.RotationExpr[i] = NewParamExpr(v)
	}
	return rec, nil
}

// basePrimitive builds a fresh base solid for a rebuild, sized to the
// parent's current dimensions. Rebuilding from a fresh primitive instead of
// chaining transforms on the live solid avoids accumulated drift.
func (e *Engine) basePrimitive(kind PrimitiveKind, size r3.Vec) (Solid, error) {
	switch kind {
	case PrimitiveCylinder:
		return e.kernel.Cylinder(size.Z, size.X/2)
	case PrimitiveSphere:
		return e.kernel.Sphere(size.X / 2)
	default:
		return e.kernel.Box(size)
	}
}

// rebuildSolid regenerates a parent solid from scratch: a fresh base
// primitive at baseSize with every record's cut replayed sequentially in
// the parent's local frame. The returned solid carries no fillets; the
// caller reapplies them before publishing. On any kernel failure the
// partial result is released and an error returned, so the caller can
// abort without mutating the scene.
func (e *Engine) rebuildSolid(o *Object, baseSize r3.Vec, records []*SubtractionRecord) (Solid, error) {
	base, err := e.basePrimitive(o.Kind, baseSize)
	if err != nil {
		return nil, fmt.Errorf("rebuilding base %s: %w", o.Kind, err)
	}
	baseMin := r3.Scale(-0.5, baseSize)

	current := base
	for i, rec := range records {
		cutter, err := e.basePrimitive(rec.CutterKind, rec.Size)
		if err != nil {
			e.kernel.Release(current)
			return nil, fmt.Errorf("rebuilding cutter %d: %w", i, err)
		}

		// The rebuilt cutter is always center-anchored regardless of the
		// captured anchor: the stored offset is corner-normalized, so the
		// cutter's center sits half its scaled size past the offset point.
		center := r3.Add(baseMin, r3.Add(rec.Offset, r3.Scale(0.5, mulElem(rec.Size, rec.Scale))))
		placed := ToWorld(e.kernel, cutter, center, rec.Rotation, rec.Scale)

		next, err := e.kernel.Cut(current, placed)
		e.kernel.Release(placed)
		if err != nil {
			e.kernel.Release(current)
			return nil, fmt.Errorf("replaying cut %d: %w", i, err)
		}
		e.kernel.Release(current)
		current = next
	}
	return current, nil
}

// rebuildAndStage runs the full regeneration for a parent — fresh base,
// replayed cuts, reapplied fillets, remesh — and returns a staged clone.
// Nothing visible is mutated; the caller publishes the clone or drops it.
func (e *Engine) rebuildAndStage(o *Object, baseSize r3.Vec, records []*SubtractionRecord) (*Object, error) {
	solid, err := e.rebuildSolid(o, baseSize, records)
	if err != nil {
		return nil, err
	}

	staged := o.clone()
	staged.Size = baseSize
	staged.Subtractions = records

	solid = e.reapplyFillets(staged, solid)

	mesh, err := e.remesh(solid)
	if err != nil {
		e.kernel.Release(solid)
		return nil, err
	}
	staged.Solid = solid
	staged.Mesh = mesh
	return staged, nil
}

// replaceObject swaps a staged clone into the object list, releasing the
// old solid handle. One atomic replacement; no partial in-place edits.
func (e *Engine) replaceObject(old, staged *Object) {
	next := make([]*Object, 0, len(e.objects))
	for _, o := range e.objects {
		if o == old {
			next = append(next, staged)
		} else {
			next = append(next, o)
		}
	}
	if old.Solid != nil && old.Solid != staged.Solid {
		e.kernel.Release(old.Solid)
	}
	e.publish(next)
}

// DeleteSubtraction removes the subtraction at index k from the object and
// regenerates its solid by replaying the remaining records against the
// current base size. It never attempts an inverse union of the stored
// geometry: boolean union is not a reliable inverse of a prior cut at
// kernel-precision boundaries.
func (e *Engine) DeleteSubtraction(objectID string, k int) error {
	o := e.Find(objectID)
	if o == nil {
		return fmt.Errorf("no object %s", objectID)
	}
	if k < 0 || k >= len(o.Subtractions) {
		return fmt.Errorf("object %q has no subtraction %d", o.Name, k)
	}

	records := make([]*SubtractionRecord, 0, len(o.Subtractions)-1)
	records = append(records, o.Subtractions[:k]...)
	records = append(records, o.Subtractions[k+1:]...)

	staged, err := e.rebuildAndStage(o, o.Size, records)
	if err != nil {
		return fmt.Errorf("deleting subtraction %d of %q: %w", k, o.Name, err)
	}
	e.replaceObject(o, staged)

	e.journal.RecordReplay(journal.ReplayRecord{
		ParentID:     o.ID,
		Trigger:      "delete-subtraction",
		RecordsTotal: len(records),
		RecordsCut:   len(records),
	})
	logrus.Infof("<< DeleteSubtraction: %q dropped record %d, %d replayed", o.Name, k, len(records))
	return nil
}

// ResizeObject changes the object's base dimensions and regenerates its
// solid by replaying all stored subtractions against the new base. Stored
// offsets are relative to the minimum corner, so the cuts keep their
// distance from that corner in the new frame.
func (e *Engine) ResizeObject(objectID string, newSize r3.Vec) error {
	o := e.Find(objectID)
	if o == nil {
		return fmt.Errorf("no object %s", objectID)
	}
	if newSize.X <= 0 || newSize.Y <= 0 || newSize.Z <= 0 {
		return fmt.Errorf("resize %q: size must be positive, got %v", o.Name, newSize)
	}

	staged, err := e.rebuildAndStage(o, newSize, o.Subtractions)
	if err != nil {
		return fmt.Errorf("resizing %q: %w", o.Name, err)
	}
	e.replaceObject(o, staged)

	e.journal.RecordReplay(journal.ReplayRecord{
		ParentID:     o.ID,
		Trigger:      "resize",
		RecordsTotal: len(o.Subtractions),
		RecordsCut:   len(o.Subtractions),
	})
	logrus.Infof("<< Resize: %q to %v, %d cuts replayed", o.Name, newSize, len(o.Subtractions))
	return nil
}
