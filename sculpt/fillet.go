package sculpt

import (
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/sculpt-engine/sculpt-engine/sculpt/journal"
)

// A kernel fillet is baked into the solid's topology and does not survive
// the history-replay rebuild, so fillets are stored as requests (face
// descriptors + absolute radius) and re-derived against every freshly
// built solid.

// matchDescriptor resolves a world-space fillet descriptor to a face of the
// object's local-frame solid.
func (e *Engine) matchDescriptor(o *Object, s Solid, d FilletDescriptor) (FaceMatch, bool, error) {
	localN := DirToLocal(d.Normal, o.Rotation, o.Scale)
	localC := PointToLocal(d.Center, o.Position, o.Rotation, o.Scale)
	return MatchFace(e.kernel, s, localN, localC, e.cfg)
}

// applyFillet resolves both descriptors of one record and invokes the
// kernel fillet. ok is false when either face could not be found or the
// kernel rejected the radius; the input solid is returned unchanged then.
func (e *Engine) applyFillet(o *Object, s Solid, rec *FilletRecord) (Solid, bool, string) {
	var fa, fb Face

	// Fast path: cached face indices hold only for the exact solid
	// instance they were matched against. A rebuilt solid is a new handle
	// with a possibly reordered face list and always re-matches.
	if rec.cachedFor == s {
		if faces, err := e.kernel.Faces(s); err == nil &&
			rec.cachedA < len(faces) && rec.cachedB < len(faces) {
			fa, fb = faces[rec.cachedA], faces[rec.cachedB]
		}
	}

	if fa == nil || fb == nil {
		ma, okA, err := e.matchDescriptor(o, s, rec.FaceA)
		if err != nil {
			return s, false, err.Error()
		}
		mb, okB, err := e.matchDescriptor(o, s, rec.FaceB)
		if err != nil {
			return s, false, err.Error()
		}
		if !okA || !okB {
			// A subtraction may have consumed the face; the fillet is
			// skipped, not an error.
			return s, false, "target face no longer present"
		}
		fa, fb = ma.Face, mb.Face
		rec.cachedA, rec.cachedB = ma.Index, mb.Index
		rec.cachedFor = s
	}

	// The radius is absolute and never scales with the object.
	next, err := e.kernel.Fillet(s, rec.Radius, []Face{fa, fb})
	if err != nil {
		rec.cachedFor = nil
		return s, false, fmt.Sprintf("kernel fillet: %v", err)
	}
	return next, true, ""
}

// reapplyFillets re-derives every fillet record of o against a freshly
// rebuilt solid. A single unresolvable fillet is skipped and the remaining
// records are still attempted. Returns the final solid.
func (e *Engine) reapplyFillets(o *Object, s Solid) Solid {
	for i, rec := range o.Fillets {
		next, ok, reason := e.applyFillet(o, s, rec)
		if ok && next != s {
			e.kernel.Release(s)
		}
		s = next
		e.journal.RecordFillet(journal.FilletRecord{
			ParentID: o.ID,
			Radius:   rec.Radius,
			Applied:  ok,
			Reason:   reason,
		})
		if !ok {
			logrus.Debugf("fillet %d on %q skipped: %s", i, o.Name, reason)
		}
	}
	return s
}

// AddFillet rounds the edge shared by the two described faces and records
// the operation so it survives later rebuilds. Descriptors are world-space
// normals and centroids, typically taken from a face the user pointed at.
func (e *Engine) AddFillet(objectID string, faceA, faceB FilletDescriptor, radius float64) error {
	o := e.Find(objectID)
	if o == nil {
		return fmt.Errorf("no object %s", objectID)
	}
	if o.Solid == nil {
		return fmt.Errorf("object %q has no solid", o.Name)
	}
	if radius <= 0 {
		return fmt.Errorf("fillet radius must be positive, got %g", radius)
	}

	dims, _, ok := o.LocalBounds()
	if !ok {
		return fmt.Errorf("object %q has no mesh", o.Name)
	}

	rec := &FilletRecord{FaceA: faceA, FaceB: faceB, Radius: radius, DimsAtApply: dims}

	staged := o.clone()
	solid, ok, reason := e.applyFillet(staged, o.Solid, rec)
	if !ok {
		return fmt.Errorf("fillet on %q: %s", o.Name, reason)
	}

	mesh, err := e.remesh(solid)
	if err != nil {
		e.kernel.Release(solid)
		return err
	}
	staged.Solid = solid
	staged.Mesh = mesh
	staged.Fillets = append(staged.Fillets, rec)
	e.replaceObject(o, staged)

	e.journal.RecordFillet(journal.FilletRecord{ParentID: o.ID, Radius: radius, Applied: true})
	logrus.Infof("<< Fillet: %q radius %g", o.Name, radius)
	return nil
}
