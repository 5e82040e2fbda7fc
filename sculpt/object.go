package sculpt

import (
	"fmt"

	"github.com/google/uuid"
	"gonum.org/v1/gonum/spatial/r3"
)

// PrimitiveKind tags the base primitive an Object was created from.
type PrimitiveKind string

const (
	PrimitiveBox      PrimitiveKind = "box"
	PrimitiveCylinder PrimitiveKind = "cylinder"
	PrimitiveSphere   PrimitiveKind = "sphere"
)

// Anchor records how a captured cutting volume's local geometry relates to
// its own origin. It is determined once at capture time and stored on the
// record, never re-inferred at replay time.
type Anchor string

const (
	// AnchorCenter means the local geometry is centered on its origin
	// (the usual case for kernel primitives).
	AnchorCenter Anchor = "center"
	// AnchorCorner means the local geometry's minimum corner sits on its
	// origin.
	AnchorCorner Anchor = "corner"
)

// ParamExpr is an editable parametric input captured with a subtraction:
// the numeric value that produced the cut plus the expression the user
// typed, so the cut stays editable after the fact.
type ParamExpr struct {
	Value float64
	Expr  string
}

// NewParamExpr wraps a plain numeric input.
func NewParamExpr(v float64) ParamExpr {
	return ParamExpr{Value: v, Expr: fmt.Sprintf("%g", v)}
}

// SubtractionRecord is the persisted description of one performed boolean
// cut, expressed relative to the parent object's own frame so the cut can
// be replayed after the parent is resized, or removed and the remaining
// cuts replayed without it. Immutable once captured; deletion removes it
// from the parent's list.
type SubtractionRecord struct {
	// Geometry is the cutting volume's mesh at capture time, in the
	// cutter's local frame.
	Geometry *Mesh

	// CutterKind is the primitive the cutting volume was created from, so
	// a replay rebuilds the cutter with its real shape rather than a box
	// of the same bounds.
	CutterKind PrimitiveKind

	// Size is the cutter's local bounding size at capture time.
	Size r3.Vec

	// Offset is the cutter's position relative to the parent's minimum
	// corner (corner-normalized; see Anchor).
	Offset r3.Vec

	// Rotation is the difference of world-space Euler angles, cutter
	// minus parent.
	Rotation r3.Vec

	// Scale is the cutter's absolute local scale factor.
	Scale r3.Vec

	// Anchor is the cutter's anchor convention, fixed at capture time.
	Anchor Anchor

	// Dims, PositionExpr and RotationExpr are the original parametric
	// inputs, kept editable.
	Dims         [3]ParamExpr
	PositionExpr [3]ParamExpr
	RotationExpr [3]ParamExpr
}

// FilletDescriptor identifies one face of a fillet by where it was in world
// space when the fillet was applied. Face indices are not stable across
// rebuilds, so the descriptor is re-matched against the solid every time.
type FilletDescriptor struct {
	Normal r3.Vec // world-space unit normal at apply time
	Center r3.Vec // world-space centroid at apply time
}

// FilletRecord is the persisted description of a rounded-edge operation.
// The radius is absolute: it does not scale with later changes to the
// parent object.
type FilletRecord struct {
	FaceA  FilletDescriptor
	FaceB  FilletDescriptor
	Radius float64

	// DimsAtApply is the parent's bounding size when the fillet was
	// applied.
	DimsAtApply r3.Vec

	// cachedA/cachedB hold the last matched face indices, trusted only
	// for the exact solid instance they were matched against. Face order
	// is not stable across rebuilds, so a fresh solid always re-matches.
	cachedA, cachedB int
	cachedFor        Solid
}

// Object is one scene entity: a primitive (possibly already carved by
// earlier subtractions) with a world transform, a renderable mesh, and the
// history needed to re-derive its solid.
//
// Invariant: Mesh is always the triangulation of Solid. Every structural
// edit goes through the engine, which remeshes before publishing.
type Object struct {
	ID       string
	Name     string
	Kind     PrimitiveKind
	Position r3.Vec // world frame
	Rotation r3.Vec // world frame, Euler axis-angle triple in radians
	Scale    r3.Vec

	// Solid is the kernel handle owned exclusively by this object, kept
	// in the object's local frame. Nil for purely visual helpers, which
	// are ignored by collision scanning.
	Solid Solid

	// Mesh is the renderable triangulation of Solid.
	Mesh *Mesh

	// Size is the primitive's nominal local size (diameter-based for
	// cylinders and spheres).
	Size r3.Vec

	Subtractions []*SubtractionRecord
	Fillets      []*FilletRecord

	// GroupID links the object to a sibling reference object. Objects
	// sharing a group are never cut against each other.
	GroupID string
}

func newObject(name string, kind PrimitiveKind) *Object {
	return &Object{
		ID:    uuid.NewString(),
		Name:  name,
		Kind:  kind,
		Scale: r3.Vec{X: 1, Y: 1, Z: 1},
	}
}

// LocalBounds recomputes the object's true local bounding size and centroid
// from its mesh, not from stored parameters, since those may be stale after
// prior edits. ok is false when the object has no mesh.
func (o *Object) LocalBounds() (size, centroid r3.Vec, ok bool) {
	min, max, ok := o.Mesh.Bounds()
	if !ok {
		return r3.Vec{}, r3.Vec{}, false
	}
	size = r3.Sub(max, min)
	centroid = r3.Scale(0.5, r3.Add(min, max))
	return size, centroid, true
}

// WorldCentroid transforms the object's local mesh centroid into world
// space using the object's own scale, rotation and position, in that order.
func (o *Object) WorldCentroid() (r3.Vec, bool) {
	_, c, ok := o.LocalBounds()
	if !ok {
		return r3.Vec{}, false
	}
	return PointToWorld(c, o.Position, o.Rotation, o.Scale), true
}

// clone returns a shallow copy with copied record slices, used to stage a
// mutation before atomic publish. The Solid handle is shared until the
// staged copy replaces it.
func (o *Object) clone() *Object {
	c := *o
	c.Subtractions = append([]*SubtractionRecord(nil), o.Subtractions...)
	c.Fillets = append([]*FilletRecord(nil), o.Fillets...)
	return &c
}
