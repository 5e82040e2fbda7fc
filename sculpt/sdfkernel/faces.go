package sdfkernel

import (
	"fmt"
	"math"

	"github.com/deadsy/sdfx/sdf"
	v3 "github.com/deadsy/sdfx/vec/v3"
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/sculpt-engine/sculpt-engine/sculpt"
)

// Face synthesis. The triangulation is clustered into faces by quantized
// plane: triangles whose normals agree and whose plane offsets coincide
// belong to one face. Cluster order follows triangle emission order, which
// is grid-ordered and deterministic for one solid, but shifts whenever the
// solid is rebuilt — exactly the unstable-index behavior the engine's face
// matcher is built to absorb.

// faceCells is the marching-cubes cell count used for face synthesis.
// Coarser than display meshing: face identity needs planes, not detail.
const faceCells = 48

// normalQuant quantizes a unit normal component for cluster bucketing.
const normalQuant = 0.05

type planeKey struct {
	nx, ny, nz int32
	d          int32
}

// face is one synthesized planar face of an SDF solid.
type face struct {
	normal r3.Vec
	tris   []*sdf.Triangle3
}

// NormalAt returns the face normal; a synthesized face is planar, so the
// parametric position is irrelevant.
func (f *face) NormalAt(u, v float64) r3.Vec {
	return f.normal
}

// Mesh returns the face's own triangles. The tolerance arguments are
// accepted for interface compatibility; the triangles were produced at the
// solid's face-synthesis resolution.
func (f *face) Mesh(tolerance, angularTolerance float64) (*sculpt.Mesh, error) {
	if len(f.tris) == 0 {
		return nil, fmt.Errorf("sdfkernel: face has no triangulation")
	}
	return trianglesToMesh(f.tris), nil
}

// bounds returns the axis-aligned bounds of the face triangles.
func (f *face) bounds() (min, max v3.Vec) {
	first := true
	for _, t := range f.tris {
		for _, v := range t {
			if first {
				min, max = v, v
				first = false
				continue
			}
			min = v3.Vec{X: math.Min(min.X, v.X), Y: math.Min(min.Y, v.Y), Z: math.Min(min.Z, v.Z)}
			max = v3.Vec{X: math.Max(max.X, v.X), Y: math.Max(max.Y, v.Y), Z: math.Max(max.Z, v.Z)}
		}
	}
	return min, max
}

func triNormal(t *sdf.Triangle3) r3.Vec {
	a := r3.Vec{X: t[0].X, Y: t[0].Y, Z: t[0].Z}
	b := r3.Vec{X: t[1].X, Y: t[1].Y, Z: t[1].Z}
	c := r3.Vec{X: t[2].X, Y: t[2].Y, Z: t[2].Z}
	n := r3.Cross(r3.Sub(b, a), r3.Sub(c, a))
	if r3.Norm(n) == 0 {
		return r3.Vec{}
	}
	return r3.Unit(n)
}

// synthesizeFaces clusters a solid's triangulation into planar faces.
func synthesizeFaces(s3 sdf.SDF3) []*face {
	tris := collectTriangles(s3, faceCells)

	size := s3.BoundingBox().Size()
	maxDim := math.Max(size.X, math.Max(size.Y, size.Z))
	dQuant := maxDim / float64(faceCells)
	if dQuant <= 0 {
		dQuant = 1
	}

	var ordered []*face
	byPlane := make(map[planeKey]*face)
	for _, t := range tris {
		n := triNormal(t)
		if n == (r3.Vec{}) {
			continue
		}
		d := n.X*t[0].X + n.Y*t[0].Y + n.Z*t[0].Z
		key := planeKey{
			nx: int32(math.Round(n.X / normalQuant)),
			ny: int32(math.Round(n.Y / normalQuant)),
			nz: int32(math.Round(n.Z / normalQuant)),
			d:  int32(math.Round(d / dQuant)),
		}
		f, ok := byPlane[key]
		if !ok {
			f = &face{normal: n}
			byPlane[key] = f
			ordered = append(ordered, f)
		}
		f.tris = append(f.tris, t)
	}
	return ordered
}

// Faces enumerates the solid's synthesized faces. The order is
// deterministic for one solid but not preserved across rebuilds.
func (k *Kernel) Faces(s sculpt.Solid) ([]sculpt.Face, error) {
	h, err := unwrap(s)
	if err != nil {
		return nil, err
	}
	faces := synthesizeFaces(h.s3)
	out := make([]sculpt.Face, len(faces))
	for i, f := range faces {
		out[i] = f
	}
	return out, nil
}

// Fillet rounds the edge region shared by the selected faces. An SDF has
// no BRep edges to fillet directly; instead the solid is morphologically
// rounded (erode then dilate by the radius) and the rounded version is
// spliced in only inside a localization box around the selected faces, so
// distant geometry is untouched.
func (k *Kernel) Fillet(s sculpt.Solid, radius float64, faces []sculpt.Face) (sculpt.Solid, error) {
	h, err := unwrap(s)
	if err != nil {
		return nil, err
	}
	if radius <= 0 {
		return nil, fmt.Errorf("sdfkernel: fillet radius must be positive, got %g", radius)
	}
	if len(faces) == 0 {
		return nil, fmt.Errorf("sdfkernel: fillet needs at least one face selector")
	}

	size := h.s3.BoundingBox().Size()
	if radius >= math.Min(size.X, math.Min(size.Y, size.Z))/2 {
		return nil, fmt.Errorf("sdfkernel: fillet radius %g exceeds local geometry", radius)
	}

	// Localization box: combined bounds of the selected faces, inflated by
	// twice the radius.
	var min, max v3.Vec
	first := true
	for _, sf := range faces {
		f, ok := sf.(*face)
		if !ok {
			return nil, fmt.Errorf("sdfkernel: foreign face selector")
		}
		fmin, fmax := f.bounds()
		if first {
			min, max = fmin, fmax
			first = false
			continue
		}
		min = v3.Vec{X: math.Min(min.X, fmin.X), Y: math.Min(min.Y, fmin.Y), Z: math.Min(min.Z, fmin.Z)}
		max = v3.Vec{X: math.Max(max.X, fmax.X), Y: math.Max(max.Y, fmax.Y), Z: math.Max(max.Z, fmax.Z)}
	}
	pad := 2 * radius
	boxSize := v3.Vec{X: max.X - min.X + pad, Y: max.Y - min.Y + pad, Z: max.Z - min.Z + pad}
	boxCenter := v3.Vec{X: (min.X + max.X) / 2, Y: (min.Y + max.Y) / 2, Z: (min.Z + max.Z) / 2}
	locBox, err := sdf.Box3D(boxSize, 0)
	if err != nil {
		return nil, fmt.Errorf("sdfkernel: fillet localization: %w", err)
	}
	region := sdf.Transform3D(locBox, sdf.Translate3d(boxCenter))

	rounded := sdf.Offset3D(sdf.Offset3D(h.s3, -radius), radius)
	result := sdf.Union3D(
		sdf.Difference3D(h.s3, region),
		sdf.Intersect3D(rounded, region),
	)
	return &solid{s3: result}, nil
}
