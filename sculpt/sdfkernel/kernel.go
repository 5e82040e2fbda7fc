// Package sdfkernel implements the sculpt geometry kernel on top of the
// sdfx signed-distance-field library. Booleans and affine operations are
// exact SDF compositions; meshes come from the marching-cubes renderer.
//
// An SDF solid has no boundary-representation face list, so faces are
// synthesized from the triangulation by clustering triangles that share a
// plane (see faces.go). Fillet is a localized morphological rounding, an
// approximation of a BRep edge fillet that is stable under the engine's
// rebuild-and-reapply cycle.
package sdfkernel

import (
	"fmt"
	"math"

	"github.com/deadsy/sdfx/render"
	"github.com/deadsy/sdfx/sdf"
	v3 "github.com/deadsy/sdfx/vec/v3"
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/sculpt-engine/sculpt-engine/sculpt"
)

const kindName = "sdfx"

// solid wraps an SDF3 as an opaque sculpt.Solid handle.
type solid struct {
	s3 sdf.SDF3
}

func (s *solid) Kind() string { return kindName }

// Kernel is the sdfx-backed geometry kernel.
type Kernel struct{}

// New returns a ready kernel. SDF construction needs no warm-up; the
// Provider still funnels all callers through one initialization.
func New() *Kernel {
	return &Kernel{}
}

func unwrap(s sculpt.Solid) (*solid, error) {
	h, ok := s.(*solid)
	if !ok || h == nil || h.s3 == nil {
		return nil, fmt.Errorf("sdfkernel: foreign or released solid handle")
	}
	return h, nil
}

func toV3(v r3.Vec) v3.Vec {
	return v3.Vec{X: v.X, Y: v.Y, Z: v.Z}
}

// Box returns a box of the given size centered on the origin.
func (k *Kernel) Box(size r3.Vec) (sculpt.Solid, error) {
	s3, err := sdf.Box3D(toV3(size), 0)
	if err != nil {
		return nil, err
	}
	return &solid{s3: s3}, nil
}

// Cylinder returns a cylinder along the Z axis centered on the origin.
func (k *Kernel) Cylinder(height, radius float64) (sculpt.Solid, error) {
	s3, err := sdf.Cylinder3D(height, radius, 0)
	if err != nil {
		return nil, err
	}
	return &solid{s3: s3}, nil
}

// Sphere returns a sphere centered on the origin.
func (k *Kernel) Sphere(radius float64) (sculpt.Solid, error) {
	s3, err := sdf.Sphere3D(radius)
	if err != nil {
		return nil, err
	}
	return &solid{s3: s3}, nil
}

// Cut returns the boolean difference a minus b.
func (k *Kernel) Cut(a, b sculpt.Solid) (sculpt.Solid, error) {
	ha, err := unwrap(a)
	if err != nil {
		return nil, err
	}
	hb, err := unwrap(b)
	if err != nil {
		return nil, err
	}
	return &solid{s3: sdf.Difference3D(ha.s3, hb.s3)}, nil
}

// Union returns the boolean union of a and b.
func (k *Kernel) Union(a, b sculpt.Solid) (sculpt.Solid, error) {
	ha, err := unwrap(a)
	if err != nil {
		return nil, err
	}
	hb, err := unwrap(b)
	if err != nil {
		return nil, err
	}
	return &solid{s3: sdf.Union3D(ha.s3, hb.s3)}, nil
}

// Intersect returns the boolean intersection of a and b.
func (k *Kernel) Intersect(a, b sculpt.Solid) (sculpt.Solid, error) {
	ha, err := unwrap(a)
	if err != nil {
		return nil, err
	}
	hb, err := unwrap(b)
	if err != nil {
		return nil, err
	}
	return &solid{s3: sdf.Intersect3D(ha.s3, hb.s3)}, nil
}

func (k *Kernel) transform(s sculpt.Solid, m sdf.M44) sculpt.Solid {
	h, err := unwrap(s)
	if err != nil {
		// Affine ops have no error return; a foreign handle is a
		// programming error.
		panic(err)
	}
	return &solid{s3: sdf.Transform3D(h.s3, m)}
}

// Translate moves the solid by v.
func (k *Kernel) Translate(s sculpt.Solid, v r3.Vec) sculpt.Solid {
	return k.transform(s, sdf.Translate3d(toV3(v)))
}

// RotateX rotates the solid about the X axis.
func (k *Kernel) RotateX(s sculpt.Solid, radians float64) sculpt.Solid {
	return k.transform(s, sdf.RotateX(radians))
}

// RotateY rotates the solid about the Y axis.
func (k *Kernel) RotateY(s sculpt.Solid, radians float64) sculpt.Solid {
	return k.transform(s, sdf.RotateY(radians))
}

// RotateZ rotates the solid about the Z axis.
func (k *Kernel) RotateZ(s sculpt.Solid, radians float64) sculpt.Solid {
	return k.transform(s, sdf.RotateZ(radians))
}

// Scale scales the solid per axis.
func (k *Kernel) Scale(s sculpt.Solid, v r3.Vec) sculpt.Solid {
	return k.transform(s, sdf.Scale3d(toV3(v)))
}

// meshCells maps a linear tolerance to a marching-cubes cell count along
// the largest bounding dimension.
func meshCells(s3 sdf.SDF3, tolerance float64) int {
	size := s3.BoundingBox().Size()
	maxDim := math.Max(size.X, math.Max(size.Y, size.Z))
	if tolerance <= 0 || maxDim <= 0 {
		return 64
	}
	cells := int(math.Ceil(maxDim / tolerance))
	if cells < 8 {
		cells = 8
	}
	if cells > 512 {
		cells = 512
	}
	return cells
}

// collectTriangles polygonizes the SDF and gathers the triangle stream.
func collectTriangles(s3 sdf.SDF3, cells int) []*sdf.Triangle3 {
	return render.ToTriangles(s3, render.NewMarchingCubesUniform(cells))
}

// trianglesToMesh deduplicates shared vertices into flat triple arrays.
func trianglesToMesh(tris []*sdf.Triangle3) *sculpt.Mesh {
	m := &sculpt.Mesh{}
	index := make(map[v3.Vec]uint32)
	for _, t := range tris {
		for _, v := range t {
			i, ok := index[v]
			if !ok {
				i = uint32(len(m.Vertices) / 3)
				index[v] = i
				m.Vertices = append(m.Vertices, v.X, v.Y, v.Z)
			}
			m.Triangles = append(m.Triangles, i)
		}
	}
	return m
}

// Mesh triangulates the solid. Deterministic for a given tolerance: the
// marching-cubes traversal is single-threaded and grid-ordered.
func (k *Kernel) Mesh(s sculpt.Solid, tolerance, angularTolerance float64) (*sculpt.Mesh, error) {
	h, err := unwrap(s)
	if err != nil {
		return nil, err
	}
	_ = angularTolerance // an SDF mesh has no angular deflection knob
	tris := collectTriangles(h.s3, meshCells(h.s3, tolerance))
	if len(tris) == 0 {
		return nil, fmt.Errorf("sdfkernel: empty polygonization (degenerate solid)")
	}
	return trianglesToMesh(tris), nil
}

// Release returns a handle to the kernel. SDF handles hold no kernel-side
// resources beyond garbage-collected memory, so this only poisons the
// handle against reuse.
func (k *Kernel) Release(s sculpt.Solid) {
	if h, ok := s.(*solid); ok && h != nil {
		h.s3 = nil
	}
}
