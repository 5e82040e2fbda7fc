package sculpt

import (
	"fmt"
	"math"
	"sort"

	"gonum.org/v1/gonum/spatial/r3"
)

// fakeKernel is an axis-aligned CSG double for engine tests. Solids carry
// an exact point cloud (base box corners under every applied transform) and
// a list of cut bounding boxes, which is enough to verify transform
// round-trips, collision-driven cuts, history replay equivalence, and
// fillet bookkeeping without a real geometry backend.
type fakeKernel struct {
	facesOverride []Face // when set, Faces returns these for any solid
	failCut       error  // when set, the next Cut fails with this error
	failFillet    error  // when set, every Fillet fails with this error

	cuts     int // total successful cuts
	releases int

	// per-constructor call counts
	boxCalls      int
	cylinderCalls int
	sphereCalls   int
}

type fakeBox struct {
	min, max r3.Vec
}

type fakeFillet struct {
	radius  float64
	normals []r3.Vec // midpoint normals of the filleted faces
}

type fakeSolid struct {
	points   []r3.Vec // transformed corners of the base primitive
	cuts     []fakeBox
	fillets  []fakeFillet
	released bool
}

func (s *fakeSolid) Kind() string { return "fake" }

func boxCorners(size r3.Vec) []r3.Vec {
	h := r3.Scale(0.5, size)
	var pts []r3.Vec
	for _, sx := range []float64{-1, 1} {
		for _, sy := range []float64{-1, 1} {
			for _, sz := range []float64{-1, 1} {
				pts = append(pts, r3.Vec{X: sx * h.X, Y: sy * h.Y, Z: sz * h.Z})
			}
		}
	}
	return pts
}

func pointsBounds(pts []r3.Vec) fakeBox {
	b := fakeBox{min: pts[0], max: pts[0]}
	for _, p := range pts[1:] {
		b.min = r3.Vec{X: minf(b.min.X, p.X), Y: minf(b.min.Y, p.Y), Z: minf(b.min.Z, p.Z)}
		b.max = r3.Vec{X: maxf(b.max.X, p.X), Y: maxf(b.max.Y, p.Y), Z: maxf(b.max.Z, p.Z)}
	}
	return b
}

func newFakeSolid(size r3.Vec) (Solid, error) {
	if size.X <= 0 || size.Y <= 0 || size.Z <= 0 {
		return nil, fmt.Errorf("fake: bad primitive size %v", size)
	}
	return &fakeSolid{points: boxCorners(size)}, nil
}

func (k *fakeKernel) Box(size r3.Vec) (Solid, error) {
	k.boxCalls++
	return newFakeSolid(size)
}

func (k *fakeKernel) Cylinder(height, radius float64) (Solid, error) {
	k.cylinderCalls++
	return newFakeSolid(r3.Vec{X: 2 * radius, Y: 2 * radius, Z: height})
}

func (k *fakeKernel) Sphere(radius float64) (Solid, error) {
	k.sphereCalls++
	d := 2 * radius
	return newFakeSolid(r3.Vec{X: d, Y: d, Z: d})
}

func (k *fakeKernel) Cut(a, b Solid) (Solid, error) {
	if k.failCut != nil {
		err := k.failCut
		k.failCut = nil
		return nil, err
	}
	fa, fb := a.(*fakeSolid), b.(*fakeSolid)
	next := &fakeSolid{
		points:  append([]r3.Vec(nil), fa.points...),
		cuts:    append(append([]fakeBox(nil), fa.cuts...), pointsBounds(fb.points)),
		fillets: append([]fakeFillet(nil), fa.fillets...),
	}
	k.cuts++
	return next, nil
}

func (k *fakeKernel) Union(a, b Solid) (Solid, error) {
	fa := a.(*fakeSolid)
	fb := b.(*fakeSolid)
	return &fakeSolid{points: append(append([]r3.Vec(nil), fa.points...), fb.points...)}, nil
}

func (k *fakeKernel) Intersect(a, b Solid) (Solid, error) {
	fa := a.(*fakeSolid)
	return &fakeSolid{points: append([]r3.Vec(nil), fa.points...)}, nil
}

func (k *fakeKernel) apply(s Solid, f func(r3.Vec) r3.Vec) Solid {
	fs := s.(*fakeSolid)
	next := &fakeSolid{
		cuts:    append([]fakeBox(nil), fs.cuts...),
		fillets: append([]fakeFillet(nil), fs.fillets...),
	}
	for _, p := range fs.points {
		next.points = append(next.points, f(p))
	}
	for i, c := range next.cuts {
		next.cuts[i] = pointsBounds([]r3.Vec{f(c.min), f(c.max)})
	}
	return next
}

func (k *fakeKernel) Translate(s Solid, v r3.Vec) Solid {
	return k.apply(s, func(p r3.Vec) r3.Vec { return r3.Add(p, v) })
}

func (k *fakeKernel) RotateX(s Solid, a float64) Solid {
	return k.apply(s, func(p r3.Vec) r3.Vec { return rotX(p, a) })
}

func (k *fakeKernel) RotateY(s Solid, a float64) Solid {
	return k.apply(s, func(p r3.Vec) r3.Vec { return rotY(p, a) })
}

func (k *fakeKernel) RotateZ(s Solid, a float64) Solid {
	return k.apply(s, func(p r3.Vec) r3.Vec { return rotZ(p, a) })
}

func (k *fakeKernel) Scale(s Solid, v r3.Vec) Solid {
	return k.apply(s, func(p r3.Vec) r3.Vec { return mulElem(p, v) })
}

func (k *fakeKernel) Mesh(s Solid, tolerance, angularTolerance float64) (*Mesh, error) {
	fs := s.(*fakeSolid)
	m := &Mesh{}
	for _, p := range fs.points {
		m.Vertices = append(m.Vertices, p.X, p.Y, p.Z)
	}
	return m, nil
}

func (k *fakeKernel) Fillet(s Solid, radius float64, faces []Face) (Solid, error) {
	if k.failFillet != nil {
		return nil, k.failFillet
	}
	fs := s.(*fakeSolid)
	ff := fakeFillet{radius: radius}
	for _, f := range faces {
		ff.normals = append(ff.normals, f.NormalAt(0.5, 0.5))
	}
	next := &fakeSolid{
		points:  append([]r3.Vec(nil), fs.points...),
		cuts:    append([]fakeBox(nil), fs.cuts...),
		fillets: append(append([]fakeFillet(nil), fs.fillets...), ff),
	}
	return next, nil
}

func (k *fakeKernel) Faces(s Solid) ([]Face, error) {
	if k.facesOverride != nil {
		return k.facesOverride, nil
	}
	fs := s.(*fakeSolid)
	b := pointsBounds(fs.points)
	center := r3.Scale(0.5, r3.Add(b.min, b.max))
	half := r3.Scale(0.5, r3.Sub(b.max, b.min))
	normals := []r3.Vec{
		{X: 1}, {X: -1}, {Y: 1}, {Y: -1}, {Z: 1}, {Z: -1},
	}
	var faces []Face
	for _, n := range normals {
		c := r3.Add(center, mulElem(n, half))
		faces = append(faces, &stubFace{normal: n, centroid: c})
	}
	return faces, nil
}

func (k *fakeKernel) Release(s Solid) {
	if fs, ok := s.(*fakeSolid); ok {
		fs.released = true
		k.releases++
	}
}

// stubFace is a directly constructible Face for matcher tests.
type stubFace struct {
	normal   r3.Vec
	centroid r3.Vec
	meshErr  error
}

func (f *stubFace) NormalAt(u, v float64) r3.Vec { return f.normal }

func (f *stubFace) Mesh(tolerance, angularTolerance float64) (*Mesh, error) {
	if f.meshErr != nil {
		return nil, f.meshErr
	}
	c := f.centroid
	return &Mesh{Vertices: []float64{c.X, c.Y, c.Z}}, nil
}

// canonicalCuts returns the solid's cut boxes sorted for order-insensitive
// comparison.
func canonicalCuts(s Solid) []fakeBox {
	fs := s.(*fakeSolid)
	cuts := append([]fakeBox(nil), fs.cuts...)
	sort.Slice(cuts, func(i, j int) bool {
		a, b := cuts[i].min, cuts[j].min
		if a.X != b.X {
			return a.X < b.X
		}
		if a.Y != b.Y {
			return a.Y < b.Y
		}
		return a.Z < b.Z
	})
	return cuts
}

func boxesEqual(a, b fakeBox, tol float64) bool {
	return vecsEqual(a.min, b.min, tol) && vecsEqual(a.max, b.max, tol)
}

func vecsEqual(a, b r3.Vec, tol float64) bool {
	return math.Abs(a.X-b.X) <= tol && math.Abs(a.Y-b.Y) <= tol && math.Abs(a.Z-b.Z) <= tol
}

// newTestEngine builds an engine over a fresh fake kernel.
func newTestEngine() (*Engine, *fakeKernel) {
	k := &fakeKernel{}
	return NewEngine(k, DefaultEngineConfig()), k
}
