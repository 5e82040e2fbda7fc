package sculpt

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"golang.org/x/sync/singleflight"
	"gonum.org/v1/gonum/spatial/r3"
)

// Solid is an opaque handle to a kernel-resident boundary solid. Exactly one
// Object owns a given handle; replacing an object's solid releases the old
// handle back to the kernel. Callers outside the owning kernel must not
// assume anything about the concrete type.
type Solid interface {
	// Kind reports the kernel that produced the handle. Mixing handles
	// across kernels is a programming error.
	Kind() string
}

// Face is one face of a kernel solid. The kernel exposes faces as an
// unordered list whose indices are not stable across rebuilds, which is why
// face identity is always re-derived by matching (see facematch.go), never
// stored by index alone.
type Face interface {
	// NormalAt evaluates the outward unit normal at parametric (u, v),
	// each in [0, 1].
	NormalAt(u, v float64) r3.Vec

	// Mesh triangulates just this face at the given tolerance. Returns an
	// error when the face cannot be triangulated; callers treat that as
	// "centroid unavailable", not as a failure.
	Mesh(tolerance, angularTolerance float64) (*Mesh, error)
}

// Mesh is a flat triangle mesh: Vertices holds xyz triples, Triangles holds
// vertex-index triples. This is the engine's only renderable currency; an
// Object's Mesh must always be the triangulation of its current solid.
type Mesh struct {
	Vertices  []float64
	Triangles []uint32
}

// VertexCount returns the number of xyz triples in the mesh.
func (m *Mesh) VertexCount() int {
	return len(m.Vertices) / 3
}

// Vertex returns vertex i as a vector.
func (m *Mesh) Vertex(i int) r3.Vec {
	return r3.Vec{X: m.Vertices[3*i], Y: m.Vertices[3*i+1], Z: m.Vertices[3*i+2]}
}

// Bounds returns the axis-aligned bounding box of the mesh vertices.
// ok is false for an empty mesh.
func (m *Mesh) Bounds() (min, max r3.Vec, ok bool) {
	if m == nil || len(m.Vertices) < 3 {
		return r3.Vec{}, r3.Vec{}, false
	}
	min = m.Vertex(0)
	max = min
	for i := 1; i < m.VertexCount(); i++ {
		v := m.Vertex(i)
		min = r3.Vec{X: minf(min.X, v.X), Y: minf(min.Y, v.Y), Z: minf(min.Z, v.Z)}
		max = r3.Vec{X: maxf(max.X, v.X), Y: maxf(max.Y, v.Y), Z: maxf(max.Z, v.Z)}
	}
	return min, max, true
}

// Centroid returns the average of the mesh vertices. ok is false for an
// empty mesh.
func (m *Mesh) Centroid() (r3.Vec, bool) {
	if m == nil || m.VertexCount() == 0 {
		return r3.Vec{}, false
	}
	var sum r3.Vec
	n := m.VertexCount()
	for i := 0; i < n; i++ {
		sum = r3.Add(sum, m.Vertex(i))
	}
	return r3.Scale(1/float64(n), sum), true
}

func minf(a, b float64) float64 {
	if a < b {
		return a
	}
	return b
}

func maxf(a, b float64) float64 {
	if a > b {
		return a
	}
	return b
}

// Kernel is the boundary with the external geometry collaborator. All
// operations are long-running and synchronous; the engine never runs two
// structural mutations concurrently, so implementations need not be
// thread-safe beyond construction.
type Kernel interface {
	// Primitive constructors. Solids are centered on their local origin.
	Box(size r3.Vec) (Solid, error)
	Cylinder(height, radius float64) (Solid, error)
	Sphere(radius float64) (Solid, error)

	// Booleans. Cut is the boolean difference a minus b; it may fail on
	// degenerate or non-manifold input.
	Cut(a, b Solid) (Solid, error)
	Union(a, b Solid) (Solid, error)
	Intersect(a, b Solid) (Solid, error)

	// Affine operations. These return a new handle; the input handle stays
	// valid and owned by the caller.
	Translate(s Solid, v r3.Vec) Solid
	RotateX(s Solid, radians float64) Solid
	RotateY(s Solid, radians float64) Solid
	RotateZ(s Solid, radians float64) Solid
	Scale(s Solid, v r3.Vec) Solid

	// Mesh triangulates the solid. Deterministic for a given tolerance but
	// not stable across kernel versions.
	Mesh(s Solid, tolerance, angularTolerance float64) (*Mesh, error)

	// Fillet rounds the edge shared by the selected faces with an absolute
	// radius. May fail on radii larger than the local geometry supports.
	Fillet(s Solid, radius float64, faces []Face) (Solid, error)

	// Faces enumerates the solid's faces. Index order is deterministic for
	// one solid but not preserved across rebuilds.
	Faces(s Solid) ([]Face, error)

	// Release returns a handle to the kernel. After Release the handle
	// must not be used.
	Release(s Solid)
}

// NewKernelFunc is the kernel factory registration variable. Kernel
// implementations (sculpt/sdfkernel) set it from an init() function so that
// importing the implementation package wires it in without an import cycle.
var NewKernelFunc func() (Kernel, error)

// ErrNoKernel is returned by Provider.Kernel when no kernel implementation
// has been registered via NewKernelFunc.
var ErrNoKernel = errors.New("sculpt: no kernel registered (import a kernel package such as sculpt/sdfkernel)")

// Provider owns the process-wide kernel instance. Initialization is lazy
// and long-running; concurrent callers coalesce into a single in-flight
// initialization and all receive the same ready instance (or the same
// error — a failed init is fatal and is not retried).
type Provider struct {
	group singleflight.Group

	mu     sync.Mutex
	kernel Kernel
	err    error
	done   bool
}

// NewProvider returns an empty Provider. The kernel is not initialized
// until the first Kernel call.
func NewProvider() *Provider {
	return &Provider{}
}

// Kernel returns the shared kernel, initializing it on first use. Safe for
// concurrent use; all callers of an in-flight initialization share its
// outcome. The context bounds only this caller's wait, not the
// initialization itself (a kernel init, once started, runs to completion
// or failure).
func (p *Provider) Kernel(ctx context.Context) (Kernel, error) {
	p.mu.Lock()
	if p.done {
		k, err := p.kernel, p.err
		p.mu.Unlock()
		return k, err
	}
	p.mu.Unlock()

	type result struct {
		kernel Kernel
	}
	ch := p.group.DoChan("init", func() (any, error) {
		if NewKernelFunc == nil {
			p.finish(nil, ErrNoKernel)
			return nil, ErrNoKernel
		}
		k, err := NewKernelFunc()
		if err != nil {
			err = fmt.Errorf("kernel initialization failed: %w", err)
			p.finish(nil, err)
			return nil, err
		}
		p.finish(k, nil)
		return result{kernel: k}, nil
	})

	select {
	case res := <-ch:
		if res.Err != nil {
			return nil, res.Err
		}
		return res.Val.(result).kernel, nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

func (p *Provider) finish(k Kernel, err error) {
	p.mu.Lock()
	p.kernel = k
	p.err = err
	p.done = true
	p.mu.Unlock()
}
