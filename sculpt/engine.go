package sculpt

import (
	"fmt"

	"gonum.org/v1/gonum/spatial/r3"

	"github.com/sculpt-engine/sculpt-engine/sculpt/journal"
)

// Engine is the core object that holds the scene's object list and drives
// structural mutations through the collision -> cut -> capture -> fillet
// pipeline.
//
// Thread-safety: NOT thread-safe. All entry points must be called from a
// single goroutine; only kernel acquisition through Provider may be
// concurrent.
type Engine struct {
	kernel  Kernel
	cfg     EngineConfig
	objects []*Object
	journal *journal.Journal
}

// NewEngine creates an Engine over an initialized kernel.
func NewEngine(k Kernel, cfg EngineConfig) *Engine {
	return &Engine{
		kernel:  k,
		cfg:     cfg.withDefaults(),
		objects: make([]*Object, 0),
		journal: journal.New(journal.LevelNone),
	}
}

// SetJournal attaches an operation journal. Pass nil to detach.
func (e *Engine) SetJournal(j *journal.Journal) {
	e.journal = j
}

// Kernel returns the engine's kernel, for callers that need direct face
// access (e.g. resolving a pointed-at face before AddFillet).
func (e *Engine) Kernel() Kernel {
	return e.kernel
}

// Config returns the engine configuration.
func (e *Engine) Config() EngineConfig {
	return e.cfg
}

// Objects returns the current object list. The slice is a copy; the Objects
// themselves are shared and must not be mutated by callers.
func (e *Engine) Objects() []*Object {
	return append([]*Object(nil), e.objects...)
}

// Find returns the object with the given ID, or nil.
func (e *Engine) Find(id string) *Object {
	for _, o := range e.objects {
		if o.ID == id {
			return o
		}
	}
	return nil
}

// publish atomically replaces the object list. Every structural mutation is
// computed fully before this point, so a failed operation never leaves a
// half-updated scene.
func (e *Engine) publish(objects []*Object) {
	e.objects = objects
}

// remesh re-triangulates a solid at display tolerance.
func (e *Engine) remesh(s Solid) (*Mesh, error) {
	m, err := e.kernel.Mesh(s, e.cfg.Mesh.Tolerance, e.cfg.Mesh.AngularTolerance)
	if err != nil {
		return nil, fmt.Errorf("meshing solid: %w", err)
	}
	return m, nil
}

// addPrimitive finishes construction of a new object: mesh the solid,
// record nominal size, append to the scene.
func (e *Engine) addPrimitive(o *Object, s Solid, size r3.Vec) (*Object, error) {
	m, err := e.remesh(s)
	if err != nil {
		e.kernel.Release(s)
		return nil, err
	}
	o.Solid = s
	o.Mesh = m
	o.Size = size
	e.objects = append(e.objects, o)
	return o, nil
}

// AddBox creates a box primitive centered at position.
func (e *Engine) AddBox(name string, size, position, rotation r3.Vec) (*Object, error) {
	s, err := e.kernel.Box(size)
	if err != nil {
		return nil, fmt.Errorf("box %q: %w", name, err)
	}
	o := newObject(name, PrimitiveBox)
	o.Position = position
	o.Rotation = rotation
	return e.addPrimitive(o, s, size)
}

// AddCylinder creates a cylinder primitive (axis along Z) centered at
// position.
func (e *Engine) AddCylinder(name string, height, radius float64, position, rotation r3.Vec) (*Object, error) {
	s, err := e.kernel.Cylinder(height, radius)
	if err != nil {
		return nil, fmt.Errorf("cylinder %q: %w", name, err)
	}
	o := newObject(name, PrimitiveCylinder)
	o.Position = position
	o.Rotation = rotation
	return e.addPrimitive(o, s, r3.Vec{X: 2 * radius, Y: 2 * radius, Z: height})
}

// AddSphere creates a sphere primitive centered at position.
func (e *Engine) AddSphere(name string, radius float64, position r3.Vec) (*Object, error) {
	s, err := e.kernel.Sphere(radius)
	if err != nil {
		return nil, fmt.Errorf("sphere %q: %w", name, err)
	}
	o := newObject(name, PrimitiveSphere)
	o.Position = position
	d := 2 * radius
	return e.addPrimitive(o, s, r3.Vec{X: d, Y: d, Z: d})
}

// AddHelper creates an object with no kernel solid. Helpers are ignored by
// collision scanning.
func (e *Engine) AddHelper(name string, position r3.Vec) *Object {
	o := newObject(name, "")
	o.Position = position
	e.objects = append(e.objects, o)
	return o
}

// SetGroup links two objects as reference siblings so they are never cut
// against each other.
func (e *Engine) SetGroup(a, b *Object, groupID string) {
	a.GroupID = groupID
	b.GroupID = groupID
}
