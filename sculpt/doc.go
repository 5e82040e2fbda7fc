// Package sculpt provides the parametric boolean-history engine for the
// sculpt solid modeler.
//
// # Reading Guide
//
// Start with these three files to understand the engine core:
//   - object.go: Object lifecycle, SubtractionRecord and FilletRecord capture
//   - boolean.go: the collision -> cut -> capture -> fillet pipeline pass
//   - history.go: relative-frame replay after resize or subtraction delete
//
// # Architecture
//
// The sculpt package defines interfaces and the orchestration logic; the
// geometry kernel implementation lives in a sub-package:
//   - sculpt/sdfkernel/: signed-distance-field kernel backed by sdfx
//   - sculpt/journal/: operation journal (diagnostic channel)
//
// Sub-packages register their implementations via init() functions that set
// package-level factory variables (NewKernelFunc).
//
// # Key Interfaces
//
// The extension points are small interfaces:
//   - Kernel: primitives, booleans, affine ops, meshing, fillet, face access
//   - Face: per-face normal evaluation and triangulation
//
// # Determinism
//
// The engine is single-threaded and deterministic: one pipeline pass mutates
// at most one colliding pair, pairs are scanned in ascending index order, and
// every structural mutation is computed fully before being published as an
// atomic replacement of the object list. Only kernel initialization is safe
// to request concurrently (see Provider).
package sculpt
