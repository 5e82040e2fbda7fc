package sculpt

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/sculpt-engine/sculpt-engine/sculpt/internal/testutil"
	"github.com/sculpt-engine/sculpt-engine/sculpt/journal"
)

func TestBooleanPass_TwoOverlappingBoxes(t *testing.T) {
	// A at the origin sized 100x100x100, B at (50,0,0) same size: one pass
	// cuts B out of A, removes B, and records a corner-based relative
	// offset of (50,0,0).
	e, _ := newTestEngine()
	size := r3.Vec{X: 100, Y: 100, Z: 100}
	a := addBox(t, e, "a", size, r3.Vec{})
	b := addBox(t, e, "b", size, r3.Vec{X: 50})

	res, err := e.CheckAndPerformBooleanOperations()
	require.NoError(t, err)
	require.NotNil(t, res)

	assert.Equal(t, b.ID, res.RemovedID)
	require.Len(t, e.Objects(), 1)

	parent := e.Objects()[0]
	assert.Equal(t, a.ID, parent.ID, "parent keeps its identity")
	require.Len(t, parent.Subtractions, 1)

	rec := parent.Subtractions[0]
	testutil.AssertVecEqual(t, "relative offset", r3.Vec{X: 50}, rec.Offset, 1e-9)
	assert.Equal(t, AnchorCenter, rec.Anchor)
	testutil.AssertVecEqual(t, "cutter size", size, rec.Size, 1e-9)
	testutil.AssertVecEqual(t, "cutter scale", r3.Vec{X: 1, Y: 1, Z: 1}, rec.Scale, 1e-9)

	// The parent's solid is the L-shaped difference: one cut spanning the
	// overlap region in the parent's local frame.
	cuts := canonicalCuts(parent.Solid)
	require.Len(t, cuts, 1)
	assert.True(t, boxesEqual(cuts[0],
		fakeBox{min: r3.Vec{X: 0, Y: -50, Z: -50}, max: r3.Vec{X: 100, Y: 50, Z: 50}}, 1e-9))
}

func TestBooleanPass_SphereCutterKeepsItsKind(t *testing.T) {
	// A sphere cutter must be rebuilt as a sphere during replay, not as a
	// box of its bounds.
	e, k := newTestEngine()
	a := addBox(t, e, "a", r3.Vec{X: 100, Y: 100, Z: 100}, r3.Vec{})
	_, err := e.AddSphere("b", 20, r3.Vec{X: 50})
	require.NoError(t, err)
	require.Equal(t, 1, k.sphereCalls)

	res, err := e.CheckAndPerformBooleanOperations()
	require.NoError(t, err)
	require.NotNil(t, res)

	live := e.Find(a.ID)
	require.Len(t, live.Subtractions, 1)
	assert.Equal(t, PrimitiveSphere, live.Subtractions[0].CutterKind)
	assert.Equal(t, 2, k.sphereCalls, "replay reconstructs the cutter through its own constructor")
	assert.Equal(t, 2, k.boxCalls, "boxes built only for the parent and its rebuilt base")

	// A later resize replays through the same constructor again.
	require.NoError(t, e.ResizeObject(a.ID, r3.Vec{X: 200, Y: 100, Z: 100}))
	assert.Equal(t, 3, k.sphereCalls)
}

func TestBooleanPass_NoCollisionIsANoOp(t *testing.T) {
	e, _ := newTestEngine()
	size := r3.Vec{X: 10, Y: 10, Z: 10}
	addBox(t, e, "a", size, r3.Vec{})
	addBox(t, e, "b", size, r3.Vec{X: 100})

	res, err := e.CheckAndPerformBooleanOperations()
	require.NoError(t, err)
	assert.Nil(t, res)
	assert.Len(t, e.Objects(), 2)
}

func TestBooleanPass_SingleMutationPerPass(t *testing.T) {
	// Three mutually overlapping objects: one invocation changes at most
	// one pair; a second invocation resolves the remaining overlap.
	e, _ := newTestEngine()
	size := r3.Vec{X: 100, Y: 100, Z: 100}
	addBox(t, e, "a", size, r3.Vec{})
	addBox(t, e, "b", size, r3.Vec{X: 40})
	addBox(t, e, "c", size, r3.Vec{X: 80})

	res, err := e.CheckAndPerformBooleanOperations()
	require.NoError(t, err)
	require.NotNil(t, res)
	assert.Len(t, e.Objects(), 2, "exactly one object removed per pass")

	res, err = e.CheckAndPerformBooleanOperations()
	require.NoError(t, err)
	require.NotNil(t, res)
	assert.Len(t, e.Objects(), 1)

	res, err = e.CheckAndPerformBooleanOperations()
	require.NoError(t, err)
	assert.Nil(t, res, "no overlap remains")
}

func TestBooleanPass_KernelFailureLeavesSceneUntouched(t *testing.T) {
	e, k := newTestEngine()
	size := r3.Vec{X: 100, Y: 100, Z: 100}
	a := addBox(t, e, "a", size, r3.Vec{})
	b := addBox(t, e, "b", size, r3.Vec{X: 50})

	j := journal.New(journal.LevelOps)
	e.SetJournal(j)

	k.failCut = fmt.Errorf("non-manifold input")
	res, err := e.CheckAndPerformBooleanOperations()
	require.NoError(t, err, "a failed pair is recovered, not surfaced")
	assert.Nil(t, res)

	// Scene exactly as it was: both objects present, no records, solids
	// untouched.
	require.Len(t, e.Objects(), 2)
	assert.Same(t, a, e.Objects()[0])
	assert.Same(t, b, e.Objects()[1])
	assert.Empty(t, a.Subtractions)
	assert.False(t, a.Solid.(*fakeSolid).released)
	assert.False(t, b.Solid.(*fakeSolid).released)

	// Reported via the diagnostic channel.
	require.Len(t, j.Cuts, 1)
	assert.False(t, j.Cuts[0].Succeeded)
	assert.Contains(t, j.Cuts[0].Reason, "non-manifold")
}

func TestBooleanPass_ReleasesConsumedSolids(t *testing.T) {
	e, k := newTestEngine()
	size := r3.Vec{X: 100, Y: 100, Z: 100}
	a := addBox(t, e, "a", size, r3.Vec{})
	b := addBox(t, e, "b", size, r3.Vec{X: 50})
	oldParentSolid, cutterSolid := a.Solid.(*fakeSolid), b.Solid.(*fakeSolid)

	_, err := e.CheckAndPerformBooleanOperations()
	require.NoError(t, err)

	assert.True(t, oldParentSolid.released, "replaced parent solid is released")
	assert.True(t, cutterSolid.released, "removed cutter solid is released")
	assert.False(t, e.Objects()[0].Solid.(*fakeSolid).released)
	assert.GreaterOrEqual(t, k.releases, 2)
}

func TestResolveAll_RunsToFixpoint(t *testing.T) {
	e, _ := newTestEngine()
	size := r3.Vec{X: 100, Y: 100, Z: 100}
	addBox(t, e, "a", size, r3.Vec{})
	addBox(t, e, "b", size, r3.Vec{X: 40})
	addBox(t, e, "c", size, r3.Vec{X: 80})

	n, err := e.ResolveAll(0)
	require.NoError(t, err)
	assert.Equal(t, 2, n)
	assert.Len(t, e.Objects(), 1)
}

func TestBooleanPass_MeshTracksSolid(t *testing.T) {
	// The renderable mesh is re-derived from the new solid in the same
	// pass; they never diverge after a structural edit completes.
	e, _ := newTestEngine()
	size := r3.Vec{X: 100, Y: 100, Z: 100}
	a := addBox(t, e, "a", size, r3.Vec{})
	addBox(t, e, "b", size, r3.Vec{X: 50})
	oldMesh := a.Mesh

	_, err := e.CheckAndPerformBooleanOperations()
	require.NoError(t, err)

	parent := e.Objects()[0]
	assert.NotSame(t, oldMesh, parent.Mesh)
	min, max, ok := parent.Mesh.Bounds()
	require.True(t, ok)
	testutil.AssertVecEqual(t, "mesh min", r3.Vec{X: -50, Y: -50, Z: -50}, min, 1e-9)
	testutil.AssertVecEqual(t, "mesh max", r3.Vec{X: 50, Y: 50, Z: 50}, max, 1e-9)
}
