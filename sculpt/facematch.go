package sculpt

import (
	"fmt"

	"github.com/sirupsen/logrus"
	"gonum.org/v1/gonum/spatial/r3"
)

// FaceCandidate is a kernel face provisionally matching a target
// orientation. Ephemeral: produced and consumed within one MatchFace call,
// never persisted.
type FaceCandidate struct {
	Index     int     // position in the kernel's face list for this solid
	Face      Face    // the kernel face itself
	Agreement float64 // dot product of face normal with the target normal, (cutoff, 1]
	Centroid  *r3.Vec // average of triangulated face vertices; nil when the face could not be meshed
}

// FaceMatch is the selected face of a successful MatchFace call.
type FaceMatch struct {
	Index    int
	Face     Face
	Centroid *r3.Vec
}

// MatchFace resolves a target normal/center to the best-matching face of a
// solid. The target must be expressed in the same frame as the solid.
//
// Two-stage filter-then-rank: a face is a candidate only when the dot
// product of its midpoint normal with the target normal is strictly greater
// than the cutoff (0.7, ~45 degrees); among candidates the one whose
// centroid is closest to the target center wins. An angle-only test is not
// enough: opposite faces of a thin solid both point roughly the right way,
// and a parallel but distant face must lose on distance.
//
// ok is false when no face passes the cutoff; that is a defined outcome,
// not an error, and callers fall back (bounding-box proxy) or skip.
func MatchFace(k Kernel, s Solid, targetNormal, targetCenter r3.Vec, cfg EngineConfig) (FaceMatch, bool, error) {
	cfg = cfg.withDefaults()

	faces, err := k.Faces(s)
	if err != nil {
		return FaceMatch{}, false, fmt.Errorf("enumerating faces: %w", err)
	}

	var candidates []FaceCandidate
	for i, f := range faces {
		n := f.NormalAt(0.5, 0.5)
		dot := r3.Dot(n, targetNormal)
		if dot <= cfg.Match.NormalCutoff {
			continue
		}
		cand := FaceCandidate{Index: i, Face: f, Agreement: dot}
		if fm, err := f.Mesh(cfg.Mesh.CoarseTolerance, cfg.Mesh.AngularTolerance); err == nil {
			if c, ok := fm.Centroid(); ok {
				cand.Centroid = &c
			}
		} else {
			// A face that cannot be triangulated keeps a nil centroid
			// but remains a candidate.
			logrus.Debugf("face %d: centroid unavailable: %v", i, err)
		}
		candidates = append(candidates, cand)
	}

	switch len(candidates) {
	case 0:
		return FaceMatch{}, false, nil
	case 1:
		c := candidates[0]
		return FaceMatch{Index: c.Index, Face: c.Face, Centroid: c.Centroid}, true, nil
	}

	// Rank by centroid distance to the target center. Candidates without a
	// usable centroid are selected only if nothing else has one, in which
	// case the first candidate found wins. Exact distance ties break to
	// the lowest face index, which the ascending scan already guarantees.
	best := -1
	bestDist := 0.0
	for i, c := range candidates {
		if c.Centroid == nil {
			continue
		}
		d := r3.Norm(r3.Sub(*c.Centroid, targetCenter))
		if best == -1 || d < bestDist {
			best = i
			bestDist = d
		}
	}
	if best == -1 {
		best = 0
	}
	c := candidates[best]
	return FaceMatch{Index: c.Index, Face: c.Face, Centroid: c.Centroid}, true, nil
}
