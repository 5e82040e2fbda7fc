package sculpt

import "gonum.org/v1/gonum/spatial/r3"

// aabb is a world-space axis-aligned bounding box.
type aabb struct {
	min, max r3.Vec
}

func (b aabb) intersects(o aabb) bool {
	return b.min.X <= o.max.X && b.max.X >= o.min.X &&
		b.min.Y <= o.max.Y && b.max.Y >= o.min.Y &&
		b.min.Z <= o.max.Z && b.max.Z >= o.min.Z
}

// worldAABB computes the object's bounding box by transforming every mesh
// vertex into world space. ok is false for objects without a mesh.
func worldAABB(o *Object) (aabb, bool) {
	if o.Mesh == nil || o.Mesh.VertexCount() == 0 {
		return aabb{}, false
	}
	var box aabb
	for i := 0; i < o.Mesh.VertexCount(); i++ {
		w := PointToWorld(o.Mesh.Vertex(i), o.Position, o.Rotation, o.Scale)
		if i == 0 {
			box = aabb{min: w, max: w}
			continue
		}
		box.min = r3.Vec{X: minf(box.min.X, w.X), Y: minf(box.min.Y, w.Y), Z: minf(box.min.Z, w.Z)}
		box.max = r3.Vec{X: maxf(box.max.X, w.X), Y: maxf(box.max.Y, w.Y), Z: maxf(box.max.Z, w.Z)}
	}
	return box, true
}

// findCollidingPair scans object pairs in ascending index order and returns
// the indices of the first pair whose world bounding volumes intersect.
// Objects lacking a kernel solid or a mesh (purely visual helpers) are
// skipped without error, as are pairs sharing a group identity. At most one
// structural change happens per pipeline pass, so the first hit is enough;
// the scan is O(n^2) which is fine at interactive scene sizes.
func findCollidingPair(objects []*Object) (parent, cutter int, found bool) {
	boxes := make([]*aabb, len(objects))
	eligible := func(i int) *aabb {
		if boxes[i] != nil {
			return boxes[i]
		}
		o := objects[i]
		if o.Solid == nil {
			return nil
		}
		b, ok := worldAABB(o)
		if !ok {
			return nil
		}
		boxes[i] = &b
		return boxes[i]
	}

	for i := 0; i < len(objects); i++ {
		bi := eligible(i)
		if bi == nil {
			continue
		}
		for j := i + 1; j < len(objects); j++ {
			if objects[i].GroupID != "" && objects[i].GroupID == objects[j].GroupID {
				continue
			}
			bj := eligible(j)
			if bj == nil {
				continue
			}
			if bi.intersects(*bj) {
				return i, j, true
			}
		}
	}
	return 0, 0, false
}
