package sculpt

import (
	"math"

	"gonum.org/v1/gonum/spatial/r3"
)

// Transform composition order is fixed everywhere in the engine: scale,
// then rotate about X, then Y, then Z, then translate. ToLocal applies the
// exact reverse order with negated angles and reciprocal scale, so
// ToLocal(ToWorld(s, p, r, sc), p, r, sc) reproduces s within kernel
// tolerance. Identity components are skipped; that is an optimization only
// and never changes the result.

var identityScale = r3.Vec{X: 1, Y: 1, Z: 1}

// ToWorld moves a solid from its local frame into the world frame.
// Rotation is an Euler axis-angle triple in radians.
func ToWorld(k Kernel, s Solid, position, rotation, scale r3.Vec) Solid {
	if scale != identityScale {
		s = k.Scale(s, scale)
	}
	if rotation.X != 0 {
		s = k.RotateX(s, rotation.X)
	}
	if rotation.Y != 0 {
		s = k.RotateY(s, rotation.Y)
	}
	if rotation.Z != 0 {
		s = k.RotateZ(s, rotation.Z)
	}
	if position != (r3.Vec{}) {
		s = k.Translate(s, position)
	}
	return s
}

// ToLocal is the exact inverse of ToWorld for the same parameters.
func ToLocal(k Kernel, s Solid, position, rotation, scale r3.Vec) Solid {
	if position != (r3.Vec{}) {
		s = k.Translate(s, r3.Scale(-1, position))
	}
	if rotation.Z != 0 {
		s = k.RotateZ(s, -rotation.Z)
	}
	if rotation.Y != 0 {
		s = k.RotateY(s, -rotation.Y)
	}
	if rotation.X != 0 {
		s = k.RotateX(s, -rotation.X)
	}
	if scale != identityScale {
		s = k.Scale(s, r3.Vec{X: 1 / scale.X, Y: 1 / scale.Y, Z: 1 / scale.Z})
	}
	return s
}

// rotX rotates p about the X axis by a radians.
func rotX(p r3.Vec, a float64) r3.Vec {
	sin, cos := math.Sin(a), math.Cos(a)
	return r3.Vec{X: p.X, Y: p.Y*cos - p.Z*sin, Z: p.Y*sin + p.Z*cos}
}

// rotY rotates p about the Y axis by a radians.
func rotY(p r3.Vec, a float64) r3.Vec {
	sin, cos := math.Sin(a), math.Cos(a)
	return r3.Vec{X: p.X*cos + p.Z*sin, Y: p.Y, Z: -p.X*sin + p.Z*cos}
}

// rotZ rotates p about the Z axis by a radians.
func rotZ(p r3.Vec, a float64) r3.Vec {
	sin, cos := math.Sin(a), math.Cos(a)
	return r3.Vec{X: p.X*cos - p.Y*sin, Y: p.X*sin + p.Y*cos, Z: p.Z}
}

func mulElem(a, b r3.Vec) r3.Vec {
	return r3.Vec{X: a.X * b.X, Y: a.Y * b.Y, Z: a.Z * b.Z}
}

func divElem(a, b r3.Vec) r3.Vec {
	return r3.Vec{X: a.X / b.X, Y: a.Y / b.Y, Z: a.Z / b.Z}
}

// PointToWorld applies the same composition as ToWorld to a single point.
func PointToWorld(p, position, rotation, scale r3.Vec) r3.Vec {
	p = mulElem(p, scale)
	p = rotX(p, rotation.X)
	p = rotY(p, rotation.Y)
	p = rotZ(p, rotation.Z)
	return r3.Add(p, position)
}

// PointToLocal is the exact inverse of PointToWorld.
func PointToLocal(p, position, rotation, scale r3.Vec) r3.Vec {
	p = r3.Sub(p, position)
	p = rotZ(p, -rotation.Z)
	p = rotY(p, -rotation.Y)
	p = rotX(p, -rotation.X)
	return divElem(p, scale)
}

// DirToWorld transforms a direction (no translation). The result is
// renormalized because non-uniform scale does not preserve length.
func DirToWorld(d, rotation, scale r3.Vec) r3.Vec {
	d = mulElem(d, scale)
	d = rotX(d, rotation.X)
	d = rotY(d, rotation.Y)
	d = rotZ(d, rotation.Z)
	return r3.Unit(d)
}

// DirToLocal is the inverse of DirToWorld, renormalized.
func DirToLocal(d, rotation, scale r3.Vec) r3.Vec {
	d = rotZ(d, -rotation.Z)
	d = rotY(d, -rotation.Y)
	d = rotX(d, -rotation.X)
	d = divElem(d, scale)
	return r3.Unit(d)
}
