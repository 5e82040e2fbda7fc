package sdfkernel

import (
	"github.com/deadsy/sdfx/render"

	"github.com/sculpt-engine/sculpt-engine/sculpt"
)

// WriteSTL polygonizes the solid at the given tolerance and writes it to
// path as an STL file. Not part of the sculpt.Kernel interface; the CLI
// asserts for it when exporting.
func (k *Kernel) WriteSTL(s sculpt.Solid, path string, tolerance float64) error {
	h, err := unwrap(s)
	if err != nil {
		return err
	}
	render.ToSTL(h.s3, path, render.NewMarchingCubesUniform(meshCells(h.s3, tolerance)))
	return nil
}
