// register.go wires the sdfx kernel into the sculpt package's registration
// variable (NewKernelFunc). This init() runs when any package imports
// sculpt/sdfkernel, breaking the import cycle between sculpt/ (interface
// owner) and sculpt/sdfkernel/ (implementation). Production code imports
// sculpt/sdfkernel directly; engine tests use their own kernel double.
package sdfkernel

import "github.com/sculpt-engine/sculpt-engine/sculpt"

func init() {
	sculpt.NewKernelFunc = func() (sculpt.Kernel, error) {
		return New(), nil
	}
}
