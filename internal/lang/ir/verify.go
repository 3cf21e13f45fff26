package ir

import "fmt"

// Verify runs a minimal structural check over fn, standing in for the
// real backend's IR verifier (§4.8 step 4): every basic block must end
// in exactly one terminator, and the function must have at least one
// block. It does not check dominance or type consistency — those are
// enforced by construction in this package's Create* methods.
func Verify(fn *Function) error {
	if len(fn.Blocks) == 0 {
		return fmt.Errorf("function %q has no blocks", fn.Name)
	}
	for _, blk := range fn.Blocks {
		if !blk.Terminated() {
			return fmt.Errorf("function %q: block %q has no terminator", fn.Name, blk.Name)
		}
	}
	return nil
}
