// Package nn implements neural-network operators with hand-derived backward
// passes over dense float64 tensors.
//
// Every operator follows the same contract:
//
//   - Forward(inputs...) computes the output tensor without mutating any
//     input.
//   - Backward(outGrad, inputs...) must receive the *same* input values that
//     produced outGrad upstream, and returns one gradient per differentiable
//     input, each shape-identical to that input.
//
// Operators are pure functions of their declared inputs and freely reentrant,
// with one deliberate exception: Dropout holds the mask sampled by its last
// training-mode Forward as hidden state for the paired Backward, so a single
// Dropout instance must not be shared across concurrent forward/backward
// pairs.
//
// Parameters (weights, biases, recurrent kernels) are owned by the calling
// model; operators never update them. Shape and configuration mismatches are
// programming errors and panic immediately rather than producing silently
// wrong output.
package nn

import (
	"fmt"

	"github.com/backprop-ml/backprop/internal/tensor"
)

// panicShape reports a gradient/input shape mismatch for the named operator.
func panicShape(op string, want, got tensor.Shape) {
	panic(fmt.Sprintf("%s: gradient shape %v does not match forward shape %v", op, got, want))
}
