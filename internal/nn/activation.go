package nn

import (
	"math"

	"github.com/backprop-ml/backprop/internal/tensor"
)

// ReLU is the rectified linear activation: max(0, x).
//
// ReLU is stateless: Backward only needs the upstream gradient and the same
// input that produced it.
//
// Example:
//
//	relu := nn.NewReLU()
//	y := relu.Forward(x)
//	dx := relu.Backward(dy, x)
type ReLU struct{}

// NewReLU creates a new ReLU operator.
func NewReLU() *ReLU {
	return &ReLU{}
}

// Forward computes max(0, input) elementwise.
func (r *ReLU) Forward(input *tensor.Tensor) *tensor.Tensor {
	out := input.Clone()
	data := out.Data()
	for i, v := range data {
		if v < 0 {
			data[i] = 0
		}
	}
	return out
}

// Backward passes the gradient through every position where input >= 0 and
// blocks it elsewhere. The tie at exactly 0 passes the gradient through,
// matching the subgradient convention the gradient-check tests assume.
func (r *ReLU) Backward(outGrad, input *tensor.Tensor) *tensor.Tensor {
	if !outGrad.Shape().Equal(input.Shape()) {
		panicShape("relu", input.Shape(), outGrad.Shape())
	}
	in := input.Data()
	grad := outGrad.Clone()
	data := grad.Data()
	for i := range data {
		if in[i] < 0 {
			data[i] = 0
		}
	}
	return grad
}

// sigmoid applies the logistic function elementwise.
func sigmoid(t *tensor.Tensor) *tensor.Tensor {
	out := t.Clone()
	data := out.Data()
	for i, v := range data {
		data[i] = 1 / (1 + math.Exp(-v))
	}
	return out
}

// tanh applies the hyperbolic tangent elementwise.
func tanh(t *tensor.Tensor) *tensor.Tensor {
	out := t.Clone()
	data := out.Data()
	for i, v := range data {
		data[i] = math.Tanh(v)
	}
	return out
}
