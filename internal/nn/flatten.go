package nn

import (
	"fmt"

	"github.com/backprop-ml/backprop/internal/tensor"
)

// Flatten reshapes [batch, d1, d2, ...] to [batch, d1*d2*...].
//
// It is purely a view-shape operation: no value changes in either direction,
// and Backward simply restores the forward input's shape.
type Flatten struct{}

// NewFlatten creates a new Flatten operator.
func NewFlatten() *Flatten {
	return &Flatten{}
}

// Forward reshapes the input to two dimensions, keeping the batch axis.
func (f *Flatten) Forward(input *tensor.Tensor) *tensor.Tensor {
	shape := input.Shape()
	if len(shape) < 2 {
		panic(fmt.Sprintf("flatten: expected at least 2-D input, got %v", shape))
	}
	batch := shape[0]
	return tensor.Reshape(input, tensor.Shape{batch, input.NumElements() / batch})
}

// Backward reshapes the gradient back to the forward input's shape.
func (f *Flatten) Backward(outGrad, input *tensor.Tensor) *tensor.Tensor {
	if outGrad.NumElements() != input.NumElements() {
		panicShape("flatten", input.Shape(), outGrad.Shape())
	}
	return tensor.Reshape(outGrad, input.Shape())
}
