package nn

import (
	"fmt"

	"github.com/backprop-ml/backprop/internal/tensor"
)

// MatMul multiplies a batch of rows by a weight matrix:
//
//	input [batch, in] x weights [in, out] -> output [batch, out]
//
// The weights are owned by the caller; MatMul never updates them.
type MatMul struct{}

// NewMatMul creates a new MatMul operator.
func NewMatMul() *MatMul {
	return &MatMul{}
}

// Forward computes input x weights.
func (m *MatMul) Forward(input, weights *tensor.Tensor) *tensor.Tensor {
	return tensor.MatMul(input, weights)
}

// Backward returns the gradients w.r.t. input and weights:
//
//	inGrad = outGrad x weightsᵀ
//	wGrad  = inputᵀ x outGrad
func (m *MatMul) Backward(outGrad, input, weights *tensor.Tensor) (inGrad, wGrad *tensor.Tensor) {
	inGrad = tensor.MatMul(outGrad, tensor.Transpose(weights))
	wGrad = tensor.MatMul(tensor.Transpose(input), outGrad)
	return inGrad, wGrad
}

// AddBias adds a bias vector to every row of a 2-D tensor:
//
//	input [batch, features] + bias [features] -> output [batch, features]
//
// This is the one place the affine operators broadcast; the broadcast is
// spelled out here rather than hidden in the tensor layer.
type AddBias struct{}

// NewAddBias creates a new AddBias operator.
func NewAddBias() *AddBias {
	return &AddBias{}
}

// Forward broadcasts the bias over the batch axis.
func (a *AddBias) Forward(input, bias *tensor.Tensor) *tensor.Tensor {
	shape := input.Shape()
	if len(shape) != 2 {
		panic(fmt.Sprintf("add_bias: expected 2-D input [batch, features], got %v", shape))
	}
	if bias.Rank() != 1 || bias.Shape()[0] != shape[1] {
		panic(fmt.Sprintf("add_bias: bias shape %v does not match %d features", bias.Shape(), shape[1]))
	}

	out := input.Clone()
	data := out.Data()
	biasData := bias.Data()
	cols := shape[1]
	for i := 0; i < shape[0]; i++ {
		row := data[i*cols : (i+1)*cols]
		for j := range row {
			row[j] += biasData[j]
		}
	}
	return out
}

// Backward returns the gradients w.r.t. input and bias. The input gradient
// is the identity; the bias gradient sums the upstream gradient over the
// batch axis.
func (a *AddBias) Backward(outGrad, input, bias *tensor.Tensor) (inGrad, biasGrad *tensor.Tensor) {
	if !outGrad.Shape().Equal(input.Shape()) {
		panicShape("add_bias", input.Shape(), outGrad.Shape())
	}
	return outGrad.Clone(), tensor.SumAxis0(outGrad)
}

// Linear is the fully connected operator: MatMul followed by AddBias.
//
//	output = input x weights + bias
//
// Input shape:   [batch, in_features]
// Weights shape: [in_features, out_features]
// Bias shape:    [out_features]
// Output shape:  [batch, out_features]
//
// Example:
//
//	linear := nn.NewLinear()
//	y := linear.Forward(x, w, b)
//	dx, dw, db := linear.Backward(dy, x, w, b)
type Linear struct {
	matmul  *MatMul
	addBias *AddBias
}

// NewLinear creates a new fully connected operator.
func NewLinear() *Linear {
	return &Linear{
		matmul:  NewMatMul(),
		addBias: NewAddBias(),
	}
}

// Forward computes input x weights + bias.
func (l *Linear) Forward(input, weights, bias *tensor.Tensor) *tensor.Tensor {
	out := l.matmul.Forward(input, weights)
	return l.addBias.Forward(out, bias)
}

// Backward applies the two backward steps in reverse composition order: the
// bias was added last, so its gradient is reduced first and the resulting
// gradient is threaded into the matmul backward.
func (l *Linear) Backward(outGrad, input, weights, bias *tensor.Tensor) (inGrad, wGrad, biasGrad *tensor.Tensor) {
	// The intermediate matmul output is not needed for AddBias.Backward
	// beyond its shape, which equals outGrad's shape.
	matmulOut, biasGrad := l.addBias.Backward(outGrad, outGrad, bias)
	inGrad, wGrad = l.matmul.Backward(matmulOut, input, weights)
	return inGrad, wGrad, biasGrad
}
