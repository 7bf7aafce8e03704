package nn

import (
	"fmt"

	"github.com/backprop-ml/backprop/internal/tensor"
)

// RNNGradients is the gradient bundle returned by VanillaRNN.Backward.
// Every field is shape-identical to the corresponding forward input.
type RNNGradients struct {
	X               *tensor.Tensor
	PrevH           *tensor.Tensor
	Kernel          *tensor.Tensor
	RecurrentKernel *tensor.Tensor
	Bias            *tensor.Tensor
}

// VanillaRNN is a single recurrent cell step:
//
//	h = tanh(x·kernel + prevH·recurrentKernel + bias)
//
// Shapes:
//
//	x:               [batch, in_features]
//	prevH:           [batch, units]
//	kernel:          [in_features, units]
//	recurrentKernel: [units, units]
//	bias:            [units]
//	h:               [batch, units]
//
// The cell is stateless; sequencing steps over time and carrying the hidden
// state is the calling model's job.
type VanillaRNN struct{}

// NewVanillaRNN creates a new vanilla RNN cell operator.
func NewVanillaRNN() *VanillaRNN {
	return &VanillaRNN{}
}

func (r *VanillaRNN) checkShapes(x, prevH, kernel, recurrentKernel, bias *tensor.Tensor) {
	if x.Rank() != 2 || prevH.Rank() != 2 {
		panic(fmt.Sprintf("vanilla_rnn: expected 2-D x and prevH, got %v and %v", x.Shape(), prevH.Shape()))
	}
	batch, features := x.Shape()[0], x.Shape()[1]
	units := prevH.Shape()[1]
	if prevH.Shape()[0] != batch {
		panic(fmt.Sprintf("vanilla_rnn: batch mismatch: x %v vs prevH %v", x.Shape(), prevH.Shape()))
	}
	if !kernel.Shape().Equal(tensor.Shape{features, units}) {
		panic(fmt.Sprintf("vanilla_rnn: kernel shape %v != expected [%d %d]", kernel.Shape(), features, units))
	}
	if !recurrentKernel.Shape().Equal(tensor.Shape{units, units}) {
		panic(fmt.Sprintf("vanilla_rnn: recurrent kernel shape %v != expected [%d %d]", recurrentKernel.Shape(), units, units))
	}
	if bias.Rank() != 1 || bias.Shape()[0] != units {
		panic(fmt.Sprintf("vanilla_rnn: bias shape %v != expected [%d]", bias.Shape(), units))
	}
}

// Forward computes the next hidden state.
func (r *VanillaRNN) Forward(x, prevH, kernel, recurrentKernel, bias *tensor.Tensor) *tensor.Tensor {
	r.checkShapes(x, prevH, kernel, recurrentKernel, bias)
	pre := tensor.Add(tensor.MatMul(x, kernel), tensor.MatMul(prevH, recurrentKernel))
	pre = NewAddBias().Forward(pre, bias)
	return tanh(pre)
}

// Backward recomputes the hidden state, forms the tanh-gate gradient
// dtanh = outGrad * (1 - h²), and propagates it to every input via the chain
// rule. NaNs appearing in intermediate products are scrubbed to zero before
// use rather than propagated.
func (r *VanillaRNN) Backward(outGrad, x, prevH, kernel, recurrentKernel, bias *tensor.Tensor) RNNGradients {
	r.checkShapes(x, prevH, kernel, recurrentKernel, bias)
	if !outGrad.Shape().Equal(prevH.Shape()) {
		panicShape("vanilla_rnn", prevH.Shape(), outGrad.Shape())
	}

	h := r.Forward(x, prevH, kernel, recurrentKernel, bias)

	// dtanh = outGrad * (1 - h²), NaN-scrubbed.
	one := tensor.Ones(h.Shape())
	dtanh := tensor.NaNToZero(tensor.Mul(outGrad, tensor.Sub(one, tensor.Mul(h, h))))

	return RNNGradients{
		X:               tensor.MatMul(dtanh, tensor.Transpose(kernel)),
		PrevH:           tensor.MatMul(dtanh, tensor.Transpose(recurrentKernel)),
		Kernel:          tensor.MatMul(tensor.Transpose(tensor.NaNToZero(x)), dtanh),
		RecurrentKernel: tensor.MatMul(tensor.Transpose(tensor.NaNToZero(prevH)), dtanh),
		Bias:            tensor.SumAxis0(dtanh),
	}
}
