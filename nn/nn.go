// Copyright 2025 Backprop ML Library. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

package nn

import (
	"math/rand"

	"github.com/backprop-ml/backprop/internal/nn"
	"github.com/backprop-ml/backprop/internal/tensor"
)

// Layers

// MatMul is the matrix-product operator of a fully connected layer.
type MatMul = nn.MatMul

// NewMatMul creates a new matrix-multiply operator.
func NewMatMul() *MatMul {
	return nn.NewMatMul()
}

// AddBias adds a 1-D bias row-wise to a 2-D input.
type AddBias = nn.AddBias

// NewAddBias creates a new bias-add operator.
func NewAddBias() *AddBias {
	return nn.NewAddBias()
}

// Linear is a fully connected layer: input·weights + bias.
type Linear = nn.Linear

// NewLinear creates a new fully connected layer.
//
// Example:
//
//	layer := nn.NewLinear()
//	out := layer.Forward(x, weights, bias) // [batch, in]·[in, out] + [out]
func NewLinear() *Linear {
	return nn.NewLinear()
}

// Conv2DConfig holds the geometry of a 2-D convolution. Pad is the
// total padding per spatial axis and must be even.
type Conv2DConfig = nn.Conv2DConfig

// Conv2D is a 2-D convolution over [batch, channels, height, width].
type Conv2D = nn.Conv2D

// NewConv2D creates a 2-D convolution operator.
//
// Example:
//
//	conv := nn.NewConv2D(nn.Conv2DConfig{
//	    KernelH: 3, KernelW: 3, Stride: 1, Pad: 2,
//	    InChannels: 1, OutChannels: 32,
//	})
func NewConv2D(cfg Conv2DConfig) *Conv2D {
	return nn.NewConv2D(cfg)
}

// PoolType selects the patch reduction of a Pool2D operator.
type PoolType = nn.PoolType

// Pool types.
const (
	MaxPool PoolType = nn.MaxPool
	AvgPool PoolType = nn.AvgPool
)

// Pool2DConfig holds the geometry of a 2-D pooling operator.
type Pool2DConfig = nn.Pool2DConfig

// Pool2D is a 2-D max or average pooling operator.
type Pool2D = nn.Pool2D

// NewPool2D creates a 2-D pooling operator.
//
// Example:
//
//	pool := nn.NewPool2D(nn.Pool2DConfig{
//	    Type: nn.MaxPool, PoolH: 2, PoolW: 2, Stride: 2,
//	})
func NewPool2D(cfg Pool2DConfig) *Pool2D {
	return nn.NewPool2D(cfg)
}

// Flatten collapses all non-batch dimensions into one.
type Flatten = nn.Flatten

// NewFlatten creates a new flatten operator.
func NewFlatten() *Flatten {
	return nn.NewFlatten()
}

// Activations

// ReLU is the rectified linear activation.
type ReLU = nn.ReLU

// NewReLU creates a new ReLU operator.
func NewReLU() *ReLU {
	return nn.NewReLU()
}

// Regularization

// Dropout randomly zeroes elements during training and rescales the
// survivors by 1/(1-rate). Unlike the other operators it is stateful:
// Forward stores the mask that Backward reuses.
type Dropout = nn.Dropout

// NewDropout creates a dropout operator that draws masks from rng.
func NewDropout(rate float64, rng *rand.Rand) *Dropout {
	return nn.NewDropout(rate, rng)
}

// NewSeededDropout creates a dropout operator that re-seeds its
// generator before every Forward, so each call produces the same mask.
func NewSeededDropout(rate float64, seed int64) *Dropout {
	return nn.NewSeededDropout(rate, seed)
}

// Recurrent cells

// RNNGradients bundles the gradients of one VanillaRNN step.
type RNNGradients = nn.RNNGradients

// VanillaRNN is a single tanh recurrent step:
// h = tanh(x·kernel + prevH·recurrentKernel + bias).
type VanillaRNN = nn.VanillaRNN

// NewVanillaRNN creates a new vanilla RNN cell.
func NewVanillaRNN() *VanillaRNN {
	return nn.NewVanillaRNN()
}

// GRUGradients bundles the gradients of one GRU step.
type GRUGradients = nn.GRUGradients

// GRU is a single gated recurrent unit step with kernels packed
// column-wise in gate order z, r, h̃.
type GRU = nn.GRU

// NewGRU creates a new GRU cell.
func NewGRU() *GRU {
	return nn.NewGRU()
}

// Loss

// SoftmaxCrossEntropy fuses softmax with negative log-likelihood.
type SoftmaxCrossEntropy = nn.SoftmaxCrossEntropy

// NewSoftmaxCrossEntropy creates a new softmax-cross-entropy loss.
func NewSoftmaxCrossEntropy() *SoftmaxCrossEntropy {
	return nn.NewSoftmaxCrossEntropy()
}

// Accuracy returns the fraction of logit rows whose argmax equals the
// corresponding label.
func Accuracy(logits *tensor.Tensor, labels []int) float64 {
	return nn.Accuracy(logits, labels)
}
