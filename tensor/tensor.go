// Copyright 2025 Backprop ML Library. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

package tensor

import (
	"math/rand"

	"github.com/backprop-ml/backprop/internal/tensor"
)

// Type aliases for public API

// Shape represents the dimensions of a tensor.
// Example: Shape{2, 3, 4} represents a 3D tensor with dimensions 2×3×4.
type Shape = tensor.Shape

// Tensor is a dense, row-major float64 array with a fixed shape.
type Tensor = tensor.Tensor

// Creation

// New creates a zero-filled tensor with the given shape.
func New(shape Shape) *Tensor {
	return tensor.New(shape)
}

// FromSlice creates a tensor from a Go slice. The slice is copied.
//
// Example:
//
//	t, err := tensor.FromSlice([]float64{1, 2, 3, 4}, tensor.Shape{2, 2})
func FromSlice(data []float64, shape Shape) (*Tensor, error) {
	return tensor.FromSlice(data, shape)
}

// Zeros creates a tensor filled with zeros.
func Zeros(shape Shape) *Tensor {
	return tensor.Zeros(shape)
}

// Ones creates a tensor filled with ones.
func Ones(shape Shape) *Tensor {
	return tensor.Ones(shape)
}

// Full creates a tensor filled with the given value.
func Full(shape Shape, value float64) *Tensor {
	return tensor.Full(shape, value)
}

// Randn creates a tensor of standard normal samples drawn from rng.
func Randn(shape Shape, rng *rand.Rand) *Tensor {
	return tensor.Randn(shape, rng)
}

// RandUniform creates a tensor of uniform [0, 1) samples drawn from rng.
func RandUniform(shape Shape, rng *rand.Rand) *Tensor {
	return tensor.RandUniform(shape, rng)
}

// Element-wise operations

// Add returns the element-wise sum a + b.
func Add(a, b *Tensor) *Tensor {
	return tensor.Add(a, b)
}

// Sub returns the element-wise difference a - b.
func Sub(a, b *Tensor) *Tensor {
	return tensor.Sub(a, b)
}

// Mul returns the element-wise (Hadamard) product a * b.
func Mul(a, b *Tensor) *Tensor {
	return tensor.Mul(a, b)
}

// Scale returns t with every element multiplied by s.
func Scale(t *Tensor, s float64) *Tensor {
	return tensor.Scale(t, s)
}

// AddScalar returns t with s added to every element.
func AddScalar(t *Tensor, s float64) *Tensor {
	return tensor.AddScalar(t, s)
}

// Sum returns the sum of all elements.
func Sum(t *Tensor) float64 {
	return tensor.Sum(t)
}

// Linear algebra

// MatMul returns the matrix product of two 2-D tensors.
func MatMul(a, b *Tensor) *Tensor {
	return tensor.MatMul(a, b)
}

// Transpose returns the transpose of a 2-D tensor.
func Transpose(t *Tensor) *Tensor {
	return tensor.Transpose(t)
}

// SumAxis0 sums a 2-D tensor over its rows, returning a 1-D tensor.
func SumAxis0(t *Tensor) *Tensor {
	return tensor.SumAxis0(t)
}

// Layout

// Reshape returns a copy of t with a new shape of equal element count.
func Reshape(t *Tensor, shape Shape) *Tensor {
	return tensor.Reshape(t, shape)
}

// Pad2D zero-pads the spatial axes of a 4-D [N, C, H, W] tensor by a
// total of padH rows and padW columns.
func Pad2D(t *Tensor, padH, padW int) *Tensor {
	return tensor.Pad2D(t, padH, padW)
}

// Unpad2D strips the margins applied by Pad2D.
func Unpad2D(t *Tensor, padH, padW int) *Tensor {
	return tensor.Unpad2D(t, padH, padW)
}

// ConvOutputSize computes the output size of a sliding-window operator:
// out = floor((in + pad - kernel) / stride) + 1, where pad is total.
func ConvOutputSize(in, kernel, pad, stride int) int {
	return tensor.ConvOutputSize(in, kernel, pad, stride)
}

// Im2Col rearranges the receptive fields of a padded [N, C, H, W]
// tensor into columns [N, C, kernelH*kernelW, outH*outW].
func Im2Col(x *Tensor, kernelH, kernelW, stride int) *Tensor {
	return tensor.Im2Col(x, kernelH, kernelW, stride)
}

// Col2Im scatters columns back into a padded [N, C, H, W] tensor,
// accumulating overlapping contributions.
func Col2Im(cols *Tensor, paddedH, paddedW, kernelH, kernelW, stride int) *Tensor {
	return tensor.Col2Im(cols, paddedH, paddedW, kernelH, kernelW, stride)
}
