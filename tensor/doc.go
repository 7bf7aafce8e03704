// Copyright 2025 Backprop ML Library. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package tensor provides dense float64 tensors and the reshaping
// primitives the layer operators are built on.
//
// # Overview
//
// Tensors are fixed-shape, row-major arrays. This package provides:
//   - Creation: Zeros, Ones, Full, Randn, RandUniform, FromSlice
//   - Element-wise math: Add, Sub, Mul, Scale, AddScalar
//   - Linear algebra: MatMul, Transpose, SumAxis0
//   - Layout: Reshape, Pad2D/Unpad2D, Im2Col/Col2Im
//
// Operations never mutate their inputs; every result is a fresh tensor.
// Shape mismatches are programming errors and panic. Only FromSlice
// returns an error, because its data often comes from outside the
// program.
//
// # Basic Usage
//
//	x := tensor.Zeros(tensor.Shape{2, 3})
//	y := tensor.Ones(tensor.Shape{2, 3})
//	z := tensor.Add(x, y)
//
// # Padding Convention
//
// Pad2D, Unpad2D and ConvOutputSize take *total* padding along an axis.
// The margin splits as floor(pad/2) before the data and the remainder
// after it, so pad=2 adds one zero on each side and pad=1 pads only the
// bottom/right.
package tensor
