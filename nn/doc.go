// Copyright 2025 Backprop ML Library. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package nn provides neural network operators with explicit forward and
// backward passes.
//
// # Overview
//
// This package contains:
//   - Layers: Linear (MatMul + AddBias), Conv2D, Pool2D, Flatten
//   - Activations: ReLU
//   - Regularization: Dropout
//   - Recurrent cells: VanillaRNN, GRU
//   - Loss: SoftmaxCrossEntropy
//
// There is no autodiff graph and no parameter store. Each operator is a
// pure computation: Forward produces the output, Backward takes the
// upstream gradient together with the same arguments the forward pass
// received, and returns the gradients with respect to every input. The
// caller owns the parameters and chains the backward calls in reverse
// order; see examples/mnist-cnn for a full training loop.
//
// # Basic Usage
//
//	conv := nn.NewConv2D(nn.Conv2DConfig{
//	    KernelH: 3, KernelW: 3, Stride: 1, Pad: 2,
//	    InChannels: 1, OutChannels: 8,
//	})
//	out := conv.Forward(x, weights, bias)
//	// ... loss, upstream gradient ...
//	inGrad, wGrad, biasGrad := conv.Backward(outGrad, x, weights, bias)
//
// Shape mismatches panic: shapes come from the model definition, so a
// mismatch is a programming error, not a runtime condition.
package nn
