package nn

import (
	"math"
	"testing"

	"github.com/backprop-ml/backprop/internal/tensor"
)

// TestVanillaRNN_ForwardValues tests the cell equation on a tiny case.
func TestVanillaRNN_ForwardValues(t *testing.T) {
	rnn := NewVanillaRNN()

	x := fromFlat(t, []float64{1, 2}, tensor.Shape{1, 2})
	prevH := fromFlat(t, []float64{0.5}, tensor.Shape{1, 1})
	kernel := fromFlat(t, []float64{0.1, 0.2}, tensor.Shape{2, 1})
	recurrent := fromFlat(t, []float64{0.3}, tensor.Shape{1, 1})
	bias := fromFlat(t, []float64{0.05}, tensor.Shape{1})

	h := rnn.Forward(x, prevH, kernel, recurrent, bias)

	// tanh(1*0.1 + 2*0.2 + 0.5*0.3 + 0.05) = tanh(0.7)
	want := math.Tanh(0.7)
	if math.Abs(h.Data()[0]-want) > 1e-12 {
		t.Errorf("h: expected %v, got %v", want, h.Data()[0])
	}
}

// TestVanillaRNN_GradientCheck checks all five gradients numerically.
func TestVanillaRNN_GradientCheck(t *testing.T) {
	rng := testRand(20)
	rnn := NewVanillaRNN()

	xShape := tensor.Shape{3, 4}
	hShape := tensor.Shape{3, 5}
	kShape := tensor.Shape{4, 5}
	rShape := tensor.Shape{5, 5}
	bShape := tensor.Shape{5}

	x := tensor.Randn(xShape, rng)
	prevH := tensor.Randn(hShape, rng)
	kernel := tensor.Randn(kShape, rng)
	recurrent := tensor.Randn(rShape, rng)
	bias := tensor.Randn(bShape, rng)
	outWeights := tensor.Randn(hShape, rng)

	grads := rnn.Backward(outWeights, x, prevH, kernel, recurrent, bias)

	checkGradient(t, "vanilla_rnn/x", grads.X, func(v []float64) float64 {
		return weightedSum(rnn.Forward(fromFlat(t, v, xShape), prevH, kernel, recurrent, bias), outWeights)
	}, x)
	checkGradient(t, "vanilla_rnn/prev_h", grads.PrevH, func(v []float64) float64 {
		return weightedSum(rnn.Forward(x, fromFlat(t, v, hShape), kernel, recurrent, bias), outWeights)
	}, prevH)
	checkGradient(t, "vanilla_rnn/kernel", grads.Kernel, func(v []float64) float64 {
		return weightedSum(rnn.Forward(x, prevH, fromFlat(t, v, kShape), recurrent, bias), outWeights)
	}, kernel)
	checkGradient(t, "vanilla_rnn/recurrent_kernel", grads.RecurrentKernel, func(v []float64) float64 {
		return weightedSum(rnn.Forward(x, prevH, kernel, fromFlat(t, v, rShape), bias), outWeights)
	}, recurrent)
	checkGradient(t, "vanilla_rnn/bias", grads.Bias, func(v []float64) float64 {
		return weightedSum(rnn.Forward(x, prevH, kernel, recurrent, fromFlat(t, v, bShape)), outWeights)
	}, bias)
}

// TestVanillaRNN_GradientShapes tests the shape invariant of the bundle.
func TestVanillaRNN_GradientShapes(t *testing.T) {
	rng := testRand(21)
	rnn := NewVanillaRNN()

	x := tensor.Randn(tensor.Shape{2, 3}, rng)
	prevH := tensor.Randn(tensor.Shape{2, 4}, rng)
	kernel := tensor.Randn(tensor.Shape{3, 4}, rng)
	recurrent := tensor.Randn(tensor.Shape{4, 4}, rng)
	bias := tensor.Randn(tensor.Shape{4}, rng)
	outGrad := tensor.Randn(tensor.Shape{2, 4}, rng)

	grads := rnn.Backward(outGrad, x, prevH, kernel, recurrent, bias)

	pairs := []struct {
		name string
		grad *tensor.Tensor
		want tensor.Shape
	}{
		{"x", grads.X, x.Shape()},
		{"prev_h", grads.PrevH, prevH.Shape()},
		{"kernel", grads.Kernel, kernel.Shape()},
		{"recurrent_kernel", grads.RecurrentKernel, recurrent.Shape()},
		{"bias", grads.Bias, bias.Shape()},
	}
	for _, p := range pairs {
		if !p.grad.Shape().Equal(p.want) {
			t.Errorf("%s gradient shape: expected %v, got %v", p.name, p.want, p.grad.Shape())
		}
	}
}

// TestVanillaRNN_ScrubsNaN tests that NaN entries in the forward inputs do
// not reach the kernel gradients.
func TestVanillaRNN_ScrubsNaN(t *testing.T) {
	rnn := NewVanillaRNN()

	x := fromFlat(t, []float64{math.NaN(), 1}, tensor.Shape{1, 2})
	prevH := fromFlat(t, []float64{0.5}, tensor.Shape{1, 1})
	kernel := fromFlat(t, []float64{0, 0.2}, tensor.Shape{2, 1})
	recurrent := fromFlat(t, []float64{0.3}, tensor.Shape{1, 1})
	bias := fromFlat(t, []float64{0}, tensor.Shape{1})
	outGrad := fromFlat(t, []float64{1}, tensor.Shape{1, 1})

	grads := rnn.Backward(outGrad, x, prevH, kernel, recurrent, bias)

	for i, v := range grads.Kernel.Data() {
		if math.IsNaN(v) {
			t.Errorf("kernel gradient[%d] is NaN, expected scrubbed value", i)
		}
	}
}
