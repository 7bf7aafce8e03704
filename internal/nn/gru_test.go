package nn

import (
	"math"
	"testing"

	"github.com/backprop-ml/backprop/internal/tensor"
)

// TestGRU_ForwardValues tests the gate equations on a single-unit cell.
func TestGRU_ForwardValues(t *testing.T) {
	gru := NewGRU()

	x := fromFlat(t, []float64{1}, tensor.Shape{1, 1})
	prevH := fromFlat(t, []float64{0.5}, tensor.Shape{1, 1})
	// Packed as [z, r, h̃].
	kernel := fromFlat(t, []float64{0.1, 0.2, 0.3}, tensor.Shape{1, 3})
	recurrent := fromFlat(t, []float64{0.4, 0.5, 0.6}, tensor.Shape{1, 3})

	h := gru.Forward(x, prevH, kernel, recurrent)

	sig := func(v float64) float64 { return 1 / (1 + math.Exp(-v)) }
	z := sig(1*0.1 + 0.5*0.4)
	r := sig(1*0.2 + 0.5*0.5)
	hTilde := math.Tanh(1*0.3 + r*0.5*0.6)
	want := (1-z)*hTilde + z*0.5

	if math.Abs(h.Data()[0]-want) > 1e-12 {
		t.Errorf("h: expected %v, got %v", want, h.Data()[0])
	}
}

// TestGRU_GradientCheck checks all four gradients numerically.
func TestGRU_GradientCheck(t *testing.T) {
	rng := testRand(22)
	gru := NewGRU()

	xShape := tensor.Shape{3, 4}
	hShape := tensor.Shape{3, 5}
	kShape := tensor.Shape{4, 15}
	rShape := tensor.Shape{5, 15}

	x := tensor.Randn(xShape, rng)
	prevH := tensor.Randn(hShape, rng)
	kernel := tensor.Randn(kShape, rng)
	recurrent := tensor.Randn(rShape, rng)
	outWeights := tensor.Randn(hShape, rng)

	grads := gru.Backward(outWeights, x, prevH, kernel, recurrent)

	checkGradient(t, "gru/x", grads.X, func(v []float64) float64 {
		return weightedSum(gru.Forward(fromFlat(t, v, xShape), prevH, kernel, recurrent), outWeights)
	}, x)
	checkGradient(t, "gru/prev_h", grads.PrevH, func(v []float64) float64 {
		return weightedSum(gru.Forward(x, fromFlat(t, v, hShape), kernel, recurrent), outWeights)
	}, prevH)
	checkGradient(t, "gru/kernel", grads.Kernel, func(v []float64) float64 {
		return weightedSum(gru.Forward(x, prevH, fromFlat(t, v, kShape), recurrent), outWeights)
	}, kernel)
	checkGradient(t, "gru/recurrent_kernel", grads.RecurrentKernel, func(v []float64) float64 {
		return weightedSum(gru.Forward(x, prevH, kernel, fromFlat(t, v, rShape)), outWeights)
	}, recurrent)
}

// TestGRU_GatePartition tests that the per-gate column blocks concatenate
// back to gradients with exactly the packed kernel shapes.
func TestGRU_GatePartition(t *testing.T) {
	rng := testRand(23)
	gru := NewGRU()

	x := tensor.Randn(tensor.Shape{2, 3}, rng)
	prevH := tensor.Randn(tensor.Shape{2, 4}, rng)
	kernel := tensor.Randn(tensor.Shape{3, 12}, rng)
	recurrent := tensor.Randn(tensor.Shape{4, 12}, rng)
	outGrad := tensor.Randn(tensor.Shape{2, 4}, rng)

	grads := gru.Backward(outGrad, x, prevH, kernel, recurrent)

	if !grads.Kernel.Shape().Equal(kernel.Shape()) {
		t.Errorf("kernel gradient shape: expected %v, got %v", kernel.Shape(), grads.Kernel.Shape())
	}
	if !grads.RecurrentKernel.Shape().Equal(recurrent.Shape()) {
		t.Errorf("recurrent kernel gradient shape: expected %v, got %v", recurrent.Shape(), grads.RecurrentKernel.Shape())
	}
	if !grads.X.Shape().Equal(x.Shape()) || !grads.PrevH.Shape().Equal(prevH.Shape()) {
		t.Errorf("input gradient shapes: got %v and %v", grads.X.Shape(), grads.PrevH.Shape())
	}
}

// TestGRU_RejectsUnpackedKernel tests that a kernel whose columns are not a
// multiple of three units panics.
func TestGRU_RejectsUnpackedKernel(t *testing.T) {
	gru := NewGRU()

	x := tensor.Zeros(tensor.Shape{1, 2})
	prevH := tensor.Zeros(tensor.Shape{1, 3})
	kernel := tensor.Zeros(tensor.Shape{2, 7}) // not 3*units
	recurrent := tensor.Zeros(tensor.Shape{3, 9})

	defer func() {
		if recover() == nil {
			t.Error("expected panic for unpacked kernel shape")
		}
	}()
	gru.Forward(x, prevH, kernel, recurrent)
}
