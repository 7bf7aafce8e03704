package nn

import (
	"testing"

	"github.com/backprop-ml/backprop/internal/tensor"
)

// TestPool2D_MaxForward tests 2x2/stride-2 max pooling with known values.
func TestPool2D_MaxForward(t *testing.T) {
	pool := NewPool2D(Pool2DConfig{Type: MaxPool, PoolH: 2, PoolW: 2, Stride: 2})

	input := fromFlat(t, []float64{
		1, 2, 5, 6,
		3, 4, 7, 8,
		9, 10, 13, 14,
		11, 12, 15, 16,
	}, tensor.Shape{1, 1, 4, 4})

	output := pool.Forward(input)

	if !output.Shape().Equal(tensor.Shape{1, 1, 2, 2}) {
		t.Fatalf("Output shape: expected [1 1 2 2], got %v", output.Shape())
	}
	expected := []float64{4, 8, 12, 16}
	for i, want := range expected {
		if output.Data()[i] != want {
			t.Errorf("Output[%d]: expected %v, got %v", i, want, output.Data()[i])
		}
	}
}

// TestPool2D_AvgForward tests 2x2/stride-2 average pooling.
func TestPool2D_AvgForward(t *testing.T) {
	pool := NewPool2D(Pool2DConfig{Type: AvgPool, PoolH: 2, PoolW: 2, Stride: 2})

	input := fromFlat(t, []float64{
		1, 2, 5, 6,
		3, 4, 7, 8,
		9, 10, 13, 14,
		11, 12, 15, 16,
	}, tensor.Shape{1, 1, 4, 4})

	output := pool.Forward(input)

	expected := []float64{2.5, 6.5, 10.5, 14.5}
	for i, want := range expected {
		if output.Data()[i] != want {
			t.Errorf("Output[%d]: expected %v, got %v", i, want, output.Data()[i])
		}
	}
}

// TestPool2D_MaxBackwardTies tests that exactly tied positions all receive
// the full gradient — the equality-mask policy, not an approximation.
func TestPool2D_MaxBackwardTies(t *testing.T) {
	pool := NewPool2D(Pool2DConfig{Type: MaxPool, PoolH: 2, PoolW: 2, Stride: 2})

	input := fromFlat(t, []float64{
		7, 7,
		1, 2,
	}, tensor.Shape{1, 1, 2, 2})
	outGrad := fromFlat(t, []float64{3}, tensor.Shape{1, 1, 1, 1})

	inGrad := pool.Backward(outGrad, input)

	expected := []float64{3, 3, 0, 0}
	for i, want := range expected {
		if inGrad.Data()[i] != want {
			t.Errorf("Gradient[%d]: expected %v, got %v", i, want, inGrad.Data()[i])
		}
	}
}

// TestPool2D_OverlapAccumulation tests that with stride smaller than the
// pool size, shared input positions accumulate gradient contributions from
// every window that covers them.
func TestPool2D_OverlapAccumulation(t *testing.T) {
	pool := NewPool2D(Pool2DConfig{Type: AvgPool, PoolH: 2, PoolW: 2, Stride: 1})

	input := tensor.Ones(tensor.Shape{1, 1, 3, 3})
	outGrad := tensor.Ones(tensor.Shape{1, 1, 2, 2}) // four overlapping windows

	inGrad := pool.Backward(outGrad, input)

	// Each window spreads 1/4 to its cells; the center cell is covered by
	// all four windows, edges by two, corners by one.
	expected := []float64{
		0.25, 0.5, 0.25,
		0.5, 1.0, 0.5,
		0.25, 0.5, 0.25,
	}
	for i, want := range expected {
		if inGrad.Data()[i] != want {
			t.Errorf("Gradient[%d]: expected %v, got %v", i, want, inGrad.Data()[i])
		}
	}
}

// TestPool2D_GradientCheckMax checks max pooling numerically with
// overlapping windows (random inputs make exact ties improbable).
func TestPool2D_GradientCheckMax(t *testing.T) {
	rng := testRand(8)
	pool := NewPool2D(Pool2DConfig{Type: MaxPool, PoolH: 2, PoolW: 2, Stride: 1})

	inShape := tensor.Shape{2, 2, 4, 4}
	outShape := tensor.Shape{2, 2, 3, 3}
	input := tensor.Randn(inShape, rng)
	outWeights := tensor.Randn(outShape, rng)

	analytic := pool.Backward(outWeights, input)
	checkGradient(t, "pool2d/max", analytic, func(x []float64) float64 {
		return weightedSum(pool.Forward(fromFlat(t, x, inShape)), outWeights)
	}, input)
}

// TestPool2D_GradientCheckAvg checks average pooling with padding.
func TestPool2D_GradientCheckAvg(t *testing.T) {
	rng := testRand(9)
	pool := NewPool2D(Pool2DConfig{Type: AvgPool, PoolH: 3, PoolW: 3, Stride: 2, Pad: 2})

	inShape := tensor.Shape{2, 3, 5, 5}
	input := tensor.Randn(inShape, rng)
	outSize := pool.OutputSize(5, 5)
	outWeights := tensor.Randn(tensor.Shape{2, 3, outSize[0], outSize[1]}, rng)

	analytic := pool.Backward(outWeights, input)
	checkGradient(t, "pool2d/avg", analytic, func(x []float64) float64 {
		return weightedSum(pool.Forward(fromFlat(t, x, inShape)), outWeights)
	}, input)
}

// TestPool2D_RejectsUnknownType tests that an unsupported pool type fails
// fast instead of falling back to a default reduction.
func TestPool2D_RejectsUnknownType(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Error("expected panic for unknown pool type")
		}
	}()
	NewPool2D(Pool2DConfig{Type: "median", PoolH: 2, PoolW: 2, Stride: 2})
}
