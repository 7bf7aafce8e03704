package nn

import (
	"math"
	"math/rand"
	"testing"

	"gonum.org/v1/gonum/diff/fd"

	"github.com/backprop-ml/backprop/internal/tensor"
)

// gradTol is the relative tolerance for analytic vs central-difference
// gradients.
const gradTol = 1e-5

// numericGradient computes the central finite-difference gradient of f at x.
func numericGradient(f func([]float64) float64, x []float64) []float64 {
	grad := make([]float64, len(x))
	fd.Gradient(grad, f, x, &fd.Settings{Formula: fd.Central})
	return grad
}

// checkGradient compares an analytic gradient tensor against the numeric
// gradient of f with respect to the flattened value of x.
func checkGradient(t *testing.T, name string, analytic *tensor.Tensor, f func([]float64) float64, x *tensor.Tensor) {
	t.Helper()

	if !analytic.Shape().Equal(x.Shape()) {
		t.Fatalf("%s: gradient shape %v != input shape %v", name, analytic.Shape(), x.Shape())
	}

	numeric := numericGradient(f, x.Data())
	got := analytic.Data()
	for i, want := range numeric {
		scale := math.Max(1, math.Abs(want))
		if math.Abs(got[i]-want) > gradTol*scale {
			t.Fatalf("%s: gradient[%d] = %v, numeric %v", name, i, got[i], want)
		}
	}
}

// weightedSum reduces an operator output to a scalar against fixed weights,
// so the upstream gradient of the reduction is exactly those weights.
func weightedSum(out, weights *tensor.Tensor) float64 {
	return tensor.Sum(tensor.Mul(out, weights))
}

// fromFlat builds a tensor from flat data, failing the test on size mismatch.
func fromFlat(t *testing.T, data []float64, shape tensor.Shape) *tensor.Tensor {
	t.Helper()
	out, err := tensor.FromSlice(data, shape)
	if err != nil {
		t.Fatalf("fromFlat: %v", err)
	}
	return out
}

// testRand returns a deterministic generator for a test.
func testRand(seed int64) *rand.Rand {
	return rand.New(rand.NewSource(seed))
}
