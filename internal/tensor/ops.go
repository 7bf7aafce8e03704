package tensor

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
)

// binaryCheck panics unless a and b have identical shapes.
// Elementwise operations in this package never broadcast implicitly: the
// operator layer spells out every broadcast (e.g. bias over the batch axis),
// so a shape mismatch here is a logic error, not a request for broadcasting.
func binaryCheck(op string, a, b *Tensor) {
	if !a.shape.Equal(b.shape) {
		panic(fmt.Sprintf("tensor: %s shape mismatch: %v vs %v", op, a.shape, b.shape))
	}
}

// Add returns the elementwise sum a + b. Shapes must match exactly.
func Add(a, b *Tensor) *Tensor {
	binaryCheck("add", a, b)
	out := a.Clone()
	floats.Add(out.data, b.data)
	return out
}

// Sub returns the elementwise difference a - b. Shapes must match exactly.
func Sub(a, b *Tensor) *Tensor {
	binaryCheck("sub", a, b)
	out := a.Clone()
	floats.Sub(out.data, b.data)
	return out
}

// Mul returns the elementwise (Hadamard) product a * b. Shapes must match
// exactly.
func Mul(a, b *Tensor) *Tensor {
	binaryCheck("mul", a, b)
	out := a.Clone()
	floats.Mul(out.data, b.data)
	return out
}

// Scale returns t scaled by the scalar s.
func Scale(t *Tensor, s float64) *Tensor {
	out := t.Clone()
	floats.Scale(s, out.data)
	return out
}

// AddScalar returns t with s added to every element.
func AddScalar(t *Tensor, s float64) *Tensor {
	out := t.Clone()
	floats.AddConst(s, out.data)
	return out
}

// Sum returns the sum of all elements.
func Sum(t *Tensor) float64 {
	return floats.Sum(t.data)
}

// MatMul computes the matrix product of two 2-D tensors:
// a [m, k] x b [k, n] -> [m, n].
//
// The multiply itself is delegated to gonum's BLAS-backed mat.Dense. The
// input buffers are wrapped without copying; the result is written into a
// freshly allocated tensor.
func MatMul(a, b *Tensor) *Tensor {
	if a.Rank() != 2 || b.Rank() != 2 {
		panic(fmt.Sprintf("tensor: matmul requires 2-D tensors, got %v and %v", a.shape, b.shape))
	}
	m, k := a.shape[0], a.shape[1]
	kb, n := b.shape[0], b.shape[1]
	if k != kb {
		panic(fmt.Sprintf("tensor: matmul inner dimension mismatch: %v x %v", a.shape, b.shape))
	}

	out := New(Shape{m, n})
	am := mat.NewDense(m, k, a.data)
	bm := mat.NewDense(kb, n, b.data)
	om := mat.NewDense(m, n, out.data)
	om.Mul(am, bm)
	return out
}

// SumAxis0 sums a 2-D tensor over its first (batch) axis, returning a 1-D
// tensor of length shape[1].
func SumAxis0(t *Tensor) *Tensor {
	if t.Rank() != 2 {
		panic(fmt.Sprintf("tensor: SumAxis0 requires a 2-D tensor, got %v", t.shape))
	}
	rows, cols := t.shape[0], t.shape[1]
	out := New(Shape{cols})
	for i := 0; i < rows; i++ {
		floats.Add(out.data, t.data[i*cols:(i+1)*cols])
	}
	return out
}

// NaNToZero returns a copy of t with every NaN replaced by 0.
// Used by the recurrent operators to scrub numerically degenerate
// intermediate products instead of propagating them.
func NaNToZero(t *Tensor) *Tensor {
	out := t.Clone()
	for i, v := range out.data {
		if math.IsNaN(v) {
			out.data[i] = 0
		}
	}
	return out
}
