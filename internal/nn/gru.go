package nn

import (
	"fmt"

	"github.com/backprop-ml/backprop/internal/tensor"
)

// GRUGradients is the gradient bundle returned by GRU.Backward.
// Kernel and RecurrentKernel carry the per-gate gradients re-concatenated in
// the same z, r, h̃ column order as the packed forward kernels.
type GRUGradients struct {
	X               *tensor.Tensor
	PrevH           *tensor.Tensor
	Kernel          *tensor.Tensor
	RecurrentKernel *tensor.Tensor
}

// GRU is a single gated-recurrent-unit cell step.
//
// The packed kernels hold the three gates side by side in column order
// update (z), reset (r), candidate (h̃):
//
//	kernel:          [in_features, 3*units]
//	recurrentKernel: [units, 3*units]
//
// Forward:
//
//	z  = sigmoid(x·k_z + prevH·rk_z)
//	r  = sigmoid(x·k_r + prevH·rk_r)
//	h̃  = tanh(x·k_h + (r*prevH)·rk_h)
//	h  = (1-z)*h̃ + z*prevH
//
// Like VanillaRNN, the cell is stateless; the caller sequences steps and
// carries the hidden state.
type GRU struct{}

// NewGRU creates a new GRU cell operator.
func NewGRU() *GRU {
	return &GRU{}
}

func (g *GRU) checkShapes(x, prevH, kernel, recurrentKernel *tensor.Tensor) int {
	if x.Rank() != 2 || prevH.Rank() != 2 {
		panic(fmt.Sprintf("gru: expected 2-D x and prevH, got %v and %v", x.Shape(), prevH.Shape()))
	}
	batch, features := x.Shape()[0], x.Shape()[1]
	units := prevH.Shape()[1]
	if prevH.Shape()[0] != batch {
		panic(fmt.Sprintf("gru: batch mismatch: x %v vs prevH %v", x.Shape(), prevH.Shape()))
	}
	if !kernel.Shape().Equal(tensor.Shape{features, 3 * units}) {
		panic(fmt.Sprintf("gru: kernel shape %v != expected [%d %d]", kernel.Shape(), features, 3*units))
	}
	if !recurrentKernel.Shape().Equal(tensor.Shape{units, 3 * units}) {
		panic(fmt.Sprintf("gru: recurrent kernel shape %v != expected [%d %d]", recurrentKernel.Shape(), units, 3*units))
	}
	return units
}

// gates computes the three gate activations for the given inputs.
func (g *GRU) gates(x, prevH, kernel, recurrentKernel *tensor.Tensor, units int) (z, r, hTilde *tensor.Tensor) {
	kz, kr, kh := splitGates(kernel, units)
	rz, rr, rh := splitGates(recurrentKernel, units)

	z = sigmoid(tensor.Add(tensor.MatMul(x, kz), tensor.MatMul(prevH, rz)))
	r = sigmoid(tensor.Add(tensor.MatMul(x, kr), tensor.MatMul(prevH, rr)))
	hTilde = tanh(tensor.Add(tensor.MatMul(x, kh), tensor.MatMul(tensor.Mul(r, prevH), rh)))
	return z, r, hTilde
}

// Forward computes the next hidden state.
func (g *GRU) Forward(x, prevH, kernel, recurrentKernel *tensor.Tensor) *tensor.Tensor {
	units := g.checkShapes(x, prevH, kernel, recurrentKernel)
	z, _, hTilde := g.gates(x, prevH, kernel, recurrentKernel, units)

	one := tensor.Ones(z.Shape())
	return tensor.Add(tensor.Mul(tensor.Sub(one, z), hTilde), tensor.Mul(z, prevH))
}

// Backward derives each gate's local gradient in reverse topological order —
// candidate first, then reset (which feeds the candidate's recurrent term),
// then update — and sums the three contributions plus the direct z path into
// the prevH gradient. The per-gate kernel gradients are re-concatenated in
// the packed z, r, h̃ column order.
func (g *GRU) Backward(outGrad, x, prevH, kernel, recurrentKernel *tensor.Tensor) GRUGradients {
	units := g.checkShapes(x, prevH, kernel, recurrentKernel)
	if !outGrad.Shape().Equal(prevH.Shape()) {
		panicShape("gru", prevH.Shape(), outGrad.Shape())
	}

	kz, kr, kh := splitGates(kernel, units)
	rz, rr, rh := splitGates(recurrentKernel, units)
	z, r, hTilde := g.gates(x, prevH, kernel, recurrentKernel, units)
	one := tensor.Ones(z.Shape())

	// Update gate: h = (1-z)*h̃ + z*prevH, so dL/dz = outGrad*(prevH - h̃),
	// and through the sigmoid dL/dz_raw = dL/dz * z * (1-z).
	zGrad := tensor.Mul(outGrad, tensor.Sub(prevH, hTilde))
	zRawGrad := tensor.Mul(zGrad, tensor.Mul(z, tensor.Sub(one, z)))

	// Candidate gate: dL/dh̃ = outGrad*(1-z), through the tanh
	// dL/dh̃_raw = dL/dh̃ * (1 - h̃²).
	hGrad := tensor.Mul(outGrad, tensor.Sub(one, z))
	hRawGrad := tensor.Mul(hGrad, tensor.Sub(one, tensor.Mul(hTilde, hTilde)))

	// Reset gate feeds the candidate's recurrent term (r*prevH)·rk_h:
	// dL/dr = (dL/dh̃_raw · rk_hᵀ) * prevH, then through the sigmoid.
	rGrad := tensor.Mul(tensor.MatMul(hRawGrad, tensor.Transpose(rh)), prevH)
	rRawGrad := tensor.Mul(rGrad, tensor.Mul(r, tensor.Sub(one, r)))

	xGrad := tensor.Add(
		tensor.Add(
			tensor.MatMul(zRawGrad, tensor.Transpose(kz)),
			tensor.MatMul(rRawGrad, tensor.Transpose(kr)),
		),
		tensor.MatMul(hRawGrad, tensor.Transpose(kh)),
	)

	// prevH receives contributions from all three gates plus the direct
	// z*prevH path of the output blend.
	prevHGrad := tensor.Add(
		tensor.Add(
			tensor.MatMul(zRawGrad, tensor.Transpose(rz)),
			tensor.MatMul(rRawGrad, tensor.Transpose(rr)),
		),
		tensor.Add(
			tensor.Mul(tensor.MatMul(hRawGrad, tensor.Transpose(rh)), r),
			tensor.Mul(outGrad, z),
		),
	)

	xT := tensor.Transpose(x)
	prevHT := tensor.Transpose(prevH)
	kernelGrad := concatColumns(
		tensor.MatMul(xT, zRawGrad),
		tensor.MatMul(xT, rRawGrad),
		tensor.MatMul(xT, hRawGrad),
	)
	recurrentGrad := concatColumns(
		tensor.MatMul(prevHT, zRawGrad),
		tensor.MatMul(prevHT, rRawGrad),
		tensor.MatMul(tensor.Transpose(tensor.Mul(prevH, r)), hRawGrad),
	)

	return GRUGradients{
		X:               xGrad,
		PrevH:           prevHGrad,
		Kernel:          kernelGrad,
		RecurrentKernel: recurrentGrad,
	}
}

// splitGates partitions a packed [rows, 3*units] kernel into its z, r, h̃
// column blocks.
func splitGates(t *tensor.Tensor, units int) (z, r, h *tensor.Tensor) {
	z = sliceColumns(t, 0, units)
	r = sliceColumns(t, units, 2*units)
	h = sliceColumns(t, 2*units, 3*units)
	return z, r, h
}

// sliceColumns copies columns [from, to) of a 2-D tensor.
func sliceColumns(t *tensor.Tensor, from, to int) *tensor.Tensor {
	shape := t.Shape()
	if t.Rank() != 2 || from < 0 || to > shape[1] || from >= to {
		panic(fmt.Sprintf("gru: invalid column slice [%d:%d] of %v", from, to, shape))
	}
	rows, cols := shape[0], shape[1]
	out := tensor.New(tensor.Shape{rows, to - from})
	src := t.Data()
	dst := out.Data()
	width := to - from
	for i := 0; i < rows; i++ {
		copy(dst[i*width:(i+1)*width], src[i*cols+from:i*cols+to])
	}
	return out
}

// concatColumns concatenates 2-D tensors with equal row counts along the
// column axis.
func concatColumns(parts ...*tensor.Tensor) *tensor.Tensor {
	rows := parts[0].Shape()[0]
	total := 0
	for _, p := range parts {
		if p.Rank() != 2 || p.Shape()[0] != rows {
			panic(fmt.Sprintf("gru: cannot concatenate %v with %d rows", p.Shape(), rows))
		}
		total += p.Shape()[1]
	}

	out := tensor.New(tensor.Shape{rows, total})
	dst := out.Data()
	for i := 0; i < rows; i++ {
		off := i * total
		for _, p := range parts {
			width := p.Shape()[1]
			copy(dst[off:off+width], p.Data()[i*width:(i+1)*width])
			off += width
		}
	}
	return out
}
