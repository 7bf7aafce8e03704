package nn

import (
	"fmt"
	"math/rand"

	"github.com/backprop-ml/backprop/internal/tensor"
)

// Dropout randomly zeroes units during training, scaling the survivors by
// 1/(1-rate) so the expected activation magnitude is preserved.
//
// Dropout is the one stateful operator in this package: the scaled mask
// sampled by a training-mode Forward is held as hidden state for the
// immediately following Backward. A single instance must therefore not be
// shared across concurrent forward/backward pairs.
//
// Randomness is explicit: the operator draws from a *rand.Rand supplied at
// construction instead of any process-wide generator, so tests seed their own
// generators and run deterministically in isolation. Production use should
// construct with NewDropout and a generator that is never re-seeded, so every
// forward pass draws a fresh mask; NewSeededDropout re-seeds before each
// forward and exists for gradient checking, where the mask must be identical
// across repeated forward calls.
//
// Example:
//
//	drop := nn.NewDropout(0.5, rand.New(rand.NewSource(time.Now().UnixNano())))
//	y := drop.Forward(x)        // training mode: sampled mask
//	dx := drop.Backward(dy, x)  // consumes the stored mask
//	drop.SetTraining(false)     // evaluation mode: identity, no mask
type Dropout struct {
	rate     float64
	training bool

	rng    *rand.Rand
	seed   int64
	seeded bool

	mask *tensor.Tensor // scaled 0/(1/(1-rate)) mask from the last training forward
}

// NewDropout creates a Dropout operator in training mode.
// rate is the probability of zeroing a unit and must lie in [0, 1).
func NewDropout(rate float64, rng *rand.Rand) *Dropout {
	if rate < 0 || rate >= 1 {
		panic(fmt.Sprintf("dropout: rate %v outside [0, 1)", rate))
	}
	if rng == nil {
		panic("dropout: nil random generator")
	}
	return &Dropout{rate: rate, training: true, rng: rng}
}

// NewSeededDropout creates a Dropout whose generator is re-seeded with the
// fixed seed before every forward pass, making the mask deterministic across
// repeated calls on the same input. This exists for gradient-check tests;
// production training should use NewDropout so draws differ across calls.
func NewSeededDropout(rate float64, seed int64) *Dropout {
	d := NewDropout(rate, rand.New(rand.NewSource(seed)))
	d.seed = seed
	d.seeded = true
	return d
}

// SetTraining switches between training mode (sampled masks) and evaluation
// mode (identity). Leaving training mode discards any stored mask.
func (d *Dropout) SetTraining(training bool) {
	d.training = training
	if !training {
		d.mask = nil
	}
}

// Training reports whether the operator is in training mode.
func (d *Dropout) Training() bool {
	return d.training
}

// Rate returns the drop probability.
func (d *Dropout) Rate() float64 {
	return d.rate
}

// Forward samples a fresh mask in training mode and applies it to the input;
// in evaluation mode it is the identity and produces no mask.
//
// A unit survives when its uniform draw is >= rate; survivors are scaled by
// 1/(1-rate). The scaled mask is retained for the paired Backward.
func (d *Dropout) Forward(input *tensor.Tensor) *tensor.Tensor {
	if !d.training {
		return input.Clone()
	}

	if d.seeded {
		d.rng = rand.New(rand.NewSource(d.seed))
	}

	scale := 1 / (1 - d.rate)
	mask := tensor.New(input.Shape())
	maskData := mask.Data()
	for i := range maskData {
		if d.rng.Float64() >= d.rate {
			maskData[i] = scale
		}
	}
	d.mask = mask
	return tensor.Mul(input, mask)
}

// Backward multiplies the upstream gradient by the mask stored by the last
// training-mode Forward; in evaluation mode it is the identity.
func (d *Dropout) Backward(outGrad, input *tensor.Tensor) *tensor.Tensor {
	if !d.training {
		return outGrad.Clone()
	}
	if d.mask == nil {
		panic("dropout: Backward called before a training-mode Forward")
	}
	if !outGrad.Shape().Equal(d.mask.Shape()) {
		panicShape("dropout", d.mask.Shape(), outGrad.Shape())
	}
	return tensor.Mul(outGrad, d.mask)
}
