package tensor

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestReshape(t *testing.T) {
	a := mustFromSlice(t, []float64{1, 2, 3, 4, 5, 6}, Shape{2, 3})
	b := Reshape(a, Shape{3, 2})
	assert.Equal(t, Shape{3, 2}, b.Shape())
	assert.Equal(t, a.Data(), b.Data())

	// Copy, not view.
	b.Set(99, 0, 0)
	assert.Equal(t, 1.0, a.At(0, 0))

	assert.Panics(t, func() { Reshape(a, Shape{4, 2}) })
}

func TestTranspose(t *testing.T) {
	a := mustFromSlice(t, []float64{1, 2, 3, 4, 5, 6}, Shape{2, 3})
	got := Transpose(a)
	assert.Equal(t, Shape{3, 2}, got.Shape())
	assert.Equal(t, []float64{1, 4, 2, 5, 3, 6}, got.Data())

	assert.Panics(t, func() { Transpose(New(Shape{2, 3, 4})) })
}

func TestPad2D_EvenTotal(t *testing.T) {
	a := mustFromSlice(t, []float64{1, 2, 3, 4}, Shape{1, 1, 2, 2})
	got := Pad2D(a, 2, 2)
	assert.Equal(t, Shape{1, 1, 4, 4}, got.Shape())
	assert.Equal(t, []float64{
		0, 0, 0, 0,
		0, 1, 2, 0,
		0, 3, 4, 0,
		0, 0, 0, 0,
	}, got.Data())
}

// An odd total pads one extra row/column on the bottom/right side.
func TestPad2D_OddTotalAsymmetric(t *testing.T) {
	a := mustFromSlice(t, []float64{1, 2, 3, 4}, Shape{1, 1, 2, 2})
	got := Pad2D(a, 1, 1)
	assert.Equal(t, Shape{1, 1, 3, 3}, got.Shape())
	assert.Equal(t, []float64{
		1, 2, 0,
		3, 4, 0,
		0, 0, 0,
	}, got.Data())
}

func TestPad2D_ZeroIsClone(t *testing.T) {
	a := mustFromSlice(t, []float64{1, 2, 3, 4}, Shape{1, 1, 2, 2})
	got := Pad2D(a, 0, 0)
	assert.Equal(t, a.Data(), got.Data())
	got.Set(99, 0, 0, 0, 0)
	assert.Equal(t, 1.0, a.At(0, 0, 0, 0))
}

func TestUnpad2D_Roundtrip(t *testing.T) {
	rng := newTestRand(7)
	for _, pad := range []struct{ h, w int }{{0, 0}, {1, 1}, {2, 2}, {3, 1}} {
		a := Randn(Shape{2, 3, 4, 5}, rng)
		back := Unpad2D(Pad2D(a, pad.h, pad.w), pad.h, pad.w)
		assert.Equal(t, a.Data(), back.Data(), "pad h=%d w=%d", pad.h, pad.w)
	}
}

func TestUnpad2D_Panics(t *testing.T) {
	assert.Panics(t, func() { Unpad2D(New(Shape{1, 1, 2, 2}), 2, 0) })
	assert.Panics(t, func() { Unpad2D(New(Shape{2, 2}), 1, 1) })
}
