package tensor

import "fmt"

// Reshape returns a tensor with the same data and a new shape.
// The element count must be preserved. The data is copied, so the result
// can be handed to an operator without aliasing the original tensor.
//
// Example:
//
//	x := tensor.Zeros(tensor.Shape{2, 3, 4})
//	y := tensor.Reshape(x, tensor.Shape{2, 12})
func Reshape(t *Tensor, shape Shape) *Tensor {
	if err := shape.Validate(); err != nil {
		panic(fmt.Sprintf("tensor: reshape: %v", err))
	}
	if shape.NumElements() != t.NumElements() {
		panic(fmt.Sprintf("tensor: cannot reshape %v (%d elements) to %v (%d elements)",
			t.shape, t.NumElements(), shape, shape.NumElements()))
	}
	out := New(shape)
	copy(out.data, t.data)
	return out
}

// Transpose returns the transpose of a 2-D tensor.
func Transpose(t *Tensor) *Tensor {
	if t.Rank() != 2 {
		panic(fmt.Sprintf("tensor: transpose requires a 2-D tensor, got %v", t.shape))
	}
	rows, cols := t.shape[0], t.shape[1]
	out := New(Shape{cols, rows})
	for i := 0; i < rows; i++ {
		for j := 0; j < cols; j++ {
			out.data[j*rows+i] = t.data[i*cols+j]
		}
	}
	return out
}

// Pad2D embeds a 4-D [batch, channels, height, width] tensor into a
// zero-filled tensor enlarged by padH rows and padW columns in total.
//
// padH and padW are *total* padding: the margin splits as floor(pad/2) on the
// top/left and the remainder on the bottom/right, so an odd total pads
// asymmetrically and an even total splits exactly in half.
func Pad2D(t *Tensor, padH, padW int) *Tensor {
	if t.Rank() != 4 {
		panic(fmt.Sprintf("tensor: Pad2D requires a 4-D [N,C,H,W] tensor, got %v", t.shape))
	}
	if padH < 0 || padW < 0 {
		panic(fmt.Sprintf("tensor: Pad2D negative padding h=%d, w=%d", padH, padW))
	}
	if padH == 0 && padW == 0 {
		return t.Clone()
	}

	n, c, h, w := t.shape[0], t.shape[1], t.shape[2], t.shape[3]
	top, left := padH/2, padW/2
	ph, pw := h+padH, w+padW

	out := New(Shape{n, c, ph, pw})
	for i := 0; i < n; i++ {
		for j := 0; j < c; j++ {
			src := t.data[(i*c+j)*h*w:]
			dst := out.data[(i*c+j)*ph*pw:]
			for row := 0; row < h; row++ {
				copy(dst[(row+top)*pw+left:(row+top)*pw+left+w], src[row*w:(row+1)*w])
			}
		}
	}
	return out
}

// Unpad2D strips the margins applied by Pad2D with the same total padding,
// recovering the original [batch, channels, height, width] tensor.
func Unpad2D(t *Tensor, padH, padW int) *Tensor {
	if t.Rank() != 4 {
		panic(fmt.Sprintf("tensor: Unpad2D requires a 4-D [N,C,H,W] tensor, got %v", t.shape))
	}
	if padH < 0 || padW < 0 {
		panic(fmt.Sprintf("tensor: Unpad2D negative padding h=%d, w=%d", padH, padW))
	}
	if padH == 0 && padW == 0 {
		return t.Clone()
	}

	n, c, ph, pw := t.shape[0], t.shape[1], t.shape[2], t.shape[3]
	h, w := ph-padH, pw-padW
	if h <= 0 || w <= 0 {
		panic(fmt.Sprintf("tensor: Unpad2D padding h=%d, w=%d larger than tensor %v", padH, padW, t.shape))
	}
	top, left := padH/2, padW/2

	out := New(Shape{n, c, h, w})
	for i := 0; i < n; i++ {
		for j := 0; j < c; j++ {
			src := t.data[(i*c+j)*ph*pw:]
			dst := out.data[(i*c+j)*h*w:]
			for row := 0; row < h; row++ {
				copy(dst[row*w:(row+1)*w], src[(row+top)*pw+left:(row+top)*pw+left+w])
			}
		}
	}
	return out
}
