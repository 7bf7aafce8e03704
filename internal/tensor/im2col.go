package tensor

import "fmt"

// ConvOutputSize computes the spatial output size of a sliding-window
// operator: out = floor((in + pad - kernel) / stride) + 1.
//
// pad is the *total* padding along the axis (the Pad2D convention), not the
// per-side margin.
func ConvOutputSize(in, kernel, pad, stride int) int {
	return (in+pad-kernel)/stride + 1
}

// Im2Col rearranges the receptive fields of an already-padded 4-D
// [batch, channels, height, width] tensor into columns:
//
//	[N, C, PH, PW] -> [N, C, kernelH*kernelW, outH*outW]
//
// Column p corresponds to the output position (p / outW, p % outW) — output
// positions are iterated width-fastest. Row k within a channel corresponds to
// the kernel offset (k / kernelW, k % kernelW). Both convolution and pooling
// forward/backward route through this one primitive; convolution additionally
// flattens the channel axis into the patch rows, which is a free contiguous
// reshape of this layout to [N, C*kernelH*kernelW, outH*outW].
func Im2Col(x *Tensor, kernelH, kernelW, stride int) *Tensor {
	if x.Rank() != 4 {
		panic(fmt.Sprintf("tensor: Im2Col requires a 4-D [N,C,H,W] tensor, got %v", x.shape))
	}
	if kernelH <= 0 || kernelW <= 0 || stride <= 0 {
		panic(fmt.Sprintf("tensor: Im2Col invalid geometry kernel=%dx%d stride=%d", kernelH, kernelW, stride))
	}

	n, c, ph, pw := x.shape[0], x.shape[1], x.shape[2], x.shape[3]
	outH := ConvOutputSize(ph, kernelH, 0, stride)
	outW := ConvOutputSize(pw, kernelW, 0, stride)
	if outH <= 0 || outW <= 0 {
		panic(fmt.Sprintf("tensor: Im2Col kernel %dx%d stride %d does not fit input %v", kernelH, kernelW, stride, x.shape))
	}

	kk := kernelH * kernelW
	positions := outH * outW
	out := New(Shape{n, c, kk, positions})

	for i := 0; i < n; i++ {
		for j := 0; j < c; j++ {
			src := x.data[(i*c+j)*ph*pw:]
			dst := out.data[(i*c+j)*kk*positions:]
			for ki := 0; ki < kernelH; ki++ {
				for kj := 0; kj < kernelW; kj++ {
					k := ki*kernelW + kj
					row := dst[k*positions:]
					p := 0
					for oh := 0; oh < outH; oh++ {
						base := (oh*stride+ki)*pw + kj
						for ow := 0; ow < outW; ow++ {
							row[p] = src[base+ow*stride]
							p++
						}
					}
				}
			}
		}
	}
	return out
}

// Col2Im is the inverse accumulation of Im2Col: it scatters per-patch values
// back into a zero-initialized padded tensor of shape
// [N, C, paddedH, paddedW], *adding* each patch's contribution. Overlapping
// receptive fields (stride smaller than the kernel) therefore accumulate
// rather than overwrite, which is what the backward passes of convolution
// and pooling require.
//
// The caller strips the padding afterwards (Unpad2D) to recover the gradient
// of the unpadded input.
func Col2Im(cols *Tensor, paddedH, paddedW, kernelH, kernelW, stride int) *Tensor {
	if cols.Rank() != 4 {
		panic(fmt.Sprintf("tensor: Col2Im requires a 4-D [N,C,k,p] tensor, got %v", cols.shape))
	}

	n, c, kk, positions := cols.shape[0], cols.shape[1], cols.shape[2], cols.shape[3]
	if kk != kernelH*kernelW {
		panic(fmt.Sprintf("tensor: Col2Im patch size %d != kernel %dx%d", kk, kernelH, kernelW))
	}
	outH := ConvOutputSize(paddedH, kernelH, 0, stride)
	outW := ConvOutputSize(paddedW, kernelW, 0, stride)
	if outH*outW != positions {
		panic(fmt.Sprintf("tensor: Col2Im %d positions != %dx%d output grid", positions, outH, outW))
	}

	out := New(Shape{n, c, paddedH, paddedW})
	for i := 0; i < n; i++ {
		for j := 0; j < c; j++ {
			src := cols.data[(i*c+j)*kk*positions:]
			dst := out.data[(i*c+j)*paddedH*paddedW:]
			for ki := 0; ki < kernelH; ki++ {
				for kj := 0; kj < kernelW; kj++ {
					k := ki*kernelW + kj
					row := src[k*positions:]
					p := 0
					for oh := 0; oh < outH; oh++ {
						base := (oh*stride+ki)*paddedW + kj
						for ow := 0; ow < outW; ow++ {
							dst[base+ow*stride] += row[p]
							p++
						}
					}
				}
			}
		}
	}
	return out
}
