package nn

import (
	"fmt"

	"github.com/backprop-ml/backprop/internal/tensor"
)

// Conv2DConfig is the immutable configuration of a Conv2D operator.
//
// Pad is the *total* zero padding added along each spatial axis. It must be
// even so the margin splits exactly in half on both sides; an odd total is
// rejected at construction.
type Conv2DConfig struct {
	KernelH     int
	KernelW     int
	Stride      int
	Pad         int
	InChannels  int
	OutChannels int
}

// Conv2D performs 2D convolution over [batch, channels, height, width]
// tensors using the im2col algorithm.
//
// Input shape:   [batch, in_channels, height, width]
// Weights shape: [out_channels, in_channels, kernel_h, kernel_w]
// Bias shape:    [out_channels]
// Output shape:  [batch, out_channels, out_h, out_w]
//
// Where, with total padding pad:
//
//	out_h = (height + pad - kernel_h) / stride + 1
//	out_w = (width + pad - kernel_w) / stride + 1
//
// The operator is stateless: the padded input and the patch matrix are
// re-derived in Backward from the same forward inputs.
//
// Example:
//
//	conv := nn.NewConv2D(nn.Conv2DConfig{
//		KernelH: 3, KernelW: 3, Stride: 1, Pad: 2,
//		InChannels: 1, OutChannels: 6,
//	})
//	y := conv.Forward(x, w, b) // [batch, 6, 28, 28] for 28x28 input
type Conv2D struct {
	cfg Conv2DConfig
}

// NewConv2D creates a Conv2D operator, validating the configuration once.
func NewConv2D(cfg Conv2DConfig) *Conv2D {
	if cfg.InChannels <= 0 || cfg.OutChannels <= 0 {
		panic(fmt.Sprintf("conv2d: invalid channels in=%d, out=%d", cfg.InChannels, cfg.OutChannels))
	}
	if cfg.KernelH <= 0 || cfg.KernelW <= 0 {
		panic(fmt.Sprintf("conv2d: invalid kernel size h=%d, w=%d", cfg.KernelH, cfg.KernelW))
	}
	if cfg.Stride <= 0 {
		panic(fmt.Sprintf("conv2d: invalid stride %d", cfg.Stride))
	}
	if cfg.Pad < 0 {
		panic(fmt.Sprintf("conv2d: invalid padding %d", cfg.Pad))
	}
	if cfg.Pad%2 != 0 {
		panic(fmt.Sprintf("conv2d: total padding %d is odd; it must split evenly across both sides", cfg.Pad))
	}
	return &Conv2D{cfg: cfg}
}

// Config returns the operator's configuration.
func (c *Conv2D) Config() Conv2DConfig {
	return c.cfg
}

// String returns a string representation of the operator.
func (c *Conv2D) String() string {
	return fmt.Sprintf("Conv2D(in_channels=%d, out_channels=%d, kernel_size=(%d, %d), stride=%d, pad=%d)",
		c.cfg.InChannels, c.cfg.OutChannels, c.cfg.KernelH, c.cfg.KernelW, c.cfg.Stride, c.cfg.Pad)
}

// OutputSize computes the output spatial dimensions for a given input size.
//
// Returns: [out_height, out_width].
func (c *Conv2D) OutputSize(inputH, inputW int) [2]int {
	return [2]int{
		tensor.ConvOutputSize(inputH, c.cfg.KernelH, c.cfg.Pad, c.cfg.Stride),
		tensor.ConvOutputSize(inputW, c.cfg.KernelW, c.cfg.Pad, c.cfg.Stride),
	}
}

// checkShapes validates input, weights and bias against the configuration.
func (c *Conv2D) checkShapes(input, weights, bias *tensor.Tensor) {
	inShape := input.Shape()
	if len(inShape) != 4 {
		panic(fmt.Sprintf("conv2d: expected 4-D input [N,C,H,W], got %v", inShape))
	}
	if inShape[1] != c.cfg.InChannels {
		panic(fmt.Sprintf("conv2d: input channels %d != configured %d", inShape[1], c.cfg.InChannels))
	}
	wantW := tensor.Shape{c.cfg.OutChannels, c.cfg.InChannels, c.cfg.KernelH, c.cfg.KernelW}
	if !weights.Shape().Equal(wantW) {
		panic(fmt.Sprintf("conv2d: weights shape %v != expected %v", weights.Shape(), wantW))
	}
	if bias.Rank() != 1 || bias.Shape()[0] != c.cfg.OutChannels {
		panic(fmt.Sprintf("conv2d: bias shape %v != expected [%d]", bias.Shape(), c.cfg.OutChannels))
	}
}

// Forward computes the convolution output.
//
// Algorithm: pad the input, rearrange every receptive field into a column
// (channels flattened into the patch rows), then compute one matrix product
// per batch element between the flattened kernel [OC, IC*KH*KW] and the
// patch matrix [IC*KH*KW, OH*OW], adding the per-channel bias.
func (c *Conv2D) Forward(input, weights, bias *tensor.Tensor) *tensor.Tensor {
	c.checkShapes(input, weights, bias)
	cfg := c.cfg

	inShape := input.Shape()
	n, h, w := inShape[0], inShape[2], inShape[3]
	outH := tensor.ConvOutputSize(h, cfg.KernelH, cfg.Pad, cfg.Stride)
	outW := tensor.ConvOutputSize(w, cfg.KernelW, cfg.Pad, cfg.Stride)
	if outH <= 0 || outW <= 0 {
		panic(fmt.Sprintf("conv2d: kernel %dx%d stride %d pad %d does not fit input %v",
			cfg.KernelH, cfg.KernelW, cfg.Stride, cfg.Pad, inShape))
	}

	padded := tensor.Pad2D(input, cfg.Pad, cfg.Pad)
	cols := tensor.Im2Col(padded, cfg.KernelH, cfg.KernelW, cfg.Stride) // [N, IC, KH*KW, OH*OW]

	rows := cfg.InChannels * cfg.KernelH * cfg.KernelW
	positions := outH * outW
	wflat := tensor.Reshape(weights, tensor.Shape{cfg.OutChannels, rows})
	biasData := bias.Data()

	out := tensor.New(tensor.Shape{n, cfg.OutChannels, outH, outW})
	for i := 0; i < n; i++ {
		colsN := batchMatrix(cols, i, rows, positions)
		prod := tensor.MatMul(wflat, colsN) // [OC, OH*OW]
		prodData := prod.Data()
		dst := out.Data()[i*cfg.OutChannels*positions:]
		for oc := 0; oc < cfg.OutChannels; oc++ {
			row := prodData[oc*positions : (oc+1)*positions]
			for p, v := range row {
				dst[oc*positions+p] = v + biasData[oc]
			}
		}
	}
	return out
}

// Backward computes gradients w.r.t. the input, weights and bias, given the
// upstream gradient and the same inputs used by Forward.
//
// The patch matrix is re-derived from the input; the gradient w.r.t. the
// patches is scattered back through Col2Im, where overlapping receptive
// fields accumulate, and the padding margins are stripped at the end.
func (c *Conv2D) Backward(outGrad, input, weights, bias *tensor.Tensor) (inGrad, wGrad, biasGrad *tensor.Tensor) {
	c.checkShapes(input, weights, bias)
	cfg := c.cfg

	inShape := input.Shape()
	n, h, w := inShape[0], inShape[2], inShape[3]
	outH := tensor.ConvOutputSize(h, cfg.KernelH, cfg.Pad, cfg.Stride)
	outW := tensor.ConvOutputSize(w, cfg.KernelW, cfg.Pad, cfg.Stride)
	wantGrad := tensor.Shape{n, cfg.OutChannels, outH, outW}
	if !outGrad.Shape().Equal(wantGrad) {
		panicShape("conv2d", wantGrad, outGrad.Shape())
	}

	padded := tensor.Pad2D(input, cfg.Pad, cfg.Pad)
	cols := tensor.Im2Col(padded, cfg.KernelH, cfg.KernelW, cfg.Stride)

	rows := cfg.InChannels * cfg.KernelH * cfg.KernelW
	positions := outH * outW
	wflat := tensor.Reshape(weights, tensor.Shape{cfg.OutChannels, rows})
	wflatT := tensor.Transpose(wflat)

	colsGrad := tensor.New(tensor.Shape{n, cfg.InChannels, cfg.KernelH * cfg.KernelW, positions})
	wGradFlat := tensor.New(tensor.Shape{cfg.OutChannels, rows})
	for i := 0; i < n; i++ {
		gradN := batchMatrix(outGrad, i, cfg.OutChannels, positions)
		colsN := batchMatrix(cols, i, rows, positions)

		// Gradient w.r.t. the patches: wflatᵀ x gradN.
		dCols := tensor.MatMul(wflatT, gradN)
		copy(colsGrad.Data()[i*rows*positions:(i+1)*rows*positions], dCols.Data())

		// Gradient w.r.t. the weights accumulates over the batch.
		wGradFlat = tensor.Add(wGradFlat, tensor.MatMul(gradN, tensor.Transpose(colsN)))
	}

	padShape := padded.Shape()
	padGrad := tensor.Col2Im(colsGrad, padShape[2], padShape[3], cfg.KernelH, cfg.KernelW, cfg.Stride)
	inGrad = tensor.Unpad2D(padGrad, cfg.Pad, cfg.Pad)

	wGrad = tensor.Reshape(wGradFlat, weights.Shape())

	// Bias gradient: sum over batch and both spatial axes.
	biasGrad = tensor.New(tensor.Shape{cfg.OutChannels})
	biasData := biasGrad.Data()
	gradData := outGrad.Data()
	for i := 0; i < n; i++ {
		for oc := 0; oc < cfg.OutChannels; oc++ {
			row := gradData[(i*cfg.OutChannels+oc)*positions : (i*cfg.OutChannels+oc+1)*positions]
			for _, v := range row {
				biasData[oc] += v
			}
		}
	}
	return inGrad, wGrad, biasGrad
}

// batchMatrix views batch element i of a tensor whose per-batch payload is
// rows x cols contiguous values, copying it into a fresh 2-D tensor.
func batchMatrix(t *tensor.Tensor, i, rows, cols int) *tensor.Tensor {
	size := rows * cols
	m, err := tensor.FromSlice(t.Data()[i*size:(i+1)*size], tensor.Shape{rows, cols})
	if err != nil {
		panic(fmt.Sprintf("conv2d: batch slice: %v", err))
	}
	return m
}
