package nn

import (
	"fmt"

	"github.com/backprop-ml/backprop/internal/tensor"
)

// PoolType selects the reduction applied to each receptive field.
type PoolType string

// Supported pooling reductions.
const (
	MaxPool PoolType = "max"
	AvgPool PoolType = "avg"
)

// Pool2DConfig is the immutable configuration of a Pool2D operator.
//
// Pad is the total zero padding along each spatial axis, split as
// floor(pad/2) on the top/left and the remainder on the bottom/right.
type Pool2DConfig struct {
	Type   PoolType
	PoolH  int
	PoolW  int
	Stride int
	Pad    int
}

// Pool2D performs 2D max or average pooling over [batch, channels, height,
// width] tensors. Pooling is per-channel: unlike convolution, the channels
// are never flattened into the patch rows.
//
// Input shape:  [batch, channels, height, width]
// Output shape: [batch, channels, out_h, out_w]
//
// An unknown pool type never silently falls back to a default reduction: it
// panics at construction, and again at forward time if a Pool2D value was
// built without NewPool2D.
type Pool2D struct {
	cfg Pool2DConfig
}

// NewPool2D creates a Pool2D operator, validating the configuration once.
func NewPool2D(cfg Pool2DConfig) *Pool2D {
	if cfg.Type != MaxPool && cfg.Type != AvgPool {
		panic(fmt.Sprintf("pool2d: unsupported pool type %q", cfg.Type))
	}
	if cfg.PoolH <= 0 || cfg.PoolW <= 0 {
		panic(fmt.Sprintf("pool2d: invalid pool size h=%d, w=%d", cfg.PoolH, cfg.PoolW))
	}
	if cfg.Stride <= 0 {
		panic(fmt.Sprintf("pool2d: invalid stride %d", cfg.Stride))
	}
	if cfg.Pad < 0 {
		panic(fmt.Sprintf("pool2d: invalid padding %d", cfg.Pad))
	}
	return &Pool2D{cfg: cfg}
}

// Config returns the operator's configuration.
func (p *Pool2D) Config() Pool2DConfig {
	return p.cfg
}

// String returns a string representation of the operator.
func (p *Pool2D) String() string {
	return fmt.Sprintf("Pool2D(type=%s, pool_size=(%d, %d), stride=%d, pad=%d)",
		p.cfg.Type, p.cfg.PoolH, p.cfg.PoolW, p.cfg.Stride, p.cfg.Pad)
}

// OutputSize computes the output spatial dimensions for a given input size.
//
// Returns: [out_height, out_width].
func (p *Pool2D) OutputSize(inputH, inputW int) [2]int {
	return [2]int{
		tensor.ConvOutputSize(inputH, p.cfg.PoolH, p.cfg.Pad, p.cfg.Stride),
		tensor.ConvOutputSize(inputW, p.cfg.PoolW, p.cfg.Pad, p.cfg.Stride),
	}
}

// Forward reduces every receptive field of every channel by max or mean.
func (p *Pool2D) Forward(input *tensor.Tensor) *tensor.Tensor {
	cfg := p.cfg
	inShape := input.Shape()
	if len(inShape) != 4 {
		panic(fmt.Sprintf("pool2d: expected 4-D input [N,C,H,W], got %v", inShape))
	}

	n, c, h, w := inShape[0], inShape[1], inShape[2], inShape[3]
	outH := tensor.ConvOutputSize(h, cfg.PoolH, cfg.Pad, cfg.Stride)
	outW := tensor.ConvOutputSize(w, cfg.PoolW, cfg.Pad, cfg.Stride)
	if outH <= 0 || outW <= 0 {
		panic(fmt.Sprintf("pool2d: pool %dx%d stride %d pad %d does not fit input %v",
			cfg.PoolH, cfg.PoolW, cfg.Stride, cfg.Pad, inShape))
	}

	padded := tensor.Pad2D(input, cfg.Pad, cfg.Pad)
	cols := tensor.Im2Col(padded, cfg.PoolH, cfg.PoolW, cfg.Stride) // [N, C, KH*KW, OH*OW]

	kk := cfg.PoolH * cfg.PoolW
	positions := outH * outW
	out := tensor.New(tensor.Shape{n, c, outH, outW})
	outData := out.Data()
	colsData := cols.Data()

	for nc := 0; nc < n*c; nc++ {
		patch := colsData[nc*kk*positions : (nc+1)*kk*positions]
		dst := outData[nc*positions : (nc+1)*positions]
		switch cfg.Type {
		case MaxPool:
			for pos := 0; pos < positions; pos++ {
				best := patch[pos]
				for k := 1; k < kk; k++ {
					if v := patch[k*positions+pos]; v > best {
						best = v
					}
				}
				dst[pos] = best
			}
		case AvgPool:
			for pos := 0; pos < positions; pos++ {
				sum := 0.0
				for k := 0; k < kk; k++ {
					sum += patch[k*positions+pos]
				}
				dst[pos] = sum / float64(kk)
			}
		default:
			panic(fmt.Sprintf("pool2d: unsupported pool type %q", cfg.Type))
		}
	}
	return out
}

// Backward computes the gradient w.r.t. the input.
//
// Max pooling routes the gradient to every position that attains the patch
// maximum — exact ties all receive the full gradient, via an equality mask.
// Average pooling distributes outGrad/(poolH*poolW) to every position.
// Either way the per-patch gradients are scatter-accumulated back through
// Col2Im (overlapping fields sum) and the padding margins are stripped.
func (p *Pool2D) Backward(outGrad, input *tensor.Tensor) *tensor.Tensor {
	cfg := p.cfg
	inShape := input.Shape()
	if len(inShape) != 4 {
		panic(fmt.Sprintf("pool2d: expected 4-D input [N,C,H,W], got %v", inShape))
	}

	n, c, h, w := inShape[0], inShape[1], inShape[2], inShape[3]
	outH := tensor.ConvOutputSize(h, cfg.PoolH, cfg.Pad, cfg.Stride)
	outW := tensor.ConvOutputSize(w, cfg.PoolW, cfg.Pad, cfg.Stride)
	wantGrad := tensor.Shape{n, c, outH, outW}
	if !outGrad.Shape().Equal(wantGrad) {
		panicShape("pool2d", wantGrad, outGrad.Shape())
	}

	padded := tensor.Pad2D(input, cfg.Pad, cfg.Pad)
	cols := tensor.Im2Col(padded, cfg.PoolH, cfg.PoolW, cfg.Stride)

	kk := cfg.PoolH * cfg.PoolW
	positions := outH * outW
	colsGrad := tensor.New(cols.Shape())
	colsData := cols.Data()
	colsGradData := colsGrad.Data()
	gradData := outGrad.Data()

	for nc := 0; nc < n*c; nc++ {
		patch := colsData[nc*kk*positions : (nc+1)*kk*positions]
		patchGrad := colsGradData[nc*kk*positions : (nc+1)*kk*positions]
		grad := gradData[nc*positions : (nc+1)*positions]
		switch cfg.Type {
		case MaxPool:
			for pos := 0; pos < positions; pos++ {
				best := patch[pos]
				for k := 1; k < kk; k++ {
					if v := patch[k*positions+pos]; v > best {
						best = v
					}
				}
				for k := 0; k < kk; k++ {
					if patch[k*positions+pos] == best {
						patchGrad[k*positions+pos] = grad[pos]
					}
				}
			}
		case AvgPool:
			scale := 1 / float64(kk)
			for pos := 0; pos < positions; pos++ {
				share := grad[pos] * scale
				for k := 0; k < kk; k++ {
					patchGrad[k*positions+pos] = share
				}
			}
		default:
			panic(fmt.Sprintf("pool2d: unsupported pool type %q", cfg.Type))
		}
	}

	padShape := padded.Shape()
	padGrad := tensor.Col2Im(colsGrad, padShape[2], padShape[3], cfg.PoolH, cfg.PoolW, cfg.Stride)
	return tensor.Unpad2D(padGrad, cfg.Pad, cfg.Pad)
}
