package nn

import (
	"fmt"
	"math"

	"github.com/backprop-ml/backprop/internal/tensor"
)

// epsilon added inside the log to avoid log(0).
const crossEntropyEps = 1e-12

// SoftmaxCrossEntropy fuses softmax normalization with the negative
// log-likelihood loss for multi-class classification.
//
// Forward takes raw logits [batch, classes] and class-index labels [batch],
// and returns the mean negative log-probability of the true classes along
// with the full probability matrix. The softmax is stabilized by subtracting
// the per-row maximum before exponentiating, so logits of magnitude 1000
// produce a finite loss, and a small epsilon inside the log guards the
// degenerate all -Inf row.
//
// Backward has the closed form (probs - one_hot(labels)) / batch and
// recomputes the probabilities from the same logits independently of
// Forward.
type SoftmaxCrossEntropy struct{}

// NewSoftmaxCrossEntropy creates a new softmax-cross-entropy loss operator.
func NewSoftmaxCrossEntropy() *SoftmaxCrossEntropy {
	return &SoftmaxCrossEntropy{}
}

func (s *SoftmaxCrossEntropy) checkShapes(logits *tensor.Tensor, labels []int) (batch, classes int) {
	shape := logits.Shape()
	if len(shape) != 2 {
		panic(fmt.Sprintf("softmax_cross_entropy: expected 2-D logits [batch, classes], got %v", shape))
	}
	batch, classes = shape[0], shape[1]
	if len(labels) != batch {
		panic(fmt.Sprintf("softmax_cross_entropy: %d labels for batch of %d", len(labels), batch))
	}
	for i, label := range labels {
		if label < 0 || label >= classes {
			panic(fmt.Sprintf("softmax_cross_entropy: label %d at index %d out of range [0, %d)", label, i, classes))
		}
	}
	return batch, classes
}

// logProbsRow writes the numerically stabilized log-probabilities of one
// logits row into dst.
func logProbsRow(dst, logits []float64) {
	maxLogit := logits[0]
	for _, v := range logits[1:] {
		if v > maxLogit {
			maxLogit = v
		}
	}
	sumExp := 0.0
	for i, v := range logits {
		dst[i] = v - maxLogit
		sumExp += math.Exp(dst[i])
	}
	logZ := math.Log(sumExp + crossEntropyEps)
	for i := range dst {
		dst[i] -= logZ
	}
}

// Forward returns the mean loss over the batch and the probability matrix
// [batch, classes].
func (s *SoftmaxCrossEntropy) Forward(logits *tensor.Tensor, labels []int) (float64, *tensor.Tensor) {
	batch, classes := s.checkShapes(logits, labels)

	probs := tensor.New(logits.Shape())
	probsData := probs.Data()
	logitsData := logits.Data()

	loss := 0.0
	row := make([]float64, classes)
	for i := 0; i < batch; i++ {
		logProbsRow(row, logitsData[i*classes:(i+1)*classes])
		loss -= row[labels[i]]
		for j, lp := range row {
			probsData[i*classes+j] = math.Exp(lp)
		}
	}
	return loss / float64(batch), probs
}

// Backward returns the gradient w.r.t. the logits:
// (probs - one_hot(labels)) / batch.
func (s *SoftmaxCrossEntropy) Backward(logits *tensor.Tensor, labels []int) *tensor.Tensor {
	batch, classes := s.checkShapes(logits, labels)

	grad := tensor.New(logits.Shape())
	gradData := grad.Data()
	logitsData := logits.Data()

	row := make([]float64, classes)
	for i := 0; i < batch; i++ {
		logProbsRow(row, logitsData[i*classes:(i+1)*classes])
		for j, lp := range row {
			gradData[i*classes+j] = math.Exp(lp)
		}
		gradData[i*classes+labels[i]] -= 1
	}
	for i := range gradData {
		gradData[i] /= float64(batch)
	}
	return grad
}

// Accuracy computes the fraction of rows whose argmax matches the label.
// Used by the example models for progress reporting.
func Accuracy(logits *tensor.Tensor, labels []int) float64 {
	shape := logits.Shape()
	if len(shape) != 2 {
		panic(fmt.Sprintf("accuracy: expected 2-D logits, got %v", shape))
	}
	batch, classes := shape[0], shape[1]
	if len(labels) != batch {
		panic(fmt.Sprintf("accuracy: %d labels for batch of %d", len(labels), batch))
	}

	data := logits.Data()
	correct := 0
	for i := 0; i < batch; i++ {
		if argmax(data[i*classes:(i+1)*classes]) == labels[i] {
			correct++
		}
	}
	return float64(correct) / float64(batch)
}

// argmax returns the index of the maximum value in the slice.
func argmax(row []float64) int {
	maxIdx := 0
	for i, v := range row[1:] {
		if v > row[maxIdx] {
			maxIdx = i + 1
		}
	}
	return maxIdx
}
