// NNUE network architecture definition.
// Adapted from Stockfish src/nnue/nnue_architecture.h for a single-layer
// output head: one linear layer mapping the concatenated, clamped
// perspective accumulators straight to a centipawn score, instead of
// Stockfish's multi-layer FC0/FC1/FC2 stack.

package sfnnue

import (
	"io"

	"github.com/veyronchess/enginecore/sfnnue/features"
)

// Network architecture constants.
const (
	// NHidden is the per-perspective accumulator width. The output layer
	// consumes the concatenation of both perspectives, so its input is
	// 2*NHidden.
	NHidden = 256

	// ClampMax bounds the clamped (ReLU) accumulator values fed to the
	// output layer.
	ClampMax = 127

	// outputQuantScale divides the raw int32 dot product down to
	// centipawns: activations are quantized by 256, weights by 16.
	outputQuantScale = 16 * 256
)

// InputDimensions is the input feature count: features.KingBuckets * 12
// piece-colors * 64 squares (see sfnnue/features.Dimensions).
const InputDimensions = features.Dimensions

// OutputLayer is the single linear layer mapping the concatenated,
// clamped perspective accumulators (2*NHidden) to one centipawn score.
type OutputLayer struct {
	Weights []int16 // length 2*NHidden
	Bias    int32
}

// NewOutputLayer allocates an output layer sized for NHidden.
func NewOutputLayer() *OutputLayer {
	return &OutputLayer{
		Weights: make([]int16, 2*NHidden),
	}
}

// GetHashValue returns the hash value for this architecture, chained from
// the feature-transformer hash the caller passes in.
func (o *OutputLayer) GetHashValue(hashValue uint32) uint32 {
	hashValue ^= uint32(2*NHidden) * 2
	return hashValue
}

// ReadParameters reads the output layer's weights and bias from a stream.
func (o *OutputLayer) ReadParameters(r io.Reader) error {
	bias, err := ReadLittleEndian[int32](r)
	if err != nil {
		return err
	}
	o.Bias = bias

	return ReadLittleEndianSlice(r, o.Weights)
}

// Propagate computes the dot product of the output weights against the
// clamped, concatenated perspective activations, plus bias, scaled down
// to a centipawn score.
func (o *OutputLayer) Propagate(activations []int16) int32 {
	sum := SIMDDotProductInt16(o.Weights, activations, len(o.Weights))
	return (sum + o.Bias) / outputQuantScale
}
