// NNUE feature transformer.
// Adapted from Stockfish src/nnue/nnue_feature_transformer.h: keeps the
// incremental accumulator-update machinery but drops the PSQT output and
// the threat-feature path, since the single-network architecture has
// neither.

package sfnnue

import (
	"fmt"
	"io"

	"github.com/veyronchess/enginecore/sfnnue/features"
)

// FeatureTransformer converts input features to the per-perspective
// hidden layer.
type FeatureTransformer struct {
	HalfDimensions  int
	InputDimensions int // feature-set dimensions

	Biases  []int16 // [HalfDimensions]
	Weights []int16 // [InputDimensions * HalfDimensions]
}

// NewFeatureTransformer creates a feature transformer sized for NHidden.
func NewFeatureTransformer() *FeatureTransformer {
	return &FeatureTransformer{
		HalfDimensions:  NHidden,
		InputDimensions: features.Dimensions,
		Biases:          make([]int16, NHidden),
		Weights:         make([]int16, NHidden*features.Dimensions),
	}
}

// GetHashValue returns the hash value for this transformer.
func (ft *FeatureTransformer) GetHashValue() uint32 {
	return features.HashValue ^ uint32(ft.HalfDimensions*2)
}

// ReadParameters reads transformer parameters from a stream.
func (ft *FeatureTransformer) ReadParameters(r io.Reader) error {
	if err := ReadLEB128(r, ft.Biases); err != nil {
		return fmt.Errorf("failed to read biases: %w", err)
	}
	if err := ReadLEB128(r, ft.Weights); err != nil {
		return fmt.Errorf("failed to read weights: %w", err)
	}
	return nil
}

// Transform clamps each perspective's accumulator to [0, ClampMax] and
// concatenates them into a single 2*HalfDimensions activation vector,
// stm's perspective first.
func (ft *FeatureTransformer) Transform(
	accumulation [2][]int16, // [color][HalfDimensions]
	perspectives [2]int, // [0]=stm, [1]=nstm
	output []int16, // 2*HalfDimensions
) {
	halfDims := ft.HalfDimensions
	for p := 0; p < 2; p++ {
		offset := halfDims * p
		copy(output[offset:offset+halfDims], accumulation[perspectives[p]])
		SIMDClampInt16(output[offset:offset+halfDims], ClampMax)
	}
}

// ComputeAccumulator computes the full accumulator from scratch.
func (ft *FeatureTransformer) ComputeAccumulator(activeIndices []int, accumulation []int16) {
	SIMDCopyInt16(accumulation, ft.Biases)

	for _, idx := range activeIndices {
		if idx >= 0 && idx < ft.InputDimensions {
			offset := idx * ft.HalfDimensions
			SIMDAddInt16Offset(accumulation, ft.Weights, offset, ft.HalfDimensions)
		}
	}
}

// UpdateAccumulator incrementally updates the accumulator in place.
func (ft *FeatureTransformer) UpdateAccumulator(removedIndices, addedIndices []int, accumulation []int16) {
	for _, idx := range removedIndices {
		if idx >= 0 && idx < ft.InputDimensions {
			offset := idx * ft.HalfDimensions
			SIMDSubInt16Offset(accumulation, ft.Weights, offset, ft.HalfDimensions)
		}
	}

	for _, idx := range addedIndices {
		if idx >= 0 && idx < ft.InputDimensions {
			offset := idx * ft.HalfDimensions
			SIMDAddInt16Offset(accumulation, ft.Weights, offset, ft.HalfDimensions)
		}
	}
}

// ForwardUpdateIncremental derives the current accumulator from the
// previous one by copying its state and applying the move's feature
// deltas.
func (ft *FeatureTransformer) ForwardUpdateIncremental(
	prevAcc *Accumulator,
	currAcc *Accumulator,
	removedIndices, addedIndices []int,
	perspective int,
) {
	SIMDCopyInt16(currAcc.Accumulation[perspective], prevAcc.Accumulation[perspective])

	ft.UpdateAccumulator(removedIndices, addedIndices, currAcc.Accumulation[perspective])

	currAcc.Computed[perspective] = true
	currAcc.KingSq[perspective] = prevAcc.KingSq[perspective]
}

// BackwardUpdateIncremental derives the current accumulator from a later
// one already computed deeper in the tree, reversing the changes between
// them: what was removed going forward gets added back, and vice versa.
func (ft *FeatureTransformer) BackwardUpdateIncremental(
	laterAcc *Accumulator,
	currAcc *Accumulator,
	removedIndices, addedIndices []int,
	perspective int,
) {
	SIMDCopyInt16(currAcc.Accumulation[perspective], laterAcc.Accumulation[perspective])

	ft.UpdateAccumulator(addedIndices, removedIndices, currAcc.Accumulation[perspective]) // swapped

	currAcc.Computed[perspective] = true
	currAcc.KingSq[perspective] = laterAcc.KingSq[perspective]
}

// DoubleUpdateIncremental performs a fused update for two consecutive
// moves, avoiding an intermediate accumulator materialization.
func (ft *FeatureTransformer) DoubleUpdateIncremental(
	prevAcc *Accumulator,
	currAcc *Accumulator,
	removed1, added1, removed2, added2 []int,
	perspective int,
) {
	var allRemovedBuf [16]int
	var allAddedBuf [16]int

	removedLen := len(removed1) + len(removed2)
	addedLen := len(added1) + len(added2)

	copy(allRemovedBuf[:len(removed1)], removed1)
	copy(allRemovedBuf[len(removed1):removedLen], removed2)
	copy(allAddedBuf[:len(added1)], added1)
	copy(allAddedBuf[len(added1):addedLen], added2)

	ft.ForwardUpdateIncremental(prevAcc, currAcc, allRemovedBuf[:removedLen], allAddedBuf[:addedLen], perspective)
}
