package sfnnue

import (
	"encoding/binary"
	"os"
	"testing"
)

// weightsDir points at a local directory of a real NNUE network file for
// tests that load it end to end. The file isn't checked into the repo, so
// set NNUE_WEIGHTS_DIR to run TestLoadNetwork against it; otherwise the
// test skips.
var weightsDir = envOr("NNUE_WEIGHTS_DIR", "testdata")

var netFile = weightsDir + "/nn-default.nnue"

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func TestInspectNetworkHeader(t *testing.T) {
	f, err := os.Open(netFile)
	if err != nil {
		t.Skipf("Skipping %s: %v", netFile, err)
	}
	defer f.Close()

	var version, hash, descSize uint32
	binary.Read(f, binary.LittleEndian, &version)
	binary.Read(f, binary.LittleEndian, &hash)
	binary.Read(f, binary.LittleEndian, &descSize)

	desc := make([]byte, descSize)
	f.Read(desc)

	t.Logf("File: %s", netFile)
	t.Logf("  Version: %08x (expected: %08x)", version, Version)
	t.Logf("  Hash: %08x", hash)
	t.Logf("  Description: %s", string(desc))
}

func TestLoadNetwork(t *testing.T) {
	net := NewNetwork()
	t.Logf("Network expected hash: %08x", net.Hash)

	f, err := os.Open(netFile)
	if err != nil {
		t.Skipf("Skipping test: %v", err)
	}
	defer f.Close()

	if err := net.LoadFromReader(f); err != nil {
		t.Errorf("Failed to load network: %v", err)
		return
	}

	t.Logf("Loaded network: %s", net.NetDescription)
}

func newTestTransformer(halfDims, inputDims int) *FeatureTransformer {
	ft := &FeatureTransformer{
		HalfDimensions:  halfDims,
		InputDimensions: inputDims,
		Biases:          make([]int16, halfDims),
		Weights:         make([]int16, halfDims*inputDims),
	}
	for i := range ft.Biases {
		ft.Biases[i] = int16(i % 100)
	}
	for i := range ft.Weights {
		ft.Weights[i] = int16((i * 7) % 200)
	}
	return ft
}

// TestForwardIncrementalUpdate verifies that incremental update produces same result as full refresh
func TestForwardIncrementalUpdate(t *testing.T) {
	halfDims, inputDims := 128, 1000
	ft := newTestTransformer(halfDims, inputDims)

	prevAcc := NewAccumulator(halfDims)
	currAccIncremental := NewAccumulator(halfDims)
	currAccFull := NewAccumulator(halfDims)

	initialFeatures := []int{10, 50, 100, 200, 500}
	ft.ComputeAccumulator(initialFeatures, prevAcc.Accumulation[0])
	prevAcc.Computed[0] = true
	prevAcc.KingSq[0] = 4 // e1

	removed := []int{50}
	added := []int{300}

	ft.ForwardUpdateIncremental(prevAcc, currAccIncremental, removed, added, 0)

	newFeatures := []int{10, 100, 200, 300, 500} // 50 removed, 300 added
	ft.ComputeAccumulator(newFeatures, currAccFull.Accumulation[0])

	for i := 0; i < halfDims; i++ {
		if currAccIncremental.Accumulation[0][i] != currAccFull.Accumulation[0][i] {
			t.Errorf("Mismatch at accumulation[%d]: incremental=%d, full=%d",
				i, currAccIncremental.Accumulation[0][i], currAccFull.Accumulation[0][i])
		}
	}

	t.Log("Forward incremental update matches full refresh")
}

// TestBackwardIncrementalUpdate verifies backward update reverses changes correctly
func TestBackwardIncrementalUpdate(t *testing.T) {
	halfDims, inputDims := 128, 1000
	ft := newTestTransformer(halfDims, inputDims)

	originalAcc := NewAccumulator(halfDims)
	laterAcc := NewAccumulator(halfDims)
	recoveredAcc := NewAccumulator(halfDims)

	originalFeatures := []int{10, 50, 100, 200, 500}
	ft.ComputeAccumulator(originalFeatures, originalAcc.Accumulation[0])
	originalAcc.Computed[0] = true

	removed := []int{50}
	added := []int{300}
	ft.ForwardUpdateIncremental(originalAcc, laterAcc, removed, added, 0)
	ft.BackwardUpdateIncremental(laterAcc, recoveredAcc, removed, added, 0)

	for i := 0; i < halfDims; i++ {
		if recoveredAcc.Accumulation[0][i] != originalAcc.Accumulation[0][i] {
			t.Errorf("Mismatch at accumulation[%d]: recovered=%d, original=%d",
				i, recoveredAcc.Accumulation[0][i], originalAcc.Accumulation[0][i])
		}
	}

	t.Log("Backward incremental update correctly reverses changes")
}

// TestDoubleUpdateOptimization verifies double update equals two separate updates
func TestDoubleUpdateOptimization(t *testing.T) {
	halfDims, inputDims := 128, 1000
	ft := newTestTransformer(halfDims, inputDims)

	originalAcc := NewAccumulator(halfDims)
	singleUpdateAcc := NewAccumulator(halfDims)
	doubleUpdateAcc := NewAccumulator(halfDims)

	originalFeatures := []int{10, 50, 100, 200, 500}
	ft.ComputeAccumulator(originalFeatures, originalAcc.Accumulation[0])
	originalAcc.Computed[0] = true

	removed1, added1 := []int{50}, []int{300}
	removed2, added2 := []int{100}, []int{400}

	intermediateAcc := NewAccumulator(halfDims)
	ft.ForwardUpdateIncremental(originalAcc, intermediateAcc, removed1, added1, 0)
	ft.ForwardUpdateIncremental(intermediateAcc, singleUpdateAcc, removed2, added2, 0)

	ft.DoubleUpdateIncremental(originalAcc, doubleUpdateAcc, removed1, added1, removed2, added2, 0)

	for i := 0; i < halfDims; i++ {
		if doubleUpdateAcc.Accumulation[0][i] != singleUpdateAcc.Accumulation[0][i] {
			t.Errorf("Mismatch at accumulation[%d]: double=%d, single=%d",
				i, doubleUpdateAcc.Accumulation[0][i], singleUpdateAcc.Accumulation[0][i])
		}
	}

	t.Log("Double update optimization equals two separate updates")
}

// TestTransformClampsToRange verifies Transform clamps activations to [0, ClampMax].
func TestTransformClampsToRange(t *testing.T) {
	halfDims := 16
	ft := newTestTransformer(halfDims, 100)

	acc := [2][]int16{make([]int16, halfDims), make([]int16, halfDims)}
	for i := range acc[0] {
		acc[0][i] = int16(i*50 - 300) // spans negative and > ClampMax
		acc[1][i] = int16(i * 10)
	}

	out := make([]int16, 2*halfDims)
	ft.Transform(acc, [2]int{0, 1}, out)

	for _, v := range out {
		if v < 0 || v > ClampMax {
			t.Errorf("activation %d out of clamp range [0,%d]", v, ClampMax)
		}
	}
}

// TestAccumulatorStack verifies stack operations
func TestAccumulatorStack(t *testing.T) {
	stack := NewAccumulatorStack()

	if stack.Size != 1 {
		t.Errorf("Initial size should be 1, got %d", stack.Size)
	}

	stack.Push()
	if stack.Size != 2 {
		t.Errorf("After push, size should be 2, got %d", stack.Size)
	}

	prev := stack.Previous()
	if prev == nil {
		t.Error("Previous should not be nil after push")
	}

	stack.Pop()
	if stack.Size != 1 {
		t.Errorf("After pop, size should be 1, got %d", stack.Size)
	}

	prev = stack.Previous()
	if prev != nil {
		t.Error("Previous should be nil when at bottom of stack")
	}

	t.Log("Accumulator stack operations work correctly")
}
