// NNUE network loading and evaluation.
// Adapted from Stockfish src/nnue/network.h and network.cpp: keeps the
// file-format framing (version, hash, description, feature-transformer
// block) but the body is a single Network/single OutputLayer, not
// Stockfish's big/small pair selected by material count.

package sfnnue

import (
	"fmt"
	"io"
	"os"
)

// Network represents a complete NNUE network: one feature transformer and
// one output layer.
type Network struct {
	FeatureTransformer *FeatureTransformer
	Output             *OutputLayer

	CurrentFile    string
	NetDescription string

	Initialized bool

	// Hash is the expected combined architecture hash, validated against
	// the file's header on load.
	Hash uint32
}

// NewNetwork creates an uninitialized network sized for NHidden.
func NewNetwork() *Network {
	net := &Network{
		FeatureTransformer: NewFeatureTransformer(),
		Output:             NewOutputLayer(),
	}
	net.Hash = net.calculateHash()
	return net
}

// calculateHash calculates the expected hash for this network.
func (n *Network) calculateHash() uint32 {
	return n.Output.GetHashValue(n.FeatureTransformer.GetHashValue())
}

// Load loads network parameters from a file.
func (n *Network) Load(filename string) error {
	f, err := os.Open(filename)
	if err != nil {
		return fmt.Errorf("failed to open file: %w", err)
	}
	defer f.Close()

	n.CurrentFile = filename
	return n.LoadFromReader(f)
}

// LoadFromReader loads network parameters from a reader.
func (n *Network) LoadFromReader(r io.Reader) error {
	n.Initialized = true

	hashValue, description, err := n.readHeader(r)
	if err != nil {
		return fmt.Errorf("failed to read header: %w", err)
	}

	if hashValue != n.Hash {
		return fmt.Errorf("hash mismatch: expected %08x, got %08x", n.Hash, hashValue)
	}

	n.NetDescription = description

	if err := n.readParameters(r); err != nil {
		return fmt.Errorf("failed to read parameters: %w", err)
	}

	return nil
}

// readHeader reads and validates the network file header.
func (n *Network) readHeader(r io.Reader) (uint32, string, error) {
	version, err := ReadLittleEndian[uint32](r)
	if err != nil {
		return 0, "", fmt.Errorf("failed to read version: %w", err)
	}
	if version != Version {
		return 0, "", fmt.Errorf("version mismatch: expected %08x, got %08x", Version, version)
	}

	hashValue, err := ReadLittleEndian[uint32](r)
	if err != nil {
		return 0, "", fmt.Errorf("failed to read hash: %w", err)
	}

	descSize, err := ReadLittleEndian[uint32](r)
	if err != nil {
		return 0, "", fmt.Errorf("failed to read description size: %w", err)
	}

	descBytes := make([]byte, descSize)
	if _, err := io.ReadFull(r, descBytes); err != nil {
		return 0, "", fmt.Errorf("failed to read description: %w", err)
	}

	return hashValue, string(descBytes), nil
}

// readParameters reads the feature transformer and output layer, each
// preceded by a hash-validated block header.
func (n *Network) readParameters(r io.Reader) error {
	transformerHash, err := ReadLittleEndian[uint32](r)
	if err != nil {
		return fmt.Errorf("failed to read transformer hash: %w", err)
	}
	expectedTransformerHash := n.FeatureTransformer.GetHashValue()
	if transformerHash != expectedTransformerHash {
		return fmt.Errorf("transformer hash mismatch: expected %08x, got %08x",
			expectedTransformerHash, transformerHash)
	}
	if err := n.FeatureTransformer.ReadParameters(r); err != nil {
		return fmt.Errorf("failed to read transformer parameters: %w", err)
	}

	outputHash, err := ReadLittleEndian[uint32](r)
	if err != nil {
		return fmt.Errorf("failed to read output layer hash: %w", err)
	}
	expectedOutputHash := n.Output.GetHashValue(n.FeatureTransformer.GetHashValue())
	if outputHash != expectedOutputHash {
		return fmt.Errorf("output layer hash mismatch: expected %08x, got %08x",
			expectedOutputHash, outputHash)
	}
	if err := n.Output.ReadParameters(r); err != nil {
		return fmt.Errorf("failed to read output layer: %w", err)
	}

	return nil
}

// Evaluate runs the forward pass: transform both perspectives' clamped
// accumulators and feed the concatenation through the output layer.
func (n *Network) Evaluate(accumulation [2][]int16, sideToMove int) int32 {
	perspectives := [2]int{sideToMove, 1 - sideToMove}

	activations := make([]int16, 2*n.FeatureTransformer.HalfDimensions)
	n.FeatureTransformer.Transform(accumulation, perspectives, activations)

	return n.Output.Propagate(activations)
}

// LoadNetwork creates and loads a network from a file.
func LoadNetwork(filename string) (*Network, error) {
	net := NewNetwork()
	if err := net.Load(filename); err != nil {
		return nil, fmt.Errorf("failed to load network: %w", err)
	}
	return net, nil
}

// Evaluator provides a high-level interface for NNUE evaluation.
type Evaluator struct {
	Network  *Network
	AccStack *AccumulatorStack
	Cache    *AccumulatorCache
}

// NewEvaluator creates a new evaluator from a network file.
func NewEvaluator(filename string) (*Evaluator, error) {
	net, err := LoadNetwork(filename)
	if err != nil {
		return nil, err
	}

	return &Evaluator{
		Network:  net,
		AccStack: NewAccumulatorStack(),
		Cache:    NewAccumulatorCache(NHidden, net.FeatureTransformer.Biases),
	}, nil
}

// Push saves accumulator state before a move
func (e *Evaluator) Push() {
	e.AccStack.Push()
}

// Pop restores accumulator state after unmaking a move
func (e *Evaluator) Pop() {
	e.AccStack.Pop()
}

// Reset resets the accumulator stack
func (e *Evaluator) Reset() {
	e.AccStack.Reset()
}

// Refresh forces a full recomputation of accumulators
func (e *Evaluator) Refresh() {
	e.AccStack.Current().Reset()
}
