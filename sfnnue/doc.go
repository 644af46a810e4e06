/*
Package sfnnue is a Go port of Stockfish's NNUE evaluation.

This code is derived from Stockfish, a UCI chess playing engine.
Copyright (C) 2004-2026 The Stockfish developers (see AUTHORS file)

Stockfish is free software: you can redistribute it and/or modify
it under the terms of the GNU General Public License as published by
the Free Software Foundation, either version 3 of the License, or
(at your option) any later version.

Stockfish is distributed in the hope that it will be useful,
but WITHOUT ANY WARRANTY; without even the implied warranty of
MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
GNU General Public License for more details.

You should have received a copy of the GNU General Public License
along with this program.  If not, see <http://www.gnu.org/licenses/>.

Original C++ source: https://github.com/official-stockfish/Stockfish

# Architecture

This package implements an NNUE (Efficiently Updatable Neural Network)
evaluation function in the style of Stockfish's NNUE, trimmed to a single
network and a single linear output layer. Each perspective accumulates a
king-bucketed, horizontally-mirrored feature set into an int16 vector;
both perspectives' vectors are clamped and concatenated, then dotted
against the output layer's weights to produce a centipawn score.

# Usage

	eval, err := sfnnue.NewEvaluator("nn-xxx.nnue")
	if err != nil {
		log.Fatal(err)
	}

	// Fill each perspective's accumulator from the position's active
	// feature indices, then run the forward pass.
	acc := eval.AccStack.Current()
	for c := 0; c < 2; c++ {
		eval.Network.FeatureTransformer.ComputeAccumulator(indices[c], acc.Accumulation[c])
	}
	score := eval.Network.Evaluate(acc.Accumulation, sideToMove)
*/
package sfnnue
