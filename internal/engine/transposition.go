package engine

import (
	"math/bits"
	"runtime"

	"golang.org/x/sync/errgroup"

	"github.com/veyronchess/enginecore/internal/board"
)

// TTFlag indicates the type of bound stored in the transposition table.
type TTFlag uint8

const (
	TTExact      TTFlag = iota // Exact score
	TTLowerBound               // Failed high (beta cutoff)
	TTUpperBound               // Failed low
)

const (
	ttBucketEntries = 3 // one bucket per cache line
	ttAgeBits       = 5
	ttAgeMask       = (1 << ttAgeBits) - 1
	ttDepthOffset   = 8 // offset-biased depth so 0 always means "empty"
)

// ttEntry is one packed bucket slot: a 16-bit key prefix, an 8-bit
// offset-biased depth, an 8-bit age+pv+bound field (bound in the low 2
// bits, pv in bit 2, age in the high 5 bits), a combined 32-bit
// static-eval+move field, and a 16-bit score.
type ttEntry struct {
	key      uint16
	depth8   uint8
	genBound uint8
	evalMove uint32
	score16  int16
}

func (e *ttEntry) bound() TTFlag      { return TTFlag(e.genBound & 0x3) }
func (e *ttEntry) isPV() bool         { return e.genBound&0x4 != 0 }
func (e *ttEntry) genAge() uint8      { return e.genBound >> 3 }
func (e *ttEntry) move() board.Move   { return board.Move(uint16(e.evalMove)) }
func (e *ttEntry) eval() int16        { return int16(e.evalMove >> 16) }
func (e *ttEntry) relDepth() int      { return int(e.depth8) - ttDepthOffset }
func (e *ttEntry) empty() bool        { return e.depth8 == 0 }

func packGenBound(age uint8, pv bool, bound TTFlag) uint8 {
	var pvBit uint8
	if pv {
		pvBit = 0x4
	}
	return (age&ttAgeMask)<<3 | pvBit | uint8(bound&0x3)
}

func packEvalMove(eval int16, move board.Move) uint32 {
	return uint32(uint16(eval))<<16 | uint32(uint16(move))
}

// ttBucket is a cache-line-sized group of 3-way entries, probed with a
// linear scan instead of rehashing on collision.
type ttBucket struct {
	entries [ttBucketEntries]ttEntry
	_       [64 - ttBucketEntries*12]byte // pad three 12-byte entries to 64 bytes
}

// TTEntry is the externally-visible, unpacked view of a probed slot.
type TTEntry struct {
	BestMove board.Move
	Score    int16
	Eval     int16
	Depth    int8
	Flag     TTFlag
	IsPV     bool
}

// TranspositionTable is a lock-free, 3-way bucketed hash table for storing
// search results. Entries are not accessed atomically: torn reads are
// tolerated because every consumer re-validates the packed move and the
// packed score via bound-guarded logic before trusting either.
type TranspositionTable struct {
	buckets []ttBucket
	count   uint64 // bucket count, used for the (hash*count)>>64 index
	age     uint8

	hits   uint64
	probes uint64
}

// NewTranspositionTable creates a transposition table with the given size in MB.
func NewTranspositionTable(sizeMB int) *TranspositionTable {
	const bucketBytes = 64 // 3 entries + alignment padding, one cache line
	numBuckets := (uint64(sizeMB) * 1024 * 1024) / bucketBytes
	if numBuckets == 0 {
		numBuckets = 1
	}

	return &TranspositionTable{
		buckets: make([]ttBucket, numBuckets),
		count:   numBuckets,
	}
}

// index computes the bucket for a hash via 128-bit multiplication, avoiding
// a modulo and the power-of-2-size constraint it would otherwise impose.
func (tt *TranspositionTable) index(hash uint64) uint64 {
	hi, _ := bits.Mul64(hash, tt.count)
	return hi
}

// Probe looks up a position, linearly scanning its bucket's 3 entries for a
// matching key prefix. A hit refreshes the entry's age to the current
// generation so it survives replacement a little longer.
func (tt *TranspositionTable) Probe(hash uint64) (TTEntry, bool) {
	tt.probes++
	key16 := uint16(hash >> 48)
	bucket := &tt.buckets[tt.index(hash)]

	for i := range bucket.entries {
		e := &bucket.entries[i]
		if !e.empty() && e.key == key16 {
			e.genBound = packGenBound(tt.age, e.isPV(), e.bound())
			tt.hits++
			return TTEntry{
				BestMove: e.move(),
				Score:    e.score16,
				Eval:     e.eval(),
				Depth:    int8(e.relDepth()),
				Flag:     e.bound(),
				IsPV:     e.isPV(),
			}, true
		}
	}
	return TTEntry{}, false
}

// Store saves a position's search result with no cached static eval.
func (tt *TranspositionTable) Store(hash uint64, depth int, score int, flag TTFlag, bestMove board.Move, isPV bool) {
	tt.StoreEval(hash, depth, score, 0, flag, bestMove, isPV)
}

// StoreEval is Store plus an explicit static-eval value, packed alongside
// the move in the entry's combined eval+move field.
//
// Replacement policy: if the bucket already holds this key, replace when
// the incoming bound is EXACT or depth+4 exceeds the stored depth; the move
// field is still refreshed even when the rest of the slot is kept, unless
// the incoming move is null. Otherwise the victim is the slot minimizing
// depth-((age-entryAge)&AGE_MASK)/2, i.e. the shallowest, stalest entry.
func (tt *TranspositionTable) StoreEval(hash uint64, depth int, score int, eval int, flag TTFlag, bestMove board.Move, isPV bool) {
	key16 := uint16(hash >> 48)
	bucket := &tt.buckets[tt.index(hash)]
	depthBiased := clampDepth(depth + ttDepthOffset)

	var slot *ttEntry
	sameKey := false
	for i := range bucket.entries {
		e := &bucket.entries[i]
		if e.empty() {
			slot = e
			break
		}
		if e.key == key16 {
			slot = e
			sameKey = true
			break
		}
	}

	if sameKey {
		replace := flag == TTExact || int(depthBiased)+4 > int(slot.depth8)
		if !replace {
			if bestMove != board.NoMove {
				slot.evalMove = packEvalMove(slot.eval(), bestMove)
			}
			return
		}
	} else if slot == nil {
		// No empty slot and no key match: evict the least valuable entry.
		worst := 1 << 30
		for i := range bucket.entries {
			e := &bucket.entries[i]
			v := int(e.depth8) - int((tt.age-e.genAge())&ttAgeMask)/2
			if v < worst {
				worst = v
				slot = e
			}
		}
	}

	move := bestMove
	if move == board.NoMove && sameKey {
		move = slot.move()
	}

	slot.key = key16
	slot.depth8 = depthBiased
	slot.genBound = packGenBound(tt.age, isPV, flag)
	slot.evalMove = packEvalMove(int16(eval), move)
	slot.score16 = int16(score)
}

func clampDepth(v int) uint8 {
	if v < 1 {
		return 1
	}
	if v > 255 {
		return 255
	}
	return uint8(v)
}

// NewSearch increments the age counter for a new search, wrapping cleanly
// within the 5-bit age field so age comparisons stay well-defined across
// the wrap (see genAge/StoreEval's victim-selection distance calculation).
func (tt *TranspositionTable) NewSearch() {
	tt.age = (tt.age + 1) & ttAgeMask
}

// Clear clears the transposition table, parallelized across GOMAXPROCS
// goroutines by slicing the bucket array into contiguous blocks.
func (tt *TranspositionTable) Clear() {
	workers := runtime.GOMAXPROCS(0)
	if workers < 1 {
		workers = 1
	}
	n := len(tt.buckets)
	if n == 0 {
		tt.age, tt.hits, tt.probes = 0, 0, 0
		return
	}
	chunk := (n + workers - 1) / workers

	var g errgroup.Group
	for start := 0; start < n; start += chunk {
		end := start + chunk
		if end > n {
			end = n
		}
		s, e := start, end
		g.Go(func() error {
			for i := s; i < e; i++ {
				tt.buckets[i] = ttBucket{}
			}
			return nil
		})
	}
	g.Wait()

	tt.age = 0
	tt.hits = 0
	tt.probes = 0
}

// HashFull returns the permille of the table that is used, sampling the
// first 1000 buckets and counting entries whose age matches the current
// generation.
func (tt *TranspositionTable) HashFull() int {
	sampleSize := 1000
	if uint64(sampleSize) > tt.count {
		sampleSize = int(tt.count)
	}
	if sampleSize == 0 {
		return 0
	}

	used := 0
	for i := 0; i < sampleSize; i++ {
		for j := range tt.buckets[i].entries {
			e := &tt.buckets[i].entries[j]
			if !e.empty() && e.genAge() == tt.age {
				used++
			}
		}
	}

	return (used * 1000) / (sampleSize * ttBucketEntries)
}

// HitRate returns the cache hit rate as a percentage.
func (tt *TranspositionTable) HitRate() float64 {
	if tt.probes == 0 {
		return 0
	}
	return float64(tt.hits) / float64(tt.probes) * 100
}

// Size returns the number of buckets in the table.
func (tt *TranspositionTable) Size() uint64 {
	return tt.count
}

// AdjustScoreFromTT adjusts a score from/to the transposition table.
// Mate scores need to be adjusted based on ply distance.
func AdjustScoreFromTT(score int, ply int) int {
	if score > MateScore-MaxPly {
		return score - ply
	}
	if score < -MateScore+MaxPly {
		return score + ply
	}
	return score
}

// AdjustScoreToTT adjusts a score for storage in the transposition table.
func AdjustScoreToTT(score int, ply int) int {
	if score > MateScore-MaxPly {
		return score + ply
	}
	if score < -MateScore+MaxPly {
		return score - ply
	}
	return score
}
