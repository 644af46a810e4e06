// Feature indexing for NNUE evaluation.
// Adapted from Stockfish src/nnue/features/half_ka_v2_hm.h and .cpp: keeps
// the king-relative, perspective-oriented feature idea but folds king
// position into 32 buckets via a plain horizontal mirror instead of
// Stockfish's full king-bucket table, and drops the threat feature set.

package features

// Square constants
const (
	SQ_A1 = 0
	SQ_H1 = 7
	SQ_A8 = 56
	SQ_H8 = 63

	SQUARE_NB = 64
)

// Color constants
const (
	White = 0
	Black = 1

	COLOR_NB = 2
)

// Piece type constants
const (
	NO_PIECE_TYPE = 0
	PAWN          = 1
	KNIGHT        = 2
	BISHOP        = 3
	ROOK          = 4
	QUEEN         = 5
	KING          = 6

	PIECE_TYPE_NB = 8
)

// Piece constants (color + type encoded: color in bit 3, type in low 3 bits)
const (
	NO_PIECE = 0

	W_PAWN   = 1
	W_KNIGHT = 2
	W_BISHOP = 3
	W_ROOK   = 4
	W_QUEEN  = 5
	W_KING   = 6

	B_PAWN   = 9
	B_KNIGHT = 10
	B_BISHOP = 11
	B_ROOK   = 12
	B_QUEEN  = 13
	B_KING   = 14

	PIECE_NB = 16
)

// PieceTypesPerColor is the number of distinct piece types a perspective
// distinguishes: pawn..king, own and opponent folded separately.
const PieceTypesPerColor = 6

// KingBuckets is the number of buckets the oriented king square folds
// into. After the horizontal mirror below, the king always occupies one
// of the 4 queen-side files, giving 8 ranks * 4 files.
const KingBuckets = 32

// Name identifies this feature set in diagnostic output.
const Name = "KingBucketMirror"

// HashValue is embedded in the evaluation file and validated on load.
const HashValue uint32 = 0x5a4b3204

// Dimensions is the input feature count: KingBuckets king positions *
// 2*PieceTypesPerColor own/opponent piece types * 64 squares.
const Dimensions = KingBuckets * 2 * PieceTypesPerColor * SQUARE_NB // 32 * 12 * 64 = 24576

// MaxActiveDimensions bounds how many features can be active for one
// perspective at once.
const MaxActiveDimensions = 32

// fileOf and rankOf extract 0-based file/rank from a square index.
func fileOf(sq int) int { return sq & 7 }
func rankOf(sq int) int { return sq >> 3 }

// MakeIndex computes the feature index for piece pc on square sq, viewed
// from perspective, given the perspective's king square ksq.
//
//   - Flip vertically (sq ^= 56) when perspective is Black, so every
//     perspective sees its own back rank as rank 0.
//   - Mirror horizontally (sq ^= 7) whenever the king, after the vertical
//     flip, sits on the king-side (file > 3).
//   - Fold piece color into the perspective: the perspective's own pieces
//     take indices [0, PieceTypesPerColor), the opponent's take
//     [PieceTypesPerColor, 2*PieceTypesPerColor).
func MakeIndex(perspective int, sq int, pc int, ksq int) int {
	oKsq := ksq
	if perspective == Black {
		oKsq ^= 56
	}
	mirror := fileOf(oKsq) > 3
	if mirror {
		oKsq ^= 7
	}

	oSq := sq
	if perspective == Black {
		oSq ^= 56
	}
	if mirror {
		oSq ^= 7
	}

	pieceColor := pc >> 3
	pieceType := pc & 7
	orientedPiece := pieceType - 1 // PAWN=1..KING=6 -> 0..5
	if pieceColor != perspective {
		orientedPiece += PieceTypesPerColor
	}

	bucket := rankOf(oKsq)*4 + fileOf(oKsq)
	return bucket*(2*PieceTypesPerColor*SQUARE_NB) + orientedPiece*SQUARE_NB + oSq
}

// DirtyPiece represents a changed piece for incremental updates.
type DirtyPiece struct {
	From     int // Source square (or SQ_NONE)
	To       int // Destination square (or SQ_NONE if captured)
	Pc       int // The piece that moved
	RemoveSq int // Additional removed piece square (for captures)
	RemovePc int // Additional removed piece (captured piece)
	AddSq    int // Additional added piece square (for promotions/castling)
	AddPc    int // Additional added piece
}

// SQ_NONE represents no square
const SQ_NONE = 64

// RequiresRefresh reports whether a king move by this perspective's own
// king changes its bucket, forcing a full accumulator refresh rather than
// an incremental update.
func RequiresRefresh(diff *DirtyPiece, perspective int) bool {
	pieceType := diff.Pc & 7
	pieceColor := diff.Pc >> 3
	if pieceType != KING || pieceColor != perspective {
		return false
	}
	return bucketOf(diff.From, perspective) != bucketOf(diff.To, perspective)
}

// bucketOf returns the king bucket a square would fall into for perspective.
func bucketOf(sq, perspective int) int {
	o := sq
	if perspective == Black {
		o ^= 56
	}
	if fileOf(o) > 3 {
		o ^= 7
	}
	return rankOf(o)*4 + fileOf(o)
}

// IndexList is a list of feature indices
type IndexList struct {
	Values [MaxActiveDimensions]int
	Size   int
}

// Push adds an index to the list
func (l *IndexList) Push(idx int) {
	if l.Size < MaxActiveDimensions {
		l.Values[l.Size] = idx
		l.Size++
	}
}

// Clear resets the list
func (l *IndexList) Clear() {
	l.Size = 0
}

// Position interface for getting piece information
type Position interface {
	KingSquare(color int) int
	PieceOn(sq int) int
	Pieces() uint64
}

// PopLSB pops and returns the least significant bit position
func PopLSB(bb *uint64) int {
	if *bb == 0 {
		return -1
	}
	sq := TrailingZeros(*bb)
	*bb &= *bb - 1
	return sq
}

// TrailingZeros returns the number of trailing zeros
func TrailingZeros(bb uint64) int {
	if bb == 0 {
		return 64
	}
	n := 0
	if bb&0xFFFFFFFF == 0 {
		n += 32
		bb >>= 32
	}
	if bb&0xFFFF == 0 {
		n += 16
		bb >>= 16
	}
	if bb&0xFF == 0 {
		n += 8
		bb >>= 8
	}
	if bb&0xF == 0 {
		n += 4
		bb >>= 4
	}
	if bb&0x3 == 0 {
		n += 2
		bb >>= 2
	}
	if bb&0x1 == 0 {
		n += 1
	}
	return n
}

// AppendActiveIndices gets a list of indices for active features.
func AppendActiveIndices(perspective int, pos Position, active *IndexList) {
	ksq := pos.KingSquare(perspective)
	bb := pos.Pieces()
	for bb != 0 {
		sq := PopLSB(&bb)
		pc := pos.PieceOn(sq)
		if pc != NO_PIECE {
			active.Push(MakeIndex(perspective, sq, pc, ksq))
		}
	}
}

// AppendChangedIndices gets a list of indices for recently changed features.
func AppendChangedIndices(perspective int, ksq int, diff *DirtyPiece, removed, added *IndexList) {
	removed.Push(MakeIndex(perspective, diff.From, diff.Pc, ksq))
	if diff.To != SQ_NONE {
		added.Push(MakeIndex(perspective, diff.To, diff.Pc, ksq))
	}

	if diff.RemoveSq != SQ_NONE {
		removed.Push(MakeIndex(perspective, diff.RemoveSq, diff.RemovePc, ksq))
	}

	if diff.AddSq != SQ_NONE {
		added.Push(MakeIndex(perspective, diff.AddSq, diff.AddPc, ksq))
	}
}

// GetChangedFeatures computes the removed and added feature indices for a
// move, for incremental accumulator updates.
func GetChangedFeatures(
	perspective int,
	ksq int,
	fromSq, toSq int,
	movingPiece int,
	capturedPiece int, // NO_PIECE if not a capture
	promotionPiece int, // NO_PIECE if not a promotion
	isEnPassant bool,
	epCaptureSq int, // Square of captured pawn for en passant
	isCastling bool,
	rookFromSq, rookToSq int, // Rook squares for castling
) (removed, added []int) {
	removed = make([]int, 0, 4)
	added = make([]int, 0, 4)

	removed = append(removed, MakeIndex(perspective, fromSq, movingPiece, ksq))

	if promotionPiece != NO_PIECE {
		added = append(added, MakeIndex(perspective, toSq, promotionPiece, ksq))
	} else {
		added = append(added, MakeIndex(perspective, toSq, movingPiece, ksq))
	}

	if capturedPiece != NO_PIECE {
		if isEnPassant {
			removed = append(removed, MakeIndex(perspective, epCaptureSq, capturedPiece, ksq))
		} else {
			removed = append(removed, MakeIndex(perspective, toSq, capturedPiece, ksq))
		}
	}

	if isCastling {
		kingColor := movingPiece >> 3
		rookPiece := W_ROOK
		if kingColor == 1 {
			rookPiece = B_ROOK
		}
		removed = append(removed, MakeIndex(perspective, rookFromSq, rookPiece, ksq))
		added = append(added, MakeIndex(perspective, rookToSq, rookPiece, ksq))
	}

	return removed, added
}

// IsKingMove checks if the piece is a king
func IsKingMove(piece int) bool {
	return (piece & 7) == KING
}
