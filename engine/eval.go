package engine

import (
	"math/bits"

	"github.com/dylhunn/dragontoothmg"
)

// Evaluator scores a position in centipawns from the side to move's point of
// view. Implementations must be pure functions of the position for the
// duration of a search; weights may only change between searches.
type Evaluator interface {
	Evaluate(b *dragontoothmg.Board) int32
}

// Weights are the tunable knobs of the default evaluator, exposed through
// UCI options. The search holds them read-only while running.
type Weights struct {
	PieceValueMG [7]int32
	PieceValueEG [7]int32

	// Percent scales applied to the material and piece-square terms.
	MaterialScale   int
	PositionalScale int
}

func DefaultWeights() Weights {
	return Weights{
		PieceValueMG:    [7]int32{0, 100, 320, 330, 500, 900, 0},
		PieceValueEG:    [7]int32{0, 120, 300, 320, 550, 950, 0},
		MaterialScale:   100,
		PositionalScale: 100,
	}
}

// MaterialEvaluator is the built-in evaluator: tapered material plus
// piece-square tables.
type MaterialEvaluator struct {
	Weights Weights
}

func NewMaterialEvaluator() *MaterialEvaluator {
	return &MaterialEvaluator{Weights: DefaultWeights()}
}

var pieceTypes = [...]dragontoothmg.Piece{
	dragontoothmg.Pawn,
	dragontoothmg.Knight,
	dragontoothmg.Bishop,
	dragontoothmg.Rook,
	dragontoothmg.Queen,
	dragontoothmg.King,
}

func pieceBitboard(bb *dragontoothmg.Bitboards, piece dragontoothmg.Piece) uint64 {
	switch piece {
	case dragontoothmg.Pawn:
		return bb.Pawns
	case dragontoothmg.Knight:
		return bb.Knights
	case dragontoothmg.Bishop:
		return bb.Bishops
	case dragontoothmg.Rook:
		return bb.Rooks
	case dragontoothmg.Queen:
		return bb.Queens
	case dragontoothmg.King:
		return bb.Kings
	}
	return 0
}

// Phase weights per piece type; a full board sums to 24.
var phaseWeights = [7]int{0, 0, 1, 1, 2, 4, 0}

const maxPhase = 24

// GamePhase estimates how far into the game a position is: 24 at the start,
// 0 once only kings and pawns remain.
func GamePhase(b *dragontoothmg.Board) int {
	phase := 0
	for _, piece := range pieceTypes {
		count := bits.OnesCount64(pieceBitboard(&b.White, piece)) +
			bits.OnesCount64(pieceBitboard(&b.Black, piece))
		phase += phaseWeights[piece] * count
	}
	return Clamp(phase, 0, maxPhase)
}

func (e *MaterialEvaluator) Evaluate(b *dragontoothmg.Board) int32 {
	var mg, eg, positional int32

	for _, piece := range pieceTypes {
		pst := &pieceSquareTables[piece]
		for bb := pieceBitboard(&b.White, piece); bb != 0; bb &= bb - 1 {
			sq := bits.TrailingZeros64(bb)
			mg += e.Weights.PieceValueMG[piece]
			eg += e.Weights.PieceValueEG[piece]
			positional += pst[sq^56]
		}
		for bb := pieceBitboard(&b.Black, piece); bb != 0; bb &= bb - 1 {
			sq := bits.TrailingZeros64(bb)
			mg -= e.Weights.PieceValueMG[piece]
			eg -= e.Weights.PieceValueEG[piece]
			positional -= pst[sq]
		}
	}

	phase := int32(GamePhase(b))
	material := (mg*phase + eg*(maxPhase-phase)) / maxPhase

	score := material*int32(e.Weights.MaterialScale)/100 +
		positional*int32(e.Weights.PositionalScale)/100

	if !b.Wtomove {
		score = -score
	}
	return score
}

// insufficientMaterial reports positions where neither side can mate: bare
// kings, or king plus a single minor piece against a bare king.
func insufficientMaterial(b *dragontoothmg.Board) bool {
	if b.White.Pawns|b.Black.Pawns != 0 {
		return false
	}
	if b.White.Rooks|b.Black.Rooks|b.White.Queens|b.Black.Queens != 0 {
		return false
	}
	whiteMinors := bits.OnesCount64(b.White.Knights | b.White.Bishops)
	blackMinors := bits.OnesCount64(b.Black.Knights | b.Black.Bishops)
	return whiteMinors <= 1 && blackMinors <= 1
}
