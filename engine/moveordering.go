package engine

import (
	"github.com/dylhunn/dragontoothmg"
)

type scoredMove struct {
	move  dragontoothmg.Move
	score int32
}

type moveList struct {
	moves []scoredMove
}

/*
	Move ordering bands, highest tried first:
	- the previous iteration's PV move for this ply
	- promotions
	- captures, sorted by SEE with MVV-LVA breaking ties
	- killer moves for this ply
	- quiet moves by history score, with a counter-move bonus
	Everything inside a band falls back to generation order, so the ordering
	is deterministic for a given table state.
*/
const (
	pvMoveScore    int32 = 1 << 20
	promotionScore int32 = 900000
	captureScore   int32 = 800000
	killerScore    int32 = 600000
	quietScore     int32 = 100000
	counterBonus   int32 = 2000

	// SEE steps are multiples of 100, so scaling by 16 keeps the MVV-LVA
	// tiebreak (max 54) from ever crossing a SEE step.
	seeOrderScale int32 = 16
)

// Most Valuable Victim - Least Valuable Aggressor; used to break ties between
// captures with equal SEE.
var mvvLva = [7][7]int32{
	{0, 0, 0, 0, 0, 0, 0},
	{0, 14, 13, 12, 11, 10, 0}, // victim Pawn
	{0, 24, 23, 22, 21, 20, 0}, // victim Knight
	{0, 34, 33, 32, 31, 30, 0}, // victim Bishop
	{0, 44, 43, 42, 41, 40, 0}, // victim Rook
	{0, 54, 53, 52, 51, 50, 0}, // victim Queen
	{0, 0, 0, 0, 0, 0, 0},      // victim King
}

// GetPieceTypeAtPosition reports which piece type of the given side occupies
// a square, if any.
func GetPieceTypeAtPosition(position uint8, bitboards *dragontoothmg.Bitboards) (pieceType dragontoothmg.Piece, occupied bool) {
	if bitboards.Pawns&(1<<position) > 0 {
		return dragontoothmg.Pawn, true
	} else if bitboards.Knights&(1<<position) > 0 {
		return dragontoothmg.Knight, true
	} else if bitboards.Bishops&(1<<position) > 0 {
		return dragontoothmg.Bishop, true
	} else if bitboards.Rooks&(1<<position) > 0 {
		return dragontoothmg.Rook, true
	} else if bitboards.Queens&(1<<position) > 0 {
		return dragontoothmg.Queen, true
	} else if bitboards.Kings&(1<<position) > 0 {
		return dragontoothmg.King, true
	}
	return 0, false
}

func sideBitboards(b *dragontoothmg.Board) (own, opp *dragontoothmg.Bitboards) {
	if b.Wtomove {
		return &b.White, &b.Black
	}
	return &b.Black, &b.White
}

// isCaptureMove reports whether a move takes a piece, including en passant
// (a pawn moving diagonally onto an empty square).
func isCaptureMove(b *dragontoothmg.Board, move dragontoothmg.Move) bool {
	own, opp := sideBitboards(b)
	to := uint8(move.To())
	if _, occupied := GetPieceTypeAtPosition(to, opp); occupied {
		return true
	}
	from := uint8(move.From())
	piece, _ := GetPieceTypeAtPosition(from, own)
	return piece == dragontoothmg.Pawn && to%8 != from%8
}

// orderNextMove brings the best remaining move to currIndex. One selection
// step per move tried is cheaper than a full sort when cutoffs come early,
// and the strict comparison keeps generation order on ties.
func orderNextMove(currIndex int, list *moveList) {
	bestIndex := currIndex
	bestScore := list.moves[bestIndex].score

	for index := currIndex + 1; index < len(list.moves); index++ {
		if list.moves[index].score > bestScore {
			bestIndex = index
			bestScore = list.moves[index].score
		}
	}

	list.moves[currIndex], list.moves[bestIndex] = list.moves[bestIndex], list.moves[currIndex]
}

// scoreMoves assigns an ordering score to every legal move for the main
// search.
func (s *Searcher) scoreMoves(b *dragontoothmg.Board, moves []dragontoothmg.Move, ply int, pvMove, prevMove dragontoothmg.Move) moveList {
	own, opp := sideBitboards(b)
	list := moveList{moves: make([]scoredMove, len(moves))}
	counter := s.counters.Get(b.Wtomove, prevMove)

	for i, move := range moves {
		from := uint8(move.From())
		to := uint8(move.To())
		movingPiece, _ := GetPieceTypeAtPosition(from, own)
		victim, isCapture := GetPieceTypeAtPosition(to, opp)
		if !isCapture && movingPiece == dragontoothmg.Pawn && to%8 != from%8 {
			victim, isCapture = dragontoothmg.Pawn, true
		}

		var score int32
		switch {
		case pvMove != 0 && move == pvMove:
			score = pvMoveScore
		case move.Promote() != 0:
			score = promotionScore + SeePieceValue[move.Promote()]
		case isCapture:
			score = captureScore + see(b, move)*seeOrderScale + mvvLva[victim][movingPiece]
		default:
			if slot := s.killers.Slot(move, ply); slot >= 0 {
				score = killerScore + int32(1-slot)*200
			} else {
				score = quietScore + s.history.Get(b.Wtomove, movingPiece, to)
				if counter != 0 && move == counter {
					score += counterBonus
				}
			}
		}

		list.moves[i] = scoredMove{move: move, score: score}
	}
	return list
}

// scoreCaptures keeps only captures and promotions, scored by MVV-LVA alone;
// quiescence gates losing captures through SEE separately.
func (s *Searcher) scoreCaptures(b *dragontoothmg.Board, moves []dragontoothmg.Move) moveList {
	own, opp := sideBitboards(b)
	list := moveList{moves: make([]scoredMove, 0, len(moves))}

	for _, move := range moves {
		from := uint8(move.From())
		to := uint8(move.To())
		movingPiece, _ := GetPieceTypeAtPosition(from, own)
		victim, isCapture := GetPieceTypeAtPosition(to, opp)
		if !isCapture && movingPiece == dragontoothmg.Pawn && to%8 != from%8 {
			victim, isCapture = dragontoothmg.Pawn, true
		}
		isPromotion := move.Promote() != 0
		if !isCapture && !isPromotion {
			continue
		}

		var score int32
		if isPromotion {
			score = promotionScore + SeePieceValue[move.Promote()]
		} else {
			score = captureScore + mvvLva[victim][movingPiece]
		}
		list.moves = append(list.moves, scoredMove{move: move, score: score})
	}
	return list
}
