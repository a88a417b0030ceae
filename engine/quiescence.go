package engine

import (
	"github.com/dylhunn/dragontoothmg"
)

const (
	quiescenceSeeMargin int32 = 100
	deltaMargin         int32 = 200
)

// capturedValue is the swap value of whatever the move takes, counting the
// en passant pawn even though the target square is empty.
func capturedValue(b *dragontoothmg.Board, move dragontoothmg.Move) int32 {
	_, opp := sideBitboards(b)
	victim, occupied := GetPieceTypeAtPosition(uint8(move.To()), opp)
	if occupied {
		return SeePieceValue[victim]
	}
	if isCaptureMove(b, move) {
		return SeePieceValue[dragontoothmg.Pawn]
	}
	return 0
}

// quiescence resolves captures until the position is quiet. Fail-hard: the
// stand pat score caps the node at beta, so tactical noise never leaks a
// score above the bound. In check every evasion is searched instead, which
// lets mates be scored correctly below the nominal horizon.
func (s *Searcher) quiescence(b *dragontoothmg.Board, alpha, beta int32, ply int) int32 {
	s.nodes++
	if s.checkAbort() {
		return 0
	}
	if ply >= MaxPly {
		return s.eval.Evaluate(b)
	}

	inCheck := b.OurKingInCheck()

	var standPat int32
	var list moveList
	if inCheck {
		moves := b.GenerateLegalMoves()
		if len(moves) == 0 {
			return -MaxScore + int32(ply)
		}
		list = s.scoreMoves(b, moves, ply, 0, 0)
	} else {
		standPat = s.eval.Evaluate(b)
		if standPat >= beta {
			return beta
		}
		if standPat > alpha {
			alpha = standPat
		}
		list = s.scoreCaptures(b, b.GenerateLegalMoves())
	}

	for index := 0; index < len(list.moves); index++ {
		orderNextMove(index, &list)
		move := list.moves[index].move

		if !inCheck {
			if see(b, move) < -quiescenceSeeMargin {
				continue
			}
			// Delta pruning: even winning this material cleanly cannot
			// lift the score back to alpha.
			gain := capturedValue(b, move)
			if promo := move.Promote(); promo != 0 {
				gain += SeePieceValue[promo] - SeePieceValue[dragontoothmg.Pawn]
			}
			if standPat+gain+deltaMargin <= alpha {
				continue
			}
		}

		undo := s.applyMove(b, move)
		score := -s.quiescence(b, -beta, -alpha, ply+1)
		undo()

		if s.stopped.Load() {
			return 0
		}
		if score >= beta {
			return beta
		}
		if score > alpha {
			alpha = score
		}
	}

	return alpha
}
