package engine

import (
	"github.com/dylhunn/dragontoothmg"
)

const (
	lmrMinDepth  = 3
	lmrMoveLimit = 4
)

// applyMove plays a move and records the resulting hash for repetition
// detection. The returned closure undoes both.
func (s *Searcher) applyMove(b *dragontoothmg.Board, move dragontoothmg.Move) func() {
	unapply := b.Apply(move)
	s.repetition = append(s.repetition, b.Hash())
	return func() {
		s.repetition = s.repetition[:len(s.repetition)-1]
		unapply()
	}
}

// isDraw checks the fifty-move rule, dead material, and repetition. Inside
// the search a single earlier occurrence already scores as a draw; the scan
// only needs to go back as far as the last irreversible move.
func (s *Searcher) isDraw(b *dragontoothmg.Board) bool {
	if b.Halfmoveclock >= 100 {
		return true
	}
	if insufficientMaterial(b) {
		return true
	}
	current := b.Hash()
	limit := len(s.repetition) - 1 - int(b.Halfmoveclock)
	if limit < 0 {
		limit = 0
	}
	for i := len(s.repetition) - 2; i >= limit; i-- {
		if s.repetition[i] == current {
			return true
		}
	}
	return false
}

// checkAbort polls the cancellation sources. The deadline check is rate
// limited because reading the clock at every node is measurable.
func (s *Searcher) checkAbort() bool {
	if s.stopped.Load() {
		return true
	}
	if s.maxNodes > 0 && s.nodes >= s.maxNodes {
		s.stopped.Store(true)
		return true
	}
	if s.nodes&2047 == 0 && s.clock.HardExceeded() {
		s.stopped.Store(true)
		return true
	}
	return false
}

// alphabeta is a fail-soft negamax search with principal variation search:
// the first move gets the full window, siblings are scouted with a null
// window and only re-searched when the scout lands inside (alpha, beta).
// Values returned after the stop flag rises are garbage and the callers
// discard them.
func (s *Searcher) alphabeta(b *dragontoothmg.Board, alpha, beta int32, depth, ply int, pvLine *PVLine, prevMove dragontoothmg.Move) int32 {
	s.nodes++
	if s.checkAbort() {
		return 0
	}
	if ply >= MaxPly {
		return s.eval.Evaluate(b)
	}

	isRoot := ply == 0
	isPVNode := beta-alpha > 1

	if !isRoot && s.isDraw(b) {
		return DrawScore
	}

	inCheck := b.OurKingInCheck()
	if inCheck {
		depth++
	}

	if depth <= 0 {
		return s.quiescence(b, alpha, beta, ply)
	}

	moves := b.GenerateLegalMoves()
	if len(moves) == 0 {
		if inCheck {
			return -MaxScore + int32(ply)
		}
		return DrawScore
	}

	var pvMove dragontoothmg.Move
	if s.followPV && ply < len(s.prevPV) {
		pvMove = s.prevPV[ply]
	}

	list := s.scoreMoves(b, moves, ply, pvMove, prevMove)

	own, _ := sideBitboards(b)
	whiteToMove := b.Wtomove

	var childPV PVLine
	bestScore := -MaxScore
	movesSearched := 0
	quietsTried := make([]dragontoothmg.Move, 0, 16)

	for index := 0; index < len(list.moves); index++ {
		orderNextMove(index, &list)
		move := list.moves[index].move

		movingPiece, _ := GetPieceTypeAtPosition(uint8(move.From()), own)
		isQuiet := !isCaptureMove(b, move) && move.Promote() == 0
		if isQuiet {
			quietsTried = append(quietsTried, move)
		}

		if movesSearched > 0 || move != pvMove {
			s.followPV = false
		}

		undo := s.applyMove(b, move)
		movesSearched++
		givesCheck := b.OurKingInCheck()
		childPV.Clear()

		var score int32
		if movesSearched == 1 {
			score = -s.alphabeta(b, -beta, -alpha, depth-1, ply+1, &childPV, move)
		} else {
			reduction := 0
			if !isPVNode && isQuiet && !inCheck && !givesCheck &&
				depth >= lmrMinDepth && movesSearched > lmrMoveLimit {
				reduction = 1
			}
			score = -s.alphabeta(b, -(alpha + 1), -alpha, depth-1-reduction, ply+1, &childPV, move)
			if score > alpha && reduction > 0 {
				score = -s.alphabeta(b, -(alpha + 1), -alpha, depth-1, ply+1, &childPV, move)
			}
			if score > alpha && score < beta {
				score = -s.alphabeta(b, -beta, -alpha, depth-1, ply+1, &childPV, move)
			}
		}
		undo()

		if s.stopped.Load() {
			return 0
		}

		if score > bestScore {
			bestScore = score
		}

		if score >= beta {
			if isQuiet {
				s.killers.Insert(move, ply)
				s.counters.Store(whiteToMove, prevMove, move)
				s.history.Increment(whiteToMove, movingPiece, uint8(move.To()), depth)
				for _, tried := range quietsTried {
					if tried == move {
						continue
					}
					triedPiece, _ := GetPieceTypeAtPosition(uint8(tried.From()), own)
					s.history.Penalize(whiteToMove, triedPiece, uint8(tried.To()), depth)
				}
			}
			return bestScore
		}

		if score > alpha {
			alpha = score
			pvLine.Update(move, childPV)
		}
	}

	return bestScore
}
