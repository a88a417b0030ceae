package engine

import (
	"github.com/dylhunn/dragontoothmg"
)

// SeePieceValue is the exchange value of each piece type. The king is large
// enough that "capturing" it never looks profitable for the other side.
var SeePieceValue = [7]int32{
	dragontoothmg.Pawn:   100,
	dragontoothmg.Knight: 300,
	dragontoothmg.Bishop: 300,
	dragontoothmg.Rook:   500,
	dragontoothmg.Queen:  900,
	dragontoothmg.King:   5000,
}

// see runs a static exchange evaluation of a capture: both sides recapture on
// the target square with their least valuable attacker until one side stops,
// and the net material swing for the side making the first capture is
// returned. The board is never mutated; the capture sequence is simulated on
// an occupancy copy so sliders x-ray through pieces that have already traded.
func see(b *dragontoothmg.Board, move dragontoothmg.Move) int32 {
	from := uint8(move.From())
	to := uint8(move.To())
	sideWhite := b.Wtomove

	var target, attacker dragontoothmg.Piece
	if sideWhite {
		target, _ = GetPieceTypeAtPosition(to, &b.Black)
		attacker, _ = GetPieceTypeAtPosition(from, &b.White)
	} else {
		target, _ = GetPieceTypeAtPosition(to, &b.White)
		attacker, _ = GetPieceTypeAtPosition(from, &b.Black)
	}

	occupied := b.White.All | b.Black.All

	if target == 0 {
		// En passant leaves the target square itself empty.
		if attacker == dragontoothmg.Pawn && to%8 != from%8 {
			target = dragontoothmg.Pawn
			if sideWhite {
				occupied &^= PositionBB[to-8]
			} else {
				occupied &^= PositionBB[to+8]
			}
		} else {
			return 0
		}
	}

	var gain [32]int32
	depth := 0
	gain[0] = SeePieceValue[target]

	occupied &^= PositionBB[from]
	attackers := attackersTo(b, to, occupied) & occupied
	sideWhite = !sideWhite
	current := attacker

	for depth < len(gain)-1 {
		var ours uint64
		if sideWhite {
			ours = attackers & b.White.All
		} else {
			ours = attackers & b.Black.All
		}
		if ours == 0 {
			break
		}

		attackerBB, piece := leastValuableAttacker(b, ours, sideWhite)

		depth++
		gain[depth] = SeePieceValue[current] - gain[depth-1]

		// Neither continuation helps the side to move; stop trading.
		if max(-gain[depth-1], gain[depth]) < 0 {
			break
		}

		occupied &^= attackerBB
		// Recompute sliders so x-ray attackers behind the traded piece appear.
		attackers = attackersTo(b, to, occupied) & occupied
		current = piece
		sideWhite = !sideWhite
	}

	for ; depth > 0; depth-- {
		gain[depth-1] = -max(-gain[depth-1], gain[depth])
	}
	return gain[0]
}

// attackersTo returns every piece of either color that attacks sq under the
// given occupancy.
func attackersTo(b *dragontoothmg.Board, sq uint8, occupied uint64) uint64 {
	knights := (b.White.Knights | b.Black.Knights) & KnightMoves[sq]
	kings := (b.White.Kings | b.Black.Kings) & KingMoves[sq]

	// A white pawn attacks sq exactly when it sits on a square a black pawn
	// on sq would attack, and vice versa.
	whitePawns := b.White.Pawns & pawnAttacks(PositionBB[sq], false)
	blackPawns := b.Black.Pawns & pawnAttacks(PositionBB[sq], true)

	rooksQueens := b.White.Rooks | b.Black.Rooks | b.White.Queens | b.Black.Queens
	bishopsQueens := b.White.Bishops | b.Black.Bishops | b.White.Queens | b.Black.Queens
	orthogonal := dragontoothmg.CalculateRookMoveBitboard(sq, occupied) & rooksQueens
	diagonal := dragontoothmg.CalculateBishopMoveBitboard(sq, occupied) & bishopsQueens

	return knights | kings | whitePawns | blackPawns | orthogonal | diagonal
}

// leastValuableAttacker picks the cheapest attacker for one side and returns
// its single-bit board along with the piece type.
func leastValuableAttacker(b *dragontoothmg.Board, attackers uint64, whiteToMove bool) (uint64, dragontoothmg.Piece) {
	side := &b.White
	if !whiteToMove {
		side = &b.Black
	}
	for _, piece := range pieceTypes {
		subset := attackers & pieceBitboard(side, piece)
		if subset != 0 {
			return subset & -subset, piece
		}
	}
	return 0, 0
}
