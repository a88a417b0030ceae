package engine

const (
	bitboardFileA uint64 = 0x0101010101010101
	bitboardFileH uint64 = 0x8080808080808080
)

// PositionBB[sq] is the single-bit board for a square. Index 64 is kept as a
// zero guard so "no square" lookups stay cheap.
var PositionBB [65]uint64

var KingMoves [64]uint64
var KnightMoves [64]uint64

func init() {
	initAttackTables()
}

func initAttackTables() {
	for sq := 0; sq < 64; sq++ {
		bb := uint64(1) << uint(sq)
		PositionBB[sq] = bb

		up := bb << 8
		down := bb >> 8
		left := (bb &^ bitboardFileA) >> 1
		right := (bb &^ bitboardFileH) << 1
		upLeft := (bb &^ bitboardFileA) << 7
		upRight := (bb &^ bitboardFileH) << 9
		downLeft := (bb &^ bitboardFileA) >> 9
		downRight := (bb &^ bitboardFileH) >> 7

		KingMoves[sq] = up | down | left | right | upLeft | upRight | downLeft | downRight

		nne := (bb &^ bitboardFileH) << 17
		nnw := (bb &^ bitboardFileA) << 15
		ene := (bb &^ (bitboardFileH | bitboardFileH>>1)) << 10
		wnw := (bb &^ (bitboardFileA | bitboardFileA<<1)) << 6
		sse := (bb &^ bitboardFileH) >> 15
		ssw := (bb &^ bitboardFileA) >> 17
		ese := (bb &^ (bitboardFileH | bitboardFileH>>1)) >> 6
		wsw := (bb &^ (bitboardFileA | bitboardFileA<<1)) >> 10

		KnightMoves[sq] = nne | nnw | ene | wnw | sse | ssw | ese | wsw
	}
}

// pawnAttacks returns the squares attacked by the given pawns.
func pawnAttacks(pawns uint64, white bool) uint64 {
	if white {
		return (pawns&^bitboardFileA)<<7 | (pawns&^bitboardFileH)<<9
	}
	return (pawns&^bitboardFileH)>>7 | (pawns&^bitboardFileA)>>9
}
