package engine

import (
	"github.com/dylhunn/dragontoothmg"
)

// KillerTable remembers, per ply, the last two quiet moves that caused a beta
// cutoff in a sibling node. Cleared at the start of every search.
type KillerTable struct {
	moves [MaxPly + 1][2]dragontoothmg.Move
}

// Insert shifts the stored killers so the newest is tried first. Duplicate
// inserts leave the table untouched.
func (k *KillerTable) Insert(move dragontoothmg.Move, ply int) {
	if ply > MaxPly {
		return
	}
	if move != k.moves[ply][0] {
		k.moves[ply][1] = k.moves[ply][0]
		k.moves[ply][0] = move
	}
}

// Slot reports which killer slot holds the move at this ply; -1 when absent.
func (k *KillerTable) Slot(move dragontoothmg.Move, ply int) int {
	if ply > MaxPly || move == 0 {
		return -1
	}
	if k.moves[ply][0] == move {
		return 0
	}
	if k.moves[ply][1] == move {
		return 1
	}
	return -1
}

func (k *KillerTable) Clear() {
	for ply := 0; ply <= MaxPly; ply++ {
		k.moves[ply][0] = 0
		k.moves[ply][1] = 0
	}
}
