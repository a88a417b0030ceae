package engine

import (
	"strings"

	"github.com/dylhunn/dragontoothmg"
)

// PVLine holds the principal variation collected at one node. Each node keeps
// its own line and prepends its best move to the child's line whenever alpha
// improves, so the root ends up with the full best play for both sides.
type PVLine struct {
	Moves []dragontoothmg.Move
}

// Update sets the line to move followed by the child node's line.
func (pv *PVLine) Update(move dragontoothmg.Move, child PVLine) {
	pv.Moves = append(pv.Moves[:0], move)
	pv.Moves = append(pv.Moves, child.Moves...)
}

func (pv *PVLine) Clear() {
	pv.Moves = pv.Moves[:0]
}

// Clone makes an independent copy; the per-depth result must survive the next
// iteration overwriting the working line.
func (pv *PVLine) Clone() PVLine {
	moves := make([]dragontoothmg.Move, len(pv.Moves))
	copy(moves, pv.Moves)
	return PVLine{Moves: moves}
}

// BestMove returns the first move of the line, or the zero move if empty.
func (pv *PVLine) BestMove() dragontoothmg.Move {
	if len(pv.Moves) == 0 {
		return 0
	}
	return pv.Moves[0]
}

func (pv *PVLine) String() string {
	var sb strings.Builder
	for i, move := range pv.Moves {
		if i > 0 {
			sb.WriteString(" ")
		}
		sb.WriteString(move.String())
	}
	return sb.String()
}
