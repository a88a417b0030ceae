package engine

import (
	"github.com/dylhunn/dragontoothmg"
)

// Quiet-move cutoff scores must stay below the capture ordering band.
const historyMaxScore int32 = 16000

// HistoryTable accumulates cutoff scores for quiet moves, keyed by side,
// moving piece type and destination square. It persists for the whole game
// and is only reset on ucinewgame.
type HistoryTable struct {
	scores [2][7][64]int32
}

func sideIndex(whiteToMove bool) int {
	if whiteToMove {
		return 0
	}
	return 1
}

func (h *HistoryTable) Get(whiteToMove bool, piece dragontoothmg.Piece, to uint8) int32 {
	return h.scores[sideIndex(whiteToMove)][piece][to]
}

// Increment rewards a quiet move that caused a beta cutoff with depth².
// When a cell saturates, the whole side's table is aged so relative order
// survives but the values stay inside the quiet ordering band.
func (h *HistoryTable) Increment(whiteToMove bool, piece dragontoothmg.Piece, to uint8, depth int) {
	side := sideIndex(whiteToMove)
	h.scores[side][piece][to] += int32(depth * depth)
	if h.scores[side][piece][to] >= historyMaxScore {
		h.age(side)
	}
}

// Penalize decays a quiet move that was tried before the cutoff move and
// failed to produce one.
func (h *HistoryTable) Penalize(whiteToMove bool, piece dragontoothmg.Piece, to uint8, depth int) {
	side := sideIndex(whiteToMove)
	score := h.scores[side][piece][to] - int32(depth*depth)
	if score < 0 {
		score = 0
	}
	h.scores[side][piece][to] = score
}

func (h *HistoryTable) age(side int) {
	for piece := 0; piece < 7; piece++ {
		for sq := 0; sq < 64; sq++ {
			h.scores[side][piece][sq] /= 2
		}
	}
}

func (h *HistoryTable) Clear() {
	for side := 0; side < 2; side++ {
		for piece := 0; piece < 7; piece++ {
			for sq := 0; sq < 64; sq++ {
				h.scores[side][piece][sq] = 0
			}
		}
	}
}

// CounterTable remembers the quiet reply that refuted a previous move, keyed
// by the previous move's from/to squares. Advisory ordering only.
type CounterTable struct {
	moves [2][64][64]dragontoothmg.Move
}

func (c *CounterTable) Store(whiteToMove bool, prevMove, move dragontoothmg.Move) {
	if prevMove == 0 {
		return
	}
	c.moves[sideIndex(whiteToMove)][prevMove.From()][prevMove.To()] = move
}

func (c *CounterTable) Get(whiteToMove bool, prevMove dragontoothmg.Move) dragontoothmg.Move {
	if prevMove == 0 {
		return 0
	}
	return c.moves[sideIndex(whiteToMove)][prevMove.From()][prevMove.To()]
}

func (c *CounterTable) Clear() {
	for side := 0; side < 2; side++ {
		for from := 0; from < 64; from++ {
			for to := 0; to < 64; to++ {
				c.moves[side][from][to] = 0
			}
		}
	}
}
