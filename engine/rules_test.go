package engine

import (
	"testing"

	"github.com/dylhunn/dragontoothmg"
)

// The engine leans on apply/unapply restoring the exact position, both for
// the recursive search and for the repetition stack, so exercise it across
// castling, en passant and promotion positions.
func TestApplyUnapplyRestoresPosition(t *testing.T) {
	fens := []string{
		dragontoothmg.Startpos,
		"r3k2r/p1ppqpb1/bn2pnp1/3PN3/1p2P3/2N2Q1p/PPPBBPPP/R3K2R w KQkq - 0 1",
		"8/2p5/3p4/KP5r/1R3p1k/8/4P1P1/8 w - - 0 1",
		"n1n5/PPPk4/8/8/8/8/4Kppp/5N1N b - - 0 1",
		"4k3/8/8/3pP3/8/8/8/4K3 w - d6 0 1",
	}

	for _, fen := range fens {
		board := dragontoothmg.ParseFen(fen)
		wantFen := board.ToFen()
		wantHash := board.Hash()

		for _, move := range board.GenerateLegalMoves() {
			unapply := board.Apply(move)
			unapply()

			if got := board.ToFen(); got != wantFen {
				t.Fatalf("%s: apply/unapply of %s changed the position to %s", fen, move.String(), got)
			}
			if got := board.Hash(); got != wantHash {
				t.Fatalf("%s: apply/unapply of %s changed the hash", fen, move.String())
			}
		}
	}
}

func TestApplyMoveTracksRepetitionStack(t *testing.T) {
	board := dragontoothmg.ParseFen(dragontoothmg.Startpos)
	s := NewSearcher()
	s.repetition = []uint64{board.Hash()}

	move := mustMove(t, &board, "e2e4")
	undo := s.applyMove(&board, move)

	if len(s.repetition) != 2 {
		t.Fatalf("expected 2 entries on the stack, got %d", len(s.repetition))
	}
	if s.repetition[1] != board.Hash() {
		t.Fatalf("top of stack is not the current position hash")
	}

	undo()

	if len(s.repetition) != 1 {
		t.Fatalf("undo left %d entries on the stack", len(s.repetition))
	}
	if board.Hash() != s.repetition[0] {
		t.Fatalf("undo did not restore the position")
	}
}
