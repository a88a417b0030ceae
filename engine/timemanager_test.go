package engine

import (
	"testing"
	"time"

	"github.com/dylhunn/dragontoothmg"
)

func TestAllocateMoveTimeNeverExceedsRemaining(t *testing.T) {
	cases := []struct {
		remaining, increment, movesToGo int
	}{
		{60000, 1000, 0},
		{5000, 100, 0},
		{300, 0, 0},
		{50, 2000, 0},
		{10000, 0, 1},
	}
	for _, tc := range cases {
		got := allocateMoveTime(tc.remaining, tc.increment, tc.movesToGo, maxPhase)
		budget := time.Duration(tc.remaining-overheadMs) * time.Millisecond
		if budget < minMoveMs*time.Millisecond {
			budget = minMoveMs * time.Millisecond
		}
		if got > budget {
			t.Errorf("allocate(%d, %d, %d) = %v exceeds remaining budget %v",
				tc.remaining, tc.increment, tc.movesToGo, got, budget)
		}
		if got < minMoveMs*time.Millisecond {
			t.Errorf("allocate(%d, %d, %d) = %v below the minimum",
				tc.remaining, tc.increment, tc.movesToGo, got)
		}
	}
}

func TestAllocateMoveTimePanicModeUsesIncrement(t *testing.T) {
	got := allocateMoveTime(500, 1000, 0, 12)
	// Near flag fall the allocation comes off the increment, not the clock,
	// but still capped by what is actually left.
	if got > 350*time.Millisecond {
		t.Fatalf("panic mode allocated %v from a 500ms clock", got)
	}
}

func TestTimeHandlerMoveTimeArmsBothDeadlines(t *testing.T) {
	board := dragontoothmg.ParseFen(dragontoothmg.Startpos)
	var th TimeHandler
	th.Start(Limits{MoveTime: 50}, &board)

	if th.HardExceeded() || th.SoftExceeded() {
		t.Fatalf("deadlines exceeded immediately after start")
	}

	time.Sleep(80 * time.Millisecond)

	if !th.HardExceeded() {
		t.Fatalf("hard deadline not exceeded after movetime elapsed")
	}
	if !th.SoftExceeded() {
		t.Fatalf("soft deadline not exceeded after movetime elapsed")
	}
}

func TestTimeHandlerInfiniteNeverExpires(t *testing.T) {
	board := dragontoothmg.ParseFen(dragontoothmg.Startpos)
	var th TimeHandler
	th.Start(Limits{Infinite: true, WhiteTime: 1}, &board)

	time.Sleep(10 * time.Millisecond)

	if th.HardExceeded() || th.SoftExceeded() {
		t.Fatalf("infinite search must not have deadlines")
	}
}

func TestTimeHandlerPonderArmsOnPonderhit(t *testing.T) {
	board := dragontoothmg.ParseFen(dragontoothmg.Startpos)
	var th TimeHandler
	th.Start(Limits{Ponder: true, MoveTime: 20}, &board)

	time.Sleep(40 * time.Millisecond)
	if th.HardExceeded() {
		t.Fatalf("deadline ran while pondering")
	}

	th.PonderHit()
	if th.HardExceeded() {
		t.Fatalf("deadline exceeded immediately after ponderhit")
	}
	time.Sleep(40 * time.Millisecond)
	if !th.HardExceeded() {
		t.Fatalf("deadline not armed by ponderhit")
	}
}

func TestPonderhitAfterPrepareArmsTheClock(t *testing.T) {
	board := dragontoothmg.ParseFen(dragontoothmg.Startpos)
	s := NewSearcher()

	limits := Limits{Ponder: true, WhiteTime: 60, WhiteIncrement: 10}
	s.Prepare(limits, &board)
	s.PonderHit()

	// Prepare already armed the clock state, so the search must run on the
	// deadline set by the ponderhit instead of resetting it and spinning.
	done := make(chan SearchInfo, 1)
	go func() {
		done <- s.Search(SearchParams{Board: &board, Limits: limits})
	}()

	select {
	case result := <-done:
		if result.BestMove() == 0 {
			t.Fatalf("timed ponder search returned no move")
		}
	case <-time.After(5 * time.Second):
		t.Fatalf("ponderhit deadline was lost")
	}
}

func TestTimeHandlerDepthOnlySearchHasNoDeadline(t *testing.T) {
	board := dragontoothmg.ParseFen(dragontoothmg.Startpos)
	var th TimeHandler
	th.Start(Limits{Depth: 8}, &board)

	if th.HardExceeded() || th.SoftExceeded() {
		t.Fatalf("depth-limited search must not have clock deadlines")
	}
}

func TestEstimateMovesRemaining(t *testing.T) {
	if opening, endgame := estimateMovesRemaining(maxPhase), estimateMovesRemaining(0); opening <= endgame {
		t.Fatalf("opening estimate %d should exceed endgame estimate %d", opening, endgame)
	}
}
