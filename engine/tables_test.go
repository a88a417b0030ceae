package engine

import (
	"testing"
)

func TestKillerTableShiftsAndDedups(t *testing.T) {
	var k KillerTable

	k.Insert(10, 3)
	k.Insert(20, 3)

	if k.Slot(20, 3) != 0 || k.Slot(10, 3) != 1 {
		t.Fatalf("expected newest killer in slot 0")
	}

	// Re-inserting the newest move must not duplicate it into both slots.
	k.Insert(20, 3)
	if k.Slot(10, 3) != 1 {
		t.Fatalf("duplicate insert evicted the older killer")
	}

	if k.Slot(10, 4) != -1 {
		t.Fatalf("killer leaked across plies")
	}

	k.Clear()
	if k.Slot(20, 3) != -1 {
		t.Fatalf("clear did not remove killers")
	}
}

func TestHistoryTableSaturatesAndAges(t *testing.T) {
	var h HistoryTable

	for i := 0; i < 10000; i++ {
		h.Increment(true, 2, 20, 8)
	}
	if got := h.Get(true, 2, 20); got > historyMaxScore {
		t.Fatalf("history score %d ran past the cap %d", got, historyMaxScore)
	}
	if h.Get(false, 2, 20) != 0 {
		t.Fatalf("history leaked across sides")
	}

	h.Penalize(true, 2, 20, 100)
	h.Penalize(true, 2, 20, 100)
	if got := h.Get(true, 2, 20); got < 0 {
		t.Fatalf("penalty drove history negative: %d", got)
	}

	h.Clear()
	if h.Get(true, 2, 20) != 0 {
		t.Fatalf("clear did not reset history")
	}
}

func TestCounterTableIsKeyedBySideAndPrevMove(t *testing.T) {
	var c CounterTable

	c.Store(true, 100, 7)
	if c.Get(true, 100) != 7 {
		t.Fatalf("stored counter move not returned")
	}
	if c.Get(false, 100) != 0 {
		t.Fatalf("counter move leaked across sides")
	}
	if c.Get(true, 200) != 0 {
		t.Fatalf("counter move returned for a different previous move")
	}
}

func TestPVLineUpdateBuildsTheChain(t *testing.T) {
	var child, parent PVLine
	child.Update(2, PVLine{})
	parent.Update(1, child)

	if parent.BestMove() != 1 || len(parent.Moves) != 2 || parent.Moves[1] != 2 {
		t.Fatalf("unexpected pv chain %v", parent.Moves)
	}

	clone := parent.Clone()
	parent.Clear()
	if len(clone.Moves) != 2 {
		t.Fatalf("clone shares storage with the cleared line")
	}
}
