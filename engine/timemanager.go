package engine

import (
	"sync"
	"sync/atomic"
	"time"

	"github.com/dylhunn/dragontoothmg"
)

// Limits carries the parsed go-directive. Zero values mean "not specified";
// several limits may apply at once and the search stops at the first one hit.
type Limits struct {
	Depth          int
	Nodes          int
	MoveTime       int // milliseconds
	WhiteTime      int
	BlackTime      int
	WhiteIncrement int
	BlackIncrement int
	MovesToGo      int
	Infinite       bool
	Ponder         bool
}

const (
	overheadMs       = 30 // reserve for protocol/IO jitter
	minMoveMs        = 5
	panicThresholdMs = 1000 // below this, bank time off the increment
)

// TimeHandler turns a go-directive plus clock state into deadlines. The hard
// deadline aborts the search mid-depth; the soft deadline stops new
// iterations from starting. Start and PonderHit may come from different
// goroutines, so a mutex guards the clock state; the deadlines themselves
// stay atomic so the search polls them without taking the lock.
type TimeHandler struct {
	mu          sync.Mutex
	start       time.Time
	hardNs      atomic.Int64 // unix nanos, 0 means no deadline
	softNs      atomic.Int64
	limits      Limits
	whiteToMove bool
	phase       int
}

// Start records the clock state for this search and arms the deadlines,
// unless the search is infinite or pondering (a ponder search runs free
// until ponderhit or stop).
func (th *TimeHandler) Start(limits Limits, b *dragontoothmg.Board) {
	th.mu.Lock()
	defer th.mu.Unlock()

	th.start = time.Now()
	th.limits = limits
	th.whiteToMove = b.Wtomove
	th.phase = GamePhase(b)
	th.hardNs.Store(0)
	th.softNs.Store(0)

	if limits.Infinite || limits.Ponder {
		return
	}
	th.arm()
}

// PonderHit converts a ponder search into a normal timed one: the predicted
// move was played, so the budget comes from the real clock starting now.
func (th *TimeHandler) PonderHit() {
	th.mu.Lock()
	defer th.mu.Unlock()
	th.arm()
}

func (th *TimeHandler) arm() {
	now := time.Now()

	if th.limits.MoveTime > 0 {
		deadline := now.Add(time.Duration(th.limits.MoveTime) * time.Millisecond).UnixNano()
		th.hardNs.Store(deadline)
		th.softNs.Store(deadline)
		return
	}

	remaining, increment := th.clock()
	if remaining <= 0 {
		return // depth/node-limited search, no clock
	}

	moveTime := allocateMoveTime(remaining, increment, th.limits.MovesToGo, th.phase)
	th.hardNs.Store(now.Add(moveTime).UnixNano())
	th.softNs.Store(now.Add(moveTime / 2).UnixNano())
}

func (th *TimeHandler) clock() (remaining, increment int) {
	if th.whiteToMove {
		return th.limits.WhiteTime, th.limits.WhiteIncrement
	}
	return th.limits.BlackTime, th.limits.BlackIncrement
}

// allocateMoveTime spends a fraction of the remaining clock plus the
// increment, with a panic mode near flag fall. The result never exceeds the
// remaining time minus a fixed overhead reserve.
func allocateMoveTime(remaining, increment, movesToGo, phase int) time.Duration {
	movesLeft := estimateMovesRemaining(phase)
	if movesToGo > 0 {
		movesLeft = movesToGo
	}

	var moveTime int
	switch {
	case increment > 0 && remaining < panicThresholdMs:
		moveTime = increment * 9 / 10
	case increment > 0:
		moveTime = remaining/movesLeft + increment
	default:
		moveTime = remaining / 40
	}

	ceiling := remaining * 7 / 10
	if ceiling > remaining-overheadMs {
		ceiling = remaining - overheadMs
	}
	if ceiling < minMoveMs {
		ceiling = minMoveMs
	}
	moveTime = Clamp(moveTime, minMoveMs, ceiling)

	return time.Duration(moveTime) * time.Millisecond
}

// estimateMovesRemaining interpolates between 20 moves left in the endgame
// and 45 in the opening, by game phase.
func estimateMovesRemaining(phase int) int {
	return (phase*25)/24 + 20
}

// HardExceeded reports whether the search must stop now.
func (th *TimeHandler) HardExceeded() bool {
	ns := th.hardNs.Load()
	return ns != 0 && time.Now().UnixNano() >= ns
}

// SoftExceeded reports whether starting another iteration would likely waste
// the remaining budget.
func (th *TimeHandler) SoftExceeded() bool {
	ns := th.softNs.Load()
	return ns != 0 && time.Now().UnixNano() >= ns
}

func (th *TimeHandler) Elapsed() time.Duration {
	return time.Since(th.start)
}
