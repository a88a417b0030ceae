package engine

import (
	"fmt"
	"sync/atomic"
	"time"

	"github.com/dylhunn/dragontoothmg"
	"github.com/rs/zerolog"
)

const (
	MaxScore  int32 = 32500
	Checkmate int32 = 20000
	DrawScore int32 = 0

	MaxPly = 100
)

var aspirationWindowSize int32 = 35

// SearchParams bundles everything one search needs. History holds the
// zobrist keys of the game so far, so threefold repetition spanning the
// root is detected.
type SearchParams struct {
	Board    *dragontoothmg.Board
	History  []uint64
	Limits   Limits
	Progress func(SearchInfo)
}

// SearchInfo is the result of one completed iteration (and, for the last
// one, of the whole search).
type SearchInfo struct {
	Depth    int
	Score    int32
	Nodes    uint64
	Time     time.Duration
	MainLine []dragontoothmg.Move
}

func (si SearchInfo) BestMove() dragontoothmg.Move {
	if len(si.MainLine) == 0 {
		return 0
	}
	return si.MainLine[0]
}

// PonderMove is the expected reply, used as the ponder hint.
func (si SearchInfo) PonderMove() dragontoothmg.Move {
	if len(si.MainLine) < 2 {
		return 0
	}
	return si.MainLine[1]
}

// Searcher owns all state of one engine instance. Killer and PV state is
// scoped to a single search; history and counter tables persist for the
// game. One search runs at a time per instance, so only the stop flag and
// the time deadlines are shared with other goroutines.
type Searcher struct {
	eval     Evaluator
	killers  KillerTable
	history  HistoryTable
	counters CounterTable
	clock    TimeHandler

	repetition []uint64
	prevPV     []dragontoothmg.Move
	followPV   bool

	nodes    uint64
	maxNodes uint64
	stopped  atomic.Bool
	prepared bool

	logger zerolog.Logger
}

func NewSearcher() *Searcher {
	return &Searcher{
		eval:   NewMaterialEvaluator(),
		logger: zerolog.Nop(),
	}
}

// SetEvaluator swaps the position evaluator. Must not be called while a
// search is running.
func (s *Searcher) SetEvaluator(eval Evaluator) {
	s.eval = eval
}

func (s *Searcher) SetLogger(logger zerolog.Logger) {
	s.logger = logger
}

// Stop raises the cooperative cancellation flag. The search notices it at
// the next node visit and unwinds, keeping the last completed depth. The
// flag stays raised until the next Prepare, so a stop delivered before the
// search goroutine starts is not lost.
func (s *Searcher) Stop() {
	s.stopped.Store(true)
}

// Prepare clears the cancellation flag and arms the clock for the next
// Search call. Callers that run Search on another goroutine must Prepare
// synchronously first, or a Stop racing the goroutine launch could be
// swallowed and the clock armed after a PonderHit.
func (s *Searcher) Prepare(limits Limits, b *dragontoothmg.Board) {
	s.stopped.Store(false)
	s.clock.Start(limits, b)
	s.prepared = true
}

// PonderHit switches a running ponder search onto the real clock.
func (s *Searcher) PonderHit() {
	s.clock.PonderHit()
}

// NewGame drops all state that persists across searches.
func (s *Searcher) NewGame() {
	s.history.Clear()
	s.counters.Clear()
	s.prevPV = nil
}

// Search runs iterative deepening until the budget is exhausted or a mate is
// found. Each completed depth overwrites the previous result; a depth cut
// short by cancellation is discarded, so the reported move always comes from
// a fully searched iteration. If not even depth 1 completes, the first
// ordered legal move is returned so there is always an answer.
func (s *Searcher) Search(params SearchParams) SearchInfo {
	b := params.Board
	if s.prepared {
		s.prepared = false
	} else {
		s.clock.Start(params.Limits, b)
	}
	s.nodes = 0
	s.killers.Clear()
	s.prevPV = nil
	s.maxNodes = 0
	if params.Limits.Nodes > 0 {
		s.maxNodes = uint64(params.Limits.Nodes)
	}
	s.repetition = append(s.repetition[:0], params.History...)
	s.repetition = append(s.repetition, b.Hash())

	maxDepth := params.Limits.Depth
	if maxDepth <= 0 || maxDepth > MaxPly {
		maxDepth = MaxPly
	}

	rootMoves := b.GenerateLegalMoves()
	if len(rootMoves) == 0 {
		// Mate or stalemate: nothing to search, report the terminal score.
		score := DrawScore
		if b.OurKingInCheck() {
			score = -MaxScore
		}
		return SearchInfo{Score: score, Time: s.clock.Elapsed()}
	}

	if len(rootMoves) == 1 {
		// Only one reply; answer immediately whatever the budget says.
		undo := s.applyMove(b, rootMoves[0])
		score := -s.eval.Evaluate(b)
		undo()
		return SearchInfo{
			Depth:    1,
			Score:    score,
			Nodes:    1,
			Time:     s.clock.Elapsed(),
			MainLine: []dragontoothmg.Move{rootMoves[0]},
		}
	}

	fallback := s.firstOrderedMove(b, rootMoves)
	result := SearchInfo{MainLine: []dragontoothmg.Move{fallback}}

	var pvLine PVLine
	alpha, beta := -MaxScore, MaxScore
	window := aspirationWindowSize

	for depth := 1; depth <= maxDepth; depth++ {
		if depth > 1 && s.clock.SoftExceeded() {
			break
		}

		s.followPV = len(s.prevPV) > 0
		pvLine.Clear()
		score := s.alphabeta(b, alpha, beta, depth, 0, &pvLine, 0)

		if s.stopped.Load() {
			break
		}

		// The score fell outside the aspiration window: widen it and redo
		// the same depth.
		if score <= alpha || score >= beta {
			if window < MaxScore {
				window *= 2
			}
			alpha = Clamp(score-window, -MaxScore, MaxScore)
			beta = Clamp(score+window, -MaxScore, MaxScore)
			depth--
			continue
		}

		window = aspirationWindowSize
		alpha = Clamp(score-window, -MaxScore, MaxScore)
		beta = Clamp(score+window, -MaxScore, MaxScore)

		completed := pvLine.Clone()
		s.prevPV = completed.Moves
		result = SearchInfo{
			Depth:    depth,
			Score:    score,
			Nodes:    s.nodes,
			Time:     s.clock.Elapsed(),
			MainLine: completed.Moves,
		}
		if params.Progress != nil {
			params.Progress(result)
		}

		if IsMateScore(score) {
			break
		}
	}

	result.Nodes = s.nodes
	result.Time = s.clock.Elapsed()

	bestMove := result.BestMove()
	s.logger.Debug().
		Int("depth", result.Depth).
		Uint64("nodes", result.Nodes).
		Dur("elapsed", result.Time).
		Str("bestmove", bestMove.String()).
		Msg("search finished")

	return result
}

func (s *Searcher) firstOrderedMove(b *dragontoothmg.Board, moves []dragontoothmg.Move) dragontoothmg.Move {
	list := s.scoreMoves(b, moves, 0, 0, 0)
	orderNextMove(0, &list)
	return list.moves[0].move
}

// IsMateScore reports whether a score encodes a forced mate.
func IsMateScore(score int32) bool {
	return Abs(score) > Checkmate
}

// MateIn converts a mate score into full moves, negative when the side to
// move is being mated; 0 for non-mate scores.
func MateIn(score int32) int {
	if score > Checkmate {
		return (int(MaxScore-score) + 1) / 2
	}
	if score < -Checkmate {
		return -((int(MaxScore+score) + 1) / 2)
	}
	return 0
}

// ScoreString renders a score the way the UCI info line wants it.
func ScoreString(score int32) string {
	if mate := MateIn(score); mate != 0 {
		return fmt.Sprintf("mate %d", mate)
	}
	return fmt.Sprintf("cp %d", score)
}
