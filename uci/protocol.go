// Package uci speaks the UCI text protocol over a reader/writer pair and
// drives one engine instance. Searches run on their own goroutine so the
// command loop stays responsive to stop and ponderhit.
package uci

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"sync"

	"github.com/dylhunn/dragontoothmg"
	"github.com/rs/zerolog"

	"heron-engine/engine"
)

type state int

const (
	stateIdle state = iota
	statePositionSet
	stateSearching
	statePondering
)

type Protocol struct {
	name    string
	author  string
	version string

	searcher *engine.Searcher
	options  []Option
	logger   zerolog.Logger

	mu      sync.Mutex
	out     io.Writer
	state   state
	board   dragontoothmg.Board
	history []uint64
	done    chan struct{}
}

func New(name, author, version string, searcher *engine.Searcher, options []Option) *Protocol {
	return &Protocol{
		name:     name,
		author:   author,
		version:  version,
		searcher: searcher,
		options:  options,
		logger:   zerolog.Nop(),
		board:    dragontoothmg.ParseFen(dragontoothmg.Startpos),
	}
}

func (p *Protocol) SetLogger(logger zerolog.Logger) {
	p.logger = logger
}

// Run reads commands until quit or EOF. Output, including asynchronous info
// and bestmove lines, goes to w.
func (p *Protocol) Run(r io.Reader, w io.Writer) {
	p.mu.Lock()
	p.out = w
	p.mu.Unlock()

	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		line := scanner.Text()
		if strings.TrimSpace(line) == "quit" {
			p.abortSearch()
			return
		}
		if err := p.Handle(line); err != nil {
			p.println("info string " + err.Error())
		}
	}
	p.abortSearch()
}

// Handle dispatches a single command line. Unknown and malformed commands
// return an error and leave the session state untouched.
func (p *Protocol) Handle(line string) error {
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return nil
	}
	command := fields[0]
	fields = fields[1:]

	p.logger.Debug().Str("command", line).Msg("uci command")

	p.mu.Lock()
	busy := p.state == stateSearching || p.state == statePondering
	p.mu.Unlock()

	if busy {
		switch command {
		case "stop":
			p.stopAndWait()
			return nil
		case "ponderhit":
			return p.ponderhitCommand()
		case "isready":
			p.println("readyok")
			return nil
		case "uci":
			// Identification is answered in any state.
			return p.uciCommand()
		}
		return errors.New("search still running")
	}

	switch command {
	case "uci":
		return p.uciCommand()
	case "isready":
		p.println("readyok")
		return nil
	case "setoption":
		return p.setOptionCommand(fields)
	case "ucinewgame":
		return p.uciNewGameCommand()
	case "position":
		return p.positionCommand(fields)
	case "go":
		return p.goCommand(fields)
	case "stop", "ponderhit":
		// Nothing running; silently accepted.
		return nil
	}
	return fmt.Errorf("unknown command %s", command)
}

func (p *Protocol) uciCommand() error {
	p.println(fmt.Sprintf("id name %s %s", p.name, p.version))
	p.println(fmt.Sprintf("id author %s", p.author))
	for _, option := range p.options {
		p.println(option.UciString())
	}
	p.println("uciok")
	return nil
}

func (p *Protocol) setOptionCommand(fields []string) error {
	if len(fields) < 4 || fields[0] != "name" || fields[2] != "value" {
		return errors.New("invalid setoption arguments")
	}
	name, value := fields[1], fields[3]
	for _, option := range p.options {
		if strings.EqualFold(option.UciName(), name) {
			return option.Set(value)
		}
	}
	return fmt.Errorf("unknown option %s", name)
}

func (p *Protocol) uciNewGameCommand() error {
	p.searcher.NewGame()
	p.mu.Lock()
	p.board = dragontoothmg.ParseFen(dragontoothmg.Startpos)
	p.history = nil
	p.state = stateIdle
	p.mu.Unlock()
	return nil
}

func (p *Protocol) positionCommand(fields []string) error {
	if len(fields) == 0 {
		return errors.New("position needs startpos or fen")
	}

	var fen string
	movesIndex := findIndexString(fields, "moves")
	switch fields[0] {
	case "startpos":
		fen = dragontoothmg.Startpos
	case "fen":
		if movesIndex == -1 {
			fen = strings.Join(fields[1:], " ")
		} else {
			fen = strings.Join(fields[1:movesIndex], " ")
		}
	default:
		return errors.New("unknown position command")
	}

	board, err := parseFen(fen)
	if err != nil {
		return err
	}

	var history []uint64
	if movesIndex >= 0 {
		for _, token := range fields[movesIndex+1:] {
			move, ok := findLegalMove(&board, token)
			if !ok {
				return fmt.Errorf("illegal move %s", token)
			}
			history = append(history, board.Hash())
			board.Apply(move)
		}
	}

	p.mu.Lock()
	p.board = board
	p.history = history
	p.state = statePositionSet
	p.mu.Unlock()
	return nil
}

func (p *Protocol) goCommand(fields []string) error {
	limits := parseLimits(fields)

	p.mu.Lock()
	board := p.board
	history := append([]uint64(nil), p.history...)
	if limits.Ponder {
		p.state = statePondering
	} else {
		p.state = stateSearching
	}
	done := make(chan struct{})
	p.done = done
	p.mu.Unlock()

	// Clearing the stop flag and arming the clock here, on the command
	// goroutine, means a later stop or ponderhit cannot race the search
	// goroutine starting up.
	p.searcher.Prepare(limits, &board)

	go func() {
		defer close(done)
		result := p.searcher.Search(engine.SearchParams{
			Board:   &board,
			History: history,
			Limits:  limits,
			Progress: func(si engine.SearchInfo) {
				p.println(searchInfoLine(si))
			},
		})

		p.mu.Lock()
		p.state = statePositionSet
		p.mu.Unlock()

		p.println(bestMoveLine(result))
	}()
	return nil
}

func (p *Protocol) ponderhitCommand() error {
	p.mu.Lock()
	pondering := p.state == statePondering
	if pondering {
		p.state = stateSearching
	}
	p.mu.Unlock()
	if !pondering {
		return nil
	}
	p.searcher.PonderHit()
	return nil
}

// stopAndWait cancels the running search and blocks until its bestmove has
// been written; commands arriving after stop then see a quiet session.
func (p *Protocol) stopAndWait() {
	p.mu.Lock()
	done := p.done
	p.mu.Unlock()
	if done == nil {
		return
	}
	p.searcher.Stop()
	<-done
}

func (p *Protocol) abortSearch() {
	p.stopAndWait()
}

func (p *Protocol) println(line string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.out != nil {
		fmt.Fprintln(p.out, line)
	}
}

func searchInfoLine(si engine.SearchInfo) string {
	sb := &strings.Builder{}
	fmt.Fprintf(sb, "info depth %v score %v", si.Depth, engine.ScoreString(si.Score))
	timeMs := si.Time.Milliseconds()
	nps := int64(si.Nodes) * 1000 / (timeMs + 1)
	fmt.Fprintf(sb, " nodes %v time %v nps %v", si.Nodes, timeMs, nps)
	if len(si.MainLine) != 0 {
		sb.WriteString(" pv")
		for _, move := range si.MainLine {
			sb.WriteString(" ")
			sb.WriteString(move.String())
		}
	}
	return sb.String()
}

func bestMoveLine(si engine.SearchInfo) string {
	best := si.BestMove()
	if best == 0 {
		return "bestmove 0000"
	}
	if ponder := si.PonderMove(); ponder != 0 {
		return fmt.Sprintf("bestmove %s ponder %s", best.String(), ponder.String())
	}
	return fmt.Sprintf("bestmove %s", best.String())
}

// parseFen wraps the rules engine parser, which panics on garbage, into an
// error return so a bad position command cannot take the session down.
func parseFen(fen string) (board dragontoothmg.Board, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("invalid fen %q", fen)
		}
	}()
	board = dragontoothmg.ParseFen(fen)
	if board.White.Kings == 0 || board.Black.Kings == 0 {
		return board, fmt.Errorf("invalid fen %q", fen)
	}
	return board, nil
}

// findLegalMove resolves a long algebraic token against the legal moves of
// the position, so only moves the rules engine accepts are ever applied.
func findLegalMove(b *dragontoothmg.Board, token string) (dragontoothmg.Move, bool) {
	for _, move := range b.GenerateLegalMoves() {
		if move.String() == token {
			return move, true
		}
	}
	return 0, false
}

func parseLimits(fields []string) (result engine.Limits) {
	for i := 0; i < len(fields); i++ {
		switch fields[i] {
		case "ponder":
			result.Ponder = true
		case "wtime":
			result.WhiteTime = parseIntField(fields, &i)
		case "btime":
			result.BlackTime = parseIntField(fields, &i)
		case "winc":
			result.WhiteIncrement = parseIntField(fields, &i)
		case "binc":
			result.BlackIncrement = parseIntField(fields, &i)
		case "movestogo":
			result.MovesToGo = parseIntField(fields, &i)
		case "depth":
			result.Depth = parseIntField(fields, &i)
		case "nodes":
			result.Nodes = parseIntField(fields, &i)
		case "movetime":
			result.MoveTime = parseIntField(fields, &i)
		case "infinite":
			result.Infinite = true
		}
	}
	return result
}

func parseIntField(fields []string, i *int) int {
	if *i+1 >= len(fields) {
		return 0
	}
	*i++
	v, _ := strconv.Atoi(fields[*i])
	return v
}

func findIndexString(slice []string, value string) int {
	for i, v := range slice {
		if v == value {
			return i
		}
	}
	return -1
}
