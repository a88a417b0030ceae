package uci

import (
	"bytes"
	"regexp"
	"strings"
	"testing"
	"time"

	"github.com/dylhunn/dragontoothmg"

	"heron-engine/engine"
)

func runScript(t *testing.T, commands ...string) string {
	t.Helper()
	searcher := engine.NewSearcher()
	protocol := New("Heron", "test", "0.0", searcher, nil)

	var out bytes.Buffer
	protocol.Run(strings.NewReader(strings.Join(commands, "\n")), &out)
	return out.String()
}

func TestHandshake(t *testing.T) {
	output := runScript(t, "uci", "isready", "quit")

	for _, want := range []string{"id name Heron", "id author test", "uciok", "readyok"} {
		if !strings.Contains(output, want) {
			t.Fatalf("output missing %q:\n%s", want, output)
		}
	}
}

func TestGoAlwaysEmitsBestmove(t *testing.T) {
	output := runScript(t,
		"position startpos moves e2e4 e7e5",
		"go depth 3",
	)

	// Run drains the search before returning on EOF. The move must be in
	// long algebraic notation, not the raw move encoding.
	if !regexp.MustCompile(`(?m)^bestmove [a-h][1-8][a-h][1-8]`).MatchString(output) {
		t.Fatalf("no algebraic bestmove in output:\n%s", output)
	}
}

func TestBestMoveLineUsesAlgebraicNotation(t *testing.T) {
	board := dragontoothmg.ParseFen(dragontoothmg.Startpos)
	var e2e4 dragontoothmg.Move
	for _, move := range board.GenerateLegalMoves() {
		if move.String() == "e2e4" {
			e2e4 = move
		}
	}
	if e2e4 == 0 {
		t.Fatalf("e2e4 not generated from the start position")
	}

	if got := bestMoveLine(engine.SearchInfo{MainLine: []dragontoothmg.Move{e2e4}}); got != "bestmove e2e4" {
		t.Fatalf("unexpected bestmove line %q", got)
	}
}

func TestSearchInfoLineFormat(t *testing.T) {
	line := searchInfoLine(engine.SearchInfo{
		Depth: 3,
		Score: 42,
		Nodes: 1000,
		Time:  250 * time.Millisecond,
	})

	if !strings.HasPrefix(line, "info depth 3 score cp 42 nodes 1000 time 250 nps ") {
		t.Fatalf("unexpected info line %q", line)
	}
}

func TestGoWithoutPositionUsesStartpos(t *testing.T) {
	output := runScript(t, "go depth 2")

	if !strings.Contains(output, "bestmove ") {
		t.Fatalf("go before position should search the start position:\n%s", output)
	}
}

func TestMalformedCommandsKeepSessionAlive(t *testing.T) {
	output := runScript(t,
		"position fen this is not a fen",
		"position startpos moves e2e5",
		"flarp",
		"go depth 2",
	)

	if !strings.Contains(output, "info string") {
		t.Fatalf("expected info string diagnostics:\n%s", output)
	}
	if !strings.Contains(output, "bestmove ") {
		t.Fatalf("session died after malformed commands:\n%s", output)
	}
}

func TestStopDuringInfiniteSearch(t *testing.T) {
	output := runScript(t,
		"position startpos",
		"go infinite",
		"stop",
		"quit",
	)

	if !strings.Contains(output, "bestmove ") {
		t.Fatalf("stop did not produce a bestmove:\n%s", output)
	}
}

func TestBusySearchRejectsCommands(t *testing.T) {
	output := runScript(t,
		"go infinite",
		"position startpos",
		"stop",
	)

	if !strings.Contains(output, "info string search still running") {
		t.Fatalf("expected a busy diagnostic:\n%s", output)
	}
	if !strings.Contains(output, "bestmove ") {
		t.Fatalf("search never finished:\n%s", output)
	}
}

func TestUciAnsweredDuringSearch(t *testing.T) {
	output := runScript(t,
		"position startpos",
		"go infinite",
		"uci",
		"stop",
		"quit",
	)

	if !strings.Contains(output, "uciok") {
		t.Fatalf("uci must be answered while searching:\n%s", output)
	}
	if !strings.Contains(output, "bestmove ") {
		t.Fatalf("search never finished:\n%s", output)
	}
}

func TestMatedPositionAnswersWithNullMove(t *testing.T) {
	output := runScript(t,
		"position fen 3R2k1/5ppp/8/8/8/8/5PPP/6K1 b - - 0 1",
		"go depth 2",
	)

	if !strings.Contains(output, "bestmove 0000") {
		t.Fatalf("mated position should answer bestmove 0000:\n%s", output)
	}
}

func TestPonderhitConvertsToTimedSearch(t *testing.T) {
	output := runScript(t,
		"position startpos",
		"go ponder wtime 200 btime 200 winc 10 binc 10",
		"ponderhit",
		"quit",
	)

	if !strings.Contains(output, "bestmove ") {
		t.Fatalf("pondering search never reported a move:\n%s", output)
	}
}

func TestSetOption(t *testing.T) {
	value := 100
	searcher := engine.NewSearcher()
	protocol := New("Heron", "test", "0.0", searcher, []Option{
		&IntOption{Name: "MaterialScale", Min: 10, Max: 400, Value: &value},
	})

	var out bytes.Buffer
	protocol.Run(strings.NewReader("uci\nsetoption name MaterialScale value 150\nsetoption name MaterialScale value 9999\nquit"), &out)

	if value != 150 {
		t.Fatalf("setoption did not write the value, got %d", value)
	}
	if !strings.Contains(out.String(), "option name MaterialScale type spin default 100 min 10 max 400") {
		t.Fatalf("option not advertised:\n%s", out.String())
	}
	if !strings.Contains(out.String(), "info string") {
		t.Fatalf("out of range value should produce a diagnostic:\n%s", out.String())
	}
}

func TestFindLegalMoveRejectsIllegal(t *testing.T) {
	output := runScript(t,
		"position startpos moves e2e4 e2e4",
		"quit",
	)

	if !strings.Contains(output, "info string illegal move e2e4") {
		t.Fatalf("expected the second e2e4 to be rejected:\n%s", output)
	}
}
