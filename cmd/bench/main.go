// Command bench searches a fixed suite of positions to a given depth and
// reports node counts and speed. Useful for checking that search changes do
// what they claim before they meet a real opponent.
package main

import (
	"flag"
	"fmt"
	"os"
	"sync/atomic"
	"time"

	"github.com/dylhunn/dragontoothmg"
	"github.com/pkg/profile"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"heron-engine/engine"
)

var benchPositions = []string{
	dragontoothmg.Startpos,
	"r1bqkbnr/pppp1ppp/2n5/4p3/2B1P3/5N2/PPPP1PPP/RNBQK2R b KQkq - 3 3",
	"r2qkb1r/pp2nppp/3p4/2pNN1B1/2BnP3/3P4/PPP2PPP/R2bK2R w KQkq - 1 10",
	"rnb2k1r/pp1p1ppp/2p5/q7/1PB5/P1P2N2/3P1PPP/R1BQK2R w KQ - 1 10",
	"r4rk1/1pp1qppp/p1np1n2/2b1p1B1/2B1P1b1/P1NP1N2/1PP1QPPP/R4RK1 w - - 0 10",
	"8/2p5/3p4/KP5r/1R3p1k/8/4P1P1/8 w - - 0 1",
	"4k3/8/8/8/8/8/8/4K2R w K - 0 1",
	"8/8/1P2K3/8/2n5/1q6/8/5k2 b - - 0 1",
	"5k2/8/8/8/8/8/8/4K2R w K - 0 1",
	"6k1/5ppp/8/8/8/8/5PPP/3R2K1 w - - 0 1",
	"r3k2r/p1ppqpb1/bn2pnp1/3PN3/1p2P3/2N2Q1p/PPPBBPPP/R3K2R w KQkq - 0 1",
	"8/2k5/3p4/p2P1p2/P2P1P2/8/8/4K3 w - - 0 1",
}

func main() {
	depth := flag.Int("depth", 8, "search depth per position")
	concurrency := flag.Int("concurrency", 1, "positions searched in parallel, each on its own engine")
	cpuprofile := flag.Bool("cpuprofile", false, "write a CPU profile to the working directory")
	verbose := flag.Bool("v", false, "log per-position results to stderr")
	flag.Parse()

	if *cpuprofile {
		defer profile.Start(profile.CPUProfile, profile.ProfilePath(".")).Stop()
	}

	logger := zerolog.Nop()
	if *verbose {
		logger = zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).
			With().Timestamp().Logger()
	}

	var totalNodes atomic.Uint64
	start := time.Now()

	var group errgroup.Group
	group.SetLimit(*concurrency)
	for _, fen := range benchPositions {
		fen := fen
		group.Go(func() error {
			board := dragontoothmg.ParseFen(fen)
			searcher := engine.NewSearcher()
			result := searcher.Search(engine.SearchParams{
				Board:  &board,
				Limits: engine.Limits{Depth: *depth},
			})
			totalNodes.Add(result.Nodes)
			bestMove := result.BestMove()
			logger.Info().
				Str("fen", fen).
				Str("bestmove", bestMove.String()).
				Str("score", engine.ScoreString(result.Score)).
				Uint64("nodes", result.Nodes).
				Dur("elapsed", result.Time).
				Msg("position done")
			return nil
		})
	}
	if err := group.Wait(); err != nil {
		logger.Fatal().Err(err).Msg("bench failed")
	}

	elapsed := time.Since(start)
	nodes := totalNodes.Load()
	nps := int64(nodes) * 1000 / (elapsed.Milliseconds() + 1)
	fmt.Printf("%d nodes %d nps\n", nodes, nps)
}
