package main

import (
	"flag"
	"os"

	"github.com/rs/zerolog"

	"heron-engine/engine"
	"heron-engine/uci"
)

const (
	engineName    = "Heron"
	engineAuthor  = "Heron authors"
	engineVersion = "0.3"
)

func main() {
	debug := flag.Bool("debug", false, "log protocol traffic and search summaries to stderr")
	flag.Parse()

	logger := zerolog.Nop()
	if *debug {
		logger = zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).
			With().Timestamp().Logger()
	}

	eval := engine.NewMaterialEvaluator()
	searcher := engine.NewSearcher()
	searcher.SetEvaluator(eval)
	searcher.SetLogger(logger)

	options := []uci.Option{
		&uci.IntOption{Name: "MaterialScale", Min: 10, Max: 400, Value: &eval.Weights.MaterialScale},
		&uci.IntOption{Name: "PositionalScale", Min: 0, Max: 400, Value: &eval.Weights.PositionalScale},
	}

	protocol := uci.New(engineName, engineAuthor, engineVersion, searcher, options)
	protocol.SetLogger(logger)
	protocol.Run(os.Stdin, os.Stdout)
}
